package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.ServerPort != "8080" {
		t.Errorf("ServerPort = %s, want 8080", cfg.ServerPort)
	}
	if cfg.DBDriver != "sqlite" {
		t.Errorf("DBDriver = %s, want sqlite", cfg.DBDriver)
	}
	if cfg.LLMProvider != "openai" {
		t.Errorf("LLMProvider = %s, want openai", cfg.LLMProvider)
	}
	if cfg.BusinessStartHour != 9 || cfg.BusinessEndHour != 18 {
		t.Errorf("business hours = [%d, %d), want [9, 18)", cfg.BusinessStartHour, cfg.BusinessEndHour)
	}
	if cfg.CancelPolicy != "latest" {
		t.Errorf("CancelPolicy = %s, want latest", cfg.CancelPolicy)
	}
	if cfg.RateLimitWindow != time.Minute {
		t.Errorf("RateLimitWindow = %s, want 1m", cfg.RateLimitWindow)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("BUSINESS_START_HOUR", "8")
	t.Setenv("CANCEL_POLICY", "require-id")
	t.Setenv("RATE_LIMIT_WINDOW", "30s")
	t.Setenv("TRACING_ENABLED", "true")

	cfg := Load()

	if cfg.ServerPort != "9090" {
		t.Errorf("ServerPort = %s", cfg.ServerPort)
	}
	if cfg.DBDriver != "postgres" {
		t.Errorf("DBDriver = %s", cfg.DBDriver)
	}
	if cfg.BusinessStartHour != 8 {
		t.Errorf("BusinessStartHour = %d", cfg.BusinessStartHour)
	}
	if cfg.CancelPolicy != "require-id" {
		t.Errorf("CancelPolicy = %s", cfg.CancelPolicy)
	}
	if cfg.RateLimitWindow != 30*time.Second {
		t.Errorf("RateLimitWindow = %s", cfg.RateLimitWindow)
	}
	if !cfg.TracingEnabled {
		t.Error("TracingEnabled = false")
	}
}

func TestMalformedEnvFallsBackToDefault(t *testing.T) {
	t.Setenv("BUSINESS_START_HOUR", "morning")
	t.Setenv("RATE_LIMIT_WINDOW", "soon")

	cfg := Load()

	if cfg.BusinessStartHour != 9 {
		t.Errorf("BusinessStartHour = %d, want default 9", cfg.BusinessStartHour)
	}
	if cfg.RateLimitWindow != time.Minute {
		t.Errorf("RateLimitWindow = %s, want default 1m", cfg.RateLimitWindow)
	}
}
