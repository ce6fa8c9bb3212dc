package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/tsagbook/booking-platform/internal/agent"
	"github.com/tsagbook/booking-platform/internal/booking"
	"github.com/tsagbook/booking-platform/internal/config"
	"github.com/tsagbook/booking-platform/internal/events"
	"github.com/tsagbook/booking-platform/internal/functions"
	"github.com/tsagbook/booking-platform/internal/handler"
	"github.com/tsagbook/booking-platform/internal/llm"
	"github.com/tsagbook/booking-platform/internal/middleware"
	"github.com/tsagbook/booking-platform/internal/store"
	"github.com/tsagbook/booking-platform/pkg/logger"
	"github.com/tsagbook/booking-platform/pkg/tracing"
)

const version = "1.0.0"

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.TracingEnabled {
		tp, err := tracing.InitTracer(ctx, "booking-platform", cfg.TracingEndpoint)
		if err != nil {
			log.Warn("failed to initialize tracing, continuing without", zap.Error(err))
		} else {
			defer func() {
				if err := tracing.Shutdown(context.Background(), tp); err != nil {
					log.Warn("tracer shutdown failed", zap.Error(err))
				}
			}()
		}
	}

	db, err := store.NewGormStore(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		log.Fatal("failed to open store", zap.Error(err))
	}
	defer db.Close()
	log.Info("store ready", zap.String("driver", cfg.DBDriver))

	var publisher *events.Publisher
	if cfg.NATSURL != "" {
		publisher, err = events.Connect(ctx, cfg.NATSURL, cfg.NATSToken, log)
		if err != nil {
			log.Warn("failed to connect to NATS, booking events disabled", zap.Error(err))
			publisher = nil
		} else {
			defer publisher.Close()
			log.Info("booking events enabled", zap.String("url", cfg.NATSURL))
		}
	}

	engine := booking.NewEngine(db, booking.Options{
		BusinessStartHour: cfg.BusinessStartHour,
		BusinessEndHour:   cfg.BusinessEndHour,
		CancelPolicy:      booking.CancelPolicy(cfg.CancelPolicy),
		Events:            eventPublisher(publisher),
	}, log)

	llmClient, err := llm.NewClient(ctx, llm.Provider(cfg.LLMProvider), llm.Config{
		OpenAIAPIKey:    cfg.OpenAIAPIKey,
		OpenAIModel:     cfg.OpenAIModel,
		OpenAIBaseURL:   cfg.OpenAIBaseURL,
		AnthropicAPIKey: cfg.AnthropicKey,
		AnthropicModel:  cfg.AnthropicModel,
		GeminiAPIKey:    cfg.GeminiAPIKey,
		GeminiModel:     cfg.GeminiModel,
	})
	if err != nil {
		log.Fatal("failed to create LLM client", zap.Error(err))
	}
	log.Info("LLM client ready", zap.String("provider", llmClient.Name()))

	registry := functions.NewRegistry(engine, log)
	bookingAgent := agent.New(llmClient, registry, agent.NewMemorySessionStore(), log)

	chatHandler := handler.NewChatHandler(bookingAgent, log)
	bookingHandler := handler.NewBookingHandler(engine, log)
	healthHandler := handler.NewHealthHandler(db, llmClient.Name(), version)

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging(log))
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-User-ID", "X-Correlation-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/", healthHandler.Info)
	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.RateLimit(cfg.RateLimitRequests, cfg.RateLimitWindow))

		r.Post("/chat", chatHandler.Chat)
		r.Delete("/sessions/{sessionID}", chatHandler.ClearSession)

		r.Get("/availability", bookingHandler.Availability)
		r.Route("/bookings", func(r chi.Router) {
			r.Get("/", bookingHandler.List)
			r.Post("/", bookingHandler.Create)
			r.Get("/{bookingID}", bookingHandler.Get)
			r.Delete("/{bookingID}", bookingHandler.Cancel)
		})
	})

	srv := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      r,
		ReadTimeout:  cfg.ServerReadTimeout,
		WriteTimeout: cfg.ServerWriteTimeout,
	}

	go func() {
		log.Info("starting server", zap.String("port", cfg.ServerPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("forced shutdown", zap.Error(err))
	}
	log.Info("server stopped")
}

// eventPublisher keeps a nil *events.Publisher from becoming a non-nil
// interface value on the engine.
func eventPublisher(p *events.Publisher) booking.EventPublisher {
	if p == nil {
		return nil
	}
	return p
}
