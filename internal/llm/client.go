// Package llm provides the language-model port and vendor adapters.
package llm

import (
	"context"
	"fmt"
)

// Message roles mirror the transcript turn roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleFunction  = "function"
)

// Message is a single conversation turn submitted to the model.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`

	// Name is the function name for function-result turns.
	Name string `json:"name,omitempty"`

	// FunctionCall records the call an assistant turn made.
	FunctionCall *FunctionCall `json:"function_call,omitempty"`
}

// FunctionCall is a structured function invocation produced by the model.
type FunctionCall struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

// Tool declares a callable operation offered to the model.
type Tool struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// ResultType discriminates the outcome of a generate call.
type ResultType string

const (
	ResultText         ResultType = "text"
	ResultFunctionCall ResultType = "function_call"
)

// Result is the model's response: exactly one of a text reply or a
// function call. Vendor and parse failures surface as Go errors from
// Generate, never as a Result.
type Result struct {
	Type    ResultType
	Content string
	Call    *FunctionCall
}

// GenerateRequest is a single round-trip request to the model.
type GenerateRequest struct {
	Messages    []Message
	Tools       []Tool
	MaxTokens   int
	Temperature float64
}

// Client is the interface for LLM providers.
type Client interface {
	// Generate submits the transcript plus capability declaration and
	// returns either a function call or a text reply.
	Generate(ctx context.Context, req *GenerateRequest) (*Result, error)

	// Name returns the provider name.
	Name() string
}

// Provider is the type of LLM provider.
type Provider string

const (
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
	ProviderGemini    Provider = "gemini"
)

// Config holds per-vendor credentials and model selection.
type Config struct {
	OpenAIAPIKey  string
	OpenAIModel   string
	OpenAIBaseURL string

	AnthropicAPIKey string
	AnthropicModel  string

	GeminiAPIKey string
	GeminiModel  string
}

// NewClient creates a new LLM client based on provider.
func NewClient(ctx context.Context, provider Provider, cfg Config) (Client, error) {
	switch provider {
	case ProviderOpenAI:
		return NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.OpenAIBaseURL)
	case ProviderAnthropic:
		return NewAnthropicClient(cfg.AnthropicAPIKey, cfg.AnthropicModel)
	case ProviderGemini:
		return NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", provider)
	}
}
