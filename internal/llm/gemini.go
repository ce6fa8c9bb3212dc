package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/tsagbook/booking-platform/pkg/metrics"
)

// GeminiClient is the Google Gemini LLM client. Like the Anthropic adapter
// it relies on the prompted JSON function-calling strategy.
type GeminiClient struct {
	client *genai.Client
	model  *genai.GenerativeModel
	name   string
}

// NewGeminiClient creates a new Gemini client.
func NewGeminiClient(ctx context.Context, apiKey, model string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, errors.New("Gemini API key is required")
	}
	if model == "" {
		model = "gemini-1.5-flash"
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	return &GeminiClient{
		client: client,
		model:  client.GenerativeModel(model),
		name:   model,
	}, nil
}

// Name returns the provider name.
func (c *GeminiClient) Name() string {
	return "gemini"
}

// Close releases the underlying API client.
func (c *GeminiClient) Close() error {
	return c.client.Close()
}

// Generate sends the flattened transcript to Gemini.
func (c *GeminiClient) Generate(ctx context.Context, req *GenerateRequest) (*Result, error) {
	start := time.Now()

	prompt := buildPrompt(req.Messages, req.Tools)
	resp, err := c.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		metrics.RecordLLMRoundTrip(c.Name(), "error", time.Since(start).Seconds())
		return nil, fmt.Errorf("gemini: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		metrics.RecordLLMRoundTrip(c.Name(), "error", time.Since(start).Seconds())
		return nil, errors.New("gemini: empty response")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	content := sb.String()
	if content == "" {
		metrics.RecordLLMRoundTrip(c.Name(), "error", time.Since(start).Seconds())
		return nil, errors.New("gemini: empty response")
	}

	if len(req.Tools) > 0 {
		call, found, err := parseCall(content)
		if err != nil {
			metrics.RecordLLMRoundTrip(c.Name(), "error", time.Since(start).Seconds())
			return nil, err
		}
		if found {
			metrics.RecordLLMRoundTrip(c.Name(), "function_call", time.Since(start).Seconds())
			return &Result{Type: ResultFunctionCall, Call: call}, nil
		}
	}

	metrics.RecordLLMRoundTrip(c.Name(), "text", time.Since(start).Seconds())
	return &Result{Type: ResultText, Content: content}, nil
}
