package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/tsagbook/booking-platform/pkg/metrics"
)

// AnthropicClient is the Anthropic LLM client. Function calling uses the
// prompted JSON strategy: the capability declaration is rendered into the
// prompt and calls are parsed back out of the text reply. Best effort, not
// a structured-output guarantee.
type AnthropicClient struct {
	client *anthropic.Client
	model  string
}

// NewAnthropicClient creates a new Anthropic client.
func NewAnthropicClient(apiKey, model string) (*AnthropicClient, error) {
	if apiKey == "" {
		return nil, errors.New("Anthropic API key is required")
	}
	if model == "" {
		model = "claude-3-5-sonnet-20241022"
	}

	return &AnthropicClient{
		client: anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
	}, nil
}

// Name returns the provider name.
func (c *AnthropicClient) Name() string {
	return "anthropic"
}

// Generate sends the flattened transcript to Anthropic.
func (c *AnthropicClient) Generate(ctx context.Context, req *GenerateRequest) (*Result, error) {
	start := time.Now()

	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = 4096
	}

	prompt := buildPrompt(req.Messages, req.Tools)
	messages := []anthropic.MessageParam{
		{
			Role: anthropic.F(anthropic.MessageParamRoleUser),
			Content: anthropic.F([]anthropic.ContentBlockParamUnion{
				anthropic.TextBlockParam{
					Type: anthropic.F(anthropic.TextBlockParamTypeText),
					Text: anthropic.F(prompt),
				},
			}),
		},
	}

	resp, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.F(c.model),
		MaxTokens: anthropic.F(int64(maxTokens)),
		Messages:  anthropic.F(messages),
	})
	if err != nil {
		metrics.RecordLLMRoundTrip(c.Name(), "error", time.Since(start).Seconds())
		return nil, fmt.Errorf("anthropic: %w", err)
	}

	var content string
	for _, block := range resp.Content {
		if block.Type == anthropic.ContentBlockTypeText {
			content += block.Text
		}
	}
	if content == "" {
		metrics.RecordLLMRoundTrip(c.Name(), "error", time.Since(start).Seconds())
		return nil, errors.New("anthropic: empty response")
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
