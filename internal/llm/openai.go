package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/tsagbook/booking-platform/pkg/metrics"
)

// OpenAIClient is the OpenAI LLM client. It uses native function calling.
type OpenAIClient struct {
	client *openai.Client
	model  string
}

// NewOpenAIClient creates a new OpenAI client. baseURL may be empty; a
// non-empty value targets an OpenAI-compatible endpoint.
func NewOpenAIClient(apiKey, model, baseURL string) (*OpenAIClient, error) {
	if apiKey == "" {
		return nil, errors.New("OpenAI API key is required")
	}

	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if model == "" {
		model = "gpt-4o"
	}

	return &OpenAIClient{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}, nil
}

// Name returns the provider name.
func (c *OpenAIClient) Name() string {
	return "openai"
}

// Generate sends the transcript and capability declaration to OpenAI.
func (c *OpenAIClient) Generate(ctx context.Context, req *GenerateRequest) (*Result, error) {
	start := time.Now()

	messages := make([]openai.ChatCompletionMessage, 0, len(req.Messages))
	for _, msg := range req.Messages {
		converted := openai.ChatCompletionMessage{
			Role:    msg.Role,
			Content: msg.Content,
			Name:    msg.Name,
		}
		if msg.FunctionCall != nil {
			args, err := json.Marshal(msg.FunctionCall.Arguments)
			if err != nil {
				return nil, fmt.Errorf("marshal function call arguments: %w", err)
			}
			converted.FunctionCall = &openai.FunctionCall{
				Name:      msg.FunctionCall.Name,
				Arguments: string(args),
			}
		}
		messages = append(messages, converted)
	}

	chatReq := openai.ChatCompletionRequest{
		Model:    c.model,
		Messages: messages,
	}
	if req.MaxTokens > 0 {
		chatReq.MaxTokens = req.MaxTokens
	}
	if req.Temperature > 0 {
		chatReq.Temperature = float32(req.Temperature)
	}
	if len(req.Tools) > 0 {
		functions := make([]openai.FunctionDefinition, 0, len(req.Tools))
		for _, tool := range req.Tools {
			functions = append(functions, openai.FunctionDefinition{
				Name:        tool.Name,
				Description: tool.Description,
				Parameters:  tool.Parameters,
			})
		}
		chatReq.Functions = functions
		chatReq.FunctionCall = "auto"
	}

	resp, err := c.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		metrics.RecordLLMRoundTrip(c.Name(), "error", time.Since(start).Seconds())
		return nil, fmt.Errorf("openai: %w", err)
	}
	if len(resp.Choices) == 0 {
		metrics.RecordLLMRoundTrip(c.Name(), "error", time.Since(start).Seconds())
		return nil, errors.New("openai: empty response")
	}

	choice := resp.Choices[0].Message
	if choice.FunctionCall != nil {
		var args map[string]any
		if err := json.Unmarshal([]byte(choice.FunctionCall.Arguments), &args); err != nil {
			metrics.RecordLLMRoundTrip(c.Name(), "error", time.Since(start).Seconds())
			return nil, fmt.Errorf("%w: %v", ErrMalformedFunctionCall, err)
		}
		if args == nil {
			args = map[string]any{}
		}
		metrics.RecordLLMRoundTrip(c.Name(), "function_call", time.Since(start).Seconds())
		return &Result{
			Type: ResultFunctionCall,
			Call: &FunctionCall{Name: choice.FunctionCall.Name, Arguments: args},
		}, nil
	}

	metrics.RecordLLMRoundTrip(c.Name(), "text", time.Since(start).Seconds())
	return &Result{Type: ResultText, Content: choice.Content}, nil
}
