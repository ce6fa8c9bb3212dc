package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrMalformedFunctionCall is returned when model output looks like a
// function call but cannot be decoded. It must never be downgraded to a
// successful text result.
var ErrMalformedFunctionCall = errors.New("malformed function call in model output")

// callPattern matches a one-level-nested JSON object carrying a
// "function_call" key in free-form model text.
var callPattern = regexp.MustCompile(`(?s)\{[^{}]*"function_call"[^{}]*\{[^{}]*\}[^{}]*\}`)

// buildPrompt flattens the transcript and capability declaration into a
// single prompt for vendors without native structured function calls.
func buildPrompt(messages []Message, tools []Tool) string {
	var b strings.Builder
	if len(tools) > 0 {
		b.WriteString(callInstructions(tools))
		b.WriteString("\n\n")
	}
	b.WriteString(transcriptText(messages))
	return b.String()
}

func transcriptText(messages []Message) string {
	parts := make([]string, 0, len(messages))
	for _, msg := range messages {
		switch msg.Role {
		case RoleSystem:
			parts = append(parts, "System Instructions:\n"+msg.Content)
		case RoleUser:
			parts = append(parts, "User: "+msg.Content)
		case RoleAssistant:
			if msg.FunctionCall != nil {
				args, _ := json.Marshal(msg.FunctionCall.Arguments)
				parts = append(parts, fmt.Sprintf("Assistant called function %s with %s", msg.FunctionCall.Name, args))
				continue
			}
			parts = append(parts, "Assistant: "+msg.Content)
		case RoleFunction:
			parts = append(parts, fmt.Sprintf("Function %s result: %s", msg.Name, msg.Content))
		}
	}
	return strings.Join(parts, "\n\n")
}

func callInstructions(tools []Tool) string {
	decl, _ := json.MarshalIndent(tools, "", "  ")
	return `You have access to the following functions. When you need to use one, respond with JSON in this exact format:
{
  "function_call": {
    "name": "function_name",
    "arguments": {"arg1": "value1"}
  }
}

Available functions:
` + string(decl)
}

// parseCall extracts a function call from free-form model text. The second
// return value reports whether a call-shaped block was present at all.
func parseCall(text string) (*FunctionCall, bool, error) {
	match := callPattern.FindString(text)
	if match == "" {
		return nil, false, nil
	}

	var envelope struct {
		FunctionCall struct {
			Name      string         `json:"name"`
			Arguments map[string]any `json:"arguments"`
		} `json:"function_call"`
	}
	if err := json.Unmarshal([]byte(match), &envelope); err != nil {
		return nil, true, fmt.Errorf("%w: %v", ErrMalformedFunctionCall, err)
	}
	if envelope.FunctionCall.Name == "" {
		return nil, true, fmt.Errorf("%w: missing function name", ErrMalformedFunctionCall)
	}

	args := envelope.FunctionCall.Arguments
	if args == nil {
		args = map[string]any{}
	}
	return &FunctionCall{Name: envelope.FunctionCall.Name, Arguments: args}, true, nil
}
