package llm

import (
	"errors"
	"strings"
	"testing"
)

func TestParseCallWellFormed(t *testing.T) {
	text := `Шалгаад өгье.
{
  "function_call": {
    "name": "check_availability",
    "arguments": {"date": "2025-10-24", "time": "10:00", "duration_minutes": 60}
  }
}`

	call, present, err := parseCall(text)
	if err != nil {
		t.Fatalf("parseCall: %v", err)
	}
	if !present {
		t.Fatal("call-shaped block not detected")
	}
	if call.Name != "check_availability" {
		t.Errorf("name = %q", call.Name)
	}
	if call.Arguments["date"] != "2025-10-24" {
		t.Errorf("date = %v", call.Arguments["date"])
	}
	if call.Arguments["duration_minutes"] != float64(60) {
		t.Errorf("duration_minutes = %v", call.Arguments["duration_minutes"])
	}
}

func TestParseCallPlainText(t *testing.T) {
	call, present, err := parseCall("Сайн байна уу! Би танд туслахад бэлэн.")
	if err != nil {
		t.Fatalf("parseCall: %v", err)
	}
	if present || call != nil {
		t.Errorf("plain text misread as call: present=%v call=%v", present, call)
	}
}

func TestParseCallMissingName(t *testing.T) {
	text := `{"function_call": {"name": "", "arguments": {"date": "2025-10-24"}}}`

	_, present, err := parseCall(text)
	if !present {
		t.Fatal("call-shaped block not detected")
	}
	if !errors.Is(err, ErrMalformedFunctionCall) {
		t.Fatalf("err = %v, want ErrMalformedFunctionCall", err)
	}
}

func TestParseCallNilArguments(t *testing.T) {
	text := `{"function_call": {"name": "list_bookings", "arguments": {}}}`

	call, _, err := parseCall(text)
	if err != nil {
		t.Fatalf("parseCall: %v", err)
	}
	if call.Arguments == nil {
		t.Error("arguments must be non-nil")
	}
}

func TestBuildPromptIncludesDeclarationsAndTranscript(t *testing.T) {
	messages := []Message{
		{Role: RoleSystem, Content: "Та туслах ассистент."},
		{Role: RoleUser, Content: "Цаг захиалмаар байна."},
		{Role: RoleAssistant, FunctionCall: &FunctionCall{
			Name:      "check_availability",
			Arguments: map[string]any{"date": "2025-10-24"},
		}},
		{Role: RoleFunction, Name: "check_availability", Content: `{"available":true}`},
	}
	tools := []Tool{{Name: "check_availability", Description: "Цаг сул эсэхийг шалгах"}}

	prompt := buildPrompt(messages, tools)

	for _, want := range []string{
		`"function_call"`,
		"check_availability",
		"System Instructions:\nТа туслах ассистент.",
		"User: Цаг захиалмаар байна.",
		"Assistant called function check_availability",
		`Function check_availability result: {"available":true}`,
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestBuildPromptWithoutTools(t *testing.T) {
	prompt := buildPrompt([]Message{{Role: RoleUser, Content: "Сайн уу"}}, nil)
	if strings.Contains(prompt, "function_call") {
		t.Error("tool instructions present without tools")
	}
	if prompt != "User: Сайн уу" {
		t.Errorf("prompt = %q", prompt)
	}
}
