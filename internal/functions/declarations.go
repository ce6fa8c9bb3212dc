package functions

import (
	"github.com/tsagbook/booking-platform/internal/llm"
)

// declarations builds the fixed capability declaration. Argument schemas
// use JSON Schema, which OpenAI consumes natively and the prompted
// adapters render into text.
func declarations() []llm.Tool {
	return []llm.Tool{
		{
			Name:        "check_availability",
			Description: "Check if a time slot is available for booking",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"date": map[string]any{
						"type":        "string",
						"description": "Date in YYYY-MM-DD format",
					},
					"time": map[string]any{
						"type":        "string",
						"description": "Time in HH:MM format (24-hour)",
					},
					"duration_minutes": map[string]any{
						"type":        "integer",
						"description": "Duration in minutes",
						"default":     60,
					},
				},
				"required": []string{"date", "time"},
			},
		},
		{
			Name:        "create_booking",
			Description: "Create a new booking appointment",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"user_id":          map[string]any{"type": "string"},
					"user_name":        map[string]any{"type": "string"},
					"phone":            map[string]any{"type": "string"},
					"service":          map[string]any{"type": "string"},
					"date":             map[string]any{"type": "string", "description": "YYYY-MM-DD"},
					"time":             map[string]any{"type": "string", "description": "HH:MM"},
					"duration_minutes": map[string]any{"type": "integer", "default": 60},
				},
				"required": []string{"user_id", "user_name", "phone", "service", "date", "time"},
			},
		},
		{
			Name:        "cancel_booking",
			Description: "Cancel an existing booking",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"booking_id": map[string]any{"type": "string"},
					"user_id":    map[string]any{"type": "string"},
				},
			},
		},
		{
			Name:        "list_bookings",
			Description: "List bookings for a user",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"user_id": map[string]any{"type": "string"},
					"status":  map[string]any{"type": "string"},
				},
			},
		},
		{
			Name:        "suggest_alternatives",
			Description: "Suggest alternative time slots",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"date":             map[string]any{"type": "string"},
					"time":             map[string]any{"type": "string"},
					"duration_minutes": map[string]any{"type": "integer", "default": 60},
					"count":            map[string]any{"type": "integer", "default": 3},
				},
				"required": []string{"date", "time"},
			},
		},
	}
}
