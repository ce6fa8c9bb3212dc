// Package functions declares the fixed operation set offered to the
// language model and dispatches validated invocations to the scheduling
// engine.
package functions

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/tsagbook/booking-platform/internal/booking"
	"github.com/tsagbook/booking-platform/internal/llm"
	"github.com/tsagbook/booking-platform/internal/model"
	"github.com/tsagbook/booking-platform/pkg/logger"
	"github.com/tsagbook/booking-platform/pkg/metrics"
)

// Error codes carried in structured dispatch results.
const (
	codeInvalidTimeFormat = "invalid_time_format"
	codeTimeConflict      = "time_conflict"
	codeBookingNotFound   = "booking_not_found"
	codeNoBookingsFound   = "no_bookings_found"
	codeInsufficientInfo  = "insufficient_info"
	codeStorageError      = "storage_error"
	codeUnknownFunction   = "unknown_function"
)

// Registry dispatches named operations against the scheduling engine.
// Dispatch always produces a result object; engine failures are converted
// into structured error results, never propagated.
type Registry struct {
	engine *booking.Engine
	decls  []llm.Tool
	logger *logger.Logger
}

// NewRegistry creates the registry with its fixed operation set.
func NewRegistry(engine *booking.Engine, log *logger.Logger) *Registry {
	return &Registry{
		engine: engine,
		decls:  declarations(),
		logger: log,
	}
}

// Declarations returns the capability declaration forwarded to the model.
// The list is stable across calls.
func (r *Registry) Declarations() []llm.Tool {
	return r.decls
}

// Dispatch validates the function name and invokes the corresponding
// engine operation.
func (r *Registry) Dispatch(ctx context.Context, name string, args map[string]any) map[string]any {
	var result map[string]any

	switch name {
	case "check_availability":
		result = r.checkAvailability(ctx, args)
	case "create_booking":
		result = r.createBooking(ctx, args)
	case "cancel_booking":
		result = r.cancelBooking(ctx, args)
	case "list_bookings":
		result = r.listBookings(ctx, args)
	case "suggest_alternatives":
		result = r.suggestAlternatives(ctx, args)
	default:
		r.logger.Warn("unknown function requested by model", zap.String("function", name))
		metrics.RecordDispatch(name, "unknown")
		return map[string]any{"error": codeUnknownFunction, "function": name}
	}

	status := "ok"
	if _, failed := result["error"]; failed {
		status = "error"
	}
	metrics.RecordDispatch(name, status)
	return result
}

func (r *Registry) checkAvailability(ctx context.Context, args map[string]any) map[string]any {
	availability, err := r.engine.CheckAvailability(ctx,
		stringArg(args, "date"),
		stringArg(args, "time"),
		intArg(args, "duration_minutes", 0),
	)
	if err != nil {
		return errorResult(err)
	}
	return map[string]any{
		"available": availability.Available,
		"conflicts": availability.Conflicts,
	}
}

func (r *Registry) createBooking(ctx context.Context, args map[string]any) map[string]any {
	b, err := r.engine.CreateBooking(ctx, &model.CreateBookingRequest{
		UserID:          stringArg(args, "user_id"),
		UserName:        stringArg(args, "user_name"),
		Phone:           stringArg(args, "phone"),
		Service:         stringArg(args, "service"),
		Date:            stringArg(args, "date"),
		Time:            stringArg(args, "time"),
		DurationMinutes: intArg(args, "duration_minutes", 0),
	})
	if err != nil {
		return errorResult(err)
	}
	return map[string]any{"success": true, "booking": b}
}

func (r *Registry) cancelBooking(ctx context.Context, args map[string]any) map[string]any {
	b, err := r.engine.CancelBooking(ctx,
		stringArg(args, "booking_id"),
		stringArg(args, "user_id"),
	)
	if err != nil {
		return errorResult(err)
	}
	return map[string]any{"success": true, "booking": b}
}

func (r *Registry) listBookings(ctx context.Context, args map[string]any) map[string]any {
	bookings, err := r.engine.ListBookings(ctx,
		stringArg(args, "user_id"),
		stringArg(args, "status"),
	)
	if err != nil {
		return errorResult(err)
	}
	return map[string]any{"bookings": bookings, "count": len(bookings)}
}

func (r *Registry) suggestAlternatives(ctx context.Context, args map[string]any) map[string]any {
	slots, err := r.engine.SuggestAlternatives(ctx,
		stringArg(args, "date"),
		stringArg(args, "time"),
		intArg(args, "duration_minutes", 0),
		intArg(args, "count", 0),
	)
	if err != nil {
		return errorResult(err)
	}
	return map[string]any{"alternatives": slots}
}

// errorResult converts an engine failure into a structured result.
func errorResult(err error) map[string]any {
	var conflict *booking.ConflictError
	if errors.As(err, &conflict) {
		return map[string]any{
			"success":      false,
			"error":        codeTimeConflict,
			"conflicts":    conflict.Conflicts,
			"alternatives": conflict.Alternatives,
		}
	}

	var storage *booking.StorageError
	if errors.As(err, &storage) {
		// Detail stays server-side; the model only sees the code.
		return map[string]any{"success": false, "error": codeStorageError}
	}

	code := codeStorageError
	switch {
	case errors.Is(err, booking.ErrInvalidTimeFormat):
		code = codeInvalidTimeFormat
	case errors.Is(err, booking.ErrNotFound):
		code = codeBookingNotFound
	case errors.Is(err, booking.ErrNoBookingsFound):
		code = codeNoBookingsFound
	case errors.Is(err, booking.ErrInsufficientInfo):
		code = codeInsufficientInfo
	}
	return map[string]any{"success": false, "error": code}
}

// stringArg reads a string argument, tolerating absence.
func stringArg(args map[string]any, key string) string {
	if v, ok := args[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// intArg reads an integer argument. JSON numbers decode as float64.
func intArg(args map[string]any, key string, fallback int) int {
	switch v := args[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	default:
		return fallback
	}
}
