// Package booking implements the appointment scheduling engine: slot
// availability, conflict detection, and alternative-time suggestion.
package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tsagbook/booking-platform/internal/model"
	"github.com/tsagbook/booking-platform/pkg/logger"
	"github.com/tsagbook/booking-platform/pkg/metrics"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"

	// Alternative slots are scanned within ±3 hours of the requested
	// time in 30-minute steps, earliest candidate first.
	altWindowMinutes = 180
	altStepMinutes   = 30

	defaultAlternatives = 3
)

// CancelPolicy controls how cancel-by-requester-id resolves when no
// booking id is supplied.
type CancelPolicy string

const (
	// CancelLatest cancels the requester's most recent confirmed booking.
	CancelLatest CancelPolicy = "latest"

	// CancelRequireID rejects requester-only cancellation as ambiguous.
	CancelRequireID CancelPolicy = "require-id"
)

// Store is the narrow persistence contract the engine depends on. Each
// write is expected to be transactional: it either fully commits or
// leaves nothing visible.
type Store interface {
	// ActiveOnDate returns all non-cancelled bookings on a date.
	ActiveOnDate(ctx context.Context, date string) ([]model.Booking, error)

	// Insert persists a new booking.
	Insert(ctx context.Context, b *model.Booking) error

	// GetByID returns a booking or ErrNotFound.
	GetByID(ctx context.Context, id string) (*model.Booking, error)

	// UpdateStatus flips a booking's status and returns the updated
	// record, or ErrNotFound.
	UpdateStatus(ctx context.Context, id string, status model.Status) (*model.Booking, error)

	// List returns bookings matching the optional filters, ordered by
	// (date, time) ascending.
	List(ctx context.Context, userID, status string) ([]model.Booking, error)

	// ConfirmedByUser returns a requester's confirmed bookings ordered
	// by (date, time) descending.
	ConfirmedByUser(ctx context.Context, userID string) ([]model.Booking, error)
}

// EventPublisher receives booking lifecycle notifications. Publication is
// best effort and must not affect the booking outcome.
type EventPublisher interface {
	BookingCreated(ctx context.Context, b *model.Booking)
	BookingCancelled(ctx context.Context, b *model.Booking)
}

// Engine computes slot availability and manages booking lifecycle. It is
// stateless with respect to in-process memory; the store is the only
// shared mutable resource. The check-then-write sequence in CreateBooking
// is not serialized against concurrent writers.
type Engine struct {
	store         Store
	services      map[string]int
	businessStart int
	businessEnd   int
	cancelPolicy  CancelPolicy
	events        EventPublisher
	logger        *logger.Logger
}

// Options configures an Engine.
type Options struct {
	// Services maps service names to default durations in minutes.
	// Nil selects the built-in catalog.
	Services map[string]int

	// BusinessStartHour is the inclusive opening hour.
	BusinessStartHour int

	// BusinessEndHour is the exclusive closing hour.
	BusinessEndHour int

	// CancelPolicy defaults to CancelLatest.
	CancelPolicy CancelPolicy

	// Events may be nil.
	Events EventPublisher
}

// NewEngine creates a scheduling engine over the given store.
func NewEngine(store Store, opts Options, log *logger.Logger) *Engine {
	services := opts.Services
	if services == nil {
		services = DefaultServices()
	}
	start, end := opts.BusinessStartHour, opts.BusinessEndHour
	if end <= start {
		start, end = 9, 18
	}
	policy := opts.CancelPolicy
	if policy != CancelRequireID {
		policy = CancelLatest
	}

	return &Engine{
		store:         store,
		services:      services,
		businessStart: start,
		businessEnd:   end,
		cancelPolicy:  policy,
		events:        opts.Events,
		logger:        log,
	}
}

// CheckAvailability reports whether the requested interval is free of
// overlap with non-cancelled bookings on the same date. Read-only.
func (e *Engine) CheckAvailability(ctx context.Context, date, startTime string, durationMinutes int) (*model.Availability, error) {
	if durationMinutes <= 0 {
		durationMinutes = defaultDurationMinutes
	}

	requestedStart, err := parseDateTime(date, startTime)
	if err != nil {
		return nil, err
	}
	requestedEnd := requestedStart.Add(time.Duration(durationMinutes) * time.Minute)

	existing, err := e.store.ActiveOnDate(ctx, date)
	if err != nil {
		return nil, &StorageError{Op: "query", Err: err}
	}

	conflicts := []model.ConflictRef{}
	for _, b := range existing {
		bookingStart, err := parseDateTime(b.Date, b.Time)
		if err != nil {
			e.logger.Warn("skipping booking with unparseable time",
				zap.String("booking_id", b.ID), zap.String("time", b.Time))
			continue
		}
		bookingEnd := bookingStart.Add(time.Duration(b.DurationMinutes) * time.Minute)

		// Half-open interval overlap: [a, b) and [c, d) conflict iff a < d && b > c.
		if requestedStart.Before(bookingEnd) && requestedEnd.After(bookingStart) {
			conflicts = append(conflicts, model.ConflictRef{
				BookingID: b.ID,
				Time:      b.Time,
				Service:   b.Service,
			})
		}
	}

	return &model.Availability{
		Available: len(conflicts) == 0,
		Conflicts: conflicts,
	}, nil
}

// SuggestAlternatives scans candidate start times around the requested
// time and returns up to count available slots inside business hours.
// Candidates are evaluated earliest first; the result may go stale
// immediately under concurrent writes.
func (e *Engine) SuggestAlternatives(ctx context.Context, date, startTime string, durationMinutes, count int) ([]model.Slot, error) {
	if durationMinutes <= 0 {
		durationMinutes = defaultDurationMinutes
	}
	if count <= 0 {
		count = defaultAlternatives
	}

	requested, err := parseDateTime(date, startTime)
	if err != nil {
		return nil, err
	}

	alternatives := []model.Slot{}
	for offset := -altWindowMinutes; offset <= altWindowMinutes; offset += altStepMinutes {
		if len(alternatives) >= count {
			break
		}

		candidate := requested.Add(time.Duration(offset) * time.Minute)
		if candidate.Hour() < e.businessStart || candidate.Hour() >= e.businessEnd {
			continue
		}

		candidateDate := candidate.Format(dateLayout)
		candidateTime := candidate.Format(timeLayout)

		availability, err := e.CheckAvailability(ctx, candidateDate, candidateTime, durationMinutes)
		if err != nil {
			return nil, err
		}
		if availability.Available {
			alternatives = append(alternatives, model.Slot{
				Date:     candidateDate,
				Time:     candidateTime,
				Datetime: candidate.Format("2006-01-02T15:04:05"),
			})
		}
	}

	return alternatives, nil
}

// CreateBooking re-validates availability, then persists a confirmed
// booking. On conflict it fails with a ConflictError carrying the
// conflicting set and suggested alternatives.
func (e *Engine) CreateBooking(ctx context.Context, req *model.CreateBookingRequest) (*model.Booking, error) {
	duration := req.DurationMinutes
	if duration <= 0 {
		duration = e.serviceDuration(req.Service)
	}

	availability, err := e.CheckAvailability(ctx, req.Date, req.Time, duration)
	if err != nil {
		return nil, err
	}
	if !availability.Available {
		alternatives, err := e.SuggestAlternatives(ctx, req.Date, req.Time, duration, defaultAlternatives)
		if err != nil {
			alternatives = []model.Slot{}
		}
		metrics.BookingConflictsTotal.Inc()
		return nil, &ConflictError{
			Conflicts:    availability.Conflicts,
			Alternatives: alternatives,
		}
	}

	b := &model.Booking{
		ID:              uuid.New().String(),
		UserID:          req.UserID,
		UserName:        req.UserName,
		Phone:           req.Phone,
		Service:         req.Service,
		Date:            req.Date,
		Time:            req.Time,
		DurationMinutes: duration,
		Status:          model.StatusConfirmed,
		CreatedAt:       time.Now().UTC(),
	}

	if err := e.store.Insert(ctx, b); err != nil {
		return nil, &StorageError{Op: "insert", Err: err}
	}

	metrics.BookingsTotal.WithLabelValues("create").Inc()
	e.logger.Info("booking created",
		zap.String("booking_id", b.ID),
		zap.String("service", b.Service),
		zap.String("date", b.Date),
		zap.String("time", b.Time),
	)
	if e.events != nil {
		e.events.BookingCreated(ctx, b)
	}

	return b, nil
}

// CancelBooking cancels by booking id when given, otherwise by requester
// id according to the configured policy. Cancelling an already-cancelled
// id succeeds and is a no-op in effect.
func (e *Engine) CancelBooking(ctx context.Context, bookingID, userID string) (*model.Booking, error) {
	switch {
	case bookingID != "":
		return e.cancelByID(ctx, bookingID)
	case userID != "":
		if e.cancelPolicy == CancelRequireID {
			return nil, ErrInsufficientInfo
		}
		return e.cancelLatestConfirmed(ctx, userID)
	default:
		return nil, ErrInsufficientInfo
	}
}

func (e *Engine) cancelByID(ctx context.Context, bookingID string) (*model.Booking, error) {
	updated, err := e.store.UpdateStatus(ctx, bookingID, model.StatusCancelled)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, &StorageError{Op: "update", Err: err}
	}

	metrics.BookingsTotal.WithLabelValues("cancel").Inc()
	e.logger.Info("booking cancelled", zap.String("booking_id", updated.ID))
	if e.events != nil {
		e.events.BookingCancelled(ctx, updated)
	}
	return updated, nil
}

func (e *Engine) cancelLatestConfirmed(ctx context.Context, userID string) (*model.Booking, error) {
	confirmed, err := e.store.ConfirmedByUser(ctx, userID)
	if err != nil {
		return nil, &StorageError{Op: "query", Err: err}
	}
	if len(confirmed) == 0 {
		return nil, ErrNoBookingsFound
	}
	return e.cancelByID(ctx, confirmed[0].ID)
}

// ListBookings returns bookings matching the optional filters, ordered by
// (date, time) ascending. Unpaginated.
func (e *Engine) ListBookings(ctx context.Context, userID, status string) ([]model.Booking, error) {
	bookings, err := e.store.List(ctx, userID, status)
	if err != nil {
		return nil, &StorageError{Op: "query", Err: err}
	}
	return bookings, nil
}

// GetBooking returns a single booking by id.
func (e *Engine) GetBooking(ctx context.Context, id string) (*model.Booking, error) {
	b, err := e.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, &StorageError{Op: "query", Err: err}
	}
	return b, nil
}

func (e *Engine) serviceDuration(service string) int {
	if minutes, ok := e.services[strings.ToLower(strings.TrimSpace(service))]; ok {
		return minutes
	}
	return defaultDurationMinutes
}

func parseDateTime(date, startTime string) (time.Time, error) {
	t, err := time.Parse(dateLayout+"T"+timeLayout, date+"T"+startTime)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q %q", ErrInvalidTimeFormat, date, startTime)
	}
	return t, nil
}
