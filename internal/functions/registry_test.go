package functions

import (
	"context"
	"sort"
	"testing"

	"go.uber.org/zap"

	"github.com/tsagbook/booking-platform/internal/booking"
	"github.com/tsagbook/booking-platform/internal/model"
	"github.com/tsagbook/booking-platform/pkg/logger"
)

// memStore is a minimal in-memory booking.Store.
type memStore struct {
	bookings []model.Booking
}

func (s *memStore) ActiveOnDate(_ context.Context, date string) ([]model.Booking, error) {
	var out []model.Booking
	for _, b := range s.bookings {
		if b.Date == date && b.Status != model.StatusCancelled {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *memStore) Insert(_ context.Context, b *model.Booking) error {
	s.bookings = append(s.bookings, *b)
	return nil
}

func (s *memStore) GetByID(_ context.Context, id string) (*model.Booking, error) {
	for i := range s.bookings {
		if s.bookings[i].ID == id {
			b := s.bookings[i]
			return &b, nil
		}
	}
	return nil, booking.ErrNotFound
}

func (s *memStore) UpdateStatus(_ context.Context, id string, status model.Status) (*model.Booking, error) {
	for i := range s.bookings {
		if s.bookings[i].ID == id {
			s.bookings[i].Status = status
			b := s.bookings[i]
			return &b, nil
		}
	}
	return nil, booking.ErrNotFound
}

func (s *memStore) List(_ context.Context, userID, status string) ([]model.Booking, error) {
	var out []model.Booking
	for _, b := range s.bookings {
		if userID != "" && b.UserID != userID {
			continue
		}
		if status != "" && string(b.Status) != status {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

func (s *memStore) ConfirmedByUser(_ context.Context, userID string) ([]model.Booking, error) {
	var out []model.Booking
	for _, b := range s.bookings {
		if b.UserID == userID && b.Status == model.StatusConfirmed {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date > out[j].Date
		}
		return out[i].Time > out[j].Time
	})
	return out, nil
}

func newTestRegistry(store *memStore) *Registry {
	log := &logger.Logger{Logger: zap.NewNop()}
	engine := booking.NewEngine(store, booking.Options{}, log)
	return NewRegistry(engine, log)
}

func TestDeclarationsCoverOperationSet(t *testing.T) {
	r := newTestRegistry(&memStore{})

	decls := r.Declarations()
	if len(decls) != 5 {
		t.Fatalf("got %d declarations, want 5", len(decls))
	}

	want := map[string]bool{
		"check_availability":   false,
		"create_booking":       false,
		"cancel_booking":       false,
		"list_bookings":        false,
		"suggest_alternatives": false,
	}
	for _, d := range decls {
		if _, ok := want[d.Name]; !ok {
			t.Errorf("unexpected declaration %q", d.Name)
			continue
		}
		want[d.Name] = true
		if d.Description == "" {
			t.Errorf("%s has no description", d.Name)
		}
		if d.Parameters == nil {
			t.Errorf("%s has no parameter schema", d.Name)
		}
	}
	for name, seen := range want {
		if !seen {
			t.Errorf("missing declaration %q", name)
		}
	}
}

func TestDispatchUnknownFunction(t *testing.T) {
	r := newTestRegistry(&memStore{})

	result := r.Dispatch(context.Background(), "delete_everything", map[string]any{})
	if result["error"] != "unknown_function" {
		t.Errorf("error = %v, want unknown_function", result["error"])
	}
	if result["function"] != "delete_everything" {
		t.Errorf("function = %v", result["function"])
	}
}

func TestDispatchCheckAvailability(t *testing.T) {
	r := newTestRegistry(&memStore{})

	result := r.Dispatch(context.Background(), "check_availability", map[string]any{
		"date": "2025-10-24", "time": "10:00", "duration_minutes": float64(60),
	})
	if result["available"] != true {
		t.Errorf("result = %v", result)
	}
}

func TestDispatchInvalidTimeFormat(t *testing.T) {
	r := newTestRegistry(&memStore{})

	result := r.Dispatch(context.Background(), "check_availability", map[string]any{
		"date": "2025-10-24", "time": "шөнө",
	})
	if result["error"] != "invalid_time_format" {
		t.Errorf("error = %v, want invalid_time_format", result["error"])
	}
}

func TestDispatchCreateBookingConflict(t *testing.T) {
	store := &memStore{bookings: []model.Booking{{
		ID: "b1", UserID: "u1", Service: "массаж", Date: "2025-10-24",
		Time: "10:00", DurationMinutes: 90, Status: model.StatusConfirmed,
	}}}
	r := newTestRegistry(store)

	result := r.Dispatch(context.Background(), "create_booking", map[string]any{
		"user_id": "u2", "user_name": "Сараа", "service": "массаж",
		"date": "2025-10-24", "time": "10:30",
	})

	if result["success"] != false || result["error"] != "time_conflict" {
		t.Fatalf("result = %v, want time_conflict", result)
	}
	if _, ok := result["alternatives"]; !ok {
		t.Error("conflict result missing alternatives")
	}
	conflicts, ok := result["conflicts"].([]model.ConflictRef)
	if !ok || len(conflicts) != 1 {
		t.Errorf("conflicts = %v", result["conflicts"])
	}
}

func TestDispatchCancelWithoutIdentifier(t *testing.T) {
	r := newTestRegistry(&memStore{})

	result := r.Dispatch(context.Background(), "cancel_booking", map[string]any{})
	if result["error"] != "insufficient_info" {
		t.Errorf("error = %v, want insufficient_info", result["error"])
	}
}

func TestDispatchListBookings(t *testing.T) {
	store := &memStore{bookings: []model.Booking{{
		ID: "b1", UserID: "u1", Service: "үс засалт", Date: "2025-10-24",
		Time: "10:00", DurationMinutes: 60, Status: model.StatusConfirmed,
	}}}
	r := newTestRegistry(store)

	result := r.Dispatch(context.Background(), "list_bookings", map[string]any{
		"user_id": "u1",
	})
	if result["count"] != 1 {
		t.Errorf("count = %v, want 1", result["count"])
	}
}

func TestDispatchRoundTripCreateThenCancel(t *testing.T) {
	store := &memStore{}
	r := newTestRegistry(store)

	created := r.Dispatch(context.Background(), "create_booking", map[string]any{
		"user_id": "u1", "user_name": "Бат", "service": "массаж",
		"date": "2025-10-24", "time": "10:00",
	})
	if created["success"] != true {
		t.Fatalf("create result = %v", created)
	}

	cancelled := r.Dispatch(context.Background(), "cancel_booking", map[string]any{
		"user_id": "u1",
	})
	if cancelled["success"] != true {
		t.Fatalf("cancel result = %v", cancelled)
	}
	b, ok := cancelled["booking"].(*model.Booking)
	if !ok || b.Status != model.StatusCancelled {
		t.Errorf("booking = %v", cancelled["booking"])
	}
}
