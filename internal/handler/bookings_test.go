package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tsagbook/booking-platform/internal/booking"
	"github.com/tsagbook/booking-platform/internal/model"
	"github.com/tsagbook/booking-platform/pkg/logger"
)

func testLogger() *logger.Logger {
	return &logger.Logger{Logger: zap.NewNop()}
}

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
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].Time < out[j].Time
	})
	return out, nil
}

func (s *memStore) ConfirmedByUser(_ context.Context, userID string) ([]model.Booking, error) {
	var out []model.Booking
	for _, b := range s.bookings {
		if b.UserID == userID && b.Status == model.StatusConfirmed {
			out = append(out, b)
		}
	}
	return out, nil
}

func newTestRouter(store *memStore) http.Handler {
	log := testLogger()
	engine := booking.NewEngine(store, booking.Options{}, log)
	h := NewBookingHandler(engine, log)

	r := chi.NewRouter()
	r.Get("/availability", h.Availability)
	r.Route("/bookings", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/{bookingID}", h.Get)
		r.Delete("/{bookingID}", h.Cancel)
	})
	return r
}

func TestCreateBookingEndpoint(t *testing.T) {
	router := newTestRouter(&memStore{})

	body, _ := json.Marshal(model.CreateBookingRequest{
		UserID: "u1", UserName: "Бат", Phone: "99112233",
		Service: "массаж", Date: "2025-10-24", Time: "10:00",
	})
	req := httptest.NewRequest(http.MethodPost, "/bookings/", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var got model.Booking
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.DurationMinutes != 90 {
		t.Errorf("duration = %d, want 90 for массаж", got.DurationMinutes)
	}
	if got.Status != model.StatusConfirmed {
		t.Errorf("status = %s", got.Status)
	}
}

func TestCreateBookingConflictEndpoint(t *testing.T) {
	store := &memStore{bookings: []model.Booking{{
		ID: uuid.New().String(), UserID: "u1", UserName: "Бат",
		Service: "массаж", Date: "2025-10-24", Time: "10:00",
		DurationMinutes: 90, Status: model.StatusConfirmed,
	}}}
	router := newTestRouter(store)

	body, _ := json.Marshal(model.CreateBookingRequest{
		UserID: "u2", UserName: "Сараа", Service: "массаж",
		Date: "2025-10-24", Time: "10:30",
	})
	req := httptest.NewRequest(http.MethodPost, "/bookings/", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409, body %s", rec.Code, rec.Body.String())
	}

	var got struct {
		Error        string              `json:"error"`
		Conflicts    []model.ConflictRef `json:"conflicts"`
		Alternatives []model.Slot        `json:"alternatives"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.Error != "time_conflict" {
		t.Errorf("error = %q", got.Error)
	}
	if len(got.Conflicts) != 1 {
		t.Errorf("conflicts = %v", got.Conflicts)
	}
	if len(got.Alternatives) == 0 {
		t.Error("expected alternatives in conflict response")
	}
}

func TestCreateBookingValidation(t *testing.T) {
	router := newTestRouter(&memStore{})

	tests := []struct {
		name string
		req  model.CreateBookingRequest
	}{
		{"missing name", model.CreateBookingRequest{Service: "массаж", Date: "2025-10-24", Time: "10:00"}},
		{"bad date", model.CreateBookingRequest{UserName: "Бат", Service: "массаж", Date: "24.10.2025", Time: "10:00"}},
		{"bad time", model.CreateBookingRequest{UserName: "Бат", Service: "массаж", Date: "2025-10-24", Time: "25:00"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			body, _ := json.Marshal(tc.req)
			req := httptest.NewRequest(http.MethodPost, "/bookings/", bytes.NewReader(body))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestGetBookingEndpoint(t *testing.T) {
	id := uuid.New().String()
	store := &memStore{bookings: []model.Booking{{
		ID: id, UserID: "u1", UserName: "Бат", Service: "массаж",
		Date: "2025-10-24", Time: "10:00", DurationMinutes: 90,
		Status: model.StatusConfirmed,
	}}}
	router := newTestRouter(store)

	req := httptest.NewRequest(http.MethodGet, "/bookings/"+id, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	missing := httptest.NewRequest(http.MethodGet, "/bookings/"+uuid.New().String(), nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, missing)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}

	badID := httptest.NewRequest(http.MethodGet, "/bookings/not-a-uuid", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, badID)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for malformed id", rec.Code)
	}
}

func TestCancelBookingEndpoint(t *testing.T) {
	id := uuid.New().String()
	store := &memStore{bookings: []model.Booking{{
		ID: id, UserID: "u1", UserName: "Бат", Service: "массаж",
		Date: "2025-10-24", Time: "10:00", DurationMinutes: 90,
		Status: model.StatusConfirmed,
	}}}
	router := newTestRouter(store)

	req := httptest.NewRequest(http.MethodDelete, "/bookings/"+id, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var got model.Booking
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.Status != model.StatusCancelled {
		t.Errorf("status = %s, want cancelled", got.Status)
	}
}

func TestAvailabilityEndpoint(t *testing.T) {
	store := &memStore{bookings: []model.Booking{{
		ID: uuid.New().String(), UserID: "u1", UserName: "Бат",
		Service: "массаж", Date: "2025-10-24", Time: "10:00",
		DurationMinutes: 90, Status: model.StatusConfirmed,
	}}}
	router := newTestRouter(store)

	req := httptest.NewRequest(http.MethodGet, "/availability?date=2025-10-24&time=14:00", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var free model.Availability
	if err := json.Unmarshal(rec.Body.Bytes(), &free); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !free.Available {
		t.Errorf("14:00 should be free: %v", free.Conflicts)
	}

	req = httptest.NewRequest(http.MethodGet, "/availability?date=2025-10-24&time=10:30", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var busy struct {
		Available    bool         `json:"available"`
		Alternatives []model.Slot `json:"alternatives"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &busy); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if busy.Available {
		t.Error("10:30 should conflict with the 10:00 massage")
	}
	if len(busy.Alternatives) == 0 {
		t.Error("expected alternatives for busy slot")
	}
}

func TestListBookingsEndpoint(t *testing.T) {
	store := &memStore{bookings: []model.Booking{
		{ID: uuid.New().String(), UserID: "u1", Service: "массаж",
			Date: "2025-10-24", Time: "10:00", DurationMinutes: 90,
			Status: model.StatusConfirmed},
		{ID: uuid.New().String(), UserID: "u2", Service: "маникюр",
			Date: "2025-10-24", Time: "12:00", DurationMinutes: 45,
			Status: model.StatusConfirmed},
	}}
	router := newTestRouter(store)

	req := httptest.NewRequest(http.MethodGet, "/bookings/?user_id=u1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var got model.ListBookingsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.Count != 1 {
		t.Errorf("count = %d, want 1", got.Count)
	}
}
