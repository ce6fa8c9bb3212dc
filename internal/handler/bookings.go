package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/tsagbook/booking-platform/internal/booking"
	"github.com/tsagbook/booking-platform/internal/middleware"
	"github.com/tsagbook/booking-platform/internal/model"
	"github.com/tsagbook/booking-platform/pkg/logger"
)

// BookingHandler exposes the scheduling engine over REST, for clients
// that integrate directly instead of through the conversational channel.
type BookingHandler struct {
	engine *booking.Engine
	logger *logger.Logger
}

// NewBookingHandler creates a booking handler.
func NewBookingHandler(engine *booking.Engine, log *logger.Logger) *BookingHandler {
	return &BookingHandler{engine: engine, logger: log}
}

// List handles GET /api/v1/bookings.
func (h *BookingHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	status := r.URL.Query().Get("status")

	bookings, err := h.engine.ListBookings(r.Context(), userID, status)
	if err != nil {
		h.writeEngineError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, model.ListBookingsResponse{
		Bookings: bookings,
		Count:    len(bookings),
	})
}

// Get handles GET /api/v1/bookings/{bookingID}.
func (h *BookingHandler) Get(w http.ResponseWriter, r *http.Request) {
	bookingID := chi.URLParam(r, "bookingID")
	if err := middleware.ValidateBookingID(bookingID); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	b, err := h.engine.GetBooking(r.Context(), bookingID)
	if err != nil {
		h.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// Create handles POST /api/v1/bookings.
func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.CreateBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.UserName == "" || req.Service == "" {
		writeError(w, http.StatusBadRequest, "user_name and service are required")
		return
	}
	if err := middleware.ValidateDate(req.Date); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := middleware.ValidateTime(req.Time); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.UserID == "" {
		req.UserID = defaultUserID
	}

	b, err := h.engine.CreateBooking(r.Context(), &req)
	if err != nil {
		h.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, b)
}

// Cancel handles DELETE /api/v1/bookings/{bookingID}.
func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	bookingID := chi.URLParam(r, "bookingID")
	if err := middleware.ValidateBookingID(bookingID); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	b, err := h.engine.CancelBooking(r.Context(), bookingID, "")
	if err != nil {
		h.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// Availability handles GET /api/v1/availability.
func (h *BookingHandler) Availability(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	startTime := r.URL.Query().Get("time")
	if err := middleware.ValidateDate(date); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := middleware.ValidateTime(startTime); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	duration := 0
	if raw := r.URL.Query().Get("duration_minutes"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, "duration_minutes must be a positive integer")
			return
		}
		duration = parsed
	}

	availability, err := h.engine.CheckAvailability(r.Context(), date, startTime, duration)
	if err != nil {
		h.writeEngineError(w, err)
		return
	}

	if availability.Available {
		writeJSON(w, http.StatusOK, availability)
		return
	}

	// Save the unavailable caller a round trip by attaching suggestions.
	alternatives, err := h.engine.SuggestAlternatives(r.Context(), date, startTime, duration, 0)
	if err != nil {
		alternatives = []model.Slot{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"available":    false,
		"conflicts":    availability.Conflicts,
		"alternatives": alternatives,
	})
}

// writeEngineError maps engine errors onto HTTP responses. Storage
// detail is logged server-side only.
func (h *BookingHandler) writeEngineError(w http.ResponseWriter, err error) {
	var conflictErr *booking.ConflictError
	var storageErr *booking.StorageError

	switch {
	case errors.As(err, &conflictErr):
		writeJSON(w, http.StatusConflict, map[string]interface{}{
			"error":        "time_conflict",
			"conflicts":    conflictErr.Conflicts,
			"alternatives": conflictErr.Alternatives,
		})
	case errors.Is(err, booking.ErrInvalidTimeFormat):
		writeError(w, http.StatusBadRequest, "invalid date or time format")
	case errors.Is(err, booking.ErrNotFound):
		writeError(w, http.StatusNotFound, "booking not found")
	case errors.Is(err, booking.ErrNoBookingsFound):
		writeError(w, http.StatusNotFound, "no bookings found")
	case errors.Is(err, booking.ErrInsufficientInfo):
		writeError(w, http.StatusBadRequest, "booking_id or user_id is required")
	case errors.As(err, &storageErr):
		h.logger.Error("storage failure", zap.String("op", storageErr.Op), zap.Error(storageErr.Err))
		writeError(w, http.StatusInternalServerError, "storage error")
	default:
		h.logger.Error("unexpected engine failure", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
