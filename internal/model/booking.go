// Package model defines data structures for the booking platform.
package model

import (
	"time"
)

// Status represents the lifecycle status of a booking.
type Status string

const (
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
	StatusPending   Status = "pending"
)

// Booking represents a service appointment.
type Booking struct {
	ID              string    `json:"id"`
	UserID          string    `json:"user_id"`
	UserName        string    `json:"user_name"`
	Phone           string    `json:"phone"`
	Service         string    `json:"service"`
	Date            string    `json:"date"` // YYYY-MM-DD
	Time            string    `json:"time"` // HH:MM
	DurationMinutes int       `json:"duration_minutes"`
	Status          Status    `json:"status"`
	CreatedAt       time.Time `json:"created_at"`
}

// ConflictRef identifies a booking that overlaps a requested interval.
type ConflictRef struct {
	BookingID string `json:"booking_id"`
	Time      string `json:"time"`
	Service   string `json:"service"`
}

// Availability is the result of a slot availability check.
type Availability struct {
	Available bool          `json:"available"`
	Conflicts []ConflictRef `json:"conflicts"`
}

// Slot is a candidate appointment interval.
type Slot struct {
	Date     string `json:"date"`
	Time     string `json:"time"`
	Datetime string `json:"datetime"`
}

// CreateBookingRequest carries the fields needed to create a booking.
// DurationMinutes of zero means "use the service default".
type CreateBookingRequest struct {
	UserID          string `json:"user_id"`
	UserName        string `json:"user_name"`
	Phone           string `json:"phone"`
	Service         string `json:"service"`
	Date            string `json:"date"`
	Time            string `json:"time"`
	DurationMinutes int    `json:"duration_minutes,omitempty"`
}

// ListBookingsResponse is the response for listing bookings.
type ListBookingsResponse struct {
	Bookings []Booking `json:"bookings"`
	Count    int       `json:"count"`
}
