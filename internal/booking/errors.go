package booking

import (
	"errors"
	"fmt"

	"github.com/tsagbook/booking-platform/internal/model"
)

var (
	// ErrInvalidTimeFormat reports an unparseable date or time input.
	ErrInvalidTimeFormat = errors.New("invalid date or time format")

	// ErrNotFound reports a missing booking id.
	ErrNotFound = errors.New("booking not found")

	// ErrNoBookingsFound reports that a requester has no confirmed bookings.
	ErrNoBookingsFound = errors.New("no bookings found")

	// ErrInsufficientInfo reports a cancel request with no usable selector.
	ErrInsufficientInfo = errors.New("insufficient info to select a booking")
)

// ConflictError rejects a booking whose interval overlaps existing
// appointments. It carries the conflicting set and freshly computed
// alternatives so callers need not issue a second round-trip.
type ConflictError struct {
	Conflicts    []model.ConflictRef
	Alternatives []model.Slot
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("time conflict with %d existing booking(s)", len(e.Conflicts))
}

// StorageError wraps an underlying persistence failure.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error during %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
