package middleware

import (
	"errors"
	"regexp"
	"unicode/utf8"

	"github.com/google/uuid"
)

var (
	datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	timePattern = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)
)

// ValidateMessageContent validates chat message content.
func ValidateMessageContent(content string) error {
	if len(content) == 0 {
		return errors.New("message cannot be empty")
	}
	if len(content) > 100000 { // ~100KB limit
		return errors.New("message exceeds maximum length")
	}
	if !utf8.ValidString(content) {
		return errors.New("message must be valid UTF-8")
	}
	return nil
}

// ValidateBookingID validates a booking ID.
func ValidateBookingID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return errors.New("invalid booking ID format")
	}
	return nil
}

// ValidateDate validates a YYYY-MM-DD date string shape.
func ValidateDate(date string) error {
	if !datePattern.MatchString(date) {
		return errors.New("date must be in YYYY-MM-DD format")
	}
	return nil
}

// ValidateTime validates a HH:MM 24-hour time string.
func ValidateTime(t string) error {
	if !timePattern.MatchString(t) {
		return errors.New("time must be in HH:MM format")
	}
	return nil
}

// ValidateUserID validates a user identifier.
func ValidateUserID(id string) error {
	if len(id) == 0 {
		return errors.New("user ID cannot be empty")
	}
	if len(id) > 64 {
		return errors.New("user ID exceeds maximum length")
	}
	return nil
}
