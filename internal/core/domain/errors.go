package domain

import (
	"errors"
	"fmt"
)

// Booking workflow errors.
var (
	ErrValidation         = errors.New("validation error")
	ErrSlotUnavailable    = errors.New("requested time slot is unavailable")
	ErrSlotBusy           = errors.New("requested time slot is being booked by another request; retry shortly")
	ErrGatewayUnreachable = errors.New("calendar service unreachable")
	ErrGatewayRejected    = errors.New("calendar service rejected the request")
	ErrPersistence        = errors.New("persistence error")
	ErrLockTimeout        = errors.New("timed out waiting for slot lock")
)

// Lookup errors.
var (
	ErrBookingNotFound = errors.New("booking not found")
	ErrServiceNotFound = errors.New("service not found")
	ErrReviewNotFound  = errors.New("review not found")
)

// Auth errors.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidResetToken  = errors.New("invalid or expired reset token")
	ErrForbidden          = errors.New("access forbidden")
)

// ValidationError describes malformed caller input. It matches ErrValidation
// under errors.Is.
type ValidationError struct {
	Field string
	msg   string
}

// NewValidationError returns a ValidationError for field.
func NewValidationError(field, msg string) *ValidationError {
	return &ValidationError{Field: field, msg: msg}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.msg
	}
	return e.Field + ": " + e.msg
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// UnconfirmedBookingError is returned when the booking record was persisted
// but could not be confirmed: either the calendar event was not created or
// the confirmation could not be written. The booking stays pending.
type UnconfirmedBookingError struct {
	Booking *Booking
	Err     error
}

func (e *UnconfirmedBookingError) Error() string {
	return fmt.Sprintf("booking %s saved as pending: %v", e.Booking.ID, e.Err)
}

func (e *UnconfirmedBookingError) Unwrap() error {
	return e.Err
}

// Persistence wraps a storage failure so that it matches ErrPersistence.
func Persistence(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", op, ErrPersistence, err)
}
