package ports

import (
	"context"
	"time"

	"github.com/hearthline/homeservices-api/internal/core/domain"
)

// BookingRequestInput is the DTO passed from the transport layer to BookingService.
type BookingRequestInput struct {
	ServiceID       string
	ClientName      string
	ClientEmail     string
	ClientPhone     string
	AppointmentDate string // ISO-8601 with offset
	Notes           string
	IdempotencyKey  string
}

// BookingResult is returned after a booking request.
type BookingResult struct {
	Booking *domain.Booking
	// AlreadyExisted is true when the Idempotency-Key matched an existing booking.
	AlreadyExisted bool
}

// AvailabilityInput asks for the free windows of one day.
type AvailabilityInput struct {
	Date      string // YYYY-MM-DD in the business time zone
	ServiceID string
}

// ListBookingsInput carries the parameters for the staff list endpoint.
type ListBookingsInput struct {
	Status   string
	DateFrom time.Time
	DateTo   time.Time
	Page     int
	Limit    int
}

// ListBookingsResult is returned by ListBookings.
type ListBookingsResult struct {
	Items      []*domain.Booking
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

// BookingService defines the use-case operations for bookings.
type BookingService interface {
	RequestBooking(ctx context.Context, input BookingRequestInput) (*BookingResult, error)
	Availability(ctx context.Context, input AvailabilityInput) ([]domain.Window, error)
	GetBooking(ctx context.Context, id string) (*domain.Booking, error)
	ListBookings(ctx context.Context, input ListBookingsInput) (*ListBookingsResult, error)
	ListUnconfirmed(ctx context.Context) ([]*domain.Booking, error)
}
