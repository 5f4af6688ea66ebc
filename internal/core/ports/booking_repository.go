package ports

import (
	"context"
	"time"

	"github.com/hearthline/homeservices-api/internal/core/domain"
)

// ListBookingsFilter carries the query parameters for the staff booking list.
type ListBookingsFilter struct {
	Status   string    // optional: pending | confirmed
	DateFrom time.Time // optional: appointment_date >= DateFrom
	DateTo   time.Time // optional: appointment_date < DateTo
	Page     int       // 1-based
	Limit    int
}

// BookingRepository persists booking records.
type BookingRepository interface {
	Create(ctx context.Context, b *domain.Booking) error
	FindByID(ctx context.Context, id string) (*domain.Booking, error)
	FindByIdempotencyKey(ctx context.Context, key string) (*domain.Booking, error)
	MarkConfirmed(ctx context.Context, id, eventID string, at time.Time) error
	// MarkCalendarFailed records why the calendar event could not be created.
	MarkCalendarFailed(ctx context.Context, id, reason string, at time.Time) error
	// MarkConfirmationFailed records a calendar event that exists for a
	// booking whose confirmation could not be written.
	MarkConfirmationFailed(ctx context.Context, id, eventID, reason string, at time.Time) error
	// ListUnconfirmed returns pending bookings that carry a calendar error
	// or a calendar event ID.
	ListUnconfirmed(ctx context.Context) ([]*domain.Booking, error)
	List(ctx context.Context, filter ListBookingsFilter) ([]*domain.Booking, int64, error)
}
