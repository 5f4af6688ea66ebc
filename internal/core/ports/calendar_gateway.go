package ports

import (
	"context"
	"time"

	"github.com/hearthline/homeservices-api/internal/core/domain"
)

// CalendarGateway is the external calendar that is authoritative for event
// existence. Implementations fail fast: errors match domain.ErrGatewayUnreachable
// or domain.ErrGatewayRejected and are never retried.
type CalendarGateway interface {
	// ListEvents returns the events intersecting [start, end).
	ListEvents(ctx context.Context, start, end time.Time) ([]domain.CalendarEvent, error)
	CreateEvent(ctx context.Context, event domain.CalendarEvent) (*domain.CalendarEvent, error)
}

// SlotLocker serialises conflict-check-and-create for overlapping windows.
type SlotLocker interface {
	// Acquire blocks until every time bucket of w is held, or returns
	// domain.ErrLockTimeout. The returned release func must always be called.
	Acquire(ctx context.Context, w domain.Window) (release func(context.Context), err error)
}
