package calendar

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hearthline/homeservices-api/internal/core/domain"
)

// MemoryCalendar is a process-local calendar used for local development and
// tests. Data does not survive a restart.
type MemoryCalendar struct {
	mu     sync.RWMutex
	events []domain.CalendarEvent
}

func NewMemoryCalendar(seed ...domain.CalendarEvent) *MemoryCalendar {
	c := &MemoryCalendar{}
	for _, e := range seed {
		if e.ID == "" {
			e.ID = uuid.NewString()
		}
		c.events = append(c.events, e)
	}
	return c
}

// ListEvents returns the events intersecting [start, end), ordered by start.
func (c *MemoryCalendar) ListEvents(ctx context.Context, start, end time.Time) ([]domain.CalendarEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, unreachable(err)
	}
	query := domain.Window{Start: start, End: end}

	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]domain.CalendarEvent, 0)
	for _, e := range c.events {
		if e.Window().Overlaps(query) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out, nil
}

func (c *MemoryCalendar) CreateEvent(ctx context.Context, e domain.CalendarEvent) (*domain.CalendarEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, unreachable(err)
	}
	if !e.Window().Valid() {
		return nil, rejected("event end must be after start")
	}

	e.ID = uuid.NewString()
	e.Status = "confirmed"

	c.mu.Lock()
	c.events = append(c.events, e)
	c.mu.Unlock()

	return &e, nil
}
