package domain

import "time"

// EventStatusCancelled is the provider status of a deleted/cancelled event.
const EventStatusCancelled = "cancelled"

// CalendarEvent is an event held by the external calendar provider.
// This system only lists and creates events; it never modifies existing ones.
type CalendarEvent struct {
	ID          string
	Summary     string
	Description string
	Start       time.Time
	End         time.Time
	TimeZone    string
	Attendees   []string
	Status      string
}

// Window returns the occupied interval of the event.
func (e CalendarEvent) Window() Window {
	return Window{Start: e.Start, End: e.End}
}

// Blocking reports whether the event occupies calendar time.
func (e CalendarEvent) Blocking() bool {
	return e.Status != EventStatusCancelled
}
