package domain

import "time"

// BookingStatus represents the lifecycle state of a booking.
type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
)

// Booking is an appointment request for one catalog service.
type Booking struct {
	ID              string        `json:"id" bson:"_id"`
	ServiceID       string        `json:"service_id" bson:"service_id"`
	ServiceName     string        `json:"service_name" bson:"service_name"`
	ClientName      string        `json:"client_name" bson:"client_name"`
	ClientEmail     string        `json:"client_email" bson:"client_email"`
	ClientPhone     string        `json:"client_phone" bson:"client_phone"`
	AppointmentDate time.Time     `json:"appointment_date" bson:"appointment_date"`
	EndDate         time.Time     `json:"end_date" bson:"end_date"`
	TimeZone        string        `json:"time_zone" bson:"time_zone"`
	Notes           string        `json:"notes,omitempty" bson:"notes,omitempty"`
	Status          BookingStatus `json:"status" bson:"status"`
	Confirmed       bool          `json:"confirmed" bson:"confirmed"`
	CalendarEventID string        `json:"calendar_event_id,omitempty" bson:"calendar_event_id,omitempty"`
	// CalendarError is set when the record was saved but the calendar event
	// could not be created. Such bookings stay pending until resolved by staff.
	CalendarError  string     `json:"calendar_error,omitempty" bson:"calendar_error,omitempty"`
	IdempotencyKey string     `json:"-" bson:"idempotency_key,omitempty"`
	CreatedAt      time.Time  `json:"created_at" bson:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at" bson:"updated_at"`
	ConfirmedAt    *time.Time `json:"confirmed_at,omitempty" bson:"confirmed_at,omitempty"`
}

// Window returns the occupied interval of the booking.
func (b *Booking) Window() Window {
	return Window{Start: b.AppointmentDate, End: b.EndDate}
}

// Confirm moves the booking to the confirmed state.
func (b *Booking) Confirm(eventID string, at time.Time) {
	b.Status = BookingStatusConfirmed
	b.Confirmed = true
	b.CalendarEventID = eventID
	b.CalendarError = ""
	b.UpdatedAt = at
	b.ConfirmedAt = &at
}
