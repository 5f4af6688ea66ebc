package handler

import (
	"github.com/hearthline/homeservices-api/internal/core/domain"
	"github.com/hearthline/homeservices-api/internal/core/ports"
)

// --- Request → Service input ---

func toBookingInput(req createBookingRequest, idempotencyKey string) ports.BookingRequestInput {
	return ports.BookingRequestInput{
		ServiceID:       req.ServiceID,
		ClientName:      req.ClientName,
		ClientEmail:     req.ClientEmail,
		ClientPhone:     req.ClientPhone,
		AppointmentDate: req.AppointmentDate,
		Notes:           req.Notes,
		IdempotencyKey:  idempotencyKey,
	}
}

// --- Domain → Response ---

func toBookingResponse(b *domain.Booking) bookingResponse {
	return bookingResponse{
		ID:              b.ID,
		ServiceID:       b.ServiceID,
		ServiceName:     b.ServiceName,
		ClientName:      b.ClientName,
		ClientEmail:     b.ClientEmail,
		ClientPhone:     b.ClientPhone,
		AppointmentDate: b.AppointmentDate,
		EndDate:         b.EndDate,
		TimeZone:        b.TimeZone,
		Notes:           b.Notes,
		Status:          string(b.Status),
		Confirmed:       b.Confirmed,
		CalendarEventID: b.CalendarEventID,
		CalendarError:   b.CalendarError,
		CreatedAt:       b.CreatedAt,
		ConfirmedAt:     b.ConfirmedAt,
		Links:           bookingLinks{Self: "/v1/bookings/" + b.ID},
	}
}

func toBookingResponses(items []*domain.Booking) []bookingResponse {
	out := make([]bookingResponse, 0, len(items))
	for _, b := range items {
		out = append(out, toBookingResponse(b))
	}
	return out
}

func toSlotResponses(windows []domain.Window) []slotResponse {
	out := make([]slotResponse, 0, len(windows))
	for _, w := range windows {
		out = append(out, slotResponse{Start: w.Start, End: w.End})
	}
	return out
}
