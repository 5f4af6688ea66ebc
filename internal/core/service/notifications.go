package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/hearthline/homeservices-api/internal/core/domain"
	"github.com/hearthline/homeservices-api/internal/core/ports"
)

const appointmentLayout = "Monday, January 2, 2006 at 3:04 PM (MST)"

// bookingNotifications builds the client confirmation and, when internal is
// set, the copy for the business inbox.
func bookingNotifications(b *domain.Booking, internal string) []ports.Notification {
	when := b.AppointmentDate.Format(appointmentLayout)

	out := []ports.Notification{{
		Kind:    ports.NotifyBookingClient,
		To:      b.ClientEmail,
		ToName:  b.ClientName,
		Subject: fmt.Sprintf("Your %s appointment is confirmed", b.ServiceName),
		Body: fmt.Sprintf(
			"Hi %s,\n\nYour %s appointment is booked for %s.\nReference: %s\n\nReply to this e-mail if you need to make changes.",
			b.ClientName, b.ServiceName, when, b.ID,
		),
	}}

	if internal != "" {
		var body strings.Builder
		fmt.Fprintf(&body, "New booking %s\n\nService: %s\nWhen: %s\nClient: %s\nEmail: %s\nPhone: %s\n",
			b.ID, b.ServiceName, when, b.ClientName, b.ClientEmail, b.ClientPhone)
		if b.Notes != "" {
			fmt.Fprintf(&body, "Notes: %s\n", b.Notes)
		}
		out = append(out, ports.Notification{
			Kind:    ports.NotifyBookingInternal,
			To:      internal,
			Subject: fmt.Sprintf("New booking: %s on %s", b.ServiceName, b.AppointmentDate.Format("Jan 2 15:04")),
			Body:    body.String(),
		})
	}
	return out
}

func quoteNotification(q *domain.Quote, serviceName, internal string) ports.Notification {
	var body strings.Builder
	fmt.Fprintf(&body, "Quote request %s\n\nService: %s\nName: %s\nEmail: %s\nPhone: %s\n",
		q.ID, serviceName, q.Name, q.Email, q.Phone)
	if q.Address != "" {
		fmt.Fprintf(&body, "Address: %s\n", q.Address)
	}
	fmt.Fprintf(&body, "\n%s\n", q.Details)
	return ports.Notification{
		Kind:    ports.NotifyQuoteInternal,
		To:      internal,
		Subject: fmt.Sprintf("Quote request: %s from %s", serviceName, q.Name),
		Body:    body.String(),
	}
}

func passwordResetNotification(u *domain.User, link string, ttl time.Duration) ports.Notification {
	return ports.Notification{
		Kind:    ports.NotifyPasswordReset,
		To:      u.Email,
		ToName:  u.Username,
		Subject: "Reset your password",
		Body: fmt.Sprintf(
			"Hi %s,\n\nUse the link below to choose a new password. It expires in %s.\n\n%s\n\nIf you did not ask for this, ignore this e-mail.",
			u.Username, ttl, link,
		),
	}
}
