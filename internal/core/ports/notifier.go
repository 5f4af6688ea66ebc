package ports

import "context"

// NotificationKind identifies the template a notification was built from.
type NotificationKind string

const (
	NotifyBookingClient   NotificationKind = "booking_client"
	NotifyBookingInternal NotificationKind = "booking_internal"
	NotifyQuoteInternal   NotificationKind = "quote_internal"
	NotifyPasswordReset   NotificationKind = "password_reset"
)

// Notification is a single outbound e-mail.
type Notification struct {
	Kind    NotificationKind
	To      string
	ToName  string
	Subject string
	Body    string
}

// Notifier accepts notifications for delivery.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// Mailer delivers a notification to the mail provider.
type Mailer interface {
	Send(ctx context.Context, n Notification) error
}
