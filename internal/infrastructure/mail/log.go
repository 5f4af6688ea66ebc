package mail

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/hearthline/homeservices-api/internal/core/ports"
)

// LogMailer writes notifications to the log instead of sending them. Used in
// development and when no mail provider is configured.
type LogMailer struct {
	log zerolog.Logger
}

func NewLogMailer(log zerolog.Logger) *LogMailer {
	return &LogMailer{log: log}
}

func (m *LogMailer) Send(_ context.Context, n ports.Notification) error {
	m.log.Info().
		Str("kind", string(n.Kind)).
		Str("to", n.To).
		Str("subject", n.Subject).
		Str("body", n.Body).
		Msg("mail not sent (log provider)")
	return nil
}
