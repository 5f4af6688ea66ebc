package mail

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/hearthline/homeservices-api/internal/core/ports"
)

const sendEndpoint = "/v3/mail/send"

// SendGridConfig configures the SendGrid mailer. Host is only set in tests.
type SendGridConfig struct {
	APIKey   string
	Host     string
	FromAddr string
	FromName string
}

// SendGridMailer delivers notifications through the SendGrid v3 API.
type SendGridMailer struct {
	apiKey string
	host   string
	from   *sgmail.Email
}

func NewSendGridMailer(cfg SendGridConfig) *SendGridMailer {
	return &SendGridMailer{
		apiKey: cfg.APIKey,
		host:   cfg.Host,
		from:   sgmail.NewEmail(cfg.FromName, cfg.FromAddr),
	}
}

func (m *SendGridMailer) Send(ctx context.Context, n ports.Notification) error {
	to := sgmail.NewEmail(n.ToName, n.To)
	msg := sgmail.NewSingleEmail(m.from, n.Subject, to, n.Body, htmlBody(n.Body))

	req := sendgrid.GetRequest(m.apiKey, sendEndpoint, m.host)
	req.Method = "POST"
	client := &sendgrid.Client{Request: req}

	resp, err := client.SendWithContext(ctx, msg)
	if err != nil {
		return fmt.Errorf("sendgrid: %w", err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("sendgrid: unexpected status %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}

// htmlBody renders the plain-text body as escaped HTML paragraphs.
func htmlBody(text string) string {
	var b strings.Builder
	for _, para := range strings.Split(text, "\n\n") {
		if strings.TrimSpace(para) == "" {
			continue
		}
		b.WriteString("<p>")
		b.WriteString(strings.ReplaceAll(html.EscapeString(para), "\n", "<br>"))
		b.WriteString("</p>")
	}
	return b.String()
}
