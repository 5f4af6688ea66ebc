package calendar

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/hearthline/homeservices-api/internal/api/metrics"
	"github.com/hearthline/homeservices-api/internal/core/domain"
)

const (
	opListEvents  = "list_events"
	opCreateEvent = "create_event"

	defaultTimeout = 10 * time.Second
)

// GoogleConfig holds the OAuth client and refresh token of the business
// account that owns the calendar.
type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
	CalendarID   string
	// Location is the business time zone events are written in.
	Location *time.Location
	Timeout  time.Duration
}

// GoogleCalendar implements ports.CalendarGateway on the Google Calendar API.
// Calls are not retried.
type GoogleCalendar struct {
	svc        *gcal.Service
	calendarID string
	loc        *time.Location
	timeout    time.Duration
	log        zerolog.Logger
}

// NewGoogleCalendar builds the API client. Extra options are appended after
// the token source, so tests can substitute the endpoint and HTTP client.
func NewGoogleCalendar(ctx context.Context, cfg GoogleConfig, log zerolog.Logger, opts ...option.ClientOption) (*GoogleCalendar, error) {
	oauthCfg := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       []string{gcal.CalendarEventsScope},
	}
	ts := oauthCfg.TokenSource(ctx, &oauth2.Token{RefreshToken: cfg.RefreshToken})

	clientOpts := append([]option.ClientOption{option.WithTokenSource(ts)}, opts...)
	svc, err := gcal.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("google calendar client: %w", err)
	}

	calendarID := cfg.CalendarID
	if calendarID == "" {
		calendarID = "primary"
	}
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &GoogleCalendar{svc: svc, calendarID: calendarID, loc: loc, timeout: timeout, log: log}, nil
}

// ListEvents returns the single (expanded) events intersecting [start, end).
func (g *GoogleCalendar) ListEvents(ctx context.Context, start, end time.Time) (events []domain.CalendarEvent, err error) {
	defer g.observe(opListEvents, time.Now(), &err)

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	call := g.svc.Events.List(g.calendarID).
		TimeMin(start.Format(time.RFC3339)).
		TimeMax(end.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime")

	err = call.Pages(ctx, func(page *gcal.Events) error {
		for _, item := range page.Items {
			ev, convErr := g.fromAPI(item)
			if convErr != nil {
				if item.Status == domain.EventStatusCancelled {
					continue
				}
				// An event we cannot place must not let a conflicting booking through.
				g.log.Warn().Err(convErr).Str("event_id", item.Id).Msg("calendar event with unreadable times blocks the queried range")
				ev = domain.CalendarEvent{ID: item.Id, Summary: item.Summary, Start: start, End: end, Status: item.Status}
			}
			events = append(events, ev)
		}
		return nil
	})
	if err != nil {
		return nil, classify(opListEvents, err)
	}
	return events, nil
}

// CreateEvent inserts the event with the client as attendee and asks Google
// to send the invitation.
func (g *GoogleCalendar) CreateEvent(ctx context.Context, e domain.CalendarEvent) (created *domain.CalendarEvent, err error) {
	defer g.observe(opCreateEvent, time.Now(), &err)

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	tz := e.TimeZone
	if tz == "" {
		tz = g.loc.String()
	}

	item := &gcal.Event{
		Summary:     e.Summary,
		Description: e.Description,
		Start:       &gcal.EventDateTime{DateTime: e.Start.Format(time.RFC3339), TimeZone: tz},
		End:         &gcal.EventDateTime{DateTime: e.End.Format(time.RFC3339), TimeZone: tz},
	}
	for _, addr := range e.Attendees {
		item.Attendees = append(item.Attendees, &gcal.EventAttendee{Email: addr})
	}

	res, err := g.svc.Events.Insert(g.calendarID, item).SendUpdates("all").Context(ctx).Do()
	if err != nil {
		return nil, classify(opCreateEvent, err)
	}

	out := e
	out.ID = res.Id
	out.Status = res.Status
	return &out, nil
}

func (g *GoogleCalendar) observe(op string, started time.Time, err *error) {
	metrics.CalendarRequestDuration.WithLabelValues(op).Observe(time.Since(started).Seconds())
	metrics.CalendarRequestsTotal.WithLabelValues(op, result(*err)).Inc()
}

func (g *GoogleCalendar) fromAPI(item *gcal.Event) (domain.CalendarEvent, error) {
	start, err := g.parseEventTime(item.Start)
	if err != nil {
		return domain.CalendarEvent{}, fmt.Errorf("start: %w", err)
	}
	end, err := g.parseEventTime(item.End)
	if err != nil {
		return domain.CalendarEvent{}, fmt.Errorf("end: %w", err)
	}

	ev := domain.CalendarEvent{
		ID:          item.Id,
		Summary:     item.Summary,
		Description: item.Description,
		Start:       start,
		End:         end,
		Status:      item.Status,
	}
	if item.Start != nil {
		ev.TimeZone = item.Start.TimeZone
	}
	for _, a := range item.Attendees {
		ev.Attendees = append(ev.Attendees, a.Email)
	}
	return ev, nil
}

// parseEventTime reads a timed event's dateTime, or an all-day event's date
// as midnight in the business zone.
func (g *GoogleCalendar) parseEventTime(t *gcal.EventDateTime) (time.Time, error) {
	if t == nil {
		return time.Time{}, errors.New("missing time")
	}
	if t.DateTime != "" {
		return time.Parse(time.RFC3339, t.DateTime)
	}
	if t.Date != "" {
		return time.ParseInLocation("2006-01-02", t.Date, g.loc)
	}
	return time.Time{}, errors.New("event has neither dateTime nor date")
}
