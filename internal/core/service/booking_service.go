package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hearthline/homeservices-api/internal/core/domain"
	"github.com/hearthline/homeservices-api/internal/core/ports"
)

const (
	defaultBookingDuration = time.Hour
	defaultOpenHour        = 8
	defaultCloseHour       = 18
	maxListLimit           = 100
)

// BookingOptions configures the booking workflow.
type BookingOptions struct {
	// Duration is the appointment length used when a service defines none.
	Duration time.Duration
	// Location is the fixed business time zone events are written in.
	Location *time.Location
	// MinLeadTime is how far in the future an appointment must start.
	MinLeadTime time.Duration
	// InternalRecipient receives a copy of every confirmed booking.
	InternalRecipient string
	// OpenHour and CloseHour bound the slots offered by Availability.
	OpenHour  int
	CloseHour int
}

// BookingService validates booking requests against the external calendar,
// persists them and confirms them once the calendar event exists.
type BookingService struct {
	repo     ports.BookingRepository
	catalog  ports.ServiceRepository
	gateway  ports.CalendarGateway
	locker   ports.SlotLocker
	notifier ports.Notifier
	validate *validator.Validate
	opts     BookingOptions
	now      func() time.Time
	log      zerolog.Logger
}

// NewBookingService wires the booking workflow. locker may be nil, in which
// case concurrent requests for overlapping windows are not serialised.
func NewBookingService(
	repo ports.BookingRepository,
	catalog ports.ServiceRepository,
	gateway ports.CalendarGateway,
	locker ports.SlotLocker,
	notifier ports.Notifier,
	opts BookingOptions,
	log zerolog.Logger,
) *BookingService {
	if opts.Duration <= 0 {
		opts.Duration = defaultBookingDuration
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.OpenHour <= 0 && opts.CloseHour <= 0 {
		opts.OpenHour, opts.CloseHour = defaultOpenHour, defaultCloseHour
	}
	return &BookingService{
		repo:     repo,
		catalog:  catalog,
		gateway:  gateway,
		locker:   locker,
		notifier: notifier,
		validate: validator.New(),
		opts:     opts,
		now:      time.Now,
		log:      log,
	}
}

// RequestBooking runs the conflict check and, if the slot is free, persists the
// booking and creates the calendar event.
//
// Order of side effects: availability read, booking write (pending), calendar
// write, confirmation write, notifications. They are not transactional; a
// calendar failure after the booking write returns *domain.UnconfirmedBookingError
// and leaves the booking pending with its CalendarError set.
func (s *BookingService) RequestBooking(ctx context.Context, in ports.BookingRequestInput) (*ports.BookingResult, error) {
	start, err := s.validateRequest(in)
	if err != nil {
		return nil, err
	}

	key := strings.TrimSpace(in.IdempotencyKey)
	if key != "" {
		existing, err := s.repo.FindByIdempotencyKey(ctx, key)
		if err == nil && existing != nil {
			s.log.Info().Str("idempotency_key", key).Str("booking_id", existing.ID).Msg("idempotent replay")
			return &ports.BookingResult{Booking: existing, AlreadyExisted: true}, nil
		}
		if err != nil && !errors.Is(err, domain.ErrBookingNotFound) {
			return nil, domain.Persistence("find booking by idempotency key", err)
		}
	}

	svc, err := s.lookupService(ctx, in.ServiceID)
	if err != nil {
		return nil, err
	}

	window := domain.NewWindow(start, svc.Duration(s.opts.Duration)).In(s.opts.Location)

	release, err := s.lock(ctx, window)
	if err != nil {
		return nil, err
	}
	defer release(context.WithoutCancel(ctx))

	conflicts, err := s.conflicts(ctx, window)
	if err != nil {
		return nil, err
	}
	if len(conflicts) > 0 {
		s.log.Info().
			Time("start", window.Start).
			Int("conflicts", len(conflicts)).
			Msg("booking rejected: slot unavailable")
		return nil, fmt.Errorf("request booking: %w", domain.ErrSlotUnavailable)
	}

	now := s.now().UTC()
	booking := &domain.Booking{
		ID:              uuid.NewString(),
		ServiceID:       svc.ID,
		ServiceName:     svc.Name,
		ClientName:      strings.TrimSpace(in.ClientName),
		ClientEmail:     strings.TrimSpace(in.ClientEmail),
		ClientPhone:     strings.TrimSpace(in.ClientPhone),
		AppointmentDate: window.Start,
		EndDate:         window.End,
		TimeZone:        s.opts.Location.String(),
		Notes:           strings.TrimSpace(in.Notes),
		Status:          domain.BookingStatusPending,
		IdempotencyKey:  key,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.repo.Create(ctx, booking); err != nil {
		s.log.Error().Err(err).Msg("failed to persist booking")
		return nil, domain.Persistence("create booking", err)
	}

	created, err := s.gateway.CreateEvent(ctx, s.calendarEvent(booking))
	if err != nil {
		gwErr := gatewayError(err)
		reason := gwErr.Error()
		booking.CalendarError = reason
		if markErr := s.repo.MarkCalendarFailed(context.WithoutCancel(ctx), booking.ID, reason, s.now().UTC()); markErr != nil {
			s.log.Error().Err(markErr).Str("booking_id", booking.ID).Msg("failed to record calendar failure")
		}
		s.log.Warn().Err(gwErr).Str("booking_id", booking.ID).Msg("calendar event not created; booking left pending")
		return nil, &domain.UnconfirmedBookingError{Booking: booking, Err: gwErr}
	}

	confirmedAt := s.now().UTC()
	if err := s.repo.MarkConfirmed(ctx, booking.ID, created.ID, confirmedAt); err != nil {
		s.log.Error().Err(err).
			Str("booking_id", booking.ID).
			Str("event_id", created.ID).
			Msg("calendar event created but booking not marked confirmed")
		reason := "confirmation not recorded: " + err.Error()
		booking.CalendarEventID = created.ID
		booking.CalendarError = reason
		if markErr := s.repo.MarkConfirmationFailed(context.WithoutCancel(ctx), booking.ID, created.ID, reason, s.now().UTC()); markErr != nil {
			s.log.Error().Err(markErr).Str("booking_id", booking.ID).Msg("failed to record unconfirmed calendar event")
		}
		return nil, &domain.UnconfirmedBookingError{Booking: booking, Err: domain.Persistence("confirm booking", err)}
	}
	booking.Confirm(created.ID, confirmedAt)

	s.notifyConfirmed(ctx, booking)

	s.log.Info().
		Str("booking_id", booking.ID).
		Str("service_id", booking.ServiceID).
		Time("start", booking.AppointmentDate).
		Msg("booking confirmed")

	return &ports.BookingResult{Booking: booking}, nil
}

// Availability returns the free windows of a day inside business hours.
func (s *BookingService) Availability(ctx context.Context, in ports.AvailabilityInput) ([]domain.Window, error) {
	day, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(in.Date), s.opts.Location)
	if err != nil {
		return nil, domain.NewValidationError("date", "must be formatted as YYYY-MM-DD")
	}

	duration := s.opts.Duration
	if strings.TrimSpace(in.ServiceID) != "" {
		svc, err := s.lookupService(ctx, in.ServiceID)
		if err != nil {
			return nil, err
		}
		duration = svc.Duration(s.opts.Duration)
	}

	open := time.Date(day.Year(), day.Month(), day.Day(), s.opts.OpenHour, 0, 0, 0, s.opts.Location)
	closing := time.Date(day.Year(), day.Month(), day.Day(), s.opts.CloseHour, 0, 0, 0, s.opts.Location)
	businessDay := domain.Window{Start: open, End: closing}
	if !businessDay.Valid() {
		return []domain.Window{}, nil
	}

	events, err := s.gateway.ListEvents(ctx, open, closing)
	if err != nil {
		return nil, gatewayError(err)
	}
	busy := blockingWindows(events)

	earliest := s.now().Add(s.opts.MinLeadTime)
	free := make([]domain.Window, 0)
	for start := open; !start.Add(duration).After(closing); start = start.Add(duration) {
		candidate := domain.NewWindow(start, duration)
		if !candidate.Start.After(earliest) {
			continue
		}
		if len(domain.AnyOverlap(candidate, busy)) == 0 {
			free = append(free, candidate)
		}
	}
	return free, nil
}

// GetBooking returns a single booking.
func (s *BookingService) GetBooking(ctx context.Context, id string) (*domain.Booking, error) {
	b, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrBookingNotFound) {
			return nil, err
		}
		return nil, domain.Persistence("find booking", err)
	}
	return b, nil
}

// ListBookings returns a page of bookings for staff.
func (s *BookingService) ListBookings(ctx context.Context, in ports.ListBookingsInput) (*ports.ListBookingsResult, error) {
	if in.Status != "" && in.Status != string(domain.BookingStatusPending) && in.Status != string(domain.BookingStatusConfirmed) {
		return nil, domain.NewValidationError("status", "must be one of: pending confirmed")
	}

	page := in.Page
	if page < 1 {
		page = 1
	}
	limit := in.Limit
	if limit <= 0 {
		limit = 20
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	items, total, err := s.repo.List(ctx, ports.ListBookingsFilter{
		Status:   in.Status,
		DateFrom: in.DateFrom,
		DateTo:   in.DateTo,
		Page:     page,
		Limit:    limit,
	})
	if err != nil {
		return nil, domain.Persistence("list bookings", err)
	}

	return &ports.ListBookingsResult{
		Items:      items,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: int(math.Ceil(float64(total) / float64(limit))),
	}, nil
}

// ListUnconfirmed returns bookings that were saved but never reached the calendar.
func (s *BookingService) ListUnconfirmed(ctx context.Context) ([]*domain.Booking, error) {
	items, err := s.repo.ListUnconfirmed(ctx)
	if err != nil {
		return nil, domain.Persistence("list unconfirmed bookings", err)
	}
	return items, nil
}

func (s *BookingService) validateRequest(in ports.BookingRequestInput) (time.Time, error) {
	if strings.TrimSpace(in.ServiceID) == "" {
		return time.Time{}, domain.NewValidationError("service_id", "is required")
	}
	if strings.TrimSpace(in.ClientName) == "" {
		return time.Time{}, domain.NewValidationError("client_name", "is required")
	}
	if err := s.validate.Var(strings.TrimSpace(in.ClientEmail), "required,email"); err != nil {
		return time.Time{}, domain.NewValidationError("client_email", "must be a valid email")
	}
	if strings.TrimSpace(in.ClientPhone) == "" {
		return time.Time{}, domain.NewValidationError("client_phone", "is required")
	}

	start, err := time.Parse(time.RFC3339, strings.TrimSpace(in.AppointmentDate))
	if err != nil {
		return time.Time{}, domain.NewValidationError("appointment_date", "must be an ISO-8601 timestamp with offset")
	}
	if !start.After(s.now().Add(s.opts.MinLeadTime)) {
		return time.Time{}, domain.NewValidationError("appointment_date", "must be in the future")
	}
	return start, nil
}

func (s *BookingService) lookupService(ctx context.Context, id string) (*domain.Service, error) {
	if s.catalog == nil {
		return &domain.Service{ID: id, Name: id, Active: true}, nil
	}
	svc, err := s.catalog.FindByID(ctx, strings.TrimSpace(id))
	if err != nil {
		if errors.Is(err, domain.ErrServiceNotFound) {
			return nil, domain.NewValidationError("service_id", "unknown service")
		}
		return nil, domain.Persistence("find service", err)
	}
	if !svc.Active {
		return nil, domain.NewValidationError("service_id", "service is not bookable")
	}
	return svc, nil
}

// lock acquires the slot lock for w when a locker is configured. A lock
// timeout means another request holds an overlapping bucket and is reported as
// ErrSlotUnavailable. Backend failures are logged and the request continues
// unserialised.
func (s *BookingService) lock(ctx context.Context, w domain.Window) (func(context.Context), error) {
	noop := func(context.Context) {}
	if s.locker == nil {
		return noop, nil
	}
	release, err := s.locker.Acquire(ctx, w)
	switch {
	case err == nil:
		return release, nil
	case errors.Is(err, domain.ErrLockTimeout):
		// Buckets are coarser than windows, so a held lock says nothing about
		// a calendar conflict.
		s.log.Info().Time("start", w.Start).Msg("booking deferred: slot lock held")
		return nil, fmt.Errorf("request booking: %w", domain.ErrSlotBusy)
	case ctx.Err() != nil:
		return nil, ctx.Err()
	default:
		s.log.Warn().Err(err).Time("start", w.Start).Msg("slot lock unavailable, processing anyway")
		return noop, nil
	}
}

func (s *BookingService) conflicts(ctx context.Context, w domain.Window) ([]domain.Window, error) {
	events, err := s.gateway.ListEvents(ctx, w.Start, w.End)
	if err != nil {
		s.log.Warn().Err(err).Time("start", w.Start).Msg("availability check failed")
		return nil, fmt.Errorf("check availability: %w", gatewayError(err))
	}
	return domain.AnyOverlap(w, blockingWindows(events)), nil
}

func (s *BookingService) calendarEvent(b *domain.Booking) domain.CalendarEvent {
	var desc strings.Builder
	fmt.Fprintf(&desc, "Client: %s\nEmail: %s\nPhone: %s\nBooking: %s", b.ClientName, b.ClientEmail, b.ClientPhone, b.ID)
	if b.Notes != "" {
		fmt.Fprintf(&desc, "\nNotes: %s", b.Notes)
	}
	return domain.CalendarEvent{
		Summary:     fmt.Sprintf("%s - %s", b.ServiceName, b.ClientName),
		Description: desc.String(),
		Start:       b.AppointmentDate,
		End:         b.EndDate,
		TimeZone:    b.TimeZone,
		Attendees:   []string{b.ClientEmail},
	}
}

func (s *BookingService) notifyConfirmed(ctx context.Context, b *domain.Booking) {
	if s.notifier == nil {
		return
	}
	for _, n := range bookingNotifications(b, s.opts.InternalRecipient) {
		if err := s.notifier.Notify(ctx, n); err != nil {
			s.log.Warn().Err(err).
				Str("booking_id", b.ID).
				Str("kind", string(n.Kind)).
				Msg("failed to queue booking notification")
		}
	}
}

func blockingWindows(events []domain.CalendarEvent) []domain.Window {
	out := make([]domain.Window, 0, len(events))
	for _, e := range events {
		if e.Blocking() {
			out = append(out, e.Window())
		}
	}
	return out
}

// gatewayError guarantees a gateway failure matches one of the gateway sentinels.
func gatewayError(err error) error {
	if errors.Is(err, domain.ErrGatewayUnreachable) || errors.Is(err, domain.ErrGatewayRejected) {
		return err
	}
	return fmt.Errorf("%w: %w", domain.ErrGatewayUnreachable, err)
}
