package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/hearthline/homeservices-api/internal/core/domain"
	"github.com/hearthline/homeservices-api/internal/core/ports"
)

type stubBookingService struct {
	requestFn      func(ctx context.Context, in ports.BookingRequestInput) (*ports.BookingResult, error)
	availabilityFn func(ctx context.Context, in ports.AvailabilityInput) ([]domain.Window, error)
	getFn          func(ctx context.Context, id string) (*domain.Booking, error)
	listFn         func(ctx context.Context, in ports.ListBookingsInput) (*ports.ListBookingsResult, error)
	unconfirmedFn  func(ctx context.Context) ([]*domain.Booking, error)
}

func (s *stubBookingService) RequestBooking(ctx context.Context, in ports.BookingRequestInput) (*ports.BookingResult, error) {
	return s.requestFn(ctx, in)
}

func (s *stubBookingService) Availability(ctx context.Context, in ports.AvailabilityInput) ([]domain.Window, error) {
	return s.availabilityFn(ctx, in)
}

func (s *stubBookingService) GetBooking(ctx context.Context, id string) (*domain.Booking, error) {
	return s.getFn(ctx, id)
}

func (s *stubBookingService) ListBookings(ctx context.Context, in ports.ListBookingsInput) (*ports.ListBookingsResult, error) {
	return s.listFn(ctx, in)
}

func (s *stubBookingService) ListUnconfirmed(ctx context.Context) ([]*domain.Booking, error) {
	return s.unconfirmedFn(ctx)
}

const validBookingBody = `{"service_id":"svc-1","client_name":"Ana","client_email":"ana@example.com",` +
	`"client_phone":"555-0100","appointment_date":"2030-06-01T10:00:00-04:00"}`

func sampleBooking() *domain.Booking {
	start := time.Date(2030, 6, 1, 14, 0, 0, 0, time.UTC)
	return &domain.Booking{
		ID:              "b-1",
		ServiceID:       "svc-1",
		ClientName:      "Ana",
		ClientEmail:     "ana@example.com",
		AppointmentDate: start,
		EndDate:         start.Add(time.Hour),
		Status:          domain.BookingStatusConfirmed,
		Confirmed:       true,
		CalendarEventID: "evt-1",
	}
}

func TestBookingHandler_Create_Created(t *testing.T) {
	var got ports.BookingRequestInput
	h := NewBookingHandler(&stubBookingService{
		requestFn: func(ctx context.Context, in ports.BookingRequestInput) (*ports.BookingResult, error) {
			got = in
			return &ports.BookingResult{Booking: sampleBooking()}, nil
		},
	})

	c, rec := newTestContext(http.MethodPost, "/v1/bookings", validBookingBody)
	c.Request().Header.Set("Idempotency-Key", " key-1 ")

	if err := h.Create(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if got.IdempotencyKey != "key-1" || got.ClientEmail != "ana@example.com" {
		t.Fatalf("unexpected service input: %+v", got)
	}

	var resp bookingResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if !resp.Confirmed || resp.CalendarEventID != "evt-1" || resp.Links.Self != "/v1/bookings/b-1" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestBookingHandler_Create_ReplayReturnsOK(t *testing.T) {
	h := NewBookingHandler(&stubBookingService{
		requestFn: func(ctx context.Context, in ports.BookingRequestInput) (*ports.BookingResult, error) {
			return &ports.BookingResult{Booking: sampleBooking(), AlreadyExisted: true}, nil
		},
	})

	c, rec := newTestContext(http.MethodPost, "/v1/bookings", validBookingBody)
	if err := h.Create(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 on replay, got %d", rec.Code)
	}
}

func TestBookingHandler_Create_MissingEmail(t *testing.T) {
	h := NewBookingHandler(&stubBookingService{
		requestFn: func(ctx context.Context, in ports.BookingRequestInput) (*ports.BookingResult, error) {
			t.Fatal("service must not be called")
			return nil, nil
		},
	})

	c, _ := newTestContext(http.MethodPost, "/v1/bookings",
		`{"service_id":"svc-1","client_name":"Ana","client_phone":"555","appointment_date":"2030-06-01T10:00:00Z"}`)

	err := h.Create(c)
	var ve *domain.ValidationError
	if !errors.As(err, &ve) || ve.Field != "client_email" {
		t.Fatalf("expected validation error on client_email, got %v", err)
	}
}

func TestBookingHandler_Create_PropagatesServiceErrors(t *testing.T) {
	for _, want := range []error{domain.ErrSlotUnavailable, domain.ErrGatewayUnreachable} {
		h := NewBookingHandler(&stubBookingService{
			requestFn: func(ctx context.Context, in ports.BookingRequestInput) (*ports.BookingResult, error) {
				return nil, want
			},
		})
		c, _ := newTestContext(http.MethodPost, "/v1/bookings", validBookingBody)
		if err := h.Create(c); !errors.Is(err, want) {
			t.Fatalf("expected %v, got %v", want, err)
		}
	}
}

func TestBookingOutcome(t *testing.T) {
	cases := []struct {
		res  *ports.BookingResult
		err  error
		want string
	}{
		{&ports.BookingResult{}, nil, "confirmed"},
		{&ports.BookingResult{AlreadyExisted: true}, nil, "replayed"},
		{nil, domain.NewValidationError("client_email", "is required"), "validation_error"},
		{nil, domain.ErrSlotUnavailable, "slot_unavailable"},
		{nil, domain.ErrSlotBusy, "slot_busy"},
		{nil, domain.ErrGatewayRejected, "gateway_error"},
		{nil, &domain.UnconfirmedBookingError{Booking: sampleBooking(), Err: domain.ErrGatewayUnreachable}, "unconfirmed"},
		{nil, domain.Persistence("create booking", errors.New("mongo down")), "persistence_error"},
	}
	for _, tc := range cases {
		if got := bookingOutcome(tc.res, tc.err); got != tc.want {
			t.Errorf("bookingOutcome(%v) = %s, want %s", tc.err, got, tc.want)
		}
	}
}

func TestBookingHandler_Availability(t *testing.T) {
	start := time.Date(2030, 6, 1, 12, 0, 0, 0, time.UTC)
	h := NewBookingHandler(&stubBookingService{
		availabilityFn: func(ctx context.Context, in ports.AvailabilityInput) ([]domain.Window, error) {
			if in.Date != "2030-06-01" || in.ServiceID != "svc-1" {
				t.Fatalf("unexpected input %+v", in)
			}
			return []domain.Window{{Start: start, End: start.Add(time.Hour)}}, nil
		},
	})

	c, rec := newTestContext(http.MethodGet, "/v1/availability?date=2030-06-01&service_id=svc-1", "")
	if err := h.Availability(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp availabilityResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(resp.Slots) != 1 || !resp.Slots[0].Start.Equal(start) {
		t.Fatalf("unexpected slots: %+v", resp.Slots)
	}
}

func TestBookingHandler_List_ParsesQuery(t *testing.T) {
	var got ports.ListBookingsInput
	h := NewBookingHandler(&stubBookingService{
		listFn: func(ctx context.Context, in ports.ListBookingsInput) (*ports.ListBookingsResult, error) {
			got = in
			return &ports.ListBookingsResult{Items: []*domain.Booking{sampleBooking()}, Total: 21, Page: 2, Limit: 20, TotalPages: 2}, nil
		},
	})

	c, rec := newTestContext(http.MethodGet, "/v1/bookings?status=confirmed&page=2&date_from=2030-06-01", "")
	if err := h.List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if got.Status != "confirmed" || got.Page != 2 || got.Limit != 20 {
		t.Fatalf("unexpected input: %+v", got)
	}
	if !got.DateFrom.Equal(time.Date(2030, 6, 1, 0, 0, 0, 0, time.UTC)) || !got.DateTo.IsZero() {
		t.Fatalf("unexpected date range: %s - %s", got.DateFrom, got.DateTo)
	}

	var resp listBookingsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Total != 21 || resp.TotalPages != 2 || len(resp.Items) != 1 {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestBookingHandler_List_BadPage(t *testing.T) {
	h := NewBookingHandler(&stubBookingService{})

	c, _ := newTestContext(http.MethodGet, "/v1/bookings?page=zero", "")
	err := h.List(c)
	var ve *domain.ValidationError
	if !errors.As(err, &ve) || ve.Field != "page" {
		t.Fatalf("expected validation error on page, got %v", err)
	}
}

func TestBookingHandler_Get_NotFound(t *testing.T) {
	h := NewBookingHandler(&stubBookingService{
		getFn: func(ctx context.Context, id string) (*domain.Booking, error) {
			return nil, domain.ErrBookingNotFound
		},
	})

	c, _ := newTestContext(http.MethodGet, "/v1/bookings/missing", "")
	c.SetParamNames("id")
	c.SetParamValues("missing")
	if err := h.Get(c); !errors.Is(err, domain.ErrBookingNotFound) {
		t.Fatalf("expected ErrBookingNotFound, got %v", err)
	}
}

func TestBookingHandler_ListUnconfirmed(t *testing.T) {
	pending := sampleBooking()
	pending.Confirmed = false
	pending.Status = domain.BookingStatusPending
	pending.CalendarEventID = ""
	pending.CalendarError = "calendar service unreachable"

	h := NewBookingHandler(&stubBookingService{
		unconfirmedFn: func(ctx context.Context) ([]*domain.Booking, error) {
			return []*domain.Booking{pending}, nil
		},
	})

	c, rec := newTestContext(http.MethodGet, "/v1/bookings/unconfirmed", "")
	if err := h.ListUnconfirmed(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp []bookingResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(resp) != 1 || resp[0].CalendarError == "" || resp[0].Status != "pending" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}
