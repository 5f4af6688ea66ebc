package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/hearthline/homeservices-api/internal/api/metrics"
	"github.com/hearthline/homeservices-api/internal/core/domain"
	"github.com/hearthline/homeservices-api/internal/core/ports"
)

// BookingHandler handles HTTP requests for bookings and availability.
type BookingHandler struct {
	service ports.BookingService
}

func NewBookingHandler(service ports.BookingService) *BookingHandler {
	return &BookingHandler{service: service}
}

// Create handles POST /v1/bookings.
//
// @Summary      Request an appointment
// @Description  Checks the business calendar for conflicts, stores the booking and creates the calendar event.
// @Tags         bookings
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key  header    string                false  "Idempotency key to prevent duplicate submissions"
// @Param        body             body      createBookingRequest  true   "Booking details"
// @Success      201              {object}  bookingResponse
// @Success      200              {object}  bookingResponse  "Idempotent replay"
// @Failure      400              {object}  errorResponse
// @Failure      409              {object}  errorResponse
// @Failure      422              {object}  errorResponse
// @Failure      429              {object}  errorResponse
// @Failure      500              {object}  errorResponse
// @Failure      502              {object}  errorResponse
// @Failure      503              {object}  errorResponse
// @Router       /v1/bookings [post]
func (h *BookingHandler) Create(c echo.Context) error {
	var req createBookingRequest
	if err := c.Bind(&req); err != nil {
		metrics.BookingRequestsTotal.WithLabelValues("validation_error").Inc()
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		metrics.BookingRequestsTotal.WithLabelValues("validation_error").Inc()
		return err
	}

	idempotencyKey := strings.TrimSpace(c.Request().Header.Get("Idempotency-Key"))
	result, err := h.service.RequestBooking(c.Request().Context(), toBookingInput(req, idempotencyKey))
	metrics.BookingRequestsTotal.WithLabelValues(bookingOutcome(result, err)).Inc()
	if err != nil {
		return err
	}

	status := http.StatusCreated
	if result.AlreadyExisted {
		status = http.StatusOK
	}
	return c.JSON(status, toBookingResponse(result.Booking))
}

// Availability handles GET /v1/availability.
//
// @Summary      Free appointment slots for a day
// @Tags         bookings
// @Produce      json
// @Param        date        query     string  true   "Day in the business time zone (YYYY-MM-DD)"
// @Param        service_id  query     string  false  "Service whose duration sizes the slots"
// @Success      200         {object}  availabilityResponse
// @Failure      422         {object}  errorResponse
// @Failure      503         {object}  errorResponse
// @Router       /v1/availability [get]
func (h *BookingHandler) Availability(c echo.Context) error {
	date := c.QueryParam("date")
	serviceID := c.QueryParam("service_id")

	slots, err := h.service.Availability(c.Request().Context(), ports.AvailabilityInput{Date: date, ServiceID: serviceID})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, availabilityResponse{
		Date:      date,
		ServiceID: serviceID,
		Slots:     toSlotResponses(slots),
	})
}

// Get handles GET /v1/bookings/:id.
//
// @Summary      Get a booking
// @Tags         bookings
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Booking ID"
// @Success      200  {object}  bookingResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/bookings/{id} [get]
func (h *BookingHandler) Get(c echo.Context) error {
	b, err := h.service.GetBooking(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toBookingResponse(b))
}

// List handles GET /v1/bookings.
//
// @Summary      List bookings
// @Tags         bookings
// @Produce      json
// @Security     BearerAuth
// @Param        status     query     string  false  "pending or confirmed"
// @Param        date_from  query     string  false  "Appointments at or after (RFC 3339 or YYYY-MM-DD)"
// @Param        date_to    query     string  false  "Appointments before (RFC 3339 or YYYY-MM-DD)"
// @Param        page       query     int     false  "Page number (1-based)"
// @Param        limit      query     int     false  "Page size (max 100)"
// @Success      200        {object}  listBookingsResponse
// @Failure      401        {object}  errorResponse
// @Failure      403        {object}  errorResponse
// @Failure      422        {object}  errorResponse
// @Router       /v1/bookings [get]
func (h *BookingHandler) List(c echo.Context) error {
	page, err := queryInt(c, "page", 1)
	if err != nil {
		return err
	}
	limit, err := queryInt(c, "limit", 20)
	if err != nil {
		return err
	}
	from, err := queryTime(c, "date_from")
	if err != nil {
		return err
	}
	to, err := queryTime(c, "date_to")
	if err != nil {
		return err
	}

	res, err := h.service.ListBookings(c.Request().Context(), ports.ListBookingsInput{
		Status:   c.QueryParam("status"),
		DateFrom: from,
		DateTo:   to,
		Page:     page,
		Limit:    limit,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, listBookingsResponse{
		Items:      toBookingResponses(res.Items),
		Total:      res.Total,
		Page:       res.Page,
		Limit:      res.Limit,
		TotalPages: res.TotalPages,
	})
}

// ListUnconfirmed handles GET /v1/bookings/unconfirmed.
//
// @Summary      Bookings saved without a calendar event
// @Description  Pending bookings whose calendar write failed and need manual follow-up.
// @Tags         bookings
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   bookingResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Router       /v1/bookings/unconfirmed [get]
func (h *BookingHandler) ListUnconfirmed(c echo.Context) error {
	items, err := h.service.ListUnconfirmed(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toBookingResponses(items))
}

func bookingOutcome(res *ports.BookingResult, err error) string {
	var unconfirmed *domain.UnconfirmedBookingError
	switch {
	case err == nil && res.AlreadyExisted:
		return "replayed"
	case err == nil:
		return "confirmed"
	case errors.As(err, &unconfirmed):
		return "unconfirmed"
	case errors.Is(err, domain.ErrValidation):
		return "validation_error"
	case errors.Is(err, domain.ErrSlotUnavailable):
		return "slot_unavailable"
	case errors.Is(err, domain.ErrSlotBusy):
		return "slot_busy"
	case errors.Is(err, domain.ErrGatewayUnreachable), errors.Is(err, domain.ErrGatewayRejected):
		return "gateway_error"
	default:
		return "persistence_error"
	}
}
