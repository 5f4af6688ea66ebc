package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/hearthline/homeservices-api/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	BookingID string `json:"booking_id,omitempty"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their HTTP status codes and stable error codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"error": "<message>", "code": "<code>"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, body := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(status)
			return
		}
		_ = c.JSON(status, body)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, errorResponse) {
	// Echo's own errors (bind failures, 404 from router, middleware rejections).
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, errorResponse{Error: fmt.Sprintf("%v", he.Message), Code: httpCode(he.Code)}
	}

	// The booking row exists but was not confirmed.
	var unconfirmed *domain.UnconfirmedBookingError
	if errors.As(err, &unconfirmed) {
		status, code := http.StatusServiceUnavailable, "gateway_unreachable"
		msg := "booking saved but could not be added to the calendar"
		switch {
		case errors.Is(unconfirmed.Err, domain.ErrGatewayRejected):
			status, code = http.StatusBadGateway, "gateway_rejected"
		case errors.Is(unconfirmed.Err, domain.ErrPersistence):
			status, code = http.StatusInternalServerError, "persistence_error"
			msg = "booking saved but its confirmation could not be recorded"
		}
		log.Warn().
			Err(unconfirmed.Err).
			Str("booking_id", unconfirmed.Booking.ID).
			Msg("booking saved but not confirmed")
		return status, errorResponse{
			Error:     msg,
			Code:      code,
			BookingID: unconfirmed.Booking.ID,
		}
	}

	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		return http.StatusUnprocessableEntity, errorResponse{Error: ve.Error(), Code: "validation_error"}
	case errors.Is(err, domain.ErrSlotUnavailable):
		return http.StatusConflict, errorResponse{Error: domain.ErrSlotUnavailable.Error(), Code: "slot_unavailable"}
	case errors.Is(err, domain.ErrSlotBusy):
		c.Response().Header().Set("Retry-After", "1")
		return http.StatusConflict, errorResponse{Error: domain.ErrSlotBusy.Error(), Code: "slot_busy"}
	case errors.Is(err, domain.ErrGatewayUnreachable):
		log.Warn().Err(err).Str("path", c.Path()).Msg("calendar unreachable")
		return http.StatusServiceUnavailable, errorResponse{Error: domain.ErrGatewayUnreachable.Error(), Code: "gateway_unreachable"}
	case errors.Is(err, domain.ErrGatewayRejected):
		log.Warn().Err(err).Str("path", c.Path()).Msg("calendar rejected request")
		return http.StatusBadGateway, errorResponse{Error: domain.ErrGatewayRejected.Error(), Code: "gateway_rejected"}
	case errors.Is(err, domain.ErrBookingNotFound):
		return http.StatusNotFound, errorResponse{Error: "booking not found", Code: "not_found"}
	case errors.Is(err, domain.ErrServiceNotFound):
		return http.StatusNotFound, errorResponse{Error: "service not found", Code: "not_found"}
	case errors.Is(err, domain.ErrReviewNotFound):
		return http.StatusNotFound, errorResponse{Error: "review not found", Code: "not_found"}
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, errorResponse{Error: "user not found", Code: "not_found"}
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, errorResponse{Error: "access forbidden", Code: "forbidden"}
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, errorResponse{Error: "invalid credentials", Code: "unauthorized"}
	case errors.Is(err, domain.ErrUserExists):
		return http.StatusConflict, errorResponse{Error: "user already exists", Code: "conflict"}
	case errors.Is(err, domain.ErrInvalidResetToken):
		return http.StatusBadRequest, errorResponse{Error: domain.ErrInvalidResetToken.Error(), Code: "invalid_reset_token"}
	}

	// Persistence failures and anything unexpected: log the real cause, return a generic message.
	code := "internal_error"
	if errors.Is(err, domain.ErrPersistence) {
		code = "persistence_error"
	}
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, errorResponse{Error: "internal server error", Code: code}
}

func httpCode(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "bad_request"
	case http.StatusUnauthorized:
		return "unauthorized"
	case http.StatusForbidden:
		return "forbidden"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusMethodNotAllowed:
		return "method_not_allowed"
	case http.StatusRequestEntityTooLarge:
		return "payload_too_large"
	case http.StatusTooManyRequests:
		return "rate_limited"
	}
	if status >= http.StatusInternalServerError {
		return "internal_error"
	}
	return "error"
}
