package calendar

import (
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"

	"github.com/hearthline/homeservices-api/internal/core/domain"
)

func unreachable(err error) error {
	return fmt.Errorf("%w: %w", domain.ErrGatewayUnreachable, err)
}

func rejected(reason string) error {
	return fmt.Errorf("%w: %s", domain.ErrGatewayRejected, reason)
}

// classify maps a provider error to a gateway sentinel. Only a 4xx answer to
// a write, other than auth or throttling, is a rejection. Everything else,
// timeouts and transport errors included, is unreachable.
func classify(op string, err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Code == http.StatusUnauthorized,
			apiErr.Code == http.StatusForbidden,
			apiErr.Code == http.StatusTooManyRequests,
			apiErr.Code >= http.StatusInternalServerError:
			return unreachable(err)
		case op == opCreateEvent && apiErr.Code >= http.StatusBadRequest:
			return fmt.Errorf("%w: %d %s", domain.ErrGatewayRejected, apiErr.Code, apiErr.Message)
		}
		return unreachable(err)
	}

	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		return unreachable(fmt.Errorf("oauth token refresh: %w", err))
	}
	return unreachable(err)
}

// result is the metrics label for an already classified error.
func result(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrGatewayRejected):
		return "rejected"
	default:
		return "unreachable"
	}
}
