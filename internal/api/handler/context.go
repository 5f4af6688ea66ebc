package handler

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/hearthline/homeservices-api/internal/core/domain"
)

// queryInt reads an optional positive integer query parameter.
func queryInt(c echo.Context, name string, def int) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, domain.NewValidationError(name, "must be a positive integer")
	}
	return n, nil
}

// queryTime reads an optional RFC 3339 timestamp or YYYY-MM-DD date query parameter.
func queryTime(c echo.Context, name string) (time.Time, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, nil
	}
	return time.Time{}, domain.NewValidationError(name, "must be RFC 3339 or YYYY-MM-DD")
}
