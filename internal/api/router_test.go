package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/hearthline/homeservices-api/internal/api/middleware"
	"github.com/hearthline/homeservices-api/internal/core/domain"
	"github.com/hearthline/homeservices-api/internal/core/ports"
	"github.com/hearthline/homeservices-api/internal/infrastructure/http/handlers"
)

const testSecret = "router-secret"

type nopBookings struct{}

func (nopBookings) RequestBooking(context.Context, ports.BookingRequestInput) (*ports.BookingResult, error) {
	return nil, domain.ErrSlotUnavailable
}
func (nopBookings) Availability(context.Context, ports.AvailabilityInput) ([]domain.Window, error) {
	return nil, nil
}
func (nopBookings) GetBooking(context.Context, string) (*domain.Booking, error) {
	return nil, domain.ErrBookingNotFound
}
func (nopBookings) ListBookings(context.Context, ports.ListBookingsInput) (*ports.ListBookingsResult, error) {
	return &ports.ListBookingsResult{Page: 1, Limit: 20}, nil
}
func (nopBookings) ListUnconfirmed(context.Context) ([]*domain.Booking, error) { return nil, nil }

type nopCatalog struct{}

func (nopCatalog) ListServices(context.Context) ([]*domain.Service, error) { return nil, nil }
func (nopCatalog) GetService(context.Context, string) (*domain.Service, error) {
	return nil, domain.ErrServiceNotFound
}
func (nopCatalog) CreateService(context.Context, ports.CreateServiceInput) (*domain.Service, error) {
	return &domain.Service{ID: "svc"}, nil
}

type nopQuotes struct{}

func (nopQuotes) RequestQuote(context.Context, ports.QuoteRequestInput) (*domain.Quote, error) {
	return &domain.Quote{ID: "q"}, nil
}
func (nopQuotes) ListQuotes(context.Context, string) ([]*domain.Quote, error) { return nil, nil }

type nopReviews struct{}

func (nopReviews) SubmitReview(context.Context, ports.SubmitReviewInput) (*domain.Review, error) {
	return &domain.Review{ID: "r"}, nil
}
func (nopReviews) ListReviews(context.Context, string) ([]*domain.Review, error) { return nil, nil }
func (nopReviews) ApproveReview(context.Context, string) error                  { return nil }

type nopAuth struct{}

func (nopAuth) Register(context.Context, string, string, string, string) (*domain.User, error) {
	return &domain.User{ID: "u"}, nil
}
func (nopAuth) Login(context.Context, string, string) (string, *domain.User, error) {
	return "", nil, domain.ErrInvalidCredentials
}
func (nopAuth) RequestPasswordReset(context.Context, string) error { return nil }
func (nopAuth) ResetPassword(context.Context, string, string) error {
	return domain.ErrInvalidResetToken
}

func tokenFor(t *testing.T, role string) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  "u1",
		"role": role,
		"exp":  time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return "Bearer " + signed
}

func TestRouter_Routes(t *testing.T) {
	e := NewRouter(Dependencies{
		Bookings:     nopBookings{},
		Catalog:      nopCatalog{},
		Quotes:       nopQuotes{},
		Reviews:      nopReviews{},
		Auth:         nopAuth{},
		HealthChecks: map[string]handlers.Pinger{"mongo": func(context.Context) error { return nil }},
		RateLimiter:  middleware.NewRateLimiter(0.001, 1),
		JWTSecret:    testSecret,
		CORSOrigins:  []string{"*"},
		Log:          zerolog.Nop(),
	})

	serve := func(method, target, auth, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, target, strings.NewReader(body))
		if body != "" {
			req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		}
		if auth != "" {
			req.Header.Set(echo.HeaderAuthorization, auth)
		}
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec
	}

	admin, staff := tokenFor(t, domain.RoleAdmin), tokenFor(t, domain.RoleStaff)
	review := `{"author_name":"Ana","rating":5,"comment":"Great"}`
	booking := `{"service_id":"s","client_name":"Ana","client_email":"ana@example.com","client_phone":"1","appointment_date":"2030-01-01T10:00:00Z"}`

	cases := []struct {
		name     string
		method   string
		target   string
		auth     string
		body     string
		want     int
		wantCode string
	}{
		{"liveness", http.MethodGet, "/health", "", "", http.StatusOK, ""},
		{"readiness", http.MethodGet, "/health/ready", "", "", http.StatusOK, ""},
		{"metrics", http.MethodGet, "/metrics", "", "", http.StatusOK, ""},
		{"public catalog", http.MethodGet, "/v1/services", "", "", http.StatusOK, ""},
		{"unknown service", http.MethodGet, "/v1/services/roofing", "", "", http.StatusNotFound, "not_found"},
		{"booking conflict", http.MethodPost, "/v1/bookings", "", booking, http.StatusConflict, "slot_unavailable"},
		{"staff list without token", http.MethodGet, "/v1/bookings", "", "", http.StatusUnauthorized, "unauthorized"},
		{"staff list", http.MethodGet, "/v1/bookings", staff, "", http.StatusOK, ""},
		{"unconfirmed is not an id", http.MethodGet, "/v1/bookings/unconfirmed", staff, "", http.StatusOK, ""},
		{"staff cannot create services", http.MethodPost, "/v1/services", staff, `{"slug":"a","name":"A"}`, http.StatusForbidden, "forbidden"},
		{"admin creates services", http.MethodPost, "/v1/services", admin, `{"slug":"a","name":"A"}`, http.StatusCreated, ""},
		{"staff cannot register users", http.MethodPost, "/auth/register", staff, "{}", http.StatusForbidden, "forbidden"},
		{"unknown route", http.MethodGet, "/nope", "", "", http.StatusNotFound, "not_found"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := serve(tc.method, tc.target, tc.auth, tc.body)
			if rec.Code != tc.want {
				t.Fatalf("expected %d, got %d: %s", tc.want, rec.Code, rec.Body.String())
			}
			if tc.wantCode == "" {
				return
			}
			var body errorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("invalid json: %v", err)
			}
			if body.Code != tc.wantCode {
				t.Fatalf("expected code %s, got %s", tc.wantCode, body.Code)
			}
		})
	}

	// The booking above used the only token in the bucket for this client.
	if rec := serve(http.MethodPost, "/v1/reviews", "", review); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 once the budget is spent, got %d", rec.Code)
	}
}
