package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/hearthline/homeservices-api/internal/api/handler"
	"github.com/hearthline/homeservices-api/internal/api/middleware"
	"github.com/hearthline/homeservices-api/internal/core/domain"
	"github.com/hearthline/homeservices-api/internal/core/ports"
	"github.com/hearthline/homeservices-api/internal/infrastructure/http/handlers"
)

// Dependencies carries everything the router needs to build its handlers.
type Dependencies struct {
	Bookings ports.BookingService
	Catalog  ports.CatalogService
	Quotes   ports.QuoteService
	Reviews  ports.ReviewService
	Auth     ports.AuthService

	// HealthChecks are pinged by the readiness probe, keyed by dependency name.
	HealthChecks map[string]handlers.Pinger
	// RateLimiter throttles the public write endpoints. Nil disables it.
	RateLimiter *middleware.RateLimiter

	JWTSecret   string
	CORSOrigins []string
	Log         zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(deps.Log))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: deps.CORSOrigins,
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, "Idempotency-Key"},
	}))
	e.Use(echomiddleware.BodyLimit("1M"))
	e.Use(echoprometheus.NewMiddleware("homeservices"))

	// --- Dependencies ---
	authHandler := handler.NewAuthHandler(deps.Auth)
	bookingHandler := handler.NewBookingHandler(deps.Bookings)
	websiteHandler := handler.NewWebsiteHandler(deps.Catalog, deps.Quotes, deps.Reviews)
	authMiddleware := middleware.Auth(deps.JWTSecret)

	var publicWrite []echo.MiddlewareFunc
	if deps.RateLimiter != nil {
		publicWrite = append(publicWrite, middleware.RateLimit(deps.RateLimiter))
	}

	// --- Auth routes ---
	e.POST("/auth/login", authHandler.Login, publicWrite...)
	e.POST("/auth/password/forgot", authHandler.ForgotPassword, publicWrite...)
	e.POST("/auth/password/reset", authHandler.ResetPassword, publicWrite...)
	e.POST("/auth/register", authHandler.Register, authMiddleware, middleware.RBAC(domain.RoleAdmin))

	v1 := e.Group("/v1")

	// --- Public website routes ---
	v1.GET("/services", websiteHandler.ListServices)
	v1.GET("/services/:id", websiteHandler.GetService)
	v1.GET("/reviews", websiteHandler.ListReviews)
	v1.GET("/availability", bookingHandler.Availability)
	v1.POST("/bookings", bookingHandler.Create, publicWrite...)
	v1.POST("/quotes", websiteHandler.RequestQuote, publicWrite...)
	v1.POST("/reviews", websiteHandler.SubmitReview, publicWrite...)

	// --- Staff routes ---
	staff := v1.Group("", authMiddleware, middleware.RBAC(domain.RoleAdmin, domain.RoleStaff))
	staff.GET("/bookings", bookingHandler.List)
	staff.GET("/bookings/unconfirmed", bookingHandler.ListUnconfirmed)
	staff.GET("/bookings/:id", bookingHandler.Get)
	staff.GET("/quotes", websiteHandler.ListQuotes)

	// --- Admin routes ---
	admin := v1.Group("", authMiddleware, middleware.RBAC(domain.RoleAdmin))
	admin.POST("/services", websiteHandler.CreateService)
	admin.PATCH("/reviews/:id/approve", websiteHandler.ApproveReview)

	// --- Health probes (no auth required) ---
	healthHandler := handlers.NewHealthHandler()
	healthDepsHandler := handlers.NewHealthDependenciesHandler(deps.HealthChecks)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?

	// --- Operations ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

// requestLogger writes one structured line per request through zerolog.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogRemoteIP:  true,
		LogError:     true,
		HandleError:  true,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics" || c.Path() == "/health"
		},
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			evt := log.Info()
			if v.Status >= 500 {
				evt = log.Error().Err(v.Error)
			}
			evt.
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Str("remote_ip", v.RemoteIP).
				Msg("request")
			return nil
		},
	})
}
