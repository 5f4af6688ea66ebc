// @title           Home Services API
// @version         1.0
// @description     Booking, catalog, quote and review API for a home services website.
// @BasePath        /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	_ "github.com/hearthline/homeservices-api/docs"
	"github.com/hearthline/homeservices-api/internal/api"
	"github.com/hearthline/homeservices-api/internal/api/middleware"
	"github.com/hearthline/homeservices-api/internal/core/ports"
	"github.com/hearthline/homeservices-api/internal/core/service"
	"github.com/hearthline/homeservices-api/internal/infrastructure/calendar"
	"github.com/hearthline/homeservices-api/internal/infrastructure/config"
	mongodb "github.com/hearthline/homeservices-api/internal/infrastructure/db/mongo"
	redisdb "github.com/hearthline/homeservices-api/internal/infrastructure/db/redis"
	"github.com/hearthline/homeservices-api/internal/infrastructure/http/handlers"
	"github.com/hearthline/homeservices-api/internal/infrastructure/mail"
	"github.com/hearthline/homeservices-api/internal/infrastructure/queue"
	"github.com/hearthline/homeservices-api/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		boot := logger.Init(logger.Options{Service: "homeservices-api"})
		boot.Fatal().Err(err).Msg("config load failed")
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "homeservices-api",
	})
	log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("starting")

	// --- Storage ---
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:         cfg.Mongo.URI,
		Database:    cfg.Mongo.Database,
		MaxPoolSize: cfg.Mongo.MaxPoolSize,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connection failed")
	}
	defer func() {
		dctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := mongoClient.Disconnect(dctx); err != nil {
			log.Warn().Err(err).Msg("mongo disconnect failed")
		}
	}()

	bookingRepo := mongodb.NewBookingRepository(db)
	serviceRepo := mongodb.NewServiceRepository(db)
	quoteRepo := mongodb.NewQuoteRepository(db)
	reviewRepo := mongodb.NewReviewRepository(db)
	authRepo := mongodb.NewAuthRepository(db)
	if err := mongodb.EnsureIndexes(ctx, map[string]mongodb.Indexer{
		"bookings": bookingRepo,
		"services": serviceRepo,
		"quotes":   quoteRepo,
		"reviews":  reviewRepo,
		"users":    authRepo,
	}); err != nil {
		log.Fatal().Err(err).Msg("index creation failed")
	}

	health := map[string]handlers.Pinger{"mongo": handlers.MongoPinger(db)}

	var locker ports.SlotLocker
	if cfg.Redis.Addr != "" {
		rdb, err := redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err != nil {
			log.Fatal().Err(err).Msg("redis connection failed")
		}
		defer rdb.Close()
		locker = redisdb.NewSlotLocker(rdb, cfg.Booking.LockTTL, cfg.Booking.LockWait, logger.Component("slot_lock"))
		health["redis"] = handlers.RedisPinger(rdb)
	} else {
		log.Warn().Msg("REDIS_ADDR empty: concurrent bookings are not serialised")
	}

	// --- Calendar ---
	gateway, err := newCalendar(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("calendar client setup failed")
	}

	// --- Notifications ---
	dispatcher := queue.NewDispatcher(cfg.Mail.Workers, newMailer(cfg), cfg.Mail.SendTimeout, logger.Component("notifications"))
	// Workers outlive the signal so Shutdown can drain the queue.
	dispatcher.Start(context.WithoutCancel(ctx))

	// --- Services ---
	bookingSvc := service.NewBookingService(bookingRepo, serviceRepo, gateway, locker, dispatcher, service.BookingOptions{
		Duration:          cfg.Booking.Duration,
		Location:          cfg.Location(),
		MinLeadTime:       cfg.Booking.MinLeadTime,
		InternalRecipient: cfg.Mail.InternalRecipient,
		OpenHour:          cfg.Booking.OpenHour,
		CloseHour:         cfg.Booking.CloseHour,
	}, logger.Component("booking"))
	authSvc := service.NewAuthService(authRepo, dispatcher, cfg.JWTSecret, cfg.TokenTTL, service.PasswordResetOptions{
		URL: cfg.Reset.URL,
		TTL: cfg.Reset.TTL,
	}, logger.Component("auth"))

	var limiter *middleware.RateLimiter
	if cfg.RateLimit.RPS > 0 {
		limiter = middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
		go limiter.Run(ctx)
	}

	e := api.NewRouter(api.Dependencies{
		Bookings:     bookingSvc,
		Catalog:      service.NewCatalogService(serviceRepo, logger.Component("catalog")),
		Quotes:       service.NewQuoteService(quoteRepo, serviceRepo, dispatcher, cfg.Mail.InternalRecipient, logger.Component("quotes")),
		Reviews:      service.NewReviewService(reviewRepo, logger.Component("reviews")),
		Auth:         authSvc,
		HealthChecks: health,
		RateLimiter:  limiter,
		JWTSecret:    cfg.JWTSecret,
		CORSOrigins:  cfg.CORSOrigins,
		Log:          log,
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- e.Start(":" + cfg.Port)
	}()
	log.Info().Str("port", cfg.Port).Msg("http server started")

	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("http server stopped with error")
		}
	}

	shutdown(log, e.Shutdown, dispatcher, cfg.ShutdownTimeout)
}

func shutdown(log zerolog.Logger, stopHTTP func(context.Context) error, dispatcher *queue.Dispatcher, timeout time.Duration) {
	log.Info().Dur("timeout", timeout).Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := stopHTTP(ctx); err != nil {
		log.Warn().Err(err).Msg("http graceful shutdown failed")
	}
	// Drain queued e-mails after no new requests can enqueue more.
	if err := dispatcher.Shutdown(ctx); err != nil {
		log.Warn().Err(err).Msg("notification queue not drained before timeout")
	}
	log.Info().Msg("stopped")
}

func newCalendar(ctx context.Context, cfg *config.Config) (ports.CalendarGateway, error) {
	if strings.ToLower(cfg.Calendar.Provider) == config.CalendarProviderMemory {
		log := logger.Get()
		log.Warn().Msg("using in-memory calendar: bookings are not written to a real calendar")
		return calendar.NewMemoryCalendar(), nil
	}
	return calendar.NewGoogleCalendar(ctx, calendar.GoogleConfig{
		ClientID:     cfg.Calendar.ClientID,
		ClientSecret: cfg.Calendar.ClientSecret,
		RefreshToken: cfg.Calendar.RefreshToken,
		CalendarID:   cfg.Calendar.CalendarID,
		Location:     cfg.Location(),
		Timeout:      cfg.Calendar.Timeout,
	}, logger.Component("calendar"))
}

func newMailer(cfg *config.Config) ports.Mailer {
	if strings.ToLower(cfg.Mail.Provider) == config.MailProviderSendGrid {
		return mail.NewSendGridMailer(mail.SendGridConfig{
			APIKey:   cfg.Mail.SendGridAPIKey,
			Host:     cfg.Mail.SendGridHost,
			FromAddr: cfg.Mail.FromAddress,
			FromName: cfg.Mail.FromName,
		})
	}
	return mail.NewLogMailer(logger.Component("mail"))
}
