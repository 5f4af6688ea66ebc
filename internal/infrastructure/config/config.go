package config

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

const (
	CalendarProviderGoogle = "google"
	CalendarProviderMemory = "memory"

	MailProviderSendGrid = "sendgrid"
	MailProviderLog      = "log"

	// lockTTLMargin covers the storage writes made while the slot lock is
	// held, on top of the two calendar calls.
	lockTTLMargin = 5 * time.Second
)

type Config struct {
	Port      string        `env:"PORT,      default=8080"`
	Env       string        `env:"ENV,       default=development"`
	JWTSecret string        `env:"JWT_SECRET"`
	TokenTTL  time.Duration `env:"JWT_TTL,   default=24h"`
	LogLevel  string        `env:"LOG_LEVEL, default=info"`

	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT, default=15s"`

	// CORSOrigins is the comma separated list of browser origins allowed to
	// call the API (the public website).
	CORSOrigins []string `env:"CORS_ORIGINS, default=*"`

	Mongo     MongoConfig
	Redis     RedisConfig
	Booking   BookingConfig
	Calendar  CalendarConfig
	Mail      MailConfig
	Reset     ResetConfig
	RateLimit RateLimitConfig
}

type MongoConfig struct {
	URI         string `env:"MONGO_URI,           default=mongodb://localhost:27017"`
	Database    string `env:"MONGO_DB,            default=homeservices"`
	MaxPoolSize uint64 `env:"MONGO_MAX_POOL_SIZE, default=50"`
}

type RedisConfig struct {
	// Addr empty disables Redis and with it the booking slot lock.
	Addr     string `env:"REDIS_ADDR, default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,   default=0"`
}

type BookingConfig struct {
	TimeZone    string        `env:"BOOKING_TIMEZONE,   default=America/New_York"`
	Duration    time.Duration `env:"BOOKING_DURATION,   default=1h"`
	MinLeadTime time.Duration `env:"BOOKING_MIN_LEAD,   default=0s"`
	OpenHour    int           `env:"BOOKING_OPEN_HOUR,  default=8"`
	CloseHour   int           `env:"BOOKING_CLOSE_HOUR, default=18"`
	LockTTL     time.Duration `env:"BOOKING_LOCK_TTL,   default=30s"`
	LockWait    time.Duration `env:"BOOKING_LOCK_WAIT,  default=5s"`
}

type CalendarConfig struct {
	Provider     string        `env:"CALENDAR_PROVIDER,      default=google"`
	CalendarID   string        `env:"CALENDAR_ID,            default=primary"`
	ClientID     string        `env:"GOOGLE_CLIENT_ID"`
	ClientSecret string        `env:"GOOGLE_CLIENT_SECRET"`
	RefreshToken string        `env:"GOOGLE_REFRESH_TOKEN"`
	Timeout      time.Duration `env:"CALENDAR_TIMEOUT,       default=10s"`
}

type MailConfig struct {
	Provider          string        `env:"MAIL_PROVIDER,           default=log"`
	SendGridAPIKey    string        `env:"SENDGRID_API_KEY"`
	SendGridHost      string        `env:"SENDGRID_HOST"`
	FromAddress       string        `env:"MAIL_FROM,               default=no-reply@localhost"`
	FromName          string        `env:"MAIL_FROM_NAME,          default=Home Services"`
	InternalRecipient string        `env:"MAIL_INTERNAL_RECIPIENT"`
	Workers           int           `env:"MAIL_WORKERS,            default=4"`
	SendTimeout       time.Duration `env:"MAIL_SEND_TIMEOUT,       default=15s"`
}

type ResetConfig struct {
	URL string        `env:"RESET_URL, default=http://localhost:3000/reset-password"`
	TTL time.Duration `env:"RESET_TOKEN_TTL, default=1h"`
}

type RateLimitConfig struct {
	// RPS <= 0 disables rate limiting of public write endpoints.
	RPS   float64 `env:"RATE_LIMIT_RPS,   default=1"`
	Burst int     `env:"RATE_LIMIT_BURST, default=5"`
}

// Load reads an optional .env file and then configuration from environment
// variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()
	return LoadWith(ctx, envconfig.OsLookuper())
}

// LoadWith reads configuration from l and validates it.
func LoadWith(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cross-field constraints envconfig cannot express.
func (c *Config) Validate() error {
	var errs []error

	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if _, err := time.LoadLocation(c.Booking.TimeZone); err != nil {
		errs = append(errs, fmt.Errorf("BOOKING_TIMEZONE: %w", err))
	}
	if c.Booking.Duration <= 0 {
		errs = append(errs, errors.New("BOOKING_DURATION must be positive"))
	}
	if c.Booking.OpenHour < 0 || c.Booking.CloseHour > 24 || c.Booking.OpenHour >= c.Booking.CloseHour {
		errs = append(errs, errors.New("BOOKING_OPEN_HOUR must be before BOOKING_CLOSE_HOUR within 0..24"))
	}
	// The lock must outlive a booking's conflict check and event creation.
	if minTTL := 2*c.Calendar.Timeout + lockTTLMargin; c.Booking.LockTTL <= minTTL {
		errs = append(errs, fmt.Errorf("BOOKING_LOCK_TTL %s must exceed twice CALENDAR_TIMEOUT plus %s (%s)", c.Booking.LockTTL, lockTTLMargin, minTTL))
	}

	switch strings.ToLower(c.Calendar.Provider) {
	case CalendarProviderGoogle:
		if c.Calendar.ClientID == "" || c.Calendar.ClientSecret == "" || c.Calendar.RefreshToken == "" {
			errs = append(errs, errors.New("GOOGLE_CLIENT_ID, GOOGLE_CLIENT_SECRET and GOOGLE_REFRESH_TOKEN are required for the google calendar provider"))
		}
	case CalendarProviderMemory:
	default:
		errs = append(errs, fmt.Errorf("CALENDAR_PROVIDER %q is not one of: google memory", c.Calendar.Provider))
	}

	switch strings.ToLower(c.Mail.Provider) {
	case MailProviderSendGrid:
		if c.Mail.SendGridAPIKey == "" {
			errs = append(errs, errors.New("SENDGRID_API_KEY is required for the sendgrid mail provider"))
		}
	case MailProviderLog:
	default:
		errs = append(errs, fmt.Errorf("MAIL_PROVIDER %q is not one of: sendgrid log", c.Mail.Provider))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}

// Location returns the business time zone. Validate guarantees it loads.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Booking.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// IsDevelopment reports whether the service runs in a local environment.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development" || c.Env == "local"
}
