package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hearthline/homeservices-api/internal/api/metrics"
	"github.com/hearthline/homeservices-api/internal/core/domain"
	"github.com/hearthline/homeservices-api/internal/core/ports"
)

type quoteService struct {
	repo      ports.QuoteRepository
	catalog   ports.ServiceRepository
	notifier  ports.Notifier
	recipient string
	validate  *validator.Validate
	log       zerolog.Logger
}

// NewQuoteService returns a QuoteService. New quotes are forwarded to
// recipient when it is non-empty.
func NewQuoteService(
	repo ports.QuoteRepository,
	catalog ports.ServiceRepository,
	notifier ports.Notifier,
	recipient string,
	log zerolog.Logger,
) ports.QuoteService {
	return &quoteService{
		repo:      repo,
		catalog:   catalog,
		notifier:  notifier,
		recipient: recipient,
		validate:  validator.New(),
		log:       log,
	}
}

func (s *quoteService) RequestQuote(ctx context.Context, in ports.QuoteRequestInput) (*domain.Quote, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, domain.NewValidationError("name", "is required")
	}
	if err := s.validate.Var(strings.TrimSpace(in.Email), "required,email"); err != nil {
		return nil, domain.NewValidationError("email", "must be a valid email")
	}
	if strings.TrimSpace(in.Phone) == "" {
		return nil, domain.NewValidationError("phone", "is required")
	}
	if strings.TrimSpace(in.Details) == "" {
		return nil, domain.NewValidationError("details", "is required")
	}

	serviceName := "General enquiry"
	serviceID := strings.TrimSpace(in.ServiceID)
	if serviceID != "" {
		svc, err := s.catalog.FindByID(ctx, serviceID)
		if err != nil {
			if errors.Is(err, domain.ErrServiceNotFound) {
				return nil, domain.NewValidationError("service_id", "unknown service")
			}
			return nil, domain.Persistence("find service", err)
		}
		serviceName = svc.Name
	}

	q := &domain.Quote{
		ID:        uuid.NewString(),
		ServiceID: serviceID,
		Name:      strings.TrimSpace(in.Name),
		Email:     strings.TrimSpace(in.Email),
		Phone:     strings.TrimSpace(in.Phone),
		Address:   strings.TrimSpace(in.Address),
		Details:   strings.TrimSpace(in.Details),
		Status:    domain.QuoteStatusNew,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, q); err != nil {
		return nil, domain.Persistence("create quote", err)
	}
	metrics.QuotesRequestedTotal.WithLabelValues(serviceID).Inc()

	if s.notifier != nil && s.recipient != "" {
		if err := s.notifier.Notify(ctx, quoteNotification(q, serviceName, s.recipient)); err != nil {
			s.log.Warn().Err(err).Str("quote_id", q.ID).Msg("failed to queue quote notification")
		}
	}
	return q, nil
}

func (s *quoteService) ListQuotes(ctx context.Context, status string) ([]*domain.Quote, error) {
	switch domain.QuoteStatus(status) {
	case "", domain.QuoteStatusNew, domain.QuoteStatusContacted, domain.QuoteStatusClosed:
	default:
		return nil, domain.NewValidationError("status", "must be one of: new contacted closed")
	}
	items, err := s.repo.List(ctx, status)
	if err != nil {
		return nil, domain.Persistence("list quotes", err)
	}
	return items, nil
}
