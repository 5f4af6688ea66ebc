package service

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hearthline/homeservices-api/internal/core/domain"
	"github.com/hearthline/homeservices-api/internal/core/ports"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

type catalogService struct {
	repo ports.ServiceRepository
	log  zerolog.Logger
}

// NewCatalogService returns a CatalogService implementation.
func NewCatalogService(repo ports.ServiceRepository, log zerolog.Logger) ports.CatalogService {
	return &catalogService{repo: repo, log: log}
}

// ListServices returns the active services shown on the website.
func (s *catalogService) ListServices(ctx context.Context) ([]*domain.Service, error) {
	items, err := s.repo.List(ctx, true)
	if err != nil {
		return nil, domain.Persistence("list services", err)
	}
	return items, nil
}

func (s *catalogService) GetService(ctx context.Context, id string) (*domain.Service, error) {
	svc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrServiceNotFound) {
			return nil, err
		}
		return nil, domain.Persistence("find service", err)
	}
	return svc, nil
}

func (s *catalogService) CreateService(ctx context.Context, in ports.CreateServiceInput) (*domain.Service, error) {
	slug := strings.ToLower(strings.TrimSpace(in.Slug))
	switch {
	case !slugPattern.MatchString(slug):
		return nil, domain.NewValidationError("slug", "must be lowercase letters, digits and dashes")
	case strings.TrimSpace(in.Name) == "":
		return nil, domain.NewValidationError("name", "is required")
	case in.PriceFrom < 0:
		return nil, domain.NewValidationError("price_from", "must not be negative")
	case in.DurationMinutes < 0:
		return nil, domain.NewValidationError("duration_minutes", "must not be negative")
	}

	currency := strings.ToUpper(strings.TrimSpace(in.Currency))
	if currency == "" {
		currency = "USD"
	}

	svc := &domain.Service{
		ID:              uuid.NewString(),
		Slug:            slug,
		Name:            strings.TrimSpace(in.Name),
		Description:     strings.TrimSpace(in.Description),
		PriceFrom:       in.PriceFrom,
		Currency:        currency,
		DurationMinutes: in.DurationMinutes,
		Active:          true,
		CreatedAt:       time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, svc); err != nil {
		if errors.Is(err, domain.ErrValidation) {
			return nil, err
		}
		return nil, domain.Persistence("create service", err)
	}

	s.log.Info().Str("service_id", svc.ID).Str("slug", svc.Slug).Msg("service created")
	return svc, nil
}
