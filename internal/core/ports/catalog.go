package ports

import (
	"context"

	"github.com/hearthline/homeservices-api/internal/core/domain"
)

// ServiceRepository persists catalog services.
type ServiceRepository interface {
	Create(ctx context.Context, s *domain.Service) error
	FindByID(ctx context.Context, id string) (*domain.Service, error)
	List(ctx context.Context, activeOnly bool) ([]*domain.Service, error)
}

// CreateServiceInput carries the fields of a new catalog entry.
type CreateServiceInput struct {
	Slug            string
	Name            string
	Description     string
	PriceFrom       float64
	Currency        string
	DurationMinutes int
}

// CatalogService lists and manages the services offered on the website.
type CatalogService interface {
	ListServices(ctx context.Context) ([]*domain.Service, error)
	GetService(ctx context.Context, id string) (*domain.Service, error)
	CreateService(ctx context.Context, input CreateServiceInput) (*domain.Service, error)
}
