package ports

import (
	"context"

	"github.com/hearthline/homeservices-api/internal/core/domain"
)

// QuoteRepository persists quote requests.
type QuoteRepository interface {
	Create(ctx context.Context, q *domain.Quote) error
	List(ctx context.Context, status string) ([]*domain.Quote, error)
}

// QuoteRequestInput is submitted by prospective customers.
type QuoteRequestInput struct {
	ServiceID string
	Name      string
	Email     string
	Phone     string
	Address   string
	Details   string
}

// QuoteService handles quote requests.
type QuoteService interface {
	RequestQuote(ctx context.Context, input QuoteRequestInput) (*domain.Quote, error)
	ListQuotes(ctx context.Context, status string) ([]*domain.Quote, error)
}
