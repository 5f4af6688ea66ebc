package ports

import (
	"context"

	"github.com/hearthline/homeservices-api/internal/core/domain"
)

// ReviewRepository persists customer reviews.
type ReviewRepository interface {
	Create(ctx context.Context, r *domain.Review) error
	// ListApproved returns approved reviews, optionally for a single service.
	ListApproved(ctx context.Context, serviceID string) ([]*domain.Review, error)
	Approve(ctx context.Context, id string) error
}

// SubmitReviewInput is posted by customers.
type SubmitReviewInput struct {
	ServiceID  string
	AuthorName string
	Rating     int
	Comment    string
}

// ReviewService handles review submission and moderation.
type ReviewService interface {
	SubmitReview(ctx context.Context, input SubmitReviewInput) (*domain.Review, error)
	ListReviews(ctx context.Context, serviceID string) ([]*domain.Review, error)
	ApproveReview(ctx context.Context, id string) error
}
