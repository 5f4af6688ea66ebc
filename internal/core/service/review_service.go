package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hearthline/homeservices-api/internal/core/domain"
	"github.com/hearthline/homeservices-api/internal/core/ports"
)

const maxReviewLength = 2000

type reviewService struct {
	repo ports.ReviewRepository
	log  zerolog.Logger
}

// NewReviewService returns a ReviewService implementation.
func NewReviewService(repo ports.ReviewRepository, log zerolog.Logger) ports.ReviewService {
	return &reviewService{repo: repo, log: log}
}

// SubmitReview stores a review in the moderation queue.
func (s *reviewService) SubmitReview(ctx context.Context, in ports.SubmitReviewInput) (*domain.Review, error) {
	comment := strings.TrimSpace(in.Comment)
	switch {
	case strings.TrimSpace(in.AuthorName) == "":
		return nil, domain.NewValidationError("author_name", "is required")
	case in.Rating < 1 || in.Rating > 5:
		return nil, domain.NewValidationError("rating", "must be between 1 and 5")
	case comment == "":
		return nil, domain.NewValidationError("comment", "is required")
	case len(comment) > maxReviewLength:
		return nil, domain.NewValidationError("comment", "is too long")
	}

	r := &domain.Review{
		ID:         uuid.NewString(),
		ServiceID:  strings.TrimSpace(in.ServiceID),
		AuthorName: strings.TrimSpace(in.AuthorName),
		Rating:     in.Rating,
		Comment:    comment,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, r); err != nil {
		return nil, domain.Persistence("create review", err)
	}
	return r, nil
}

// ListReviews returns approved reviews, optionally filtered by service.
func (s *reviewService) ListReviews(ctx context.Context, serviceID string) ([]*domain.Review, error) {
	items, err := s.repo.ListApproved(ctx, strings.TrimSpace(serviceID))
	if err != nil {
		return nil, domain.Persistence("list reviews", err)
	}
	return items, nil
}

func (s *reviewService) ApproveReview(ctx context.Context, id string) error {
	if err := s.repo.Approve(ctx, id); err != nil {
		if errors.Is(err, domain.ErrReviewNotFound) {
			return err
		}
		return domain.Persistence("approve review", err)
	}
	s.log.Info().Str("review_id", id).Msg("review approved")
	return nil
}
