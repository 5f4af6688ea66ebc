package ports

import (
	"context"
	"time"

	"github.com/hearthline/homeservices-api/internal/core/domain"
)

// AuthRepository defines the interface for user authentication persistence.
type AuthRepository interface {
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	// FindByResetTokenHash returns the user holding the given reset token hash.
	FindByResetTokenHash(ctx context.Context, tokenHash string) (*domain.User, error)
	// SetResetToken stores (or clears, when tokenHash is empty) the reset token.
	SetResetToken(ctx context.Context, userID, tokenHash string, expiry *time.Time) error
	// UpdatePassword replaces the password hash and clears any reset token.
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
}
