package ports

import (
	"context"

	"github.com/hearthline/homeservices-api/internal/core/domain"
)

type AuthService interface {
	Register(ctx context.Context, username, password, email, role string) (*domain.User, error)
	Login(ctx context.Context, email, password string) (string, *domain.User, error)
	// RequestPasswordReset e-mails a reset link when the address is known.
	// Unknown addresses are not reported to the caller.
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
}
