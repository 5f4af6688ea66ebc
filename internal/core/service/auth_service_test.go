package service

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/hearthline/homeservices-api/internal/core/domain"
	"github.com/hearthline/homeservices-api/internal/core/ports"
)

type stubAuthRepo struct {
	users map[string]*domain.User
}

func newStubAuthRepo() *stubAuthRepo {
	return &stubAuthRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubAuthRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	for _, u := range r.users {
		if u.Username == user.Username || u.Email == user.Email {
			return nil, domain.ErrUserExists
		}
	}
	copy := cloneUser(user)
	if copy.ID == "" {
		copy.ID = user.Username
	}
	r.users[copy.ID] = cloneUser(copy)
	return cloneUser(copy), nil
}

func (r *stubAuthRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubAuthRepo) FindByResetTokenHash(_ context.Context, tokenHash string) (*domain.User, error) {
	for _, u := range r.users {
		if tokenHash != "" && u.ResetTokenHash == tokenHash {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubAuthRepo) SetResetToken(_ context.Context, userID, tokenHash string, expiry *time.Time) error {
	u, ok := r.users[userID]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.ResetTokenHash = tokenHash
	u.ResetTokenExpiry = expiry
	return nil
}

func (r *stubAuthRepo) UpdatePassword(_ context.Context, userID, passwordHash string) error {
	u, ok := r.users[userID]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.PasswordHash = passwordHash
	u.ResetTokenHash = ""
	u.ResetTokenExpiry = nil
	return nil
}

func newTestAuthService(repo ports.AuthRepository, notifier ports.Notifier) *AuthService {
	return NewAuthService(repo, notifier, "secret", time.Hour, PasswordResetOptions{
		URL: "https://example.com/reset-password",
		TTL: time.Hour,
	}, zerolog.Nop())
}

func TestAuthService_Register_Success(t *testing.T) {
	repo := newStubAuthRepo()
	svc := newTestAuthService(repo, nil)

	user, err := svc.Register(context.Background(), "alice", "pass1234", "Alice@Example.com", domain.RoleStaff)
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if user == nil {
		t.Fatalf("expected user, got nil")
	}
	if user.PasswordHash == "pass1234" {
		t.Fatalf("expected password to be hashed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("pass1234")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}
	if user.Role != domain.RoleStaff {
		t.Fatalf("unexpected role: %s", user.Role)
	}
	if user.Email != "alice@example.com" {
		t.Fatalf("expected normalised email, got %s", user.Email)
	}
}

func TestAuthService_Register_Validation(t *testing.T) {
	repo := newStubAuthRepo()
	svc := newTestAuthService(repo, nil)

	if _, err := svc.Register(context.Background(), "", "pass1234", "", domain.RoleStaff); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if _, err := svc.Register(context.Background(), "bob", "short", "bob@example.com", domain.RoleStaff); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation for short password, got %v", err)
	}
	if _, err := svc.Register(context.Background(), "bob", "pass1234", "bob@example.com", "client"); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation for bad role, got %v", err)
	}
}

func TestAuthService_Register_Duplicate(t *testing.T) {
	repo := newStubAuthRepo()
	svc := newTestAuthService(repo, nil)

	_, _ = svc.Register(context.Background(), "bob", "pass1234", "bob@example.com", domain.RoleStaff)
	if _, err := svc.Register(context.Background(), "bob", "pass5678", "bob@example.com", domain.RoleStaff); err != domain.ErrUserExists {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestAuthService_Login_Success(t *testing.T) {
	repo := newStubAuthRepo()
	svc := newTestAuthService(repo, nil)

	if _, err := svc.Register(context.Background(), "carol", "s3cret-pass", "carol@example.com", domain.RoleAdmin); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	token, user, err := svc.Login(context.Background(), "carol@example.com", "s3cret-pass")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if token == "" {
		t.Fatalf("expected token, got empty")
	}
	if user == nil || user.Username != "carol" {
		t.Fatalf("unexpected user: %+v", user)
	}

	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte("secret"), nil
	})
	if err != nil || !parsed.Valid {
		t.Fatalf("token invalid: %v", err)
	}
	if claims["role"] != domain.RoleAdmin {
		t.Fatalf("expected role %s, got %v", domain.RoleAdmin, claims["role"])
	}
	if claims["sub"] != user.ID {
		t.Fatalf("expected sub %s, got %v", user.ID, claims["sub"])
	}
}

func TestAuthService_Login_InvalidPassword(t *testing.T) {
	repo := newStubAuthRepo()
	svc := newTestAuthService(repo, nil)

	_, _ = svc.Register(context.Background(), "dave", "goodpass", "dave@example.com", domain.RoleStaff)
	if _, _, err := svc.Login(context.Background(), "dave@example.com", "badpass"); err != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_Login_UnknownUserLooksLikeBadPassword(t *testing.T) {
	repo := newStubAuthRepo()
	svc := newTestAuthService(repo, nil)

	if _, _, err := svc.Login(context.Background(), "ghost@example.com", "pass"); err != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_PasswordReset_RoundTrip(t *testing.T) {
	repo := newStubAuthRepo()
	notifier := &stubNotifier{}
	svc := newTestAuthService(repo, notifier)

	if _, err := svc.Register(context.Background(), "erin", "old-password", "erin@example.com", domain.RoleStaff); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if err := svc.RequestPasswordReset(context.Background(), "erin@example.com"); err != nil {
		t.Fatalf("request reset failed: %v", err)
	}

	if len(notifier.sent) != 1 || notifier.sent[0].Kind != ports.NotifyPasswordReset {
		t.Fatalf("expected one reset notification, got %+v", notifier.sent)
	}
	token := resetTokenFromBody(t, notifier.sent[0].Body)

	stored := repo.users["erin"]
	if stored.ResetTokenHash == token {
		t.Fatal("reset token must be stored hashed")
	}
	if stored.ResetTokenHash != hashResetToken(token) {
		t.Fatal("stored hash does not match issued token")
	}

	if err := svc.ResetPassword(context.Background(), token, "new-password"); err != nil {
		t.Fatalf("reset failed: %v", err)
	}
	if _, _, err := svc.Login(context.Background(), "erin@example.com", "new-password"); err != nil {
		t.Fatalf("login with new password failed: %v", err)
	}
	if err := svc.ResetPassword(context.Background(), token, "another-password"); err != domain.ErrInvalidResetToken {
		t.Fatalf("expected token to be single use, got %v", err)
	}
}

func TestAuthService_PasswordReset_Expired(t *testing.T) {
	repo := newStubAuthRepo()
	notifier := &stubNotifier{}
	svc := newTestAuthService(repo, notifier)

	_, _ = svc.Register(context.Background(), "frank", "old-password", "frank@example.com", domain.RoleStaff)
	_ = svc.RequestPasswordReset(context.Background(), "frank@example.com")
	token := resetTokenFromBody(t, notifier.sent[0].Body)

	svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	if err := svc.ResetPassword(context.Background(), token, "new-password"); err != domain.ErrInvalidResetToken {
		t.Fatalf("expected ErrInvalidResetToken, got %v", err)
	}
}

func TestAuthService_PasswordReset_UnknownEmailIsSilent(t *testing.T) {
	notifier := &stubNotifier{}
	svc := newTestAuthService(newStubAuthRepo(), notifier)

	if err := svc.RequestPasswordReset(context.Background(), "nobody@example.com"); err != nil {
		t.Fatalf("expected nil for unknown address, got %v", err)
	}
	if len(notifier.sent) != 0 {
		t.Fatal("no e-mail should be sent for unknown address")
	}
	if err := svc.ResetPassword(context.Background(), "deadbeef", "new-password"); err != domain.ErrInvalidResetToken {
		t.Fatalf("expected ErrInvalidResetToken, got %v", err)
	}
}

func resetTokenFromBody(t *testing.T, body string) string {
	t.Helper()
	for _, line := range strings.Split(body, "\n") {
		if !strings.HasPrefix(line, "https://") {
			continue
		}
		u, err := url.Parse(line)
		if err != nil {
			t.Fatalf("bad reset link %q: %v", line, err)
		}
		if tok := u.Query().Get("token"); tok != "" {
			return tok
		}
	}
	t.Fatalf("no reset link in body:\n%s", body)
	return ""
}
