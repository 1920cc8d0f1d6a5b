package ports

import (
	"context"

	"github.com/imagetagger/accounts/internal/core/domain"
)

// RegisterInput carries the registration form.
type RegisterInput struct {
	Username string
	Password string
	Email    string
}

// LoginResult is returned after a successful login.
type LoginResult struct {
	Token     string
	SessionID string
	User      *domain.User
}

type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*domain.User, error)
	Login(ctx context.Context, username, password string) (*LoginResult, error)
	// Logout ends the session. Unknown or empty session IDs are not an error.
	Logout(ctx context.Context, sessionID string) error
}
