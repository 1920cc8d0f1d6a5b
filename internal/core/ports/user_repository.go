package ports

import (
	"context"

	"github.com/imagetagger/accounts/internal/core/domain"
)

// UserRepository defines persistence operations for user accounts.
type UserRepository interface {
	// Create inserts a user and returns it with its assigned ID.
	// Returns domain.ErrUserExists on a username or email collision.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	// FindByUsername matches the username exactly.
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindByIDs(ctx context.Context, ids []string) ([]domain.User, error)
	// ExistsByUsernameOrEmail reports whether either value is already taken.
	// An empty email is ignored.
	ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error)
	// Search returns users whose username contains term (case-sensitive).
	Search(ctx context.Context, term string) ([]domain.User, error)
}
