package ports

import (
	"context"

	"github.com/imagetagger/accounts/internal/core/domain"
)

// ActivityRepository persists the team audit trail.
type ActivityRepository interface {
	Record(ctx context.Context, activity *domain.TeamActivity) error
}
