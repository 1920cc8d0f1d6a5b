package ports

import (
	"context"

	"github.com/imagetagger/accounts/internal/core/domain"
)

// ImageSetRepository is a read-only view of the image sets owned by teams.
type ImageSetRepository interface {
	// ListByTeam returns the team's image sets with the given visibility, ordered by ID ascending.
	ListByTeam(ctx context.Context, teamID string, public bool) ([]domain.ImageSet, error)
}
