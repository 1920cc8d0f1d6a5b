package ports

import (
	"context"

	"github.com/imagetagger/accounts/internal/core/domain"
)

// Authorizer decides whether an actor holds a capability on a team.
type Authorizer interface {
	Check(ctx context.Context, actorID string, capability domain.Capability, teamID string) (bool, error)
}
