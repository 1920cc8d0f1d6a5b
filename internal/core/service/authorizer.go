package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/imagetagger/accounts/internal/core/domain"
	"github.com/imagetagger/accounts/internal/core/ports"
)

// grantAuthorizer resolves capabilities from the actor's membership role and
// the grants stored for the team.
type grantAuthorizer struct {
	teams  ports.TeamRepository
	grants ports.GrantRepository
}

// NewAuthorizer returns a ports.Authorizer backed by team memberships and grants.
func NewAuthorizer(teams ports.TeamRepository, grants ports.GrantRepository) ports.Authorizer {
	return &grantAuthorizer{teams: teams, grants: grants}
}

func (a *grantAuthorizer) Check(ctx context.Context, actorID string, capability domain.Capability, teamID string) (bool, error) {
	m, err := a.teams.FindMembership(ctx, teamID, actorID)
	if err != nil {
		if errors.Is(err, domain.ErrMembershipNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("check %s: %w", capability, err)
	}

	grants, err := a.grants.ListGrants(ctx, teamID)
	if err != nil {
		return false, fmt.Errorf("check %s: %w", capability, err)
	}

	for _, g := range grants {
		if g.Capability == capability && m.Role.Includes(g.Role) {
			return true, nil
		}
	}
	return false, nil
}
