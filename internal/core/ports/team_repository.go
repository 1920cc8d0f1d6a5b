package ports

import (
	"context"

	"github.com/imagetagger/accounts/internal/core/domain"
)

// TeamRepository handles teams, their membership records and grants.
type TeamRepository interface {
	// CreateTeam persists the team, the creator's membership and the grants
	// atomically; on any failure nothing is persisted. The new team ID is
	// assigned here and stamped on team and grants. A name collision
	// returns domain.ErrTeamExists.
	CreateTeam(ctx context.Context, team *domain.Team, owner domain.Membership, grants []domain.Grant) error
	FindByID(ctx context.Context, id string) (*domain.Team, error)
	// Search returns teams whose name contains term, ignoring case.
	Search(ctx context.Context, term string) ([]domain.Team, error)
	// ListForUser returns every team the user is a member of.
	ListForUser(ctx context.Context, userID string) ([]domain.Team, error)

	ListMemberships(ctx context.Context, teamID string) ([]domain.Membership, error)
	// FindMembership returns domain.ErrMembershipNotFound when the user is not a member.
	FindMembership(ctx context.Context, teamID, userID string) (*domain.Membership, error)
	// AddMember inserts a member record. An existing record, admin or not, is left untouched.
	AddMember(ctx context.Context, teamID, userID string) error
	// SetRole changes the role of an existing membership. Missing records are a no-op.
	SetRole(ctx context.Context, teamID, userID string, role domain.Role) error
	// RemoveMember deletes the membership record, dropping member and admin status together.
	RemoveMember(ctx context.Context, teamID, userID string) error
	CountAdmins(ctx context.Context, teamID string) (int64, error)
}

// GrantRepository exposes the capability grants of a team.
type GrantRepository interface {
	ListGrants(ctx context.Context, teamID string) ([]domain.Grant, error)
}
