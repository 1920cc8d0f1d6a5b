package ports

import (
	"context"

	"github.com/imagetagger/accounts/internal/core/domain"
)

// Destination names the page a client should move to after an action.
type Destination string

const (
	DestinationIndex        Destination = "index"
	DestinationTeam         Destination = "team"
	DestinationExploreTeams Destination = "explore_team"
)

// ActionResult is the outcome of a state-changing team action: where to go
// next and the notices to show there. Rejected actions carry warnings and
// leave state untouched.
type ActionResult struct {
	Destination Destination
	TeamID      string
	Notices     []domain.Notice
}

// Rejected reports whether the action was refused.
func (r *ActionResult) Rejected() bool {
	for _, n := range r.Notices {
		if n.Severity == domain.SeverityWarning {
			return true
		}
	}
	return false
}

// LeaveTeamInput describes a leave or kick request. An empty TargetID means
// the actor leaves; Confirm is false for the confirmation page request.
type LeaveTeamInput struct {
	ActorID  string
	TeamID   string
	TargetID string
	Confirm  bool
}

// LeaveTeamResult holds either the confirmation context (Confirmation set)
// or the outcome of the action.
type LeaveTeamResult struct {
	Action       *ActionResult
	Confirmation *LeaveConfirmation
}

type LeaveConfirmation struct {
	User *domain.User
	Team *domain.Team
}

// ViewTeamInput carries the team page request. AddUsername is set when the
// page was submitted with a user to add.
type ViewTeamInput struct {
	ActorID     string
	TeamID      string
	AddUsername string
}

// TeamView is everything the team page shows.
type TeamView struct {
	Team             *domain.Team
	Members          []domain.User
	Admins           []domain.User
	IsMember         bool
	IsAdmin          bool
	NoAdmin          bool
	PublicImageSets  []domain.ImageSet
	PrivateImageSets []domain.ImageSet
}

// UserProfile is the public profile of a user.
type UserProfile struct {
	User   *domain.User
	Teams  []domain.Team
	Points int
}

// TeamService implements the team administration use cases.
type TeamService interface {
	CreateTeam(ctx context.Context, actorID, name string) (*domain.Team, error)
	GrantAdmin(ctx context.Context, actorID, teamID, targetID string) (*ActionResult, error)
	RevokeAdmin(ctx context.Context, actorID, teamID, targetID string) (*ActionResult, error)
	LeaveTeam(ctx context.Context, input LeaveTeamInput) (*LeaveTeamResult, error)
	ViewTeam(ctx context.Context, input ViewTeamInput) (*TeamView, error)
	UserProfile(ctx context.Context, userID string) (*UserProfile, error)
}

// DirectoryService lists and searches teams and users.
type DirectoryService interface {
	ExploreTeams(ctx context.Context, term string) ([]domain.Team, error)
	ExploreUsers(ctx context.Context, term string) ([]domain.User, error)
}
