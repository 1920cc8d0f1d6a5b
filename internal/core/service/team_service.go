package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/imagetagger/accounts/internal/core/domain"
	"github.com/imagetagger/accounts/internal/core/ports"
)

const (
	msgSelfRevoke      = "You can not revoke your own admin privileges."
	msgNoRevokePerm    = "You do not have permission to revoke this users admin privileges in the team %s."
	msgActorNotMember  = "You are no member of the team %s."
	msgTargetNotMember = "The user is not a member of the team %s."
	msgNoGrantPerm     = "You do not have permission to grant this user admin privileges in the team %s."
	msgNoKickPerm      = "You do not have the permission to kick other users from this team."
	msgSelfNotInTeam   = "You are not in the team."
	msgUserNotInTeam   = "The user is not in the team."
)

type teamService struct {
	teams      ports.TeamRepository
	users      ports.UserRepository
	imageSets  ports.ImageSetRepository
	activity   ports.ActivityRepository
	authorizer ports.Authorizer
	log        zerolog.Logger
}

// NewTeamService returns a ports.TeamService implementation.
func NewTeamService(
	teams ports.TeamRepository,
	users ports.UserRepository,
	imageSets ports.ImageSetRepository,
	activity ports.ActivityRepository,
	authorizer ports.Authorizer,
	log zerolog.Logger,
) ports.TeamService {
	return &teamService{
		teams:      teams,
		users:      users,
		imageSets:  imageSets,
		activity:   activity,
		authorizer: authorizer,
		log:        log,
	}
}

// CreateTeam creates the team with the actor as its only member and admin,
// together with the default grants. Either everything is stored or nothing is.
func (s *teamService) CreateTeam(ctx context.Context, actorID, name string) (*domain.Team, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.ErrInvalidTeamName
	}
	team := &domain.Team{
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}
	owner := domain.Membership{
		UserID:    actorID,
		Role:      domain.RoleAdmin,
		CreatedAt: team.CreatedAt,
	}

	if err := s.teams.CreateTeam(ctx, team, owner, domain.DefaultGrants(*team)); err != nil {
		if errors.Is(err, domain.ErrTeamExists) {
			return nil, err
		}
		s.log.Error().Err(err).Str("name", name).Msg("failed to create team")
		return nil, fmt.Errorf("create team: %w", err)
	}

	s.record(ctx, team.ID, domain.ActivityTeamCreated, actorID, actorID)
	s.log.Info().Str("team_id", team.ID).Str("user_id", actorID).Msg("team created")
	return team, nil
}

// RevokeAdmin demotes target to a plain member. Nobody can demote themselves.
func (s *teamService) RevokeAdmin(ctx context.Context, actorID, teamID, targetID string) (*ports.ActionResult, error) {
	if _, err := s.users.FindByID(ctx, targetID); err != nil {
		return nil, err
	}
	team, err := s.teams.FindByID(ctx, teamID)
	if err != nil {
		return nil, err
	}

	if targetID == actorID {
		return rejectTo(ports.DestinationTeam, team.ID, msgSelfRevoke), nil
	}

	ok, err := s.authorizer.Check(ctx, actorID, domain.CapUserManagement, team.ID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return rejectTo(ports.DestinationTeam, team.ID, fmt.Sprintf(msgNoRevokePerm, team.Name)), nil
	}

	m, err := s.findMembership(ctx, team.ID, targetID)
	if err != nil {
		return nil, err
	}
	if m != nil && m.IsAdmin() {
		if err := s.teams.SetRole(ctx, team.ID, targetID, domain.RoleMember); err != nil {
			return nil, fmt.Errorf("revoke admin: %w", err)
		}
		s.record(ctx, team.ID, domain.ActivityAdminRevoked, actorID, targetID)
		s.log.Info().Str("team_id", team.ID).Str("actor_id", actorID).Str("user_id", targetID).Msg("admin revoked")
	}

	return &ports.ActionResult{Destination: ports.DestinationTeam, TeamID: team.ID}, nil
}

// GrantAdmin promotes a member to admin. Admins may always do this; when the
// team has no admin at all any member may, including for themselves.
func (s *teamService) GrantAdmin(ctx context.Context, actorID, teamID, targetID string) (*ports.ActionResult, error) {
	if _, err := s.users.FindByID(ctx, targetID); err != nil {
		return nil, err
	}
	team, err := s.teams.FindByID(ctx, teamID)
	if err != nil {
		return nil, err
	}

	actor, err := s.findMembership(ctx, team.ID, actorID)
	if err != nil {
		return nil, err
	}
	if actor == nil {
		return rejectTo(ports.DestinationExploreTeams, team.ID, fmt.Sprintf(msgActorNotMember, team.Name)), nil
	}

	target, err := s.findMembership(ctx, team.ID, targetID)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return rejectTo(ports.DestinationExploreTeams, team.ID, fmt.Sprintf(msgTargetNotMember, team.Name)), nil
	}

	allowed, err := s.authorizer.Check(ctx, actorID, domain.CapUserManagement, team.ID)
	if err != nil {
		return nil, err
	}
	if !allowed {
		admins, err := s.teams.CountAdmins(ctx, team.ID)
		if err != nil {
			return nil, fmt.Errorf("grant admin: %w", err)
		}
		allowed = admins == 0
	}
	if !allowed {
		return rejectTo(ports.DestinationTeam, team.ID, fmt.Sprintf(msgNoGrantPerm, team.Name)), nil
	}

	if !target.IsAdmin() {
		if err := s.teams.SetRole(ctx, team.ID, targetID, domain.RoleAdmin); err != nil {
			return nil, fmt.Errorf("grant admin: %w", err)
		}
		s.record(ctx, team.ID, domain.ActivityAdminGranted, actorID, targetID)
		s.log.Info().Str("team_id", team.ID).Str("actor_id", actorID).Str("user_id", targetID).Msg("admin granted")
	}

	return &ports.ActionResult{Destination: ports.DestinationTeam, TeamID: team.ID}, nil
}

// LeaveTeam removes the actor, or with a TargetID kicks another user. Without
// Confirm it only returns the context of the confirmation page.
func (s *teamService) LeaveTeam(ctx context.Context, in ports.LeaveTeamInput) (*ports.LeaveTeamResult, error) {
	team, err := s.teams.FindByID(ctx, in.TeamID)
	if err != nil {
		return nil, err
	}

	kick := in.TargetID != ""
	subjectID := in.ActorID
	notInTeam := msgSelfNotInTeam
	if kick {
		if _, err := s.users.FindByID(ctx, in.TargetID); err != nil {
			return nil, err
		}
		subjectID = in.TargetID
		notInTeam = msgUserNotInTeam

		ok, err := s.authorizer.Check(ctx, in.ActorID, domain.CapUserManagement, team.ID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return &ports.LeaveTeamResult{Action: rejectTo(ports.DestinationTeam, team.ID, msgNoKickPerm)}, nil
		}
	}

	m, err := s.findMembership(ctx, team.ID, subjectID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return &ports.LeaveTeamResult{Action: rejectTo(ports.DestinationTeam, team.ID, notInTeam)}, nil
	}

	if !in.Confirm {
		subject, err := s.users.FindByID(ctx, subjectID)
		if err != nil {
			return nil, err
		}
		return &ports.LeaveTeamResult{Confirmation: &ports.LeaveConfirmation{User: subject, Team: team}}, nil
	}

	if err := s.teams.RemoveMember(ctx, team.ID, subjectID); err != nil {
		return nil, fmt.Errorf("leave team: %w", err)
	}

	dest := ports.DestinationExploreTeams
	kind := domain.ActivityMemberLeft
	if kick {
		dest = ports.DestinationTeam
		kind = domain.ActivityMemberKicked
	}
	s.record(ctx, team.ID, kind, in.ActorID, subjectID)
	s.log.Info().Str("team_id", team.ID).Str("actor_id", in.ActorID).Str("user_id", subjectID).Str("kind", string(kind)).Msg("membership removed")

	return &ports.LeaveTeamResult{Action: &ports.ActionResult{Destination: dest, TeamID: team.ID}}, nil
}

// ViewTeam assembles the team page. When AddUsername is set and the actor may
// manage users, the matching user is added as a member first; an unknown
// username is ignored.
func (s *teamService) ViewTeam(ctx context.Context, in ports.ViewTeamInput) (*ports.TeamView, error) {
	team, err := s.teams.FindByID(ctx, in.TeamID)
	if err != nil {
		return nil, err
	}

	if in.AddUsername != "" {
		if err := s.addByUsername(ctx, in.ActorID, team.ID, in.AddUsername); err != nil {
			return nil, err
		}
	}

	view := &ports.TeamView{Team: team}
	var memberships []domain.Membership

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		memberships, err = s.teams.ListMemberships(gctx, team.ID)
		return err
	})
	g.Go(func() error {
		var err error
		view.PublicImageSets, err = s.imageSets.ListByTeam(gctx, team.ID, true)
		return err
	})
	g.Go(func() error {
		var err error
		view.PrivateImageSets, err = s.imageSets.ListByTeam(gctx, team.ID, false)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("view team: %w", err)
	}

	ids := make([]string, 0, len(memberships))
	for _, m := range memberships {
		ids = append(ids, m.UserID)
	}
	users, err := s.users.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("view team: %w", err)
	}
	byID := make(map[string]domain.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}

	view.Members = make([]domain.User, 0, len(memberships))
	view.Admins = make([]domain.User, 0)
	for _, m := range memberships {
		u, ok := byID[m.UserID]
		if !ok {
			continue
		}
		view.Members = append(view.Members, u)
		if m.UserID == in.ActorID {
			view.IsMember = true
		}
		if m.IsAdmin() {
			view.Admins = append(view.Admins, u)
			if m.UserID == in.ActorID {
				view.IsAdmin = true
			}
		}
	}
	view.NoAdmin = len(view.Admins) == 0

	return view, nil
}

// UserProfile returns a user with the teams they belong to. Points are not
// computed yet and are always zero.
func (s *teamService) UserProfile(ctx context.Context, userID string) (*ports.UserProfile, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	teams, err := s.teams.ListForUser(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("user profile: %w", err)
	}
	// TODO: sum annotation and verification points once the annotations service exposes them.
	return &ports.UserProfile{User: user, Teams: teams, Points: 0}, nil
}

func (s *teamService) addByUsername(ctx context.Context, actorID, teamID, username string) error {
	ok, err := s.authorizer.Check(ctx, actorID, domain.CapUserManagement, teamID)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			s.log.Debug().Str("team_id", teamID).Str("username", username).Msg("no user to add")
			return nil
		}
		return err
	}

	if err := s.teams.AddMember(ctx, teamID, user.ID); err != nil {
		return fmt.Errorf("add member: %w", err)
	}
	s.record(ctx, teamID, domain.ActivityMemberAdded, actorID, user.ID)
	s.log.Info().Str("team_id", teamID).Str("actor_id", actorID).Str("user_id", user.ID).Msg("member added")
	return nil
}

// findMembership returns nil without error when the user is not a member.
func (s *teamService) findMembership(ctx context.Context, teamID, userID string) (*domain.Membership, error) {
	m, err := s.teams.FindMembership(ctx, teamID, userID)
	if err != nil {
		if errors.Is(err, domain.ErrMembershipNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return m, nil
}

// record appends to the audit trail. Failures are logged, never returned.
func (s *teamService) record(ctx context.Context, teamID string, kind domain.ActivityKind, actorID, subjectID string) {
	err := s.activity.Record(ctx, &domain.TeamActivity{
		TeamID:    teamID,
		Kind:      kind,
		ActorID:   actorID,
		SubjectID: subjectID,
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		s.log.Warn().Err(err).Str("team_id", teamID).Str("kind", string(kind)).Msg("failed to record team activity")
	}
}

func rejectTo(dest ports.Destination, teamID, text string) *ports.ActionResult {
	return &ports.ActionResult{
		Destination: dest,
		TeamID:      teamID,
		Notices:     []domain.Notice{domain.Warning(text)},
	}
}
