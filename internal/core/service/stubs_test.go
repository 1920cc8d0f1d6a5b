package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/imagetagger/accounts/internal/core/domain"
)

// ---------------------------------------------------------------------------
// Users
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	mu     sync.Mutex
	byID   map[string]*domain.User
	nextID int
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{byID: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.byID {
		if u.Username == user.Username || (user.Email != "" && u.Email == user.Email) {
			return nil, domain.ErrUserExists
		}
	}
	r.nextID++
	created := cloneUser(user)
	created.ID = fmt.Sprintf("user-%d", r.nextID)
	r.byID[created.ID] = cloneUser(created)
	return created, nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.byID {
		if u.Username == username {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByIDs(_ context.Context, ids []string) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]domain.User, 0, len(ids))
	for _, id := range ids {
		if u, ok := r.byID[id]; ok {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *stubUserRepo) ExistsByUsernameOrEmail(_ context.Context, username, email string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.byID {
		if u.Username == username || (email != "" && u.Email == email) {
			return true, nil
		}
	}
	return false, nil
}

func (r *stubUserRepo) Search(_ context.Context, term string) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := []domain.User{}
	for _, u := range r.byID {
		if strings.Contains(u.Username, term) {
			out = append(out, *u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

// add inserts a user directly and returns its ID.
func (r *stubUserRepo) add(username string) string {
	u, err := r.Create(context.Background(), &domain.User{Username: username, CreatedAt: time.Now().UTC()})
	if err != nil {
		panic(err)
	}
	return u.ID
}

// ---------------------------------------------------------------------------
// Teams, memberships and grants
// ---------------------------------------------------------------------------

type stubTeamRepo struct {
	mu          sync.Mutex
	teams       map[string]*domain.Team
	memberships map[string][]domain.Membership // team ID -> records in insertion order
	grants      map[string][]domain.Grant
	nextID      int

	createErr error
	grantsErr error
}

func newStubTeamRepo() *stubTeamRepo {
	return &stubTeamRepo{
		teams:       make(map[string]*domain.Team),
		memberships: make(map[string][]domain.Membership),
		grants:      make(map[string][]domain.Grant),
	}
}

func (r *stubTeamRepo) CreateTeam(_ context.Context, team *domain.Team, owner domain.Membership, grants []domain.Grant) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.createErr != nil {
		return r.createErr
	}
	for _, t := range r.teams {
		if t.Name == team.Name {
			return domain.ErrTeamExists
		}
	}

	r.nextID++
	team.ID = fmt.Sprintf("team-%d", r.nextID)
	stored := *team
	r.teams[team.ID] = &stored

	owner.TeamID = team.ID
	r.memberships[team.ID] = []domain.Membership{owner}
	for i := range grants {
		grants[i].TeamID = team.ID
	}
	r.grants[team.ID] = append([]domain.Grant(nil), grants...)
	return nil
}

func (r *stubTeamRepo) FindByID(_ context.Context, id string) (*domain.Team, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.teams[id]
	if !ok {
		return nil, domain.ErrTeamNotFound
	}
	clone := *t
	return &clone, nil
}

func (r *stubTeamRepo) Search(_ context.Context, term string) ([]domain.Team, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := []domain.Team{}
	for _, t := range r.teams {
		if strings.Contains(strings.ToLower(t.Name), strings.ToLower(term)) {
			out = append(out, *t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *stubTeamRepo) ListForUser(_ context.Context, userID string) ([]domain.Team, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := []domain.Team{}
	for teamID, ms := range r.memberships {
		for _, m := range ms {
			if m.UserID == userID {
				out = append(out, *r.teams[teamID])
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *stubTeamRepo) ListMemberships(_ context.Context, teamID string) ([]domain.Membership, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]domain.Membership(nil), r.memberships[teamID]...), nil
}

func (r *stubTeamRepo) FindMembership(_ context.Context, teamID, userID string) (*domain.Membership, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, m := range r.memberships[teamID] {
		if m.UserID == userID {
			clone := m
			return &clone, nil
		}
	}
	return nil, domain.ErrMembershipNotFound
}

func (r *stubTeamRepo) AddMember(_ context.Context, teamID, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, m := range r.memberships[teamID] {
		if m.UserID == userID {
			return nil
		}
	}
	r.memberships[teamID] = append(r.memberships[teamID], domain.Membership{
		TeamID:    teamID,
		UserID:    userID,
		Role:      domain.RoleMember,
		CreatedAt: time.Now().UTC(),
	})
	return nil
}

func (r *stubTeamRepo) SetRole(_ context.Context, teamID, userID string, role domain.Role) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ms := r.memberships[teamID]
	for i := range ms {
		if ms[i].UserID == userID {
			ms[i].Role = role
		}
	}
	return nil
}

func (r *stubTeamRepo) RemoveMember(_ context.Context, teamID, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ms := r.memberships[teamID]
	kept := ms[:0]
	for _, m := range ms {
		if m.UserID != userID {
			kept = append(kept, m)
		}
	}
	r.memberships[teamID] = kept
	return nil
}

func (r *stubTeamRepo) CountAdmins(_ context.Context, teamID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for _, m := range r.memberships[teamID] {
		if m.IsAdmin() {
			n++
		}
	}
	return n, nil
}

func (r *stubTeamRepo) ListGrants(_ context.Context, teamID string) ([]domain.Grant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.grantsErr != nil {
		return nil, r.grantsErr
	}
	return append([]domain.Grant(nil), r.grants[teamID]...), nil
}

// role returns the user's role in the team, or "" for non-members.
func (r *stubTeamRepo) role(teamID, userID string) domain.Role {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, m := range r.memberships[teamID] {
		if m.UserID == userID {
			return m.Role
		}
	}
	return ""
}

// adminIDs returns the admin user IDs of the team in insertion order.
func (r *stubTeamRepo) adminIDs(teamID string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids := []string{}
	for _, m := range r.memberships[teamID] {
		if m.IsAdmin() {
			ids = append(ids, m.UserID)
		}
	}
	return ids
}

// ---------------------------------------------------------------------------
// Image sets, activity, sessions
// ---------------------------------------------------------------------------

type stubImageSetRepo struct {
	sets []domain.ImageSet
	err  error
}

func (r *stubImageSetRepo) ListByTeam(_ context.Context, teamID string, public bool) ([]domain.ImageSet, error) {
	if r.err != nil {
		return nil, r.err
	}
	out := []domain.ImageSet{}
	for _, s := range r.sets {
		if s.TeamID == teamID && s.Public == public {
			out = append(out, s)
		}
	}
	return out, nil
}

type stubActivityRepo struct {
	mu      sync.Mutex
	err     error
	entries []domain.TeamActivity
}

func (r *stubActivityRepo) Record(_ context.Context, a *domain.TeamActivity) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.err != nil {
		return r.err
	}
	r.entries = append(r.entries, *a)
	return nil
}

func (r *stubActivityRepo) kinds() []domain.ActivityKind {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]domain.ActivityKind, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e.Kind)
	}
	return out
}

type stubSessionStore struct {
	sessions  map[string]string
	ttls      map[string]time.Duration
	createErr error
}

func newStubSessionStore() *stubSessionStore {
	return &stubSessionStore{sessions: make(map[string]string), ttls: make(map[string]time.Duration)}
}

func (s *stubSessionStore) Create(_ context.Context, sessionID, userID string, ttl time.Duration) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.sessions[sessionID] = userID
	s.ttls[sessionID] = ttl
	return nil
}

func (s *stubSessionStore) Lookup(_ context.Context, sessionID string) (string, error) {
	userID, ok := s.sessions[sessionID]
	if !ok {
		return "", domain.ErrSessionNotFound
	}
	return userID, nil
}

func (s *stubSessionStore) Delete(_ context.Context, sessionID string) error {
	delete(s.sessions, sessionID)
	return nil
}
