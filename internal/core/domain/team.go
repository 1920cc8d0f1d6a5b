package domain

import (
	"errors"
	"time"
)

var (
	ErrTeamNotFound       = errors.New("team not found")
	ErrTeamExists         = errors.New("team already exists")
	ErrMembershipNotFound = errors.New("membership not found")
	ErrInvalidTeamName    = errors.New("team name is required")
)

// Team groups users around shared image sets.
type Team struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// MembersGroup is the label of the group holding every member of the team.
func (t Team) MembersGroup() string { return t.Name + "_members" }

// AdminsGroup is the label of the group holding the team admins.
func (t Team) AdminsGroup() string { return t.Name + "_admins" }

// Role is the scalar role of a user inside one team.
type Role string

const (
	RoleMember Role = "member"
	RoleAdmin  Role = "admin"
)

// Includes reports whether r carries every privilege of other.
// An admin is always a member as well.
func (r Role) Includes(other Role) bool {
	if r == other {
		return true
	}
	return r == RoleAdmin && other == RoleMember
}

// Membership is the single record linking a user to a team.
// Exactly one record exists per (team_id, user_id).
type Membership struct {
	TeamID    string    `json:"team_id"`
	UserID    string    `json:"user_id"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

func (m Membership) IsAdmin() bool { return m.Role == RoleAdmin }
