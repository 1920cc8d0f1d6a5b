package domain

// Capability names an action that can be granted to a team role.
type Capability string

const (
	// CapUserManagement covers adding, kicking, promoting and demoting members.
	CapUserManagement Capability = "user_management"
	// CapCreateSet covers creating image sets owned by the team.
	CapCreateSet Capability = "create_set"
)

// Grant ties a capability to one role of one team.
type Grant struct {
	TeamID     string     `json:"team_id"`
	Group      string     `json:"group"`
	Role       Role       `json:"role"`
	Capability Capability `json:"capability"`
}

// DefaultGrants returns the grants every new team starts with:
// user management for the admins and set creation for the members.
func DefaultGrants(team Team) []Grant {
	return []Grant{
		{TeamID: team.ID, Group: team.AdminsGroup(), Role: RoleAdmin, Capability: CapUserManagement},
		{TeamID: team.ID, Group: team.MembersGroup(), Role: RoleMember, Capability: CapCreateSet},
	}
}
