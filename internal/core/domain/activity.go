package domain

import "time"

// ActivityKind identifies a membership change recorded in the audit trail.
type ActivityKind string

const (
	ActivityTeamCreated  ActivityKind = "team_created"
	ActivityMemberAdded  ActivityKind = "member_added"
	ActivityAdminGranted ActivityKind = "admin_granted"
	ActivityAdminRevoked ActivityKind = "admin_revoked"
	ActivityMemberLeft   ActivityKind = "member_left"
	ActivityMemberKicked ActivityKind = "member_kicked"
)

// TeamActivity is a single entry of a team's audit trail.
type TeamActivity struct {
	TeamID    string
	Kind      ActivityKind
	ActorID   string
	SubjectID string
	Timestamp time.Time
}
