package domain

import "time"

// ImageSet is owned by a team and is either public or private.
// This service only reads image sets.
type ImageSet struct {
	ID        string    `json:"id"`
	TeamID    string    `json:"team_id"`
	Name      string    `json:"name"`
	Public    bool      `json:"public"`
	CreatedAt time.Time `json:"created_at"`
}
