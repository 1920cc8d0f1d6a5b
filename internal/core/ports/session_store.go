package ports

import (
	"context"
	"time"
)

// SessionStore keeps server-side sessions so that logout takes effect immediately.
type SessionStore interface {
	Create(ctx context.Context, sessionID, userID string, ttl time.Duration) error
	// Lookup returns the user bound to the session or domain.ErrSessionNotFound.
	Lookup(ctx context.Context, sessionID string) (string, error)
	Delete(ctx context.Context, sessionID string) error
}
