package ports

import (
	"context"

	"github.com/aretw0/guidepost/pkg/domain"
)

// SessionStore defines the interface for persisting tour sessions.
// Persistence is optional; a session that is not found starts inactive.
type SessionStore interface {
	// Save persists the session for a given session ID.
	Save(ctx context.Context, sessionID string, session *domain.TourSession) error

	// Load retrieves the session for a given session ID.
	// Returns domain.ErrSessionNotFound if the session does not exist.
	Load(ctx context.Context, sessionID string) (*domain.TourSession, error)

	// Delete removes the session for a given session ID.
	Delete(ctx context.Context, sessionID string) error

	// List returns the IDs of stored sessions.
	List(ctx context.Context) ([]string, error)
}
