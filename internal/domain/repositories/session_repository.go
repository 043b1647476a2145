package repositories

import (
	"context"

	"github.com/TejPotu/case-twin/internal/domain/entities"
)

// SessionRepository holds live intake sessions. Sessions are session-scoped
// state, not durable storage; an implementation may drop them on restart.
//
// Update runs fn under a per-session lock so turns against the same session
// are serialized: concurrent turns would otherwise merge from a stale base
// record and silently drop an update.
type SessionRepository interface {
	// Create allocates a new session with a fresh greeting state.
	Create(ctx context.Context) (*entities.IntakeState, error)

	// Get returns the current state of a session.
	Get(ctx context.Context, sessionID string) (*entities.IntakeState, error)

	// Update applies fn to the session's current state and stores fn's result.
	Update(ctx context.Context, sessionID string, fn func(*entities.IntakeState) (*entities.IntakeState, error)) (*entities.IntakeState, error)

	// Delete discards a session.
	Delete(ctx context.Context, sessionID string) error
}
