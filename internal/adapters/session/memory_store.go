// Package session provides SessionRepository implementations.
package session

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/TejPotu/case-twin/internal/domain/entities"
	"github.com/TejPotu/case-twin/internal/domain/repositories"
	apperrors "github.com/TejPotu/case-twin/pkg/errors"
)

// MemoryStore keeps intake sessions in process memory. Each session carries
// its own mutex so turns against one session serialize without blocking
// other sessions.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*sessionSlot
}

type sessionSlot struct {
	mu    sync.Mutex
	state *entities.IntakeState
}

// NewMemoryStore creates a new in-memory session store.
func NewMemoryStore() repositories.SessionRepository {
	return &MemoryStore{
		sessions: make(map[string]*sessionSlot),
	}
}

// Create allocates a new session seeded with the greeting state.
func (s *MemoryStore) Create(_ context.Context) (*entities.IntakeState, error) {
	state := entities.NewIntakeState(uuid.NewString())

	s.mu.Lock()
	s.sessions[state.SessionID] = &sessionSlot{state: state}
	s.mu.Unlock()

	return state.Clone(), nil
}

// Get returns a snapshot of the session's current state.
func (s *MemoryStore) Get(_ context.Context, sessionID string) (*entities.IntakeState, error) {
	slot, err := s.slot(sessionID)
	if err != nil {
		return nil, err
	}

	slot.mu.Lock()
	defer slot.mu.Unlock()
	return slot.state.Clone(), nil
}

// Update applies fn under the session's lock and stores the result. The
// returned state is a snapshot the caller may keep without further locking.
func (s *MemoryStore) Update(_ context.Context, sessionID string, fn func(*entities.IntakeState) (*entities.IntakeState, error)) (*entities.IntakeState, error) {
	slot, err := s.slot(sessionID)
	if err != nil {
		return nil, err
	}

	slot.mu.Lock()
	defer slot.mu.Unlock()

	next, err := fn(slot.state)
	if err != nil {
		return nil, err
	}
	if next != nil {
		slot.state = next
	}
	return slot.state.Clone(), nil
}

// Delete discards a session.
func (s *MemoryStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[sessionID]; !ok {
		return apperrors.NewNotFoundError("session " + sessionID + " not found")
	}
	delete(s.sessions, sessionID)
	return nil
}

func (s *MemoryStore) slot(sessionID string) (*sessionSlot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	slot, ok := s.sessions[sessionID]
	if !ok {
		return nil, apperrors.NewNotFoundError("session " + sessionID + " not found")
	}
	return slot, nil
}
