package store

import (
	"sync"
	"time"

	"github.com/tovaldes/postmaster/internal/models"
)

// MemoryStore manages session storage in process memory
type MemoryStore struct {
	sessions map[string]*models.Session
	mu       sync.RWMutex
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates a new in-memory session store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*models.Session),
	}
}

// Save stores a session under its room code
func (s *MemoryStore) Save(session *models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.RoomCode] = session
	return nil
}

// Find retrieves a session by room code
func (s *MemoryStore) Find(roomCode string) (*models.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, exists := s.sessions[roomCode]
	return session, exists
}

// Delete removes a session
func (s *MemoryStore) Delete(roomCode string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, exists := s.sessions[roomCode]
	delete(s.sessions, roomCode)
	return exists
}

// Exists checks if a room code is taken
func (s *MemoryStore) Exists(roomCode string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, exists := s.sessions[roomCode]
	return exists
}

// ListAll returns every live session
func (s *MemoryStore) ListAll() []*models.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sessions := make([]*models.Session, 0, len(s.sessions))
	for _, session := range s.sessions {
		sessions = append(sessions, session)
	}
	return sessions
}

// ListInactive returns sessions idle since before the cutoff
func (s *MemoryStore) ListInactive(cutoff time.Time) []*models.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	inactive := make([]*models.Session, 0)
	for _, session := range s.sessions {
		session.RLock()
		idle := session.LastActivity.Before(cutoff)
		session.RUnlock()
		if idle {
			inactive = append(inactive, session)
		}
	}
	return inactive
}

// Clear removes all sessions (for tests)
func (s *MemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions = make(map[string]*models.Session)
}
