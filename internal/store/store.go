// Package store provides session storage behind a swappable port.
package store

import (
	"time"

	"github.com/tovaldes/postmaster/internal/models"
)

// Store is the storage port for live sessions, keyed by room code.
// Implementations must return the same *Session instance for a given room
// code for as long as it is live: the in-memory aggregate is authoritative
// and every reader observes mutations immediately.
type Store interface {
	// Save stores a session under its room code.
	Save(session *models.Session) error
	// Find retrieves a session by room code.
	Find(roomCode string) (*models.Session, bool)
	// Delete removes a session. Returns false if it did not exist.
	Delete(roomCode string) bool
	// Exists reports whether a room code is taken.
	Exists(roomCode string) bool
	// ListAll returns every live session.
	ListAll() []*models.Session
	// ListInactive returns sessions whose last activity is older than the cutoff.
	ListInactive(cutoff time.Time) []*models.Session
	// Clear removes all sessions. Exposed for tests only.
	Clear()
}
