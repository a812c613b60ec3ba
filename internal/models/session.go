package models

import (
	"strings"
	"sync"
	"time"
)

// Phase represents the current stage of a session's round cycle
type Phase string

const (
	PhaseLobby      Phase = "lobby"
	PhasePlanning   Phase = "planning"
	PhaseResolution Phase = "resolution"
	PhaseGameOver   Phase = "game_over"
)

// Session represents one live game room
type Session struct {
	RoomCode        string           `json:"roomCode"`
	FacilitatorID   string           `json:"facilitatorId"`
	Phase           Phase            `json:"phase"`
	Round           int              `json:"round"`
	Slots           []*Slot          `json:"slots"`
	Timer           *Timer           `json:"timer,omitempty"`
	IncidentHistory []IncidentRecord `json:"incidentHistory"`
	CreatedAt       time.Time        `json:"createdAt"`
	LastActivity    time.Time        `json:"lastActivity"`

	mu sync.RWMutex
}

// Lock acquires the session's write lock
func (s *Session) Lock() {
	s.mu.Lock()
}

// Unlock releases the session's write lock
func (s *Session) Unlock() {
	s.mu.Unlock()
}

// RLock acquires the session's read lock
func (s *Session) RLock() {
	s.mu.RLock()
}

// RUnlock releases the session's read lock
func (s *Session) RUnlock() {
	s.mu.RUnlock()
}

// Touch updates the last-activity timestamp (must be called with lock held)
func (s *Session) Touch() {
	s.LastActivity = time.Now()
}

// Slot finds a slot by name, case-insensitively (must be called with lock held)
func (s *Session) Slot(name string) *Slot {
	for _, slot := range s.Slots {
		if strings.EqualFold(slot.Name, name) {
			return slot
		}
	}
	return nil
}

// OccupiedSlots returns the slots with at least one player (must be called with lock held)
func (s *Session) OccupiedSlots() []*Slot {
	occupied := make([]*Slot, 0, len(s.Slots))
	for _, slot := range s.Slots {
		if slot.Occupied() {
			occupied = append(occupied, slot)
		}
	}
	return occupied
}

// PlayerCount returns the total number of players across all slots (must be called with lock held)
func (s *Session) PlayerCount() int {
	count := 0
	for _, slot := range s.Slots {
		count += len(slot.Players)
	}
	return count
}

// FindPlayer locates a player by ID across all slots (must be called with lock held)
func (s *Session) FindPlayer(playerID string) (*Slot, *Player) {
	for _, slot := range s.Slots {
		if p, ok := slot.Players[playerID]; ok {
			return slot, p
		}
	}
	return nil, nil
}
