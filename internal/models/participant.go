package models

import "time"

// SlotKind distinguishes the two opposing roles a slot can hold
type SlotKind string

const (
	SlotTeam        SlotKind = "team"        // an ESP sending team
	SlotDestination SlotKind = "destination" // a mailbox provider
)

// Slot represents a fixed named role in a session that players occupy
type Slot struct {
	Name       string             `json:"name"`
	Kind       SlotKind           `json:"kind"`
	Capacity   int                `json:"capacity"`
	Players    map[string]*Player `json:"players"`
	LockedIn   bool               `json:"lockedIn"`
	LockedInAt *time.Time         `json:"lockedInAt,omitempty"`
	Credits    int                `json:"credits"`
	Reputation int                `json:"reputation"`

	// Role-specific state owned by the business-rule layer: owned upgrades,
	// forced flags, pending decisions. The core only reads/writes it
	// atomically alongside the lock-in fields.
	Payload map[string]any `json:"payload,omitempty"`

	// Queued incident choices, presented to the slot one at a time.
	PendingChoices []PendingChoice `json:"pendingChoices,omitempty"`
}

// Occupied reports whether at least one player holds the slot
func (s *Slot) Occupied() bool {
	return len(s.Players) > 0
}

// CurrentChoice returns the choice currently presented to the slot, if any
func (s *Slot) CurrentChoice() *PendingChoice {
	if len(s.PendingChoices) == 0 {
		return nil
	}
	return &s.PendingChoices[0]
}

// Player represents a human attached to one slot
type Player struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"displayName"`
	Role        SlotKind  `json:"role"`
	SlotName    string    `json:"slotName"`
	JoinedAt    time.Time `json:"joinedAt"`
}
