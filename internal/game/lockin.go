package game

import (
	"fmt"
	"time"

	"github.com/tovaldes/postmaster/internal/models"
)

// LockInResult reports the outcome of one lock-in
type LockInResult struct {
	Slot       string    `json:"slot"`
	LockedInAt time.Time `json:"lockedInAt"`
	Remaining  int       `json:"remaining"` // occupied slots still unlocked
	AllLocked  bool      `json:"allLocked"`
	Forced     bool      `json:"forced"` // true when the timer auto-locked the slot
}

// lockablePhases are the phases that accept lock-ins
var lockablePhases = map[models.Phase]bool{
	models.PhasePlanning:   true,
	models.PhaseResolution: true,
}

// PhaseLockable reports whether a phase accepts lock-ins
func PhaseLockable(phase models.Phase) bool {
	return lockablePhases[phase]
}

// LockIn marks a slot as done for the current phase. A second lock-in for the
// same slot in the same phase is an error, not a no-op, so duplicate UI
// actions stay detectable. The coordinator never transitions phases itself;
// the caller reacts to AllLocked. Caller must hold the session lock.
func LockIn(session *models.Session, slotName string) (LockInResult, error) {
	return lockIn(session, slotName, false)
}

func lockIn(session *models.Session, slotName string, forced bool) (LockInResult, error) {
	if !PhaseLockable(session.Phase) {
		return LockInResult{}, fmt.Errorf("%w: %s", ErrPhaseNotLockable, session.Phase)
	}
	slot := session.Slot(slotName)
	if slot == nil {
		return LockInResult{}, fmt.Errorf("%w: %s", ErrSlotNotFound, slotName)
	}
	if slot.LockedIn {
		return LockInResult{}, fmt.Errorf("%w: %s", ErrAlreadyLockedIn, slot.Name)
	}

	now := time.Now()
	slot.LockedIn = true
	slot.LockedInAt = &now
	session.Touch()

	remaining := RemainingUnlocked(session)
	return LockInResult{
		Slot:       slot.Name,
		LockedInAt: now,
		Remaining:  remaining,
		AllLocked:  remaining == 0,
		Forced:     forced,
	}, nil
}

// RemainingUnlocked counts occupied slots that have not locked in.
// Caller must hold the session lock.
func RemainingUnlocked(session *models.Session) int {
	remaining := 0
	for _, slot := range session.OccupiedSlots() {
		if !slot.LockedIn {
			remaining++
		}
	}
	return remaining
}

// AllLocked reports whether every occupied slot has locked in. A session with
// no occupied slots is never considered locked. Caller must hold the session lock.
func AllLocked(session *models.Session) bool {
	occupied := session.OccupiedSlots()
	if len(occupied) == 0 {
		return false
	}
	for _, slot := range occupied {
		if !slot.LockedIn {
			return false
		}
	}
	return true
}

// ResetLockIns clears every slot's lock-in state. Invoked exactly once per
// entry into a lockable phase. Caller must hold the session lock.
func ResetLockIns(session *models.Session) {
	for _, slot := range session.Slots {
		slot.LockedIn = false
		slot.LockedInAt = nil
	}
}
