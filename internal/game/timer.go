package game

import (
	"sort"
	"time"

	"github.com/tovaldes/postmaster/internal/models"
)

// TickResult reports everything one timer tick produced. Warnings are
// ordered before auto-locks: when a delayed tick crosses a warning threshold
// and expiry at once, the warning is still emitted first.
type TickResult struct {
	Remaining  int
	Warnings   []int // threshold seconds crossed by this tick
	AutoLocked []LockInResult
	Expired    bool
	AllLocked  bool
}

// StartTimer begins a countdown for the current phase.
// Caller must hold the session lock.
func StartTimer(session *models.Session, durationSeconds int) {
	session.Timer = models.NewTimer(durationSeconds, time.Now())
	session.Touch()
}

// PauseTimer freezes the countdown. Caller must hold the session lock.
func PauseTimer(session *models.Session) error {
	if session.Timer == nil || !session.Timer.IsRunning {
		return ErrTimerNotActive
	}
	session.Timer.Pause(time.Now())
	session.Touch()
	return nil
}

// ResumeTimer restarts a paused countdown. Caller must hold the session lock.
func ResumeTimer(session *models.Session) error {
	if session.Timer == nil || session.Timer.IsRunning {
		return ErrTimerNotActive
	}
	session.Timer.Resume(time.Now())
	session.Touch()
	return nil
}

// TickTimer advances a session's countdown to now. The remaining time is
// recomputed from elapsed wall clock, so repeated or delayed ticks never
// double-count. Each warning threshold fires at most once. At zero, every
// still-unlocked occupied slot is locked through the same path as a manual
// lock-in and the timer stops. Caller must hold the session lock.
func TickTimer(session *models.Session, now time.Time, warningThresholds []int) TickResult {
	timer := session.Timer
	if timer == nil || !timer.IsRunning {
		return TickResult{}
	}
	// Sessions revived from a JSON snapshot lose the empty map to omitempty.
	if timer.WarningsSent == nil {
		timer.WarningsSent = make(map[int]bool)
	}

	remaining := timer.ComputeRemaining(now)
	timer.Remaining = remaining
	result := TickResult{Remaining: remaining}

	// Highest thresholds first so batched crossings come out in countdown order.
	thresholds := append([]int(nil), warningThresholds...)
	sort.Sort(sort.Reverse(sort.IntSlice(thresholds)))
	for _, threshold := range thresholds {
		if remaining <= threshold && !timer.WarningsSent[threshold] {
			timer.WarningsSent[threshold] = true
			result.Warnings = append(result.Warnings, threshold)
		}
	}

	if remaining > 0 {
		return result
	}

	result.Expired = true
	for _, slot := range session.OccupiedSlots() {
		if slot.LockedIn {
			continue
		}
		locked, err := lockIn(session, slot.Name, true)
		if err != nil {
			// Only possible if the phase stopped being lockable mid-iteration,
			// which a held session lock rules out.
			continue
		}
		result.AutoLocked = append(result.AutoLocked, locked)
	}
	timer.IsRunning = false
	result.AllLocked = AllLocked(session)
	session.Touch()
	return result
}
