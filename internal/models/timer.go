package models

import "time"

// Timer represents a phase countdown. The authoritative remaining time is
// always recomputed from the start time, never decremented in place, so
// delayed or repeated ticks cannot drift.
type Timer struct {
	Duration     int          `json:"duration"` // seconds
	StartedAt    time.Time    `json:"startedAt"`
	Remaining    int          `json:"remaining"`
	IsRunning    bool         `json:"isRunning"`
	WarningsSent map[int]bool `json:"warningsSent,omitempty"` // threshold seconds already emitted
}

// NewTimer starts a countdown of the given length
func NewTimer(durationSeconds int, now time.Time) *Timer {
	return &Timer{
		Duration:     durationSeconds,
		StartedAt:    now,
		Remaining:    durationSeconds,
		IsRunning:    true,
		WarningsSent: make(map[int]bool),
	}
}

// ComputeRemaining derives the remaining seconds from elapsed time, clamped at zero
func (t *Timer) ComputeRemaining(now time.Time) int {
	if !t.IsRunning {
		return t.Remaining
	}
	elapsed := int(now.Sub(t.StartedAt).Seconds())
	remaining := t.Duration - elapsed
	if remaining < 0 {
		remaining = 0
	}
	return remaining
}

// Pause freezes the countdown at its current remaining value
func (t *Timer) Pause(now time.Time) {
	if !t.IsRunning {
		return
	}
	t.Remaining = t.ComputeRemaining(now)
	t.IsRunning = false
}

// Resume restarts the countdown from the frozen remaining value
func (t *Timer) Resume(now time.Time) {
	if t.IsRunning {
		return
	}
	// Rebase the start time so Duration-elapsed lands on the frozen value.
	t.StartedAt = now.Add(-time.Duration(t.Duration-t.Remaining) * time.Second)
	t.IsRunning = true
}
