package game

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/tovaldes/postmaster/internal/models"
)

var warnAt = []int{15}

func TestTimerWarningFiresOnce(t *testing.T) {
	session := newTestSession(t, "SendWave", "Gmail")
	startGame(t, session)
	StartTimer(session, 30)

	now := time.Now()
	rewindTimer(session, now, 15*time.Second)

	result := TickTimer(session, now, warnAt)
	if result.Remaining != 15 {
		t.Fatalf("Remaining = %d, want 15", result.Remaining)
	}
	if len(result.Warnings) != 1 || result.Warnings[0] != 15 {
		t.Fatalf("Warnings = %v, want [15]", result.Warnings)
	}

	// Same remaining value again: idempotent, no re-emit.
	result = TickTimer(session, now, warnAt)
	if len(result.Warnings) != 0 {
		t.Fatalf("repeated tick re-emitted warnings: %v", result.Warnings)
	}

	// Later tick past the threshold: still no re-emit.
	later := now.Add(5 * time.Second)
	result = TickTimer(session, later, warnAt)
	if len(result.Warnings) != 0 {
		t.Fatalf("later tick re-emitted warnings: %v", result.Warnings)
	}
	if result.Remaining != 10 {
		t.Errorf("Remaining = %d, want 10", result.Remaining)
	}
}

func TestTimerRemainingNeverNegative(t *testing.T) {
	session := newTestSession(t, "SendWave", "Gmail")
	startGame(t, session)
	StartTimer(session, 30)

	now := time.Now()
	rewindTimer(session, now, 90*time.Second) // long past expiry

	result := TickTimer(session, now, warnAt)
	if result.Remaining != 0 {
		t.Fatalf("Remaining = %d, want exactly 0", result.Remaining)
	}
	if !result.Expired {
		t.Fatal("Expired = false at zero remaining")
	}
}

func TestTimerExpiryAutoLocksUnlockedSlots(t *testing.T) {
	session := newTestSession(t, "SendWave", "Blastoff", "Gmail")
	startGame(t, session)
	StartTimer(session, 30)

	if _, err := LockIn(session, "SendWave"); err != nil {
		t.Fatal(err)
	}

	now := time.Now()
	rewindTimer(session, now, 30*time.Second)
	result := TickTimer(session, now, warnAt)

	if !result.Expired {
		t.Fatal("Expired = false")
	}
	if len(result.AutoLocked) != 2 {
		t.Fatalf("AutoLocked = %d slots, want 2", len(result.AutoLocked))
	}
	for _, locked := range result.AutoLocked {
		if !locked.Forced {
			t.Errorf("auto-lock for %s not marked forced", locked.Slot)
		}
		if locked.Slot == "SendWave" {
			t.Error("manually locked slot auto-locked again")
		}
	}
	if !result.AllLocked {
		t.Error("AllLocked = false after auto-lock")
	}
	for _, slot := range session.OccupiedSlots() {
		if !slot.LockedIn {
			t.Errorf("slot %s not locked after expiry", slot.Name)
		}
	}
	if session.Timer.IsRunning {
		t.Error("timer still running after expiry")
	}
}

func TestTimerExpiryIsOneShot(t *testing.T) {
	session := newTestSession(t, "SendWave", "Gmail")
	startGame(t, session)
	StartTimer(session, 30)

	now := time.Now()
	rewindTimer(session, now, 30*time.Second)
	first := TickTimer(session, now, warnAt)
	if len(first.AutoLocked) != 2 {
		t.Fatalf("AutoLocked = %d, want 2", len(first.AutoLocked))
	}

	// The timer stopped, so the next tick is a no-op: no slot is
	// auto-locked twice.
	second := TickTimer(session, now.Add(time.Second), warnAt)
	if second.Expired || len(second.AutoLocked) != 0 || len(second.Warnings) != 0 {
		t.Fatalf("second tick produced events: %+v", second)
	}
}

func TestBatchedTickEmitsWarningBeforeAutoLock(t *testing.T) {
	session := newTestSession(t, "SendWave", "Gmail")
	startGame(t, session)
	StartTimer(session, 30)

	// One delayed tick jumps straight from 30s to 0: the 15s warning and
	// the expiry land in the same result, warning first.
	now := time.Now()
	rewindTimer(session, now, 30*time.Second)
	result := TickTimer(session, now, warnAt)

	if len(result.Warnings) != 1 || result.Warnings[0] != 15 {
		t.Fatalf("Warnings = %v, want the skipped [15]", result.Warnings)
	}
	if !result.Expired || len(result.AutoLocked) != 2 {
		t.Fatalf("expiry not processed in the same tick: %+v", result)
	}
}

func TestTimerPauseResume(t *testing.T) {
	session := newTestSession(t, "SendWave", "Gmail")
	startGame(t, session)
	StartTimer(session, 30)

	now := time.Now()
	rewindTimer(session, now, 10*time.Second)
	TickTimer(session, now, warnAt)

	if err := PauseTimer(session); err != nil {
		t.Fatalf("PauseTimer: %v", err)
	}
	if session.Timer.IsRunning {
		t.Fatal("timer running after pause")
	}
	frozen := session.Timer.Remaining

	// Paused timers ignore ticks.
	result := TickTimer(session, now.Add(time.Minute), warnAt)
	if result.Expired || len(result.AutoLocked) != 0 {
		t.Fatalf("paused timer produced events: %+v", result)
	}
	if session.Timer.Remaining != frozen {
		t.Errorf("paused remaining drifted: %d -> %d", frozen, session.Timer.Remaining)
	}

	if err := ResumeTimer(session); err != nil {
		t.Fatalf("ResumeTimer: %v", err)
	}
	if got := session.Timer.ComputeRemaining(time.Now()); got > frozen {
		t.Errorf("resume gained time: %d > %d", got, frozen)
	}

	if err := ResumeTimer(session); err != ErrTimerNotActive {
		t.Errorf("resume of running timer err = %v, want ErrTimerNotActive", err)
	}
}

func TestPauseWithoutTimer(t *testing.T) {
	session := newTestSession(t, "SendWave", "Gmail")
	if err := PauseTimer(session); err != ErrTimerNotActive {
		t.Errorf("err = %v, want ErrTimerNotActive", err)
	}
}

func TestTickAfterSnapshotRoundTrip(t *testing.T) {
	session := newTestSession(t, "SendWave", "Gmail")
	startGame(t, session)
	StartTimer(session, 30)

	// A fresh timer has an empty WarningsSent map, which omitempty drops from
	// the snapshot; the revived timer must still accept warning bookkeeping.
	snapshot, err := json.Marshal(session)
	if err != nil {
		t.Fatalf("marshal session: %v", err)
	}
	revived := &models.Session{}
	if err := json.Unmarshal(snapshot, revived); err != nil {
		t.Fatalf("unmarshal session: %v", err)
	}
	if revived.Timer.WarningsSent != nil {
		t.Fatal("round-trip kept the empty warnings map; test setup is stale")
	}

	now := time.Now()
	rewindTimer(revived, now, 16*time.Second)
	result := TickTimer(revived, now, warnAt)
	if len(result.Warnings) != 1 || result.Warnings[0] != 15 {
		t.Fatalf("Warnings = %v, want [15]", result.Warnings)
	}
	if !revived.Timer.WarningsSent[15] {
		t.Error("warning not recorded on revived timer")
	}
}

func TestTickWithoutTimerIsNoop(t *testing.T) {
	session := newTestSession(t, "SendWave", "Gmail")
	result := TickTimer(session, time.Now(), warnAt)
	if result.Expired || result.Remaining != 0 || len(result.Warnings) != 0 {
		t.Fatalf("tick on timerless session produced events: %+v", result)
	}
	if session.Phase != models.PhaseLobby {
		t.Error("tick mutated phase")
	}
}
