package game

import (
	"errors"
	"testing"

	"github.com/tovaldes/postmaster/internal/models"
)

func TestStartGame(t *testing.T) {
	session := newTestSession(t, "SendWave", "Gmail")

	if err := CanStart(session, session.FacilitatorID); err != nil {
		t.Fatalf("CanStart: %v", err)
	}
	result, err := Transition(session, models.PhasePlanning, testRules())
	if err != nil {
		t.Fatalf("Transition: %v", err)
	}

	if session.Phase != models.PhasePlanning {
		t.Errorf("Phase = %s, want planning", session.Phase)
	}
	if session.Round != 1 || result.Round != 1 {
		t.Errorf("Round = %d (result %d), want 1", session.Round, result.Round)
	}
	if session.Timer == nil || !session.Timer.IsRunning {
		t.Error("planning entry did not start the timer")
	}
	if result.TimerSeconds != testRules().PlanningSeconds {
		t.Errorf("TimerSeconds = %d, want %d", result.TimerSeconds, testRules().PlanningSeconds)
	}
}

func TestCanStartGuards(t *testing.T) {
	session := newTestSession(t, "SendWave", "Gmail")

	if err := CanStart(session, "someone-else"); !errors.Is(err, ErrNotFacilitator) {
		t.Errorf("non-facilitator err = %v, want ErrNotFacilitator", err)
	}

	empty := newTestSession(t, "SendWave") // no destination occupied
	if err := CanStart(empty, empty.FacilitatorID); !errors.Is(err, ErrValidation) {
		t.Errorf("missing destination err = %v, want ErrValidation", err)
	}

	startGame(t, session)
	if err := CanStart(session, session.FacilitatorID); !errors.Is(err, ErrGameAlreadyStarted) {
		t.Errorf("second start err = %v, want ErrGameAlreadyStarted", err)
	}
}

func TestIllegalTransitions(t *testing.T) {
	session := newTestSession(t, "SendWave", "Gmail")

	// lobby -> resolution skips planning
	if _, err := Transition(session, models.PhaseResolution, testRules()); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("lobby->resolution err = %v, want ErrInvalidTransition", err)
	}
	// lobby -> game_over
	if _, err := Transition(session, models.PhaseGameOver, testRules()); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("lobby->game_over err = %v, want ErrInvalidTransition", err)
	}

	startGame(t, session)
	// planning -> planning
	if _, err := Transition(session, models.PhasePlanning, testRules()); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("planning->planning err = %v, want ErrInvalidTransition", err)
	}
}

func TestRoundCycleEndsInGameOver(t *testing.T) {
	rules := testRules()
	session := newTestSession(t, "SendWave", "Gmail")
	startGame(t, session)

	for round := 1; round <= rules.TotalRounds; round++ {
		if session.Round != round {
			t.Fatalf("round = %d, want %d", session.Round, round)
		}
		if _, err := Transition(session, models.PhaseResolution, rules); err != nil {
			t.Fatalf("round %d planning->resolution: %v", round, err)
		}
		next := NextPhase(session, rules)
		if round < rules.TotalRounds && next != models.PhasePlanning {
			t.Fatalf("round %d next = %s, want planning", round, next)
		}
		if round == rules.TotalRounds && next != models.PhaseGameOver {
			t.Fatalf("final round next = %s, want game_over", next)
		}
		if _, err := Transition(session, next, rules); err != nil {
			t.Fatalf("round %d resolution->%s: %v", round, next, err)
		}
	}

	if session.Phase != models.PhaseGameOver {
		t.Fatalf("Phase = %s, want game_over", session.Phase)
	}
	if session.Timer != nil {
		t.Error("game_over entry did not clear the timer")
	}
	// Terminal: no outgoing edges.
	if next := NextPhase(session, rules); next != "" {
		t.Errorf("NextPhase(game_over) = %s, want none", next)
	}
	if _, err := Transition(session, models.PhasePlanning, rules); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("transition out of game_over err = %v, want ErrInvalidTransition", err)
	}
}

func TestRoundIncrementsOnlyOnPlanningReentry(t *testing.T) {
	rules := testRules()
	session := newTestSession(t, "SendWave", "Gmail")
	startGame(t, session)

	if _, err := Transition(session, models.PhaseResolution, rules); err != nil {
		t.Fatal(err)
	}
	if session.Round != 1 {
		t.Fatalf("round changed on resolution entry: %d", session.Round)
	}
	if _, err := Transition(session, models.PhasePlanning, rules); err != nil {
		t.Fatal(err)
	}
	if session.Round != 2 {
		t.Fatalf("round = %d after planning re-entry, want 2", session.Round)
	}
}

func TestPhaseEntryResetsLockIns(t *testing.T) {
	session := newTestSession(t, "SendWave", "Gmail")
	startGame(t, session)

	if _, err := LockIn(session, "SendWave"); err != nil {
		t.Fatal(err)
	}
	if _, err := LockIn(session, "Gmail"); err != nil {
		t.Fatal(err)
	}
	if _, err := Transition(session, models.PhaseResolution, testRules()); err != nil {
		t.Fatal(err)
	}

	for _, slot := range session.OccupiedSlots() {
		if slot.LockedIn {
			t.Errorf("slot %s still locked in after phase entry", slot.Name)
		}
	}
	if session.Timer == nil || session.Timer.Duration != testRules().ResolutionSeconds {
		t.Error("resolution entry did not start its timer")
	}
}
