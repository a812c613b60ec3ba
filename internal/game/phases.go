package game

import (
	"fmt"

	"github.com/tovaldes/postmaster/internal/models"
)

// Rules holds the pacing configuration the state machine applies on phase entry
type Rules struct {
	TotalRounds       int
	PlanningSeconds   int
	ResolutionSeconds int
}

// TransitionResult reports a committed phase transition
type TransitionResult struct {
	From         models.Phase `json:"from"`
	To           models.Phase `json:"to"`
	Round        int          `json:"round"`
	TimerSeconds int          `json:"timerSeconds,omitempty"` // 0 when the new phase has no countdown
}

// CanStart checks whether the requester may start the game: facilitator only,
// lobby only, and the roster needs at least one occupied team and one
// occupied destination. Caller must hold the session lock.
func CanStart(session *models.Session, requesterID string) error {
	if requesterID != session.FacilitatorID {
		return ErrNotFacilitator
	}
	if session.Phase != models.PhaseLobby {
		return ErrGameAlreadyStarted
	}
	teams, destinations := 0, 0
	for _, slot := range session.OccupiedSlots() {
		switch slot.Kind {
		case models.SlotTeam:
			teams++
		case models.SlotDestination:
			destinations++
		}
	}
	if teams == 0 || destinations == 0 {
		return fmt.Errorf("%w: need at least one occupied team and destination", ErrValidation)
	}
	return nil
}

// NextPhase computes the legal successor of the current phase under the rules
func NextPhase(session *models.Session, rules Rules) models.Phase {
	switch session.Phase {
	case models.PhaseLobby:
		return models.PhasePlanning
	case models.PhasePlanning:
		return models.PhaseResolution
	case models.PhaseResolution:
		if session.Round >= rules.TotalRounds {
			return models.PhaseGameOver
		}
		return models.PhasePlanning
	default:
		return "" // game_over is terminal
	}
}

// Transition validates the edge from the current phase, runs phase-entry side
// effects (lock-in reset, timer start/stop, round increment), and commits the
// new phase. Caller must hold the session lock.
func Transition(session *models.Session, to models.Phase, rules Rules) (TransitionResult, error) {
	if to != NextPhase(session, rules) {
		return TransitionResult{}, fmt.Errorf("%w: %s -> %s (round %d)", ErrInvalidTransition, session.Phase, to, session.Round)
	}

	from := session.Phase
	result := TransitionResult{From: from, To: to}

	switch to {
	case models.PhasePlanning:
		session.Round++
		ResetLockIns(session)
		StartTimer(session, rules.PlanningSeconds)
		result.TimerSeconds = rules.PlanningSeconds
	case models.PhaseResolution:
		ResetLockIns(session)
		StartTimer(session, rules.ResolutionSeconds)
		result.TimerSeconds = rules.ResolutionSeconds
	case models.PhaseGameOver:
		session.Timer = nil
	}

	session.Phase = to
	session.Touch()
	result.Round = session.Round
	return result, nil
}
