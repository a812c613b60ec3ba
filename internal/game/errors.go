package game

import "errors"

// Sentinel errors for the session core. All are recoverable at the call
// site: a failed mutation leaves the aggregate unchanged.
var (
	// Not found
	ErrRoomNotFound     = errors.New("room not found")
	ErrSlotNotFound     = errors.New("slot not found")
	ErrPlayerNotFound   = errors.New("player not found")
	ErrIncidentNotFound = errors.New("incident not found")
	ErrItemNotFound     = errors.New("item not found")
	ErrNoPendingChoice  = errors.New("no pending choice for slot")
	ErrInvalidChoice    = errors.New("invalid choice option")

	// Unauthorized
	ErrNotFacilitator = errors.New("only the facilitator can do that")
	ErrNotSlotMember  = errors.New("caller does not occupy that slot")

	// Invalid state
	ErrAlreadyLockedIn    = errors.New("slot already locked in")
	ErrPhaseNotLockable   = errors.New("current phase does not accept lock-ins")
	ErrWrongPhase         = errors.New("action not allowed in current phase")
	ErrInvalidTransition  = errors.New("invalid phase transition")
	ErrGameAlreadyStarted = errors.New("game already started")
	ErrGameNotStarted     = errors.New("game not started")
	ErrTimerNotActive     = errors.New("no active timer")
	ErrInvalidTarget      = errors.New("invalid incident target")
	ErrSlotFull           = errors.New("slot is full")
	ErrInsufficientFunds  = errors.New("not enough credits")

	// Validation
	ErrValidation = errors.New("invalid input")
)
