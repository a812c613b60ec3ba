package ws

// Message is the envelope for every server-to-client notification. Type is
// the discriminator the presentation layer switches on; Data carries enough
// state to update a dashboard without a full refetch.
type Message struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// Message type discriminators
const (
	TypeLobbyUpdate       = "lobby_update"
	TypePhaseChanged      = "phase_changed"
	TypeLockIn            = "lock_in"
	TypeTimerTick         = "timer_tick"
	TypeTimerWarning      = "timer_warning"
	TypeTimerAutoLock     = "timer_autolock"
	TypeTimerPaused       = "timer_paused"
	TypeTimerResumed      = "timer_resumed"
	TypeIncidentTriggered = "incident_triggered"
	TypeIncidentEffects   = "incident_effects"
	TypeChoicePrompt      = "choice_prompt"
	TypeDashboardDelta    = "dashboard_delta"
	TypeFullState         = "full_state"
	TypeError             = "error"
)
