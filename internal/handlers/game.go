package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/tovaldes/postmaster/internal/game"
	"github.com/tovaldes/postmaster/internal/models"
	"github.com/tovaldes/postmaster/internal/ws"
)

// getSessionFacilitator resolves a session and checks the caller owns it.
// FacilitatorID is immutable after creation, so no lock is needed for the check.
func (ctx *Context) getSessionFacilitator(r *http.Request, roomCode string) (*models.Session, error) {
	session, err := ctx.Registry.Get(roomCode)
	if err != nil {
		return nil, err
	}
	if playerID(r) != session.FacilitatorID {
		return nil, game.ErrNotFacilitator
	}
	return session, nil
}

// HandleStartGame moves a lobby into the first planning round
func (ctx *Context) HandleStartGame(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	roomCode := strings.TrimPrefix(r.URL.Path, "/start/")

	session, err := ctx.Registry.Get(roomCode)
	if err != nil {
		writeError(w, err)
		return
	}

	session.Lock()
	if err := game.CanStart(session, playerID(r)); err != nil {
		session.Unlock()
		writeError(w, err)
		return
	}
	result, err := game.Transition(session, models.PhasePlanning, ctx.Rules())
	session.Unlock()
	if err != nil {
		writeError(w, err)
		return
	}

	slog.Info("game started", "room", session.RoomCode, "round", result.Round)

	ctx.Hub.BroadcastToRoom(session.RoomCode, ws.Message{Type: ws.TypePhaseChanged, Data: result})
	writeJSON(w, http.StatusOK, result)
}

// HandleLockIn records a slot's lock-in and advances the phase when it was
// the last one outstanding
func (ctx *Context) HandleLockIn(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	roomCode := strings.TrimPrefix(r.URL.Path, "/lockin/")

	var req struct {
		Slot string `json:"slot"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	session, player, err := ctx.getSessionAndPlayer(r, roomCode)
	if err != nil {
		writeError(w, err)
		return
	}
	if !strings.EqualFold(player.SlotName, req.Slot) {
		writeError(w, game.ErrNotSlotMember)
		return
	}

	session.Lock()
	result, err := game.LockIn(session, req.Slot)
	if err != nil {
		session.Unlock()
		writeError(w, err)
		return
	}
	var transition *game.TransitionResult
	if result.AllLocked {
		t, terr := game.Transition(session, game.NextPhase(session, ctx.Rules()), ctx.Rules())
		if terr == nil {
			transition = &t
		} else {
			slog.Error("advance after all-locked failed", "room", session.RoomCode, "err", terr)
		}
	}
	session.Unlock()

	slog.Info("slot locked in", "room", session.RoomCode, "slot", result.Slot,
		"remaining", result.Remaining, "allLocked", result.AllLocked)

	ctx.Hub.BroadcastToRoom(session.RoomCode, ws.Message{Type: ws.TypeLockIn, Data: result})
	if transition != nil {
		ctx.Hub.BroadcastToRoom(session.RoomCode, ws.Message{Type: ws.TypePhaseChanged, Data: *transition})
	}
	writeJSON(w, http.StatusOK, result)
}

// HandleForceAdvance lets the facilitator push the session to the next phase
// without waiting for the lock-in barrier
func (ctx *Context) HandleForceAdvance(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	roomCode := strings.TrimPrefix(r.URL.Path, "/advance/")

	session, err := ctx.getSessionFacilitator(r, roomCode)
	if err != nil {
		writeError(w, err)
		return
	}

	session.Lock()
	// Forcing out of the lobby is a start and carries the same roster guard.
	if session.Phase == models.PhaseLobby {
		if err := game.CanStart(session, playerID(r)); err != nil {
			session.Unlock()
			writeError(w, err)
			return
		}
	}
	result, err := game.Transition(session, game.NextPhase(session, ctx.Rules()), ctx.Rules())
	session.Unlock()
	if err != nil {
		writeError(w, err)
		return
	}

	slog.Info("phase forced", "room", session.RoomCode, "to", result.To, "round", result.Round)

	ctx.Hub.BroadcastToRoom(session.RoomCode, ws.Message{Type: ws.TypePhaseChanged, Data: result})
	writeJSON(w, http.StatusOK, result)
}

// HandleState serves the full authoritative session state. Reconnecting
// clients pull this instead of relying on message replay.
func (ctx *Context) HandleState(w http.ResponseWriter, r *http.Request) {
	roomCode := strings.TrimPrefix(r.URL.Path, "/state/")

	session, err := ctx.Registry.Get(roomCode)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(snapshotState(session))
}

// HandlePurchase buys a pricing-table upgrade for the caller's slot
func (ctx *Context) HandlePurchase(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	roomCode := strings.TrimPrefix(r.URL.Path, "/purchase/")

	var req struct {
		Item string `json:"item"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	session, player, err := ctx.getSessionAndPlayer(r, roomCode)
	if err != nil {
		writeError(w, err)
		return
	}

	session.Lock()
	result, err := game.Purchase(session, ctx.Catalogs, player.SlotName, req.Item)
	session.Unlock()
	if err != nil {
		writeError(w, err)
		return
	}

	slog.Info("upgrade purchased", "room", session.RoomCode, "slot", result.Slot,
		"item", result.ItemID, "cost", result.Cost)

	ctx.Hub.BroadcastToRoom(session.RoomCode, ws.Message{Type: ws.TypeDashboardDelta, Data: result})
	writeJSON(w, http.StatusOK, result)
}

// HandlePauseTimer freezes the session's countdown (facilitator only)
func (ctx *Context) HandlePauseTimer(w http.ResponseWriter, r *http.Request) {
	ctx.handleTimerControl(w, r, "/timer-pause/", game.PauseTimer, ws.TypeTimerPaused)
}

// HandleResumeTimer restarts a paused countdown (facilitator only)
func (ctx *Context) HandleResumeTimer(w http.ResponseWriter, r *http.Request) {
	ctx.handleTimerControl(w, r, "/timer-resume/", game.ResumeTimer, ws.TypeTimerResumed)
}

func (ctx *Context) handleTimerControl(w http.ResponseWriter, r *http.Request, prefix string,
	action func(*models.Session) error, msgType string) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	roomCode := strings.TrimPrefix(r.URL.Path, prefix)

	session, err := ctx.getSessionFacilitator(r, roomCode)
	if err != nil {
		writeError(w, err)
		return
	}

	session.Lock()
	err = action(session)
	remaining := 0
	if session.Timer != nil {
		remaining = session.Timer.Remaining
	}
	session.Unlock()
	if err != nil {
		writeError(w, err)
		return
	}

	payload := map[string]int{"remaining": remaining}
	ctx.Hub.BroadcastToRoom(session.RoomCode, ws.Message{Type: msgType, Data: payload})
	writeJSON(w, http.StatusOK, payload)
}
