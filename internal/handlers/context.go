package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/tovaldes/postmaster/internal/config"
	"github.com/tovaldes/postmaster/internal/game"
	"github.com/tovaldes/postmaster/internal/models"
	"github.com/tovaldes/postmaster/internal/ws"
)

// Context holds the dependencies shared by all handlers
type Context struct {
	Registry *game.Registry
	Hub      *ws.Hub
	Catalogs *config.Catalogs
	Cfg      *config.Config
}

// Rules returns the pacing rules the phase machine applies
func (ctx *Context) Rules() game.Rules {
	return game.Rules{
		TotalRounds:       ctx.Cfg.TotalRounds,
		PlanningSeconds:   ctx.Cfg.PlanningSeconds,
		ResolutionSeconds: ctx.Cfg.ResolutionSeconds,
	}
}

// playerID extracts the caller's identity from the session cookie
func playerID(r *http.Request) string {
	cookie, err := r.Cookie("player_id")
	if err != nil {
		return ""
	}
	return cookie.Value
}

// setPlayerCookie stores the caller's identity
func setPlayerCookie(w http.ResponseWriter, id string) {
	http.SetCookie(w, &http.Cookie{
		Name:     "player_id",
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// getSessionAndPlayer validates membership using the session cookie
func (ctx *Context) getSessionAndPlayer(r *http.Request, roomCode string) (*models.Session, *models.Player, error) {
	session, err := ctx.Registry.Get(roomCode)
	if err != nil {
		return nil, nil, err
	}
	id := playerID(r)
	session.RLock()
	_, player := session.FindPlayer(id)
	session.RUnlock()
	if player == nil {
		return nil, nil, game.ErrPlayerNotFound
	}
	return session, player, nil
}

func decodeJSON(r *http.Request, dest any) error {
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		return game.ErrValidation
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Warn("write response", "err", err)
	}
}

// writeError maps core errors onto HTTP status codes
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, game.ErrRoomNotFound),
		errors.Is(err, game.ErrSlotNotFound),
		errors.Is(err, game.ErrPlayerNotFound),
		errors.Is(err, game.ErrIncidentNotFound),
		errors.Is(err, game.ErrItemNotFound),
		errors.Is(err, game.ErrNoPendingChoice):
		status = http.StatusNotFound
	case errors.Is(err, game.ErrNotFacilitator), errors.Is(err, game.ErrNotSlotMember):
		status = http.StatusForbidden
	case errors.Is(err, game.ErrAlreadyLockedIn),
		errors.Is(err, game.ErrPhaseNotLockable),
		errors.Is(err, game.ErrWrongPhase),
		errors.Is(err, game.ErrInvalidTransition),
		errors.Is(err, game.ErrGameAlreadyStarted),
		errors.Is(err, game.ErrGameNotStarted),
		errors.Is(err, game.ErrTimerNotActive),
		errors.Is(err, game.ErrInvalidTarget),
		errors.Is(err, game.ErrSlotFull),
		errors.Is(err, game.ErrInsufficientFunds):
		status = http.StatusConflict
	case errors.Is(err, game.ErrValidation), errors.Is(err, game.ErrInvalidChoice):
		status = http.StatusBadRequest
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// snapshotState serializes a session under its read lock so the result can
// be sent after the lock is released
func snapshotState(session *models.Session) json.RawMessage {
	session.RLock()
	defer session.RUnlock()
	payload, err := json.Marshal(session)
	if err != nil {
		slog.Error("marshal session snapshot", "room", session.RoomCode, "err", err)
		return json.RawMessage(`{}`)
	}
	return payload
}
