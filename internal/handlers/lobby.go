package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/tovaldes/postmaster/internal/game"
	"github.com/tovaldes/postmaster/internal/models"
	"github.com/tovaldes/postmaster/internal/ws"
)

// slotView is the roster entry carried by lobby updates
type slotView struct {
	Name     string   `json:"name"`
	Kind     string   `json:"kind"`
	Capacity int      `json:"capacity"`
	Players  []string `json:"players"`
	LockedIn bool     `json:"lockedIn"`
}

// rosterView builds the lobby roster payload (must be called with lock held)
func rosterView(session *models.Session) []slotView {
	views := make([]slotView, 0, len(session.Slots))
	for _, slot := range session.Slots {
		names := make([]string, 0, len(slot.Players))
		for _, p := range slot.Players {
			names = append(names, p.DisplayName)
		}
		views = append(views, slotView{
			Name:     slot.Name,
			Kind:     string(slot.Kind),
			Capacity: slot.Capacity,
			Players:  names,
			LockedIn: slot.LockedIn,
		})
	}
	return views
}

func (ctx *Context) broadcastRoster(session *models.Session) {
	session.RLock()
	roster := rosterView(session)
	roomCode := session.RoomCode
	session.RUnlock()
	ctx.Hub.BroadcastToRoom(roomCode, ws.Message{Type: ws.TypeLobbyUpdate, Data: roster})
}

// HandleCreateRoom creates a new session owned by the caller as facilitator
func (ctx *Context) HandleCreateRoom(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	facilitatorID := uuid.New().String()
	session, err := ctx.Registry.CreateSession(facilitatorID)
	if err != nil {
		writeError(w, err)
		return
	}

	slog.Info("created room", "room", session.RoomCode, "facilitator", facilitatorID)

	setPlayerCookie(w, facilitatorID)
	session.RLock()
	defer session.RUnlock()
	writeJSON(w, http.StatusCreated, map[string]any{
		"roomCode":      session.RoomCode,
		"facilitatorId": facilitatorID,
		"phase":         session.Phase,
		"slots":         rosterView(session),
	})
}

// HandleJoinRoom attaches the caller to a slot in an existing session
func (ctx *Context) HandleJoinRoom(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	roomCode := strings.TrimPrefix(r.URL.Path, "/join/")

	var req struct {
		Slot string `json:"slot"`
		Name string `json:"name"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	session, err := ctx.Registry.Get(roomCode)
	if err != nil {
		writeError(w, err)
		return
	}

	session.Lock()
	player, err := game.JoinSlot(session, req.Slot, req.Name)
	session.Unlock()
	if err != nil {
		writeError(w, err)
		return
	}

	slog.Info("player joined", "room", session.RoomCode, "slot", player.SlotName, "player", player.ID, "name", player.DisplayName)

	ctx.broadcastRoster(session)

	setPlayerCookie(w, player.ID)
	writeJSON(w, http.StatusOK, map[string]any{
		"roomCode": session.RoomCode,
		"player":   player,
	})
}

// HandleLeaveRoom detaches the caller from their slot
func (ctx *Context) HandleLeaveRoom(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	roomCode := strings.TrimPrefix(r.URL.Path, "/leave/")

	session, player, err := ctx.getSessionAndPlayer(r, roomCode)
	if err != nil {
		writeError(w, err)
		return
	}

	session.Lock()
	_, err = game.RemovePlayer(session, player.ID)
	session.Unlock()
	if err != nil {
		writeError(w, err)
		return
	}

	slog.Info("player left", "room", session.RoomCode, "player", player.ID)

	ctx.broadcastRoster(session)
	writeJSON(w, http.StatusOK, map[string]string{"status": "left"})
}

// HandleRoomQR serves a QR code PNG of the room's join link
func (ctx *Context) HandleRoomQR(w http.ResponseWriter, r *http.Request) {
	roomCode := strings.TrimPrefix(r.URL.Path, "/qr/")

	session, err := ctx.Registry.Get(roomCode)
	if err != nil {
		writeError(w, err)
		return
	}

	joinURL := ctx.Cfg.BaseURL + "/join/" + session.RoomCode
	png, err := qrcode.Encode(joinURL, qrcode.Medium, 256)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(png)
}
