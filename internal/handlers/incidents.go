package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/tovaldes/postmaster/internal/game"
	"github.com/tovaldes/postmaster/internal/ws"
)

// HandleTriggerIncident injects an incident card into a session (facilitator only)
func (ctx *Context) HandleTriggerIncident(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	roomCode := strings.TrimPrefix(r.URL.Path, "/incident/")

	var req struct {
		Incident string `json:"incident"`
		Target   string `json:"target,omitempty"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	session, err := ctx.getSessionFacilitator(r, roomCode)
	if err != nil {
		writeError(w, err)
		return
	}

	session.Lock()
	result, err := game.Trigger(session, ctx.Catalogs, req.Incident, req.Target, playerID(r))
	session.Unlock()
	if err != nil {
		writeError(w, err)
		return
	}

	slog.Info("incident triggered", "room", session.RoomCode, "incident", result.Record.IncidentID,
		"target", result.Record.Target, "choice", result.Record.Choice)

	ctx.Hub.BroadcastToRoom(session.RoomCode, ws.Message{Type: ws.TypeIncidentTriggered, Data: result.Record})
	if len(result.Changes) > 0 {
		ctx.Hub.BroadcastToRoom(session.RoomCode, ws.Message{Type: ws.TypeIncidentEffects, Data: result.Changes})
	}
	for _, prompt := range result.Prompts {
		ctx.Hub.BroadcastToRoom(session.RoomCode, ws.Message{Type: ws.TypeChoicePrompt, Data: prompt})
	}
	writeJSON(w, http.StatusOK, result.Record)
}

// HandleSubmitChoice resolves the incident choice presented to the caller's slot
func (ctx *Context) HandleSubmitChoice(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	roomCode := strings.TrimPrefix(r.URL.Path, "/choice/")

	var req struct {
		Incident string `json:"incident"`
		Choice   string `json:"choice"`
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
	result, err := game.SubmitChoice(session, ctx.Catalogs, player.SlotName, req.Incident, req.Choice)
	session.Unlock()
	if err != nil {
		writeError(w, err)
		return
	}

	slog.Info("choice resolved", "room", session.RoomCode, "slot", result.Slot,
		"incident", req.Incident, "choice", req.Choice)

	ctx.Hub.BroadcastToRoom(session.RoomCode, ws.Message{Type: ws.TypeIncidentEffects, Data: result.Changes})
	if result.Next != nil {
		ctx.Hub.BroadcastToRoom(session.RoomCode, ws.Message{Type: ws.TypeChoicePrompt, Data: *result.Next})
	}
	writeJSON(w, http.StatusOK, result)
}
