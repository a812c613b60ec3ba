package handlers

import (
	"net/http"
	"strings"

	"github.com/tovaldes/postmaster/internal/game"
	"github.com/tovaldes/postmaster/internal/ws"
)

// HandleWS upgrades a member's connection and subscribes it to the room.
// The first message on the socket is the full session state, so a
// reconnecting client is consistent without replay.
func (ctx *Context) HandleWS(w http.ResponseWriter, r *http.Request) {
	roomCode := strings.TrimPrefix(r.URL.Path, "/ws/")

	session, err := ctx.Registry.Get(roomCode)
	if err != nil {
		writeError(w, err)
		return
	}

	id := playerID(r)
	session.RLock()
	_, member := session.FindPlayer(id)
	session.RUnlock()
	if member == nil && id != session.FacilitatorID {
		writeError(w, game.ErrPlayerNotFound)
		return
	}

	initial := ws.Message{
		Type: ws.TypeFullState,
		Data: snapshotState(session),
	}
	ws.Serve(ctx.Hub, w, r, session.RoomCode, id, initial)
}
