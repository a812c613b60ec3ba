package handlers

import (
	"context"
	"log/slog"
	"time"

	"github.com/tovaldes/postmaster/internal/game"
	"github.com/tovaldes/postmaster/internal/models"
	"github.com/tovaldes/postmaster/internal/ws"
)

// Run drives the periodic work: the once-per-second timer sweep across all
// live sessions, and the idle-session expiry sweep. It blocks until the
// context is cancelled.
func (ctx *Context) Run(runCtx context.Context) {
	tick := time.NewTicker(time.Second)
	defer tick.Stop()
	sweep := time.NewTicker(ctx.Cfg.SweepInterval)
	defer sweep.Stop()

	for {
		select {
		case <-runCtx.Done():
			return
		case now := <-tick.C:
			ctx.TickSessions(now)
		case <-sweep.C:
			ctx.SweepExpired()
			ctx.PersistSnapshots()
		}
	}
}

// TickSessions advances every live session's countdown. Each session's tick
// takes that session's lock like any other mutation; sessions never block
// each other.
func (ctx *Context) TickSessions(now time.Time) {
	for _, session := range ctx.Registry.ListAll() {
		ctx.tickSession(session, now)
	}
}

func (ctx *Context) tickSession(session *models.Session, now time.Time) {
	session.Lock()
	result := game.TickTimer(session, now, []int{ctx.Cfg.WarningSeconds})
	var transition *game.TransitionResult
	if result.Expired && result.AllLocked {
		t, err := game.Transition(session, game.NextPhase(session, ctx.Rules()), ctx.Rules())
		if err == nil {
			transition = &t
		} else {
			slog.Error("advance after timer expiry failed", "room", session.RoomCode, "err", err)
		}
	}
	running := session.Timer != nil && session.Timer.IsRunning
	remaining := 0
	if session.Timer != nil {
		remaining = session.Timer.Remaining
	}
	roomCode := session.RoomCode
	session.Unlock()

	// Warnings are emitted before auto-locks, auto-locks before the
	// transition they caused.
	for _, threshold := range result.Warnings {
		ctx.Hub.BroadcastToRoom(roomCode, ws.Message{Type: ws.TypeTimerWarning, Data: map[string]int{
			"threshold": threshold,
			"remaining": result.Remaining,
		}})
	}
	for _, locked := range result.AutoLocked {
		ctx.Hub.BroadcastToRoom(roomCode, ws.Message{Type: ws.TypeLockIn, Data: locked})
	}
	if len(result.AutoLocked) > 0 {
		ctx.Hub.BroadcastToRoom(roomCode, ws.Message{Type: ws.TypeTimerAutoLock, Data: result.AutoLocked})
	}
	if transition != nil {
		ctx.Hub.BroadcastToRoom(roomCode, ws.Message{Type: ws.TypePhaseChanged, Data: *transition})
	}
	if running {
		ctx.Hub.BroadcastToRoom(roomCode, ws.Message{Type: ws.TypeTimerTick, Data: map[string]int{
			"remaining": remaining,
		}})
	}
}

// SweepExpired deletes sessions idle for longer than the configured threshold
func (ctx *Context) SweepExpired() {
	for _, session := range ctx.Registry.ListExpired(ctx.Cfg.IdleExpiry) {
		session.RLock()
		roomCode := session.RoomCode
		last := session.LastActivity
		session.RUnlock()
		if ctx.Registry.Delete(roomCode) {
			ctx.Hub.DropRoom(roomCode)
			slog.Info("expired idle session", "room", roomCode, "lastActivity", last)
		}
	}
}

// PersistSnapshots re-saves every live session so snapshot-backed stores
// stay current. A no-op for the in-memory store.
func (ctx *Context) PersistSnapshots() {
	for _, session := range ctx.Registry.ListAll() {
		if err := ctx.Registry.Store.Save(session); err != nil {
			slog.Warn("persist session snapshot", "room", session.RoomCode, "err", err)
		}
	}
}
