// Package ws fans out room-scoped state changes to connected clients over
// WebSocket. Delivery is best-effort and at-most-once: a client whose send
// buffer is full misses the message and has to resync via the full-state
// pull, which it also receives on every (re)subscribe.
package ws

import (
	"encoding/json"
	"log/slog"
	"sync"
)

// Hub tracks which connection belongs to which room and delivers messages.
// The connection registry is guarded independently of session state: a
// disconnect may race a room mutation, at worst a broadcast reaches a client
// that just unsubscribed.
type Hub struct {
	mu      sync.Mutex
	clients map[string]*Client            // connection id -> client
	rooms   map[string]map[string]*Client // room code -> connection id -> client
}

// NewHub creates an empty connection registry
func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]*Client),
		rooms:   make(map[string]map[string]*Client),
	}
}

// Subscribe associates a connection with a room. A connection subscribes to
// at most one room; resubscribing moves it.
func (h *Hub) Subscribe(client *Client, roomCode string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if prev, ok := h.clients[client.ID]; ok && prev.room != roomCode {
		h.removeLocked(prev)
	}
	client.room = roomCode
	h.clients[client.ID] = client
	if h.rooms[roomCode] == nil {
		h.rooms[roomCode] = make(map[string]*Client)
	}
	h.rooms[roomCode][client.ID] = client
}

// Unsubscribe drops a connection from the registry
func (h *Hub) Unsubscribe(connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if client, ok := h.clients[connID]; ok {
		h.removeLocked(client)
	}
}

func (h *Hub) removeLocked(client *Client) {
	delete(h.clients, client.ID)
	if room, ok := h.rooms[client.room]; ok {
		delete(room, client.ID)
		if len(room) == 0 {
			delete(h.rooms, client.room)
		}
	}
}

// BroadcastToRoom sends a message to every connection in a room. Messages
// emitted from one mutation reach each client in emission order; a client
// with a full buffer is skipped.
func (h *Hub) BroadcastToRoom(roomCode string, msg Message) {
	payload, err := json.Marshal(msg)
	if err != nil {
		slog.Error("marshal broadcast", "type", msg.Type, "err", err)
		return
	}

	h.mu.Lock()
	targets := make([]*Client, 0, len(h.rooms[roomCode]))
	for _, client := range h.rooms[roomCode] {
		targets = append(targets, client)
	}
	h.mu.Unlock()

	for _, client := range targets {
		if !client.enqueue(payload) {
			slog.Warn("client send buffer full, dropping message",
				"conn", client.ID, "room", roomCode, "type", msg.Type)
		}
	}
}

// SendToConn delivers a message to a single connection
func (h *Hub) SendToConn(connID string, msg Message) {
	payload, err := json.Marshal(msg)
	if err != nil {
		slog.Error("marshal direct send", "type", msg.Type, "err", err)
		return
	}

	h.mu.Lock()
	client, ok := h.clients[connID]
	h.mu.Unlock()
	if !ok {
		return
	}
	if !client.enqueue(payload) {
		slog.Warn("client send buffer full, dropping message", "conn", connID, "type", msg.Type)
	}
}

// DropRoom removes and closes every connection in a room, used when a
// session is deleted
func (h *Hub) DropRoom(roomCode string) {
	h.mu.Lock()
	dropped := make([]*Client, 0, len(h.rooms[roomCode]))
	for _, client := range h.rooms[roomCode] {
		dropped = append(dropped, client)
	}
	for _, client := range dropped {
		h.removeLocked(client)
	}
	h.mu.Unlock()

	for _, client := range dropped {
		client.close()
	}
}

// RoomSize returns the number of connections subscribed to a room
func (h *Hub) RoomSize(roomCode string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.rooms[roomCode])
}
