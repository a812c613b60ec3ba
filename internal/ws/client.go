package ws

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	clientSendBuf = 64
	writeDeadline = 5 * time.Second
	pongWait      = 30 * time.Second
	pingInterval  = 20 * time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(_ *http.Request) bool { return true },
}

// Client is one WebSocket connection known to the hub
type Client struct {
	ID       string
	PlayerID string

	room string
	conn *websocket.Conn
	send chan []byte

	closeOnce sync.Once
	done      chan struct{}
}

func newClient(conn *websocket.Conn, playerID string) *Client {
	return &Client{
		ID:       uuid.New().String(),
		PlayerID: playerID,
		conn:     conn,
		send:     make(chan []byte, clientSendBuf),
		done:     make(chan struct{}),
	}
}

// enqueue offers a payload to the client's send buffer without blocking
func (c *Client) enqueue(payload []byte) bool {
	select {
	case c.send <- payload:
		return true
	case <-c.done:
		return false
	default:
		return false
	}
}

func (c *Client) close() {
	c.closeOnce.Do(func() {
		close(c.done)
		if c.conn != nil {
			_ = c.conn.Close()
		}
	})
}

// Serve upgrades an HTTP request to a WebSocket connection, subscribes it to
// the room, sends the initial full-state message, and pumps outbound data
// until the client disconnects.
func Serve(hub *Hub, w http.ResponseWriter, r *http.Request, roomCode, playerID string, initial Message) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "room", roomCode, "err", err)
		return
	}

	client := newClient(conn, playerID)
	hub.Subscribe(client, roomCode)
	defer func() {
		hub.Unsubscribe(client.ID)
		client.close()
	}()

	hub.SendToConn(client.ID, initial)

	go client.readPump()
	client.writePump()
}

// readPump discards inbound frames (actions arrive over HTTP) and keeps the
// read deadline fed by pongs; its exit closes the connection.
func (c *Client) readPump() {
	defer c.close()
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-c.done:
			return
		case payload := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
