// Package gateway is the push channel: it holds client WebSocket connections,
// reports their lifecycle to the connection registry and accepts pushes for
// a single connection over HTTP.
package gateway

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBuffer     = 16
)

var (
	ErrUnknownConnection = errors.New("unknown connection")
	ErrBufferFull        = errors.New("connection send buffer full")
)

// Conn abstracts a WebSocket connection for testability.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	SetReadLimit(limit int64)
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
	SetPongHandler(h func(appData string) error)
	Close() error
}

// Client is one live connection.
type Client struct {
	ID     string
	UserID uuid.UUID
	send   chan []byte
	conn   Conn
}

func NewClient(id string, userID uuid.UUID, conn Conn) *Client {
	return &Client{
		ID:     id,
		UserID: userID,
		send:   make(chan []byte, sendBuffer),
		conn:   conn,
	}
}

// readPump consumes inbound frames until the peer goes away. seen is called
// on every frame and pong.
func (c *Client) readPump(seen func()) {
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		seen()
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
		seen()
	}
}

// writePump forwards queued payloads and keeps the connection alive with
// pings. It returns when the send channel is closed.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Hub tracks the clients of this gateway instance by connection id.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
}

func NewHub() *Hub {
	return &Hub{clients: make(map[string]*Client)}
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[c.ID] = c
}

// Unregister removes the client and closes its send channel. It reports
// false if the client was already gone.
func (h *Hub) Unregister(c *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if cur, ok := h.clients[c.ID]; !ok || cur != c {
		return false
	}

	delete(h.clients, c.ID)
	close(c.send)

	return true
}

// Deliver queues data for one connection without blocking.
func (h *Hub) Deliver(connectionID string, data []byte) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	c, ok := h.clients[connectionID]
	if !ok {
		return ErrUnknownConnection
	}

	select {
	case c.send <- data:
		return nil
	default:
		return ErrBufferFull
	}
}

// CloseAll unregisters every client. Their write pumps send a close frame.
func (h *Hub) CloseAll() []*Client {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]*Client, 0, len(h.clients))
	for id, c := range h.clients {
		delete(h.clients, id)
		close(c.send)
		out = append(out, c)
	}

	return out
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.clients)
}
