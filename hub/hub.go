// Package hub fans pipeline events out to WebSocket consumers.
package hub

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/or4cl3ai/arch1tech/domain"
)

const (
	writeTimeout = 10 * time.Second
	pingInterval = 30 * time.Second
	sendBuffer   = 64
)

// Connection represents a single WebSocket consumer.
type Connection struct {
	ID   string
	Conn *websocket.Conn
	Send chan []byte

	closeOnce sync.Once
}

// Close closes the outbound channel and the socket.
func (c *Connection) Close() {
	c.closeOnce.Do(func() {
		close(c.Send)
	})
}

// Hub manages all WebSocket connections. Every connection receives
// every broadcast event.
type Hub struct {
	connections map[string]*Connection

	register   chan *Connection
	unregister chan *Connection
	broadcast  chan []byte
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		connections: make(map[string]*Connection),
		register:    make(chan *Connection),
		unregister:  make(chan *Connection),
		broadcast:   make(chan []byte, 256),
	}
}

// NewConnection wraps a raw WebSocket connection.
func (h *Hub) NewConnection(ws *websocket.Conn) *Connection {
	return &Connection{
		ID:   "conn_" + uuid.New().String()[:8],
		Conn: ws,
		Send: make(chan []byte, sendBuffer),
	}
}

// Register adds a connection to the hub.
func (h *Hub) Register(conn *Connection) {
	h.register <- conn
}

// Unregister removes a connection from the hub.
func (h *Hub) Unregister(conn *Connection) {
	h.unregister <- conn
}

// Broadcast sends a pipeline event to every connection. Consumers
// that cannot keep up are dropped rather than allowed to block the
// run.
func (h *Hub) Broadcast(evt domain.PipelineEvent) {
	data, err := json.Marshal(evt)
	if err != nil {
		log.Printf("ERROR: failed to marshal pipeline event: %v", err)
		return
	}
	h.broadcast <- data
}

// Run starts the hub's main loop.
func (h *Hub) Run() {
	for {
		select {
		case conn := <-h.register:
			h.connections[conn.ID] = conn
			log.Printf("Event consumer connected: %s", conn.ID)

		case conn := <-h.unregister:
			if _, ok := h.connections[conn.ID]; ok {
				delete(h.connections, conn.ID)
				conn.Close()
				log.Printf("Event consumer disconnected: %s", conn.ID)
			}

		case data := <-h.broadcast:
			for id, conn := range h.connections {
				select {
				case conn.Send <- data:
				default:
					delete(h.connections, id)
					conn.Close()
					log.Printf("WARN: dropping slow event consumer %s", id)
				}
			}
		}
	}
}

// WritePump writes queued messages and pings to the socket. It runs
// in its own goroutine per connection and returns when the Send
// channel is closed or a write fails.
func (c *Connection) WritePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
