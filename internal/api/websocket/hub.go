// Package websocket pushes session and catalog events to browser clients.
package websocket

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 512

	// SessionParam is the query parameter that scopes a connection to one session.
	SessionParam = "session"
)

// Event is the JSON frame sent to clients.
type Event struct {
	Type      string `json:"type"`
	SessionID string `json:"sessionId,omitempty"`
	Data      any    `json:"data"`
}

// Client is one WebSocket connection. A client with a session only receives
// that session's events plus global ones.
type Client struct {
	hub     *Hub
	conn    *websocket.Conn
	send    chan []byte
	session string
}

func (c *Client) wants(sessionID string) bool {
	return sessionID == "" || c.session == "" || c.session == sessionID
}

type message struct {
	sessionID string
	payload   []byte
}

// Hub tracks connected clients and fans messages out to them.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan message
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	stopOnce   sync.Once
	stopped    bool
	upgrader   websocket.Upgrader

	mu sync.RWMutex
}

// NewHub creates a hub. allowedOrigins limits the Origin header of upgrade
// requests and may hold one "*" wildcard each, as in "http://localhost:*".
// An empty list or a bare "*" accepts any origin.
func NewHub(allowedOrigins ...string) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan message),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
}

func originChecker(allowed []string) func(*http.Request) bool {
	for _, o := range allowed {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if len(allowed) == 0 || origin == "" {
			return true
		}
		for _, pattern := range allowed {
			if matchOrigin(pattern, origin) {
				return true
			}
		}
		return false
	}
}

func matchOrigin(pattern, origin string) bool {
	prefix, suffix, wildcard := strings.Cut(pattern, "*")
	if !wildcard {
		return pattern == origin
	}
	return len(origin) >= len(prefix)+len(suffix) &&
		strings.HasPrefix(origin, prefix) &&
		strings.HasSuffix(origin, suffix)
}

// Run is the hub's main loop. It returns after Stop.
func (h *Hub) Run() {
	for {
		select {
		case <-h.done:
			h.mu.Lock()
			h.stopped = true
			for client := range h.clients {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			log.Println("[WebSocket] Hub stopped")
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			n := len(h.clients)
			h.mu.Unlock()
			log.Printf("[WebSocket] Client connected (session %q). Total clients: %d", client.session, n)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			n := len(h.clients)
			h.mu.Unlock()
			log.Printf("[WebSocket] Client disconnected. Total clients: %d", n)

		case msg := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				if !client.wants(msg.sessionID) {
					continue
				}
				select {
				case client.send <- msg.payload:
				default:
					// Slow consumer; drop it.
					close(client.send)
					delete(h.clients, client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// BroadcastEvent queues an event for delivery. It returns false once the hub
// has stopped.
func (h *Hub) BroadcastEvent(event Event) bool {
	if h.IsStopped() {
		return false
	}

	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("[WebSocket] Error marshaling event %s: %v", event.Type, err)
		return false
	}

	select {
	case h.broadcast <- message{sessionID: event.SessionID, payload: data}:
		return true
	case <-h.done:
		return false
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Stop shuts the hub down and closes every client. Safe to call repeatedly.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() {
		close(h.done)
	})
}

// IsStopped reports whether the hub has stopped.
func (h *Hub) IsStopped() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.stopped
}

// ServeWs upgrades the request and registers the client. The optional
// ?session= parameter scopes the connection.
func (h *Hub) ServeWs(w http.ResponseWriter, r *http.Request) {
	if h.IsStopped() {
		http.Error(w, "WebSocket hub is not running", http.StatusServiceUnavailable)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[WebSocket] Upgrade error: %v", err)
		return
	}

	client := &Client{
		hub:     h,
		conn:    conn,
		send:    make(chan []byte, 256),
		session: r.URL.Query().Get(SessionParam),
	}

	select {
	case h.register <- client:
		go client.writePump()
		go client.readPump()
	case <-h.done:
		if err := conn.Close(); err != nil {
			log.Printf("[WebSocket] Close error: %v", err)
		}
	}
}

// readPump drains the connection so pongs and close frames are processed.
// Clients do not send commands.
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		if err := c.conn.Close(); err != nil {
			log.Printf("[WebSocket] Close error: %v", err)
		}
	}()

	c.conn.SetReadLimit(maxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		log.Printf("[WebSocket] SetReadDeadline error: %v", err)
		return
	}
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("[WebSocket] Read error: %v", err)
			}
			return
		}
	}
}

// writePump sends queued messages, one frame each, and keeps the connection
// alive with pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				log.Printf("[WebSocket] Write error: %v", err)
				return
			}

		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
