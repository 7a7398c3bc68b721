// Package websocket pushes orchestrator state to browser clients.
package websocket

import (
	"encoding/json"
	"log"
	"net/http"
	"path"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10

	// Clients only ever send control frames.
	maxMessageSize = 512

	sendBuffer = 256
)

// Event is the JSON frame sent to clients.
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// Client is one connected socket and its outbound queue.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// Hub fans state frames out to every connected client. All membership
// changes go through Run, which owns the client set.
type Hub struct {
	upgrader       websocket.Upgrader
	allowedOrigins []string
	snapshot       func() Event

	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
	done       chan struct{}
	stopOnce   sync.Once

	mu      sync.RWMutex
	clients map[*Client]struct{}
	stopped bool
}

// NewHub creates a hub that accepts upgrades from origins matching one of
// allowedOrigins (path.Match patterns such as "http://localhost:*"). With
// no patterns every origin is accepted; requests without an Origin header
// always are.
func NewHub(allowedOrigins ...string) *Hub {
	h := &Hub{
		allowedOrigins: allowedOrigins,
		register:       make(chan *Client),
		unregister:     make(chan *Client),
		broadcast:      make(chan []byte),
		done:           make(chan struct{}),
		clients:        make(map[*Client]struct{}),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.originAllowed,
	}
	return h
}

// SetSnapshot sets the frame each client receives right after connecting.
// Call it before Run.
func (h *Hub) SetSnapshot(fn func() Event) {
	h.snapshot = fn
}

func (h *Hub) originAllowed(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || len(h.allowedOrigins) == 0 {
		return true
	}
	for _, pattern := range h.allowedOrigins {
		if ok, _ := path.Match(pattern, origin); ok {
			return true
		}
	}
	log.Printf("[WebSocket] Rejected origin %q", origin)
	return false
}

// Run processes registrations and broadcasts until Stop is called.
func (h *Hub) Run() {
	for {
		select {
		case c := <-h.register:
			n := h.withClients(func(set map[*Client]struct{}) { set[c] = struct{}{} })
			log.Printf("[WebSocket] Client connected (%d total)", n)

		case c := <-h.unregister:
			n := h.withClients(func(set map[*Client]struct{}) { h.dropLocked(c) })
			log.Printf("[WebSocket] Client disconnected (%d total)", n)

		case frame := <-h.broadcast:
			h.withClients(func(set map[*Client]struct{}) {
				for c := range set {
					select {
					case c.send <- frame:
					default:
						// Queue full: the client is not keeping up.
						h.dropLocked(c)
					}
				}
			})

		case <-h.done:
			h.withClients(func(set map[*Client]struct{}) {
				h.stopped = true
				for c := range set {
					h.dropLocked(c)
				}
			})
			log.Println("[WebSocket] Hub stopped")
			return
		}
	}
}

// withClients runs fn with the client set locked and returns its size after.
func (h *Hub) withClients(fn func(map[*Client]struct{})) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	fn(h.clients)
	return len(h.clients)
}

// dropLocked removes c and closes its queue, which ends its writer.
func (h *Hub) dropLocked(c *Client) {
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}

// BroadcastEvent queues event for every client. It reports false once the
// hub has stopped or if the event cannot be encoded.
func (h *Hub) BroadcastEvent(event Event) bool {
	if h.IsStopped() {
		return false
	}

	frame, err := json.Marshal(event)
	if err != nil {
		log.Printf("[WebSocket] Cannot encode %s event: %v", event.Type, err)
		return false
	}

	select {
	case h.broadcast <- frame:
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

// Stop ends Run and disconnects every client. Repeated calls are no-ops.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.done) })
}

// IsStopped reports whether Run has finished shutting down.
func (h *Hub) IsStopped() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.stopped
}

// ServeWs upgrades the request, queues the snapshot and hands the client
// to Run.
func (h *Hub) ServeWs(w http.ResponseWriter, r *http.Request) {
	if h.IsStopped() {
		http.Error(w, "WebSocket hub is not running", http.StatusServiceUnavailable)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[WebSocket] Upgrade failed: %v", err)
		return
	}

	c := &Client{hub: h, conn: conn, send: make(chan []byte, sendBuffer)}
	if h.snapshot != nil {
		if frame, err := json.Marshal(h.snapshot()); err == nil {
			c.send <- frame
		} else {
			log.Printf("[WebSocket] Cannot encode snapshot: %v", err)
		}
	}

	select {
	case h.register <- c:
		go c.writeLoop()
		go c.readLoop()
	case <-h.done:
		c.close()
	}
}

func (c *Client) close() {
	if err := c.conn.Close(); err != nil {
		log.Printf("[WebSocket] Close failed: %v", err)
	}
}

// readLoop discards client frames so that pongs and close frames are seen,
// and unregisters the client when the connection ends.
func (c *Client) readLoop() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	extend := func(string) error { return c.conn.SetReadDeadline(time.Now().Add(pongWait)) }
	if err := extend(""); err != nil {
		return
	}
	c.conn.SetPongHandler(extend)

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("[WebSocket] Read failed: %v", err)
			}
			return
		}
	}
}

// writeLoop sends queued frames one per message and pings on an interval.
// It exits when the hub closes the queue or a write fails.
func (c *Client) writeLoop() {
	ping := time.NewTicker(pingPeriod)
	defer func() {
		ping.Stop()
		c.close()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				log.Printf("[WebSocket] Write failed: %v", err)
				return
			}

		case <-ping.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
