// Package progress streams batch-run progress events to WebSocket clients.
// A dashboard (or plain wscat) can connect while a batch runs and watch
// instruments complete in real time.
package progress

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Event is a single progress update, one per finished instrument plus a
// batch_start and batch_done bracket.
type Event struct {
	Type       string `json:"type"` // "batch_start", "instrument", "batch_done"
	Instrument string `json:"instrument,omitempty"`
	Rows       int    `json:"rows,omitempty"`
	Error      string `json:"error,omitempty"`
	Completed  int    `json:"completed"`
	Total      int    `json:"total"`
}

// Hub manages WebSocket clients and fans progress events out to them.
type Hub struct {
	mu      sync.RWMutex
	clients map[*client]bool
	seq     int64
	last    []byte // most recent envelope, replayed to late joiners
}

// NewHub creates an empty progress hub.
func NewHub() *Hub {
	return &Hub{clients: make(map[*client]bool)}
}

// Broadcast stamps the event with a monotonic sequence number and sends it
// to every connected client. Slow clients are skipped, not blocked on.
func (h *Hub) Broadcast(ev Event) {
	h.mu.Lock()
	h.seq++
	envelope, err := json.Marshal(struct {
		Event
		Seq int64  `json:"seq"`
		TS  string `json:"ts"`
	}{
		Event: ev,
		Seq:   h.seq,
		TS:    time.Now().UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		h.mu.Unlock()
		return
	}
	h.last = envelope
	for c := range h.clients {
		select {
		case c.send <- envelope:
		default:
		}
	}
	h.mu.Unlock()
}

// ClientCount returns the number of connected WS clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) removeClient(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// ServeWS upgrades an HTTP connection to WebSocket and registers the client.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[progress] ws upgrade failed: %v", err)
		return
	}

	c := &client{
		conn: conn,
		send: make(chan []byte, 64),
		hub:  h,
	}

	h.mu.Lock()
	h.clients[c] = true
	count := len(h.clients)
	if h.last != nil {
		c.send <- h.last
	}
	h.mu.Unlock()

	log.Printf("[progress] ws client connected (%d total)", count)

	go c.writePump()
	go c.readPump()
}
