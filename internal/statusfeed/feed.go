// Package statusfeed broadcasts dispatch events over WebSocket, adapted
// from the teacher's WebSocketServer (gorilla/websocket upgrader, per-client
// connection registry, broadcast-to-subscribers pattern), trimmed down to
// a single fan-out topic since the status feed is read-only observational
// state, not the teacher's bidirectional JSON-RPC surface.
package statusfeed

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/netsweep/dispatchd/internal/logging"
)

// Event is one item broadcast to feed subscribers.
type Event struct {
	Type      string      `json:"type"`
	TaskID    string      `json:"task_id,omitempty"`
	Verdict   string      `json:"verdict,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Detail    interface{} `json:"detail,omitempty"`
}

const clientBufferSize = 32

// Hub fans out Events to connected WebSocket clients. It never blocks the
// caller of Publish: a client whose buffer is full is disconnected rather
// than allowed to slow the publisher down, since the feed is a
// best-effort observational surface, never a second consumer the dispatch
// loop depends on.
type Hub struct {
	mu       sync.Mutex
	clients  map[*client]struct{}
	upgrader websocket.Upgrader
	logger   *logging.Logger
}

type client struct {
	conn *websocket.Conn
	send chan Event
}

// NewHub builds an empty Hub.
func NewHub(logger *logging.Logger) *Hub {
	return &Hub{
		clients: make(map[*client]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		logger: logger,
	}
}

// HandleWebSocket upgrades the request and registers the connection until
// it disconnects or is dropped as a slow reader.
func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Warn("statusfeed: upgrade failed")
		return
	}

	c := &client{conn: conn, send: make(chan Event, clientBufferSize)}
	h.register(c)
	defer h.unregister(c)

	go h.writeLoop(c)
	h.readLoop(c)
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = struct{}{}
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	delete(h.clients, c)
	h.mu.Unlock()
	if ok {
		close(c.send)
		_ = c.conn.Close()
	}
}

// readLoop only exists to detect client disconnects/pings; the feed never
// accepts client-to-server messages.
func (h *Hub) readLoop(c *client) {
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writeLoop(c *client) {
	for evt := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
		if err := c.conn.WriteJSON(evt); err != nil {
			return
		}
	}
}

// Publish fans evt out to every connected client. A client whose send
// buffer is already full is dropped rather than blocked on.
func (h *Hub) Publish(evt Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients {
		select {
		case c.send <- evt:
		default:
			h.logger.Warn("statusfeed: dropping slow subscriber")
			delete(h.clients, c)
			close(c.send)
			_ = c.conn.Close()
		}
	}
}

// ClientCount reports the number of currently connected subscribers.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}
