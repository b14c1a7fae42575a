package inspect

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vango-dev/reconcile/pkg/render"
)

const (
	writeWait  = 5 * time.Second
	sendBuffer = 16
)

// Hub keeps the recent pass history and streams every committed pass to
// the connected WebSocket clients. Publish is a render.CommitHook.
type Hub struct {
	mu      sync.RWMutex
	clients map[*client]bool
	history []Summary
	limit   int

	upgrader websocket.Upgrader
	logger   *slog.Logger
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// NewHub creates a hub remembering the last limit passes.
func NewHub(limit int, logger *slog.Logger) *Hub {
	if limit <= 0 {
		limit = 100
	}
	if logger == nil {
		logger = slog.Default().With("component", "inspect")
	}
	return &Hub{
		clients: make(map[*client]bool),
		limit:   limit,
		logger:  logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// Publish records rc and broadcasts its summary. It runs on the
// container loop and never blocks on a client.
func (h *Hub) Publish(rc *render.RenderContext) {
	s := Summarize(rc)
	data, err := json.Marshal(s)
	if err != nil {
		h.logger.Warn("summary not encodable", "pass", s.ID, "error", err)
		return
	}

	h.mu.Lock()
	h.history = append(h.history, s)
	if over := len(h.history) - h.limit; over > 0 {
		h.history = append(h.history[:0], h.history[over:]...)
	}
	var slow []*client
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			slow = append(slow, c)
		}
	}
	for _, c := range slow {
		h.drop(c)
	}
	h.mu.Unlock()
}

// History returns the remembered summaries, oldest first.
func (h *Hub) History() []Summary {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return append([]Summary(nil), h.history...)
}

// HandleWebSocket upgrades the request and streams summaries until the
// client disconnects.
func (h *Hub) HandleWebSocket(w http.ResponseWriter, req *http.Request) {
	conn, err := h.upgrader.Upgrade(w, req, nil)
	if err != nil {
		return
	}
	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}

	h.mu.Lock()
	h.clients[c] = true
	h.mu.Unlock()

	go h.write(c)

	// Reads only detect the close.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	h.mu.Lock()
	h.drop(c)
	h.mu.Unlock()
}

func (h *Hub) write(c *client) {
	defer c.conn.Close()
	for data := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			return
		}
	}
	c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(writeWait))
}

// drop must be called with h.mu held.
func (h *Hub) drop(c *client) {
	if h.clients[c] {
		delete(h.clients, c)
		close(c.send)
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects all clients.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		h.drop(c)
	}
}
