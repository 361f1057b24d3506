package inspect

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	vterrors "github.com/vango-dev/vtree/internal/errors"
	"github.com/vango-dev/vtree/pkg/memhost"
)

// Hub fans host mutations out to WebSocket clients.
type Hub struct {
	logger       *slog.Logger
	bufferSize   int
	writeTimeout time.Duration
	upgrader     websocket.Upgrader

	mu          sync.RWMutex
	clients     map[*client]struct{}
	unsubscribe func()
	closed      bool
}

type client struct {
	conn *websocket.Conn
	send chan []byte
	once sync.Once
}

func newHub(logger *slog.Logger, bufferSize int, writeTimeout time.Duration) *Hub {
	return &Hub{
		logger:       logger,
		bufferSize:   bufferSize,
		writeTimeout: writeTimeout,
		clients:      make(map[*client]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			// The inspector is a local development tool.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

func (h *Hub) attach(host *memhost.Host) {
	h.unsubscribe = host.Subscribe(h.Publish)
}

// ServeHTTP upgrades the request and streams mutations until the client
// disconnects.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Debug("inspect: websocket upgrade failed", "error", vterrors.New("V081").Wrap(err))
		return
	}
	c := &client{conn: conn, send: make(chan []byte, h.bufferSize)}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		conn.Close()
		return
	}
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	h.logger.Debug("inspect: client connected", "remote", r.RemoteAddr)

	go h.writeLoop(c)

	// Reads only detect the close; clients send nothing.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("inspect: read error", "error", err)
			}
			break
		}
	}
	h.drop(c)
}

func (h *Hub) writeLoop(c *client) {
	for data := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(h.writeTimeout))
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			h.drop(c)
			return
		}
	}
	c.conn.SetWriteDeadline(time.Now().Add(h.writeTimeout))
	c.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	c.conn.Close()
}

// Publish sends m to every client. It never blocks: a client whose buffer
// is full is disconnected.
func (h *Hub) Publish(m memhost.Mutation) {
	data, err := json.Marshal(m.Sanitized())
	if err != nil {
		h.logger.Debug("inspect: encode mutation", "error", err)
		return
	}

	h.mu.RLock()
	var slow []*client
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		h.logger.Warn("inspect: dropping slow client")
		h.drop(c)
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close unsubscribes from the host and disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	clients := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	if h.unsubscribe != nil {
		h.unsubscribe()
	}
	for _, c := range clients {
		h.drop(c)
	}
}

// drop unregisters c and lets its write loop close the connection.
func (h *Hub) drop(c *client) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
	c.once.Do(func() { close(c.send) })
}
