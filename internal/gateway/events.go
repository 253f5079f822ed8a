package gateway

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"

	"github.com/undergrid/recall/internal/session"
)

const (
	writeTimeout = 5 * time.Second

	// clientBuffer bounds the per-client event backlog. A client that
	// falls further behind loses events rather than stalling Publish.
	clientBuffer = 16
)

// EventHub fans session events out to connected websocket clients.
// Each client gets its own buffered channel drained by a dedicated
// writer goroutine, so Publish never performs network I/O and a slow
// or dead client cannot stall the exchange path.
type EventHub struct {
	mu     sync.Mutex
	conns  map[*websocket.Conn]chan []byte
	logger *slog.Logger
}

// NewEventHub creates an empty hub.
func NewEventHub(logger *slog.Logger) *EventHub {
	if logger == nil {
		logger = slog.Default()
	}
	return &EventHub{
		conns:  make(map[*websocket.Conn]chan []byte),
		logger: logger,
	}
}

// Publish queues one event for every connected client. Clients whose
// buffer is full drop the event. Satisfies session.Sink.
func (h *EventHub) Publish(ev session.Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		h.logger.Error("event marshal failed", "error", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.conns {
		select {
		case ch <- data:
		default:
			h.logger.Warn("event dropped for slow client", "type", ev.Type)
		}
	}
}

// ServeHTTP upgrades the request to a websocket and keeps the
// connection registered until the client goes away. Clients are
// read-drained; inbound messages are ignored.
func (h *EventHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket accept failed", "error", err)
		return
	}

	ch := make(chan []byte, clientBuffer)
	h.mu.Lock()
	h.conns[conn] = ch
	h.mu.Unlock()

	go h.writeLoop(conn, ch)

	defer func() {
		h.remove(conn)
		_ = conn.Close(websocket.StatusNormalClosure, "")
	}()

	// Block until the client disconnects or the server shuts down.
	for {
		if _, _, err := conn.Read(r.Context()); err != nil {
			return
		}
	}
}

// writeLoop drains one client's channel onto its connection. It exits
// when the channel is closed by remove or when a write fails.
func (h *EventHub) writeLoop(conn *websocket.Conn, ch chan []byte) {
	for data := range ch {
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		err := conn.Write(ctx, websocket.MessageText, data)
		cancel()
		if err != nil {
			_ = conn.Close(websocket.StatusPolicyViolation, "write failed")
			h.remove(conn)
			return
		}
	}
}

// remove deregisters a connection and closes its channel. Safe to call
// more than once for the same connection.
func (h *EventHub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if ch, ok := h.conns[conn]; ok {
		delete(h.conns, conn)
		close(ch)
	}
}

// Close disconnects all clients.
func (h *EventHub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn, ch := range h.conns {
		_ = conn.Close(websocket.StatusGoingAway, "server shutting down")
		delete(h.conns, conn)
		close(ch)
	}
}

// Len returns the number of connected clients.
func (h *EventHub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}
