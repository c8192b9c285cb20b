// Package hub holds the registry of live-update WebSocket connections and
// fans a change signal out to all of them. Delivery is best effort and
// at most once: whoever is connected when NotifyAll runs gets one frame,
// everyone else gets nothing.
package hub

import (
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/shoptrack/apiserver/internal/metrics"
)

const defaultWriteTimeout = 5 * time.Second

// updateMessage is the fixed signal payload the frontend listens for.
var updateMessage = []byte("update")

// Hub is the shared set of open live channels. It is safe for concurrent
// use by the connection-accept path, the per-connection read loops, and
// the notify path.
type Hub struct {
	// mu guards conns. sendMu serializes notify passes so that no two
	// goroutines ever write the same connection at once; gorilla/websocket
	// does not allow concurrent writers.
	mu     sync.Mutex
	sendMu sync.Mutex
	conns  map[*websocket.Conn]struct{}

	writeTimeout time.Duration
}

func New() *Hub {
	return &Hub{
		conns:        make(map[*websocket.Conn]struct{}),
		writeTimeout: defaultWriteTimeout,
	}
}

// Register adds a connection to the set.
func (h *Hub) Register(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, exists := h.conns[conn]; exists {
		return
	}
	h.conns[conn] = struct{}{}
	metrics.ConnectedClients.Inc()
	slog.Debug("live channel registered", "clients", len(h.conns))
}

// Unregister removes and closes a connection. Calling it for a connection
// that is already gone is a no-op.
func (h *Hub) Unregister(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.remove(conn)
}

// remove deletes and closes conn. Caller must hold mu.
func (h *Hub) remove(conn *websocket.Conn) {
	if _, exists := h.conns[conn]; !exists {
		return
	}
	delete(h.conns, conn)
	_ = conn.Close()
	metrics.ConnectedClients.Dec()
	slog.Debug("live channel unregistered", "clients", len(h.conns))
}

// NotifyAll attempts one send of the update signal to every connection
// registered when the pass starts. Connections whose send fails are
// collected during the pass and removed afterwards, so the set is never
// mutated while it is being walked. Failures are logged and counted but
// never returned: a dead browser tab must not fail the write that
// triggered the notification.
func (h *Hub) NotifyAll() {
	h.sendMu.Lock()
	defer h.sendMu.Unlock()

	h.mu.Lock()
	snapshot := make([]*websocket.Conn, 0, len(h.conns))
	for conn := range h.conns {
		snapshot = append(snapshot, conn)
	}
	h.mu.Unlock()

	var failed []*websocket.Conn
	for _, conn := range snapshot {
		_ = conn.SetWriteDeadline(time.Now().Add(h.writeTimeout))
		if err := conn.WriteMessage(websocket.TextMessage, updateMessage); err != nil {
			slog.Warn("live update send failed, dropping client", "error", err)
			metrics.BroadcastSendFailuresTotal.Inc()
			failed = append(failed, conn)
		}
	}

	if len(failed) > 0 {
		h.mu.Lock()
		for _, conn := range failed {
			h.remove(conn)
		}
		h.mu.Unlock()
	}

	metrics.BroadcastsTotal.Inc()
}

// Len returns the number of currently registered connections.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}

// Close drops every connection. Used on shutdown.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.conns {
		h.remove(conn)
	}
}
