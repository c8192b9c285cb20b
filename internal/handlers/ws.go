package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/shoptrack/apiserver/internal/hub"
)

// WSHandler upgrades /ws requests and parks them in the hub until the
// peer goes away. Clients send nothing meaningful; inbound frames are
// read and discarded so close/ping frames get processed.
type WSHandler struct {
	hub      *hub.Hub
	upgrader websocket.Upgrader
}

func NewWSHandler(h *hub.Hub) *WSHandler {
	return &WSHandler{
		hub: h,
		upgrader: websocket.Upgrader{
			// The API is open to any origin, same as the CORS policy.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

func (h *WSHandler) Serve(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "error", err)
		return
	}

	h.hub.Register(conn)

	go func() {
		defer h.hub.Unregister(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
