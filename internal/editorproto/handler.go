package editorproto

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Handler upgrades incoming HTTP requests to editor WebSocket
// connections, grounded on the teacher's websocket.Handler.
type Handler struct {
	hub     *Hub
	auth    Authenticator
	request RequestHandler
	logger  *slog.Logger
}

func NewHandler(hub *Hub, auth Authenticator, request RequestHandler, logger *slog.Logger) *Handler {
	return &Handler{hub: hub, auth: auth, request: request, logger: logger}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	sessionID, err := h.auth.Authenticate(r)
	if err != nil {
		h.logger.Warn("editor websocket authentication failed", "error", err, "remote_addr", r.RemoteAddr)
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("editor websocket upgrade failed", "error", err, "remote_addr", r.RemoteAddr)
		return
	}

	clientID := uuid.New().String()
	client := NewClient(clientID, sessionID, h.hub, conn, h.request)

	h.logger.Info("editor client connected", "client_id", clientID, "session_id", sessionID, "remote_addr", r.RemoteAddr)

	h.hub.register <- client

	go client.WritePump()
	go client.ReadPump()
}

func SetCheckOrigin(f func(r *http.Request) bool) {
	upgrader.CheckOrigin = f
}
