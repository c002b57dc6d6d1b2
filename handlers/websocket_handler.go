package handlers

import (
	"log/slog"
	"net/http"

	"github.com/compete-app/compete-backend/middleware"
	"github.com/compete-app/compete-backend/notifications"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Cross-origin policy is enforced at the router; the upgrade itself
	// accepts any origin.
	CheckOrigin: func(r *http.Request) bool { return true },
}

type WebSocketHandler struct {
	hub    *notifications.Hub
	logger *slog.Logger
}

func NewWebSocketHandler(hub *notifications.Hub, logger *slog.Logger) *WebSocketHandler {
	return &WebSocketHandler{hub: hub, logger: logger}
}

// Feed handles GET /ws/feed: the public stream of tournament create/delete
// events.
func (h *WebSocketHandler) Feed(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, notifications.FeedRoom)
}

// Alerts handles GET /ws/alerts: the per-user stream for alert matches and
// support replies. It runs behind authentication.
func (h *WebSocketHandler) Alerts(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		errorJSON(w, http.StatusUnauthorized, "authentication required")
		return
	}
	h.serve(w, r, notifications.UserRoom(userID))
}

func (h *WebSocketHandler) serve(w http.ResponseWriter, r *http.Request, room string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", slog.Any("error", err))
		return
	}

	client := &notifications.Client{
		Hub:  h.hub,
		Conn: conn,
		Send: make(chan []byte, 256),
		Room: room,
	}
	h.hub.Register <- client

	go client.WritePump()
	go client.ReadPump()
}
