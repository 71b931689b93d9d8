package handlers

import (
	"net/http"
	"time"

	"playdate-buddy-backend/internal/middleware"
	"playdate-buddy-backend/internal/services"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
	writeWait  = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // authenticated by token
	},
}

// WebSocketHandler handles WebSocket connections for live notifications
type WebSocketHandler struct {
	hub *services.NotificationHub
}

// NewWebSocketHandler creates a new WebSocket handler
func NewWebSocketHandler(hub *services.NotificationHub) *WebSocketHandler {
	return &WebSocketHandler{
		hub: hub,
	}
}

// HandleWebSocket handles GET /ws. Clients only receive events; anything they
// send is discarded.
func (h *WebSocketHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	username := middleware.GetUsername(r.Context())

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Str("username", username).Msg("Failed to upgrade WebSocket connection")
		return
	}

	h.hub.Register(username, conn)
	defer h.hub.Unregister(username, conn)

	if err := h.hub.SendToUser(username, services.Event{Type: services.EventConnected, Timestamp: time.Now().UnixMilli()}); err != nil {
		log.Error().Err(err).Str("username", username).Msg("Failed to send connected event")
		return
	}

	done := make(chan struct{})
	defer close(done)
	go h.keepAlive(conn, done)

	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Str("username", username).Msg("WebSocket closed unexpectedly")
			}
			return
		}
	}
}

// keepAlive pings the client so dead connections are noticed by the read deadline
func (h *WebSocketHandler) keepAlive(conn *websocket.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}
