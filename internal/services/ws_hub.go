package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// Event types delivered to users
const (
	EventFriendAdded = "friend_added"
	EventDateJoined  = "date_joined"
	EventConnected   = "connected"
)

// Event is a notification delivered over WebSocket or push
type Event struct {
	Type      string `json:"type"`
	From      string `json:"from,omitempty"`
	PlaceID   string `json:"place_id,omitempty"`
	Place     string `json:"place,omitempty"`
	When      string `json:"when,omitempty"`
	Timestamp int64  `json:"timestamp,omitempty"`
}

// Message renders the event as a human-readable line
func (e Event) Message() string {
	switch e.Type {
	case EventFriendAdded:
		return fmt.Sprintf("%s added you as a friend", e.From)
	case EventDateJoined:
		return fmt.Sprintf("%s joined your playdate at %s on %s", e.From, e.Place, e.When)
	default:
		return e.Type
	}
}

// Pusher sends an event to a device
type Pusher interface {
	Push(ctx context.Context, deviceToken string, event Event) error
}

// PushTokenSource looks up device tokens for users
type PushTokenSource interface {
	GetPushTokens(ctx context.Context, usernames []string) (map[string]string, error)
}

// writeWait bounds each write to a client so a peer that stops reading
// cannot stall the request that triggered the event
const writeWait = 10 * time.Second

// wsConn is the part of *websocket.Conn the hub writes to
type wsConn interface {
	WriteMessage(messageType int, data []byte) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

type wsClient struct {
	conn wsConn
	mu   sync.Mutex
}

// NotificationHub manages WebSocket connections and falls back to push
// notifications for users that are not connected
type NotificationHub struct {
	mu          sync.RWMutex
	connections map[string]*wsClient
	tokens      PushTokenSource
	pusher      Pusher
	writeWait   time.Duration
	wg          sync.WaitGroup
}

// NewNotificationHub creates a new hub; pusher may be nil
func NewNotificationHub(tokens PushTokenSource, pusher Pusher) *NotificationHub {
	return &NotificationHub{
		connections: make(map[string]*wsClient),
		tokens:      tokens,
		pusher:      pusher,
		writeWait:   writeWait,
	}
}

// Register registers a new WebSocket connection for a user
func (h *NotificationHub) Register(username string, conn wsConn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	// Close existing connection if any
	if existing, exists := h.connections[username]; exists {
		existing.conn.Close()
	}
	h.connections[username] = &wsClient{conn: conn}

	log.Info().Str("username", username).Msg("WebSocket connection registered")
}

// Unregister removes a user's connection if it is still the registered one
func (h *NotificationHub) Unregister(username string, conn wsConn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if client, exists := h.connections[username]; exists && client.conn == conn {
		client.conn.Close()
		delete(h.connections, username)
		log.Info().Str("username", username).Msg("WebSocket connection unregistered")
	}
}

// IsOnline checks if a user is connected
func (h *NotificationHub) IsOnline(username string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, exists := h.connections[username]
	return exists
}

// SendToUser sends an event to a connected user
func (h *NotificationHub) SendToUser(username string, event Event) error {
	h.mu.RLock()
	client, exists := h.connections[username]
	h.mu.RUnlock()

	if !exists {
		return fmt.Errorf("user %s is not connected", username)
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	client.mu.Lock()
	err = client.conn.SetWriteDeadline(time.Now().Add(h.writeWait))
	if err == nil {
		err = client.conn.WriteMessage(websocket.TextMessage, data)
	}
	client.mu.Unlock()
	if err != nil {
		h.Unregister(username, client.conn)
		return fmt.Errorf("failed to send event: %w", err)
	}
	return nil
}

// Notify delivers an event to each user, over WebSocket when connected and
// by push otherwise. Failures are logged.
func (h *NotificationHub) Notify(ctx context.Context, usernames []string, event Event) {
	if event.Timestamp == 0 {
		event.Timestamp = time.Now().UnixMilli()
	}

	var offline []string
	for _, username := range usernames {
		if err := h.SendToUser(username, event); err != nil {
			offline = append(offline, username)
		}
	}

	if len(offline) == 0 || h.pusher == nil || h.tokens == nil {
		return
	}

	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		h.push(context.WithoutCancel(ctx), offline, event)
	}()
}

// Wait blocks until in-flight push deliveries finish
func (h *NotificationHub) Wait() {
	h.wg.Wait()
}

func (h *NotificationHub) push(ctx context.Context, usernames []string, event Event) {
	tokens, err := h.tokens.GetPushTokens(ctx, usernames)
	if err != nil {
		log.Error().Err(err).Str("type", event.Type).Msg("Failed to load push tokens")
		return
	}
	for username, token := range tokens {
		if err := h.pusher.Push(ctx, token, event); err != nil {
			log.Error().
				Err(err).
				Str("username", username).
				Str("type", event.Type).
				Msg("Failed to push notification")
		}
	}
}

// Close closes every registered connection
func (h *NotificationHub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for username, client := range h.connections {
		client.conn.Close()
		delete(h.connections, username)
	}
}
