package services

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"playdate-buddy-backend/internal/models"
	"playdate-buddy-backend/internal/services/servicetest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	mu       sync.Mutex
	messages [][]byte
	closed   bool
	err      error
}

func (c *fakeConn) WriteMessage(_ int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.messages = append(c.messages, data)
	return nil
}

func (c *fakeConn) SetWriteDeadline(time.Time) error { return nil }

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeConn) events(t *testing.T) []Event {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Event, 0, len(c.messages))
	for _, m := range c.messages {
		var e Event
		require.NoError(t, json.Unmarshal(m, &e))
		out = append(out, e)
	}
	return out
}

// stalledConn never drains: writes block until the write deadline passes
type stalledConn struct {
	mu       sync.Mutex
	deadline time.Time
	closed   bool
}

func (c *stalledConn) SetWriteDeadline(t time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deadline = t
	return nil
}

func (c *stalledConn) WriteMessage(int, []byte) error {
	c.mu.Lock()
	deadline := c.deadline
	c.mu.Unlock()
	if deadline.IsZero() {
		select {} // a write without a deadline hangs forever
	}
	time.Sleep(time.Until(deadline))
	return errors.New("i/o timeout")
}

func (c *stalledConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

type pushed struct {
	token string
	event Event
}

type fakePusher struct {
	mu   sync.Mutex
	sent []pushed
}

func (p *fakePusher) Push(_ context.Context, token string, event Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sent = append(p.sent, pushed{token: token, event: event})
	return nil
}

func TestNotificationHub_DeliversToConnectedUser(t *testing.T) {
	hub := NewNotificationHub(nil, nil)
	conn := &fakeConn{}
	hub.Register("u2", conn)
	assert.True(t, hub.IsOnline("u2"))

	hub.Notify(context.Background(), []string{"u2"}, Event{Type: EventFriendAdded, From: "u1"})

	events := conn.events(t)
	require.Len(t, events, 1)
	assert.Equal(t, EventFriendAdded, events[0].Type)
	assert.Equal(t, "u1", events[0].From)
	assert.NotZero(t, events[0].Timestamp)
}

func TestNotificationHub_PushesToOfflineUsers(t *testing.T) {
	users := servicetest.NewUsers()
	ctx := context.Background()
	require.NoError(t, users.Create(ctx, &models.User{Username: "u2", PushToken: strPtr("device-2")}))
	require.NoError(t, users.Create(ctx, &models.User{Username: "u3"}))

	pusher := &fakePusher{}
	hub := NewNotificationHub(users, pusher)

	hub.Notify(ctx, []string{"u2", "u3"}, Event{Type: EventDateJoined, From: "u1", Place: "Central Park", When: "2030-06-01 10:00:00"})
	hub.Wait()

	require.Len(t, pusher.sent, 1)
	assert.Equal(t, "device-2", pusher.sent[0].token)
	assert.Equal(t, "u1 joined your playdate at Central Park on 2030-06-01 10:00:00", pusher.sent[0].event.Message())
}

func TestNotificationHub_ReplacesAndUnregisters(t *testing.T) {
	hub := NewNotificationHub(nil, nil)
	first := &fakeConn{}
	second := &fakeConn{}

	hub.Register("u1", first)
	hub.Register("u1", second)
	assert.True(t, first.closed)

	// a stale connection cannot unregister its replacement
	hub.Unregister("u1", first)
	assert.True(t, hub.IsOnline("u1"))

	hub.Unregister("u1", second)
	assert.False(t, hub.IsOnline("u1"))
	assert.True(t, second.closed)
}

func TestNotificationHub_DropsBrokenConnection(t *testing.T) {
	hub := NewNotificationHub(nil, nil)
	conn := &fakeConn{err: errors.New("broken pipe")}
	hub.Register("u1", conn)

	err := hub.SendToUser("u1", Event{Type: EventConnected})
	assert.Error(t, err)
	assert.False(t, hub.IsOnline("u1"))

	assert.Error(t, hub.SendToUser("u1", Event{Type: EventConnected}))
}

func TestNotificationHub_Close(t *testing.T) {
	hub := NewNotificationHub(nil, nil)
	conn := &fakeConn{}
	hub.Register("u1", conn)

	hub.Close()
	assert.True(t, conn.closed)
	assert.False(t, hub.IsOnline("u1"))
}

func TestNotificationHub_StalledClientDoesNotBlockNotify(t *testing.T) {
	users := servicetest.NewUsers()
	require.NoError(t, users.Create(context.Background(), &models.User{Username: "u2"}))
	require.NoError(t, users.UpdatePushToken(context.Background(), "u2", strPtr("device-2")))
	pusher := &fakePusher{}
	hub := NewNotificationHub(users, pusher)
	hub.writeWait = 50 * time.Millisecond

	conn := &stalledConn{}
	hub.Register("u2", conn)

	done := make(chan struct{})
	go func() {
		hub.Notify(context.Background(), []string{"u2"}, Event{Type: EventFriendAdded, From: "u1"})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Notify blocked on a client that stopped reading")
	}

	hub.Wait()
	assert.False(t, hub.IsOnline("u2"))
	assert.True(t, conn.closed)
	require.Len(t, pusher.sent, 1)
	assert.Equal(t, "device-2", pusher.sent[0].token)
}
