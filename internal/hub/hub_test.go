package hub

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/athenalobo/muditha-platform/internal/config"
)

func newTestHub() *Hub {
	h := NewHub(config.WebSocketConfig{
		PingInterval:   30 * time.Second,
		PongWait:       60 * time.Second,
		WriteWait:      10 * time.Second,
		MaxMessageSize: 4096,
	})
	go h.Run()
	return h
}

func newTestClient(h *Hub, id, userID string) *Client {
	return NewClient(id, userID, userID, h, nil, h.config)
}

func receive(t *testing.T, c *Client) []byte {
	t.Helper()
	select {
	case data := <-c.Send:
		return data
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for message")
		return nil
	}
}

func assertNothingQueued(t *testing.T, c *Client) {
	t.Helper()
	select {
	case data := <-c.Send:
		t.Fatalf("unexpected message queued: %s", data)
	case <-time.After(50 * time.Millisecond):
	}
}

// waitRegistered blocks until the hub's run loop has indexed the client,
// using a probe message that is drained afterwards.
func waitRegistered(t *testing.T, h *Hub, c *Client) {
	t.Helper()
	require.Eventually(t, func() bool {
		return h.SendToClient(c.ID, map[string]string{"type": "probe"})
	}, time.Second, 10*time.Millisecond)
	<-c.Send
}

func TestJoinRoomReplacesSubscription(t *testing.T) {
	h := newTestHub()
	c := newTestClient(h, "c1", "u1")

	previous := h.JoinRoom(c, "room-a")
	assert.Empty(t, previous)
	assert.Equal(t, "room-a", h.Room(c))
	assert.Equal(t, 1, h.RoomClientCount("room-a"))

	previous = h.JoinRoom(c, "room-b")
	assert.Equal(t, "room-a", previous)
	assert.Equal(t, "room-b", h.Room(c))
	assert.Equal(t, 0, h.RoomClientCount("room-a"))
	assert.Equal(t, 1, h.RoomClientCount("room-b"))
}

func TestLeaveRoomReturnsPreviousRoom(t *testing.T) {
	h := newTestHub()
	c := newTestClient(h, "c1", "u1")

	h.JoinRoom(c, "room-a")
	assert.Equal(t, "room-a", h.LeaveRoom(c))
	assert.Empty(t, h.Room(c))
	assert.Empty(t, h.LeaveRoom(c))
}

func TestBroadcastToRoomExcludesSender(t *testing.T) {
	h := newTestHub()
	sender := newTestClient(h, "c1", "u1")
	receiver := newTestClient(h, "c2", "u2")
	h.JoinRoom(sender, "room-a")
	h.JoinRoom(receiver, "room-a")

	err := h.BroadcastToRoom("room-a", map[string]string{"type": "test_event"}, sender.ID)
	require.NoError(t, err)

	data := receive(t, receiver)
	assert.Contains(t, string(data), "test_event")
	assertNothingQueued(t, sender)
}

func TestBroadcastToRoomReachesOnlySubscribers(t *testing.T) {
	h := newTestHub()
	inside := newTestClient(h, "c1", "u1")
	outside := newTestClient(h, "c2", "u2")
	h.JoinRoom(inside, "room-a")
	h.JoinRoom(outside, "room-b")

	require.NoError(t, h.BroadcastToRoom("room-a", map[string]string{"type": "test_event"}, ""))

	receive(t, inside)
	assertNothingQueued(t, outside)
}

func TestSendToClient(t *testing.T) {
	h := newTestHub()
	c := newTestClient(h, "c1", "u1")
	h.Register(c)
	waitRegistered(t, h, c)

	require.True(t, h.SendToClient("c1", map[string]string{"type": "direct"}))

	data := receive(t, c)
	assert.Contains(t, string(data), "direct")
}

func TestSendToClientUnknown(t *testing.T) {
	h := newTestHub()
	assert.False(t, h.SendToClient("missing", map[string]string{"type": "direct"}))
}

func TestSendToUserReachesAllConnections(t *testing.T) {
	h := newTestHub()
	first := newTestClient(h, "c1", "u1")
	second := newTestClient(h, "c2", "u1")
	h.Register(first)
	h.Register(second)
	waitRegistered(t, h, first)
	waitRegistered(t, h, second)

	require.True(t, h.SendToUser("u1", map[string]string{"type": "notify"}))

	receive(t, first)
	receive(t, second)
}

func TestBroadcastSnapshotsMembershipAtSend(t *testing.T) {
	h := newTestHub()
	early := newTestClient(h, "c1", "u1")
	late := newTestClient(h, "c2", "u2")
	h.JoinRoom(early, "room-a")

	require.NoError(t, h.BroadcastToRoom("room-a", map[string]string{"type": "first"}, ""))

	// A subscriber arriving after the send must not see it.
	h.JoinRoom(late, "room-a")
	assertNothingQueued(t, late)

	require.NoError(t, h.BroadcastToRoom("room-a", map[string]string{"type": "second"}, ""))

	assert.Contains(t, string(receive(t, early)), "first")
	assert.Contains(t, string(receive(t, early)), "second")
	assert.Contains(t, string(receive(t, late)), "second")
}

func TestSendMessageAfterClientDropped(t *testing.T) {
	h := newTestHub()
	c := newTestClient(h, "c1", "u1")
	h.Register(c)
	waitRegistered(t, h, c)

	h.Unregister(c)
	require.Eventually(t, func() bool {
		return !h.SendToClient("c1", map[string]string{"type": "ping"})
	}, time.Second, 10*time.Millisecond)

	require.NotPanics(t, func() {
		assert.NoError(t, c.SendMessage(map[string]string{"type": "late"}))
		assert.NoError(t, c.SendMessage(map[string]string{"type": "later"}))
	})
	assert.False(t, c.deliver([]byte("{}")))
}

func TestUnregisterDropsRoomSubscription(t *testing.T) {
	h := newTestHub()
	c := newTestClient(h, "c1", "u1")
	h.Register(c)
	waitRegistered(t, h, c)

	h.JoinRoom(c, "room-a")
	h.Unregister(c)

	assert.Eventually(t, func() bool {
		return h.RoomClientCount("room-a") == 0
	}, time.Second, 10*time.Millisecond)
	assert.False(t, h.SendToClient("c1", map[string]string{"type": "ping"}))
}
