package realtime

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHub() *Hub {
	return NewHub(func(token string) (uint, error) {
		if token == "valid" {
			return 42, nil
		}
		return 0, errors.New("bad token")
	})
}

func drainEvent(t *testing.T, c *Client) Event {
	t.Helper()
	select {
	case raw := <-c.send:
		var evt Event
		require.NoError(t, json.Unmarshal(raw, &evt))
		return evt
	default:
		t.Fatal("expected a queued frame")
		return Event{}
	}
}

func TestNilHubReportsNotReady(t *testing.T) {
	var h *Hub
	assert.ErrorIs(t, h.EmitToUser(1, "newNotification", nil), ErrHubNotReady)
	assert.ErrorIs(t, h.EmitToBlog("abc", "newComment", nil), ErrHubNotReady)
	assert.ErrorIs(t, h.Broadcast("newBlog", nil), ErrHubNotReady)
	assert.Equal(t, 0, h.RoomSize(UserRoom(1)))
}

func TestEmitToUserTargetsOnlyTheirRoom(t *testing.T) {
	h := newTestHub()
	recipient := newClient(h, nil)
	bystander := newClient(h, nil)
	h.register(recipient)
	h.register(bystander)
	h.join(recipient, UserRoom(1))
	h.join(bystander, UserRoom(2))

	require.NoError(t, h.EmitToUser(1, "newNotification", map[string]uint{"id": 7}))

	evt := drainEvent(t, recipient)
	assert.Equal(t, "newNotification", evt.Event)
	assert.JSONEq(t, `{"id":7}`, string(evt.Data))
	assert.Empty(t, bystander.send, "other users' rooms stay quiet")
}

func TestEmitToEmptyRoomIsSilent(t *testing.T) {
	h := newTestHub()
	require.NoError(t, h.EmitToUser(9, "newNotification", nil))
}

func TestBroadcastReachesAllClients(t *testing.T) {
	h := newTestHub()
	a := newClient(h, nil)
	b := newClient(h, nil)
	h.register(a)
	h.register(b)

	require.NoError(t, h.Broadcast("newBlog", map[string]string{"title": "Go"}))

	assert.Equal(t, "newBlog", drainEvent(t, a).Event)
	assert.Equal(t, "newBlog", drainEvent(t, b).Event)
}

func TestAuthenticateJoinsUserRoom(t *testing.T) {
	h := newTestHub()
	c := newClient(h, nil)
	h.register(c)

	data, _ := json.Marshal(map[string]string{"token": "valid"})
	c.handleEvent(&Event{Event: "authenticate", Data: data})

	assert.Equal(t, uint(42), c.userID)
	assert.Equal(t, 1, h.RoomSize(UserRoom(42)))
	evt := drainEvent(t, c)
	assert.Equal(t, "room_joined", evt.Event)
	assert.JSONEq(t, `"user_42"`, string(evt.Data))
}

func TestAuthenticateRejectsBadToken(t *testing.T) {
	h := newTestHub()
	c := newClient(h, nil)
	h.register(c)

	data, _ := json.Marshal(map[string]string{"token": "forged"})
	c.handleEvent(&Event{Event: "authenticate", Data: data})

	assert.Equal(t, uint(0), c.userID)
	assert.Equal(t, 0, h.RoomSize(UserRoom(42)))
	assert.Empty(t, c.send)
}

func TestBlogRoomJoinLeave(t *testing.T) {
	h := newTestHub()
	c := newClient(h, nil)
	h.register(c)

	data, _ := json.Marshal(map[string]string{"blogId": "abc123"})
	c.handleEvent(&Event{Event: "join_blog", Data: data})
	assert.Equal(t, 1, h.RoomSize(BlogRoom("abc123")))

	c.handleEvent(&Event{Event: "leave_blog", Data: data})
	assert.Equal(t, 0, h.RoomSize(BlogRoom("abc123")))
}

func TestUnregisterDropsAllRooms(t *testing.T) {
	h := newTestHub()
	c := newClient(h, nil)
	h.register(c)
	h.join(c, UserRoom(42))
	h.join(c, BlogRoom("abc123"))

	h.unregister(c)

	assert.Equal(t, 0, h.RoomSize(UserRoom(42)))
	assert.Equal(t, 0, h.RoomSize(BlogRoom("abc123")))
	_, open := <-c.send
	assert.False(t, open, "send channel is closed on unregister")
	require.NoError(t, h.EmitToUser(42, "newNotification", nil))
}
