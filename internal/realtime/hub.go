package realtime

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
)

// ErrHubNotReady is returned when an emit is attempted before the hub exists.
// Callers degrade to push-only delivery instead of failing the request.
var ErrHubNotReady = errors.New("realtime hub not ready")

// UserRoom names the room holding every live connection of one user.
func UserRoom(userID uint) string {
	return fmt.Sprintf("user_%d", userID)
}

// BlogRoom names the room of connections currently viewing a blog's comments.
func BlogRoom(blogID string) string {
	return fmt.Sprintf("blog_%s", blogID)
}

// Event is the wire frame for both directions: {"event": ..., "data": ...}.
type Event struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// TokenVerifier resolves an identity claim to a user id. The hub never trusts
// a bare client-supplied id; the claim must carry the same credential the HTTP
// layer accepts.
type TokenVerifier func(token string) (uint, error)

// Hub tracks live connections and their room memberships. It is constructed
// once in main and handed by reference to every collaborator; it holds no
// durable state, so a restart drops all rooms and clients re-authenticate.
type Hub struct {
	verify TokenVerifier

	mu      sync.RWMutex
	clients map[*Client]struct{}
	rooms   map[string]map[*Client]struct{}
}

// NewHub creates a Hub that authenticates connections with verify.
func NewHub(verify TokenVerifier) *Hub {
	return &Hub{
		verify:  verify,
		clients: make(map[*Client]struct{}),
		rooms:   make(map[string]map[*Client]struct{}),
	}
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	log.Printf("User connected: %s", c.id)
}

// unregister drops the client from every room it joined.
func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	delete(h.clients, c)
	for room, members := range h.rooms {
		if _, ok := members[c]; ok {
			delete(members, c)
			if len(members) == 0 {
				delete(h.rooms, room)
			}
		}
	}
	h.mu.Unlock()
	close(c.send)
	if c.userID != 0 {
		log.Printf("User %d left their notification room", c.userID)
	}
	log.Printf("User disconnected: %s", c.id)
}

func (h *Hub) join(c *Client, room string) {
	h.mu.Lock()
	members, ok := h.rooms[room]
	if !ok {
		members = make(map[*Client]struct{})
		h.rooms[room] = members
	}
	members[c] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) leave(c *Client, room string) {
	h.mu.Lock()
	if members, ok := h.rooms[room]; ok {
		delete(members, c)
		if len(members) == 0 {
			delete(h.rooms, room)
		}
	}
	h.mu.Unlock()
}

// RoomSize returns the number of live connections in a room.
func (h *Hub) RoomSize(room string) int {
	if h == nil {
		return 0
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

// EmitToUser sends an event to every connection in the user's room only,
// never a broadcast. An empty room is a silent no-op; a nil hub reports
// ErrHubNotReady so the caller can fall back to the push channel.
func (h *Hub) EmitToUser(userID uint, event string, data interface{}) error {
	if h == nil {
		return ErrHubNotReady
	}
	return h.emitToRoom(UserRoom(userID), event, data)
}

// EmitToBlog sends an event to the connections viewing one blog.
func (h *Hub) EmitToBlog(blogID string, event string, data interface{}) error {
	if h == nil {
		return ErrHubNotReady
	}
	return h.emitToRoom(BlogRoom(blogID), event, data)
}

// Broadcast sends an event to every live connection.
func (h *Hub) Broadcast(event string, data interface{}) error {
	if h == nil {
		return ErrHubNotReady
	}
	msg, err := encodeEvent(event, data)
	if err != nil {
		return err
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		c.trySend(msg)
	}
	return nil
}

func (h *Hub) emitToRoom(room, event string, data interface{}) error {
	msg, err := encodeEvent(event, data)
	if err != nil {
		return err
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.rooms[room] {
		c.trySend(msg)
	}
	return nil
}

func encodeEvent(event string, data interface{}) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encode %s event: %w", event, err)
	}
	return json.Marshal(Event{Event: event, Data: raw})
}
