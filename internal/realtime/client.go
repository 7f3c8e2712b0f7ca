package realtime

import (
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBufferSize = 64
)

// Client is one live websocket connection. userID stays zero until the
// connection presents a valid credential via the authenticate event.
type Client struct {
	id     string
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	userID uint
}

func newClient(hub *Hub, conn *websocket.Conn) *Client {
	return &Client{
		id:   uuid.NewString(),
		hub:  hub,
		conn: conn,
		send: make(chan []byte, sendBufferSize),
	}
}

// trySend queues a message without blocking the emitter. A connection whose
// buffer is full is considered dead and gets closed by its own write pump.
func (c *Client) trySend(msg []byte) {
	select {
	case c.send <- msg:
	default:
		log.Printf("Dropping message for slow connection %s", c.id)
		c.conn.Close()
	}
}

func (c *Client) sendEvent(event string, data interface{}) {
	msg, err := encodeEvent(event, data)
	if err != nil {
		log.Printf("Error encoding %s event: %v", event, err)
		return
	}
	c.trySend(msg)
}

type authenticatePayload struct {
	Token string `json:"token"`
}

type blogRoomPayload struct {
	BlogID string `json:"blogId"`
}

// readPump consumes inbound events until the connection drops, then lets the
// hub tear down all room memberships.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("Socket error on %s: %v", c.id, err)
			}
			return
		}

		var evt Event
		if err := json.Unmarshal(raw, &evt); err != nil {
			log.Printf("Invalid frame from %s: %v", c.id, err)
			continue
		}
		c.handleEvent(&evt)
	}
}

func (c *Client) handleEvent(evt *Event) {
	switch evt.Event {
	case "authenticate":
		var payload authenticatePayload
		if err := json.Unmarshal(evt.Data, &payload); err != nil || payload.Token == "" {
			log.Printf("Invalid authenticate payload from %s", c.id)
			return
		}
		userID, err := c.hub.verify(payload.Token)
		if err != nil {
			log.Printf("Socket authentication failed for %s: %v", c.id, err)
			return
		}
		c.userID = userID
		room := UserRoom(userID)
		c.hub.join(c, room)
		log.Printf("User %d joined their notification room", userID)
		c.sendEvent("room_joined", room)

	case "join_blog":
		var payload blogRoomPayload
		if err := json.Unmarshal(evt.Data, &payload); err != nil || payload.BlogID == "" {
			return
		}
		c.hub.join(c, BlogRoom(payload.BlogID))
		log.Printf("Socket %s joined room %s", c.id, BlogRoom(payload.BlogID))

	case "leave_blog":
		var payload blogRoomPayload
		if err := json.Unmarshal(evt.Data, &payload); err != nil || payload.BlogID == "" {
			return
		}
		c.hub.leave(c, BlogRoom(payload.BlogID))
		log.Printf("Socket %s left room %s", c.id, BlogRoom(payload.BlogID))

	default:
		log.Printf("Unknown event %q from %s", evt.Event, c.id)
	}
}

// writePump drains the send queue and keeps the connection alive with pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
