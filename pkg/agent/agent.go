package agent

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rapidpost/backend/internal/realtime"
)

const (
	defaultReconnectAttempts = 5
	defaultReconnectDelay    = time.Second
	dedupCapacity            = 50
)

// ErrNotConnected is returned when a send is attempted without a live socket
var ErrNotConnected = errors.New("socket not connected")

// Notification is the wire shape of a delivered notification, reduced to the
// fields the agent acts on. Tags match the server's notification model.
type Notification struct {
	ID          uint   `json:"id"`
	Type        string `json:"type"`
	Message     string `json:"message"`
	RelatedBlog string `json:"related_blog,omitempty"`
	IsRead      bool   `json:"is_read"`
}

// Options configures an Agent
type Options struct {
	// URL is the websocket endpoint, e.g. ws://host/ws
	URL string
	// Token is the signed-in user's JWT. It is re-sent after every
	// reconnect; the server keeps no session across connections.
	Token string
	// ReconnectAttempts bounds reconnection tries before giving up
	// silently. Defaults to 5.
	ReconnectAttempts int
	// ReconnectDelay is the fixed wait between attempts. Defaults to 1s.
	ReconnectDelay time.Duration
	// FetchUnreadCount re-fetches the badge value when a read-state frame
	// carries no count. Optional.
	FetchUnreadCount func(ctx context.Context) (int64, error)
}

// Agent owns one websocket connection and the session-scoped notification
// state behind it: duplicate suppression, the optimistic unread badge and the
// toast queue. One agent corresponds to one browser tab.
type Agent struct {
	opts   Options
	dedup  *DedupRing
	toasts *ToastQueue

	mu     sync.Mutex
	conn   *websocket.Conn
	unread int64
}

// New creates an Agent; call Run to connect
func New(opts Options) *Agent {
	if opts.ReconnectAttempts <= 0 {
		opts.ReconnectAttempts = defaultReconnectAttempts
	}
	if opts.ReconnectDelay <= 0 {
		opts.ReconnectDelay = defaultReconnectDelay
	}
	return &Agent{
		opts:   opts,
		dedup:  NewDedupRing(dedupCapacity),
		toasts: NewToastQueue(),
	}
}

// UnreadCount returns the current badge value
func (a *Agent) UnreadCount() int64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.unread
}

// SeedUnreadCount sets the badge from the unread-count endpoint on load
func (a *Agent) SeedUnreadCount(n int64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.unread = n
}

// Toasts exposes the toast queue for the presentation layer
func (a *Agent) Toasts() *ToastQueue {
	return a.toasts
}

// Run connects and processes frames until ctx is cancelled or the bounded
// reconnection budget is exhausted. After exhaustion it returns nil; the tab
// is then in a push-only delivery state until reloaded.
func (a *Agent) Run(ctx context.Context) error {
	attempts := 0
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		conn, _, err := websocket.DefaultDialer.DialContext(ctx, a.opts.URL, nil)
		if err != nil {
			attempts++
			if attempts >= a.opts.ReconnectAttempts {
				log.Printf("Socket reconnect budget exhausted after %d attempts, falling back to push-only delivery", attempts)
				return nil
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(a.opts.ReconnectDelay):
			}
			continue
		}
		attempts = 0
		a.setConn(conn)
		if err := a.authenticate(); err != nil {
			log.Printf("Socket authenticate failed: %v", err)
		}
		a.readLoop(ctx, conn)
		a.setConn(nil)
		conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

// JoinBlog subscribes this connection to a blog's comment room
func (a *Agent) JoinBlog(blogID string) error {
	return a.sendEvent("join_blog", map[string]string{"blogId": blogID})
}

// LeaveBlog leaves a blog's comment room
func (a *Agent) LeaveBlog(blogID string) error {
	return a.sendEvent("leave_blog", map[string]string{"blogId": blogID})
}

func (a *Agent) setConn(conn *websocket.Conn) {
	a.mu.Lock()
	a.conn = conn
	a.mu.Unlock()
}

// authenticate re-sends the identity claim. Mandatory after every reconnect.
func (a *Agent) authenticate() error {
	if a.opts.Token == "" {
		return nil
	}
	return a.sendEvent("authenticate", map[string]string{"token": a.opts.Token})
}

func (a *Agent) sendEvent(event string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}
	frame, err := json.Marshal(realtime.Event{Event: event, Data: payload})
	if err != nil {
		return err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.conn == nil {
		return ErrNotConnected
	}
	return a.conn.WriteMessage(websocket.TextMessage, frame)
}

func (a *Agent) readLoop(ctx context.Context, conn *websocket.Conn) {
	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var event realtime.Event
		if err := json.Unmarshal(message, &event); err != nil {
			log.Printf("Dropping malformed socket frame: %v", err)
			continue
		}
		a.handleEvent(ctx, event)
	}
}

func (a *Agent) handleEvent(ctx context.Context, event realtime.Event) {
	switch event.Event {
	case "newNotification":
		var n Notification
		if err := json.Unmarshal(event.Data, &n); err != nil {
			log.Printf("Dropping malformed notification: %v", err)
			return
		}
		a.HandleNotification(n)
	case "notifications_read":
		var payload struct {
			Count *int64 `json:"count"`
		}
		if err := json.Unmarshal(event.Data, &payload); err != nil {
			return
		}
		a.HandleReadState(ctx, payload.Count)
	case "welcome", "room_joined":
		// connection lifecycle chatter, nothing to reconcile
	}
}

// HandleNotification applies a delivered notification to session state. A
// duplicate id is discarded silently; a fresh one bumps the badge by one and
// enqueues a toast.
func (a *Agent) HandleNotification(n Notification) {
	a.mu.Lock()
	if a.dedup.Observe(n.ID) {
		a.mu.Unlock()
		return
	}
	a.unread++
	a.mu.Unlock()
	a.toasts.Push(Toast{ID: n.ID, Type: n.Type, Message: n.Message})
}

// HandleReadState reconciles the badge after a server-side read-state change.
// The server count is authoritative when present; otherwise the badge is
// re-fetched from the unread-count endpoint.
func (a *Agent) HandleReadState(ctx context.Context, count *int64) {
	if count != nil {
		a.mu.Lock()
		a.unread = *count
		a.mu.Unlock()
		return
	}
	if a.opts.FetchUnreadCount == nil {
		return
	}
	fresh, err := a.opts.FetchUnreadCount(ctx)
	if err != nil {
		log.Printf("Unread count re-fetch failed: %v", err)
		return
	}
	a.mu.Lock()
	a.unread = fresh
	a.mu.Unlock()
}
