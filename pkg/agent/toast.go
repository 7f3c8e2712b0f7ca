package agent

import (
	"sync"
	"time"
)

const toastDismissDelay = 5 * time.Second

// Toast is a transient in-app popup for a freshly delivered notification
type Toast struct {
	ID      uint   `json:"id"`
	Type    string `json:"type"`
	Message string `json:"message"`
}

// ToastQueue holds active toasts. Each toast self-dismisses after a fixed
// delay unless the user dismisses it first.
type ToastQueue struct {
	mu     sync.Mutex
	delay  time.Duration
	active []Toast
	timers map[uint]*time.Timer
}

// NewToastQueue creates a queue with the default 5 second auto-dismiss
func NewToastQueue() *ToastQueue {
	return &ToastQueue{
		delay:  toastDismissDelay,
		timers: make(map[uint]*time.Timer),
	}
}

// Push enqueues a toast and arms its auto-dismiss timer
func (q *ToastQueue) Push(t Toast) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.active = append(q.active, t)
	q.timers[t.ID] = time.AfterFunc(q.delay, func() {
		q.Dismiss(t.ID)
	})
}

// Dismiss removes a toast by id, stopping its timer if still armed
func (q *ToastQueue) Dismiss(id uint) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if timer, ok := q.timers[id]; ok {
		timer.Stop()
		delete(q.timers, id)
	}
	for i, t := range q.active {
		if t.ID == id {
			q.active = append(q.active[:i], q.active[i+1:]...)
			break
		}
	}
}

// Active returns a snapshot of the toasts currently shown
func (q *ToastQueue) Active() []Toast {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]Toast, len(q.active))
	copy(out, q.active)
	return out
}
