package agent

import "time"

const (
	promptDelay     = 3 * time.Second
	dismissalWindow = 24 * time.Hour
)

// PromptStore persists the push-permission prompt dismissal timestamp across
// sessions, like localStorage in a browser.
type PromptStore interface {
	DismissedAt() (time.Time, bool)
	SetDismissedAt(time.Time)
}

// PromptScheduler decides when to show the push-permission prompt. The prompt
// is delayed after load so it does not compete with initial rendering, and a
// dismissal silences it for 24 hours.
type PromptScheduler struct {
	store PromptStore
	now   func() time.Time
}

// NewPromptScheduler creates a scheduler backed by the given store
func NewPromptScheduler(store PromptStore) *PromptScheduler {
	return &PromptScheduler{store: store, now: time.Now}
}

// ShouldPrompt reports whether the prompt may be shown. subscribed is whether
// a device subscription already exists, supported whether the push capability
// is available at all.
func (p *PromptScheduler) ShouldPrompt(supported, subscribed bool) bool {
	if !supported || subscribed {
		return false
	}
	dismissed, ok := p.store.DismissedAt()
	if !ok {
		return true
	}
	return p.now().Sub(dismissed) >= dismissalWindow
}

// Delay returns how long to wait after load before showing the prompt
func (p *PromptScheduler) Delay() time.Duration {
	return promptDelay
}

// Dismiss records a dismissal, silencing the prompt for the next 24 hours.
// A denied permission request is recorded the same way.
func (p *PromptScheduler) Dismiss() {
	p.store.SetDismissedAt(p.now())
}
