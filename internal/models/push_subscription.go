package models

import "time"

// PushSubscription is one browser/device Web Push registration for a user.
// Uniqueness is by (user, endpoint); re-subscribing the same endpoint is a no-op.
type PushSubscription struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"index;uniqueIndex:idx_push_user_endpoint"`
	Endpoint  string    `json:"endpoint" gorm:"uniqueIndex:idx_push_user_endpoint"`
	P256dh    string    `json:"p256dh"` // Public key for payload encryption
	Auth      string    `json:"auth"`   // Auth secret
	CreatedAt time.Time `json:"created_at"`
}

// SubscriptionKeys mirrors the keys object a browser PushSubscription serializes.
type SubscriptionKeys struct {
	P256dh string `json:"p256dh" validate:"required"`
	Auth   string `json:"auth" validate:"required"`
}

// SubscriptionPayload is the browser-side subscription object as posted by the client.
type SubscriptionPayload struct {
	Endpoint string           `json:"endpoint" validate:"required,url"`
	Keys     SubscriptionKeys `json:"keys" validate:"required"`
}

type SubscribeRequest struct {
	Subscription SubscriptionPayload `json:"subscription" validate:"required"`
}

type UnsubscribeRequest struct {
	Endpoint string `json:"endpoint" validate:"required"`
}
