package services

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	webpush "github.com/SherClockHolmes/webpush-go"
	"github.com/rapidpost/backend/internal/models"
	"github.com/rapidpost/backend/internal/repositories"
)

// PushSender performs one Web Push delivery. Swappable in tests.
type PushSender func(payload []byte, sub *webpush.Subscription, opts *webpush.Options) (*http.Response, error)

// PushPayloadData rides inside the push payload so the service worker can
// deep-link the click.
type PushPayloadData struct {
	NotificationID uint   `json:"notificationId"`
	Type           string `json:"type"`
	RelatedBlog    string `json:"relatedBlog,omitempty"`
	URL            string `json:"url"`
}

// PushAction is one affordance button on the native notification.
type PushAction struct {
	Action string `json:"action"`
	Title  string `json:"title"`
	Icon   string `json:"icon,omitempty"`
}

// PushPayload is the JSON body handed to the push relay.
type PushPayload struct {
	Title   string          `json:"title"`
	Body    string          `json:"body"`
	Icon    string          `json:"icon"`
	Badge   string          `json:"badge"`
	Data    PushPayloadData `json:"data"`
	Actions []PushAction    `json:"actions"`
}

// PushService owns Web Push subscription lifecycle and delivery.
type PushService struct {
	subscriptions repositories.PushSubscriptionRepository
	publicKey     string
	privateKey    string
	subscriber    string
	ttl           int
	send          PushSender
}

// NewPushService creates a PushService signing with the given VAPID key pair.
func NewPushService(repo repositories.PushSubscriptionRepository, publicKey, privateKey, subscriber string) *PushService {
	return &PushService{
		subscriptions: repo,
		publicKey:     publicKey,
		privateKey:    privateKey,
		subscriber:    subscriber,
		ttl:           60 * 60 * 24,
		send:          webpush.SendNotification,
	}
}

// GetPublicKey returns the VAPID public key for client-side subscription.
func (s *PushService) GetPublicKey() string {
	return s.publicKey
}

// SaveSubscription registers one device subscription for a user. Set
// semantics: re-subscribing an endpoint already stored changes nothing.
func (s *PushService) SaveSubscription(userID uint, payload *models.SubscriptionPayload) error {
	sub := &models.PushSubscription{
		UserID:   userID,
		Endpoint: payload.Endpoint,
		P256dh:   payload.Keys.P256dh,
		Auth:     payload.Keys.Auth,
	}
	if err := s.subscriptions.SaveSubscription(sub); err != nil {
		return err
	}
	log.Printf("Push subscription saved for user %d", userID)
	return nil
}

// RemoveSubscription drops a device subscription by endpoint. Removing an
// endpoint that was never stored is a no-op.
func (s *PushService) RemoveSubscription(userID uint, endpoint string) error {
	if err := s.subscriptions.RemoveSubscription(userID, endpoint); err != nil {
		return err
	}
	log.Printf("Push subscription removed for user %d", userID)
	return nil
}

// SendPushNotification fans the notification out to every stored device
// subscription concurrently, at most one attempt per device. A failure on one
// endpoint never aborts the others; an endpoint the relay reports gone
// (404/410) is pruned as a side effect.
func (s *PushService) SendPushNotification(userID uint, notification *models.Notification) {
	subs, err := s.subscriptions.GetByUserID(userID)
	if err != nil {
		log.Printf("Error fetching push subscriptions for user %d: %v", userID, err)
		return
	}
	if len(subs) == 0 {
		log.Printf("No push subscriptions found for user %d", userID)
		return
	}

	payload, err := json.Marshal(s.buildPayload(notification))
	if err != nil {
		log.Printf("Error encoding push payload: %v", err)
		return
	}

	var wg sync.WaitGroup
	for _, sub := range subs {
		wg.Add(1)
		go func(sub models.PushSubscription) {
			defer wg.Done()
			s.sendToSubscription(userID, sub, payload)
		}(sub)
	}
	wg.Wait()
}

func (s *PushService) sendToSubscription(userID uint, sub models.PushSubscription, payload []byte) {
	resp, err := s.send(payload, &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256dh,
			Auth:   sub.Auth,
		},
	}, &webpush.Options{
		Subscriber:      s.subscriber,
		VAPIDPublicKey:  s.publicKey,
		VAPIDPrivateKey: s.privateKey,
		TTL:             s.ttl,
	})
	if err != nil {
		log.Printf("Error sending push notification: %v", err)
		return
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusGone || resp.StatusCode == http.StatusNotFound:
		// Subscription expired on the relay side; prune it.
		log.Printf("Removing stale push subscription (status %d)", resp.StatusCode)
		if err := s.RemoveSubscription(userID, sub.Endpoint); err != nil {
			log.Printf("Error removing stale subscription: %v", err)
		}
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		log.Println("Push notification sent successfully")
	default:
		log.Printf("Unexpected push status %d for user %d", resp.StatusCode, userID)
	}
}

// SendTestNotification pushes a synthetic notification through the transport
// only; nothing is persisted.
func (s *PushService) SendTestNotification(userID uint) {
	s.SendPushNotification(userID, &models.Notification{
		Type:    models.NotificationTypeLike,
		Message: "This is a test push notification!",
	})
}

func (s *PushService) buildPayload(notification *models.Notification) PushPayload {
	return PushPayload{
		Title: NotificationTitle(notification.Type),
		Body:  notification.Message,
		Icon:  "/favicon.ico",
		Badge: "/favicon.ico",
		Data: PushPayloadData{
			NotificationID: notification.ID,
			Type:           notification.Type,
			RelatedBlog:    notification.RelatedBlog,
			URL:            NotificationURL(notification),
		},
		Actions: []PushAction{
			{Action: "view", Title: "View", Icon: "/favicon.ico"},
			{Action: "dismiss", Title: "Dismiss"},
		},
	}
}

// NotificationTitle maps a notification type to the native notification title.
func NotificationTitle(notificationType string) string {
	switch notificationType {
	case models.NotificationTypeLike:
		return "New Like"
	case models.NotificationTypeComment:
		return "New Comment"
	case models.NotificationTypeFollow:
		return "New Follower"
	case models.NotificationTypeNewPost:
		return "New Post"
	}
	return "New Notification"
}

// NotificationURL derives the deep-link target for a notification.
func NotificationURL(notification *models.Notification) string {
	if notification.RelatedBlog != "" {
		return "/blogs/" + notification.RelatedBlog
	}
	return "/notifications"
}
