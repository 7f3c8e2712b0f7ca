package services

import (
	"context"
	"errors"
	"log"
	"math"

	"github.com/rapidpost/backend/internal/models"
	"github.com/rapidpost/backend/internal/realtime"
	"github.com/rapidpost/backend/internal/repositories"
	"gorm.io/gorm"
)

// RealtimeEmitter is the slice of the hub the dispatcher needs. A hub that is
// not ready yet reports realtime.ErrHubNotReady and delivery degrades to push.
type RealtimeEmitter interface {
	EmitToUser(userID uint, event string, data interface{}) error
}

// PushDispatcher is the slice of the push service the dispatcher needs.
type PushDispatcher interface {
	SendPushNotification(userID uint, notification *models.Notification)
}

// NotificationPage is one page of enriched notifications plus paging meta.
type NotificationPage struct {
	Notifications []models.EnrichedNotification `json:"notifications"`
	CurrentPage   int                           `json:"currentPage"`
	TotalPages    int                           `json:"totalPages"`
	Total         int64                         `json:"total"`
}

// NotificationService creates, lists and delivers notifications.
type NotificationService struct {
	notifications repositories.NotificationRepository
	users         repositories.UserRepository
	preferences   repositories.PreferenceRepository
	blogs         repositories.BlogRepository
	push          PushDispatcher
	hub           RealtimeEmitter
}

// NewNotificationService wires the factory, store and dispatcher together.
// hub may wrap a not-yet-ready registry; delivery tolerates that.
func NewNotificationService(
	notifRepo repositories.NotificationRepository,
	userRepo repositories.UserRepository,
	prefRepo repositories.PreferenceRepository,
	blogRepo repositories.BlogRepository,
	push PushDispatcher,
	hub RealtimeEmitter,
) *NotificationService {
	return &NotificationService{
		notifications: notifRepo,
		users:         userRepo,
		preferences:   prefRepo,
		blogs:         blogRepo,
		push:          push,
		hub:           hub,
	}
}

// CheckUserPreferences reports whether the recipient wants this notification
// type. A user without stored preferences gets everything (fail-open); only a
// toggle explicitly set to false suppresses; unmapped types stay enabled.
func (s *NotificationService) CheckUserPreferences(prefs *models.NotificationPreferences, notificationType string) bool {
	if prefs == nil {
		return true
	}
	key := models.PreferenceKeyForType(notificationType)
	if key == "" {
		return true
	}
	return prefs.Enabled(key)
}

// CreateNotification validates input, consults the preference gate and
// persists the record. Suppression (recipient missing or type disabled)
// returns (nil, nil), a normal outcome rather than an error. On success the sender's
// public fields are populated so the result renders without a second lookup.
func (s *NotificationService) CreateNotification(input *models.CreateNotificationInput) (*models.EnrichedNotification, error) {
	if input.Recipient == 0 || input.Sender == 0 || input.Message == "" {
		return nil, errors.New("recipient, sender and message are required")
	}
	if !models.ValidNotificationType(input.Type) {
		return nil, errors.New("unknown notification type: " + input.Type)
	}

	if _, err := s.users.GetUserByID(input.Recipient); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	prefs, err := s.preferences.GetPreferences(input.Recipient)
	if err != nil {
		return nil, err
	}
	if !s.CheckUserPreferences(prefs, input.Type) {
		return nil, nil
	}

	notification := &models.Notification{
		RecipientID:    input.Recipient,
		SenderID:       input.Sender,
		Type:           input.Type,
		Message:        input.Message,
		RelatedBlog:    input.RelatedBlog,
		RelatedComment: input.RelatedComment,
	}
	if err := s.notifications.CreateNotification(notification); err != nil {
		return nil, err
	}

	enriched := &models.EnrichedNotification{Notification: *notification}
	if sender, err := s.users.GetUserByID(input.Sender); err == nil {
		enriched.Sender = sender.ToCompact()
	}
	return enriched, nil
}

// SendRealTimeNotification delivers over both channels, socket first, push
// second. Best effort: a failure on either channel is logged and never
// reaches the caller, and one channel's failure does not stop the other.
func (s *NotificationService) SendRealTimeNotification(recipientID uint, notification *models.EnrichedNotification) {
	if notification == nil {
		return
	}

	if err := s.hub.EmitToUser(recipientID, "newNotification", notification); err != nil {
		if errors.Is(err, realtime.ErrHubNotReady) {
			log.Println("Socket hub not initialized yet, push-only delivery")
		} else {
			log.Printf("Socket emit failed for user %d: %v", recipientID, err)
		}
	} else {
		log.Printf("Emitting newNotification to room %s", realtime.UserRoom(recipientID))
	}

	s.push.SendPushNotification(recipientID, &notification.Notification)
}

// DeliverAsync runs delivery as a detached background task with its own error
// boundary, keeping a slow or failed notification path out of the primary
// request/response cycle.
func (s *NotificationService) DeliverAsync(recipientID uint, notification *models.EnrichedNotification) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("Recovered in notification delivery for user %d: %v", recipientID, r)
			}
		}()
		s.SendRealTimeNotification(recipientID, notification)
	}()
}

// GetUserNotifications returns one page, newest first, with sender and related
// blog title populated. Pages are 1-indexed; pages past the end come back empty.
func (s *NotificationService) GetUserNotifications(ctx context.Context, userID uint, page, limit int) (*NotificationPage, error) {
	notifications, total, err := s.notifications.GetByRecipientID(userID, page, limit)
	if err != nil {
		return nil, err
	}

	result := &NotificationPage{
		Notifications: s.enrichNotifications(ctx, notifications),
		CurrentPage:   page,
		TotalPages:    int(math.Ceil(float64(total) / float64(limit))),
		Total:         total,
	}
	return result, nil
}

func (s *NotificationService) enrichNotifications(ctx context.Context, notifications []models.Notification) []models.EnrichedNotification {
	enriched := make([]models.EnrichedNotification, len(notifications))
	userCache := make(map[uint]models.UserCompact)

	blogIDs := make([]string, 0, len(notifications))
	for _, n := range notifications {
		if n.RelatedBlog != "" {
			blogIDs = append(blogIDs, n.RelatedBlog)
		}
	}
	titles, err := s.blogs.GetTitlesByIDs(ctx, blogIDs)
	if err != nil {
		log.Printf("Error resolving blog titles: %v", err)
		titles = map[string]string{}
	}

	for i, n := range notifications {
		enriched[i] = models.EnrichedNotification{Notification: n}
		if sender, ok := userCache[n.SenderID]; ok {
			enriched[i].Sender = sender
		} else if user, err := s.users.GetUserByID(n.SenderID); err == nil {
			compact := user.ToCompact()
			userCache[n.SenderID] = compact
			enriched[i].Sender = compact
		}
		enriched[i].RelatedBlogTitle = titles[n.RelatedBlog]
	}
	return enriched
}

// MarkAsRead flags the given notifications read for this recipient.
func (s *NotificationService) MarkAsRead(userID uint, notificationIDs []uint) error {
	return s.notifications.MarkAsRead(userID, notificationIDs)
}

// MarkAllAsRead flags every unread notification of the recipient.
func (s *NotificationService) MarkAllAsRead(userID uint) error {
	return s.notifications.MarkAllAsRead(userID)
}

// DeleteNotifications hard-deletes the given notifications for this recipient.
func (s *NotificationService) DeleteNotifications(userID uint, notificationIDs []uint) error {
	return s.notifications.DeleteNotifications(userID, notificationIDs)
}

// GetUnreadCount issues a fresh count query; the badge value is never cached.
func (s *NotificationService) GetUnreadCount(userID uint) (int64, error) {
	return s.notifications.GetUnreadCount(userID)
}

// BroadcastReadState recomputes the unread count and pushes it to the user's
// room so every open tab converges on the server's value. readCount < 0 means
// "no explicit read count" and is omitted from the payload.
func (s *NotificationService) BroadcastReadState(userID uint, readCount int) {
	count, err := s.notifications.GetUnreadCount(userID)
	if err != nil {
		log.Printf("Error getting unread count for user %d: %v", userID, err)
		return
	}

	payload := map[string]interface{}{"count": count}
	if readCount >= 0 {
		payload["readCount"] = readCount
	}
	if err := s.hub.EmitToUser(userID, "notifications_read", payload); err != nil && !errors.Is(err, realtime.ErrHubNotReady) {
		log.Printf("Socket emit failed for user %d: %v", userID, err)
	}
}
