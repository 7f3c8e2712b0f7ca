package models

import "time"

// Notification types form a closed set; anything else is rejected at creation.
const (
	NotificationTypeLike    = "like"
	NotificationTypeComment = "comment"
	NotificationTypeFollow  = "follow"
	NotificationTypeNewPost = "new_post"
)

// ValidNotificationType reports whether t belongs to the known type set.
func ValidNotificationType(t string) bool {
	switch t {
	case NotificationTypeLike, NotificationTypeComment, NotificationTypeFollow, NotificationTypeNewPost:
		return true
	}
	return false
}

// Notification represents a stored user notification (PostgreSQL).
// Immutable after creation except IsRead.
type Notification struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	RecipientID    uint      `json:"recipient_id" gorm:"index"`
	SenderID       uint      `json:"sender_id" gorm:"index"`
	Type           string    `json:"type" gorm:"size:30"`
	Message        string    `json:"message"`
	RelatedBlog    string    `json:"related_blog,omitempty"`    // Mongo blog ID (hex), optional
	RelatedComment string    `json:"related_comment,omitempty"` // Mongo review ID (hex), optional
	IsRead         bool      `json:"is_read" gorm:"default:false;index"`
	CreatedAt      time.Time `json:"created_at" gorm:"index"`
}

// EnrichedNotification includes sender info and the related blog title so the
// client can render it without a second lookup.
type EnrichedNotification struct {
	Notification
	Sender           UserCompact `json:"sender"`
	RelatedBlogTitle string      `json:"related_blog_title,omitempty"`
}

// CreateNotificationInput is what interaction controllers hand to the factory.
type CreateNotificationInput struct {
	Recipient      uint
	Sender         uint
	Type           string
	Message        string
	RelatedBlog    string
	RelatedComment string
}

type MarkReadRequest struct {
	NotificationIDs []uint `json:"notificationIds"`
}
