package repositories

import (
	"time"

	"github.com/rapidpost/backend/internal/models"
	"gorm.io/gorm"
)

// NotificationStats summarizes the notifications table for the cleanup job.
type NotificationStats struct {
	Total  int64 `json:"total"`
	Unread int64 `json:"unread"`
	Read   int64 `json:"read"`
}

// NotificationRepository defines the interface for notification operations
type NotificationRepository interface {
	CreateNotification(notification *models.Notification) error
	GetByRecipientID(recipientID uint, page, limit int) ([]models.Notification, int64, error)
	GetUnreadCount(recipientID uint) (int64, error)
	MarkAsRead(recipientID uint, notificationIDs []uint) error
	MarkAllAsRead(recipientID uint) error
	DeleteNotifications(recipientID uint, notificationIDs []uint) error
	DeleteReadOlderThan(cutoff time.Time) (int64, error)
	DeleteOlderThan(cutoff time.Time) (int64, error)
	GetStats() (*NotificationStats, error)
}

type postgresNotificationRepository struct {
	db *gorm.DB
}

func NewPostgresNotificationRepository(db *gorm.DB) NotificationRepository {
	return &postgresNotificationRepository{db: db}
}

func (r *postgresNotificationRepository) CreateNotification(notification *models.Notification) error {
	return r.db.Create(notification).Error
}

// GetByRecipientID returns one page of the recipient's notifications, newest
// first, plus the total row count. Pages are 1-indexed; a page past the end
// yields an empty slice, not an error.
func (r *postgresNotificationRepository) GetByRecipientID(recipientID uint, page, limit int) ([]models.Notification, int64, error) {
	var notifications []models.Notification
	var total int64

	if err := r.db.Model(&models.Notification{}).Where("recipient_id = ?", recipientID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	err := r.db.Where("recipient_id = ?", recipientID).
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&notifications).Error

	return notifications, total, err
}

func (r *postgresNotificationRepository) GetUnreadCount(recipientID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Notification{}).Where("recipient_id = ? AND is_read = false", recipientID).Count(&count).Error
	return count, err
}

// MarkAsRead flags the given notifications read. The recipient filter keeps a
// caller from flipping ids it does not own.
func (r *postgresNotificationRepository) MarkAsRead(recipientID uint, notificationIDs []uint) error {
	if len(notificationIDs) == 0 {
		return nil
	}
	return r.db.Model(&models.Notification{}).
		Where("recipient_id = ? AND id IN ?", recipientID, notificationIDs).
		Update("is_read", true).Error
}

func (r *postgresNotificationRepository) MarkAllAsRead(recipientID uint) error {
	return r.db.Model(&models.Notification{}).Where("recipient_id = ? AND is_read = false", recipientID).Update("is_read", true).Error
}

// DeleteNotifications hard-deletes the given ids, scoped to the recipient.
func (r *postgresNotificationRepository) DeleteNotifications(recipientID uint, notificationIDs []uint) error {
	if len(notificationIDs) == 0 {
		return nil
	}
	return r.db.Where("recipient_id = ? AND id IN ?", recipientID, notificationIDs).
		Delete(&models.Notification{}).Error
}

// DeleteReadOlderThan removes read notifications created before cutoff.
func (r *postgresNotificationRepository) DeleteReadOlderThan(cutoff time.Time) (int64, error) {
	res := r.db.Where("is_read = true AND created_at < ?", cutoff).Delete(&models.Notification{})
	return res.RowsAffected, res.Error
}

// DeleteOlderThan removes every notification created before cutoff, read or not.
func (r *postgresNotificationRepository) DeleteOlderThan(cutoff time.Time) (int64, error) {
	res := r.db.Where("created_at < ?", cutoff).Delete(&models.Notification{})
	return res.RowsAffected, res.Error
}

func (r *postgresNotificationRepository) GetStats() (*NotificationStats, error) {
	stats := &NotificationStats{}
	if err := r.db.Model(&models.Notification{}).Count(&stats.Total).Error; err != nil {
		return nil, err
	}
	if err := r.db.Model(&models.Notification{}).Where("is_read = false").Count(&stats.Unread).Error; err != nil {
		return nil, err
	}
	stats.Read = stats.Total - stats.Unread
	return stats, nil
}
