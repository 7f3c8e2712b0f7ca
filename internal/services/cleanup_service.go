package services

import (
	"context"
	"log"
	"time"

	"github.com/rapidpost/backend/internal/repositories"
)

const (
	readRetention   = 30 * 24 * time.Hour
	unreadRetention = 90 * 24 * time.Hour
)

// NotificationCleanupService deletes aged notifications on a schedule.
type NotificationCleanupService struct {
	notifications repositories.NotificationRepository
}

func NewNotificationCleanupService(repo repositories.NotificationRepository) *NotificationCleanupService {
	return &NotificationCleanupService{notifications: repo}
}

// CleanupOldNotifications removes read notifications older than 30 days.
func (s *NotificationCleanupService) CleanupOldNotifications() (int64, error) {
	count, err := s.notifications.DeleteReadOlderThan(time.Now().Add(-readRetention))
	if err != nil {
		return 0, err
	}
	log.Printf("Cleaned up %d old read notifications", count)
	return count, nil
}

// CleanupVeryOldNotifications removes all notifications older than 90 days.
func (s *NotificationCleanupService) CleanupVeryOldNotifications() (int64, error) {
	count, err := s.notifications.DeleteOlderThan(time.Now().Add(-unreadRetention))
	if err != nil {
		return 0, err
	}
	log.Printf("Cleaned up %d very old notifications", count)
	return count, nil
}

// RunCleanup executes one full cleanup pass and logs remaining totals.
func (s *NotificationCleanupService) RunCleanup() error {
	log.Println("Starting notification cleanup job...")

	oldCount, err := s.CleanupOldNotifications()
	if err != nil {
		return err
	}
	veryOldCount, err := s.CleanupVeryOldNotifications()
	if err != nil {
		return err
	}

	stats, err := s.notifications.GetStats()
	if err != nil {
		return err
	}
	log.Printf("Cleanup job completed: removed=%d veryOldRemoved=%d remaining=%d unread=%d",
		oldCount, veryOldCount, stats.Total, stats.Unread)
	return nil
}

// Schedule runs the cleanup once per interval until ctx is cancelled.
func (s *NotificationCleanupService) Schedule(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.RunCleanup(); err != nil {
				log.Printf("Notification cleanup failed: %v", err)
			}
		}
	}
}
