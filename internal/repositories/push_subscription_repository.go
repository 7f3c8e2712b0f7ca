package repositories

import (
	"github.com/rapidpost/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PushSubscriptionRepository manages per-device Web Push registrations.
type PushSubscriptionRepository interface {
	// SaveSubscription adds with set semantics: re-subscribing an endpoint
	// the user already has is a no-op, never a duplicate row.
	SaveSubscription(sub *models.PushSubscription) error
	// RemoveSubscription deletes by endpoint; a missing endpoint is a no-op.
	RemoveSubscription(userID uint, endpoint string) error
	GetByUserID(userID uint) ([]models.PushSubscription, error)
}

type postgresPushSubscriptionRepository struct {
	db *gorm.DB
}

func NewPostgresPushSubscriptionRepository(db *gorm.DB) PushSubscriptionRepository {
	return &postgresPushSubscriptionRepository{db: db}
}

func (r *postgresPushSubscriptionRepository) SaveSubscription(sub *models.PushSubscription) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "endpoint"}},
		DoNothing: true,
	}).Create(sub).Error
}

func (r *postgresPushSubscriptionRepository) RemoveSubscription(userID uint, endpoint string) error {
	return r.db.Where("user_id = ? AND endpoint = ?", userID, endpoint).
		Delete(&models.PushSubscription{}).Error
}

func (r *postgresPushSubscriptionRepository) GetByUserID(userID uint) ([]models.PushSubscription, error) {
	var subs []models.PushSubscription
	if err := r.db.Where("user_id = ?", userID).Find(&subs).Error; err != nil {
		return nil, err
	}
	return subs, nil
}
