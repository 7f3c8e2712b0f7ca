package repositories

import (
	"errors"

	"github.com/rapidpost/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PreferenceRepository manages per-user notification toggles.
type PreferenceRepository interface {
	// GetPreferences returns (nil, nil) when the user has never stored
	// preferences; the gate treats that as all-enabled.
	GetPreferences(userID uint) (*models.NotificationPreferences, error)
	UpsertPreferences(prefs *models.NotificationPreferences) error
}

type postgresPreferenceRepository struct {
	db *gorm.DB
}

func NewPostgresPreferenceRepository(db *gorm.DB) PreferenceRepository {
	return &postgresPreferenceRepository{db: db}
}

func (r *postgresPreferenceRepository) GetPreferences(userID uint) (*models.NotificationPreferences, error) {
	var prefs models.NotificationPreferences
	err := r.db.Where("user_id = ?", userID).First(&prefs).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &prefs, nil
}

// UpsertPreferences writes all four toggle columns explicitly so a false
// value is inserted as false rather than falling back to a column default.
func (r *postgresPreferenceRepository) UpsertPreferences(prefs *models.NotificationPreferences) error {
	return r.db.Select("user_id", "likes", "comments", "follows", "new_posts").
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"likes", "comments", "follows", "new_posts"}),
		}).Create(prefs).Error
}
