package models

// NotificationPreferences holds the per-user delivery toggles. A user without a
// row receives every notification type (fail-open default for new/legacy users).
// The toggle columns carry no database default on purpose: a default tag makes
// GORM omit explicit false values from the INSERT, silently re-enabling a
// toggle the user just turned off. The upsert writes all four columns instead.
type NotificationPreferences struct {
	UserID   uint `json:"-" gorm:"primaryKey"`
	Likes    bool `json:"likes"`
	Comments bool `json:"comments"`
	Follows  bool `json:"follows"`
	NewPosts bool `json:"newPosts"`
}

// PreferenceKeyForType maps a notification type to its preference toggle name.
// Unknown types map to "" and are treated as enabled.
func PreferenceKeyForType(notificationType string) string {
	switch notificationType {
	case NotificationTypeLike:
		return "likes"
	case NotificationTypeComment:
		return "comments"
	case NotificationTypeFollow:
		return "follows"
	case NotificationTypeNewPost:
		return "newPosts"
	}
	return ""
}

// Enabled reports whether the toggle named by key is on. Only an explicit
// false suppresses; unknown keys stay enabled.
func (p *NotificationPreferences) Enabled(key string) bool {
	switch key {
	case "likes":
		return p.Likes
	case "comments":
		return p.Comments
	case "follows":
		return p.Follows
	case "newPosts":
		return p.NewPosts
	}
	return true
}

type UpdatePreferencesRequest struct {
	Preferences map[string]bool `json:"preferences" validate:"required"`
}
