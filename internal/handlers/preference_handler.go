package handlers

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rapidpost/backend/internal/models"
	"github.com/rapidpost/backend/internal/repositories"
)

// PreferenceHandler handles notification preference HTTP requests
type PreferenceHandler struct {
	preferenceRepository repositories.PreferenceRepository
}

// NewPreferenceHandler creates a new PreferenceHandler
func NewPreferenceHandler(prefRepo repositories.PreferenceRepository) *PreferenceHandler {
	return &PreferenceHandler{preferenceRepository: prefRepo}
}

// RegisterPreferenceRoutes registers preference routes
func (h *PreferenceHandler) RegisterPreferenceRoutes(g *echo.Group) {
	g.GET("/notifications/preferences", h.GetPreferences)
	g.POST("/notifications/preferences", h.UpdatePreferences)
}

var validPreferenceKeys = map[string]bool{
	"likes":    true,
	"comments": true,
	"follows":  true,
	"newPosts": true,
}

// GetPreferences returns the user's notification toggles, defaulting to all
// enabled when none are stored
func (h *PreferenceHandler) GetPreferences(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	prefs, err := h.preferenceRepository.GetPreferences(currentUserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to get preferences")
	}
	if prefs == nil {
		prefs = &models.NotificationPreferences{
			UserID:   currentUserID,
			Likes:    true,
			Comments: true,
			Follows:  true,
			NewPosts: true,
		}
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "preferences": prefs})
}

// UpdatePreferences stores the four delivery toggles. Unknown keys are
// rejected before any write happens.
func (h *PreferenceHandler) UpdatePreferences(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req models.UpdatePreferencesRequest
	if err := c.Bind(&req); err != nil || req.Preferences == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid preferences data")
	}

	var invalidKeys []string
	for key := range req.Preferences {
		if !validPreferenceKeys[key] {
			invalidKeys = append(invalidKeys, key)
		}
	}
	if len(invalidKeys) > 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid preference keys: "+strings.Join(invalidKeys, ", "))
	}

	// A toggle is disabled only when explicitly false; absent keys stay on.
	prefs := &models.NotificationPreferences{
		UserID:   currentUserID,
		Likes:    enabled(req.Preferences, "likes"),
		Comments: enabled(req.Preferences, "comments"),
		Follows:  enabled(req.Preferences, "follows"),
		NewPosts: enabled(req.Preferences, "newPosts"),
	}

	if err := h.preferenceRepository.UpsertPreferences(prefs); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update preferences")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success":     true,
		"message":     "Preferences updated successfully",
		"preferences": prefs,
	})
}

func enabled(prefs map[string]bool, key string) bool {
	value, ok := prefs[key]
	if !ok {
		return true
	}
	return value
}
