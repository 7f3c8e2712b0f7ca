package handlers

import (
	"log"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/rapidpost/backend/internal/models"
	"github.com/rapidpost/backend/internal/repositories"
	"github.com/rapidpost/backend/internal/services"
)

// FollowHandler handles follow/unfollow HTTP requests
type FollowHandler struct {
	followRepository    repositories.FollowRepository
	userRepository      repositories.UserRepository
	notificationService *services.NotificationService
}

// NewFollowHandler creates a new FollowHandler
func NewFollowHandler(followRepo repositories.FollowRepository, userRepo repositories.UserRepository, notificationService *services.NotificationService) *FollowHandler {
	return &FollowHandler{
		followRepository:    followRepo,
		userRepository:      userRepo,
		notificationService: notificationService,
	}
}

// RegisterFollowRoutes registers follow-related routes
func (h *FollowHandler) RegisterFollowRoutes(g *echo.Group) {
	g.POST("/users/:id/follow", h.FollowUser)
	g.DELETE("/users/:id/follow", h.UnfollowUser)
}

// FollowUser follows a user and notifies them
func (h *FollowHandler) FollowUser(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	targetID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID")
	}

	if currentUserID == uint(targetID) {
		return echo.NewHTTPError(http.StatusBadRequest, "You cannot follow yourself")
	}

	if _, err := h.userRepository.GetUserByID(uint(targetID)); err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "User not found")
	}

	isFollowing, err := h.followRepository.IsFollowing(currentUserID, uint(targetID))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if isFollowing {
		return echo.NewHTTPError(http.StatusConflict, "Already following this user")
	}

	follow := &models.Follow{
		FollowerID:  currentUserID,
		FollowingID: uint(targetID),
	}
	if err := h.followRepository.CreateFollow(follow); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	// Create follow notification; self-follow is already rejected above
	if follower, err := h.userRepository.GetUserByID(currentUserID); err == nil {
		notification, err := h.notificationService.CreateNotification(&models.CreateNotificationInput{
			Recipient: uint(targetID),
			Sender:    currentUserID,
			Type:      models.NotificationTypeFollow,
			Message:   follower.Name + " started following you",
		})
		if err != nil {
			log.Printf("Error creating follow notification: %v", err)
		} else if notification != nil {
			h.notificationService.DeliverAsync(uint(targetID), notification)
		}
	}

	followersCount, _ := h.followRepository.GetFollowersCount(uint(targetID))

	return c.JSON(http.StatusOK, echo.Map{
		"success":        true,
		"following":      true,
		"followersCount": followersCount,
	})
}

// UnfollowUser unfollows a user
func (h *FollowHandler) UnfollowUser(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	targetID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID")
	}

	if err := h.followRepository.DeleteFollow(currentUserID, uint(targetID)); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	followersCount, _ := h.followRepository.GetFollowersCount(uint(targetID))

	return c.JSON(http.StatusOK, echo.Map{
		"success":        true,
		"following":      false,
		"followersCount": followersCount,
	})
}
