package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/rapidpost/backend/internal/models"
	"github.com/rapidpost/backend/internal/services"
)

// NotificationHandler handles notification-related HTTP requests
type NotificationHandler struct {
	notificationService *services.NotificationService
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(notificationService *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

// RegisterNotificationRoutes registers notification routes
func (h *NotificationHandler) RegisterNotificationRoutes(g *echo.Group) {
	g.GET("/notifications", h.GetNotifications)
	g.GET("/notifications/unread-count", h.GetUnreadCount)
	g.POST("/notifications/mark-read", h.MarkAsRead)
	g.POST("/notifications/mark-all-read", h.MarkAllAsRead)
	g.DELETE("/notifications/:id", h.DeleteNotification)
}

// GetNotifications returns paginated notifications for the current user
func (h *NotificationHandler) GetNotifications(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 50 {
		limit = 20
	}

	result, err := h.notificationService.GetUserNotifications(c.Request().Context(), currentUserID, page, limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load notifications")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"notifications": result.Notifications,
		"pagination": echo.Map{
			"currentPage": result.CurrentPage,
			"totalPages":  result.TotalPages,
			"total":       result.Total,
		},
	})
}

// GetUnreadCount returns the unread notification count for the navigation badge
func (h *NotificationHandler) GetUnreadCount(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	count, err := h.notificationService.GetUnreadCount(currentUserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to get unread count")
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "count": count})
}

// MarkAsRead marks specific notifications as read and rebroadcasts the badge count
func (h *NotificationHandler) MarkAsRead(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req models.MarkReadRequest
	if err := c.Bind(&req); err != nil || req.NotificationIDs == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid notification IDs")
	}

	if err := h.notificationService.MarkAsRead(currentUserID, req.NotificationIDs); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to mark notifications as read")
	}

	h.notificationService.BroadcastReadState(currentUserID, len(req.NotificationIDs))

	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "Notifications marked as read"})
}

// MarkAllAsRead marks every notification of the current user as read
func (h *NotificationHandler) MarkAllAsRead(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	if err := h.notificationService.MarkAllAsRead(currentUserID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to mark all notifications as read")
	}

	h.notificationService.BroadcastReadState(currentUserID, -1)

	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "All notifications marked as read"})
}

// DeleteNotification deletes one notification owned by the current user
func (h *NotificationHandler) DeleteNotification(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	notifID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid notification ID")
	}

	if err := h.notificationService.DeleteNotifications(currentUserID, []uint{uint(notifID)}); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to delete notification")
	}

	h.notificationService.BroadcastReadState(currentUserID, -1)

	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "Notification deleted"})
}
