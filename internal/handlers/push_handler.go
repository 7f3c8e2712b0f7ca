package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rapidpost/backend/internal/models"
	"github.com/rapidpost/backend/internal/services"
)

// PushHandler handles Web Push subscription HTTP requests
type PushHandler struct {
	pushService *services.PushService
}

// NewPushHandler creates a new PushHandler
func NewPushHandler(pushService *services.PushService) *PushHandler {
	return &PushHandler{pushService: pushService}
}

// RegisterPushRoutes registers push subscription routes
func (h *PushHandler) RegisterPushRoutes(g *echo.Group) {
	g.GET("/notifications/push/vapid-public-key", h.GetVapidPublicKey)
	g.POST("/notifications/push/subscribe", h.Subscribe)
	g.POST("/notifications/push/unsubscribe", h.Unsubscribe)
	g.POST("/notifications/push/test", h.SendTest)
}

// GetVapidPublicKey returns the server's public push key for client subscription
func (h *PushHandler) GetVapidPublicKey(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"success": true, "publicKey": h.pushService.GetPublicKey()})
}

// Subscribe stores a device subscription for the current user
func (h *PushHandler) Subscribe(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req models.SubscribeRequest
	if err := c.Bind(&req); err != nil || req.Subscription.Endpoint == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid subscription data")
	}

	if err := h.pushService.SaveSubscription(currentUserID, &req.Subscription); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to subscribe to push notifications")
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "Successfully subscribed to push notifications"})
}

// Unsubscribe removes a device subscription by endpoint
func (h *PushHandler) Unsubscribe(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req models.UnsubscribeRequest
	if err := c.Bind(&req); err != nil || req.Endpoint == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Endpoint is required")
	}

	if err := h.pushService.RemoveSubscription(currentUserID, req.Endpoint); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to unsubscribe from push notifications")
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "Successfully unsubscribed from push notifications"})
}

// SendTest pushes a synthetic notification to the current user's devices,
// bypassing the factory and store
func (h *PushHandler) SendTest(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	h.pushService.SendTestNotification(currentUserID)

	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "Test push notification sent"})
}
