package handlers

import (
	"github.com/labstack/echo/v4"
	"github.com/rapidpost/backend/internal/models"
)

// getUserClaims pulls the JWT claims the auth middleware stored on the context.
func getUserClaims(c echo.Context) *models.JwtCustomClaims {
	claims, ok := c.Get("user").(*models.JwtCustomClaims)
	if !ok {
		return nil
	}
	return claims
}

// getUserIDFromContext returns the authenticated user's id, or 0 when absent.
func getUserIDFromContext(c echo.Context) uint {
	claims := getUserClaims(c)
	if claims == nil {
		return 0
	}
	return claims.UserID
}
