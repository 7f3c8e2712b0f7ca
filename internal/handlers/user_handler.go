package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/rapidpost/backend/internal/models"
	"github.com/rapidpost/backend/internal/repositories"
)

// UserHandler handles user profile HTTP requests
type UserHandler struct {
	userRepository   repositories.UserRepository
	followRepository repositories.FollowRepository
	blogRepository   repositories.BlogRepository
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userRepo repositories.UserRepository, followRepo repositories.FollowRepository, blogRepo repositories.BlogRepository) *UserHandler {
	return &UserHandler{
		userRepository:   userRepo,
		followRepository: followRepo,
		blogRepository:   blogRepo,
	}
}

// RegisterUserRoutes registers user profile routes
func (h *UserHandler) RegisterUserRoutes(g *echo.Group) {
	g.GET("/users/:id", h.GetProfile)
	g.GET("/users/search", h.SearchUsers)
}

// GetProfile returns a user's public profile with aggregate blog stats
func (h *UserHandler) GetProfile(c echo.Context) error {
	userID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID")
	}

	user, err := h.userRepository.GetUserByID(uint(userID))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "User not found")
	}

	blogs, err := h.blogRepository.GetBlogsByAuthorID(c.Request().Context(), uint(userID))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	var totalViews, totalLikes int64
	for _, blog := range blogs {
		totalViews += blog.Views
		totalLikes += int64(len(blog.Likes))
	}

	followersCount, _ := h.followRepository.GetFollowersCount(uint(userID))
	followingCount, _ := h.followRepository.GetFollowingCount(uint(userID))

	return c.JSON(http.StatusOK, echo.Map{
		"user":  user.ToCompact(),
		"bio":   user.Bio,
		"blogs": blogs,
		"stats": echo.Map{
			"followersCount": followersCount,
			"followingCount": followingCount,
			"blogCount":      user.BlogCount,
			"totalViews":     totalViews,
			"totalLikes":     totalLikes,
		},
	})
}

// SearchUsers searches users by name or username
func (h *UserHandler) SearchUsers(c echo.Context) error {
	query := c.QueryParam("q")
	if query == "" {
		return c.JSON(http.StatusOK, []models.UserCompact{})
	}

	users, err := h.userRepository.SearchUsers(query)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	compact := make([]models.UserCompact, len(users))
	for i := range users {
		compact[i] = users[i].ToCompact()
	}
	return c.JSON(http.StatusOK, compact)
}
