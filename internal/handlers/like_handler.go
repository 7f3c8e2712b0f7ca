package handlers

import (
	"fmt"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rapidpost/backend/internal/models"
	"github.com/rapidpost/backend/internal/repositories"
	"github.com/rapidpost/backend/internal/services"
)

// LikeHandler handles HTTP requests related to blog likes
type LikeHandler struct {
	blogRepository      repositories.BlogRepository
	userRepository      repositories.UserRepository
	notificationService *services.NotificationService
}

// NewLikeHandler creates a new LikeHandler
func NewLikeHandler(blogRepo repositories.BlogRepository, userRepo repositories.UserRepository, notificationService *services.NotificationService) *LikeHandler {
	return &LikeHandler{
		blogRepository:      blogRepo,
		userRepository:      userRepo,
		notificationService: notificationService,
	}
}

// RegisterLikeRoutes registers like-related routes
func (h *LikeHandler) RegisterLikeRoutes(g *echo.Group) {
	g.POST("/blogs/:id/like", h.ToggleLike)
}

// ToggleLike likes the blog if not yet liked, otherwise removes the like.
// Liking someone else's blog notifies its author.
func (h *LikeHandler) ToggleLike(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}
	blogID := c.Param("id")

	blog, err := h.blogRepository.GetBlogByID(c.Request().Context(), blogID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Blog not found")
	}

	alreadyLiked := blog.HasLike(currentUserID)
	likesCount := len(blog.Likes)

	if alreadyLiked {
		if err := h.blogRepository.RemoveLike(c.Request().Context(), blogID, currentUserID); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		likesCount--
	} else {
		if err := h.blogRepository.AddLike(c.Request().Context(), blogID, currentUserID); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		likesCount++

		// Notify the author, unless the user liked their own post
		if blog.AuthorID != currentUserID {
			if user, err := h.userRepository.GetUserByID(currentUserID); err == nil {
				notification, err := h.notificationService.CreateNotification(&models.CreateNotificationInput{
					Recipient:   blog.AuthorID,
					Sender:      currentUserID,
					Type:        models.NotificationTypeLike,
					Message:     fmt.Sprintf("%s liked your blog post %q", user.Name, blog.Title),
					RelatedBlog: blog.ID.Hex(),
				})
				if err != nil {
					log.Printf("Error creating like notification: %v", err)
				} else if notification != nil {
					h.notificationService.DeliverAsync(blog.AuthorID, notification)
				}
			}
		}
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message":    likeToggleMessage(alreadyLiked),
		"liked":      !alreadyLiked,
		"likesCount": likesCount,
	})
}

func likeToggleMessage(alreadyLiked bool) string {
	if alreadyLiked {
		return "Unliked"
	}
	return "Liked"
}
