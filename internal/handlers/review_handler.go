package handlers

import (
	"fmt"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rapidpost/backend/internal/models"
	"github.com/rapidpost/backend/internal/realtime"
	"github.com/rapidpost/backend/internal/repositories"
	"github.com/rapidpost/backend/internal/services"
)

const commentPreviewLimit = 50

// ReviewHandler handles HTTP requests related to blog comments
type ReviewHandler struct {
	reviewRepository    repositories.ReviewRepository
	blogRepository      repositories.BlogRepository
	userRepository      repositories.UserRepository
	notificationService *services.NotificationService
	hub                 *realtime.Hub
}

// NewReviewHandler creates a new ReviewHandler
func NewReviewHandler(reviewRepo repositories.ReviewRepository, blogRepo repositories.BlogRepository, userRepo repositories.UserRepository, notificationService *services.NotificationService, hub *realtime.Hub) *ReviewHandler {
	return &ReviewHandler{
		reviewRepository:    reviewRepo,
		blogRepository:      blogRepo,
		userRepository:      userRepo,
		notificationService: notificationService,
		hub:                 hub,
	}
}

// RegisterReviewRoutes registers review-related routes
func (h *ReviewHandler) RegisterReviewRoutes(g *echo.Group) {
	g.POST("/blogs/:id/reviews", h.CreateReview)
	g.GET("/blogs/:id/reviews", h.GetReviews)
	g.DELETE("/blogs/:id/reviews/:reviewId", h.DeleteReview)
}

// CreateReview adds a comment, fans it out to the blog room and notifies the
// blog author unless they commented on their own post
func (h *ReviewHandler) CreateReview(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}
	blogID := c.Param("id")

	var req models.CreateReviewRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	blog, err := h.blogRepository.GetBlogByID(c.Request().Context(), blogID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Blog not found")
	}

	review := &models.Review{
		BlogID:   blog.ID,
		AuthorID: currentUserID,
		Comment:  req.Comment,
	}
	if err := h.reviewRepository.CreateReview(c.Request().Context(), review); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	enriched := models.EnrichedReview{Review: *review}
	author, err := h.userRepository.GetUserByID(currentUserID)
	if err == nil {
		enriched.Author = author.ToCompact()
	}

	// Fan the comment out to everyone viewing this blog
	if err := h.hub.EmitToBlog(blogID, "newComment", enriched); err != nil {
		log.Printf("Socket emit newComment failed: %v", err)
	}

	// Notify the blog author, unless they commented on their own post
	if blog.AuthorID != currentUserID && author != nil {
		notification, err := h.notificationService.CreateNotification(&models.CreateNotificationInput{
			Recipient:      blog.AuthorID,
			Sender:         currentUserID,
			Type:           models.NotificationTypeComment,
			Message:        fmt.Sprintf("%s commented on your blog post %q: %q", author.Name, blog.Title, previewComment(req.Comment)),
			RelatedBlog:    blog.ID.Hex(),
			RelatedComment: review.ID.Hex(),
		})
		if err != nil {
			log.Printf("Error creating comment notification: %v", err)
		} else if notification != nil {
			h.notificationService.DeliverAsync(blog.AuthorID, notification)
		}
	}

	return c.JSON(http.StatusCreated, echo.Map{"message": "Review Added!", "review": enriched})
}

// GetReviews returns all comments for a blog
func (h *ReviewHandler) GetReviews(c echo.Context) error {
	blogID := c.Param("id")

	reviews, err := h.reviewRepository.GetReviewsByBlogID(c.Request().Context(), blogID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	enriched := make([]models.EnrichedReview, len(reviews))
	userCache := make(map[uint]models.UserCompact)
	for i, review := range reviews {
		enriched[i] = models.EnrichedReview{Review: review}
		if author, ok := userCache[review.AuthorID]; ok {
			enriched[i].Author = author
		} else if user, err := h.userRepository.GetUserByID(review.AuthorID); err == nil {
			compact := user.ToCompact()
			userCache[review.AuthorID] = compact
			enriched[i].Author = compact
		}
	}

	return c.JSON(http.StatusOK, enriched)
}

// DeleteReview removes a comment and fans the deletion out to the blog room
func (h *ReviewHandler) DeleteReview(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}
	blogID := c.Param("id")
	reviewID := c.Param("reviewId")

	review, err := h.reviewRepository.GetReviewByID(c.Request().Context(), reviewID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Review not found")
	}
	if review.AuthorID != currentUserID {
		return echo.NewHTTPError(http.StatusForbidden, "You are not authorized to delete this review")
	}

	if err := h.reviewRepository.DeleteReview(c.Request().Context(), reviewID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if err := h.hub.EmitToBlog(blogID, "deleteComment", reviewID); err != nil {
		log.Printf("Socket emit deleteComment failed: %v", err)
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "Review Deleted!", "reviewId": reviewID})
}

// previewComment truncates long comments for the notification message
func previewComment(comment string) string {
	runes := []rune(comment)
	if len(runes) <= commentPreviewLimit {
		return comment
	}
	return string(runes[:commentPreviewLimit]) + "..."
}
