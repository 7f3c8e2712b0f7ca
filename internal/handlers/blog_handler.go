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

// BlogHandler handles HTTP requests related to blogs
type BlogHandler struct {
	blogRepository      repositories.BlogRepository
	reviewRepository    repositories.ReviewRepository
	userRepository      repositories.UserRepository
	followRepository    repositories.FollowRepository
	notificationService *services.NotificationService
	hub                 *realtime.Hub
}

// NewBlogHandler creates a new BlogHandler
func NewBlogHandler(blogRepo repositories.BlogRepository, reviewRepo repositories.ReviewRepository, userRepo repositories.UserRepository, followRepo repositories.FollowRepository, notificationService *services.NotificationService, hub *realtime.Hub) *BlogHandler {
	return &BlogHandler{
		blogRepository:      blogRepo,
		reviewRepository:    reviewRepo,
		userRepository:      userRepo,
		followRepository:    followRepo,
		notificationService: notificationService,
		hub:                 hub,
	}
}

// RegisterBlogRoutes registers blog-related routes
func (h *BlogHandler) RegisterBlogRoutes(g *echo.Group) {
	g.GET("/blogs", h.GetBlogs)
	g.GET("/blogs/:id", h.ShowBlog)
	g.POST("/blogs", h.CreateBlog)
	g.PUT("/blogs/:id", h.UpdateBlog)
	g.DELETE("/blogs/:id", h.DeleteBlog)
}

// GetBlogs lists blogs newest first with optional search and category filter
func (h *BlogHandler) GetBlogs(c echo.Context) error {
	query := c.QueryParam("q")
	category := c.QueryParam("category")

	blogs, err := h.blogRepository.GetBlogs(c.Request().Context(), query, category)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	categories, err := h.blogRepository.GetCategories(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{
		"allBlogs":   h.enrichBlogs(blogs),
		"categories": categories,
	})
}

// ShowBlog returns one blog, bumping its view counter
func (h *BlogHandler) ShowBlog(c echo.Context) error {
	blog, err := h.blogRepository.IncrementViews(c.Request().Context(), c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Blog does not exist")
	}

	enriched := models.EnrichedBlog{Blog: *blog}
	if author, err := h.userRepository.GetUserByID(blog.AuthorID); err == nil {
		enriched.Author = author.ToCompact()
	}

	return c.JSON(http.StatusOK, enriched)
}

// CreateBlog publishes a blog, broadcasts it to all live connections and
// notifies every follower of the author
func (h *BlogHandler) CreateBlog(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req models.CreateBlogRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	author, err := h.userRepository.GetUserByID(currentUserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Authenticated user not found in database")
	}

	blog := &models.Blog{
		AuthorID:    currentUserID,
		Title:       req.Title,
		Description: req.Description,
		Content:     req.Content,
		Category:    req.Category,
		Image:       models.BlogImage{URL: req.ImageURL},
	}
	if err := h.blogRepository.CreateBlog(c.Request().Context(), blog); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if err := h.userRepository.IncrementBlogCount(currentUserID); err != nil {
		log.Printf("Error incrementing blog count for user %d: %v", currentUserID, err)
	}

	enriched := models.EnrichedBlog{Blog: *blog, Author: author.ToCompact()}

	// Broadcast the new blog to every live connection for the home feed
	if err := h.hub.Broadcast("newBlog", enriched); err != nil {
		log.Printf("Socket emit newBlog failed: %v", err)
	}

	// Notify every follower of the author
	followerIDs, err := h.followRepository.GetFollowerIDs(currentUserID)
	if err != nil {
		log.Printf("Error fetching followers for user %d: %v", currentUserID, err)
	}
	for _, followerID := range followerIDs {
		notification, err := h.notificationService.CreateNotification(&models.CreateNotificationInput{
			Recipient:   followerID,
			Sender:      currentUserID,
			Type:        models.NotificationTypeNewPost,
			Message:     fmt.Sprintf("%s published a new blog post %q", author.Name, blog.Title),
			RelatedBlog: blog.ID.Hex(),
		})
		if err != nil {
			log.Printf("Error creating new post notification: %v", err)
			continue
		}
		if notification != nil {
			h.notificationService.DeliverAsync(followerID, notification)
		}
	}

	return c.JSON(http.StatusCreated, echo.Map{"message": "New Blog Created!", "blog": enriched})
}

// UpdateBlog updates a blog owned by the current user
func (h *BlogHandler) UpdateBlog(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}
	blogID := c.Param("id")

	var req models.UpdateBlogRequest
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
	if blog.AuthorID != currentUserID {
		return echo.NewHTTPError(http.StatusForbidden, "You are not authorized to update this blog")
	}

	if req.Title != "" {
		blog.Title = req.Title
	}
	if req.Description != "" {
		blog.Description = req.Description
	}
	if req.Content != "" {
		blog.Content = req.Content
	}
	if req.Category != "" {
		blog.Category = req.Category
	}

	if err := h.blogRepository.UpdateBlog(c.Request().Context(), blogID, blog); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "Blog Updated!", "blog": blog})
}

// DeleteBlog removes a blog owned by the current user
func (h *BlogHandler) DeleteBlog(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}
	blogID := c.Param("id")

	blog, err := h.blogRepository.GetBlogByID(c.Request().Context(), blogID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Blog not found")
	}
	if blog.AuthorID != currentUserID {
		return echo.NewHTTPError(http.StatusForbidden, "You are not authorized to delete this blog")
	}

	if err := h.blogRepository.DeleteBlog(c.Request().Context(), blogID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	// Comments do not outlive their blog
	if err := h.reviewRepository.DeleteReviewsByBlogID(c.Request().Context(), blogID); err != nil {
		log.Printf("Error deleting reviews for blog %s: %v", blogID, err)
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "Blog Deleted!"})
}

func (h *BlogHandler) enrichBlogs(blogs []models.Blog) []models.EnrichedBlog {
	enriched := make([]models.EnrichedBlog, len(blogs))
	userCache := make(map[uint]models.UserCompact)
	for i, blog := range blogs {
		enriched[i] = models.EnrichedBlog{Blog: blog}
		if author, ok := userCache[blog.AuthorID]; ok {
			enriched[i].Author = author
		} else if user, err := h.userRepository.GetUserByID(blog.AuthorID); err == nil {
			compact := user.ToCompact()
			userCache[blog.AuthorID] = compact
			enriched[i].Author = compact
		}
	}
	return enriched
}
