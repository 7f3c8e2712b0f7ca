package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// BlogImage is the uploaded cover image reference.
type BlogImage struct {
	URL      string `json:"url" bson:"url"`
	Filename string `json:"filename" bson:"filename"`
}

// Blog is a published post (MongoDB). Likes are an embedded user-id set
// mutated with $addToSet/$pull so toggles have no read-modify-write window.
type Blog struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	AuthorID    uint               `json:"author_id" bson:"author_id"`
	Title       string             `json:"title" bson:"title"`
	Description string             `json:"description" bson:"description"`
	Content     string             `json:"content" bson:"content"`
	Category    string             `json:"category" bson:"category"`
	Image       BlogImage          `json:"image" bson:"image"`
	Likes       []uint             `json:"likes" bson:"likes"`
	Views       int64              `json:"views" bson:"views"`
	CreatedAt   time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at" bson:"updated_at"`
}

// HasLike reports whether userID is in the blog's like set.
func (b *Blog) HasLike(userID uint) bool {
	for _, id := range b.Likes {
		if id == userID {
			return true
		}
	}
	return false
}

// EnrichedBlog carries the author's public fields for feed rendering.
type EnrichedBlog struct {
	Blog
	Author UserCompact `json:"author"`
}

type CreateBlogRequest struct {
	Title       string `json:"title" validate:"required,min=3,max=150"`
	Description string `json:"description" validate:"required,max=500"`
	Content     string `json:"content" validate:"required"`
	Category    string `json:"category" validate:"required,max=50"`
	ImageURL    string `json:"image_url,omitempty"`
}

type UpdateBlogRequest struct {
	Title       string `json:"title,omitempty" validate:"omitempty,min=3,max=150"`
	Description string `json:"description,omitempty" validate:"omitempty,max=500"`
	Content     string `json:"content,omitempty"`
	Category    string `json:"category,omitempty" validate:"omitempty,max=50"`
}
