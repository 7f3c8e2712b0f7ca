package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Review is a comment on a blog (MongoDB).
type Review struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	BlogID    primitive.ObjectID `json:"blog_id" bson:"blog_id"`
	AuthorID  uint               `json:"author_id" bson:"author_id"`
	Comment   string             `json:"comment" bson:"comment"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
}

// EnrichedReview carries the author's public fields for real-time display.
type EnrichedReview struct {
	Review
	Author UserCompact `json:"author"`
}

type CreateReviewRequest struct {
	Comment string `json:"comment" validate:"required,min=1,max=1000"`
}
