package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/rapidpost/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ReviewRepository defines the interface for review (comment) data operations
type ReviewRepository interface {
	CreateReview(ctx context.Context, review *models.Review) error
	GetReviewByID(ctx context.Context, id string) (*models.Review, error)
	GetReviewsByBlogID(ctx context.Context, blogID string) ([]models.Review, error)
	DeleteReview(ctx context.Context, id string) error
	DeleteReviewsByBlogID(ctx context.Context, blogID string) error
}

// MongoReviewRepository implements ReviewRepository for MongoDB
type MongoReviewRepository struct {
	collection *mongo.Collection
}

// NewMongoReviewRepository creates a new MongoReviewRepository
func NewMongoReviewRepository(db *mongo.Database) *MongoReviewRepository {
	return &MongoReviewRepository{collection: db.Collection("reviews")}
}

// CreateReview creates a new review in MongoDB
func (r *MongoReviewRepository) CreateReview(ctx context.Context, review *models.Review) error {
	review.ID = primitive.NewObjectID()
	review.CreatedAt = time.Now()
	_, err := r.collection.InsertOne(ctx, review)
	return err
}

// GetReviewByID retrieves a review by ID from MongoDB
func (r *MongoReviewRepository) GetReviewByID(ctx context.Context, id string) (*models.Review, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid review ID format: %w", err)
	}

	var review models.Review
	err = r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&review)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("review not found")
		}
		return nil, err
	}
	return &review, nil
}

// GetReviewsByBlogID retrieves all reviews for a blog, oldest first
func (r *MongoReviewRepository) GetReviewsByBlogID(ctx context.Context, blogID string) ([]models.Review, error) {
	objID, err := primitive.ObjectIDFromHex(blogID)
	if err != nil {
		return nil, fmt.Errorf("invalid blog ID format: %w", err)
	}

	var reviews []models.Review
	findOptions := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"blog_id": objID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &reviews); err != nil {
		return nil, err
	}
	return reviews, nil
}

// DeleteReview deletes a review by ID from MongoDB
func (r *MongoReviewRepository) DeleteReview(ctx context.Context, id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid review ID format: %w", err)
	}
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": objID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("review not found")
	}
	return nil
}

// DeleteReviewsByBlogID removes every review attached to a blog (blog deletion)
func (r *MongoReviewRepository) DeleteReviewsByBlogID(ctx context.Context, blogID string) error {
	objID, err := primitive.ObjectIDFromHex(blogID)
	if err != nil {
		return fmt.Errorf("invalid blog ID format: %w", err)
	}
	_, err = r.collection.DeleteMany(ctx, bson.M{"blog_id": objID})
	return err
}
