package repository

import (
	"context"
	"time"

	"freelance-app/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type RatingStat struct {
	UserID  string  `bson:"_id" json:"user_id"`
	Count   int     `bson:"count" json:"count"`
	Average float64 `bson:"average" json:"average_rating"`
}

type RatingRepository interface {
	Create(ctx context.Context, rating *models.Rating) error
	GetByUser(ctx context.Context, userID string) ([]models.Rating, error)
	Exists(ctx context.Context, jobID primitive.ObjectID, fromID string) (bool, error)
	StatsForUser(ctx context.Context, userID string) (*RatingStat, error)
}

type ratingRepository struct {
	collection *mongo.Collection
}

func NewRatingRepository(db *mongo.Database) RatingRepository {
	return &ratingRepository{collection: db.Collection("ratings")}
}

func (r *ratingRepository) Create(ctx context.Context, rating *models.Rating) error {
	rating.ID = primitive.NewObjectID()
	rating.CreatedAt = time.Now()
	_, err := r.collection.InsertOne(ctx, rating)
	return err
}

func (r *ratingRepository) GetByUser(ctx context.Context, userID string) ([]models.Rating, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"to_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	var ratings []models.Rating
	err = cursor.All(ctx, &ratings)
	return ratings, err
}

func (r *ratingRepository) Exists(ctx context.Context, jobID primitive.ObjectID, fromID string) (bool, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"job_id": jobID, "from_id": fromID})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *ratingRepository) StatsForUser(ctx context.Context, userID string) (*RatingStat, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"to_id": userID}}},
		{{Key: "$group", Value: bson.M{
			"_id":     "$to_id",
			"count":   bson.M{"$sum": 1},
			"average": bson.M{"$avg": "$rating"},
		}}},
	}
	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	var stats []RatingStat
	if err := cursor.All(ctx, &stats); err != nil {
		return nil, err
	}
	if len(stats) == 0 {
		return &RatingStat{UserID: userID}, nil
	}
	return &stats[0], nil
}
