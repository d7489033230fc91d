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

// NotificationRepository stores per-user notifications. Every mutating
// method scopes its filter by user_id so one user can never touch
// another's notifications.
type NotificationRepository interface {
	Create(ctx context.Context, notif *models.Notification) error
	ListByUser(ctx context.Context, userID string, includeArchived bool) ([]models.Notification, error)
	MarkRead(ctx context.Context, id primitive.ObjectID, userID string) error
	MarkReadMany(ctx context.Context, ids []primitive.ObjectID, userID string) (int64, error)
	MarkAllRead(ctx context.Context, userID string) (int64, error)
	Archive(ctx context.Context, id primitive.ObjectID, userID string) error
	Delete(ctx context.Context, id primitive.ObjectID, userID string) error
	DeleteMany(ctx context.Context, ids []primitive.ObjectID, userID string) (int64, error)
}

type notificationRepository struct {
	collection *mongo.Collection
}

func NewNotificationRepository(db *mongo.Database) NotificationRepository {
	return &notificationRepository{collection: db.Collection("notifications")}
}

func (r *notificationRepository) Create(ctx context.Context, notif *models.Notification) error {
	notif.ID = primitive.NewObjectID()
	notif.Read = false
	notif.Archived = false
	notif.CreatedAt = time.Now()
	_, err := r.collection.InsertOne(ctx, notif)
	return err
}

func (r *notificationRepository) ListByUser(ctx context.Context, userID string, includeArchived bool) ([]models.Notification, error) {
	filter := bson.M{"user_id": userID}
	if !includeArchived {
		filter["archived"] = false
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	var notifications []models.Notification
	err = cursor.All(ctx, &notifications)
	return notifications, err
}

func (r *notificationRepository) MarkRead(ctx context.Context, id primitive.ObjectID, userID string) error {
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id, "user_id": userID},
		bson.M{"$set": bson.M{"read": true}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return models.NotFoundError("notification not found")
	}
	return nil
}

func (r *notificationRepository) MarkReadMany(ctx context.Context, ids []primitive.ObjectID, userID string) (int64, error) {
	res, err := r.collection.UpdateMany(ctx,
		bson.M{"_id": bson.M{"$in": ids}, "user_id": userID},
		bson.M{"$set": bson.M{"read": true}},
	)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	res, err := r.collection.UpdateMany(ctx,
		bson.M{"user_id": userID, "read": false},
		bson.M{"$set": bson.M{"read": true}},
	)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

func (r *notificationRepository) Archive(ctx context.Context, id primitive.ObjectID, userID string) error {
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id, "user_id": userID},
		bson.M{"$set": bson.M{"archived": true}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return models.NotFoundError("notification not found")
	}
	return nil
}

func (r *notificationRepository) Delete(ctx context.Context, id primitive.ObjectID, userID string) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id, "user_id": userID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return models.NotFoundError("notification not found")
	}
	return nil
}

func (r *notificationRepository) DeleteMany(ctx context.Context, ids []primitive.ObjectID, userID string) (int64, error) {
	res, err := r.collection.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}, "user_id": userID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
