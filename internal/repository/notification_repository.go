package repository

import (
	"context"
	"time"

	"purifier-app/routine-service/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type NotificationRepository interface {
	Create(ctx context.Context, notif *models.Notification) error
	ListByOwner(ctx context.Context, ownerID string, limit int64) ([]models.Notification, error)
	MarkAsRead(ctx context.Context, id string) error
}

type mongoNotificationRepo struct {
	col *mongo.Collection
}

func NewNotificationRepository(db *mongo.Database) NotificationRepository {
	return &mongoNotificationRepo{col: db.Collection("notifications")}
}

func (r *mongoNotificationRepo) Create(ctx context.Context, notif *models.Notification) error {
	notif.CreatedAt = time.Now().UTC()
	notif.Read = false
	_, err := r.col.InsertOne(ctx, notif)
	return err
}

func (r *mongoNotificationRepo) ListByOwner(ctx context.Context, ownerID string, limit int64) ([]models.Notification, error) {
	opts := options.Find().
		SetSort(bson.M{"created_at": -1}).
		SetLimit(limit)

	cursor, err := r.col.Find(ctx, bson.M{"owner_id": ownerID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var notifications []models.Notification
	if err = cursor.All(ctx, &notifications); err != nil {
		return nil, err
	}
	return notifications, nil
}

func (r *mongoNotificationRepo) MarkAsRead(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return models.ErrValidation
	}
	_, err = r.col.UpdateByID(ctx, oid, bson.M{"$set": bson.M{"read": true}})
	return err
}
