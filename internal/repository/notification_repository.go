package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"gruby/internal/models"
)

type NotificationRepository struct {
	collection *mongo.Collection
}

func NewNotificationRepository(collection *mongo.Collection) *NotificationRepository {
	return &NotificationRepository{collection: collection}
}

// Create records a notification before it is sent.
func (r *NotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	n.ID = primitive.NewObjectID()
	n.Status = models.NotificationPending
	n.CreatedAt = time.Now().UTC()
	if _, err := r.collection.InsertOne(ctx, n); err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

// MarkResult stores the delivery outcome of a notification.
func (r *NotificationRepository) MarkResult(ctx context.Context, n *models.Notification) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	now := time.Now().UTC()
	n.CompletedAt = &now
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": n.ID}, bson.M{"$set": bson.M{
		"status":       n.Status,
		"recipients":   n.Recipients,
		"delivered":    n.Delivered,
		"failed":       n.Failed,
		"skipped":      n.Skipped,
		"error":        n.Error,
		"completed_at": now,
	}})
	if err != nil {
		return fmt.Errorf("update notification: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *NotificationRepository) List(ctx context.Context, page Page) (*PageResult[models.Notification], error) {
	return findPage[models.Notification](ctx, r.collection, bson.M{}, newestFirst, page, nil)
}
