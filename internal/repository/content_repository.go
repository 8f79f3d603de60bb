package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"gruby/internal/models"
)

// ContentRepository backs the admin moderation queue.
type ContentRepository struct {
	collection *mongo.Collection
}

func NewContentRepository(collection *mongo.Collection) *ContentRepository {
	return &ContentRepository{collection: collection}
}

func (r *ContentRepository) List(ctx context.Context, status, kind string, page Page) (*PageResult[models.ContentItem], error) {
	filter := statusFilter(status)
	if kind != "" {
		filter["kind"] = kind
	}
	return findPage[models.ContentItem](ctx, r.collection, filter, newestFirst, page, nil)
}

func (r *ContentRepository) FindByID(ctx context.Context, id string) (*models.ContentItem, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	return findOne[models.ContentItem](ctx, r.collection, bson.M{"_id": oid})
}

func (r *ContentRepository) UpdateStatus(ctx context.Context, id string, change models.StatusChange) error {
	to := models.ModerationStatus(change.Status)
	return transition(ctx, r.collection, id, to.Sources(), change.Status, bson.M{
		"reviewed_by": change.ReviewedBy,
		"review_note": change.Note,
	})
}

// ListApproved pages through approved content for embedding backfills.
func (r *ContentRepository) ListApproved(ctx context.Context, page Page) (*PageResult[models.ContentItem], error) {
	return findPage[models.ContentItem](ctx, r.collection,
		bson.M{"status": models.ModerationApproved},
		bson.D{{Key: "_id", Value: 1}}, page, nil)
}
