package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"gruby/internal/models"
)

type FavoriteRepository struct {
	collection *mongo.Collection
}

func NewFavoriteRepository(collection *mongo.Collection) *FavoriteRepository {
	return &FavoriteRepository{collection: collection}
}

// Add favorites a product. Adding the same product twice keeps the first timestamp.
func (r *FavoriteRepository) Add(ctx context.Context, userID, productID string) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	filter := bson.M{"user_id": userID, "product_id": productID}
	update := bson.M{"$setOnInsert": bson.M{
		"user_id":    userID,
		"product_id": productID,
		"created_at": time.Now().UTC(),
	}}
	if _, err := r.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true)); err != nil {
		return fmt.Errorf("add favorite: %w", err)
	}
	return nil
}

func (r *FavoriteRepository) Remove(ctx context.Context, userID, productID string) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	res, err := r.collection.DeleteOne(ctx, bson.M{"user_id": userID, "product_id": productID})
	if err != nil {
		return fmt.Errorf("remove favorite: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *FavoriteRepository) ListByUser(ctx context.Context, userID string, page Page) (*PageResult[models.FavoriteItem], error) {
	return findPage[models.FavoriteItem](ctx, r.collection, bson.M{"user_id": userID}, newestFirst, page, nil)
}
