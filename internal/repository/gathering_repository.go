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

type GatheringRepository struct {
	collection *mongo.Collection
	now        func() time.Time
}

func NewGatheringRepository(collection *mongo.Collection) *GatheringRepository {
	return &GatheringRepository{collection: collection, now: time.Now}
}

func (r *GatheringRepository) Create(ctx context.Context, g *models.Gathering) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	g.ID = primitive.NewObjectID()
	g.CreatedAt = r.now().UTC()
	if _, err := r.collection.InsertOne(ctx, g); err != nil {
		return fmt.Errorf("insert gathering: %w", err)
	}
	return nil
}

func (r *GatheringRepository) FindByID(ctx context.Context, id string) (*models.Gathering, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	return findOne[models.Gathering](ctx, r.collection, bson.M{"_id": oid})
}

// ListUpcoming lists gatherings that have not started yet, soonest first.
func (r *GatheringRepository) ListUpcoming(ctx context.Context, page Page) (*PageResult[models.Gathering], error) {
	filter := bson.M{"starts_at": bson.M{"$gte": r.now().UTC()}}
	return findPage[models.Gathering](ctx, r.collection, filter, bson.D{{Key: "starts_at", Value: 1}}, page, nil)
}

type ShoppingListRepository struct {
	collection *mongo.Collection
}

func NewShoppingListRepository(collection *mongo.Collection) *ShoppingListRepository {
	return &ShoppingListRepository{collection: collection}
}

func (r *ShoppingListRepository) FindByID(ctx context.Context, id string) (*models.ShoppingList, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	return findOne[models.ShoppingList](ctx, r.collection, bson.M{"_id": oid})
}
