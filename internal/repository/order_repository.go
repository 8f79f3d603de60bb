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

type OrderRepository struct {
	collection *mongo.Collection
}

func NewOrderRepository(collection *mongo.Collection) *OrderRepository {
	return &OrderRepository{collection: collection}
}

// Create stores a new pending order.
func (r *OrderRepository) Create(ctx context.Context, order *models.Order) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	now := time.Now().UTC()
	order.ID = primitive.NewObjectID()
	order.Status = models.OrderPending
	order.CreatedAt = now
	order.UpdatedAt = now

	if _, err := r.collection.InsertOne(ctx, order); err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

func (r *OrderRepository) FindByID(ctx context.Context, id string) (*models.Order, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	return findOne[models.Order](ctx, r.collection, bson.M{"_id": oid})
}

func (r *OrderRepository) ListByBuyer(ctx context.Context, buyerID string, page Page) (*PageResult[models.Order], error) {
	return findPage[models.Order](ctx, r.collection, bson.M{"buyer_id": buyerID}, newestFirst, page, nil)
}

// ListByHomeCook lists the orders a home cook received, optionally by status.
func (r *OrderRepository) ListByHomeCook(ctx context.Context, homeCookID, status string, page Page) (*PageResult[models.Order], error) {
	filter := statusFilter(status)
	filter["home_cook_id"] = homeCookID
	return findPage[models.Order](ctx, r.collection, filter, newestFirst, page, nil)
}

func (r *OrderRepository) UpdateStatus(ctx context.Context, id string, to models.OrderStatus) error {
	return transition(ctx, r.collection, id, to.Sources(), string(to), nil)
}
