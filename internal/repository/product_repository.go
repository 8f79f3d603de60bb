package repository

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"gruby/internal/models"
)

// ProductFilter narrows a product listing. Empty fields are ignored.
type ProductFilter struct {
	HomeCookID string
	Category   string
	Query      string
	Active     *bool
	MinPrice   int
	MaxPrice   int
	SortBy     string
	SortOrder  string
	Summary    bool
}

var sortableProductFields = map[string]bool{
	"created_at":  true,
	"name":        true,
	"price_cents": true,
	"stock":       true,
}

type ProductRepository struct {
	collection *mongo.Collection
}

func NewProductRepository(collection *mongo.Collection) *ProductRepository {
	return &ProductRepository{
		collection: collection,
	}
}

// Create inserts a new product
func (r *ProductRepository) Create(ctx context.Context, product *models.Product) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	now := time.Now().UTC()
	product.ID = primitive.NewObjectID()
	product.CreatedAt = now
	product.UpdatedAt = now
	product.IsDeleted = false

	if _, err := r.collection.InsertOne(ctx, product); err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// FindByID returns a product that has not been deleted
func (r *ProductRepository) FindByID(ctx context.Context, id string) (*models.Product, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	return findOne[models.Product](ctx, r.collection, bson.M{"_id": oid, "is_deleted": false})
}

// FindAll lists products with pagination and filters
func (r *ProductRepository) FindAll(ctx context.Context, f ProductFilter, page Page) (*PageResult[models.Product], error) {
	filter := bson.M{"is_deleted": false}
	if f.HomeCookID != "" {
		filter["home_cook_id"] = f.HomeCookID
	}
	if f.Category != "" {
		filter["category"] = f.Category
	}
	if f.Active != nil {
		filter["is_active"] = *f.Active
	}
	if f.Query != "" {
		q := regexp.QuoteMeta(f.Query)
		filter["$or"] = []bson.M{
			{"name": bson.M{"$regex": q, "$options": "i"}},
			{"description": bson.M{"$regex": q, "$options": "i"}},
			{"tags": bson.M{"$regex": q, "$options": "i"}},
		}
	}

	price := bson.M{}
	if f.MinPrice > 0 {
		price["$gte"] = f.MinPrice
	}
	if f.MaxPrice > 0 {
		price["$lte"] = f.MaxPrice
	}
	if len(price) > 0 {
		filter["price_cents"] = price
	}

	sortField := "created_at"
	if sortableProductFields[f.SortBy] {
		sortField = f.SortBy
	}
	sortOrder := -1
	if f.SortOrder == "asc" {
		sortOrder = 1
	}

	var projection bson.M
	if f.Summary {
		projection = bson.M{
			"home_cook_id": 1,
			"name":         1,
			"category":     1,
			"price_cents":  1,
			"currency":     1,
			"stock":        1,
			"images":       bson.M{"$slice": 1},
			"is_active":    1,
			"created_at":   1,
		}
	}

	return findPage[models.Product](ctx, r.collection, filter, bson.D{{Key: sortField, Value: sortOrder}}, page, projection)
}

// Update applies a partial update
func (r *ProductRepository) Update(ctx context.Context, id string, update bson.M) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	update["updated_at"] = time.Now().UTC()
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": oid, "is_deleted": false},
		bson.M{"$set": update},
	)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// SoftDelete marks a product as deleted
func (r *ProductRepository) SoftDelete(ctx context.Context, id string) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": oid, "is_deleted": false},
		bson.M{"$set": bson.M{"is_deleted": true, "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// FindMany returns the live products among ids, in no particular order.
func (r *ProductRepository) FindMany(ctx context.Context, ids []string) ([]models.Product, error) {
	oids := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if oid, err := primitive.ObjectIDFromHex(id); err == nil {
			oids = append(oids, oid)
		}
	}
	products := make([]models.Product, 0, len(oids))
	if len(oids) == 0 {
		return products, nil
	}

	ctx, cancel := context.WithTimeout(ctx, listTimeout)
	defer cancel()

	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": oids}, "is_deleted": false})
	if err != nil {
		return nil, fmt.Errorf("find products: %w", err)
	}
	defer cursor.Close(ctx)
	if err := cursor.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("decode products: %w", err)
	}
	return products, nil
}
