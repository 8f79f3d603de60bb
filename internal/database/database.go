package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Collection names shared by the repositories and the index bootstrap.
const (
	Users               = "users"
	Products            = "products"
	Orders              = "orders"
	Favorites           = "favorites"
	CreatorApplications = "creator_applications"
	Gatherings          = "gatherings"
	ShoppingLists       = "shopping_lists"
	Notifications       = "notifications"
	Content             = "content"
	Reports             = "reports"
	Feedback            = "feedback"
	Embeddings          = "embeddings"
)

// Connect opens a client and verifies the primary is reachable.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	opts := options.Client().
		ApplyURI(uri).
		SetAppName("gruby-api").
		SetServerSelectionTimeout(5 * time.Second)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return client, nil
}

// indexes lists the secondary indexes each collection relies on.
var indexes = map[string][]mongo.IndexModel{
	Users: {
		{Keys: bson.D{{Key: "role", Value: 1}, {Key: "is_active", Value: 1}}},
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true).SetSparse(true)},
	},
	Products: {
		{Keys: bson.D{{Key: "home_cook_id", Value: 1}, {Key: "is_deleted", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "category", Value: 1}}},
	},
	Orders: {
		{Keys: bson.D{{Key: "buyer_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "home_cook_id", Value: 1}, {Key: "created_at", Value: -1}}},
	},
	Favorites: {
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "product_id", Value: 1}}, Options: options.Index().SetUnique(true)},
	},
	CreatorApplications: {
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: -1}}},
	},
	Gatherings: {
		{Keys: bson.D{{Key: "starts_at", Value: 1}}},
	},
	Notifications: {
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
	},
	Content: {
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "kind", Value: 1}, {Key: "created_at", Value: -1}}},
	},
	Reports: {
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: -1}}},
	},
	Feedback: {
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: -1}}},
	},
	Embeddings: {
		{Keys: bson.D{{Key: "source_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "kind", Value: 1}, {Key: "created_at", Value: -1}}},
	},
}

// EnsureIndexes creates the secondary indexes. Creating an existing index is a no-op.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	for name, models := range indexes {
		ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
		_, err := db.Collection(name).Indexes().CreateMany(ctx, models)
		cancel()
		if err != nil {
			return fmt.Errorf("create indexes on %s: %w", name, err)
		}
	}
	return nil
}
