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

// ScoredEmbedding is an embedding returned by a vector index query.
type ScoredEmbedding struct {
	models.Embedding `bson:",inline"`
	Score            float64 `bson:"score"`
}

type EmbeddingRepository struct {
	collection *mongo.Collection
}

func NewEmbeddingRepository(collection *mongo.Collection) *EmbeddingRepository {
	return &EmbeddingRepository{collection: collection}
}

// Upsert stores the vector for a source, replacing any previous one.
func (r *EmbeddingRepository) Upsert(ctx context.Context, e *models.Embedding) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	e.CreatedAt = time.Now().UTC()
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"source_id": e.SourceID},
		bson.M{"$set": bson.M{
			"source_id":  e.SourceID,
			"kind":       e.Kind,
			"text":       e.Text,
			"model":      e.Model,
			"vector":     e.Vector,
			"created_at": e.CreatedAt,
		}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("upsert embedding: %w", err)
	}
	return nil
}

// Latest returns the most recent embeddings, optionally of one kind.
func (r *EmbeddingRepository) Latest(ctx context.Context, kind string, limit int) ([]models.Embedding, error) {
	ctx, cancel := context.WithTimeout(ctx, listTimeout)
	defer cancel()

	filter := bson.M{}
	if kind != "" {
		filter["kind"] = kind
	}
	opts := options.Find().SetSort(newestFirst).SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find embeddings: %w", err)
	}
	defer cursor.Close(ctx)

	out := make([]models.Embedding, 0, limit)
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode embeddings: %w", err)
	}
	return out, nil
}

// VectorSearch queries an Atlas vector search index.
func (r *EmbeddingRepository) VectorSearch(ctx context.Context, index string, vector []float64, kind string, limit int) ([]ScoredEmbedding, error) {
	ctx, cancel := context.WithTimeout(ctx, listTimeout)
	defer cancel()

	search := bson.M{
		"index":         index,
		"path":          "vector",
		"queryVector":   vector,
		"numCandidates": limit * 10,
		"limit":         limit,
	}
	if kind != "" {
		search["filter"] = bson.M{"kind": kind}
	}
	pipeline := mongo.Pipeline{
		{{Key: "$vectorSearch", Value: search}},
		{{Key: "$addFields", Value: bson.M{"score": bson.M{"$meta": "vectorSearchScore"}}}},
		{{Key: "$unset", Value: "vector"}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}
	defer cursor.Close(ctx)

	out := make([]ScoredEmbedding, 0, limit)
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode vector search: %w", err)
	}
	return out, nil
}

// HasSource reports whether a source already has an embedding.
func (r *EmbeddingRepository) HasSource(ctx context.Context, sourceID string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, readTimeout)
	defer cancel()

	n, err := r.collection.CountDocuments(ctx, bson.M{"source_id": sourceID}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("count embeddings: %w", err)
	}
	return n > 0, nil
}

// DeleteSource drops the vector of a source, if any.
func (r *EmbeddingRepository) DeleteSource(ctx context.Context, sourceID string) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	if _, err := r.collection.DeleteOne(ctx, bson.M{"source_id": sourceID}); err != nil {
		return fmt.Errorf("delete embedding: %w", err)
	}
	return nil
}
