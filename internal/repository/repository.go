package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/sync/errgroup"

	"gruby/internal/models"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrInvalidID = errors.New("invalid id")
	ErrDuplicate = errors.New("already exists")
)

const (
	readTimeout  = 3 * time.Second
	writeTimeout = 5 * time.Second
	listTimeout  = 10 * time.Second

	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Page selects a window of a listing. Zero values fall back to the defaults.
type Page struct {
	Page     int
	PageSize int
}

func (p Page) normalize() Page {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 || p.PageSize > MaxPageSize {
		p.PageSize = DefaultPageSize
	}
	return p
}

// PageResult is one page of a listing plus the totals the clients paginate with.
type PageResult[T any] struct {
	Items      []T   `json:"data"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int64 `json:"total_pages"`
}

func objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, ErrInvalidID
	}
	return oid, nil
}

// findPage runs the count and the page query in parallel.
func findPage[T any](ctx context.Context, coll *mongo.Collection, filter bson.M, sort bson.D, page Page, projection bson.M) (*PageResult[T], error) {
	ctx, cancel := context.WithTimeout(ctx, listTimeout)
	defer cancel()

	page = page.normalize()
	opts := options.Find().
		SetSort(sort).
		SetSkip(int64((page.Page - 1) * page.PageSize)).
		SetLimit(int64(page.PageSize))
	if projection != nil {
		opts.SetProjection(projection)
	}

	var (
		items = make([]T, 0)
		total int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := coll.CountDocuments(gctx, filter)
		if err != nil {
			return fmt.Errorf("count %s: %w", coll.Name(), err)
		}
		total = n
		return nil
	})
	g.Go(func() error {
		cursor, err := coll.Find(gctx, filter, opts)
		if err != nil {
			return fmt.Errorf("find %s: %w", coll.Name(), err)
		}
		defer cursor.Close(gctx)
		if err := cursor.All(gctx, &items); err != nil {
			return fmt.Errorf("decode %s: %w", coll.Name(), err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	totalPages := total / int64(page.PageSize)
	if total%int64(page.PageSize) != 0 {
		totalPages++
	}
	return &PageResult[T]{
		Items:      items,
		Total:      total,
		Page:       page.Page,
		PageSize:   page.PageSize,
		TotalPages: totalPages,
	}, nil
}

func findOne[T any](ctx context.Context, coll *mongo.Collection, filter bson.M) (*T, error) {
	ctx, cancel := context.WithTimeout(ctx, readTimeout)
	defer cancel()

	var out T
	if err := coll.FindOne(ctx, filter).Decode(&out); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find %s: %w", coll.Name(), err)
	}
	return &out, nil
}

// transition moves a record to a new status only if its current status is one of
// sources. The status check is part of the update filter so two admins acting
// on the same record cannot both succeed.
func transition(ctx context.Context, coll *mongo.Collection, id string, sources []string, to string, extra bson.M) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}
	if len(sources) == 0 {
		return models.ErrInvalidTransition
	}

	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	set := bson.M{"status": to, "updated_at": time.Now().UTC()}
	for k, v := range extra {
		set[k] = v
	}

	filter := bson.M{"_id": oid, "status": bson.M{"$in": sources}}
	res, err := coll.UpdateOne(ctx, filter, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("update %s status: %w", coll.Name(), err)
	}
	if res.MatchedCount == 1 {
		return nil
	}

	n, err := coll.CountDocuments(ctx, bson.M{"_id": oid}, options.Count().SetLimit(1))
	if err != nil {
		return fmt.Errorf("count %s: %w", coll.Name(), err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return models.ErrInvalidTransition
}

// statusFilter returns a filter on status, or an empty filter when status is blank.
func statusFilter(status string) bson.M {
	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}
	return filter
}

var newestFirst = bson.D{{Key: "created_at", Value: -1}}
