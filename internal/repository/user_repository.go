package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"gruby/internal/models"
)

// HomeCookFilter narrows the public home cook directory.
type HomeCookFilter struct {
	Query   string
	City    string
	Cuisine string
}

type UserRepository struct {
	collection *mongo.Collection
}

func NewUserRepository(collection *mongo.Collection) *UserRepository {
	return &UserRepository{collection: collection}
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	return findOne[models.User](ctx, r.collection, bson.M{"_id": oid})
}

// FindHomeCook returns an active home cook.
func (r *UserRepository) FindHomeCook(ctx context.Context, id string) (*models.User, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	return findOne[models.User](ctx, r.collection, bson.M{
		"_id":       oid,
		"role":      models.RoleHomeCook,
		"is_active": true,
	})
}

func (r *UserRepository) ListHomeCooks(ctx context.Context, f HomeCookFilter, page Page) (*PageResult[models.User], error) {
	filter := bson.M{"role": models.RoleHomeCook, "is_active": true}
	if f.City != "" {
		filter["city"] = f.City
	}
	if f.Cuisine != "" {
		filter["cuisines"] = f.Cuisine
	}
	if f.Query != "" {
		q := regexp.QuoteMeta(f.Query)
		filter["$or"] = []bson.M{
			{"display_name": bson.M{"$regex": q, "$options": "i"}},
			{"username": bson.M{"$regex": q, "$options": "i"}},
		}
	}
	sort := bson.D{{Key: "rating", Value: -1}, {Key: "display_name", Value: 1}}
	return findPage[models.User](ctx, r.collection, filter, sort, page, nil)
}

// UpdateProfile applies a profile edit and returns the updated user.
func (r *UserRepository) UpdateProfile(ctx context.Context, id string, set bson.M) (*models.User, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	set["updated_at"] = time.Now().UTC()
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var user models.User
	err = r.collection.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set}, opts).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return &user, nil
}

// GrantPosting lets a user publish content once their creator application is approved.
func (r *UserRepository) GrantPosting(ctx context.Context, id string) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": oid},
		bson.M{"$set": bson.M{"can_post": true, "updated_at": time.Now().UTC()}})
	if err != nil {
		return fmt.Errorf("grant posting: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// PushTokens resolves the device tokens for a notification audience.
// userIDs is only consulted for models.AudienceUsers.
func (r *UserRepository) PushTokens(ctx context.Context, audience string, userIDs []string) ([]string, error) {
	filter := bson.M{
		"is_active":  true,
		"push_token": bson.M{"$exists": true, "$ne": ""},
	}
	switch audience {
	case models.AudienceAll:
	case models.AudienceHomeCooks:
		filter["role"] = models.RoleHomeCook
	case models.AudienceUsers:
		oids := make([]primitive.ObjectID, 0, len(userIDs))
		for _, id := range userIDs {
			oid, err := objectID(id)
			if err != nil {
				return nil, err
			}
			oids = append(oids, oid)
		}
		filter["_id"] = bson.M{"$in": oids}
	default:
		return nil, fmt.Errorf("unknown audience %q", audience)
	}

	ctx, cancel := context.WithTimeout(ctx, listTimeout)
	defer cancel()

	cursor, err := r.collection.Find(ctx, filter, options.Find().SetProjection(bson.M{"push_token": 1}))
	if err != nil {
		return nil, fmt.Errorf("find push tokens: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		PushToken string `bson:"push_token"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decode push tokens: %w", err)
	}

	seen := make(map[string]bool, len(rows))
	tokens := make([]string, 0, len(rows))
	for _, row := range rows {
		if row.PushToken == "" || seen[row.PushToken] {
			continue
		}
		seen[row.PushToken] = true
		tokens = append(tokens, row.PushToken)
	}
	return tokens, nil
}
