package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	AudienceAll       = "all"
	AudienceHomeCooks = "home_cooks"
	AudienceUsers     = "users"
)

// Notification is a push broadcast composed in the admin console.
type Notification struct {
	ID          primitive.ObjectID     `json:"id" bson:"_id,omitempty"`
	BatchID     string                 `json:"batch_id" bson:"batch_id"`
	Title       string                 `json:"title" bson:"title"`
	Body        string                 `json:"body" bson:"body"`
	Audience    string                 `json:"audience" bson:"audience"`
	UserIDs     []string               `json:"user_ids,omitempty" bson:"user_ids,omitempty"`
	Data        map[string]interface{} `json:"data,omitempty" bson:"data,omitempty"`
	Status      NotificationStatus     `json:"status" bson:"status"`
	Recipients  int                    `json:"recipients" bson:"recipients"`
	Delivered   int                    `json:"delivered" bson:"delivered"`
	Failed      int                    `json:"failed" bson:"failed"`
	Skipped     int                    `json:"skipped" bson:"skipped"`
	Error       string                 `json:"error,omitempty" bson:"error,omitempty"`
	CreatedBy   string                 `json:"created_by,omitempty" bson:"created_by,omitempty"`
	CreatedAt   time.Time              `json:"created_at" bson:"created_at"`
	CompletedAt *time.Time             `json:"completed_at,omitempty" bson:"completed_at,omitempty"`
}

// Embedding is a stored vector for a piece of content.
type Embedding struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	SourceID  string             `json:"source_id" bson:"source_id"`
	Kind      string             `json:"kind" bson:"kind"`
	Text      string             `json:"text" bson:"text"`
	Model     string             `json:"model" bson:"model"`
	Vector    []float64          `json:"-" bson:"vector"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
}
