package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type FavoriteItem struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID    string             `json:"user_id" bson:"user_id"`
	ProductID string             `json:"product_id" bson:"product_id"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
}

// Gathering is a scheduled cooking or dining event.
type Gathering struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	HostID      string             `json:"host_id" bson:"host_id" binding:"required"`
	Title       string             `json:"title" bson:"title" binding:"required,max=120"`
	Description string             `json:"description,omitempty" bson:"description,omitempty"`
	Location    string             `json:"location,omitempty" bson:"location,omitempty"`
	StartsAt    time.Time          `json:"starts_at" bson:"starts_at" binding:"required"`
	Capacity    int                `json:"capacity,omitempty" bson:"capacity,omitempty" binding:"gte=0"`
	Attendees   []string           `json:"attendees,omitempty" bson:"attendees,omitempty"`
	CoverURL    string             `json:"cover_url,omitempty" bson:"cover_url,omitempty"`
	CreatedAt   time.Time          `json:"created_at" bson:"created_at"`
}

type ShoppingListItem struct {
	Name     string `json:"name" bson:"name"`
	Quantity string `json:"quantity,omitempty" bson:"quantity,omitempty"`
	Checked  bool   `json:"checked" bson:"checked"`
}

type ShoppingList struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	OwnerID   string             `json:"owner_id" bson:"owner_id"`
	Title     string             `json:"title" bson:"title"`
	Items     []ShoppingListItem `json:"items" bson:"items"`
	UpdatedAt time.Time          `json:"updated_at" bson:"updated_at"`
}
