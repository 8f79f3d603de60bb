package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Product is a dish or pantry item listed by a home cook.
type Product struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	HomeCookID  string             `json:"home_cook_id" bson:"home_cook_id" binding:"required"`
	Name        string             `json:"name" bson:"name" binding:"required,max=120"`
	Description string             `json:"description,omitempty" bson:"description,omitempty"`
	Category    string             `json:"category" bson:"category" binding:"required"`
	PriceCents  int                `json:"price_cents" bson:"price_cents" binding:"gte=0"`
	Currency    string             `json:"currency" bson:"currency" binding:"required,len=3"`
	Stock       int                `json:"stock" bson:"stock" binding:"gte=0"`
	Images      []string           `json:"images,omitempty" bson:"images,omitempty"`
	Tags        []string           `json:"tags,omitempty" bson:"tags,omitempty"`
	Attributes  map[string]string  `json:"attributes,omitempty" bson:"attributes,omitempty"`
	IsActive    bool               `json:"is_active" bson:"is_active"`
	IsDeleted   bool               `json:"-" bson:"is_deleted"`
	CreatedAt   time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at" bson:"updated_at"`
}

// ProductUpdate holds the fields a home cook may change on a product.
type ProductUpdate struct {
	Name        *string           `json:"name,omitempty" binding:"omitempty,max=120"`
	Description *string           `json:"description,omitempty"`
	Category    *string           `json:"category,omitempty"`
	PriceCents  *int              `json:"price_cents,omitempty" binding:"omitempty,gte=0"`
	Currency    *string           `json:"currency,omitempty" binding:"omitempty,len=3"`
	Stock       *int              `json:"stock,omitempty" binding:"omitempty,gte=0"`
	Images      []string          `json:"images,omitempty"`
	Tags        []string          `json:"tags,omitempty"`
	Attributes  map[string]string `json:"attributes,omitempty"`
	IsActive    *bool             `json:"is_active,omitempty"`
}

// Fields flattens the non-nil fields into a $set document keyed by bson name.
func (u ProductUpdate) Fields() map[string]interface{} {
	set := map[string]interface{}{}
	if u.Name != nil {
		set["name"] = *u.Name
	}
	if u.Description != nil {
		set["description"] = *u.Description
	}
	if u.Category != nil {
		set["category"] = *u.Category
	}
	if u.PriceCents != nil {
		set["price_cents"] = *u.PriceCents
	}
	if u.Currency != nil {
		set["currency"] = *u.Currency
	}
	if u.Stock != nil {
		set["stock"] = *u.Stock
	}
	if u.Images != nil {
		set["images"] = u.Images
	}
	if u.Tags != nil {
		set["tags"] = u.Tags
	}
	if u.Attributes != nil {
		set["attributes"] = u.Attributes
	}
	if u.IsActive != nil {
		set["is_active"] = *u.IsActive
	}
	return set
}
