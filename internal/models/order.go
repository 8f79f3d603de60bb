package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type OrderLine struct {
	ProductID  string `json:"product_id" bson:"product_id" binding:"required"`
	Name       string `json:"name" bson:"name"`
	Quantity   int    `json:"quantity" bson:"quantity" binding:"required,gt=0"`
	PriceCents int    `json:"price_cents" bson:"price_cents"`
}

// Order is a purchase placed by a user with a single home cook.
// Payment is captured by the payments provider; PaymentRef only links to it.
type Order struct {
	ID         primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	BuyerID    string             `json:"buyer_id" bson:"buyer_id" binding:"required"`
	HomeCookID string             `json:"home_cook_id" bson:"home_cook_id" binding:"required"`
	Lines      []OrderLine        `json:"lines" bson:"lines" binding:"required,min=1,dive"`
	TotalCents int                `json:"total_cents" bson:"total_cents"`
	Currency   string             `json:"currency" bson:"currency" binding:"required,len=3"`
	Status     OrderStatus        `json:"status" bson:"status"`
	PickupAt   *time.Time         `json:"pickup_at,omitempty" bson:"pickup_at,omitempty"`
	Note       string             `json:"note,omitempty" bson:"note,omitempty"`
	PaymentRef string             `json:"payment_ref,omitempty" bson:"payment_ref,omitempty"`
	CreatedAt  time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt  time.Time          `json:"updated_at" bson:"updated_at"`
}

// Total sums the order lines.
func (o *Order) Total() int {
	total := 0
	for _, l := range o.Lines {
		total += l.PriceCents * l.Quantity
	}
	return total
}
