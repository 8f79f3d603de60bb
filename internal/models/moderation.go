package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ContentItem is a piece of user generated content under moderation:
// a recipe, story, comment or gathering post.
type ContentItem struct {
	ID         primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Kind       string             `json:"kind" bson:"kind"`
	AuthorID   string             `json:"author_id" bson:"author_id"`
	Title      string             `json:"title,omitempty" bson:"title,omitempty"`
	Body       string             `json:"body" bson:"body"`
	MediaURLs  []string           `json:"media_urls,omitempty" bson:"media_urls,omitempty"`
	Status     ModerationStatus   `json:"status" bson:"status"`
	ReviewedBy string             `json:"reviewed_by,omitempty" bson:"reviewed_by,omitempty"`
	ReviewNote string             `json:"review_note,omitempty" bson:"review_note,omitempty"`
	CreatedAt  time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt  time.Time          `json:"updated_at" bson:"updated_at"`
}

// Text is what gets embedded for vector search.
func (c ContentItem) Text() string {
	if c.Title == "" {
		return c.Body
	}
	return c.Title + "\n\n" + c.Body
}

type Report struct {
	ID         primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	ReporterID string             `json:"reporter_id" bson:"reporter_id" binding:"required"`
	TargetID   string             `json:"target_id" bson:"target_id" binding:"required"`
	TargetKind string             `json:"target_kind" bson:"target_kind" binding:"required,oneof=content user product gathering"`
	Reason     string             `json:"reason" bson:"reason" binding:"required,max=200"`
	Details    string             `json:"details,omitempty" bson:"details,omitempty" binding:"max=2000"`
	Status     ReportStatus       `json:"status" bson:"status"`
	ReviewedBy string             `json:"reviewed_by,omitempty" bson:"reviewed_by,omitempty"`
	CreatedAt  time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt  time.Time          `json:"updated_at" bson:"updated_at"`
}

// CreatorApplication asks for permission to post content.
type CreatorApplication struct {
	ID         primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID     string             `json:"user_id" bson:"user_id" binding:"required"`
	Motivation string             `json:"motivation" bson:"motivation" binding:"required,max=2000"`
	Links      []string           `json:"links,omitempty" bson:"links,omitempty" binding:"omitempty,dive,url"`
	Status     ApplicationStatus  `json:"status" bson:"status"`
	ReviewedBy string             `json:"reviewed_by,omitempty" bson:"reviewed_by,omitempty"`
	ReviewNote string             `json:"review_note,omitempty" bson:"review_note,omitempty"`
	CreatedAt  time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt  time.Time          `json:"updated_at" bson:"updated_at"`
}

type FeedbackTicket struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID    string             `json:"user_id,omitempty" bson:"user_id,omitempty"`
	Email     string             `json:"email,omitempty" bson:"email,omitempty" binding:"omitempty,email"`
	Category  string             `json:"category" bson:"category" binding:"required,oneof=bug idea question other"`
	Message   string             `json:"message" bson:"message" binding:"required,max=4000"`
	Platform  string             `json:"platform,omitempty" bson:"platform,omitempty"`
	Status    TicketStatus       `json:"status" bson:"status"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time          `json:"updated_at" bson:"updated_at"`
}

// StatusChange is an admin decision applied to a moderated record.
type StatusChange struct {
	Status     string `json:"status" binding:"required"`
	Note       string `json:"note,omitempty" binding:"max=1000"`
	ReviewedBy string `json:"-"`
}
