package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"gruby/internal/models"
)

type ReportRepository struct {
	collection *mongo.Collection
}

func NewReportRepository(collection *mongo.Collection) *ReportRepository {
	return &ReportRepository{collection: collection}
}

// Create files a new pending report.
func (r *ReportRepository) Create(ctx context.Context, report *models.Report) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	now := time.Now().UTC()
	report.ID = primitive.NewObjectID()
	report.Status = models.ReportPending
	report.CreatedAt = now
	report.UpdatedAt = now
	if _, err := r.collection.InsertOne(ctx, report); err != nil {
		return fmt.Errorf("insert report: %w", err)
	}
	return nil
}

func (r *ReportRepository) List(ctx context.Context, status string, page Page) (*PageResult[models.Report], error) {
	return findPage[models.Report](ctx, r.collection, statusFilter(status), newestFirst, page, nil)
}

func (r *ReportRepository) UpdateStatus(ctx context.Context, id string, change models.StatusChange) error {
	to := models.ReportStatus(change.Status)
	return transition(ctx, r.collection, id, to.Sources(), change.Status, bson.M{"reviewed_by": change.ReviewedBy})
}

type FeedbackRepository struct {
	collection *mongo.Collection
}

func NewFeedbackRepository(collection *mongo.Collection) *FeedbackRepository {
	return &FeedbackRepository{collection: collection}
}

func (r *FeedbackRepository) Create(ctx context.Context, ticket *models.FeedbackTicket) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	now := time.Now().UTC()
	ticket.ID = primitive.NewObjectID()
	ticket.Status = models.TicketOpen
	ticket.CreatedAt = now
	ticket.UpdatedAt = now
	if _, err := r.collection.InsertOne(ctx, ticket); err != nil {
		return fmt.Errorf("insert feedback: %w", err)
	}
	return nil
}

func (r *FeedbackRepository) List(ctx context.Context, status string, page Page) (*PageResult[models.FeedbackTicket], error) {
	return findPage[models.FeedbackTicket](ctx, r.collection, statusFilter(status), newestFirst, page, nil)
}

func (r *FeedbackRepository) UpdateStatus(ctx context.Context, id string, change models.StatusChange) error {
	to := models.TicketStatus(change.Status)
	return transition(ctx, r.collection, id, to.Sources(), change.Status, nil)
}

type CreatorApplicationRepository struct {
	collection *mongo.Collection
}

func NewCreatorApplicationRepository(collection *mongo.Collection) *CreatorApplicationRepository {
	return &CreatorApplicationRepository{collection: collection}
}

// Create submits an application. A user may only have one pending application.
func (r *CreatorApplicationRepository) Create(ctx context.Context, app *models.CreatorApplication) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	n, err := r.collection.CountDocuments(ctx, bson.M{"user_id": app.UserID, "status": models.ApplicationPending})
	if err != nil {
		return fmt.Errorf("count applications: %w", err)
	}
	if n > 0 {
		return ErrDuplicate
	}

	now := time.Now().UTC()
	app.ID = primitive.NewObjectID()
	app.Status = models.ApplicationPending
	app.CreatedAt = now
	app.UpdatedAt = now
	if _, err := r.collection.InsertOne(ctx, app); err != nil {
		return fmt.Errorf("insert application: %w", err)
	}
	return nil
}

func (r *CreatorApplicationRepository) FindByID(ctx context.Context, id string) (*models.CreatorApplication, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	return findOne[models.CreatorApplication](ctx, r.collection, bson.M{"_id": oid})
}

func (r *CreatorApplicationRepository) List(ctx context.Context, status string, page Page) (*PageResult[models.CreatorApplication], error) {
	return findPage[models.CreatorApplication](ctx, r.collection, statusFilter(status), newestFirst, page, nil)
}

func (r *CreatorApplicationRepository) UpdateStatus(ctx context.Context, id string, change models.StatusChange) error {
	to := models.ApplicationStatus(change.Status)
	return transition(ctx, r.collection, id, to.Sources(), change.Status, bson.M{
		"reviewed_by": change.ReviewedBy,
		"review_note": change.Note,
	})
}
