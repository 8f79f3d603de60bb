package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"gruby/internal/models"
	"gruby/internal/push"
	"gruby/internal/repository"
)

var ErrInvalidDraft = errors.New("invalid notification")

type Store interface {
	Create(ctx context.Context, n *models.Notification) error
	MarkResult(ctx context.Context, n *models.Notification) error
	List(ctx context.Context, page repository.Page) (*repository.PageResult[models.Notification], error)
}

type Audience interface {
	PushTokens(ctx context.Context, audience string, userIDs []string) ([]string, error)
}

type Sender interface {
	Send(ctx context.Context, tokens []string, msg push.Message) (push.Result, error)
}

// Draft is a notification composed in the admin console.
type Draft struct {
	Title     string                 `json:"title" binding:"required,max=100"`
	Body      string                 `json:"body" binding:"required,max=1000"`
	Audience  string                 `json:"audience" binding:"required,oneof=all home_cooks users"`
	UserIDs   []string               `json:"user_ids,omitempty" binding:"required_if=Audience users"`
	Data      map[string]interface{} `json:"data,omitempty"`
	CreatedBy string                 `json:"-"`
}

func (d Draft) validate() error {
	if strings.TrimSpace(d.Title) == "" || strings.TrimSpace(d.Body) == "" {
		return fmt.Errorf("%w: title and body are required", ErrInvalidDraft)
	}
	switch d.Audience {
	case models.AudienceAll, models.AudienceHomeCooks:
	case models.AudienceUsers:
		if len(d.UserIDs) == 0 {
			return fmt.Errorf("%w: user_ids are required for audience %q", ErrInvalidDraft, d.Audience)
		}
	default:
		return fmt.Errorf("%w: unknown audience %q", ErrInvalidDraft, d.Audience)
	}
	return nil
}

// Composer records and fans out admin notifications.
type Composer struct {
	store    Store
	audience Audience
	sender   Sender
	logger   *zap.Logger
}

func NewComposer(store Store, audience Audience, sender Sender, logger *zap.Logger) *Composer {
	return &Composer{store: store, audience: audience, sender: sender, logger: logger}
}

// Send persists the notification, delivers it and records the outcome.
// Delivery problems end up on the returned record, not in the error.
func (c *Composer) Send(ctx context.Context, d Draft) (*models.Notification, error) {
	if err := d.validate(); err != nil {
		return nil, err
	}

	tokens, err := c.audience.PushTokens(ctx, d.Audience, d.UserIDs)
	if err != nil {
		return nil, err
	}

	n := &models.Notification{
		BatchID:    uuid.NewString(),
		Title:      d.Title,
		Body:       d.Body,
		Audience:   d.Audience,
		UserIDs:    d.UserIDs,
		Data:       d.Data,
		Recipients: len(tokens),
		CreatedBy:  d.CreatedBy,
	}
	if err := c.store.Create(ctx, n); err != nil {
		return nil, err
	}

	log := c.logger.With(zap.String("batch_id", n.BatchID), zap.String("audience", n.Audience))

	if len(tokens) == 0 {
		n.Status = models.NotificationFailed
		n.Error = "no recipients with push tokens"
	} else {
		res, sendErr := c.sender.Send(ctx, tokens, push.Message{
			Title: d.Title,
			Body:  d.Body,
			Data:  d.Data,
			Sound: "default",
		})
		n.Delivered, n.Failed, n.Skipped = res.Delivered, res.Failed, res.Skipped
		switch {
		case res.Delivered > 0:
			n.Status = models.NotificationSent
		default:
			n.Status = models.NotificationFailed
			n.Error = "no notifications were delivered"
		}
		if sendErr != nil {
			n.Error = sendErr.Error()
			log.Warn("push delivery errors", zap.Error(sendErr))
		}
	}

	// record the outcome even if the caller has gone away
	if err := c.store.MarkResult(context.WithoutCancel(ctx), n); err != nil {
		log.Error("failed to record notification result", zap.Error(err))
		return n, err
	}

	log.Info("notification sent",
		zap.String("status", string(n.Status)),
		zap.Int("recipients", n.Recipients),
		zap.Int("delivered", n.Delivered),
		zap.Int("failed", n.Failed),
	)
	return n, nil
}

func (c *Composer) List(ctx context.Context, page repository.Page) (*repository.PageResult[models.Notification], error) {
	return c.store.List(ctx, page)
}
