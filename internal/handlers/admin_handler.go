package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"gruby/internal/cache"
	"gruby/internal/embedding"
	"gruby/internal/middleware"
	"gruby/internal/models"
	"gruby/internal/notify"
	"gruby/internal/repository"
	"gruby/internal/search"
)

type ContentModerator interface {
	List(ctx context.Context, status, kind string, page repository.Page) (*repository.PageResult[models.ContentItem], error)
	UpdateStatus(ctx context.Context, id string, change models.StatusChange) error
}

type ReportQueue interface {
	List(ctx context.Context, status string, page repository.Page) (*repository.PageResult[models.Report], error)
	UpdateStatus(ctx context.Context, id string, change models.StatusChange) error
}

type FeedbackQueue interface {
	List(ctx context.Context, status string, page repository.Page) (*repository.PageResult[models.FeedbackTicket], error)
	UpdateStatus(ctx context.Context, id string, change models.StatusChange) error
}

type ApplicationQueue interface {
	FindByID(ctx context.Context, id string) (*models.CreatorApplication, error)
	List(ctx context.Context, status string, page repository.Page) (*repository.PageResult[models.CreatorApplication], error)
	UpdateStatus(ctx context.Context, id string, change models.StatusChange) error
}

type PostingGranter interface {
	GrantPosting(ctx context.Context, id string) error
}

type ContentIndex interface {
	Search(ctx context.Context, q search.Query) ([]search.Result, error)
	IndexByID(ctx context.Context, id string) (*models.Embedding, error)
	Remove(ctx context.Context, sourceID string) error
}

type NotificationComposer interface {
	Send(ctx context.Context, d notify.Draft) (*models.Notification, error)
	List(ctx context.Context, page repository.Page) (*repository.PageResult[models.Notification], error)
}

type AdminDeps struct {
	Content       ContentModerator
	Reports       ReportQueue
	Feedback      FeedbackQueue
	Applications  ApplicationQueue
	Users         PostingGranter
	Index         ContentIndex
	Notifications NotificationComposer
	Cache         cache.Store
}

// AdminHandler serves the moderation console. Every route sits behind admin auth.
type AdminHandler struct {
	deps   AdminDeps
	logger *zap.Logger
}

func NewAdminHandler(deps AdminDeps, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{deps: deps, logger: logger}
}

type contentStatusRequest struct {
	Status models.ModerationStatus `json:"status" binding:"required,moderation_status"`
	Note   string                  `json:"note,omitempty" binding:"max=1000"`
}

type reportStatusRequest struct {
	Status models.ReportStatus `json:"status" binding:"required,report_status"`
}

type ticketStatusRequest struct {
	Status models.TicketStatus `json:"status" binding:"required,ticket_status"`
}

type reviewRequest struct {
	Note string `json:"note,omitempty" binding:"max=1000"`
}

func (h *AdminHandler) ListContent(c *gin.Context) {
	status, ok := statusQuery(c, func(s string) bool { return models.ModerationStatus(s).Valid() })
	if !ok {
		return
	}
	result, err := h.deps.Content.List(c.Request.Context(), status, c.Query("kind"), pageParams(c))
	if err != nil {
		respondError(c, err, "content")
		return
	}
	c.JSON(http.StatusOK, result)
}

// UpdateContentStatus applies a moderation decision and keeps the search
// index in step: approved content is embedded, flagged or removed content
// is dropped. Index failures never undo the decision.
func (h *AdminHandler) UpdateContentStatus(c *gin.Context) {
	id := c.Param("id")
	var req contentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	change := models.StatusChange{
		Status:     string(req.Status),
		Note:       req.Note,
		ReviewedBy: middleware.AdminID(c),
	}
	if err := h.deps.Content.UpdateStatus(c.Request.Context(), id, change); err != nil {
		respondError(c, err, "content")
		return
	}

	ctx := context.WithoutCancel(c.Request.Context())
	var err error
	switch req.Status {
	case models.ModerationApproved:
		_, err = h.deps.Index.IndexByID(ctx, id)
	case models.ModerationFlagged, models.ModerationRemoved:
		err = h.deps.Index.Remove(ctx, id)
	}
	if err != nil && !errors.Is(err, embedding.ErrDisabled) {
		h.logger.Warn("search index not updated",
			zap.String("content_id", id),
			zap.String("status", string(req.Status)),
			zap.Error(err),
		)
	}

	c.JSON(http.StatusOK, gin.H{"message": "content updated", "status": req.Status})
}

func (h *AdminHandler) ListReports(c *gin.Context) {
	status, ok := statusQuery(c, func(s string) bool { return models.ReportStatus(s).Valid() })
	if !ok {
		return
	}
	result, err := h.deps.Reports.List(c.Request.Context(), status, pageParams(c))
	if err != nil {
		respondError(c, err, "report")
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *AdminHandler) UpdateReportStatus(c *gin.Context) {
	var req reportStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	change := models.StatusChange{Status: string(req.Status), ReviewedBy: middleware.AdminID(c)}
	if err := h.deps.Reports.UpdateStatus(c.Request.Context(), c.Param("id"), change); err != nil {
		respondError(c, err, "report")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "report updated", "status": req.Status})
}

func (h *AdminHandler) ListFeedback(c *gin.Context) {
	status, ok := statusQuery(c, func(s string) bool { return models.TicketStatus(s).Valid() })
	if !ok {
		return
	}
	result, err := h.deps.Feedback.List(c.Request.Context(), status, pageParams(c))
	if err != nil {
		respondError(c, err, "feedback")
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *AdminHandler) UpdateFeedbackStatus(c *gin.Context) {
	var req ticketStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	change := models.StatusChange{Status: string(req.Status), ReviewedBy: middleware.AdminID(c)}
	if err := h.deps.Feedback.UpdateStatus(c.Request.Context(), c.Param("id"), change); err != nil {
		respondError(c, err, "feedback")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "feedback updated", "status": req.Status})
}

func (h *AdminHandler) ListApplications(c *gin.Context) {
	status, ok := statusQuery(c, func(s string) bool { return models.ApplicationStatus(s).Valid() })
	if !ok {
		return
	}
	result, err := h.deps.Applications.List(c.Request.Context(), status, pageParams(c))
	if err != nil {
		respondError(c, err, "application")
		return
	}
	c.JSON(http.StatusOK, result)
}

// ApproveApplication marks the application approved and lets the applicant post.
func (h *AdminHandler) ApproveApplication(c *gin.Context) {
	h.reviewApplication(c, models.ApplicationApproved)
}

func (h *AdminHandler) RejectApplication(c *gin.Context) {
	h.reviewApplication(c, models.ApplicationRejected)
}

func (h *AdminHandler) reviewApplication(c *gin.Context, to models.ApplicationStatus) {
	id := c.Param("id")
	var req reviewRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
	}

	app, err := h.deps.Applications.FindByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "application")
		return
	}

	if !app.Status.CanTransitionTo(to) {
		respondError(c, models.ErrInvalidTransition, "application")
		return
	}

	// Grant before the transition so a failed grant leaves the application pending.
	if to == models.ApplicationApproved {
		if err := h.deps.Users.GrantPosting(c.Request.Context(), app.UserID); err != nil {
			h.logger.Error("grant posting failed",
				zap.String("application_id", id),
				zap.String("user_id", app.UserID),
				zap.Error(err),
			)
			respondError(c, err, "user")
			return
		}
		invalidate(c, h.deps.Cache, []string{homeCookKeyPrefix + app.UserID}, homeCookListPrefix)
	}

	change := models.StatusChange{Status: string(to), Note: req.Note, ReviewedBy: middleware.AdminID(c)}
	if err := h.deps.Applications.UpdateStatus(c.Request.Context(), id, change); err != nil {
		respondError(c, err, "application")
		return
	}

	app.Status = to
	app.ReviewedBy = change.ReviewedBy
	app.ReviewNote = change.Note
	c.JSON(http.StatusOK, app)
}

func (h *AdminHandler) ListNotifications(c *gin.Context) {
	result, err := h.deps.Notifications.List(c.Request.Context(), pageParams(c))
	if err != nil {
		respondError(c, err, "notification")
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *AdminHandler) SendNotification(c *gin.Context) {
	var draft notify.Draft
	if err := c.ShouldBindJSON(&draft); err != nil {
		badRequest(c, err)
		return
	}
	draft.CreatedBy = middleware.AdminID(c)

	n, err := h.deps.Notifications.Send(c.Request.Context(), draft)
	if err != nil {
		respondError(c, err, "notification")
		return
	}
	c.JSON(http.StatusCreated, n)
}

func (h *AdminHandler) VectorSearch(c *gin.Context) {
	var q search.Query
	if err := c.ShouldBindJSON(&q); err != nil {
		badRequest(c, err)
		return
	}
	results, err := h.deps.Index.Search(c.Request.Context(), q)
	if err != nil {
		respondError(c, err, "content")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": results})
}

func (h *AdminHandler) IndexContent(c *gin.Context) {
	e, err := h.deps.Index.IndexByID(c.Request.Context(), c.Param("contentId"))
	if err != nil {
		respondError(c, err, "content")
		return
	}
	c.JSON(http.StatusOK, e)
}
