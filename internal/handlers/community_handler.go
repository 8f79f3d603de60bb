package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"gruby/internal/models"
	"gruby/internal/repository"
)

type ApplicationSubmitter interface {
	Create(ctx context.Context, app *models.CreatorApplication) error
}

type GatheringStore interface {
	Create(ctx context.Context, g *models.Gathering) error
	FindByID(ctx context.Context, id string) (*models.Gathering, error)
	ListUpcoming(ctx context.Context, page repository.Page) (*repository.PageResult[models.Gathering], error)
}

type ReportSubmitter interface {
	Create(ctx context.Context, report *models.Report) error
}

type FeedbackSubmitter interface {
	Create(ctx context.Context, ticket *models.FeedbackTicket) error
}

// CommunityHandler takes user submissions that end up in the admin queues.
type CommunityHandler struct {
	applications ApplicationSubmitter
	gatherings   GatheringStore
	reports      ReportSubmitter
	feedback     FeedbackSubmitter
}

func NewCommunityHandler(applications ApplicationSubmitter, gatherings GatheringStore, reports ReportSubmitter, feedback FeedbackSubmitter) *CommunityHandler {
	return &CommunityHandler{
		applications: applications,
		gatherings:   gatherings,
		reports:      reports,
		feedback:     feedback,
	}
}

func (h *CommunityHandler) SubmitApplication(c *gin.Context) {
	var app models.CreatorApplication
	if err := c.ShouldBindJSON(&app); err != nil {
		badRequest(c, err)
		return
	}

	err := h.applications.Create(c.Request.Context(), &app)
	if errors.Is(err, repository.ErrDuplicate) {
		c.JSON(http.StatusConflict, gin.H{"error": "an application is already pending"})
		return
	}
	if err != nil {
		respondError(c, err, "application")
		return
	}
	c.JSON(http.StatusCreated, app)
}

func (h *CommunityHandler) CreateGathering(c *gin.Context) {
	var g models.Gathering
	if err := c.ShouldBindJSON(&g); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.gatherings.Create(c.Request.Context(), &g); err != nil {
		respondError(c, err, "gathering")
		return
	}
	c.JSON(http.StatusCreated, g)
}

func (h *CommunityHandler) ListGatherings(c *gin.Context) {
	result, err := h.gatherings.ListUpcoming(c.Request.Context(), pageParams(c))
	if err != nil {
		respondError(c, err, "gathering")
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *CommunityHandler) GetGathering(c *gin.Context) {
	g, err := h.gatherings.FindByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "gathering")
		return
	}
	c.JSON(http.StatusOK, g)
}

func (h *CommunityHandler) SubmitReport(c *gin.Context) {
	var report models.Report
	if err := c.ShouldBindJSON(&report); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.reports.Create(c.Request.Context(), &report); err != nil {
		respondError(c, err, "report")
		return
	}
	c.JSON(http.StatusCreated, report)
}

func (h *CommunityHandler) SubmitFeedback(c *gin.Context) {
	var ticket models.FeedbackTicket
	if err := c.ShouldBindJSON(&ticket); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.feedback.Create(c.Request.Context(), &ticket); err != nil {
		respondError(c, err, "feedback")
		return
	}
	c.JSON(http.StatusCreated, ticket)
}
