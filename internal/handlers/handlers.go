package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/sony/gobreaker"

	"gruby/internal/cache"
	"gruby/internal/embedding"
	"gruby/internal/models"
	"gruby/internal/notify"
	"gruby/internal/repository"
	"gruby/internal/search"
	"gruby/internal/share"
)

var registerOnce sync.Once

// RegisterValidators adds the status enum validators used in binding tags.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		enums := map[string]func(string) bool{
			"report_status":      func(s string) bool { return models.ReportStatus(s).Valid() },
			"moderation_status":  func(s string) bool { return models.ModerationStatus(s).Valid() },
			"application_status": func(s string) bool { return models.ApplicationStatus(s).Valid() },
			"ticket_status":      func(s string) bool { return models.TicketStatus(s).Valid() },
			"order_status":       func(s string) bool { return models.OrderStatus(s).Valid() },
		}
		for tag, valid := range enums {
			valid := valid
			_ = v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
				return valid(fl.Field().String())
			})
		}
	})
}

// respondError maps domain errors to a status code and a {"error": ...} body.
// what names the resource in not-found messages.
func respondError(c *gin.Context, err error, what string) {
	status, msg := http.StatusInternalServerError, "Internal server error"

	switch {
	case errors.Is(err, repository.ErrNotFound):
		status, msg = http.StatusNotFound, what+" not found"
	case errors.Is(err, repository.ErrInvalidID):
		status, msg = http.StatusBadRequest, "invalid id"
	case errors.Is(err, models.ErrInvalidTransition):
		status, msg = http.StatusConflict, err.Error()
	case errors.Is(err, search.ErrNotApproved):
		status, msg = http.StatusConflict, err.Error()
	case errors.Is(err, repository.ErrDuplicate):
		status, msg = http.StatusConflict, what+" already exists"
	case errors.Is(err, search.ErrEmptyQuery),
		errors.Is(err, notify.ErrInvalidDraft),
		errors.Is(err, share.ErrUnknownKind):
		status, msg = http.StatusBadRequest, err.Error()
	case errors.Is(err, embedding.ErrDisabled), errors.Is(err, gobreaker.ErrOpenState):
		status, msg = http.StatusServiceUnavailable, "embedding service unavailable"
	}

	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	c.JSON(status, gin.H{"error": msg})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

func pageParams(c *gin.Context) repository.Page {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", strconv.Itoa(repository.DefaultPageSize)))
	return repository.Page{Page: page, PageSize: pageSize}
}

// statusQuery reads an optional ?status= filter, rejecting values outside valid.
func statusQuery(c *gin.Context, valid func(string) bool) (string, bool) {
	status := c.Query("status")
	if status != "" && !valid(status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid status %q", status)})
		return "", false
	}
	return status, true
}

// cached serves key from store, falling back to load and filling the cache.
// Cache failures only cost a reload.
func cached[T any](c *gin.Context, store cache.Store, key string, ttl time.Duration, load func() (T, error)) (T, error) {
	ctx := c.Request.Context()

	var value T
	if found, err := store.Get(ctx, key, &value); err == nil && found {
		return value, nil
	}

	value, err := load()
	if err != nil {
		return value, err
	}
	if err := store.Set(ctx, key, value, ttl); err != nil {
		_ = c.Error(err)
	}
	return value, nil
}

func invalidate(c *gin.Context, store cache.Store, keys []string, prefixes ...string) {
	ctx := c.Request.Context()
	if len(keys) > 0 {
		if err := store.Delete(ctx, keys...); err != nil {
			_ = c.Error(err)
		}
	}
	for _, p := range prefixes {
		if err := store.DeleteByPrefix(ctx, p); err != nil {
			_ = c.Error(err)
		}
	}
}

// Health reports liveness.
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
