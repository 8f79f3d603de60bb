package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"

	"gruby/internal/cache"
	"gruby/internal/models"
	"gruby/internal/push"
	"gruby/internal/repository"
)

const (
	homeCookKeyPrefix  = "home-cook:"
	homeCookListPrefix = "home-cooks:list:"
	homeCookTTL        = 5 * time.Minute
)

type UserStore interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindHomeCook(ctx context.Context, id string) (*models.User, error)
	ListHomeCooks(ctx context.Context, f repository.HomeCookFilter, page repository.Page) (*repository.PageResult[models.User], error)
	UpdateProfile(ctx context.Context, id string, set bson.M) (*models.User, error)
}

// UserHandler serves the home cook directory and profile screens.
type UserHandler struct {
	users UserStore
	cache cache.Store
}

func NewUserHandler(users UserStore, store cache.Store) *UserHandler {
	return &UserHandler{users: users, cache: store}
}

func (h *UserHandler) ListHomeCooks(c *gin.Context) {
	page := pageParams(c)
	filter := repository.HomeCookFilter{
		Query:   c.Query("q"),
		City:    c.Query("city"),
		Cuisine: c.Query("cuisine"),
	}
	key := fmt.Sprintf("%sp%d_s%d_q:%s_city:%s_cuisine:%s",
		homeCookListPrefix, page.Page, page.PageSize, filter.Query, filter.City, filter.Cuisine)

	result, err := cached(c, h.cache, key, homeCookTTL, func() (*repository.PageResult[models.User], error) {
		return h.users.ListHomeCooks(c.Request.Context(), filter, page)
	})
	if err != nil {
		respondError(c, err, "home cook")
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *UserHandler) GetHomeCook(c *gin.Context) {
	id := c.Param("id")
	cook, err := cached(c, h.cache, homeCookKeyPrefix+id, homeCookTTL, func() (*models.User, error) {
		return h.users.FindHomeCook(c.Request.Context(), id)
	})
	if err != nil {
		respondError(c, err, "home cook")
		return
	}
	c.JSON(http.StatusOK, cook)
}

func (h *UserHandler) GetProfile(c *gin.Context) {
	user, err := h.users.FindByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "profile")
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) UpdateProfile(c *gin.Context) {
	id := c.Param("id")
	var update models.ProfileUpdate

	if err := c.ShouldBindJSON(&update); err != nil {
		badRequest(c, err)
		return
	}
	if update.PushToken != nil && *update.PushToken != "" && !push.ValidToken(*update.PushToken) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid push token"})
		return
	}

	fields := update.Fields()
	if len(fields) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no valid fields to update"})
		return
	}

	user, err := h.users.UpdateProfile(c.Request.Context(), id, fields)
	if errors.Is(err, repository.ErrDuplicate) {
		c.JSON(http.StatusConflict, gin.H{"error": "username already taken"})
		return
	}
	if err != nil {
		respondError(c, err, "profile")
		return
	}

	invalidate(c, h.cache, []string{homeCookKeyPrefix + id}, homeCookListPrefix)
	c.JSON(http.StatusOK, user)
}
