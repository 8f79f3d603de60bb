package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"

	"gruby/internal/cache"
	"gruby/internal/models"
	"gruby/internal/repository"
)

const (
	productKeyPrefix  = "product:"
	productListPrefix = "products:list:"
	productTTL        = 5 * time.Minute
	productListTTL    = 2 * time.Minute
)

type ProductStore interface {
	Create(ctx context.Context, product *models.Product) error
	FindByID(ctx context.Context, id string) (*models.Product, error)
	FindAll(ctx context.Context, f repository.ProductFilter, page repository.Page) (*repository.PageResult[models.Product], error)
	Update(ctx context.Context, id string, update bson.M) error
	SoftDelete(ctx context.Context, id string) error
}

type HomeCookFinder interface {
	FindHomeCook(ctx context.Context, id string) (*models.User, error)
}

type ProductHandler struct {
	repo  ProductStore
	cooks HomeCookFinder
	cache cache.Store
}

func NewProductHandler(repo ProductStore, cooks HomeCookFinder, store cache.Store) *ProductHandler {
	return &ProductHandler{repo: repo, cooks: cooks, cache: store}
}

// CreateProduct lists a new product for an active home cook
// productCreateRequest lets is_active be omitted; new products are listed unless it is false.
type productCreateRequest struct {
	models.Product
	IsActive *bool `json:"is_active"`
}

func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var req productCreateRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	product := req.Product
	product.IsActive = req.IsActive == nil || *req.IsActive

	if _, err := h.cooks.FindHomeCook(c.Request.Context(), product.HomeCookID); err != nil {
		if errors.Is(err, repository.ErrNotFound) || errors.Is(err, repository.ErrInvalidID) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown home cook"})
			return
		}
		respondError(c, err, "home cook")
		return
	}

	if err := h.repo.Create(c.Request.Context(), &product); err != nil {
		respondError(c, err, "product")
		return
	}

	invalidate(c, h.cache, nil, productListPrefix)
	c.JSON(http.StatusCreated, product)
}

// GetProduct returns one product, cached
func (h *ProductHandler) GetProduct(c *gin.Context) {
	productID := c.Param("id")

	product, err := cached(c, h.cache, productKeyPrefix+productID, productTTL, func() (*models.Product, error) {
		return h.repo.FindByID(c.Request.Context(), productID)
	})
	if err != nil {
		respondError(c, err, "product")
		return
	}
	c.JSON(http.StatusOK, product)
}

// ListProducts lists products with pagination and filters, cached
func (h *ProductHandler) ListProducts(c *gin.Context) {
	filter, ok := productFilter(c)
	if !ok {
		return
	}
	h.list(c, filter)
}

// ListHomeCookProducts lists the active products of one home cook
func (h *ProductHandler) ListHomeCookProducts(c *gin.Context) {
	filter, ok := productFilter(c)
	if !ok {
		return
	}
	active := true
	filter.HomeCookID = c.Param("id")
	filter.Active = &active
	h.list(c, filter)
}

func (h *ProductHandler) list(c *gin.Context, filter repository.ProductFilter) {
	page := pageParams(c)

	active := "any"
	if filter.Active != nil {
		active = strconv.FormatBool(*filter.Active)
	}
	cacheKey := fmt.Sprintf(
		"%sp%d_s%d_cook:%s_cat:%s_q:%s_active:%s_price:%d-%d_sort:%s_%s_sum:%v",
		productListPrefix, page.Page, page.PageSize, filter.HomeCookID, filter.Category, filter.Query,
		active, filter.MinPrice, filter.MaxPrice, filter.SortBy, filter.SortOrder, filter.Summary,
	)

	result, err := cached(c, h.cache, cacheKey, productListTTL, func() (*repository.PageResult[models.Product], error) {
		return h.repo.FindAll(c.Request.Context(), filter, page)
	})
	if err != nil {
		respondError(c, err, "product")
		return
	}
	c.JSON(http.StatusOK, result)
}

// UpdateProduct applies a partial update
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	productID := c.Param("id")
	var update models.ProductUpdate

	if err := c.ShouldBindJSON(&update); err != nil {
		badRequest(c, err)
		return
	}

	fields := update.Fields()
	if len(fields) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no valid fields to update"})
		return
	}

	if err := h.repo.Update(c.Request.Context(), productID, fields); err != nil {
		respondError(c, err, "product")
		return
	}

	invalidate(c, h.cache, []string{productKeyPrefix + productID}, productListPrefix)
	c.JSON(http.StatusOK, gin.H{"message": "product updated"})
}

// DeleteProduct soft deletes a product
func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	productID := c.Param("id")

	if err := h.repo.SoftDelete(c.Request.Context(), productID); err != nil {
		respondError(c, err, "product")
		return
	}

	invalidate(c, h.cache, []string{productKeyPrefix + productID}, productListPrefix)
	c.JSON(http.StatusOK, gin.H{"message": "product deleted"})
}

func productFilter(c *gin.Context) (repository.ProductFilter, bool) {
	f := repository.ProductFilter{
		Category:  c.Query("category"),
		Query:     c.Query("q"),
		SortBy:    c.DefaultQuery("sort_by", "created_at"),
		SortOrder: c.DefaultQuery("sort_order", "desc"),
		Summary:   c.DefaultQuery("summary", "false") == "true",
	}
	if v := c.Query("active"); v != "" {
		active, err := strconv.ParseBool(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "active must be true or false"})
			return f, false
		}
		f.Active = &active
	}

	for param, dst := range map[string]*int{"min_price": &f.MinPrice, "max_price": &f.MaxPrice} {
		v := c.Query(param)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": param + " must be a non-negative integer"})
			return f, false
		}
		*dst = n
	}
	if f.MaxPrice > 0 && f.MinPrice > f.MaxPrice {
		c.JSON(http.StatusBadRequest, gin.H{"error": "min_price cannot exceed max_price"})
		return f, false
	}
	return f, true
}
