package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"gruby/internal/models"
	"gruby/internal/repository"
)

type FavoriteStore interface {
	Add(ctx context.Context, userID, productID string) error
	Remove(ctx context.Context, userID, productID string) error
	ListByUser(ctx context.Context, userID string, page repository.Page) (*repository.PageResult[models.FavoriteItem], error)
}

type FavoriteProducts interface {
	FindByID(ctx context.Context, id string) (*models.Product, error)
	FindMany(ctx context.Context, ids []string) ([]models.Product, error)
}

type FavoriteHandler struct {
	favorites FavoriteStore
	products  FavoriteProducts
}

func NewFavoriteHandler(favorites FavoriteStore, products FavoriteProducts) *FavoriteHandler {
	return &FavoriteHandler{favorites: favorites, products: products}
}

// favoriteView pairs a favorite with its product; Product is nil once the product is gone.
type favoriteView struct {
	models.FavoriteItem
	Product *models.Product `json:"product"`
}

func (h *FavoriteHandler) ListFavorites(c *gin.Context) {
	page, err := h.favorites.ListByUser(c.Request.Context(), c.Param("id"), pageParams(c))
	if err != nil {
		respondError(c, err, "favorite")
		return
	}

	ids := make([]string, len(page.Items))
	for i, f := range page.Items {
		ids[i] = f.ProductID
	}
	products, err := h.products.FindMany(c.Request.Context(), ids)
	if err != nil {
		respondError(c, err, "product")
		return
	}
	byID := make(map[string]*models.Product, len(products))
	for i := range products {
		byID[products[i].ID.Hex()] = &products[i]
	}

	views := make([]favoriteView, len(page.Items))
	for i, f := range page.Items {
		views[i] = favoriteView{FavoriteItem: f, Product: byID[f.ProductID]}
	}
	c.JSON(http.StatusOK, repository.PageResult[favoriteView]{
		Items:      views,
		Total:      page.Total,
		Page:       page.Page,
		PageSize:   page.PageSize,
		TotalPages: page.TotalPages,
	})
}

func (h *FavoriteHandler) AddFavorite(c *gin.Context) {
	var req struct {
		ProductID string `json:"product_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	if _, err := h.products.FindByID(c.Request.Context(), req.ProductID); err != nil {
		respondError(c, err, "product")
		return
	}
	if err := h.favorites.Add(c.Request.Context(), c.Param("id"), req.ProductID); err != nil {
		respondError(c, err, "favorite")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "favorite added"})
}

func (h *FavoriteHandler) RemoveFavorite(c *gin.Context) {
	err := h.favorites.Remove(c.Request.Context(), c.Param("id"), c.Param("productId"))
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		respondError(c, err, "favorite")
		return
	}
	c.Status(http.StatusNoContent)
}
