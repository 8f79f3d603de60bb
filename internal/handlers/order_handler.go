package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"gruby/internal/models"
	"gruby/internal/repository"
)

type OrderStore interface {
	Create(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, id string) (*models.Order, error)
	ListByBuyer(ctx context.Context, buyerID string, page repository.Page) (*repository.PageResult[models.Order], error)
	ListByHomeCook(ctx context.Context, homeCookID, status string, page repository.Page) (*repository.PageResult[models.Order], error)
	UpdateStatus(ctx context.Context, id string, to models.OrderStatus) error
}

type ProductCatalog interface {
	FindMany(ctx context.Context, ids []string) ([]models.Product, error)
}

type OrderHandler struct {
	orders   OrderStore
	products ProductCatalog
}

func NewOrderHandler(orders OrderStore, products ProductCatalog) *OrderHandler {
	return &OrderHandler{orders: orders, products: products}
}

type orderLineRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,gt=0,lte=99"`
}

type orderRequest struct {
	BuyerID    string             `json:"buyer_id" binding:"required"`
	HomeCookID string             `json:"home_cook_id" binding:"required"`
	Lines      []orderLineRequest `json:"lines" binding:"required,min=1,max=50,dive"`
	PickupAt   *time.Time         `json:"pickup_at,omitempty"`
	Note       string             `json:"note,omitempty" binding:"max=500"`
	PaymentRef string             `json:"payment_ref,omitempty"`
}

type orderStatusRequest struct {
	Status models.OrderStatus `json:"status" binding:"required,order_status"`
}

// CreateOrder prices the order from the current catalog, never from the client.
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req orderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	ids := make([]string, len(req.Lines))
	for i, l := range req.Lines {
		ids[i] = l.ProductID
	}
	products, err := h.products.FindMany(c.Request.Context(), ids)
	if err != nil {
		respondError(c, err, "product")
		return
	}
	byID := make(map[string]models.Product, len(products))
	for _, p := range products {
		byID[p.ID.Hex()] = p
	}

	order := &models.Order{
		BuyerID:    req.BuyerID,
		HomeCookID: req.HomeCookID,
		PickupAt:   req.PickupAt,
		Note:       req.Note,
		PaymentRef: req.PaymentRef,
	}
	for _, l := range req.Lines {
		p, ok := byID[l.ProductID]
		if !ok || !p.IsActive {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("product %s is not available", l.ProductID)})
			return
		}
		if p.HomeCookID != req.HomeCookID {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("product %s belongs to another home cook", l.ProductID)})
			return
		}
		if order.Currency == "" {
			order.Currency = p.Currency
		} else if order.Currency != p.Currency {
			c.JSON(http.StatusBadRequest, gin.H{"error": "all products must share one currency"})
			return
		}
		order.Lines = append(order.Lines, models.OrderLine{
			ProductID:  l.ProductID,
			Name:       p.Name,
			Quantity:   l.Quantity,
			PriceCents: p.PriceCents,
		})
	}
	order.TotalCents = order.Total()

	if err := h.orders.Create(c.Request.Context(), order); err != nil {
		respondError(c, err, "order")
		return
	}
	c.JSON(http.StatusCreated, order)
}

func (h *OrderHandler) GetOrder(c *gin.Context) {
	order, err := h.orders.FindByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "order")
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) ListBuyerOrders(c *gin.Context) {
	result, err := h.orders.ListByBuyer(c.Request.Context(), c.Param("id"), pageParams(c))
	if err != nil {
		respondError(c, err, "order")
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *OrderHandler) ListHomeCookOrders(c *gin.Context) {
	status, ok := statusQuery(c, func(s string) bool { return models.OrderStatus(s).Valid() })
	if !ok {
		return
	}
	result, err := h.orders.ListByHomeCook(c.Request.Context(), c.Param("id"), status, pageParams(c))
	if err != nil {
		respondError(c, err, "order")
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *OrderHandler) UpdateOrderStatus(c *gin.Context) {
	var req orderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.orders.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status); err != nil {
		respondError(c, err, "order")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "order updated", "status": req.Status})
}
