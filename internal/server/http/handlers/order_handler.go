package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/shopcore/internal/server/http/dto"
)

// OrderHandler manages order creation and retrieval endpoints.
type OrderHandler struct {
	facade OrderFacade
}

// NewOrderHandler constructs OrderHandler.
func NewOrderHandler(facade OrderFacade) *OrderHandler {
	return &OrderHandler{facade: facade}
}

// Create handles POST /api/orders.
func (h *OrderHandler) Create(c *gin.Context) {
	var req dto.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.Error("malformed order payload"))
		return
	}

	order, err := h.facade.CreateOrder(c.Request.Context(), CurrentUserID(c), req.Cart())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.OKMessage("order created", dto.ToOrderResponse(order)))
}

// Get handles GET /api/orders/:id. Users see only their own orders; admin
// requests see any order.
func (h *OrderHandler) Get(c *gin.Context) {
	order, err := h.facade.Order(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if !IsAdmin(c) && order.UserID != CurrentUserID(c) {
		c.JSON(http.StatusNotFound, dto.Error("order not found"))
		return
	}

	c.JSON(http.StatusOK, dto.OK(dto.ToOrderResponse(order)))
}

// List handles GET /api/orders.
func (h *OrderHandler) List(c *gin.Context) {
	orders, err := h.facade.OrdersByUser(c.Request.Context(), CurrentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]dto.OrderResponse, 0, len(orders))
	for i := range orders {
		response = append(response, dto.ToOrderResponse(&orders[i]))
	}
	c.JSON(http.StatusOK, dto.OK(response))
}
