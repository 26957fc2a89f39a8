package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/shopcore/internal/domain/model"
	"github.com/polkiloo/shopcore/internal/server/http/dto"
)

// PaymentHandler manages gateway payment initiation and manual confirmation.
type PaymentHandler struct {
	facade CommerceFacade
	poller PollingRegistry
}

// NewPaymentHandler constructs PaymentHandler.
func NewPaymentHandler(facade CommerceFacade, poller PollingRegistry) *PaymentHandler {
	return &PaymentHandler{facade: facade, poller: poller}
}

// InitiatePayWay handles POST /api/orders/:id/payway. It records the gateway
// transaction id and registers a polling job that converges the payment
// state once the gateway settles.
func (h *PaymentHandler) InitiatePayWay(c *gin.Context) {
	var req dto.InitiatePayWayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.Error("transaction id required"))
		return
	}

	orderID := c.Param("id")
	order, err := h.facade.Order(c.Request.Context(), orderID)
	if err != nil {
		respondError(c, err)
		return
	}
	if !IsAdmin(c) && order.UserID != CurrentUserID(c) {
		c.JSON(http.StatusNotFound, dto.Error("order not found"))
		return
	}
	if order.IsPaid {
		c.JSON(http.StatusOK, dto.OKMessage("order already paid", dto.ToOrderResponse(order)))
		return
	}

	order, err = h.facade.InitiateGatewayPayment(c.Request.Context(), orderID, req.TransactionID)
	if err != nil {
		respondError(c, err)
		return
	}
	h.poller.StartPollingForOrder(orderID, req.TransactionID)

	c.JSON(http.StatusOK, dto.OKMessage("gateway payment initiated", dto.ToOrderResponse(order)))
}

// ConfirmPayment handles POST /api/admin/orders/:id/pay. A repeated
// confirmation is reported as success without re-running side effects.
func (h *PaymentHandler) ConfirmPayment(c *gin.Context) {
	var req dto.PaymentConfirmationRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		c.JSON(http.StatusBadRequest, dto.Error("malformed payment payload"))
		return
	}

	orderID := c.Param("id")
	result := &model.PaymentResult{ID: req.PaymentID, Status: req.Status, PayerEmail: req.PayerEmail}

	order, alreadyPaid, err := h.facade.ConfirmPayment(c.Request.Context(), orderID, result, model.StatusSourceManual)
	if err != nil {
		respondError(c, err)
		return
	}

	// Manual confirmation makes any outstanding polling job moot.
	h.poller.StopPollingForOrder(orderID)

	if alreadyPaid {
		c.JSON(http.StatusOK, dto.OKMessage("order already paid", dto.ToOrderResponse(order)))
		return
	}
	c.JSON(http.StatusOK, dto.OKMessage("order paid", dto.ToOrderResponse(order)))
}
