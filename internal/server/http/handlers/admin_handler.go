package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/shopcore/internal/server/http/dto"
)

// AdminHandler manages privileged order lifecycle endpoints.
type AdminHandler struct {
	facade AdminFacade
	poller PollingRegistry
}

// NewAdminHandler constructs AdminHandler.
func NewAdminHandler(facade AdminFacade, poller PollingRegistry) *AdminHandler {
	return &AdminHandler{facade: facade, poller: poller}
}

// Deliver handles POST /api/admin/orders/:id/deliver.
func (h *AdminHandler) Deliver(c *gin.Context) {
	order, err := h.facade.MarkDelivered(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.OKMessage("order delivered", dto.ToOrderResponse(order)))
}

// Delete handles DELETE /api/admin/orders/:id.
func (h *AdminHandler) Delete(c *gin.Context) {
	orderID := c.Param("id")
	order, err := h.facade.DeleteOrder(c.Request.Context(), orderID, "admin")
	if err != nil {
		respondError(c, err)
		return
	}
	h.poller.StopPollingForOrder(orderID)
	c.JSON(http.StatusOK, dto.OKMessage("order deleted", dto.ToOrderResponse(order)))
}

// AppendNote handles POST /api/admin/orders/:id/notes.
func (h *AdminHandler) AppendNote(c *gin.Context) {
	var req dto.NoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.Error("note text required"))
		return
	}
	if err := h.facade.AppendNote(c.Request.Context(), c.Param("id"), "admin", req.Text); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.OKMessage("note added", nil))
}
