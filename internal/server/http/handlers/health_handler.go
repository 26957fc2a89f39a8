package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/shopcore/internal/server/http/dto"
)

// HealthHandler reports service readiness.
type HealthHandler struct {
	health HealthFacade
}

// NewHealthHandler constructs HealthHandler.
func NewHealthHandler(health HealthFacade) *HealthHandler {
	return &HealthHandler{health: health}
}

// Check handles GET /healthz.
func (h *HealthHandler) Check(c *gin.Context) {
	if err := h.health.HealthCheck(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, dto.Error("storage unavailable"))
		return
	}
	c.JSON(http.StatusOK, dto.OKMessage("ok", nil))
}
