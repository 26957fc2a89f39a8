package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/polkiloo/shopcore/internal/domain/errors"
	"github.com/polkiloo/shopcore/internal/server/http/dto"
	"github.com/polkiloo/shopcore/internal/server/http/middleware"
)

// CurrentUserID extracts the authenticated user identifier from context.
func CurrentUserID(c *gin.Context) string {
	val, ok := c.Get(middleware.UserIDContextKey)
	if !ok {
		return ""
	}
	id, _ := val.(string)
	return id
}

// IsAdmin reports whether the request passed the admin API key check.
func IsAdmin(c *gin.Context) bool {
	val, ok := c.Get(middleware.AdminContextKey)
	if !ok {
		return false
	}
	admin, _ := val.(bool)
	return admin
}

// respondError maps domain errors onto the response envelope. Idempotent
// outcomes are handled by the callers before reaching here.
func respondError(c *gin.Context, err error) {
	var stockErr domainErrors.InsufficientStockError
	switch {
	case errors.Is(err, domainErrors.ErrNotFound):
		c.JSON(http.StatusNotFound, dto.Error("order not found"))
	case errors.Is(err, domainErrors.ErrNotAuthenticated):
		c.JSON(http.StatusUnauthorized, dto.Error("authentication required"))
	case errors.Is(err, domainErrors.ErrInvalidOrder):
		c.JSON(http.StatusBadRequest, dto.Error(err.Error()))
	case errors.Is(err, domainErrors.ErrOrderNotPaid):
		c.JSON(http.StatusBadRequest, dto.Error("order is not paid"))
	case errors.Is(err, domainErrors.ErrOrderLocked):
		c.JSON(http.StatusConflict, dto.Error("paid undelivered order cannot be deleted"))
	case errors.Is(err, domainErrors.ErrReconcileBusy):
		c.JSON(http.StatusConflict, dto.Error("payment confirmation already in progress"))
	case errors.As(err, &stockErr):
		c.JSON(http.StatusConflict, dto.Error(stockErr.Error()))
	default:
		c.JSON(http.StatusInternalServerError, dto.Error("internal error"))
	}
}
