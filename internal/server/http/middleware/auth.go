package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	pkgAuth "github.com/polkiloo/shopcore/internal/pkg/auth"
	"github.com/polkiloo/shopcore/internal/server/http/dto"
)

const (
	// UserIDContextKey is a gin context key for the authenticated user identifier.
	UserIDContextKey = "userID"
	// AdminContextKey marks requests that passed the admin API key check.
	AdminContextKey = "isAdmin"

	userIDHeader = "X-User-Id"
	apiKeyHeader = "X-Api-Key"
)

// UserRequired reads the user identity propagated by the auth gateway.
// Identity verification happens upstream; an absent header means the request
// never passed authentication.
func UserRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := strings.TrimSpace(c.GetHeader(userIDHeader))
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.Error("authentication required"))
			return
		}
		c.Set(UserIDContextKey, userID)
		c.Next()
	}
}

// AdminRequired checks the admin API key against the configured bcrypt hash.
func AdminRequired(apiKeyHash string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if apiKeyHash == "" {
			c.AbortWithStatusJSON(http.StatusForbidden, dto.Error("admin access is not configured"))
			return
		}
		key := strings.TrimSpace(c.GetHeader(apiKeyHeader))
		if key == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.Error("api key required"))
			return
		}
		if err := pkgAuth.VerifyKey(apiKeyHash, key); err != nil {
			c.AbortWithStatusJSON(http.StatusForbidden, dto.Error("invalid api key"))
			return
		}
		c.Set(AdminContextKey, true)
		c.Next()
	}
}
