package server

import (
	"net/http"
	"strings"
	"time"

	"auction-house/internal/auth"
	"auction-house/internal/models"
	"auction-house/utils"

	"github.com/gin-gonic/gin"
)

// TokenVerifier resolves a bearer token into a caller identity
type TokenVerifier interface {
	Verify(token string) (auth.Identity, error)
}

// RequestLoggerMiddleware logs incoming requests with timing
func RequestLoggerMiddleware(c *gin.Context) {
	start := time.Now()

	c.Next() // process request

	utils.Info("HTTP Request", map[string]any{
		"method":  c.Request.Method,
		"path":    c.Request.URL.Path,
		"status":  c.Writer.Status(),
		"latency": time.Since(start).String(),
	})
}

// AuthRequired rejects requests without a valid bearer token and stores the
// caller's identity in the request context.
func AuthRequired(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"status":  http.StatusUnauthorized,
				"message": "authentication required",
				"error":   "missing bearer token",
			})
			return
		}

		identity, err := verifier.Verify(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"status":  http.StatusUnauthorized,
				"message": "authentication required",
				"error":   "invalid or expired token",
			})
			return
		}

		c.Set("user_id", identity.UserID)
		c.Set("user_role", string(identity.Role))
		c.Next()
	}
}

// AdminOnly rejects authenticated callers without the admin role
func AdminOnly(c *gin.Context) {
	if models.Role(c.GetString("user_role")) != models.RoleAdmin {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"status":  http.StatusForbidden,
			"message": "admin access required",
			"error":   "insufficient permissions",
		})
		return
	}
	c.Next()
}
