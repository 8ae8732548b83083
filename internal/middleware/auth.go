package middleware

import (
	"net/http"
	"strings"

	"replydesk/internal/identity_client"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// UserIDKey is the gin context key under which the authenticated user id is
// stored.
const UserIDKey = "user_id"

// AuthMiddleware authenticates requests by introspecting the bearer
// credential against the identity provider. devUserID, when non-empty,
// substitutes for a missing or failed introspection; it must only be set in
// non-production configurations.
func AuthMiddleware(introspector identity_client.Introspector, devUserID string, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")

		if authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header format must be Bearer <token>"})
				c.Abort()
				return
			}

			userID, err := introspector.Introspect(c.Request.Context(), parts[1])
			if err == nil {
				c.Set(UserIDKey, userID)
				c.Next()
				return
			}
			logger.Warn("Token introspection failed", zap.Error(err))
		}

		if devUserID != "" {
			logger.Debug("Using configured dev user id", zap.String("user_id", devUserID))
			c.Set(UserIDKey, devUserID)
			c.Next()
			return
		}

		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization required"})
		c.Abort()
	}
}

// UserID returns the authenticated user id from the gin context.
func UserID(c *gin.Context) string {
	return c.MustGet(UserIDKey).(string)
}
