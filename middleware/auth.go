package middleware

import (
	"errors"
	"net/http"

	"github.com/Saroj9823Dangol/event-management-sub001/clients"

	"github.com/gin-gonic/gin"
)

const UserContextKey = "userID"

// AuthMiddleware reads identity headers injected by the API gateway and
// makes them available to outgoing gateway calls.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetHeader("X-User-ID")

		// Fallback to cookies (set by API gateway) if headers missing
		if userID == "" {
			if v, err := c.Cookie("user_id"); err == nil && v != "" {
				userID = v
				c.Request.Header.Set("X-User-ID", v)
			}
		}

		if userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized", "message": "missing user identity"})
			return
		}

		c.Set(UserContextKey, userID)
		c.Request = c.Request.WithContext(clients.WithForwardedHeaders(c.Request.Context(), c.Request.Header))
		c.Next()
	}
}

// GetUserID extracts the user ID from the Gin context.
func GetUserID(c *gin.Context) (string, error) {
	if val, ok := c.Get(UserContextKey); ok {
		if id, ok := val.(string); ok && id != "" {
			return id, nil
		}
	}
	return "", errors.New("user ID not found in context")
}
