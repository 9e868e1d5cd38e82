package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
)

const userIDKey = "userId"

// Identity records the caller's user id when the front end sends one.
// Sign-in happens upstream, so requests without X-User-Id are still served.
func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		if id := strings.TrimSpace(c.GetHeader("X-User-Id")); id != "" {
			c.Set(userIDKey, id)
		}
		c.Next()
	}
}

// UserIDFromContext returns the caller id stored by Identity, if any.
func UserIDFromContext(c *gin.Context) string {
	if c == nil {
		return ""
	}
	val, _ := c.Get(userIDKey)
	if id, ok := val.(string); ok {
		return id
	}
	return ""
}
