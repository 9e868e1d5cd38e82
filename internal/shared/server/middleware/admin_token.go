package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"nutricoach-backend/internal/shared/server/respond"
)

// AdminToken requires "Authorization: Bearer <token>" matching token.
// An empty token rejects every request.
func AdminToken(token string) gin.HandlerFunc {
	want := []byte(strings.TrimSpace(token))
	return func(c *gin.Context) {
		authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
		if len(want) == 0 || !strings.HasPrefix(authHeader, "Bearer ") {
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "missing or invalid token")
			return
		}
		got := []byte(strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer")))
		if subtle.ConstantTimeCompare(got, want) != 1 {
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "missing or invalid token")
			return
		}
		c.Next()
	}
}
