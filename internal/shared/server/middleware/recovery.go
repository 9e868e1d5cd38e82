package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"nutricoach-backend/internal/shared/server/respond"
	"nutricoach-backend/internal/shared/telemetry"
)

// Recovery turns panics into a 500 with the standard error body.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			fields := map[string]any{
				"request_id": RequestIDFromContext(c),
				"error":      rec,
				"stack":      string(debug.Stack()),
				"path":       c.Request.URL.Path,
				"method":     c.Request.Method,
			}
			if uc := c.GetString(UseCaseKey); uc != "" {
				fields["use_case"] = uc
			}
			telemetry.Error("http.panic", fields)
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to generate response")
		}()
		c.Next()
	}
}
