package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"nutricoach-backend/internal/shared/telemetry"
)

// Context keys handlers may set to enrich the request log line.
const (
	UseCaseKey = "useCase"
	TierKey    = "generationTier"
)

// Logging emits a structured log per request.
func Logging() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		latency := time.Since(start)

		telemetry.Info("request.complete", map[string]any{
			"request_id":      RequestIDFromContext(c),
			"method":          c.Request.Method,
			"path":            c.Request.URL.Path,
			"status":          c.Writer.Status(),
			"duration_ms":     float64(latency.Microseconds()) / 1000.0,
			"user_id":         UserIDFromContext(c),
			"use_case":        c.GetString(UseCaseKey),
			"generation_tier": c.GetString(TierKey),
			"client_ip":       c.ClientIP(),
			"user_agent":      c.Request.UserAgent(),
		})
	}
}
