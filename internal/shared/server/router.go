package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"nutricoach-backend/internal/generation"
	"nutricoach-backend/internal/history"
	"nutricoach-backend/internal/profile"
	"nutricoach-backend/internal/services/health"
	"nutricoach-backend/internal/shared/config"
	"nutricoach-backend/internal/shared/metrics"
	"nutricoach-backend/internal/shared/server/middleware"
)

// RouterDeps carries the handlers mounted by NewRouter. Nil handlers are
// skipped, except Health which falls back to a dependency-free check.
type RouterDeps struct {
	Config     config.Config
	Generation *generation.Handler
	Profile    *profile.Handler
	History    *history.Handler
	Health     *health.Handler
	Limiter    *middleware.RateLimiter
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
		middleware.Identity(),
		middleware.RateLimit(middleware.RateLimitConfig{
			Rules: map[string]middleware.RateLimitRule{
				middleware.GroupGeneration: {Rate: deps.Config.RateLimitRPS, Burst: deps.Config.RateLimitBurst},
			},
			GroupFor: rateLimitGroup,
			Limiter:  deps.Limiter,
		}),
	)

	healthHandler := deps.Health
	if healthHandler == nil {
		healthHandler = health.NewHandler(nil)
	}

	api := r.Group("/api/v1")
	healthHandler.RegisterRoutes(api)
	if deps.Generation != nil {
		deps.Generation.RegisterRoutes(api)
		deps.Generation.RegisterFunctionRoutes(r.Group("/functions/v1"))
	}
	if deps.Profile != nil {
		deps.Profile.RegisterRoutes(api)
	}
	// History exposes every caller's records, so it is operator-only and
	// stays unmounted until a token is configured.
	if deps.History != nil && strings.TrimSpace(deps.Config.HistoryAPIToken) != "" {
		deps.History.RegisterRoutes(api.Group("", middleware.AdminToken(deps.Config.HistoryAPIToken)))
	}
	r.GET("/metrics", metrics.Handler())

	// CORS answers preflights before routing; this catches any that slip past.
	r.OPTIONS("/*path", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	return r
}

// rateLimitGroup puts model-backed routes in the generation bucket; everything
// else is unlimited.
func rateLimitGroup(c *gin.Context) string {
	if c.Request.Method != http.MethodPost {
		return ""
	}
	path := c.Request.URL.Path
	if strings.HasPrefix(path, "/functions/v1/") {
		return middleware.GroupGeneration
	}
	switch strings.TrimPrefix(path, "/api/v1") {
	case "/analyze-food", "/meal-plan", "/exercise-plan", "/health-chat":
		return middleware.GroupGeneration
	}
	return ""
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
