package health

import (
	"github.com/gin-gonic/gin"

	"nutricoach-backend/internal/shared/server/respond"
)

// Handler exposes the health endpoint.
type Handler struct {
	Service *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	if svc == nil {
		svc = NewService(nil, nil)
	}
	return &Handler{Service: svc}
}

// RegisterRoutes attaches GET /health.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/health", func(c *gin.Context) {
		respond.OK(c, h.Service.Status(c.Request.Context()))
	})
}
