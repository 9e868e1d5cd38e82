package profile

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"nutricoach-backend/internal/shared/server/respond"
)

// Handler exposes derived body metrics over HTTP.
type Handler struct{}

// NewHandler constructs a Handler.
func NewHandler() *Handler {
	return &Handler{}
}

// RegisterRoutes attaches profile routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/profile/metrics", h.metrics)
}

type metricsRequest struct {
	Profile *UserProfile `json:"profile"`
}

func (h *Handler) metrics(c *gin.Context) {
	var req metricsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid JSON body")
		return
	}
	if req.Profile == nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "User profile is required")
		return
	}
	ctx, err := Normalize(*req.Profile)
	if err != nil {
		if errors.Is(err, ErrInvalidProfile) {
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error())
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to compute metrics")
		return
	}
	respond.OK(c, ctx)
}
