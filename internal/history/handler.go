package history

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"nutricoach-backend/internal/shared/server/middleware"
	"nutricoach-backend/internal/shared/server/respond"
)

const statsWindow = 24 * time.Hour

// Handler exposes generation history over HTTP.
type Handler struct {
	Repo Repo
	now  func() time.Time
}

// NewHandler constructs a Handler.
func NewHandler(repo Repo) *Handler {
	return &Handler{Repo: repo, now: time.Now}
}

// RegisterRoutes attaches history routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/generations", h.list)
	rg.GET("/generations/stats", h.stats)
}

func (h *Handler) list(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	if userID == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "X-User-Id header is required")
		return
	}
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			respond.Error(c, http.StatusBadRequest, "validation_error", "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	records, err := h.Repo.ListByUser(c.Request.Context(), userID, limit)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list generations")
		return
	}
	respond.OK(c, gin.H{"items": records})
}

func (h *Handler) stats(c *gin.Context) {
	since := h.now().UTC().Add(-statsWindow)
	counts, err := h.Repo.CountByTier(c.Request.Context(), since)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load generation stats")
		return
	}
	var total int64
	for _, n := range counts {
		total += n
	}
	respond.OK(c, Stats{Since: since, ByTier: counts, Total: total})
}
