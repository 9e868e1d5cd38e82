package generation

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"nutricoach-backend/internal/history"
	"nutricoach-backend/internal/shared/server/middleware"
	"nutricoach-backend/internal/shared/server/respond"
)

// Response headers carrying provenance.
const (
	HeaderTier  = "X-Generation-Tier"
	HeaderCache = "X-Generation-Cache"
)

// Runner runs a generation request.
type Runner interface {
	Run(ctx context.Context, uc UseCase, req Request) (Result, error)
}

// Handler wires HTTP handlers to the pipeline.
type Handler struct {
	Runner   Runner
	Recorder *history.Recorder
}

// NewHandler constructs a Handler. recorder may be nil.
func NewHandler(runner Runner, recorder *history.Recorder) *Handler {
	return &Handler{Runner: runner, Recorder: recorder}
}

// RegisterRoutes attaches the generation routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/analyze-food", h.handle(UseCaseFoodAnalysis))
	rg.POST("/meal-plan", h.handle(UseCaseMealPlan))
	rg.POST("/exercise-plan", h.handle(UseCaseExercisePlan))
	rg.POST("/health-chat", h.handle(UseCaseChat))
}

// RegisterFunctionRoutes mounts the same handlers under the function names
// existing front ends call.
func (h *Handler) RegisterFunctionRoutes(rg *gin.RouterGroup) {
	rg.POST("/analyze-food", h.handle(UseCaseFoodAnalysis))
	rg.POST("/generate-meal-plan", h.handle(UseCaseMealPlan))
	rg.POST("/generate-exercise-plan", h.handle(UseCaseExercisePlan))
	rg.POST("/health-chat", h.handle(UseCaseChat))
}

func (h *Handler) handle(uc UseCase) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.UseCaseKey, string(uc))

		var req Request
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			respond.Error(c, http.StatusBadRequest, "validation_error", "invalid JSON body")
			return
		}

		res, err := h.Runner.Run(c.Request.Context(), uc, req)
		if err != nil {
			var vErr *ValidationError
			if errors.As(err, &vErr) {
				respond.Error(c, http.StatusBadRequest, "validation_error", vErr.Message)
				return
			}
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to generate response")
			return
		}

		c.Set(middleware.TierKey, string(res.Tier))
		c.Header(HeaderTier, string(res.Tier))
		if res.Cached {
			c.Header(HeaderCache, "hit")
		}

		h.Recorder.Record(c.Request.Context(), history.Record{
			UseCase:    string(res.UseCase),
			Tier:       string(res.Tier),
			UserID:     middleware.UserIDFromContext(c),
			PromptHash: res.PromptHash,
			DurationMs: res.Duration.Milliseconds(),
		})

		respond.OK(c, res.Payload)
	}
}
