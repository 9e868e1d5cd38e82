package history

import (
	"context"
	"time"

	"github.com/google/uuid"

	"nutricoach-backend/internal/shared/telemetry"
)

const recordTimeout = 3 * time.Second

// Recorder writes records without surfacing failures to the caller.
type Recorder struct {
	Repo Repo
	now  func() time.Time
}

// NewRecorder constructs a Recorder. A nil repo makes Record a no-op.
func NewRecorder(repo Repo) *Recorder {
	return &Recorder{Repo: repo, now: time.Now}
}

// Record fills in ID and CreatedAt when missing and stores rec. The caller's
// cancellation does not abort the write.
func (r *Recorder) Record(ctx context.Context, rec Record) {
	if r == nil || r.Repo == nil {
		return
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = r.now().UTC()
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), recordTimeout)
	defer cancel()
	if err := r.Repo.Create(ctx, rec); err != nil {
		telemetry.Error("history.record_failed", map[string]any{
			"id":       rec.ID,
			"use_case": rec.UseCase,
			"tier":     rec.Tier,
			"error":    err,
		})
	}
}
