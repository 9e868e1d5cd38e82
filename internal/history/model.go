// Package history keeps an audit log of completed generations.
package history

import (
	"errors"
	"time"
)

// ErrUserRequired is returned when a listing has no caller id.
var ErrUserRequired = errors.New("user id is required")

// Record is one completed pipeline run.
type Record struct {
	ID         string    `json:"id"`
	UseCase    string    `json:"useCase"`
	Tier       string    `json:"tier"`
	UserID     string    `json:"userId,omitempty"`
	PromptHash string    `json:"promptHash"`
	DurationMs int64     `json:"durationMs"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Stats counts records per tier since a point in time.
type Stats struct {
	Since  time.Time        `json:"since"`
	ByTier map[string]int64 `json:"byTier"`
	Total  int64            `json:"total"`
}
