package history

import (
	"context"
	"time"
)

// Repo defines persistence operations for generation records.
type Repo interface {
	Create(ctx context.Context, rec Record) error
	ListByUser(ctx context.Context, userID string, limit int) ([]Record, error)
	CountByTier(ctx context.Context, since time.Time) (map[string]int64, error)
}

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return defaultListLimit
	case limit > maxListLimit:
		return maxListLimit
	default:
		return limit
	}
}
