package history

import (
	"context"
	"sort"
	"sync"
	"time"
)

// DefaultMemoryCapacity bounds a MemoryRepo built by NewMemoryRepo.
const DefaultMemoryCapacity = 10000

// MemoryRepo keeps the most recent records in memory, dropping the oldest once
// capacity is reached. It is safe for concurrent use.
type MemoryRepo struct {
	mu       sync.RWMutex
	records  []Record
	capacity int
}

// NewMemoryRepo constructs a MemoryRepo holding DefaultMemoryCapacity records.
func NewMemoryRepo() *MemoryRepo {
	return NewMemoryRepoWithCapacity(DefaultMemoryCapacity)
}

// NewMemoryRepoWithCapacity constructs a MemoryRepo holding at most capacity
// records; non-positive values use DefaultMemoryCapacity.
func NewMemoryRepoWithCapacity(capacity int) *MemoryRepo {
	if capacity <= 0 {
		capacity = DefaultMemoryCapacity
	}
	return &MemoryRepo{capacity: capacity}
}

// Create stores the record.
func (r *MemoryRepo) Create(ctx context.Context, rec Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.records) >= r.capacity {
		n := copy(r.records, r.records[len(r.records)-r.capacity+1:])
		r.records = r.records[:n]
	}
	r.records = append(r.records, rec)
	return nil
}

// Len returns the number of stored records.
func (r *MemoryRepo) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records)
}

// ListByUser returns the newest records for userID.
func (r *MemoryRepo) ListByUser(ctx context.Context, userID string, limit int) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if userID == "" {
		return nil, ErrUserRequired
	}
	r.mu.RLock()
	out := make([]Record, 0)
	for _, rec := range r.records {
		if rec.UserID == userID {
			out = append(out, rec)
		}
	}
	r.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit = clampLimit(limit); len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// CountByTier counts records created at or after since.
func (r *MemoryRepo) CountByTier(ctx context.Context, since time.Time) (map[string]int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	counts := make(map[string]int64)
	for _, rec := range r.records {
		if !rec.CreatedAt.Before(since) {
			counts[rec.Tier]++
		}
	}
	return counts, nil
}
