package history

import (
	"context"
	"database/sql"
	"time"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts a new record.
func (r *PGRepo) Create(ctx context.Context, rec Record) error {
	const query = `
INSERT INTO generations (id, use_case, tier, user_id, prompt_hash, duration_ms, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.DB.ExecContext(ctx, query,
		rec.ID,
		rec.UseCase,
		rec.Tier,
		rec.UserID,
		rec.PromptHash,
		rec.DurationMs,
		rec.CreatedAt,
	)
	return err
}

// ListByUser returns the newest records for userID.
func (r *PGRepo) ListByUser(ctx context.Context, userID string, limit int) ([]Record, error) {
	if userID == "" {
		return nil, ErrUserRequired
	}
	const query = `
SELECT id, use_case, tier, user_id, prompt_hash, duration_ms, created_at
FROM generations
WHERE user_id = $1
ORDER BY created_at DESC
LIMIT $2`
	rows, err := r.DB.QueryContext(ctx, query, userID, clampLimit(limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Record, 0)
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ID, &rec.UseCase, &rec.Tier, &rec.UserID, &rec.PromptHash, &rec.DurationMs, &rec.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// CountByTier counts records created at or after since.
func (r *PGRepo) CountByTier(ctx context.Context, since time.Time) (map[string]int64, error) {
	const query = `
SELECT tier, COUNT(*)
FROM generations
WHERE created_at >= $1
GROUP BY tier`
	rows, err := r.DB.QueryContext(ctx, query, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var tier string
		var n int64
		if err := rows.Scan(&tier, &n); err != nil {
			return nil, err
		}
		counts[tier] = n
	}
	return counts, rows.Err()
}
