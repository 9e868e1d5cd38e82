package history

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryRepoListByUserNewestFirst(t *testing.T) {
	repo := NewMemoryRepo()
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	for i, id := range []string{"a", "b", "c"} {
		_ = repo.Create(ctx, Record{ID: id, UserID: "user-1", Tier: "primary", CreatedAt: base.Add(time.Duration(i) * time.Minute)})
	}
	_ = repo.Create(ctx, Record{ID: "other", UserID: "user-2", Tier: "static", CreatedAt: base})

	got, err := repo.ListByUser(ctx, "user-1", 2)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(got) != 2 || got[0].ID != "c" || got[1].ID != "b" {
		t.Fatalf("unexpected records: %+v", got)
	}
}

func TestMemoryRepoDropsOldestPastCapacity(t *testing.T) {
	repo := NewMemoryRepoWithCapacity(3)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	for i, id := range []string{"a", "b", "c", "d", "e"} {
		if err := repo.Create(ctx, Record{ID: id, UserID: "user-1", Tier: "primary", CreatedAt: base.Add(time.Duration(i) * time.Minute)}); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}
	if repo.Len() != 3 {
		t.Fatalf("expected 3 records, got %d", repo.Len())
	}
	got, err := repo.ListByUser(ctx, "user-1", 10)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(got) != 3 || got[0].ID != "e" || got[2].ID != "c" {
		t.Fatalf("unexpected records: %+v", got)
	}
}

func TestMemoryRepoListRequiresUser(t *testing.T) {
	if _, err := NewMemoryRepo().ListByUser(context.Background(), "", 10); !errors.Is(err, ErrUserRequired) {
		t.Fatalf("expected ErrUserRequired, got %v", err)
	}
}

func TestMemoryRepoCountByTier(t *testing.T) {
	repo := NewMemoryRepo()
	ctx := context.Background()
	since := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	_ = repo.Create(ctx, Record{Tier: "primary", CreatedAt: since})
	_ = repo.Create(ctx, Record{Tier: "primary", CreatedAt: since.Add(time.Hour)})
	_ = repo.Create(ctx, Record{Tier: "static", CreatedAt: since.Add(2 * time.Hour)})
	_ = repo.Create(ctx, Record{Tier: "fallback", CreatedAt: since.Add(-time.Second)})

	counts, err := repo.CountByTier(ctx, since)
	if err != nil {
		t.Fatalf("CountByTier: %v", err)
	}
	if counts["primary"] != 2 || counts["static"] != 1 || counts["fallback"] != 0 {
		t.Fatalf("unexpected counts: %v", counts)
	}
}

func TestClampLimit(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{in: 0, want: defaultListLimit},
		{in: -3, want: defaultListLimit},
		{in: 5, want: 5},
		{in: 1000, want: maxListLimit},
	}
	for _, tt := range tests {
		if got := clampLimit(tt.in); got != tt.want {
			t.Fatalf("clampLimit(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestRecorderFillsDefaultsAndIgnoresCancellation(t *testing.T) {
	repo := NewMemoryRepo()
	rec := NewRecorder(repo)
	fixed := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	rec.now = func() time.Time { return fixed }

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	rec.Record(ctx, Record{UseCase: "meal_plan", Tier: "static", UserID: "user-1"})

	got, _ := repo.ListByUser(context.Background(), "user-1", 10)
	if len(got) != 1 {
		t.Fatalf("expected one record, got %d", len(got))
	}
	if got[0].ID == "" || !got[0].CreatedAt.Equal(fixed) {
		t.Fatalf("expected id and timestamp to be filled, got %+v", got[0])
	}
}

func TestNilRecorderIsNoop(t *testing.T) {
	var rec *Recorder
	rec.Record(context.Background(), Record{})
	NewRecorder(nil).Record(context.Background(), Record{})
}
