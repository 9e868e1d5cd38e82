package health

import (
	"context"
	"time"

	"nutricoach-backend/internal/shared/telemetry"
)

// Dependency states reported by Status.
const (
	StateOK       = "ok"
	StateError    = "error"
	StateDisabled = "disabled"
)

const checkTimeout = 2 * time.Second

// Pinger is satisfied by *sql.DB and the cache backends.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// PingFunc adapts a plain ping function.
type PingFunc func(ctx context.Context) error

// PingContext calls f.
func (f PingFunc) PingContext(ctx context.Context) error { return f(ctx) }

// Status is the health payload.
type Status struct {
	OK    bool   `json:"ok"`
	DB    string `json:"db"`
	Cache string `json:"cache"`
}

// Service encapsulates health-related checks. Nil dependencies are reported
// as disabled.
type Service struct {
	DB    Pinger
	Cache Pinger
}

// NewService constructs a new health service.
func NewService(db, cache Pinger) *Service {
	return &Service{DB: db, Cache: cache}
}

// Status pings each optional dependency. The process is ok as long as it can
// answer; dependency failures only degrade the per-dependency state.
func (s *Service) Status(ctx context.Context) Status {
	return Status{
		OK:    true,
		DB:    check(ctx, "db", s.DB),
		Cache: check(ctx, "cache", s.Cache),
	}
}

func check(ctx context.Context, name string, p Pinger) string {
	if p == nil {
		return StateDisabled
	}
	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()
	if err := p.PingContext(ctx); err != nil {
		telemetry.Warn("health.check_failed", map[string]any{"dependency": name, "err": err})
		return StateError
	}
	return StateOK
}
