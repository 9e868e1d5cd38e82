package cache

import (
	"context"
	"sync"
	"time"
)

type memEntry struct {
	val       []byte
	expiresAt time.Time
}

// MemoryCache is an in-process Cache used when REDIS_URL is unset.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]memEntry
	now     func() time.Time
}

func NewMemory() *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]memEntry),
		now:     time.Now,
	}
}

func (m *MemoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.entries[key]
	if !ok {
		return nil, false, nil
	}
	if !entry.expiresAt.IsZero() && !m.now().Before(entry.expiresAt) {
		delete(m.entries, key)
		return nil, false, nil
	}
	out := make([]byte, len(entry.val))
	copy(out, entry.val)
	return out, true, nil
}

func (m *MemoryCache) Set(_ context.Context, key string, val []byte, ttl time.Duration) error {
	stored := make([]byte, len(val))
	copy(stored, val)

	m.mu.Lock()
	defer m.mu.Unlock()
	entry := memEntry{val: stored}
	if ttl > 0 {
		entry.expiresAt = m.now().Add(ttl)
	}
	m.entries[key] = entry
	m.pruneLocked()
	return nil
}

func (m *MemoryCache) Ping(context.Context) error { return nil }

// Len returns the number of stored entries, expired ones included.
func (m *MemoryCache) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

func (m *MemoryCache) pruneLocked() {
	now := m.now()
	for k, e := range m.entries {
		if !e.expiresAt.IsZero() && !now.Before(e.expiresAt) {
			delete(m.entries, k)
		}
	}
}
