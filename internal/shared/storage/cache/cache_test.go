package cache

import (
	"context"
	"testing"
	"time"
)

func TestMemoryCacheGetSet(t *testing.T) {
	c := NewMemory()
	ctx := context.Background()

	if _, ok, err := c.Get(ctx, "missing"); ok || err != nil {
		t.Fatalf("expected miss, got ok=%v err=%v", ok, err)
	}
	if err := c.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, ok, err := c.Get(ctx, "k")
	if err != nil || !ok {
		t.Fatalf("expected hit, got ok=%v err=%v", ok, err)
	}
	if string(got) != "v" {
		t.Fatalf("expected v, got %q", got)
	}
}

func TestMemoryCacheExpires(t *testing.T) {
	c := NewMemory()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	ctx := context.Background()

	_ = c.Set(ctx, "k", []byte("v"), time.Minute)
	now = now.Add(59 * time.Second)
	if _, ok, _ := c.Get(ctx, "k"); !ok {
		t.Fatalf("expected entry before ttl")
	}
	now = now.Add(time.Second)
	if _, ok, _ := c.Get(ctx, "k"); ok {
		t.Fatalf("expected entry to expire at ttl")
	}
	if c.Len() != 0 {
		t.Fatalf("expected expired entry removed, len=%d", c.Len())
	}
}

func TestMemoryCacheCopiesValues(t *testing.T) {
	c := NewMemory()
	ctx := context.Background()
	val := []byte("abc")
	_ = c.Set(ctx, "k", val, 0)
	val[0] = 'x'

	got, _, _ := c.Get(ctx, "k")
	if string(got) != "abc" {
		t.Fatalf("expected stored copy, got %q", got)
	}
	got[1] = 'y'
	again, _, _ := c.Get(ctx, "k")
	if string(again) != "abc" {
		t.Fatalf("expected returned copy, got %q", again)
	}
}

func TestNewRedisRejectsBadURL(t *testing.T) {
	if _, err := NewRedis("not-a-redis-url"); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestNewRedisParsesURL(t *testing.T) {
	c, err := NewRedis("redis://localhost:6379/2")
	if err != nil {
		t.Fatalf("NewRedis: %v", err)
	}
	defer c.Close()
	if c.client.Options().DB != 2 {
		t.Fatalf("expected db 2, got %d", c.client.Options().DB)
	}
}
