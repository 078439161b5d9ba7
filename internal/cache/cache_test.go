package cache

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"skin-market-go/internal/models"
)

func TestMemoryCache_GetSetExpire(t *testing.T) {
	c := NewMemoryCache()
	defer c.Close()
	ctx := context.Background()

	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	if _, err := c.Get(ctx, "k"); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("Expected ErrCacheMiss, got %v", err)
	}

	value := []byte("28.75")
	if err := c.Set(ctx, "k", value, time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	value[0] = 'X'

	got, err := c.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(got) != "28.75" {
		t.Errorf("Expected stored copy to be isolated, got %q", got)
	}

	now = now.Add(2 * time.Minute)
	if ok, _ := c.Exists(ctx, "k"); ok {
		t.Error("Expected entry to expire")
	}
	c.sweep()
	if len(c.entries) != 0 {
		t.Errorf("Expected sweep to drop expired entries, %d left", len(c.entries))
	}
}

func TestMemoryCache_GetOrSet(t *testing.T) {
	c := NewMemoryCache()
	defer c.Close()
	ctx := context.Background()

	calls := 0
	compute := func() ([]byte, error) {
		calls++
		return []byte("v"), nil
	}
	for i := 0; i < 3; i++ {
		if _, err := c.GetOrSet(ctx, "k", time.Minute, compute); err != nil {
			t.Fatalf("GetOrSet failed: %v", err)
		}
	}
	if calls != 1 {
		t.Errorf("Expected a single computation, got %d", calls)
	}

	boom := errors.New("boom")
	_, err := c.GetOrSet(ctx, "other", time.Minute, func() ([]byte, error) { return nil, boom })
	if !errors.Is(err, boom) {
		t.Errorf("Expected compute error, got %v", err)
	}
	if ok, _ := c.Exists(ctx, "other"); ok {
		t.Error("Failed computation must not be cached")
	}

	if err := c.Clear(ctx); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if ok, _ := c.Exists(ctx, "k"); ok {
		t.Error("Expected Clear to drop all entries")
	}
}

func TestNew(t *testing.T) {
	ctx := context.Background()

	c, err := New(ctx, models.CacheConfig{Type: "memory"})
	if err != nil {
		t.Fatalf("New(memory) failed: %v", err)
	}
	if _, ok := c.(*MemoryCache); !ok {
		t.Errorf("Expected *MemoryCache, got %T", c)
	}
	c.Close()

	c, err = New(ctx, models.CacheConfig{Type: "none"})
	if err != nil || c != nil {
		t.Errorf("Expected nil cache for none, got %v, %v", c, err)
	}

	if _, err := New(ctx, models.CacheConfig{Type: "memcached"}); err == nil {
		t.Error("Expected error for unknown cache type")
	}
	if _, err := New(ctx, models.CacheConfig{Type: "redis"}); err == nil {
		t.Error("Expected error for redis without address")
	}
}

func TestRedisCache(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	ctx := context.Background()

	c, err := NewRedisCache(ctx, models.CacheConfig{RedisAddr: addr, KeyPrefix: "skinmarket-test"})
	if err != nil {
		t.Fatalf("NewRedisCache failed: %v", err)
	}
	defer c.Close()
	defer c.Clear(ctx)

	if _, err := c.Get(ctx, "k"); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("Expected ErrCacheMiss, got %v", err)
	}
	if err := c.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	got, err := c.Get(ctx, "k")
	if err != nil || string(got) != "v" {
		t.Errorf("Get = %q, %v", got, err)
	}
	if err := c.Clear(ctx); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if ok, _ := c.Exists(ctx, "k"); ok {
		t.Error("Expected Clear to remove prefixed keys")
	}
}
