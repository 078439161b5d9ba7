package cache

import (
	"context"
	"fmt"
	"time"

	"skin-market-go/internal/models"
)

// Cache stores opaque values by key. The memory backend serves single-instance
// deployments and tests; Redis is shared between API replicas.
type Cache interface {
	// Get returns ErrCacheMiss when the key is absent or expired.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	// GetOrSet returns the cached value or stores and returns what fn computes.
	GetOrSet(ctx context.Context, key string, ttl time.Duration, fn func() ([]byte, error)) ([]byte, error)
	Clear(ctx context.Context) error
	Close() error
}

type CacheError string

func (e CacheError) Error() string { return string(e) }

const (
	ErrCacheMiss CacheError = "cache miss"
)

// New builds the backend selected by cfg.Type. "none" returns a nil Cache.
func New(ctx context.Context, cfg models.CacheConfig) (Cache, error) {
	switch cfg.Type {
	case "", "memory":
		return NewMemoryCache(), nil
	case "redis":
		return NewRedisCache(ctx, cfg)
	case "none":
		return nil, nil
	}
	return nil, fmt.Errorf("unknown cache type %q", cfg.Type)
}
