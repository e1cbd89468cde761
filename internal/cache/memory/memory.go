package memory

import (
	"context"
	"sync/atomic"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/fr4nk3nst1ner/langsalary/internal/cache"
)

// Cache keeps pages in process memory for the lifetime of one run
type Cache struct {
	store  *gocache.Cache
	ttl    time.Duration
	closed atomic.Bool
}

func New(opts cache.Options) *Cache {
	defaults := cache.DefaultOptions()
	if opts.DefaultTTL <= 0 {
		opts.DefaultTTL = defaults.DefaultTTL
	}
	if opts.CleanupInterval <= 0 {
		opts.CleanupInterval = defaults.CleanupInterval
	}
	return &Cache{
		store: gocache.New(opts.DefaultTTL, opts.CleanupInterval),
		ttl:   opts.DefaultTTL,
	}
}

func (c *Cache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if c.closed.Load() {
		return cache.ErrClosed
	}
	if ttl <= 0 {
		ttl = c.ttl
	}
	stored := make([]byte, len(value))
	copy(stored, value)
	c.store.Set(key, stored, ttl)
	return nil
}

func (c *Cache) Get(ctx context.Context, key string) ([]byte, error) {
	if c.closed.Load() {
		return nil, cache.ErrClosed
	}
	v, ok := c.store.Get(key)
	if !ok {
		return nil, cache.ErrNotFound
	}
	return v.([]byte), nil
}

func (c *Cache) Delete(ctx context.Context, key string) error {
	c.store.Delete(key)
	return nil
}

func (c *Cache) Close() error {
	if c.closed.CompareAndSwap(false, true) {
		c.store.Flush()
	}
	return nil
}
