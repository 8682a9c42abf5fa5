package sheet

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/macropower/alsroute/pkg/log"
)

// DefaultCacheTTL is how long a loaded table is reused before reloading.
const DefaultCacheTTL = 10 * time.Minute

// Cache holds the most recently loaded [Table] for a fixed time. Concurrent
// misses share a single load. When a reload fails and an earlier table is
// still held, the earlier table is returned.
type Cache struct {
	loadedAt time.Time
	loader   Loader
	table    *Table
	now      func() time.Time
	group    singleflight.Group
	ttl      time.Duration
	mu       sync.RWMutex
}

// CacheOpt configures a [Cache].
type CacheOpt func(*Cache)

// WithClock sets the time source, for tests.
func WithClock(now func() time.Time) CacheOpt {
	return func(c *Cache) {
		c.now = now
	}
}

// NewCache creates a new [Cache]. A non-positive ttl uses [DefaultCacheTTL].
func NewCache(loader Loader, ttl time.Duration, opts ...CacheOpt) *Cache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}

	c := &Cache{
		loader: loader,
		ttl:    ttl,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Load implements [Loader].
func (c *Cache) Load(ctx context.Context) (*Table, error) {
	c.mu.RLock()
	t, loadedAt := c.table, c.loadedAt
	c.mu.RUnlock()

	fresh := t != nil && c.now().Sub(loadedAt) < c.ttl

	if fresh {
		return t, nil
	}

	v, err, _ := c.group.Do("load", func() (any, error) {
		loaded, err := c.loader.Load(ctx)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.table = loaded
		c.loadedAt = c.now()
		c.mu.Unlock()

		return loaded, nil
	})
	if err != nil {
		if t != nil {
			log.WithContext(ctx).WarnContext(ctx, "reload rule table failed, using previous table",
				slog.Time("loaded_at", loadedAt),
				slog.Any("err", err),
			)

			return t, nil
		}

		return nil, fmt.Errorf("load rule table: %w", err)
	}

	loaded, ok := v.(*Table)
	if !ok {
		return nil, fmt.Errorf("load rule table: unexpected result %T", v)
	}

	return loaded, nil
}

// Invalidate drops the held table so the next [Cache.Load] reloads.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.table = nil
	c.loadedAt = time.Time{}
}
