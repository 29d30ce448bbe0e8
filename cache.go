package folio

import (
	"context"
	"sync"
	"time"

	"github.com/eringen/folio/content"
)

// pageLoader is the part of content.Loader the cache needs.
type pageLoader interface {
	Load(ctx context.Context) content.Page
}

// lengthSetter receives the showcase count after every reload.
type lengthSetter interface {
	SetLength(n int)
}

// ContentCache is an in-memory cache of the public page content with TTL.
// A page built partly from defaults is cached for a short retry window
// instead of the full TTL, so a recovered remote is picked up quickly.
type ContentCache struct {
	mu       sync.RWMutex
	page     content.Page
	loaded   bool
	fetched  time.Time
	ttl      time.Duration
	retry    time.Duration
	loader   pageLoader
	carousel lengthSetter
}

// NewContentCache creates a ContentCache backed by loader. carousel may be nil.
func NewContentCache(loader pageLoader, ttl time.Duration, carousel lengthSetter) *ContentCache {
	retry := 30 * time.Second
	if ttl < retry {
		retry = ttl
	}
	return &ContentCache{loader: loader, ttl: ttl, retry: retry, carousel: carousel}
}

func (c *ContentCache) valid() bool {
	if !c.loaded {
		return false
	}
	ttl := c.ttl
	if len(c.page.Degraded) > 0 {
		ttl = c.retry
	}
	return time.Since(c.fetched) < ttl
}

// Invalidate clears the cache so the next read triggers a fresh load.
func (c *ContentCache) Invalidate() {
	c.mu.Lock()
	c.loaded = false
	c.mu.Unlock()
}

// Page returns the cached page, reloading it when stale. It tries a read
// lock first and only takes the write lock if a reload is needed.
func (c *ContentCache) Page(ctx context.Context) content.Page {
	c.mu.RLock()
	if c.valid() {
		page := c.page
		c.mu.RUnlock()
		return page
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.valid() {
		return c.page
	}
	prev := len(c.page.Projects)
	first := !c.loaded && c.fetched.IsZero()
	c.page = c.loader.Load(ctx)
	c.loaded = true
	c.fetched = time.Now()
	if c.carousel != nil && (first || len(c.page.Projects) != prev) {
		c.carousel.SetLength(len(c.page.Projects))
	}
	return c.page
}
