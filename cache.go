package gofromts

import (
	"sync"
	"time"
)

// PageCache is an in-memory cache of loaded pages with TTL. A zero TTL
// reloads content on every read, which is what development mode wants.
type PageCache struct {
	mu      sync.RWMutex
	pages   []Page
	bySlug  map[string]Page
	fetched time.Time
	ttl     time.Duration
	store   *ContentStore
}

// NewPageCache creates a PageCache backed by the given ContentStore.
func NewPageCache(s *ContentStore, ttl time.Duration) *PageCache {
	return &PageCache{store: s, ttl: ttl}
}

func (c *PageCache) valid() bool {
	return c.bySlug != nil && time.Since(c.fetched) < c.ttl
}

// Invalidate clears the cache so the next read triggers a fresh load.
func (c *PageCache) Invalidate() {
	c.mu.Lock()
	c.pages = nil
	c.bySlug = nil
	c.mu.Unlock()
}

func (c *PageCache) load() error {
	if c.valid() {
		return nil
	}
	pages, err := c.store.Load()
	if err != nil {
		return err
	}
	bySlug := make(map[string]Page, len(pages))
	for _, p := range pages {
		bySlug[p.Slug] = p
	}
	c.pages = pages
	c.bySlug = bySlug
	c.fetched = time.Now()
	return nil
}

// ensureLoaded returns the cached pages after ensuring the cache is fresh.
// It tries a read lock first; only takes a write lock if a reload is needed.
func (c *PageCache) ensureLoaded() ([]Page, map[string]Page, error) {
	c.mu.RLock()
	if c.valid() {
		pages, bySlug := c.pages, c.bySlug
		c.mu.RUnlock()
		return pages, bySlug, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.load(); err != nil {
		return nil, nil, err
	}
	return c.pages, c.bySlug, nil
}

// ListPages returns all pages sorted by slug.
func (c *PageCache) ListPages() ([]Page, error) {
	pages, _, err := c.ensureLoaded()
	return pages, err
}

// PageIndex returns the pages keyed by slug. The map must not be modified.
func (c *PageCache) PageIndex() (map[string]Page, error) {
	_, bySlug, err := c.ensureLoaded()
	return bySlug, err
}

// GetPage returns a single page by slug.
func (c *PageCache) GetPage(slug string) (Page, error) {
	_, bySlug, err := c.ensureLoaded()
	if err != nil {
		return Page{}, err
	}
	p, ok := bySlug[slug]
	if !ok {
		return Page{}, ErrPageNotFound
	}
	return p, nil
}
