package folio

import (
	"sync"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/reannemartin/folio/content"
)

// CatalogCache serves the site catalog. An external catalog file is re-read
// once the TTL expires; a reload that fails keeps the last valid snapshot.
type CatalogCache struct {
	mu      sync.RWMutex
	catalog *content.Catalog
	fetched time.Time
	ttl     time.Duration
	path    string
	load    func(path string) (*content.Catalog, error)
	now     func() time.Time
	logger  echo.Logger
}

// NewCatalogCache loads the catalog at path, or the embedded catalog when
// path is empty. The first load must succeed.
func NewCatalogCache(path string, ttl time.Duration, logger echo.Logger) (*CatalogCache, error) {
	c := &CatalogCache{
		ttl:    ttl,
		path:   path,
		load:   content.Load,
		now:    time.Now,
		logger: logger,
	}
	if path == "" {
		c.catalog = content.Default()
		c.fetched = c.now()
		return c, nil
	}
	cat, err := c.load(path)
	if err != nil {
		return nil, err
	}
	c.catalog = cat
	c.fetched = c.now()
	return c, nil
}

func (c *CatalogCache) valid() bool {
	return c.path == "" || c.now().Sub(c.fetched) < c.ttl
}

// Get returns the current catalog snapshot. Snapshots are never mutated, so
// callers may keep them.
func (c *CatalogCache) Get() *content.Catalog {
	c.mu.RLock()
	if c.valid() {
		cat := c.catalog
		c.mu.RUnlock()
		return cat
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.valid() {
		return c.catalog
	}
	cat, err := c.load(c.path)
	// Retry after another TTL either way.
	c.fetched = c.now()
	if err != nil {
		if c.logger != nil {
			c.logger.Warnf("catalog reload failed, keeping previous snapshot: %v", err)
		}
		return c.catalog
	}
	c.catalog = cat
	return cat
}

// Invalidate forces the next Get to re-read an external catalog.
func (c *CatalogCache) Invalidate() {
	c.mu.Lock()
	c.fetched = time.Time{}
	c.mu.Unlock()
}
