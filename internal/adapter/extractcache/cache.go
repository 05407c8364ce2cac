package extractcache

import (
	"fmt"
	"path/filepath"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/couchcryptid/clim2parquet/internal/domain"
	"github.com/couchcryptid/clim2parquet/internal/observability"
)

type key struct {
	name    string
	level   int
	version string
}

// CachedExtractor wraps an Extractor with an in-memory LRU cache keyed by
// file base name, admin level and GADM version. The reference builder and the
// converter parse the same names, so the second pass is served from memory.
type CachedExtractor struct {
	inner   domain.Extractor
	cache   *lru.Cache[key, domain.AdminCode]
	metrics *observability.Metrics
}

// New creates a cache decorator around an extractor. metrics may be nil.
func New(inner domain.Extractor, maxEntries int, metrics *observability.Metrics) (*CachedExtractor, error) {
	cache, err := lru.New[key, domain.AdminCode](maxEntries)
	if err != nil {
		return nil, fmt.Errorf("create extract cache: %w", err)
	}
	return &CachedExtractor{inner: inner, cache: cache, metrics: metrics}, nil
}

func (c *CachedExtractor) Extract(filename string, level int, version string) (domain.AdminCode, error) {
	k := key{name: filepath.Base(filename), level: level, version: version}
	if code, ok := c.cache.Get(k); ok {
		c.observe("hit")
		return code, nil
	}
	c.observe("miss")

	code, err := c.inner.Extract(filename, level, version)
	if err != nil {
		// Only successes are cached so every caller sees the underlying error.
		return code, err
	}
	c.cache.Add(k, code)
	return code, nil
}

// Len returns the number of cached entries.
func (c *CachedExtractor) Len() int {
	return c.cache.Len()
}

func (c *CachedExtractor) observe(result string) {
	if c.metrics != nil {
		c.metrics.ExtractCache.WithLabelValues(result).Inc()
	}
}
