package citest

import (
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"gocit/internal/errors"
	"gocit/internal/metrics"
)

// ResidualCache holds residual vectors keyed by target and conditioning set.
// Concurrent misses on the same key compute the residual once.
// Cached slices are shared and must not be modified.
type ResidualCache struct {
	entries *lru.Cache[string, []float64]
	group   singleflight.Group
	metrics *metrics.Metrics
}

// NewResidualCache creates a cache bounded to size entries
func NewResidualCache(size int, m *metrics.Metrics) (*ResidualCache, error) {
	entries, err := lru.New[string, []float64](size)
	if err != nil {
		return nil, errors.InvalidConfig("residual_cache_size = %d: %v", size, err)
	}
	return &ResidualCache{entries: entries, metrics: m}, nil
}

// Get returns the residual stored under key, computing and storing it on a miss
func (c *ResidualCache) Get(key string, compute func() ([]float64, error)) ([]float64, error) {
	if resid, ok := c.entries.Get(key); ok {
		c.metrics.CacheHit()
		return resid, nil
	}

	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		if resid, ok := c.entries.Get(key); ok {
			c.metrics.CacheHit()
			return resid, nil
		}
		c.metrics.CacheMiss()
		resid, err := compute()
		if err != nil {
			return nil, err
		}
		c.entries.Add(key, resid)
		return resid, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]float64), nil
}

// Len returns the number of cached residuals
func (c *ResidualCache) Len() int {
	return c.entries.Len()
}

// Purge drops every cached residual
func (c *ResidualCache) Purge() {
	c.entries.Purge()
}
