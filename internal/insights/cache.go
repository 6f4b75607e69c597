package insights

import (
	"fmt"
	"time"

	"github.com/dgraph-io/ristretto"

	"github.com/sannskruti/cashflow-ai-dashboard/internal/domain"
)

// Cache defaults per the product contract: entries live 30 minutes from
// write and at most 500 (dataset, horizon) pairs are retained.
const (
	DefaultCacheTTL  = 30 * time.Minute
	DefaultCacheSize = 500
)

// Cache memoizes validated insight results per (dataset, horizon) key. A hit
// within the TTL is served without touching the reasoning service, even if
// the underlying transactions changed after the entry was written; that
// staleness is a deliberate trade-off. Entries are written only after a
// fully successful reasoning call.
type Cache struct {
	inner *ristretto.Cache
	ttl   time.Duration
}

// NewCache creates a cache bounded to maxEntries with the given TTL.
func NewCache(maxEntries int64, ttl time.Duration) (*Cache, error) {
	inner, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: maxEntries * 10,
		MaxCost:     maxEntries,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("NewCache: %w", err)
	}
	return &Cache{inner: inner, ttl: ttl}, nil
}

// Key builds the cache key for one (dataset, horizon) pair.
func Key(datasetID string, horizon int) string {
	return fmt.Sprintf("%s:%d", datasetID, horizon)
}

// Get returns the cached insights for key, if present and unexpired.
func (c *Cache) Get(key string) (*domain.AiInsights, bool) {
	v, ok := c.inner.Get(key)
	if !ok {
		return nil, false
	}
	ins, ok := v.(*domain.AiInsights)
	return ins, ok
}

// Set stores insights under key with the configured TTL. It waits for the
// write to become visible so an immediately following Get observes it.
func (c *Cache) Set(key string, ins *domain.AiInsights) {
	c.inner.SetWithTTL(key, ins, 1, c.ttl)
	c.inner.Wait()
}

// Close releases the cache's internal resources.
func (c *Cache) Close() {
	c.inner.Close()
}
