package cache

import (
	"store-rebalance-service/internal/domain"
	"sync"
)

// PairCache holds resolved distances for the lifetime of one run.
//
// Entries are never evicted or overwritten: the first value stored for an
// ordered pair is the value every later lookup sees. Safe for concurrent use.
type PairCache struct {
	mu sync.RWMutex
	m  map[domain.StorePair]float64
}

// NewPairCache takes ownership of seed; pass nil for an empty cache.
func NewPairCache(seed map[domain.StorePair]float64) *PairCache {
	if seed == nil {
		seed = make(map[domain.StorePair]float64)
	}
	return &PairCache{m: seed}
}

func (c *PairCache) Get(pair domain.StorePair) (float64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	km, ok := c.m[pair]
	return km, ok
}

// Put stores km unless the pair is already cached, and returns the value
// that is now cached for the pair.
func (c *PairCache) Put(pair domain.StorePair, km float64) float64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, ok := c.m[pair]; ok {
		return existing
	}
	c.m[pair] = km
	return km
}

func (c *PairCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.m)
}
