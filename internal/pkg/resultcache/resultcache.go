// Package resultcache memoizes computed reports by (project, query shape)
// for a short TTL. Event ingestion invalidates a whole project at once by
// bumping its generation counter, so stale entries simply become
// unreachable and age out of the store.
package resultcache

import (
	"fmt"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/dgraph-io/ristretto"
)

// Cache is safe for concurrent use by multiple report requests.
type Cache struct {
	store *ristretto.Cache
	ttl   time.Duration

	mu   sync.RWMutex
	gens map[uint]uint64
}

// New creates a cache holding at most maxEntries results, each kept for
// the given TTL. Every entry counts as cost 1, so the bound is on entry
// count, not memory size.
func New(maxEntries int64, ttl time.Duration) (*Cache, error) {
	store, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: maxEntries * 10,
		MaxCost:     maxEntries,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("error creating result cache: %w", err)
	}
	return &Cache{
		store: store,
		ttl:   ttl,
		gens:  make(map[uint]uint64),
	}, nil
}

// Get returns the cached value for the project and query shape, if any.
func (c *Cache) Get(projectID uint, shape string) (interface{}, bool) {
	return c.store.Get(c.key(projectID, shape))
}

// Set stores a computed result under the project's current generation.
func (c *Cache) Set(projectID uint, shape string, value interface{}) {
	c.store.SetWithTTL(c.key(projectID, shape), value, 1, c.ttl)
}

// Invalidate drops all cached entries of a project. Implemented as a
// generation bump: every subsequent key for the project hashes differently,
// and the orphaned entries expire via TTL.
func (c *Cache) Invalidate(projectID uint) {
	c.mu.Lock()
	c.gens[projectID]++
	c.mu.Unlock()
}

// Wait blocks until pending writes are visible. Only used by tests;
// ristretto applies sets asynchronously.
func (c *Cache) Wait() {
	c.store.Wait()
}

// Close releases the underlying store.
func (c *Cache) Close() {
	c.store.Close()
}

func (c *Cache) key(projectID uint, shape string) uint64 {
	c.mu.RLock()
	gen := c.gens[projectID]
	c.mu.RUnlock()

	return xxhash.Sum64String(fmt.Sprintf("%d:%d:%s", projectID, gen, shape))
}
