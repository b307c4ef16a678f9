package das

import (
	"sync"

	"github.com/orovalt/sentrybeacon/config/params"
	"github.com/orovalt/sentrybeacon/consensus-types/primitives"
)

// dbidx is a per-root bitset of which blob indices have a sidecar that
// has passed batch verification and been persisted to disk.
type dbidx []bool

func newDbidx() dbidx {
	return make(dbidx, params.BeaconConfig().MaxBlobsPerBlock)
}

// missing returns, in ascending order, every index below expected that
// is not yet set.
func (d dbidx) missing(expected int) []uint64 {
	var out []uint64
	for i := 0; i < expected; i++ {
		if i >= len(d) || !d[i] {
			out = append(out, uint64(i))
		}
	}
	return out
}

func (d dbidx) all(expected int) bool {
	return len(d.missing(expected)) == 0
}

// cacheKey identifies one in-flight availability check.
type cacheKey struct {
	root [32]byte
	slot primitives.Slot
}

// cacheEntry tracks one root's progress toward full data availability
// between the moment its block is first seen and the moment every
// sidecar has been verified and persisted.
type cacheEntry struct {
	mu      sync.Mutex
	persist dbidx // sidecars durably written to the blob store
}

// cache is the LazilyPersistentStore's table of in-flight entries, keyed
// by (root, slot) so a root can never collide across a reorg to a
// different slot.
type cache struct {
	mu      sync.Mutex
	entries map[cacheKey]*cacheEntry
}

func newCache() *cache {
	return &cache{entries: make(map[cacheKey]*cacheEntry)}
}

// ensure returns the entry for key, creating it if absent.
func (c *cache) ensure(key cacheKey) *cacheEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		e = &cacheEntry{persist: newDbidx()}
		c.entries[key] = e
	}
	return e
}

// delete removes key's entry. Nothing in this module calls it, so entries
// stay in the cache for the lifetime of the LazilyPersistentStore.
func (c *cache) delete(key cacheKey) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}
