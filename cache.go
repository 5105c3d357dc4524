package likematch

import (
	"sync"

	"github.com/CrystallineCore/likematch/bitmap"
)

// queryCache is a bounded, FIFO-evicted cache of pattern -> matching id
// set, scoped to a single buildState. A successful Build always starts a
// fresh, empty queryCache, so a cached result can never outlive the
// index snapshot it was computed against.
type queryCache struct {
	mu      sync.Mutex
	size    int
	entries map[string]*bitmap.Bitmap
	order   []string
}

func newQueryCache(size int) *queryCache {
	if size <= 0 {
		return nil
	}
	return &queryCache{
		size:    size,
		entries: make(map[string]*bitmap.Bitmap, size),
	}
}

// get returns a Copy of the cached bitmap for key, so the caller always
// owns an independent result regardless of what Evaluate's callers do
// with it.
func (c *queryCache) get(key string) (*bitmap.Bitmap, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	bm, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	return bm.Copy(), true
}

// put stores a Copy of bm under key, evicting the oldest entry once size
// is exceeded.
func (c *queryCache) put(key string, bm *bitmap.Bitmap) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.entries[key]; exists {
		return
	}
	if len(c.order) >= c.size {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}
	c.entries[key] = bm.Copy()
	c.order = append(c.order, key)
}
