package cache

import "sync"

// Cache is a generic thread-safe LRU cache with a strict entry limit.
// When an insert would exceed the limit, the least recently used entries
// are evicted until the cache is back at the limit.
//
// The cache owns its stored values: whenever a value leaves the cache for
// any reason (eviction, replacement, Delete, Resize, Clear) the eviction
// callback runs, so owners of pooled or refcounted values can release them.
//
// Cache is safe for concurrent use.
// Cache must not be copied after creation (has mutex).
type Cache[K comparable, V any] struct {
	mu      sync.Mutex
	entries map[K]*lruNode[K, V]
	list    lruList[K, V]
	limit   int
	onEvict func(K, V)

	hits      uint64
	misses    uint64
	evictions uint64
}

// evicted is a key/value pair dropped under the lock, with the callback
// deferred until after unlock.
type evicted[K comparable, V any] struct {
	key   K
	value V
}

// New creates a new cache with the given entry limit.
// A limit of 0 means unlimited.
func New[K comparable, V any](limit int) *Cache[K, V] {
	return NewWithEvict[K, V](limit, nil)
}

// NewWithEvict creates a new cache that calls onEvict for every value the
// cache drops. The callback runs outside the cache lock and must not be nil
// checked by callers; a nil onEvict is allowed.
func NewWithEvict[K comparable, V any](limit int, onEvict func(K, V)) *Cache[K, V] {
	return &Cache[K, V]{
		entries: make(map[K]*lruNode[K, V]),
		limit:   limit,
		onEvict: onEvict,
	}
}

// Get retrieves a value from the cache and marks it most recently used.
// Returns (value, true) if found, (zero, false) otherwise.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	node, ok := c.entries[key]
	if !ok {
		c.misses++
		var zero V
		return zero, false
	}

	c.hits++
	c.list.MoveToFront(node)
	return node.value, true
}

// Peek retrieves a value without updating recency or hit statistics.
func (c *Cache[K, V]) Peek(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	node, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	return node.value, true
}

// Contains reports whether a key is cached without updating recency.
func (c *Cache[K, V]) Contains(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, ok := c.entries[key]
	return ok
}

// Put stores a value in the cache as the most recently used entry.
// Replacing an existing key drops the old value through the eviction
// callback. Inserting past the limit evicts the least recently used
// entries until the cache is back at the limit.
func (c *Cache[K, V]) Put(key K, value V) {
	c.mu.Lock()
	var dropped []evicted[K, V]

	if node, ok := c.entries[key]; ok {
		old := node.value
		node.value = value
		c.list.MoveToFront(node)
		c.mu.Unlock()
		if c.onEvict != nil {
			c.onEvict(key, old)
		}
		return
	}

	c.entries[key] = c.list.PushFront(key, value)
	dropped = c.evictOverLimit(dropped)
	c.mu.Unlock()

	c.runEvictions(dropped)
}

// GetOrCreate returns the cached value or creates it.
// Thread-safe: create is called under lock to prevent duplicate creation,
// so it should be cheap. Expensive work (decoding) belongs outside, with
// the result stored via Put.
func (c *Cache[K, V]) GetOrCreate(key K, create func() V) V {
	c.mu.Lock()

	if node, ok := c.entries[key]; ok {
		c.hits++
		c.list.MoveToFront(node)
		value := node.value
		c.mu.Unlock()
		return value
	}

	c.misses++
	value := create()
	c.entries[key] = c.list.PushFront(key, value)
	dropped := c.evictOverLimit(nil)
	c.mu.Unlock()

	c.runEvictions(dropped)
	return value
}

// Delete removes an entry from the cache, dropping its value through the
// eviction callback. Returns true if the entry was found and removed.
func (c *Cache[K, V]) Delete(key K) bool {
	c.mu.Lock()

	node, ok := c.entries[key]
	if !ok {
		c.mu.Unlock()
		return false
	}
	delete(c.entries, key)
	c.list.Remove(node)
	c.mu.Unlock()

	if c.onEvict != nil {
		c.onEvict(node.key, node.value)
	}
	return true
}

// Clear removes all entries from the cache, dropping every value through
// the eviction callback. Statistics are reset.
func (c *Cache[K, V]) Clear() {
	c.mu.Lock()

	var dropped []evicted[K, V]
	if c.onEvict != nil && len(c.entries) > 0 {
		dropped = make([]evicted[K, V], 0, len(c.entries))
		for _, node := range c.entries {
			dropped = append(dropped, evicted[K, V]{key: node.key, value: node.value})
		}
	}
	c.entries = make(map[K]*lruNode[K, V])
	c.list.Clear()
	c.hits = 0
	c.misses = 0
	c.evictions = 0
	c.mu.Unlock()

	c.runEvictions(dropped)
}

// Resize changes the entry limit. Shrinking below the current size evicts
// the least recently used entries immediately. A limit of 0 means unlimited.
func (c *Cache[K, V]) Resize(limit int) {
	c.mu.Lock()
	c.limit = limit
	dropped := c.evictOverLimit(nil)
	c.mu.Unlock()

	c.runEvictions(dropped)
}

// Len returns the number of entries in the cache.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.entries)
}

// Capacity returns the entry limit of the cache.
func (c *Cache[K, V]) Capacity() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.limit
}

// Stats returns cache statistics.
func (c *Cache[K, V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Stats{
		Len:       len(c.entries),
		Capacity:  c.limit,
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
	}
	if total := s.Hits + s.Misses; total > 0 {
		s.HitRate = float64(s.Hits) / float64(total)
	}
	return s
}

// evictOverLimit removes least recently used entries until the cache is at
// or under the limit, appending dropped pairs for post-unlock callbacks.
// Caller must hold c.mu.
func (c *Cache[K, V]) evictOverLimit(dropped []evicted[K, V]) []evicted[K, V] {
	if c.limit <= 0 {
		return dropped
	}
	for c.list.Len() > c.limit {
		node, ok := c.list.RemoveOldest()
		if !ok {
			break
		}
		delete(c.entries, node.key)
		c.evictions++
		if c.onEvict != nil {
			dropped = append(dropped, evicted[K, V]{key: node.key, value: node.value})
		}
	}
	return dropped
}

// runEvictions invokes the eviction callback for each dropped pair.
// Must be called without holding c.mu; the callback may call back into
// the cache.
func (c *Cache[K, V]) runEvictions(dropped []evicted[K, V]) {
	if c.onEvict == nil {
		return
	}
	for _, e := range dropped {
		c.onEvict(e.key, e.value)
	}
}

// Stats contains cache statistics.
type Stats struct {
	// Len is the current number of entries.
	Len int
	// Capacity is the entry limit (0 = unlimited).
	Capacity int
	// Hits is the number of cache hits.
	Hits uint64
	// Misses is the number of cache misses.
	Misses uint64
	// Evictions is the number of evicted entries.
	Evictions uint64
	// HitRate is the cache hit rate 0.0 to 1.0.
	HitRate float64
}
