// Package cache provides the LRU cache backing decoded frame storage.
//
// # Cache[K, V]
//
// A thread-safe LRU cache with a strict entry limit. The decoder keys it by
// frame index plus output geometry, so full-size and scaled variants of the
// same frame occupy separate slots under one shared bound.
//
//	c := cache.NewWithEvict[int, []byte](100, release)
//	c.Put(3, pixels)
//	pixels, ok := c.Get(3)
//
// The cache owns stored values. Any path that drops a value (LRU eviction,
// key replacement, Delete, Resize, Clear) reports it through the eviction
// callback, which lets owners return pooled buffers or release refcounts.
// The callback always runs outside the cache lock.
//
// # Thread Safety
//
// Cache is safe for concurrent use.
// It must not be copied after creation (it contains a mutex).
package cache
