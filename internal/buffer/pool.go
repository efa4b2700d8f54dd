package buffer

import "sync"

// Pool is a thread-safe pool for reusing pixel slices.
//
// Pool groups slices by their exact byte length. Frames of one animation
// share a single size, so steady-state playback recycles a small set of
// identically-sized buffers instead of allocating per conversion.
//
// Thread safety: All methods are safe for concurrent use.
type Pool struct {
	mu      sync.Mutex
	buckets map[int][][]byte
	maxSize int // max slices per bucket
}

// NewPool creates a new pixel slice pool with the given maximum slices per
// bucket. A maxPerBucket of 0 means unlimited (use with caution).
func NewPool(maxPerBucket int) *Pool {
	return &Pool{
		buckets: make(map[int][][]byte),
		maxSize: maxPerBucket,
	}
}

// Get retrieves a slice of exactly size bytes from the pool or allocates a
// new one. A reused slice is cleared (all bytes zeroed) before return.
// Get returns nil for size <= 0.
func (p *Pool) Get(size int) []byte {
	if size <= 0 {
		return nil
	}

	p.mu.Lock()
	bucket := p.buckets[size]
	if len(bucket) > 0 {
		// Pop from pool
		buf := bucket[len(bucket)-1]
		p.buckets[size] = bucket[:len(bucket)-1]
		p.mu.Unlock()

		// Clear before reuse
		clear(buf)
		return buf
	}
	p.mu.Unlock()

	return make([]byte, size)
}

// Put returns a slice to the pool for reuse.
// If buf is nil, empty, or the bucket is at max capacity, the slice is
// discarded.
func (p *Pool) Put(buf []byte) {
	if len(buf) == 0 {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	bucket := p.buckets[len(buf)]
	if p.maxSize > 0 && len(bucket) >= p.maxSize {
		// Bucket full, discard (GC will clean up)
		return
	}
	p.buckets[len(buf)] = append(bucket, buf)
}

// Len returns the total number of pooled slices across all buckets.
func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	n := 0
	for _, bucket := range p.buckets {
		n += len(bucket)
	}
	return n
}

// defaultPool is the package-level pool for convenient usage.
var defaultPool = NewPool(8)

// GetFromDefault retrieves a slice from the default pool.
func GetFromDefault(size int) []byte {
	return defaultPool.Get(size)
}

// PutToDefault returns a slice to the default pool.
func PutToDefault(buf []byte) {
	defaultPool.Put(buf)
}
