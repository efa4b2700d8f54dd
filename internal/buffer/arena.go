// Package buffer provides allocation helpers for transient decode buffers:
// a block-based arena for short-lived per-load scratch and a size-bucketed
// pool for recycled pixel slices.
package buffer

import "sync"

// DefaultBlockSize is the arena block size used when none is given.
const DefaultBlockSize = 4 << 20 // 4 MiB

// arenaAlign keeps returned slices 8-byte aligned within their block.
const arenaAlign = 8

// Arena is a bump allocator over large blocks. Alloc hands out slices of a
// current block until it runs out, then grabs a fresh block. Individual
// allocations are never freed; Reset recycles all blocks at once.
//
// The decoder uses one arena per load for frame composition scratch, so a
// multi-frame decode burst costs a handful of block allocations instead of
// one heap allocation per frame.
//
// Arena is safe for concurrent use.
type Arena struct {
	mu        sync.Mutex
	blockSize int
	blocks    [][]byte
	current   []byte
	offset    int
	allocated int64
}

// NewArena creates an arena with the given block size.
// A blockSize of 0 or less selects DefaultBlockSize.
func NewArena(blockSize int) *Arena {
	if blockSize <= 0 {
		blockSize = DefaultBlockSize
	}
	return &Arena{blockSize: blockSize}
}

// Alloc returns a zeroed slice of n bytes valid until the next Reset.
// Requests larger than the block size get a dedicated block.
// Alloc returns nil for n <= 0.
func (a *Arena) Alloc(n int) []byte {
	if n <= 0 {
		return nil
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	a.allocated += int64(n)

	if n > a.blockSize {
		// Oversized request: dedicated block, kept out of the bump block
		// so the current block's remaining space stays usable.
		block := make([]byte, n)
		a.blocks = append(a.blocks, block)
		return block
	}

	aligned := (n + arenaAlign - 1) &^ (arenaAlign - 1)
	if a.current == nil || a.offset+aligned > len(a.current) {
		a.current = make([]byte, a.blockSize)
		a.blocks = append(a.blocks, a.current)
		a.offset = 0
	}

	buf := a.current[a.offset : a.offset+n : a.offset+n]
	a.offset += aligned
	return buf
}

// Reset discards all allocations. The most recent bump block is retained
// and zeroed for reuse; dedicated and older blocks are released to the
// garbage collector.
//
// Slices returned by Alloc before the Reset must no longer be used.
func (a *Arena) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.current != nil {
		clear(a.current)
		a.blocks = a.blocks[:0]
		a.blocks = append(a.blocks, a.current)
	} else {
		a.blocks = a.blocks[:0]
	}
	a.offset = 0
	a.allocated = 0
}

// AllocatedBytes returns the total bytes requested since the last Reset.
func (a *Arena) AllocatedBytes() int64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.allocated
}

// BlockCount returns the number of blocks currently held.
func (a *Arena) BlockCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.blocks)
}

// BlockSize returns the configured block size.
func (a *Arena) BlockSize() int {
	return a.blockSize
}
