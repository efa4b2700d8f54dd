package gifbolt

import (
	"sync/atomic"

	"github.com/gogpu/gifbolt/internal/buffer"
)

// PixelBuffer is a reference-counted pixel payload. It is the only type
// whose lifetime a caller may extend past the next decoder call: plain
// []byte results borrow cache storage, a PixelBuffer owns its bytes until
// the last reference is released.
//
// A new buffer starts with one reference held by the caller. Release
// returns the storage to the shared pool at zero references; using the
// buffer after that point, or releasing it again, panics.
type PixelBuffer struct {
	data []byte
	refs atomic.Int32
}

// NewPixelBuffer allocates a pool-backed buffer of size bytes holding one
// reference.
func NewPixelBuffer(size int) *PixelBuffer {
	if size <= 0 {
		return nil
	}
	b := &PixelBuffer{data: buffer.GetFromDefault(size)}
	b.refs.Store(1)
	return b
}

// newPixelBufferCopy allocates a buffer holding a copy of src.
func newPixelBufferCopy(src []byte) *PixelBuffer {
	b := NewPixelBuffer(len(src))
	if b != nil {
		copy(b.data, src)
	}
	return b
}

// Data returns the buffer's bytes. The slice stays valid until the last
// reference is released.
func (b *PixelBuffer) Data() []byte {
	b.check()
	return b.data
}

// Size returns the buffer length in bytes.
func (b *PixelBuffer) Size() int {
	b.check()
	return len(b.data)
}

// Retain adds a reference.
func (b *PixelBuffer) Retain() {
	b.check()
	b.refs.Add(1)
}

// Release drops a reference. The reference that reaches zero returns the
// storage to the pool.
func (b *PixelBuffer) Release() {
	refs := b.refs.Add(-1)
	if refs < 0 {
		panic("gifbolt: PixelBuffer released after free")
	}
	if refs == 0 {
		buffer.PutToDefault(b.data)
		b.data = nil
	}
}

// RefCount returns the current reference count.
func (b *PixelBuffer) RefCount() int { return int(b.refs.Load()) }

func (b *PixelBuffer) check() {
	if b.refs.Load() <= 0 {
		panic("gifbolt: use of released PixelBuffer")
	}
}
