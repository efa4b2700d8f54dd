//go:build !nogpu

package d3d9ex

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/gifbolt/render"
)

// surface is one half of a double-buffered pair. Real surfaces are GPU
// textures; tests inject fakes to verify flip ordering.
type surface interface {
	Update(pixels []byte) error
	NativeHandle() uintptr
	Destroy()
}

// idleWaiter blocks until the GPU has finished consuming the displayed
// surface. The real implementation waits on a fence.
type idleWaiter interface {
	WaitIdle() error
}

// Texture is a double-buffered render.Texture. NativeHandle always
// exposes the displayed surface; Update writes the hidden one and flips
// only after the GPU is idle, so the host never reads a surface while it
// is being written.
type Texture struct {
	width  uint32
	height uint32

	primary   surface
	alternate surface
	waiter    idleWaiter

	// displayingAlt selects which surface the handle exposes. It and
	// destroyed are atomic so handle readers never take the write lock,
	// even while an update is blocked on the GPU.
	displayingAlt atomic.Bool
	destroyed     atomic.Bool

	mu sync.Mutex
}

var _ render.Texture = (*Texture)(nil)

func newDoubleBuffered(width, height uint32, primary, alternate surface, waiter idleWaiter) *Texture {
	return &Texture{
		width:     width,
		height:    height,
		primary:   primary,
		alternate: alternate,
		waiter:    waiter,
	}
}

// Width returns the texture width in pixels.
func (t *Texture) Width() uint32 { return t.width }

// Height returns the texture height in pixels.
func (t *Texture) Height() uint32 { return t.height }

// Format returns the frame texture format.
func (t *Texture) Format() gputypes.TextureFormat { return render.FrameTextureFormat }

// Update writes pixels into the hidden surface, waits for the GPU to go
// idle, then flips the displayed surface. pixels must hold
// width*height*4 premultiplied BGRA bytes.
func (t *Texture) Update(pixels []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.destroyed.Load() {
		return render.ErrTextureDestroyed
	}
	size := int(t.width) * int(t.height) * 4
	if len(pixels) != size {
		return fmt.Errorf("got %d bytes, need %d: %w", len(pixels), size, render.ErrTextureDataSize)
	}

	if err := t.back().Update(pixels); err != nil {
		return err
	}
	if err := t.waiter.WaitIdle(); err != nil {
		return err
	}
	t.displayingAlt.Store(!t.displayingAlt.Load())
	return nil
}

// NativeHandle returns the handle of the currently displayed surface.
func (t *Texture) NativeHandle() uintptr {
	if t.destroyed.Load() {
		return 0
	}
	return t.front().NativeHandle()
}

// Destroy releases both surfaces. Safe to call more than once.
func (t *Texture) Destroy() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.destroyed.Load() {
		return
	}
	t.destroyed.Store(true)
	t.primary.Destroy()
	t.alternate.Destroy()
}

func (t *Texture) front() surface {
	if t.displayingAlt.Load() {
		return t.alternate
	}
	return t.primary
}

func (t *Texture) back() surface {
	if t.displayingAlt.Load() {
		return t.primary
	}
	return t.alternate
}
