// Package dummy provides a device context backed by plain memory.
//
// It has no GPU dependency and is always available, which makes it the
// fallback at the end of backend selection and the workhorse of tests:
// textures retain their last uploaded pixels for inspection.
//
// Import for registration:
//
//	import _ "github.com/gogpu/gifbolt/backend/dummy"
package dummy

import (
	"fmt"

	"github.com/gogpu/gifbolt/backend"
	"github.com/gogpu/gifbolt/render"
)

// maxTextureSize caps texture dimensions, matching what the GPU backends
// accept so code tested against dummy does not overshoot on real devices.
const maxTextureSize = 16384

func init() {
	backend.Register(render.BackendDummy, New)
}

// New creates a memory-backed device context. It never fails; the handle
// is ignored because no GPU device is involved.
func New(handle render.DeviceHandle) (render.DeviceContext, error) {
	return &Context{}, nil
}

// Context implements render.DeviceContext with CPU memory textures.
type Context struct {
	inFrame   bool
	closed    bool
	lastClear [4]float32
	drawCount int
}

// Backend returns render.BackendDummy.
func (c *Context) Backend() render.Backend { return render.BackendDummy }

// CreateTexture allocates a memory texture. pixels may be nil for an
// uninitialized texture, otherwise it must hold width*height*4 bytes.
func (c *Context) CreateTexture(width, height uint32, pixels []byte) (render.Texture, error) {
	if c.closed {
		return nil, render.ErrContextClosed
	}
	if width == 0 || height == 0 || width > maxTextureSize || height > maxTextureSize {
		return nil, fmt.Errorf("%dx%d: %w", width, height, render.ErrInvalidTextureSize)
	}
	size := int(width) * int(height) * 4
	if pixels != nil && len(pixels) != size {
		return nil, fmt.Errorf("got %d bytes, need %d: %w", len(pixels), size, render.ErrTextureDataSize)
	}

	t := &Texture{width: width, height: height, data: make([]byte, size)}
	copy(t.data, pixels)
	return t, nil
}

// BeginFrame marks the start of a frame.
func (c *Context) BeginFrame() { c.inFrame = true }

// EndFrame marks the end of a frame.
func (c *Context) EndFrame() { c.inFrame = false }

// InFrame reports whether a frame is currently open.
func (c *Context) InFrame() bool { return c.inFrame }

// Clear records the clear color. Nothing is rasterized.
func (c *Context) Clear(r, g, b, a float32) {
	c.lastClear = [4]float32{r, g, b, a}
}

// LastClear returns the color of the most recent Clear call.
func (c *Context) LastClear() (r, g, b, a float32) {
	return c.lastClear[0], c.lastClear[1], c.lastClear[2], c.lastClear[3]
}

// DrawTexture validates the texture and counts the call.
func (c *Context) DrawTexture(t render.Texture, x, y, width, height int) error {
	if c.closed {
		return render.ErrContextClosed
	}
	if t == nil {
		return render.ErrNilTexture
	}
	if dt, ok := t.(*Texture); ok && dt.destroyed {
		return render.ErrTextureDestroyed
	}
	c.drawCount++
	return nil
}

// DrawCount returns how many textures were drawn since creation.
func (c *Context) DrawCount() int { return c.drawCount }

// Flush is a no-op; memory writes are immediately visible.
func (c *Context) Flush() error {
	if c.closed {
		return render.ErrContextClosed
	}
	return nil
}

// Close shuts the context down. Further calls fail with ErrContextClosed.
func (c *Context) Close() error {
	c.closed = true
	return nil
}
