//go:build !nogpu

// Package d3d9ex provides the double-buffered interop device context.
//
// Hosts on this boundary contract composite the decoder's surface on a
// device the engine does not control, so a surface must never change
// while the host might still be reading it. Every texture therefore
// carries two GPU surfaces: updates write the hidden one, wait for the
// GPU to go idle, and then flip which surface the native handle exposes.
//
// The backend requires a host device and is never auto-selected; create
// it explicitly with backend.New(render.BackendD3D9Ex, handle).
package d3d9ex

import (
	"fmt"

	"github.com/gogpu/gifbolt/backend"
	"github.com/gogpu/gifbolt/internal/gpu"
	"github.com/gogpu/gifbolt/render"
)

func init() {
	backend.Register(render.BackendD3D9Ex, New)
}

// New creates a device context on the host's shared device. Without one
// the backend cannot run: double buffering only matters when somebody
// else is reading the surfaces.
func New(handle render.DeviceHandle) (render.DeviceContext, error) {
	dev, err := gpu.FromProvider(handle)
	if err != nil {
		return nil, fmt.Errorf("d3d9ex: host device required: %w", render.ErrBackendNotAvailable)
	}
	return &Context{dev: dev}, nil
}

// Context implements render.DeviceContext with double-buffered textures
// on the host's device.
type Context struct {
	dev     *gpu.Device
	inFrame bool
	closed  bool
}

// Backend returns render.BackendD3D9Ex.
func (c *Context) Backend() render.Backend { return render.BackendD3D9Ex }

// Capabilities reports what the underlying device supports.
func (c *Context) Capabilities() render.DeviceCapabilities {
	return c.dev.Capabilities()
}

// CreateTexture allocates a double-buffered texture. pixels, when
// non-nil, seed the displayed surface so the first handle read already
// sees the first frame.
func (c *Context) CreateTexture(width, height uint32, pixels []byte) (render.Texture, error) {
	if c.closed {
		return nil, render.ErrContextClosed
	}
	primary, err := gpu.NewTexture(c.dev, width, height, pixels)
	if err != nil {
		return nil, err
	}
	alternate, err := gpu.NewTexture(c.dev, width, height, nil)
	if err != nil {
		primary.Destroy()
		return nil, err
	}
	return newDoubleBuffered(width, height, primary, alternate, c.dev), nil
}

// BeginFrame marks the start of a frame.
func (c *Context) BeginFrame() { c.inFrame = true }

// EndFrame marks the end of a frame.
func (c *Context) EndFrame() { c.inFrame = false }

// Clear is a no-op; the host owns the render pass on its device.
func (c *Context) Clear(r, g, b, a float32) {}

// DrawTexture validates the texture. The host composites surfaces it
// obtains through their native handles.
func (c *Context) DrawTexture(t render.Texture, x, y, width, height int) error {
	if c.closed {
		return render.ErrContextClosed
	}
	if t == nil {
		return render.ErrNilTexture
	}
	if t.NativeHandle() == 0 {
		return render.ErrTextureDestroyed
	}
	return nil
}

// Flush blocks until queued uploads have landed on the GPU.
func (c *Context) Flush() error {
	if c.closed {
		return render.ErrContextClosed
	}
	return c.dev.WaitIdle()
}

// Close detaches from the host device. The device itself belongs to the
// host and is left running.
func (c *Context) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	c.dev.Close()
	return nil
}
