//go:build !nogpu

// Package d3d11 provides the GPU device context for hosts on the D3D11
// boundary contract. Textures live on the GPU; pixel conversion stays on
// the CPU because this contract carries no compute kernels.
//
// The kind name is a boundary compatibility label. The implementation
// runs on wgpu/hal like the other GPU backends.
//
// Import for registration:
//
//	import _ "github.com/gogpu/gifbolt/backend/d3d11"
package d3d11

import (
	"fmt"

	"github.com/gogpu/gifbolt/backend"
	"github.com/gogpu/gifbolt/internal/gpu"
	"github.com/gogpu/gifbolt/render"
)

func init() {
	backend.Register(render.BackendD3D11, New)
}

// New creates a device context, preferring the host's shared device and
// falling back to a private one. Returns render.ErrBackendNotAvailable
// (wrapped) when no GPU device can be had.
func New(handle render.DeviceHandle) (render.DeviceContext, error) {
	dev, err := gpu.FromProvider(handle)
	if err != nil {
		dev, err = gpu.Open()
		if err != nil {
			return nil, fmt.Errorf("d3d11: %s: %w", err, render.ErrBackendNotAvailable)
		}
	}
	return &Context{dev: dev}, nil
}

// Context implements render.DeviceContext with GPU textures.
type Context struct {
	dev     *gpu.Device
	inFrame bool
	closed  bool
}

// Backend returns render.BackendD3D11.
func (c *Context) Backend() render.Backend { return render.BackendD3D11 }

// Capabilities reports what the underlying device supports.
func (c *Context) Capabilities() render.DeviceCapabilities {
	return c.dev.Capabilities()
}

// CreateTexture allocates a GPU texture, uploading pixels when non-nil.
func (c *Context) CreateTexture(width, height uint32, pixels []byte) (render.Texture, error) {
	if c.closed {
		return nil, render.ErrContextClosed
	}
	return gpu.NewTexture(c.dev, width, height, pixels)
}

// BeginFrame marks the start of a frame.
func (c *Context) BeginFrame() { c.inFrame = true }

// EndFrame marks the end of a frame.
func (c *Context) EndFrame() { c.inFrame = false }

// Clear is a no-op; the host owns the render pass and clears its own
// surface before compositing.
func (c *Context) Clear(r, g, b, a float32) {}

// DrawTexture validates the texture. Compositing happens in the host,
// which consumes textures through their native handles.
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

// Close releases the device if privately owned.
func (c *Context) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	c.dev.Close()
	return nil
}
