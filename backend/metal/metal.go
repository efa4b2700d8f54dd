//go:build !nogpu

// Package metal provides the full-capability GPU device context: textures
// plus compute kernels for pixel conversion and scaling. Importing it also
// registers the package's pixel accelerator with the root package, so
// frame conversion moves to the GPU where the kernels apply.
//
// The kind name is a boundary compatibility label. The implementation
// runs on wgpu/hal like the other GPU backends.
//
// Import for registration:
//
//	import _ "github.com/gogpu/gifbolt/backend/metal"
package metal

import (
	"fmt"

	"github.com/gogpu/gifbolt"
	"github.com/gogpu/gifbolt/backend"
	"github.com/gogpu/gifbolt/internal/gpu"
	"github.com/gogpu/gifbolt/render"
)

func init() {
	backend.Register(render.BackendMetal, New)

	// Pixel accelerator for the conversion pipeline. Init never fails
	// outright; without a GPU it registers unready and everything stays
	// on the CPU.
	if err := gifbolt.RegisterAccelerator(&Accelerator{}); err != nil {
		gifbolt.Logger().Warn("pixel accelerator not available", "err", err)
	}
}

// New creates a device context, preferring the host's shared device and
// falling back to a private one. Returns render.ErrBackendNotAvailable
// (wrapped) when no GPU device can be had.
func New(handle render.DeviceHandle) (render.DeviceContext, error) {
	dev, err := gpu.FromProvider(handle)
	if err != nil {
		dev, err = gpu.Open()
		if err != nil {
			return nil, fmt.Errorf("metal: %s: %w", err, render.ErrBackendNotAvailable)
		}
	}
	return &Context{dev: dev, engine: gpu.NewEngine(dev)}, nil
}

// Context implements render.DeviceContext with GPU textures and exposes
// the context-level compute operations this contract adds on top of the
// base surface.
type Context struct {
	dev     *gpu.Device
	engine  *gpu.Engine
	inFrame bool
	closed  bool
}

// Backend returns render.BackendMetal.
func (c *Context) Backend() render.Backend { return render.BackendMetal }

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

// ConvertPremultiply converts straight-alpha RGBA to premultiplied BGRA
// with the context's compute kernel. Both slices hold width*height*4
// bytes.
func (c *Context) ConvertPremultiply(dst, src []byte, width, height int) error {
	if c.closed {
		return render.ErrContextClosed
	}
	return c.engine.ConvertPremultiply(dst, src, width, height)
}

// ScaleImage resamples src into dst with the context's compute kernel.
// Only nearest and bilinear run here; wider kernels belong to the CPU.
func (c *Context) ScaleImage(dst []byte, dstW, dstH int, src []byte, srcW, srcH int, filter gifbolt.ScalingFilter) error {
	if c.closed {
		return render.ErrContextClosed
	}
	gf, ok := gpuFilter(filter)
	if !ok {
		return gifbolt.ErrFallbackToCPU
	}
	return c.engine.Scale(dst, dstW, dstH, src, srcW, srcH, gf)
}

// Flush blocks until queued uploads have landed on the GPU.
func (c *Context) Flush() error {
	if c.closed {
		return render.ErrContextClosed
	}
	return c.dev.WaitIdle()
}

// Close releases the pipelines and, when privately owned, the device.
func (c *Context) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	c.engine.Close()
	c.dev.Close()
	return nil
}

// gpuFilter maps a public scaling filter to the kernel's filter code.
// The wide kernels have no GPU implementation.
func gpuFilter(filter gifbolt.ScalingFilter) (gpu.ScaleFilter, bool) {
	switch filter {
	case gifbolt.FilterNearest:
		return gpu.ScaleNearest, true
	case gifbolt.FilterBilinear:
		return gpu.ScaleBilinear, true
	default:
		return 0, false
	}
}
