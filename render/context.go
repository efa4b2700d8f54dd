// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"errors"

	"github.com/gogpu/gputypes"
)

// Backend identifies a rendering backend kind.
//
// The numeric values are part of the boundary contract: hosts pass and
// receive them across the C ABI.
type Backend int32

const (
	// BackendDummy is the CPU-only testing backend. Always available.
	BackendDummy Backend = iota

	// BackendD3D11 provides GPU textures for compositor interop.
	BackendD3D11

	// BackendD3D9Ex provides double-buffered lockable surfaces for
	// zero-copy interop with a host image surface.
	BackendD3D9Ex

	// BackendMetal provides GPU textures plus compute-accelerated
	// pixel conversion.
	BackendMetal
)

// String returns the backend name.
func (b Backend) String() string {
	switch b {
	case BackendDummy:
		return "Dummy"
	case BackendD3D11:
		return "D3D11"
	case BackendD3D9Ex:
		return "D3D9Ex"
	case BackendMetal:
		return "Metal"
	default:
		return "Unknown"
	}
}

// IsValid returns true for a defined backend value.
func (b Backend) IsValid() bool {
	return b >= BackendDummy && b <= BackendMetal
}

// Errors returned by DeviceContext and Texture implementations.
var (
	// ErrBackendNotAvailable reports that a backend cannot run in this
	// process (no device, missing driver). The registry falls through to
	// the next candidate.
	ErrBackendNotAvailable = errors.New("render: backend not available")

	// ErrInvalidTextureSize reports zero or negative texture dimensions.
	ErrInvalidTextureSize = errors.New("render: invalid texture size")

	// ErrTextureDataSize reports pixel data smaller than width*height*4.
	ErrTextureDataSize = errors.New("render: pixel data smaller than texture")

	// ErrTextureDestroyed reports use of a texture after Destroy.
	ErrTextureDestroyed = errors.New("render: texture destroyed")

	// ErrContextClosed reports use of a device context after Close.
	ErrContextClosed = errors.New("render: device context closed")

	// ErrNilTexture reports a nil texture passed to a draw call.
	ErrNilTexture = errors.New("render: nil texture")
)

// Texture is a GPU (or CPU, for the dummy backend) image resource owned
// by the DeviceContext that created it.
type Texture interface {
	// Width returns the texture width in pixels.
	Width() uint32

	// Height returns the texture height in pixels.
	Height() uint32

	// Format returns the texture pixel format.
	// Frame textures are BGRA8 with premultiplied alpha.
	Format() gputypes.TextureFormat

	// Update replaces the texture contents with pixels, which must hold
	// at least Width*Height*4 bytes of BGRA premultiplied data.
	Update(pixels []byte) error

	// NativeHandle returns the backend-specific resource handle for
	// interop with a host surface, or 0 when the backend has none.
	// The handle stays valid until Destroy.
	NativeHandle() uintptr

	// Destroy releases the texture's resources. Destroy is idempotent.
	Destroy()
}

// DeviceContext creates and presents textures on one backend.
//
// A context and its textures must be used from a single thread.
type DeviceContext interface {
	// Backend returns the backend kind of this context.
	Backend() Backend

	// CreateTexture creates a width x height texture. When pixels is
	// non-nil it must hold at least width*height*4 bytes of BGRA
	// premultiplied data for the initial contents.
	CreateTexture(width, height uint32, pixels []byte) (Texture, error)

	// BeginFrame marks the beginning of a frame.
	// Must be called before any draw operations.
	BeginFrame()

	// EndFrame marks the end of a frame and finalizes pending draws.
	EndFrame()

	// Clear fills the frame with a color. Channels are 0.0 to 1.0.
	Clear(r, g, b, a float32)

	// DrawTexture draws a texture at the given position and size.
	DrawTexture(t Texture, x, y, width, height int) error

	// Flush submits all pending work to the device and returns once it
	// is queued (not necessarily complete).
	Flush() error

	// Close releases the context and every resource it still owns.
	Close() error
}

// FrameTextureFormat is the format of every frame texture the engine
// creates.
const FrameTextureFormat = gputypes.TextureFormatBGRA8Unorm
