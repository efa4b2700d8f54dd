//go:build !nogpu

package gpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/gifbolt/render"
)

// Texture is a render.Texture backed by a hal storage buffer of BGRA
// texels. Consumers reach the GPU object through NativeHandle; the render
// path never reads the buffer back.
type Texture struct {
	dev       *Device
	buf       hal.Buffer
	width     uint32
	height    uint32
	destroyed bool
}

var _ render.Texture = (*Texture)(nil)

// NewTexture allocates a texture-sized buffer on dev and uploads pixels
// when non-nil. pixels must hold width*height*4 bytes.
func NewTexture(dev *Device, width, height uint32, pixels []byte) (*Texture, error) {
	if dev == nil || dev.device == nil {
		return nil, ErrNoDevice
	}
	if width == 0 || height == 0 || width > maxTextureSize || height > maxTextureSize {
		return nil, fmt.Errorf("%dx%d: %w", width, height, render.ErrInvalidTextureSize)
	}
	size := uint64(width) * uint64(height) * 4
	if pixels != nil && uint64(len(pixels)) != size {
		return nil, fmt.Errorf("got %d bytes, need %d: %w", len(pixels), size, render.ErrTextureDataSize)
	}

	buf, err := dev.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "frame_texture", Size: size,
		Usage: gputypes.BufferUsageStorage | gputypes.BufferUsageCopySrc | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("create texture buffer: %w", err)
	}

	t := &Texture{dev: dev, buf: buf, width: width, height: height}
	if pixels != nil {
		dev.queue.WriteBuffer(buf, 0, pixels)
	}
	return t, nil
}

// Width returns the texture width in pixels.
func (t *Texture) Width() uint32 { return t.width }

// Height returns the texture height in pixels.
func (t *Texture) Height() uint32 { return t.height }

// Format returns the frame texture format.
func (t *Texture) Format() gputypes.TextureFormat { return render.FrameTextureFormat }

// Update uploads new contents. pixels must hold width*height*4 bytes.
func (t *Texture) Update(pixels []byte) error {
	if t.destroyed {
		return render.ErrTextureDestroyed
	}
	size := uint64(t.width) * uint64(t.height) * 4
	if uint64(len(pixels)) != size {
		return fmt.Errorf("got %d bytes, need %d: %w", len(pixels), size, render.ErrTextureDataSize)
	}
	t.dev.queue.WriteBuffer(t.buf, 0, pixels)
	return nil
}

// NativeHandle returns the hal buffer handle backing the texture, or 0
// after Destroy.
func (t *Texture) NativeHandle() uintptr {
	if t.destroyed {
		return 0
	}
	return t.buf.NativeHandle()
}

// ReadPixels copies the texture contents into dst through a staging
// buffer, blocking until the copy completes. Intended for tests and
// debugging.
func (t *Texture) ReadPixels(dst []byte) error {
	if t.destroyed {
		return render.ErrTextureDestroyed
	}
	size := uint64(t.width) * uint64(t.height) * 4
	if uint64(len(dst)) != size {
		return fmt.Errorf("got %d bytes, need %d: %w", len(dst), size, render.ErrTextureDataSize)
	}
	dev, queue := t.dev.device, t.dev.queue

	staging, err := dev.CreateBuffer(&hal.BufferDescriptor{
		Label: "texture_staging", Size: size,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("create staging buffer: %w", err)
	}
	defer dev.DestroyBuffer(staging)

	encoder, err := dev.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "texture_read"})
	if err != nil {
		return fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("texture_read"); err != nil {
		return fmt.Errorf("begin encoding: %w", err)
	}
	encoder.CopyBufferToBuffer(t.buf, staging, []hal.BufferCopy{
		{SrcOffset: 0, DstOffset: 0, Size: size},
	})
	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("end encoding: %w", err)
	}
	defer dev.FreeCommandBuffer(cmdBuf)

	fence, err := dev.CreateFence()
	if err != nil {
		return fmt.Errorf("create fence: %w", err)
	}
	defer dev.DestroyFence(fence)
	if err := queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		return fmt.Errorf("submit: %w", err)
	}
	fenceOK, err := dev.Wait(fence, 1, fenceTimeout)
	if err != nil || !fenceOK {
		return fmt.Errorf("wait for GPU: ok=%v err=%w", fenceOK, err)
	}
	return queue.ReadBuffer(staging, 0, dst)
}

// Destroy releases the GPU buffer. Safe to call more than once.
func (t *Texture) Destroy() {
	if t.destroyed {
		return
	}
	t.destroyed = true
	t.dev.device.DestroyBuffer(t.buf)
	t.buf = nil
}
