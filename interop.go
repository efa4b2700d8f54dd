package gifbolt

import (
	"fmt"

	"github.com/gogpu/gifbolt/render"
)

// AttachBackend hands the decoder a device context to upload frames
// through. The context stays owned by the caller: Close destroys the
// decoder's texture but leaves an attached context open. Any context
// the decoder created itself (WithBackend) is closed and replaced.
func (d *Decoder) AttachBackend(ctx render.DeviceContext) error {
	if ctx == nil {
		return fmt.Errorf("%w: nil context", ErrNoBackend)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.closeBackendLocked(); err != nil {
		Logger().Warn("closing previous backend", "err", err)
	}
	d.ctx = ctx
	d.ownsCtx = false
	return nil
}

// Backend returns the attached context's kind. ok is false when no
// context is attached.
func (d *Decoder) Backend() (kind render.Backend, ok bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.ctx == nil {
		return render.BackendDummy, false
	}
	return d.ctx.Backend(), true
}

// NativeTexturePtr returns the native handle of the decoder's frame
// texture for host-side compositing, 0 when no texture exists yet.
// UpdateGPUTexture creates the texture on first upload.
func (d *Decoder) NativeTexturePtr() uintptr {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.tex == nil {
		return 0
	}
	return d.tex.NativeHandle()
}

// TextureFrame returns the frame index currently uploaded to the GPU
// texture, -1 when nothing has been uploaded.
func (d *Decoder) TextureFrame() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.texFrame
}

// UpdateGPUTexture uploads frame index to the decoder's frame texture,
// creating the texture on first use. The pixels go through the same
// convert-and-cache path as FramePixelsBGRA, so a warm cache makes this
// a pure upload.
func (d *Decoder) UpdateGPUTexture(index int) error {
	pix, err := d.FramePixelsBGRA(index)
	if err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.ctx == nil {
		return ErrNoBackend
	}
	if d.tex == nil {
		tex, err := d.ctx.CreateTexture(uint32(d.width), uint32(d.height), pix)
		if err != nil {
			return err
		}
		d.tex = tex
		d.texFrame = index
		return nil
	}
	if err := d.tex.Update(pix); err != nil {
		return err
	}
	d.texFrame = index
	return nil
}

// AdvanceAndUpdateGPUTexture advances the decoder's own playback state
// one step and uploads the resulting frame, returning its index. A
// complete animation stays on its last frame and keeps returning it.
// One call per render tick replaces the advance/convert/upload triple
// for hosts driving playback across a boundary.
func (d *Decoder) AdvanceAndUpdateGPUTexture() (int, error) {
	d.mu.Lock()
	adv := AdvanceFrame(d.playFrame, len(d.frames), d.playRepeat)
	d.playFrame = adv.NextFrame
	d.playRepeat = adv.RepeatCount
	frame := d.playFrame
	d.mu.Unlock()

	d.current.Store(int64(frame))
	if err := d.UpdateGPUTexture(frame); err != nil {
		return frame, err
	}
	return frame, nil
}
