package gifbolt

import (
	"time"

	"github.com/gogpu/gifbolt/backend"
	"github.com/gogpu/gifbolt/render"
)

// Player wraps a Decoder, a backend context and a monotonic clock into a
// ready-made play/pause/stop loop for hosts that do not run their own
// frame timer. Call Render once per host tick; the player advances only
// when the current frame's effective delay has elapsed.
//
// A Player is driven from one goroutine, the same one that owns its
// device context.
type Player struct {
	dec     *Decoder
	decOpts []Option

	ctx     render.DeviceContext
	ownsCtx bool
	tex     render.Texture

	targetW uint32
	targetH uint32

	playing    bool
	paused     bool
	current    int
	repeat     int
	frameShown bool

	lastTick time.Time
	pausedAt time.Time

	// now is replaceable so tests can drive the clock.
	now func() time.Time
}

// NewPlayer creates an uninitialized player. Decoder options are applied
// to the decoder the player creates on first load.
func NewPlayer(opts ...Option) *Player {
	return &Player{decOpts: opts, now: time.Now}
}

// Initialize acquires a device context from the backend registry
// (highest-priority available kind) and sets the draw target size.
func (p *Player) Initialize(width, height uint32) error {
	ctx, err := backend.Default(render.NullDeviceHandle{})
	if err != nil {
		return err
	}
	p.ctx = ctx
	p.ownsCtx = true
	p.targetW, p.targetH = width, height
	return nil
}

// InitializeContext uses a caller-provided device context, which stays
// owned by the caller. Hosts with an existing swap chain or interop
// surface attach it here.
func (p *Player) InitializeContext(ctx render.DeviceContext, width, height uint32) error {
	if ctx == nil {
		return ErrNoBackend
	}
	p.ctx = ctx
	p.ownsCtx = false
	p.targetW, p.targetH = width, height
	return nil
}

// LoadGif loads an animation from disk. Playback state rewinds to frame
// zero; Play starts it.
func (p *Player) LoadGif(path string) bool {
	p.ensureDecoder()
	if !p.dec.LoadFile(path) {
		return false
	}
	p.resetPlayback()
	return true
}

// LoadGifFromMemory loads an animation from a byte slice.
func (p *Player) LoadGifFromMemory(data []byte) bool {
	p.ensureDecoder()
	if !p.dec.Load(data) {
		return false
	}
	p.resetPlayback()
	return true
}

func (p *Player) ensureDecoder() {
	if p.dec == nil {
		p.dec = NewDecoder(p.decOpts...)
	}
}

func (p *Player) resetPlayback() {
	p.playing = false
	p.paused = false
	p.current = 0
	p.repeat = initialRepeat(p.dec.IsLooping())
	p.frameShown = false
	if p.tex != nil {
		// Dimensions may have changed; the next Render recreates it.
		p.tex.Destroy()
		p.tex = nil
	}
}

// Decoder exposes the player's decoder for metadata queries, nil before
// the first load.
func (p *Player) Decoder() *Decoder { return p.dec }

// Play starts or resumes playback. Resuming after Pause shifts the
// frame clock by the paused duration, so the interrupted frame plays
// out its remaining delay instead of skipping.
func (p *Player) Play() {
	if p.paused {
		p.lastTick = p.lastTick.Add(p.now().Sub(p.pausedAt))
		p.paused = false
	}
	p.playing = true
}

// Pause freezes playback and the frame clock on the current frame.
func (p *Player) Pause() {
	if !p.playing {
		return
	}
	p.playing = false
	p.paused = true
	p.pausedAt = p.now()
}

// Stop halts playback, rewinds to frame zero and restores the repeat
// count from the stream metadata.
func (p *Player) Stop() {
	p.playing = false
	p.paused = false
	p.current = 0
	p.frameShown = false
	if p.dec != nil {
		p.repeat = initialRepeat(p.dec.IsLooping())
		p.dec.SetCurrentFrame(0)
	}
}

// SetLooping overrides the stream's repeat behavior: true loops forever,
// false lets the current pass finish and then completes.
func (p *Player) SetLooping(loop bool) {
	if loop {
		p.repeat = -1
	} else {
		p.repeat = 0
	}
}

// SetCurrentFrame jumps playback to frame n and restarts its delay.
func (p *Player) SetCurrentFrame(n int) {
	if p.dec == nil || n < 0 || n >= p.dec.FrameCount() {
		return
	}
	p.current = n
	p.frameShown = false
	p.dec.SetCurrentFrame(n)
}

// CurrentFrame returns the frame playback is on.
func (p *Player) CurrentFrame() int { return p.current }

// IsPlaying reports whether playback is running. It turns false on
// Pause, Stop and when a non-looping animation completes.
func (p *Player) IsPlaying() bool { return p.playing }

// FrameCount returns the loaded animation's frame count, 0 before load.
func (p *Player) FrameCount() int {
	if p.dec == nil {
		return 0
	}
	return p.dec.FrameCount()
}

// Width returns the animation width in pixels, 0 before load.
func (p *Player) Width() int {
	if p.dec == nil {
		return 0
	}
	return p.dec.Width()
}

// Height returns the animation height in pixels, 0 before load.
func (p *Player) Height() int {
	if p.dec == nil {
		return 0
	}
	return p.dec.Height()
}

// Render runs one tick: when playing and the current frame's effective
// delay has elapsed, advance the state machine, upload the new frame
// and draw it. Returns true only when a new frame was presented.
//
// A failed upload keeps the previous frame on screen and returns false;
// playback never aborts on a pixel fetch.
func (p *Player) Render() bool {
	if p.ctx == nil || p.dec == nil || p.dec.FrameCount() == 0 {
		return false
	}

	if !p.playing {
		p.draw()
		return false
	}

	now := p.now()

	// First tick after Play or a rewind presents the frame immediately.
	if !p.frameShown {
		if err := p.upload(p.current); err != nil {
			Logger().Warn("frame upload failed", "frame", p.current, "err", err)
			return false
		}
		p.frameShown = true
		p.lastTick = now
		p.draw()
		return true
	}

	delay := time.Duration(p.dec.FrameDelayMs(p.current)) * time.Millisecond
	if now.Sub(p.lastTick) < delay {
		p.draw()
		return false
	}

	adv := AdvanceFrame(p.current, p.dec.FrameCount(), p.repeat)
	if adv.Complete {
		p.playing = false
		p.draw()
		return false
	}
	p.current = adv.NextFrame
	p.repeat = adv.RepeatCount
	p.dec.SetCurrentFrame(p.current)

	if err := p.upload(p.current); err != nil {
		Logger().Warn("frame upload failed", "frame", p.current, "err", err)
		return false
	}
	p.lastTick = now
	p.draw()
	return true
}

// upload converts frame index and moves it into the frame texture,
// creating the texture on first use.
func (p *Player) upload(index int) error {
	pix, err := p.dec.FramePixelsBGRA(index)
	if err != nil {
		return err
	}
	if p.tex == nil {
		tex, err := p.ctx.CreateTexture(uint32(p.dec.Width()), uint32(p.dec.Height()), pix)
		if err != nil {
			return err
		}
		p.tex = tex
		return nil
	}
	return p.tex.Update(pix)
}

// draw presents the current texture over the stream's background color.
func (p *Player) draw() {
	if p.tex == nil {
		return
	}
	bg := p.dec.BackgroundColor()
	a := float32(bg>>24&0xFF) / 255
	r := float32(bg>>16&0xFF) / 255
	g := float32(bg>>8&0xFF) / 255
	b := float32(bg&0xFF) / 255

	p.ctx.BeginFrame()
	p.ctx.Clear(r, g, b, a)
	if err := p.ctx.DrawTexture(p.tex, 0, 0, int(p.targetW), int(p.targetH)); err != nil {
		Logger().Warn("draw failed", "err", err)
	}
	p.ctx.EndFrame()
	if err := p.ctx.Flush(); err != nil {
		Logger().Warn("flush failed", "err", err)
	}
}

// Close releases the player's texture, its decoder and any context it
// acquired itself.
func (p *Player) Close() error {
	if p.tex != nil {
		p.tex.Destroy()
		p.tex = nil
	}
	var err error
	if p.dec != nil {
		err = p.dec.Close()
		p.dec = nil
	}
	if p.ctx != nil && p.ownsCtx {
		if cerr := p.ctx.Close(); err == nil {
			err = cerr
		}
	}
	p.ctx = nil
	return err
}
