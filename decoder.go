package gifbolt

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"os"
	"sync"
	"sync/atomic"

	xdraw "golang.org/x/image/draw"

	"github.com/gogpu/gifbolt/backend"
	_ "github.com/gogpu/gifbolt/backend/dummy"
	"github.com/gogpu/gifbolt/internal/buffer"
	"github.com/gogpu/gifbolt/internal/cache"
	"github.com/gogpu/gifbolt/internal/gifmeta"
	"github.com/gogpu/gifbolt/internal/pixel"
	"github.com/gogpu/gifbolt/render"
)

// Decoder errors.
var (
	// ErrNotLoaded reports access to frame data before a successful load.
	ErrNotLoaded = errors.New("gifbolt: no animation loaded")

	// ErrFrameOutOfRange reports a frame index outside [0, FrameCount).
	ErrFrameOutOfRange = errors.New("gifbolt: frame index out of range")

	// ErrDecode reports a malformed or truncated GIF stream.
	ErrDecode = errors.New("gifbolt: decoding failed")

	// ErrInvalidDimensions reports zero or negative target dimensions.
	ErrInvalidDimensions = errors.New("gifbolt: invalid dimensions")

	// ErrUnknownFilter reports a scaling filter outside the defined set.
	ErrUnknownFilter = errors.New("gifbolt: unknown scaling filter")

	// ErrNoBackend reports a GPU texture operation without an attached
	// device context.
	ErrNoBackend = errors.New("gifbolt: no backend attached")
)

// DefaultBackgroundColor is reported before a load and for streams
// without a global color table: opaque black, packed ARGB.
const DefaultBackgroundColor uint32 = 0xFF000000

// rawFilter keys cache entries holding unscaled conversions.
const rawFilter ScalingFilter = -1

// frameKey identifies one converted frame variant in the cache.
type frameKey struct {
	index  int
	width  int
	height int
	filter ScalingFilter
}

// Decoder turns a GIF stream into frames ready for a compositor: decoded
// eagerly to straight RGBA on load, converted to premultiplied BGRA
// lazily through an LRU-bounded cache, optionally uploaded to a GPU
// texture through an attached backend.
//
// A Decoder is driven from one goroutine. The exceptions are documented
// per method: SetCurrentFrame is safe from any goroutine, and the
// prefetcher started by StartPrefetching shares the frame cache safely.
type Decoder struct {
	mu sync.Mutex

	frames   []Frame
	width    int
	height   int
	looping  bool
	bg       uint32
	hasAlpha bool
	comments []string

	minDelayMs     int
	prefetchWindow int
	disableGPU     bool

	cache *cache.Cache[frameKey, []byte]
	arena *buffer.Arena

	// current is the host's playback position, read by the prefetcher.
	current atomic.Int64

	prefetchStop chan struct{}
	prefetchDone chan struct{}

	// playFrame and playRepeat drive AdvanceAndUpdateGPUTexture for
	// hosts that let the decoder keep playback state.
	playFrame  int
	playRepeat int

	ctx      render.DeviceContext
	ownsCtx  bool
	tex      render.Texture
	texFrame int

	lastErr error
}

// NewDecoder creates an empty decoder. Options configure caching,
// timing, prefetch and backend attachment; see Option.
func NewDecoder(opts ...Option) *Decoder {
	o := defaultDecoderOptions()
	for _, opt := range opts {
		opt(&o)
	}

	d := &Decoder{
		minDelayMs:     o.minFrameDelay,
		prefetchWindow: o.prefetchWindow,
		disableGPU:     o.disableGPU,
		cache:          cache.New[frameKey, []byte](o.maxCached),
		arena:          buffer.NewArena(0),
		bg:             DefaultBackgroundColor,
		playRepeat:     initialRepeat(false),
		texFrame:       -1,
	}

	if o.attachBackend {
		ctx, err := backend.New(o.backendKind, render.NullDeviceHandle{})
		if err != nil {
			d.lastErr = err
			Logger().Warn("backend unavailable, decoding runs CPU-only",
				"kind", o.backendKind.String(), "err", err)
		} else {
			d.ctx = ctx
			d.ownsCtx = true
		}
	}
	return d
}

// LoadFile loads a GIF from disk. On failure it returns false, records
// the error for LastError and leaves the decoder in its pre-load state.
func (d *Decoder) LoadFile(path string) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		d.setLastError(errors.Join(ErrDecode, err))
		return false
	}
	return d.Load(data)
}

// Load decodes a GIF from memory. Every frame is decoded and composed
// to full-canvas RGBA before Load returns; all later accessors are
// in-memory operations. On failure it returns false, records the error
// for LastError and leaves the decoder in its pre-load state.
func (d *Decoder) Load(data []byte) bool {
	g, err := gif.DecodeAll(bytes.NewReader(data))
	if err != nil {
		d.setLastError(errors.Join(ErrDecode, err))
		return false
	}
	if len(g.Image) == 0 {
		d.setLastError(fmt.Errorf("%w: stream has no frames", ErrDecode))
		return false
	}

	meta, err := gifmeta.Scan(bytes.NewReader(data))
	if meta == nil {
		// DecodeAll accepted the stream, so a scan failure can only
		// lose extension metadata, never frames.
		meta = &gifmeta.Metadata{}
	}
	if err != nil {
		Logger().Debug("metadata scan incomplete", "err", err)
	}

	width, height := g.Config.Width, g.Config.Height
	if width <= 0 || height <= 0 {
		b := g.Image[0].Bounds()
		width, height = b.Max.X, b.Max.Y
	}

	// Replacing the frame set under an active prefetcher would let it
	// read freed state. Join it first; loads restart it explicitly.
	d.StopPrefetching()

	d.arena.Reset()
	frames := composeFrames(g, width, height, d.arena)

	d.mu.Lock()
	d.frames = frames
	d.width = width
	d.height = height
	d.looping = meta.HasLoop
	d.hasAlpha = meta.HasTransparency
	d.comments = meta.Comments
	d.bg = DefaultBackgroundColor
	if meta.HasGlobalPalette {
		c := meta.BackgroundRGBA
		d.bg = 0xFF000000 | uint32(c[0])<<16 | uint32(c[1])<<8 | uint32(c[2])
	}
	d.cache.Clear()
	d.current.Store(0)
	d.playFrame = 0
	d.playRepeat = initialRepeat(d.looping)
	d.texFrame = -1
	d.lastErr = nil
	d.mu.Unlock()
	return true
}

// composeFrames flattens every GIF frame onto a full-size canvas,
// honoring the per-frame disposal modes: background disposal clears the
// frame rect to transparent, previous disposal restores the canvas
// snapshot taken before the frame drew. The canvas and snapshot live in
// the arena; only the per-frame copies survive the call.
func composeFrames(g *gif.GIF, width, height int, arena *buffer.Arena) []Frame {
	bounds := image.Rect(0, 0, width, height)
	size := width * height * 4
	canvas := &image.RGBA{Pix: arena.Alloc(size), Stride: width * 4, Rect: bounds}

	frames := make([]Frame, 0, len(g.Image))
	var prev []byte

	for i, img := range g.Image {
		disposal := byte(0)
		if i < len(g.Disposal) {
			disposal = g.Disposal[i]
		}

		if disposal == gif.DisposalPrevious {
			if prev == nil {
				prev = arena.Alloc(size)
			}
			copy(prev, canvas.Pix)
		}

		r := img.Bounds().Intersect(bounds)
		xdraw.Draw(canvas, r, img, r.Min, xdraw.Over)

		pix := make([]byte, size)
		copy(pix, canvas.Pix)
		delay := 0
		if i < len(g.Delay) {
			delay = g.Delay[i] * 10
		}
		frames = append(frames, Frame{Pixels: pix, Width: width, Height: height, DelayMs: delay})

		switch disposal {
		case gif.DisposalBackground:
			clearRect(canvas, r)
		case gif.DisposalPrevious:
			copy(canvas.Pix, prev)
		}
	}
	return frames
}

func clearRect(canvas *image.RGBA, r image.Rectangle) {
	for y := r.Min.Y; y < r.Max.Y; y++ {
		row := y * canvas.Stride
		clear(canvas.Pix[row+r.Min.X*4 : row+r.Max.X*4])
	}
}

// LastError returns the most recent load or backend error, nil after a
// successful load.
func (d *Decoder) LastError() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lastErr
}

func (d *Decoder) setLastError(err error) {
	d.mu.Lock()
	d.lastErr = err
	d.mu.Unlock()
}

// FrameCount returns the number of decoded frames, 0 before a load.
func (d *Decoder) FrameCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.frames)
}

// Width returns the logical screen width in pixels, 0 before a load.
func (d *Decoder) Width() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.width
}

// Height returns the logical screen height in pixels, 0 before a load.
func (d *Decoder) Height() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.height
}

// IsLooping reports whether the stream carries an animation application
// extension.
func (d *Decoder) IsLooping() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.looping
}

// LoopCount returns -1 for a looping animation and 0 otherwise. The
// collapsed form is a boundary compatibility rule: hosts pass it
// straight to ComputeRepeatCount as the metadata fallback.
func (d *Decoder) LoopCount() int {
	if d.IsLooping() {
		return -1
	}
	return 0
}

// BackgroundColor returns the logical screen background as packed ARGB,
// opaque black before a load or without a global color table.
func (d *Decoder) BackgroundColor() uint32 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.bg
}

// HasTransparency reports whether any frame uses a transparent color.
func (d *Decoder) HasTransparency() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.hasAlpha
}

// Comments returns the stream's comment extensions, decoded from
// Latin-1, in stream order.
func (d *Decoder) Comments() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.comments...)
}

// FrameDelayMs returns the presentation delay of frame index in
// milliseconds with the minimum-delay floor applied, 0 for an invalid
// index.
func (d *Decoder) FrameDelayMs(index int) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	if index < 0 || index >= len(d.frames) {
		return 0
	}
	return EffectiveFrameDelay(d.frames[index].DelayMs, d.minDelayMs)
}

// MinFrameDelay returns the delay floor in milliseconds.
func (d *Decoder) MinFrameDelay() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.minDelayMs
}

// SetMinFrameDelay sets the delay floor in milliseconds. Negative
// values clamp to zero.
func (d *Decoder) SetMinFrameDelay(ms int) {
	if ms < 0 {
		ms = 0
	}
	d.mu.Lock()
	d.minDelayMs = ms
	d.mu.Unlock()
}

// MaxCachedFrames returns the converted-frame cache limit.
func (d *Decoder) MaxCachedFrames() int {
	return d.cache.Capacity()
}

// SetMaxCachedFrames changes the cache limit. Shrinking evicts the
// least recently used entries immediately. Values below 1 clamp to 1.
func (d *Decoder) SetMaxCachedFrames(n int) {
	if n < 1 {
		n = 1
	}
	d.cache.Resize(n)
}

// AdaptiveCacheSize recommends a cache limit proportional to the frame
// count: frameCount*fraction rounded to nearest, clamped to
// [minFrames, maxFrames]. A non-positive frameCount returns minFrames.
// Long animations get bounded memory, short ones stay fully resident.
func AdaptiveCacheSize(frameCount int, fraction float64, minFrames, maxFrames int) int {
	if frameCount <= 0 {
		return minFrames
	}
	size := int(float64(frameCount)*fraction + 0.5)
	if size < minFrames {
		return minFrames
	}
	if size > maxFrames {
		return maxFrames
	}
	return size
}

// Frame returns frame index. The frame is immutable and remains valid
// for the decoder's lifetime.
func (d *Decoder) Frame(index int) (*Frame, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.frames) == 0 {
		return nil, ErrNotLoaded
	}
	if index < 0 || index >= len(d.frames) {
		return nil, fmt.Errorf("%w: %d of %d", ErrFrameOutOfRange, index, len(d.frames))
	}
	return &d.frames[index], nil
}

// FramePixelsBGRA returns frame index as premultiplied BGRA32, converted
// on first access and cached. The returned slice borrows cache storage:
// it stays valid until the next call that can mutate the cache. Use
// FramePixelsBGRABuffer for a caller-owned lifetime.
func (d *Decoder) FramePixelsBGRA(index int) ([]byte, error) {
	f, err := d.Frame(index)
	if err != nil {
		return nil, err
	}

	key := frameKey{index: index, width: f.Width, height: f.Height, filter: rawFilter}
	if pix, ok := d.cache.Get(key); ok {
		return pix, nil
	}

	dst := buffer.GetFromDefault(f.ByteLen())
	if err := d.convertFrame(dst, f); err != nil {
		buffer.PutToDefault(dst)
		return nil, err
	}
	d.cache.Put(key, dst)
	return dst, nil
}

// FramePixelsBGRAScaled returns frame index resampled to width x height
// as premultiplied BGRA32, cached per (index, width, height, filter).
// The returned slice borrows cache storage like FramePixelsBGRA.
func (d *Decoder) FramePixelsBGRAScaled(index, width, height int, filter ScalingFilter) ([]byte, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	if !filter.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownFilter, int(filter))
	}

	f, err := d.Frame(index)
	if err != nil {
		return nil, err
	}
	if width == f.Width && height == f.Height {
		return d.FramePixelsBGRA(index)
	}

	key := frameKey{index: index, width: width, height: height, filter: filter}
	if pix, ok := d.cache.Get(key); ok {
		return pix, nil
	}

	src, err := d.FramePixelsBGRA(index)
	if err != nil {
		return nil, err
	}

	dst := buffer.GetFromDefault(width * height * 4)
	if err := d.scalePixels(dst, width, height, src, f.Width, f.Height, filter); err != nil {
		buffer.PutToDefault(dst)
		return nil, err
	}
	d.cache.Put(key, dst)
	return dst, nil
}

// FramePixelsBGRABuffer returns frame index as premultiplied BGRA32 in a
// reference-counted buffer the caller owns and must Release.
func (d *Decoder) FramePixelsBGRABuffer(index int) (*PixelBuffer, error) {
	pix, err := d.FramePixelsBGRA(index)
	if err != nil {
		return nil, err
	}
	return newPixelBufferCopy(pix), nil
}

// FramePixelsBGRAScaledBuffer is FramePixelsBGRAScaled with a
// reference-counted result the caller owns and must Release.
func (d *Decoder) FramePixelsBGRAScaledBuffer(index, width, height int, filter ScalingFilter) (*PixelBuffer, error) {
	pix, err := d.FramePixelsBGRAScaled(index, width, height, filter)
	if err != nil {
		return nil, err
	}
	return newPixelBufferCopy(pix), nil
}

// convertFrame fills dst with the premultiplied BGRA form of f, on the
// GPU when an accelerator can take the work, on the CPU otherwise.
func (d *Decoder) convertFrame(dst []byte, f *Frame) error {
	if acc := d.accelerator(); acc != nil && acc.CanAccelerate(AccelConvert) {
		err := acc.ConvertPremultiply(dst, f.Pixels, f.Width, f.Height)
		if err == nil {
			return nil
		}
		if !errors.Is(err, ErrFallbackToCPU) {
			Logger().Debug("GPU conversion failed, using CPU", "err", err)
		}
	}
	return pixel.RGBAToBGRAPremultiplied(dst, f.Pixels)
}

// scalePixels resamples premultiplied BGRA pixels, on the GPU when an
// accelerator supports the filter, on the CPU otherwise.
func (d *Decoder) scalePixels(dst []byte, dstW, dstH int, src []byte, srcW, srcH int, filter ScalingFilter) error {
	if acc := d.accelerator(); acc != nil && acc.CanAccelerate(AccelScale) {
		err := acc.Scale(dst, dstW, dstH, src, srcW, srcH, filter)
		if err == nil {
			return nil
		}
		if !errors.Is(err, ErrFallbackToCPU) {
			Logger().Debug("GPU scaling failed, using CPU", "err", err)
		}
	}
	return pixel.Scale(dst, dstW, dstH, src, srcW, srcH, cpuFilter(filter))
}

// accelerator returns the registered pixel accelerator, or nil when GPU
// conversion is disabled for this decoder.
func (d *Decoder) accelerator() PixelAccelerator {
	if d.disableGPU {
		return nil
	}
	return Accelerator()
}

// cpuFilter maps the public filter enum to the pixel package's.
func cpuFilter(f ScalingFilter) pixel.Filter {
	switch f {
	case FilterBilinear:
		return pixel.FilterBilinear
	case FilterBicubic:
		return pixel.FilterBicubic
	case FilterLanczos:
		return pixel.FilterLanczos
	default:
		return pixel.FilterNearest
	}
}

// ResetCanvas drops every cached conversion. Frames themselves stay
// decoded; the next pixel access reconverts. Hosts call this to shed
// memory on a hidden animation or when rewinding to frame zero.
func (d *Decoder) ResetCanvas() {
	d.cache.Clear()
}

// CachedFrames returns how many converted variants are resident.
func (d *Decoder) CachedFrames() int {
	return d.cache.Len()
}

// Close stops the prefetcher, drops the cache and destroys any GPU
// resources the decoder owns. The decoder must not be used afterwards.
func (d *Decoder) Close() error {
	d.StopPrefetching()

	d.mu.Lock()
	defer d.mu.Unlock()
	err := d.closeBackendLocked()
	d.cache.Clear()
	d.frames = nil
	d.width, d.height = 0, 0
	return err
}

// closeBackendLocked destroys the frame texture and closes the device
// context when the decoder created it. Attached contexts stay open:
// they belong to the host.
func (d *Decoder) closeBackendLocked() error {
	if d.tex != nil {
		d.tex.Destroy()
		d.tex = nil
		d.texFrame = -1
	}
	var err error
	if d.ctx != nil && d.ownsCtx {
		err = d.ctx.Close()
	}
	d.ctx = nil
	d.ownsCtx = false
	return err
}
