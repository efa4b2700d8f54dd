// Package capi models the library's flat interop surface: opaque
// integer handles, int status codes instead of errors, out-values
// zeroed on failure and a process-wide last-error slot. Hosts that
// marshal across a language boundary get a stable, pointer-free
// contract; every function is a thin veneer over Decoder and Player.
//
// Function names follow the boundary header: gb_decoder_get_frame_count
// becomes DecoderGetFrameCount, GifBolt_Render becomes PlayerRender.
package capi

import (
	"sync"

	"github.com/gogpu/gifbolt"
	"github.com/gogpu/gifbolt/render"
)

// Handle identifies a decoder, player or pixel buffer across the
// boundary. Zero is never valid; operations on unknown handles are
// no-ops that return the type's zero value.
type Handle int64

var (
	mu        sync.Mutex
	nextID    Handle = 1
	decoders         = make(map[Handle]*gifbolt.Decoder)
	players          = make(map[Handle]*gifbolt.Player)
	buffers          = make(map[Handle]*gifbolt.PixelBuffer)
	lastError string
)

func newHandle() Handle {
	h := nextID
	nextID++
	return h
}

func decoder(h Handle) *gifbolt.Decoder {
	mu.Lock()
	defer mu.Unlock()
	return decoders[h]
}

func buffer(h Handle) *gifbolt.PixelBuffer {
	mu.Lock()
	defer mu.Unlock()
	return buffers[h]
}

func recordError(err error) {
	if err == nil {
		return
	}
	mu.Lock()
	lastError = err.Error()
	mu.Unlock()
}

// LastError returns the most recent failure message recorded by any
// handle-creation or load call, empty when the last such call
// succeeded. The slot is process-wide, not per handle; use
// DecoderGetLastError for a single decoder's state.
func LastError() string {
	mu.Lock()
	defer mu.Unlock()
	return lastError
}

// DecoderCreate creates a CPU-only decoder and returns its handle.
func DecoderCreate() Handle {
	d := gifbolt.NewDecoder()
	mu.Lock()
	defer mu.Unlock()
	h := newHandle()
	decoders[h] = d
	return h
}

// DecoderCreateWithBackend creates a decoder with a device context of
// the given kind. Unlike NewDecoder, a backend that cannot be
// constructed fails the whole call: the result is 0 and LastError
// carries the reason.
func DecoderCreateWithBackend(kind int32) Handle {
	mu.Lock()
	lastError = ""
	mu.Unlock()

	d := gifbolt.NewDecoder(gifbolt.WithBackend(render.Backend(kind)))
	if err := d.LastError(); err != nil {
		recordError(err)
		d.Close()
		return 0
	}
	mu.Lock()
	defer mu.Unlock()
	h := newHandle()
	decoders[h] = d
	return h
}

// DecoderDestroy closes the decoder and invalidates its handle.
func DecoderDestroy(h Handle) {
	mu.Lock()
	d := decoders[h]
	delete(decoders, h)
	mu.Unlock()
	if d != nil {
		d.Close()
	}
}

// DecoderLoadFromPath loads a GIF from disk. Returns 1 on success.
func DecoderLoadFromPath(h Handle, path string) int32 {
	d := decoder(h)
	if d == nil || path == "" {
		return 0
	}
	if !d.LoadFile(path) {
		recordError(d.LastError())
		return 0
	}
	return 1
}

// DecoderLoadFromMemory loads a GIF from a byte slice. Returns 1 on
// success.
func DecoderLoadFromMemory(h Handle, data []byte) int32 {
	d := decoder(h)
	if d == nil || len(data) == 0 {
		return 0
	}
	if !d.Load(data) {
		recordError(d.LastError())
		return 0
	}
	return 1
}

// DecoderGetLastError returns the decoder's own most recent error
// message, empty for a healthy handle.
func DecoderGetLastError(h Handle) string {
	d := decoder(h)
	if d == nil {
		return ""
	}
	if err := d.LastError(); err != nil {
		return err.Error()
	}
	return ""
}

// DecoderGetFrameCount returns the number of decoded frames.
func DecoderGetFrameCount(h Handle) int32 {
	d := decoder(h)
	if d == nil {
		return 0
	}
	return int32(d.FrameCount())
}

// DecoderGetWidth returns the logical screen width in pixels.
func DecoderGetWidth(h Handle) int32 {
	d := decoder(h)
	if d == nil {
		return 0
	}
	return int32(d.Width())
}

// DecoderGetHeight returns the logical screen height in pixels.
func DecoderGetHeight(h Handle) int32 {
	d := decoder(h)
	if d == nil {
		return 0
	}
	return int32(d.Height())
}

// DecoderGetLoopCount returns -1 for a looping animation and 0
// otherwise.
func DecoderGetLoopCount(h Handle) int32 {
	d := decoder(h)
	if d == nil {
		return 0
	}
	return int32(d.LoopCount())
}

// DecoderGetBackgroundColor returns the background as packed ARGB,
// opaque black for an unknown handle.
func DecoderGetBackgroundColor(h Handle) uint32 {
	d := decoder(h)
	if d == nil {
		return gifbolt.DefaultBackgroundColor
	}
	return d.BackgroundColor()
}

// DecoderHasTransparency returns 1 when any frame uses a transparent
// color.
func DecoderHasTransparency(h Handle) int32 {
	d := decoder(h)
	if d == nil || !d.HasTransparency() {
		return 0
	}
	return 1
}

// DecoderGetBackend returns the attached context's kind, -1 when the
// handle is unknown or no context is attached.
func DecoderGetBackend(h Handle) int32 {
	d := decoder(h)
	if d == nil {
		return -1
	}
	kind, ok := d.Backend()
	if !ok {
		return -1
	}
	return int32(kind)
}

// DecoderGetFrameDelayMs returns the frame's delay in milliseconds
// with the minimum-delay floor applied.
func DecoderGetFrameDelayMs(h Handle, index int32) int32 {
	d := decoder(h)
	if d == nil {
		return 0
	}
	return int32(d.FrameDelayMs(int(index)))
}

// DecoderGetMinFrameDelayMs returns the delay floor in milliseconds.
func DecoderGetMinFrameDelayMs(h Handle) int32 {
	d := decoder(h)
	if d == nil {
		return 0
	}
	return int32(d.MinFrameDelay())
}

// DecoderSetMinFrameDelayMs sets the delay floor in milliseconds.
func DecoderSetMinFrameDelayMs(h Handle, ms int32) {
	if d := decoder(h); d != nil {
		d.SetMinFrameDelay(int(ms))
	}
}

// DecoderGetMaxCachedFrames returns the converted-frame cache limit.
func DecoderGetMaxCachedFrames(h Handle) uint32 {
	d := decoder(h)
	if d == nil {
		return 0
	}
	return uint32(d.MaxCachedFrames())
}

// DecoderSetMaxCachedFrames changes the cache limit.
func DecoderSetMaxCachedFrames(h Handle, n uint32) {
	if d := decoder(h); d != nil {
		d.SetMaxCachedFrames(int(n))
	}
}

// DecoderGetFramePixelsRGBA returns the frame's straight-alpha RGBA
// pixels. The slice borrows decoder storage and is read-only; it stays
// valid until the next load on the same handle.
func DecoderGetFramePixelsRGBA(h Handle, index int32) []byte {
	d := decoder(h)
	if d == nil {
		return nil
	}
	f, err := d.Frame(int(index))
	if err != nil {
		return nil
	}
	return f.Pixels
}

// DecoderGetFramePixelsBGRAPremultiplied returns the frame as
// premultiplied BGRA32. The slice borrows cache storage and stays
// valid until the next mutating call on the same handle.
func DecoderGetFramePixelsBGRAPremultiplied(h Handle, index int32) []byte {
	d := decoder(h)
	if d == nil {
		return nil
	}
	pix, err := d.FramePixelsBGRA(int(index))
	if err != nil {
		return nil
	}
	return pix
}

// DecoderGetFramePixelsBGRAPremultipliedScaled returns the frame
// resampled to width x height as premultiplied BGRA32 along with the
// produced dimensions, all zero on failure.
func DecoderGetFramePixelsBGRAPremultipliedScaled(h Handle, index, width, height, filter int32) (pix []byte, outWidth, outHeight int32) {
	d := decoder(h)
	if d == nil {
		return nil, 0, 0
	}
	pix, err := d.FramePixelsBGRAScaled(int(index), int(width), int(height), gifbolt.ScalingFilter(filter))
	if err != nil {
		return nil, 0, 0
	}
	return pix, width, height
}

// DecoderGetFramePixelsBGRABuffer returns the frame as premultiplied
// BGRA32 in a reference-counted buffer the caller owns. Release the
// handle with PixelBufferRelease.
func DecoderGetFramePixelsBGRABuffer(h Handle, index int32) Handle {
	d := decoder(h)
	if d == nil {
		return 0
	}
	buf, err := d.FramePixelsBGRABuffer(int(index))
	if err != nil {
		return 0
	}
	return registerBuffer(buf)
}

// DecoderGetFramePixelsBGRAScaledBuffer is the scaled variant of
// DecoderGetFramePixelsBGRABuffer.
func DecoderGetFramePixelsBGRAScaledBuffer(h Handle, index, width, height, filter int32) Handle {
	d := decoder(h)
	if d == nil {
		return 0
	}
	buf, err := d.FramePixelsBGRAScaledBuffer(int(index), int(width), int(height), gifbolt.ScalingFilter(filter))
	if err != nil {
		return 0
	}
	return registerBuffer(buf)
}

func registerBuffer(buf *gifbolt.PixelBuffer) Handle {
	mu.Lock()
	defer mu.Unlock()
	h := newHandle()
	buffers[h] = buf
	return h
}

// PixelBufferGetData returns the buffer's pixel bytes, nil for an
// unknown handle.
func PixelBufferGetData(h Handle) []byte {
	b := buffer(h)
	if b == nil {
		return nil
	}
	return b.Data()
}

// PixelBufferGetSize returns the buffer's size in bytes.
func PixelBufferGetSize(h Handle) int32 {
	b := buffer(h)
	if b == nil {
		return 0
	}
	return int32(b.Size())
}

// PixelBufferAddRef takes an additional reference on the buffer.
func PixelBufferAddRef(h Handle) {
	if b := buffer(h); b != nil {
		b.Retain()
	}
}

// PixelBufferRelease drops one reference. The final release frees the
// storage and invalidates the handle; further calls are no-ops.
func PixelBufferRelease(h Handle) {
	b := buffer(h)
	if b == nil {
		return
	}
	b.Release()
	if b.RefCount() == 0 {
		mu.Lock()
		delete(buffers, h)
		mu.Unlock()
	}
}

// DecoderStartPrefetching launches the decoder's background prefetcher
// from the given frame. Negative start frames are ignored.
func DecoderStartPrefetching(h Handle, startFrame int32) {
	if startFrame < 0 {
		return
	}
	if d := decoder(h); d != nil {
		d.StartPrefetching(int(startFrame))
	}
}

// DecoderStopPrefetching stops the prefetcher and joins it.
func DecoderStopPrefetching(h Handle) {
	if d := decoder(h); d != nil {
		d.StopPrefetching()
	}
}

// DecoderSetCurrentFrame tells the prefetcher where playback is.
// Negative frames are ignored.
func DecoderSetCurrentFrame(h Handle, frame int32) {
	if frame < 0 {
		return
	}
	if d := decoder(h); d != nil {
		d.SetCurrentFrame(int(frame))
	}
}

// DecoderResetCanvas drops every cached conversion.
func DecoderResetCanvas(h Handle) {
	if d := decoder(h); d != nil {
		d.ResetCanvas()
	}
}

// DecoderUpdateGPUTexture uploads the frame to the decoder's texture.
// Returns 1 on success.
func DecoderUpdateGPUTexture(h Handle, frameIndex int32) int32 {
	d := decoder(h)
	if d == nil {
		return 0
	}
	if err := d.UpdateGPUTexture(int(frameIndex)); err != nil {
		return 0
	}
	return 1
}

// DecoderAdvanceAndUpdateGPUTexture advances the decoder's playback
// state and uploads the resulting frame. Returns 1 on success.
func DecoderAdvanceAndUpdateGPUTexture(h Handle) int32 {
	d := decoder(h)
	if d == nil {
		return 0
	}
	if _, err := d.AdvanceAndUpdateGPUTexture(); err != nil {
		return 0
	}
	return 1
}

// DecoderGetNativeTexturePtr uploads the frame and returns the native
// handle of the decoder's texture, 0 on failure.
func DecoderGetNativeTexturePtr(h Handle, frameIndex int32) uintptr {
	d := decoder(h)
	if d == nil {
		return 0
	}
	if err := d.UpdateGPUTexture(int(frameIndex)); err != nil {
		return 0
	}
	return d.NativeTexturePtr()
}

// DecoderGetCurrentGPUTexturePtr returns the native handle of the
// decoder's texture without uploading, 0 when nothing was uploaded.
func DecoderGetCurrentGPUTexturePtr(h Handle) uintptr {
	d := decoder(h)
	if d == nil {
		return 0
	}
	return d.NativeTexturePtr()
}

// FrameAdvanceResult is the boundary form of a frame advance step.
type FrameAdvanceResult struct {
	NextFrame          int32
	IsComplete         int32
	UpdatedRepeatCount int32
}

func advanceResult(adv gifbolt.Advance) FrameAdvanceResult {
	res := FrameAdvanceResult{
		NextFrame:          int32(adv.NextFrame),
		UpdatedRepeatCount: int32(adv.RepeatCount),
	}
	if adv.Complete {
		res.IsComplete = 1
	}
	return res
}

// DecoderAdvanceFrame computes the next playback step. Pure; hosts
// that keep their own playback state call it every tick.
func DecoderAdvanceFrame(currentFrame, frameCount, repeatCount int32) FrameAdvanceResult {
	return advanceResult(gifbolt.AdvanceFrame(int(currentFrame), int(frameCount), int(repeatCount)))
}

// DecoderAdvanceFrameTimed is DecoderAdvanceFrame plus the effective
// delay of the frame being left.
func DecoderAdvanceFrameTimed(currentFrame, frameCount, repeatCount, rawDelayMs, minDelayMs int32) (FrameAdvanceResult, int32) {
	adv, delay := gifbolt.AdvanceFrameTimed(int(currentFrame), int(frameCount), int(repeatCount), int(rawDelayMs), int(minDelayMs))
	return advanceResult(adv), int32(delay)
}

// DecoderGetEffectiveFrameDelay floors a raw frame delay.
func DecoderGetEffectiveFrameDelay(frameDelayMs, minDelayMs int32) int32 {
	return int32(gifbolt.EffectiveFrameDelay(int(frameDelayMs), int(minDelayMs)))
}

// DecoderComputeRepeatCount parses a host repeat-behavior string into
// a repeat count for DecoderAdvanceFrame.
func DecoderComputeRepeatCount(repeatBehavior string, isLooping int32) int32 {
	return int32(gifbolt.ComputeRepeatCount(repeatBehavior, isLooping != 0))
}

// DecoderCalculateAdaptiveCacheSize recommends a cache limit for a
// frame count, clamped to [minFrames, maxFrames].
func DecoderCalculateAdaptiveCacheSize(frameCount int32, cacheFraction float32, minFrames, maxFrames uint32) uint32 {
	size := gifbolt.AdaptiveCacheSize(int(frameCount), float64(cacheFraction), int(minFrames), int(maxFrames))
	return uint32(size)
}
