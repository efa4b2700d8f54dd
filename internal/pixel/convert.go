package pixel

import (
	"errors"
	"runtime"

	"github.com/gogpu/gifbolt/internal/parallel"
)

// Conversion errors.
var (
	// ErrSizeMismatch is returned when dst is too small for the conversion.
	ErrSizeMismatch = errors.New("pixel: destination buffer too small")

	// ErrInvalidDimensions is returned for zero or negative dimensions.
	ErrInvalidDimensions = errors.New("pixel: invalid dimensions")
)

// threadingThreshold is the pixel count above which conversions run chunked
// on the shared worker pool. Below it, thread handoff costs more than the
// conversion itself (~316x316 image).
const threadingThreshold = 100000

// maxConvertWorkers caps how many chunks a single conversion splits into.
const maxConvertWorkers = 8

// convertWorkers returns the chunk count for a threaded conversion.
func convertWorkers() int {
	n := runtime.NumCPU()
	if n > maxConvertWorkers {
		n = maxConvertWorkers
	}
	if n < 1 {
		n = 1
	}
	return n
}

// SwapRB copies src to dst swapping the R and B channels of every pixel.
// The swap is its own inverse, so the same call converts RGBA to BGRA and
// BGRA back to RGBA. dst and src may be the same slice.
func SwapRB(dst, src []byte) {
	n := len(src) / 4
	if m := len(dst) / 4; m < n {
		n = m
	}
	for i := 0; i < n; i++ {
		o := i * 4
		b0, b1, b2, b3 := src[o+2], src[o+1], src[o+0], src[o+3]
		dst[o+0] = b0
		dst[o+1] = b1
		dst[o+2] = b2
		dst[o+3] = b3
	}
}

// RGBAToBGRA converts RGBA pixels to BGRA order.
func RGBAToBGRA(dst, src []byte) { SwapRB(dst, src) }

// BGRAToRGBA converts BGRA pixels to RGBA order.
// Symmetric with RGBAToBGRA.
func BGRAToRGBA(dst, src []byte) { SwapRB(dst, src) }

// premultiplyChunk premultiplies the color channels of pixels [start, end)
// in place. Channel order does not matter: all three color bytes scale by
// the same factor. Fully transparent pixels zero their color channels so no
// stale color bleeds through when a compositor filters premultiplied data.
func premultiplyChunk(pixels []byte, start, end int) {
	for i := start; i < end; i++ {
		o := i * 4
		alpha := pixels[o+3]

		switch {
		case alpha == 0:
			pixels[o+0] = 0
			pixels[o+1] = 0
			pixels[o+2] = 0
		case alpha < 255:
			factor := float32(alpha) / 255.0
			pixels[o+0] = byte(float32(pixels[o+0]) * factor)
			pixels[o+1] = byte(float32(pixels[o+1]) * factor)
			pixels[o+2] = byte(float32(pixels[o+2]) * factor)
		}
		// alpha == 255: already premultiplied by definition
	}
}

// Premultiply premultiplies straight-alpha pixels in place. Works for both
// RGBA and BGRA order. Chunks across the shared pool above the threading
// threshold.
//
// Premultiplying is not idempotent for alpha < 255: applying it twice
// scales colors down twice. Callers must track whether a buffer has been
// premultiplied already.
func Premultiply(pixels []byte) {
	n := len(pixels) / 4
	if n < threadingThreshold {
		premultiplyChunk(pixels, 0, n)
		return
	}

	ranges := parallel.ChunkRanges(n, convertWorkers())
	work := make([]func(), len(ranges))
	for i, r := range ranges {
		r := r
		work[i] = func() { premultiplyChunk(pixels, r.Start, r.End) }
	}
	parallel.Default().ExecuteAll(work)
}

// convertPremulChunk converts RGBA pixels [start, end) to premultiplied
// BGRA in one pass. A fully transparent source pixel writes zeros to all
// four destination bytes.
func convertPremulChunk(dst, src []byte, start, end int) {
	for i := start; i < end; i++ {
		o := i * 4
		r := src[o+0]
		g := src[o+1]
		b := src[o+2]
		alpha := src[o+3]

		switch {
		case alpha == 0:
			dst[o+0] = 0
			dst[o+1] = 0
			dst[o+2] = 0
			dst[o+3] = 0
		case alpha < 255:
			factor := float32(alpha) / 255.0
			dst[o+0] = byte(float32(b) * factor)
			dst[o+1] = byte(float32(g) * factor)
			dst[o+2] = byte(float32(r) * factor)
			dst[o+3] = alpha
		default:
			dst[o+0] = b
			dst[o+1] = g
			dst[o+2] = r
			dst[o+3] = alpha
		}
	}
}

// RGBAToBGRAPremultiplied converts RGBA pixels to premultiplied BGRA in a
// single pass, chunked across the shared pool above the threading
// threshold. More efficient than RGBAToBGRA followed by Premultiply.
func RGBAToBGRAPremultiplied(dst, src []byte) error {
	n := len(src) / 4
	if len(dst) < n*4 {
		return ErrSizeMismatch
	}
	if n < threadingThreshold {
		convertPremulChunk(dst, src, 0, n)
		return nil
	}

	ranges := parallel.ChunkRanges(n, convertWorkers())
	work := make([]func(), len(ranges))
	for i, r := range ranges {
		r := r
		work[i] = func() { convertPremulChunk(dst, src, r.Start, r.End) }
	}
	parallel.Default().ExecuteAll(work)
	return nil
}
