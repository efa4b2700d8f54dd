// Package gifbolt decodes animated GIF images and renders their frames
// through a pluggable, GPU-accelerated backend abstraction.
//
// # Overview
//
// gifbolt is a Pure Go animation engine designed to sit underneath arbitrary
// host UI layers. It decodes a GIF container eagerly into raw RGBA frames,
// converts frames to premultiplied BGRA lazily through an LRU-bounded cache,
// keeps that cache warm with a background prefetcher, and uploads frames to
// GPU textures through backend implementations that share a common
// device/texture interface.
//
// # Quick Start
//
//	import "github.com/gogpu/gifbolt"
//
//	dec := gifbolt.NewDecoder()
//	defer dec.Close()
//
//	if !dec.LoadFile("animation.gif") {
//	    log.Fatal(dec.LastError())
//	}
//
//	pixels, _ := dec.FramePixelsBGRA(0)
//	// pixels is premultiplied BGRA32, dec.Width() * dec.Height() * 4 bytes
//
// # Playback
//
// Frame advancement is a pure state machine shared by every consumer:
//
//	adv := gifbolt.AdvanceFrame(current, dec.FrameCount(), repeat)
//	// adv.NextFrame, adv.Complete, adv.RepeatCount
//
// Player wraps a decoder, a backend context and a monotonic clock into a
// ready-made play/pause/stop loop for hosts that do not run their own timer.
//
// # Backends
//
// Rendering goes through the backend registry. Four kinds exist: dummy
// (in-memory, always available), d3d11 (GPU premultiply conversion), d3d9ex
// (double-buffered zero-copy interop surfaces) and metal (GPU conversion and
// scaling). GPU kinds register themselves on import:
//
//	import _ "github.com/gogpu/gifbolt/backend/metal"
//
// A kind whose device cannot be acquired reports unavailable and selection
// falls through to dummy, so decoding never depends on GPU presence.
//
// # Architecture
//
// The library is organized into:
//   - Public API: Decoder, Player, PixelBuffer, playback state machine
//   - render: DeviceContext and Texture interfaces, backend kinds
//   - backend: registry plus the four backend implementations
//   - internal: pixel (conversion/scaling), cache (LRU), parallel (worker
//     pool), buffer (arena, pool), gifmeta (extension scan), gpu (compute)
//
// # Thread Safety
//
// A Decoder may be driven from one render goroutine while its prefetcher
// fills the frame cache concurrently; the cache is the only shared mutable
// structure and is mutex-guarded. Backend device contexts are confined to
// the goroutine that created them.
package gifbolt

// Version information
const (
	// Version is the current version of the library
	Version = "1.0.0"

	// VersionMajor is the major version
	VersionMajor = 1

	// VersionMinor is the minor version
	VersionMinor = 0

	// VersionPatch is the patch version
	VersionPatch = 0
)

// VersionString returns the library version as "major.minor.patch".
func VersionString() string { return Version }
