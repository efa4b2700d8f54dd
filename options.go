package gifbolt

import "github.com/gogpu/gifbolt/render"

// Defaults applied by NewDecoder before options run.
const (
	// DefaultMinFrameDelayMs is the delay floor in milliseconds. Many
	// GIFs carry delays below 20ms that browsers normalize upward;
	// 10ms keeps them from spinning without visibly slowing playback.
	DefaultMinFrameDelayMs = 10

	// DefaultMaxCachedFrames bounds the converted-frame cache.
	DefaultMaxCachedFrames = 64

	// DefaultPrefetchWindow is how many frames ahead of the current
	// frame the prefetcher keeps converted.
	DefaultPrefetchWindow = 4
)

// Option configures a Decoder during creation.
//
// Example:
//
//	// Defaults: CPU conversion, no backend attached
//	dec := gifbolt.NewDecoder()
//
//	// Pin the cache and attach a rendering backend
//	dec := gifbolt.NewDecoder(
//	    gifbolt.WithMaxCachedFrames(16),
//	    gifbolt.WithBackend(render.BackendDummy),
//	)
type Option func(*decoderOptions)

// decoderOptions holds optional configuration for Decoder creation.
type decoderOptions struct {
	backendKind    render.Backend
	attachBackend  bool
	maxCached      int
	minFrameDelay  int
	prefetchWindow int
	disableGPU     bool
}

// defaultDecoderOptions returns the options NewDecoder starts from.
func defaultDecoderOptions() decoderOptions {
	return decoderOptions{
		maxCached:      DefaultMaxCachedFrames,
		minFrameDelay:  DefaultMinFrameDelayMs,
		prefetchWindow: DefaultPrefetchWindow,
	}
}

// WithBackend makes NewDecoder construct and attach a device context of
// the given kind through the backend registry. Construction failure does
// not fail NewDecoder: the decoder comes up CPU-only with the failure
// recorded in LastError.
//
// Example:
//
//	import _ "github.com/gogpu/gifbolt/backend/metal"
//
//	dec := gifbolt.NewDecoder(gifbolt.WithBackend(render.BackendMetal))
//	if dec.LastError() != nil {
//	    // no GPU; decoding still works
//	}
func WithBackend(kind render.Backend) Option {
	return func(o *decoderOptions) {
		o.backendKind = kind
		o.attachBackend = true
	}
}

// WithMaxCachedFrames bounds how many converted frame variants stay
// resident. Values below 1 keep the default.
func WithMaxCachedFrames(n int) Option {
	return func(o *decoderOptions) {
		if n >= 1 {
			o.maxCached = n
		}
	}
}

// WithMinFrameDelay sets the delay floor in milliseconds. Zero disables
// the floor; negative values keep the default.
func WithMinFrameDelay(ms int) Option {
	return func(o *decoderOptions) {
		if ms >= 0 {
			o.minFrameDelay = ms
		}
	}
}

// WithPrefetchWindow sets how many frames ahead StartPrefetching keeps
// converted. Values below 1 keep the default.
func WithPrefetchWindow(n int) Option {
	return func(o *decoderOptions) {
		if n >= 1 {
			o.prefetchWindow = n
		}
	}
}

// WithoutGPU disables the registered pixel accelerator for this decoder.
// Conversions and scaling run on the CPU path even when a GPU
// accelerator is available.
func WithoutGPU() Option {
	return func(o *decoderOptions) {
		o.disableGPU = true
	}
}

// WithConfig applies a loaded Config. Zero-valued fields keep the
// defaults, so a partial TOML file adjusts only what it names.
func WithConfig(cfg Config) Option {
	return func(o *decoderOptions) {
		if cfg.MaxCachedFrames > 0 {
			o.maxCached = cfg.MaxCachedFrames
		}
		if cfg.MinFrameDelayMs > 0 {
			o.minFrameDelay = cfg.MinFrameDelayMs
		}
		if cfg.PrefetchWindow > 0 {
			o.prefetchWindow = cfg.PrefetchWindow
		}
		if cfg.DisableGPU {
			o.disableGPU = true
		}
		if kind, ok := cfg.BackendKind(); ok {
			o.backendKind = kind
			o.attachBackend = true
		}
	}
}
