package gifbolt

import "time"

// prefetchIdle is how long the prefetcher parks once the lookahead
// window is fully converted.
const prefetchIdle = 2 * time.Millisecond

// StartPrefetching launches the background prefetcher from the given
// frame. The prefetcher is one dedicated goroutine per decoder, kept off
// the shared worker pool so a saturated pool cannot stall it. It keeps
// the next prefetchWindow frames converted ahead of the position set by
// SetCurrentFrame. Starting an already running prefetcher or an empty
// decoder does nothing.
func (d *Decoder) StartPrefetching(start int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.prefetchStop != nil || len(d.frames) == 0 {
		return
	}
	if start < 0 || start >= len(d.frames) {
		start = 0
	}
	d.current.Store(int64(start))

	stop := make(chan struct{})
	done := make(chan struct{})
	d.prefetchStop = stop
	d.prefetchDone = done
	go d.prefetchLoop(stop, done)
}

// StopPrefetching stops the prefetcher and joins its goroutine before
// returning, so no prefetch work touches the decoder afterwards. An
// in-flight conversion finishes; cancellation granularity is "no more
// frames". Safe to call when nothing is running.
func (d *Decoder) StopPrefetching() {
	d.mu.Lock()
	stop, done := d.prefetchStop, d.prefetchDone
	d.prefetchStop, d.prefetchDone = nil, nil
	d.mu.Unlock()

	if stop == nil {
		return
	}
	close(stop)
	<-done
}

// SetCurrentFrame tells the prefetcher where playback is. An atomic
// store, safe from any goroutine, cheap enough for every render tick.
func (d *Decoder) SetCurrentFrame(n int) {
	d.current.Store(int64(n))
}

// CurrentFrame returns the playback position last given to
// SetCurrentFrame or the advance path.
func (d *Decoder) CurrentFrame() int {
	return int(d.current.Load())
}

func (d *Decoder) prefetchLoop(stop, done chan struct{}) {
	defer close(done)
	for {
		select {
		case <-stop:
			return
		default:
		}

		if d.prefetchAhead(stop) == 0 {
			// Window is warm; park instead of spinning on the cache.
			select {
			case <-stop:
				return
			case <-time.After(prefetchIdle):
			}
		}
	}
}

// prefetchAhead converts up to the window of frames after the current
// one, wrapping past the end only for looping animations. Returns how
// many conversions it performed; cache hits cost one lookup.
func (d *Decoder) prefetchAhead(stop chan struct{}) int {
	d.mu.Lock()
	frames := d.frames
	window := d.prefetchWindow
	looping := d.looping
	d.mu.Unlock()

	n := len(frames)
	if n == 0 {
		return 0
	}

	current := int(d.current.Load())
	if current < 0 || current >= n {
		current = 0
	}

	converted := 0
	for k := 1; k <= window; k++ {
		select {
		case <-stop:
			return converted
		default:
		}

		idx := current + k
		if idx >= n {
			if !looping {
				break
			}
			idx %= n
		}

		f := &frames[idx]
		key := frameKey{index: idx, width: f.Width, height: f.Height, filter: rawFilter}
		if d.cache.Contains(key) {
			continue
		}
		if _, err := d.FramePixelsBGRA(idx); err == nil {
			converted++
		}
	}
	return converted
}
