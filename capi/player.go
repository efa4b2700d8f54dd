package capi

import (
	"github.com/gogpu/gifbolt"
)

func player(h Handle) *gifbolt.Player {
	mu.Lock()
	defer mu.Unlock()
	return players[h]
}

// PlayerCreate creates an uninitialized player and returns its handle.
func PlayerCreate() Handle {
	p := gifbolt.NewPlayer()
	mu.Lock()
	defer mu.Unlock()
	h := newHandle()
	players[h] = p
	return h
}

// PlayerDestroy closes the player and invalidates its handle.
func PlayerDestroy(h Handle) {
	mu.Lock()
	p := players[h]
	delete(players, h)
	mu.Unlock()
	if p != nil {
		p.Close()
	}
}

// PlayerInitialize acquires the best available device context and sets
// the draw target size. Returns 1 on success.
func PlayerInitialize(h Handle, width, height uint32) int32 {
	p := player(h)
	if p == nil {
		return 0
	}
	if err := p.Initialize(width, height); err != nil {
		recordError(err)
		return 0
	}
	return 1
}

// PlayerLoadGif loads an animation from disk. Returns 1 on success.
func PlayerLoadGif(h Handle, path string) int32 {
	p := player(h)
	if p == nil || path == "" {
		return 0
	}
	if !p.LoadGif(path) {
		if d := p.Decoder(); d != nil {
			recordError(d.LastError())
		}
		return 0
	}
	return 1
}

// PlayerLoadGifFromMemory loads an animation from a byte slice.
// Returns 1 on success.
func PlayerLoadGifFromMemory(h Handle, data []byte) int32 {
	p := player(h)
	if p == nil || len(data) == 0 {
		return 0
	}
	if !p.LoadGifFromMemory(data) {
		if d := p.Decoder(); d != nil {
			recordError(d.LastError())
		}
		return 0
	}
	return 1
}

// PlayerPlay starts or resumes playback.
func PlayerPlay(h Handle) {
	if p := player(h); p != nil {
		p.Play()
	}
}

// PlayerPause freezes playback on the current frame.
func PlayerPause(h Handle) {
	if p := player(h); p != nil {
		p.Pause()
	}
}

// PlayerStop halts playback and rewinds to frame zero.
func PlayerStop(h Handle) {
	if p := player(h); p != nil {
		p.Stop()
	}
}

// PlayerSetLooping overrides the stream's repeat behavior.
func PlayerSetLooping(h Handle, loop int32) {
	if p := player(h); p != nil {
		p.SetLooping(loop != 0)
	}
}

// PlayerRender runs one playback tick. Returns 1 when a new frame was
// presented.
func PlayerRender(h Handle) int32 {
	p := player(h)
	if p == nil || !p.Render() {
		return 0
	}
	return 1
}
