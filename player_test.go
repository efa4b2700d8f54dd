package gifbolt

import (
	"bytes"
	"image"
	"image/gif"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gogpu/gifbolt/backend"
	"github.com/gogpu/gifbolt/backend/dummy"
	"github.com/gogpu/gifbolt/render"
)

type testClock struct{ t time.Time }

func (c *testClock) now() time.Time          { return c.t }
func (c *testClock) advance(d time.Duration) { c.t = c.t.Add(d) }

// newTestPlayer wires a player to a dummy context and a fake clock and
// loads data when given.
func newTestPlayer(t *testing.T, data []byte, opts ...Option) (*Player, *dummy.Context, *testClock) {
	t.Helper()
	ctx, err := backend.New(render.BackendDummy, render.NullDeviceHandle{})
	if err != nil {
		t.Fatalf("creating dummy context: %v", err)
	}

	p := NewPlayer(opts...)
	if err := p.InitializeContext(ctx, 64, 64); err != nil {
		t.Fatalf("InitializeContext: %v", err)
	}
	clk := &testClock{t: time.Unix(1_000_000, 0)}
	p.now = clk.now

	if data != nil {
		if !p.LoadGifFromMemory(data) {
			t.Fatalf("loading test GIF: %v", p.dec.LastError())
		}
	}
	t.Cleanup(func() { p.Close() })
	return p, ctx.(*dummy.Context), clk
}

func TestPlayerRenderUninitialized(t *testing.T) {
	p := NewPlayer()
	if p.Render() {
		t.Error("expected Render to be a no-op without a context")
	}

	p2, _, _ := newTestPlayer(t, nil)
	if p2.Render() {
		t.Error("expected Render to be a no-op without a load")
	}
}

func TestPlayerFirstTickPresents(t *testing.T) {
	p, ctx, _ := newTestPlayer(t, solidGIF(t, 4, 4, []uint8{1, 2}, 5, 0))

	p.Play()
	if !p.Render() {
		t.Fatal("expected the first tick to present a frame")
	}
	if got := p.CurrentFrame(); got != 0 {
		t.Errorf("expected frame 0, got %d", got)
	}
	if got := ctx.DrawCount(); got != 1 {
		t.Errorf("expected 1 draw, got %d", got)
	}

	want, err := p.Decoder().FramePixelsBGRA(0)
	if err != nil {
		t.Fatalf("FramePixelsBGRA: %v", err)
	}
	tex, ok := p.tex.(*dummy.Texture)
	if !ok {
		t.Fatalf("expected dummy texture, got %T", p.tex)
	}
	if !bytes.Equal(tex.Pixels(), want) {
		t.Error("presented pixels differ from the converted frame")
	}
}

func TestPlayerNotPlayingStillDraws(t *testing.T) {
	p, ctx, _ := newTestPlayer(t, solidGIF(t, 4, 4, []uint8{1, 2}, 5, 0))

	// Before the first present there is no texture, so nothing draws.
	if p.Render() {
		t.Error("expected no present before Play")
	}
	if got := ctx.DrawCount(); got != 0 {
		t.Errorf("expected 0 draws, got %d", got)
	}

	p.Play()
	p.Render()
	p.Pause()

	// Paused ticks keep the last frame on screen.
	if p.Render() {
		t.Error("expected no present while paused")
	}
	if got := ctx.DrawCount(); got != 2 {
		t.Errorf("expected 2 draws, got %d", got)
	}
	if got := p.CurrentFrame(); got != 0 {
		t.Errorf("expected frame 0 while paused, got %d", got)
	}
}

func TestPlayerHonorsFrameDelay(t *testing.T) {
	p, _, clk := newTestPlayer(t, solidGIF(t, 4, 4, []uint8{1, 2}, 5, 0))

	p.Play()
	p.Render()

	clk.advance(40 * time.Millisecond)
	if p.Render() {
		t.Error("expected no advance before the frame delay elapsed")
	}
	if got := p.CurrentFrame(); got != 0 {
		t.Errorf("expected frame 0, got %d", got)
	}

	clk.advance(20 * time.Millisecond)
	if !p.Render() {
		t.Error("expected an advance after the frame delay elapsed")
	}
	if got := p.CurrentFrame(); got != 1 {
		t.Errorf("expected frame 1, got %d", got)
	}
}

func TestPlayerLoopsForever(t *testing.T) {
	p, _, clk := newTestPlayer(t, solidGIF(t, 4, 4, []uint8{1, 2}, 5, 0))

	p.Play()
	p.Render()

	for i, want := range []int{1, 0, 1, 0, 1} {
		clk.advance(60 * time.Millisecond)
		if !p.Render() {
			t.Fatalf("tick %d: expected a present", i)
		}
		if got := p.CurrentFrame(); got != want {
			t.Errorf("tick %d: expected frame %d, got %d", i, want, got)
		}
	}
	if !p.playing {
		t.Error("a looping animation must keep playing")
	}
}

func TestPlayerCompletesSinglePass(t *testing.T) {
	p, _, clk := newTestPlayer(t, solidGIF(t, 4, 4, []uint8{1, 2}, 5, -1))

	p.Play()
	p.Render()

	clk.advance(60 * time.Millisecond)
	if !p.Render() {
		t.Fatal("expected the second frame to present")
	}
	if got := p.CurrentFrame(); got != 1 {
		t.Errorf("expected frame 1, got %d", got)
	}

	clk.advance(60 * time.Millisecond)
	if p.Render() {
		t.Error("expected playback to complete at the wrap")
	}
	if p.playing {
		t.Error("expected playback to stop")
	}
	if got := p.CurrentFrame(); got != 1 {
		t.Errorf("a complete animation stays on its last frame, got %d", got)
	}
}

func TestPlayerPauseResume(t *testing.T) {
	p, _, clk := newTestPlayer(t, solidGIF(t, 4, 4, []uint8{1, 2}, 5, 0))

	p.Play()
	p.Render()

	clk.advance(30 * time.Millisecond)
	p.Pause()
	clk.advance(2 * time.Hour)
	p.Play()

	// The interrupted frame plays out its remaining 20ms.
	if p.Render() {
		t.Error("expected the paused duration to not count against the delay")
	}
	clk.advance(25 * time.Millisecond)
	if !p.Render() {
		t.Error("expected an advance once the remaining delay elapsed")
	}
	if got := p.CurrentFrame(); got != 1 {
		t.Errorf("expected frame 1, got %d", got)
	}
}

func TestPlayerStopRewinds(t *testing.T) {
	p, _, clk := newTestPlayer(t, solidGIF(t, 4, 4, []uint8{1, 2}, 5, 0))

	p.Play()
	p.Render()
	clk.advance(60 * time.Millisecond)
	p.Render()
	if got := p.CurrentFrame(); got != 1 {
		t.Fatalf("expected frame 1 before stop, got %d", got)
	}

	p.Stop()
	if got := p.CurrentFrame(); got != 0 {
		t.Errorf("expected rewind to frame 0, got %d", got)
	}
	if got := p.Decoder().CurrentFrame(); got != 0 {
		t.Errorf("expected the decoder position to rewind, got %d", got)
	}
	if p.Render() {
		t.Error("expected no present while stopped")
	}

	p.Play()
	if !p.Render() {
		t.Error("expected an immediate present after restart")
	}
	if got := p.CurrentFrame(); got != 0 {
		t.Errorf("expected frame 0 after restart, got %d", got)
	}
}

func TestPlayerSetLooping(t *testing.T) {
	// A single-pass stream forced to loop keeps wrapping.
	p, _, clk := newTestPlayer(t, solidGIF(t, 4, 4, []uint8{1, 2}, 5, -1))
	p.SetLooping(true)
	p.Play()
	p.Render()
	for i, want := range []int{1, 0, 1} {
		clk.advance(60 * time.Millisecond)
		if !p.Render() {
			t.Fatalf("tick %d: expected a present", i)
		}
		if got := p.CurrentFrame(); got != want {
			t.Errorf("tick %d: expected frame %d, got %d", i, want, got)
		}
	}

	// A looping stream forced off completes after the pass.
	p2, _, clk2 := newTestPlayer(t, solidGIF(t, 4, 4, []uint8{1, 2}, 5, 0))
	p2.SetLooping(false)
	p2.Play()
	p2.Render()
	clk2.advance(60 * time.Millisecond)
	p2.Render()
	clk2.advance(60 * time.Millisecond)
	if p2.Render() {
		t.Error("expected completion at the wrap")
	}
	if p2.playing {
		t.Error("expected playback to stop")
	}
}

func TestPlayerSetCurrentFrame(t *testing.T) {
	p, _, _ := newTestPlayer(t, solidGIF(t, 4, 4, []uint8{1, 2, 3}, 5, 0))

	p.Play()
	p.Render()

	p.SetCurrentFrame(2)
	if got := p.CurrentFrame(); got != 2 {
		t.Fatalf("expected frame 2, got %d", got)
	}
	// The jump presents immediately, no delay wait.
	if !p.Render() {
		t.Error("expected the jumped-to frame to present")
	}
	if got := p.Decoder().CurrentFrame(); got != 2 {
		t.Errorf("expected the decoder position to follow, got %d", got)
	}

	p.SetCurrentFrame(99)
	if got := p.CurrentFrame(); got != 2 {
		t.Errorf("out-of-range jump must be ignored, got %d", got)
	}
	p.SetCurrentFrame(-1)
	if got := p.CurrentFrame(); got != 2 {
		t.Errorf("negative jump must be ignored, got %d", got)
	}
}

func TestPlayerBackgroundClear(t *testing.T) {
	g := &gif.GIF{
		LoopCount:       0,
		BackgroundIndex: 1,
		Config:          image.Config{ColorModel: opaquePalette, Width: 4, Height: 4},
		Image: []*image.Paletted{
			frameRect(image.Rect(0, 0, 4, 4), opaquePalette, 2),
			frameRect(image.Rect(0, 0, 4, 4), opaquePalette, 3),
		},
		Delay: []int{5, 5},
	}
	p, ctx, _ := newTestPlayer(t, encodeGIF(t, g))

	p.Play()
	p.Render()

	r, gr, b, a := ctx.LastClear()
	if r != 1 || gr != 0 || b != 0 || a != 1 {
		t.Errorf("expected clear to the red background, got (%v, %v, %v, %v)", r, gr, b, a)
	}
}

func TestPlayerUploadFailureKeepsScreen(t *testing.T) {
	p, ctx, clk := newTestPlayer(t, solidGIF(t, 4, 4, []uint8{1, 2}, 5, 0))

	p.Play()
	p.Render()
	draws := ctx.DrawCount()

	// Destroying the texture out from under the player makes the next
	// upload fail; the tick reports no present and draws nothing new.
	p.tex.Destroy()
	clk.advance(60 * time.Millisecond)
	if p.Render() {
		t.Error("expected no present when the upload fails")
	}
	if got := ctx.DrawCount(); got != draws {
		t.Errorf("expected no draw on a failed upload, got %d extra", got-draws)
	}
}

func TestPlayerAccessors(t *testing.T) {
	p := NewPlayer()
	if p.Decoder() != nil {
		t.Error("expected no decoder before load")
	}
	if p.FrameCount() != 0 || p.Width() != 0 || p.Height() != 0 {
		t.Error("expected zero metadata before load")
	}

	p2, _, _ := newTestPlayer(t, solidGIF(t, 4, 6, []uint8{1, 2}, 5, 0))
	if p2.Decoder() == nil {
		t.Error("expected a decoder after load")
	}
	if got := p2.FrameCount(); got != 2 {
		t.Errorf("expected 2 frames, got %d", got)
	}
	if w, h := p2.Width(), p2.Height(); w != 4 || h != 6 {
		t.Errorf("expected 4x6, got %dx%d", w, h)
	}
}

func TestPlayerInitialize(t *testing.T) {
	p := NewPlayer()
	if err := p.Initialize(32, 32); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if p.ctx == nil {
		t.Fatal("expected a context after Initialize")
	}
	if got := p.ctx.Backend(); got != render.BackendDummy {
		t.Errorf("expected the dummy fallback, got %v", got)
	}

	// The player owns a context it acquired itself.
	ctx := p.ctx
	if err := p.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := ctx.CreateTexture(1, 1, nil); err == nil {
		t.Error("expected the owned context to be closed")
	}
}

func TestPlayerInitializeContextNil(t *testing.T) {
	p := NewPlayer()
	if err := p.InitializeContext(nil, 8, 8); err == nil {
		t.Error("expected an error for a nil context")
	}
}

func TestPlayerLoadGifFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "anim.gif")
	if err := os.WriteFile(path, solidGIF(t, 4, 4, []uint8{1, 2}, 5, 0), 0o644); err != nil {
		t.Fatalf("writing test GIF: %v", err)
	}

	p, _, _ := newTestPlayer(t, nil)
	if !p.LoadGif(path) {
		t.Fatalf("LoadGif failed: %v", p.Decoder().LastError())
	}
	if got := p.FrameCount(); got != 2 {
		t.Errorf("expected 2 frames, got %d", got)
	}

	if p.LoadGif(filepath.Join(t.TempDir(), "missing.gif")) {
		t.Error("expected LoadGif to fail for a missing file")
	}
}

func TestPlayerReloadResetsPlayback(t *testing.T) {
	p, _, clk := newTestPlayer(t, solidGIF(t, 4, 4, []uint8{1, 2}, 5, 0))

	p.Play()
	p.Render()
	clk.advance(60 * time.Millisecond)
	p.Render()

	if !p.LoadGifFromMemory(solidGIF(t, 8, 8, []uint8{3, 4}, 5, 0)) {
		t.Fatalf("reload failed: %v", p.Decoder().LastError())
	}
	if got := p.CurrentFrame(); got != 0 {
		t.Errorf("expected rewind on reload, got frame %d", got)
	}
	if p.playing {
		t.Error("expected reload to halt playback")
	}
	if p.tex != nil {
		t.Error("expected the texture to be dropped; dimensions changed")
	}

	// The next play cycle recreates the texture at the new size.
	p.Play()
	if !p.Render() {
		t.Fatal("expected a present after reload")
	}
	tex := p.tex.(*dummy.Texture)
	if tex.Width() != 8 || tex.Height() != 8 {
		t.Errorf("expected an 8x8 texture, got %dx%d", tex.Width(), tex.Height())
	}
}
