package dummy

import (
	"bytes"
	"errors"
	"testing"

	"github.com/gogpu/gifbolt/backend"
	"github.com/gogpu/gifbolt/render"
)

func newContext(t *testing.T) *Context {
	t.Helper()
	ctx, err := New(render.NullDeviceHandle{})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return ctx.(*Context)
}

func TestRegistered(t *testing.T) {
	if !backend.IsRegistered(render.BackendDummy) {
		t.Error("expected dummy backend to self-register")
	}
}

func TestBackendKind(t *testing.T) {
	ctx := newContext(t)
	if ctx.Backend() != render.BackendDummy {
		t.Errorf("Backend() = %s, want %s", ctx.Backend(), render.BackendDummy)
	}
}

func TestCreateTexture(t *testing.T) {
	ctx := newContext(t)

	pixels := bytes.Repeat([]byte{10, 20, 30, 255}, 4)
	tex, err := ctx.CreateTexture(2, 2, pixels)
	if err != nil {
		t.Fatalf("CreateTexture failed: %v", err)
	}

	if tex.Width() != 2 || tex.Height() != 2 {
		t.Errorf("expected 2x2 texture, got %dx%d", tex.Width(), tex.Height())
	}
	if tex.Format() != render.FrameTextureFormat {
		t.Errorf("Format() = %v, want %v", tex.Format(), render.FrameTextureFormat)
	}
	if got := tex.(*Texture).Pixels(); !bytes.Equal(got, pixels) {
		t.Errorf("stored pixels = %v, want %v", got, pixels)
	}

	// The texture owns a copy; mutating the source must not leak through.
	pixels[0] = 99
	if got := tex.(*Texture).Pixels(); got[0] == 99 {
		t.Error("texture aliases caller's pixel slice")
	}
}

func TestCreateTextureUninitialized(t *testing.T) {
	ctx := newContext(t)

	tex, err := ctx.CreateTexture(3, 2, nil)
	if err != nil {
		t.Fatalf("CreateTexture failed: %v", err)
	}

	got := tex.(*Texture).Pixels()
	if len(got) != 3*2*4 {
		t.Fatalf("expected %d bytes, got %d", 3*2*4, len(got))
	}
	for i, b := range got {
		if b != 0 {
			t.Fatalf("expected zeroed texture, byte %d = %d", i, b)
		}
	}
}

func TestCreateTextureErrors(t *testing.T) {
	ctx := newContext(t)

	tests := []struct {
		name    string
		width   uint32
		height  uint32
		pixels  []byte
		wantErr error
	}{
		{"zero width", 0, 4, nil, render.ErrInvalidTextureSize},
		{"zero height", 4, 0, nil, render.ErrInvalidTextureSize},
		{"too wide", maxTextureSize + 1, 4, nil, render.ErrInvalidTextureSize},
		{"short pixels", 2, 2, make([]byte, 15), render.ErrTextureDataSize},
		{"long pixels", 2, 2, make([]byte, 17), render.ErrTextureDataSize},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ctx.CreateTexture(tt.width, tt.height, tt.pixels)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestTextureUpdate(t *testing.T) {
	ctx := newContext(t)

	tex, err := ctx.CreateTexture(2, 2, nil)
	if err != nil {
		t.Fatalf("CreateTexture failed: %v", err)
	}

	pixels := bytes.Repeat([]byte{1, 2, 3, 4}, 4)
	if err := tex.Update(pixels); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if got := tex.(*Texture).Pixels(); !bytes.Equal(got, pixels) {
		t.Errorf("after Update, pixels = %v, want %v", got, pixels)
	}

	if err := tex.Update(make([]byte, 7)); !errors.Is(err, render.ErrTextureDataSize) {
		t.Errorf("expected ErrTextureDataSize, got %v", err)
	}
}

func TestTextureDestroy(t *testing.T) {
	ctx := newContext(t)

	tex, err := ctx.CreateTexture(2, 2, nil)
	if err != nil {
		t.Fatalf("CreateTexture failed: %v", err)
	}

	tex.Destroy()
	tex.Destroy() // idempotent

	if err := tex.Update(make([]byte, 16)); !errors.Is(err, render.ErrTextureDestroyed) {
		t.Errorf("expected ErrTextureDestroyed, got %v", err)
	}
	if err := ctx.DrawTexture(tex, 0, 0, 2, 2); !errors.Is(err, render.ErrTextureDestroyed) {
		t.Errorf("expected ErrTextureDestroyed from draw, got %v", err)
	}
}

func TestNativeHandle(t *testing.T) {
	ctx := newContext(t)

	tex, err := ctx.CreateTexture(1, 1, nil)
	if err != nil {
		t.Fatalf("CreateTexture failed: %v", err)
	}
	if ptr := tex.NativeHandle(); ptr != 0 {
		t.Errorf("NativeHandle() = %#x, want 0", ptr)
	}
}

func TestFrameCycle(t *testing.T) {
	ctx := newContext(t)

	if ctx.InFrame() {
		t.Error("expected no frame open initially")
	}
	ctx.BeginFrame()
	if !ctx.InFrame() {
		t.Error("expected frame open after BeginFrame")
	}
	ctx.EndFrame()
	if ctx.InFrame() {
		t.Error("expected frame closed after EndFrame")
	}
}

func TestClear(t *testing.T) {
	ctx := newContext(t)

	ctx.Clear(0.25, 0.5, 0.75, 1)
	r, g, b, a := ctx.LastClear()
	if r != 0.25 || g != 0.5 || b != 0.75 || a != 1 {
		t.Errorf("LastClear() = %v %v %v %v, want 0.25 0.5 0.75 1", r, g, b, a)
	}
}

func TestDrawTexture(t *testing.T) {
	ctx := newContext(t)

	tex, err := ctx.CreateTexture(2, 2, nil)
	if err != nil {
		t.Fatalf("CreateTexture failed: %v", err)
	}

	if err := ctx.DrawTexture(nil, 0, 0, 2, 2); !errors.Is(err, render.ErrNilTexture) {
		t.Errorf("expected ErrNilTexture, got %v", err)
	}
	if err := ctx.DrawTexture(tex, 0, 0, 2, 2); err != nil {
		t.Errorf("DrawTexture failed: %v", err)
	}
	if err := ctx.DrawTexture(tex, 10, 10, 4, 4); err != nil {
		t.Errorf("DrawTexture failed: %v", err)
	}
	if ctx.DrawCount() != 2 {
		t.Errorf("DrawCount() = %d, want 2", ctx.DrawCount())
	}
}

func TestClose(t *testing.T) {
	ctx := newContext(t)

	tex, err := ctx.CreateTexture(1, 1, nil)
	if err != nil {
		t.Fatalf("CreateTexture failed: %v", err)
	}

	if err := ctx.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	if _, err := ctx.CreateTexture(1, 1, nil); !errors.Is(err, render.ErrContextClosed) {
		t.Errorf("expected ErrContextClosed from CreateTexture, got %v", err)
	}
	if err := ctx.DrawTexture(tex, 0, 0, 1, 1); !errors.Is(err, render.ErrContextClosed) {
		t.Errorf("expected ErrContextClosed from DrawTexture, got %v", err)
	}
	if err := ctx.Flush(); !errors.Is(err, render.ErrContextClosed) {
		t.Errorf("expected ErrContextClosed from Flush, got %v", err)
	}
}
