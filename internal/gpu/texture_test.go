//go:build !nogpu

package gpu

import (
	"bytes"
	"errors"
	"testing"

	"github.com/gogpu/gifbolt/render"
)

func TestTextureRoundTrip(t *testing.T) {
	dev := openTestDevice(t)

	pixels := makeRGBA(8, 8)
	tex, err := NewTexture(dev, 8, 8, pixels)
	if err != nil {
		t.Fatalf("NewTexture failed: %v", err)
	}
	defer tex.Destroy()

	got := make([]byte, len(pixels))
	if err := tex.ReadPixels(got); err != nil {
		t.Fatalf("ReadPixels failed: %v", err)
	}
	if !bytes.Equal(got, pixels) {
		t.Error("read back pixels differ from upload")
	}
	if tex.NativeHandle() == 0 {
		t.Error("expected nonzero native handle")
	}
}

func TestTextureUpdate(t *testing.T) {
	dev := openTestDevice(t)

	tex, err := NewTexture(dev, 4, 4, nil)
	if err != nil {
		t.Fatalf("NewTexture failed: %v", err)
	}
	defer tex.Destroy()

	pixels := bytes.Repeat([]byte{1, 2, 3, 4}, 16)
	if err := tex.Update(pixels); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	got := make([]byte, len(pixels))
	if err := tex.ReadPixels(got); err != nil {
		t.Fatalf("ReadPixels failed: %v", err)
	}
	if !bytes.Equal(got, pixels) {
		t.Error("read back pixels differ from update")
	}

	if err := tex.Update(make([]byte, 7)); !errors.Is(err, render.ErrTextureDataSize) {
		t.Errorf("expected ErrTextureDataSize, got %v", err)
	}
}

func TestTextureDestroy(t *testing.T) {
	dev := openTestDevice(t)

	tex, err := NewTexture(dev, 2, 2, nil)
	if err != nil {
		t.Fatalf("NewTexture failed: %v", err)
	}

	tex.Destroy()
	tex.Destroy() // idempotent

	if tex.NativeHandle() != 0 {
		t.Error("expected zero handle after destroy")
	}
	if err := tex.Update(make([]byte, 16)); !errors.Is(err, render.ErrTextureDestroyed) {
		t.Errorf("expected ErrTextureDestroyed, got %v", err)
	}
	if err := tex.ReadPixels(make([]byte, 16)); !errors.Is(err, render.ErrTextureDestroyed) {
		t.Errorf("expected ErrTextureDestroyed, got %v", err)
	}
}

func TestTextureSizeValidation(t *testing.T) {
	dev := openTestDevice(t)

	if _, err := NewTexture(dev, 0, 4, nil); !errors.Is(err, render.ErrInvalidTextureSize) {
		t.Errorf("expected ErrInvalidTextureSize, got %v", err)
	}
	if _, err := NewTexture(dev, 2, 2, make([]byte, 5)); !errors.Is(err, render.ErrTextureDataSize) {
		t.Errorf("expected ErrTextureDataSize, got %v", err)
	}
}
