//go:build !nogpu

package metal

import (
	"bytes"
	"errors"
	"testing"

	"github.com/gogpu/gifbolt"
	"github.com/gogpu/gifbolt/backend"
	"github.com/gogpu/gifbolt/internal/pixel"
	"github.com/gogpu/gifbolt/render"
)

func newContext(t *testing.T) *Context {
	t.Helper()
	ctx, err := New(render.NullDeviceHandle{})
	if err != nil {
		t.Skipf("GPU not available: %v", err)
	}
	t.Cleanup(func() { ctx.Close() })
	return ctx.(*Context)
}

func makeRGBA(w, h int) []byte {
	pix := make([]byte, w*h*4)
	for i := 0; i < w*h; i++ {
		pix[i*4+0] = byte(i * 7)
		pix[i*4+1] = byte(i * 13)
		pix[i*4+2] = byte(i * 29)
		pix[i*4+3] = byte(i * 31)
	}
	return pix
}

func maxByteDiff(a, b []byte) int {
	max := 0
	for i := range a {
		d := int(a[i]) - int(b[i])
		if d < 0 {
			d = -d
		}
		if d > max {
			max = d
		}
	}
	return max
}

func TestRegistered(t *testing.T) {
	if !backend.IsRegistered(render.BackendMetal) {
		t.Error("expected metal backend to self-register")
	}
	if gifbolt.Accelerator() == nil {
		t.Error("expected pixel accelerator to self-register")
	}
}

func TestUnreadyAcceleratorFallsBack(t *testing.T) {
	// Not initialized, so every operation must report CPU fallback.
	a := &Accelerator{}

	if a.CanAccelerate(gifbolt.AccelConvert) {
		t.Error("expected CanAccelerate false for unready accelerator")
	}
	err := a.ConvertPremultiply(make([]byte, 16), make([]byte, 16), 2, 2)
	if !errors.Is(err, gifbolt.ErrFallbackToCPU) {
		t.Errorf("expected ErrFallbackToCPU, got %v", err)
	}
	err = a.Scale(make([]byte, 16), 2, 2, make([]byte, 16), 2, 2, gifbolt.FilterBilinear)
	if !errors.Is(err, gifbolt.ErrFallbackToCPU) {
		t.Errorf("expected ErrFallbackToCPU, got %v", err)
	}
}

func TestContextConvertPremultiply(t *testing.T) {
	ctx := newContext(t)

	const w, h = 16, 16
	src := makeRGBA(w, h)
	gpuDst := make([]byte, len(src))
	cpuDst := make([]byte, len(src))

	if err := ctx.ConvertPremultiply(gpuDst, src, w, h); err != nil {
		t.Fatalf("ConvertPremultiply failed: %v", err)
	}
	if err := pixel.RGBAToBGRAPremultiplied(cpuDst, src); err != nil {
		t.Fatalf("CPU convert failed: %v", err)
	}
	if d := maxByteDiff(gpuDst, cpuDst); d > 1 {
		t.Errorf("GPU and CPU convert differ by %d", d)
	}
}

func TestContextScaleImage(t *testing.T) {
	ctx := newContext(t)

	const sw, sh = 8, 8
	const dw, dh = 16, 16
	src := makeRGBA(sw, sh)
	gpuDst := make([]byte, dw*dh*4)
	cpuDst := make([]byte, dw*dh*4)

	if err := ctx.ScaleImage(gpuDst, dw, dh, src, sw, sh, gifbolt.FilterBilinear); err != nil {
		t.Fatalf("ScaleImage failed: %v", err)
	}
	if err := pixel.Scale(cpuDst, dw, dh, src, sw, sh, pixel.FilterBilinear); err != nil {
		t.Fatalf("CPU scale failed: %v", err)
	}
	if d := maxByteDiff(gpuDst, cpuDst); d > 1 {
		t.Errorf("GPU and CPU scale differ by %d", d)
	}

	// Wide kernels stay on the CPU regardless of GPU readiness.
	err := ctx.ScaleImage(gpuDst, dw, dh, src, sw, sh, gifbolt.FilterBicubic)
	if !errors.Is(err, gifbolt.ErrFallbackToCPU) {
		t.Errorf("expected ErrFallbackToCPU for bicubic, got %v", err)
	}
}

func TestContextTexture(t *testing.T) {
	ctx := newContext(t)

	pixels := bytes.Repeat([]byte{9, 8, 7, 255}, 4)
	tex, err := ctx.CreateTexture(2, 2, pixels)
	if err != nil {
		t.Fatalf("CreateTexture failed: %v", err)
	}
	defer tex.Destroy()

	if tex.NativeHandle() == 0 {
		t.Error("expected nonzero native handle")
	}
	if err := ctx.DrawTexture(tex, 0, 0, 2, 2); err != nil {
		t.Errorf("DrawTexture failed: %v", err)
	}
	if err := ctx.Flush(); err != nil {
		t.Errorf("Flush failed: %v", err)
	}
}

func TestContextClose(t *testing.T) {
	ctx := newContext(t)

	if err := ctx.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if _, err := ctx.CreateTexture(1, 1, nil); !errors.Is(err, render.ErrContextClosed) {
		t.Errorf("expected ErrContextClosed, got %v", err)
	}
	if err := ctx.ConvertPremultiply(nil, nil, 1, 1); !errors.Is(err, render.ErrContextClosed) {
		t.Errorf("expected ErrContextClosed, got %v", err)
	}
}
