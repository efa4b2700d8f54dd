// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"testing"

	"github.com/gogpu/gputypes"
)

func TestNullDeviceHandle(t *testing.T) {
	var handle DeviceHandle = NullDeviceHandle{}

	if handle.Device() != nil {
		t.Error("NullDeviceHandle.Device() should return nil")
	}
	if handle.Queue() != nil {
		t.Error("NullDeviceHandle.Queue() should return nil")
	}
	if handle.Adapter() != nil {
		t.Error("NullDeviceHandle.Adapter() should return nil")
	}
	if handle.SurfaceFormat() != gputypes.TextureFormatUndefined {
		t.Error("NullDeviceHandle.SurfaceFormat() should return Undefined")
	}
}

func TestBackendString(t *testing.T) {
	tests := []struct {
		backend Backend
		want    string
	}{
		{BackendDummy, "Dummy"},
		{BackendD3D11, "D3D11"},
		{BackendD3D9Ex, "D3D9Ex"},
		{BackendMetal, "Metal"},
		{Backend(42), "Unknown"},
	}

	for _, tt := range tests {
		if got := tt.backend.String(); got != tt.want {
			t.Errorf("Backend(%d).String() = %q, want %q", tt.backend, got, tt.want)
		}
	}
}

func TestBackendValues(t *testing.T) {
	// The numeric values are a boundary contract; they must not drift.
	if BackendDummy != 0 || BackendD3D11 != 1 || BackendD3D9Ex != 2 || BackendMetal != 3 {
		t.Errorf("backend values changed: %d %d %d %d",
			BackendDummy, BackendD3D11, BackendD3D9Ex, BackendMetal)
	}
}

func TestBackendIsValid(t *testing.T) {
	for b := BackendDummy; b <= BackendMetal; b++ {
		if !b.IsValid() {
			t.Errorf("Backend(%d).IsValid() = false", b)
		}
	}
	if Backend(-1).IsValid() {
		t.Error("Backend(-1).IsValid() = true")
	}
	if Backend(4).IsValid() {
		t.Error("Backend(4).IsValid() = true")
	}
}

func TestFrameTextureFormat(t *testing.T) {
	if FrameTextureFormat != gputypes.TextureFormatBGRA8Unorm {
		t.Errorf("FrameTextureFormat = %v, want BGRA8Unorm", FrameTextureFormat)
	}
}
