// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
)

// DeviceHandle provides GPU device access from the host application.
//
// This interface is the integration point for zero-copy backends: the host
// (a compositor, a UI framework's render loop) implements DeviceHandle and
// passes it in, and the backend creates its surfaces on the host's device
// so their handles can be consumed by the host without a copy.
//
// Key principle: the engine RECEIVES the device from the host for interop
// backends, it does NOT create one. Backends without a host device open
// their own private device instead.
//
// Example implementation:
//
//	type appDeviceHandle struct {
//	    ctx *gogpu.Context
//	}
//
//	func (h *appDeviceHandle) Device() gpucontext.Device {
//	    return h.ctx.Device()
//	}
//
//	func (h *appDeviceHandle) Queue() gpucontext.Queue {
//	    return h.ctx.Queue()
//	}
//
// DeviceHandle is an alias for gpucontext.DeviceProvider, providing an
// engine-specific name for the interface while maintaining full
// compatibility with the gpucontext ecosystem.
type DeviceHandle = gpucontext.DeviceProvider

// DeviceCapabilities describes the capabilities of a GPU device.
// Backends report these so callers can decide between GPU and CPU paths.
type DeviceCapabilities struct {
	// MaxTextureSize is the maximum texture dimension supported.
	MaxTextureSize uint32

	// SupportsCompute indicates if compute shaders are supported.
	SupportsCompute bool

	// SupportsSharedSurfaces indicates if surfaces can be shared with a
	// host device for zero-copy interop.
	SupportsSharedSurfaces bool

	// VendorName is the GPU vendor name.
	VendorName string

	// DeviceName is the GPU device name.
	DeviceName string
}

// NullDeviceHandle is a DeviceHandle that provides nil implementations.
// Used for CPU-only operation where no GPU is available.
type NullDeviceHandle struct{}

// Device returns nil for the null device.
func (NullDeviceHandle) Device() gpucontext.Device { return nil }

// Queue returns nil for the null device.
func (NullDeviceHandle) Queue() gpucontext.Queue { return nil }

// Adapter returns nil for the null device.
func (NullDeviceHandle) Adapter() gpucontext.Adapter { return nil }

// SurfaceFormat returns undefined format for the null device.
func (NullDeviceHandle) SurfaceFormat() gputypes.TextureFormat {
	return gputypes.TextureFormatUndefined
}

// Ensure NullDeviceHandle implements DeviceHandle.
var _ DeviceHandle = NullDeviceHandle{}
