// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package render defines the backend abstraction for GPU texture upload
// and presentation.
//
// # Overview
//
// A DeviceContext owns GPU resources for one rendering backend and creates
// Textures the decoder uploads frames into. Four backend kinds exist:
//
//   - Dummy: CPU-only, textures are plain memory. Always available.
//   - D3D11: GPU textures for compositor interop.
//   - D3D9Ex: double-buffered lockable surfaces for zero-copy interop
//     with a host image surface.
//   - Metal: GPU textures plus compute-accelerated pixel conversion.
//
// The kind names are boundary compatibility labels: hosts select and
// report backends by these values across the C ABI regardless of which
// driver serves them underneath.
//
// # Device Ownership
//
// Backends either own a private device or receive one from the host
// through DeviceHandle. Zero-copy interop (D3D9Ex) requires the host's
// device, since a surface is only shareable inside the device that
// created it.
//
// # Thread Safety
//
// A DeviceContext and its Textures are confined to one thread, normally
// the render thread. Only creation-time configuration may happen
// elsewhere.
package render
