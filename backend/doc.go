// Package backend provides a pluggable device backend abstraction.
//
// The backend package lets the engine target multiple texture/presentation
// implementations through one registry. Each backend package registers a
// factory for its kind; the decoder asks the registry for a context either
// by explicit kind or by priority.
//
// # Backend Registration
//
// Backends are registered via init() functions and selected at runtime.
// The dummy backend is always available; GPU backends are opt-in imports
// so a headless build carries no GPU dependencies:
//
//	import (
//		_ "github.com/gogpu/gifbolt/backend/dummy"
//		_ "github.com/gogpu/gifbolt/backend/metal"
//	)
//
// # Backend Selection
//
// Use Default() for the best available backend, or New() to request a
// specific kind:
//
//	ctx, err := backend.Default(render.NullDeviceHandle{})
//
//	ctx, err := backend.New(render.BackendMetal, handle)
//
// A GPU backend whose device cannot be opened fails with
// render.ErrBackendNotAvailable; Default skips it and falls through,
// ultimately to the dummy backend.
//
// # Host Devices
//
// Factories receive a render.DeviceHandle. Most backends ignore it and
// open a private device; the D3D9Ex backend requires it, because its
// zero-copy surfaces must live on the host's own device.
package backend
