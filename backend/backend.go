package backend

import (
	"github.com/gogpu/gifbolt/render"
)

// Factory creates a device context for one backend kind.
//
// The handle carries the host's GPU device for interop backends; backends
// that own a private device ignore it. A factory that cannot run in this
// process (no driver, no host device) returns render.ErrBackendNotAvailable
// so selection can fall through.
type Factory func(handle render.DeviceHandle) (render.DeviceContext, error)

// defaultPriority is the selection order for Default (first success wins).
// D3D9Ex is excluded: it needs a host device and is only created by
// explicit kind. The dummy backend closes the chain as the fallback.
var defaultPriority = []render.Backend{
	render.BackendD3D11,
	render.BackendMetal,
	render.BackendDummy,
}
