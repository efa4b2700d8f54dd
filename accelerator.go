package gifbolt

import (
	"errors"
	"sync"
)

// ErrFallbackToCPU indicates the pixel accelerator cannot handle this
// operation. The caller should transparently fall back to the CPU path.
var ErrFallbackToCPU = errors.New("gifbolt: falling back to CPU conversion")

// AcceleratedOp describes operation types for GPU capability checking.
type AcceleratedOp uint32

const (
	// AccelConvert represents RGBA to premultiplied-BGRA conversion.
	AccelConvert AcceleratedOp = 1 << iota

	// AccelPremultiply represents in-place alpha premultiplication.
	AccelPremultiply

	// AccelScale represents resampling with any of the scaling filters.
	AccelScale
)

// PixelAccelerator is an optional GPU conversion/scaling provider.
//
// When registered via RegisterAccelerator, the pixel pipeline tries GPU
// conversion first for supported operations. If the accelerator returns
// ErrFallbackToCPU or any error, conversion transparently falls back to CPU.
//
// Implementations are provided by backend packages. Users opt in via blank
// import:
//
//	import _ "github.com/gogpu/gifbolt/backend/metal" // enables GPU conversion
type PixelAccelerator interface {
	// Name returns the accelerator name (e.g., "metal", "d3d11").
	Name() string

	// Init initializes GPU resources. Called once during registration.
	Init() error

	// Close releases GPU resources.
	Close()

	// CanAccelerate reports whether the accelerator supports the given
	// operation. This is a fast check used to skip GPU entirely for
	// unsupported operations.
	CanAccelerate(op AcceleratedOp) bool

	// ConvertPremultiply converts RGBA32 pixels to premultiplied BGRA32.
	// dst and src are width*height*4 bytes.
	// Returns ErrFallbackToCPU if the conversion cannot run on the GPU.
	ConvertPremultiply(dst, src []byte, width, height int) error

	// Scale resamples premultiplied BGRA32 pixels to the destination size.
	// Returns ErrFallbackToCPU if the filter is not GPU-supported.
	Scale(dst []byte, dstW, dstH int, src []byte, srcW, srcH int, filter ScalingFilter) error
}

// DeviceProviderAware is an optional interface for accelerators that can
// share GPU resources with an external provider (e.g., a host compositor).
// When SetDeviceProvider is called, the accelerator reuses the provided GPU
// device instead of creating its own.
type DeviceProviderAware interface {
	SetDeviceProvider(provider any) error
}

var (
	accelMu sync.RWMutex
	accel   PixelAccelerator
)

// RegisterAccelerator registers a pixel accelerator for optional GPU
// conversion and scaling.
//
// Only one accelerator can be registered. Subsequent calls replace the
// previous one. The accelerator's Init() method is called during
// registration. If Init() fails, the accelerator is not registered and the
// error is returned.
//
// Typical usage via blank import in backend packages:
//
//	func init() {
//	    gifbolt.RegisterAccelerator(newComputeAccelerator())
//	}
func RegisterAccelerator(a PixelAccelerator) error {
	if a == nil {
		return errors.New("gifbolt: accelerator must not be nil")
	}
	if err := a.Init(); err != nil {
		return err
	}
	propagateLogger(a, Logger())
	accelMu.Lock()
	old := accel
	accel = a
	accelMu.Unlock()
	if old != nil {
		old.Close()
	}
	return nil
}

// Accelerator returns the currently registered pixel accelerator, or nil if
// none.
func Accelerator() PixelAccelerator {
	accelMu.RLock()
	a := accel
	accelMu.RUnlock()
	return a
}

// SetAcceleratorDeviceProvider passes a device provider to the registered
// accelerator, enabling GPU device sharing. If no accelerator is registered
// or it doesn't support device sharing, this is a no-op.
//
// The provider should implement HalDevice() any and HalQueue() any methods
// that return wgpu/hal types.
func SetAcceleratorDeviceProvider(provider any) error {
	a := Accelerator()
	if a == nil {
		return nil
	}
	if dpa, ok := a.(DeviceProviderAware); ok {
		return dpa.SetDeviceProvider(provider)
	}
	return nil
}
