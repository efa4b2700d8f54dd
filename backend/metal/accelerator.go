//go:build !nogpu

package metal

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/gogpu/gifbolt"
	"github.com/gogpu/gifbolt/internal/gpu"
)

// Accelerator implements gifbolt.PixelAccelerator on the compute engine.
//
// Init tries to open a private GPU device; when that fails the accelerator
// stays registered but unready, and every operation reports fallback so
// conversion continues on the CPU. A host can switch it to a shared device
// later through SetDeviceProvider.
type Accelerator struct {
	mu     sync.Mutex
	dev    *gpu.Device
	engine *gpu.Engine
	ready  bool

	logger atomic.Pointer[slog.Logger]
}

var _ gifbolt.PixelAccelerator = (*Accelerator)(nil)
var _ gifbolt.DeviceProviderAware = (*Accelerator)(nil)

// Name identifies the accelerator in logs.
func (a *Accelerator) Name() string { return "metal-compute" }

// Init opens a private GPU device. A missing GPU is not an error: the
// accelerator registers unready and conversions stay on the CPU.
func (a *Accelerator) Init() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.ready {
		return nil
	}
	dev, err := gpu.Open()
	if err != nil {
		a.log().Warn("GPU pixel pipeline not available, using CPU fallback", "err", err)
		return nil
	}
	a.dev = dev
	a.engine = gpu.NewEngine(dev)
	a.ready = true
	a.log().Info("GPU pixel pipeline ready", "adapter", dev.Name())
	return nil
}

// Close releases the engine and device.
func (a *Accelerator) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.engine != nil {
		a.engine.Close()
		a.engine = nil
	}
	if a.dev != nil {
		a.dev.Close()
		a.dev = nil
	}
	a.ready = false
}

// CanAccelerate reports which pixel operations can run on the GPU.
func (a *Accelerator) CanAccelerate(op gifbolt.AcceleratedOp) bool {
	a.mu.Lock()
	ready := a.ready
	a.mu.Unlock()
	if !ready {
		return false
	}
	return op&(gifbolt.AccelConvert|gifbolt.AccelPremultiply|gifbolt.AccelScale) != 0
}

// ConvertPremultiply converts straight-alpha RGBA to premultiplied BGRA
// on the GPU.
func (a *Accelerator) ConvertPremultiply(dst, src []byte, width, height int) error {
	engine, ready := a.snapshot()
	if !ready {
		return gifbolt.ErrFallbackToCPU
	}
	return engine.ConvertPremultiply(dst, src, width, height)
}

// Scale resamples src into dst on the GPU. The bicubic and lanczos
// kernels have no GPU implementation and report fallback.
func (a *Accelerator) Scale(dst []byte, dstW, dstH int, src []byte, srcW, srcH int, filter gifbolt.ScalingFilter) error {
	engine, ready := a.snapshot()
	if !ready {
		return gifbolt.ErrFallbackToCPU
	}
	gf, ok := gpuFilter(filter)
	if !ok {
		return gifbolt.ErrFallbackToCPU
	}
	return engine.Scale(dst, dstW, dstH, src, srcW, srcH, gf)
}

// SetDeviceProvider switches the accelerator to a shared GPU device from
// the host. The provider must expose HalDevice() any and HalQueue() any.
func (a *Accelerator) SetDeviceProvider(provider any) error {
	dev, err := gpu.FromProvider(provider)
	if err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.engine != nil {
		a.engine.Close()
	}
	if a.dev != nil {
		a.dev.Close()
	}
	a.dev = dev
	a.engine = gpu.NewEngine(dev)
	a.ready = true
	a.log().Info("switched to shared GPU device")
	return nil
}

// SetLogger accepts the logger propagated from the root package and
// forwards it to the compute engine.
func (a *Accelerator) SetLogger(l *slog.Logger) {
	a.logger.Store(l)
	gpu.SetLogger(l)
}

func (a *Accelerator) snapshot() (*gpu.Engine, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.engine, a.ready
}

func (a *Accelerator) log() *slog.Logger {
	if l := a.logger.Load(); l != nil {
		return l
	}
	return gifbolt.Logger()
}
