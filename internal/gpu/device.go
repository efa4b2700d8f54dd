//go:build !nogpu

package gpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/gifbolt/render"

	// Import Vulkan backend so it registers via init().
	_ "github.com/gogpu/wgpu/hal/vulkan"
)

// maxTextureSize is the largest texture dimension the pixel pipeline
// accepts. Kept below every desktop adapter's real limit.
const maxTextureSize = 16384

// Device bundles a hal device and queue with ownership tracking.
// A Device opened with Open is private and destroyed by Close; a Device
// built with FromProvider borrows the host's resources and Close leaves
// them alone.
type Device struct {
	instance hal.Instance
	device   hal.Device
	queue    hal.Queue
	name     string
	external bool
}

// Open acquires a private GPU device through the Vulkan backend,
// preferring discrete then integrated adapters.
func Open() (*Device, error) {
	backend, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return nil, fmt.Errorf("vulkan backend not available")
	}
	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return nil, fmt.Errorf("create instance: %w", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, fmt.Errorf("no GPU adapters found")
	}
	var selected *hal.ExposedAdapter
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}
	if selected == nil {
		selected = &adapters[0]
	}
	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("open device: %w", err)
	}

	d := &Device{
		instance: instance,
		device:   openDev.Device,
		queue:    openDev.Queue,
		name:     selected.Info.Name,
	}
	slogger().Info("device opened", "adapter", d.name)
	return d, nil
}

// FromProvider wraps a shared GPU device exposed by the host. The provider
// must implement HalDevice() any and HalQueue() any returning hal.Device
// and hal.Queue.
func FromProvider(provider any) (*Device, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, fmt.Errorf("gpu-pixel: provider does not expose HAL types")
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, fmt.Errorf("gpu-pixel: provider HalDevice is not hal.Device")
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, fmt.Errorf("gpu-pixel: provider HalQueue is not hal.Queue")
	}
	return &Device{device: device, queue: queue, name: "shared", external: true}, nil
}

// HalDevice returns the wrapped hal device.
func (d *Device) HalDevice() hal.Device { return d.device }

// HalQueue returns the wrapped hal queue.
func (d *Device) HalQueue() hal.Queue { return d.queue }

// Name returns the adapter name for logs.
func (d *Device) Name() string { return d.name }

// External reports whether the device is borrowed from the host.
func (d *Device) External() bool { return d.external }

// Capabilities reports what the device can do for callers choosing
// between GPU and CPU paths.
func (d *Device) Capabilities() render.DeviceCapabilities {
	return render.DeviceCapabilities{
		MaxTextureSize:         maxTextureSize,
		SupportsCompute:        true,
		SupportsSharedSurfaces: d.external,
		DeviceName:             d.name,
	}
}

// WaitIdle blocks until all work submitted to the queue so far has
// completed, by submitting an empty command buffer and waiting on its
// fence. Used to order surface flips behind pending GPU reads.
func (d *Device) WaitIdle() error {
	if d.device == nil {
		return ErrNoDevice
	}
	encoder, err := d.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "idle_sync"})
	if err != nil {
		return fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("idle_sync"); err != nil {
		return fmt.Errorf("begin encoding: %w", err)
	}
	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("end encoding: %w", err)
	}
	defer d.device.FreeCommandBuffer(cmdBuf)

	fence, err := d.device.CreateFence()
	if err != nil {
		return fmt.Errorf("create fence: %w", err)
	}
	defer d.device.DestroyFence(fence)
	if err := d.queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		return fmt.Errorf("submit: %w", err)
	}
	fenceOK, err := d.device.Wait(fence, 1, fenceTimeout)
	if err != nil || !fenceOK {
		return fmt.Errorf("wait for GPU: ok=%v err=%w", fenceOK, err)
	}
	return nil
}

// Close destroys the device and instance when they are privately owned.
// Borrowed resources are released back to the host untouched.
func (d *Device) Close() {
	if !d.external {
		if d.device != nil {
			d.device.Destroy()
		}
		if d.instance != nil {
			d.instance.Destroy()
		}
	}
	d.device = nil
	d.queue = nil
	d.instance = nil
}
