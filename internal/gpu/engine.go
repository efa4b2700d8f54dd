//go:build !nogpu

package gpu

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

var (
	ErrNoDevice          = errors.New("gpu: no device")
	ErrBufferSize        = errors.New("gpu: buffer size mismatch")
	ErrInvalidDimensions = errors.New("gpu: invalid dimensions")
	ErrUnsupportedFilter = errors.New("gpu: unsupported filter")
)

// ScaleFilter selects the sampling kernel for Engine.Scale. Values match
// the filter uniform in scale.wgsl.
type ScaleFilter uint32

const (
	ScaleNearest  ScaleFilter = 0
	ScaleBilinear ScaleFilter = 1
)

// fenceTimeout bounds every dispatch; a GPU that takes longer is wedged.
const fenceTimeout = 5 * time.Second

// pipeline holds the per-kernel GPU objects, built on first use.
type pipeline struct {
	shader     hal.ShaderModule
	bindLayout hal.BindGroupLayout
	pipeLayout hal.PipelineLayout
	compute    hal.ComputePipeline
}

// Engine dispatches the pixel kernels on a Device. Operations are
// serialized on an internal mutex. The engine owns its pipelines but not
// the device; Close releases the pipelines only.
type Engine struct {
	mu        sync.Mutex
	dev       *Device
	pipelines map[string]*pipeline
}

// NewEngine creates an engine on dev. Each kernel's pipeline is compiled
// lazily on its first dispatch.
func NewEngine(dev *Device) *Engine {
	return &Engine{dev: dev, pipelines: make(map[string]*pipeline)}
}

// Device returns the engine's device.
func (e *Engine) Device() *Device { return e.dev }

// Premultiply multiplies color channels by alpha in place on the GPU.
// pixels must hold width*height*4 bytes.
func (e *Engine) Premultiply(pixels []byte, width, height int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.checkDims(width, height); err != nil {
		return err
	}
	size := uint64(width) * uint64(height) * 4
	if uint64(len(pixels)) != size {
		return fmt.Errorf("got %d bytes, need %d: %w", len(pixels), size, ErrBufferSize)
	}

	p, err := e.getPipeline("pixel_premultiply", premultiplyShaderWGSL, []gputypes.BindGroupLayoutEntry{
		{Binding: 0, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform}},
		{Binding: 1, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeStorage}},
	})
	if err != nil {
		return err
	}
	dev, queue := e.dev.device, e.dev.queue

	params := packParams(uint32(width), uint32(height), 0, 0)
	paramBuf, err := dev.CreateBuffer(&hal.BufferDescriptor{
		Label: "premultiply_params", Size: uint64(len(params)),
		Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("create params buffer: %w", err)
	}
	defer dev.DestroyBuffer(paramBuf)

	storageBuf, err := dev.CreateBuffer(&hal.BufferDescriptor{
		Label: "premultiply_pixels", Size: size,
		Usage: gputypes.BufferUsageStorage | gputypes.BufferUsageCopySrc | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("create storage buffer: %w", err)
	}
	defer dev.DestroyBuffer(storageBuf)

	stagingBuf, err := dev.CreateBuffer(&hal.BufferDescriptor{
		Label: "premultiply_staging", Size: size,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("create staging buffer: %w", err)
	}
	defer dev.DestroyBuffer(stagingBuf)

	queue.WriteBuffer(paramBuf, 0, params)
	queue.WriteBuffer(storageBuf, 0, pixels)

	bg, err := dev.CreateBindGroup(&hal.BindGroupDescriptor{
		Label: "premultiply_bind", Layout: p.bindLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{Buffer: paramBuf.NativeHandle(), Offset: 0, Size: uint64(len(params))}},
			{Binding: 1, Resource: gputypes.BufferBinding{Buffer: storageBuf.NativeHandle(), Offset: 0, Size: size}},
		},
	})
	if err != nil {
		return fmt.Errorf("create bind group: %w", err)
	}
	defer dev.DestroyBindGroup(bg)

	if err := e.dispatch(p, bg, uint32(width), uint32(height), storageBuf, stagingBuf, size, "premultiply"); err != nil {
		return err
	}
	return queue.ReadBuffer(stagingBuf, 0, pixels)
}

// ConvertPremultiply converts straight-alpha RGBA in src to premultiplied
// BGRA in dst on the GPU. Both slices must hold width*height*4 bytes.
func (e *Engine) ConvertPremultiply(dst, src []byte, width, height int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.checkDims(width, height); err != nil {
		return err
	}
	size := uint64(width) * uint64(height) * 4
	if uint64(len(src)) != size || uint64(len(dst)) != size {
		return fmt.Errorf("src %d dst %d bytes, need %d: %w", len(src), len(dst), size, ErrBufferSize)
	}

	p, err := e.getPipeline("pixel_convert", convertShaderWGSL, twoBufferLayout())
	if err != nil {
		return err
	}
	dev, queue := e.dev.device, e.dev.queue

	params := packParams(uint32(width), uint32(height), 0, 0)
	bufs, err := e.createIOBuffers("convert", uint64(len(params)), size, size)
	if err != nil {
		return err
	}
	defer bufs.destroy(dev)

	queue.WriteBuffer(bufs.params, 0, params)
	queue.WriteBuffer(bufs.src, 0, src)

	bg, err := dev.CreateBindGroup(&hal.BindGroupDescriptor{
		Label: "convert_bind", Layout: p.bindLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{Buffer: bufs.params.NativeHandle(), Offset: 0, Size: uint64(len(params))}},
			{Binding: 1, Resource: gputypes.BufferBinding{Buffer: bufs.src.NativeHandle(), Offset: 0, Size: size}},
			{Binding: 2, Resource: gputypes.BufferBinding{Buffer: bufs.dst.NativeHandle(), Offset: 0, Size: size}},
		},
	})
	if err != nil {
		return fmt.Errorf("create bind group: %w", err)
	}
	defer dev.DestroyBindGroup(bg)

	if err := e.dispatch(p, bg, uint32(width), uint32(height), bufs.dst, bufs.staging, size, "convert"); err != nil {
		return err
	}
	return queue.ReadBuffer(bufs.staging, 0, dst)
}

// Scale resamples src (srcW x srcH) into dst (dstW x dstH) on the GPU.
// Only ScaleNearest and ScaleBilinear run on the GPU; wider kernels
// return ErrUnsupportedFilter and stay on the CPU.
func (e *Engine) Scale(dst []byte, dstW, dstH int, src []byte, srcW, srcH int, filter ScaleFilter) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if filter != ScaleNearest && filter != ScaleBilinear {
		return fmt.Errorf("filter %d: %w", filter, ErrUnsupportedFilter)
	}
	if err := e.checkDims(srcW, srcH); err != nil {
		return err
	}
	if err := e.checkDims(dstW, dstH); err != nil {
		return err
	}
	srcSize := uint64(srcW) * uint64(srcH) * 4
	dstSize := uint64(dstW) * uint64(dstH) * 4
	if uint64(len(src)) != srcSize {
		return fmt.Errorf("got %d src bytes, need %d: %w", len(src), srcSize, ErrBufferSize)
	}
	if uint64(len(dst)) != dstSize {
		return fmt.Errorf("got %d dst bytes, need %d: %w", len(dst), dstSize, ErrBufferSize)
	}

	p, err := e.getPipeline("pixel_scale", scaleShaderWGSL, twoBufferLayout())
	if err != nil {
		return err
	}
	dev, queue := e.dev.device, e.dev.queue

	params := make([]byte, 32)
	binary.LittleEndian.PutUint32(params[0:], uint32(srcW))
	binary.LittleEndian.PutUint32(params[4:], uint32(srcH))
	binary.LittleEndian.PutUint32(params[8:], uint32(dstW))
	binary.LittleEndian.PutUint32(params[12:], uint32(dstH))
	binary.LittleEndian.PutUint32(params[16:], uint32(filter))

	bufs, err := e.createIOBuffers("scale", uint64(len(params)), srcSize, dstSize)
	if err != nil {
		return err
	}
	defer bufs.destroy(dev)

	queue.WriteBuffer(bufs.params, 0, params)
	queue.WriteBuffer(bufs.src, 0, src)

	bg, err := dev.CreateBindGroup(&hal.BindGroupDescriptor{
		Label: "scale_bind", Layout: p.bindLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{Buffer: bufs.params.NativeHandle(), Offset: 0, Size: uint64(len(params))}},
			{Binding: 1, Resource: gputypes.BufferBinding{Buffer: bufs.src.NativeHandle(), Offset: 0, Size: srcSize}},
			{Binding: 2, Resource: gputypes.BufferBinding{Buffer: bufs.dst.NativeHandle(), Offset: 0, Size: dstSize}},
		},
	})
	if err != nil {
		return fmt.Errorf("create bind group: %w", err)
	}
	defer dev.DestroyBindGroup(bg)

	if err := e.dispatch(p, bg, uint32(dstW), uint32(dstH), bufs.dst, bufs.staging, dstSize, "scale"); err != nil {
		return err
	}
	return queue.ReadBuffer(bufs.staging, 0, dst)
}

// Close destroys the compiled pipelines. The device stays with its owner.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.dev != nil && e.dev.device != nil {
		for _, p := range e.pipelines {
			e.destroyPipeline(p)
		}
	}
	e.pipelines = make(map[string]*pipeline)
}

func (e *Engine) checkDims(width, height int) error {
	if e.dev == nil || e.dev.device == nil {
		return ErrNoDevice
	}
	if width <= 0 || height <= 0 || width > maxTextureSize || height > maxTextureSize {
		return fmt.Errorf("%dx%d: %w", width, height, ErrInvalidDimensions)
	}
	return nil
}

// twoBufferLayout is the bind group layout shared by the kernels reading
// one buffer and writing another: uniform params, read-only src, dst.
func twoBufferLayout() []gputypes.BindGroupLayoutEntry {
	return []gputypes.BindGroupLayoutEntry{
		{Binding: 0, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform}},
		{Binding: 1, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeReadOnlyStorage}},
		{Binding: 2, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeStorage}},
	}
}

func packParams(a, b, c, d uint32) []byte {
	params := make([]byte, 16)
	binary.LittleEndian.PutUint32(params[0:], a)
	binary.LittleEndian.PutUint32(params[4:], b)
	binary.LittleEndian.PutUint32(params[8:], c)
	binary.LittleEndian.PutUint32(params[12:], d)
	return params
}

// ioBuffers are the per-dispatch buffers for src/dst kernels.
type ioBuffers struct {
	params  hal.Buffer
	src     hal.Buffer
	dst     hal.Buffer
	staging hal.Buffer
}

func (b *ioBuffers) destroy(dev hal.Device) {
	for _, buf := range []hal.Buffer{b.params, b.src, b.dst, b.staging} {
		if buf != nil {
			dev.DestroyBuffer(buf)
		}
	}
}

func (e *Engine) createIOBuffers(label string, paramSize, srcSize, dstSize uint64) (*ioBuffers, error) {
	dev := e.dev.device
	bufs := &ioBuffers{}
	var err error

	bufs.params, err = dev.CreateBuffer(&hal.BufferDescriptor{
		Label: label + "_params", Size: paramSize,
		Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("create params buffer: %w", err)
	}
	bufs.src, err = dev.CreateBuffer(&hal.BufferDescriptor{
		Label: label + "_src", Size: srcSize,
		Usage: gputypes.BufferUsageStorage | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		bufs.destroy(dev)
		return nil, fmt.Errorf("create src buffer: %w", err)
	}
	bufs.dst, err = dev.CreateBuffer(&hal.BufferDescriptor{
		Label: label + "_dst", Size: dstSize,
		Usage: gputypes.BufferUsageStorage | gputypes.BufferUsageCopySrc | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		bufs.destroy(dev)
		return nil, fmt.Errorf("create dst buffer: %w", err)
	}
	bufs.staging, err = dev.CreateBuffer(&hal.BufferDescriptor{
		Label: label + "_staging", Size: dstSize,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		bufs.destroy(dev)
		return nil, fmt.Errorf("create staging buffer: %w", err)
	}
	return bufs, nil
}

// getPipeline returns the cached pipeline for a kernel, building it on
// first use. Caller holds e.mu.
func (e *Engine) getPipeline(name, source string, entries []gputypes.BindGroupLayoutEntry) (*pipeline, error) {
	if p, ok := e.pipelines[name]; ok {
		return p, nil
	}
	dev := e.dev.device

	shader, err := createShaderModule(dev, name, source)
	if err != nil {
		return nil, fmt.Errorf("compile %s shader: %w", name, err)
	}
	p := &pipeline{shader: shader}

	p.bindLayout, err = dev.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label:   name + "_bind_layout",
		Entries: entries,
	})
	if err != nil {
		e.destroyPipeline(p)
		return nil, fmt.Errorf("create %s bind group layout: %w", name, err)
	}

	p.pipeLayout, err = dev.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label: name + "_pipe_layout", BindGroupLayouts: []hal.BindGroupLayout{p.bindLayout},
	})
	if err != nil {
		e.destroyPipeline(p)
		return nil, fmt.Errorf("create %s pipeline layout: %w", name, err)
	}

	p.compute, err = dev.CreateComputePipeline(&hal.ComputePipelineDescriptor{
		Label: name + "_pipeline", Layout: p.pipeLayout,
		Compute: hal.ComputeState{Module: p.shader, EntryPoint: "main"},
	})
	if err != nil {
		e.destroyPipeline(p)
		return nil, fmt.Errorf("create %s compute pipeline: %w", name, err)
	}

	e.pipelines[name] = p
	slogger().Debug("compute pipeline created", "kernel", name)
	return p, nil
}

func (e *Engine) destroyPipeline(p *pipeline) {
	dev := e.dev.device
	if p.compute != nil {
		dev.DestroyComputePipeline(p.compute)
	}
	if p.pipeLayout != nil {
		dev.DestroyPipelineLayout(p.pipeLayout)
	}
	if p.bindLayout != nil {
		dev.DestroyBindGroupLayout(p.bindLayout)
	}
	if p.shader != nil {
		dev.DestroyShaderModule(p.shader)
	}
}

// dispatch encodes one compute pass over a width x height pixel grid,
// copies result into staging and blocks until the fence signals.
func (e *Engine) dispatch(p *pipeline, bg hal.BindGroup, width, height uint32, result, staging hal.Buffer, size uint64, label string) error {
	dev, queue := e.dev.device, e.dev.queue

	encoder, err := dev.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: label + "_encoder"})
	if err != nil {
		return fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding(label); err != nil {
		return fmt.Errorf("begin encoding: %w", err)
	}
	pass := encoder.BeginComputePass(&hal.ComputePassDescriptor{Label: label + "_pass"})
	pass.SetPipeline(p.compute)
	pass.SetBindGroup(0, bg, nil)
	pass.Dispatch((width+7)/8, (height+7)/8, 1)
	pass.End()
	encoder.CopyBufferToBuffer(result, staging, []hal.BufferCopy{
		{SrcOffset: 0, DstOffset: 0, Size: size},
	})
	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("end encoding: %w", err)
	}
	defer dev.FreeCommandBuffer(cmdBuf)

	fence, err := dev.CreateFence()
	if err != nil {
		return fmt.Errorf("create fence: %w", err)
	}
	defer dev.DestroyFence(fence)
	if err := queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		return fmt.Errorf("submit: %w", err)
	}
	fenceOK, err := dev.Wait(fence, 1, fenceTimeout)
	if err != nil || !fenceOK {
		return fmt.Errorf("wait for GPU: ok=%v err=%w", fenceOK, err)
	}
	return nil
}
