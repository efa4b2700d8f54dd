//go:build !nogpu

// Package gpu runs the pixel pipeline on a GPU through wgpu/hal compute
// shaders.
//
// The package has two layers. Device wraps acquisition and teardown of a
// hal device, either a private one opened through Vulkan or a shared one
// handed in by the host. Engine compiles the pixel kernels (premultiply,
// convert, scale) lazily and dispatches them over storage buffers, blocking
// on a fence until results are read back.
//
// Texture is a storage-buffer backed implementation of render.Texture used
// by the GPU device contexts.
package gpu
