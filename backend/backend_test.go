package backend

import (
	"errors"
	"fmt"
	"testing"

	"github.com/gogpu/gifbolt/render"
)

// fakeContext is a minimal DeviceContext for registry tests.
type fakeContext struct {
	kind render.Backend
}

func (c *fakeContext) Backend() render.Backend { return c.kind }
func (c *fakeContext) CreateTexture(width, height uint32, pixels []byte) (render.Texture, error) {
	return nil, errors.New("not implemented")
}
func (c *fakeContext) BeginFrame()                   {}
func (c *fakeContext) EndFrame()                     {}
func (c *fakeContext) Clear(r, g, b, a float32)      {}
func (c *fakeContext) DrawTexture(t render.Texture, x, y, width, height int) error {
	return nil
}
func (c *fakeContext) Flush() error { return nil }
func (c *fakeContext) Close() error { return nil }

func fakeFactory(kind render.Backend) Factory {
	return func(handle render.DeviceHandle) (render.DeviceContext, error) {
		return &fakeContext{kind: kind}, nil
	}
}

func failingFactory(err error) Factory {
	return func(handle render.DeviceHandle) (render.DeviceContext, error) {
		return nil, err
	}
}

// resetRegistry clears all registered factories and restores them after
// the test, so registry tests do not leak into each other.
func resetRegistry(t *testing.T) {
	t.Helper()
	registryMu.Lock()
	saved := factories
	factories = make(map[render.Backend]Factory)
	registryMu.Unlock()
	t.Cleanup(func() {
		registryMu.Lock()
		factories = saved
		registryMu.Unlock()
	})
}

func TestRegister(t *testing.T) {
	resetRegistry(t)

	Register(render.BackendDummy, fakeFactory(render.BackendDummy))

	if !IsRegistered(render.BackendDummy) {
		t.Error("expected dummy backend to be registered")
	}
	if IsRegistered(render.BackendD3D11) {
		t.Error("expected d3d11 backend to not be registered")
	}
}

func TestUnregister(t *testing.T) {
	resetRegistry(t)

	Register(render.BackendDummy, fakeFactory(render.BackendDummy))
	Unregister(render.BackendDummy)

	if IsRegistered(render.BackendDummy) {
		t.Error("expected dummy backend to be unregistered")
	}
}

func TestAvailable(t *testing.T) {
	resetRegistry(t)

	Register(render.BackendMetal, fakeFactory(render.BackendMetal))
	Register(render.BackendDummy, fakeFactory(render.BackendDummy))
	Register(render.BackendD3D11, fakeFactory(render.BackendD3D11))

	kinds := Available()
	want := []render.Backend{render.BackendDummy, render.BackendD3D11, render.BackendMetal}
	if len(kinds) != len(want) {
		t.Fatalf("expected %d kinds, got %d", len(want), len(kinds))
	}
	for i, kind := range kinds {
		if kind != want[i] {
			t.Errorf("kinds[%d] = %s, want %s", i, kind, want[i])
		}
	}
}

func TestNew(t *testing.T) {
	resetRegistry(t)

	Register(render.BackendDummy, fakeFactory(render.BackendDummy))

	ctx, err := New(render.BackendDummy, render.NullDeviceHandle{})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if ctx.Backend() != render.BackendDummy {
		t.Errorf("expected dummy backend, got %s", ctx.Backend())
	}
}

func TestNewUnregistered(t *testing.T) {
	resetRegistry(t)

	_, err := New(render.BackendMetal, render.NullDeviceHandle{})
	if err == nil {
		t.Fatal("expected error for unregistered backend")
	}
	if !errors.Is(err, render.ErrBackendNotAvailable) {
		t.Errorf("expected ErrBackendNotAvailable, got %v", err)
	}
}

func TestNewFactoryError(t *testing.T) {
	resetRegistry(t)

	wantErr := fmt.Errorf("no adapter: %w", render.ErrBackendNotAvailable)
	Register(render.BackendD3D11, failingFactory(wantErr))

	_, err := New(render.BackendD3D11, render.NullDeviceHandle{})
	if !errors.Is(err, render.ErrBackendNotAvailable) {
		t.Errorf("expected ErrBackendNotAvailable, got %v", err)
	}
}

func TestDefaultPriority(t *testing.T) {
	resetRegistry(t)

	Register(render.BackendDummy, fakeFactory(render.BackendDummy))
	Register(render.BackendD3D11, fakeFactory(render.BackendD3D11))

	ctx, err := Default(render.NullDeviceHandle{})
	if err != nil {
		t.Fatalf("Default failed: %v", err)
	}
	if ctx.Backend() != render.BackendD3D11 {
		t.Errorf("expected d3d11 to win priority, got %s", ctx.Backend())
	}
}

func TestDefaultFallsThrough(t *testing.T) {
	resetRegistry(t)

	unavailable := fmt.Errorf("no device: %w", render.ErrBackendNotAvailable)
	Register(render.BackendD3D11, failingFactory(unavailable))
	Register(render.BackendMetal, failingFactory(unavailable))
	Register(render.BackendDummy, fakeFactory(render.BackendDummy))

	ctx, err := Default(render.NullDeviceHandle{})
	if err != nil {
		t.Fatalf("Default failed: %v", err)
	}
	if ctx.Backend() != render.BackendDummy {
		t.Errorf("expected fallback to dummy, got %s", ctx.Backend())
	}
}

func TestDefaultSkipsD3D9Ex(t *testing.T) {
	resetRegistry(t)

	// D3D9Ex is picked up by the fallback sweep when nothing else exists,
	// but never ahead of the priority list.
	Register(render.BackendD3D9Ex, fakeFactory(render.BackendD3D9Ex))
	Register(render.BackendDummy, fakeFactory(render.BackendDummy))

	ctx, err := Default(render.NullDeviceHandle{})
	if err != nil {
		t.Fatalf("Default failed: %v", err)
	}
	if ctx.Backend() != render.BackendDummy {
		t.Errorf("expected dummy ahead of d3d9ex, got %s", ctx.Backend())
	}
}

func TestDefaultNoBackends(t *testing.T) {
	resetRegistry(t)

	_, err := Default(render.NullDeviceHandle{})
	if err == nil {
		t.Fatal("expected error with empty registry")
	}
	if !errors.Is(err, render.ErrBackendNotAvailable) {
		t.Errorf("expected ErrBackendNotAvailable, got %v", err)
	}
}
