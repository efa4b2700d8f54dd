package backend

import (
	"fmt"
	"sort"
	"sync"

	"github.com/gogpu/gifbolt/render"
)

// registry holds registered backend factories keyed by kind.
var (
	registryMu sync.RWMutex
	factories  = make(map[render.Backend]Factory)
)

// Register registers a backend factory for the given kind.
// This is typically called from init() functions in backend packages.
// If a factory for the kind is already registered, it is replaced.
func Register(kind render.Backend, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	factories[kind] = factory
}

// Unregister removes a backend from the registry.
// This is useful for testing.
func Unregister(kind render.Backend) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(factories, kind)
}

// Available returns the registered backend kinds in ascending order.
func Available() []render.Backend {
	registryMu.RLock()
	defer registryMu.RUnlock()

	kinds := make([]render.Backend, 0, len(factories))
	for kind := range factories {
		kinds = append(kinds, kind)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// IsRegistered checks if a factory for the given kind is registered.
func IsRegistered(kind render.Backend) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := factories[kind]
	return ok
}

// New creates a device context of the given kind.
// Returns render.ErrBackendNotAvailable (wrapped) when the kind is not
// registered or its factory reports the backend cannot run here.
func New(kind render.Backend, handle render.DeviceHandle) (render.DeviceContext, error) {
	registryMu.RLock()
	factory, ok := factories[kind]
	registryMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("backend %s not registered: %w", kind, render.ErrBackendNotAvailable)
	}
	return factory(handle)
}

// Default creates the best available device context based on priority,
// falling through kinds whose factories fail. Kinds outside the priority
// list are tried last in ascending order.
func Default(handle render.DeviceHandle) (render.DeviceContext, error) {
	var firstErr error

	tried := make(map[render.Backend]bool, len(defaultPriority))
	for _, kind := range defaultPriority {
		tried[kind] = true
		ctx, err := New(kind, handle)
		if err == nil {
			return ctx, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}

	// Fallback: any remaining registered kind.
	for _, kind := range Available() {
		if tried[kind] {
			continue
		}
		if ctx, err := New(kind, handle); err == nil {
			return ctx, nil
		}
	}

	if firstErr == nil {
		firstErr = render.ErrBackendNotAvailable
	}
	return nil, fmt.Errorf("no backend available: %w", firstErr)
}
