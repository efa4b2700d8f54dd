package gifbolt

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gogpu/gifbolt/render"
)

func writeConfigFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "gifbolt.toml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfigFile(t, `
max_cached_frames = 16
min_frame_delay_ms = 20
prefetch_window = 2
disable_gpu = true
backend = "metal"
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.MaxCachedFrames != 16 || cfg.MinFrameDelayMs != 20 || cfg.PrefetchWindow != 2 {
		t.Errorf("unexpected numeric fields: %+v", cfg)
	}
	if !cfg.DisableGPU {
		t.Error("expected disable_gpu true")
	}
	if kind, ok := cfg.BackendKind(); !ok || kind != render.BackendMetal {
		t.Errorf("expected metal backend, got %v ok=%v", kind, ok)
	}
}

func TestLoadConfigPartial(t *testing.T) {
	path := writeConfigFile(t, `max_cached_frames = 8`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.MaxCachedFrames != 8 {
		t.Errorf("expected 8, got %d", cfg.MaxCachedFrames)
	}
	if cfg.MinFrameDelayMs != 0 || cfg.PrefetchWindow != 0 || cfg.DisableGPU {
		t.Errorf("expected unnamed fields to stay zero, got %+v", cfg)
	}
	if _, ok := cfg.BackendKind(); ok {
		t.Error("expected no backend kind for empty name")
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "absent.toml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadConfigMalformed(t *testing.T) {
	path := writeConfigFile(t, `max_cached_frames = "not a number"`)
	if _, err := LoadConfig(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestConfigRoundTrip(t *testing.T) {
	want := Config{
		MaxCachedFrames: 32,
		MinFrameDelayMs: 15,
		PrefetchWindow:  3,
		DisableGPU:      true,
		Backend:         "d3d11",
	}

	data, err := want.Marshal()
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	path := writeConfigFile(t, string(data))
	got, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if got != want {
		t.Errorf("round trip mismatch: want %+v, got %+v", want, got)
	}
}

func TestConfigFromEnv(t *testing.T) {
	path := writeConfigFile(t, `prefetch_window = 9`)
	t.Setenv(EnvConfigPath, path)

	cfg, err := ConfigFromEnv()
	if err != nil {
		t.Fatalf("ConfigFromEnv failed: %v", err)
	}
	if cfg.PrefetchWindow != 9 {
		t.Errorf("expected prefetch window 9, got %d", cfg.PrefetchWindow)
	}
}

func TestConfigFromEnvUnset(t *testing.T) {
	t.Setenv(EnvConfigPath, "")

	cfg, err := ConfigFromEnv()
	if err != nil {
		t.Fatalf("ConfigFromEnv failed: %v", err)
	}
	if cfg != (Config{}) {
		t.Errorf("expected zero config, got %+v", cfg)
	}
}

func TestConfigBackendKindNames(t *testing.T) {
	tests := []struct {
		name string
		want render.Backend
		ok   bool
	}{
		{"dummy", render.BackendDummy, true},
		{"Dummy", render.BackendDummy, true},
		{"d3d11", render.BackendD3D11, true},
		{"D3D9Ex", render.BackendD3D9Ex, true},
		{"METAL", render.BackendMetal, true},
		{" metal ", render.BackendMetal, true},
		{"", render.BackendDummy, false},
		{"vulkan", render.BackendDummy, false},
	}
	for _, tt := range tests {
		cfg := Config{Backend: tt.name}
		kind, ok := cfg.BackendKind()
		if ok != tt.ok || (ok && kind != tt.want) {
			t.Errorf("BackendKind(%q) = %v, %v; want %v, %v", tt.name, kind, ok, tt.want, tt.ok)
		}
	}
}
