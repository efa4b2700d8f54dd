package gifbolt

import (
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/gogpu/gifbolt/render"
)

// EnvConfigPath names the environment variable pointing at a TOML
// configuration file, read by ConfigFromEnv.
const EnvConfigPath = "GIFBOLT_CONFIG"

// Config mirrors the decoder options in a form hosts can persist.
// Zero values mean "keep the default", so a file only has to name the
// settings it changes:
//
//	max_cached_frames = 16
//	min_frame_delay_ms = 20
//	prefetch_window = 2
//	disable_gpu = true
//	backend = "dummy"
type Config struct {
	MaxCachedFrames int    `toml:"max_cached_frames"`
	MinFrameDelayMs int    `toml:"min_frame_delay_ms"`
	PrefetchWindow  int    `toml:"prefetch_window"`
	DisableGPU      bool   `toml:"disable_gpu"`
	Backend         string `toml:"backend"`
}

// LoadConfig reads and parses a TOML configuration file.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// ConfigFromEnv loads the file named by the GIFBOLT_CONFIG environment
// variable. An unset or empty variable yields the zero Config, which
// applied through WithConfig changes nothing.
func ConfigFromEnv() (Config, error) {
	path := os.Getenv(EnvConfigPath)
	if path == "" {
		return Config{}, nil
	}
	return LoadConfig(path)
}

// Marshal renders the config as TOML.
func (c Config) Marshal() ([]byte, error) {
	data, err := toml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return data, nil
}

// BackendKind maps the config's backend name to a registry kind.
// Names are matched case-insensitively; empty or unknown names report
// false.
func (c Config) BackendKind() (render.Backend, bool) {
	switch strings.ToLower(strings.TrimSpace(c.Backend)) {
	case "dummy":
		return render.BackendDummy, true
	case "d3d11":
		return render.BackendD3D11, true
	case "d3d9ex":
		return render.BackendD3D9Ex, true
	case "metal":
		return render.BackendMetal, true
	default:
		return render.BackendDummy, false
	}
}
