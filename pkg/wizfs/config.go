package wizfs

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/wizkit/wizfs/pkg/wizfs/identity"
)

// ConfigFile is the per-workspace configuration file name.
const ConfigFile = ".wizfs.yaml"

// Config is the workspace configuration, loaded from .wizfs.yaml over the
// defaults. Flags may override loaded values.
type Config struct {
	// Modes is the ordered list of modes offered by the creation prompt.
	// Unrecognized entries are filtered; an empty result falls back to all
	// four modes.
	Modes []string `yaml:"modes"`

	Listen          string `yaml:"listen"`
	LogLevel        string `yaml:"log_level"`
	WatchDebounceMs int    `yaml:"watch_debounce_ms"`
	WriteGraceMs    int    `yaml:"write_grace_ms"`
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		Modes:           append([]string(nil), identity.AllModes...),
		Listen:          "127.0.0.1:8787",
		LogLevel:        "warn",
		WatchDebounceMs: 100,
		WriteGraceMs:    150,
	}
}

// LoadConfig reads root/.wizfs.yaml over the defaults. A missing file is
// not an error; a malformed one is.
func LoadConfig(root string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(filepath.Join(root, ConfigFile))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// CreationModes returns the configured mode list with invalid entries
// filtered out, falling back to all four modes when nothing valid remains.
func (c *Config) CreationModes() []string {
	var modes []string
	for _, m := range c.Modes {
		if identity.IsCreationMode(m) {
			modes = append(modes, m)
		}
	}
	if len(modes) == 0 {
		return append([]string(nil), identity.AllModes...)
	}
	return modes
}

// WatchDebounce returns the watcher debounce as a duration.
func (c *Config) WatchDebounce() time.Duration {
	return time.Duration(c.WatchDebounceMs) * time.Millisecond
}

// WriteGrace returns the self-write suppression window as a duration.
func (c *Config) WriteGrace() time.Duration {
	return time.Duration(c.WriteGraceMs) * time.Millisecond
}
