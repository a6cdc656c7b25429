package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/fudanglp/docker-layers/internal/errors"
	"github.com/fudanglp/docker-layers/internal/logging"
	"github.com/fudanglp/docker-layers/internal/probe"
	"github.com/fudanglp/docker-layers/internal/system"
)

const (
	// AppName names the directory under the user config dir.
	AppName = "peel"

	// FileName is the preferences file inside that directory.
	FileName = "config.toml"

	DefaultElevateWith = "sudo"
)

// FileConfig holds user preferences from config.toml. Command-line flags
// override every field.
type FileConfig struct {
	Runtime     string `toml:"runtime"`
	UseOCI      bool   `toml:"use_oci"`
	JSON        bool   `toml:"json"`
	ElevateWith string `toml:"elevate_with"`
}

// DefaultFileConfig returns the preferences used when no file exists.
func DefaultFileConfig() *FileConfig {
	return &FileConfig{ElevateWith: DefaultElevateWith}
}

// DefaultPath returns $XDG_CONFIG_HOME/peel/config.toml, falling back to
// ~/.config. It reports false when neither variable is set.
func DefaultPath(env system.Environment) (string, bool) {
	if dir, ok := env.LookupEnv("XDG_CONFIG_HOME"); ok && dir != "" {
		return filepath.Join(dir, AppName, FileName), true
	}
	if home, ok := env.LookupEnv("HOME"); ok && home != "" {
		return filepath.Join(home, ".config", AppName, FileName), true
	}
	return "", false
}

// Load reads the preferences file at path. A missing file yields the
// defaults; an unreadable or malformed one is a configuration error.
func Load(path string) (*FileConfig, error) {
	cfg := DefaultFileConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			logging.Debug("no config file", "path", path)
			return cfg, nil
		}
		return nil, errors.ConfigError(fmt.Sprintf("failed to read config %s", path), err)
	}

	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return nil, errors.ConfigError(fmt.Sprintf("failed to parse config %s", path), err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		logging.Warn("ignoring unknown config keys", "path", path, "keys", strings.Join(keys, ", "))
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.ConfigError(fmt.Sprintf("invalid config %s", path), err)
	}

	logging.Debug("loaded config file", "path", path)
	return cfg, nil
}

// Validate checks field values and fills in defaults.
func (c *FileConfig) Validate() error {
	if c.Runtime != "" {
		if _, err := probe.ParseRuntimeKind(c.Runtime); err != nil {
			return err
		}
	}
	c.ElevateWith = strings.TrimSpace(c.ElevateWith)
	if c.ElevateWith == "" {
		c.ElevateWith = DefaultElevateWith
	}
	return nil
}
