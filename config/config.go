// Package config loads the optional aifix configuration file.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/Momin010/MominAI-Beta-1/paths"
)

// Config is the on-disk configuration. Every field has a usable
// default: the tool runs with no configuration file at all.
type Config struct {
	Journal       JournalConfig             `toml:"journal"`
	Notifications map[string]map[string]any `toml:"notifications"`
}

// JournalConfig configures the run journal.
type JournalConfig struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// Default returns the configuration used when no file exists. The
// journal lives under the aifix config directory; when no config
// directory can be resolved the journal path is empty and journaling
// is skipped.
func Default() Config {
	cfg := Config{
		Journal: JournalConfig{Enabled: true},
	}
	if dir := paths.ConfigDir(); dir != "" {
		cfg.Journal.Path = filepath.Join(dir, "journal.db")
	}
	return cfg
}

// Load reads the configuration file at path, or the default location
// under the aifix config directory when path is empty. A missing file
// at the default location yields Default(); a missing file at an
// explicitly given path is an error.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		dir := paths.ConfigDir()
		if dir == "" {
			return cfg, nil
		}
		path = filepath.Join(dir, "config.toml")
	}

	data, err := os.ReadFile(paths.ExpandPath(path))
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.Journal.Path = paths.ExpandPath(cfg.Journal.Path)
	return cfg, nil
}
