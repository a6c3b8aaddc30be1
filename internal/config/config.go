// Package config loads the optional mde configuration file. The file only
// supplies defaults; command-line flags always win.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

// FileName is the config file looked up in the user's home directory.
const FileName = ".mde.yaml"

// Config holds scan defaults.
type Config struct {
	// Workers sizes the hashing worker pool.
	Workers int `yaml:"workers"`
	// Media is the default media filter: all, images or videos.
	Media string `yaml:"media"`
	// Recursive controls whether scans descend into subdirectories.
	Recursive *bool `yaml:"recursive"`
	// IncludeHidden admits dotfiles into scans.
	IncludeHidden bool `yaml:"include_hidden"`
}

// Default returns the built-in configuration.
func Default() *Config {
	recursive := true
	return &Config{
		Workers:   runtime.NumCPU(),
		Media:     "all",
		Recursive: &recursive,
	}
}

// Load reads the config file at path, or the home-directory default when path
// is empty. The optional home file may be absent; a path the user asked for
// explicitly must exist. A malformed file is always an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		home, err := os.UserHomeDir()
		if err != nil {
			return cfg, nil
		}
		path = filepath.Join(home, FileName)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			if explicit {
				return nil, fmt.Errorf("config file not found: %s", path)
			}
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	if cfg.Media == "" {
		cfg.Media = "all"
	}
	if cfg.Recursive == nil {
		recursive := true
		cfg.Recursive = &recursive
	}
	return cfg, nil
}
