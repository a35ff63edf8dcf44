// Package config loads engine configuration. Persistent settings live
// in a discovered TOML file; ad-hoc extraction options arrive as JSON
// validated against the embedded schema.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/extrakt/internal/core/domain"
	"github.com/custodia-labs/extrakt/internal/plugins/bridge"
)

// FileName is the discovered configuration file name.
const FileName = "extrakt.toml"

// File is the on-disk configuration.
type File struct {
	// Extraction holds the default extraction options applied when a
	// request carries none.
	Extraction domain.ExtractionConfig `toml:"extraction"`

	// CacheDir overrides where the result cache database lives.
	CacheDir string `toml:"cache_dir"`

	// Plugins lists command plugins to register at startup.
	Plugins []bridge.Manifest `toml:"plugins"`
}

// Default returns the configuration used when no file is found.
func Default() *File {
	return &File{Extraction: *domain.DefaultConfig()}
}

// Discover finds the configuration file: an explicit path wins, then
// extrakt.toml in the working directory, then ~/.extrakt/extrakt.toml.
// No file at all is not an error; the defaults apply.
func Discover(explicit string) (*File, error) {
	if explicit != "" {
		return Load(explicit)
	}

	if _, err := os.Stat(FileName); err == nil {
		return Load(FileName)
	}

	home, err := os.UserHomeDir()
	if err == nil {
		candidate := filepath.Join(home, ".extrakt", FileName)
		if _, err := os.Stat(candidate); err == nil {
			return Load(candidate)
		}
	}

	return Default(), nil
}

// Load reads and parses one TOML file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}
