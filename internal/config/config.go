// Package config handles loading and managing csvpeek configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// ViewerConfig holds data-view tunables. Page size is fixed for the
// lifetime of a session; it is read once at startup and never
// renegotiated.
type ViewerConfig struct {
	PageSize   int `toml:"page_size"`   // rows fetched per page
	CachePages int `toml:"cache_pages"` // pages kept in the LRU cache
}

// Config represents the csvpeek configuration.
type Config struct {
	Viewer ViewerConfig `toml:"viewer"`

	// Computed paths (not from config file)
	HomeDir string `toml:"-"`
}

// DefaultHome returns the default csvpeek home directory.
// Respects the CSVPEEK_HOME environment variable.
func DefaultHome() string {
	if h := os.Getenv("CSVPEEK_HOME"); h != "" {
		return h
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".csvpeek"
	}
	return filepath.Join(home, ".csvpeek")
}

// Load reads the configuration from the specified file. If path is empty,
// the default location (~/.csvpeek/config.toml) is used. The file is
// optional: defaults apply when it does not exist.
func Load(path string) (*Config, error) {
	homeDir := DefaultHome()

	if path == "" {
		path = filepath.Join(homeDir, "config.toml")
	}

	cfg := &Config{
		HomeDir: homeDir,
		Viewer: ViewerConfig{
			PageSize:   100,
			CachePages: 8,
		},
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if cfg.Viewer.PageSize <= 0 {
		return nil, fmt.Errorf("config %s: page_size must be positive, got %d", path, cfg.Viewer.PageSize)
	}
	if cfg.Viewer.CachePages <= 0 {
		return nil, fmt.Errorf("config %s: cache_pages must be positive, got %d", path, cfg.Viewer.CachePages)
	}

	return cfg, nil
}
