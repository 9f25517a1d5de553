package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/muxitdev/muxit/internal/scan"
)

// DefaultDepth is the scan depth used for search paths without an explicit depth.
const DefaultDepth = 1

// DefaultWindowOffset is the window index where session-command windows start.
// The offset keeps them clear of ordinary windows the user opens by hand.
const DefaultWindowOffset = 69

// DefaultHydrateFile is the per-project setup file sourced into new sessions.
const DefaultHydrateFile = ".muxit"

var (
	// ErrNoCommands is returned when a session command is requested but the
	// config defines no command table.
	ErrNoCommands = errors.New("no session_commands configured")

	// ErrBadSlot is returned when the requested slot index is outside the
	// configured command table.
	ErrBadSlot = errors.New("session command index out of range")
)

// SearchPath is one configured search root. Depth 0 inherits DefaultDepth.
type SearchPath struct {
	Root  string `toml:"root"`
	Depth int    `toml:"depth,omitempty"`
}

// Config is the full muxit configuration, loaded once at startup and treated
// as immutable from then on.
type Config struct {
	Search          []SearchPath `toml:"search"`
	DefaultDepth    int          `toml:"default_depth"`
	SessionCommands []string     `toml:"session_commands"`
	WindowOffset    int          `toml:"window_offset"`
	CacheFile       string       `toml:"cache_file"`
	HydrateFile     string       `toml:"hydrate_file"`
	LogFile         string       `toml:"log_file"`
}

// DefaultPath returns the default config file location
// (~/.config/muxit/muxit.toml or the platform equivalent).
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate config directory: %w", err)
	}
	return filepath.Join(dir, "muxit", "muxit.toml"), nil
}

// Load reads the config file at path. A missing file is not an error: it
// yields a default config with no search paths.
func Load(path string) (Config, error) {
	cfg := Config{}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return withDefaults(cfg), nil
		}
		return Config{}, fmt.Errorf("read config file: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config file: %w", err)
	}

	return withDefaults(cfg), nil
}

// withDefaults fills zero-valued fields and expands ~ in paths.
func withDefaults(cfg Config) Config {
	home, _ := os.UserHomeDir()

	if cfg.DefaultDepth <= 0 {
		cfg.DefaultDepth = DefaultDepth
	}
	if cfg.WindowOffset <= 0 {
		cfg.WindowOffset = DefaultWindowOffset
	}
	if cfg.HydrateFile == "" {
		cfg.HydrateFile = DefaultHydrateFile
	}
	if cfg.CacheFile == "" {
		if cacheDir, err := os.UserCacheDir(); err == nil {
			cfg.CacheFile = filepath.Join(cacheDir, "muxit", "panes")
		}
	}
	if cfg.LogFile == "" {
		if cacheDir, err := os.UserCacheDir(); err == nil {
			cfg.LogFile = filepath.Join(cacheDir, "muxit", "muxit.log")
		}
	}

	cfg.CacheFile = expandHome(cfg.CacheFile, home)
	cfg.LogFile = expandHome(cfg.LogFile, home)
	for i := range cfg.Search {
		cfg.Search[i].Root = expandHome(cfg.Search[i].Root, home)
		if cfg.Search[i].Depth <= 0 {
			cfg.Search[i].Depth = cfg.DefaultDepth
		}
	}

	return cfg
}

func expandHome(path, home string) string {
	if home == "" {
		return path
	}
	if path == "~" {
		return home
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(home, path[2:])
	}
	return path
}

// SearchPaths converts the configured search roots into scanner input.
func (c Config) SearchPaths() []scan.SearchPath {
	paths := make([]scan.SearchPath, 0, len(c.Search))
	for _, s := range c.Search {
		paths = append(paths, scan.SearchPath{Root: s.Root, Depth: s.Depth})
	}
	return paths
}

// Command resolves the session command for the given slot index.
func (c Config) Command(slot int) (string, error) {
	if len(c.SessionCommands) == 0 {
		return "", ErrNoCommands
	}
	if slot < 0 || slot >= len(c.SessionCommands) {
		return "", fmt.Errorf("%w: %d (have %d commands)", ErrBadSlot, slot, len(c.SessionCommands))
	}
	return c.SessionCommands[slot], nil
}

// GlobalHydrateFile returns the fallback setup file in the user's home
// directory, named after the configured hydrate file, or "" if the home
// directory cannot be determined.
func (c Config) GlobalHydrateFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	name := c.HydrateFile
	if name == "" {
		name = DefaultHydrateFile
	}
	return filepath.Join(home, name)
}
