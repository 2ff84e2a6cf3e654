package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// EnvConfigPath overrides the config file location.
const EnvConfigPath = "MIKUMOD_CONFIG"

type Config struct {
	AppDir        string `yaml:"app_dir"`
	ModsDir       string `yaml:"mods_dir,omitempty"`
	LogLevel      string `yaml:"log_level"`
	DedupInstalls bool   `yaml:"dedup_installs"`
	Executable    struct {
		Names     []string `yaml:"names,omitempty"`
		Extension string   `yaml:"extension,omitempty"`
	} `yaml:"executable"`
	Discovery struct {
		ExtraPaths []string `yaml:"extra_paths,omitempty"`
	} `yaml:"discovery"`
}

func DefaultConfig() *Config {
	return &Config{
		AppDir:   filepath.Join(xdg.DataHome, "mikumod"),
		LogLevel: "info",
	}
}

// ConfigPath returns $MIKUMOD_CONFIG, or config.yaml under the XDG config home.
func ConfigPath() string {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p
	}
	return filepath.Join(xdg.ConfigHome, "mikumod", "config.yaml")
}

// Load reads the config at path (ConfigPath when empty). A missing file yields
// the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		path = ConfigPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil // Use defaults
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return cfg, nil
}

// Save writes the config to path (ConfigPath when empty).
func (c *Config) Save(path string) error {
	if path == "" {
		path = ConfigPath()
	}

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Validate checks values that would otherwise fail later and obscurely.
func (c *Config) Validate() error {
	if c.LogLevel != "" {
		if _, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel)); err != nil {
			return fmt.Errorf("log_level %q: %w", c.LogLevel, err)
		}
	}
	for _, n := range c.Executable.Names {
		if strings.ContainsAny(n, `/\`) {
			return fmt.Errorf("executable name %q must not contain a path separator", n)
		}
	}
	return nil
}

// ResolvedAppDir returns the expanded app dir.
func (c *Config) ResolvedAppDir() string {
	return ExpandPath(c.AppDir)
}

// ResolvedModsDir returns the expanded mods dir, defaulting to <app_dir>/mods.
func (c *Config) ResolvedModsDir() string {
	if c.ModsDir == "" {
		return filepath.Join(c.ResolvedAppDir(), "mods")
	}
	return ExpandPath(c.ModsDir)
}

// ResolvedExtraPaths returns the discovery roots with ~ expanded.
func (c *Config) ResolvedExtraPaths() []string {
	paths := make([]string, 0, len(c.Discovery.ExtraPaths))
	for _, p := range c.Discovery.ExtraPaths {
		paths = append(paths, ExpandPath(p))
	}
	return paths
}

// ExpandPath expands ~ to home directory
func ExpandPath(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") || strings.HasPrefix(path, `~\`) {
		home, err := os.UserHomeDir()
		if err != nil {
			return path // Return unexpanded if home unavailable
		}
		return filepath.Join(home, path[1:])
	}
	return path
}
