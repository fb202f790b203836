package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"fsguard/internal/logging"

	"github.com/adrg/xdg"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

const APP_NAME = "fsguard" // application name used for config and data directories

// ENV_PREFIX prefixes every environment override, e.g. FSGUARD_ROOT.
const ENV_PREFIX = "FSGUARD"

// Config holds user configuration for fsguard.
type Config struct {
	// Root is the directory every operation is confined to.
	Root string `yaml:"root" envconfig:"ROOT"`
	// MaxPathLength overrides the platform path length limit when > 0.
	MaxPathLength int    `yaml:"max_path_length,omitempty" envconfig:"MAX_PATH_LENGTH"`
	Version       string `yaml:"version"`
}

// ConfigPath returns the standard config file path for the current platform
func ConfigPath() string {
	return filepath.Join(xdg.ConfigHome, APP_NAME, "config.yaml")
}

// DefaultRoot returns the default guarded root in the user's data directory.
func DefaultRoot() string {
	return filepath.Join(xdg.DataHome, APP_NAME)
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Root:    DefaultRoot(),
		Version: "1.0",
	}
}

// FindConfigFile returns the path to the config file, and whether it exists.
func FindConfigFile() (string, bool) {
	path := ConfigPath()
	if _, err := os.Stat(path); err == nil {
		logging.Debug("Config found", "path", path)
		return path, true
	}
	return path, false
}

// Load reads the standard config file when present, falls back to defaults
// otherwise, then applies FSGUARD_* environment overrides.
func Load() (*Config, error) {
	path, exists := FindConfigFile()
	if !exists {
		logging.Debug("No config file, using defaults", "path", path)
		cfg := DefaultConfig()
		return finalize(&cfg)
	}
	return LoadFrom(path)
}

// LoadFrom loads config from a specific path and applies environment
// overrides.
func LoadFrom(path string) (*Config, error) {
	logging.Debug("Reading config file", "path", path)
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	cfg := DefaultConfig()
	dec := yaml.NewDecoder(f)
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return finalize(&cfg)
}

func finalize(cfg *Config) (*Config, error) {
	if err := envconfig.Process(ENV_PREFIX, cfg); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	cfg.Root = ExpandPath(strings.TrimSpace(cfg.Root))
	if cfg.Root == "" {
		return nil, fmt.Errorf("root directory cannot be empty")
	}
	if cfg.MaxPathLength < 0 {
		return nil, fmt.Errorf("max_path_length cannot be negative: %d", cfg.MaxPathLength)
	}

	return cfg, nil
}

// Save writes the config to the standard location
func (c *Config) Save() error {
	return c.SaveTo(ConfigPath())
}

// SaveTo writes the config to a specific path
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	enc := yaml.NewEncoder(f)
	defer enc.Close()

	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	logging.Info("Configuration saved", "path", path, "root", c.Root)
	return nil
}

// ExpandPath expands a leading "~/" to the user's home directory.
func ExpandPath(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path // Return original path if home directory unavailable
	}

	return filepath.Join(home, path[2:])
}
