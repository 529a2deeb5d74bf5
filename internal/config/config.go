package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"serena/internal/logging"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

const APP_NAME = "serena" // application name used for config directory

// Config holds the user-level configuration for the serena server.
//
// The only durable state it carries is the registry of named projects:
// a symbolic name the user chose once, mapped to the project's root path.
// Project-level configuration lives with the project itself (see
// internal/project), never here.
type Config struct {
	// Projects maps registered project names to their root paths.
	Projects map[string]string `yaml:"projects"`
	Version  string            `yaml:"version"`   // Track config version
	InitTime int64             `yaml:"init_time"` // Unix timestamp of first setup
}

// ConfigPath returns the standard config file path for the current platform
func ConfigPath() (string, error) {
	configDir := filepath.Join(xdg.ConfigHome, APP_NAME)
	configPath := filepath.Join(configDir, "serena_config.yml")

	logging.Debug("Determined config path", "path", configPath)
	return configPath, nil
}

// Load loads the config from the standard location.
// If no config exists, it returns an error indicating first run is needed.
func Load() (*Config, error) {
	configPath, exists := FindConfigFile()
	logging.Debug("Loading config from", "path", configPath)
	if !exists {
		return nil, fmt.Errorf("no configuration found, first-time setup required")
	}

	return LoadFrom(configPath)
}

// LoadOrDefault loads the config from the standard location, falling back to
// the default (empty project registry) when no config file exists yet. The
// server must be able to start without any prior setup.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		logging.Debug("No user config found, starting with empty project registry")
		def := DefaultConfig()
		return &def
	}
	return cfg
}

// LoadFrom loads config from a specific path
func LoadFrom(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	var cfg Config
	dec := yaml.NewDecoder(f)
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// A registry is always present, even when the file omits it.
	if cfg.Projects == nil {
		cfg.Projects = map[string]string{}
	}

	return &cfg, nil
}

// FindConfigFile returns the path to an existing config file, and whether it exists.
func FindConfigFile() (string, bool) {
	primary, err := ConfigPath()
	if err != nil {
		logging.Error("Failed to get config path", "error", err)
		return "", false
	}

	if _, err := os.Stat(primary); err == nil {
		logging.Debug("Config found at primary path", "path", primary)
		return primary, true
	}

	// Return primary path for new config
	return primary, false
}

// IsFirstRun checks if this is the first time the application is run
func IsFirstRun() bool {
	_, exists := FindConfigFile()
	return !exists
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Projects: map[string]string{},
		Version:  "1.0",
		InitTime: 0, // Will be set during first save
	}
}

// LookupProject resolves a registered project name to its configured root
// path. The second return value reports whether the name is registered.
func (c *Config) LookupProject(name string) (string, bool) {
	if c == nil || c.Projects == nil {
		return "", false
	}
	path, ok := c.Projects[name]
	return path, ok
}

// RegisterProject records a name -> root path mapping in the registry.
// The caller is responsible for persisting the change via Save.
func (c *Config) RegisterProject(name, rootPath string) {
	if c.Projects == nil {
		c.Projects = map[string]string{}
	}
	c.Projects[name] = rootPath
}

// Save writes the config to the standard location
func (c *Config) Save() error {
	configPath, _ := FindConfigFile()
	return c.SaveTo(configPath)
}

// SaveTo writes the config to a specific path
func (c *Config) SaveTo(path string) error {
	// Set init time if this is the first save
	if c.InitTime == 0 {
		c.InitTime = time.Now().Unix()
	}

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Create file with restrictive permissions (600) for security
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

	return nil
}
