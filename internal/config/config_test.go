package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestConfigSaveLoad(t *testing.T) {
	t.Log("Testing Config Saving and Loading")

	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "serena_config.yml")

	// Create test config
	originalConfig := Config{
		Projects: map[string]string{
			"backend":  "/work/backend",
			"frontend": "/work/frontend",
		},
		Version:  "1.0",
		InitTime: time.Now().Unix(),
	}

	// Save config
	if err := originalConfig.SaveTo(configPath); err != nil {
		t.Fatalf("Failed to save config: %v", err)
	}

	// Verify file exists
	if _, err := os.Stat(configPath); err != nil {
		t.Fatalf("Config file was not created: %v", err)
	}

	// Load config back
	loadedConfig, err := LoadFrom(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if loadedConfig.Version != originalConfig.Version {
		t.Errorf("Expected version %s, got %s", originalConfig.Version, loadedConfig.Version)
	}
	if len(loadedConfig.Projects) != len(originalConfig.Projects) {
		t.Errorf("Expected %d registered projects, got %d", len(originalConfig.Projects), len(loadedConfig.Projects))
	}
	if loadedConfig.Projects["backend"] != "/work/backend" {
		t.Errorf("Expected backend -> /work/backend, got %s", loadedConfig.Projects["backend"])
	}
}

func TestLoadFrom_MissingRegistry(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "serena_config.yml")

	// A config file written without a projects section
	content := "version: \"1.0\"\ninit_time: 0\n"
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := LoadFrom(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Projects == nil {
		t.Error("Expected Projects registry to be initialized, got nil")
	}
	if len(cfg.Projects) != 0 {
		t.Errorf("Expected empty registry, got %d entries", len(cfg.Projects))
	}
}

func TestLoadFrom_InvalidFile(t *testing.T) {
	tempDir := t.TempDir()

	tests := []struct {
		name    string
		content string
	}{
		{name: "malformed yaml", content: "projects: [not: a: map\n"},
		{name: "wrong types", content: "projects: 42\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configPath := filepath.Join(tempDir, tt.name+".yml")
			if err := os.WriteFile(configPath, []byte(tt.content), 0600); err != nil {
				t.Fatalf("Failed to write config file: %v", err)
			}

			if _, err := LoadFrom(configPath); err == nil {
				t.Error("Expected error loading invalid config, got nil")
			}
		})
	}
}

func TestLookupProject(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RegisterProject("backend", "/work/backend")

	tests := []struct {
		name     string
		lookup   string
		wantPath string
		wantOK   bool
	}{
		{name: "registered name", lookup: "backend", wantPath: "/work/backend", wantOK: true},
		{name: "unknown name", lookup: "frontend", wantPath: "", wantOK: false},
		{name: "empty name", lookup: "", wantPath: "", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path, ok := cfg.LookupProject(tt.lookup)
			if ok != tt.wantOK {
				t.Errorf("LookupProject(%q) ok = %v, want %v", tt.lookup, ok, tt.wantOK)
			}
			if path != tt.wantPath {
				t.Errorf("LookupProject(%q) path = %q, want %q", tt.lookup, path, tt.wantPath)
			}
		})
	}
}

func TestLookupProject_NilReceiver(t *testing.T) {
	var cfg *Config
	if _, ok := cfg.LookupProject("anything"); ok {
		t.Error("Expected lookup on nil config to miss")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Projects == nil {
		t.Error("Expected default config to have a non-nil project registry")
	}
	if cfg.Version == "" {
		t.Error("Expected default config to have a version")
	}
}

func TestSaveTo_SetsInitTime(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "serena_config.yml")

	cfg := DefaultConfig()
	if cfg.InitTime != 0 {
		t.Fatalf("Expected zero InitTime before first save, got %d", cfg.InitTime)
	}

	if err := cfg.SaveTo(configPath); err != nil {
		t.Fatalf("Failed to save config: %v", err)
	}

	if cfg.InitTime == 0 {
		t.Error("Expected InitTime to be set on first save")
	}
}
