// Package project implements project activation for the serena server.
//
// A project is a directory on disk that the agent operates on. Its canonical
// identity is the symlink-resolved absolute path of its root. Every project
// carries a reserved configuration subdirectory (".serena") holding the
// persisted project configuration and the agent's markdown memories.
//
// Activation is the only way projects come into existence here: a path that
// does not exist yet is created on first activation, and an existing
// directory without the reserved subdirectory gets bootstrapped in place.
// Projects are never deleted by this package.
package project

import (
	"fmt"
	"os"
	"path/filepath"

	"serena/pkg/pathutil"

	"gopkg.in/yaml.v3"
)

const (
	// ConfigDirName is the reserved subdirectory inside every project root.
	ConfigDirName = ".serena"

	// ConfigFileName is the project configuration record inside ConfigDirName.
	ConfigFileName = "project.yml"

	// MemoriesDirName is the memory store directory inside ConfigDirName.
	MemoriesDirName = "memories"
)

// ProjectConfig is the persisted per-project configuration record.
type ProjectConfig struct {
	// Languages lists the programming languages the agent should assume for
	// this project. Always present; empty for a freshly created project.
	Languages []string `yaml:"languages"`
}

// DefaultProjectConfig returns the configuration written on first activation.
func DefaultProjectConfig() ProjectConfig {
	return ProjectConfig{Languages: []string{}}
}

// Project is an activated project. Two Project values with the same Root
// refer to the same logical project.
type Project struct {
	// Root is the canonical absolute root path of the project.
	Root string

	// Config is the configuration loaded from the project's config record.
	Config ProjectConfig
}

// ConfigDir returns the project's reserved configuration directory.
func (p *Project) ConfigDir() string {
	return filepath.Join(p.Root, ConfigDirName)
}

// ConfigPath returns the path of the project's configuration record.
func (p *Project) ConfigPath() string {
	return filepath.Join(p.Root, ConfigDirName, ConfigFileName)
}

// Memories returns the project's memory store. The underlying directory is
// created lazily on first write.
func (p *Project) Memories() *MemoryStore {
	return &MemoryStore{dir: filepath.Join(p.Root, ConfigDirName, MemoriesDirName)}
}

// loadConfigRecord reads and decodes <root>/.serena/project.yml.
func loadConfigRecord(root string) (ProjectConfig, error) {
	cfg := DefaultProjectConfig()

	data, err := os.ReadFile(filepath.Join(root, ConfigDirName, ConfigFileName))
	if err != nil {
		return cfg, fmt.Errorf("failed to read project config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse project config: %w", err)
	}

	// languages is an ordered list that is always present, never null.
	if cfg.Languages == nil {
		cfg.Languages = []string{}
	}
	return cfg, nil
}

// bootstrapConfigRecord materializes the reserved subdirectory and a default
// configuration record inside root.
//
// The record is staged in a temporary directory and moved into place with a
// single rename, so no caller can ever observe ".serena" without its
// "project.yml". Rename also serves as the atomic claim when two sessions
// activate the same path concurrently: the loser re-checks and loads the
// winner's record.
func bootstrapConfigRecord(root string) (ProjectConfig, error) {
	cfg := DefaultProjectConfig()

	staging, err := os.MkdirTemp(root, ConfigDirName+".staging-")
	if err != nil {
		return cfg, fmt.Errorf("failed to stage project config: %w", err)
	}

	data, err := yaml.Marshal(&cfg)
	if err != nil {
		os.RemoveAll(staging)
		return cfg, fmt.Errorf("failed to encode project config: %w", err)
	}
	if err := os.WriteFile(filepath.Join(staging, ConfigFileName), data, 0o644); err != nil {
		os.RemoveAll(staging)
		return cfg, fmt.Errorf("failed to write project config: %w", err)
	}

	target := filepath.Join(root, ConfigDirName)
	if err := os.Rename(staging, target); err != nil {
		defer os.RemoveAll(staging)

		// Lost a concurrent bootstrap race: the record exists, use it.
		if _, statErr := os.Stat(filepath.Join(target, ConfigFileName)); statErr == nil {
			return loadConfigRecord(root)
		}

		// The reserved directory pre-exists without a record (for example a
		// bare memories directory carried over from another machine). Move
		// just the staged record into it.
		if pathutil.IsDir(target) {
			if renameErr := os.Rename(filepath.Join(staging, ConfigFileName), filepath.Join(target, ConfigFileName)); renameErr == nil {
				return cfg, nil
			}
		}
		return cfg, fmt.Errorf("failed to create %s: %w", ConfigDirName, err)
	}

	return cfg, nil
}
