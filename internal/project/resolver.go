package project

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"serena/internal/config"
	"serena/internal/logging"
	"serena/pkg/pathutil"
)

// Resolver turns a path-or-name identifier into an activated Project.
type Resolver struct {
	registry *config.Config // may be nil: name resolution always misses
	logger   *logging.AppLogger
}

// NewResolver creates a resolver backed by the given project registry.
func NewResolver(registry *config.Config, logger *logging.AppLogger) *Resolver {
	return &Resolver{
		registry: registry,
		logger:   logger,
	}
}

// Activate resolves identifier to a project, creating it on disk if needed.
//
// Resolution order:
//  1. A bare name (no path separator, not absolute, no "."/"~" prefix) is
//     looked up in the registry; an unknown name is ErrProjectNotFound.
//  2. The path is canonicalized: "~" expanded, made absolute, symlinks
//     resolved.
//  3. A nonexistent directory is created, including parents.
//  4. A root without the reserved config subdirectory gets a default
//     configuration record bootstrapped atomically.
//
// The returned Project's Root always equals the canonical path, no matter
// what form the identifier took.
func (r *Resolver) Activate(identifier string) (*Project, error) {
	defer r.logger.LogPerformance("activate_project", time.Now())

	if strings.TrimSpace(identifier) == "" {
		return nil, fmt.Errorf("%w: empty identifier", ErrProjectNotFound)
	}

	target := identifier
	if isBareName(identifier) {
		path, ok := r.registry.LookupProject(identifier)
		if !ok {
			r.logger.Debug("Identifier is not a registered name", "identifier", identifier)
			return nil, fmt.Errorf("%w: %q is not a registered project name", ErrProjectNotFound, identifier)
		}
		r.logger.Debug("Resolved registered project name", "name", identifier, "path", path)
		target = path
	}

	root, err := pathutil.Canonicalize(target)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve project path %q: %w", target, err)
	}

	info, err := os.Stat(root)
	switch {
	case err == nil && !info.IsDir():
		return nil, fmt.Errorf("%w: %s", ErrNotADirectory, root)
	case err == nil:
		// Existing directory; bootstrap below only if the record is missing.
	case os.IsNotExist(err):
		// A missing path is a creation trigger, not an error.
		r.logger.Info("Creating project directory", "root", root)
		if err := pathutil.EnsureDir(root); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("cannot stat project path %s: %w", root, err)
	}

	var cfg ProjectConfig
	if _, statErr := os.Stat(filepath.Join(root, ConfigDirName, ConfigFileName)); statErr == nil {
		cfg, err = loadConfigRecord(root)
	} else {
		r.logger.Info("Bootstrapping project configuration", "root", root)
		cfg, err = bootstrapConfigRecord(root)
	}
	if err != nil {
		return nil, err
	}

	return &Project{Root: root, Config: cfg}, nil
}

// isBareName reports whether identifier is a symbolic project name rather
// than a filesystem path. Anything with a path shape is a path.
func isBareName(identifier string) bool {
	if strings.ContainsAny(identifier, `/\`) {
		return false
	}
	if strings.HasPrefix(identifier, ".") || strings.HasPrefix(identifier, "~") {
		return false
	}
	return true
}
