// Package pathutil provides filesystem path helpers shared by the project
// resolver and configuration layers.
//
// All functions operate on paths only; none of them create or modify files
// except EnsureDir, which is the single directory-creation primitive used
// throughout the codebase.
package pathutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ExpandHome expands a path that starts with "~/" to the user's home
// directory. Paths without the prefix are returned unchanged, as is the
// input when the home directory cannot be determined.
func ExpandHome(path string) string {
	if !strings.HasPrefix(path, "~/") && path != "~" {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	if path == "~" {
		return home
	}
	return filepath.Join(home, path[2:])
}

// Canonicalize resolves a path to its canonical absolute form: "~" is
// expanded, relative segments are resolved against the working directory,
// and symlinks are evaluated.
//
// Unlike filepath.EvalSymlinks, Canonicalize also handles paths whose leaf
// components do not exist yet: the deepest existing ancestor is resolved and
// the remaining components are re-joined onto it. This is what allows the
// project resolver to canonicalize a path before creating it.
func Canonicalize(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", fmt.Errorf("path cannot be empty")
	}

	abs, err := filepath.Abs(ExpandHome(path))
	if err != nil {
		return "", fmt.Errorf("cannot resolve absolute path: %w", err)
	}

	prefix := abs
	suffix := ""
	for {
		resolved, err := filepath.EvalSymlinks(prefix)
		if err == nil {
			return filepath.Join(resolved, suffix), nil
		}
		if !os.IsNotExist(err) {
			return "", fmt.Errorf("cannot resolve symlinks in %s: %w", prefix, err)
		}

		parent := filepath.Dir(prefix)
		if parent == prefix {
			// Hit the filesystem root without finding an existing ancestor.
			return filepath.Join(prefix, suffix), nil
		}
		suffix = filepath.Join(filepath.Base(prefix), suffix)
		prefix = parent
	}
}

// EnsureDir creates a directory and all necessary parent directories.
// Equivalent to `mkdir -p` and safe to call multiple times.
func EnsureDir(path string) error {
	if err := os.MkdirAll(path, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", path, err)
	}
	return nil
}

// IsDir reports whether path exists and is a directory.
func IsDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
