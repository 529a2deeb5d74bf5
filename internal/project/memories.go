package project

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"serena/pkg/pathutil"

	"github.com/adrg/frontmatter"
)

// MemoryFrontmatter is the optional YAML frontmatter of a memory file.
type MemoryFrontmatter struct {
	Description string `yaml:"description"`
}

// Memory is a named markdown memory inside a project.
type Memory struct {
	Name        string
	Description string
}

// MemoryStore reads and writes the markdown memories of a single project,
// stored as flat files under <root>/.serena/memories.
type MemoryStore struct {
	dir string
}

// List returns all memories of the project, sorted by name. Memories without
// frontmatter get an empty description. A project without a memories
// directory simply has no memories.
func (s *MemoryStore) List() ([]Memory, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []Memory{}, nil
		}
		return nil, fmt.Errorf("failed to list memories: %w", err)
	}

	memories := make([]Memory, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}

		name := strings.TrimSuffix(entry.Name(), ".md")
		memory := Memory{Name: name}

		content, err := os.ReadFile(filepath.Join(s.dir, entry.Name()))
		if err == nil {
			var matter MemoryFrontmatter
			if _, err := frontmatter.Parse(bytes.NewReader(content), &matter); err == nil {
				memory.Description = matter.Description
			}
		}

		memories = append(memories, memory)
	}

	sort.Slice(memories, func(i, j int) bool { return memories[i].Name < memories[j].Name })
	return memories, nil
}

// Read returns the full content of a memory, frontmatter included.
func (s *MemoryStore) Read(name string) (string, error) {
	fileName, err := memoryFileName(name)
	if err != nil {
		return "", err
	}

	content, err := os.ReadFile(filepath.Join(s.dir, fileName))
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %q", ErrMemoryNotFound, name)
		}
		return "", fmt.Errorf("failed to read memory %q: %w", name, err)
	}
	return string(content), nil
}

// Write stores a memory, replacing any previous content atomically.
func (s *MemoryStore) Write(name, content string) error {
	fileName, err := memoryFileName(name)
	if err != nil {
		return err
	}

	if err := pathutil.EnsureDir(s.dir); err != nil {
		return err
	}

	// Write-then-rename so a concurrent reader never sees a partial memory.
	tmp, err := os.CreateTemp(s.dir, fileName+".tmp-")
	if err != nil {
		return fmt.Errorf("failed to stage memory %q: %w", name, err)
	}
	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write memory %q: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write memory %q: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(s.dir, fileName)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to store memory %q: %w", name, err)
	}
	return nil
}

// Delete removes a memory.
func (s *MemoryStore) Delete(name string) error {
	fileName, err := memoryFileName(name)
	if err != nil {
		return err
	}

	if err := os.Remove(filepath.Join(s.dir, fileName)); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %q", ErrMemoryNotFound, name)
		}
		return fmt.Errorf("failed to delete memory %q: %w", name, err)
	}
	return nil
}

// memoryFileName validates a memory name and maps it to its file name.
// The ".md" extension is implied and may be given or omitted by the caller.
func memoryFileName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("memory name cannot be empty")
	}
	if strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return "", fmt.Errorf("invalid memory name %q: must not contain path separators", name)
	}

	if !strings.HasSuffix(name, ".md") {
		name += ".md"
	}
	return name, nil
}
