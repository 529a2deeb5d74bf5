package project

import (
	"errors"
	"testing"

	"serena/internal/config"
	"serena/internal/logging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProject(t *testing.T) *Project {
	t.Helper()
	logger, _ := logging.NewTestLogger()
	cfg := config.DefaultConfig()
	resolver := NewResolver(&cfg, logger)

	proj, err := resolver.Activate(t.TempDir())
	require.NoError(t, err)
	return proj
}

func TestMemories_WriteReadRoundtrip(t *testing.T) {
	store := newTestProject(t).Memories()

	content := "---\ndescription: build instructions\n---\n\nRun make to build.\n"
	require.NoError(t, store.Write("build", content))

	got, err := store.Read("build")
	require.NoError(t, err)
	assert.Equal(t, content, got)

	// The implied .md extension may also be spelled out.
	got, err = store.Read("build.md")
	require.NoError(t, err)
	assert.Equal(t, content, got)
}

func TestMemories_WriteReplaces(t *testing.T) {
	store := newTestProject(t).Memories()

	require.NoError(t, store.Write("notes", "first"))
	require.NoError(t, store.Write("notes", "second"))

	got, err := store.Read("notes")
	require.NoError(t, err)
	assert.Equal(t, "second", got)

	memories, err := store.List()
	require.NoError(t, err)
	require.Len(t, memories, 1)
}

func TestMemories_List(t *testing.T) {
	store := newTestProject(t).Memories()

	require.NoError(t, store.Write("zeta", "no frontmatter here"))
	require.NoError(t, store.Write("alpha", "---\ndescription: the first one\n---\nbody"))

	memories, err := store.List()
	require.NoError(t, err)
	require.Len(t, memories, 2)

	// Sorted by name; descriptions come from frontmatter when present.
	assert.Equal(t, "alpha", memories[0].Name)
	assert.Equal(t, "the first one", memories[0].Description)
	assert.Equal(t, "zeta", memories[1].Name)
	assert.Equal(t, "", memories[1].Description)
}

func TestMemories_ListWithoutDirectory(t *testing.T) {
	store := newTestProject(t).Memories()

	memories, err := store.List()
	require.NoError(t, err)
	assert.Empty(t, memories)
}

func TestMemories_Delete(t *testing.T) {
	store := newTestProject(t).Memories()

	require.NoError(t, store.Write("scratch", "temporary"))
	require.NoError(t, store.Delete("scratch"))

	_, err := store.Read("scratch")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMemoryNotFound))

	err = store.Delete("scratch")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMemoryNotFound))
}

func TestMemories_InvalidNames(t *testing.T) {
	store := newTestProject(t).Memories()

	tests := []string{"", "   ", "a/b", `a\b`, ".", ".."}
	for _, name := range tests {
		t.Run("name "+name, func(t *testing.T) {
			assert.Error(t, store.Write(name, "content"))
			_, err := store.Read(name)
			assert.Error(t, err)
			assert.Error(t, store.Delete(name))
		})
	}
}
