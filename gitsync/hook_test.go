package gitsync

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/margo/repowatch/config"
)

func TestRunHook_RunsInCheckoutDirectory(t *testing.T) {
	dir := t.TempDir()
	engine := newTestEngine(t)

	result := engine.runHook(config.RepositorySpec{Path: dir, OnChange: "echo ok > marker"})

	require.NotNil(t, result)
	assert.Equal(t, 0, result.ExitCode)
	content, err := os.ReadFile(filepath.Join(dir, "marker"))
	require.NoError(t, err)
	assert.Equal(t, "ok\n", string(content))
}

func TestRunHook_NonZeroExit(t *testing.T) {
	engine := newTestEngine(t)

	result := engine.runHook(config.RepositorySpec{Path: t.TempDir(), OnChange: "exit 42"})

	assert.Equal(t, 42, result.ExitCode)
	assert.Nil(t, result.SpawnErr)
}

func TestRunHook_SpawnErrorIsDistinct(t *testing.T) {
	engine := newTestEngine(t)

	// A working directory that does not exist keeps the shell from
	// starting at all.
	result := engine.runHook(config.RepositorySpec{
		Path:     filepath.Join(t.TempDir(), "gone"),
		OnChange: "true",
	})

	require.NotNil(t, result.SpawnErr)
	var spawnErr *HookSpawnError
	assert.ErrorAs(t, result.SpawnErr, &spawnErr)
	assert.Equal(t, -1, result.ExitCode)
}
