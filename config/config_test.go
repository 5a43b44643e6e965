package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "watcher.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadAndValidate_AppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
[[repos]]
path = "/srv/checkouts/app"
`)

	cfg, err := NewLoader(path).LoadAndValidate()
	require.NoError(t, err)

	require.Len(t, cfg.Repos, 1)
	assert.Equal(t, "/srv/checkouts/app", cfg.Repos[0].Path)
	assert.Equal(t, DefaultBranch, cfg.Repos[0].Branch)
	assert.Equal(t, DefaultIntervalSeconds, cfg.Repos[0].Interval)
	assert.Empty(t, cfg.Repos[0].OnChange)
	assert.Equal(t, DefaultLogLevel, cfg.LogLevel)
}

func TestLoadAndValidate_FullEntry(t *testing.T) {
	path := writeConfig(t, `
log_level = "debug"

[[repos]]
path = "/srv/checkouts/app"
branch = "main"
interval = 60
on_change = "systemctl restart app"

[[repos]]
path = "/srv/checkouts/site"
`)

	cfg, err := NewLoader(path).LoadAndValidate()
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	require.Len(t, cfg.Repos, 2)
	assert.Equal(t, "main", cfg.Repos[0].Branch)
	assert.Equal(t, 60, cfg.Repos[0].Interval)
	assert.Equal(t, "systemctl restart app", cfg.Repos[0].OnChange)
	assert.Equal(t, DefaultBranch, cfg.Repos[1].Branch)
}

func TestLoadAndValidate_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name:    "no repos at all",
			content: `log_level = "info"`,
		},
		{
			name: "entry without path",
			content: `
[[repos]]
branch = "main"
`,
		},
		{
			name: "negative interval",
			content: `
[[repos]]
path = "/srv/checkouts/app"
interval = -5
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.content)
			_, err := NewLoader(path).LoadAndValidate()
			assert.Error(t, err)
		})
	}
}

func TestLoadAndValidate_MissingFile(t *testing.T) {
	_, err := NewLoader(filepath.Join(t.TempDir(), "nope.toml")).LoadAndValidate()
	assert.Error(t, err)
}

func TestLoadAndValidate_MalformedTOML(t *testing.T) {
	path := writeConfig(t, `[[repos] path = what`)
	_, err := NewLoader(path).LoadAndValidate()
	assert.Error(t, err)
}

func TestPollInterval(t *testing.T) {
	spec := RepositorySpec{Interval: 90}
	assert.Equal(t, 90*time.Second, spec.PollInterval())
}
