package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsAndFileOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sanitycheck.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[repos]
paths = ["./checks"]

[run]
try_fix = false
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"./checks"}, cfg.Repos.Paths)
	assert.False(t, cfg.Run.TryFix)
	assert.Equal(t, "counting", cfg.Progress.Backend, "unset fields keep their default")
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sanitycheck.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[repos]
paths = ["./checks"]

[progress]
backend = "counting"
`), 0o644))

	t.Setenv("SANITYCHECK_PROGRESS", "tui")
	t.Setenv("SANITYCHECK_REPOS", "./a,./b")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "tui", cfg.Progress.Backend)
	assert.Equal(t, []string{"./a", "./b"}, cfg.Repos.Paths)
}

func TestValidate_RequiresAtLeastOneRepoPath(t *testing.T) {
	cfg := &Config{Progress: ProgressConfig{Backend: "counting"}}
	assert.Error(t, cfg.Validate())
}

func TestValidate_RejectsUnknownProgressBackend(t *testing.T) {
	cfg := &Config{Repos: ReposConfig{Paths: []string{"./x"}}, Progress: ProgressConfig{Backend: "carrier-pigeon"}}
	assert.Error(t, cfg.Validate())
}
