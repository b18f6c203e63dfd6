package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fullTOML = `
[server]
addr = "127.0.0.1:9000"
api_key = "s3cret"
shutdown_timeout = "3s"

[schedule]
sink_anchor = "project"
max_critical_paths = 10
max_lag_days = 0
max_restarts = 5
auto_recompute = true
concurrency = 2

[calendar]
default_mode = "working_days"
max_gap_days = 30

[data]
projects = "plans/*.yaml"

[log]
level = "debug"
format = "json"
timestamps = true
`

// writeConfig writes content as critpath.toml in a fresh directory.
func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// ---------------------------------------------------------------------------
// LoadFromFile
// ---------------------------------------------------------------------------

func TestLoadFromFile_Full(t *testing.T) {
	t.Parallel()

	cfg, md, err := LoadFromFile(writeConfig(t, fullTOML))
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr)
	assert.Equal(t, "s3cret", cfg.Server.APIKey)
	assert.Equal(t, "3s", cfg.Server.ShutdownTimeout)
	assert.Equal(t, "project", cfg.Schedule.SinkAnchor)
	assert.Equal(t, 10, cfg.Schedule.MaxCriticalPaths)
	assert.Equal(t, 0, cfg.Schedule.MaxLagDays)
	assert.Equal(t, 5, cfg.Schedule.MaxRestarts)
	assert.True(t, cfg.Schedule.AutoRecompute)
	assert.Equal(t, 2, cfg.Schedule.Concurrency)
	assert.Equal(t, "working_days", cfg.Calendar.DefaultMode)
	assert.Equal(t, 30, cfg.Calendar.MaxGapDays)
	assert.Equal(t, "plans/*.yaml", cfg.Data.Projects)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.True(t, cfg.Log.Timestamps)

	assert.Empty(t, md.Undecoded())
	assert.True(t, md.IsDefined("schedule", "max_lag_days"))
}

func TestLoadFromFile_Errors(t *testing.T) {
	t.Parallel()

	_, _, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.toml"))
	assert.ErrorContains(t, err, "loading config")

	_, _, err = LoadFromFile(writeConfig(t, "[server\naddr = 1"))
	assert.Error(t, err)

	_, _, err = LoadFromFile(writeConfig(t, "[schedule]\nmax_restarts = \"many\""))
	assert.Error(t, err, "type mismatch")
}

// ---------------------------------------------------------------------------
// FindConfigFile
// ---------------------------------------------------------------------------

func TestFindConfigFile(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	want := filepath.Join(root, ConfigFileName)
	require.NoError(t, os.WriteFile(want, []byte("[server]\n"), 0o644))

	got, err := FindConfigFile(nested)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	got, err = FindConfigFile(root)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestFindConfigFile_IgnoresDirectories(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, ConfigFileName), 0o755))

	got, err := FindConfigFile(root)
	require.NoError(t, err)
	if got != "" {
		assert.NotEqual(t, filepath.Join(root, ConfigFileName), got)
	}
}

// ---------------------------------------------------------------------------
// Load
// ---------------------------------------------------------------------------

func TestLoad_ExplicitPath(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, fullTOML)
	rc, meta, err := Load(path, ".", noEnv, nil)
	require.NoError(t, err)
	require.NotNil(t, meta)
	assert.Equal(t, path, rc.Path)
	assert.Equal(t, "127.0.0.1:9000", rc.Config.Server.Addr)
	assert.Equal(t, SourceFile, rc.Sources["server.addr"])
	assert.Equal(t, 0, rc.Config.Schedule.MaxLagDays, "explicit zero in the file wins over the default")
	assert.Equal(t, SourceFile, rc.Sources["schedule.max_lag_days"])
}

func TestLoad_Discovered(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, "[server]\naddr = \":7000\"\n")
	nested := filepath.Join(filepath.Dir(path), "projects")
	require.NoError(t, os.Mkdir(nested, 0o755))

	rc, _, err := Load("", nested, noEnv, nil)
	require.NoError(t, err)
	assert.Equal(t, path, rc.Path)
	assert.Equal(t, ":7000", rc.Config.Server.Addr)
	assert.Equal(t, SourceDefault, rc.Sources["data.projects"])
}

func TestLoad_MissingExplicitPath(t *testing.T) {
	t.Parallel()

	_, _, err := Load(filepath.Join(t.TempDir(), "nope.toml"), ".", noEnv, nil)
	assert.Error(t, err)
}

func TestLoad_BadEnv(t *testing.T) {
	t.Parallel()

	env := mapEnv(map[string]string{"CRITPATH_MAX_RESTARTS": "lots"})
	_, _, err := Load(writeConfig(t, ""), ".", env, nil)
	assert.ErrorContains(t, err, "CRITPATH_MAX_RESTARTS")
}
