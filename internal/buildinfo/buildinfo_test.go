package buildinfo_test

import (
	"encoding/json"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AbdelazizMoustafa10m/critpath/internal/buildinfo"
)

func TestDefaultValues(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "dev", buildinfo.Version)
	assert.Equal(t, "unknown", buildinfo.Commit)
	assert.Equal(t, "unknown", buildinfo.Date)
}

func TestGetInfo_DefaultValues(t *testing.T) {
	t.Parallel()

	info := buildinfo.GetInfo()

	// Test binaries carry no module version, so "dev" is kept.
	assert.Equal(t, "dev", info.Version)
	assert.Equal(t, "unknown", info.Commit)
	assert.Equal(t, runtime.Version(), info.GoVersion)
}

func TestInfoString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		info buildinfo.Info
		want string
	}{
		{
			name: "default values",
			info: buildinfo.Info{Version: "dev", Commit: "unknown", Date: "unknown"},
			want: "critpath vdev (commit: unknown, built: unknown)",
		},
		{
			name: "release",
			info: buildinfo.Info{Version: "1.2.0", Commit: "a1b2c3d", Date: "2026-10-15T10:00:00Z"},
			want: "critpath v1.2.0 (commit: a1b2c3d, built: 2026-10-15T10:00:00Z)",
		},
		{
			name: "git describe with dirty suffix",
			info: buildinfo.Info{Version: "1.2.0-3-gabcdef0-dirty", Commit: "abcdef0", Date: "2026-10-15"},
			want: "critpath v1.2.0-3-gabcdef0-dirty (commit: abcdef0, built: 2026-10-15)",
		},
		{
			name: "all empty",
			info: buildinfo.Info{},
			want: "critpath v (commit: , built: )",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.info.String())
		})
	}
}

func TestInfoJSON(t *testing.T) {
	t.Parallel()

	data, err := json.Marshal(buildinfo.Info{Version: "1.0.0", Commit: "abc", Date: "2026-10-15", GoVersion: "go1.24.2"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"version":"1.0.0","commit":"abc","date":"2026-10-15","go_version":"go1.24.2"}`, string(data))
}
