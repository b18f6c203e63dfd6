package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// validate
// ---------------------------------------------------------------------------

func TestValidateCmd_AllGood(t *testing.T) {
	cfg := workspaceDir(t, "", map[string]string{"web.yaml": webYAML})

	out, _, err := run(t, "--config", cfg, "validate")
	require.NoError(t, err)
	assert.Contains(t, out, "project web, 3 task(s), 3 critical")
	assert.Contains(t, out, "1 file(s), 0 failed")
}

func TestValidateCmd_ReportsEachFailure(t *testing.T) {
	missing := `id: gap
config: {start_date: 2026-10-12}
tasks:
  - {id: A, duration: 1}
dependencies:
  - {id: x1, predecessor: A, successor: Z}
`
	cfg := workspaceDir(t, "", map[string]string{
		"web.yaml":  webYAML,
		"loop.yaml": loopYAML,
		"gap.yaml":  missing,
		"bad.yaml":  "id: [unclosed",
	})

	out, _, err := run(t, "--config", cfg, "validate")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "3 project file(s) failed validation")

	assert.Contains(t, out, "loop.yaml: ")
	assert.Contains(t, out, "cycle")
	assert.Contains(t, out, `"Z"`)
	assert.Contains(t, out, "bad.yaml: decoding project")
	assert.Contains(t, out, "project web, 3 task(s)")
	assert.Contains(t, out, "4 file(s), 3 failed")
}

func TestValidateCmd_ExplicitFiles(t *testing.T) {
	dir := t.TempDir()
	web := filepath.Join(dir, "web.yaml")
	require.NoError(t, os.WriteFile(web, []byte(webYAML), 0o644))
	cfg := workspaceDir(t, "", nil)

	out, _, err := run(t, "--config", cfg, "validate", web)
	require.NoError(t, err)
	assert.Contains(t, out, web)
}

func TestValidateCmd_DuplicateIDsAcrossFilesAreIndependent(t *testing.T) {
	cfg := workspaceDir(t, "", map[string]string{"a.yaml": webYAML, "b.yaml": webYAML})

	out, _, err := run(t, "--config", cfg, "validate")
	require.NoError(t, err)
	assert.Contains(t, out, "2 file(s), 0 failed")
}
