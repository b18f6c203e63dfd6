package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

const webYAML = `id: web
name: Website relaunch
budget: 1000
config:
  start_date: 2026-10-12
  calendar_mode: calendar
tasks:
  - {id: A, title: Design, duration: 3, status: todo}
  - {id: B, title: Build, duration: 2, status: todo}
  - {id: C, title: Launch, duration: 1, status: backlog}
dependencies:
  - {id: d1, predecessor: A, successor: B, type: FS}
  - {id: d2, predecessor: B, successor: C, type: FS, lag: 1}
`

const loopYAML = `id: loop
name: Circular plan
config:
  start_date: 2026-10-12
tasks:
  - {id: X, duration: 1}
  - {id: Y, duration: 1}
dependencies:
  - {id: e1, predecessor: X, successor: Y}
  - {id: e2, predecessor: Y, successor: X}
`

// resetRootCmd restores every flag of the command tree to its default and
// clears Cobra's Changed tracking.
func resetRootCmd(t *testing.T) {
	t.Helper()
	reset := func(fs *pflag.FlagSet) {
		fs.VisitAll(func(f *pflag.Flag) {
			_ = f.Value.Set(f.DefValue)
			f.Changed = false
		})
	}
	var walk func(c *cobra.Command)
	walk = func(c *cobra.Command) {
		reset(c.PersistentFlags())
		reset(c.Flags())
		for _, child := range c.Commands() {
			walk(child)
		}
	}
	walk(rootCmd)
	rootCmd.SetArgs(nil)
	rootCmd.SetOut(nil)
	rootCmd.SetErr(nil)
	t.Cleanup(func() {
		walk(rootCmd)
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	})
}

// run executes the command tree with args and returns stdout, stderr and
// the command error.
func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	return runContext(t, context.Background(), args...)
}

func runContext(t *testing.T, ctx context.Context, args ...string) (string, string, error) {
	t.Helper()
	resetRootCmd(t)
	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(append([]string{"--no-color"}, args...))
	err := rootCmd.ExecuteContext(ctx)
	return stdout.String(), stderr.String(), err
}

// workspaceDir writes critpath.toml plus the given project files into a
// temp directory and returns the config path.
func workspaceDir(t *testing.T, toml string, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	projects := filepath.Join(dir, "projects")
	require.NoError(t, os.Mkdir(projects, 0o755))
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(projects, name), []byte(content), 0o644))
	}
	cfg := "[data]\nprojects = \"" + filepath.ToSlash(filepath.Join(dir, "projects")) + "/*.yaml\"\n" + toml
	path := filepath.Join(dir, "critpath.toml")
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o644))
	return path
}
