package e2e_test

import (
	"errors"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// testProject is an isolated working directory with a freshly built
// critpath binary.
type testProject struct {
	Dir        string
	BinaryPath string
	t          *testing.T
}

// newTestProject builds the critpath binary into a fresh temp directory.
func newTestProject(t *testing.T) *testProject {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping E2E test in short mode")
	}

	dir := t.TempDir()
	binary := filepath.Join(dir, "bin", "critpath")
	build := exec.Command("go", "build", "-o", binary, "./cmd/critpath")
	build.Dir = projectRoot()
	out, err := build.CombinedOutput()
	require.NoError(t, err, "building critpath: %s", string(out))

	work := filepath.Join(dir, "work")
	require.NoError(t, os.MkdirAll(filepath.Join(work, "projects"), 0o755))
	return &testProject{Dir: work, BinaryPath: binary, t: t}
}

// projectRoot returns the repository root, two levels above this file.
func projectRoot() string {
	_, thisFile, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(thisFile), "..", "..")
}

// writeFile writes content to a path relative to tp.Dir.
func (tp *testProject) writeFile(rel, content string) {
	tp.t.Helper()
	path := filepath.Join(tp.Dir, rel)
	require.NoError(tp.t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(tp.t, os.WriteFile(path, []byte(content), 0o644))
}

// run creates an exec.Cmd for critpath with color disabled and JSON logs.
func (tp *testProject) run(args ...string) *exec.Cmd {
	cmd := exec.Command(tp.BinaryPath, args...)
	cmd.Dir = tp.Dir
	cmd.Env = append(os.Environ(),
		"NO_COLOR=1",
		"CRITPATH_LOG_FORMAT=json",
	)
	return cmd
}

// runExpectSuccess runs critpath, requires exit code 0 and returns the
// combined output.
func (tp *testProject) runExpectSuccess(args ...string) string {
	tp.t.Helper()
	out, err := tp.run(args...).CombinedOutput()
	require.NoError(tp.t, err, "critpath %v failed:\n%s", args, string(out))
	return string(out)
}

// runExpectFailure runs critpath, requires a non-zero exit and returns the
// combined output and exit code.
func (tp *testProject) runExpectFailure(args ...string) (string, int) {
	tp.t.Helper()
	out, err := tp.run(args...).CombinedOutput()
	require.Error(tp.t, err, "critpath %v expected to fail but succeeded:\n%s", args, string(out))
	var exitErr *exec.ExitError
	require.True(tp.t, errors.As(err, &exitErr), "expected *exec.ExitError, got %T: %v", err, err)
	return string(out), exitErr.ExitCode()
}

// startServer runs "critpath serve" on a free loopback port and waits for
// /health to answer. The server is interrupted when the test ends.
func (tp *testProject) startServer(args ...string) string {
	tp.t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(tp.t, err)
	addr := ln.Addr().String()
	require.NoError(tp.t, ln.Close())

	cmd := tp.run(append([]string{"serve", "--addr", addr}, args...)...)
	require.NoError(tp.t, cmd.Start())
	tp.t.Cleanup(func() {
		_ = cmd.Process.Signal(os.Interrupt)
		_ = cmd.Wait()
	})

	base := "http://" + addr
	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		resp, err := http.Get(base + "/health")
		if err == nil {
			resp.Body.Close()
			return base
		}
		time.Sleep(50 * time.Millisecond)
	}
	tp.t.Fatalf("server on %s did not become ready", addr)
	return ""
}

const launchYAML = `id: launch
name: Product launch
config:
  start_date: 2026-10-12
  calendar_mode: working_days
tasks:
  - {id: plan, title: Write plan, duration: 2, status: todo}
  - {id: api, title: Build API, duration: 4, status: backlog}
  - {id: ui, title: Build UI, duration: 2, status: backlog}
  - {id: ship, title: Ship, duration: 1, status: backlog}
dependencies:
  - {id: d1, predecessor: plan, successor: api}
  - {id: d2, predecessor: plan, successor: ui}
  - {id: d3, predecessor: api, successor: ship}
  - {id: d4, predecessor: ui, successor: ship}
`
