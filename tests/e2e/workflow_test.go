package e2e_test

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitValidateSchedule(t *testing.T) {
	t.Parallel()
	tp := newTestProject(t)

	out := tp.runExpectSuccess("init", "--id", "demo", "--name", "Demo", "--start", "2026-11-02")
	assert.Contains(t, out, `Initialized project "demo"`)

	out = tp.runExpectSuccess("validate")
	assert.Contains(t, out, "ok")
	assert.Contains(t, out, "project demo, 4 task(s)")

	out = tp.runExpectSuccess("schedule", "demo")
	assert.Contains(t, out, "design -> build -> release")

	out = tp.runExpectSuccess("config", "validate")
	assert.Contains(t, out, "0 error(s)")
}

func TestScheduleJSON(t *testing.T) {
	t.Parallel()
	tp := newTestProject(t)
	tp.writeFile("projects/launch.yaml", launchYAML)

	out, err := tp.run("schedule", "--json").Output()
	require.NoError(t, err)

	var reports []struct {
		ProjectID string `json:"project_id"`
		Schedule  struct {
			ProjectFinish string     `json:"project_finish"`
			CriticalPaths [][]string `json:"critical_paths"`
		} `json:"schedule"`
	}
	require.NoError(t, json.Unmarshal(out, &reports))
	require.Len(t, reports, 1)
	assert.Equal(t, "launch", reports[0].ProjectID)
	// 7 working days from Monday 2026-10-12.
	assert.Equal(t, "2026-10-21", reports[0].Schedule.ProjectFinish)
	assert.Equal(t, [][]string{{"plan", "api", "ship"}}, reports[0].Schedule.CriticalPaths)
}

func TestServeAndMove(t *testing.T) {
	t.Parallel()
	tp := newTestProject(t)
	tp.writeFile("projects/launch.yaml", launchYAML)
	tp.writeFile("critpath.toml", "[server]\napi_key = \"e2e-key\"\n")

	base := tp.startServer()

	out := tp.runExpectSuccess("move", "launch", "api", "--status", "in_progress", "--server", base)
	assert.Contains(t, out, "moved api: backlog -> in_progress")

	req, err := http.NewRequest(http.MethodGet, base+"/projects/launch/kanban", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer e2e-key")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var board struct {
		Columns []struct {
			Status string   `json:"status"`
			Tasks  []string `json:"task_ids"`
		} `json:"columns"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&board))
	var found bool
	for _, c := range board.Columns {
		if c.Status == "in_progress" {
			found = strings.Join(c.Tasks, ",") == "api"
		}
	}
	assert.True(t, found, "api should be the only in_progress task")

	out, code := tp.runExpectFailure("move", "launch", "api", "--status", "done", "--server", base, "--api-key", "wrong")
	assert.Equal(t, 1, code)
	assert.Contains(t, out, "401")
}
