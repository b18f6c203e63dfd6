package project

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AbdelazizMoustafa10m/critpath/internal/cpm"
	"github.com/AbdelazizMoustafa10m/critpath/internal/graph"
	"github.com/AbdelazizMoustafa10m/critpath/internal/task"
)

func schedule(t *testing.T, s *Store, id string) *cpm.Result {
	t.Helper()
	snap, err := s.Snapshot(id)
	require.NoError(t, err)
	cal, err := s.Calendar(id)
	require.NoError(t, err)
	g, err := graph.Build(snap.Tasks, snap.Dependencies)
	require.NoError(t, err)
	res, err := cpm.Analyze(context.Background(), cpm.Input{
		Graph:     g,
		Durations: snap.Durations(),
		Calendar:  cal,
		Start:     snap.Config.Start,
	}, cpm.Options{})
	require.NoError(t, err)
	return res
}

func TestComputeStatistics(t *testing.T) {
	t.Parallel()

	p := sampleProject()
	p.Tasks[0].Status = task.StatusDone
	p.Tasks[0].Progress = 100
	p.Tasks[0].EndDate = start.Add(3)
	p.Tasks[0].ActualCost = 300
	p.Tasks[1].Status = task.StatusInProgress
	p.Tasks[1].Progress = 50
	p.Tasks[1].EndDate = start.Add(5)
	p.Tasks[1].ActualCost = 200
	p.Tasks[1].EstimatedHours = 16
	p.Tasks[2].EndDate = start.Add(7)

	st := ComputeStatistics(p, start.Add(6))

	assert.Equal(t, 3, st.TotalTasks)
	assert.Equal(t, 1, st.CompletedTasks)
	assert.Equal(t, 1, st.InProgressTasks)
	assert.Equal(t, 1, st.OverdueTasks, "B ended before the reference date and is unfinished")
	assert.Equal(t, 1, st.ByStatus[task.StatusTodo])
	assert.Equal(t, 0, st.ByStatus[task.StatusBacklog])
	assert.Equal(t, 500.0, st.ActualCost, "falls back to the task cost sum")
	assert.Equal(t, 500.0, st.CostVariance)
	assert.Equal(t, 2.0, st.CostPerformanceIndex)
	assert.Equal(t, 16.0, st.EstimatedHours)
	assert.Equal(t, 50, st.ProgressPercentage)

	p.ActualCost = 1250
	st = ComputeStatistics(p, start)
	assert.Equal(t, -250.0, st.CostVariance)
	assert.Equal(t, 0, st.OverdueTasks)

	empty := ComputeStatistics(Project{}, start)
	assert.Equal(t, 0, empty.ProgressPercentage)
	assert.Equal(t, 0.0, empty.CostPerformanceIndex)
}

func TestBuildGantt(t *testing.T) {
	t.Parallel()

	s, _ := newStore(t)
	p, err := s.Get("web")
	require.NoError(t, err)

	plain := BuildGantt(p, nil)
	require.Len(t, plain.Data, 3)
	assert.Equal(t, "A", plain.Data[0].ID)
	assert.Nil(t, plain.Data[0].Slack)
	assert.Len(t, plain.Links, 2)
	assert.Equal(t, GanttLink{ID: "d2", Source: "B", Target: "C", Type: task.FinishToStart, Lag: 1}, plain.Links[1])

	res := schedule(t, s, "web")
	scheduled := BuildGantt(p, res)
	require.Len(t, scheduled.Data, 3)
	for _, bar := range scheduled.Data {
		assert.True(t, bar.IsCritical, bar.ID)
		require.NotNil(t, bar.Slack)
		assert.Equal(t, 0, *bar.Slack)
	}
	assert.Equal(t, start.Add(6), scheduled.Data[2].StartDate)
	assert.Equal(t, start.Add(7), scheduled.Data[2].EndDate)
}

func TestBaselineAndVariance(t *testing.T) {
	t.Parallel()

	s, rec := newStore(t)

	b, err := s.SetBaseline("web", "")
	require.NoError(t, err)
	assert.Equal(t, 1, b.Number)
	assert.Equal(t, "Baseline 1", b.Name)
	assert.Len(t, b.Tasks, 3)
	assert.Equal(t, start.Add(7), b.End)

	second, err := s.SetBaseline("web", "after review")
	require.NoError(t, err)
	assert.Equal(t, 2, second.Number)
	assert.Equal(t, 1, rec.count(), "baselines do not invalidate the schedule")

	// Stretch A by two days: everything downstream slips.
	_, err = s.UpdateTask("web", "A", TaskPatch{Duration: intPtr(5)})
	require.NoError(t, err)

	p, err := s.Get("web")
	require.NoError(t, err)
	require.Len(t, p.Baselines, 2)

	variance := ScheduleVariance(p, schedule(t, s, "web"))
	require.Len(t, variance, 3)
	assert.Equal(t, "A", variance[0].TaskID)
	assert.Equal(t, 0, variance[0].StartVariance)
	assert.Equal(t, 2, variance[0].FinishVariance)
	assert.Equal(t, 2, variance[1].StartVariance)
	assert.Equal(t, 2, variance[2].FinishVariance)
}

func TestBaseline_UnknownProject(t *testing.T) {
	t.Parallel()

	s, _ := newStore(t)
	_, err := s.SetBaseline("nope", "x")
	assert.ErrorIs(t, err, ErrNotFound)
}
