package schedule

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AbdelazizMoustafa10m/critpath/internal/calendar"
	"github.com/AbdelazizMoustafa10m/critpath/internal/cpm"
	"github.com/AbdelazizMoustafa10m/critpath/internal/graph"
	"github.com/AbdelazizMoustafa10m/critpath/internal/project"
	"github.com/AbdelazizMoustafa10m/critpath/internal/task"
)

var day0 = calendar.MustParseDate("2026-10-12")

func quietLogger() *log.Logger { return log.New(io.Discard) }

func quiet() Option { return WithLogger(quietLogger()) }

// chainProject is A(3) -FS-> B(2) -FS+1-> C(1) with a target finish of day 7.
func chainProject() project.Project {
	target := day0.Add(7)
	return project.Project{
		ID:     "web",
		Name:   "Website relaunch",
		Config: project.Config{Start: day0, TargetFinish: &target},
		Tasks: []task.Task{
			{ID: "A", Title: "Design", Duration: 3},
			{ID: "B", Title: "Build", Duration: 2},
			{ID: "C", Title: "Launch", Duration: 1},
		},
		Dependencies: []task.Dependency{
			{ID: "d1", Predecessor: "A", Successor: "B", Type: task.FinishToStart},
			{ID: "d2", Predecessor: "B", Successor: "C", Type: task.FinishToStart, Lag: 1},
		},
	}
}

func newStore(t *testing.T, projects ...project.Project) *project.Store {
	t.Helper()
	s := project.NewStore(project.WithLogger(quietLogger()))
	for _, p := range projects {
		require.NoError(t, s.Put(p))
	}
	return s
}

// hookSource runs a hook before handing out each snapshot.
type hookSource struct {
	src   Source
	mu    sync.Mutex
	calls int
	hook  func(call int)
}

func (h *hookSource) Snapshot(id string) (*project.Snapshot, error) {
	h.mu.Lock()
	h.calls++
	n := h.calls
	h.mu.Unlock()
	if h.hook != nil {
		h.hook(n)
	}
	return h.src.Snapshot(id)
}

func intPtr(v int) *int { return &v }

// ---------------------------------------------------------------------------
// State machine
// ---------------------------------------------------------------------------

func TestController_StartsDirty(t *testing.T) {
	t.Parallel()

	c := NewController("web", newStore(t, chainProject()), quiet())
	v := c.Schedule()
	assert.Equal(t, StateDirty, v.State)
	assert.Nil(t, v.Result)
	assert.NoError(t, v.Err)
	assert.Equal(t, "Dirty", v.State.Status())
}

func TestController_RecomputePublishesChain(t *testing.T) {
	t.Parallel()

	c := NewController("web", newStore(t, chainProject()), quiet())
	res, err := c.Recompute(context.Background())
	require.NoError(t, err)

	v := c.Schedule()
	assert.Equal(t, StateClean, v.State)
	assert.Same(t, res, v.Result)
	assert.Equal(t, []string{"A", "B", "C"}, res.CriticalTasks)
	assert.Equal(t, [][]string{{"A", "B", "C"}}, res.CriticalPaths)

	c3, ok := res.Task("C")
	require.True(t, ok)
	assert.Equal(t, 6, c3.EarlyStartDay)
	assert.Equal(t, 7, c3.EarlyFinishDay)
	assert.Equal(t, 0, c3.Slack)
}

func TestController_RecomputeIsIdempotent(t *testing.T) {
	t.Parallel()

	store := newStore(t, chainProject())
	c := NewController("web", store, quiet())
	first, err := c.Recompute(context.Background())
	require.NoError(t, err)

	second, err := c.Recompute(context.Background())
	require.NoError(t, err)
	assert.Same(t, first, second)

	// A dirty signal without a scheduling change republishes the same result.
	c.MarkDirty("title edited")
	third, err := c.Recompute(context.Background())
	require.NoError(t, err)
	assert.Same(t, first, third)
	assert.Equal(t, StateClean, c.Schedule().State)

	// A fresh controller over the same data derives an identical result.
	fresh, err := NewController("web", store, quiet()).Recompute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first, fresh)
}

func TestController_CycleOnAddLeavesScheduleUnchanged(t *testing.T) {
	t.Parallel()

	store := newStore(t, chainProject())
	c := NewController("web", store, quiet())
	store.OnChange(func(ch project.Change) { c.MarkDirty(ch.Reason) })

	before, err := c.Recompute(context.Background())
	require.NoError(t, err)

	_, err = store.AddDependency("web", task.Dependency{ID: "d3", Predecessor: "C", Successor: "A"})
	var cycle *graph.CycleError
	require.ErrorAs(t, err, &cycle)
	assert.Equal(t, []string{"A", "B", "C", "A"}, cycle.Path)

	v := c.Schedule()
	assert.Equal(t, StateClean, v.State, "a rejected edit does not dirty the schedule")
	assert.Same(t, before, v.Result)

	after, err := c.Recompute(context.Background())
	require.NoError(t, err)
	assert.Same(t, before, after)
}

func TestController_FailureRetainsPreviousResult(t *testing.T) {
	t.Parallel()

	store := newStore(t, chainProject())
	c := NewController("web", store, quiet())
	good, err := c.Recompute(context.Background())
	require.NoError(t, err)

	// Loaded data is not cycle-checked, so a cycle can reach recompute.
	cyclic := chainProject()
	cyclic.Dependencies = append(cyclic.Dependencies, task.Dependency{ID: "d3", Predecessor: "C", Successor: "A"})
	require.NoError(t, store.Put(cyclic))
	c.MarkDirty("project reloaded")

	res, err := c.Recompute(context.Background())
	assert.Nil(t, res)
	assert.ErrorIs(t, err, graph.ErrCycle)

	v := c.Schedule()
	assert.Equal(t, StateFailed, v.State)
	assert.Equal(t, "Failed", v.State.Status())
	assert.Same(t, good, v.Result, "the last clean result is still served")
	assert.ErrorIs(t, v.Err, graph.ErrCycle)

	// Recomputing the broken project fails again.
	_, err = c.Recompute(context.Background())
	assert.ErrorIs(t, err, graph.ErrCycle)

	// Restoring the original data clears the failure.
	require.NoError(t, store.Put(chainProject()))
	c.MarkDirty("project reloaded")
	res, err = c.Recompute(context.Background())
	require.NoError(t, err)
	assert.Same(t, good, res)
	v = c.Schedule()
	assert.Equal(t, StateClean, v.State)
	assert.NoError(t, v.Err)
}

func TestController_Failures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(p *project.Project)
		target error
	}{
		{
			name: "target finish too early",
			mutate: func(p *project.Project) {
				early := day0.Add(5)
				p.Config.TargetFinish = &early
			},
			target: cpm.ErrInvalidLag,
		},
		{
			name: "missing reference",
			mutate: func(p *project.Project) {
				p.Dependencies = append(p.Dependencies, task.Dependency{ID: "dx", Predecessor: "C", Successor: "Z"})
			},
			target: graph.ErrMissingReference,
		},
		{
			name: "lag beyond bound",
			mutate: func(p *project.Project) {
				p.Config.TargetFinish = nil
				p.Dependencies[0].Lag = 5000
			},
			target: cpm.ErrInvalidLag,
		},
		{
			name: "disconnected calendar",
			mutate: func(p *project.Project) {
				p.Config.TargetFinish = nil
				p.Config.Mode = calendar.ModeWorkingDays
				for d := day0.Add(-10); d < day0.Add(30); d = d.Add(1) {
					p.Config.Holidays = append(p.Config.Holidays, d)
				}
			},
			target: calendar.ErrNoWorkingDays,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p := chainProject()
			tt.mutate(&p)
			settings := DefaultSettings()
			settings.MaxGapDays = 14
			c := NewController("web", newStore(t, p), quiet(), WithSettings(settings))

			_, err := c.Recompute(context.Background())
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.target)

			v := c.Schedule()
			assert.Equal(t, StateFailed, v.State)
			assert.Nil(t, v.Result)
		})
	}
}

func TestController_UnknownProjectFails(t *testing.T) {
	t.Parallel()

	c := NewController("nope", newStore(t), quiet())
	_, err := c.Recompute(context.Background())
	assert.ErrorIs(t, err, project.ErrNotFound)
	assert.Equal(t, StateFailed, c.Schedule().State)
}

func TestController_CanceledContextPublishesNothing(t *testing.T) {
	t.Parallel()

	c := NewController("web", newStore(t, chainProject()), quiet())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Recompute(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	v := c.Schedule()
	assert.Equal(t, StateDirty, v.State)
	assert.Nil(t, v.Result)
	assert.NoError(t, v.Err)
}

// ---------------------------------------------------------------------------
// Supersession and concurrency
// ---------------------------------------------------------------------------

func TestController_SupersededComputationRestarts(t *testing.T) {
	t.Parallel()

	store := newStore(t, chainProject())
	src := &hookSource{src: store}
	events := make(chan Event, 64)
	c := NewController("web", src, quiet(), WithEvents(events))
	src.hook = func(call int) {
		if call == 1 {
			_, err := store.UpdateTask("web", "A", project.TaskPatch{Duration: intPtr(4)})
			require.NoError(t, err)
			c.MarkDirty("A stretched")
		}
	}

	res, err := c.Recompute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, src.calls)
	a, _ := res.Task("A")
	assert.Equal(t, 4, a.EarlyFinishDay, "published from the latest data")
	assert.Equal(t, StateClean, c.Schedule().State)

	var types []string
	for len(events) > 0 {
		types = append(types, (<-events).Type)
	}
	assert.Contains(t, types, EventSuperseded)
	assert.Equal(t, EventPublished, types[len(types)-1])
}

func TestController_RestartBoundPublishesAndStaysDirty(t *testing.T) {
	t.Parallel()

	store := newStore(t, chainProject())
	src := &hookSource{src: store}
	settings := DefaultSettings()
	settings.MaxRestarts = 1
	c := NewController("web", src, quiet(), WithSettings(settings))
	src.hook = func(int) { c.MarkDirty("busy editor") }

	res, err := c.Recompute(context.Background())
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, 2, src.calls)

	v := c.Schedule()
	assert.Equal(t, StateDirty, v.State, "edits arrived after the last snapshot")
	assert.Same(t, res, v.Result)
}

func TestController_ConcurrentCallersShareOneComputation(t *testing.T) {
	t.Parallel()

	store := newStore(t, chainProject())
	release := make(chan struct{})
	src := &hookSource{src: store, hook: func(call int) {
		if call == 1 {
			<-release
		}
	}}
	c := NewController("web", src, quiet())

	const callers = 8
	results := make([]*cpm.Result, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := c.Recompute(context.Background())
			assert.NoError(t, err)
			results[i] = res
		}(i)
	}

	assert.Eventually(t, func() bool { return c.Schedule().State == StateComputing }, time.Second, time.Millisecond)
	time.Sleep(10 * time.Millisecond)
	close(release)
	wg.Wait()

	for _, r := range results {
		assert.Same(t, results[0], r)
	}
	assert.LessOrEqual(t, src.calls, callers)
	assert.Equal(t, StateClean, c.Schedule().State)
}

func TestController_ConcurrentEditsConverge(t *testing.T) {
	t.Parallel()

	store := newStore(t, chainProject())
	c := NewController("web", store, quiet())
	store.OnChange(func(ch project.Change) { c.MarkDirty(ch.Reason) })

	var wg sync.WaitGroup
	for i := 1; i <= 10; i++ {
		wg.Add(2)
		go func(d int) {
			defer wg.Done()
			_, err := store.UpdateTask("web", "B", project.TaskPatch{Duration: intPtr(d)})
			assert.NoError(t, err)
		}(i)
		go func() {
			defer wg.Done()
			_, _ = c.Recompute(context.Background())
		}()
	}
	wg.Wait()

	res, err := c.Recompute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StateClean, c.Schedule().State)

	snap, err := store.Snapshot("web")
	require.NoError(t, err)
	b, _ := res.Task("B")
	assert.Equal(t, snap.Durations()["B"], b.Duration, "the published result matches the final data")
}

func TestController_AutoRecompute(t *testing.T) {
	t.Parallel()

	settings := DefaultSettings()
	settings.AutoRecompute = true
	store := newStore(t, chainProject())
	c := NewController("web", store, quiet(), WithSettings(settings))
	t.Cleanup(c.Close)

	c.MarkDirty("opened")
	assert.Eventually(t, func() bool { return c.Schedule().State == StateClean }, 2*time.Second, 5*time.Millisecond)

	_, err := store.UpdateTask("web", "C", project.TaskPatch{Duration: intPtr(3)})
	require.NoError(t, err)
	c.MarkDirty("C stretched")
	assert.Eventually(t, func() bool {
		v := c.Schedule()
		if v.State != StateClean || v.Result == nil {
			return false
		}
		tt, _ := v.Result.Task("C")
		return tt.Duration == 3
	}, 2*time.Second, 5*time.Millisecond)
}

func TestController_Close(t *testing.T) {
	t.Parallel()

	c := NewController("web", newStore(t, chainProject()), quiet())
	res, err := c.Recompute(context.Background())
	require.NoError(t, err)

	c.Close()
	c.Close()
	_, err = c.Recompute(context.Background())
	assert.True(t, errors.Is(err, ErrClosed))
	assert.Same(t, res, c.Schedule().Result)

	c.MarkDirty("ignored")
	assert.Equal(t, StateClean, c.Schedule().State)
}

func TestView_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "web: clean", View{ProjectID: "web", State: StateClean}.String())
	assert.Equal(t, "web: failed (boom)", View{ProjectID: "web", State: StateFailed, Err: errors.New("boom")}.String())
}
