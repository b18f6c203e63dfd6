package graph

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AbdelazizMoustafa10m/critpath/internal/task"
)

func tasks(ids ...string) []task.Task {
	out := make([]task.Task, len(ids))
	for i, id := range ids {
		out[i] = task.Task{ID: id}
	}
	return out
}

func fs(id, from, to string) task.Dependency {
	return task.Dependency{ID: id, Predecessor: from, Successor: to, Type: task.FinishToStart}
}

func TestBuild_Linear(t *testing.T) {
	t.Parallel()

	g, err := Build(tasks("C", "A", "B"), []task.Dependency{fs("d1", "A", "B"), fs("d2", "B", "C")})
	require.NoError(t, err)

	assert.Equal(t, 3, g.Len())
	assert.Equal(t, []string{"A", "B", "C"}, g.IDs(), "arena is indexed in ID order")
	assert.Equal(t, []string{"A", "B", "C"}, g.TopoIDs())
	assert.Equal(t, []int{0}, g.Sources())
	assert.Equal(t, []int{2}, g.Sinks())

	b, ok := g.IndexOf("B")
	require.True(t, ok)
	require.Len(t, g.Incoming(b), 1)
	in := g.Edge(g.Incoming(b)[0])
	assert.Equal(t, "d1", in.ID)
	assert.Equal(t, "A", g.ID(in.From))

	_, ok = g.IndexOf("Z")
	assert.False(t, ok)
}

func TestBuild_TopoOrderTieBreakByID(t *testing.T) {
	t.Parallel()

	// Two independent chains; ready tasks are emitted smallest ID first.
	g, err := Build(tasks("a", "b", "c", "d", "e"), []task.Dependency{
		fs("1", "d", "a"),
		fs("2", "b", "e"),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c", "d", "a", "e"}, g.TopoIDs())

	rev := g.ReverseOrder()
	topo := g.TopoOrder()
	for i := range topo {
		assert.Equal(t, topo[i], rev[len(rev)-1-i])
	}
}

func TestBuild_TopoOrderIsStable(t *testing.T) {
	t.Parallel()

	deps := []task.Dependency{fs("1", "A", "C"), fs("2", "B", "C"), fs("3", "C", "D")}
	first, err := Build(tasks("D", "C", "B", "A"), deps)
	require.NoError(t, err)
	second, err := Build(tasks("A", "B", "C", "D"), []task.Dependency{deps[2], deps[0], deps[1]})
	require.NoError(t, err)
	assert.Equal(t, first.TopoIDs(), second.TopoIDs())
}

func TestBuild_CycleReportsPath(t *testing.T) {
	t.Parallel()

	_, err := Build(tasks("A", "B", "C"), []task.Dependency{
		fs("d1", "A", "B"),
		fs("d2", "B", "C"),
		fs("d3", "C", "A"),
	})
	require.Error(t, err)

	var cycleErr *CycleError
	require.True(t, errors.As(err, &cycleErr))
	assert.Equal(t, []string{"A", "B", "C", "A"}, cycleErr.Path)
	assert.True(t, errors.Is(err, ErrCycle))
	assert.Contains(t, err.Error(), "A -> B -> C -> A")
}

func TestBuild_CyclePathRotatedToSmallestID(t *testing.T) {
	t.Parallel()

	// Cycle is only reachable from "A" through "D", so the DFS enters it at D.
	_, err := Build(tasks("A", "B", "C", "D"), []task.Dependency{
		fs("1", "A", "D"),
		fs("2", "D", "B"),
		fs("3", "B", "C"),
		fs("4", "C", "D"),
	})
	var cycleErr *CycleError
	require.True(t, errors.As(err, &cycleErr))
	assert.Equal(t, []string{"B", "C", "D", "B"}, cycleErr.Path)
}

func TestBuild_MissingReference(t *testing.T) {
	t.Parallel()

	_, err := Build(tasks("A", "B"), []task.Dependency{fs("d1", "A", "X")})
	require.Error(t, err)

	var missing *MissingReferenceError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, "d1", missing.DependencyID)
	assert.Equal(t, "X", missing.TaskID)
	assert.True(t, errors.Is(err, ErrMissingReference))
}

func TestBuild_InvalidDependencies(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		deps []task.Dependency
	}{
		{name: "self loop", deps: []task.Dependency{fs("d1", "A", "A")}},
		{name: "duplicate pair", deps: []task.Dependency{fs("d1", "A", "B"), {ID: "d2", Predecessor: "A", Successor: "B", Type: task.StartToStart}}},
		{name: "duplicate id", deps: []task.Dependency{fs("d1", "A", "B"), fs("d1", "B", "C")}},
		{name: "bad type", deps: []task.Dependency{{ID: "d1", Predecessor: "A", Successor: "B", Type: "XX"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Build(tasks("A", "B", "C"), tt.deps)
			require.Error(t, err)
			var invalid *InvalidDependencyError
			assert.True(t, errors.As(err, &invalid), "got %T: %v", err, err)
		})
	}
}

func TestBuild_DuplicateTaskID(t *testing.T) {
	t.Parallel()

	_, err := Build(tasks("A", "A"), nil)
	assert.Error(t, err)

	_, err = Build(tasks(""), nil)
	assert.Error(t, err)
}

func TestBuild_Empty(t *testing.T) {
	t.Parallel()

	g, err := Build(nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, g.Len())
	assert.Empty(t, g.TopoOrder())
}

func TestWithDependency_CycleNeverMutates(t *testing.T) {
	t.Parallel()

	g, err := Build(tasks("A", "B", "C"), []task.Dependency{fs("d1", "A", "B"), fs("d2", "B", "C")})
	require.NoError(t, err)
	before := g.Edges()

	_, err = g.WithDependency(fs("d3", "C", "A"))
	var cycleErr *CycleError
	require.True(t, errors.As(err, &cycleErr))
	assert.Equal(t, []string{"A", "B", "C", "A"}, cycleErr.Path)

	assert.Equal(t, before, g.Edges(), "receiver must be untouched")
	assert.Equal(t, []string{"A", "B", "C"}, g.TopoIDs())
}

func TestWithDependency_AddAndReplace(t *testing.T) {
	t.Parallel()

	g, err := Build(tasks("A", "B", "C"), []task.Dependency{fs("d1", "A", "B")})
	require.NoError(t, err)

	added, err := g.WithDependency(fs("d2", "A", "C"))
	require.NoError(t, err)
	assert.Len(t, added.Edges(), 2)
	assert.Len(t, g.Edges(), 1)

	replaced, err := added.WithDependency(task.Dependency{ID: "d1", Predecessor: "A", Successor: "B", Type: task.StartToStart, Lag: 2})
	require.NoError(t, err)
	require.Len(t, replaced.Edges(), 2)
	for _, e := range replaced.Edges() {
		if e.ID == "d1" {
			assert.Equal(t, task.StartToStart, e.Type)
			assert.Equal(t, 2, e.Lag)
		}
	}

	_, err = g.WithDependency(fs("d9", "A", "nope"))
	var missing *MissingReferenceError
	assert.True(t, errors.As(err, &missing))
}

func TestBuild_LargeChainNoCycle(t *testing.T) {
	t.Parallel()

	const n = 2000
	ids := make([]string, n)
	deps := make([]task.Dependency, 0, n-1)
	for i := 0; i < n; i++ {
		ids[i] = fmt.Sprintf("T-%05d", i)
		if i > 0 {
			deps = append(deps, fs(fmt.Sprintf("d%d", i), ids[i-1], ids[i]))
		}
	}
	g, err := BuildFromIDs(ids, deps)
	require.NoError(t, err)
	assert.Equal(t, ids, g.TopoIDs())
}
