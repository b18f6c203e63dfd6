// Package graph models a project's tasks and typed precedence edges as an
// arena: tasks are addressed by a dense index (assigned in ascending ID
// order) and edges are (predecessor, successor, type, lag) tuples over those
// indexes. The graph never holds references back into task records.
//
// A Graph is immutable once built. Build rejects dangling references,
// structurally invalid edges, and cycles, so every Graph in circulation is a
// DAG with a stable topological order.
package graph

import (
	"fmt"
	"sort"

	"github.com/AbdelazizMoustafa10m/critpath/internal/task"
)

// Edge is a precedence constraint between two task indexes.
type Edge struct {
	ID   string
	From int
	To   int
	Type task.DependencyType
	Lag  int
}

// Graph is a validated, acyclic dependency graph.
type Graph struct {
	ids   []string
	index map[string]int
	deps  []task.Dependency
	edges []Edge
	out   [][]int // edge indexes keyed by predecessor
	in    [][]int // edge indexes keyed by successor
	order []int
}

// Build constructs a Graph from a project's tasks and dependencies.
//
// It returns *MissingReferenceError for an edge naming an unknown task,
// *InvalidDependencyError for self loops, duplicate pairs, or duplicate IDs,
// and *CycleError when the edges contain a cycle.
func Build(tasks []task.Task, deps []task.Dependency) (*Graph, error) {
	ids := make([]string, 0, len(tasks))
	for i := range tasks {
		ids = append(ids, tasks[i].ID)
	}
	return BuildFromIDs(ids, deps)
}

// BuildFromIDs is Build for callers that only hold task IDs.
func BuildFromIDs(taskIDs []string, deps []task.Dependency) (*Graph, error) {
	ids := make([]string, len(taskIDs))
	copy(ids, taskIDs)
	sort.Strings(ids)

	g := &Graph{
		ids:   ids,
		index: make(map[string]int, len(ids)),
		out:   make([][]int, len(ids)),
		in:    make([][]int, len(ids)),
	}
	for i, id := range ids {
		if id == "" {
			return nil, fmt.Errorf("building graph: task ID must not be empty")
		}
		if _, dup := g.index[id]; dup {
			return nil, fmt.Errorf("building graph: duplicate task ID %q", id)
		}
		g.index[id] = i
	}

	if err := g.addEdges(deps); err != nil {
		return nil, err
	}

	if cycle := g.detectCycle(); cycle != nil {
		return nil, &CycleError{Path: cycle}
	}

	g.order = g.topoOrder()
	return g, nil
}

// addEdges validates and indexes deps. Adjacency lists end up sorted by the
// far endpoint's index, then by dependency ID.
func (g *Graph) addEdges(deps []task.Dependency) error {
	pairs := make(map[[2]int]string, len(deps))
	seenIDs := make(map[string]bool, len(deps))

	g.deps = make([]task.Dependency, 0, len(deps))
	g.edges = make([]Edge, 0, len(deps))

	for _, d := range deps {
		if err := d.Validate(); err != nil {
			return &InvalidDependencyError{DependencyID: d.ID, Reason: err.Error()}
		}
		from, ok := g.index[d.Predecessor]
		if !ok {
			return &MissingReferenceError{DependencyID: d.ID, TaskID: d.Predecessor}
		}
		to, ok := g.index[d.Successor]
		if !ok {
			return &MissingReferenceError{DependencyID: d.ID, TaskID: d.Successor}
		}
		if d.ID != "" {
			if seenIDs[d.ID] {
				return &InvalidDependencyError{DependencyID: d.ID, Reason: "duplicate dependency ID"}
			}
			seenIDs[d.ID] = true
		}
		key := [2]int{from, to}
		if other, dup := pairs[key]; dup {
			return &InvalidDependencyError{
				DependencyID: d.ID,
				Reason:       fmt.Sprintf("%s already depends on %s via %q", d.Successor, d.Predecessor, other),
			}
		}
		pairs[key] = d.ID

		g.deps = append(g.deps, d)
		g.edges = append(g.edges, Edge{ID: d.ID, From: from, To: to, Type: d.Type, Lag: d.Lag})
	}

	for ei, e := range g.edges {
		g.out[e.From] = append(g.out[e.From], ei)
		g.in[e.To] = append(g.in[e.To], ei)
	}
	for i := range g.ids {
		g.sortAdjacency(g.out[i], func(e Edge) int { return e.To })
		g.sortAdjacency(g.in[i], func(e Edge) int { return e.From })
	}
	return nil
}

func (g *Graph) sortAdjacency(list []int, far func(Edge) int) {
	sort.Slice(list, func(a, b int) bool {
		ea, eb := g.edges[list[a]], g.edges[list[b]]
		if far(ea) != far(eb) {
			return far(ea) < far(eb)
		}
		return ea.ID < eb.ID
	})
}

// WithDependency returns a new Graph that also contains dep. When a
// dependency with the same non-empty ID already exists it is replaced. The
// receiver is never modified, so a rejected edge (cycle, missing reference,
// duplicate) leaves the current graph intact.
func (g *Graph) WithDependency(dep task.Dependency) (*Graph, error) {
	deps := make([]task.Dependency, 0, len(g.deps)+1)
	replaced := false
	for _, d := range g.deps {
		if dep.ID != "" && d.ID == dep.ID {
			deps = append(deps, dep)
			replaced = true
			continue
		}
		deps = append(deps, d)
	}
	if !replaced {
		deps = append(deps, dep)
	}
	return BuildFromIDs(g.ids, deps)
}

// Len returns the number of tasks.
func (g *Graph) Len() int { return len(g.ids) }

// ID returns the task ID at index i.
func (g *Graph) ID(i int) string { return g.ids[i] }

// IDs returns all task IDs in index (ascending ID) order.
func (g *Graph) IDs() []string {
	out := make([]string, len(g.ids))
	copy(out, g.ids)
	return out
}

// IndexOf returns the index of the task with the given ID.
func (g *Graph) IndexOf(id string) (int, bool) {
	i, ok := g.index[id]
	return i, ok
}

// Edge returns the edge at index ei.
func (g *Graph) Edge(ei int) Edge { return g.edges[ei] }

// Edges returns a copy of all edges in input order.
func (g *Graph) Edges() []Edge {
	out := make([]Edge, len(g.edges))
	copy(out, g.edges)
	return out
}

// Dependencies returns a copy of the dependencies the graph was built from.
func (g *Graph) Dependencies() []task.Dependency {
	out := make([]task.Dependency, len(g.deps))
	copy(out, g.deps)
	return out
}

// Incoming returns the indexes of edges whose successor is task i. The
// returned slice must not be modified.
func (g *Graph) Incoming(i int) []int { return g.in[i] }

// Outgoing returns the indexes of edges whose predecessor is task i. The
// returned slice must not be modified.
func (g *Graph) Outgoing(i int) []int { return g.out[i] }

// Sources returns task indexes without predecessors, ascending.
func (g *Graph) Sources() []int {
	var out []int
	for i := range g.ids {
		if len(g.in[i]) == 0 {
			out = append(out, i)
		}
	}
	return out
}

// Sinks returns task indexes without successors, ascending.
func (g *Graph) Sinks() []int {
	var out []int
	for i := range g.ids {
		if len(g.out[i]) == 0 {
			out = append(out, i)
		}
	}
	return out
}

// TopoOrder returns task indexes in topological order. Among tasks that are
// ready at the same time, the smaller task ID comes first.
func (g *Graph) TopoOrder() []int {
	out := make([]int, len(g.order))
	copy(out, g.order)
	return out
}

// ReverseOrder returns TopoOrder reversed, for backward traversal.
func (g *Graph) ReverseOrder() []int {
	n := len(g.order)
	out := make([]int, n)
	for i, v := range g.order {
		out[n-1-i] = v
	}
	return out
}

// TopoIDs returns the topological order as task IDs.
func (g *Graph) TopoIDs() []string {
	out := make([]string, len(g.order))
	for i, v := range g.order {
		out[i] = g.ids[v]
	}
	return out
}
