package cpm

import (
	"fmt"
	"sort"
)

// Analysis is the slack and critical path view of one set of passes.
type Analysis struct {
	Slack map[string]int
	// Critical lists tasks with zero slack in topological order.
	Critical []string
	// Paths are chains of critical tasks joined by tight edges, each written
	// from its first task to the one that meets the finish.
	Paths [][]string
	// Tight lists the IDs of tight dependencies, sorted.
	Tight     []string
	Truncated bool
	Warnings  []Diagnostic
}

// IdentifyCriticalPath derives slack and the critical paths from p.
//
// A path ends at a critical task that is a sink, or whose late finish equals
// the shared finish anchor, and that has no tight edge into another critical
// task. From there it is walked backwards through tight edges whose
// predecessor is critical. Every branch is reported, so ties yield several
// paths. Critical tasks left off every path are reported as warnings.
func IdentifyCriticalPath(p *Passes, opts Options) *Analysis {
	g := p.Graph
	n := g.Len()
	maxPaths := opts.MaxPaths
	if maxPaths <= 0 {
		maxPaths = DefaultMaxPaths
	}

	a := &Analysis{Slack: make(map[string]int, n)}
	critical := make([]bool, n)
	for v := 0; v < n; v++ {
		s := p.Slack(v)
		a.Slack[g.ID(v)] = s
		critical[v] = s == 0
	}
	for _, v := range g.TopoOrder() {
		if critical[v] {
			a.Critical = append(a.Critical, g.ID(v))
		}
	}
	for ei, e := range g.Edges() {
		if p.Tight[ei] {
			a.Tight = append(a.Tight, e.ID)
		}
	}
	sort.Strings(a.Tight)

	criticalEdge := func(ei int) bool {
		e := g.Edge(ei)
		return p.Tight[ei] && critical[e.From] && critical[e.To]
	}

	onPath := make([]bool, n)
	var stack []int
	var walk func(v int)
	walk = func(v int) {
		if a.Truncated {
			return
		}
		stack = append(stack, v)
		defer func() { stack = stack[:len(stack)-1] }()

		extended := false
		for _, ei := range g.Incoming(v) {
			if !criticalEdge(ei) {
				continue
			}
			extended = true
			walk(g.Edge(ei).From)
			if a.Truncated {
				return
			}
		}
		if extended {
			return
		}
		if len(a.Paths) == maxPaths {
			a.Truncated = true
			return
		}
		path := make([]string, len(stack))
		for i := range stack {
			u := stack[len(stack)-1-i]
			path[i] = g.ID(u)
			onPath[u] = true
		}
		a.Paths = append(a.Paths, path)
	}

	for v := 0; v < n && !a.Truncated; v++ {
		if !critical[v] || !isPathEnd(p, v, criticalEdge) {
			continue
		}
		walk(v)
	}
	sort.Slice(a.Paths, func(i, j int) bool { return lessPath(a.Paths[i], a.Paths[j]) })

	if a.Truncated {
		a.Warnings = append(a.Warnings, Diagnostic{
			Message: fmt.Sprintf("critical path enumeration stopped after %d paths", maxPaths),
		})
		return a
	}
	for _, v := range g.TopoOrder() {
		if critical[v] && !onPath[v] {
			a.Warnings = append(a.Warnings, Diagnostic{
				TaskID:  g.ID(v),
				Message: "critical task is not on a critical path reaching the project finish",
			})
		}
	}
	return a
}

func isPathEnd(p *Passes, v int, criticalEdge func(int) bool) bool {
	out := p.Graph.Outgoing(v)
	if len(out) > 0 && (p.Anchor < 0 || p.LateFinish[v] != p.Anchor) {
		return false
	}
	for _, ei := range out {
		if criticalEdge(ei) {
			return false
		}
	}
	return true
}

func lessPath(a, b []string) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}
