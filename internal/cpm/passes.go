// Package cpm implements the critical path method over a dependency graph:
// a forward pass for early start/finish, a backward pass for late
// start/finish, slack, and reconstruction of the critical paths.
package cpm

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/AbdelazizMoustafa10m/critpath/internal/calendar"
	"github.com/AbdelazizMoustafa10m/critpath/internal/graph"
	"github.com/AbdelazizMoustafa10m/critpath/internal/task"
)

// Passes holds the offsets produced by one forward and backward pass. All
// slices are indexed by graph task index.
type Passes struct {
	Graph    *graph.Graph
	Calendar *calendar.Calendar
	// Start is the project start snapped to a working day.
	Start calendar.Date

	Duration    []int
	EarlyStart  []int
	EarlyFinish []int
	LateStart   []int
	LateFinish  []int

	// Tight is indexed by edge index and is true when the edge attains its
	// successor's early start.
	Tight []bool
	// AtStart is indexed by task index and is true when the project start
	// is the binding lower bound on the task's early start. Sources are
	// always at the start; a task with predecessors is when none of its
	// incoming bounds is later than the start.
	AtStart []bool

	// Finish is the latest early finish over all tasks.
	Finish int
	// Anchor is the late finish seeded into sinks when it is shared by all of
	// them (target date or project anchor), or -1 for AnchorOwnFinish.
	Anchor int
}

// Slack returns LS - ES for task index v.
func (p *Passes) Slack(v int) int {
	return p.LateStart[v] - p.EarlyStart[v]
}

// ComputePasses runs the forward and backward passes.
//
// It fails with *InvalidLagError when a lag exceeds in.MaxLagDays or when the
// target finish forces negative slack, and with a wrapped
// calendar.ErrNoWorkingDays when the calendar has no usable working day.
func ComputePasses(ctx context.Context, in Input) (*Passes, error) {
	if in.Graph == nil {
		return nil, fmt.Errorf("computing passes: graph is required")
	}
	if in.Calendar == nil {
		return nil, fmt.Errorf("computing passes: calendar is required")
	}
	anchor := in.Anchor
	if anchor == "" {
		anchor = AnchorOwnFinish
	}
	if !anchor.IsValid() {
		return nil, fmt.Errorf("computing passes: unknown sink anchor %q", anchor)
	}

	g := in.Graph
	n := g.Len()

	start, err := in.Calendar.Normalize(in.Start)
	if err != nil {
		return nil, fmt.Errorf("normalizing project start %s: %w", in.Start, err)
	}

	p := &Passes{
		Graph:       g,
		Calendar:    in.Calendar,
		Start:       start,
		Duration:    make([]int, n),
		EarlyStart:  make([]int, n),
		EarlyFinish: make([]int, n),
		LateStart:   make([]int, n),
		LateFinish:  make([]int, n),
		Tight:       make([]bool, len(g.Edges())),
		AtStart:     make([]bool, n),
		Anchor:      -1,
	}
	for i := 0; i < n; i++ {
		id := g.ID(i)
		d, ok := in.Durations[id]
		if !ok {
			return nil, fmt.Errorf("computing passes: no duration for task %q", id)
		}
		if d < 0 {
			return nil, fmt.Errorf("computing passes: task %q has negative duration %d", id, d)
		}
		p.Duration[i] = d
	}

	if err := checkLags(g, in.MaxLagDays); err != nil {
		return nil, err
	}

	target := -1
	if in.TargetFinish != nil {
		target, err = in.Calendar.WorkingDuration(start, *in.TargetFinish)
		if err != nil {
			return nil, fmt.Errorf("measuring target finish %s: %w", *in.TargetFinish, err)
		}
		if target < 0 {
			return nil, &InvalidLagError{
				Reason: fmt.Sprintf("target finish %s is before project start %s", *in.TargetFinish, start),
			}
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p.forward()

	switch {
	case target >= 0:
		p.Anchor = target
	case anchor == AnchorProjectFinish:
		p.Anchor = p.Finish
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p.backward(target >= 0)

	if err := p.checkFeasible(in.TargetFinish); err != nil {
		return nil, err
	}
	return p, nil
}

func checkLags(g *graph.Graph, maxLag int) error {
	if maxLag <= 0 {
		return nil
	}
	var ids []string
	for _, e := range g.Edges() {
		if e.Lag > maxLag || e.Lag < -maxLag {
			ids = append(ids, e.ID)
		}
	}
	if len(ids) == 0 {
		return nil
	}
	sort.Strings(ids)
	return &InvalidLagError{
		DependencyIDs: ids,
		Reason:        fmt.Sprintf("lag exceeds %d days", maxLag),
	}
}

func (p *Passes) forward() {
	g := p.Graph
	for _, v := range g.TopoOrder() {
		es := 0
		for _, ei := range g.Incoming(v) {
			es = max(es, p.startBound(ei))
		}
		p.EarlyStart[v] = es
		p.AtStart[v] = es == 0
		p.EarlyFinish[v] = es + p.Duration[v]
		p.Finish = max(p.Finish, p.EarlyFinish[v])

		for _, ei := range g.Incoming(v) {
			p.Tight[ei] = p.startBound(ei) == es
		}
	}
}

// startBound is the lower bound edge ei places on its successor's early
// start.
func (p *Passes) startBound(ei int) int {
	e := p.Graph.Edge(ei)
	d := p.Duration[e.To]
	switch e.Type {
	case task.StartToStart:
		return p.EarlyStart[e.From] + e.Lag
	case task.FinishToFinish:
		return p.EarlyFinish[e.From] + e.Lag - d
	case task.StartToFinish:
		return p.EarlyStart[e.From] + e.Lag - d
	default:
		return p.EarlyFinish[e.From] + e.Lag
	}
}

func (p *Passes) backward(capped bool) {
	g := p.Graph
	for _, v := range g.ReverseOrder() {
		out := g.Outgoing(v)

		var lf int
		switch {
		case len(out) > 0:
			lf = math.MaxInt
			for _, ei := range out {
				lf = min(lf, p.finishBound(ei))
			}
		case p.Anchor >= 0:
			lf = p.Anchor
		default:
			lf = p.EarlyFinish[v]
		}
		if capped {
			lf = min(lf, p.Anchor)
		}

		p.LateFinish[v] = lf
		p.LateStart[v] = lf - p.Duration[v]
	}
}

// finishBound is the upper bound edge ei places on its predecessor's late
// finish.
func (p *Passes) finishBound(ei int) int {
	e := p.Graph.Edge(ei)
	d := p.Duration[e.From]
	switch e.Type {
	case task.StartToStart:
		return p.LateStart[e.To] - e.Lag + d
	case task.FinishToFinish:
		return p.LateFinish[e.To] - e.Lag
	case task.StartToFinish:
		return p.LateFinish[e.To] - e.Lag + d
	default:
		return p.LateStart[e.To] - e.Lag
	}
}

func (p *Passes) checkFeasible(target *calendar.Date) error {
	g := p.Graph
	var taskIDs []string
	depSet := make(map[string]bool)
	for v := 0; v < g.Len(); v++ {
		if p.Slack(v) >= 0 {
			continue
		}
		taskIDs = append(taskIDs, g.ID(v))
		for _, ei := range g.Incoming(v) {
			if p.Tight[ei] {
				depSet[g.Edge(ei).ID] = true
			}
		}
	}
	if len(taskIDs) == 0 {
		return nil
	}

	depIDs := make([]string, 0, len(depSet))
	for id := range depSet {
		depIDs = append(depIDs, id)
	}
	sort.Strings(depIDs)

	reason := fmt.Sprintf("%d task(s) have negative slack", len(taskIDs))
	if target != nil {
		reason = fmt.Sprintf("target finish %s cannot be met: %s", *target, reason)
	}
	return &InvalidLagError{TaskIDs: taskIDs, DependencyIDs: depIDs, Reason: reason}
}
