package cpm

import (
	"context"
	"fmt"

	"github.com/AbdelazizMoustafa10m/critpath/internal/calendar"
)

// Analyze runs both passes, identifies the critical paths and renders dates.
// The returned Result is complete; on error no partial result is returned.
func Analyze(ctx context.Context, in Input, opts Options) (*Result, error) {
	p, err := ComputePasses(ctx, in)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	a := IdentifyCriticalPath(p, opts)

	cal := p.Calendar
	date := func(offset int) (calendar.Date, error) {
		return cal.AddDays(p.Start, offset)
	}

	finish, err := date(p.Finish)
	if err != nil {
		return nil, fmt.Errorf("rendering project finish: %w", err)
	}

	g := p.Graph
	res := &Result{
		ProjectStart:  p.Start,
		ProjectFinish: finish,
		DurationDays:  p.Finish,
		Mode:          cal.Mode(),
		Tasks:         make([]TaskTimes, 0, g.Len()),
		TopoOrder:     g.TopoIDs(),
		CriticalTasks: a.Critical,
		CriticalPaths: a.Paths,
		TightEdges:    a.Tight,
		Warnings:      a.Warnings,
	}
	if res.CriticalTasks == nil {
		res.CriticalTasks = []string{}
	}
	if res.CriticalPaths == nil {
		res.CriticalPaths = [][]string{}
	}

	for v := 0; v < g.Len(); v++ {
		tt := TaskTimes{
			ID:             g.ID(v),
			Duration:       p.Duration[v],
			EarlyStartDay:  p.EarlyStart[v],
			EarlyFinishDay: p.EarlyFinish[v],
			LateStartDay:   p.LateStart[v],
			LateFinishDay:  p.LateFinish[v],
			Slack:          p.Slack(v),
			IsCritical:     p.Slack(v) == 0,
		}
		offsets := []struct {
			day int
			out *calendar.Date
		}{
			{tt.EarlyStartDay, &tt.EarlyStart},
			{tt.EarlyFinishDay, &tt.EarlyFinish},
			{tt.LateStartDay, &tt.LateStart},
			{tt.LateFinishDay, &tt.LateFinish},
		}
		for _, o := range offsets {
			d, err := date(o.day)
			if err != nil {
				return nil, fmt.Errorf("rendering dates for task %q: %w", tt.ID, err)
			}
			*o.out = d
		}
		res.Tasks = append(res.Tasks, tt)
	}
	return res, nil
}
