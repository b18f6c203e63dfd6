package project

import (
	"sort"

	"github.com/AbdelazizMoustafa10m/critpath/internal/calendar"
	"github.com/AbdelazizMoustafa10m/critpath/internal/cpm"
	"github.com/AbdelazizMoustafa10m/critpath/internal/task"
)

// GanttTask is one bar of a Gantt chart.
type GanttTask struct {
	ID         string        `json:"id"`
	Text       string        `json:"text"`
	StartDate  calendar.Date `json:"start_date"`
	EndDate    calendar.Date `json:"end_date"`
	Duration   int           `json:"duration"`
	Progress   int           `json:"progress"`
	Parent     string        `json:"parent,omitempty"`
	IsCritical bool          `json:"is_critical"`
	Slack      *int          `json:"slack,omitempty"`
}

// GanttLink is one dependency arrow of a Gantt chart.
type GanttLink struct {
	ID     string              `json:"id"`
	Source string              `json:"source"`
	Target string              `json:"target"`
	Type   task.DependencyType `json:"type"`
	Lag    int                 `json:"lag"`
}

// Gantt is the chart payload: bars under "data" and arrows under "links".
type Gantt struct {
	Data  []GanttTask `json:"data"`
	Links []GanttLink `json:"links"`
}

// BuildGantt renders p as a Gantt chart. With a schedule, bars use the early
// dates and carry slack and criticality; without one they use the stored
// task dates. Bars are ordered by start date, then ID.
func BuildGantt(p Project, res *cpm.Result) Gantt {
	g := Gantt{Data: make([]GanttTask, 0, len(p.Tasks)), Links: make([]GanttLink, 0, len(p.Dependencies))}

	for _, t := range p.Tasks {
		bar := GanttTask{
			ID:        t.ID,
			Text:      t.Title,
			StartDate: t.StartDate,
			EndDate:   t.EndDate,
			Duration:  t.Duration,
			Progress:  t.Progress,
			Parent:    t.ParentID,
		}
		if res != nil {
			if tt, ok := res.Task(t.ID); ok {
				slack := tt.Slack
				bar.StartDate = tt.EarlyStart
				bar.EndDate = tt.EarlyFinish
				bar.IsCritical = tt.IsCritical
				bar.Slack = &slack
			}
		}
		g.Data = append(g.Data, bar)
	}
	sort.Slice(g.Data, func(i, j int) bool {
		if g.Data[i].StartDate != g.Data[j].StartDate {
			return g.Data[i].StartDate < g.Data[j].StartDate
		}
		return g.Data[i].ID < g.Data[j].ID
	})

	for _, d := range p.Dependencies {
		g.Links = append(g.Links, GanttLink{ID: d.ID, Source: d.Predecessor, Target: d.Successor, Type: d.Type, Lag: d.Lag})
	}
	sort.Slice(g.Links, func(i, j int) bool { return g.Links[i].ID < g.Links[j].ID })
	return g
}
