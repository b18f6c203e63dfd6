package project

import (
	"fmt"
	"sort"

	"github.com/AbdelazizMoustafa10m/critpath/internal/calendar"
	"github.com/AbdelazizMoustafa10m/critpath/internal/cpm"
)

// BaselineTask is a task as captured by a baseline.
type BaselineTask struct {
	ID            string        `json:"id" yaml:"id" toml:"id"`
	Title         string        `json:"title" yaml:"title" toml:"title"`
	Start         calendar.Date `json:"start_date" yaml:"start_date" toml:"start_date"`
	End           calendar.Date `json:"end_date" yaml:"end_date" toml:"end_date"`
	Duration      int           `json:"duration" yaml:"duration" toml:"duration"`
	EstimatedCost float64       `json:"estimated_cost" yaml:"estimated_cost" toml:"estimated_cost"`
}

// Baseline is a numbered snapshot of the planned dates and costs of a
// project, used to measure later slippage.
type Baseline struct {
	Number int            `json:"number" yaml:"number" toml:"number"`
	Name   string         `json:"name" yaml:"name" toml:"name"`
	Budget float64        `json:"budget" yaml:"budget" toml:"budget"`
	Start  calendar.Date  `json:"start_date" yaml:"start_date" toml:"start_date"`
	End    calendar.Date  `json:"end_date" yaml:"end_date" toml:"end_date"`
	Tasks  []BaselineTask `json:"tasks" yaml:"tasks" toml:"tasks"`
}

// SetBaseline captures the current task dates as a new baseline and stamps
// each task's baseline start and end. An empty name becomes "Baseline N".
// Baselines do not affect the schedule.
func (s *Store) SetBaseline(projectID, name string) (Baseline, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.projects[projectID]
	if !ok {
		return Baseline{}, fmt.Errorf("project %q: %w", projectID, ErrNotFound)
	}
	p := &e.project

	number := 1
	if n := len(p.Baselines); n > 0 {
		number = p.Baselines[n-1].Number + 1
	}
	if name == "" {
		name = fmt.Sprintf("Baseline %d", number)
	}

	b := Baseline{Number: number, Name: name, Budget: p.Budget, Start: p.Config.Start, End: p.Config.Start}
	for i := range p.Tasks {
		t := &p.Tasks[i]
		b.Tasks = append(b.Tasks, BaselineTask{
			ID:            t.ID,
			Title:         t.Title,
			Start:         t.StartDate,
			End:           t.EndDate,
			Duration:      t.Duration,
			EstimatedCost: t.EstimatedCost,
		})
		start, end := t.StartDate, t.EndDate
		t.BaselineStart, t.BaselineEnd = &start, &end
		if t.EndDate > b.End {
			b.End = t.EndDate
		}
	}
	p.Baselines = append(p.Baselines, b)

	s.logger.Info("baseline captured", "project", projectID, "number", number, "tasks", len(b.Tasks))
	out := b
	out.Tasks = append([]BaselineTask(nil), b.Tasks...)
	return out, nil
}

// Variance compares a task's scheduled early dates to its baseline. Positive
// values mean the task now starts or finishes later than planned.
type Variance struct {
	TaskID         string        `json:"task_id"`
	BaselineStart  calendar.Date `json:"baseline_start"`
	BaselineEnd    calendar.Date `json:"baseline_end"`
	Start          calendar.Date `json:"start"`
	Finish         calendar.Date `json:"finish"`
	StartVariance  int           `json:"start_variance_days"`
	FinishVariance int           `json:"finish_variance_days"`
}

// ScheduleVariance reports the calendar-day variance of every baselined task
// in p against res, sorted by task ID.
func ScheduleVariance(p Project, res *cpm.Result) []Variance {
	var out []Variance
	for _, t := range p.Tasks {
		if t.BaselineStart == nil || t.BaselineEnd == nil {
			continue
		}
		tt, ok := res.Task(t.ID)
		if !ok {
			continue
		}
		out = append(out, Variance{
			TaskID:         t.ID,
			BaselineStart:  *t.BaselineStart,
			BaselineEnd:    *t.BaselineEnd,
			Start:          tt.EarlyStart,
			Finish:         tt.EarlyFinish,
			StartVariance:  tt.EarlyStart.Sub(*t.BaselineStart),
			FinishVariance: tt.EarlyFinish.Sub(*t.BaselineEnd),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TaskID < out[j].TaskID })
	return out
}
