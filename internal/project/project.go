// Package project adapts the external project data service to the scheduling
// core. It holds projects in memory, hands out consistent snapshots for
// recomputation, applies task, dependency and Kanban edits, and reports which
// edits invalidate the schedule.
package project

import (
	"errors"
	"fmt"
	"sort"

	"github.com/AbdelazizMoustafa10m/critpath/internal/calendar"
	"github.com/AbdelazizMoustafa10m/critpath/internal/task"
)

// ErrNotFound is returned for an unknown project, task or dependency.
var ErrNotFound = errors.New("not found")

// Config is the scheduling configuration of a project. The calendar mode is
// fixed when the project is configured.
type Config struct {
	Start        calendar.Date   `json:"start_date" yaml:"start_date" toml:"start_date"`
	TargetFinish *calendar.Date  `json:"target_finish,omitempty" yaml:"target_finish,omitempty" toml:"target_finish,omitempty"`
	Mode         calendar.Mode   `json:"calendar_mode" yaml:"calendar_mode" toml:"calendar_mode"`
	Holidays     []calendar.Date `json:"holidays,omitempty" yaml:"holidays,omitempty" toml:"holidays,omitempty"`
}

// Calendar builds the project's calendar.
func (c Config) Calendar(opts ...calendar.Option) (*calendar.Calendar, error) {
	mode := c.Mode
	if mode == "" {
		mode = calendar.ModeCalendar
	}
	return calendar.New(mode, c.Holidays, opts...)
}

// Project is one project as delivered by the data service.
type Project struct {
	ID           string            `json:"id" yaml:"id" toml:"id"`
	Name         string            `json:"name" yaml:"name" toml:"name"`
	Description  string            `json:"description,omitempty" yaml:"description,omitempty" toml:"description,omitempty"`
	Budget       float64           `json:"budget" yaml:"budget" toml:"budget"`
	ActualCost   float64           `json:"actual_cost" yaml:"actual_cost" toml:"actual_cost"`
	Config       Config            `json:"config" yaml:"config" toml:"config"`
	Tasks        []task.Task       `json:"tasks" yaml:"tasks" toml:"tasks"`
	Dependencies []task.Dependency `json:"dependencies" yaml:"dependencies" toml:"dependencies"`
	Baselines    []Baseline        `json:"baselines,omitempty" yaml:"baselines,omitempty" toml:"baselines,omitempty"`
}

// Validate checks field-level invariants of the project, its tasks and its
// dependencies. Graph-level problems (unknown references, cycles) surface
// when the schedule is computed.
func (p *Project) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("project ID must not be empty")
	}
	if p.Config.Mode != "" && !p.Config.Mode.IsValid() {
		return fmt.Errorf("project %q: unknown calendar mode %q", p.ID, p.Config.Mode)
	}
	if p.Config.TargetFinish != nil && *p.Config.TargetFinish < p.Config.Start {
		return fmt.Errorf("project %q: target finish %s is before start %s", p.ID, *p.Config.TargetFinish, p.Config.Start)
	}
	seen := make(map[string]bool, len(p.Tasks))
	for i := range p.Tasks {
		if err := p.Tasks[i].Validate(); err != nil {
			return fmt.Errorf("project %q: %w", p.ID, err)
		}
		if seen[p.Tasks[i].ID] {
			return fmt.Errorf("project %q: duplicate task %q", p.ID, p.Tasks[i].ID)
		}
		seen[p.Tasks[i].ID] = true
	}
	for i := range p.Dependencies {
		if err := p.Dependencies[i].Validate(); err != nil {
			return fmt.Errorf("project %q: %w", p.ID, err)
		}
	}
	return nil
}

// Task returns the task with the given ID.
func (p *Project) Task(id string) (*task.Task, bool) {
	for i := range p.Tasks {
		if p.Tasks[i].ID == id {
			return &p.Tasks[i], true
		}
	}
	return nil, false
}

// clone returns a deep copy of p with tasks and dependencies sorted by ID.
func (p *Project) clone() Project {
	out := *p
	out.Config.Holidays = append([]calendar.Date(nil), p.Config.Holidays...)
	if p.Config.TargetFinish != nil {
		tf := *p.Config.TargetFinish
		out.Config.TargetFinish = &tf
	}

	out.Tasks = make([]task.Task, len(p.Tasks))
	for i, t := range p.Tasks {
		if t.BaselineStart != nil {
			d := *t.BaselineStart
			t.BaselineStart = &d
		}
		if t.BaselineEnd != nil {
			d := *t.BaselineEnd
			t.BaselineEnd = &d
		}
		out.Tasks[i] = t
	}
	sort.Slice(out.Tasks, func(i, j int) bool { return out.Tasks[i].ID < out.Tasks[j].ID })

	out.Dependencies = append([]task.Dependency(nil), p.Dependencies...)
	sort.Slice(out.Dependencies, func(i, j int) bool { return out.Dependencies[i].ID < out.Dependencies[j].ID })

	out.Baselines = make([]Baseline, len(p.Baselines))
	for i, b := range p.Baselines {
		b.Tasks = append([]BaselineTask(nil), b.Tasks...)
		out.Baselines[i] = b
	}
	return out
}
