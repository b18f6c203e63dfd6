// Package task defines the entities shared by the scheduler and the Kanban
// board: tasks, statuses, priorities and typed dependencies.
package task

import (
	"fmt"

	"github.com/AbdelazizMoustafa10m/critpath/internal/calendar"
)

// Status is the Kanban column a task currently sits in.
type Status string

const (
	// StatusBacklog holds work that has not been planned yet.
	StatusBacklog Status = "backlog"

	// StatusTodo holds planned work that has not started.
	StatusTodo Status = "todo"

	// StatusInProgress holds work that is being executed.
	StatusInProgress Status = "in_progress"

	// StatusReview holds finished work awaiting review.
	StatusReview Status = "review"

	// StatusDone holds accepted work.
	StatusDone Status = "done"
)

// validStatuses is the set of all known Status values.
var validStatuses = map[Status]bool{
	StatusBacklog:    true,
	StatusTodo:       true,
	StatusInProgress: true,
	StatusReview:     true,
	StatusDone:       true,
}

// Statuses returns every status in board display order.
func Statuses() []Status {
	return []Status{StatusBacklog, StatusTodo, StatusInProgress, StatusReview, StatusDone}
}

// IsValid returns true if the status is a recognized value.
func (s Status) IsValid() bool {
	return validStatuses[s]
}

// Priority is the business priority of a task. It has no effect on
// scheduling.
type Priority string

const (
	// PriorityLow marks work that can slip without affecting stakeholders.
	PriorityLow Priority = "low"

	// PriorityMedium is the default for tasks that do not name a priority.
	PriorityMedium Priority = "medium"

	// PriorityHigh marks work stakeholders are waiting on.
	PriorityHigh Priority = "high"

	// PriorityCritical marks work that blocks a release or a commitment.
	PriorityCritical Priority = "critical"
)

var validPriorities = map[Priority]bool{
	PriorityLow:      true,
	PriorityMedium:   true,
	PriorityHigh:     true,
	PriorityCritical: true,
}

// IsValid returns true if the priority is a recognized value.
func (p Priority) IsValid() bool {
	return validPriorities[p]
}

// Task is a unit of project work as delivered by the project data service.
// Schedule attributes (early/late times, slack, criticality) are derived by
// the cpm package and are not stored here.
type Task struct {
	ID          string   `json:"id" yaml:"id" toml:"id"`
	Title       string   `json:"title" yaml:"title" toml:"title"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty" toml:"description,omitempty"`
	Status      Status   `json:"status" yaml:"status" toml:"status"`
	Priority    Priority `json:"priority" yaml:"priority" toml:"priority"`

	StartDate calendar.Date `json:"start_date" yaml:"start_date" toml:"start_date"`
	EndDate   calendar.Date `json:"end_date" yaml:"end_date" toml:"end_date"`
	// Duration is in days of the project's calendar mode.
	Duration int `json:"duration" yaml:"duration" toml:"duration"`
	Progress int `json:"progress" yaml:"progress" toml:"progress"`

	EstimatedHours float64 `json:"estimated_hours" yaml:"estimated_hours" toml:"estimated_hours"`
	ActualHours    float64 `json:"actual_hours" yaml:"actual_hours" toml:"actual_hours"`
	EstimatedCost  float64 `json:"estimated_cost" yaml:"estimated_cost" toml:"estimated_cost"`
	ActualCost     float64 `json:"actual_cost" yaml:"actual_cost" toml:"actual_cost"`

	BaselineStart *calendar.Date `json:"baseline_start,omitempty" yaml:"baseline_start,omitempty" toml:"baseline_start,omitempty"`
	BaselineEnd   *calendar.Date `json:"baseline_end,omitempty" yaml:"baseline_end,omitempty" toml:"baseline_end,omitempty"`

	// ParentID groups subtasks under a parent. It is not a precedence
	// constraint.
	ParentID string `json:"parent_id,omitempty" yaml:"parent_id,omitempty" toml:"parent_id,omitempty"`

	// KanbanOrder is the task's position within its status column.
	KanbanOrder int `json:"kanban_order" yaml:"kanban_order" toml:"kanban_order"`
}

// Validate checks the field-level invariants of a task. It does not consult
// the calendar; see Normalize for deriving a missing duration.
func (t *Task) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("task ID must not be empty")
	}
	if !t.Status.IsValid() {
		return fmt.Errorf("task %q: unknown status %q", t.ID, t.Status)
	}
	if !t.Priority.IsValid() {
		return fmt.Errorf("task %q: unknown priority %q", t.ID, t.Priority)
	}
	if t.EndDate < t.StartDate {
		return fmt.Errorf("task %q: end date %s is before start date %s", t.ID, t.EndDate, t.StartDate)
	}
	if t.Duration < 0 {
		return fmt.Errorf("task %q: duration %d must not be negative", t.ID, t.Duration)
	}
	if t.Progress < 0 || t.Progress > 100 {
		return fmt.Errorf("task %q: progress %d must be between 0 and 100", t.ID, t.Progress)
	}
	if t.EstimatedHours < 0 || t.ActualHours < 0 || t.EstimatedCost < 0 || t.ActualCost < 0 {
		return fmt.Errorf("task %q: hours and costs must not be negative", t.ID)
	}
	return nil
}

// Normalize fills defaults the data service may omit: status todo, priority
// medium, and a duration derived from the dates in the given calendar when
// Duration is zero and the dates span at least one day. When Duration is
// set, EndDate is re-derived from StartDate so that duration = end - start
// holds in the active calendar. A zero-duration task with no end date is a
// milestone and ends on its start date.
func (t *Task) Normalize(cal *calendar.Calendar) error {
	if t.Status == "" {
		t.Status = StatusTodo
	}
	if t.Priority == "" {
		t.Priority = PriorityMedium
	}
	if t.Duration == 0 && t.EndDate == 0 {
		t.EndDate = t.StartDate
		return nil
	}
	if t.Duration == 0 && t.EndDate > t.StartDate {
		d, err := cal.WorkingDuration(t.StartDate, t.EndDate)
		if err != nil {
			return fmt.Errorf("task %q: deriving duration: %w", t.ID, err)
		}
		t.Duration = d
		return nil
	}
	if t.Duration > 0 {
		end, err := cal.AddDays(t.StartDate, t.Duration)
		if err != nil {
			return fmt.Errorf("task %q: deriving end date: %w", t.ID, err)
		}
		t.EndDate = end
	}
	return nil
}
