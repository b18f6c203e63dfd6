package cpm

import (
	"github.com/AbdelazizMoustafa10m/critpath/internal/calendar"
	"github.com/AbdelazizMoustafa10m/critpath/internal/graph"
)

// SinkAnchor decides the late finish of tasks without successors when the
// project has no target finish date.
type SinkAnchor string

const (
	// AnchorOwnFinish seeds each sink with its own early finish.
	AnchorOwnFinish SinkAnchor = "own"

	// AnchorProjectFinish seeds every sink with the latest early finish of
	// the project, the textbook CPM convention.
	AnchorProjectFinish SinkAnchor = "project"
)

// IsValid reports whether a is a known anchor.
func (a SinkAnchor) IsValid() bool {
	return a == AnchorOwnFinish || a == AnchorProjectFinish
}

// Input is everything one CPM computation needs. Durations and lags are in
// days of the calendar's mode.
type Input struct {
	Graph     *graph.Graph
	Durations map[string]int
	Calendar  *calendar.Calendar
	Start     calendar.Date
	// TargetFinish, when set, seeds every sink and caps every task's late
	// finish.
	TargetFinish *calendar.Date
	// Anchor applies only without a TargetFinish. Empty means AnchorOwnFinish.
	Anchor SinkAnchor
	// MaxLagDays rejects lags whose magnitude exceeds it. Zero disables the
	// check.
	MaxLagDays int
}

// Options tunes critical path reconstruction.
type Options struct {
	// MaxPaths caps the number of reported critical paths. Zero means
	// DefaultMaxPaths.
	MaxPaths int
}

// DefaultMaxPaths is used when Options.MaxPaths is zero.
const DefaultMaxPaths = 64

// TaskTimes is the schedule of one task. The *Day fields are offsets from
// the project start in calendar-mode days; finish values are exclusive
// boundaries, so EarlyFinishDay = EarlyStartDay + Duration.
type TaskTimes struct {
	ID       string `json:"id"`
	Duration int    `json:"duration"`

	EarlyStart  calendar.Date `json:"early_start"`
	EarlyFinish calendar.Date `json:"early_finish"`
	LateStart   calendar.Date `json:"late_start"`
	LateFinish  calendar.Date `json:"late_finish"`

	EarlyStartDay  int `json:"early_start_day"`
	EarlyFinishDay int `json:"early_finish_day"`
	LateStartDay   int `json:"late_start_day"`
	LateFinishDay  int `json:"late_finish_day"`

	Slack      int  `json:"slack"`
	IsCritical bool `json:"is_critical"`
}

// Diagnostic is a non-fatal finding about a computed schedule.
type Diagnostic struct {
	TaskID  string `json:"task_id,omitempty"`
	Message string `json:"message"`
}

// Result is a complete schedule. It is built in full before it is returned
// and never modified afterwards.
type Result struct {
	ProjectStart  calendar.Date `json:"project_start"`
	ProjectFinish calendar.Date `json:"project_finish"`
	DurationDays  int           `json:"duration_days"`
	Mode          calendar.Mode `json:"calendar_mode"`
	Tasks         []TaskTimes   `json:"tasks"`
	TopoOrder     []string      `json:"topo_order"`
	CriticalTasks []string      `json:"critical_tasks"`
	CriticalPaths [][]string    `json:"critical_paths"`
	// TightEdges lists the dependency IDs that determine their successor's
	// early start.
	TightEdges []string     `json:"tight_edges,omitempty"`
	Warnings   []Diagnostic `json:"warnings,omitempty"`
}

// Task returns the times of the task with the given ID.
func (r *Result) Task(id string) (TaskTimes, bool) {
	for _, t := range r.Tasks {
		if t.ID == id {
			return t, true
		}
	}
	return TaskTimes{}, false
}
