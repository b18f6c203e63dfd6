package schedule

import (
	"fmt"
	"time"

	"github.com/AbdelazizMoustafa10m/critpath/internal/cpm"
)

// State is the lifecycle position of a project's schedule.
type State string

const (
	// StateDirty means the published schedule (if any) no longer reflects
	// the project. Controllers start dirty.
	StateDirty State = "dirty"

	// StateComputing means a recomputation is running.
	StateComputing State = "computing"

	// StateClean means the published schedule was derived from the current
	// project data.
	StateClean State = "clean"

	// StateFailed means the last recomputation was rejected. The previous
	// clean schedule, if any, is still served.
	StateFailed State = "failed"
)

// Status is the presentation form of a State: Clean or Failed, with dirty
// and computing schedules reported by their own names.
func (s State) Status() string {
	switch s {
	case StateClean:
		return "Clean"
	case StateFailed:
		return "Failed"
	case StateComputing:
		return "Computing"
	default:
		return "Dirty"
	}
}

// Event type constants identify the lifecycle milestone of an Event.
const (
	EventDirty      = "dirty"
	EventStarted    = "recompute_started"
	EventUnchanged  = "recompute_unchanged"
	EventSuperseded = "recompute_superseded"
	EventPublished  = "schedule_published"
	EventFailed     = "recompute_failed"
	EventRemoved    = "removed"
)

// Event is a structured message emitted by a Controller on every state
// change. Events are sent without blocking; a slow consumer misses events
// instead of stalling recomputation.
type Event struct {
	Type       string    `json:"type"`
	ProjectID  string    `json:"project_id"`
	State      State     `json:"state"`
	Generation uint64    `json:"generation"`
	Message    string    `json:"message"`
	Timestamp  time.Time `json:"timestamp"`
	Error      string    `json:"error,omitempty"`
}

// View is what a reader sees of a project's schedule at one instant.
type View struct {
	ProjectID string
	State     State
	// Result is the last clean schedule; nil before the first success.
	Result *cpm.Result
	// Err is the error of the last failed recomputation. It is cleared by
	// the next success.
	Err error
	// Generation counts the dirty signals received so far.
	Generation uint64
}

// String renders v for log lines.
func (v View) String() string {
	if v.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", v.ProjectID, v.State, v.Err)
	}
	return fmt.Sprintf("%s: %s", v.ProjectID, v.State)
}
