package tui

import (
	"github.com/AbdelazizMoustafa10m/critpath/internal/kanban"
	"github.com/AbdelazizMoustafa10m/critpath/internal/schedule"
)

// ScheduleEventMsg carries one schedule lifecycle event into the program.
type ScheduleEventMsg struct {
	Event schedule.Event
}

// RecomputeDoneMsg reports the end of a recomputation started with 'r'.
type RecomputeDoneMsg struct {
	Err error
}

// MovedMsg reports a Kanban move applied from the board.
type MovedMsg struct {
	Ordering kanban.Ordering
}

// DurationChangedMsg reports a duration edit.
type DurationChangedMsg struct {
	TaskID   string
	Duration int
}

// ActionErrorMsg reports a rejected edit.
type ActionErrorMsg struct {
	Err error
}
