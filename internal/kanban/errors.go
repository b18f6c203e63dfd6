package kanban

import (
	"errors"
	"fmt"

	"github.com/AbdelazizMoustafa10m/critpath/internal/task"
)

var (
	// ErrUnknownTask is returned when a move names a task that is not on
	// the board.
	ErrUnknownTask = errors.New("unknown task")

	// ErrInvalidMove is returned for a move with an unknown status or a
	// negative index.
	ErrInvalidMove = errors.New("invalid move")

	// ErrOrderingConflict is the sentinel wrapped by OrderingConflictError.
	ErrOrderingConflict = errors.New("ordering conflict")
)

// OrderingConflictError describes an ordering that had to be re-derived:
// a move based on a stale board version, or a column loaded with duplicate
// or non-contiguous orders. Conflicts are always resolved in place; the
// error value is reported on the Ordering and in the log, never returned
// from Move.
type OrderingConflictError struct {
	Column      task.Status
	BaseVersion uint64
	Version     uint64
	Reason      string
}

func (e *OrderingConflictError) Error() string {
	if e.BaseVersion != 0 {
		return fmt.Sprintf("%s in column %s: move based on version %d, board is at %d",
			ErrOrderingConflict, e.Column, e.BaseVersion, e.Version)
	}
	return fmt.Sprintf("%s in column %s: %s", ErrOrderingConflict, e.Column, e.Reason)
}

func (e *OrderingConflictError) Unwrap() error { return ErrOrderingConflict }
