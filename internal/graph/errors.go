package graph

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrCycle is the sentinel wrapped by every CycleError.
	ErrCycle = errors.New("dependency cycle detected")

	// ErrMissingReference is the sentinel wrapped by every MissingReferenceError.
	ErrMissingReference = errors.New("dependency references unknown task")

	// ErrInvalidDependency is the sentinel wrapped by every InvalidDependencyError.
	ErrInvalidDependency = errors.New("invalid dependency")
)

// CycleError reports a dependency cycle. Path lists the task IDs along the
// cycle and repeats the first ID at the end, e.g. [A B C A].
type CycleError struct {
	Path []string
}

func (e *CycleError) Error() string {
	if len(e.Path) == 0 {
		return ErrCycle.Error()
	}
	return fmt.Sprintf("%s: %s", ErrCycle, strings.Join(e.Path, " -> "))
}

func (e *CycleError) Unwrap() error { return ErrCycle }

// MissingReferenceError reports a dependency whose predecessor or successor
// is not a task of the project. Such an edge never enters the graph.
type MissingReferenceError struct {
	DependencyID string
	TaskID       string
}

func (e *MissingReferenceError) Error() string {
	return fmt.Sprintf("%s: dependency %q references task %q", ErrMissingReference, e.DependencyID, e.TaskID)
}

func (e *MissingReferenceError) Unwrap() error { return ErrMissingReference }

// InvalidDependencyError reports a structurally invalid edge: a self loop,
// a duplicate predecessor/successor pair, a duplicate ID, or a bad type.
type InvalidDependencyError struct {
	DependencyID string
	Reason       string
}

func (e *InvalidDependencyError) Error() string {
	return fmt.Sprintf("%s %q: %s", ErrInvalidDependency, e.DependencyID, e.Reason)
}

func (e *InvalidDependencyError) Unwrap() error { return ErrInvalidDependency }
