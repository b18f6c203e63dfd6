package cpm

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidLag is the sentinel wrapped by every InvalidLagError.
var ErrInvalidLag = errors.New("infeasible lag")

// InvalidLagError reports dependencies whose lags make the schedule
// infeasible: a lag beyond the configured bound, or a chain of constraints
// that cannot meet the target finish date (negative slack). It names the
// offending tasks and dependencies so callers can highlight them.
type InvalidLagError struct {
	TaskIDs       []string
	DependencyIDs []string
	Reason        string
}

func (e *InvalidLagError) Error() string {
	var b strings.Builder
	b.WriteString(ErrInvalidLag.Error())
	if e.Reason != "" {
		fmt.Fprintf(&b, ": %s", e.Reason)
	}
	if len(e.DependencyIDs) > 0 {
		fmt.Fprintf(&b, " (dependencies: %s)", strings.Join(e.DependencyIDs, ", "))
	}
	if len(e.TaskIDs) > 0 {
		fmt.Fprintf(&b, " (tasks: %s)", strings.Join(e.TaskIDs, ", "))
	}
	return b.String()
}

func (e *InvalidLagError) Unwrap() error { return ErrInvalidLag }
