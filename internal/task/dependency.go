package task

import (
	"fmt"
	"strings"
)

// DependencyType is the kind of precedence constraint between two tasks.
type DependencyType string

const (
	// FinishToStart: the successor starts after the predecessor finishes.
	FinishToStart DependencyType = "FS"

	// StartToStart: the successor starts after the predecessor starts.
	StartToStart DependencyType = "SS"

	// FinishToFinish: the successor finishes after the predecessor finishes.
	FinishToFinish DependencyType = "FF"

	// StartToFinish: the successor finishes after the predecessor starts.
	StartToFinish DependencyType = "SF"
)

// ParseDependencyType converts a boundary code to a DependencyType. Matching
// is case-insensitive; the empty string maps to FinishToStart, which is the
// default type of a new dependency.
func ParseDependencyType(s string) (DependencyType, error) {
	if strings.TrimSpace(s) == "" {
		return FinishToStart, nil
	}
	dt := DependencyType(strings.ToUpper(strings.TrimSpace(s)))
	if !dt.IsValid() {
		return "", fmt.Errorf("unknown dependency type %q; must be one of: FS, SS, FF, SF", s)
	}
	return dt, nil
}

// IsValid returns true if the type is one of the four canonical codes.
func (d DependencyType) IsValid() bool {
	switch d {
	case FinishToStart, StartToStart, FinishToFinish, StartToFinish:
		return true
	}
	return false
}

// UnmarshalText implements encoding.TextUnmarshaler so that "fs" and "" are
// accepted from JSON, YAML, and TOML inputs.
func (d *DependencyType) UnmarshalText(text []byte) error {
	parsed, err := ParseDependencyType(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Dependency is a typed precedence edge from Predecessor to Successor. Lag is
// a signed day count in the project's calendar mode; a negative lag is a lead.
type Dependency struct {
	ID          string         `json:"id" yaml:"id" toml:"id"`
	Predecessor string         `json:"predecessor" yaml:"predecessor" toml:"predecessor"`
	Successor   string         `json:"successor" yaml:"successor" toml:"successor"`
	Type        DependencyType `json:"type" yaml:"type" toml:"type"`
	Lag         int            `json:"lag" yaml:"lag" toml:"lag"`
}

// Validate checks the field-level invariants of a dependency. Reference and
// acyclicity checks need the whole project and live in the graph package.
// An empty Type is set to FinishToStart.
func (d *Dependency) Validate() error {
	if d.Predecessor == "" || d.Successor == "" {
		return fmt.Errorf("dependency %q: predecessor and successor must not be empty", d.ID)
	}
	if d.Predecessor == d.Successor {
		return fmt.Errorf("dependency %q: task %q cannot depend on itself", d.ID, d.Predecessor)
	}
	if d.Type == "" {
		d.Type = FinishToStart
	}
	if !d.Type.IsValid() {
		return fmt.Errorf("dependency %q: unknown type %q", d.ID, d.Type)
	}
	return nil
}

// String renders the dependency as "A -FS+2-> B".
func (d Dependency) String() string {
	lag := ""
	if d.Lag != 0 {
		lag = fmt.Sprintf("%+d", d.Lag)
	}
	return fmt.Sprintf("%s -%s%s-> %s", d.Predecessor, d.Type, lag, d.Successor)
}
