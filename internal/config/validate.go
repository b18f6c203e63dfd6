package config

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/bmatcuk/doublestar/v4"

	"github.com/AbdelazizMoustafa10m/critpath/internal/cpm"
	"github.com/AbdelazizMoustafa10m/critpath/internal/logging"
)

// ValidationSeverity indicates whether a validation issue is an error or warning.
type ValidationSeverity string

const (
	// SeverityError marks a configuration critpath cannot run with.
	SeverityError ValidationSeverity = "error"
	// SeverityWarning marks a usable configuration that is probably not
	// what was meant.
	SeverityWarning ValidationSeverity = "warning"
)

// ValidationIssue represents a single validation finding.
type ValidationIssue struct {
	Severity ValidationSeverity
	Field    string // dotted path, e.g. "schedule.sink_anchor"
	Message  string
}

// ValidationResult holds all validation findings.
type ValidationResult struct {
	Issues []ValidationIssue
}

// HasErrors returns true if any issue has error severity.
func (vr *ValidationResult) HasErrors() bool {
	return len(vr.Errors()) > 0
}

// HasWarnings returns true if any issue has warning severity.
func (vr *ValidationResult) HasWarnings() bool {
	return len(vr.Warnings()) > 0
}

// Errors returns only error-severity issues.
func (vr *ValidationResult) Errors() []ValidationIssue {
	return vr.filter(SeverityError)
}

// Warnings returns only warning-severity issues.
func (vr *ValidationResult) Warnings() []ValidationIssue {
	return vr.filter(SeverityWarning)
}

func (vr *ValidationResult) filter(sev ValidationSeverity) []ValidationIssue {
	var out []ValidationIssue
	for _, issue := range vr.Issues {
		if issue.Severity == sev {
			out = append(out, issue)
		}
	}
	return out
}

// Validate checks the configuration for correctness. meta is the metadata
// of the loaded file, or nil when no file was read; it is used to report
// unknown keys.
func Validate(cfg *Config, meta *toml.MetaData) *ValidationResult {
	vr := &ValidationResult{}

	if cfg == nil {
		addError(vr, "", "configuration is nil")
		return vr
	}

	validateServer(vr, &cfg.Server)
	validateSchedule(vr, &cfg.Schedule)
	validateCalendar(vr, cfg)
	validateData(vr, &cfg.Data)
	validateLog(vr, &cfg.Log)
	validateUnknownKeys(vr, meta)

	return vr
}

func validateServer(vr *ValidationResult, s *ServerConfig) {
	if strings.TrimSpace(s.Addr) == "" {
		addError(vr, "server.addr", "listen address must not be empty")
	}
	if s.APIKey == "" {
		addWarning(vr, "server.api_key", "no API key set; the HTTP API accepts unauthenticated requests")
	}
	cfg := Config{Server: *s}
	if d, err := cfg.ShutdownTimeout(); err != nil {
		addError(vr, "server.shutdown_timeout", fmt.Sprintf("invalid duration %q", s.ShutdownTimeout))
	} else if d <= 0 {
		addError(vr, "server.shutdown_timeout", "must be positive")
	}
}

func validateSchedule(vr *ValidationResult, s *ScheduleConfig) {
	if !cpm.SinkAnchor(s.SinkAnchor).IsValid() {
		addError(vr, "schedule.sink_anchor",
			fmt.Sprintf("unknown anchor %q; must be one of: %s, %s", s.SinkAnchor, cpm.AnchorOwnFinish, cpm.AnchorProjectFinish))
	}
	if s.MaxCriticalPaths < 1 {
		addError(vr, "schedule.max_critical_paths", "must be at least 1")
	}
	switch {
	case s.MaxLagDays < 0:
		addError(vr, "schedule.max_lag_days", "must not be negative")
	case s.MaxLagDays == 0:
		addWarning(vr, "schedule.max_lag_days", "lag bound disabled; any dependency lag is accepted")
	}
	if s.MaxRestarts < 0 {
		addError(vr, "schedule.max_restarts", "must not be negative")
	}
	if s.Concurrency < 1 {
		addError(vr, "schedule.concurrency", "must be at least 1")
	}
}

func validateCalendar(vr *ValidationResult, cfg *Config) {
	if _, err := cfg.CalendarMode(); err != nil {
		addError(vr, "calendar.default_mode", fmt.Sprintf("unknown mode %q; must be one of: calendar, working_days", cfg.Calendar.DefaultMode))
	}
	if cfg.Calendar.MaxGapDays < 1 {
		addError(vr, "calendar.max_gap_days", "must be at least 1")
	} else if cfg.Calendar.MaxGapDays < 7 {
		addWarning(vr, "calendar.max_gap_days", "less than a week; working-day calendars with holidays next to a weekend may fail")
	}
}

func validateData(vr *ValidationResult, d *DataConfig) {
	if d.Projects == "" {
		addError(vr, "data.projects", "project file pattern must not be empty")
		return
	}
	if !doublestar.ValidatePattern(d.Projects) {
		addError(vr, "data.projects", fmt.Sprintf("invalid glob pattern %q", d.Projects))
	}
}

func validateLog(vr *ValidationResult, l *LogConfig) {
	if _, err := logging.ParseLevel(l.Level); err != nil {
		addError(vr, "log.level", err.Error())
	}
	if _, err := logging.ParseFormat(l.Format); err != nil {
		addError(vr, "log.format", err.Error())
	}
}

// validateUnknownKeys warns about keys present in the file that map to no
// Config field, which usually means a typo.
func validateUnknownKeys(vr *ValidationResult, meta *toml.MetaData) {
	if meta == nil {
		return
	}

	for _, key := range meta.Undecoded() {
		addWarning(vr, key.String(), "unknown configuration key")
	}
}

// addError appends an error-severity issue to the validation result.
func addError(vr *ValidationResult, field, message string) {
	vr.Issues = append(vr.Issues, ValidationIssue{
		Severity: SeverityError,
		Field:    field,
		Message:  message,
	})
}

// addWarning appends a warning-severity issue to the validation result.
func addWarning(vr *ValidationResult, field, message string) {
	vr.Issues = append(vr.Issues, ValidationIssue{
		Severity: SeverityWarning,
		Field:    field,
		Message:  message,
	})
}
