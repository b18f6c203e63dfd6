// Package config loads critpath.toml and layers it with environment
// variables and command-line flags.
package config

import (
	"fmt"
	"time"

	"github.com/AbdelazizMoustafa10m/critpath/internal/calendar"
	"github.com/AbdelazizMoustafa10m/critpath/internal/cpm"
	"github.com/AbdelazizMoustafa10m/critpath/internal/schedule"
)

// Config is the top-level configuration structure mapping to critpath.toml.
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Schedule ScheduleConfig `toml:"schedule"`
	Calendar CalendarConfig `toml:"calendar"`
	Data     DataConfig     `toml:"data"`
	Log      LogConfig      `toml:"log"`
}

// ServerConfig maps to the [server] section.
type ServerConfig struct {
	Addr string `toml:"addr"`
	// APIKey enables bearer authentication when non-empty.
	APIKey          string `toml:"api_key"`
	ShutdownTimeout string `toml:"shutdown_timeout"`
}

// ScheduleConfig maps to the [schedule] section.
type ScheduleConfig struct {
	SinkAnchor       string `toml:"sink_anchor"`
	MaxCriticalPaths int    `toml:"max_critical_paths"`
	// MaxLagDays rejects dependency lags beyond this many days; 0 disables
	// the check.
	MaxLagDays    int  `toml:"max_lag_days"`
	MaxRestarts   int  `toml:"max_restarts"`
	AutoRecompute bool `toml:"auto_recompute"`
	// Concurrency bounds how many projects are recomputed at once.
	Concurrency int `toml:"concurrency"`
}

// CalendarConfig maps to the [calendar] section.
type CalendarConfig struct {
	// DefaultMode applies to projects that do not set calendar_mode.
	DefaultMode string `toml:"default_mode"`
	MaxGapDays  int    `toml:"max_gap_days"`
}

// DataConfig maps to the [data] section.
type DataConfig struct {
	// Projects is a doublestar pattern matching project files.
	Projects string `toml:"projects"`
}

// LogConfig maps to the [log] section.
type LogConfig struct {
	Level      string `toml:"level"`
	Format     string `toml:"format"`
	Timestamps bool   `toml:"timestamps"`
}

// ShutdownTimeout parses server.shutdown_timeout.
func (c *Config) ShutdownTimeout() (time.Duration, error) {
	d, err := time.ParseDuration(c.Server.ShutdownTimeout)
	if err != nil {
		return 0, fmt.Errorf("server.shutdown_timeout: %w", err)
	}
	return d, nil
}

// CalendarMode parses calendar.default_mode.
func (c *Config) CalendarMode() (calendar.Mode, error) {
	m, err := calendar.ParseMode(c.Calendar.DefaultMode)
	if err != nil {
		return "", fmt.Errorf("calendar.default_mode: %w", err)
	}
	return m, nil
}

// ScheduleSettings converts the [schedule] and [calendar] sections into
// recompute settings.
func (c *Config) ScheduleSettings() (schedule.Settings, error) {
	anchor := cpm.SinkAnchor(c.Schedule.SinkAnchor)
	if !anchor.IsValid() {
		return schedule.Settings{}, fmt.Errorf("schedule.sink_anchor: unknown anchor %q (want %q or %q)",
			c.Schedule.SinkAnchor, cpm.AnchorOwnFinish, cpm.AnchorProjectFinish)
	}
	return schedule.Settings{
		Anchor:        anchor,
		MaxPaths:      c.Schedule.MaxCriticalPaths,
		MaxLagDays:    c.Schedule.MaxLagDays,
		MaxGapDays:    c.Calendar.MaxGapDays,
		MaxRestarts:   c.Schedule.MaxRestarts,
		AutoRecompute: c.Schedule.AutoRecompute,
	}, nil
}
