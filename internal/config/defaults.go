package config

import (
	"github.com/AbdelazizMoustafa10m/critpath/internal/calendar"
	"github.com/AbdelazizMoustafa10m/critpath/internal/schedule"
)

// DefaultProjectsGlob matches every supported project file under projects/.
const DefaultProjectsGlob = "projects/**/*.{yaml,yml,json,toml}"

// NewDefaults returns a Config populated with the built-in defaults. The
// schedule values mirror schedule.DefaultSettings.
func NewDefaults() *Config {
	s := schedule.DefaultSettings()
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ShutdownTimeout: "10s",
		},
		Schedule: ScheduleConfig{
			SinkAnchor:       string(s.Anchor),
			MaxCriticalPaths: s.MaxPaths,
			MaxLagDays:       s.MaxLagDays,
			MaxRestarts:      s.MaxRestarts,
			AutoRecompute:    s.AutoRecompute,
			Concurrency:      schedule.DefaultConcurrency,
		},
		Calendar: CalendarConfig{
			DefaultMode: string(calendar.ModeCalendar),
			MaxGapDays:  s.MaxGapDays,
		},
		Data: DataConfig{
			Projects: DefaultProjectsGlob,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}
