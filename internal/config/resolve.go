package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

// ConfigSource identifies where a configuration value came from.
type ConfigSource string

const (
	// SourceDefault indicates the value came from built-in defaults.
	SourceDefault ConfigSource = "default"
	// SourceFile indicates the value came from critpath.toml.
	SourceFile ConfigSource = "file"
	// SourceEnv indicates the value came from an environment variable.
	SourceEnv ConfigSource = "env"
	// SourceCLI indicates the value came from a CLI flag.
	SourceCLI ConfigSource = "cli"
)

// ResolvedConfig holds the merged configuration and where each value came
// from.
type ResolvedConfig struct {
	Config  *Config
	Sources map[string]ConfigSource // key is the dotted path, e.g. "server.addr"
	Path    string                  // config file used, empty if none
}

// CLIOverrides captures flag values that override configuration. A nil
// pointer means the flag was not given.
type CLIOverrides struct {
	Addr          *string
	APIKey        *string
	Projects      *string
	CalendarMode  *string
	SinkAnchor    *string
	AutoRecompute *bool
	LogFormat     *string
}

// EnvFunc looks up an environment variable; os.LookupEnv in production.
type EnvFunc func(key string) (string, bool)

// field binds one dotted key to its environment variable and its location
// in Config. Every setting is listed exactly once.
type field struct {
	key string
	env string
	ptr func(*Config) any
}

var fields = []field{
	{"server.addr", "CRITPATH_ADDR", func(c *Config) any { return &c.Server.Addr }},
	{"server.api_key", "CRITPATH_API_KEY", func(c *Config) any { return &c.Server.APIKey }},
	{"server.shutdown_timeout", "CRITPATH_SHUTDOWN_TIMEOUT", func(c *Config) any { return &c.Server.ShutdownTimeout }},
	{"schedule.sink_anchor", "CRITPATH_SINK_ANCHOR", func(c *Config) any { return &c.Schedule.SinkAnchor }},
	{"schedule.max_critical_paths", "CRITPATH_MAX_CRITICAL_PATHS", func(c *Config) any { return &c.Schedule.MaxCriticalPaths }},
	{"schedule.max_lag_days", "CRITPATH_MAX_LAG_DAYS", func(c *Config) any { return &c.Schedule.MaxLagDays }},
	{"schedule.max_restarts", "CRITPATH_MAX_RESTARTS", func(c *Config) any { return &c.Schedule.MaxRestarts }},
	{"schedule.auto_recompute", "CRITPATH_AUTO_RECOMPUTE", func(c *Config) any { return &c.Schedule.AutoRecompute }},
	{"schedule.concurrency", "CRITPATH_CONCURRENCY", func(c *Config) any { return &c.Schedule.Concurrency }},
	{"calendar.default_mode", "CRITPATH_CALENDAR_MODE", func(c *Config) any { return &c.Calendar.DefaultMode }},
	{"calendar.max_gap_days", "CRITPATH_MAX_GAP_DAYS", func(c *Config) any { return &c.Calendar.MaxGapDays }},
	{"data.projects", "CRITPATH_PROJECTS", func(c *Config) any { return &c.Data.Projects }},
	{"log.level", "CRITPATH_LOG_LEVEL", func(c *Config) any { return &c.Log.Level }},
	{"log.format", "CRITPATH_LOG_FORMAT", func(c *Config) any { return &c.Log.Format }},
	{"log.timestamps", "CRITPATH_LOG_TIMESTAMPS", func(c *Config) any { return &c.Log.Timestamps }},
}

// Keys returns every configuration key in display order.
func Keys() []string {
	keys := make([]string, len(fields))
	for i, f := range fields {
		keys[i] = f.key
	}
	return keys
}

// EnvVar returns the environment variable bound to key, or "".
func EnvVar(key string) string {
	for _, f := range fields {
		if f.key == key {
			return f.env
		}
	}
	return ""
}

// Resolve merges configuration from all sources in priority order:
// CLI flags > environment variables > config file > defaults.
//
// A file value replaces the default when it is non-zero or when meta says
// the file defined the key, so "max_lag_days = 0" in the file is honoured.
// Without metadata only non-zero file values apply. Environment values that
// do not parse as the field's type are an error.
func Resolve(defaults, fileConfig *Config, meta *toml.MetaData, envFn EnvFunc, overrides *CLIOverrides) (*ResolvedConfig, error) {
	if defaults == nil {
		defaults = &Config{}
	}
	if envFn == nil {
		envFn = func(string) (string, bool) { return "", false }
	}
	if overrides == nil {
		overrides = &CLIOverrides{}
	}

	merged := *defaults
	rc := &ResolvedConfig{
		Config:  &merged,
		Sources: make(map[string]ConfigSource, len(fields)),
	}

	for _, f := range fields {
		rc.Sources[f.key] = SourceDefault

		if fileConfig != nil {
			src := f.ptr(fileConfig)
			if !isZero(src) || definedIn(meta, f.key) {
				assign(f.ptr(rc.Config), src)
				rc.Sources[f.key] = SourceFile
			}
		}

		if val, ok := envFn(f.env); ok {
			if err := parseInto(f.ptr(rc.Config), val); err != nil {
				return nil, fmt.Errorf("%s: %w", f.env, err)
			}
			rc.Sources[f.key] = SourceEnv
		}
	}

	resolveFromCLI(rc, overrides)
	return rc, nil
}

func resolveFromCLI(rc *ResolvedConfig, o *CLIOverrides) {
	c := rc.Config
	overrideString(&c.Server.Addr, o.Addr, "server.addr", rc.Sources)
	overrideString(&c.Server.APIKey, o.APIKey, "server.api_key", rc.Sources)
	overrideString(&c.Data.Projects, o.Projects, "data.projects", rc.Sources)
	overrideString(&c.Calendar.DefaultMode, o.CalendarMode, "calendar.default_mode", rc.Sources)
	overrideString(&c.Schedule.SinkAnchor, o.SinkAnchor, "schedule.sink_anchor", rc.Sources)
	overrideString(&c.Log.Format, o.LogFormat, "log.format", rc.Sources)
	if o.AutoRecompute != nil {
		c.Schedule.AutoRecompute = *o.AutoRecompute
		rc.Sources["schedule.auto_recompute"] = SourceCLI
	}
}

// Value renders the resolved value of key for display. The API key is
// masked.
func (rc *ResolvedConfig) Value(key string) string {
	for _, f := range fields {
		if f.key != key {
			continue
		}
		switch v := f.ptr(rc.Config).(type) {
		case *string:
			if key == "server.api_key" && *v != "" {
				return `"********"`
			}
			return strconv.Quote(*v)
		case *int:
			return strconv.Itoa(*v)
		case *bool:
			return strconv.FormatBool(*v)
		}
	}
	return ""
}

// --- Helpers ---

func overrideString(target *string, value *string, key string, sources map[string]ConfigSource) {
	if value != nil {
		*target = *value
		sources[key] = SourceCLI
	}
}

func definedIn(meta *toml.MetaData, key string) bool {
	return meta != nil && meta.IsDefined(strings.Split(key, ".")...)
}

func isZero(p any) bool {
	switch v := p.(type) {
	case *string:
		return *v == ""
	case *int:
		return *v == 0
	case *bool:
		return !*v
	}
	return true
}

func assign(dst, src any) {
	switch d := dst.(type) {
	case *string:
		*d = *src.(*string)
	case *int:
		*d = *src.(*int)
	case *bool:
		*d = *src.(*bool)
	}
}

func parseInto(dst any, val string) error {
	switch d := dst.(type) {
	case *string:
		*d = val
	case *int:
		n, err := strconv.Atoi(strings.TrimSpace(val))
		if err != nil {
			return fmt.Errorf("invalid integer %q", val)
		}
		*d = n
	case *bool:
		b, err := strconv.ParseBool(strings.TrimSpace(val))
		if err != nil {
			return fmt.Errorf("invalid boolean %q", val)
		}
		*d = b
	}
	return nil
}
