// Package logging configures critpath's loggers on top of charmbracelet/log.
//
// Every component gets a prefixed child of the default logger:
//
//	logging.Setup(logging.Options{Level: logging.LevelDebug})
//	logger := logging.New("schedule")
//	logger.Info("published", "project", "web")
//	// INFO <schedule> published project=web
//
// Output goes to stderr so that stdout stays free for tables and JSON.
// Children copy the default logger's settings when they are created, so
// Setup has to run before the first call to New.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
)

// Level aliases, so that callers need not import charmbracelet/log.
const (
	LevelDebug = log.DebugLevel
	LevelInfo  = log.InfoLevel
	LevelWarn  = log.WarnLevel
	LevelError = log.ErrorLevel
	LevelFatal = log.FatalLevel
)

// Format selects the log line encoding.
type Format string

const (
	FormatText   Format = "text"
	FormatJSON   Format = "json"
	FormatLogfmt Format = "logfmt"
)

// ParseFormat accepts "text", "json" or "logfmt" in any case. The empty
// string means FormatText.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatText, nil
	case FormatText, FormatJSON, FormatLogfmt:
		return f, nil
	default:
		return "", fmt.Errorf("unknown log format %q (want text, json or logfmt)", s)
	}
}

// ParseLevel accepts "debug", "info", "warn" or "error".
func ParseLevel(s string) (log.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "", "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

// Options configures the default logger.
type Options struct {
	Level      log.Level
	Format     Format
	Timestamps bool
	// Output defaults to os.Stderr.
	Output io.Writer
}

// Setup applies opts to the default logger.
func Setup(opts Options) {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	log.SetOutput(out)
	log.SetLevel(opts.Level)
	log.SetReportTimestamp(opts.Timestamps)

	switch opts.Format {
	case FormatJSON:
		log.SetFormatter(log.JSONFormatter)
	case FormatLogfmt:
		log.SetFormatter(log.LogfmtFormatter)
	default:
		log.SetFormatter(log.TextFormatter)
	}
}

// LevelFor maps the --verbose and --quiet flags to a level. Quiet wins.
func LevelFor(verbose, quiet bool) log.Level {
	switch {
	case quiet:
		return LevelError
	case verbose:
		return LevelDebug
	default:
		return LevelInfo
	}
}

// New returns a child of the default logger prefixed with component. An
// empty component gives no prefix.
func New(component string) *log.Logger {
	return log.WithPrefix(component)
}

// Discard returns a logger that drops everything.
func Discard() *log.Logger {
	return log.New(io.Discard)
}

// SetOutput redirects the default logger, typically to a buffer in tests.
func SetOutput(w io.Writer) {
	log.SetOutput(w)
}
