// Package buildinfo reports which critpath build is running. The Makefile
// stamps Version, Commit and Date through -ldflags -X.
package buildinfo

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown" // RFC3339, UTC
)

// Info holds structured build information suitable for JSON serialization.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Date      string `json:"date"`
	GoVersion string `json:"go_version"`
}

// GetInfo returns the current build information. A "dev" build installed
// with go install reports the module version recorded by the toolchain.
func GetInfo() Info {
	info := Info{
		Version:   Version,
		Commit:    Commit,
		Date:      Date,
		GoVersion: runtime.Version(),
	}
	if info.Version == "dev" {
		if bi, ok := debug.ReadBuildInfo(); ok && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
			info.Version = bi.Main.Version
		}
	}
	return info
}

// String returns a human-readable version string.
// Example: "critpath v1.2.0 (commit: a1b2c3d, built: 2026-10-15T10:00:00Z)"
func (i Info) String() string {
	return fmt.Sprintf("critpath v%s (commit: %s, built: %s)", i.Version, i.Commit, i.Date)
}
