// Package buildinfo holds version information injected at build time via ldflags:
//
//	-X github.com/watchfire-io/taskwidget/internal/buildinfo.Version=v0.3.0
package buildinfo

import (
	"runtime"
	"runtime/debug"
)

var (
	Version    = "dev"
	CommitHash = "unknown"
	BuildDate  = "unknown"
)

// Info is the version information shown by the version commands.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildDate string `json:"build_date"`
	Platform  string `json:"platform"`
	GoVersion string `json:"go_version"`
}

// Get returns the build information. When ldflags were not set, the VCS
// revision recorded by the Go toolchain is used for the commit.
func Get() Info {
	info := Info{
		Version:   Version,
		Commit:    CommitHash,
		BuildDate: BuildDate,
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
		GoVersion: runtime.Version(),
	}
	if info.Commit != "unknown" {
		return info
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		for _, s := range bi.Settings {
			if s.Key == "vcs.revision" && len(s.Value) >= 7 {
				info.Commit = s.Value[:7]
			}
		}
	}
	return info
}
