// Package version reports build metadata for alsroute.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

var (
	Version   string // Set via ldflags.
	BuildDate string // Set via ldflags.

	Revision  = revision()
	GoVersion = runtime.Version()
	Platform  = runtime.GOOS + "/" + runtime.GOARCH
)

// GetVersion returns [Version], or the VCS revision for untagged builds.
func GetVersion() string {
	if Version != "" {
		return Version
	}

	return Revision
}

// String describes the build on one line.
func String() string {
	s := fmt.Sprintf("%s (%s, %s, %s)", GetVersion(), Revision, GoVersion, Platform)
	if BuildDate != "" {
		s += " built " + BuildDate
	}

	return s
}

func revision() string {
	rev := "unknown"

	info, ok := debug.ReadBuildInfo()
	if !ok {
		return rev
	}

	dirty := false

	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			rev = s.Value[:min(len(s.Value), 7)]
		case "vcs.modified":
			dirty = s.Value == "true"
		}
	}

	if dirty {
		return rev + "-dirty"
	}

	return rev
}
