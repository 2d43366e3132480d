// Package version identifies the kpet build. The variables are set with
// -ldflags "-X" at release time, otherwise taken from the module build info.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

var (
	// Vcs is the commit hash for the binary build
	Vcs string
	// Timestamp is the date for the binary build
	Timestamp string
	// Version is the kpet version
	Version string
)

// GetUserAgent returns a user agent of the format: <name>/<version> (<goos>/<goarch>) <vcs>/<timestamp>
func GetUserAgent(name string) string {
	version, vcs, timestamp := Version, Vcs, Timestamp
	if info, ok := debug.ReadBuildInfo(); ok {
		version, vcs, timestamp = fromBuildInfo(info, version, vcs, timestamp)
	}
	return fmt.Sprintf("%s/%s (%s/%s) %s/%s", name, version, runtime.GOOS, runtime.GOARCH, vcs, timestamp)
}

// fromBuildInfo fills the values left empty by the linker.
func fromBuildInfo(info *debug.BuildInfo, version, vcs, timestamp string) (string, string, string) {
	if version == "" {
		version = info.Main.Version
	}
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			if vcs == "" {
				vcs = s.Value
			}
		case "vcs.time":
			if timestamp == "" {
				timestamp = s.Value
			}
		}
	}
	return version, vcs, timestamp
}
