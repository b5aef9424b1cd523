package buildinfo

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"sync"
)

const unknown = "unknown"

// Build-time variables (set via ldflags).
var (
	Version   = "dev"
	Commit    = unknown
	BuildTime = unknown
)

// Info contains build information.
type Info struct {
	Version   string `json:"version" yaml:"version"`
	Commit    string `json:"commit" yaml:"commit"`
	BuildTime string `json:"build_time" yaml:"build_time"`
	GoVersion string `json:"go_version" yaml:"go_version"`
	Platform  string `json:"platform" yaml:"platform"`
}

var vcsOnce = sync.OnceValues(readVCS)

// readVCS returns the revision and commit time stamped by the toolchain.
func readVCS() (revision, buildTime string) {
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return "", ""
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			revision = s.Value
		case "vcs.time":
			buildTime = s.Value
		}
	}
	if len(revision) > 12 {
		revision = revision[:12]
	}
	return revision, buildTime
}

// Get returns the build information.
func Get() Info {
	info := Info{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}

	rev, t := vcsOnce()
	if info.Commit == unknown && rev != "" {
		info.Commit = rev
	}
	if info.BuildTime == unknown && t != "" {
		info.BuildTime = t
	}
	return info
}

// String returns a one-line version string.
func String() string {
	info := Get()
	return fmt.Sprintf("%s (%s) built at %s with %s for %s",
		info.Version, info.Commit, info.BuildTime, info.GoVersion, info.Platform)
}
