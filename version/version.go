package version

import (
	"fmt"
	"runtime/debug"
)

// Set at build time with -ldflags "-X github.com/kbukum/wirekit/version.Version=...".
var (
	Version   = "dev"
	Commit    = ""
	BuildTime = ""
)

// Info describes the running binary.
type Info struct {
	Version   string `json:"version" yaml:"version"`
	Commit    string `json:"commit,omitempty" yaml:"commit,omitempty"`
	BuildTime string `json:"build_time,omitempty" yaml:"build_time,omitempty"`
	GoVersion string `json:"go_version" yaml:"go_version"`
	Dirty     bool   `json:"dirty,omitempty" yaml:"dirty,omitempty"`
}

// Get returns the ldflags values, filling gaps from the embedded build
// info when the binary was built from a VCS checkout.
func Get() Info {
	info := Info{Version: Version, Commit: Commit, BuildTime: BuildTime}

	buildInfo, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}
	info.GoVersion = buildInfo.GoVersion
	for _, setting := range buildInfo.Settings {
		switch setting.Key {
		case "vcs.revision":
			if info.Commit == "" {
				info.Commit = setting.Value
			}
		case "vcs.time":
			if info.BuildTime == "" {
				info.BuildTime = setting.Value
			}
		case "vcs.modified":
			info.Dirty = setting.Value == "true"
		}
	}
	if len(info.Commit) > 7 {
		info.Commit = info.Commit[:7]
	}
	return info
}

// String formats the info for --version output.
func (i Info) String() string {
	s := i.Version
	if i.Commit != "" {
		s += "-" + i.Commit
		if i.Dirty {
			s += "-dirty"
		}
	}
	if i.BuildTime != "" {
		s += fmt.Sprintf(" (built %s)", i.BuildTime)
	}
	if i.GoVersion != "" {
		s += " " + i.GoVersion
	}
	return s
}
