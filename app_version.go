package main

import (
	"runtime/debug"
)

var app_ver string = ""

// app_version prefers the module version recorded by go install, then the
// ldflags-injected app_ver, then the vcs revision of a local build.
func app_version() string {
	v, ok := debug.ReadBuildInfo()
	if ok && v.Main.Version != "" && v.Main.Version != "(devel)" {
		return v.Main.Version
	}
	if app_ver != "" {
		return app_ver
	}
	if ok {
		rev, dirty := "", false
		for _, s := range v.Settings {
			switch s.Key {
			case "vcs.revision":
				rev = s.Value
			case "vcs.modified":
				dirty = s.Value == "true"
			}
		}
		if len(rev) > 12 {
			rev = rev[:12]
		}
		if rev != "" {
			if dirty {
				rev += "-dirty"
			}
			return "devel-" + rev
		}
	}
	return "#UNAVAILABLE"
}
