// Package buildinfo exposes resgen's version and build metadata.
package buildinfo

import (
	"runtime"
	"runtime/debug"
)

// BinaryVersion is set at build time via -ldflags. Defaults to "dev".
var BinaryVersion = "dev"

// Commit is set at build time via -ldflags when building from a checkout.
var Commit = ""

// Info is the version payload printed by `resgen version`.
type Info struct {
	Version       string `json:"version"`
	ModuleVersion string `json:"module_version,omitempty"`
	Commit        string `json:"commit,omitempty"`
	GoVersion     string `json:"go_version"`
	Platform      string `json:"platform"`
}

// ModuleVersion returns the module version embedded by the Go toolchain (when available).
func ModuleVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return ""
}

// vcsRevision falls back to the revision the toolchain stamps into the binary.
func vcsRevision() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	for _, s := range info.Settings {
		if s.Key == "vcs.revision" {
			return s.Value
		}
	}
	return ""
}

// Current collects build metadata for the running binary.
func Current() Info {
	commit := Commit
	if commit == "" {
		commit = vcsRevision()
	}
	return Info{
		Version:       BinaryVersion,
		ModuleVersion: ModuleVersion(),
		Commit:        commit,
		GoVersion:     runtime.Version(),
		Platform:      runtime.GOOS + "/" + runtime.GOARCH,
	}
}
