package buildinfo

import (
	"runtime"
	"runtime/debug"
	"sort"
)

// Build-time variables (set via ldflags).
var (
	// Version is the semantic version.
	Version = "dev"

	// Commit is the git commit hash.
	Commit = "unknown"

	// BuildTime is the build timestamp.
	BuildTime = "unknown"
)

// EngineModules are the storage engine modules reported by Get.
var EngineModules = []string{
	"github.com/aalhour/rockyardkv",
	"github.com/dgraph-io/badger/v3",
}

// Module is one dependency of the binary.
type Module struct {
	Path    string `json:"path" yaml:"path"`
	Version string `json:"version" yaml:"version"`
}

// Info contains build information.
type Info struct {
	Version   string   `json:"version" yaml:"version"`
	Commit    string   `json:"commit" yaml:"commit"`
	BuildTime string   `json:"build_time" yaml:"build_time"`
	GoVersion string   `json:"go_version" yaml:"go_version"`
	Engines   []Module `json:"engines,omitempty" yaml:"engines,omitempty"`
}

// Get returns the build information.
func Get() Info {
	info := Info{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: runtime.Version(),
	}

	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}

	if info.Version == "dev" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		info.Version = bi.Main.Version
	}
	if info.Commit == "unknown" {
		for _, s := range bi.Settings {
			if s.Key == "vcs.revision" && s.Value != "" {
				info.Commit = s.Value
			}
		}
	}

	info.Engines = engines(bi.Deps)
	return info
}

func engines(deps []*debug.Module) []Module {
	wanted := make(map[string]bool, len(EngineModules))
	for _, p := range EngineModules {
		wanted[p] = true
	}

	var out []Module
	for _, d := range deps {
		if d == nil || !wanted[d.Path] {
			continue
		}
		m := d
		if d.Replace != nil {
			m = d.Replace
		}
		out = append(out, Module{Path: d.Path, Version: m.Version})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// String returns a formatted version string.
func String() string {
	info := Get()
	return info.Version + " (" + info.Commit + ") built at " + info.BuildTime
}
