// Package buildinfo reports the version of the running binary.
//
// Release builds set the variables via ldflags:
//
//	go build -ldflags "-X github.com/matzehuels/transitgit/pkg/buildinfo.Version=v1.0.0 \
//	    -X github.com/matzehuels/transitgit/pkg/buildinfo.Commit=$(git rev-parse HEAD) \
//	    -X github.com/matzehuels/transitgit/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
//
// Binaries built with "go install" fall back to the module version and the
// VCS stamp recorded by the toolchain.
package buildinfo

import (
	"fmt"
	"runtime/debug"
)

const unset = "dev"

var (
	// Version is the semantic version (e.g., "v1.2.3").
	Version = unset

	// Commit is the git commit SHA.
	Commit = "none"

	// Date is the build timestamp.
	Date = "unknown"

	// Modified is set when the binary was built from a dirty tree.
	Modified bool
)

func init() {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}
	fill(info)
}

// fill completes unset variables from the toolchain's build info.
func fill(info *debug.BuildInfo) {
	if Version == unset && info.Main.Version != "" && info.Main.Version != "(devel)" {
		Version = info.Main.Version
	}
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			if Commit == "none" {
				Commit = s.Value
			}
		case "vcs.time":
			if Date == "unknown" {
				Date = s.Value
			}
		case "vcs.modified":
			Modified = s.Value == "true"
		}
	}
}

// ShortCommit returns the first 7 characters of Commit.
func ShortCommit() string {
	if len(Commit) > 7 {
		return Commit[:7]
	}
	return Commit
}

// UserAgent is the User-Agent header sent when downloading feeds.
func UserAgent() string {
	return "transitgit/" + Version
}

// String returns the formatted build information.
func String() string {
	commit := ShortCommit()
	if Modified {
		commit += "-dirty"
	}
	return fmt.Sprintf("version: %s\ncommit: %s\nbuilt: %s", Version, commit, Date)
}

// Template returns the version template string for cobra.
func Template() string {
	return "{{.Name}} " + String() + "\n"
}
