// Package version holds build-time version information,
// injected via -ldflags.
package version

var (
	// Version is the semantic version of this build.
	Version = "dev"
	// GitCommit is the git commit hash of this build.
	GitCommit = "unknown"
)
