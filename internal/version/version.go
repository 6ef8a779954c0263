// Package version holds build metadata injected with -ldflags.
package version

import "fmt"

var (
	Version    = "dev"
	CommitHash = "unknown"
	BuildDate  = "unknown"
)

// UserAgent is sent with every API request.
func UserAgent() string {
	return "versync/" + Version
}

// Summary returns a human-friendly version string for CLI output.
func Summary() string {
	return fmt.Sprintf("%s (commit %s, built %s)", Version, CommitHash, BuildDate)
}
