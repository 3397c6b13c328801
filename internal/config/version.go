package config

import "fmt"

// Set with -ldflags "-X github.com/bobmcallan/divvy/internal/config.version=..." at build time.
var (
	version   = "dev"
	buildTime = "unknown"
	gitCommit = "unknown"
)

// ServiceName is reported by the version endpoint and the MCP server.
const ServiceName = "divvy"

// BuildInfo describes the running binary.
type BuildInfo struct {
	Service string `json:"service"`
	Version string `json:"version"`
	Build   string `json:"build"`
	Commit  string `json:"git_commit"`
}

// Build returns the metadata linked into this binary.
func Build() BuildInfo {
	return BuildInfo{
		Service: ServiceName,
		Version: version,
		Build:   buildTime,
		Commit:  gitCommit,
	}
}

// String formats the metadata for -version output.
func (b BuildInfo) String() string {
	return fmt.Sprintf("%s %s (build: %s, commit: %s)", b.Service, b.Version, b.Build, b.Commit)
}
