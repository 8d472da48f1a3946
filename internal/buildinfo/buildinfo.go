// Package buildinfo carries the version stamped in at link time.
package buildinfo

import "fmt"

// Set with -ldflags "-X github.com/mvarshney/nocontent/internal/buildinfo.Version=...".
var (
	Version = "dev"
	Commit  = "none"
)

// ServiceName names the service in logs and telemetry resources.
const ServiceName = "nocontent"

// String formats the service name, version and commit.
func String() string {
	return fmt.Sprintf("%s %s (commit=%s)", ServiceName, Version, Commit)
}
