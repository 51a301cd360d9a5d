// Package buildinfo holds version information stamped at build time:
//
//	go build -ldflags "-X github.com/matzehuels/trafficmap/pkg/buildinfo.Version=v1.0.0 \
//	    -X github.com/matzehuels/trafficmap/pkg/buildinfo.Commit=$(git rev-parse HEAD) \
//	    -X github.com/matzehuels/trafficmap/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
package buildinfo

import "fmt"

// Set via -ldflags.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Template is the cobra version template.
func Template() string {
	return fmt.Sprintf("{{.Name}} %s (commit %s, built %s)\n", Version, Commit, Date)
}

// UserAgent identifies trafficmap to tile servers, as most tile usage
// policies require.
func UserAgent() string {
	return "trafficmap/" + Version + " (+https://github.com/matzehuels/trafficmap)"
}
