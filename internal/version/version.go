// Package version holds build metadata injected with ldflags:
//
//	go build -ldflags "-X github.com/mpcatalog/mpcatalog/internal/version.Version=v1.0.0 \
//	                   -X github.com/mpcatalog/mpcatalog/internal/version.Commit=abc123 \
//	                   -X github.com/mpcatalog/mpcatalog/internal/version.Date=2026-01-01"
package version

var (
	// Version is the release of the build.
	Version = "dev"

	// Commit is the source revision of the build.
	Commit = "none"

	// Date is the build date in ISO 8601 format.
	Date = "unknown"
)

