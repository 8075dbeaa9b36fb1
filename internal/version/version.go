package version

// Build information set by ldflags
var (
	Version = "dev"     // -X github.com/flox/flox-sub009/internal/version.Version={{.Version}}
	Commit  = "unknown" // -X github.com/flox/flox-sub009/internal/version.Commit={{.Commit}}
	Date    = "unknown" // -X github.com/flox/flox-sub009/internal/version.Date={{.Date}}
)
