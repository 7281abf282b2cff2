package version

// Set at build time through -ldflags
var (
	Version   = "dev"
	Commit    = "none"
	BuildTime = "unknown"
)
