package build_info

// Set through ldflags in the build pipeline
var (
	Version   = "dev"
	BuildDate = "unknown"
)
