package version

// version.go exposes build information stamped in via -ldflags at build time.

// Build information. Populated at build-time with:
//
//	-ldflags "-X .../internal/version.version=v1.2.3 ..."
var (
	version   = "dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

// Info holds the build version details for the running binary.
type Info struct {
	Version   string `json:"version"`
	GitCommit string `json:"gitCommit"`
	BuildDate string `json:"buildDate"`
}

// Get returns the build information for the running binary.
func Get() Info {
	return Info{
		Version:   version,
		GitCommit: gitCommit,
		BuildDate: buildDate,
	}
}
