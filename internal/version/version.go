package version

// Version is the current version of the argo-features library. Config files
// written by DefaultConfig carry it. Release builds override it with ldflags:
// -ldflags "-X github.com/rxtech-lab/argo-features/internal/version.Version=1.2.3"
// Setting it to "main" marks a development build, which skips config version checks.
var Version = "v1.0.0"

// GetVersion returns the current version of the library.
func GetVersion() string {
	return Version
}
