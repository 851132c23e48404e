package version

// Version is set at build time via -ldflags "-X github.com/glintlab/aegis/pkg/version.Version=v1.2.3".
var Version = "dev"

// Get returns the current version of the application
func Get() string {
	return Version
}
