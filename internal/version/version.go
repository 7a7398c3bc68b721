// Package version provides application version information.
// The version can be set at build time using ldflags:
//
//	go build -ldflags "-X github.com/ramonehamilton/PokeHelper/internal/version.Version=v1.2.3"
package version

// Version is the application version. It defaults to "dev".
var Version = "dev"

// GetVersion returns the current application version.
func GetVersion() string {
	return Version
}

// UserAgent is sent with every PokéAPI request.
func UserAgent() string {
	return "PokeHelper/" + Version
}
