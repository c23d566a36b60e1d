// Package version reports the build version. Set it at build time with:
//
//	go build -ldflags "-X github.com/ramonehamilton/deckbuilder/internal/version.Version=v1.2.3"
package version

import "runtime/debug"

// Service is the name reported by the health and version endpoints.
const Service = "deckbuilder-api"

// Version defaults to "dev" unless overridden with ldflags.
var Version = "dev"

// GetVersion returns Version, falling back to the module version recorded in
// the binary when Version was not set.
func GetVersion() string {
	if Version != "dev" {
		return Version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return Version
}
