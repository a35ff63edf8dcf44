// Package version holds build-time version information.
package version

// Version is the engine version, overridable at build time with
// -ldflags "-X github.com/custodia-labs/extrakt/internal/version.Version=...".
var Version = "0.1.0-dev"
