// Package thinkergo provides the version information for thinker-go.
package thinkergo

// Version is the current version of thinker-go.
const Version = "0.1.0"

// GetVersion returns the current version string.
func GetVersion() string {
	return Version
}
