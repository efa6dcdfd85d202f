// Package version holds the application identity shown by the version and
// credits commands.
package version

const (
	AppName    = "lavadeck"
	AppVersion = "0.4.0"
	GoVersion  = "1.26"
	Repository = "https://github.com/keshon/lavadeck"
)
