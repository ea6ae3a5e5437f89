// Package cli is responsible for parsing command-line arguments, validating
// user input, and handling process-level concerns like exit codes. It
// translates CLI flags into the application's internal configuration.
//
// Every flag defaults to a GEOVIEW_* environment variable, so the same binary
// can be configured from a container environment without arguments.
package cli
