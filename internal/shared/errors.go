package shared

import "fmt"

var (
	// Library input errors; fatal, the run stops before any playlist is written
	ErrLibraryNotFound   = fmt.Errorf("library export not found")
	ErrLibraryUnreadable = fmt.Errorf("library export unreadable")
	ErrMalformedLibrary  = fmt.Errorf("malformed library export")

	// Configuration errors
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Output errors
	ErrWritePlaylist = fmt.Errorf("failed to write playlist")

	// Internal consistency errors
	ErrReportInvariant = fmt.Errorf("report invariant violated")

	// Input validation errors
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)
