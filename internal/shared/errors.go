package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Segment data errors
	ErrInvalidFormat  = fmt.Errorf("invalid segment data format")
	ErrInvalidSegment = fmt.Errorf("invalid segment")
	ErrCorruptState   = fmt.Errorf("persisted state is corrupt")

	// Storage errors
	ErrStorage = fmt.Errorf("storage failure")
	ErrPersist = fmt.Errorf("failed to persist segments")

	// Output errors
	ErrSink        = fmt.Errorf("pixel sink failure")
	ErrUnknownSink = fmt.Errorf("unknown pixel sink")

	// Transport errors
	ErrRateLimited = fmt.Errorf("too many configuration writes")
	ErrAPIRequest  = fmt.Errorf("API request failed")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)
