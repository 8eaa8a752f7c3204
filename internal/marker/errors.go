package marker

import "errors"

// Custom marker service errors
var (
	// ErrMarkerNotFound indicates the requested marker does not exist
	ErrMarkerNotFound = errors.New("marker not found")

	// ErrMissingVideoID indicates a marker was submitted without an owning video
	ErrMissingVideoID = errors.New("video id is required")

	// ErrMissingTimestamp indicates a marker was submitted without a timestamp
	ErrMissingTimestamp = errors.New("timestamp is required")

	// ErrInvalidTimestamp indicates a negative timestamp
	ErrInvalidTimestamp = errors.New("timestamp must be non-negative")

	// ErrInvalidType indicates an update tried to clear the marker type
	ErrInvalidType = errors.New("marker type cannot be empty")
)

// IsNotFound checks if the error is a marker not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrMarkerNotFound)
}

// IsValidation checks if the error is a required-field or constraint violation
func IsValidation(err error) bool {
	return errors.Is(err, ErrMissingVideoID) ||
		errors.Is(err, ErrMissingTimestamp) ||
		errors.Is(err, ErrInvalidTimestamp) ||
		errors.Is(err, ErrInvalidType)
}
