package domain

import "errors"

// Sentinel errors used throughout the application.
// Handlers translate these to HTTP status codes via a single mapError function.
var (
	ErrEmptyMessage   = errors.New("VALIDATION_ERROR: message cannot be empty")
	ErrNoChannels     = errors.New("VALIDATION_ERROR: need at least one channel")
	ErrInvalidChannel = errors.New("VALIDATION_ERROR: invalid channel: must be EMAIL or SMS")
	ErrMissingSegment = errors.New("VALIDATION_ERROR: audience segment is required")

	ErrTooManyTargets = errors.New("TOO_MANY_TARGETS")
	ErrNoSender       = errors.New("no sender configured for channel")
)

// IsValidation reports whether err was caused by malformed broadcast input.
func IsValidation(err error) bool {
	return errors.Is(err, ErrEmptyMessage) ||
		errors.Is(err, ErrNoChannels) ||
		errors.Is(err, ErrInvalidChannel) ||
		errors.Is(err, ErrMissingSegment)
}
