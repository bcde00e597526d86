package services

import "errors"

// Standard service errors
var (
	// Store errors surfaced by the inbox screen
	ErrPropertyFetch = errors.New("failed to load properties")
	ErrMessageFetch  = errors.New("failed to load messages")

	// Data errors
	ErrPropertyNotFound = errors.New("property not found")
	ErrInvalidInput     = errors.New("invalid input provided")
	ErrDataCorrupted    = errors.New("data corrupted")

	// Store availability
	ErrStoreUnavailable = errors.New("store unavailable")

	// Import errors
	ErrImportUnavailable  = errors.New("import source not configured")
	ErrNetworkUnavailable = errors.New("network unavailable")
	ErrUnauthorized       = errors.New("unauthorized access")

	// AI service specific errors
	ErrAIServiceDown = errors.New("AI service down")
	ErrEmptyDraft    = errors.New("empty draft")
)

// IsRetryableError determines if re-triggering the action may succeed
func IsRetryableError(err error) bool {
	return errors.Is(err, ErrNetworkUnavailable) ||
		errors.Is(err, ErrStoreUnavailable) ||
		errors.Is(err, ErrAIServiceDown)
}

// IsPermanentError determines if an error is permanent
func IsPermanentError(err error) bool {
	return errors.Is(err, ErrUnauthorized) ||
		errors.Is(err, ErrPropertyNotFound) ||
		errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrDataCorrupted)
}
