package entity

import "errors"

var (
	// ErrNotFound means no document row exists for the requested id.
	ErrNotFound = errors.New("document not found")

	// ErrIndexNotFound means the document exists but has no loadable
	// vector index, either because the build has not finished or
	// because the artifact is missing or corrupt.
	ErrIndexNotFound = errors.New("document index not found")

	// ErrEmptyAnswer means the completion model returned nothing after
	// trimming, even though retrieval produced context.
	ErrEmptyAnswer = errors.New("no answer generated")
)

// ValidationError rejects an upload before any side effect happens.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError builds a ValidationError with the given message.
func NewValidationError(msg string) *ValidationError {
	return &ValidationError{Message: msg}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
