package entity

import (
	"errors"
	"fmt"
)

// Standard domain errors
var (
	ErrRateLimitExceeded  = errors.New("rate limit exceeded")
	ErrInternalServer     = errors.New("an internal error occurred")
	ErrInvalidRequest     = errors.New("invalid request parameters")
	ErrResourceNotFound   = errors.New("the requested resource was not found")
	ErrGenerationFailed   = errors.New("greeting generation failed")
	ErrNoJSONObject       = fmt.Errorf("%w: could not find a JSON object in agent response", ErrGenerationFailed)
	ErrFeatureUnavailable = errors.New("feature is not available")
	ErrUnsupported        = errors.New("operation not supported by this backend")
)

// UnrecoverableJSONError is returned when the repaired agent output still fails to parse.
// Snippet holds at most the first 500 characters of the repaired text.
type UnrecoverableJSONError struct {
	Err     error
	Snippet string
}

func (e *UnrecoverableJSONError) Error() string {
	return fmt.Sprintf("unrecoverable JSON in agent response: %v (near %q)", e.Err, e.Snippet)
}

func (e *UnrecoverableJSONError) Unwrap() []error {
	return []error{ErrGenerationFailed, e.Err}
}
