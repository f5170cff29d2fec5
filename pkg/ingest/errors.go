package ingest

import (
	"errors"
	"fmt"
)

// ErrUnknownKind is returned when no validator is registered for a reading kind
var ErrUnknownKind = errors.New("unknown reading kind")

// ErrMalformedPayload is returned when a body is not a JSON object
var ErrMalformedPayload = errors.New("payload is not a JSON object")

// ValidationError names the first required field that is missing or malformed
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid field %q: %s", e.Field, e.Reason)
}

// IsValidationError reports whether err wraps a ValidationError
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
