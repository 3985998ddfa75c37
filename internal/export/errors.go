package export

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS
// =============================================================================

var (
	// ErrUnsupportedFormat is returned when an unknown export format is requested.
	ErrUnsupportedFormat = errors.New("unsupported export format")

	// ErrNilConversation is returned when a nil conversation is passed in.
	ErrNilConversation = errors.New("conversation is nil")
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// ValidationError reports malformed input: an invalid record or an
// unsupported format request. It is always surfaced to the caller,
// never silently coerced.
type ValidationError struct {
	// RecordIndex is the index of the offending record, or -1 when the
	// error is not tied to a specific record.
	RecordIndex int
	Err         error
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.RecordIndex >= 0 {
		return fmt.Sprintf("validation failed at record %d: %v", e.RecordIndex, e.Err)
	}
	return fmt.Sprintf("validation failed: %v", e.Err)
}

// Unwrap returns the underlying error for errors.Is/As.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// RenderError reports an internal renderer failure. It carries the format
// and the index of the record that failed so callers can report a precise
// message. A render either fully succeeds or fails with no partial output.
type RenderError struct {
	Format      Format
	RecordIndex int
	Err         error
}

// Error implements the error interface.
func (e *RenderError) Error() string {
	if e.RecordIndex >= 0 {
		return fmt.Sprintf("%s render failed at record %d: %v", e.Format, e.RecordIndex, e.Err)
	}
	return fmt.Sprintf("%s render failed: %v", e.Format, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As.
func (e *RenderError) Unwrap() error {
	return e.Err
}

// newValidationError wraps err in a ValidationError not tied to a record.
func newValidationError(err error) *ValidationError {
	return &ValidationError{RecordIndex: -1, Err: err}
}
