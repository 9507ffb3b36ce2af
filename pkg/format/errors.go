package format

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedKind indicates a format declares an unknown output kind.
	ErrUnsupportedKind = errors.New("unsupported file kind")

	// ErrFormatNotFound indicates a format name is not registered.
	ErrFormatNotFound = errors.New("format not found")
)

// ConfigurationError reports a format whose configuration cannot be exported.
// It is the one export failure that is always returned to the caller.
type ConfigurationError struct {
	Format string
	Kind   Kind
}

// Error implements the error interface.
func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("file kind %q selected in format %q does not exist", e.Kind, e.Format)
}

// Is reports ErrUnsupportedKind as the sentinel for this error.
func (e *ConfigurationError) Is(target error) bool {
	return target == ErrUnsupportedKind
}

// NewConfigurationError creates a new ConfigurationError.
func NewConfigurationError(format string, kind Kind) *ConfigurationError {
	return &ConfigurationError{
		Format: format,
		Kind:   kind,
	}
}

// ExpressionError reports a field expression that failed to evaluate.
// The field degrades to an empty value; the error is only logged.
type ExpressionError struct {
	Format     string // Format name
	Field      string // Field name
	RecordID   string // Record being rendered
	Expression string // Expression as configured
	Cause      error  // Underlying error
}

// Error implements the error interface.
func (e *ExpressionError) Error() string {
	return fmt.Sprintf("expression error [format=%s, field=%s, record=%s]: %v", e.Format, e.Field, e.RecordID, e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *ExpressionError) Unwrap() error {
	return e.Cause
}

// NewExpressionError creates a new ExpressionError.
func NewExpressionError(format, field, recordID, expression string, cause error) *ExpressionError {
	return &ExpressionError{
		Format:     format,
		Field:      field,
		RecordID:   recordID,
		Expression: expression,
		Cause:      cause,
	}
}

// WriteError reports a failure to write an output file.
type WriteError struct {
	Format string // Format name
	Path   string // Destination path
	Cause  error  // Underlying error
}

// Error implements the error interface.
func (e *WriteError) Error() string {
	return fmt.Sprintf("write error [format=%s, path=%s]: %v", e.Format, e.Path, e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *WriteError) Unwrap() error {
	return e.Cause
}

// NewWriteError creates a new WriteError.
func NewWriteError(format, path string, cause error) *WriteError {
	return &WriteError{
		Format: format,
		Path:   path,
		Cause:  cause,
	}
}

// ValidationError lists every problem found in a format definition.
type ValidationError struct {
	Format string
	Errors []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("format %q: validation error: %s", e.Format, e.Errors[0])
	}
	return fmt.Sprintf("format %q: %d validation errors: %v", e.Format, len(e.Errors), e.Errors)
}
