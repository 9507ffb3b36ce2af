package storage

import (
	"fmt"
	"strings"
)

// StorageError represents an error from a record backend.
type StorageError struct {
	Backend   string // Backend type ("sqlite3", "sqlite", "memory")
	Operation string // Operation that failed ("open", "query", "scan", ...)
	Cause     error  // Underlying error
}

// Error implements the error interface.
func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error [backend=%s, operation=%s]: %v", e.Backend, e.Operation, e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *StorageError) Unwrap() error {
	return e.Cause
}

// NewStorageError creates a new StorageError.
func NewStorageError(backend, operation string, cause error) *StorageError {
	return &StorageError{
		Backend:   backend,
		Operation: operation,
		Cause:     cause,
	}
}

// RecordNotFoundError lists requested ids that do not exist.
type RecordNotFoundError struct {
	Model string
	IDs   []string
}

// Error implements the error interface.
func (e *RecordNotFoundError) Error() string {
	return fmt.Sprintf("records not found in model %q: %s", e.Model, strings.Join(e.IDs, ", "))
}

// NewRecordNotFoundError creates a new RecordNotFoundError.
func NewRecordNotFoundError(model string, ids []string) *RecordNotFoundError {
	return &RecordNotFoundError{
		Model: model,
		IDs:   ids,
	}
}

// UnknownModelError indicates a model without a table mapping.
type UnknownModelError struct {
	Model string
}

// Error implements the error interface.
func (e *UnknownModelError) Error() string {
	return fmt.Sprintf("unknown model %q", e.Model)
}
