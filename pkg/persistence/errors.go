// Package persistence provides standardized error types for store operations.
package persistence

import (
	"errors"
	"fmt"
)

// Standard persistence error types that all implementations should use.
var (
	// ErrFlowNotFound indicates no flow exists for the given identifier.
	ErrFlowNotFound = errors.New("flow not found")

	// ErrEventNotFound indicates no event exists for the given identifier.
	ErrEventNotFound = errors.New("event not found")

	// ErrExecutionNotFound indicates no execution exists for the given identifier.
	ErrExecutionNotFound = errors.New("execution not found")

	// ErrDocumentAlreadyExists indicates a create collided with an existing id.
	ErrDocumentAlreadyExists = errors.New("document already exists")
)

// UnknownFieldError indicates the store rejected an update because it does
// not recognize one of the fields. The lifecycle runner strips the field
// and retries once before giving up.
type UnknownFieldError struct {
	Field string
}

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("store rejected unknown field %q", e.Field)
}

// DocumentError wraps store errors with operation context.
type DocumentError struct {
	Op   string // Operation being performed (e.g. "GetByID", "Update")
	Kind string // Document kind ("flow", "event", "execution")
	ID   string // Document id if applicable
	Err  error  // Underlying error
}

func (e *DocumentError) Error() string {
	return fmt.Sprintf("%s operation failed for %s %s: %v", e.Op, e.Kind, e.ID, e.Err)
}

func (e *DocumentError) Unwrap() error {
	return e.Err
}

func (e *DocumentError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewDocumentError creates a new document error with context.
func NewDocumentError(op, kind, id string, err error) *DocumentError {
	return &DocumentError{Op: op, Kind: kind, ID: id, Err: err}
}

// IsFlowNotFound checks if an error indicates a flow was not found.
func IsFlowNotFound(err error) bool {
	return errors.Is(err, ErrFlowNotFound)
}

// IsEventNotFound checks if an error indicates an event was not found.
func IsEventNotFound(err error) bool {
	return errors.Is(err, ErrEventNotFound)
}

// IsExecutionNotFound checks if an error indicates an execution was not found.
func IsExecutionNotFound(err error) bool {
	return errors.Is(err, ErrExecutionNotFound)
}

// IsUnknownField reports whether an update failed on an unrecognized field,
// returning that field's name.
func IsUnknownField(err error) (string, bool) {
	var unknownField *UnknownFieldError
	if errors.As(err, &unknownField) {
		return unknownField.Field, true
	}

	return "", false
}
