package jsonpatch

import (
	"errors"
	"fmt"
)

// Errors wrapped by *Error and *TargetError.
var (
	// ErrInvalidPatch is returned when the patch document is malformed.
	ErrInvalidPatch = errors.New("invalid patch document")

	// ErrInvalidPointer is returned for a malformed JSON Pointer.
	ErrInvalidPointer = errors.New("invalid JSON pointer")

	// ErrPathNotFound is returned when a pointer does not resolve to a value.
	ErrPathNotFound = errors.New("target location not found")

	// ErrInvalidIndex is returned for an out-of-range or malformed array index.
	ErrInvalidIndex = errors.New("invalid array index")

	// ErrTestFailed is returned when a test operation does not match.
	ErrTestFailed = errors.New("test operation failed")

	// ErrMoveIntoChild is returned when a move would place a value inside itself.
	ErrMoveIntoChild = errors.New("cannot move a value into one of its children")

	// ErrTargetMismatch is returned when the patched document cannot be
	// decoded back into the target type.
	ErrTargetMismatch = errors.New("patched document does not fit the target")
)

// Error describes a failed operation. Index is the zero-based position of the
// operation in the patch document.
type Error struct {
	Index int
	Op    string
	Path  string
	Err   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("operation %d (%s %q): %v", e.Index, e.Op, e.Path, e.Err)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// TargetError reports that the patched document failed to decode into the
// target type. Field is the JSON name of the offending member, when known.
type TargetError struct {
	Field string
	Err   error
}

// Error implements the error interface.
func (e *TargetError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%v: %v", ErrTargetMismatch, e.Err)
	}
	return fmt.Sprintf("%v: field %q: %v", ErrTargetMismatch, e.Field, e.Err)
}

// Unwrap lets errors.Is match ErrTargetMismatch.
func (e *TargetError) Unwrap() []error {
	return []error{ErrTargetMismatch, e.Err}
}
