package store

import (
	"errors"
	"fmt"
)

// Common store errors used across all store implementations.
var (
	// ErrNotFound is returned when a requested entity does not exist in the store.
	// Entity-specific errors below wrap it.
	ErrNotFound = errors.New("entity not found")

	// ErrInvalidEntity is returned when an entity violates a store constraint,
	// for example a point of interest referencing a city that does not exist.
	ErrInvalidEntity = errors.New("invalid entity")

	// ErrCityNotFound indicates that the requested city does not exist in the store.
	ErrCityNotFound = fmt.Errorf("%w: city", ErrNotFound)

	// ErrPointOfInterestNotFound indicates that the requested point of interest
	// does not exist, or exists but belongs to a different city.
	ErrPointOfInterestNotFound = fmt.Errorf("%w: point of interest", ErrNotFound)
)

// IsNotFoundError checks if the error is any kind of "not found" error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// StoreError is a custom error type for store-specific errors with additional context.
type StoreError struct {
	Entity    string // The entity type (e.g., "city", "point_of_interest")
	Operation string // The operation that failed (e.g., "list", "save")
	Err       error  // Original error
}

// Error implements the error interface for StoreError.
func (e *StoreError) Error() string {
	return fmt.Sprintf("%s operation on %s failed: %v", e.Operation, e.Entity, e.Err)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError creates a new StoreError with the given entity, operation and wrapped error.
func NewStoreError(entity, operation string, err error) *StoreError {
	return &StoreError{
		Entity:    entity,
		Operation: operation,
		Err:       err,
	}
}
