package domain

import "errors"

// Sentinel errors shared by repositories, services and the HTTP layer.
// Callers match them with errors.Is; repositories wrap them with context.
var (
	// ErrNotFound is returned when the requested identifier has no matching row.
	ErrNotFound = errors.New("not found")

	// ErrValidation is returned when a required field is absent or rejected by a storage constraint.
	ErrValidation = errors.New("validation failed")

	// ErrStaleUpdate is returned when an update addressed by identifier affected zero rows.
	// It is an illegal-state failure, distinct from ErrNotFound: the caller supplied the id.
	ErrStaleUpdate = errors.New("stale update")

	// ErrInvalidCriteria is returned when a filter or sort references an unknown column or operator.
	ErrInvalidCriteria = errors.New("invalid criteria")

	// ErrInvalidInput is returned when the request is invalid (e.g. creating an entity that already has an id).
	ErrInvalidInput = errors.New("invalid input")
)
