package wheel

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidState is returned when an operation runs without its preconditions,
	// e.g. sampling or laying out an empty option set.
	ErrInvalidState = errors.New("invalid state")

	// ErrAlreadyInProgress is returned by a spin request while another spin is in flight.
	// Callers ignore it by convention.
	ErrAlreadyInProgress = errors.New("spin already in progress")

	// ErrValidation marks rejected mutations. The store is left unchanged.
	ErrValidation = errors.New("validation failed")
)

// ValidationError describes which field of a mutation was rejected.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s %s", ErrValidation, e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}
