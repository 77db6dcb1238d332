package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	ErrNotFound       = errors.New("resource not found")
	ErrObjectNotFound = fmt.Errorf("%w: object", ErrNotFound)
	ErrColumnNotFound = fmt.Errorf("%w: column", ErrNotFound)

	// Data errors
	ErrEmptyDataset     = errors.New("dataset is empty")
	ErrInsufficientData = errors.New("insufficient data")
	ErrColumnType       = errors.New("column has unexpected type")
	ErrUniqueBinEdges   = errors.New("bin edges must be unique")
	ErrSingleClass      = errors.New("target has a single class")

	// Model errors
	ErrNotFitted              = errors.New("transform used before fit")
	ErrFeatureMismatch        = errors.New("feature count does not match fitted model")
	ErrBelowExpectedAccuracy  = errors.New("no model found with score above the base score")
	ErrOptimizationFailed     = errors.New("optimization failed")
	ErrValidationNotSatisfied = errors.New("data validation failed")
)

// NewValidationError builds a field-scoped validation error
func NewValidationError(field string, reason string) error {
	return fmt.Errorf("validation failed for %s: %s", field, reason)
}

// NewColumnNotFoundError names the missing column
func NewColumnNotFoundError(column string) error {
	return fmt.Errorf("%w: %s", ErrColumnNotFound, column)
}

// IsNotFoundError reports whether err wraps ErrNotFound
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}
