package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Not found errors
	ErrNotFound         = errors.New("resource not found")
	ErrArtifactNotFound = fmt.Errorf("%w: artifact", ErrNotFound)
	ErrAnalysisNotFound = fmt.Errorf("%w: analysis", ErrNotFound)

	// Data sufficiency errors
	ErrInsufficientData  = errors.New("insufficient data for analysis")
	ErrNoPoolableStudies = fmt.Errorf("%w: no poolable studies", ErrInsufficientData)
	ErrEmptySample       = fmt.Errorf("%w: empty sample", ErrInsufficientData)

	// Request validation errors
	ErrUnknownMeasure = errors.New("unknown effect measure")
	ErrUnknownMethod  = errors.New("unknown pooling method")
)

// Error constructors with context
func NewNotFoundError(resource string, id string) error {
	return fmt.Errorf("%w: %s with id %s", ErrNotFound, resource, id)
}

func NewValidationError(field string, reason string) error {
	return fmt.Errorf("validation failed for %s: %s", field, reason)
}

// Error checking helpers
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsInsufficientDataError(err error) bool {
	return errors.Is(err, ErrInsufficientData)
}

func IsRequestError(err error) bool {
	return errors.Is(err, ErrUnknownMeasure) ||
		errors.Is(err, ErrUnknownMethod)
}
