package reconcile

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingFeature marks a request lacking a feature the contract requires.
	ErrMissingFeature = errors.New("missing feature")
	// ErrInvalidValue marks a value that cannot be coerced or is out of bounds.
	ErrInvalidValue = errors.New("invalid value")
)

// MissingFeatureError names the absent feature.
type MissingFeatureError struct {
	Name string
}

func (e *MissingFeatureError) Error() string {
	return fmt.Sprintf("missing feature %q", e.Name)
}

func (e *MissingFeatureError) Is(target error) bool { return target == ErrMissingFeature }

// InvalidValueError carries the offending raw value and why it was rejected.
type InvalidValueError struct {
	Name   string
	Value  any
	Reason string
}

func (e *InvalidValueError) Error() string {
	return fmt.Sprintf("invalid value %v for feature %q: %s", e.Value, e.Name, e.Reason)
}

func (e *InvalidValueError) Is(target error) bool { return target == ErrInvalidValue }
