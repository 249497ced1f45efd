// Package model is the boundary to the externally trained classifier. The
// rest of the system treats a Classifier as an opaque, read-only handle.
package model

import (
	"errors"
	"fmt"
)

// ErrModelLoad marks an artifact that is missing, unreadable or corrupt.
var ErrModelLoad = errors.New("model load failed")

// Classifier is the minimal surface every model artifact supports.
// Rows are positional: column i must hold the i-th feature of the model's
// training order.
type Classifier interface {
	Predict(rows [][]float64) ([]string, error)
	PredictProba(rows [][]float64) ([][]float64, error)
}

// FeatureCounter is implemented by models that declare their input arity.
type FeatureCounter interface {
	FeatureCount() int
}

// FeatureNamer is implemented by models that declare their ordered input names.
type FeatureNamer interface {
	FeatureNames() []string
}

// ClassLabeler is implemented by models that expose their class labels in
// probability-column order.
type ClassLabeler interface {
	Classes() []string
}

// LoadError wraps the underlying failure of reading or decoding an artifact.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%v: %v", ErrModelLoad, e.Err)
	}
	return fmt.Sprintf("%v: %s: %v", ErrModelLoad, e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

func (e *LoadError) Is(target error) bool { return target == ErrModelLoad }

// labeled, counted and named layer the optional declarations on top of a core
// classifier so that type assertions reflect exactly what the artifact declared.
type labeled struct {
	Classifier
	classes []string
}

func (l labeled) Classes() []string { return append([]string(nil), l.classes...) }

type counted struct {
	labeled
	n int
}

func (c counted) FeatureCount() int { return c.n }

type named struct {
	counted
	names []string
}

func (n named) FeatureNames() []string { return append([]string(nil), n.names...) }

func argmax(p []float64) int {
	best := 0
	for i := range p {
		if p[i] > p[best] {
			best = i
		}
	}
	return best
}
