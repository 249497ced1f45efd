// Package schema is the feature schema registry: the static, ordered
// description of every input the risk form collects.
package schema

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownFeature is returned when a name is not declared in the registry.
	ErrUnknownFeature = errors.New("unknown feature")
	ErrOutOfRange     = errors.New("value outside feature bounds")
)

// Registry is an ordered, read-only mapping from feature name to FeatureSpec.
// Safe for concurrent use once constructed.
type Registry struct {
	specs []FeatureSpec
	index map[string]int
}

// NewRegistry validates specs and keeps their declaration order.
func NewRegistry(specs ...FeatureSpec) (*Registry, error) {
	if len(specs) == 0 {
		return nil, errors.New("registry needs at least one feature")
	}
	r := &Registry{
		specs: make([]FeatureSpec, 0, len(specs)),
		index: make(map[string]int, len(specs)),
	}
	for _, s := range specs {
		if err := s.Check(); err != nil {
			return nil, err
		}
		if _, dup := r.index[s.Name]; dup {
			return nil, fmt.Errorf("feature %q declared twice", s.Name)
		}
		s.Options = append([]Option(nil), s.Options...)
		r.index[s.Name] = len(r.specs)
		r.specs = append(r.specs, s)
	}
	return r, nil
}

// Lookup returns the spec for name or an error wrapping ErrUnknownFeature.
func (r *Registry) Lookup(name string) (FeatureSpec, error) {
	i, ok := r.index[name]
	if !ok {
		return FeatureSpec{}, fmt.Errorf("%w: %q", ErrUnknownFeature, name)
	}
	return r.specs[i], nil
}

// Validate checks value against the bounds or options of the named feature.
func (r *Registry) Validate(name string, value float64) error {
	spec, err := r.Lookup(name)
	if err != nil {
		return err
	}
	if !spec.Accepts(value) {
		return fmt.Errorf("%w: %s=%v", ErrOutOfRange, name, value)
	}
	return nil
}

// Has reports whether name is declared.
func (r *Registry) Has(name string) bool {
	_, ok := r.index[name]
	return ok
}

// Names returns feature names in declaration order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.specs))
	for i, s := range r.specs {
		names[i] = s.Name
	}
	return names
}

// Specs returns a copy of all specs in declaration order.
func (r *Registry) Specs() []FeatureSpec {
	return append([]FeatureSpec(nil), r.specs...)
}

// Len is the number of declared features.
func (r *Registry) Len() int {
	return len(r.specs)
}
