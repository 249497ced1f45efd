package schema

import (
	"fmt"
	"math"
)

// Kind distinguishes continuous inputs from discrete ones.
type Kind string

const (
	KindNumerical   Kind = "numerical"
	KindCategorical Kind = "categorical"
)

// Option is one allowed value of a categorical feature.
type Option struct {
	Value float64
	Label string // display only, e.g. "Stage II"
}

// FeatureSpec describes one clinical input variable.
//
// Numerical features use Min, Max, Default and Step; categorical features use
// Options and Default. Unit and Description never affect validation.
type FeatureSpec struct {
	Name        string
	Kind        Kind
	Min         float64
	Max         float64
	Step        float64
	Default     float64
	Options     []Option
	Unit        string
	Description string
}

// Accepts reports whether v is a legal value for the feature.
func (f FeatureSpec) Accepts(v float64) bool {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return false
	}
	switch f.Kind {
	case KindNumerical:
		return v >= f.Min && v <= f.Max
	case KindCategorical:
		for _, o := range f.Options {
			if o.Value == v {
				return true
			}
		}
	}
	return false
}

// OptionLabel returns the display label for a categorical value, or "" if none.
func (f FeatureSpec) OptionLabel(v float64) string {
	for _, o := range f.Options {
		if o.Value == v {
			return o.Label
		}
	}
	return ""
}

// Check enforces the spec's own invariants, most importantly that Default
// satisfies the declared bounds or options.
func (f FeatureSpec) Check() error {
	if f.Name == "" {
		return fmt.Errorf("feature name is required")
	}
	switch f.Kind {
	case KindNumerical:
		if f.Min > f.Max {
			return fmt.Errorf("feature %q: min %v exceeds max %v", f.Name, f.Min, f.Max)
		}
		if f.Step < 0 {
			return fmt.Errorf("feature %q: step must not be negative", f.Name)
		}
	case KindCategorical:
		if len(f.Options) == 0 {
			return fmt.Errorf("feature %q: categorical feature needs options", f.Name)
		}
		seen := make(map[float64]struct{}, len(f.Options))
		for _, o := range f.Options {
			if _, dup := seen[o.Value]; dup {
				return fmt.Errorf("feature %q: duplicate option %v", f.Name, o.Value)
			}
			seen[o.Value] = struct{}{}
		}
	default:
		return fmt.Errorf("feature %q: unknown kind %q", f.Name, f.Kind)
	}
	if !f.Accepts(f.Default) {
		return fmt.Errorf("feature %q: default %v outside declared bounds", f.Name, f.Default)
	}
	return nil
}
