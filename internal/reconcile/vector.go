// Package reconcile turns raw, name-keyed form input into the positional
// feature vector a model consumes. Order is load-bearing: a model fed columns
// in the wrong order returns a confident, silently wrong answer.
package reconcile

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"prognosis/internal/contract"
	"prognosis/internal/schema"
)

// FeatureVector holds one value per contract feature, in contract order.
type FeatureVector struct {
	Names  []string
	Values []float64
}

// Row returns the vector as a single positional row.
func (v *FeatureVector) Row() []float64 {
	return append([]float64(nil), v.Values...)
}

// Value returns the value for name.
func (v *FeatureVector) Value(name string) (float64, bool) {
	for i, n := range v.Names {
		if n == name {
			return v.Values[i], true
		}
	}
	return 0, false
}

// Map returns the vector keyed by feature name.
func (v *FeatureVector) Map() map[string]float64 {
	m := make(map[string]float64, len(v.Names))
	for i, n := range v.Names {
		m[n] = v.Values[i]
	}
	return m
}

// BuildVector validates raw against the contract and registry and emits the
// values in exactly c.RequiredOrder. Keys in raw that the contract does not
// require are ignored.
func BuildVector(raw map[string]any, c *contract.Contract, reg *schema.Registry) (*FeatureVector, error) {
	v := &FeatureVector{
		Names:  append([]string(nil), c.RequiredOrder...),
		Values: make([]float64, len(c.RequiredOrder)),
	}
	for i, name := range c.RequiredOrder {
		rv, ok := raw[name]
		if !ok || rv == nil {
			return nil, &MissingFeatureError{Name: name}
		}
		f, err := coerce(rv)
		if err != nil {
			return nil, &InvalidValueError{Name: name, Value: rv, Reason: err.Error()}
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, &InvalidValueError{Name: name, Value: rv, Reason: "not a finite number"}
		}
		// Features the model needs but the registry never declared have no
		// bounds to check; they were already reported as contract gaps.
		if spec, err := reg.Lookup(name); err == nil && !spec.Accepts(f) {
			return nil, &InvalidValueError{Name: name, Value: rv, Reason: describeBounds(spec)}
		}
		v.Values[i] = f
	}
	return v, nil
}

// Defaults returns the registry defaults laid out in contract order. Contract
// features without a registry spec default to zero.
func Defaults(c *contract.Contract, reg *schema.Registry) *FeatureVector {
	v := &FeatureVector{
		Names:  append([]string(nil), c.RequiredOrder...),
		Values: make([]float64, len(c.RequiredOrder)),
	}
	for i, name := range c.RequiredOrder {
		if spec, err := reg.Lookup(name); err == nil {
			v.Values[i] = spec.Default
		}
	}
	return v
}

// Merge overlays partial input on the defaults, returning a complete raw map.
func Merge(defaults *FeatureVector, partial map[string]any) map[string]any {
	raw := make(map[string]any, len(defaults.Names)+len(partial))
	for i, n := range defaults.Names {
		raw[n] = defaults.Values[i]
	}
	for k, val := range partial {
		raw[k] = val
	}
	return raw
}

func coerce(v any) (float64, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	case int:
		return float64(x), nil
	case int32:
		return float64(x), nil
	case int64:
		return float64(x), nil
	case json.Number:
		return x.Float64()
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, fmt.Errorf("not a number")
		}
		return f, nil
	case bool:
		if x {
			return 1, nil
		}
		return 0, nil
	default:
		return 0, fmt.Errorf("unsupported type %T", v)
	}
}

func describeBounds(spec schema.FeatureSpec) string {
	if spec.Kind == schema.KindCategorical {
		opts := make([]string, len(spec.Options))
		for i, o := range spec.Options {
			opts[i] = strconv.FormatFloat(o.Value, 'g', -1, 64)
		}
		return "must be one of " + strings.Join(opts, ", ")
	}
	return fmt.Sprintf("must be between %g and %g", spec.Min, spec.Max)
}
