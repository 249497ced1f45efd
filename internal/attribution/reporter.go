// Package attribution explains a single prediction as signed per-feature
// contributions toward one target class.
package attribution

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strconv"

	"prognosis/internal/model"
	"prognosis/internal/reconcile"
)

// ErrAttribution marks a failure of the attribution engine. It is a soft
// failure: the prediction it would have explained still stands.
var ErrAttribution = errors.New("attribution failed")

// AttributionError wraps the engine's failure.
type AttributionError struct {
	Err error
}

func (e *AttributionError) Error() string { return fmt.Sprintf("%v: %v", ErrAttribution, e.Err) }

func (e *AttributionError) Unwrap() error { return e.Err }

func (e *AttributionError) Is(target error) bool { return target == ErrAttribution }

// Explanation is the raw engine output. Exactly one of Values or PerClass is
// set, depending on whether the engine explains a single output or every
// class output.
type Explanation struct {
	// Values has shape [instance][feature].
	Values [][]float64
	// PerClass has shape [instance][feature][class].
	PerClass [][][]float64
	// Base is the output the contributions start from: one entry for the flat
	// shape, one per class for the per-class shape.
	Base []float64
}

// Engine is an external attribution engine treated as a black box.
type Engine interface {
	Explain(ctx context.Context, m model.Classifier, rows [][]float64) (*Explanation, error)
}

// Cache stores finished results by key.
type Cache interface {
	Get(ctx context.Context, key string) (*Result, bool, error)
	Set(ctx context.Context, key string, r *Result) error
}

// Contribution is one feature's signed push toward the target class.
type Contribution struct {
	Feature string  `json:"feature"`
	Value   float64 `json:"value"`
}

// Result is the attribution for one instance and one target class.
// Contributions follow the contract order.
type Result struct {
	TargetClass   int            `json:"target_class"`
	BaseValue     float64        `json:"base_value"`
	Contributions []Contribution `json:"contributions"`
}

// Map returns contributions keyed by feature name.
func (r *Result) Map() map[string]float64 {
	m := make(map[string]float64, len(r.Contributions))
	for _, c := range r.Contributions {
		m[c.Feature] = c.Value
	}
	return m
}

// Ranked returns contributions ordered by descending magnitude, the order a
// waterfall chart draws them in.
func (r *Result) Ranked() []Contribution {
	out := append([]Contribution(nil), r.Contributions...)
	sort.SliceStable(out, func(i, j int) bool {
		return math.Abs(out[i].Value) > math.Abs(out[j].Value)
	})
	return out
}

// Reporter adapts an Engine to the reconciled feature vector.
type Reporter struct {
	engine Engine
	cache  Cache
	scope  string
	logger *slog.Logger
}

type Option func(*Reporter)

// WithCache memoizes results. scope must change whenever the model or the
// contract does, e.g. model digest plus contract fingerprint.
func WithCache(c Cache, scope string) Option {
	return func(r *Reporter) {
		r.cache = c
		r.scope = scope
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(r *Reporter) {
		r.logger = logger
	}
}

// NewReporter builds a Reporter around engine.
func NewReporter(engine Engine, opts ...Option) (*Reporter, error) {
	if engine == nil {
		return nil, errors.New("attribution engine is required")
	}
	r := &Reporter{engine: engine, logger: slog.Default()}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Explain computes contributions of v toward targetClass. All engine and
// shape failures come back as *AttributionError.
func (r *Reporter) Explain(ctx context.Context, m model.Classifier, v *reconcile.FeatureVector, targetClass int) (res *Result, err error) {
	key := r.cacheKey(v, targetClass)
	if r.cache != nil {
		cached, ok, cerr := r.cache.Get(ctx, key)
		if cerr != nil {
			r.logger.WarnContext(ctx, "attribution cache read failed", "error", cerr)
		} else if ok {
			return cached, nil
		}
	}

	defer func() {
		if p := recover(); p != nil {
			res = nil
			err = &AttributionError{Err: fmt.Errorf("engine panicked: %v", p)}
		}
	}()

	exp, err := r.engine.Explain(ctx, m, [][]float64{v.Row()})
	if err != nil {
		return nil, &AttributionError{Err: err}
	}
	res, err = selectInstance(exp, v.Names, targetClass)
	if err != nil {
		return nil, &AttributionError{Err: err}
	}

	if r.cache != nil {
		if cerr := r.cache.Set(ctx, key, res); cerr != nil {
			r.logger.WarnContext(ctx, "attribution cache write failed", "error", cerr)
		}
	}
	return res, nil
}

// selectInstance dispatches on the explanation shape and extracts instance 0.
func selectInstance(exp *Explanation, names []string, targetClass int) (*Result, error) {
	if exp == nil {
		return nil, errors.New("engine returned no explanation")
	}
	res := &Result{TargetClass: targetClass, Contributions: make([]Contribution, len(names))}

	switch {
	case exp.PerClass != nil:
		if len(exp.PerClass) == 0 {
			return nil, errors.New("explanation has no instances")
		}
		inst := exp.PerClass[0]
		if len(inst) != len(names) {
			return nil, fmt.Errorf("explanation covers %d features, vector has %d", len(inst), len(names))
		}
		for i, perClass := range inst {
			if targetClass < 0 || targetClass >= len(perClass) {
				return nil, fmt.Errorf("target class %d out of range for %d classes", targetClass, len(perClass))
			}
			res.Contributions[i] = Contribution{Feature: names[i], Value: perClass[targetClass]}
		}
		if targetClass < len(exp.Base) {
			res.BaseValue = exp.Base[targetClass]
		}
	case exp.Values != nil:
		if len(exp.Values) == 0 {
			return nil, errors.New("explanation has no instances")
		}
		inst := exp.Values[0]
		if len(inst) != len(names) {
			return nil, fmt.Errorf("explanation covers %d features, vector has %d", len(inst), len(names))
		}
		for i, val := range inst {
			res.Contributions[i] = Contribution{Feature: names[i], Value: val}
		}
		if len(exp.Base) > 0 {
			res.BaseValue = exp.Base[0]
		}
	default:
		return nil, errors.New("explanation has neither flat nor per-class values")
	}
	return res, nil
}

func (r *Reporter) cacheKey(v *reconcile.FeatureVector, targetClass int) string {
	h := sha256.New()
	h.Write([]byte(r.scope))
	for _, x := range v.Values {
		h.Write([]byte{0})
		h.Write([]byte(strconv.FormatFloat(x, 'g', -1, 64)))
	}
	h.Write([]byte{0})
	h.Write([]byte(strconv.Itoa(targetClass)))
	return hex.EncodeToString(h.Sum(nil))
}
