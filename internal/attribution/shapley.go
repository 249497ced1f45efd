package attribution

import (
	"context"
	"errors"
	"fmt"
	"math/bits"

	"prognosis/internal/model"
)

// MaxExactFeatures caps coalition enumeration at 2^16 model rows.
const MaxExactFeatures = 16

// ShapleyEngine computes exact Shapley values of every class probability
// against a single baseline row. A coalition S is evaluated as the instance
// with features outside S replaced by their baseline value, so contributions
// sum to f(instance) - f(baseline).
type ShapleyEngine struct {
	baseline []float64
}

// NewShapleyEngine builds an engine around the given baseline row, usually
// the registry defaults in contract order.
func NewShapleyEngine(baseline []float64) (*ShapleyEngine, error) {
	if len(baseline) == 0 {
		return nil, errors.New("baseline row is empty")
	}
	if len(baseline) > MaxExactFeatures {
		return nil, fmt.Errorf("exact Shapley values support at most %d features, got %d", MaxExactFeatures, len(baseline))
	}
	return &ShapleyEngine{baseline: append([]float64(nil), baseline...)}, nil
}

// Explain returns the per-class shape. All coalitions of one instance are
// evaluated in a single batched PredictProba call.
func (e *ShapleyEngine) Explain(ctx context.Context, m model.Classifier, rows [][]float64) (*Explanation, error) {
	n := len(e.baseline)
	weights := coalitionWeights(n)
	exp := &Explanation{PerClass: make([][][]float64, len(rows))}

	for r, row := range rows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if len(row) != n {
			return nil, fmt.Errorf("row %d has %d features, baseline has %d", r, len(row), n)
		}

		coalitions := make([][]float64, 1<<n)
		for mask := range coalitions {
			c := make([]float64, n)
			for f := 0; f < n; f++ {
				if mask&(1<<f) != 0 {
					c[f] = row[f]
				} else {
					c[f] = e.baseline[f]
				}
			}
			coalitions[mask] = c
		}

		out, err := m.PredictProba(coalitions)
		if err != nil {
			return nil, err
		}
		if len(out) != len(coalitions) {
			return nil, fmt.Errorf("model returned %d rows for %d coalitions", len(out), len(coalitions))
		}
		classes := len(out[0])

		phi := make([][]float64, n)
		for f := 0; f < n; f++ {
			phi[f] = make([]float64, classes)
			bit := 1 << f
			for mask := range out {
				if mask&bit != 0 {
					continue
				}
				w := weights[bits.OnesCount(uint(mask))]
				with, without := out[mask|bit], out[mask]
				for c := 0; c < classes; c++ {
					phi[f][c] += w * (with[c] - without[c])
				}
			}
		}
		exp.PerClass[r] = phi
		if r == 0 {
			exp.Base = append([]float64(nil), out[0]...)
		}
	}
	return exp, nil
}

// coalitionWeights returns |S|!(n-|S|-1)!/n! indexed by |S|.
func coalitionWeights(n int) []float64 {
	fact := make([]float64, n+1)
	fact[0] = 1
	for i := 1; i <= n; i++ {
		fact[i] = fact[i-1] * float64(i)
	}
	w := make([]float64, n)
	for s := 0; s < n; s++ {
		w[s] = fact[s] * fact[n-s-1] / fact[n]
	}
	return w
}
