// Package prediction dispatches a reconciled feature vector to the classifier
// and shapes the answer for presentation.
package prediction

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"slices"

	"prognosis/internal/contract"
	"prognosis/internal/model"
	"prognosis/internal/reconcile"
)

// probabilityTolerance bounds how far a probability row may drift from 1.
const probabilityTolerance = 1e-6

// ErrPrediction marks any failure raised while invoking the model.
var ErrPrediction = errors.New("prediction failed")

// PredictionError wraps the model's own failure.
type PredictionError struct {
	Err error
}

func (e *PredictionError) Error() string { return fmt.Sprintf("%v: %v", ErrPrediction, e.Err) }

func (e *PredictionError) Unwrap() error { return e.Err }

func (e *PredictionError) Is(target error) bool { return target == ErrPrediction }

// Result is the structured outcome of one prediction.
type Result struct {
	PredictedClass     string
	ClassProbabilities []float64
	AdverseIndex       int
	// DeathProbability and SurvivalProbability are percentages.
	DeathProbability    float64
	SurvivalProbability float64
	RiskTier            Tier
}

// Invoker calls the model. It holds no per-request state.
type Invoker struct {
	thresholds Thresholds
	logger     *slog.Logger
}

// NewInvoker validates the thresholds and builds an Invoker.
func NewInvoker(thresholds Thresholds, logger *slog.Logger) (*Invoker, error) {
	if err := thresholds.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Invoker{thresholds: thresholds, logger: logger}, nil
}

// Thresholds returns the configured tier bounds.
func (i *Invoker) Thresholds() Thresholds {
	return i.thresholds
}

// Predict runs the model on v. Any error or panic from the model comes back
// as a *PredictionError; Predict itself never panics.
func (i *Invoker) Predict(ctx context.Context, m model.Classifier, c *contract.Contract, v *reconcile.FeatureVector) (res *Result, err error) {
	if m == nil {
		return nil, &model.LoadError{Err: errors.New("no model loaded")}
	}
	if c == nil || v == nil {
		return nil, &PredictionError{Err: errors.New("prediction needs a contract and a feature vector")}
	}
	if !slices.Equal(v.Names, c.RequiredOrder) {
		return nil, &PredictionError{Err: errors.New("feature vector does not follow the contract order")}
	}

	defer func() {
		if r := recover(); r != nil {
			res = nil
			err = &PredictionError{Err: fmt.Errorf("model panicked: %v", r)}
		}
	}()

	rows := [][]float64{v.Row()}
	labels, err := m.Predict(rows)
	if err != nil {
		return nil, &PredictionError{Err: err}
	}
	probs, err := m.PredictProba(rows)
	if err != nil {
		return nil, &PredictionError{Err: err}
	}
	if len(labels) != 1 || len(probs) != 1 {
		return nil, &PredictionError{Err: fmt.Errorf("model returned %d labels and %d probability rows for 1 input", len(labels), len(probs))}
	}

	p := probs[0]
	if err := i.checkDistribution(ctx, c, p); err != nil {
		return nil, &PredictionError{Err: err}
	}

	death := p[c.AdverseIndex] * 100
	return &Result{
		PredictedClass:      labels[0],
		ClassProbabilities:  append([]float64(nil), p...),
		AdverseIndex:        c.AdverseIndex,
		DeathProbability:    death,
		SurvivalProbability: 100 - death,
		RiskTier:            i.thresholds.Tier(death),
	}, nil
}

func (i *Invoker) checkDistribution(ctx context.Context, c *contract.Contract, p []float64) error {
	if c.Classes != nil && len(p) != len(c.Classes) {
		return fmt.Errorf("model returned %d probabilities for %d classes", len(p), len(c.Classes))
	}
	if c.Classes == nil && len(p) != 2 {
		i.logger.WarnContext(ctx, "adverse class chosen by position on a non-binary model",
			"classes", len(p),
			"index", c.AdverseIndex,
		)
	}
	if c.AdverseIndex < 0 || c.AdverseIndex >= len(p) {
		return fmt.Errorf("adverse class index %d out of range for %d classes", c.AdverseIndex, len(p))
	}
	var total float64
	for _, x := range p {
		if math.IsNaN(x) || x < 0 || x > 1 {
			return fmt.Errorf("probability %v outside [0, 1]", x)
		}
		total += x
	}
	if math.Abs(total-1) > probabilityTolerance {
		return fmt.Errorf("class probabilities sum to %v", total)
	}
	return nil
}
