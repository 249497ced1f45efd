package model

import (
	"fmt"
	"math"
)

// Logistic is a binary logistic-regression classifier. Column 1 of the
// probability output is the positive class.
type Logistic struct {
	coef      []float64
	intercept float64
	classes   []string
}

func newLogistic(coef []float64, intercept float64, classes []string) (*Logistic, error) {
	if len(coef) == 0 {
		return nil, fmt.Errorf("logistic model has no coefficients")
	}
	if len(classes) != 2 {
		return nil, fmt.Errorf("logistic model needs exactly 2 classes, got %d", len(classes))
	}
	return &Logistic{coef: coef, intercept: intercept, classes: classes}, nil
}

func (l *Logistic) PredictProba(rows [][]float64) ([][]float64, error) {
	out := make([][]float64, len(rows))
	for i, row := range rows {
		if len(row) != len(l.coef) {
			return nil, fmt.Errorf("row %d: expected %d features, got %d", i, len(l.coef), len(row))
		}
		z := l.intercept
		for j, x := range row {
			z += l.coef[j] * x
		}
		p := 1 / (1 + math.Exp(-z))
		out[i] = []float64{1 - p, p}
	}
	return out, nil
}

func (l *Logistic) Predict(rows [][]float64) ([]string, error) {
	probs, err := l.PredictProba(rows)
	if err != nil {
		return nil, err
	}
	labels := make([]string, len(probs))
	for i, p := range probs {
		labels[i] = l.classes[argmax(p)]
	}
	return labels, nil
}
