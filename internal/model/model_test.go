package model

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	lowRow  = []float64{55, 2, 2.5, 40, 3.2, 0, 50}
	highRow = []float64{76, 4, 8.5, 30, 25.8, 1, 300}
)

func TestLoadFileNamedForest(t *testing.T) {
	h, err := LoadFile(filepath.Join("testdata", "forest.json"))
	require.NoError(t, err)
	assert.Equal(t, KindRandomForest, h.Kind)
	assert.Len(t, h.Digest, 64)

	namer, ok := h.Classifier.(FeatureNamer)
	require.True(t, ok, "named artifact should expose feature names")
	assert.Equal(t, "Age", namer.FeatureNames()[0])

	counter, ok := h.Classifier.(FeatureCounter)
	require.True(t, ok)
	assert.Equal(t, 7, counter.FeatureCount())

	labeler, ok := h.Classifier.(ClassLabeler)
	require.True(t, ok)
	assert.Equal(t, []string{"0", "1"}, labeler.Classes())

	probs, err := h.Classifier.PredictProba([][]float64{lowRow, highRow})
	require.NoError(t, err)
	require.Len(t, probs, 2)
	assert.InDelta(t, 0.1, probs[0][1], 1e-9)
	assert.InDelta(t, 0.7, probs[1][1], 1e-9)
	for _, p := range probs {
		assert.InDelta(t, 1.0, p[0]+p[1], 1e-9)
	}

	labels, err := h.Classifier.Predict([][]float64{lowRow, highRow})
	require.NoError(t, err)
	assert.Equal(t, []string{"0", "1"}, labels)
}

func TestLoadFileUnnamedForest(t *testing.T) {
	h, err := LoadFile(filepath.Join("testdata", "forest_unnamed.json"))
	require.NoError(t, err)

	_, ok := h.Classifier.(FeatureNamer)
	assert.False(t, ok, "artifact without names must not claim them")
	counter, ok := h.Classifier.(FeatureCounter)
	require.True(t, ok)
	assert.Equal(t, 7, counter.FeatureCount())
}

func TestLoadFileLogistic(t *testing.T) {
	h, err := LoadFile(filepath.Join("testdata", "logistic.json"))
	require.NoError(t, err)

	_, ok := h.Classifier.(FeatureCounter)
	assert.False(t, ok)
	labeler, ok := h.Classifier.(ClassLabeler)
	require.True(t, ok)
	assert.Equal(t, []string{"survived", "death"}, labeler.Classes())

	probs, err := h.Classifier.PredictProba([][]float64{make([]float64, 7)})
	require.NoError(t, err)
	want := 1 / (1 + math.Exp(4.5))
	assert.InDelta(t, want, probs[0][1], 1e-12)

	labels, err := h.Classifier.Predict([][]float64{make([]float64, 7)})
	require.NoError(t, err)
	assert.Equal(t, "survived", labels[0])
}

func TestLoadFailures(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := LoadFile(filepath.Join("testdata", "nope.json"))
		require.ErrorIs(t, err, ErrModelLoad)
		var le *LoadError
		require.ErrorAs(t, err, &le)
		assert.ErrorIs(t, le.Err, os.ErrNotExist)
	})

	t.Run("corrupt file", func(t *testing.T) {
		_, err := LoadFile(filepath.Join("testdata", "corrupt.json"))
		require.ErrorIs(t, err, ErrModelLoad)
		assert.Contains(t, err.Error(), "corrupt.json")
	})

	cases := map[string]string{
		"unknown kind":              `{"kind":"svm"}`,
		"forest without size":       `{"kind":"random_forest","trees":[{"nodes":[{"left":-1,"right":-1,"value":[1,1]}]}]}`,
		"leaf arity mismatch":       `{"kind":"random_forest","n_features":1,"trees":[{"nodes":[{"left":-1,"right":-1,"value":[1,1,1]}]}]}`,
		"cyclic children":           `{"kind":"random_forest","n_features":1,"trees":[{"nodes":[{"feature":0,"left":0,"right":0}]}]}`,
		"feature out of range":      `{"kind":"random_forest","n_features":1,"trees":[{"nodes":[{"feature":3,"left":1,"right":2},{"left":-1,"right":-1,"value":[1,0]},{"left":-1,"right":-1,"value":[0,1]}]}]}`,
		"names disagree with count": `{"kind":"logistic_regression","n_features":2,"feature_names":["a"],"coefficients":[1,2]}`,
		"duplicate names":           `{"kind":"logistic_regression","feature_names":["a","a"],"coefficients":[1,2]}`,
		"unknown field":             `{"kind":"logistic_regression","coefficients":[1],"bogus":true}`,
		"multiclass logistic":       `{"kind":"logistic_regression","classes":["a","b","c"],"coefficients":[1]}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load([]byte(body))
			require.ErrorIs(t, err, ErrModelLoad)
		})
	}
}

func TestPredictShapeMismatch(t *testing.T) {
	h, err := LoadFile(filepath.Join("testdata", "forest.json"))
	require.NoError(t, err)

	_, err = h.Classifier.PredictProba([][]float64{{1, 2, 3}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected 7 features")
}
