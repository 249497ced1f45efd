package reconcile

import (
	"encoding/json"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prognosis/internal/contract"
	"prognosis/internal/schema"
)

func gastricRegistry(t *testing.T) *schema.Registry {
	t.Helper()
	reg, err := schema.NewRegistry(
		schema.FeatureSpec{Name: "Intraoperative Blood Loss", Kind: schema.KindNumerical, Min: 0, Max: 800, Step: 0.1, Default: 50},
		schema.FeatureSpec{Name: "CEA", Kind: schema.KindNumerical, Min: 0, Max: 150, Step: 0.1, Default: 8.68},
		schema.FeatureSpec{Name: "Albumin", Kind: schema.KindNumerical, Min: 1, Max: 80, Step: 0.1, Default: 38.6},
		schema.FeatureSpec{Name: "TNM Stage", Kind: schema.KindCategorical, Default: 2,
			Options: []schema.Option{{Value: 1}, {Value: 2}, {Value: 3}, {Value: 4}}},
		schema.FeatureSpec{Name: "Age", Kind: schema.KindNumerical, Min: 25, Max: 90, Step: 0.1, Default: 76},
		schema.FeatureSpec{Name: "Max Tumor Diameter", Kind: schema.KindNumerical, Min: 0.2, Max: 20, Step: 0.1, Default: 4},
		schema.FeatureSpec{Name: "Lymphovascular Invasion", Kind: schema.KindCategorical, Default: 1,
			Options: []schema.Option{{Value: 0}, {Value: 1}}},
	)
	require.NoError(t, err)
	return reg
}

// modelOrder is the order the model was trained with, deliberately different
// from the registry's declaration order.
var modelOrder = []string{
	"Age", "TNM Stage", "Max Tumor Diameter", "Albumin", "CEA", "Lymphovascular Invasion", "Intraoperative Blood Loss",
}

func lowRiskInput() map[string]any {
	return map[string]any{
		"Age":                       55.0,
		"TNM Stage":                 2.0,
		"Max Tumor Diameter":        2.5,
		"Albumin":                   40.0,
		"CEA":                       3.2,
		"Lymphovascular Invasion":   0.0,
		"Intraoperative Blood Loss": 50.0,
	}
}

func TestBuildVectorFollowsContractOrder(t *testing.T) {
	reg := gastricRegistry(t)
	c := &contract.Contract{RequiredOrder: modelOrder}

	v, err := BuildVector(lowRiskInput(), c, reg)
	require.NoError(t, err)
	assert.Equal(t, modelOrder, v.Names)
	assert.Equal(t, []float64{55, 2, 2.5, 40, 3.2, 0, 50}, v.Row())

	age, ok := v.Value("Age")
	assert.True(t, ok)
	assert.Equal(t, 55.0, age)
	assert.Equal(t, 3.2, v.Map()["CEA"])
}

func TestBuildVectorIgnoresRawKeyOrder(t *testing.T) {
	reg := gastricRegistry(t)
	c := &contract.Contract{RequiredOrder: modelOrder}
	want, err := BuildVector(lowRiskInput(), c, reg)
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(7))
	base := lowRiskInput()
	for i := 0; i < 50; i++ {
		keys := make([]string, 0, len(base))
		for k := range base {
			keys = append(keys, k)
		}
		rng.Shuffle(len(keys), func(a, b int) { keys[a], keys[b] = keys[b], keys[a] })

		raw := make(map[string]any, len(keys))
		for _, k := range keys {
			raw[k] = base[k]
		}
		got, err := BuildVector(raw, c, reg)
		require.NoError(t, err)
		assert.Equal(t, want.Names, got.Names)
		assert.Equal(t, want.Values, got.Values)
	}
}

func TestBuildVectorPermutedContract(t *testing.T) {
	reg := gastricRegistry(t)
	rng := rand.New(rand.NewSource(11))
	input := lowRiskInput()

	for i := 0; i < 20; i++ {
		order := append([]string(nil), modelOrder...)
		rng.Shuffle(len(order), func(a, b int) { order[a], order[b] = order[b], order[a] })

		v, err := BuildVector(input, &contract.Contract{RequiredOrder: order}, reg)
		require.NoError(t, err)
		require.Equal(t, order, v.Names)
		for j, name := range order {
			assert.Equal(t, input[name], v.Values[j], "feature %s", name)
		}
	}
}

func TestBuildVectorMissingFeature(t *testing.T) {
	reg := gastricRegistry(t)
	raw := lowRiskInput()
	delete(raw, "Age")

	_, err := BuildVector(raw, &contract.Contract{RequiredOrder: modelOrder}, reg)
	require.ErrorIs(t, err, ErrMissingFeature)
	var mf *MissingFeatureError
	require.ErrorAs(t, err, &mf)
	assert.Equal(t, "Age", mf.Name)

	raw = lowRiskInput()
	raw["CEA"] = nil
	_, err = BuildVector(raw, &contract.Contract{RequiredOrder: modelOrder}, reg)
	assert.ErrorIs(t, err, ErrMissingFeature)
}

func TestBuildVectorBounds(t *testing.T) {
	reg := gastricRegistry(t)
	c := &contract.Contract{RequiredOrder: modelOrder}

	valid := map[string]any{
		"Age":                       25.0,
		"Intraoperative Blood Loss": 800.0,
		"Max Tumor Diameter":        0.2,
		"TNM Stage":                 4.0,
	}
	for name, val := range valid {
		raw := lowRiskInput()
		raw[name] = val
		_, err := BuildVector(raw, c, reg)
		assert.NoError(t, err, "%s=%v should be accepted", name, val)
	}

	invalid := map[string]any{
		"Age":                       24.9,
		"Intraoperative Blood Loss": -1.0,
		"Albumin":                   80.01,
		"TNM Stage":                 5.0,
		"Lymphovascular Invasion":   0.5,
		"CEA":                       math.Inf(1),
	}
	for name, val := range invalid {
		raw := lowRiskInput()
		raw[name] = val
		_, err := BuildVector(raw, c, reg)
		require.ErrorIs(t, err, ErrInvalidValue, "%s=%v should be rejected", name, val)
		var iv *InvalidValueError
		require.ErrorAs(t, err, &iv)
		assert.Equal(t, name, iv.Name)
	}
}

func TestBuildVectorCoercion(t *testing.T) {
	reg := gastricRegistry(t)
	c := &contract.Contract{RequiredOrder: modelOrder}

	raw := lowRiskInput()
	raw["Age"] = json.Number("55")
	raw["TNM Stage"] = 2
	raw["CEA"] = " 3.2 "
	raw["Lymphovascular Invasion"] = false
	v, err := BuildVector(raw, c, reg)
	require.NoError(t, err)
	assert.Equal(t, []float64{55, 2, 2.5, 40, 3.2, 0, 50}, v.Values)

	raw["Albumin"] = "forty"
	_, err = BuildVector(raw, c, reg)
	assert.ErrorIs(t, err, ErrInvalidValue)

	raw = lowRiskInput()
	raw["Albumin"] = []int{40}
	_, err = BuildVector(raw, c, reg)
	assert.ErrorIs(t, err, ErrInvalidValue)
}

func TestBuildVectorUnregisteredContractFeature(t *testing.T) {
	reg := gastricRegistry(t)
	order := append(append([]string(nil), modelOrder...), "Hemoglobin")
	c := &contract.Contract{RequiredOrder: order}

	raw := lowRiskInput()
	_, err := BuildVector(raw, c, reg)
	require.ErrorIs(t, err, ErrMissingFeature)

	raw["Hemoglobin"] = 120.0
	v, err := BuildVector(raw, c, reg)
	require.NoError(t, err)
	assert.Equal(t, 120.0, v.Values[7])
}

func TestDefaultsAndMerge(t *testing.T) {
	reg := gastricRegistry(t)
	c := &contract.Contract{RequiredOrder: modelOrder}

	d := Defaults(c, reg)
	assert.Equal(t, []float64{76, 2, 4, 38.6, 8.68, 1, 50}, d.Values)

	raw := Merge(d, map[string]any{"Age": 55.0})
	v, err := BuildVector(raw, c, reg)
	require.NoError(t, err)
	assert.Equal(t, 55.0, v.Values[0])
	assert.Equal(t, 2.0, v.Values[1])
}
