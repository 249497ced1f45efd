package study

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prognosis/internal/schema"
)

func TestDefault(t *testing.T) {
	s := Default()

	reg, err := s.Registry()
	require.NoError(t, err)
	assert.Equal(t, schema.DefaultGastric().Names(), reg.Names())

	thresholds := s.RiskThresholds()
	assert.Equal(t, 30.0, thresholds.LowMax)
	assert.Equal(t, 70.0, thresholds.ModerateMax)
	assert.Equal(t, "1", s.AdverseLabel)
	require.Len(t, s.Cases, 3)
	require.Len(t, s.Metrics, 4)

	for _, c := range s.Cases {
		for name, v := range c.Inputs {
			assert.NoError(t, reg.Validate(name, v), "case %s", c.Name)
		}
	}
}

func TestLoad(t *testing.T) {
	t.Run("decodes study file", func(t *testing.T) {
		s, err := Load("testdata/study.yaml")
		require.NoError(t, err)

		assert.Equal(t, "death", s.AdverseLabel)
		assert.Equal(t, 20.0, s.RiskThresholds().LowMax)

		reg, err := s.Registry()
		require.NoError(t, err)
		assert.Equal(t, []string{"Age", "TNM Stage"}, reg.Names())

		stage, err := reg.Lookup("TNM Stage")
		require.NoError(t, err)
		assert.Equal(t, "Stage III", stage.OptionLabel(3))

		require.Len(t, s.Cases, 1)
		assert.Equal(t, 50.0, s.Cases[0].Inputs["Age"])
	})

	t.Run("rejects default outside bounds", func(t *testing.T) {
		_, err := Load("testdata/bad_default.yaml")
		require.Error(t, err)
	})

	t.Run("rejects inverted thresholds", func(t *testing.T) {
		_, err := Load("testdata/bad_thresholds.yaml")
		require.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load("testdata/nope.yaml")
		require.Error(t, err)
	})
}
