package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, k := range []string{"PROGNOSIS_ADDR", "STRICT_CONTRACT", "LOW_RISK_MAX", "MODERATE_RISK_MAX", "KAFKA_BROKERS", "JWT_SIGNING_KEY", "RATE_LIMIT_REQUESTS", "RATE_LIMIT_WINDOW"} {
		t.Setenv(k, "")
	}

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr)
	assert.False(t, cfg.StrictContract)
	assert.Nil(t, cfg.LowRiskMax)
	assert.Empty(t, cfg.Audit.KafkaBrokers)
	assert.Empty(t, cfg.JWT.SigningKey)
	assert.Equal(t, 10*time.Minute, cfg.AttributionCacheTTL)
	assert.Equal(t, 60, cfg.RateLimit.Requests)
	assert.Equal(t, time.Minute, cfg.RateLimit.Window)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("PROGNOSIS_ADDR", ":9090")
	t.Setenv("STRICT_CONTRACT", "true")
	t.Setenv("LOW_RISK_MAX", "25")
	t.Setenv("MODERATE_RISK_MAX", "60")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("ATTRIBUTION_CACHE_TTL", "30s")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Addr)
	assert.True(t, cfg.StrictContract)
	require.NotNil(t, cfg.LowRiskMax)
	assert.Equal(t, 25.0, *cfg.LowRiskMax)
	assert.Equal(t, 60.0, *cfg.ModerateRiskMax)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Audit.KafkaBrokers)
	assert.Equal(t, 30*time.Second, cfg.AttributionCacheTTL)
}

func TestFromEnvRejectsBadValues(t *testing.T) {
	t.Setenv("STRICT_CONTRACT", "maybe")
	t.Setenv("LOW_RISK_MAX", "25")
	t.Setenv("MODERATE_RISK_MAX", "")

	_, err := FromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "STRICT_CONTRACT")
	assert.Contains(t, err.Error(), "must be set together")
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("MODEL_PATH=/srv/model.json\nLOG_LEVEL=debug\n"), 0o600))

	t.Setenv("MODEL_PATH", "")
	require.NoError(t, os.Unsetenv("MODEL_PATH"))
	t.Setenv("LOG_LEVEL", "warn")

	require.NoError(t, LoadDotEnv(path, filepath.Join(dir, "missing.env")))

	assert.Equal(t, "/srv/model.json", os.Getenv("MODEL_PATH"))
	assert.Equal(t, "warn", os.Getenv("LOG_LEVEL"), "existing variables win")
}
