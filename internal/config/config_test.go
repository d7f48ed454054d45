package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testMapboxToken = "pk.test-token"

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "outbreaks.csv", cfg.DataPath)
	assert.Equal(t, "outbreak-report.json", cfg.OutputPath)
	assert.Equal(t, 5, cfg.TopFoods)
	assert.Equal(t, 5, cfg.TopFatal)
	assert.Equal(t, 5, cfg.PreviewRows)
	assert.Nil(t, cfg.GeoSeed)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.RunTimeout)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.Equal(t, "outbreak-reports", cfg.KafkaTopic)
	assert.False(t, cfg.MapboxEnabled)
	assert.Empty(t, cfg.MapboxToken)
	assert.Equal(t, 5*time.Second, cfg.MapboxTimeout)
	assert.Equal(t, 3, cfg.MapboxMaxAttempts)
	assert.Empty(t, cfg.PushgatewayURL)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("DATA_PATH", "/data/nors.csv")
	t.Setenv("OUTPUT_PATH", "/out/report.json")
	t.Setenv("TOP_FOODS", "10")
	t.Setenv("TOP_FATAL", "3")
	t.Setenv("PREVIEW_ROWS", "0")
	t.Setenv("GEO_SEED", "42")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("RUN_TIMEOUT", "2m")
	t.Setenv("KAFKA_BROKERS", "broker1:9092,broker2:9092")
	t.Setenv("KAFKA_TOPIC", "custom-reports")
	t.Setenv("MAPBOX_TOKEN", testMapboxToken)
	t.Setenv("MAPBOX_TIMEOUT", "10s")
	t.Setenv("MAPBOX_MAX_ATTEMPTS", "5")
	t.Setenv("PUSHGATEWAY_URL", "http://pushgateway:9091")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/data/nors.csv", cfg.DataPath)
	assert.Equal(t, "/out/report.json", cfg.OutputPath)
	assert.Equal(t, 10, cfg.TopFoods)
	assert.Equal(t, 3, cfg.TopFatal)
	assert.Equal(t, 0, cfg.PreviewRows)
	require.NotNil(t, cfg.GeoSeed)
	assert.Equal(t, uint64(42), *cfg.GeoSeed)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 2*time.Minute, cfg.RunTimeout)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "custom-reports", cfg.KafkaTopic)
	assert.True(t, cfg.MapboxEnabled)
	assert.Equal(t, testMapboxToken, cfg.MapboxToken)
	assert.Equal(t, 10*time.Second, cfg.MapboxTimeout)
	assert.Equal(t, 5, cfg.MapboxMaxAttempts)
	assert.Equal(t, "http://pushgateway:9091", cfg.PushgatewayURL)
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		env   string
		value string
	}{
		{"TOP_FOODS", "0"},
		{"TOP_FOODS", "five"},
		{"TOP_FATAL", "-1"},
		{"PREVIEW_ROWS", "-2"},
		{"MAPBOX_MAX_ATTEMPTS", "0"},
		{"RUN_TIMEOUT", "not-a-duration"},
		{"RUN_TIMEOUT", "-1s"},
		{"MAPBOX_TIMEOUT", "bad"},
		{"GEO_SEED", "-7"},
		{"GEO_SEED", "abc"},
	}
	for _, tt := range tests {
		t.Run(tt.env+"="+tt.value, func(t *testing.T) {
			t.Setenv(tt.env, tt.value)
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.env)
		})
	}
}

func TestLoad_OutputPathStdoutRejected(t *testing.T) {
	t.Setenv("OUTPUT_PATH", "-")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OUTPUT_PATH")
}

func TestLoad_MapboxEnabledWithoutToken(t *testing.T) {
	t.Setenv("MAPBOX_ENABLED", "true")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MAPBOX_TOKEN")
}

func TestLoad_MapboxTokenImpliesEnabled(t *testing.T) {
	t.Setenv("MAPBOX_TOKEN", testMapboxToken)
	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.MapboxEnabled)
}

func TestLoad_MapboxExplicitlyDisabled(t *testing.T) {
	t.Setenv("MAPBOX_TOKEN", testMapboxToken)
	t.Setenv("MAPBOX_ENABLED", "false")
	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.MapboxEnabled)
}
