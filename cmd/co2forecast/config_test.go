package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, 1, cfg.Model.P)
	assert.Equal(t, 1, cfg.Model.D)
	assert.Equal(t, 12, cfg.Model.Period)
	assert.Equal(t, "none", cfg.Model.BoxCox)
	assert.Equal(t, 24, cfg.Forecast.Horizon)
	assert.Equal(t, 0.95, cfg.Forecast.Confidence)
	assert.Equal(t, 2020, cfg.Split.Year)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Contains(t, cfg.Data.URL, "gml.noaa.gov")
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("CO2_MODEL_P", "2")
	t.Setenv("CO2_FORECAST_HORIZON", "36")
	t.Setenv("CO2_MODEL_BOXCOX", "auto")

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, 2, cfg.Model.P)
	assert.Equal(t, 36, cfg.Forecast.Horizon)
	assert.Equal(t, "auto", cfg.Model.BoxCox)
}

func TestLoadConfigFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
model:
  p: 2
  q: 0
  boxcox: "0.5"
forecast:
  horizon: 12
  confidence: 0.9
split:
  year: 2015
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 2, cfg.Model.P)
	assert.Equal(t, 0, cfg.Model.Q)
	assert.Equal(t, 12, cfg.Forecast.Horizon)
	assert.Equal(t, 0.9, cfg.Forecast.Confidence)
	assert.Equal(t, 2015, cfg.Split.Year)

	bc, err := cfg.boxCoxLambda()
	require.NoError(t, err)
	assert.True(t, bc.fixed)
	assert.Equal(t, 0.5, bc.lambda)
}

func TestLoadConfigMissingExplicitFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestConfigValidate(t *testing.T) {
	base := func() *Config {
		cfg, err := LoadConfig("")
		require.NoError(t, err)
		return cfg
	}

	cfg := base()
	cfg.Forecast.Horizon = 0
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.Forecast.Confidence = 1.2
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.Model.BoxCox = "sometimes"
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.Logging.Format = "xml"
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.Data.URL, cfg.Data.File = "", ""
	assert.Error(t, cfg.Validate())
}
