package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"tick-backtest/internal/batch"
)

func write(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "feed.json", `{"snapshots": []}`)
	write(t, dir, "transform.yaml", `
transform:
  refresh_period: 5
  clean_nans: false
  bars: minute
`)
	path := write(t, dir, "config.yaml", `
data:
  path: feed.json
transform_file: transform.yaml
transform:
  refresh_period: 2
strategy:
  name: mavg_crossover
  params:
    short_window: 3
    long_window: 9
`)

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "feed.json"), c.Data.Path)
	assert.Equal(t, "json", c.Data.Format)
	assert.Equal(t, float64(DefaultCapital), c.Capital)
	assert.Equal(t, "next_bar", c.FillPolicy)
	assert.Equal(t, 3, c.Strategy.Params["short_window"])

	bc := c.Transform.ToBatchConfig()
	assert.Equal(t, 2, bc.RefreshPeriod, "config overrides the transform file")
	assert.False(t, bc.CleanNaNs, "file value kept when not overridden")
	assert.True(t, bc.ComputeOnlyFull, "default when unset everywhere")
	assert.Equal(t, batch.BarsMinute, bc.Bars)
}

func TestValidateCollectsAllErrors(t *testing.T) {
	c := &Config{
		Capital:        -1,
		FillPolicy:     "vwap",
		SlippageSpread: -0.1,
		Data:           DataConfig{Format: "xml"},
		Transform:      TransformConfig{RefreshPeriod: -3},
	}
	err := c.Validate()
	require.Error(t, err)
	assert.Len(t, multierr.Errors(err), 7)
	assert.ErrorIs(t, err, batch.ErrConfiguration)

	var nilCfg *Config
	assert.Error(t, nilCfg.Validate())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestMergeTransform(t *testing.T) {
	yes, no := true, false
	base := TransformConfig{WindowLength: 10, CleanNaNs: &yes, Bars: "daily"}
	got := MergeTransform(base, TransformConfig{CleanNaNs: &no, RefreshPeriod: 3})
	assert.Equal(t, 10, got.WindowLength)
	assert.Equal(t, 3, got.RefreshPeriod)
	require.NotNil(t, got.CleanNaNs)
	assert.False(t, *got.CleanNaNs)
	assert.True(t, *base.CleanNaNs, "base is not modified")
}

func TestMergeStrategy(t *testing.T) {
	base := StrategyConfig{Name: "mavg_crossover", Params: map[string]any{"short_window": 5, "long_window": 20}}

	got := MergeStrategy(base, StrategyConfig{Params: map[string]any{"short_window": 2}})
	assert.Equal(t, "mavg_crossover", got.Name)
	assert.Equal(t, map[string]any{"short_window": 2, "long_window": 20}, got.Params)

	got = MergeStrategy(base, StrategyConfig{Name: "rebalance", Params: map[string]any{"every": 5}})
	assert.Equal(t, "rebalance", got.Name)
	assert.Equal(t, map[string]any{"every": 5}, got.Params)
}
