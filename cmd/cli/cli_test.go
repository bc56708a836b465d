package main

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tick-backtest/internal/data"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestBacktestCommand(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`
data:
  synthetic:
    assets: 2
    ticks: 30
    seed: 5
strategy:
  name: rebalance
  params:
    every: 5
`), 0o644))
	outPath := filepath.Join(dir, "results", "ledger.csv")

	out, err := run(t, "backtest", "--config", cfgPath, "--out", outPath, "-n", "20")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Wrote 20 rows")
	assert.Contains(t, out, "Strategy=rebalance")

	f, err := os.Open(outPath)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	assert.Len(t, rows, 21)
}

func TestBacktestCommandRequiresConfig(t *testing.T) {
	_, err := run(t, "backtest")
	assert.Error(t, err)
}

func TestRankCommand(t *testing.T) {
	dir := t.TempDir()
	feed, err := data.Generate(data.SyntheticParams{Assets: 3, Ticks: 25, Seed: 4})
	require.NoError(t, err)
	require.NoError(t, data.SaveFeedJSON(feed, filepath.Join(dir, "a.json")))

	out, err := run(t, "rank", "--data", dir)
	require.NoError(t, err, out)
	assert.Contains(t, out, "synthetic-4 (25 snapshots)")
	assert.Contains(t, out, "oracle$")

	_, err = run(t, "rank", "--data", filepath.Join(dir, "missing"))
	assert.Error(t, err)
}

func TestStrategiesCommand(t *testing.T) {
	out, err := run(t, "strategies")
	require.NoError(t, err)
	assert.Contains(t, out, "mavg_crossover")
	assert.Contains(t, out, "short_window")
}
