package backtest

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"tick-backtest/internal/algorithm"
	"tick-backtest/internal/batch"
	"tick-backtest/internal/blotter"
	"tick-backtest/internal/model"
	"tick-backtest/internal/strategy"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var t0 = time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

func feed(prices ...float64) []model.Snapshot {
	out := make([]model.Snapshot, len(prices))
	for i, p := range prices {
		s := model.NewSnapshot(t0.AddDate(0, 0, i))
		s.Set(0, model.FieldPrice, p)
		s.Set(0, model.FieldVolume, 100)
		out[i] = s
	}
	return out
}

// funcStrategy adapts a closure to strategy.Strategy.
type funcStrategy struct {
	tick int
	fn   func(tick int, ctx *algorithm.Context, data model.Snapshot) error
}

func (s *funcStrategy) Name() string                          { return "test" }
func (s *funcStrategy) Initialize(*algorithm.Context) error { return nil }
func (s *funcStrategy) HandleData(ctx *algorithm.Context, data model.Snapshot) error {
	defer func() { s.tick++ }()
	return s.fn(s.tick, ctx, data)
}

func TestOrderVisibleOnNextTick(t *testing.T) {
	tests := []struct {
		name          string
		policy        blotter.FillPolicy
		wantFillPrice float64
	}{
		{"next bar", blotter.FillNextBar, 11},
		{"same bar", blotter.FillSameBar, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var amounts []int64
			var lastPrices []float64
			strat := &funcStrategy{fn: func(tick int, ctx *algorithm.Context, _ model.Snapshot) error {
				if tick == 0 {
					ctx.Order(0, 10)
				}
				pos := ctx.Portfolio().Position(0)
				amounts = append(amounts, pos.Amount)
				lastPrices = append(lastPrices, pos.LastSalePrice)
				return nil
			}}

			res, err := New(Options{StartingCash: 1000, FillPolicy: tt.policy}).
				Run(context.Background(), feed(10, 11, 12), strat)
			require.NoError(t, err)
			assert.Equal(t, []int64{0, 10, 10}, amounts)
			assert.Equal(t, 11.0, lastPrices[1], "marked at the fill tick under either policy")
			assert.Equal(t, 12.0, lastPrices[2])
			require.Len(t, res.Transactions, 1)
			assert.Equal(t, tt.wantFillPrice, res.Transactions[0].Price)
			assert.Equal(t, 1, res.Ledger[0].Orders)
			assert.Equal(t, 1, res.Ledger[1].Fills)
			assert.Equal(t, model.ActionBuy, res.Ledger[1].Action)
		})
	}
}

func TestLedgerAccounting(t *testing.T) {
	strat := &funcStrategy{fn: func(tick int, ctx *algorithm.Context, _ model.Snapshot) error {
		if tick == 0 {
			ctx.Order(0, 10)
		}
		return nil
	}}
	res, err := New(Options{StartingCash: 1000}).Run(context.Background(), feed(10, 10, 15), strat)
	require.NoError(t, err)
	require.Len(t, res.Ledger, 3)

	last := res.Ledger[2]
	assert.InDelta(t, 900, last.Cash, 1e-9)
	assert.InDelta(t, 150, last.PositionsValue, 1e-9)
	assert.InDelta(t, 50, last.PNL, 1e-9)
	assert.InDelta(t, 50, last.CumPNL, 1e-9)
	assert.InDelta(t, 50, res.TotalPNL, 1e-9)
	assert.InDelta(t, 0.05, res.Returns()[2], 1e-9)
}

var errBoom = errors.New("boom")

func TestStrategyErrorPropagates(t *testing.T) {
	strat := &funcStrategy{fn: func(tick int, _ *algorithm.Context, _ model.Snapshot) error {
		if tick == 1 {
			return errBoom
		}
		return nil
	}}
	_, err := New(Options{StartingCash: 1000}).Run(context.Background(), feed(1, 2, 3), strat)
	require.Error(t, err)
	assert.ErrorIs(t, err, errBoom)
	assert.Contains(t, err.Error(), "tick 1")
}

func TestSetPortfolioAbortsRun(t *testing.T) {
	strat := &funcStrategy{fn: func(_ int, ctx *algorithm.Context, _ model.Snapshot) error {
		return ctx.SetPortfolio(model.Portfolio{})
	}}
	_, err := New(Options{StartingCash: 1000}).Run(context.Background(), feed(1), strat)
	assert.ErrorIs(t, err, model.ErrReadOnly)
}

func TestRecordedValuesLandInLedger(t *testing.T) {
	res, err := New(Options{StartingCash: 1000}).Run(context.Background(), feed(1, 2, 3), &strategy.RecordTicks{})
	require.NoError(t, err)
	for i, row := range res.Ledger {
		assert.Equal(t, float64(i+1), row.Recorded["incr"])
	}

	var buf bytes.Buffer
	require.NoError(t, EncodeLedgerCSV(&buf, res.Ledger))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasSuffix(lines[0], ",incr"))
	assert.True(t, strings.HasSuffix(lines[3], ",3.000000"))
}

func TestRejectsOutOfOrderFeed(t *testing.T) {
	f := feed(1, 2)
	f[1].Dt = f[0].Dt
	_, err := New(Options{StartingCash: 1000}).Run(context.Background(), f, &strategy.RecordTicks{})
	assert.ErrorContains(t, err, "not after")
}

func TestRunHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(Options{StartingCash: 1000}).Run(ctx, feed(1, 2), &strategy.RecordTicks{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunValidatesInputs(t *testing.T) {
	e := New(Options{StartingCash: 1000})
	_, err := e.Run(context.Background(), feed(1), nil)
	assert.Error(t, err)
	_, err = e.Run(context.Background(), nil, &strategy.RecordTicks{})
	assert.Error(t, err)
	_, err = New(Options{}).Run(context.Background(), feed(1), &strategy.RecordTicks{})
	assert.Error(t, err)
}

func TestMavgCrossoverTradesTrend(t *testing.T) {
	prices := make([]float64, 0, 40)
	for i := 0; i < 20; i++ {
		prices = append(prices, 100-float64(i))
	}
	for i := 0; i < 20; i++ {
		prices = append(prices, 80+2*float64(i))
	}
	strat, err := strategy.Build("mavg_crossover", strategy.Params{"short_window": 3, "long_window": 8, "percent": 0.5},
		strategy.Env{Transform: batch.DefaultConfig()})
	require.NoError(t, err)

	res, err := New(Options{StartingCash: 10000}).Run(context.Background(), feed(prices...), strat)
	require.NoError(t, err)
	assert.NotEmpty(t, res.Transactions)
	assert.Greater(t, res.TotalPNL, 0.0)
	assert.Contains(t, res.Ledger[len(res.Ledger)-1].Recorded, "short_mavg_0")
}
