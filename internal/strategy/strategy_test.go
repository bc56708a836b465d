package strategy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tick-backtest/internal/algorithm"
	"tick-backtest/internal/batch"
	"tick-backtest/internal/blotter"
	"tick-backtest/internal/model"
)

var t0 = time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

func feed(prices ...[]float64) []model.Snapshot {
	n := len(prices[0])
	out := make([]model.Snapshot, n)
	for i := 0; i < n; i++ {
		s := model.NewSnapshot(t0.AddDate(0, 0, i))
		for a, series := range prices {
			s.Set(model.AssetID(a), model.FieldPrice, series[i])
		}
		out[i] = s
	}
	return out
}

// drive runs s over snaps and returns the blotter.
func drive(t *testing.T, s Strategy, snaps []model.Snapshot) *blotter.Blotter {
	t.Helper()
	b := blotter.New(10000)
	ctx := algorithm.NewContext(b, nil)
	require.NoError(t, s.Initialize(ctx))
	for _, snap := range snaps {
		b.ProcessTick(snap)
		ctx.Advance(snap, b.Portfolio())
		require.NoError(t, s.HandleData(ctx, snap))
	}
	return b
}

func TestParams(t *testing.T) {
	p := Params{
		"i":      3,
		"f":      2.5,
		"s":      "x",
		"blank":  "  ",
		"assets": []any{1, 2.0},
	}
	assert.Equal(t, 3.0, p.Num("i", 0))
	assert.Equal(t, 2, p.Int("f", 0))
	assert.Equal(t, 7.0, p.Num("missing", 7))
	assert.Equal(t, "x", p.Str("s", "d"))
	assert.Equal(t, "d", p.Str("blank", "d"))
	assert.Equal(t, []model.AssetID{1, 2}, p.Assets("assets"))
	assert.Nil(t, p.Assets("missing"))
}

func TestBuildEveryRegisteredStrategy(t *testing.T) {
	env := Env{Transform: batch.DefaultConfig(), Feed: feed([]float64{1, 2, 3})}
	for _, info := range Infos() {
		s, err := Build(info.Name, nil, env)
		require.NoError(t, err, info.Name)
		assert.Equal(t, info.Name, s.Name())
	}
	_, err := Build("nope", nil, env)
	assert.Error(t, err)
}

func TestMavgCrossoverRejectsInvertedWindows(t *testing.T) {
	s, err := Build("mavg_crossover", Params{"short_window": 10, "long_window": 5}, Env{Transform: batch.DefaultConfig()})
	require.NoError(t, err)
	assert.Error(t, s.Initialize(algorithm.NewContext(blotter.New(1), nil)))
}

func TestMavgCrossoverEntersAndExits(t *testing.T) {
	prices := []float64{10, 10, 10, 10, 12, 14, 16, 18, 12, 8, 6, 4, 4}
	s := &MavgCrossover{
		Params: MavgParams{ShortWindow: 2, LongWindow: 4, Percent: 0.5},
		Base:   batch.DefaultConfig(),
	}
	b := blotter.New(10000)
	ctx := algorithm.NewContext(b, nil)
	require.NoError(t, s.Initialize(ctx))

	maxHeld := int64(0)
	for _, snap := range feed(prices) {
		b.ProcessTick(snap)
		ctx.Advance(snap, b.Portfolio())
		require.NoError(t, s.HandleData(ctx, snap))
		if a := b.Portfolio().Position(0).Amount; a > maxHeld {
			maxHeld = a
		}
	}
	assert.Greater(t, maxHeld, int64(0), "entered on the way up")
	assert.Zero(t, b.Portfolio().Position(0).Amount, "exited on the way down")
}

func TestMeanReversionBuysDip(t *testing.T) {
	prices := []float64{10, 10.2, 9.9, 10.1, 10, 7, 7}
	s := &MeanReversion{
		Params: MeanReversionParams{Window: 5, Threshold: 1.5, Percent: 0.5},
		Base:   batch.DefaultConfig(),
	}
	b := drive(t, s, feed(prices))
	assert.Greater(t, b.Portfolio().Position(0).Amount, int64(0))
}

func TestScheduleRebalancesEqualWeight(t *testing.T) {
	s := &ScheduleStrategy{Params: ScheduleParams{Every: 2, Gross: 1}}
	b := drive(t, s, feed([]float64{10, 10, 10}, []float64{20, 20, 20}))
	p := b.Portfolio()
	assert.Equal(t, int64(500), p.Position(0).Amount)
	assert.Equal(t, int64(250), p.Position(1).Amount)

	assert.Error(t, (&ScheduleStrategy{}).Initialize(nil))
}

func TestBuyAndHoldOrdersOnce(t *testing.T) {
	s := &BuyAndHold{Gross: 1}
	b := drive(t, s, feed([]float64{10, 20, 40}))
	assert.Equal(t, int64(1000), b.Portfolio().Position(0).Amount)
}

func TestOracleFollowsBestAsset(t *testing.T) {
	snaps := feed(
		[]float64{10, 10, 20, 20, 20},
		[]float64{10, 10, 10, 10, 30},
	)
	s, err := NewOracleStrategy(snaps, OracleParams{Percent: 1})
	require.NoError(t, err)
	assert.Equal(t, planStep{asset: 0, hold: true}, s.plan[0])
	assert.Equal(t, planStep{asset: 1, hold: true}, s.plan[2])
	assert.False(t, s.plan[1].hold)

	b := drive(t, s, snaps)
	assert.Greater(t, b.Portfolio().PortfolioValue(), 10000.0)

	_, err = NewOracleStrategy(nil, OracleParams{})
	assert.Error(t, err)
}
