package data

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"tick-backtest/internal/model"
)

// SyntheticParams configures a geometric random walk per asset.
type SyntheticParams struct {
	Assets     int
	Ticks      int
	Seed       int64
	Start      time.Time
	StartPrice float64
	// Drift and Volatility are per tick.
	Drift      float64
	Volatility float64
	// Bars is "daily" or "minute" and sets the tick spacing.
	Bars string
}

func (p SyntheticParams) withDefaults() SyntheticParams {
	if p.Assets == 0 {
		p.Assets = 3
	}
	if p.Ticks == 0 {
		p.Ticks = 250
	}
	if p.Start.IsZero() {
		p.Start = time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	}
	if p.StartPrice == 0 {
		p.StartPrice = 100
	}
	if p.Volatility == 0 {
		p.Volatility = 0.01
	}
	if p.Bars == "" {
		p.Bars = "daily"
	}
	return p
}

// Generate builds a deterministic feed for the given seed. Each snapshot
// carries price, open, high, low, close and volume for every asset.
func Generate(p SyntheticParams) (*model.Feed, error) {
	p = p.withDefaults()
	if p.Assets < 0 || p.Ticks < 0 {
		return nil, fmt.Errorf("assets and ticks must be non-negative")
	}
	if p.StartPrice < 0 || p.Volatility < 0 {
		return nil, fmt.Errorf("start price and volatility must be non-negative")
	}
	step := 24 * time.Hour
	if p.Bars == "minute" {
		step = time.Minute
	}

	rng := rand.New(rand.NewSource(p.Seed))
	prices := make([]float64, p.Assets)
	for a := range prices {
		prices[a] = p.StartPrice
	}
	snaps := make([]model.Snapshot, p.Ticks)
	for t := 0; t < p.Ticks; t++ {
		s := model.NewSnapshot(p.Start.Add(time.Duration(t) * step))
		for a := 0; a < p.Assets; a++ {
			open := prices[a]
			shock := p.Drift + p.Volatility*rng.NormFloat64()
			closeP := open * math.Exp(shock)
			spread := math.Abs(closeP-open) + open*p.Volatility*rng.Float64()
			id := model.AssetID(a)
			s.Set(id, model.FieldOpen, round(open))
			s.Set(id, model.FieldClose, round(closeP))
			s.Set(id, model.FieldPrice, round(closeP))
			s.Set(id, model.FieldHigh, round(math.Max(open, closeP)+spread/2))
			s.Set(id, model.FieldLow, round(math.Min(open, closeP)-spread/2))
			s.Set(id, model.FieldVolume, math.Round(1000+9000*rng.Float64()))
			prices[a] = closeP
		}
		snaps[t] = s
	}
	return &model.Feed{
		Name:      fmt.Sprintf("synthetic-%d", p.Seed),
		Bars:      p.Bars,
		Snapshots: snaps,
	}, nil
}

func round(x float64) float64 {
	return math.Round(x*10000) / 10000
}
