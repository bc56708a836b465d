package analysis

import (
	"math"
	"time"

	"github.com/montanaflynn/stats"

	"tick-backtest/internal/model"
)

// AssetPotential is an asset-level summary you can use for ranking.
// It does not depend on any strategy; it includes raw price stats and an
// "oracle" profit for holding one share with perfect foresight.
type AssetPotential struct {
	Asset model.AssetID `json:"asset"`

	Start time.Time `json:"start"`
	End   time.Time `json:"end"`

	Count int `json:"count"`

	MinPrice  float64 `json:"min_price"`
	MaxPrice  float64 `json:"max_price"`
	MeanPrice float64 `json:"mean_price"`
	P05Price  float64 `json:"p05_price"`
	P95Price  float64 `json:"p95_price"`

	SpreadP95P05 float64 `json:"spread_p95_p05"`

	// OracleProfit is the profit of a canonical trader that holds one share
	// across every tick-to-tick rise and is flat across every fall.
	OracleProfit float64 `json:"oracle_profit"`
}

// ComputePotential summarizes asset's usable prices in feed.
func ComputePotential(feed []model.Snapshot, asset model.AssetID) AssetPotential {
	p := AssetPotential{Asset: asset}
	var prices stats.Float64Data
	prev := math.NaN()
	for _, snap := range feed {
		v, ok := snap.Price(asset)
		if !ok {
			continue
		}
		if p.Count == 0 {
			p.Start = snap.Dt
		}
		p.End = snap.Dt
		p.Count++
		prices = append(prices, v)
		if !math.IsNaN(prev) && v > prev {
			p.OracleProfit += v - prev
		}
		prev = v
	}
	if len(prices) == 0 {
		return p
	}

	p.MinPrice, _ = stats.Min(prices)
	p.MaxPrice, _ = stats.Max(prices)
	p.MeanPrice, _ = stats.Mean(prices)
	p.P05Price = percentile(prices, 5)
	p.P95Price = percentile(prices, 95)
	p.SpreadP95P05 = p.P95Price - p.P05Price
	return p
}

// percentile falls back to the min or max when the sample is too small for
// the requested rank.
func percentile(data stats.Float64Data, pct float64) float64 {
	v, err := stats.Percentile(data, pct)
	if err == nil {
		return v
	}
	if pct < 50 {
		v, _ = stats.Min(data)
	} else {
		v, _ = stats.Max(data)
	}
	return v
}
