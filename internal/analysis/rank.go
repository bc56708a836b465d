package analysis

import (
	"sort"

	"tick-backtest/internal/backtest"
	"tick-backtest/internal/model"
)

type RankedPerformance struct {
	Name string `json:"name"`
	Performance
}

// RankByReturn computes performance per named run and sorts descending by
// TotalReturn. Ties keep name order.
func RankByReturn(results map[string]*backtest.Result, bars string) []RankedPerformance {
	out := make([]RankedPerformance, 0, len(results))
	for name, res := range results {
		out = append(out, RankedPerformance{Name: name, Performance: ComputePerformance(res, bars)})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalReturn != out[j].TotalReturn {
			return out[i].TotalReturn > out[j].TotalReturn
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// RankByOracleProfit computes potentials per asset in feed and sorts
// descending by OracleProfit.
func RankByOracleProfit(feed []model.Snapshot) []AssetPotential {
	seen := map[model.AssetID]struct{}{}
	for _, snap := range feed {
		for id := range snap.Bars {
			seen[id] = struct{}{}
		}
	}
	out := make([]AssetPotential, 0, len(seen))
	for id := range seen {
		out = append(out, ComputePotential(feed, id))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].OracleProfit != out[j].OracleProfit {
			return out[i].OracleProfit > out[j].OracleProfit
		}
		return out[i].Asset < out[j].Asset
	})
	return out
}
