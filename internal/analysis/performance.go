package analysis

import (
	"math"

	"github.com/montanaflynn/stats"

	"tick-backtest/internal/backtest"
)

// Performance summarizes a backtest result.
type Performance struct {
	Strategy string `json:"strategy"`
	Ticks    int    `json:"ticks"`
	Fills    int    `json:"fills"`

	StartingCash float64 `json:"starting_cash"`
	EndingValue  float64 `json:"ending_value"`
	TotalPNL     float64 `json:"total_pnl"`
	TotalReturn  float64 `json:"total_return"`

	MeanReturn float64 `json:"mean_return"`
	StdReturn  float64 `json:"std_return"`
	// Sharpe is annualized from per-tick returns with a zero risk-free rate.
	Sharpe float64 `json:"sharpe"`
	// MaxDrawdown is the largest peak-to-trough fall as a positive fraction.
	MaxDrawdown float64 `json:"max_drawdown"`

	P05Return float64 `json:"p05_return"`
	P95Return float64 `json:"p95_return"`
}

// PeriodsPerYear maps a bar granularity tag to its annualization factor.
func PeriodsPerYear(bars string) float64 {
	if bars == "minute" {
		return 252 * 390
	}
	return 252
}

func ComputePerformance(res *backtest.Result, bars string) Performance {
	p := Performance{}
	if res == nil {
		return p
	}
	p.Strategy = res.Strategy
	p.Ticks = len(res.Ledger)
	p.Fills = len(res.Transactions)
	p.StartingCash = res.StartingCash
	p.EndingValue = res.StartingCash
	if n := len(res.Ledger); n > 0 {
		p.EndingValue = res.Ledger[n-1].PortfolioValue
	}
	p.TotalPNL = p.EndingValue - p.StartingCash
	if p.StartingCash != 0 {
		p.TotalReturn = p.EndingValue/p.StartingCash - 1
	}

	returns := stats.Float64Data(res.Returns())
	if len(returns) == 0 {
		return p
	}
	p.MeanReturn, _ = stats.Mean(returns)
	if len(returns) > 1 {
		p.StdReturn, _ = stats.StandardDeviationSample(returns)
	}
	if p.StdReturn > 0 {
		p.Sharpe = p.MeanReturn / p.StdReturn * math.Sqrt(PeriodsPerYear(bars))
	}
	p.P05Return = percentile(returns, 5)
	p.P95Return = percentile(returns, 95)

	peak := res.StartingCash
	for _, row := range res.Ledger {
		if row.PortfolioValue > peak {
			peak = row.PortfolioValue
		}
		if peak > 0 {
			if dd := (peak - row.PortfolioValue) / peak; dd > p.MaxDrawdown {
				p.MaxDrawdown = dd
			}
		}
	}
	return p
}
