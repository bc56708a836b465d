package backtest

import (
	"time"

	"tick-backtest/internal/model"
)

// LedgerRow is one row of per-tick output.
// This is the primary artifact for "what happened" in a backtest.
type LedgerRow struct {
	Index int       `json:"index"`
	Dt    time.Time `json:"dt"`

	Cash           float64 `json:"cash"`
	PositionsValue float64 `json:"positions_value"`
	PortfolioValue float64 `json:"portfolio_value"`

	// Orders placed by the strategy on this tick.
	Orders int `json:"orders"`
	// Fills applied at the start of this tick.
	Fills     int          `json:"fills"`
	NetShares int64        `json:"net_shares"`
	Action    model.Action `json:"action"`

	PNL    float64 `json:"pnl"`
	CumPNL float64 `json:"cum_pnl"`

	Recorded map[string]float64 `json:"recorded,omitempty"`
}

type Result struct {
	Strategy     string              `json:"strategy"`
	Ledger       []LedgerRow         `json:"ledger"`
	Transactions []model.Transaction `json:"transactions"`
	StartingCash float64             `json:"starting_cash"`
	TotalPNL     float64             `json:"total_pnl"`
	// Final is the portfolio after the last tick's fills. Orders placed on
	// the last tick are never filled.
	Final model.Portfolio `json:"-"`
}

// Returns lists the per-tick portfolio returns, starting with the first
// tick relative to the starting cash.
func (r *Result) Returns() []float64 {
	out := make([]float64, 0, len(r.Ledger))
	prev := r.StartingCash
	for _, row := range r.Ledger {
		if prev != 0 {
			out = append(out, row.PortfolioValue/prev-1)
		} else {
			out = append(out, 0)
		}
		prev = row.PortfolioValue
	}
	return out
}
