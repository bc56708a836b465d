package models

import (
	"time"

	"tick-backtest/internal/analysis"
	"tick-backtest/internal/backtest"
	"tick-backtest/internal/data"
)

// BacktestResponse is returned by POST /api/v1/backtest. ID can be used
// with GET /api/v1/backtest/:id/ledger while the result stays cached.
type BacktestResponse struct {
	ID      string               `json:"id"`
	Status  string               `json:"status"`
	Summary BacktestSummary      `json:"summary"`
	Ledger  []backtest.LedgerRow `json:"ledger,omitempty"`
}

type BacktestSummary struct {
	analysis.Performance
	Feed           string     `json:"feed"`
	BacktestWindow TimeWindow `json:"backtest_window"`
}

type TimeWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

type LedgerResponse struct {
	ID     string               `json:"id"`
	Ledger []backtest.LedgerRow `json:"ledger"`
}

type CompareBacktestResponse struct {
	Comparison []ComparisonResult `json:"comparison"`
}

// ComparisonResult is one variation, ranked by total return.
type ComparisonResult struct {
	Rank    int             `json:"rank"`
	Name    string          `json:"name"`
	ID      string          `json:"id"`
	Summary BacktestSummary `json:"summary"`
}

type RankResponse struct {
	Feed     string    `json:"feed"`
	Rankings []Ranking `json:"rankings"`
}

type Ranking struct {
	Rank int `json:"rank"`
	analysis.AssetPotential
}

type StrategyInfo struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  []ParameterInfo `json:"parameters"`
}

type ParameterInfo struct {
	Name        string `json:"name"`
	Type        string `json:"type"` // "float", "int", "string", "[]int"
	Description string `json:"description"`
	Default     any    `json:"default,omitempty"`
}

type FeedsResponse struct {
	Dir   string          `json:"dir"`
	Feeds []data.FeedInfo `json:"feeds"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information
type ErrorDetail struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}
