package models

import "tick-backtest/internal/config"

// BacktestRequest is the body of POST /api/v1/backtest.
type BacktestRequest struct {
	Data    DataSource      `json:"data" binding:"required"`
	Config  BacktestConfig  `json:"config" binding:"required"`
	Options BacktestOptions `json:"options,omitempty"`
}

// DataSource selects the feed. Exactly one of Feed, Remote or Synthetic
// is expected; Feed names a file in the server's feeds directory.
type DataSource struct {
	Feed      string                  `json:"feed,omitempty"`
	Remote    string                  `json:"remote,omitempty"`
	Synthetic *config.SyntheticConfig `json:"synthetic,omitempty"`
	// Limit keeps only the first N snapshots (0 = all).
	Limit int `json:"limit,omitempty"`
}

// BacktestConfig mirrors the run settings of a YAML config.
type BacktestConfig struct {
	Capital        float64                `json:"capital,omitempty"`
	FillPolicy     string                 `json:"fill_policy,omitempty"`
	SlippageSpread float64                `json:"slippage_spread,omitempty"`
	Transform      config.TransformConfig `json:"transform,omitempty"`
	Strategy       StrategyConfig         `json:"strategy"`
}

type StrategyConfig struct {
	Name   string         `json:"name"`
	Params map[string]any `json:"params,omitempty"`
}

type BacktestOptions struct {
	IncludeLedger bool `json:"include_ledger,omitempty"`
}

// CompareBacktestRequest runs every variation over the same feed. Each
// variation is merged over BaseConfig.
type CompareBacktestRequest struct {
	Data       DataSource          `json:"data" binding:"required"`
	BaseConfig BacktestConfig      `json:"base_config"`
	Variations []BacktestVariation `json:"variations" binding:"required,min=1,dive"`
}

type BacktestVariation struct {
	Name   string         `json:"name" binding:"required"`
	Config BacktestConfig `json:"config"`
}

// RankRequest is the query of GET /api/v1/rank.
type RankRequest struct {
	Feed  string `form:"feed" binding:"required"`
	Limit int    `form:"limit,omitempty"` // default: 10
}
