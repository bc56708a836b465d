package strategy

import (
	"errors"
	"fmt"

	"tick-backtest/internal/batch"
	"tick-backtest/internal/model"
)

// ErrUnknownStrategy is returned by Build for a name Infos does not list.
var ErrUnknownStrategy = errors.New("unsupported strategy")

// Env carries what a strategy may need beyond its own parameters.
type Env struct {
	// Transform is the base config for any batch transform the strategy builds.
	Transform batch.Config
	// Feed is only read by strategies that plan ahead, such as oracle.
	Feed []model.Snapshot
	// SameBarFills mirrors the run's fill policy.
	SameBarFills bool
}

// ParamInfo describes one strategy parameter.
type ParamInfo struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description"`
	Default     any    `json:"default"`
}

// Info describes a registered strategy.
type Info struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Parameters  []ParamInfo `json:"parameters"`
}

var assetsParam = ParamInfo{Name: "assets", Type: "[]int", Description: "Asset ids to trade (default: every asset in the feed)", Default: nil}

// Infos lists every strategy Build accepts.
func Infos() []Info {
	return []Info{
		{
			Name:        "mavg_crossover",
			Description: "Dual moving average crossover. Long while the short average is above the long one.",
			Parameters: []ParamInfo{
				{Name: "short_window", Type: "int", Description: "Ticks in the short average", Default: 5},
				{Name: "long_window", Type: "int", Description: "Ticks in the long average", Default: 20},
				{Name: "percent", Type: "float", Description: "Portfolio fraction per asset while long", Default: 0.1},
				assetsParam,
			},
		},
		{
			Name:        "mean_reversion",
			Description: "Buys assets trading below their window mean by a z-score threshold and exits above it.",
			Parameters: []ParamInfo{
				{Name: "window", Type: "int", Description: "Ticks in the z-score window", Default: 20},
				{Name: "threshold", Type: "float", Description: "Z-score entry/exit threshold", Default: 1.0},
				{Name: "percent", Type: "float", Description: "Portfolio fraction per asset while long", Default: 0.1},
				assetsParam,
			},
		},
		{
			Name:        "rebalance",
			Description: "Equal-weight rebalance on a fixed tick cadence.",
			Parameters: []ParamInfo{
				{Name: "every", Type: "int", Description: "Ticks between rebalances", Default: 20},
				{Name: "gross", Type: "float", Description: "Total invested fraction", Default: 1.0},
				assetsParam,
			},
		},
		{
			Name:        "buy_and_hold",
			Description: "Equal-weight purchase on the first tick, held to the end.",
			Parameters: []ParamInfo{
				{Name: "gross", Type: "float", Description: "Total invested fraction", Default: 1.0},
				assetsParam,
			},
		},
		{
			Name:        "oracle",
			Description: "Perfect foresight. Holds the asset with the best upcoming return; an upper bound for ranking.",
			Parameters: []ParamInfo{
				{Name: "percent", Type: "float", Description: "Portfolio fraction in the chosen asset", Default: 1.0},
			},
		},
		{
			Name:        "record_ticks",
			Description: "Places no orders; records a running tick counter.",
		},
	}
}

// Build constructs the named strategy. Unset parameters take the defaults
// listed by Infos.
func Build(name string, params Params, env Env) (Strategy, error) {
	switch name {
	case "mavg_crossover":
		return &MavgCrossover{
			Params: MavgParams{
				ShortWindow: params.Int("short_window", 5),
				LongWindow:  params.Int("long_window", 20),
				Percent:     params.Num("percent", 0.1),
				Assets:      params.Assets("assets"),
			},
			Base: env.Transform,
		}, nil
	case "mean_reversion":
		return &MeanReversion{
			Params: MeanReversionParams{
				Window:    params.Int("window", 20),
				Threshold: params.Num("threshold", 1.0),
				Percent:   params.Num("percent", 0.1),
				Assets:    params.Assets("assets"),
			},
			Base: env.Transform,
		}, nil
	case "rebalance":
		return &ScheduleStrategy{Params: ScheduleParams{
			Every:  params.Int("every", 20),
			Gross:  params.Num("gross", 1.0),
			Assets: params.Assets("assets"),
		}}, nil
	case "buy_and_hold":
		return &BuyAndHold{
			Assets: params.Assets("assets"),
			Gross:  params.Num("gross", 1.0),
		}, nil
	case "oracle":
		return NewOracleStrategy(env.Feed, OracleParams{
			SameBar: env.SameBarFills,
			Percent: params.Num("percent", 1.0),
		})
	case "record_ticks":
		return &RecordTicks{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
	}
}
