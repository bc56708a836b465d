// Package runner turns a config.Config into a finished backtest: it loads
// the feed, builds the strategy and drives the engine.
package runner

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"tick-backtest/internal/backtest"
	"tick-backtest/internal/blotter"
	"tick-backtest/internal/config"
	"tick-backtest/internal/data"
	"tick-backtest/internal/logging"
	"tick-backtest/internal/model"
	"tick-backtest/internal/strategy"
)

// Runner holds the shared feed sources. The zero value loads files without
// caching and has no remote feed service.
type Runner struct {
	Feeds  *data.FeedCache
	Remote *data.FeedClient
	Log    *zap.SugaredLogger
}

// New builds a Runner with a feed cache and, when FEED_SERVICE_URL is set,
// a remote client authenticated with FEED_API_KEY.
func New(log *zap.SugaredLogger) (*Runner, error) {
	if log == nil {
		log = logging.NewNop()
	}
	cache, err := data.NewFeedCache(0)
	if err != nil {
		return nil, err
	}
	r := &Runner{Feeds: cache, Log: log}
	if base := os.Getenv("FEED_SERVICE_URL"); base != "" {
		r.Remote = data.NewFeedClient(os.Getenv("FEED_API_KEY"), base, log)
		r.Remote.Cache = cache
	}
	return r, nil
}

// LoadFeed resolves dc to a feed. The returned feed may be shared with the
// cache; Limit is applied to a copy of the snapshot slice header only.
func (r *Runner) LoadFeed(ctx context.Context, dc config.DataConfig) (*model.Feed, error) {
	var (
		feed *model.Feed
		err  error
	)
	switch {
	case dc.Synthetic != nil:
		s := dc.Synthetic
		feed, err = data.Generate(data.SyntheticParams{
			Assets:     s.Assets,
			Ticks:      s.Ticks,
			Seed:       s.Seed,
			StartPrice: s.StartPrice,
			Drift:      s.Drift,
			Volatility: s.Volatility,
			Bars:       s.Bars,
		})
	case dc.Remote != "":
		if r.Remote == nil {
			return nil, fmt.Errorf("data.remote %q set but FEED_SERVICE_URL is not configured", dc.Remote)
		}
		feed, err = r.Remote.FetchFeed(ctx, data.FetchParams{Name: dc.Remote})
	case dc.Path != "":
		if r.Feeds != nil {
			feed, err = r.Feeds.Load(dc.Path, dc.Format)
		} else {
			feed, err = data.LoadFeed(dc.Path, dc.Format)
		}
	default:
		return nil, fmt.Errorf("no data source configured")
	}
	if err != nil {
		return nil, err
	}
	if dc.Limit > 0 {
		limited := *feed
		limited.Snapshots = data.Limit(feed.Snapshots, dc.Limit)
		feed = &limited
	}
	return feed, nil
}

// Strategy builds the configured strategy for feed.
func Strategy(cfg *config.Config, feed *model.Feed) (strategy.Strategy, error) {
	policy, err := blotter.ParseFillPolicy(cfg.FillPolicy)
	if err != nil {
		return nil, err
	}
	base := cfg.Transform.ToBatchConfig()
	if feed.Bars != "" && cfg.Transform.Bars == "" {
		base.Bars = feed.Bars
	}
	return strategy.Build(cfg.Strategy.Name, strategy.Params(cfg.Strategy.Params), strategy.Env{
		Transform:    base,
		Feed:         feed.Snapshots,
		SameBarFills: policy == blotter.FillSameBar,
	})
}

// Engine builds an engine from the capital, fill and slippage settings.
func Engine(cfg *config.Config, log *zap.SugaredLogger) (*backtest.Engine, error) {
	policy, err := blotter.ParseFillPolicy(cfg.FillPolicy)
	if err != nil {
		return nil, err
	}
	var slip blotter.Slippage = blotter.NoSlippage{}
	if cfg.SlippageSpread > 0 {
		slip = blotter.FixedSlippage{Spread: cfg.SlippageSpread}
	}
	return backtest.New(backtest.Options{
		StartingCash: cfg.Capital,
		FillPolicy:   policy,
		Slippage:     slip,
		Logger:       log,
	}), nil
}

// Run backtests cfg over feed.
func (r *Runner) Run(ctx context.Context, cfg *config.Config, feed *model.Feed) (*backtest.Result, error) {
	strat, err := Strategy(cfg, feed)
	if err != nil {
		return nil, err
	}
	engine, err := Engine(cfg, r.logger())
	if err != nil {
		return nil, err
	}
	return engine.Run(ctx, feed.Snapshots, strat)
}

// RunConfig loads the feed named by cfg and backtests it.
func (r *Runner) RunConfig(ctx context.Context, cfg *config.Config) (*backtest.Result, *model.Feed, error) {
	feed, err := r.LoadFeed(ctx, cfg.Data)
	if err != nil {
		return nil, nil, fmt.Errorf("load feed: %w", err)
	}
	res, err := r.Run(ctx, cfg, feed)
	if err != nil {
		return nil, feed, err
	}
	return res, feed, nil
}

func (r *Runner) logger() *zap.SugaredLogger {
	if r.Log == nil {
		return logging.NewNop()
	}
	return r.Log
}
