package backtest

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"tick-backtest/internal/algorithm"
	"tick-backtest/internal/blotter"
	"tick-backtest/internal/logging"
	"tick-backtest/internal/metrics"
	"tick-backtest/internal/model"
	"tick-backtest/internal/strategy"
)

// Options configures a run.
type Options struct {
	StartingCash float64
	FillPolicy   blotter.FillPolicy
	Slippage     blotter.Slippage
	Logger       *zap.SugaredLogger
}

type Engine struct {
	opts Options
}

func New(opts Options) *Engine {
	if opts.FillPolicy == "" {
		opts.FillPolicy = blotter.FillNextBar
	}
	if opts.Slippage == nil {
		opts.Slippage = blotter.NoSlippage{}
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewNop()
	}
	return &Engine{opts: opts}
}

// Run executes a backtest over a snapshot series. Each tick: pending orders
// fill, the strategy sees the snapshot and the post-fill portfolio, then a
// ledger row is written. Cancellation is checked between ticks.
func (e *Engine) Run(ctx context.Context, feed []model.Snapshot, strat strategy.Strategy) (res *Result, err error) {
	if strat == nil {
		return nil, fmt.Errorf("strategy is nil")
	}
	if len(feed) == 0 {
		return nil, fmt.Errorf("no snapshots")
	}
	if e.opts.StartingCash <= 0 {
		return nil, fmt.Errorf("starting cash must be positive, got %.2f", e.opts.StartingCash)
	}

	name := strat.Name()
	log := e.opts.Logger.With("strategy", name)
	start := time.Now()
	defer func() {
		status := "ok"
		if err != nil {
			status = "error"
		}
		metrics.BacktestRuns.WithLabelValues(name, status).Inc()
		metrics.BacktestRunDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
	}()

	b := blotter.New(e.opts.StartingCash,
		blotter.WithFillPolicy(e.opts.FillPolicy),
		blotter.WithSlippage(e.opts.Slippage),
		blotter.WithLogger(log),
	)
	actx := algorithm.NewContext(b, log)
	if err := strat.Initialize(actx); err != nil {
		return nil, fmt.Errorf("initialize %s: %w", name, err)
	}

	ledger := make([]LedgerRow, 0, len(feed))
	var txns []model.Transaction
	prevValue := e.opts.StartingCash

	for idx, snap := range feed {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if idx > 0 && !snap.Dt.After(feed[idx-1].Dt) {
			return nil, fmt.Errorf("tick %d: snapshot at %s is not after %s", idx, snap.Dt.Format(time.RFC3339), feed[idx-1].Dt.Format(time.RFC3339))
		}

		fills := b.ProcessTick(snap)
		txns = append(txns, fills...)
		actx.Advance(snap, b.Portfolio())

		if err := strat.HandleData(actx, snap); err != nil {
			return nil, fmt.Errorf("tick %d handle data: %w", idx, err)
		}
		metrics.BacktestTicks.WithLabelValues(name).Inc()

		p := actx.Portfolio()
		var net int64
		for _, t := range fills {
			net += t.Amount
		}
		value := p.PortfolioValue()
		row := LedgerRow{
			Index: idx,
			Dt:    snap.Dt,

			Cash:           p.Cash(),
			PositionsValue: p.PositionsValue(),
			PortfolioValue: value,

			Orders:    len(actx.OrderIDs()),
			Fills:     len(fills),
			NetShares: net,
			Action:    model.ActionFromAmount(net),

			PNL:    value - prevValue,
			CumPNL: value - e.opts.StartingCash,
		}
		if rec := actx.Recorded(); len(rec) > 0 {
			row.Recorded = rec
		}
		ledger = append(ledger, row)
		prevValue = value
	}

	final := b.Portfolio()
	log.Infow("Backtest finished", "ticks", len(ledger), "fills", len(txns), "pnl", final.PNL())
	return &Result{
		Strategy:     name,
		Ledger:       ledger,
		Transactions: txns,
		StartingCash: e.opts.StartingCash,
		TotalPNL:     final.PNL(),
		Final:        final,
	}, nil
}
