package strategy

import (
	"errors"
	"fmt"

	"tick-backtest/internal/algorithm"
	"tick-backtest/internal/model"
)

// OracleStrategy is a "perfect foresight" strategy. It reads the whole feed
// up front and, on every tick, holds the single asset with the best return
// over the period its order will actually be held.
//
// Notes:
//   - This is an upper bound for ranking, not a tradable strategy.
//   - With next-bar fills an order placed on tick i fills at price i+1, so
//     the plan scores the move from i+1 to i+2. With same-bar fills it scores
//     i to i+1.
type OracleStrategy struct {
	plan    []planStep
	percent float64
	tick    int
}

type OracleParams struct {
	// SameBar selects the same-bar scoring horizon.
	SameBar bool
	// Percent of the portfolio put into the chosen asset.
	Percent float64
}

type planStep struct {
	asset model.AssetID
	// hold is false when no asset is expected to rise.
	hold bool
}

func NewOracleStrategy(feed []model.Snapshot, cfg OracleParams) (*OracleStrategy, error) {
	if len(feed) == 0 {
		return nil, fmt.Errorf("no snapshots")
	}
	lead := 1
	if cfg.SameBar {
		lead = 0
	}
	plan := make([]planStep, len(feed))
	for i := range feed {
		from, to := i+lead, i+lead+1
		if to >= len(feed) {
			continue
		}
		best := 0.0
		for _, id := range feed[from].Assets() {
			p0, ok0 := feed[from].Price(id)
			p1, ok1 := feed[to].Price(id)
			if !ok0 || !ok1 {
				continue
			}
			if r := p1/p0 - 1; r > best {
				best = r
				plan[i] = planStep{asset: id, hold: true}
			}
		}
	}
	if cfg.Percent <= 0 {
		cfg.Percent = 1
	}
	return &OracleStrategy{plan: plan, percent: cfg.Percent}, nil
}

func (s *OracleStrategy) Name() string { return "oracle" }

func (s *OracleStrategy) Initialize(*algorithm.Context) error {
	s.tick = 0
	return nil
}

func (s *OracleStrategy) HandleData(ctx *algorithm.Context, data model.Snapshot) error {
	i := s.tick
	s.tick++
	if i >= len(s.plan) {
		return nil
	}
	step := s.plan[i]
	for id := range ctx.Portfolio().Positions() {
		if !step.hold || id != step.asset {
			ctx.OrderTarget(id, 0)
		}
	}
	if !step.hold {
		return nil
	}
	if _, err := ctx.OrderTargetPercent(step.asset, s.percent); err != nil && !errors.Is(err, algorithm.ErrNoPrice) {
		return err
	}
	return nil
}
