package strategy

import (
	"errors"

	"tick-backtest/internal/algorithm"
	"tick-backtest/internal/model"
)

// BuyAndHold invests an equal share of the portfolio in each asset on the
// first tick and never trades again.
type BuyAndHold struct {
	Assets []model.AssetID
	Gross  float64

	done bool
}

func (s *BuyAndHold) Name() string { return "buy_and_hold" }

func (s *BuyAndHold) Initialize(*algorithm.Context) error {
	s.done = false
	return nil
}

func (s *BuyAndHold) HandleData(ctx *algorithm.Context, data model.Snapshot) error {
	if s.done {
		return nil
	}
	assets := universe(s.Assets, data)
	if len(assets) == 0 {
		return nil
	}
	for _, id := range assets {
		if _, err := ctx.OrderPercent(id, s.Gross/float64(len(assets))); err != nil && !errors.Is(err, algorithm.ErrNoPrice) {
			return err
		}
	}
	s.done = true
	return nil
}

// RecordTicks places no orders and records a running tick count as "incr".
type RecordTicks struct {
	incr int
}

func (s *RecordTicks) Name() string { return "record_ticks" }

func (s *RecordTicks) Initialize(*algorithm.Context) error {
	s.incr = 0
	return nil
}

func (s *RecordTicks) HandleData(ctx *algorithm.Context, _ model.Snapshot) error {
	s.incr++
	ctx.Record("incr", float64(s.incr))
	return nil
}
