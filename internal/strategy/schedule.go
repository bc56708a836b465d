package strategy

import (
	"errors"
	"fmt"

	"tick-backtest/internal/algorithm"
	"tick-backtest/internal/model"
)

// ScheduleParams implements a fixed-cadence rebalance:
// every Every ticks, each asset is set to an equal share of the portfolio.
type ScheduleParams struct {
	Every int
	// Gross is the fraction of the portfolio invested in total.
	Gross  float64
	Assets []model.AssetID
}

type ScheduleStrategy struct {
	Params ScheduleParams

	tick int
}

func (s *ScheduleStrategy) Name() string { return "rebalance" }

func (s *ScheduleStrategy) Initialize(*algorithm.Context) error {
	if s.Params.Every < 1 {
		return fmt.Errorf("every must be >= 1, got %d", s.Params.Every)
	}
	s.tick = 0
	return nil
}

func (s *ScheduleStrategy) HandleData(ctx *algorithm.Context, data model.Snapshot) error {
	due := s.tick%s.Params.Every == 0
	s.tick++
	if !due {
		return nil
	}
	assets := universe(s.Params.Assets, data)
	if len(assets) == 0 {
		return nil
	}
	weight := s.Params.Gross / float64(len(assets))
	for _, id := range assets {
		if _, err := ctx.OrderTargetPercent(id, weight); err != nil {
			if errors.Is(err, algorithm.ErrNoPrice) {
				continue
			}
			return err
		}
	}
	return nil
}
