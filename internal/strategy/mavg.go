package strategy

import (
	"errors"
	"fmt"

	"tick-backtest/internal/algorithm"
	"tick-backtest/internal/batch"
	"tick-backtest/internal/indicator"
	"tick-backtest/internal/model"
)

// MavgParams configures a dual moving average crossover.
type MavgParams struct {
	ShortWindow int
	LongWindow  int
	// Percent of the portfolio allocated to each asset while long.
	Percent float64
	Assets  []model.AssetID
}

// MavgCrossover goes long an asset while its short moving average is above
// the long one and exits when it falls below.
type MavgCrossover struct {
	Params MavgParams
	// Base is the transform config the two windows are derived from.
	Base batch.Config

	short *batch.BatchTransform[indicator.Values]
	long  *batch.BatchTransform[indicator.Values]
}

func (s *MavgCrossover) Name() string { return "mavg_crossover" }

func (s *MavgCrossover) Initialize(ctx *algorithm.Context) error {
	if s.Params.ShortWindow >= s.Params.LongWindow {
		return fmt.Errorf("short_window (%d) must be below long_window (%d)", s.Params.ShortWindow, s.Params.LongWindow)
	}
	mk := func(name string, length int) (*batch.BatchTransform[indicator.Values], error) {
		cfg := s.Base
		cfg.Name = name
		cfg.WindowLength = length
		cfg.Sids = s.Params.Assets
		cfg.Fields = []string{model.FieldPrice}
		return batch.New(cfg, indicator.MovingAverage(model.FieldPrice), batch.WithLogger(ctx.Logger()))
	}
	var err error
	if s.short, err = mk("mavg_short", s.Params.ShortWindow); err != nil {
		return err
	}
	if s.long, err = mk("mavg_long", s.Params.LongWindow); err != nil {
		return err
	}
	return nil
}

func (s *MavgCrossover) HandleData(ctx *algorithm.Context, data model.Snapshot) error {
	short, okShort, err := s.short.HandleData(data, batch.NoArgs)
	if err != nil {
		return err
	}
	long, okLong, err := s.long.HandleData(data, batch.NoArgs)
	if err != nil {
		return err
	}
	if !okShort || !okLong {
		return nil
	}

	for _, id := range universe(s.Params.Assets, data) {
		sv, ok1 := short.Get(id)
		lv, ok2 := long.Get(id)
		if !ok1 || !ok2 {
			continue
		}
		ctx.Record(fmt.Sprintf("short_mavg_%d", id), sv)
		ctx.Record(fmt.Sprintf("long_mavg_%d", id), lv)

		held := ctx.Portfolio().Position(id).Amount
		switch {
		case sv > lv && held == 0:
			if _, err := ctx.OrderTargetPercent(id, s.Params.Percent); err != nil && !errors.Is(err, algorithm.ErrNoPrice) {
				return err
			}
		case sv < lv && held != 0:
			ctx.OrderTarget(id, 0)
		}
	}
	return nil
}
