package strategy

import (
	"errors"
	"fmt"

	"tick-backtest/internal/algorithm"
	"tick-backtest/internal/batch"
	"tick-backtest/internal/indicator"
	"tick-backtest/internal/model"
)

type MeanReversionParams struct {
	Window    int
	Threshold float64
	Percent   float64
	Assets    []model.AssetID
}

// MeanReversion buys an asset whose price sits Threshold standard
// deviations below its window mean and exits once it is that far above.
type MeanReversion struct {
	Params MeanReversionParams
	Base   batch.Config

	signal *batch.BatchTransform[indicator.Values]
}

func (s *MeanReversion) Name() string { return "mean_reversion" }

// zscoreSignal maps each asset's z-score to +1 (buy), -1 (exit) or 0. The
// threshold arrives as the "threshold" keyword argument.
func zscoreSignal(w *batch.Window, args batch.Args) (indicator.Values, error) {
	z, err := indicator.ZScore(model.FieldPrice)(w, args)
	if err != nil {
		return nil, err
	}
	threshold, _ := args.Kwarg("threshold", 1.0).(float64)
	out := make(indicator.Values, len(z))
	for id, v := range z {
		switch {
		case v <= -threshold:
			out[id] = 1
		case v >= threshold:
			out[id] = -1
		default:
			out[id] = 0
		}
	}
	return out, nil
}

func (s *MeanReversion) Initialize(ctx *algorithm.Context) error {
	cfg := s.Base
	cfg.Name = "zscore_signal"
	cfg.WindowLength = s.Params.Window
	cfg.Sids = s.Params.Assets
	cfg.Fields = []string{model.FieldPrice}
	var err error
	s.signal, err = batch.New(cfg, zscoreSignal, batch.WithLogger(ctx.Logger()))
	return err
}

func (s *MeanReversion) HandleData(ctx *algorithm.Context, data model.Snapshot) error {
	signals, ok, err := s.signal.HandleData(data, batch.NoArgs.With("threshold", s.Params.Threshold))
	if err != nil || !ok {
		return err
	}
	for _, id := range universe(s.Params.Assets, data) {
		sig, ok := signals.Get(id)
		if !ok {
			continue
		}
		ctx.Record(fmt.Sprintf("signal_%d", id), sig)
		held := ctx.Portfolio().Position(id).Amount
		switch {
		case sig > 0 && held == 0:
			if _, err := ctx.OrderTargetPercent(id, s.Params.Percent); err != nil && !errors.Is(err, algorithm.ErrNoPrice) {
				return err
			}
		case sig < 0 && held != 0:
			ctx.OrderTarget(id, 0)
		}
	}
	return nil
}
