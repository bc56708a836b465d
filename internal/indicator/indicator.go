// Package indicator provides window computations for batch transforms.
package indicator

import (
	"fmt"
	"math"

	"github.com/montanaflynn/stats"

	"tick-backtest/internal/batch"
	"tick-backtest/internal/model"
)

// Values holds one number per asset.
type Values map[model.AssetID]float64

// Get returns the value for asset and whether it is usable.
func (v Values) Get(asset model.AssetID) (float64, bool) {
	x, ok := v[asset]
	if !ok || math.IsNaN(x) {
		return math.NaN(), false
	}
	return x, true
}

// reducer turns one asset's series into a number.
type reducer func(series []float64) (float64, error)

// perAsset applies r to every asset's column of field. Assets whose series is
// empty after skipping NaN are left out.
func perAsset(field string, r reducer) batch.Func[Values] {
	return func(w *batch.Window, _ batch.Args) (Values, error) {
		fr, ok := w.Field(field)
		if !ok {
			return Values{}, nil
		}
		out := make(Values, len(fr.Assets()))
		for _, id := range fr.Assets() {
			series := finite(fr.Column(id))
			if len(series) == 0 {
				continue
			}
			x, err := r(series)
			if err != nil {
				return nil, fmt.Errorf("%s of asset %d: %w", field, id, err)
			}
			out[id] = x
		}
		return out, nil
	}
}

func finite(xs []float64) stats.Float64Data {
	out := make(stats.Float64Data, 0, len(xs))
	for _, x := range xs {
		if !math.IsNaN(x) && !math.IsInf(x, 0) {
			out = append(out, x)
		}
	}
	return out
}

// MovingAverage is the mean of field over the window.
func MovingAverage(field string) batch.Func[Values] {
	return perAsset(field, func(s []float64) (float64, error) {
		return stats.Mean(s)
	})
}

// StdDev is the sample standard deviation of field. Single-point series
// yield zero.
func StdDev(field string) batch.Func[Values] {
	return perAsset(field, func(s []float64) (float64, error) {
		if len(s) < 2 {
			return 0, nil
		}
		return stats.StandardDeviationSample(s)
	})
}

// Returns is the simple return from the oldest to the newest value.
func Returns(field string) batch.Func[Values] {
	return perAsset(field, func(s []float64) (float64, error) {
		if s[0] == 0 {
			return math.NaN(), nil
		}
		return s[len(s)-1]/s[0] - 1, nil
	})
}

// ZScore measures the newest value against the window mean in standard
// deviations. Zero when the window has no dispersion.
func ZScore(field string) batch.Func[Values] {
	return perAsset(field, func(s []float64) (float64, error) {
		if len(s) < 2 {
			return 0, nil
		}
		mean, err := stats.Mean(s)
		if err != nil {
			return 0, err
		}
		sd, err := stats.StandardDeviationSample(s)
		if err != nil {
			return 0, err
		}
		if sd == 0 {
			return 0, nil
		}
		return (s[len(s)-1] - mean) / sd, nil
	})
}

// VWAP is the volume weighted average price over the window. Ticks where
// either price or volume is missing are skipped.
func VWAP() batch.Func[Values] {
	return func(w *batch.Window, _ batch.Args) (Values, error) {
		price, ok := w.Price()
		if !ok {
			return Values{}, nil
		}
		volume, ok := w.Field(model.FieldVolume)
		if !ok {
			return Values{}, nil
		}
		out := make(Values, len(price.Assets()))
		for _, id := range price.Assets() {
			p := price.Column(id)
			v := volume.Column(id)
			var pv, vol stats.Float64Data
			for i := range p {
				if math.IsNaN(p[i]) || math.IsNaN(v[i]) {
					continue
				}
				pv = append(pv, p[i]*v[i])
				vol = append(vol, v[i])
			}
			if len(vol) == 0 {
				continue
			}
			num, err := stats.Sum(pv)
			if err != nil {
				return nil, err
			}
			den, err := stats.Sum(vol)
			if err != nil {
				return nil, err
			}
			if den == 0 {
				continue
			}
			out[id] = num / den
		}
		return out, nil
	}
}

// Func looks up a computation by name. Used by config-driven strategies.
func Func(name, field string) (batch.Func[Values], error) {
	if field == "" {
		field = model.FieldPrice
	}
	switch name {
	case "mavg", "moving_average":
		return MovingAverage(field), nil
	case "stddev":
		return StdDev(field), nil
	case "returns":
		return Returns(field), nil
	case "zscore":
		return ZScore(field), nil
	case "vwap":
		return VWAP(), nil
	default:
		return nil, fmt.Errorf("unknown indicator %q", name)
	}
}

// Names lists the indicators accepted by Func.
func Names() []string {
	return []string{"moving_average", "stddev", "returns", "zscore", "vwap"}
}
