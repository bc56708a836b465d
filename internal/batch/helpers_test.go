package batch

import (
	"time"

	"tick-backtest/internal/model"
)

var t0 = time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

func day(i int) time.Time { return t0.AddDate(0, 0, i) }

// priceSnap builds a snapshot at day i with the given prices keyed by asset.
func priceSnap(i int, prices map[model.AssetID]float64) model.Snapshot {
	s := model.NewSnapshot(day(i))
	for id, p := range prices {
		s.Set(id, model.FieldPrice, p)
		s.Set(id, model.FieldVolume, 100)
	}
	return s
}

func oneAsset(i int, price float64) model.Snapshot {
	return priceSnap(i, map[model.AssetID]float64{0: price})
}

// returnPrice hands back the price frame, counting invocations.
func returnPrice(calls *int) Func[*Frame] {
	return func(w *Window, _ Args) (*Frame, error) {
		*calls++
		fr, _ := w.Price()
		return fr, nil
	}
}
