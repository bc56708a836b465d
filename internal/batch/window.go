package batch

import (
	"math"
	"time"

	"tick-backtest/internal/model"
)

// Window is a tick × asset × field table, ticks ordered oldest to newest.
// Missing values are NaN. A Window is never modified after it is handed out;
// transformations return new windows and the axis accessors return copies.
type Window struct {
	ticks  []time.Time
	assets []model.AssetID
	fields []string

	// values is laid out [tick][asset][field] in a single slice.
	values []float64
}

func newWindow(ticks []time.Time, assets []model.AssetID, fields []string) *Window {
	w := &Window{
		ticks:  ticks,
		assets: assets,
		fields: fields,
		values: make([]float64, len(ticks)*len(assets)*len(fields)),
	}
	for i := range w.values {
		w.values[i] = math.NaN()
	}
	return w
}

func (w *Window) offset(t, a, f int) int {
	return (t*len(w.assets)+a)*len(w.fields) + f
}

// Len is the number of ticks in the window.
func (w *Window) Len() int { return len(w.ticks) }

// Ticks returns a copy of the tick times, oldest first.
func (w *Window) Ticks() []time.Time { return append([]time.Time(nil), w.ticks...) }

// Assets returns a copy of the asset axis.
func (w *Window) Assets() []model.AssetID { return append([]model.AssetID(nil), w.assets...) }

// Fields returns a copy of the field axis.
func (w *Window) Fields() []string { return append([]string(nil), w.fields...) }

// At returns the value at tick index t, asset index a and field index f.
func (w *Window) At(t, a, f int) float64 {
	return w.values[w.offset(t, a, f)]
}

func (w *Window) set(t, a, f int, v float64) {
	w.values[w.offset(t, a, f)] = v
}

func (w *Window) AssetIndex(asset model.AssetID) (int, bool) {
	for i, id := range w.assets {
		if id == asset {
			return i, true
		}
	}
	return -1, false
}

func (w *Window) FieldIndex(field string) (int, bool) {
	for i, f := range w.fields {
		if f == field {
			return i, true
		}
	}
	return -1, false
}

// Value looks a single cell up by tick index, asset id and field name.
func (w *Window) Value(t int, asset model.AssetID, field string) (float64, bool) {
	a, ok := w.AssetIndex(asset)
	if !ok {
		return math.NaN(), false
	}
	f, ok := w.FieldIndex(field)
	if !ok {
		return math.NaN(), false
	}
	return w.At(t, a, f), true
}

// Field slices out one field as a tick × asset frame.
func (w *Window) Field(name string) (*Frame, bool) {
	f, ok := w.FieldIndex(name)
	if !ok {
		return nil, false
	}
	fr := &Frame{
		ticks:  w.ticks,
		assets: w.assets,
		values: make([][]float64, len(w.ticks)),
	}
	for t := range w.ticks {
		row := make([]float64, len(w.assets))
		for a := range w.assets {
			row[a] = w.At(t, a, f)
		}
		fr.values[t] = row
	}
	return fr, true
}

// Price is shorthand for Field("price").
func (w *Window) Price() (*Frame, bool) {
	return w.Field(model.FieldPrice)
}

// Map applies fn element-wise and returns a new window. NaN inputs are
// handed to fn like any other value, so functions such as math.Log
// propagate them.
func (w *Window) Map(fn func(float64) float64) *Window {
	out := &Window{ticks: w.ticks, assets: w.assets, fields: w.fields, values: make([]float64, len(w.values))}
	for i, v := range w.values {
		out.values[i] = fn(v)
	}
	return out
}

// HasNaN reports whether any cell is missing.
func (w *Window) HasNaN() bool {
	for _, v := range w.values {
		if math.IsNaN(v) {
			return true
		}
	}
	return false
}

// Snapshot rebuilds the snapshot for tick index t. NaN cells are omitted.
func (w *Window) Snapshot(t int) model.Snapshot {
	snap := model.NewSnapshot(w.ticks[t])
	for a, id := range w.assets {
		for f, name := range w.fields {
			v := w.At(t, a, f)
			if math.IsNaN(v) {
				continue
			}
			snap.Set(id, name, v)
		}
	}
	return snap
}

// selectTicks returns a window restricted to the given tick indexes.
func (w *Window) selectTicks(keep []int) *Window {
	ticks := make([]time.Time, len(keep))
	for i, t := range keep {
		ticks[i] = w.ticks[t]
	}
	out := newWindow(ticks, w.assets, w.fields)
	for i, t := range keep {
		for a := range w.assets {
			for f := range w.fields {
				out.set(i, a, f, w.At(t, a, f))
			}
		}
	}
	return out
}

// selectAssets returns a window restricted to the given asset indexes.
func (w *Window) selectAssets(keep []int) *Window {
	assets := make([]model.AssetID, len(keep))
	for i, a := range keep {
		assets[i] = w.assets[a]
	}
	out := newWindow(w.ticks, assets, w.fields)
	for t := range w.ticks {
		for i, a := range keep {
			for f := range w.fields {
				out.set(t, i, f, w.At(t, a, f))
			}
		}
	}
	return out
}

// Frame is a single field of a window, tick × asset.
type Frame struct {
	ticks  []time.Time
	assets []model.AssetID

	values [][]float64
}

func (fr *Frame) Len() int { return len(fr.ticks) }

func (fr *Frame) Ticks() []time.Time { return append([]time.Time(nil), fr.ticks...) }

func (fr *Frame) Assets() []model.AssetID { return append([]model.AssetID(nil), fr.assets...) }

func (fr *Frame) At(t, a int) float64 { return fr.values[t][a] }

// Column returns the series for one asset, oldest first. Nil when the asset
// is not in the frame.
func (fr *Frame) Column(asset model.AssetID) []float64 {
	a := -1
	for i, id := range fr.assets {
		if id == asset {
			a = i
			break
		}
	}
	if a < 0 {
		return nil
	}
	out := make([]float64, len(fr.ticks))
	for t := range fr.ticks {
		out[t] = fr.values[t][a]
	}
	return out
}

// Last returns the newest value for asset, NaN when unavailable.
func (fr *Frame) Last(asset model.AssetID) float64 {
	col := fr.Column(asset)
	if len(col) == 0 {
		return math.NaN()
	}
	return col[len(col)-1]
}

// Values returns a copy of the frame as rows of ticks.
func (fr *Frame) Values() [][]float64 {
	out := make([][]float64, len(fr.values))
	for t, row := range fr.values {
		out[t] = append([]float64(nil), row...)
	}
	return out
}
