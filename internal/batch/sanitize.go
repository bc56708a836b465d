package batch

import "math"

// NaNPolicy selects what Sanitize drops.
type NaNPolicy string

const (
	// DropTicks removes every tick row holding a NaN for any asset and field.
	DropTicks NaNPolicy = "drop_ticks"
	// DropAssets removes every asset column holding a NaN on any tick.
	DropAssets NaNPolicy = "drop_assets"
)

func (p NaNPolicy) valid() bool {
	return p == DropTicks || p == DropAssets
}

// Sanitize removes missing values from w according to policy. It never
// imputes. w is returned as is when it holds no NaN.
func Sanitize(w *Window, policy NaNPolicy) *Window {
	if !w.HasNaN() {
		return w
	}
	if policy == DropAssets {
		keep := make([]int, 0, len(w.assets))
		for a := range w.assets {
			if !assetHasNaN(w, a) {
				keep = append(keep, a)
			}
		}
		return w.selectAssets(keep)
	}

	keep := make([]int, 0, len(w.ticks))
	for t := range w.ticks {
		if !tickHasNaN(w, t) {
			keep = append(keep, t)
		}
	}
	return w.selectTicks(keep)
}

func tickHasNaN(w *Window, t int) bool {
	for a := range w.assets {
		for f := range w.fields {
			if math.IsNaN(w.At(t, a, f)) {
				return true
			}
		}
	}
	return false
}

func assetHasNaN(w *Window, a int) bool {
	for t := range w.ticks {
		for f := range w.fields {
			if math.IsNaN(w.At(t, a, f)) {
				return true
			}
		}
	}
	return false
}
