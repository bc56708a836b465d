package batch

import "tick-backtest/internal/model"

// Filter restricts snap to the allow-listed assets and fields. A nil
// allow-list passes that axis through unchanged, extra injected fields
// included. Allow-listed assets missing from snap are omitted.
// The result is always a fresh copy; snap is never modified.
func Filter(snap model.Snapshot, sids []model.AssetID, fields []string) model.Snapshot {
	out := model.Snapshot{Dt: snap.Dt}
	if sids == nil {
		out.Bars = make(map[model.AssetID]model.Bar, len(snap.Bars))
		for id, bar := range snap.Bars {
			out.Bars[id] = filterFields(bar, fields)
		}
		return out
	}

	out.Bars = make(map[model.AssetID]model.Bar, len(sids))
	for _, id := range sids {
		bar, ok := snap.Bars[id]
		if !ok {
			continue
		}
		out.Bars[id] = filterFields(bar, fields)
	}
	return out
}

func filterFields(bar model.Bar, fields []string) model.Bar {
	if fields == nil {
		return bar.Clone()
	}
	out := make(model.Bar, len(fields))
	for _, f := range fields {
		if v, ok := bar[f]; ok {
			out[f] = v
		}
	}
	return out
}
