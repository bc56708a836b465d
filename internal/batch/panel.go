package batch

import (
	"sort"
	"time"

	"tick-backtest/internal/model"
)

// RollingPanel is a fixed-depth ring of snapshots. Once full, each append
// overwrites the oldest row.
type RollingPanel struct {
	length int

	// Declared axes. Nil means the axis is discovered from retained rows.
	assets   []model.AssetID
	fields   []string
	assetSet map[model.AssetID]struct{}
	fieldSet map[string]struct{}

	rows     []model.Snapshot
	head     int
	size     int
	appended int
}

// NewRollingPanel returns a panel retaining length rows. assets and fields
// fix the panel's axes when non-nil.
func NewRollingPanel(length int, assets []model.AssetID, fields []string) (*RollingPanel, error) {
	if length < 1 {
		return nil, configErr("window_length", "must be >= 1, got %d", length)
	}
	p := &RollingPanel{
		length: length,
		rows:   make([]model.Snapshot, length),
	}
	if assets != nil {
		p.assets = append([]model.AssetID{}, assets...)
		p.assetSet = make(map[model.AssetID]struct{}, len(assets))
		for _, id := range assets {
			p.assetSet[id] = struct{}{}
		}
	}
	if fields != nil {
		p.fields = append([]string{}, fields...)
		p.fieldSet = make(map[string]struct{}, len(fields))
		for _, f := range fields {
			p.fieldSet[f] = struct{}{}
		}
	}
	return p, nil
}

// Append copies snap into the panel as the newest row.
func (p *RollingPanel) Append(snap model.Snapshot) error {
	return p.appendOwned(snap.Clone())
}

// appendOwned takes ownership of snap without copying it.
func (p *RollingPanel) appendOwned(snap model.Snapshot) error {
	if err := p.check(snap); err != nil {
		return err
	}
	if p.size < p.length {
		p.rows[(p.head+p.size)%p.length] = snap
		p.size++
	} else {
		p.rows[p.head] = snap
		p.head = (p.head + 1) % p.length
	}
	p.appended++
	return nil
}

func (p *RollingPanel) check(snap model.Snapshot) error {
	if snap.Dt.IsZero() {
		return configErr("dt", "snapshot has no timestamp")
	}
	for id, bar := range snap.Bars {
		if p.assetSet != nil {
			if _, ok := p.assetSet[id]; !ok {
				return configErr("sids", "asset %d is outside the panel's asset set", id)
			}
		}
		if p.fieldSet == nil {
			continue
		}
		for f := range bar {
			if _, ok := p.fieldSet[f]; !ok {
				return configErr("fields", "field %q of asset %d is outside the panel's field set", f, id)
			}
		}
	}
	return nil
}

// IsFull reports whether length rows have ever been appended. Once true it
// stays true.
func (p *RollingPanel) IsFull() bool { return p.appended >= p.length }

// Len is the number of retained rows.
func (p *RollingPanel) Len() int { return p.size }

// Cap is the window length.
func (p *RollingPanel) Cap() int { return p.length }

// Appended is the total number of rows ever appended.
func (p *RollingPanel) Appended() int { return p.appended }

// LastDt returns the time of the newest row.
func (p *RollingPanel) LastDt() (time.Time, bool) {
	if p.size == 0 {
		return time.Time{}, false
	}
	return p.row(p.size - 1).Dt, true
}

func (p *RollingPanel) row(i int) model.Snapshot {
	return p.rows[(p.head+i)%p.length]
}

// CurrentWindow materializes the retained rows, oldest first.
func (p *RollingPanel) CurrentWindow() *Window {
	assets, fields := p.axes()
	ticks := make([]time.Time, p.size)
	for t := 0; t < p.size; t++ {
		ticks[t] = p.row(t).Dt
	}
	w := newWindow(ticks, assets, fields)
	for t := 0; t < p.size; t++ {
		r := p.row(t)
		for a, id := range assets {
			bar, ok := r.Bars[id]
			if !ok {
				continue
			}
			for f, name := range fields {
				if v, ok := bar[name]; ok {
					w.set(t, a, f, v)
				}
			}
		}
	}
	return w
}

// axes returns the declared axes, or the sorted union over retained rows.
func (p *RollingPanel) axes() ([]model.AssetID, []string) {
	assets := p.assets
	fields := p.fields
	if assets != nil && fields != nil {
		return append([]model.AssetID{}, assets...), append([]string{}, fields...)
	}

	seenA := map[model.AssetID]struct{}{}
	seenF := map[string]struct{}{}
	for t := 0; t < p.size; t++ {
		for id, bar := range p.row(t).Bars {
			seenA[id] = struct{}{}
			for f := range bar {
				seenF[f] = struct{}{}
			}
		}
	}
	if assets == nil {
		assets = make([]model.AssetID, 0, len(seenA))
		for id := range seenA {
			assets = append(assets, id)
		}
		model.SortAssets(assets)
	} else {
		assets = append([]model.AssetID{}, assets...)
	}
	if fields == nil {
		fields = make([]string, 0, len(seenF))
		for f := range seenF {
			fields = append(fields, f)
		}
		sort.Strings(fields)
	} else {
		fields = append([]string{}, fields...)
	}
	return assets, fields
}
