package model

import (
	"math"
	"sort"
	"time"
)

// AssetID identifies a tradable asset. Opaque to the engine.
type AssetID int64

// Standard bar field names.
const (
	FieldPrice  = "price"
	FieldVolume = "volume"
	FieldOpen   = "open"
	FieldHigh   = "high"
	FieldLow    = "low"
	FieldClose  = "close"
)

// Bar maps a field name to its value for one asset on one tick.
// A missing value is either an absent key or NaN.
type Bar map[string]float64

// Get returns the value of field and whether it is present and not NaN.
func (b Bar) Get(field string) (float64, bool) {
	v, ok := b[field]
	if !ok || math.IsNaN(v) {
		return math.NaN(), false
	}
	return v, true
}

// Price returns the "price" field, or NaN when absent.
func (b Bar) Price() float64 {
	v, _ := b.Get(FieldPrice)
	return v
}

func (b Bar) Clone() Bar {
	if b == nil {
		return nil
	}
	out := make(Bar, len(b))
	for k, v := range b {
		out[k] = v
	}
	return out
}

// Snapshot is the market state delivered once per tick.
// Dt identifies the tick.
type Snapshot struct {
	Dt   time.Time       `json:"dt"`
	Bars map[AssetID]Bar `json:"bars"`
}

// NewSnapshot returns an empty snapshot at dt.
func NewSnapshot(dt time.Time) Snapshot {
	return Snapshot{Dt: dt, Bars: map[AssetID]Bar{}}
}

// Clone returns a deep copy of the snapshot.
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{Dt: s.Dt, Bars: make(map[AssetID]Bar, len(s.Bars))}
	for id, bar := range s.Bars {
		out.Bars[id] = bar.Clone()
	}
	return out
}

// Assets returns the snapshot's asset ids in ascending order.
func (s Snapshot) Assets() []AssetID {
	out := make([]AssetID, 0, len(s.Bars))
	for id := range s.Bars {
		out = append(out, id)
	}
	SortAssets(out)
	return out
}

// Price returns the usable price of asset on this tick.
func (s Snapshot) Price(asset AssetID) (float64, bool) {
	bar, ok := s.Bars[asset]
	if !ok {
		return math.NaN(), false
	}
	p, ok := bar.Get(FieldPrice)
	if !ok || p <= 0 {
		return p, false
	}
	return p, true
}

// Set writes a single field value, creating the asset's bar if needed.
func (s Snapshot) Set(asset AssetID, field string, v float64) {
	bar, ok := s.Bars[asset]
	if !ok {
		bar = Bar{}
		s.Bars[asset] = bar
	}
	bar[field] = v
}

func SortAssets(ids []AssetID) {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
}

// Feed is the on-disk JSON shape of a snapshot series.
//
// Example:
//
//	{
//	  "name": "synthetic",
//	  "bars": "daily",
//	  "snapshots": [ {"dt": "...", "bars": {"0": {"price": 10}}} ]
//	}
type Feed struct {
	Name      string     `json:"name"`
	Bars      string     `json:"bars,omitempty"`
	Snapshots []Snapshot `json:"snapshots"`
}
