package strategy

import (
	"strings"

	"tick-backtest/internal/algorithm"
	"tick-backtest/internal/model"
)

// Strategy is user trading logic driven once per tick.
type Strategy interface {
	Name() string
	// Initialize is called once before the first tick.
	Initialize(ctx *algorithm.Context) error
	HandleData(ctx *algorithm.Context, data model.Snapshot) error
}

// Params is the loosely typed parameter bag from YAML or JSON.
type Params map[string]any

// Num returns a numeric parameter or def. YAML decodes integers as int,
// JSON as float64; both are accepted.
func (p Params) Num(key string, def float64) float64 {
	if v, ok := p[key]; ok && v != nil {
		switch x := v.(type) {
		case float64:
			return x
		case float32:
			return float64(x)
		case int:
			return float64(x)
		case int64:
			return float64(x)
		}
	}
	return def
}

func (p Params) Int(key string, def int) int {
	return int(p.Num(key, float64(def)))
}

func (p Params) Str(key string, def string) string {
	if v, ok := p[key]; ok && v != nil {
		if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
			return s
		}
	}
	return def
}

// Assets reads a list of asset ids. Nil when unset, meaning every asset.
func (p Params) Assets(key string) []model.AssetID {
	v, ok := p[key]
	if !ok || v == nil {
		return nil
	}
	var out []model.AssetID
	switch xs := v.(type) {
	case []model.AssetID:
		return append(out, xs...)
	case []int:
		for _, x := range xs {
			out = append(out, model.AssetID(x))
		}
	case []any:
		for _, x := range xs {
			switch n := x.(type) {
			case int:
				out = append(out, model.AssetID(n))
			case int64:
				out = append(out, model.AssetID(n))
			case float64:
				out = append(out, model.AssetID(n))
			}
		}
	}
	return out
}

// universe returns assets, or every asset in data when assets is nil.
func universe(assets []model.AssetID, data model.Snapshot) []model.AssetID {
	if assets != nil {
		return assets
	}
	return data.Assets()
}
