package batch

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tick-backtest/internal/model"
)

func nanWindow(t *testing.T) *Window {
	t.Helper()
	p, err := NewRollingPanel(3, nil, []string{"price"})
	require.NoError(t, err)
	rows := [][2]float64{{1, 10}, {math.NaN(), 11}, {3, 12}}
	for i, r := range rows {
		s := model.NewSnapshot(day(i))
		s.Set(0, "price", r[0])
		s.Set(1, "price", r[1])
		require.NoError(t, p.Append(s))
	}
	return p.CurrentWindow()
}

func TestSanitizeDropTicks(t *testing.T) {
	w := Sanitize(nanWindow(t), DropTicks)

	assert.False(t, w.HasNaN())
	assert.Equal(t, []time.Time{day(0), day(2)}, w.Ticks())
	price, _ := w.Price()
	assert.Equal(t, []float64{1, 3}, price.Column(0))
	assert.Equal(t, []float64{10, 12}, price.Column(1))
}

func TestSanitizeDropAssets(t *testing.T) {
	w := Sanitize(nanWindow(t), DropAssets)

	assert.False(t, w.HasNaN())
	assert.Equal(t, 3, w.Len())
	assert.Equal(t, []model.AssetID{1}, w.Assets())
}

func TestSanitizeCleanWindowIsReturnedAsIs(t *testing.T) {
	p, err := NewRollingPanel(2, nil, nil)
	require.NoError(t, err)
	require.NoError(t, p.Append(oneAsset(0, 1)))
	w := p.CurrentWindow()
	assert.Same(t, w, Sanitize(w, DropTicks))
}

func TestWindowMapPropagatesNaN(t *testing.T) {
	w := nanWindow(t).Map(math.Log)
	price, _ := w.Price()
	col := price.Column(0)
	assert.Equal(t, 0.0, col[0])
	assert.True(t, math.IsNaN(col[1]))
	assert.InDelta(t, math.Log(3), col[2], 1e-12)
}
