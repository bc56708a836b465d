package algorithm

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tick-backtest/internal/model"
)

type placed struct {
	asset  model.AssetID
	amount int64
}

type recordingSink struct {
	orders []placed
}

func (s *recordingSink) Order(asset model.AssetID, amount int64) string {
	if amount == 0 {
		return ""
	}
	s.orders = append(s.orders, placed{asset, amount})
	return "id"
}

func setup(t *testing.T, price float64, cash float64, held int64) (*Context, *recordingSink) {
	t.Helper()
	sink := &recordingSink{}
	c := NewContext(sink, nil)
	snap := model.NewSnapshot(time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC))
	snap.Set(0, model.FieldPrice, price)
	positions := map[model.AssetID]model.Position{}
	if held != 0 {
		positions[0] = model.Position{Asset: 0, Amount: held, LastSalePrice: price}
	}
	c.Advance(snap, model.NewPortfolio(cash, cash, positions))
	return c, sink
}

func TestOrderHelpers(t *testing.T) {
	tests := []struct {
		name  string
		held  int64
		order func(c *Context) error
		want  int64
	}{
		{"order", 0, func(c *Context) error { c.Order(0, 7); return nil }, 7},
		{"order value truncates", 0, func(c *Context) error {
			_, err := c.OrderValue(0, 105)
			return err
		}, 10},
		{"order value negative truncates toward zero", 0, func(c *Context) error {
			_, err := c.OrderValue(0, -105)
			return err
		}, -10},
		{"order target", 4, func(c *Context) error { c.OrderTarget(0, 10); return nil }, 6},
		{"order percent", 0, func(c *Context) error {
			_, err := c.OrderPercent(0, 0.5)
			return err
		}, 50},
		{"order target value", 20, func(c *Context) error {
			_, err := c.OrderTargetValue(0, 500)
			return err
		}, 30},
		{"order target percent", 20, func(c *Context) error {
			_, err := c.OrderTargetPercent(0, 0.25)
			return err
		}, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, sink := setup(t, 10, 1000, tt.held)
			require.NoError(t, tt.order(c))
			require.Len(t, sink.orders, 1)
			assert.Equal(t, tt.want, sink.orders[0].amount)
			assert.Len(t, c.OrderIDs(), 1)
		})
	}
}

func TestOrderTargetAlreadyThere(t *testing.T) {
	c, sink := setup(t, 10, 1000, 10)
	assert.Empty(t, c.OrderTarget(0, 10))
	assert.Empty(t, sink.orders)
	assert.Empty(t, c.OrderIDs())
}

func TestValueHelpersNeedPrice(t *testing.T) {
	c, sink := setup(t, 10, 1000, 0)
	_, err := c.OrderValue(42, 100)
	assert.ErrorIs(t, err, ErrNoPrice)
	assert.Empty(t, sink.orders)
}

func TestSetPortfolioIsRejected(t *testing.T) {
	c, _ := setup(t, 10, 1000, 0)
	before := c.Portfolio()

	err := c.SetPortfolio(model.NewPortfolio(1, 1, nil))
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrReadOnly))
	var ro *model.ReadOnlyViolation
	require.True(t, errors.As(err, &ro))
	assert.Equal(t, "portfolio", ro.Target)
	assert.Equal(t, before, c.Portfolio())
}

func TestPortfolioViewIsACopy(t *testing.T) {
	c, _ := setup(t, 10, 1000, 5)
	positions := c.Portfolio().Positions()
	positions[0] = model.Position{Amount: 999}
	assert.Equal(t, int64(5), c.Portfolio().Position(0).Amount)
}

func TestRecordResetsEachTick(t *testing.T) {
	c, _ := setup(t, 10, 1000, 0)
	c.Record("incr", 1)
	assert.Equal(t, map[string]float64{"incr": 1}, c.Recorded())

	c.Advance(c.Data(), c.Portfolio())
	assert.Empty(t, c.Recorded())
}
