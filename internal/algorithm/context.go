// Package algorithm holds the per-run context handed to strategy code.
package algorithm

import (
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"

	"tick-backtest/internal/logging"
	"tick-backtest/internal/model"
)

// ErrNoPrice is returned by value-based order helpers when the asset has no
// usable price on the current tick.
var ErrNoPrice = errors.New("no price for asset")

// OrderSink accepts fire-and-forget share orders.
type OrderSink interface {
	Order(asset model.AssetID, amount int64) string
}

// Context is what strategy code sees during a tick. The portfolio is the
// view taken at the start of the tick; orders placed during the tick show
// up in the next tick's view.
type Context struct {
	sink OrderSink
	log  *zap.SugaredLogger

	data      model.Snapshot
	portfolio model.Portfolio
	recorded  map[string]float64
	orders    []string
}

func NewContext(sink OrderSink, log *zap.SugaredLogger) *Context {
	if log == nil {
		log = logging.NewNop()
	}
	return &Context{sink: sink, log: log, recorded: map[string]float64{}}
}

// Advance moves the context to a new tick. Recorded variables and the
// per-tick order list are reset.
func (c *Context) Advance(data model.Snapshot, portfolio model.Portfolio) {
	c.data = data
	c.portfolio = portfolio
	c.recorded = map[string]float64{}
	c.orders = nil
}

// Data is the current tick's snapshot.
func (c *Context) Data() model.Snapshot { return c.data }

func (c *Context) Logger() *zap.SugaredLogger { return c.log }

// Portfolio returns the read-only account view.
func (c *Context) Portfolio() model.Portfolio { return c.portfolio }

// SetPortfolio always fails; the portfolio is owned by the fill engine.
func (c *Context) SetPortfolio(any) error {
	return &model.ReadOnlyViolation{Target: "portfolio"}
}

// Record stores a named value for this tick's ledger row.
func (c *Context) Record(name string, value float64) {
	c.recorded[name] = value
}

// Recorded returns a copy of the values recorded this tick.
func (c *Context) Recorded() map[string]float64 {
	out := make(map[string]float64, len(c.recorded))
	for k, v := range c.recorded {
		out[k] = v
	}
	return out
}

// OrderIDs lists the orders placed this tick.
func (c *Context) OrderIDs() []string {
	return append([]string(nil), c.orders...)
}

// Order places amount shares. Returns "" when nothing was placed.
func (c *Context) Order(asset model.AssetID, amount int64) string {
	id := c.sink.Order(asset, amount)
	if id != "" {
		c.orders = append(c.orders, id)
	}
	return id
}

// OrderValue orders the number of shares worth value at the current price.
func (c *Context) OrderValue(asset model.AssetID, value float64) (string, error) {
	amount, err := c.sharesFor(asset, value)
	if err != nil {
		return "", err
	}
	return c.Order(asset, amount), nil
}

// OrderPercent orders pct of the portfolio value.
func (c *Context) OrderPercent(asset model.AssetID, pct float64) (string, error) {
	return c.OrderValue(asset, pct*c.portfolio.PortfolioValue())
}

// OrderTarget orders the difference between target and the current holding.
func (c *Context) OrderTarget(asset model.AssetID, target int64) string {
	return c.Order(asset, target-c.portfolio.Position(asset).Amount)
}

// OrderTargetValue adjusts the holding to be worth value.
func (c *Context) OrderTargetValue(asset model.AssetID, value float64) (string, error) {
	target, err := c.sharesFor(asset, value)
	if err != nil {
		return "", err
	}
	return c.OrderTarget(asset, target), nil
}

// OrderTargetPercent adjusts the holding to pct of the portfolio value.
func (c *Context) OrderTargetPercent(asset model.AssetID, pct float64) (string, error) {
	return c.OrderTargetValue(asset, pct*c.portfolio.PortfolioValue())
}

// sharesFor converts a cash value to shares, truncating toward zero.
func (c *Context) sharesFor(asset model.AssetID, value float64) (int64, error) {
	price, ok := c.data.Price(asset)
	if !ok {
		return 0, fmt.Errorf("asset %d: %w", asset, ErrNoPrice)
	}
	return int64(math.Trunc(value / price)), nil
}
