// Package blotter queues orders and fills them at tick boundaries.
package blotter

import (
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"tick-backtest/internal/logging"
	"tick-backtest/internal/metrics"
	"tick-backtest/internal/model"
)

// FillPolicy selects the price an order fills at.
type FillPolicy string

const (
	// FillNextBar fills at the price of the next delivered snapshot.
	FillNextBar FillPolicy = "next_bar"
	// FillSameBar fills at the price observed when the order was placed.
	// The fill still only becomes visible at the next tick boundary.
	FillSameBar FillPolicy = "same_bar"
)

// ParseFillPolicy accepts "" as FillNextBar.
func ParseFillPolicy(s string) (FillPolicy, error) {
	switch FillPolicy(s) {
	case "", FillNextBar:
		return FillNextBar, nil
	case FillSameBar:
		return FillSameBar, nil
	default:
		return "", fmt.Errorf("unknown fill policy %q", s)
	}
}

// Slippage adjusts the market price for a fill of amount shares.
type Slippage interface {
	Adjust(price float64, amount int64) float64
}

// NoSlippage fills at the market price.
type NoSlippage struct{}

func (NoSlippage) Adjust(price float64, _ int64) float64 { return price }

// FixedSlippage charges half the spread on each side: buys fill above the
// market price and sells below it.
type FixedSlippage struct {
	Spread float64
}

func (s FixedSlippage) Adjust(price float64, amount int64) float64 {
	switch {
	case amount > 0:
		return price + s.Spread/2
	case amount < 0:
		return price - s.Spread/2
	default:
		return price
	}
}

// Blotter owns cash, positions and the open order queue.
// Not safe for concurrent use.
type Blotter struct {
	policy   FillPolicy
	slippage Slippage
	log      *zap.SugaredLogger

	startingCash float64
	cash         float64
	positions    map[model.AssetID]model.Position
	open         []model.Order
	current      model.Snapshot
}

type Option func(*Blotter)

func WithFillPolicy(p FillPolicy) Option {
	return func(b *Blotter) { b.policy = p }
}

func WithSlippage(s Slippage) Option {
	return func(b *Blotter) { b.slippage = s }
}

func WithLogger(l *zap.SugaredLogger) Option {
	return func(b *Blotter) { b.log = l }
}

func New(startingCash float64, opts ...Option) *Blotter {
	b := &Blotter{
		policy:       FillNextBar,
		slippage:     NoSlippage{},
		log:          logging.NewNop(),
		startingCash: startingCash,
		cash:         startingCash,
		positions:    map[model.AssetID]model.Position{},
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Order queues amount shares of asset and returns the order id. The order
// is filled on the next ProcessTick. A zero amount is ignored and returns "".
func (b *Blotter) Order(asset model.AssetID, amount int64) string {
	if amount == 0 {
		return ""
	}
	placed, _ := b.current.Price(asset)
	o := model.Order{
		ID:          uuid.NewString(),
		Asset:       asset,
		Amount:      amount,
		Dt:          b.current.Dt,
		PlacedPrice: placed,
	}
	b.open = append(b.open, o)
	metrics.OrdersPlaced.Inc()
	b.log.Debugw("Order placed", "asset", asset, "amount", amount, "id", o.ID)
	return o.ID
}

// OpenOrders returns a copy of the unfilled orders.
func (b *Blotter) OpenOrders() []model.Order {
	return append([]model.Order(nil), b.open...)
}

// ProcessTick advances the blotter to snap: positions are marked to the new
// prices, then queued orders are filled. Orders without a usable price stay
// queued.
func (b *Blotter) ProcessTick(snap model.Snapshot) []model.Transaction {
	for id, pos := range b.positions {
		if p, ok := snap.Price(id); ok {
			pos.LastSalePrice = p
			b.positions[id] = pos
		}
	}

	var txns []model.Transaction
	remaining := b.open[:0]
	for _, o := range b.open {
		price, ok := b.fillPrice(o, snap)
		if !ok {
			remaining = append(remaining, o)
			continue
		}
		txn := model.Transaction{
			OrderID: o.ID,
			Asset:   o.Asset,
			Amount:  o.Amount,
			Price:   b.slippage.Adjust(price, o.Amount),
			Dt:      snap.Dt,
		}
		mark := price
		if p, ok := snap.Price(o.Asset); ok {
			mark = p
		}
		b.apply(txn, mark)
		txns = append(txns, txn)
		metrics.OrdersFilled.Inc()
	}
	b.open = remaining
	b.current = snap
	return txns
}

func (b *Blotter) fillPrice(o model.Order, snap model.Snapshot) (float64, bool) {
	if b.policy == FillSameBar && o.PlacedPrice > 0 {
		return o.PlacedPrice, true
	}
	return snap.Price(o.Asset)
}

func (b *Blotter) apply(txn model.Transaction, marketPrice float64) {
	b.cash -= txn.Value()
	pos := b.positions[txn.Asset]
	pos.Asset = txn.Asset

	old := pos.Amount
	next := old + txn.Amount
	switch {
	case next == 0:
		pos.CostBasis = 0
	case old == 0 || (old > 0) != (next > 0):
		pos.CostBasis = txn.Price
	case abs(next) > abs(old):
		pos.CostBasis = (pos.CostBasis*float64(old) + txn.Price*float64(txn.Amount)) / float64(next)
	}
	pos.Amount = next
	pos.LastSalePrice = marketPrice

	if next == 0 {
		delete(b.positions, txn.Asset)
		return
	}
	b.positions[txn.Asset] = pos
}

// Portfolio returns a view of the current account state.
func (b *Blotter) Portfolio() model.Portfolio {
	return model.NewPortfolio(b.startingCash, b.cash, b.positions)
}

func abs(x int64) int64 {
	if x < 0 {
		return -x
	}
	return x
}
