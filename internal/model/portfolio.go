package model

import (
	"errors"
	"fmt"
)

// Position is one asset holding.
type Position struct {
	Asset         AssetID `json:"asset"`
	Amount        int64   `json:"amount"`
	CostBasis     float64 `json:"cost_basis"`
	LastSalePrice float64 `json:"last_sale_price"`
}

// MarketValue is Amount priced at LastSalePrice.
func (p Position) MarketValue() float64 {
	return float64(p.Amount) * p.LastSalePrice
}

// ErrReadOnly is matched by every ReadOnlyViolation.
var ErrReadOnly = errors.New("read-only")

// ReadOnlyViolation is returned when user code tries to replace or mutate
// state it only has a view of.
type ReadOnlyViolation struct {
	Target string
}

func (e *ReadOnlyViolation) Error() string {
	return fmt.Sprintf("%s is read-only and cannot be assigned", e.Target)
}

func (e *ReadOnlyViolation) Is(target error) bool { return target == ErrReadOnly }

// Portfolio is an immutable view of account state at a tick boundary.
// The zero value is an empty portfolio with no cash.
type Portfolio struct {
	startingCash float64
	cash         float64
	positions    map[AssetID]Position
}

// NewPortfolio builds a view. positions is copied.
func NewPortfolio(startingCash, cash float64, positions map[AssetID]Position) Portfolio {
	cp := make(map[AssetID]Position, len(positions))
	for id, p := range positions {
		if p.Amount == 0 {
			continue
		}
		cp[id] = p
	}
	return Portfolio{startingCash: startingCash, cash: cash, positions: cp}
}

func (p Portfolio) StartingCash() float64 { return p.startingCash }

func (p Portfolio) Cash() float64 { return p.cash }

// Position returns the holding for asset; a zero position when none is held.
func (p Portfolio) Position(asset AssetID) Position {
	if pos, ok := p.positions[asset]; ok {
		return pos
	}
	return Position{Asset: asset}
}

// Positions returns a copy of all non-zero holdings.
func (p Portfolio) Positions() map[AssetID]Position {
	out := make(map[AssetID]Position, len(p.positions))
	for id, pos := range p.positions {
		out[id] = pos
	}
	return out
}

func (p Portfolio) PositionsValue() float64 {
	total := 0.0
	for _, pos := range p.positions {
		total += pos.MarketValue()
	}
	return total
}

// PortfolioValue is cash plus the market value of all positions.
func (p Portfolio) PortfolioValue() float64 {
	return p.cash + p.PositionsValue()
}

// PNL is PortfolioValue relative to StartingCash.
func (p Portfolio) PNL() float64 {
	return p.PortfolioValue() - p.startingCash
}
