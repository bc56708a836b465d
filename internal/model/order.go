package model

import "time"

// Order is a share amount queued with the fill engine. Positive buys, negative sells.
type Order struct {
	ID     string    `json:"id"`
	Asset  AssetID   `json:"asset"`
	Amount int64     `json:"amount"`
	Dt     time.Time `json:"dt"`
	// PlacedPrice is the asset's price on the tick the order was placed.
	PlacedPrice float64 `json:"placed_price"`
}

// Transaction records a fill.
type Transaction struct {
	OrderID string    `json:"order_id"`
	Asset   AssetID   `json:"asset"`
	Amount  int64     `json:"amount"`
	Price   float64   `json:"price"`
	Dt      time.Time `json:"dt"`
}

// Value is the signed cash amount of the fill (positive for buys).
func (t Transaction) Value() float64 {
	return float64(t.Amount) * t.Price
}
