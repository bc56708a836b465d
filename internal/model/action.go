package model

// Action is a human-friendly label for the direction of an order or fill.
// Keep these values stable; they are intended for CSV output.
type Action string

const (
	ActionBuy  Action = "BUY"
	ActionHold Action = "HOLD"
	ActionSell Action = "SELL"
)

func ActionFromAmount(amount int64) Action {
	switch {
	case amount > 0:
		return ActionBuy
	case amount < 0:
		return ActionSell
	default:
		return ActionHold
	}
}
