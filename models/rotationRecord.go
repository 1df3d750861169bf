package models

import "time"

// Outcome defines a type-safe enum-like structure for rotation results
type Outcome struct {
	value string
}

// Outcome constants
var (
	// OutcomeNoAction means the resting order belonged to the other market
	// stance and was left untouched.
	OutcomeNoAction = Outcome{"no-action"}
	// OutcomeLossCut means the resting order was canceled without opening a
	// new position.
	OutcomeLossCut = Outcome{"loss-cut"}
	// OutcomeRotated means a market order was executed and a new protective
	// stop was placed.
	OutcomeRotated = Outcome{"rotated"}
	// OutcomeFlattened means the protective leg could not be placed and the
	// position was closed again by an opposite-side market order.
	OutcomeFlattened = Outcome{"flattened"}
	// OutcomeFailed means the rotation was aborted with no order placed.
	OutcomeFailed = Outcome{"failed"}
)

// String returns the string representation of the Outcome
func (o Outcome) String() string {
	return o.value
}

// IsValid checks if a given value is a valid Outcome
func (o Outcome) IsValid() bool {
	switch o {
	case OutcomeNoAction, OutcomeLossCut, OutcomeRotated, OutcomeFlattened, OutcomeFailed:
		return true
	default:
		return false
	}
}

// RotationRecord is the journaled result of handling one signal.
type RotationRecord struct {
	ID         int       `json:"id" db:"id"`
	Symbol     string    `json:"symbol" db:"symbol"`
	Direction  string    `json:"direction" db:"direction"`
	Outcome    string    `json:"outcome" db:"outcome"`
	MarketSide string    `json:"market_side" db:"market_side"`
	MarketQty  float64   `json:"market_qty" db:"market_qty"`
	LimitPrice float64   `json:"limit_price" db:"limit_price"`
	StopPrice  float64   `json:"stop_price" db:"stop_price"`
	Attempts   int       `json:"attempts" db:"attempts"`
	Detail     string    `json:"detail" db:"detail"`
	Timestamp  time.Time `json:"timestamp" db:"timestamp"`
}
