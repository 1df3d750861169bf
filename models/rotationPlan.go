package models

import "github.com/shopspring/decimal"

// RotationPlan holds the computed order values for one rotation: the market
// leg that flips exposure and the protective stop-limit leg that guards it.
// It is consumed immediately and discarded.
type RotationPlan struct {
	MarketSide       string
	StopSide         string
	MarketQuantity   decimal.Decimal
	LimitPrice       decimal.Decimal
	StopTriggerPrice decimal.Decimal
}
