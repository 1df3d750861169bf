package models

import "github.com/shopspring/decimal"

// RestingOrder is the single protective stop-limit order currently open for a
// pair, as reported by the exchange. At most one exists per pair at any time.
type RestingOrder struct {
	OrderID  int64
	Symbol   string
	Side     string // SideBuy or SideSell
	Price    decimal.Decimal
	Quantity decimal.Decimal
}
