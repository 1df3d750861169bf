package interfaces

import (
	"cross_bot/models"

	"github.com/shopspring/decimal"
)

// ExchangeClient defines the signed exchange operations the engine needs.
// Implementations return a definitive success or failure per call and carry
// no retry logic of their own; retries are engine policy.
type ExchangeClient interface {
	GetCurrentPrice(symbol string) (decimal.Decimal, error)
	GetOpenOrders(symbol string) ([]models.RestingOrder, error)
	CreateMarketOrder(symbol, side string, quantity decimal.Decimal) error
	CreateStopLossLimitOrder(symbol, side string, quantity, price, stopPrice decimal.Decimal) (int64, error)
	CancelOrder(symbol string, orderID int64) error
	GetAccountBalances() (map[string]decimal.Decimal, error)
	GetLotStepSize(symbol string) (decimal.Decimal, error)
}

// Journal records received signals and rotation outcomes for audit. The
// engine never reads it back to make decisions; live state always comes from
// the exchange.
type Journal interface {
	LogSignal(symbol, interval, direction string) error
	LogRotation(record models.RotationRecord) error
}
