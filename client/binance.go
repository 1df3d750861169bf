package client

import (
	"context"
	"errors"
	"fmt"

	"cross_bot/interfaces"
	"cross_bot/logger"
	"cross_bot/models"

	"github.com/adshao/go-binance/v2"
	"github.com/adshao/go-binance/v2/common"
	"github.com/shopspring/decimal"
)

// OrderRejectedError is an exchange-side validation failure on order
// placement, e.g. precision or balance drift at the boundary. It is the only
// failure class the engine retries.
type OrderRejectedError struct {
	Code    int64
	Message string
}

func (e *OrderRejectedError) Error() string {
	return fmt.Sprintf("order rejected by exchange (code %d): %s", e.Code, e.Message)
}

// IsOrderRejected reports whether err is an exchange-side order rejection as
// opposed to a transport or signature problem.
func IsOrderRejected(err error) bool {
	var rejected *OrderRejectedError
	return errors.As(err, &rejected)
}

// BinanceClient implements the ExchangeClient interface
type BinanceClient struct {
	client     *binance.Client
	recvWindow int64
}

// NewBinanceClient creates a new Binance client instance
func NewBinanceClient(apiKey, apiSecret string, recvWindowMillis int64) (interfaces.ExchangeClient, error) {
	if apiKey == "" || apiSecret == "" {
		return nil, fmt.Errorf("binance credentials are not set")
	}
	client := binance.NewClient(apiKey, apiSecret)
	logger.Info("Started trading using Binance")
	return &BinanceClient{
		client:     client,
		recvWindow: recvWindowMillis,
	}, nil
}

// GetCurrentPrice fetches the current ticker price for a given symbol
func (b *BinanceClient) GetCurrentPrice(symbol string) (decimal.Decimal, error) {
	prices, err := b.client.NewListPricesService().Symbol(symbol).Do(context.Background())
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("failed to fetch current price for %s: %w", symbol, err)
	}

	if len(prices) == 0 {
		return decimal.Decimal{}, fmt.Errorf("no price data returned for symbol %s", symbol)
	}

	price, err := decimal.NewFromString(prices[0].Price)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("failed to parse price for %s: %w", symbol, err)
	}

	logger.Debugf("Current price for %s: %s", symbol, price)
	return price, nil
}

// GetOpenOrders returns the currently resting orders for a symbol
func (b *BinanceClient) GetOpenOrders(symbol string) ([]models.RestingOrder, error) {
	orders, err := b.client.NewListOpenOrdersService().
		Symbol(symbol).
		Do(context.Background(), binance.WithRecvWindow(b.recvWindow))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch open orders for %s: %w", symbol, err)
	}

	resting := make([]models.RestingOrder, 0, len(orders))
	for _, order := range orders {
		price, err := decimal.NewFromString(order.Price)
		if err != nil {
			return nil, fmt.Errorf("failed to parse price of order %d: %w", order.OrderID, err)
		}
		quantity, err := decimal.NewFromString(order.OrigQuantity)
		if err != nil {
			return nil, fmt.Errorf("failed to parse quantity of order %d: %w", order.OrderID, err)
		}
		resting = append(resting, models.RestingOrder{
			OrderID:  order.OrderID,
			Symbol:   order.Symbol,
			Side:     string(order.Side),
			Price:    price,
			Quantity: quantity,
		})
	}
	return resting, nil
}

// CreateMarketOrder places a market order for the given base-asset quantity
func (b *BinanceClient) CreateMarketOrder(symbol, side string, quantity decimal.Decimal) error {
	_, err := b.client.NewCreateOrderService().
		Symbol(symbol).
		Side(binance.SideType(side)).
		Type(binance.OrderTypeMarket).
		Quantity(quantity.String()).
		Do(context.Background(), binance.WithRecvWindow(b.recvWindow))

	if err != nil {
		return fmt.Errorf("failed to place MARKET %s order for %s: %w", side, symbol, wrapOrderError(err))
	}

	logger.Infof("Placed MARKET %s order for %s, quantity %s", side, symbol, quantity)
	return nil
}

// CreateStopLossLimitOrder places a GTC stop-limit order that closes the
// current exposure when the trigger price is reached
func (b *BinanceClient) CreateStopLossLimitOrder(symbol, side string, quantity, price, stopPrice decimal.Decimal) (int64, error) {
	order, err := b.client.NewCreateOrderService().
		Symbol(symbol).
		Side(binance.SideType(side)).
		Type(binance.OrderTypeStopLossLimit).
		TimeInForce(binance.TimeInForceTypeGTC).
		Quantity(quantity.String()).
		Price(price.String()).
		StopPrice(stopPrice.String()).
		Do(context.Background(), binance.WithRecvWindow(b.recvWindow))

	if err != nil {
		return 0, fmt.Errorf("failed to place STOP_LOSS_LIMIT %s order for %s: %w", side, symbol, wrapOrderError(err))
	}

	logger.Infof("Placed STOP_LOSS_LIMIT %s order for %s: OrderID=%d, limit=%s, trigger=%s",
		side, symbol, order.OrderID, price, stopPrice)
	return order.OrderID, nil
}

// CancelOrder cancels a resting order by id
func (b *BinanceClient) CancelOrder(symbol string, orderID int64) error {
	_, err := b.client.NewCancelOrderService().
		Symbol(symbol).
		OrderID(orderID).
		Do(context.Background(), binance.WithRecvWindow(b.recvWindow))

	if err != nil {
		return fmt.Errorf("failed to cancel order %d for %s: %w", orderID, symbol, err)
	}

	logger.Infof("Successfully canceled order %d for %s", orderID, symbol)
	return nil
}

// GetAccountBalances returns the free balance of every asset in the account
func (b *BinanceClient) GetAccountBalances() (map[string]decimal.Decimal, error) {
	account, err := b.client.NewGetAccountService().
		Do(context.Background(), binance.WithRecvWindow(b.recvWindow))
	if err != nil {
		return nil, fmt.Errorf("failed to get account info: %w", err)
	}

	balances := make(map[string]decimal.Decimal, len(account.Balances))
	for _, balance := range account.Balances {
		free, err := decimal.NewFromString(balance.Free)
		if err != nil {
			return nil, fmt.Errorf("failed to parse free balance for %s: %w", balance.Asset, err)
		}
		balances[balance.Asset] = free
	}
	return balances, nil
}

// GetLotStepSize fetches the LOT_SIZE step for a symbol from exchange trading rules
func (b *BinanceClient) GetLotStepSize(symbol string) (decimal.Decimal, error) {
	info, err := b.client.NewExchangeInfoService().Symbol(symbol).Do(context.Background())
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("failed to get exchange info for %s: %w", symbol, err)
	}

	for _, symbolInfo := range info.Symbols {
		if symbolInfo.Symbol != symbol {
			continue
		}
		for _, filter := range symbolInfo.Filters {
			if filter["filterType"] != "LOT_SIZE" {
				continue
			}
			stepStr, ok := filter["stepSize"].(string)
			if !ok {
				return decimal.Decimal{}, fmt.Errorf("invalid stepSize format for %s", symbol)
			}
			step, err := decimal.NewFromString(stepStr)
			if err != nil {
				return decimal.Decimal{}, fmt.Errorf("failed to parse stepSize for %s: %w", symbol, err)
			}
			return step, nil
		}
		return decimal.Decimal{}, fmt.Errorf("no LOT_SIZE filter found for %s", symbol)
	}

	return decimal.Decimal{}, fmt.Errorf("symbol %s not found in exchange info", symbol)
}

// wrapOrderError converts exchange-side API rejections into OrderRejectedError
// so the engine can tell them apart from transport failures.
func wrapOrderError(err error) error {
	var apiErr *common.APIError
	if errors.As(err, &apiErr) {
		return &OrderRejectedError{Code: apiErr.Code, Message: apiErr.Message}
	}
	return err
}
