package engine

import (
	"fmt"
	"time"

	"cross_bot/client"
	"cross_bot/interfaces"
	"cross_bot/ledger"
	"cross_bot/logger"
	"cross_bot/models"
	"cross_bot/precision"

	"github.com/shopspring/decimal"
)

// Settings are the tunable constants of the rotation policy.
type Settings struct {
	StopLimitPercent float64 // offset of the protective stop from current price
	QtyFactor        float64 // free balance divisor when sizing orders
	FeeRate          float64 // fee fraction deducted from order quantities
	MaxRetries       int     // max placement retries with degraded quantity
}

// RotationEngine reacts to crossover signals and keeps at most one resting
// protective order per pair. It holds no durable state of its own: the
// resting-order picture is re-derived from the exchange on every signal, and
// the only process-local state is the balance ledger.
type RotationEngine struct {
	exchange  interfaces.ExchangeClient
	balances  *ledger.Ledger
	precision *precision.Resolver
	journal   interfaces.Journal

	stopPct    decimal.Decimal
	qtyFactor  decimal.Decimal
	feeRate    decimal.Decimal
	maxRetries int

	locks *pairLocks
}

func NewRotationEngine(exchange interfaces.ExchangeClient, balances *ledger.Ledger,
	resolver *precision.Resolver, journal interfaces.Journal, settings Settings) *RotationEngine {
	return &RotationEngine{
		exchange:   exchange,
		balances:   balances,
		precision:  resolver,
		journal:    journal,
		stopPct:    decimal.NewFromFloat(settings.StopLimitPercent),
		qtyFactor:  decimal.NewFromFloat(settings.QtyFactor),
		feeRate:    decimal.NewFromFloat(settings.FeeRate),
		maxRetries: settings.MaxRetries,
		locks:      newPairLocks(),
	}
}

// OnSignal handles one crossover signal: it reconciles against the resting
// protective order for the pair and either stands aside, cuts the loss, or
// rotates the position. Signals for the same pair are serialized.
func (e *RotationEngine) OnSignal(sig models.Signal) (models.Outcome, error) {
	symbol := sig.Pair.Symbol()

	lock := e.locks.lockFor(symbol)
	lock.Lock()
	defer lock.Unlock()

	logger.Infof("%s %s %s cross", symbol, sig.Interval, sig.Direction)
	if err := e.journal.LogSignal(symbol, sig.Interval, sig.Direction.String()); err != nil {
		logger.Warnf("Failed to journal signal for %s: %v", symbol, err)
	}

	orders, err := e.exchange.GetOpenOrders(symbol)
	if err != nil {
		return e.fail(sig, 0, fmt.Errorf("failed to read open orders: %w", err))
	}

	if len(orders) > 0 {
		resting := orders[0]

		// A BULL cross only acts on a BUY-side protective order, a BEAR
		// cross only on a SELL-side one. Anything else belongs to the other
		// market stance and must stay untouched.
		watchSide := models.SideBuy
		if sig.Direction == models.DirectionBear {
			watchSide = models.SideSell
		}
		if resting.Side != watchSide {
			logger.Infof("%s: still waiting for the opposite cross. No action taken.", symbol)
			e.record(sig, models.RotationRecord{Outcome: models.OutcomeNoAction.String()})
			return models.OutcomeNoAction, nil
		}

		price, err := e.exchange.GetCurrentPrice(symbol)
		if err != nil {
			return e.fail(sig, 0, fmt.Errorf("failed to read current price: %w", err))
		}

		implied := e.impliedEntryPrice(resting.Price, sig.Direction)
		inProfit := price.LessThanOrEqual(implied)
		if sig.Direction == models.DirectionBear {
			inProfit = price.GreaterThanOrEqual(implied)
		}

		// The old protective order must be confirmed gone before anything
		// new is placed, or we risk double exposure.
		if err := e.exchange.CancelOrder(symbol, resting.OrderID); err != nil {
			return e.fail(sig, 0, fmt.Errorf("failed to cancel resting order %d, aborting rotation: %w",
				resting.OrderID, err))
		}

		if !inProfit {
			logger.Infof("%s: cross at a loss (price %s vs entry %s). Canceled protective order, standing aside.",
				symbol, price, implied)
			e.record(sig, models.RotationRecord{Outcome: models.OutcomeLossCut.String()})
			return models.OutcomeLossCut, nil
		}
	}

	return e.rotate(sig)
}

// impliedEntryPrice inverts the protective-order placement formula: given the
// resting order's price and the configured stop offset, it recovers the price
// the position was entered at.
func (e *RotationEngine) impliedEntryPrice(restingPrice decimal.Decimal, direction models.Direction) decimal.Decimal {
	offset := e.stopPct.Div(decimal.NewFromInt(100))
	if direction == models.DirectionBull {
		// BUY-side stop was placed above entry: price = entry * (1 + pct/100)
		return restingPrice.Div(decimal.NewFromInt(1).Add(offset))
	}
	// SELL-side stop was placed below entry: price = entry * (1 - pct/100)
	return restingPrice.Div(decimal.NewFromInt(1).Sub(offset))
}

// rotate executes the market leg in the signaled direction and places a fresh
// protective stop sized from the post-trade balance.
func (e *RotationEngine) rotate(sig models.Signal) (models.Outcome, error) {
	symbol := sig.Pair.Symbol()

	spec, err := e.precision.Resolve(sig.Pair.BaseAsset, sig.Pair.QuoteAsset)
	if err != nil {
		return e.fail(sig, 0, err)
	}

	price, err := e.exchange.GetCurrentPrice(symbol)
	if err != nil {
		return e.fail(sig, 0, fmt.Errorf("failed to read current price: %w", err))
	}

	plan, err := e.buildPlan(sig, price, spec)
	if err != nil {
		return e.fail(sig, 0, err)
	}

	marketQty, attempts, err := e.placeMarketWithRetry(symbol, plan.MarketSide, plan.MarketQuantity, spec)
	if err != nil {
		return e.fail(sig, attempts, fmt.Errorf("market %s leg failed: %w", plan.MarketSide, err))
	}

	// Size the protective leg from post-trade balances only. The market
	// order just changed holdings, so pre-trade numbers are useless here.
	limitQty, err := e.protectiveQuantity(sig.Pair, plan.MarketSide, spec)
	if err != nil {
		logger.Errorf("%s: cannot size protective order (%v), flattening position", symbol, err)
		return e.flatten(sig, plan, marketQty, attempts, err)
	}

	stopAttempts := 0
	_, stopAttempts, err = e.placeStopWithRetry(symbol, plan, limitQty, spec)
	if err != nil {
		logger.Errorf("%s: failed to place protective order (%v), flattening position", symbol, err)
		return e.flatten(sig, plan, marketQty, attempts+stopAttempts, err)
	}

	logger.Infof("%s: placed %s market order and %s protective stop (limit %s, trigger %s)",
		symbol, plan.MarketSide, plan.StopSide, plan.LimitPrice, plan.StopTriggerPrice)
	e.record(sig, models.RotationRecord{
		Outcome:    models.OutcomeRotated.String(),
		MarketSide: plan.MarketSide,
		MarketQty:  marketQty.InexactFloat64(),
		LimitPrice: plan.LimitPrice.InexactFloat64(),
		StopPrice:  plan.StopTriggerPrice.InexactFloat64(),
		Attempts:   attempts + stopAttempts,
	})
	return models.OutcomeRotated, nil
}

// buildPlan computes the order values for one rotation from the live price,
// the ledger and the resolved precision.
func (e *RotationEngine) buildPlan(sig models.Signal, price decimal.Decimal, spec precision.Spec) (models.RotationPlan, error) {
	offset := price.Mul(e.stopPct).Div(decimal.NewFromInt(100))

	var plan models.RotationPlan
	var marketQty decimal.Decimal

	if sig.Direction == models.DirectionBull {
		quoteBalance, err := e.balances.Get(sig.Pair.QuoteAsset)
		if err != nil {
			return models.RotationPlan{}, err
		}
		marketQty = quoteBalance.Div(price)

		plan.MarketSide = models.SideBuy
		plan.StopSide = models.SideSell
		plan.LimitPrice = precision.Truncate(price.Sub(offset), spec.PriceDecimals)
		// SELL-side stop triggers one quote step below the limit
		plan.StopTriggerPrice = precision.Truncate(plan.LimitPrice.Sub(spec.QuoteStep), spec.PriceDecimals)
	} else {
		baseBalance, err := e.balances.Get(sig.Pair.BaseAsset)
		if err != nil {
			return models.RotationPlan{}, err
		}
		marketQty = baseBalance.Div(e.qtyFactor)

		plan.MarketSide = models.SideSell
		plan.StopSide = models.SideBuy
		plan.LimitPrice = precision.Truncate(price.Add(offset), spec.PriceDecimals)
		// BUY-side stop triggers one quote step above the limit
		plan.StopTriggerPrice = precision.Truncate(plan.LimitPrice.Add(spec.QuoteStep), spec.PriceDecimals)
	}

	plan.MarketQuantity = e.deductFees(marketQty, spec)
	if !plan.MarketQuantity.IsPositive() {
		return models.RotationPlan{}, fmt.Errorf("insufficient balance for %s market order on %s",
			plan.MarketSide, sig.Pair.Symbol())
	}
	return plan, nil
}

// deductFees shaves the fee fraction plus one base step off a quantity and
// truncates it to the pair's quantity precision.
func (e *RotationEngine) deductFees(quantity decimal.Decimal, spec precision.Spec) decimal.Decimal {
	quantity = quantity.Sub(quantity.Mul(e.feeRate))
	quantity = quantity.Sub(spec.BaseStep)
	return precision.Truncate(quantity, spec.QtyDecimals)
}

// protectiveQuantity sizes the stop leg from the refreshed, post-trade
// balance of whichever asset the market leg just acquired.
func (e *RotationEngine) protectiveQuantity(pair models.TradingPair, marketSide string, spec precision.Spec) (decimal.Decimal, error) {
	if err := e.balances.Refresh(); err != nil {
		return decimal.Decimal{}, err
	}

	var quantity decimal.Decimal
	if marketSide == models.SideSell {
		// The sell leg produced quote currency; convert it back through the
		// updated price to get the base quantity to protect.
		quoteBalance, err := e.balances.Get(pair.QuoteAsset)
		if err != nil {
			return decimal.Decimal{}, err
		}
		price, err := e.exchange.GetCurrentPrice(pair.Symbol())
		if err != nil {
			return decimal.Decimal{}, err
		}
		quantity = quoteBalance.Div(price)
	} else {
		baseBalance, err := e.balances.Get(pair.BaseAsset)
		if err != nil {
			return decimal.Decimal{}, err
		}
		quantity = baseBalance.Div(e.qtyFactor)
	}

	quantity = e.deductFees(quantity, spec)
	if !quantity.IsPositive() {
		return decimal.Decimal{}, fmt.Errorf("insufficient post-trade balance for protective order on %s", pair.Symbol())
	}
	return quantity, nil
}

// placeMarketWithRetry places a market order, shrinking the quantity by one
// base step on each exchange rejection. Transport failures are not retried.
// Returns the quantity that was actually placed.
func (e *RotationEngine) placeMarketWithRetry(symbol, side string, quantity decimal.Decimal, spec precision.Spec) (decimal.Decimal, int, error) {
	attempts := 0
	for {
		err := e.exchange.CreateMarketOrder(symbol, side, quantity)
		if err == nil {
			return quantity, attempts, nil
		}
		if !client.IsOrderRejected(err) {
			return quantity, attempts, err
		}
		if attempts >= e.maxRetries {
			return quantity, attempts, fmt.Errorf("retries exhausted, check account balance: %w", err)
		}
		attempts++
		quantity = precision.Truncate(quantity.Sub(spec.BaseStep), spec.QtyDecimals)
		if !quantity.IsPositive() {
			return quantity, attempts, fmt.Errorf("quantity degraded to zero: %w", err)
		}
		logger.Debugf("Retrying %s MARKET order for %s with lower quantity %s", side, symbol, quantity)
	}
}

// placeStopWithRetry places the protective stop-limit leg under the same
// degrading-quantity policy as the market leg.
func (e *RotationEngine) placeStopWithRetry(symbol string, plan models.RotationPlan, quantity decimal.Decimal, spec precision.Spec) (int64, int, error) {
	attempts := 0
	for {
		orderID, err := e.exchange.CreateStopLossLimitOrder(symbol, plan.StopSide, quantity, plan.LimitPrice, plan.StopTriggerPrice)
		if err == nil {
			return orderID, attempts, nil
		}
		if !client.IsOrderRejected(err) {
			return 0, attempts, err
		}
		if attempts >= e.maxRetries {
			return 0, attempts, fmt.Errorf("retries exhausted: %w", err)
		}
		attempts++
		quantity = precision.Truncate(quantity.Sub(spec.BaseStep), spec.QtyDecimals)
		if !quantity.IsPositive() {
			return 0, attempts, fmt.Errorf("quantity degraded to zero: %w", err)
		}
		logger.Debugf("Retrying %s STOP_LOSS_LIMIT order for %s with lower quantity %s", plan.StopSide, symbol, quantity)
	}
}

// flatten undoes the market leg when no protective order could be placed: an
// opposite-side market order at the market leg's quantity closes the newly
// opened exposure instead of leaving it unguarded. Reported as a degraded
// success, never a silent one.
func (e *RotationEngine) flatten(sig models.Signal, plan models.RotationPlan, marketQty decimal.Decimal, attempts int, cause error) (models.Outcome, error) {
	symbol := sig.Pair.Symbol()

	if err := e.exchange.CreateMarketOrder(symbol, plan.StopSide, marketQty); err != nil {
		return e.fail(sig, attempts, fmt.Errorf("protective order failed (%v) and flatten %s order also failed: %w",
			cause, plan.StopSide, err))
	}

	if err := e.balances.Refresh(); err != nil {
		logger.Warnf("%s: balance refresh after flatten failed: %v", symbol, err)
	}

	logger.Warnf("%s: no protective order could be placed, position flattened with a %s market order",
		symbol, plan.StopSide)
	e.record(sig, models.RotationRecord{
		Outcome:    models.OutcomeFlattened.String(),
		MarketSide: plan.MarketSide,
		MarketQty:  marketQty.InexactFloat64(),
		Attempts:   attempts,
		Detail:     cause.Error(),
	})
	return models.OutcomeFlattened, nil
}

// fail journals and logs an aborted signal. Nothing is swallowed: every
// failure path either flattens or ends up here.
func (e *RotationEngine) fail(sig models.Signal, attempts int, err error) (models.Outcome, error) {
	logger.Errorf("%s: %v", sig.Pair.Symbol(), err)
	e.record(sig, models.RotationRecord{
		Outcome:  models.OutcomeFailed.String(),
		Attempts: attempts,
		Detail:   err.Error(),
	})
	return models.OutcomeFailed, err
}

func (e *RotationEngine) record(sig models.Signal, record models.RotationRecord) {
	record.Symbol = sig.Pair.Symbol()
	record.Direction = sig.Direction.String()
	record.Timestamp = time.Now()
	if err := e.journal.LogRotation(record); err != nil {
		logger.Warnf("Failed to journal rotation for %s: %v", record.Symbol, err)
	}
}
