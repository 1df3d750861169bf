package precision

import (
	"fmt"
	"strings"
	"sync"

	"cross_bot/interfaces"

	"github.com/shopspring/decimal"
)

// MajorQuoteSteps holds the quantity step sizes for the major quote assets.
// Base assets outside this table have their step fetched from exchange
// trading rules on demand.
var MajorQuoteSteps = map[string]decimal.Decimal{
	"BTC":  decimal.RequireFromString("0.000001"),
	"ETH":  decimal.RequireFromString("0.000001"),
	"USDT": decimal.RequireFromString("0.01"),
}

// DecimalsOf returns the number of fractional digits in the step size, e.g.
// 0.000001 -> 6. A step with no fractional component yields 0.
func DecimalsOf(step decimal.Decimal) int32 {
	s := step.String() // String trims trailing zeros
	i := strings.IndexByte(s, '.')
	if i < 0 {
		return 0
	}
	return int32(len(s) - i - 1)
}

// Truncate cuts value toward zero at the given number of fractional digits.
// It never rounds: rounding up could request a quantity the account does not
// hold and get the order rejected.
func Truncate(value decimal.Decimal, decimals int32) decimal.Decimal {
	return value.Truncate(decimals)
}

// Spec is the resolved precision for one pair.
type Spec struct {
	BaseStep      decimal.Decimal
	QuoteStep     decimal.Decimal
	QtyDecimals   int32
	PriceDecimals int32
}

// Resolver resolves per-pair step sizes, caching exchange lookups for the
// process lifetime.
type Resolver struct {
	exchange interfaces.ExchangeClient
	cache    map[string]decimal.Decimal
	cacheMu  sync.RWMutex
}

func NewResolver(exchange interfaces.ExchangeClient) *Resolver {
	return &Resolver{
		exchange: exchange,
		cache:    make(map[string]decimal.Decimal),
	}
}

// Resolve returns the precision spec for a pair. The quote asset must be in
// the major-quote table; the base step comes from the table or from exchange
// lot-size rules. A failed lookup aborts the caller's rotation, so no
// quantity math ever runs on unresolved precision.
func (r *Resolver) Resolve(base, quote string) (Spec, error) {
	quoteStep, ok := MajorQuoteSteps[quote]
	if !ok {
		return Spec{}, fmt.Errorf("no step size known for quote asset %s", quote)
	}

	baseStep, ok := MajorQuoteSteps[base]
	if !ok {
		var err error
		baseStep, err = r.lotStepSize(base + quote)
		if err != nil {
			return Spec{}, fmt.Errorf("failed to resolve step size for %s%s: %w", base, quote, err)
		}
	}

	return Spec{
		BaseStep:      baseStep,
		QuoteStep:     quoteStep,
		QtyDecimals:   DecimalsOf(baseStep),
		PriceDecimals: DecimalsOf(quoteStep),
	}, nil
}

func (r *Resolver) lotStepSize(symbol string) (decimal.Decimal, error) {
	r.cacheMu.RLock()
	step, ok := r.cache[symbol]
	r.cacheMu.RUnlock()
	if ok {
		return step, nil
	}

	step, err := r.exchange.GetLotStepSize(symbol)
	if err != nil {
		return decimal.Decimal{}, err
	}

	r.cacheMu.Lock()
	r.cache[symbol] = step
	r.cacheMu.Unlock()
	return step, nil
}
