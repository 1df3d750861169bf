package precision

import (
	"fmt"
	"testing"

	"cross_bot/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStepSource struct {
	step  decimal.Decimal
	err   error
	calls int
}

func (f *fakeStepSource) GetLotStepSize(symbol string) (decimal.Decimal, error) {
	f.calls++
	if f.err != nil {
		return decimal.Decimal{}, f.err
	}
	return f.step, nil
}

func (f *fakeStepSource) GetCurrentPrice(symbol string) (decimal.Decimal, error) {
	return decimal.Decimal{}, nil
}
func (f *fakeStepSource) GetOpenOrders(symbol string) ([]models.RestingOrder, error) {
	return nil, nil
}
func (f *fakeStepSource) CreateMarketOrder(symbol, side string, quantity decimal.Decimal) error {
	return nil
}
func (f *fakeStepSource) CreateStopLossLimitOrder(symbol, side string, quantity, price, stopPrice decimal.Decimal) (int64, error) {
	return 0, nil
}
func (f *fakeStepSource) CancelOrder(symbol string, orderID int64) error { return nil }
func (f *fakeStepSource) GetAccountBalances() (map[string]decimal.Decimal, error) {
	return nil, nil
}

func TestDecimalsOf(t *testing.T) {
	cases := []struct {
		step string
		want int32
	}{
		{"0.000001", 6},
		{"0.01", 2},
		{"0.001", 3},
		{"0.00100000", 3}, // trailing zeros do not count
		{"1", 0},
		{"10", 0},
		{"1.5", 1},
	}
	for _, tc := range cases {
		got := DecimalsOf(decimal.RequireFromString(tc.step))
		assert.Equal(t, tc.want, got, "step %s", tc.step)
	}
}

func TestTruncateNeverRounds(t *testing.T) {
	cases := []struct {
		value    string
		decimals int32
		want     string
	}{
		{"1.23456", 2, "1.23"},
		{"1.9999", 2, "1.99"}, // must not round up to 2.00
		{"0.999999999", 6, "0.999999"},
		{"5", 2, "5"},
		{"-1.239", 2, "-1.23"}, // toward zero
	}
	for _, tc := range cases {
		got := Truncate(decimal.RequireFromString(tc.value), tc.decimals)
		assert.True(t, got.Equal(decimal.RequireFromString(tc.want)),
			"truncate(%s, %d) = %s, want %s", tc.value, tc.decimals, got, tc.want)
	}
}

func TestTruncateIdempotent(t *testing.T) {
	value := decimal.RequireFromString("123.456789")
	once := Truncate(value, 3)
	twice := Truncate(once, 3)
	assert.True(t, once.Equal(twice))
	// truncation never increases magnitude
	assert.True(t, once.Abs().LessThanOrEqual(value.Abs()))
}

func TestResolveMajorAssets(t *testing.T) {
	source := &fakeStepSource{}
	resolver := NewResolver(source)

	spec, err := resolver.Resolve("BTC", "USDT")
	require.NoError(t, err)

	assert.True(t, spec.BaseStep.Equal(decimal.RequireFromString("0.000001")))
	assert.True(t, spec.QuoteStep.Equal(decimal.RequireFromString("0.01")))
	assert.Equal(t, int32(6), spec.QtyDecimals)
	assert.Equal(t, int32(2), spec.PriceDecimals)
	assert.Equal(t, 0, source.calls, "major assets must not hit the exchange")
}

func TestResolveFetchesAndCachesBaseStep(t *testing.T) {
	source := &fakeStepSource{step: decimal.RequireFromString("0.001")}
	resolver := NewResolver(source)

	spec, err := resolver.Resolve("SOL", "USDT")
	require.NoError(t, err)
	assert.Equal(t, int32(3), spec.QtyDecimals)

	_, err = resolver.Resolve("SOL", "USDT")
	require.NoError(t, err)
	assert.Equal(t, 1, source.calls, "step size should be cached per pair")
}

func TestResolveUnknownQuote(t *testing.T) {
	resolver := NewResolver(&fakeStepSource{})
	_, err := resolver.Resolve("BTC", "DOGE")
	assert.Error(t, err)
}

func TestResolveFetchFailureAborts(t *testing.T) {
	source := &fakeStepSource{err: fmt.Errorf("exchange unreachable")}
	resolver := NewResolver(source)

	_, err := resolver.Resolve("SOL", "USDT")
	assert.Error(t, err)
}
