package ledger

import (
	"fmt"
	"testing"

	"cross_bot/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAccount struct {
	balances map[string]decimal.Decimal
	err      error
}

func (f *fakeAccount) GetAccountBalances() (map[string]decimal.Decimal, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.balances, nil
}

func (f *fakeAccount) GetCurrentPrice(symbol string) (decimal.Decimal, error) {
	return decimal.Decimal{}, nil
}
func (f *fakeAccount) GetOpenOrders(symbol string) ([]models.RestingOrder, error) { return nil, nil }
func (f *fakeAccount) CreateMarketOrder(symbol, side string, quantity decimal.Decimal) error {
	return nil
}
func (f *fakeAccount) CreateStopLossLimitOrder(symbol, side string, quantity, price, stopPrice decimal.Decimal) (int64, error) {
	return 0, nil
}
func (f *fakeAccount) CancelOrder(symbol string, orderID int64) error      { return nil }
func (f *fakeAccount) GetLotStepSize(symbol string) (decimal.Decimal, error) {
	return decimal.Decimal{}, nil
}

func TestGetBeforeRefresh(t *testing.T) {
	l := New(&fakeAccount{})
	_, err := l.Get("BTC")
	assert.Error(t, err, "reads before the first refresh must fail")
}

func TestRefreshAndGet(t *testing.T) {
	account := &fakeAccount{balances: map[string]decimal.Decimal{
		"BTC":  decimal.RequireFromString("0.5"),
		"USDT": decimal.Zero,
	}}
	l := New(account)
	require.NoError(t, l.Refresh())

	btc, err := l.Get("BTC")
	require.NoError(t, err)
	assert.True(t, btc.Equal(decimal.RequireFromString("0.5")))

	// a zero balance is a valid answer, not an error
	usdt, err := l.Get("USDT")
	require.NoError(t, err)
	assert.True(t, usdt.IsZero())
}

func TestGetMissingAsset(t *testing.T) {
	account := &fakeAccount{balances: map[string]decimal.Decimal{"BTC": decimal.Zero}}
	l := New(account)
	require.NoError(t, l.Refresh())

	_, err := l.Get("DOGE")
	assert.Error(t, err)
}

func TestFailedRefreshKeepsSnapshot(t *testing.T) {
	account := &fakeAccount{balances: map[string]decimal.Decimal{
		"ETH": decimal.RequireFromString("2"),
	}}
	l := New(account)
	require.NoError(t, l.Refresh())

	account.err = fmt.Errorf("account endpoint down")
	assert.Error(t, l.Refresh())

	eth, err := l.Get("ETH")
	require.NoError(t, err)
	assert.True(t, eth.Equal(decimal.RequireFromString("2")), "previous snapshot must survive a failed refresh")
}
