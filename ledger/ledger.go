package ledger

import (
	"fmt"
	"sync"

	"cross_bot/interfaces"

	"github.com/shopspring/decimal"
)

// Ledger is a process-local cache of free balances per asset. It must be
// refreshed after any trade that changes holdings and before sizing a
// dependent order; Get on a never-refreshed ledger is an error.
type Ledger struct {
	exchange  interfaces.ExchangeClient
	mu        sync.RWMutex
	balances  map[string]decimal.Decimal
	refreshed bool
}

func New(exchange interfaces.ExchangeClient) *Ledger {
	return &Ledger{exchange: exchange}
}

// Refresh replaces the cached balances with the exchange's current view.
// A failed exchange call leaves the previous snapshot untouched; partial
// balances are never accepted.
func (l *Ledger) Refresh() error {
	balances, err := l.exchange.GetAccountBalances()
	if err != nil {
		return fmt.Errorf("failed to refresh account balances: %w", err)
	}

	l.mu.Lock()
	l.balances = balances
	l.refreshed = true
	l.mu.Unlock()
	return nil
}

// Get returns the free balance for an asset from the last refresh. An asset
// absent from the snapshot is an error, distinct from a zero balance.
func (l *Ledger) Get(asset string) (decimal.Decimal, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if !l.refreshed {
		return decimal.Decimal{}, fmt.Errorf("balance ledger read before first refresh")
	}
	balance, ok := l.balances[asset]
	if !ok {
		return decimal.Decimal{}, fmt.Errorf("asset %s not found in account balances", asset)
	}
	return balance, nil
}
