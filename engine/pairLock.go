package engine

import "sync"

// pairLocks serializes rotations per pair. A rotation reads exchange state
// (open orders, balances) that a concurrent rotation on the same pair would
// be mutating, so one must finish before the next starts. Signals for
// different pairs proceed independently.
type pairLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newPairLocks() *pairLocks {
	return &pairLocks{locks: make(map[string]*sync.Mutex)}
}

func (p *pairLocks) lockFor(symbol string) *sync.Mutex {
	p.mu.Lock()
	defer p.mu.Unlock()

	lock, ok := p.locks[symbol]
	if !ok {
		lock = &sync.Mutex{}
		p.locks[symbol] = lock
	}
	return lock
}
