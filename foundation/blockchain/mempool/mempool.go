// Package mempool maintains the mempool for the blockchain.
package mempool

import (
	"sync"

	"github.com/ardanlabs/minichain/foundation/blockchain/database"
)

// Mempool represents a cache of transactions waiting to be mined, kept in
// the order they were submitted.
type Mempool struct {
	pool []database.Tx
	mu   sync.RWMutex
}

// New constructs a new empty mempool.
func New() *Mempool {
	return &Mempool{}
}

// Count returns the current number of transaction in the pool.
func (mp *Mempool) Count() int {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	return len(mp.pool)
}

// Submit appends a transaction to the tail of the mempool and returns the
// new size of the pool.
func (mp *Mempool) Submit(tx database.Tx) int {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	mp.pool = append(mp.pool, tx)

	return len(mp.pool)
}

// Drain removes and returns every transaction in the pool in submission
// order. A transaction submitted concurrently is either part of the returned
// set or still in the pool, never both and never lost.
func (mp *Mempool) Drain() []database.Tx {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	trans := mp.pool
	mp.pool = nil

	return trans
}

// Requeue puts previously drained transactions back at the head of the pool,
// ahead of anything submitted since, keeping their original order.
func (mp *Mempool) Requeue(trans []database.Tx) {
	if len(trans) == 0 {
		return
	}

	mp.mu.Lock()
	defer mp.mu.Unlock()

	pool := make([]database.Tx, 0, len(trans)+len(mp.pool))
	pool = append(pool, trans...)
	pool = append(pool, mp.pool...)

	mp.pool = pool
}

// Remove deletes one matching entry from the pool for every transaction
// specified, so a transaction submitted twice and mined once is still pooled
// once. Transactions that are not in the pool are skipped. It returns the
// number of entries deleted.
func (mp *Mempool) Remove(trans []database.Tx) int {
	if len(trans) == 0 {
		return 0
	}

	mp.mu.Lock()
	defer mp.mu.Unlock()

	var n int
	mp.pool, n = Subtract(mp.pool, trans)

	return n
}

// Copy returns a copy of the transactions in the pool in submission order.
func (mp *Mempool) Copy() []database.Tx {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	trans := make([]database.Tx, len(mp.pool))
	copy(trans, mp.pool)

	return trans
}

// Truncate clears all the transactions from the pool.
func (mp *Mempool) Truncate() {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	mp.pool = nil
}

// =============================================================================

// Subtract returns the transactions in from with one entry removed for every
// transaction in trans, keeping the order of what is left. It also returns
// the number of entries removed. The from slice is not modified.
func Subtract(from []database.Tx, trans []database.Tx) ([]database.Tx, int) {
	pending := make(map[database.Tx]int, len(trans))
	for _, tx := range trans {
		pending[tx]++
	}

	out := make([]database.Tx, 0, len(from))
	var n int
	for _, tx := range from {
		if pending[tx] > 0 {
			pending[tx]--
			n++
			continue
		}
		out = append(out, tx)
	}

	return out, n
}
