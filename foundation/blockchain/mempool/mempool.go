// Package mempool maintains the pool of transactions that passed verification
// and unconfirmed application but are not yet in a block.
package mempool

import (
	"sort"
	"sync"

	"github.com/dposlabs/blockchain/foundation/blockchain/transaction"
)

// Mempool represents a cache of transactions organized by id. All the
// transactions it holds have already reserved their funds against unconfirmed
// state.
type Mempool struct {
	pool map[string]transaction.Transaction
	mu   sync.RWMutex
}

// New constructs a new mempool to manage pending transactions.
func New() *Mempool {
	return &Mempool{
		pool: make(map[string]transaction.Transaction),
	}
}

// Count returns the current number of transactions in the pool.
func (mp *Mempool) Count() int {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	return len(mp.pool)
}

// Exists reports whether a transaction with the specified id is pending.
func (mp *Mempool) Exists(txID string) bool {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	_, exists := mp.pool[txID]
	return exists
}

// Upsert adds or replaces a transaction in the pool.
func (mp *Mempool) Upsert(tx transaction.Transaction) int {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	mp.pool[tx.ID] = tx
	return len(mp.pool)
}

// Delete removes a transaction from the pool.
func (mp *Mempool) Delete(txID string) {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	delete(mp.pool, txID)
}

// Truncate clears all the transactions from the pool.
func (mp *Mempool) Truncate() {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	mp.pool = make(map[string]transaction.Transaction)
}

// Copy returns a list of the current transactions in the pool.
func (mp *Mempool) Copy() []transaction.Transaction {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	cpy := make([]transaction.Transaction, 0, len(mp.pool))
	for _, tx := range mp.pool {
		cpy = append(cpy, tx)
	}
	return cpy
}

// PickBest returns up to howMany transactions ranked for forging: highest fee
// first, then oldest timestamp, then id so the order is total and every node
// picks the same set.
func (mp *Mempool) PickBest(howMany int) []transaction.Transaction {
	txs := mp.Copy()

	sort.Slice(txs, func(i, j int) bool {
		if txs[i].Fee != txs[j].Fee {
			return txs[i].Fee > txs[j].Fee
		}
		if txs[i].Timestamp != txs[j].Timestamp {
			return txs[i].Timestamp < txs[j].Timestamp
		}
		return txs[i].ID < txs[j].ID
	})

	if len(txs) > howMany {
		txs = txs[:howMany]
	}
	return txs
}
