// Package delegates maintains the registry of delegate accounts: confirmed
// records with their accumulated vote weight, unconfirmed registrations
// pending confirmation, and the deferred vote-weight tasks flushed at round
// boundaries.
package delegates

import (
	"sync"

	"github.com/dposlabs/blockchain/foundation/blockchain/genesis"
)

// Delegate represents a confirmed delegate record.
type Delegate struct {
	PublicKey     string
	Username      string
	Vote          float64
	TransactionID string
}

// Registry manages the confirmed and unconfirmed delegate sets. Mutations
// happen only inside the node's serialized execution queue; reads may run
// concurrently and always observe a consistent snapshot.
type Registry struct {
	mu          sync.RWMutex
	genesis     genesis.Genesis
	confirmed   map[string]Delegate
	order       []string // Insertion order, the deterministic tie-break for equal vote weight.
	unconfirmed map[string]Delegate
	active      int
	tasks       []func(map[string]Delegate)
}

// NewRegistry constructs a registry seeded with the genesis delegates.
func NewRegistry(gen genesis.Genesis) *Registry {
	reg := Registry{genesis: gen}
	reg.seed()
	return &reg
}

func (reg *Registry) seed() {
	reg.confirmed = make(map[string]Delegate)
	reg.unconfirmed = make(map[string]Delegate)
	reg.order = nil
	reg.tasks = nil

	for _, d := range reg.genesis.Delegates {
		reg.confirmed[d.PublicKey] = Delegate{PublicKey: d.PublicKey, Username: d.Username}
		reg.order = append(reg.order, d.PublicKey)
	}
	reg.active = activeCount(len(reg.confirmed))
}

// Reset re-initializes the registry back to the genesis delegates.
func (reg *Registry) Reset() {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	reg.seed()
}

func activeCount(registered int) int {
	if registered > genesis.MaxActiveDelegates {
		return genesis.MaxActiveDelegates
	}
	return registered
}

// ActiveCount returns the number of delegates taking part in the current
// round: min(101, registered).
func (reg *Registry) ActiveCount() int {
	reg.mu.RLock()
	defer reg.mu.RUnlock()

	return reg.active
}

// =============================================================================
// Confirmed set.

// Cache adds a confirmed delegate record and recomputes the active delegate
// count. Called when a delegate registration transaction is applied.
func (reg *Registry) Cache(delegate Delegate) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	if _, exists := reg.confirmed[delegate.PublicKey]; !exists {
		reg.order = append(reg.order, delegate.PublicKey)
	}
	reg.confirmed[delegate.PublicKey] = delegate
	reg.active = activeCount(len(reg.confirmed))
}

// Uncache removes a confirmed delegate record and recomputes the active
// delegate count. Called only on chain reorganization.
func (reg *Registry) Uncache(delegate Delegate) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	delete(reg.confirmed, delegate.PublicKey)
	for i, pk := range reg.order {
		if pk == delegate.PublicKey {
			reg.order = append(reg.order[:i], reg.order[i+1:]...)
			break
		}
	}
	reg.active = activeCount(len(reg.confirmed))
}

// Delegate returns the confirmed delegate record for a public key.
func (reg *Registry) Delegate(publicKey string) (Delegate, bool) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()

	d, exists := reg.confirmed[publicKey]
	return d, exists
}

// DelegateByName returns the confirmed delegate record for a username.
func (reg *Registry) DelegateByName(username string) (Delegate, bool) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()

	for _, d := range reg.confirmed {
		if d.Username == username {
			return d, true
		}
	}
	return Delegate{}, false
}

// Copy returns a snapshot of the confirmed delegate records in registration
// order.
func (reg *Registry) Copy() []Delegate {
	reg.mu.RLock()
	defer reg.mu.RUnlock()

	cpy := make([]Delegate, 0, len(reg.order))
	for _, pk := range reg.order {
		cpy = append(cpy, reg.confirmed[pk])
	}
	return cpy
}

// =============================================================================
// Unconfirmed set. Used to reject duplicate registrations before the first
// one confirms.

// AddUnconfirmed records a registration that has passed applyUnconfirmed.
func (reg *Registry) AddUnconfirmed(delegate Delegate) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	reg.unconfirmed[delegate.PublicKey] = delegate
}

// Unconfirmed returns a pending registration for a public key.
func (reg *Registry) Unconfirmed(publicKey string) (Delegate, bool) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()

	d, exists := reg.unconfirmed[publicKey]
	return d, exists
}

// UnconfirmedByName returns a pending registration for a username.
func (reg *Registry) UnconfirmedByName(username string) (Delegate, bool) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()

	for _, d := range reg.unconfirmed {
		if d.Username == username {
			return d, true
		}
	}
	return Delegate{}, false
}

// RemoveUnconfirmed clears a pending registration, on confirmation or
// rollback.
func (reg *Registry) RemoveUnconfirmed(publicKey string) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	delete(reg.unconfirmed, publicKey)
}

// =============================================================================
// Deferred vote-weight tasks. Vote weights feeding the next round's ranking
// must reflect a consistent snapshot, so balance and vote-set changes queue
// here during block processing and flush only at the round boundary. Values
// are snapshotted at enqueue time.

// QueueBalanceChange queues a vote-weight adjustment for every delegate the
// account votes for, scaled from the balance delta.
func (reg *Registry) QueueBalanceChange(votedDelegates []string, amount int64) {
	keys := make([]string, len(votedDelegates))
	copy(keys, votedDelegates)
	delta := float64(amount) / genesis.VoteScale

	reg.mu.Lock()
	defer reg.mu.Unlock()

	reg.tasks = append(reg.tasks, func(confirmed map[string]Delegate) {
		for _, pk := range keys {
			if d, exists := confirmed[pk]; exists {
				d.Vote += delta
				confirmed[pk] = d
			}
		}
	})
}

// QueueVoteChange queues the vote-weight transfer for an account moving its
// vote set: prior associations are decremented and new ones incremented by
// the account's scaled balance.
func (reg *Registry) QueueVoteChange(prior []string, next []string, balance int64) {
	prev := make([]string, len(prior))
	copy(prev, prior)
	nxt := make([]string, len(next))
	copy(nxt, next)
	weight := float64(balance) / genesis.VoteScale

	reg.mu.Lock()
	defer reg.mu.Unlock()

	reg.tasks = append(reg.tasks, func(confirmed map[string]Delegate) {
		for _, pk := range prev {
			if d, exists := confirmed[pk]; exists {
				d.Vote -= weight
				confirmed[pk] = d
			}
		}
		for _, pk := range nxt {
			if d, exists := confirmed[pk]; exists {
				d.Vote += weight
				confirmed[pk] = d
			}
		}
	})
}

// FinishRound drains the deferred task queue in FIFO order, applying the
// queued vote-weight adjustments to the confirmed set.
func (reg *Registry) FinishRound() {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	for _, task := range reg.tasks {
		task(reg.confirmed)
	}
	reg.tasks = nil
}

// PendingTasks returns the number of queued vote-weight tasks.
func (reg *Registry) PendingTasks() int {
	reg.mu.RLock()
	defer reg.mu.RUnlock()

	return len(reg.tasks)
}
