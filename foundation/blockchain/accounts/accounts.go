// Package accounts maintains the account ledger: balances, public keys,
// second-signature state, and delegate vote associations. The ledger is
// mutated only through the transaction engine running inside the node's
// serialized execution queue.
package accounts

import (
	"sync"

	"github.com/dposlabs/blockchain/foundation/blockchain/genesis"
)

// Account represents the ledger state for a single address. Balance is the
// confirmed balance; Unconfirmed additionally reflects mempool reservations
// and is always <= Balance plus pending credits.
type Account struct {
	Address              string
	PublicKey            string // Hex, empty until the first signed activity.
	Balance              int64
	Unconfirmed          int64
	SecondPublicKey      string
	SecondSignature      bool
	UnconfirmedSignature bool
	Delegates            []string // Public keys of the delegates this account votes for.
	Multisignatures      []string
	MultiMin             int
}

// CopyDelegates returns an independent copy of the account's vote set.
func (a Account) CopyDelegates() []string {
	if a.Delegates == nil {
		return nil
	}

	cpy := make([]string, len(a.Delegates))
	copy(cpy, a.Delegates)
	return cpy
}

// VotesFor reports whether the account currently votes for the specified
// delegate public key.
func (a Account) VotesFor(publicKey string) bool {
	for _, pk := range a.Delegates {
		if pk == publicKey {
			return true
		}
	}
	return false
}

// =============================================================================

// Ledger manages data related to accounts who have transacted on the
// blockchain.
type Ledger struct {
	genesis genesis.Genesis
	info    map[string]Account
	mu      sync.RWMutex
}

// New constructs a ledger seeded with the genesis balances.
func New(genesis genesis.Genesis) *Ledger {
	ledger := Ledger{
		genesis: genesis,
		info:    make(map[string]Account),
	}

	for addr, balance := range genesis.Balances {
		ledger.info[addr] = Account{Address: addr, Balance: balance, Unconfirmed: balance}
	}

	return &ledger
}

// Reset re-initializes the ledger back to the genesis information.
func (lgr *Ledger) Reset() {
	lgr.mu.Lock()
	defer lgr.mu.Unlock()

	lgr.info = make(map[string]Account)
	for addr, balance := range lgr.genesis.Balances {
		lgr.info[addr] = Account{Address: addr, Balance: balance, Unconfirmed: balance}
	}
}

// Account returns a copy of the account for the specified address. A fresh
// zero-balance account is returned when the address has never been seen.
func (lgr *Ledger) Account(address string) Account {
	lgr.mu.RLock()
	defer lgr.mu.RUnlock()

	account, exists := lgr.info[address]
	if !exists {
		return Account{Address: address}
	}
	return account
}

// AccountByPublicKey returns the account whose recorded public key matches.
func (lgr *Ledger) AccountByPublicKey(publicKey string) (Account, bool) {
	lgr.mu.RLock()
	defer lgr.mu.RUnlock()

	for _, account := range lgr.info {
		if account.PublicKey == publicKey {
			return account, true
		}
	}
	return Account{}, false
}

// Save writes the account back to the ledger.
func (lgr *Ledger) Save(account Account) {
	lgr.mu.Lock()
	defer lgr.mu.Unlock()

	lgr.info[account.Address] = account
}

// Copy makes a copy of the current information for all accounts.
func (lgr *Ledger) Copy() map[string]Account {
	lgr.mu.RLock()
	defer lgr.mu.RUnlock()

	accounts := make(map[string]Account, len(lgr.info))
	for addr, account := range lgr.info {
		accounts[addr] = account
	}
	return accounts
}
