package state

import (
	"github.com/dposlabs/blockchain/foundation/blockchain/accounts"
	"github.com/dposlabs/blockchain/foundation/blockchain/database"
	"github.com/dposlabs/blockchain/foundation/blockchain/delegates"
	"github.com/dposlabs/blockchain/foundation/blockchain/genesis"
	"github.com/dposlabs/blockchain/foundation/blockchain/peer"
	"github.com/dposlabs/blockchain/foundation/blockchain/transaction"
)

// Genesis returns a copy of the genesis information.
func (s *State) Genesis() genesis.Genesis {
	return s.genesis
}

// Host returns a copy of host information.
func (s *State) Host() string {
	return s.host
}

// KnownExternalPeers returns a copy of the known peer list, excluding this
// node.
func (s *State) KnownExternalPeers() []peer.Peer {
	return s.knownPeers.Copy(s.host)
}

// AddKnownPeer adds a peer to the known peer list. It reports whether the
// peer was previously unknown.
func (s *State) AddKnownPeer(p peer.Peer) bool {
	return s.knownPeers.Add(p)
}

// LatestBlock returns a copy of the current chain head.
func (s *State) LatestBlock() database.Block {
	return s.db.LatestBlock()
}

// BlockByHeight returns the block at the specified height.
func (s *State) BlockByHeight(height uint64) (database.Block, error) {
	return s.db.GetBlock(height)
}

// BlockByID returns the block with the specified id.
func (s *State) BlockByID(id string) (database.Block, error) {
	return s.db.GetBlockByID(id)
}

// Blocks returns up to limit blocks starting at the specified height.
func (s *State) Blocks(from uint64, limit int) []database.Block {
	return s.db.Blocks(from, limit)
}

// Account returns a copy of the ledger state for the specified address.
func (s *State) Account(address string) accounts.Account {
	return s.ledger.Account(address)
}

// Accounts returns a copy of the complete account ledger.
func (s *State) Accounts() map[string]accounts.Account {
	return s.ledger.Copy()
}

// MempoolCopy returns a copy of the pending transactions.
func (s *State) MempoolCopy() []transaction.Transaction {
	return s.mempool.Copy()
}

// MempoolCount returns the number of pending transactions.
func (s *State) MempoolCount() int {
	return s.mempool.Count()
}

// ConfirmedTransaction returns a confirmed transaction with its chain
// position.
func (s *State) ConfirmedTransaction(txID string) (database.TxRecord, error) {
	return s.db.GetTx(txID)
}

// TransactionsByAddress returns the confirmed transactions involving the
// specified address.
func (s *State) TransactionsByAddress(address string) []database.TxRecord {
	return s.db.TxsByAddress(address)
}

// Delegates returns a copy of the confirmed delegate records.
func (s *State) Delegates() []delegates.Delegate {
	return s.registry.Copy()
}

// Delegate returns the confirmed delegate record for a public key.
func (s *State) Delegate(publicKey string) (delegates.Delegate, bool) {
	return s.registry.Delegate(publicKey)
}

// DelegateList returns the forging order for the round containing the
// specified height.
func (s *State) DelegateList(height uint64) []string {
	return s.registry.GenerateDelegateList(height)
}

// ActiveDelegateCount returns the number of delegates in the current round.
func (s *State) ActiveDelegateCount() int {
	return s.registry.ActiveCount()
}

// Dapps returns the confirmed dapp registrations.
func (s *State) Dapps() []database.DappRecord {
	return s.db.Dapps()
}

// SearchDapps returns the confirmed dapps matching the query and category.
func (s *State) SearchDapps(query string, category *int32) []database.DappRecord {
	return s.db.SearchDapps(query, category)
}

// DappByTxID returns the dapp registered by the specified transaction.
func (s *State) DappByTxID(txID string) (database.DappRecord, bool) {
	return s.db.DappByTxID(txID)
}

// Companies returns the confirmed company registrations.
func (s *State) Companies() []database.CompanyRecord {
	return s.db.Companies()
}

// Fee returns the fixed fee for the specified transaction.
func (s *State) Fee(tx *transaction.Transaction) (int64, error) {
	return s.engine.Fee(tx)
}
