// Package database maintains the blockchain itself: blocks in memory for
// queries, blocks on storage for restarts, and the row shapes the API serves
// for transactions, dapps and companies.
package database

import (
	"encoding/hex"
	"fmt"
	"strings"
	"sync"

	"github.com/dposlabs/blockchain/foundation/blockchain/genesis"
	"github.com/dposlabs/blockchain/foundation/blockchain/signature"
	"github.com/dposlabs/blockchain/foundation/blockchain/transaction"
)

// Serializer persists blocks across restarts. Implementations are free to
// choose the medium as long as blocks come back in height order.
type Serializer interface {
	Write(block Block) error
	GetBlock(height uint64) (Block, error)
	ForEach() Iterator
	Close() error
	Reset() error
}

// Iterator walks the persisted blocks from genesis to head.
type Iterator interface {
	Next() (Block, error)
	Done() bool
}

// =============================================================================

// Database manages data related to blocks that have been accepted into the
// chain.
type Database struct {
	mu          sync.RWMutex
	genesis     genesis.Genesis
	latestBlock Block
	byHeight    map[uint64]Block
	byID        map[string]string // Block id to transaction lookup support.
	txs         map[string]TxRecord
	storage     Serializer
}

// TxRecord is a confirmed transaction with its chain position.
type TxRecord struct {
	Tx      transaction.Transaction `json:"transaction"`
	BlockID string                  `json:"blockId"`
	Height  uint64                  `json:"height"`
}

// New constructs a database seeded with the genesis block.
func New(gen genesis.Genesis, storage Serializer) *Database {
	db := Database{
		genesis:  gen,
		byHeight: make(map[uint64]Block),
		byID:     make(map[string]string),
		txs:      make(map[string]TxRecord),
		storage:  storage,
	}

	db.index(NewGenesisBlock(gen))
	return &db
}

// ResetIndex clears the in-memory view back to just the genesis block. The
// persisted chain is untouched so a replay can rebuild the view.
func (db *Database) ResetIndex() {
	db.mu.Lock()
	defer db.mu.Unlock()

	db.byHeight = make(map[uint64]Block)
	db.byID = make(map[string]string)
	db.txs = make(map[string]TxRecord)
	db.index(NewGenesisBlock(db.genesis))
}

// NewGenesisBlock constructs the height zero block every chain starts from.
// Its id comes from the genesis file and its generation signature is all
// zeros.
func NewGenesisBlock(gen genesis.Genesis) Block {
	return Block{
		ID:                 gen.BlockID,
		Version:            0,
		Timestamp:          0,
		Height:             0,
		PayloadHash:        strings.Repeat("00", 32),
		GeneratorPublicKey: strings.Repeat("00", signature.PublicKeySize),
		BlockSignature:     hex.EncodeToString(signature.ZeroSignature),
	}
}

func (db *Database) index(block Block) {
	db.latestBlock = block
	db.byHeight[block.Height] = block
	db.byID[block.ID] = block.ID
	for _, tx := range block.Transactions {
		db.txs[tx.ID] = TxRecord{Tx: tx, BlockID: block.ID, Height: block.Height}
	}
}

// Write persists and indexes a validated block. The in-memory index updates
// only after storage accepts the block, so a storage failure leaves the
// database untouched.
func (db *Database) Write(block Block) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if db.storage != nil {
		if err := db.storage.Write(block); err != nil {
			return &PersistenceError{Height: block.Height, Err: err}
		}
	}

	db.index(block)
	return nil
}

// Index adds a block to the in-memory view without touching storage. Chain
// replay uses it for blocks that are already persisted.
func (db *Database) Index(block Block) {
	db.mu.Lock()
	defer db.mu.Unlock()

	db.index(block)
}

// RemoveLatest drops the chain head from the index during a rollback. The
// new head must be the block right below it.
func (db *Database) RemoveLatest() error {
	db.mu.Lock()
	defer db.mu.Unlock()

	head := db.latestBlock
	if head.Height == 0 {
		return &ChainError{Msg: "cannot remove the genesis block"}
	}

	previous, exists := db.byHeight[head.Height-1]
	if !exists {
		return &ChainError{Msg: fmt.Sprintf("missing block %d below the chain head", head.Height-1)}
	}

	for _, tx := range head.Transactions {
		delete(db.txs, tx.ID)
	}
	delete(db.byHeight, head.Height)
	delete(db.byID, head.ID)
	db.latestBlock = previous

	return nil
}

// LatestBlock returns the current chain head.
func (db *Database) LatestBlock() Block {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return db.latestBlock
}

// GetBlock returns the block at the specified height.
func (db *Database) GetBlock(height uint64) (Block, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	block, exists := db.byHeight[height]
	if !exists {
		return Block{}, fmt.Errorf("no block at height %d", height)
	}
	return block, nil
}

// GetBlockByID returns the block with the specified id.
func (db *Database) GetBlockByID(id string) (Block, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	for _, block := range db.byHeight {
		if block.ID == id {
			return block, nil
		}
	}
	return Block{}, fmt.Errorf("no block with id %q", id)
}

// Blocks returns up to limit blocks starting at the specified height.
func (db *Database) Blocks(from uint64, limit int) []Block {
	db.mu.RLock()
	defer db.mu.RUnlock()

	var blocks []Block
	for h := from; h <= db.latestBlock.Height && len(blocks) < limit; h++ {
		if block, exists := db.byHeight[h]; exists {
			blocks = append(blocks, block)
		}
	}
	return blocks
}

// GetTx returns a confirmed transaction with its chain position.
func (db *Database) GetTx(txID string) (TxRecord, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	rec, exists := db.txs[txID]
	if !exists {
		return TxRecord{}, fmt.Errorf("no transaction with id %q", txID)
	}
	return rec, nil
}

// TxExists reports whether a transaction id is already confirmed. Replayed
// ids are how double spends arrive, so every incoming transaction checks
// here first.
func (db *Database) TxExists(txID string) bool {
	db.mu.RLock()
	defer db.mu.RUnlock()

	_, exists := db.txs[txID]
	return exists
}

// TxsByAddress returns the confirmed transactions sent or received by the
// specified address.
func (db *Database) TxsByAddress(address string) []TxRecord {
	db.mu.RLock()
	defer db.mu.RUnlock()

	var recs []TxRecord
	for _, rec := range db.txs {
		if rec.Tx.SenderID == address || rec.Tx.RecipientID == address {
			recs = append(recs, rec)
		}
	}
	return recs
}

// ForEach returns an iterator over the persisted blocks for chain replay.
func (db *Database) ForEach() Iterator {
	if db.storage == nil {
		return emptyIterator{}
	}
	return db.storage.ForEach()
}

// emptyIterator backs a database running without persistent storage.
type emptyIterator struct{}

func (emptyIterator) Next() (Block, error) { return Block{}, ErrEOC }
func (emptyIterator) Done() bool           { return true }

// Close releases the underlying storage.
func (db *Database) Close() error {
	if db.storage == nil {
		return nil
	}
	return db.storage.Close()
}
