// Package leveldb implements the database.Serializer interface on top of a
// LevelDB key value store, keyed by big endian block height so the natural
// key order is chain order.
package leveldb

import (
	"encoding/binary"
	"encoding/json"

	"github.com/dposlabs/blockchain/foundation/blockchain/database"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/util"
)

// LevelDB represents the storage implementation for reading and storing
// blocks inside a LevelDB database.
type LevelDB struct {
	db *leveldb.DB
}

// New constructs a LevelDB value for use, creating the database when it does
// not exist yet.
func New(dbPath string) (*LevelDB, error) {
	db, err := leveldb.OpenFile(dbPath, nil)
	if err != nil {
		return nil, err
	}

	return &LevelDB{db: db}, nil
}

// Close releases the underlying database.
func (l *LevelDB) Close() error {
	return l.db.Close()
}

// Write stores the specified block under its height.
func (l *LevelDB) Write(block database.Block) error {
	data, err := json.Marshal(block)
	if err != nil {
		return err
	}

	return l.db.Put(heightKey(block.Height), data, nil)
}

// GetBlock returns the block stored under the specified height.
func (l *LevelDB) GetBlock(height uint64) (database.Block, error) {
	data, err := l.db.Get(heightKey(height), nil)
	if err != nil {
		return database.Block{}, err
	}

	var block database.Block
	if err := json.Unmarshal(data, &block); err != nil {
		return database.Block{}, err
	}

	return block, nil
}

// ForEach returns an iterator to walk through all the stored blocks starting
// from block height 1.
func (l *LevelDB) ForEach() database.Iterator {
	return &levelIterator{storage: l}
}

// Reset clears every stored block.
func (l *LevelDB) Reset() error {
	iter := l.db.NewIterator(&util.Range{}, nil)
	defer iter.Release()

	batch := new(leveldb.Batch)
	for iter.Next() {
		batch.Delete(iter.Key())
	}
	if err := iter.Error(); err != nil {
		return err
	}

	return l.db.Write(batch, nil)
}

func heightKey(height uint64) []byte {
	var key [8]byte
	binary.BigEndian.PutUint64(key[:], height)
	return key[:]
}

// =============================================================================

// levelIterator represents the iteration implementation for walking through
// the stored blocks.
type levelIterator struct {
	storage *LevelDB
	current uint64
	eoc     bool
}

// Next retrieves the next block from the store.
func (li *levelIterator) Next() (database.Block, error) {
	if li.eoc {
		return database.Block{}, database.ErrEOC
	}

	li.current++
	block, err := li.storage.GetBlock(li.current)
	if err != nil {
		if err == leveldb.ErrNotFound {
			li.eoc = true
			return database.Block{}, database.ErrEOC
		}
		return database.Block{}, err
	}

	return block, nil
}

// Done returns the end of chain value.
func (li *levelIterator) Done() bool {
	return li.eoc
}
