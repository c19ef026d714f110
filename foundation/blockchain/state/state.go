// Package state is the core API for the blockchain and implements all the
// business rules and processing.
package state

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dposlabs/blockchain/foundation/blockchain/accounts"
	"github.com/dposlabs/blockchain/foundation/blockchain/database"
	"github.com/dposlabs/blockchain/foundation/blockchain/delegates"
	"github.com/dposlabs/blockchain/foundation/blockchain/genesis"
	"github.com/dposlabs/blockchain/foundation/blockchain/mempool"
	"github.com/dposlabs/blockchain/foundation/blockchain/peer"
	"github.com/dposlabs/blockchain/foundation/blockchain/signature"
	"github.com/dposlabs/blockchain/foundation/blockchain/transaction"
	"github.com/dposlabs/blockchain/foundation/sequence"
)

// The depth of the serialized execution queue. Submitters block once this
// many mutations are waiting.
const queueDepth = 128

// EventHandler defines a function that is called when events occur in the
// processing of persisting blocks.
type EventHandler func(v string, args ...any)

// Worker interface represents the behavior required to be implemented by any
// package providing support for background operations like forging.
type Worker interface {
	Shutdown()
	Sync()
}

// =============================================================================

// Config represents the configuration required to start the blockchain node.
type Config struct {
	Genesis    genesis.Genesis
	Storage    database.Serializer
	Host       string
	KnownPeers *peer.PeerSet
	EvHandler  EventHandler
}

// State manages the blockchain database.
type State struct {
	mu sync.RWMutex

	host       string
	knownPeers *peer.PeerSet
	evHandler  EventHandler

	genesis  genesis.Genesis
	ledger   *accounts.Ledger
	registry *delegates.Registry
	engine   *transaction.Engine
	mempool  *mempool.Mempool
	db       *database.Database
	queue    *sequence.Queue

	forgingKeys map[string]signature.Keypair

	worker Worker
}

// New constructs a new blockchain for data management.
func New(cfg Config) (*State, error) {
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	ledger := accounts.New(cfg.Genesis)
	registry := delegates.NewRegistry(cfg.Genesis)
	engine := transaction.NewEngine(ledger, registry, cfg.Genesis, transaction.EventHandler(ev))
	db := database.New(cfg.Genesis, cfg.Storage)

	engine.RegisterDappStore(db)
	engine.RegisterCompanyStore(db)

	state := State{
		host:       cfg.Host,
		knownPeers: cfg.KnownPeers,
		evHandler:  ev,

		genesis:  cfg.Genesis,
		ledger:   ledger,
		registry: registry,
		engine:   engine,
		mempool:  mempool.New(),
		db:       db,
		queue:    sequence.New(queueDepth),

		forgingKeys: make(map[string]signature.Keypair),
	}

	if err := state.replay(); err != nil {
		return nil, err
	}

	return &state, nil
}

// replay walks the persisted chain from height 1 and rebuilds the in-memory
// ledger, registry and chain index.
func (s *State) replay() error {
	iter := s.db.ForEach()
	for {
		block, err := iter.Next()
		if err != nil {
			if errors.Is(err, database.ErrEOC) {
				break
			}
			return fmt.Errorf("chain replay: %w", err)
		}

		if err := s.applyBlock(block); err != nil {
			return fmt.Errorf("chain replay at height %d: %w", block.Height, err)
		}
		s.db.Index(block)
		s.tickRound(block.Height)
	}

	s.evHandler("state: replay: chain head at height %d", s.db.LatestBlock().Height)
	return nil
}

// Shutdown cleanly brings the node down.
func (s *State) Shutdown() error {
	s.evHandler("state: shutdown: started")
	defer s.evHandler("state: shutdown: completed")

	// Make sure the database file is properly closed.
	defer func() {
		s.db.Close()
	}()

	// Stop all blockchain writing activity.
	if s.worker != nil {
		s.worker.Shutdown()
	}
	s.queue.Shutdown()

	return nil
}

// =============================================================================

// Worker registers the specified worker with the state, giving the state
// access to background operations.
func (s *State) Worker(worker Worker) {
	s.worker = worker
}

// Reorganize resets the chain and replays it from storage. The worker calls
// this when the node falls out of consensus.
func (s *State) Reorganize(ctx context.Context) error {
	return s.queue.Do(ctx, func() error {
		s.ledger.Reset()
		s.registry.Reset()
		s.mempool.Truncate()
		s.db.ResetIndex()
		return s.replay()
	})
}

// =============================================================================
// Forging key management. A node forges only for delegates whose secret was
// enabled through the private API.

// EnableForging derives the keypair for the secret and arms forging for the
// delegate it belongs to.
func (s *State) EnableForging(secret string) (string, error) {
	kp := signature.NewKeypair(secret)
	publicKey := kp.PublicKeyString()

	if _, exists := s.registry.Delegate(publicKey); !exists {
		return "", fmt.Errorf("public key %q is not a registered delegate", publicKey)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.forgingKeys[publicKey] = kp
	s.evHandler("state: forging enabled for delegate %s", publicKey)
	return publicKey, nil
}

// DisableForging disarms forging for the specified delegate public key.
func (s *State) DisableForging(publicKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.forgingKeys[publicKey]; !exists {
		return fmt.Errorf("forging is not enabled for %q", publicKey)
	}

	delete(s.forgingKeys, publicKey)
	s.evHandler("state: forging disabled for delegate %s", publicKey)
	return nil
}

// IsForging reports whether forging is armed for the specified public key.
func (s *State) IsForging(publicKey string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, exists := s.forgingKeys[publicKey]
	return exists
}

// ForgingKeypairs returns a snapshot of the armed forging keypairs.
func (s *State) ForgingKeypairs() map[string]signature.Keypair {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cpy := make(map[string]signature.Keypair, len(s.forgingKeys))
	for pk, kp := range s.forgingKeys {
		cpy[pk] = kp
	}
	return cpy
}
