package state

import (
	"context"
	"errors"
	"fmt"

	"github.com/dposlabs/blockchain/foundation/blockchain/database"
	"github.com/dposlabs/blockchain/foundation/blockchain/signature"
	"github.com/dposlabs/blockchain/foundation/blockchain/slots"
	"github.com/dposlabs/blockchain/foundation/blockchain/transaction"
)

// ProcessBlock takes a block received from another node or from our own
// forger, validates it and if that passes, commits it to the chain. The whole
// operation runs on the serialized queue.
func (s *State) ProcessBlock(ctx context.Context, block database.Block) error {
	return s.queue.Do(ctx, func() error {
		return s.processBlock(block)
	})
}

func (s *State) processBlock(block database.Block) error {
	s.evHandler("state: processBlock: started: height[%d] block[%s]", block.Height, block.ID)
	defer s.evHandler("state: processBlock: completed")

	head := s.db.LatestBlock()

	if err := database.ValidateBlock(head, block); err != nil {
		return err
	}

	if !s.registry.ValidateBlockSlot(block.Height, block.Timestamp, block.GeneratorPublicKey) {
		return &SlotAssignmentError{
			Height:             block.Height,
			Slot:               slots.SlotNumber(block.Timestamp),
			GeneratorPublicKey: block.GeneratorPublicKey,
		}
	}

	for i := range block.Transactions {
		tx := &block.Transactions[i]
		if s.db.TxExists(tx.ID) {
			return transaction.NewValidationError(tx.ID, "transaction %q is already confirmed", tx.ID)
		}
		if err := s.engine.Verify(tx); err != nil {
			return err
		}
	}

	if err := s.applyBlock(block); err != nil {
		return err
	}

	if err := s.db.Write(block); err != nil {
		var pe *database.PersistenceError
		if errors.As(err, &pe) {
			if uerr := s.undoBlock(block); uerr != nil {
				return fmt.Errorf("undo after persistence failure: %s: %w", uerr, err)
			}
		}
		return err
	}

	s.tickRound(block.Height)
	return nil
}

// applyBlock commits the block's transactions to the ledger. Transactions the
// mempool already holds keep their unconfirmed reservation; foreign ones take
// it here. Any failure rolls the block's partial work back before returning.
func (s *State) applyBlock(block database.Block) error {
	type applied struct {
		tx          *transaction.Transaction
		tookReserve bool
	}
	var done []applied

	rollback := func() {
		for i := len(done) - 1; i >= 0; i-- {
			s.engine.Undo(done[i].tx)
			if done[i].tookReserve {
				s.engine.UndoUnconfirmed(done[i].tx)
			} else {
				s.mempool.Upsert(*done[i].tx)
			}
		}
	}

	for i := range block.Transactions {
		tx := &block.Transactions[i]

		tookReserve := false
		if s.mempool.Exists(tx.ID) {
			s.mempool.Delete(tx.ID)
		} else {
			if err := s.engine.ApplyUnconfirmed(tx); err != nil {
				rollback()
				return err
			}
			tookReserve = true
		}

		if err := s.engine.Apply(tx); err != nil {
			if tookReserve {
				s.engine.UndoUnconfirmed(tx)
			} else {
				s.mempool.Upsert(*tx)
			}
			rollback()
			return err
		}

		done = append(done, applied{tx: tx, tookReserve: tookReserve})
	}

	s.creditGenerator(block, block.TotalFee)
	return nil
}

// undoBlock is the exact inverse of applyBlock for a block whose transactions
// all applied.
func (s *State) undoBlock(block database.Block) error {
	s.creditGenerator(block, -block.TotalFee)

	for i := len(block.Transactions) - 1; i >= 0; i-- {
		tx := &block.Transactions[i]
		if err := s.engine.Undo(tx); err != nil {
			return err
		}
		if err := s.engine.UndoUnconfirmed(tx); err != nil {
			return err
		}
	}

	return nil
}

// creditGenerator moves the block fees to the forging delegate's account.
func (s *State) creditGenerator(block database.Block, fee int64) {
	if fee == 0 {
		return
	}

	account, exists := s.ledger.AccountByPublicKey(block.GeneratorPublicKey)
	if !exists {
		addr, err := signature.AddressFromHexPublicKey(block.GeneratorPublicKey)
		if err != nil {
			return
		}
		account = s.ledger.Account(addr)
		account.PublicKey = block.GeneratorPublicKey
	}

	account.Balance += fee
	account.Unconfirmed += fee
	s.ledger.Save(account)

	s.registry.QueueBalanceChange(account.CopyDelegates(), fee)
}

// tickRound drains the deferred vote weight tasks when the block closes a
// round, so the next round's forging order sees the new weights.
func (s *State) tickRound(height uint64) {
	active := s.registry.ActiveCount()
	if active == 0 {
		return
	}

	if height%uint64(active) == 0 {
		s.evHandler("state: tickRound: round finished at height %d", height)
		s.registry.FinishRound()
	}
}

// =============================================================================

// RollbackLatestBlock drops the chain head during fork resolution. Its
// transactions go back to the mempool with their reservations intact so they
// can ride a later block.
func (s *State) RollbackLatestBlock(ctx context.Context) error {
	return s.queue.Do(ctx, func() error {
		head := s.db.LatestBlock()
		if head.Height == 0 {
			return errors.New("nothing to roll back")
		}

		s.evHandler("state: rollback: height[%d] block[%s]", head.Height, head.ID)

		s.creditGenerator(head, -head.TotalFee)

		for i := len(head.Transactions) - 1; i >= 0; i-- {
			tx := &head.Transactions[i]
			if err := s.engine.Undo(tx); err != nil {
				return err
			}
			s.mempool.Upsert(*tx)
		}

		return s.db.RemoveLatest()
	})
}
