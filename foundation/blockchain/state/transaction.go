package state

import (
	"context"

	"github.com/dposlabs/blockchain/foundation/blockchain/transaction"
)

// SubmitWalletTransaction accepts a transaction from a wallet. It is
// normalized, fully verified, and then reserves its funds against unconfirmed
// state before entering the mempool.
func (s *State) SubmitWalletTransaction(ctx context.Context, tx transaction.Transaction) error {
	s.evHandler("state: submitTransaction: started: tx[%s]", tx.ID)
	defer s.evHandler("state: submitTransaction: completed")

	if err := s.engine.Normalize(&tx); err != nil {
		return err
	}

	if s.db.TxExists(tx.ID) {
		return transaction.NewValidationError(tx.ID, "transaction %q is already confirmed", tx.ID)
	}
	if s.mempool.Exists(tx.ID) {
		return transaction.NewValidationError(tx.ID, "transaction %q is already pending", tx.ID)
	}

	if err := s.engine.Verify(&tx); err != nil {
		return err
	}

	return s.queue.Do(ctx, func() error {
		if err := s.engine.ApplyUnconfirmed(&tx); err != nil {
			return err
		}

		n := s.mempool.Upsert(tx)
		s.evHandler("state: submitTransaction: mempool depth %d", n)
		return nil
	})
}

// SubmitNodeTransaction accepts a transaction relayed from a peer node. The
// checks are the same as for a wallet submission.
func (s *State) SubmitNodeTransaction(ctx context.Context, tx transaction.Transaction) error {
	return s.SubmitWalletTransaction(ctx, tx)
}

// RemovePendingTransaction drops a transaction from the mempool and releases
// its reservation.
func (s *State) RemovePendingTransaction(ctx context.Context, txID string) error {
	return s.queue.Do(ctx, func() error {
		txs := s.mempool.Copy()
		for i := range txs {
			if txs[i].ID == txID {
				s.mempool.Delete(txID)
				return s.engine.UndoUnconfirmed(&txs[i])
			}
		}
		return transaction.NewValidationError(txID, "transaction %q is not pending", txID)
	})
}
