package transaction

import (
	"github.com/dposlabs/blockchain/foundation/blockchain/accounts"
	"github.com/dposlabs/blockchain/foundation/blockchain/delegates"
)

// transferHandler implements the plain value transfer. The engine already
// moves the sender side, so this handler only manages the recipient.
type transferHandler struct {
	ledger   *accounts.Ledger
	registry *delegates.Registry
	fee      int64
}

func newTransferHandler(ledger *accounts.Ledger, registry *delegates.Registry, fee int64) *transferHandler {
	return &transferHandler{ledger: ledger, registry: registry, fee: fee}
}

func (h *transferHandler) Fee(tx *Transaction) int64 {
	return h.fee
}

func (h *transferHandler) Verify(tx *Transaction, sender accounts.Account) error {
	if tx.RecipientID == "" {
		return NewValidationError(tx.ID, "transfer requires a recipient")
	}
	if tx.Amount <= 0 {
		return NewValidationError(tx.ID, "transfer amount must be positive")
	}
	return nil
}

func (h *transferHandler) Normalize(tx *Transaction) error {
	if tx.RecipientID == "" {
		return NewValidationError(tx.ID, "transfer requires a recipient")
	}
	return nil
}

func (h *transferHandler) ApplyUnconfirmed(tx *Transaction, sender accounts.Account) error {
	return nil
}

func (h *transferHandler) UndoUnconfirmed(tx *Transaction, sender accounts.Account) error {
	return nil
}

// Apply credits the recipient on both balances. The unconfirmed balance moves
// here as well because the reservation only ever touched the sender.
func (h *transferHandler) Apply(tx *Transaction, sender accounts.Account) error {
	recipient := h.ledger.Account(tx.RecipientID)
	recipient.Balance += tx.Amount
	recipient.Unconfirmed += tx.Amount
	h.ledger.Save(recipient)

	h.registry.QueueBalanceChange(recipient.CopyDelegates(), tx.Amount)
	return nil
}

func (h *transferHandler) Undo(tx *Transaction, sender accounts.Account) error {
	recipient := h.ledger.Account(tx.RecipientID)
	recipient.Balance -= tx.Amount
	recipient.Unconfirmed -= tx.Amount
	h.ledger.Save(recipient)

	h.registry.QueueBalanceChange(recipient.CopyDelegates(), -tx.Amount)
	return nil
}
