package transaction

import (
	"fmt"

	"github.com/dposlabs/blockchain/foundation/blockchain/accounts"
	"github.com/dposlabs/blockchain/foundation/blockchain/delegates"
	"github.com/dposlabs/blockchain/foundation/blockchain/genesis"
	"github.com/dposlabs/blockchain/foundation/blockchain/signature"
	"github.com/dposlabs/blockchain/foundation/blockchain/slots"
)

// Handler implements the per-type behavior for one transaction type. The
// engine owns the shared lifecycle (fees, balance movements, signatures);
// handlers own everything specific to their payload.
type Handler interface {
	Fee(tx *Transaction) int64
	Verify(tx *Transaction, sender accounts.Account) error
	ApplyUnconfirmed(tx *Transaction, sender accounts.Account) error
	UndoUnconfirmed(tx *Transaction, sender accounts.Account) error
	Apply(tx *Transaction, sender accounts.Account) error
	Undo(tx *Transaction, sender accounts.Account) error
	Normalize(tx *Transaction) error
}

// EventHandler defines a function that is called when events occur in the
// processing of transactions.
type EventHandler func(v string, args ...any)

// Engine moves transactions through their lifecycle against the account
// ledger. All mutating calls must run inside the node's serialized execution
// queue.
type Engine struct {
	ledger    *accounts.Ledger
	registry  *delegates.Registry
	handlers  map[byte]Handler
	evHandler EventHandler
}

// NewEngine constructs an engine with the full handler table registered.
func NewEngine(ledger *accounts.Ledger, registry *delegates.Registry, gen genesis.Genesis, evHandler EventHandler) *Engine {
	ev := func(v string, args ...any) {
		if evHandler != nil {
			evHandler(v, args...)
		}
	}

	eng := Engine{
		ledger:    ledger,
		registry:  registry,
		handlers:  make(map[byte]Handler),
		evHandler: ev,
	}

	eng.handlers[TypeTransfer] = newTransferHandler(ledger, registry, gen.Fees.Transfer)
	eng.handlers[TypeSecondSignature] = newSecondSignatureHandler(ledger, gen.Fees.SecondSignature)
	eng.handlers[TypeDelegate] = newDelegateHandler(registry, gen.Fees.Delegate)
	eng.handlers[TypeVote] = newVoteHandler(ledger, registry, gen.Fees.Vote)
	eng.handlers[TypeDapp] = newDappHandler(gen.Fees.Dapp)
	eng.handlers[TypeCompany] = newCompanyHandler(gen.Fees.Company)

	return &eng
}

// RegisterDappStore wires the confirmed dapp lookups used for uniqueness
// checks. The store lives above this package, so it attaches after
// construction.
func (eng *Engine) RegisterDappStore(store DappStore) {
	eng.handlers[TypeDapp].(*dappHandler).store = store
}

// RegisterCompanyStore wires the confirmed company lookups used for
// uniqueness checks.
func (eng *Engine) RegisterCompanyStore(store CompanyStore) {
	eng.handlers[TypeCompany].(*companyHandler).store = store
}

func (eng *Engine) handler(txType byte) (Handler, error) {
	h, exists := eng.handlers[txType]
	if !exists {
		return nil, fmt.Errorf("unknown transaction type %d", txType)
	}
	return h, nil
}

// Fee returns the fixed fee for the specified transaction.
func (eng *Engine) Fee(tx *Transaction) (int64, error) {
	h, err := eng.handler(tx.Type)
	if err != nil {
		return 0, err
	}
	return h.Fee(tx), nil
}

// Normalize brings a transaction received from the outside into canonical
// form and validates its payload shape.
func (eng *Engine) Normalize(tx *Transaction) error {
	h, err := eng.handler(tx.Type)
	if err != nil {
		return NewValidationError(tx.ID, "%s", err)
	}
	return h.Normalize(tx)
}

// =============================================================================

// Verify runs every stateless and stateful check on a transaction without
// touching the ledger. A nil return means the transaction is structurally
// sound, properly signed, and acceptable against confirmed state.
func (eng *Engine) Verify(tx *Transaction) error {
	h, err := eng.handler(tx.Type)
	if err != nil {
		return NewValidationError(tx.ID, "%s", err)
	}

	id, err := tx.HashID()
	if err != nil {
		return NewValidationError(tx.ID, "unable to serialize transaction: %s", err)
	}
	if tx.ID != id {
		return NewValidationError(tx.ID, "transaction id mismatch, expected %q", id)
	}

	addr, err := signature.AddressFromHexPublicKey(tx.SenderPublicKey)
	if err != nil {
		return NewValidationError(tx.ID, "invalid sender public key: %s", err)
	}
	if tx.SenderID != addr {
		return NewValidationError(tx.ID, "sender id does not match sender public key")
	}

	if tx.Amount < 0 || tx.Amount > genesis.MaxMoney {
		return NewValidationError(tx.ID, "amount %d is out of range", tx.Amount)
	}

	if tx.Fee != h.Fee(tx) {
		return NewValidationError(tx.ID, "invalid fee %d, expected %d", tx.Fee, h.Fee(tx))
	}

	if slots.SlotNumber(tx.Timestamp) > slots.CurrentSlot() {
		return NewValidationError(tx.ID, "transaction timestamp is in the future")
	}

	if !tx.VerifySignature() {
		return NewSignatureError(tx.ID)
	}

	sender := eng.ledger.Account(tx.SenderID)

	if sender.SecondSignature && tx.Type != TypeSecondSignature {
		if tx.SignSignature == "" {
			return NewValidationError(tx.ID, "missing second signature")
		}
		if !tx.VerifySecondSignature(sender.SecondPublicKey) {
			return NewSignatureError(tx.ID)
		}
	}

	if err := h.Verify(tx, sender); err != nil {
		return err
	}

	eng.evHandler("engine: verify: tx[%s] type[%d] verified", tx.ID, tx.Type)
	return nil
}

// =============================================================================

// ApplyUnconfirmed reserves the transaction's funds and exclusive resources
// against unconfirmed state. On any failure the reservation is released and
// unconfirmed state is exactly as before the call.
func (eng *Engine) ApplyUnconfirmed(tx *Transaction) error {
	h, err := eng.handler(tx.Type)
	if err != nil {
		return NewValidationError(tx.ID, "%s", err)
	}

	sender := eng.ledger.Account(tx.SenderID)
	if sender.PublicKey == "" {
		sender.PublicKey = tx.SenderPublicKey
	}

	needed := tx.Amount + tx.Fee
	if sender.Unconfirmed < needed {
		return NewInsufficientFundsError(tx.SenderID, needed, sender.Unconfirmed)
	}

	sender.Unconfirmed -= needed
	eng.ledger.Save(sender)

	if err := h.ApplyUnconfirmed(tx, sender); err != nil {
		sender = eng.ledger.Account(tx.SenderID)
		sender.Unconfirmed += needed
		eng.ledger.Save(sender)
		return err
	}

	eng.evHandler("engine: applyUnconfirmed: tx[%s] reserved %d from %s", tx.ID, needed, tx.SenderID)
	return nil
}

// UndoUnconfirmed releases the reservation taken by ApplyUnconfirmed. It is
// the exact inverse and must only be called after a successful reservation.
func (eng *Engine) UndoUnconfirmed(tx *Transaction) error {
	h, err := eng.handler(tx.Type)
	if err != nil {
		return NewValidationError(tx.ID, "%s", err)
	}

	sender := eng.ledger.Account(tx.SenderID)
	sender.Unconfirmed += tx.Amount + tx.Fee
	eng.ledger.Save(sender)

	if err := h.UndoUnconfirmed(tx, sender); err != nil {
		return err
	}

	eng.evHandler("engine: undoUnconfirmed: tx[%s] released funds to %s", tx.ID, tx.SenderID)
	return nil
}

// =============================================================================

// Apply commits the transaction to confirmed state: the sender is debited
// amount plus fee, vote weight changes are queued for the round boundary, and
// the handler applies its payload.
func (eng *Engine) Apply(tx *Transaction) error {
	h, err := eng.handler(tx.Type)
	if err != nil {
		return NewValidationError(tx.ID, "%s", err)
	}

	sender := eng.ledger.Account(tx.SenderID)
	if sender.PublicKey == "" {
		sender.PublicKey = tx.SenderPublicKey
	}

	needed := tx.Amount + tx.Fee
	sender.Balance -= needed
	eng.ledger.Save(sender)

	eng.registry.QueueBalanceChange(sender.CopyDelegates(), -needed)

	if err := h.Apply(tx, sender); err != nil {
		sender = eng.ledger.Account(tx.SenderID)
		sender.Balance += needed
		eng.ledger.Save(sender)
		eng.registry.QueueBalanceChange(sender.CopyDelegates(), needed)
		return err
	}

	eng.evHandler("engine: apply: tx[%s] debited %d from %s", tx.ID, needed, tx.SenderID)
	return nil
}

// Undo reverses Apply during a chain rollback. It is the exact inverse:
// running Apply then Undo leaves confirmed state bit for bit unchanged.
func (eng *Engine) Undo(tx *Transaction) error {
	h, err := eng.handler(tx.Type)
	if err != nil {
		return NewValidationError(tx.ID, "%s", err)
	}

	sender := eng.ledger.Account(tx.SenderID)
	needed := tx.Amount + tx.Fee
	sender.Balance += needed
	eng.ledger.Save(sender)

	eng.registry.QueueBalanceChange(sender.CopyDelegates(), needed)

	if err := h.Undo(tx, sender); err != nil {
		return err
	}

	eng.evHandler("engine: undo: tx[%s] credited %d to %s", tx.ID, needed, tx.SenderID)
	return nil
}

// Ready reports whether the transaction can enter a block. Transactions from
// multisignature accounts wait until enough co-signatures arrive.
func (eng *Engine) Ready(tx *Transaction) bool {
	sender := eng.ledger.Account(tx.SenderID)
	if len(sender.Multisignatures) == 0 {
		return true
	}
	return len(tx.Signatures) >= sender.MultiMin
}
