package transaction

import (
	"github.com/dposlabs/blockchain/foundation/blockchain/accounts"
	"github.com/dposlabs/blockchain/foundation/blockchain/signature"
)

// secondSignatureHandler implements second signing key registration. Once
// applied, every later transaction from the account needs two signatures.
type secondSignatureHandler struct {
	ledger *accounts.Ledger
	fee    int64
}

func newSecondSignatureHandler(ledger *accounts.Ledger, fee int64) *secondSignatureHandler {
	return &secondSignatureHandler{ledger: ledger, fee: fee}
}

func (h *secondSignatureHandler) Fee(tx *Transaction) int64 {
	return h.fee
}

func (h *secondSignatureHandler) Verify(tx *Transaction, sender accounts.Account) error {
	if tx.Amount != 0 {
		return NewValidationError(tx.ID, "second signature registration cannot carry an amount")
	}
	if tx.Asset.Signature == nil {
		return NewValidationError(tx.ID, "missing signature asset")
	}
	if _, err := signature.DecodePublicKey(tx.Asset.Signature.PublicKey); err != nil {
		return NewValidationError(tx.ID, "invalid second public key: %s", err)
	}
	return nil
}

func (h *secondSignatureHandler) Normalize(tx *Transaction) error {
	if tx.Asset.Signature == nil {
		return NewValidationError(tx.ID, "missing signature asset")
	}
	if err := validate.Struct(tx.Asset.Signature); err != nil {
		return NewValidationError(tx.ID, "invalid signature asset: %s", err)
	}
	return nil
}

// ApplyUnconfirmed claims the account's one second-signature slot. A second
// registration from the same account conflicts until the first resolves.
func (h *secondSignatureHandler) ApplyUnconfirmed(tx *Transaction, sender accounts.Account) error {
	if sender.UnconfirmedSignature || sender.SecondSignature {
		return NewConflictError(tx.ID, "account %q already has a second signature pending or set", sender.Address)
	}

	sender.UnconfirmedSignature = true
	h.ledger.Save(sender)
	return nil
}

func (h *secondSignatureHandler) UndoUnconfirmed(tx *Transaction, sender accounts.Account) error {
	sender.UnconfirmedSignature = false
	h.ledger.Save(sender)
	return nil
}

func (h *secondSignatureHandler) Apply(tx *Transaction, sender accounts.Account) error {
	sender.SecondSignature = true
	sender.SecondPublicKey = tx.Asset.Signature.PublicKey
	sender.UnconfirmedSignature = false
	h.ledger.Save(sender)
	return nil
}

func (h *secondSignatureHandler) Undo(tx *Transaction, sender accounts.Account) error {
	sender.SecondSignature = false
	sender.SecondPublicKey = ""
	sender.UnconfirmedSignature = true
	h.ledger.Save(sender)
	return nil
}
