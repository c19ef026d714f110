package transaction

import (
	"regexp"
	"strings"

	"github.com/dposlabs/blockchain/foundation/blockchain/accounts"
	"github.com/dposlabs/blockchain/foundation/blockchain/delegates"
)

// usernameRx constrains delegate usernames to a lowercase alphanumeric form
// that can never collide with an address.
var usernameRx = regexp.MustCompile(`^[a-z0-9!@$&_.]{1,20}$`)

// delegateHandler implements delegate registration.
type delegateHandler struct {
	registry *delegates.Registry
	fee      int64
}

func newDelegateHandler(registry *delegates.Registry, fee int64) *delegateHandler {
	return &delegateHandler{registry: registry, fee: fee}
}

func (h *delegateHandler) Fee(tx *Transaction) int64 {
	return h.fee
}

func (h *delegateHandler) Verify(tx *Transaction, sender accounts.Account) error {
	if tx.Amount != 0 {
		return NewValidationError(tx.ID, "delegate registration cannot carry an amount")
	}
	if tx.RecipientID != "" {
		return NewValidationError(tx.ID, "delegate registration cannot have a recipient")
	}
	if tx.Asset.Delegate == nil {
		return NewValidationError(tx.ID, "missing delegate asset")
	}

	username := tx.Asset.Delegate.Username
	if !usernameRx.MatchString(username) {
		return NewValidationError(tx.ID, "invalid delegate username %q", username)
	}

	if _, exists := h.registry.Delegate(tx.SenderPublicKey); exists {
		return NewValidationError(tx.ID, "account %q is already a delegate", tx.SenderID)
	}
	if _, exists := h.registry.DelegateByName(username); exists {
		return NewValidationError(tx.ID, "delegate username %q is taken", username)
	}

	return nil
}

func (h *delegateHandler) Normalize(tx *Transaction) error {
	if tx.Asset.Delegate == nil {
		return NewValidationError(tx.ID, "missing delegate asset")
	}

	tx.Asset.Delegate.Username = strings.ToLower(strings.TrimSpace(tx.Asset.Delegate.Username))

	if err := validate.Struct(tx.Asset.Delegate); err != nil {
		return NewValidationError(tx.ID, "invalid delegate asset: %s", err)
	}
	return nil
}

// ApplyUnconfirmed claims the username and the account's delegate slot in the
// pending set so two registrations can never ride the same block.
func (h *delegateHandler) ApplyUnconfirmed(tx *Transaction, sender accounts.Account) error {
	username := tx.Asset.Delegate.Username

	if _, exists := h.registry.Unconfirmed(tx.SenderPublicKey); exists {
		return NewConflictError(tx.ID, "account %q already has a delegate registration pending", tx.SenderID)
	}
	if _, exists := h.registry.UnconfirmedByName(username); exists {
		return NewConflictError(tx.ID, "delegate username %q already has a registration pending", username)
	}

	h.registry.AddUnconfirmed(delegates.Delegate{
		PublicKey:     tx.SenderPublicKey,
		Username:      username,
		TransactionID: tx.ID,
	})
	return nil
}

func (h *delegateHandler) UndoUnconfirmed(tx *Transaction, sender accounts.Account) error {
	h.registry.RemoveUnconfirmed(tx.SenderPublicKey)
	return nil
}

func (h *delegateHandler) Apply(tx *Transaction, sender accounts.Account) error {
	h.registry.Cache(delegates.Delegate{
		PublicKey:     tx.SenderPublicKey,
		Username:      tx.Asset.Delegate.Username,
		TransactionID: tx.ID,
	})
	h.registry.RemoveUnconfirmed(tx.SenderPublicKey)
	return nil
}

// Undo removes the confirmed record and restores the pending claim Apply
// released, so the transaction can ride back to the mempool intact.
func (h *delegateHandler) Undo(tx *Transaction, sender accounts.Account) error {
	h.registry.Uncache(delegates.Delegate{PublicKey: tx.SenderPublicKey})
	h.registry.AddUnconfirmed(delegates.Delegate{
		PublicKey:     tx.SenderPublicKey,
		Username:      tx.Asset.Delegate.Username,
		TransactionID: tx.ID,
	})
	return nil
}
