package transaction

import (
	"regexp"
	"strings"
	"sync"

	"github.com/dposlabs/blockchain/foundation/blockchain/accounts"
)

// gitRx constrains the git locator to the ssh clone form.
var gitRx = regexp.MustCompile(`^git@github\.com:.+\.git$`)

// DappStore provides the confirmed dapp lookups the handler needs for
// uniqueness checks. The lookups exclude the transaction being checked so a
// replay of an already stored registration still verifies.
type DappStore interface {
	DappNameExists(name string, excludeTxID string) bool
	DappLinkExists(link string, excludeTxID string) bool
	DappNicknameExists(nickname string, excludeTxID string) bool
}

// dappHandler implements decentralized application registration.
type dappHandler struct {
	fee   int64
	store DappStore

	mu        sync.Mutex
	names     map[string]string // Pending names, value is the claiming tx id.
	links     map[string]string
	nicknames map[string]string
}

func newDappHandler(fee int64) *dappHandler {
	return &dappHandler{
		fee:       fee,
		names:     make(map[string]string),
		links:     make(map[string]string),
		nicknames: make(map[string]string),
	}
}

func (h *dappHandler) Fee(tx *Transaction) int64 {
	return h.fee
}

func (h *dappHandler) Verify(tx *Transaction, sender accounts.Account) error {
	if tx.Amount != 0 {
		return NewValidationError(tx.ID, "dapp registration cannot carry an amount")
	}
	dapp := tx.Asset.Dapp
	if dapp == nil {
		return NewValidationError(tx.ID, "missing dapp asset")
	}

	locators := 0
	for _, l := range []string{dapp.Git, dapp.Link, dapp.Nickname} {
		if l != "" {
			locators++
		}
	}
	if locators != 1 {
		return NewValidationError(tx.ID, "dapp requires exactly one of git, link or nickname")
	}

	if dapp.Git != "" && !gitRx.MatchString(dapp.Git) {
		return NewValidationError(tx.ID, "invalid git locator %q", dapp.Git)
	}
	if dapp.Category < DappCategoryCommon || dapp.Category > DappCategoryTools {
		return NewValidationError(tx.ID, "invalid dapp category %d", dapp.Category)
	}
	if err := validate.Struct(dapp); err != nil {
		return NewValidationError(tx.ID, "invalid dapp asset: %s", err)
	}

	if h.store != nil {
		if h.store.DappNameExists(dapp.Name, tx.ID) {
			return NewValidationError(tx.ID, "dapp name %q is taken", dapp.Name)
		}
		if dapp.Link != "" && h.store.DappLinkExists(dapp.Link, tx.ID) {
			return NewValidationError(tx.ID, "dapp link %q is taken", dapp.Link)
		}
		if dapp.Nickname != "" && h.store.DappNicknameExists(dapp.Nickname, tx.ID) {
			return NewValidationError(tx.ID, "dapp nickname %q is taken", dapp.Nickname)
		}
	}

	return nil
}

func (h *dappHandler) Normalize(tx *Transaction) error {
	dapp := tx.Asset.Dapp
	if dapp == nil {
		return NewValidationError(tx.ID, "missing dapp asset")
	}

	dapp.Name = strings.TrimSpace(dapp.Name)
	dapp.Description = strings.TrimSpace(dapp.Description)
	dapp.Tags = strings.TrimSpace(dapp.Tags)

	if err := validate.Struct(dapp); err != nil {
		return NewValidationError(tx.ID, "invalid dapp asset: %s", err)
	}
	return nil
}

// ApplyUnconfirmed claims the dapp's name and locator in the pending maps so
// two registrations for the same application cannot coexist in the mempool.
func (h *dappHandler) ApplyUnconfirmed(tx *Transaction, sender accounts.Account) error {
	dapp := tx.Asset.Dapp

	h.mu.Lock()
	defer h.mu.Unlock()

	if claimed, exists := h.names[dapp.Name]; exists && claimed != tx.ID {
		return NewConflictError(tx.ID, "dapp name %q already has a registration pending", dapp.Name)
	}
	if dapp.Link != "" {
		if claimed, exists := h.links[dapp.Link]; exists && claimed != tx.ID {
			return NewConflictError(tx.ID, "dapp link %q already has a registration pending", dapp.Link)
		}
	}
	if dapp.Nickname != "" {
		if claimed, exists := h.nicknames[dapp.Nickname]; exists && claimed != tx.ID {
			return NewConflictError(tx.ID, "dapp nickname %q already has a registration pending", dapp.Nickname)
		}
	}

	h.names[dapp.Name] = tx.ID
	if dapp.Link != "" {
		h.links[dapp.Link] = tx.ID
	}
	if dapp.Nickname != "" {
		h.nicknames[dapp.Nickname] = tx.ID
	}

	return nil
}

func (h *dappHandler) UndoUnconfirmed(tx *Transaction, sender accounts.Account) error {
	h.release(tx)
	return nil
}

// Apply releases the pending claims. The confirmed store covers uniqueness
// from here on.
func (h *dappHandler) Apply(tx *Transaction, sender accounts.Account) error {
	h.release(tx)
	return nil
}

// Undo restores the pending claims Apply released, so the transaction holds
// its name and locator again while it waits in the mempool.
func (h *dappHandler) Undo(tx *Transaction, sender accounts.Account) error {
	dapp := tx.Asset.Dapp

	h.mu.Lock()
	defer h.mu.Unlock()

	h.names[dapp.Name] = tx.ID
	if dapp.Link != "" {
		h.links[dapp.Link] = tx.ID
	}
	if dapp.Nickname != "" {
		h.nicknames[dapp.Nickname] = tx.ID
	}

	return nil
}

func (h *dappHandler) release(tx *Transaction) {
	dapp := tx.Asset.Dapp

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.names[dapp.Name] == tx.ID {
		delete(h.names, dapp.Name)
	}
	if dapp.Link != "" && h.links[dapp.Link] == tx.ID {
		delete(h.links, dapp.Link)
	}
	if dapp.Nickname != "" && h.nicknames[dapp.Nickname] == tx.ID {
		delete(h.nicknames, dapp.Nickname)
	}
}
