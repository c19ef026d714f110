package transaction

import (
	"strings"
	"sync"

	"github.com/dposlabs/blockchain/foundation/blockchain/accounts"
)

// CompanyStore provides the confirmed company lookups the handler needs for
// uniqueness checks.
type CompanyStore interface {
	CompanyNameExists(name string, excludeTxID string) bool
	CompanyDomainExists(domain string, excludeTxID string) bool
}

// companyHandler implements company registration. Domain ownership is proved
// at the API layer before a registration ever reaches the engine, so the
// handler only enforces shape and uniqueness.
type companyHandler struct {
	fee   int64
	store CompanyStore

	mu      sync.Mutex
	names   map[string]string
	domains map[string]string
}

func newCompanyHandler(fee int64) *companyHandler {
	return &companyHandler{
		fee:     fee,
		names:   make(map[string]string),
		domains: make(map[string]string),
	}
}

func (h *companyHandler) Fee(tx *Transaction) int64 {
	return h.fee
}

func (h *companyHandler) Verify(tx *Transaction, sender accounts.Account) error {
	if tx.Amount != 0 {
		return NewValidationError(tx.ID, "company registration cannot carry an amount")
	}
	company := tx.Asset.Company
	if company == nil {
		return NewValidationError(tx.ID, "missing company asset")
	}
	if err := validate.Struct(company); err != nil {
		return NewValidationError(tx.ID, "invalid company asset: %s", err)
	}

	if h.store != nil {
		if h.store.CompanyNameExists(company.Name, tx.ID) {
			return NewValidationError(tx.ID, "company name %q is taken", company.Name)
		}
		if h.store.CompanyDomainExists(company.Domain, tx.ID) {
			return NewValidationError(tx.ID, "company domain %q is taken", company.Domain)
		}
	}

	return nil
}

func (h *companyHandler) Normalize(tx *Transaction) error {
	company := tx.Asset.Company
	if company == nil {
		return NewValidationError(tx.ID, "missing company asset")
	}

	company.Name = strings.TrimSpace(company.Name)
	company.Domain = strings.ToLower(strings.TrimSpace(company.Domain))
	company.Email = strings.ToLower(strings.TrimSpace(company.Email))

	if err := validate.Struct(company); err != nil {
		return NewValidationError(tx.ID, "invalid company asset: %s", err)
	}
	return nil
}

func (h *companyHandler) ApplyUnconfirmed(tx *Transaction, sender accounts.Account) error {
	company := tx.Asset.Company

	h.mu.Lock()
	defer h.mu.Unlock()

	if claimed, exists := h.names[company.Name]; exists && claimed != tx.ID {
		return NewConflictError(tx.ID, "company name %q already has a registration pending", company.Name)
	}
	if claimed, exists := h.domains[company.Domain]; exists && claimed != tx.ID {
		return NewConflictError(tx.ID, "company domain %q already has a registration pending", company.Domain)
	}

	h.names[company.Name] = tx.ID
	h.domains[company.Domain] = tx.ID
	return nil
}

func (h *companyHandler) UndoUnconfirmed(tx *Transaction, sender accounts.Account) error {
	h.release(tx)
	return nil
}

func (h *companyHandler) Apply(tx *Transaction, sender accounts.Account) error {
	h.release(tx)
	return nil
}

// Undo restores the pending claims Apply released.
func (h *companyHandler) Undo(tx *Transaction, sender accounts.Account) error {
	company := tx.Asset.Company

	h.mu.Lock()
	defer h.mu.Unlock()

	h.names[company.Name] = tx.ID
	h.domains[company.Domain] = tx.ID
	return nil
}

func (h *companyHandler) release(tx *Transaction) {
	company := tx.Asset.Company

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.names[company.Name] == tx.ID {
		delete(h.names, company.Name)
	}
	if h.domains[company.Domain] == tx.ID {
		delete(h.domains, company.Domain)
	}
}
