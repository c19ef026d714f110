package database

import (
	"sort"
	"strings"
)

// DappRecord is the API view of a confirmed dapp registration.
type DappRecord struct {
	TransactionID string `json:"transactionId"`
	Name          string `json:"name"`
	Description   string `json:"description,omitempty"`
	Tags          string `json:"tags,omitempty"`
	Type          int32  `json:"type"`
	Category      int32  `json:"category"`
	Nickname      string `json:"nickname,omitempty"`
	Git           string `json:"git,omitempty"`
	Link          string `json:"link,omitempty"`
	Owner         string `json:"owner"`
	Height        uint64 `json:"height"`
}

// CompanyRecord is the API view of a confirmed company registration.
type CompanyRecord struct {
	TransactionID string `json:"transactionId"`
	Name          string `json:"name"`
	Description   string `json:"description,omitempty"`
	Domain        string `json:"domain"`
	Email         string `json:"email"`
	Owner         string `json:"owner"`
	Height        uint64 `json:"height"`
}

// Dapps returns the confirmed dapp registrations ordered by chain position.
func (db *Database) Dapps() []DappRecord {
	db.mu.RLock()
	defer db.mu.RUnlock()

	var recs []DappRecord
	for _, rec := range db.txs {
		if rec.Tx.Asset.Dapp == nil {
			continue
		}
		dapp := rec.Tx.Asset.Dapp
		recs = append(recs, DappRecord{
			TransactionID: rec.Tx.ID,
			Name:          dapp.Name,
			Description:   dapp.Description,
			Tags:          dapp.Tags,
			Type:          dapp.Type,
			Category:      dapp.Category,
			Nickname:      dapp.Nickname,
			Git:           dapp.Git,
			Link:          dapp.Link,
			Owner:         rec.Tx.SenderID,
			Height:        rec.Height,
		})
	}

	sort.Slice(recs, func(i, j int) bool { return recs[i].Height < recs[j].Height })
	return recs
}

// SearchDapps returns the confirmed dapps whose name or tags contain the
// query, optionally narrowed to a category.
func (db *Database) SearchDapps(query string, category *int32) []DappRecord {
	query = strings.ToLower(query)

	var recs []DappRecord
	for _, rec := range db.Dapps() {
		if category != nil && rec.Category != *category {
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(rec.Name), query) &&
			!strings.Contains(strings.ToLower(rec.Tags), query) {
			continue
		}
		recs = append(recs, rec)
	}
	return recs
}

// DappByTxID returns the confirmed dapp registered by the specified
// transaction.
func (db *Database) DappByTxID(txID string) (DappRecord, bool) {
	for _, rec := range db.Dapps() {
		if rec.TransactionID == txID {
			return rec, true
		}
	}
	return DappRecord{}, false
}

// Companies returns the confirmed company registrations ordered by chain
// position.
func (db *Database) Companies() []CompanyRecord {
	db.mu.RLock()
	defer db.mu.RUnlock()

	var recs []CompanyRecord
	for _, rec := range db.txs {
		if rec.Tx.Asset.Company == nil {
			continue
		}
		company := rec.Tx.Asset.Company
		recs = append(recs, CompanyRecord{
			TransactionID: rec.Tx.ID,
			Name:          company.Name,
			Description:   company.Description,
			Domain:        company.Domain,
			Email:         company.Email,
			Owner:         rec.Tx.SenderID,
			Height:        rec.Height,
		})
	}

	sort.Slice(recs, func(i, j int) bool { return recs[i].Height < recs[j].Height })
	return recs
}

// =============================================================================
// Uniqueness lookups for the transaction handlers. Each lookup excludes the
// transaction being checked so a block replay still verifies its own
// registrations.

// DappNameExists reports whether a confirmed dapp already uses the name.
func (db *Database) DappNameExists(name string, excludeTxID string) bool {
	for _, rec := range db.Dapps() {
		if rec.Name == name && rec.TransactionID != excludeTxID {
			return true
		}
	}
	return false
}

// DappLinkExists reports whether a confirmed dapp already uses the link.
func (db *Database) DappLinkExists(link string, excludeTxID string) bool {
	for _, rec := range db.Dapps() {
		if rec.Link == link && rec.TransactionID != excludeTxID {
			return true
		}
	}
	return false
}

// DappNicknameExists reports whether a confirmed dapp already uses the
// nickname.
func (db *Database) DappNicknameExists(nickname string, excludeTxID string) bool {
	for _, rec := range db.Dapps() {
		if rec.Nickname == nickname && rec.TransactionID != excludeTxID {
			return true
		}
	}
	return false
}

// CompanyNameExists reports whether a confirmed company already uses the name.
func (db *Database) CompanyNameExists(name string, excludeTxID string) bool {
	for _, rec := range db.Companies() {
		if rec.Name == name && rec.TransactionID != excludeTxID {
			return true
		}
	}
	return false
}

// CompanyDomainExists reports whether a confirmed company already claims the
// domain.
func (db *Database) CompanyDomainExists(domain string, excludeTxID string) bool {
	for _, rec := range db.Companies() {
		if rec.Domain == domain && rec.TransactionID != excludeTxID {
			return true
		}
	}
	return false
}
