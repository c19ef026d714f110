package public

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/dposlabs/blockchain/business/sys/validate"
	"github.com/dposlabs/blockchain/business/web/errs"
	"github.com/dposlabs/blockchain/foundation/blockchain/transaction"
	"github.com/dposlabs/blockchain/foundation/web"
	"github.com/google/uuid"
)

// proofFileName is the file a company must serve from its domain root to
// prove ownership.
const proofFileName = "dposcr.txt"

// proofTTL bounds how long an issued token stays valid.
const proofTTL = time.Hour

// CompanyProofs issues and checks the domain ownership tokens required to
// register a company.
type CompanyProofs struct {
	mu     sync.Mutex
	tokens map[string]proof
	client http.Client
}

type proof struct {
	token   string
	expires time.Time
}

// NewCompanyProofs constructs the proof tracker with a bounded HTTP client
// for the domain fetch.
func NewCompanyProofs() *CompanyProofs {
	return &CompanyProofs{
		tokens: make(map[string]proof),
		client: http.Client{Timeout: 5 * time.Second},
	}
}

// Issue creates a fresh token for the domain.
func (cp *CompanyProofs) Issue(domain string) string {
	token := uuid.NewString()

	cp.mu.Lock()
	defer cp.mu.Unlock()

	cp.tokens[domain] = proof{token: token, expires: time.Now().Add(proofTTL)}
	return token
}

// Check fetches the proof file from the domain and confirms it carries the
// issued token.
func (cp *CompanyProofs) Check(ctx context.Context, domain string) error {
	cp.mu.Lock()
	prf, exists := cp.tokens[domain]
	cp.mu.Unlock()

	if !exists || time.Now().After(prf.expires) {
		return fmt.Errorf("no active token for domain %q, request one first", domain)
	}

	url := fmt.Sprintf("http://%s/%s", domain, proofFileName)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	resp, err := cp.client.Do(req)
	if err != nil {
		return fmt.Errorf("unable to fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unable to fetch %s: status %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil {
		return err
	}

	if !strings.Contains(string(body), prf.token) {
		return fmt.Errorf("proof file on %q does not carry the issued token", domain)
	}

	return nil
}

// =============================================================================

// tokenRequest is the payload for requesting a domain proof token.
type tokenRequest struct {
	Domain string `json:"domain" validate:"required,fqdn"`
}

// Validate implements the web framework validator interface.
func (tr tokenRequest) Validate() error {
	return validate.Check(tr)
}

// CompanyToken issues a domain ownership token the caller must publish at
// the domain root before registering the company.
func (h Handlers) CompanyToken(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var req tokenRequest
	if err := web.Decode(r, &req); err != nil {
		return err
	}

	token := h.Proofs.Issue(strings.ToLower(req.Domain))

	resp := struct {
		Token    string `json:"token"`
		FileName string `json:"fileName"`
	}{
		Token:    token,
		FileName: proofFileName,
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// CreateCompany accepts a signed company registration, verifies the domain
// ownership proof, and submits the transaction to the mempool.
func (h Handlers) CreateCompany(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var tx transaction.Transaction
	if err := web.Decode(r, &tx); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	if tx.Type != transaction.TypeCompany || tx.Asset.Company == nil {
		return errs.NewTrusted(fmt.Errorf("transaction %q is not a company registration", tx.ID), http.StatusBadRequest)
	}

	if err := h.Proofs.Check(ctx, tx.Asset.Company.Domain); err != nil {
		return errs.NewTrusted(err, http.StatusForbidden)
	}

	if err := h.State.SubmitWalletTransaction(ctx, tx); err != nil {
		return err
	}

	resp := struct {
		Status        string `json:"status"`
		TransactionID string `json:"transactionId"`
	}{
		Status:        "company registration added to mempool",
		TransactionID: tx.ID,
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}
