// Package public maintains the group of handlers for public access.
package public

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/dposlabs/blockchain/business/web/errs"
	"github.com/dposlabs/blockchain/foundation/blockchain/signature"
	"github.com/dposlabs/blockchain/foundation/blockchain/state"
	"github.com/dposlabs/blockchain/foundation/blockchain/transaction"
	"github.com/dposlabs/blockchain/foundation/events"
	"github.com/dposlabs/blockchain/foundation/web"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// maxBlocksPerQuery caps how many blocks a single listing call returns.
const maxBlocksPerQuery = 100

// Handlers manages the set of public node endpoints.
type Handlers struct {
	Log       *zap.SugaredLogger
	State     *state.State
	WS        websocket.Upgrader
	Evts      *events.Events
	Proofs    *CompanyProofs
}

// Events handles a web socket to provide events to a client.
func (h Handlers) Events(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	h.WS.CheckOrigin = func(r *http.Request) bool { return true }

	c, err := h.WS.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	defer c.Close()

	ch := h.Evts.Subscribe(v.TraceID)
	defer h.Evts.Unsubscribe(v.TraceID)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case msg, wd := <-ch:
			if !wd {
				return nil
			}

			if err := c.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
				return err
			}

		case <-ticker.C:
			if err := c.WriteMessage(websocket.PingMessage, []byte("ping")); err != nil {
				return nil
			}
		}
	}
}

// Genesis returns the genesis information.
func (h Handlers) Genesis(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	gen := h.State.Genesis()
	return web.Respond(ctx, w, gen, http.StatusOK)
}

// Accounts returns the current state for all accounts or a single one.
func (h Handlers) Accounts(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	address := web.Param(r, "address")

	var acts []account
	switch address {
	case "":
		for _, acct := range h.State.Accounts() {
			acts = append(acts, toAccount(acct))
		}

	default:
		acts = append(acts, toAccount(h.State.Account(address)))
	}

	head := h.State.LatestBlock()
	ai := accountsInfo{
		LatestBlock: head.ID,
		Height:      head.Height,
		Uncommitted: h.State.MempoolCount(),
		Accounts:    acts,
	}

	return web.Respond(ctx, w, ai, http.StatusOK)
}

// LatestBlock returns the current chain head.
func (h Handlers) LatestBlock(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	head := h.State.LatestBlock()
	return web.Respond(ctx, w, toBlockInfo(head, head.Height), http.StatusOK)
}

// BlocksByHeight returns the blocks in the specified height range.
func (h Handlers) BlocksByHeight(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	head := h.State.LatestBlock()

	from, to, err := heightRange(r, head.Height)
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	limit := int(to - from + 1)
	if limit > maxBlocksPerQuery {
		limit = maxBlocksPerQuery
	}

	blocks := h.State.Blocks(from, limit)
	if len(blocks) == 0 {
		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}

	views := make([]blockInfo, len(blocks))
	for i, block := range blocks {
		views[i] = toBlockInfo(block, head.Height)
	}

	return web.Respond(ctx, w, views, http.StatusOK)
}

// Delegates returns the confirmed delegate records with their current rank.
func (h Handlers) Delegates(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	recs := h.State.Delegates()

	addresses := make(map[string]string, len(recs))
	for _, rec := range recs {
		addr, err := signature.AddressFromHexPublicKey(rec.PublicKey)
		if err != nil {
			continue
		}
		addresses[rec.PublicKey] = addr
	}

	ranked := h.State.DelegateList(h.State.LatestBlock().Height + 1)

	return web.Respond(ctx, w, toDelegates(recs, addresses, ranked), http.StatusOK)
}

// ForgingOrder returns the shuffled forging order for the round containing
// the specified height.
func (h Handlers) ForgingOrder(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	height, err := strconv.ParseUint(web.Param(r, "height"), 10, 64)
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	return web.Respond(ctx, w, h.State.DelegateList(height), http.StatusOK)
}

// Mempool returns the set of uncommitted transactions.
func (h Handlers) Mempool(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	txs := h.State.MempoolCopy()
	return web.Respond(ctx, w, txs, http.StatusOK)
}

// TransactionByID returns a confirmed transaction with its chain position.
func (h Handlers) TransactionByID(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	rec, err := h.State.ConfirmedTransaction(web.Param(r, "id"))
	if err != nil {
		return errs.NewTrusted(err, http.StatusNotFound)
	}

	return web.Respond(ctx, w, toTxInfo(rec, h.State.LatestBlock().Height), http.StatusOK)
}

// TransactionsByAddress returns the confirmed transactions involving the
// specified address.
func (h Handlers) TransactionsByAddress(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	recs := h.State.TransactionsByAddress(web.Param(r, "address"))
	if len(recs) == 0 {
		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}

	head := h.State.LatestBlock().Height
	views := make([]txInfo, len(recs))
	for i, rec := range recs {
		views[i] = toTxInfo(rec, head)
	}

	return web.Respond(ctx, w, views, http.StatusOK)
}

// SubmitWalletTransaction adds a new signed transaction to the mempool.
func (h Handlers) SubmitWalletTransaction(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var tx transaction.Transaction
	if err := web.Decode(r, &tx); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	h.Log.Infow("submit tran", "traceid", v.TraceID, "tx", tx.ID, "type", tx.Type, "from", tx.SenderID, "amount", tx.Amount)
	if err := h.State.SubmitWalletTransaction(ctx, tx); err != nil {
		return err
	}

	resp := struct {
		Status        string `json:"status"`
		TransactionID string `json:"transactionId"`
	}{
		Status:        "transaction added to mempool",
		TransactionID: tx.ID,
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Dapps returns the confirmed dapp registrations.
func (h Handlers) Dapps(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, h.State.Dapps(), http.StatusOK)
}

// SearchDapps returns the confirmed dapps matching the q and category query
// parameters.
func (h Handlers) SearchDapps(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	query := r.URL.Query().Get("q")

	var category *int32
	if c := r.URL.Query().Get("category"); c != "" {
		n, err := strconv.ParseInt(c, 10, 32)
		if err != nil {
			return errs.NewTrusted(fmt.Errorf("invalid category: %w", err), http.StatusBadRequest)
		}
		c32 := int32(n)
		category = &c32
	}

	return web.Respond(ctx, w, h.State.SearchDapps(query, category), http.StatusOK)
}

// DappByTxID returns the dapp registered by the specified transaction.
func (h Handlers) DappByTxID(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	rec, exists := h.State.DappByTxID(web.Param(r, "txid"))
	if !exists {
		return errs.NewTrusted(fmt.Errorf("no dapp for transaction %q", web.Param(r, "txid")), http.StatusNotFound)
	}

	return web.Respond(ctx, w, rec, http.StatusOK)
}

// Companies returns the confirmed company registrations.
func (h Handlers) Companies(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, h.State.Companies(), http.StatusOK)
}

// heightRange parses the from/to path parameters, resolving "latest" to the
// chain head.
func heightRange(r *http.Request, head uint64) (uint64, uint64, error) {
	parse := func(s string) (uint64, error) {
		if s == "" || s == "latest" {
			return head, nil
		}
		return strconv.ParseUint(s, 10, 64)
	}

	from, err := parse(web.Param(r, "from"))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid from height: %w", err)
	}

	to, err := parse(web.Param(r, "to"))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid to height: %w", err)
	}

	if from > to {
		return 0, 0, fmt.Errorf("from height %d greater than to height %d", from, to)
	}

	return from, to, nil
}
