// Package private maintains the group of handlers for node to node access
// and operator control.
package private

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/dposlabs/blockchain/business/sys/validate"
	"github.com/dposlabs/blockchain/business/web/errs"
	"github.com/dposlabs/blockchain/foundation/blockchain/database"
	"github.com/dposlabs/blockchain/foundation/blockchain/peer"
	"github.com/dposlabs/blockchain/foundation/blockchain/state"
	"github.com/dposlabs/blockchain/foundation/blockchain/transaction"
	"github.com/dposlabs/blockchain/foundation/web"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"go.uber.org/zap"
)

// Handlers manages the set of private node endpoints.
type Handlers struct {
	Log   *zap.SugaredLogger
	State *state.State
}

// Status returns the current status of the node.
func (h Handlers) Status(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	head := h.State.LatestBlock()

	status := struct {
		LatestBlockID string         `json:"latestBlockId"`
		Height        hexutil.Uint64 `json:"height"`
		Delegates     int            `json:"delegates"`
		Uncommitted   int            `json:"uncommitted"`
		KnownPeers    []peer.Peer    `json:"knownPeers"`
	}{
		LatestBlockID: head.ID,
		Height:        hexutil.Uint64(head.Height),
		Delegates:     h.State.ActiveDelegateCount(),
		Uncommitted:   h.State.MempoolCount(),
		KnownPeers:    h.State.KnownExternalPeers(),
	}

	return web.Respond(ctx, w, status, http.StatusOK)
}

// peerRequest is the payload for announcing a peer to this node.
type peerRequest struct {
	Host string `json:"host" validate:"required,hostname_port"`
}

// Validate implements the web framework validator interface.
func (pr peerRequest) Validate() error {
	return validate.Check(pr)
}

// SubmitPeer adds the caller to the known peer list so future blocks and
// transactions are shared with it.
func (h Handlers) SubmitPeer(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var req peerRequest
	if err := web.Decode(r, &req); err != nil {
		return err
	}

	if h.State.AddKnownPeer(peer.New(req.Host)) {
		h.Log.Infow("adding peer", "host", req.Host)
	}

	resp := struct {
		Status string `json:"status"`
	}{
		Status: "peer added",
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// BlocksByHeight returns the blocks in the specified height range for chain
// synchronization.
func (h Handlers) BlocksByHeight(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	head := h.State.LatestBlock()

	parse := func(s string) (uint64, error) {
		if s == "" || s == "latest" {
			return head.Height, nil
		}
		return strconv.ParseUint(s, 10, 64)
	}

	from, err := parse(web.Param(r, "from"))
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}
	to, err := parse(web.Param(r, "to"))
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}
	if from > to {
		return errs.NewTrusted(errors.New("from greater than to"), http.StatusBadRequest)
	}

	blocks := h.State.Blocks(from, int(to-from+1))
	if len(blocks) == 0 {
		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}

	return web.Respond(ctx, w, blocks, http.StatusOK)
}

// ProposeBlock takes a block received from a peer, validates it and if that
// passes, commits it to the chain.
func (h Handlers) ProposeBlock(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var block database.Block
	if err := web.Decode(r, &block); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	if err := h.State.ProcessBlock(ctx, block); err != nil {
		return err
	}

	resp := struct {
		Status string `json:"status"`
	}{
		Status: "accepted",
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// SubmitNodeTransaction adds a transaction relayed by a peer to the mempool.
func (h Handlers) SubmitNodeTransaction(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var tx transaction.Transaction
	if err := web.Decode(r, &tx); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	h.Log.Infow("relay tran", "traceid", v.TraceID, "tx", tx.ID, "type", tx.Type)
	if err := h.State.SubmitNodeTransaction(ctx, tx); err != nil {
		return err
	}

	resp := struct {
		Status string `json:"status"`
	}{
		Status: "transaction added to mempool",
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// =============================================================================
// Forging control.

// enableRequest is the payload for arming a forging delegate.
type enableRequest struct {
	Secret string `json:"secret" validate:"required"`
}

// Validate implements the web framework validator interface.
func (er enableRequest) Validate() error {
	return validate.Check(er)
}

// EnableForging arms forging for the delegate owning the secret.
func (h Handlers) EnableForging(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var req enableRequest
	if err := web.Decode(r, &req); err != nil {
		return err
	}

	publicKey, err := h.State.EnableForging(req.Secret)
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	resp := struct {
		Forging   bool   `json:"forging"`
		PublicKey string `json:"publicKey"`
	}{
		Forging:   true,
		PublicKey: publicKey,
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// disableRequest is the payload for disarming a forging delegate.
type disableRequest struct {
	PublicKey string `json:"publicKey" validate:"required,len=64,hexadecimal"`
}

// Validate implements the web framework validator interface.
func (dr disableRequest) Validate() error {
	return validate.Check(dr)
}

// DisableForging disarms forging for the specified delegate public key.
func (h Handlers) DisableForging(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var req disableRequest
	if err := web.Decode(r, &req); err != nil {
		return err
	}

	if err := h.State.DisableForging(req.PublicKey); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	resp := struct {
		Forging   bool   `json:"forging"`
		PublicKey string `json:"publicKey"`
	}{
		Forging:   false,
		PublicKey: req.PublicKey,
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// ForgingStatus reports whether forging is armed for the specified public
// key.
func (h Handlers) ForgingStatus(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	publicKey := web.Param(r, "publickey")
	if publicKey == "" {
		return errs.NewTrusted(fmt.Errorf("missing public key"), http.StatusBadRequest)
	}

	resp := struct {
		Forging   bool   `json:"forging"`
		PublicKey string `json:"publicKey"`
	}{
		Forging:   h.State.IsForging(publicKey),
		PublicKey: publicKey,
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}
