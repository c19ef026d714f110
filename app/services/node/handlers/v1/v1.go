// Package v1 contains the full set of handler functions and routes supported
// by the v1 web api.
package v1

import (
	"net/http"

	"github.com/dposlabs/blockchain/app/services/node/handlers/v1/private"
	"github.com/dposlabs/blockchain/app/services/node/handlers/v1/public"
	"github.com/dposlabs/blockchain/foundation/blockchain/state"
	"github.com/dposlabs/blockchain/foundation/events"
	"github.com/dposlabs/blockchain/foundation/web"
	"go.uber.org/zap"
)

const version = "v1"

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Log   *zap.SugaredLogger
	State *state.State
	Evts  *events.Events
}

// PublicRoutes binds all the version 1 public routes.
func PublicRoutes(app *web.App, cfg Config) {
	pbl := public.Handlers{
		Log:       cfg.Log,
		State:     cfg.State,
		Evts:      cfg.Evts,
		Proofs:    public.NewCompanyProofs(),
	}

	app.Handle(http.MethodGet, version, "/genesis/list", pbl.Genesis)
	app.Handle(http.MethodGet, version, "/accounts/list", pbl.Accounts)
	app.Handle(http.MethodGet, version, "/accounts/list/:address", pbl.Accounts)
	app.Handle(http.MethodGet, version, "/blocks/latest", pbl.LatestBlock)
	app.Handle(http.MethodGet, version, "/blocks/list/:from/:to", pbl.BlocksByHeight)
	app.Handle(http.MethodGet, version, "/delegates/list", pbl.Delegates)
	app.Handle(http.MethodGet, version, "/delegates/forging/list/:height", pbl.ForgingOrder)
	app.Handle(http.MethodGet, version, "/tx/uncommitted/list", pbl.Mempool)
	app.Handle(http.MethodGet, version, "/tx/confirmed/:id", pbl.TransactionByID)
	app.Handle(http.MethodGet, version, "/tx/account/:address", pbl.TransactionsByAddress)
	app.Handle(http.MethodPost, version, "/tx/submit", pbl.SubmitWalletTransaction)
	app.Handle(http.MethodGet, version, "/dapps/list", pbl.Dapps)
	app.Handle(http.MethodGet, version, "/dapps/search", pbl.SearchDapps)
	app.Handle(http.MethodGet, version, "/dapps/get/:txid", pbl.DappByTxID)
	app.Handle(http.MethodGet, version, "/companies/list", pbl.Companies)
	app.Handle(http.MethodPost, version, "/companies/token", pbl.CompanyToken)
	app.Handle(http.MethodPost, version, "/companies/add", pbl.CreateCompany)
	app.Handle(http.MethodGet, version, "/events", pbl.Events)
}

// PrivateRoutes binds all the version 1 private routes.
func PrivateRoutes(app *web.App, cfg Config) {
	prv := private.Handlers{
		Log:   cfg.Log,
		State: cfg.State,
	}

	app.Handle(http.MethodGet, version, "/node/status", prv.Status)
	app.Handle(http.MethodPost, version, "/node/peers", prv.SubmitPeer)
	app.Handle(http.MethodGet, version, "/node/block/list/:from/:to", prv.BlocksByHeight)
	app.Handle(http.MethodPost, version, "/node/block/propose", prv.ProposeBlock)
	app.Handle(http.MethodPost, version, "/node/tx/submit", prv.SubmitNodeTransaction)
	app.Handle(http.MethodPost, version, "/node/forging/enable", prv.EnableForging)
	app.Handle(http.MethodPost, version, "/node/forging/disable", prv.DisableForging)
	app.Handle(http.MethodGet, version, "/node/forging/status/:publickey", prv.ForgingStatus)
}
