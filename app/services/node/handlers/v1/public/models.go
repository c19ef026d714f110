package public

import (
	"github.com/dposlabs/blockchain/foundation/blockchain/accounts"
	"github.com/dposlabs/blockchain/foundation/blockchain/database"
	"github.com/dposlabs/blockchain/foundation/blockchain/delegates"
)

// account is the API view of a ledger account.
type account struct {
	Address              string   `json:"address"`
	PublicKey            string   `json:"publicKey,omitempty"`
	Balance              int64    `json:"balance"`
	UnconfirmedBalance   int64    `json:"unconfirmedBalance"`
	SecondSignature      bool     `json:"secondSignature"`
	SecondPublicKey      string   `json:"secondPublicKey,omitempty"`
	UnconfirmedSignature bool     `json:"unconfirmedSignature"`
	Delegates            []string `json:"delegates,omitempty"`
}

func toAccount(acct accounts.Account) account {
	return account{
		Address:              acct.Address,
		PublicKey:            acct.PublicKey,
		Balance:              acct.Balance,
		UnconfirmedBalance:   acct.Unconfirmed,
		SecondSignature:      acct.SecondSignature,
		SecondPublicKey:      acct.SecondPublicKey,
		UnconfirmedSignature: acct.UnconfirmedSignature,
		Delegates:            acct.CopyDelegates(),
	}
}

// accountsInfo is the summary wrapper for the accounts listing.
type accountsInfo struct {
	LatestBlock string    `json:"latestBlock"`
	Height      uint64    `json:"height"`
	Uncommitted int       `json:"uncommitted"`
	Accounts    []account `json:"accounts"`
}

// delegate is the API view of a confirmed delegate.
type delegate struct {
	Username      string  `json:"username"`
	PublicKey     string  `json:"publicKey"`
	Address       string  `json:"address"`
	Vote          float64 `json:"vote"`
	Rank          int     `json:"rank"`
	TransactionID string  `json:"transactionId,omitempty"`
}

func toDelegates(recs []delegates.Delegate, addresses map[string]string, ranked []string) []delegate {
	rank := make(map[string]int, len(ranked))
	for i, pk := range ranked {
		rank[pk] = i + 1
	}

	views := make([]delegate, len(recs))
	for i, rec := range recs {
		views[i] = delegate{
			Username:      rec.Username,
			PublicKey:     rec.PublicKey,
			Address:       addresses[rec.PublicKey],
			Vote:          rec.Vote,
			Rank:          rank[rec.PublicKey],
			TransactionID: rec.TransactionID,
		}
	}
	return views
}

// blockInfo is the API view of a block with its confirmation depth.
type blockInfo struct {
	database.Block
	Confirmations uint64 `json:"confirmations"`
}

func toBlockInfo(block database.Block, head uint64) blockInfo {
	return blockInfo{
		Block:         block,
		Confirmations: head - block.Height + 1,
	}
}

// txInfo is the API view of a confirmed transaction with its chain position.
type txInfo struct {
	database.TxRecord
	Confirmations uint64 `json:"confirmations"`
}

func toTxInfo(rec database.TxRecord, head uint64) txInfo {
	return txInfo{
		TxRecord:      rec,
		Confirmations: head - rec.Height + 1,
	}
}
