// Package genesis maintains access to the genesis file and the fixed
// monetary constants of the chain.
package genesis

import (
	"encoding/json"
	"os"
)

// Monetary constants. Amounts on the chain are integers in the smallest unit.
const (
	FixedPoint = 100_000_000                // Smallest units per whole coin.
	MaxMoney   = 100_000_000 * FixedPoint   // Supply ceiling for any single amount.
	VoteScale  = 1_000_000_000              // Divisor applied to balances when they feed delegate vote weight.
)

// MaxActiveDelegates is the ceiling on the number of delegates taking part in
// a round. The effective count is min(MaxActiveDelegates, registered).
const MaxActiveDelegates = 101

// Fees is the fixed fee schedule, per transaction type.
type Fees struct {
	Transfer        int64 `json:"transfer"`
	SecondSignature int64 `json:"second_signature"`
	Delegate        int64 `json:"delegate"`
	Vote            int64 `json:"vote"`
	Dapp            int64 `json:"dapp"`
	Company         int64 `json:"company"`
}

// Delegate is a delegate seeded at genesis so the first rounds have forgers.
type Delegate struct {
	Username  string `json:"username"`
	PublicKey string `json:"public_key"`
}

// Genesis represents the genesis file.
type Genesis struct {
	BlockID   string           `json:"block_id"`  // Fixed id of the genesis block.
	ChainID   uint16           `json:"chain_id"`  // Unique id for this running instance.
	Fees      Fees             `json:"fees"`      // Fee schedule per transaction type.
	Balances  map[string]int64 `json:"balances"`  // Opening balances by address.
	Delegates []Delegate       `json:"delegates"` // Delegates active from the first round.
}

// =============================================================================

// Load opens and consumes the genesis file.
func Load(path string) (Genesis, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Genesis{}, err
	}

	var genesis Genesis
	if err := json.Unmarshal(content, &genesis); err != nil {
		return Genesis{}, err
	}

	return genesis, nil
}
