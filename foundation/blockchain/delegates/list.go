package delegates

import (
	"crypto/sha256"
	"sort"
	"strconv"

	"github.com/dposlabs/blockchain/foundation/blockchain/slots"
)

// CalcRound returns the 1-based round a block height falls in. Height 1 is
// the first block of round 1; each round spans delegateCount heights.
func CalcRound(height uint64, delegateCount int) uint64 {
	dc := uint64(delegateCount)
	round := height / dc
	if height%dc > 0 {
		round++
	}
	return round
}

// KeysSortedByVote returns the public keys of the active delegates ranked by
// vote weight, highest first. Equal weights keep registration order, which is
// what makes the ranking deterministic across nodes.
func (reg *Registry) KeysSortedByVote() []string {
	reg.mu.RLock()
	defer reg.mu.RUnlock()

	keys := make([]string, len(reg.order))
	copy(keys, reg.order)

	sort.SliceStable(keys, func(i, j int) bool {
		return reg.confirmed[keys[i]].Vote > reg.confirmed[keys[j]].Vote
	})

	if len(keys) > reg.active {
		keys = keys[:reg.active]
	}
	return keys
}

// GenerateDelegateList returns the forging order for the round containing the
// specified height. The ranked delegate list is shuffled with a deterministic
// seeded swap walk: the seed starts as sha256 of the round number in decimal
// and is re-hashed after every 4 swaps, with each seed byte picking the swap
// target modulo the list length.
func (reg *Registry) GenerateDelegateList(height uint64) []string {
	list := reg.KeysSortedByVote()
	if len(list) == 0 {
		return list
	}

	round := CalcRound(height, len(list))
	seed := sha256.Sum256([]byte(strconv.FormatUint(round, 10)))

	// The outer loop advances i as well, so every reseed skips one position.
	// That skip is part of the consensus permutation.
	delCount := len(list)
	for i := 0; i < delCount; i++ {
		for x := 0; x < 4 && i < delCount; i, x = i+1, x+1 {
			newIndex := int(seed[x]) % delCount
			list[newIndex], list[i] = list[i], list[newIndex]
		}
		seed = sha256.Sum256(seed[:])
	}

	return list
}

// ValidateBlockSlot reports whether the specified generator public key owns
// the slot the block timestamp falls in, per the shuffled list for the
// block's round.
func (reg *Registry) ValidateBlockSlot(height uint64, timestamp int64, generatorPublicKey string) bool {
	list := reg.GenerateDelegateList(height)
	if len(list) == 0 {
		return false
	}

	slot := slots.SlotNumber(timestamp)
	return list[int(slot%int64(len(list)))] == generatorPublicKey
}
