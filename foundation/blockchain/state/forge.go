package state

import (
	"context"

	"github.com/dposlabs/blockchain/foundation/blockchain/database"
	"github.com/dposlabs/blockchain/foundation/blockchain/signature"
	"github.com/dposlabs/blockchain/foundation/blockchain/slots"
)

// maxTxPerBlock caps how many transactions a forged block carries.
const maxTxPerBlock = 25

// blockVersion is the current block format version.
const blockVersion = 0

// ForgeNewBlock builds, signs and commits a block for the specified slot with
// the best transactions the mempool holds. The caller is the forging worker
// and has already established that the keypair owns the slot.
func (s *State) ForgeNewBlock(ctx context.Context, kp signature.Keypair, slot int64) (database.Block, error) {
	s.evHandler("state: forgeNewBlock: started: slot[%d] delegate[%s]", slot, kp.PublicKeyString())
	defer s.evHandler("state: forgeNewBlock: completed")

	txs := s.mempool.PickBest(maxTxPerBlock)

	var totalAmount, totalFee int64
	for _, tx := range txs {
		totalAmount += tx.Amount
		totalFee += tx.Fee
	}

	payloadHash, payloadLength, err := database.Payload(txs)
	if err != nil {
		return database.Block{}, err
	}

	head := s.db.LatestBlock()

	block := database.Block{
		Version:              blockVersion,
		Timestamp:            slots.SlotTime(slot),
		Height:               head.Height + 1,
		PreviousBlock:        head.ID,
		NumberOfTransactions: len(txs),
		TotalAmount:          totalAmount,
		TotalFee:             totalFee,
		PayloadLength:        payloadLength,
		DelegateCount:        s.registry.ActiveCount(),
		PayloadHash:          payloadHash,
		GeneratorPublicKey:   kp.PublicKeyString(),
		Transactions:         txs,
	}

	if err := block.Sign(kp); err != nil {
		return database.Block{}, err
	}

	if err := s.ProcessBlock(ctx, block); err != nil {
		return database.Block{}, err
	}

	return block, nil
}
