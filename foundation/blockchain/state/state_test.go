package state_test

import (
	"context"
	"errors"
	"testing"

	"github.com/dposlabs/blockchain/foundation/blockchain/database"
	"github.com/dposlabs/blockchain/foundation/blockchain/genesis"
	"github.com/dposlabs/blockchain/foundation/blockchain/signature"
	"github.com/dposlabs/blockchain/foundation/blockchain/slots"
	"github.com/dposlabs/blockchain/foundation/blockchain/state"
	"github.com/dposlabs/blockchain/foundation/blockchain/transaction"
)

// Success and failure markers.
const (
	success = "✓"
	failed  = "✗"
)

func testGenesis(kps ...signature.Keypair) (genesis.Genesis, map[string]signature.Keypair) {
	gen := genesis.Genesis{
		BlockID: "6524861224470851795",
		ChainID: 1,
		Fees: genesis.Fees{
			Transfer:        10_000_000,
			SecondSignature: 100 * genesis.FixedPoint,
			Delegate:        100 * genesis.FixedPoint,
			Vote:            1 * genesis.FixedPoint,
			Dapp:            100 * genesis.FixedPoint,
			Company:         100 * genesis.FixedPoint,
		},
		Balances: make(map[string]int64),
	}

	owners := make(map[string]signature.Keypair)
	for i, kp := range kps {
		pk := kp.PublicKeyString()
		gen.Delegates = append(gen.Delegates, genesis.Delegate{
			Username:  "genesis" + string(rune('a'+i)),
			PublicKey: pk,
		})
		gen.Balances[signature.AddressFromPublicKey(kp.PublicKey)] = 10_000 * genesis.FixedPoint
		owners[pk] = kp
	}

	return gen, owners
}

func newState(t *testing.T, gen genesis.Genesis) *state.State {
	s, err := state.New(state.Config{Genesis: gen})
	if err != nil {
		t.Fatalf("\t%s\tShould be able to construct state: %v", failed, err)
	}
	return s
}

func TestGenesisState(t *testing.T) {
	t.Log("Given the need to start a chain from the genesis file.")
	{
		t.Log("\tTest 0:\tWhen constructing a fresh node.")
		{
			kp := signature.NewKeypair("genesis delegate one")
			gen, _ := testGenesis(kp)
			s := newState(t, gen)
			defer s.Shutdown()

			head := s.LatestBlock()
			if head.Height != 0 {
				t.Fatalf("\t%s\tTest 0:\tShould start at height 0, got %d.", failed, head.Height)
			}
			t.Logf("\t%s\tTest 0:\tShould start at height 0.", success)

			if head.ID != gen.BlockID {
				t.Fatalf("\t%s\tTest 0:\tShould carry the fixed genesis id.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould carry the fixed genesis id.", success)

			addr := signature.AddressFromPublicKey(kp.PublicKey)
			if s.Account(addr).Balance != 10_000*genesis.FixedPoint {
				t.Fatalf("\t%s\tTest 0:\tShould seed the genesis balances.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould seed the genesis balances.", success)

			if s.ActiveDelegateCount() != 1 {
				t.Fatalf("\t%s\tTest 0:\tShould seed the genesis delegates.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould seed the genesis delegates.", success)
		}
	}
}

func TestForgeAndProcess(t *testing.T) {
	t.Log("Given the need to forge a block from pending transactions.")
	{
		t.Log("\tTest 0:\tWhen one delegate owns every slot.")
		{
			kp := signature.NewKeypair("forging delegate")
			gen, _ := testGenesis(kp)
			s := newState(t, gen)
			defer s.Shutdown()

			recipient := "424242C"
			tx := transaction.Transaction{
				Type:        transaction.TypeTransfer,
				Timestamp:   slots.Now() - 1,
				RecipientID: recipient,
				Amount:      5 * genesis.FixedPoint,
				Fee:         gen.Fees.Transfer,
			}
			if err := tx.Sign(kp); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould sign the transfer: %v", failed, err)
			}

			ctx := context.Background()
			if err := s.SubmitWalletTransaction(ctx, tx); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould accept the transfer: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould accept the transfer.", success)

			block, err := s.ForgeNewBlock(ctx, kp, slots.CurrentSlot())
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould forge a block: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould forge a block.", success)

			if block.Height != 1 || s.LatestBlock().ID != block.ID {
				t.Fatalf("\t%s\tTest 0:\tShould advance the chain head to height 1.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould advance the chain head to height 1.", success)

			if s.MempoolCount() != 0 {
				t.Fatalf("\t%s\tTest 0:\tShould drain the mempool.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould drain the mempool.", success)

			if s.Account(recipient).Balance != 5*genesis.FixedPoint {
				t.Fatalf("\t%s\tTest 0:\tShould credit the recipient.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould credit the recipient.", success)

			if _, err := s.ConfirmedTransaction(tx.ID); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould index the confirmed transaction.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould index the confirmed transaction.", success)
		}
	}
}

func TestHeightGapRejected(t *testing.T) {
	t.Log("Given the need to reject blocks that do not extend the head.")
	{
		t.Log("\tTest 0:\tWhen a block skips a height.")
		{
			kp := signature.NewKeypair("gap delegate")
			gen, _ := testGenesis(kp)
			s := newState(t, gen)
			defer s.Shutdown()

			head := s.LatestBlock()
			payloadHash, payloadLength, err := database.Payload(nil)
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould compute an empty payload: %v", failed, err)
			}

			block := database.Block{
				Timestamp:          slots.SlotTime(slots.CurrentSlot()),
				Height:             head.Height + 2,
				PreviousBlock:      head.ID,
				PayloadHash:        payloadHash,
				PayloadLength:      payloadLength,
				DelegateCount:      1,
				GeneratorPublicKey: kp.PublicKeyString(),
			}
			if err := block.Sign(kp); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould sign the block: %v", failed, err)
			}

			err = s.ProcessBlock(context.Background(), block)
			var ce *database.ChainError
			if !errors.As(err, &ce) {
				t.Fatalf("\t%s\tTest 0:\tShould reject the block with a chain error, got %v.", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould reject the block with a chain error.", success)

			if s.LatestBlock().Height != 0 {
				t.Fatalf("\t%s\tTest 0:\tShould keep the chain head unchanged.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould keep the chain head unchanged.", success)
		}
	}
}

func TestSlotAssignment(t *testing.T) {
	t.Log("Given the need to reject delegates forging outside their slot.")
	{
		t.Log("\tTest 0:\tWhen the wrong delegate signs the slot.")
		{
			kpA := signature.NewKeypair("slot delegate a")
			kpB := signature.NewKeypair("slot delegate b")
			gen, owners := testGenesis(kpA, kpB)
			s := newState(t, gen)
			defer s.Shutdown()

			slot := slots.CurrentSlot()
			list := s.DelegateList(1)
			owner := list[int(slot%int64(len(list)))]

			var wrong signature.Keypair
			for pk, kp := range owners {
				if pk != owner {
					wrong = kp
					break
				}
			}

			_, err := s.ForgeNewBlock(context.Background(), wrong, slot)
			var sae *state.SlotAssignmentError
			if !errors.As(err, &sae) {
				t.Fatalf("\t%s\tTest 0:\tShould reject with a slot assignment error, got %v.", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould reject with a slot assignment error.", success)

			_, err = s.ForgeNewBlock(context.Background(), owners[owner], slot)
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould accept the slot owner: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould accept the slot owner.", success)
		}
	}
}

func TestRollback(t *testing.T) {
	t.Log("Given the need to roll the chain head back during fork resolution.")
	{
		t.Log("\tTest 0:\tWhen undoing a forged block.")
		{
			kp := signature.NewKeypair("rollback delegate")
			gen, _ := testGenesis(kp)
			s := newState(t, gen)
			defer s.Shutdown()

			sender := signature.AddressFromPublicKey(kp.PublicKey)
			balanceBefore := s.Account(sender).Balance

			tx := transaction.Transaction{
				Type:        transaction.TypeTransfer,
				Timestamp:   slots.Now() - 1,
				RecipientID: "424242C",
				Amount:      genesis.FixedPoint,
				Fee:         gen.Fees.Transfer,
			}
			if err := tx.Sign(kp); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould sign the transfer: %v", failed, err)
			}

			ctx := context.Background()
			if err := s.SubmitWalletTransaction(ctx, tx); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould accept the transfer: %v", failed, err)
			}
			if _, err := s.ForgeNewBlock(ctx, kp, slots.CurrentSlot()); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould forge a block: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould forge a block.", success)

			if err := s.RollbackLatestBlock(ctx); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould roll the head back: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould roll the head back.", success)

			if s.LatestBlock().Height != 0 {
				t.Fatalf("\t%s\tTest 0:\tShould return to height 0.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould return to height 0.", success)

			if s.MempoolCount() != 1 {
				t.Fatalf("\t%s\tTest 0:\tShould return the transaction to the mempool.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould return the transaction to the mempool.", success)

			if got := s.Account(sender).Balance; got != balanceBefore {
				t.Fatalf("\t%s\tTest 0:\tShould restore the confirmed balance, got %d want %d.", failed, got, balanceBefore)
			}
			t.Logf("\t%s\tTest 0:\tShould restore the confirmed balance.", success)
		}
	}
}
