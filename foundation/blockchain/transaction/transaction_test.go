package transaction_test

import (
	"errors"
	"testing"

	"github.com/dposlabs/blockchain/foundation/blockchain/accounts"
	"github.com/dposlabs/blockchain/foundation/blockchain/delegates"
	"github.com/dposlabs/blockchain/foundation/blockchain/genesis"
	"github.com/dposlabs/blockchain/foundation/blockchain/signature"
	"github.com/dposlabs/blockchain/foundation/blockchain/slots"
	"github.com/dposlabs/blockchain/foundation/blockchain/transaction"
)

// Success and failure markers.
const (
	success = "✓"
	failed  = "✗"
)

func testGenesis(balances map[string]int64) genesis.Genesis {
	return genesis.Genesis{
		Fees: genesis.Fees{
			Transfer:        10_000_000,
			SecondSignature: 100 * genesis.FixedPoint,
			Delegate:        100 * genesis.FixedPoint,
			Vote:            1 * genesis.FixedPoint,
			Dapp:            100 * genesis.FixedPoint,
			Company:         100 * genesis.FixedPoint,
		},
		Balances: balances,
	}
}

func newEngine(gen genesis.Genesis) (*transaction.Engine, *accounts.Ledger, *delegates.Registry) {
	ledger := accounts.New(gen)
	registry := delegates.NewRegistry(gen)
	eng := transaction.NewEngine(ledger, registry, gen, nil)
	return eng, ledger, registry
}

func signedTransfer(t *testing.T, kp signature.Keypair, to string, amount int64, fee int64) transaction.Transaction {
	tx := transaction.Transaction{
		Type:        transaction.TypeTransfer,
		Timestamp:   slots.Now() - 1,
		RecipientID: to,
		Amount:      amount,
		Fee:         fee,
	}
	if err := tx.Sign(kp); err != nil {
		t.Fatalf("\t%s\tShould be able to sign transaction: %v", failed, err)
	}
	return tx
}

func TestSignAndVerify(t *testing.T) {
	t.Log("Given the need to sign and verify a transaction.")
	{
		t.Log("\tTest 0:\tWhen signing a transfer with one keypair.")
		{
			kp := signature.NewKeypair("lonely rail stage favorite")
			tx := signedTransfer(t, kp, "1234C", 5*genesis.FixedPoint, 10_000_000)
			t.Logf("\t%s\tTest 0:\tShould be able to sign the transaction.", success)

			if !tx.VerifySignature() {
				t.Fatalf("\t%s\tTest 0:\tShould verify the signature.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould verify the signature.", success)

			id, err := tx.HashID()
			if err != nil || id != tx.ID {
				t.Fatalf("\t%s\tTest 0:\tShould derive a stable id from the bytes.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould derive a stable id from the bytes.", success)

			tx.Amount++
			if tx.VerifySignature() {
				t.Fatalf("\t%s\tTest 0:\tShould reject a signature after tampering.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould reject a signature after tampering.", success)
		}

		t.Log("\tTest 1:\tWhen adding a second signature.")
		{
			kp := signature.NewKeypair("lonely rail stage favorite")
			kp2 := signature.NewKeypair("winter winter winter winter")

			tx := signedTransfer(t, kp, "1234C", genesis.FixedPoint, 10_000_000)
			firstID := tx.ID

			if err := tx.SecondSign(kp2); err != nil {
				t.Fatalf("\t%s\tTest 1:\tShould be able to second sign: %v", failed, err)
			}
			t.Logf("\t%s\tTest 1:\tShould be able to second sign.", success)

			if tx.ID == firstID {
				t.Fatalf("\t%s\tTest 1:\tShould change the id when the second signature lands.", failed)
			}
			t.Logf("\t%s\tTest 1:\tShould change the id when the second signature lands.", success)

			if !tx.VerifySignature() {
				t.Fatalf("\t%s\tTest 1:\tShould keep the first signature valid.", failed)
			}
			t.Logf("\t%s\tTest 1:\tShould keep the first signature valid.", success)

			if !tx.VerifySecondSignature(kp2.PublicKeyString()) {
				t.Fatalf("\t%s\tTest 1:\tShould verify the second signature.", failed)
			}
			t.Logf("\t%s\tTest 1:\tShould verify the second signature.", success)
		}
	}
}

func TestSecondSignatureAssetBytes(t *testing.T) {
	t.Log("Given the need for canonical asset bytes.")
	{
		t.Log("\tTest 0:\tWhen serializing a second signature asset.")
		{
			kp := signature.NewKeypair("second key phrase")
			tx := transaction.Transaction{
				Type: transaction.TypeSecondSignature,
				Asset: transaction.Asset{
					Signature: &transaction.SecondSignatureAsset{PublicKey: kp.PublicKeyString()},
				},
			}

			data, err := tx.AssetBytes()
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould serialize the asset: %v", failed, err)
			}
			if len(data) != signature.PublicKeySize {
				t.Fatalf("\t%s\tTest 0:\tShould produce exactly %d bytes, got %d.", failed, signature.PublicKeySize, len(data))
			}
			t.Logf("\t%s\tTest 0:\tShould produce exactly the raw public key bytes.", success)
		}
	}
}

func TestApplyUndoInverse(t *testing.T) {
	t.Log("Given the need for undo to be the exact inverse of apply.")
	{
		t.Log("\tTest 0:\tWhen applying and undoing a transfer.")
		{
			kp := signature.NewKeypair("sender phrase one")
			sender := signature.AddressFromPublicKey(kp.PublicKey)
			recipient := "99887766C"

			gen := testGenesis(map[string]int64{sender: 1000 * genesis.FixedPoint})
			eng, ledger, _ := newEngine(gen)

			tx := signedTransfer(t, kp, recipient, 10*genesis.FixedPoint, gen.Fees.Transfer)

			if err := eng.Verify(&tx); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould verify the transfer: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould verify the transfer.", success)

			before := ledger.Copy()

			if err := eng.ApplyUnconfirmed(&tx); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould apply unconfirmed: %v", failed, err)
			}
			if err := eng.Apply(&tx); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould apply: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould apply the transfer.", success)

			acct := ledger.Account(recipient)
			if acct.Balance != 10*genesis.FixedPoint {
				t.Fatalf("\t%s\tTest 0:\tShould credit the recipient, got %d.", failed, acct.Balance)
			}
			t.Logf("\t%s\tTest 0:\tShould credit the recipient.", success)

			if err := eng.Undo(&tx); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould undo: %v", failed, err)
			}
			if err := eng.UndoUnconfirmed(&tx); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould undo unconfirmed: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould undo the transfer.", success)

			after := ledger.Copy()
			for addr, want := range before {
				got := after[addr]
				if got.Balance != want.Balance || got.Unconfirmed != want.Unconfirmed {
					t.Fatalf("\t%s\tTest 0:\tShould restore account %s exactly.", failed, addr)
				}
			}
			t.Logf("\t%s\tTest 0:\tShould restore every account exactly.", success)
		}
	}
}

func TestInsufficientFunds(t *testing.T) {
	t.Log("Given the need to reject spends beyond the unconfirmed balance.")
	{
		t.Log("\tTest 0:\tWhen the sender cannot cover amount plus fee.")
		{
			kp := signature.NewKeypair("poor sender phrase")
			sender := signature.AddressFromPublicKey(kp.PublicKey)

			gen := testGenesis(map[string]int64{sender: genesis.FixedPoint})
			eng, ledger, _ := newEngine(gen)

			tx := signedTransfer(t, kp, "1234C", genesis.FixedPoint, gen.Fees.Transfer)

			err := eng.ApplyUnconfirmed(&tx)
			if err == nil {
				t.Fatalf("\t%s\tTest 0:\tShould reject the reservation.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould reject the reservation.", success)

			if ledger.Account(sender).Unconfirmed != genesis.FixedPoint {
				t.Fatalf("\t%s\tTest 0:\tShould leave the unconfirmed balance untouched.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould leave the unconfirmed balance untouched.", success)
		}
	}
}

func TestSecondSignatureConflict(t *testing.T) {
	t.Log("Given the need to serialize second signature registrations.")
	{
		t.Log("\tTest 0:\tWhen two registrations race in the mempool.")
		{
			kp := signature.NewKeypair("owner phrase")
			kp2 := signature.NewKeypair("second key phrase")
			sender := signature.AddressFromPublicKey(kp.PublicKey)

			gen := testGenesis(map[string]int64{sender: 1000 * genesis.FixedPoint})
			eng, _, _ := newEngine(gen)

			build := func(ts int64) transaction.Transaction {
				tx := transaction.Transaction{
					Type:      transaction.TypeSecondSignature,
					Timestamp: ts,
					Fee:       gen.Fees.SecondSignature,
					Asset: transaction.Asset{
						Signature: &transaction.SecondSignatureAsset{PublicKey: kp2.PublicKeyString()},
					},
				}
				if err := tx.Sign(kp); err != nil {
					t.Fatalf("\t%s\tTest 0:\tShould sign: %v", failed, err)
				}
				return tx
			}

			now := slots.Now() - 1
			tx1 := build(now)
			tx2 := build(now - 1)

			if err := eng.ApplyUnconfirmed(&tx1); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould reserve the first registration: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould reserve the first registration.", success)

			if err := eng.ApplyUnconfirmed(&tx2); err == nil {
				t.Fatalf("\t%s\tTest 0:\tShould reject the second registration.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould reject the second registration.", success)

			if err := eng.UndoUnconfirmed(&tx1); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould release the first reservation: %v", failed, err)
			}

			if err := eng.ApplyUnconfirmed(&tx2); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould accept the second registration after rollback: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould accept the second registration after rollback.", success)
		}
	}
}

func TestVoteApplyUndo(t *testing.T) {
	t.Log("Given the need to move vote sets and restore them on rollback.")
	{
		t.Log("\tTest 0:\tWhen voting for a delegate and rolling back.")
		{
			kp := signature.NewKeypair("voter phrase")
			voter := signature.AddressFromPublicKey(kp.PublicKey)
			delegatePK := signature.NewKeypair("delegate phrase").PublicKeyString()

			gen := testGenesis(map[string]int64{voter: 1000 * genesis.FixedPoint})
			gen.Delegates = []genesis.Delegate{{Username: "gen0", PublicKey: delegatePK}}
			eng, ledger, registry := newEngine(gen)

			tx := transaction.Transaction{
				Type:      transaction.TypeVote,
				Timestamp: slots.Now() - 1,
				Fee:       gen.Fees.Vote,
				Asset:     transaction.Asset{Votes: []string{"+" + delegatePK}},
			}
			tx.RecipientID = voter
			if err := tx.Sign(kp); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould sign: %v", failed, err)
			}

			if err := eng.Verify(&tx); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould verify the vote: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould verify the vote.", success)

			if err := eng.Apply(&tx); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould apply the vote: %v", failed, err)
			}
			if !ledger.Account(voter).VotesFor(delegatePK) {
				t.Fatalf("\t%s\tTest 0:\tShould record the vote association.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould record the vote association.", success)

			registry.FinishRound()
			if d, _ := registry.Delegate(delegatePK); d.Vote <= 0 {
				t.Fatalf("\t%s\tTest 0:\tShould credit the delegate's weight at the round boundary.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould credit the delegate's weight at the round boundary.", success)

			if err := eng.Undo(&tx); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould undo the vote: %v", failed, err)
			}
			if ledger.Account(voter).VotesFor(delegatePK) {
				t.Fatalf("\t%s\tTest 0:\tShould restore the prior vote set.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould restore the prior vote set.", success)
		}
	}
}

func TestDelegateRegistration(t *testing.T) {
	t.Log("Given the need to register delegates uniquely.")
	{
		t.Log("\tTest 0:\tWhen registering a username twice.")
		{
			kpA := signature.NewKeypair("delegate a phrase")
			kpB := signature.NewKeypair("delegate b phrase")
			addrA := signature.AddressFromPublicKey(kpA.PublicKey)
			addrB := signature.AddressFromPublicKey(kpB.PublicKey)

			gen := testGenesis(map[string]int64{
				addrA: 1000 * genesis.FixedPoint,
				addrB: 1000 * genesis.FixedPoint,
			})
			eng, _, registry := newEngine(gen)

			build := func(kp signature.Keypair, username string) transaction.Transaction {
				tx := transaction.Transaction{
					Type:      transaction.TypeDelegate,
					Timestamp: slots.Now() - 1,
					Fee:       gen.Fees.Delegate,
					Asset:     transaction.Asset{Delegate: &transaction.DelegateAsset{Username: username}},
				}
				if err := tx.Sign(kp); err != nil {
					t.Fatalf("\t%s\tTest 0:\tShould sign: %v", failed, err)
				}
				return tx
			}

			txA := build(kpA, "validator")
			if err := eng.Verify(&txA); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould verify the first registration: %v", failed, err)
			}
			if err := eng.Apply(&txA); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould apply the first registration: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould apply the first registration.", success)

			if _, exists := registry.DelegateByName("validator"); !exists {
				t.Fatalf("\t%s\tTest 0:\tShould cache the confirmed delegate.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould cache the confirmed delegate.", success)

			txB := build(kpB, "validator")
			if err := eng.Verify(&txB); err == nil {
				t.Fatalf("\t%s\tTest 0:\tShould reject a duplicate username.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould reject a duplicate username.", success)
		}
	}
}

func TestDelegateUnconfirmedConflict(t *testing.T) {
	t.Log("Given the need to serialize pending delegate registrations.")
	{
		t.Log("\tTest 0:\tWhen two accounts claim the same username in the mempool.")
		{
			kpA := signature.NewKeypair("delegate a phrase")
			kpB := signature.NewKeypair("delegate b phrase")
			addrA := signature.AddressFromPublicKey(kpA.PublicKey)
			addrB := signature.AddressFromPublicKey(kpB.PublicKey)

			gen := testGenesis(map[string]int64{
				addrA: 1000 * genesis.FixedPoint,
				addrB: 1000 * genesis.FixedPoint,
			})
			eng, _, _ := newEngine(gen)

			build := func(kp signature.Keypair, username string) transaction.Transaction {
				tx := transaction.Transaction{
					Type:      transaction.TypeDelegate,
					Timestamp: slots.Now() - 1,
					Fee:       gen.Fees.Delegate,
					Asset:     transaction.Asset{Delegate: &transaction.DelegateAsset{Username: username}},
				}
				if err := tx.Sign(kp); err != nil {
					t.Fatalf("\t%s\tTest 0:\tShould sign: %v", failed, err)
				}
				return tx
			}

			txA := build(kpA, "validator")
			if err := eng.ApplyUnconfirmed(&txA); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould take the first pending claim: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould take the first pending claim.", success)

			txB := build(kpB, "validator")
			var ce *transaction.ConflictError
			if err := eng.ApplyUnconfirmed(&txB); !errors.As(err, &ce) {
				t.Fatalf("\t%s\tTest 0:\tShould reject a second pending claim with a conflict: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould reject a second pending claim with a conflict.", success)

			if err := eng.UndoUnconfirmed(&txA); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould release the first claim: %v", failed, err)
			}
			if err := eng.ApplyUnconfirmed(&txB); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould accept the claim once released: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould accept the claim once released.", success)
		}
	}
}

func TestDelegateUndoRestoresClaim(t *testing.T) {
	t.Log("Given the need to roll a confirmed registration back to pending.")
	{
		t.Log("\tTest 0:\tWhen undoing a registration with a rival waiting.")
		{
			kpA := signature.NewKeypair("delegate a phrase")
			kpB := signature.NewKeypair("delegate b phrase")
			addrA := signature.AddressFromPublicKey(kpA.PublicKey)
			addrB := signature.AddressFromPublicKey(kpB.PublicKey)

			gen := testGenesis(map[string]int64{
				addrA: 1000 * genesis.FixedPoint,
				addrB: 1000 * genesis.FixedPoint,
			})
			eng, _, registry := newEngine(gen)

			build := func(kp signature.Keypair, username string) transaction.Transaction {
				tx := transaction.Transaction{
					Type:      transaction.TypeDelegate,
					Timestamp: slots.Now() - 1,
					Fee:       gen.Fees.Delegate,
					Asset:     transaction.Asset{Delegate: &transaction.DelegateAsset{Username: username}},
				}
				if err := tx.Sign(kp); err != nil {
					t.Fatalf("\t%s\tTest 0:\tShould sign: %v", failed, err)
				}
				return tx
			}

			txA := build(kpA, "validator")
			if err := eng.ApplyUnconfirmed(&txA); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould apply unconfirmed: %v", failed, err)
			}
			if err := eng.Apply(&txA); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould apply: %v", failed, err)
			}
			if err := eng.Undo(&txA); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould undo: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould apply and undo the registration.", success)

			if _, exists := registry.DelegateByName("validator"); exists {
				t.Fatalf("\t%s\tTest 0:\tShould remove the confirmed record on undo.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould remove the confirmed record on undo.", success)

			if _, exists := registry.UnconfirmedByName("validator"); !exists {
				t.Fatalf("\t%s\tTest 0:\tShould restore the pending claim on undo.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould restore the pending claim on undo.", success)

			txB := build(kpB, "validator")
			var ce *transaction.ConflictError
			if err := eng.ApplyUnconfirmed(&txB); !errors.As(err, &ce) {
				t.Fatalf("\t%s\tTest 0:\tShould still block a rival registration: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould still block a rival registration.", success)
		}
	}
}

func TestDappLinkValidation(t *testing.T) {
	t.Log("Given the need to validate dapp locators.")
	{
		t.Log("\tTest 0:\tWhen the link locator is not a valid uri.")
		{
			kp := signature.NewKeypair("dapp author phrase")
			addr := signature.AddressFromPublicKey(kp.PublicKey)

			gen := testGenesis(map[string]int64{addr: 1000 * genesis.FixedPoint})
			eng, _, _ := newEngine(gen)

			build := func(link string) transaction.Transaction {
				tx := transaction.Transaction{
					Type:      transaction.TypeDapp,
					Timestamp: slots.Now() - 1,
					Fee:       gen.Fees.Dapp,
					Asset: transaction.Asset{Dapp: &transaction.DappAsset{
						Name:     "myapp",
						Category: transaction.DappCategoryCommon,
						Link:     link,
					}},
				}
				if err := tx.Sign(kp); err != nil {
					t.Fatalf("\t%s\tTest 0:\tShould sign: %v", failed, err)
				}
				return tx
			}

			junk := build("not a uri")
			if err := eng.Verify(&junk); !transaction.IsValidationError(err) {
				t.Fatalf("\t%s\tTest 0:\tShould reject a junk link: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould reject a junk link.", success)

			good := build("https://example.com/myapp.zip")
			if err := eng.Verify(&good); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould accept a valid link: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould accept a valid link.", success)
		}
	}
}

func TestMultisignatureReady(t *testing.T) {
	t.Log("Given the need to gate multisignature transactions on co-signatures.")
	{
		t.Log("\tTest 0:\tWhen the sender requires two co-signatures.")
		{
			kp := signature.NewKeypair("multisig owner phrase")
			addr := signature.AddressFromPublicKey(kp.PublicKey)

			gen := testGenesis(map[string]int64{addr: 1000 * genesis.FixedPoint})
			eng, ledger, _ := newEngine(gen)

			acct := ledger.Account(addr)
			acct.Multisignatures = []string{"aa", "bb", "cc"}
			acct.MultiMin = 2
			ledger.Save(acct)

			tx := signedTransfer(t, kp, "1234C", 1*genesis.FixedPoint, gen.Fees.Transfer)
			if eng.Ready(&tx) {
				t.Fatalf("\t%s\tTest 0:\tShould hold the transaction with no co-signatures.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould hold the transaction with no co-signatures.", success)

			tx.Signatures = []string{"sig1"}
			if eng.Ready(&tx) {
				t.Fatalf("\t%s\tTest 0:\tShould hold the transaction below the minimum.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould hold the transaction below the minimum.", success)

			tx.Signatures = []string{"sig1", "sig2"}
			if !eng.Ready(&tx) {
				t.Fatalf("\t%s\tTest 0:\tShould release the transaction at the minimum.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould release the transaction at the minimum.", success)
		}

		t.Log("\tTest 1:\tWhen the sender has no multisignature config.")
		{
			kp := signature.NewKeypair("plain owner phrase")
			addr := signature.AddressFromPublicKey(kp.PublicKey)

			gen := testGenesis(map[string]int64{addr: 1000 * genesis.FixedPoint})
			eng, _, _ := newEngine(gen)

			tx := signedTransfer(t, kp, "1234C", 1*genesis.FixedPoint, gen.Fees.Transfer)
			if !eng.Ready(&tx) {
				t.Fatalf("\t%s\tTest 1:\tShould be ready immediately.", failed)
			}
			t.Logf("\t%s\tTest 1:\tShould be ready immediately.", success)
		}
	}
}
