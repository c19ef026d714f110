package signature_test

import (
	"testing"

	"github.com/dposlabs/blockchain/foundation/blockchain/signature"
)

// Success and failure markers.
const (
	success = "✓"
	failed  = "✗"
)

func TestKeypairDerivation(t *testing.T) {
	t.Log("Given the need to derive deterministic keys from a secret phrase.")
	{
		t.Logf("\tWhen deriving the keypair for a known phrase.")
		{
			const phrase = "delegate one"
			const wantPK = "d5aca9ba088d3018d58ff896ce5935105c627cc7c3ad162b0172142a1ecf2273"
			const wantAddr = "9023840984798351970C"

			kp := signature.NewKeypair(phrase)
			if kp.PublicKeyString() != wantPK {
				t.Fatalf("\t%s\tShould derive the expected public key: got %s", failed, kp.PublicKeyString())
			}
			t.Logf("\t%s\tShould derive the expected public key.", success)

			if addr := signature.AddressFromPublicKey(kp.PublicKey); addr != wantAddr {
				t.Fatalf("\t%s\tShould derive the expected address: got %s", failed, addr)
			}
			t.Logf("\t%s\tShould derive the expected address.", success)

			again := signature.NewKeypair(phrase)
			if again.PublicKeyString() != wantPK {
				t.Fatalf("\t%s\tShould derive the same keys every time.", failed)
			}
			t.Logf("\t%s\tShould derive the same keys every time.", success)
		}
	}
}

func TestSignVerify(t *testing.T) {
	t.Log("Given the need to sign data and verify the signature.")
	{
		t.Logf("\tWhen signing with one keypair and checking with another.")
		{
			kp := signature.NewKeypair("signer")
			other := signature.NewKeypair("impostor")
			data := []byte("the quick brown fox")

			sig := kp.Sign(data)
			if !signature.Verify(kp.PublicKey, data, sig) {
				t.Fatalf("\t%s\tShould verify with the signing key.", failed)
			}
			t.Logf("\t%s\tShould verify with the signing key.", success)

			if signature.Verify(other.PublicKey, data, sig) {
				t.Fatalf("\t%s\tShould not verify with a different key.", failed)
			}
			t.Logf("\t%s\tShould not verify with a different key.", success)

			if signature.Verify(kp.PublicKey, []byte("tampered"), sig) {
				t.Fatalf("\t%s\tShould not verify over different data.", failed)
			}
			t.Logf("\t%s\tShould not verify over different data.", success)
		}
	}
}

func TestAddressNumbers(t *testing.T) {
	t.Log("Given the need to use addresses and ids in canonical byte form.")
	{
		t.Logf("\tWhen converting an address to its numeric form.")
		{
			if n := signature.AddressNumber("9023840984798351970C"); n != 9023840984798351970 {
				t.Fatalf("\t%s\tShould strip the suffix and parse the number: got %d", failed, n)
			}
			t.Logf("\t%s\tShould strip the suffix and parse the number.", success)

			if n := signature.AddressNumber(""); n != 0 {
				t.Fatalf("\t%s\tShould map the empty address to zero: got %d", failed, n)
			}
			t.Logf("\t%s\tShould map the empty address to zero.", success)
		}

		t.Logf("\tWhen deriving a content id.")
		{
			id := signature.ContentID([]byte("some block bytes"))
			if id == "" {
				t.Fatalf("\t%s\tShould derive a non-empty id.", failed)
			}
			t.Logf("\t%s\tShould derive a non-empty id.", success)

			if signature.IDNumber(id) == 0 {
				t.Fatalf("\t%s\tShould parse the id back to its number.", failed)
			}
			t.Logf("\t%s\tShould parse the id back to its number.", success)
		}
	}
}
