package cmd

import (
	"log"

	"github.com/dposlabs/blockchain/foundation/blockchain/signature"
	"github.com/dposlabs/blockchain/foundation/blockchain/slots"
	"github.com/dposlabs/blockchain/foundation/blockchain/transaction"
	"github.com/spf13/cobra"
)

var secondSecret string

// signatureCmd represents the second signature registration command.
var signatureCmd = &cobra.Command{
	Use:   "signature",
	Short: "Register a second signature on the account",
	Run:   signatureRun,
}

func init() {
	rootCmd.AddCommand(signatureCmd)
	signatureCmd.Flags().StringVarP(&secondSecret, "second-secret", "w", "", "Secret passphrase for the second keypair.")
}

func signatureRun(cmd *cobra.Command, args []string) {
	if secret == "" || secondSecret == "" {
		log.Fatal("both secrets are required")
	}

	fees, err := fetchFees()
	if err != nil {
		log.Fatal(err)
	}

	second := signature.NewKeypair(secondSecret)

	tx := transaction.Transaction{
		Type:      transaction.TypeSecondSignature,
		Timestamp: slots.Now(),
		Fee:       fees.SecondSignature,
		Asset: transaction.Asset{
			Signature: &transaction.SecondSignatureAsset{PublicKey: second.PublicKeyString()},
		},
	}

	if err := tx.Sign(signature.NewKeypair(secret)); err != nil {
		log.Fatal(err)
	}

	if err := submit(tx); err != nil {
		log.Fatal(err)
	}
}
