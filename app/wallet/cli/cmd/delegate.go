package cmd

import (
	"log"

	"github.com/dposlabs/blockchain/foundation/blockchain/signature"
	"github.com/dposlabs/blockchain/foundation/blockchain/slots"
	"github.com/dposlabs/blockchain/foundation/blockchain/transaction"
	"github.com/spf13/cobra"
)

var username string

// delegateCmd represents the delegate registration command.
var delegateCmd = &cobra.Command{
	Use:   "delegate",
	Short: "Register as a forging delegate",
	Run:   delegateRun,
}

func init() {
	rootCmd.AddCommand(delegateCmd)
	delegateCmd.Flags().StringVarP(&username, "username", "n", "", "Delegate username to register.")
}

func delegateRun(cmd *cobra.Command, args []string) {
	if secret == "" || username == "" {
		log.Fatal("a secret and a username are required")
	}

	fees, err := fetchFees()
	if err != nil {
		log.Fatal(err)
	}

	tx := transaction.Transaction{
		Type:      transaction.TypeDelegate,
		Timestamp: slots.Now(),
		Fee:       fees.Delegate,
		Asset: transaction.Asset{
			Delegate: &transaction.DelegateAsset{Username: username},
		},
	}

	if err := tx.Sign(signature.NewKeypair(secret)); err != nil {
		log.Fatal(err)
	}

	if err := submit(tx); err != nil {
		log.Fatal(err)
	}
}
