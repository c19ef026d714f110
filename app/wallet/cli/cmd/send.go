package cmd

import (
	"log"

	"github.com/dposlabs/blockchain/foundation/blockchain/signature"
	"github.com/dposlabs/blockchain/foundation/blockchain/slots"
	"github.com/dposlabs/blockchain/foundation/blockchain/transaction"
	"github.com/spf13/cobra"
)

var (
	to     string
	amount int64
)

// sendCmd represents the send command.
var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Send coins to an address",
	Run:   sendRun,
}

func init() {
	rootCmd.AddCommand(sendCmd)
	sendCmd.Flags().StringVarP(&to, "to", "t", "", "Recipient address.")
	sendCmd.Flags().Int64VarP(&amount, "amount", "m", 0, "Amount to send in the smallest unit.")
}

func sendRun(cmd *cobra.Command, args []string) {
	if secret == "" || to == "" || amount <= 0 {
		log.Fatal("a secret, a recipient and a positive amount are required")
	}

	fees, err := fetchFees()
	if err != nil {
		log.Fatal(err)
	}

	tx := transaction.Transaction{
		Type:        transaction.TypeTransfer,
		Timestamp:   slots.Now(),
		RecipientID: to,
		Amount:      amount,
		Fee:         fees.Transfer,
	}

	if err := tx.Sign(signature.NewKeypair(secret)); err != nil {
		log.Fatal(err)
	}

	if err := submit(tx); err != nil {
		log.Fatal(err)
	}
}
