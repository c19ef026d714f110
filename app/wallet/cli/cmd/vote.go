package cmd

import (
	"log"

	"github.com/dposlabs/blockchain/foundation/blockchain/signature"
	"github.com/dposlabs/blockchain/foundation/blockchain/slots"
	"github.com/dposlabs/blockchain/foundation/blockchain/transaction"
	"github.com/spf13/cobra"
)

var votes []string

// voteCmd represents the vote command.
var voteCmd = &cobra.Command{
	Use:   "vote",
	Short: "Cast or withdraw delegate votes",
	Long:  "Each vote is a delegate public key prefixed with + to cast or - to withdraw.",
	Run:   voteRun,
}

func init() {
	rootCmd.AddCommand(voteCmd)
	voteCmd.Flags().StringSliceVarP(&votes, "votes", "v", nil, "Votes as +publickey or -publickey.")
}

func voteRun(cmd *cobra.Command, args []string) {
	if secret == "" || len(votes) == 0 {
		log.Fatal("a secret and at least one vote are required")
	}

	fees, err := fetchFees()
	if err != nil {
		log.Fatal(err)
	}

	kp := signature.NewKeypair(secret)

	// Votes are self addressed.
	tx := transaction.Transaction{
		Type:        transaction.TypeVote,
		Timestamp:   slots.Now(),
		RecipientID: signature.AddressFromPublicKey(kp.PublicKey),
		Fee:         fees.Vote,
		Asset: transaction.Asset{
			Votes: votes,
		},
	}

	if err := tx.Sign(kp); err != nil {
		log.Fatal(err)
	}

	if err := submit(tx); err != nil {
		log.Fatal(err)
	}
}
