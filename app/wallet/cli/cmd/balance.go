package cmd

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/dposlabs/blockchain/foundation/blockchain/signature"
	"github.com/spf13/cobra"
)

type balance struct {
	Address            string `json:"address"`
	Balance            int64  `json:"balance"`
	UnconfirmedBalance int64  `json:"unconfirmedBalance"`
}

type balances struct {
	LatestBlock string    `json:"latestBlock"`
	Uncommitted int       `json:"uncommitted"`
	Accounts    []balance `json:"accounts"`
}

var balanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Print your balance",
	Run:   balanceRun,
}

func init() {
	rootCmd.AddCommand(balanceCmd)
}

func balanceRun(cmd *cobra.Command, args []string) {
	if secret == "" {
		log.Fatal("a secret passphrase is required")
	}

	kp := signature.NewKeypair(secret)
	address := signature.AddressFromPublicKey(kp.PublicKey)
	fmt.Println("for address:", address)

	resp, err := http.Get(fmt.Sprintf("%s/v1/accounts/list/%s", url, address))
	if err != nil {
		log.Fatal(err)
	}
	defer resp.Body.Close()

	var bals balances
	if err := json.NewDecoder(resp.Body).Decode(&bals); err != nil {
		log.Fatal(err)
	}

	for _, b := range bals.Accounts {
		fmt.Println("balance:    ", b.Balance)
		fmt.Println("unconfirmed:", b.UnconfirmedBalance)
	}
}
