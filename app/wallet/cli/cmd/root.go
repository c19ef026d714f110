// Package cmd contains the wallet app.
package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/dposlabs/blockchain/foundation/blockchain/genesis"
	"github.com/dposlabs/blockchain/foundation/blockchain/transaction"
	"github.com/spf13/cobra"
)

var (
	url    string
	secret string
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&url, "url", "u", "http://localhost:8080", "Url of the node.")
	rootCmd.PersistentFlags().StringVarP(&secret, "secret", "s", "", "Secret passphrase for the signing keypair.")
}

var rootCmd = &cobra.Command{
	Use:   "wallet",
	Short: "Your simple wallet",
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

// fetchFees asks the node for the genesis information so the wallet can stamp
// the exact fee the chain expects.
func fetchFees() (genesis.Fees, error) {
	resp, err := http.Get(fmt.Sprintf("%s/v1/genesis/list", url))
	if err != nil {
		return genesis.Fees{}, err
	}
	defer resp.Body.Close()

	var gen genesis.Genesis
	if err := json.NewDecoder(resp.Body).Decode(&gen); err != nil {
		return genesis.Fees{}, err
	}

	return gen.Fees, nil
}

// submit posts the signed transaction to the node and prints the reply.
func submit(tx transaction.Transaction) error {
	data, err := json.Marshal(tx)
	if err != nil {
		return err
	}

	resp, err := http.Post(fmt.Sprintf("%s/v1/tx/submit", url), "application/json", bytes.NewBuffer(data))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	fmt.Println(string(body))
	return nil
}
