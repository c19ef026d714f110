package cmd

import (
	"fmt"
	"log"

	"github.com/dposlabs/blockchain/foundation/blockchain/signature"
	"github.com/spf13/cobra"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Show the keypair and address for a secret",
	Run:   generateRun,
}

func init() {
	rootCmd.AddCommand(generateCmd)
}

func generateRun(cmd *cobra.Command, args []string) {
	if secret == "" {
		log.Fatal("a secret passphrase is required")
	}

	kp := signature.NewKeypair(secret)
	fmt.Println("public key:", kp.PublicKeyString())
	fmt.Println("address:   ", signature.AddressFromPublicKey(kp.PublicKey))
}
