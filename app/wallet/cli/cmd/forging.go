package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/spf13/cobra"
)

var nodeURL string

// forgingCmd groups the forging control commands. These talk to the private
// API of a node the operator controls, not the public one.
var forgingCmd = &cobra.Command{
	Use:   "forging",
	Short: "Control forging on your own node",
}

var forgingEnableCmd = &cobra.Command{
	Use:   "enable",
	Short: "Arm forging for the delegate owning the secret",
	Run:   forgingEnableRun,
}

var forgingDisableCmd = &cobra.Command{
	Use:   "disable",
	Short: "Disarm forging for a delegate public key",
	Run:   forgingDisableRun,
}

var forgingPublicKey string

func init() {
	rootCmd.AddCommand(forgingCmd)
	forgingCmd.AddCommand(forgingEnableCmd, forgingDisableCmd)
	forgingCmd.PersistentFlags().StringVarP(&nodeURL, "node-url", "n", "http://localhost:9080", "Url of the private API of your node.")
	forgingDisableCmd.Flags().StringVarP(&forgingPublicKey, "publickey", "k", "", "Delegate public key to disarm.")
}

func forgingEnableRun(cmd *cobra.Command, args []string) {
	if secret == "" {
		log.Fatal("a secret passphrase is required")
	}

	postForging("enable", map[string]string{"secret": secret})
}

func forgingDisableRun(cmd *cobra.Command, args []string) {
	if forgingPublicKey == "" {
		log.Fatal("a delegate public key is required")
	}

	postForging("disable", map[string]string{"publicKey": forgingPublicKey})
}

func postForging(action string, payload map[string]string) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Fatal(err)
	}

	resp, err := http.Post(fmt.Sprintf("%s/v1/node/forging/%s", nodeURL, action), "application/json", bytes.NewBuffer(data))
	if err != nil {
		log.Fatal(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(string(body))
}
