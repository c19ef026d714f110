package main

import "github.com/dposlabs/blockchain/app/wallet/cli/cmd"

func main() {
	cmd.Execute()
}
