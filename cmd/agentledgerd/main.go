// Command agentledgerd runs a validator node for the agent ledger: it
// proposes and validates blocks, serves the consensus HTTP transport, and
// exposes Prometheus metrics. It also carries the genesis and keygen
// utility subcommands operators need to stand up a chain.
package main

import (
	"fmt"
	"os"

	"github.com/agentledger/chain/cmd/agentledgerd/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
