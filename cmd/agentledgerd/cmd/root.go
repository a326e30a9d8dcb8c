// Package cmd implements the agentledgerd CLI. cobra sits in the
// dependency graph already (pulled in transitively); this package
// promotes it to a direct import as the command framework.
package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "agentledgerd",
	Short: "Validator node for the agent ledger",
	Long:  "agentledgerd runs a validator node, and carries the genesis and keygen utilities needed to stand up a chain.",
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(keygenCmd)
	rootCmd.AddCommand(genesisCmd)
	rootCmd.AddCommand(runCmd)
}
