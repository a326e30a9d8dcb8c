package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/agentledger/chain/internal/crypto"
)

var keygenOut string

var keygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "Generate a new validator ed25519 key pair",
	RunE: func(cmd *cobra.Command, args []string) error {
		sk, pk, err := crypto.GenerateKeyPair()
		if err != nil {
			return fmt.Errorf("generate key pair: %w", err)
		}

		fmt.Printf("public key:  %s\n", pk.Hex())
		fmt.Printf("private key: %s\n", sk.Hex())

		if keygenOut != "" {
			if err := os.WriteFile(keygenOut, []byte(sk.Hex()+"\n"), 0o600); err != nil {
				return fmt.Errorf("write key file %s: %w", keygenOut, err)
			}
			fmt.Printf("private key written to %s\n", keygenOut)
		}
		return nil
	},
}

func init() {
	keygenCmd.Flags().StringVar(&keygenOut, "out", "", "write the private key (hex) to this file")
}
