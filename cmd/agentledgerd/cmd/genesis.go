package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/agentledger/chain/internal/crypto"
)

var (
	genesisChainID    string
	genesisValidators []string
	genesisIssuers    []string
	genesisBalances   []string
	genesisOut        string
)

// genesisFile mirrors internal/config.genesisFile: hex-encoded keys so
// the generated file is reviewable before a chain launches from it.
type genesisFile struct {
	ChainID         string            `yaml:"chain_id"`
	Timestamp       uint64            `yaml:"timestamp"`
	InitialBalances map[string]uint64 `yaml:"initial_balances"`
	TrustedIssuers  []string          `yaml:"trusted_issuers"`
	Validators      []string          `yaml:"validators"`
}

var genesisCmd = &cobra.Command{
	Use:   "genesis",
	Short: "Generate a genesis file for a new chain",
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(genesisValidators) == 0 {
			return fmt.Errorf("at least one --validator pubkey is required")
		}

		gf := genesisFile{
			ChainID:         genesisChainID,
			Validators:      genesisValidators,
			TrustedIssuers:  genesisIssuers,
			InitialBalances: make(map[string]uint64, len(genesisBalances)),
		}

		for _, v := range genesisValidators {
			if _, err := crypto.PublicKeyFromHex(v); err != nil {
				return fmt.Errorf("validator %q: %w", v, err)
			}
		}
		for _, pair := range genesisBalances {
			pubkey, amount, err := parseBalance(pair)
			if err != nil {
				return err
			}
			gf.InitialBalances[pubkey] = amount
		}

		out, err := yaml.Marshal(gf)
		if err != nil {
			return fmt.Errorf("marshal genesis: %w", err)
		}

		if genesisOut == "" {
			fmt.Print(string(out))
			return nil
		}
		return os.WriteFile(genesisOut, out, 0o644)
	},
}

// parseBalance parses a "pubkeyhex=amount" pair.
func parseBalance(pair string) (string, uint64, error) {
	parts := strings.SplitN(pair, "=", 2)
	if len(parts) != 2 {
		return "", 0, fmt.Errorf("invalid --balance %q, want pubkeyhex=amount", pair)
	}
	pubkey := parts[0]
	if _, err := crypto.PublicKeyFromHex(pubkey); err != nil {
		return "", 0, fmt.Errorf("balance entry %q: %w", pair, err)
	}
	var amount uint64
	if _, err := fmt.Sscanf(parts[1], "%d", &amount); err != nil {
		return "", 0, fmt.Errorf("balance entry %q: invalid amount: %w", pair, err)
	}
	return pubkey, amount, nil
}

func init() {
	genesisCmd.Flags().StringVar(&genesisChainID, "chain-id", "agentledger-devnet", "chain identifier")
	genesisCmd.Flags().StringSliceVar(&genesisValidators, "validator", nil, "validator pubkey (hex), repeatable")
	genesisCmd.Flags().StringSliceVar(&genesisIssuers, "issuer", nil, "trusted agent-cert issuer pubkey (hex), repeatable")
	genesisCmd.Flags().StringSliceVar(&genesisBalances, "balance", nil, "pubkeyhex=amount initial balance, repeatable")
	genesisCmd.Flags().StringVar(&genesisOut, "out", "", "write genesis YAML to this file instead of stdout")
}
