package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/agentledger/chain/internal/crypto"
	"github.com/agentledger/chain/internal/types"
)

// genesisFile is the YAML wire shape for genesis: hex-encoded keys so the
// file is human-editable, converted to the binary GenesisConfig on load.
type genesisFile struct {
	ChainID         string            `yaml:"chain_id"`
	Timestamp       uint64            `yaml:"timestamp"`
	InitialBalances map[string]uint64 `yaml:"initial_balances"` // hex pubkey -> balance
	TrustedIssuers  []string          `yaml:"trusted_issuers"`  // hex pubkeys
	Validators      []string          `yaml:"validators"`       // hex pubkeys
}

// LoadGenesis reads a genesis YAML file into a types.GenesisConfig.
func LoadGenesis(path string) (*types.GenesisConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read genesis %s: %w", path, err)
	}

	var gf genesisFile
	if err := yaml.Unmarshal(data, &gf); err != nil {
		return nil, fmt.Errorf("parse genesis %s: %w", path, err)
	}

	cfg := &types.GenesisConfig{
		ChainID:         gf.ChainID,
		Timestamp:       gf.Timestamp,
		InitialBalances: make(map[crypto.PublicKey]uint64, len(gf.InitialBalances)),
	}

	for hexKey, balance := range gf.InitialBalances {
		pk, err := crypto.PublicKeyFromHex(hexKey)
		if err != nil {
			return nil, fmt.Errorf("genesis initial_balances key %q: %w", hexKey, err)
		}
		cfg.InitialBalances[pk] = balance
	}
	for _, hexKey := range gf.TrustedIssuers {
		pk, err := crypto.PublicKeyFromHex(hexKey)
		if err != nil {
			return nil, fmt.Errorf("genesis trusted_issuers entry %q: %w", hexKey, err)
		}
		cfg.TrustedIssuers = append(cfg.TrustedIssuers, pk)
	}
	for _, hexKey := range gf.Validators {
		pk, err := crypto.PublicKeyFromHex(hexKey)
		if err != nil {
			return nil, fmt.Errorf("genesis validators entry %q: %w", hexKey, err)
		}
		cfg.Validators = append(cfg.Validators, pk)
	}

	return cfg, nil
}
