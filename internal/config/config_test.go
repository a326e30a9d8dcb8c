package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/agentledger/chain/internal/config"
	"github.com/agentledger/chain/internal/crypto"
)

func writeTempFile(t *testing.T, name, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeTempFile(t, "config.yaml", `
chain:
  chain_id: devnet
`)
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Chain.BlockTimeMs != 2000 {
		t.Fatalf("BlockTimeMs default: got %d, want 2000", cfg.Chain.BlockTimeMs)
	}
	if cfg.Storage.Backend != "goleveldb" {
		t.Fatalf("Storage.Backend default: got %q, want goleveldb", cfg.Storage.Backend)
	}
	if cfg.Mempool.Order != "fee_rate" {
		t.Fatalf("Mempool.Order default: got %q, want fee_rate", cfg.Mempool.Order)
	}
	if cfg.Logging.Level != "info" {
		t.Fatalf("Logging.Level default: got %q, want info", cfg.Logging.Level)
	}
}

func TestLoadSubstitutesEnvVars(t *testing.T) {
	t.Setenv("AGENTLEDGER_DB_URL", "postgres://example/db")
	path := writeTempFile(t, "config.yaml", `
storage:
  backend: postgres
  database_url: ${AGENTLEDGER_DB_URL}
`)
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Storage.DatabaseURL != "postgres://example/db" {
		t.Fatalf("DatabaseURL: got %q, want substituted value", cfg.Storage.DatabaseURL)
	}
}

func TestLoadLeavesUnsetEnvVarLiteral(t *testing.T) {
	os.Unsetenv("AGENTLEDGER_UNSET_VAR")
	path := writeTempFile(t, "config.yaml", `
chain:
  chain_id: ${AGENTLEDGER_UNSET_VAR}
`)
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Chain.ChainID != "${AGENTLEDGER_UNSET_VAR}" {
		t.Fatalf("ChainID: got %q, want literal placeholder preserved", cfg.Chain.ChainID)
	}
}

func TestLoadGenesis(t *testing.T) {
	_, validatorPK, err := crypto.GenerateKeyPair()
	if err != nil {
		t.Fatalf("GenerateKeyPair: %v", err)
	}
	_, issuerPK, err := crypto.GenerateKeyPair()
	if err != nil {
		t.Fatalf("GenerateKeyPair: %v", err)
	}
	_, holderPK, err := crypto.GenerateKeyPair()
	if err != nil {
		t.Fatalf("GenerateKeyPair: %v", err)
	}

	path := writeTempFile(t, "genesis.yaml", `
chain_id: devnet
timestamp: 1700000000
initial_balances:
  `+holderPK.Hex()+`: 500
trusted_issuers:
  - `+issuerPK.Hex()+`
validators:
  - `+validatorPK.Hex()+`
`)

	gc, err := config.LoadGenesis(path)
	if err != nil {
		t.Fatalf("LoadGenesis: %v", err)
	}
	if gc.ChainID != "devnet" {
		t.Fatalf("ChainID: got %q, want devnet", gc.ChainID)
	}
	if gc.InitialBalances[holderPK] != 500 {
		t.Fatalf("balance: got %d, want 500", gc.InitialBalances[holderPK])
	}
	if len(gc.TrustedIssuers) != 1 || gc.TrustedIssuers[0] != issuerPK {
		t.Fatal("trusted issuer not parsed correctly")
	}
	if len(gc.Validators) != 1 || gc.Validators[0] != validatorPK {
		t.Fatal("validator not parsed correctly")
	}
}

func TestLoadGenesisRejectsInvalidPubkey(t *testing.T) {
	path := writeTempFile(t, "genesis.yaml", `
chain_id: devnet
validators:
  - not-a-valid-hex-key
`)
	if _, err := config.LoadGenesis(path); err == nil {
		t.Fatal("expected LoadGenesis to reject an invalid validator pubkey")
	}
}
