package state_test

import (
	"testing"

	"github.com/agentledger/chain/internal/crypto"
	"github.com/agentledger/chain/internal/state"
	"github.com/agentledger/chain/internal/types"
)

func TestInitGenesisPopulatesBalancesAndIssuers(t *testing.T) {
	_, holderPK, err := crypto.GenerateKeyPair()
	if err != nil {
		t.Fatalf("GenerateKeyPair: %v", err)
	}
	_, issuerPK, err := crypto.GenerateKeyPair()
	if err != nil {
		t.Fatalf("GenerateKeyPair: %v", err)
	}

	cfg := &types.GenesisConfig{
		ChainID:         "test-chain",
		InitialBalances: map[crypto.PublicKey]uint64{holderPK: 1000},
		TrustedIssuers:  []crypto.PublicKey{issuerPK},
	}
	s := state.InitGenesis(cfg)

	if got := s.GetAccount(holderPK).Balance; got != 1000 {
		t.Fatalf("initial balance: got %d, want 1000", got)
	}
	issuerHash := crypto.HashBytes(issuerPK.Bytes())
	if !s.IsTrustedIssuer(issuerHash) {
		t.Fatal("expected issuer to be trusted after InitGenesis")
	}
}

func TestCloneIsolatesMutation(t *testing.T) {
	_, pk, err := crypto.GenerateKeyPair()
	if err != nil {
		t.Fatalf("GenerateKeyPair: %v", err)
	}
	s := state.New()
	s.GetAccount(pk).Credit(100)
	s.KvPut(crypto.Hash{}, "k", types.NewInlineValue("raw", []byte("v1")))

	clone := s.Clone()
	clone.GetAccount(pk).Credit(50)
	clone.KvPut(crypto.Hash{}, "k", types.NewInlineValue("raw", []byte("v2")))

	if got := s.GetAccount(pk).Balance; got != 100 {
		t.Fatalf("original account mutated by clone: got %d, want 100", got)
	}
	v, _ := s.KvGet(crypto.Hash{}, "k")
	if string(v.Data.Inline) != "v1" {
		t.Fatalf("original KV mutated by clone: got %q, want %q", v.Data.Inline, "v1")
	}

	cv, _ := clone.KvGet(crypto.Hash{}, "k")
	if string(cv.Data.Inline) != "v2" {
		t.Fatalf("clone KV: got %q, want %q", cv.Data.Inline, "v2")
	}
}

func TestRootDeterministicAcrossKeyOrder(t *testing.T) {
	_, pk1, _ := crypto.GenerateKeyPair()
	_, pk2, _ := crypto.GenerateKeyPair()

	a := state.New()
	a.GetAccount(pk1).Credit(10)
	a.GetAccount(pk2).Credit(20)

	b := state.New()
	b.GetAccount(pk2).Credit(20)
	b.GetAccount(pk1).Credit(10)

	if a.Root() != b.Root() {
		t.Fatal("state root depends on map iteration order")
	}
}

func TestRootChangesWithState(t *testing.T) {
	_, pk, _ := crypto.GenerateKeyPair()
	s := state.New()
	before := s.Root()
	s.GetAccount(pk).Credit(1)
	after := s.Root()
	if before == after {
		t.Fatal("state root did not change after a balance mutation")
	}
}

func TestAccountLockUnlockSlash(t *testing.T) {
	acc := types.NewAccount(100)
	lock := types.LockId(crypto.HashBytes([]byte("claim-1")))

	if !acc.Lock(lock, 40) {
		t.Fatal("expected Lock to succeed with sufficient balance")
	}
	if acc.Balance != 60 {
		t.Fatalf("balance after lock: got %d, want 60", acc.Balance)
	}
	if acc.TotalBalance() != 100 {
		t.Fatalf("total balance after lock: got %d, want 100", acc.TotalBalance())
	}

	if acc.Lock(lock, 1000) {
		t.Fatal("expected Lock to fail when balance is insufficient")
	}

	slashed := acc.SlashLocked(lock, 10)
	if slashed != 10 {
		t.Fatalf("slashed: got %d, want 10", slashed)
	}
	if acc.TotalBalance() != 90 {
		t.Fatalf("total balance after slash: got %d, want 90", acc.TotalBalance())
	}

	released := acc.Unlock(lock)
	if released != 30 {
		t.Fatalf("released: got %d, want 30", released)
	}
	if acc.Balance != 90 {
		t.Fatalf("balance after unlock: got %d, want 90", acc.Balance)
	}
	if _, ok := acc.Locked[lock]; ok {
		t.Fatal("lock entry should be removed after Unlock")
	}
}
