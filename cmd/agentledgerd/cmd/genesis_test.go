package cmd

import (
	"testing"

	"github.com/agentledger/chain/internal/crypto"
)

func TestParseBalanceValidPair(t *testing.T) {
	_, pk, err := crypto.GenerateKeyPair()
	if err != nil {
		t.Fatalf("GenerateKeyPair: %v", err)
	}
	pubkey, amount, err := parseBalance(pk.Hex() + "=1000")
	if err != nil {
		t.Fatalf("parseBalance: %v", err)
	}
	if pubkey != pk.Hex() || amount != 1000 {
		t.Fatalf("got (%q, %d), want (%q, 1000)", pubkey, amount, pk.Hex())
	}
}

func TestParseBalanceRejectsMissingEquals(t *testing.T) {
	if _, _, err := parseBalance("not-a-pair"); err == nil {
		t.Fatal("expected an error for a pair missing '='")
	}
}

func TestParseBalanceRejectsInvalidPubkey(t *testing.T) {
	if _, _, err := parseBalance("not-hex=100"); err == nil {
		t.Fatal("expected an error for an invalid pubkey")
	}
}

func TestParseBalanceRejectsNonNumericAmount(t *testing.T) {
	_, pk, err := crypto.GenerateKeyPair()
	if err != nil {
		t.Fatalf("GenerateKeyPair: %v", err)
	}
	if _, _, err := parseBalance(pk.Hex() + "=not-a-number"); err == nil {
		t.Fatal("expected an error for a non-numeric amount")
	}
}
