package merkle

import (
	"testing"

	"github.com/agentledger/chain/internal/crypto"
)

func leafFor(s string) crypto.Hash {
	return crypto.HashBytes([]byte(s))
}

func TestRootEmpty(t *testing.T) {
	if got := Root(nil); got != crypto.ZeroHash {
		t.Errorf("empty root mismatch: got %x, want zero hash", got)
	}
}

func TestRootSingleLeaf(t *testing.T) {
	leaf := leafFor("test data")
	if got := Root([]crypto.Hash{leaf}); got != leaf {
		t.Errorf("single leaf root mismatch: got %x, want %x", got, leaf)
	}
}

func TestRootTwoLeaves(t *testing.T) {
	leaf1 := leafFor("leaf 1")
	leaf2 := leafFor("leaf 2")

	got := Root([]crypto.Hash{leaf1, leaf2})
	want := combine(leaf1, leaf2)
	if got != want {
		t.Errorf("two leaf root mismatch: got %x, want %x", got, want)
	}
}

func TestRootOddLeavesDuplicatesLast(t *testing.T) {
	leaves := []crypto.Hash{leafFor("a"), leafFor("b"), leafFor("c")}
	// Three leaves pads to four by duplicating the third.
	want := Root([]crypto.Hash{leaves[0], leaves[1], leaves[2], leaves[2]})
	if got := Root(leaves); got != want {
		t.Errorf("odd-leaf padding mismatch: got %x, want %x", got, want)
	}
}

func TestRootDeterministic(t *testing.T) {
	leaves := []crypto.Hash{leafFor("a"), leafFor("b"), leafFor("c"), leafFor("d")}
	r1 := Root(leaves)
	r2 := Root(leaves)
	if r1 != r2 {
		t.Errorf("root not deterministic: %x != %x", r1, r2)
	}
}

func TestBuildAndVerifyProof(t *testing.T) {
	leaves := []crypto.Hash{leafFor("a"), leafFor("b"), leafFor("c"), leafFor("d"), leafFor("e")}
	tree := Build(leaves)

	for i, leaf := range leaves {
		steps, err := tree.Proof(i)
		if err != nil {
			t.Fatalf("proof for leaf %d: %v", i, err)
		}
		if !VerifyProof(leaf, steps, tree.Root()) {
			t.Errorf("proof for leaf %d did not verify", i)
		}
	}
}

func TestProofLeafNotFound(t *testing.T) {
	tree := Build([]crypto.Hash{leafFor("a"), leafFor("b")})
	if _, err := tree.Proof(5); err == nil {
		t.Errorf("expected error for out-of-range leaf index")
	}
}
