// Package merkle builds the binary Merkle trees used for a block's
// transaction root and the chain's state root. The algorithm is a
// deterministic binary tree over BLAKE3 hashes: an empty leaf set roots to
// the zero hash, a single leaf roots to itself, and an odd level is padded
// by duplicating its last element before combining pairs.
package merkle

import (
	"errors"
	"fmt"

	"github.com/agentledger/chain/internal/crypto"
)

var (
	ErrLeafNotFound = errors.New("leaf not found in tree")
)

// Root computes the Merkle root over leaves in the given order.
func Root(leaves []crypto.Hash) crypto.Hash {
	if len(leaves) == 0 {
		return crypto.ZeroHash
	}
	if len(leaves) == 1 {
		return leaves[0]
	}

	level := make([]crypto.Hash, len(leaves))
	copy(level, leaves)

	for len(level) > 1 {
		if len(level)%2 == 1 {
			level = append(level, level[len(level)-1])
		}
		next := make([]crypto.Hash, len(level)/2)
		for i := 0; i < len(next); i++ {
			next[i] = combine(level[2*i], level[2*i+1])
		}
		level = next
	}
	return level[0]
}

func combine(left, right crypto.Hash) crypto.Hash {
	buf := make([]byte, 0, 2*crypto.HashSize)
	buf = append(buf, left.Bytes()...)
	buf = append(buf, right.Bytes()...)
	return crypto.HashBytes(buf)
}

// ProofStep is one sibling hash on a leaf's path to the root, tagged with
// which side of the pairing it occupies.
type ProofStep struct {
	Sibling crypto.Hash
	Right   bool // true: sibling is the right operand, current hash is the left
}

// Tree retains every level of a built Merkle tree so inclusion proofs can be
// generated for any leaf after construction.
type Tree struct {
	levels [][]crypto.Hash // levels[0] is the padded leaf level
	root   crypto.Hash
}

// Build constructs a Tree over leaves, retaining intermediate levels for
// proof generation. Matches Root's padding and degenerate-case rules.
func Build(leaves []crypto.Hash) *Tree {
	if len(leaves) == 0 {
		return &Tree{root: crypto.ZeroHash}
	}
	level := make([]crypto.Hash, len(leaves))
	copy(level, leaves)

	t := &Tree{levels: [][]crypto.Hash{level}}
	for len(level) > 1 {
		if len(level)%2 == 1 {
			level = append(level, level[len(level)-1])
			t.levels[len(t.levels)-1] = level
		}
		next := make([]crypto.Hash, len(level)/2)
		for i := 0; i < len(next); i++ {
			next[i] = combine(level[2*i], level[2*i+1])
		}
		t.levels = append(t.levels, next)
		level = next
	}
	t.root = level[0]
	return t
}

// Root returns the tree's computed root.
func (t *Tree) Root() crypto.Hash { return t.root }

// Proof returns the inclusion path for the leaf at index, from the leaf
// level up to (but excluding) the root.
func (t *Tree) Proof(index int) ([]ProofStep, error) {
	if len(t.levels) == 0 || index < 0 || index >= len(t.levels[0]) {
		return nil, fmt.Errorf("%w: index %d", ErrLeafNotFound, index)
	}
	var steps []ProofStep
	idx := index
	for level := 0; level < len(t.levels)-1; level++ {
		siblingIdx := idx ^ 1
		nodes := t.levels[level]
		steps = append(steps, ProofStep{Sibling: nodes[siblingIdx], Right: siblingIdx > idx})
		idx /= 2
	}
	return steps, nil
}

// VerifyProof recomputes the root from leaf through steps and reports
// whether it matches root.
func VerifyProof(leaf crypto.Hash, steps []ProofStep, root crypto.Hash) bool {
	current := leaf
	for _, s := range steps {
		if s.Right {
			current = combine(current, s.Sibling)
		} else {
			current = combine(s.Sibling, current)
		}
	}
	return current == root
}
