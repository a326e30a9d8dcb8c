package consensus

import (
	"sync"

	"github.com/agentledger/chain/internal/builder"
	"github.com/agentledger/chain/internal/crypto"
	"github.com/agentledger/chain/internal/state"
	"github.com/agentledger/chain/internal/types"
)

// Chain is the single source of truth for committed state, guarded by one
// RWMutex. Readers (block building, RPC queries) take RLock; only
// CommitBlock takes the full Lock. The proposer must never hold the
// writer lock across network I/O — it builds under RLock, releases it,
// gathers peer signatures, then reacquires the writer lock only to apply.
type Chain struct {
	mu         sync.RWMutex
	state      *state.State
	tipHash    crypto.Hash
	tipBlock   *types.Block
	validators []crypto.PublicKey
}

// NewChain starts a Chain from a genesis block and its initial state.
func NewChain(genesis *types.Block, genesisState *state.State, validators []crypto.PublicKey) *Chain {
	return &Chain{
		state:      genesisState,
		tipHash:    genesis.Hash(),
		tipBlock:   genesis,
		validators: validators,
	}
}

// Height returns the height of the last committed block.
func (c *Chain) Height() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tipBlock.Header.Height
}

// TipHash returns the hash of the last committed block.
func (c *Chain) TipHash() crypto.Hash {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tipHash
}

// Validators returns the active validator set.
func (c *Chain) Validators() []crypto.PublicKey {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]crypto.PublicKey, len(c.validators))
	copy(out, c.validators)
	return out
}

// StateSnapshot returns a deep copy of committed state, safe for the
// caller to execute candidate transactions against without taking any
// further lock.
func (c *Chain) StateSnapshot() *state.State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state.Clone()
}

// CommitBlock validates and applies block against the current tip,
// replacing committed state and advancing the tip on success. This is the
// only method that takes the writer lock.
func (c *Chain) CommitBlock(block *types.Block, quorumThreshold int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	newState, err := builder.ApplyBlock(c.state, c.tipHash, block, c.validators, quorumThreshold)
	if err != nil {
		return err
	}
	c.state = newState
	c.tipHash = block.Hash()
	c.tipBlock = block
	return nil
}
