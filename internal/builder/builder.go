// Package builder turns a mempool snapshot into a candidate block, and
// turns a received candidate back into chain-state mutations. Building is
// lenient: a transaction that fails pre-flight or execution is left out of
// the block and returned to the caller in the Dropped list rather than
// aborting the whole block. Verifying a received block is strict: any
// transaction that fails execution fails the whole block, as does a
// mismatch in height, prev hash, quorum certificate, tx root or state
// root. The header's chain id, timestamp and proposer key are not checked.
package builder

import (
	"github.com/agentledger/chain/internal/crypto"
	"github.com/agentledger/chain/internal/execution"
	"github.com/agentledger/chain/internal/mempool"
	"github.com/agentledger/chain/internal/merkle"
	"github.com/agentledger/chain/internal/state"
	"github.com/agentledger/chain/internal/types"
)

// DroppedTx records a mempool transaction that did not make it into a
// built block, and why.
type DroppedTx struct {
	Hash crypto.Hash
	Err  error
}

// Build assembles a candidate block at height on top of tip, pulling up to
// maxTxs transactions from pool in priority order. Transactions are
// executed against a private clone of tip in sequence; any that fail are
// skipped and reported in Dropped, not retried.
func Build(tip *state.State, pool *mempool.Pool, chainID string, height uint64, prevHash crypto.Hash, timestamp uint64, proposer crypto.PublicKey, validators []crypto.PublicKey, maxTxs int) (*types.Block, []DroppedTx) {
	working := tip.Clone()
	working.Height = height

	candidates := pool.Take(maxTxs)
	included := make([]*types.Transaction, 0, len(candidates))
	var dropped []DroppedTx

	for _, tx := range candidates {
		if _, err := execution.ExecuteTransaction(working, tx, height, timestamp, validators); err != nil {
			dropped = append(dropped, DroppedTx{Hash: tx.Hash(), Err: err})
			continue
		}
		included = append(included, tx)
	}

	txHashes := make([]crypto.Hash, len(included))
	for i, tx := range included {
		txHashes[i] = tx.Hash()
	}

	block := &types.Block{
		Header: types.BlockHeader{
			ChainID:        chainID,
			Height:         height,
			PrevHash:       prevHash,
			Timestamp:      timestamp,
			TxRoot:         merkle.Root(txHashes),
			StateRoot:      working.Root(),
			ProposerPubkey: proposer,
		},
		Txs: included,
	}
	return block, dropped
}

// VerifyExecution re-executes block's transactions against a clone of tip
// and confirms the resulting state root and declared tx root both match
// the header. It returns the resulting state (not yet committed) on
// success. Unlike Build, any transaction failure here fails the whole
// block — a leader must only ever propose transactions it already knows
// execute cleanly.
func VerifyExecution(tip *state.State, block *types.Block, validators []crypto.PublicKey) (*state.State, error) {
	working := tip.Clone()
	working.Height = block.Header.Height

	for _, tx := range block.Txs {
		if _, err := execution.ExecuteTransaction(working, tx, block.Header.Height, block.Header.Timestamp, validators); err != nil {
			return nil, types.ErrExecutionFailed(err.Error())
		}
	}

	txHashes := block.TxHashes()
	if merkle.Root(txHashes) != block.Header.TxRoot {
		return nil, types.ErrInvalidBlock("transaction root mismatch")
	}
	if working.Root() != block.Header.StateRoot {
		return nil, types.ErrInvalidStateRoot
	}

	return working, nil
}

// ApplyBlock validates block against chain tip tipHash/tip, re-executes it,
// and on success returns the new committed state. The caller is
// responsible for persisting the result and advancing its tracked tip hash
// to block.Hash().
func ApplyBlock(tip *state.State, tipHash crypto.Hash, block *types.Block, validators []crypto.PublicKey, quorumThreshold int) (*state.State, error) {
	if block.Header.Height != tip.Height+1 {
		return nil, types.ErrHeightMismatch(tip.Height+1, block.Header.Height)
	}
	if block.Header.PrevHash != tipHash {
		return nil, types.ErrPrevHashMismatch
	}
	if block.QC == nil || !block.QC.HasQuorum(quorumThreshold) {
		have := uint64(0)
		if block.QC != nil {
			have = uint64(block.QC.SignatureCount())
		}
		return nil, types.ErrInsufficientSignatures(have, uint64(quorumThreshold))
	}
	if block.QC.BlockHash != block.Hash() {
		return nil, types.ErrInvalidBlock("quorum certificate does not match block hash")
	}
	if err := block.QC.VerifySignatures(validators); err != nil {
		return nil, err
	}

	return VerifyExecution(tip, block, validators)
}
