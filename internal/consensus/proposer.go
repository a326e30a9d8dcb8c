package consensus

import (
	"context"
	"sync"
	"time"

	"github.com/agentledger/chain/internal/builder"
	"github.com/agentledger/chain/internal/crypto"
	"github.com/agentledger/chain/internal/mempool"
	"github.com/agentledger/chain/internal/types"
)

// Proposer drives one validator's participation in block production: when
// it is the leader for a height, it builds a candidate, signs it, gathers
// peer signatures into a quorum certificate, and commits. When it is not
// the leader, ReceiveProposal lets it sign someone else's candidate on
// request.
type Proposer struct {
	chain     *Chain
	pool      *mempool.Pool
	transport Transport
	self      crypto.PublicKey
	secret    crypto.SecretKey
	chainID   string
	maxTxs    int
}

// NewProposer builds a Proposer bound to chain, pool, and transport,
// signing as self/secret.
func NewProposer(chain *Chain, pool *mempool.Pool, transport Transport, self crypto.PublicKey, secret crypto.SecretKey, chainID string, maxTxs int) *Proposer {
	return &Proposer{chain: chain, pool: pool, transport: transport, self: self, secret: secret, chainID: chainID, maxTxs: maxTxs}
}

// ProposeIfLeader builds, certifies, and commits a block for the next
// height if self is that height's leader. It is a no-op (returns nil, nil)
// if self is not the leader.
//
// Per the single-writer contract: the candidate is built against a
// snapshot taken under the chain's reader lock, which is released before
// any network I/O runs. The writer lock is only reacquired, briefly, by
// Chain.CommitBlock at the very end.
func (p *Proposer) ProposeIfLeader(ctx context.Context, now uint64) (*types.Block, error) {
	height := p.chain.Height() + 1
	validators := p.chain.Validators()

	if !IsLeader(validators, height, p.self) {
		return nil, nil
	}

	snapshot := p.chain.StateSnapshot()
	tipHash := p.chain.TipHash()

	block, _ := builder.Build(snapshot, p.pool, p.chainID, height, tipHash, now, p.self, validators, p.maxTxs)

	selfSig := block.SignAsValidator(p.secret)
	threshold := types.QuorumThreshold(len(validators))
	qcBuilder := NewQcBuilder(block.Hash(), validators, threshold)
	if _, err := qcBuilder.AddSignature(p.self, selfSig); err != nil {
		return nil, err
	}

	if err := p.gatherSignatures(ctx, block, validators, qcBuilder); err != nil {
		return nil, err
	}

	qc, ok := qcBuilder.Build()
	if !ok {
		return nil, types.ErrInsufficientSignatures(uint64(qcBuilder.qc.SignatureCount()), uint64(threshold))
	}
	block.QC = qc

	if err := p.chain.CommitBlock(block, threshold); err != nil {
		return nil, err
	}

	for _, tx := range block.Txs {
		p.pool.Remove(tx.Hash())
	}

	_ = p.transport.BroadcastCommit(ctx, block)
	return block, nil
}

// gatherSignatures requests every peer's signature over the candidate
// block concurrently and feeds each into qcBuilder as it arrives, stopping
// early once quorum is reached.
func (p *Proposer) gatherSignatures(ctx context.Context, block *types.Block, validators []crypto.PublicKey, qcBuilder *QcBuilder) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, peer := range validators {
		if peer == p.self {
			continue
		}
		peer := peer
		wg.Add(1)
		go func() {
			defer wg.Done()
			sig, err := p.transport.RequestSignature(ctx, peer, block)
			if err != nil {
				return
			}
			mu.Lock()
			reached, _ := qcBuilder.AddSignature(peer, sig)
			mu.Unlock()
			if reached {
				cancel()
			}
		}()
	}
	wg.Wait()
	return nil
}

// ReceiveProposal lets this validator sign a leader's candidate block if
// it independently re-executes to the same state and tx roots — it never
// trusts the proposer's declared roots.
func (p *Proposer) ReceiveProposal(block *types.Block) (crypto.Signature, error) {
	snapshot := p.chain.StateSnapshot()
	validators := p.chain.Validators()

	if _, err := builder.VerifyExecution(snapshot, block, validators); err != nil {
		return crypto.Signature{}, err
	}
	return block.SignAsValidator(p.secret), nil
}
