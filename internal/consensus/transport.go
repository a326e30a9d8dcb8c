package consensus

import (
	"context"

	"github.com/agentledger/chain/internal/crypto"
	"github.com/agentledger/chain/internal/types"
)

// Transport lets a proposer gather peer signatures and broadcast a
// committed block without the consensus package knowing whether peers are
// reached over HTTP, in-process channels, or any other wire format.
type Transport interface {
	// RequestSignature sends the candidate block to peer and returns its
	// signature over it, or an error if the peer is unreachable, fails to
	// reproduce the block's declared roots, or refuses. The full block is
	// required, not just its hash: a peer only signs after independently
	// re-executing it (see Proposer.ReceiveProposal).
	RequestSignature(ctx context.Context, peer crypto.PublicKey, block *types.Block) (crypto.Signature, error)

	// BroadcastCommit announces a finalized block (with its quorum
	// certificate attached) to all peers. Delivery is best-effort; callers
	// do not block consensus progress on it.
	BroadcastCommit(ctx context.Context, block *types.Block) error
}
