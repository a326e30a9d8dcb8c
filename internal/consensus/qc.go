package consensus

import (
	"github.com/agentledger/chain/internal/crypto"
	"github.com/agentledger/chain/internal/types"
)

// QcBuilder accumulates validator signatures for one block hash until
// quorum is reached. Unlike QuorumCertificate.AddSignature, it validates
// eagerly: every signature must come from a known validator and must
// verify over the block hash before it is accepted.
type QcBuilder struct {
	qc          *types.QuorumCertificate
	isValidator map[crypto.PublicKey]bool
	threshold   int
}

// NewQcBuilder starts accumulating signatures over blockHash from the
// given validator set, requiring threshold distinct signatures for quorum.
func NewQcBuilder(blockHash crypto.Hash, validators []crypto.PublicKey, threshold int) *QcBuilder {
	isValidator := make(map[crypto.PublicKey]bool, len(validators))
	for _, v := range validators {
		isValidator[v] = true
	}
	return &QcBuilder{qc: types.NewQuorumCertificate(blockHash), isValidator: isValidator, threshold: threshold}
}

// AddSignature verifies sig over the builder's block hash and that
// validatorPubkey belongs to the validator set, then records it. A second
// signature from the same validator is a no-op, matching
// QuorumCertificate.AddSignature. It returns the resulting has-quorum
// state so callers can stop gathering as soon as it flips true.
func (b *QcBuilder) AddSignature(validatorPubkey crypto.PublicKey, sig crypto.Signature) (bool, error) {
	if !b.isValidator[validatorPubkey] {
		return b.HasQuorum(), types.ErrValidatorNotFound(validatorPubkey)
	}
	if err := crypto.Verify(validatorPubkey, b.qc.BlockHash.Bytes(), sig); err != nil {
		return b.HasQuorum(), types.ErrInvalidBlock("invalid quorum certificate signature")
	}
	b.qc.AddSignature(validatorPubkey, sig)
	return b.HasQuorum(), nil
}

// HasQuorum reports whether enough distinct signatures have been collected.
func (b *QcBuilder) HasQuorum() bool {
	return b.qc.HasQuorum(b.threshold)
}

// Build returns the accumulated certificate once quorum is reached, or
// (nil, false) otherwise.
func (b *QcBuilder) Build() (*types.QuorumCertificate, bool) {
	if !b.HasQuorum() {
		return nil, false
	}
	return b.qc, true
}

// VerifyQC checks that qc carries at least threshold valid, distinct
// signatures from validators over blockHash.
func VerifyQC(qc *types.QuorumCertificate, blockHash crypto.Hash, validators []crypto.PublicKey, threshold int) error {
	if qc.BlockHash != blockHash {
		return types.ErrInvalidBlock("quorum certificate block hash mismatch")
	}
	if err := qc.VerifySignatures(validators); err != nil {
		return err
	}
	if !qc.HasQuorum(threshold) {
		return types.ErrInsufficientSignatures(uint64(qc.SignatureCount()), uint64(threshold))
	}
	return nil
}
