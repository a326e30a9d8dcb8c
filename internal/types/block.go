package types

import (
	"github.com/agentledger/chain/internal/codec"
	"github.com/agentledger/chain/internal/crypto"
)

// BlockHeader carries a block's identity and the commitments its body must
// satisfy.
type BlockHeader struct {
	ChainID        string
	Height         uint64
	PrevHash       crypto.Hash
	Timestamp      uint64
	TxRoot         crypto.Hash
	StateRoot      crypto.Hash
	ProposerPubkey crypto.PublicKey
}

// CanonicalBytes encodes the header for hashing.
func (h *BlockHeader) CanonicalBytes() []byte {
	w := codec.NewWriter()
	w.String(h.ChainID)
	w.Uint64(h.Height)
	w.RawFixed(h.PrevHash.Bytes())
	w.Uint64(h.Timestamp)
	w.RawFixed(h.TxRoot.Bytes())
	w.RawFixed(h.StateRoot.Bytes())
	w.RawFixed(h.ProposerPubkey.Bytes())
	return w.Bytes()
}

// Hash returns the header's content-derived identifier — also the block
// hash, and the value a QuorumCertificate's signatures are made over.
func (h *BlockHeader) Hash() crypto.Hash {
	return crypto.HashBytes(h.CanonicalBytes())
}

// ValidatorSignature is one validator's signature over a block hash.
type ValidatorSignature struct {
	ValidatorPubkey crypto.PublicKey
	Signature       crypto.Signature
}

// QuorumCertificate is the set of validator signatures attesting to a
// block's finality.
type QuorumCertificate struct {
	BlockHash  crypto.Hash
	Signatures []ValidatorSignature
}

// NewQuorumCertificate returns an empty QC over blockHash.
func NewQuorumCertificate(blockHash crypto.Hash) *QuorumCertificate {
	return &QuorumCertificate{BlockHash: blockHash}
}

// AddSignature appends sig if validatorPubkey has not already signed;
// duplicate signatures from the same validator are a no-op.
func (qc *QuorumCertificate) AddSignature(validatorPubkey crypto.PublicKey, sig crypto.Signature) {
	for _, s := range qc.Signatures {
		if s.ValidatorPubkey == validatorPubkey {
			return
		}
	}
	qc.Signatures = append(qc.Signatures, ValidatorSignature{ValidatorPubkey: validatorPubkey, Signature: sig})
}

// SignatureCount returns the number of distinct validator signatures.
func (qc *QuorumCertificate) SignatureCount() int {
	return len(qc.Signatures)
}

// HasQuorum reports whether the certificate already carries at least
// threshold signatures.
func (qc *QuorumCertificate) HasQuorum(threshold int) bool {
	return len(qc.Signatures) >= threshold
}

// VerifySignatures checks that every signature in the certificate is valid
// over BlockHash and was produced by a key in validators, and that no
// validator appears twice. It does not check quorum size — callers combine
// this with HasQuorum.
func (qc *QuorumCertificate) VerifySignatures(validators []crypto.PublicKey) error {
	isValidator := make(map[crypto.PublicKey]bool, len(validators))
	for _, v := range validators {
		isValidator[v] = true
	}
	seen := make(map[crypto.PublicKey]bool, len(qc.Signatures))
	msg := qc.BlockHash.Bytes()
	for _, s := range qc.Signatures {
		if !isValidator[s.ValidatorPubkey] {
			return ErrValidatorNotFound(s.ValidatorPubkey)
		}
		if seen[s.ValidatorPubkey] {
			return ErrInvalidBlock("duplicate validator signature in quorum certificate")
		}
		seen[s.ValidatorPubkey] = true
		if err := crypto.Verify(s.ValidatorPubkey, msg, s.Signature); err != nil {
			return ErrInvalidBlock("invalid quorum certificate signature")
		}
	}
	return nil
}

// QuorumThreshold returns the minimum signature count for Byzantine
// fault-tolerant finality over n validators: floor(n*2/3) + 1.
func QuorumThreshold(numValidators int) int {
	return (numValidators*2)/3 + 1
}

// Block is a header, its ordered transaction body, and (once finalized)
// its quorum certificate.
type Block struct {
	Header BlockHeader
	Txs    []*Transaction
	QC     *QuorumCertificate
}

// Hash returns the block's identifier — its header hash.
func (b *Block) Hash() crypto.Hash {
	return b.Header.Hash()
}

// TxHashes returns each transaction's hash in block order, the leaf set
// fed to the merkle tree that produces TxRoot.
func (b *Block) TxHashes() []crypto.Hash {
	hashes := make([]crypto.Hash, len(b.Txs))
	for i, tx := range b.Txs {
		hashes[i] = tx.Hash()
	}
	return hashes
}

// SignAsValidator produces this validator's signature over the block hash,
// the unit of data a QuorumCertificate collects.
func (b *Block) SignAsValidator(sk crypto.SecretKey) crypto.Signature {
	return crypto.Sign(sk, b.Hash().Bytes())
}

// GenesisConfig describes the chain's initial state: starting balances,
// the issuers trusted to sign agent certificates, and the validator set
// that proposes and certifies blocks from height 1 onward.
type GenesisConfig struct {
	ChainID         string
	Timestamp       uint64
	InitialBalances map[crypto.PublicKey]uint64
	TrustedIssuers  []crypto.PublicKey
	Validators      []crypto.PublicKey
}

// CreateGenesisBlock builds height-0's block: an empty body, a zero
// PrevHash, and a state root computed over the genesis account balances.
// Genesis carries no quorum certificate — it is trusted by construction,
// not certified.
func (g *GenesisConfig) CreateGenesisBlock(stateRoot crypto.Hash) *Block {
	return &Block{
		Header: BlockHeader{
			ChainID:   g.ChainID,
			Height:    0,
			PrevHash:  crypto.ZeroHash,
			Timestamp: g.Timestamp,
			TxRoot:    crypto.ZeroHash,
			StateRoot: stateRoot,
		},
	}
}
