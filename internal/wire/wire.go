// Package wire converts the ledger's core types to and from RLP, the byte
// format used for on-disk block storage and for shipping blocks and
// transactions between validators over the network transport. RLP cannot
// encode the Op interface's polymorphism directly, so every operation is
// flattened to a (tag, canonical-payload) pair before encoding and
// reconstructed from that pair on decode.
package wire

import (
	"fmt"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/agentledger/chain/internal/crypto"
	"github.com/agentledger/chain/internal/types"
)

// rlpOp is the wire form of a types.Op: its tag byte plus its canonical
// encoding, opaque to RLP but reconstructable via decodeOp.
type rlpOp struct {
	Tag     uint8
	Payload []byte
}

type rlpTransaction struct {
	SenderPubkey [32]byte
	Nonce        uint64
	Fee          uint64
	Ops          []rlpOp
	Signature    [64]byte
}

type rlpBlock struct {
	ChainID        string
	Height         uint64
	PrevHash       [32]byte
	Timestamp      uint64
	TxRoot         [32]byte
	StateRoot      [32]byte
	ProposerPubkey [32]byte
	Txs            []rlpTransaction
	QCBlockHash    [32]byte
	QCValidators   [][32]byte
	QCSignatures   [][64]byte
}

// EncodeBlock serializes a block for storage or network transmission.
func EncodeBlock(b *types.Block) ([]byte, error) {
	rb, err := toRLPBlock(b)
	if err != nil {
		return nil, err
	}
	return rlp.EncodeToBytes(rb)
}

// DecodeBlock reconstructs a block from EncodeBlock's output.
func DecodeBlock(data []byte) (*types.Block, error) {
	var rb rlpBlock
	if err := rlp.DecodeBytes(data, &rb); err != nil {
		return nil, fmt.Errorf("decode block: %w", err)
	}
	return fromRLPBlock(&rb)
}

func toRLPBlock(b *types.Block) (*rlpBlock, error) {
	rb := &rlpBlock{
		ChainID:        b.Header.ChainID,
		Height:         b.Header.Height,
		PrevHash:       [32]byte(b.Header.PrevHash),
		Timestamp:      b.Header.Timestamp,
		TxRoot:         [32]byte(b.Header.TxRoot),
		StateRoot:      [32]byte(b.Header.StateRoot),
		ProposerPubkey: [32]byte(b.Header.ProposerPubkey),
	}
	for _, tx := range b.Txs {
		rtx, err := toRLPTransaction(tx)
		if err != nil {
			return nil, err
		}
		rb.Txs = append(rb.Txs, *rtx)
	}
	if b.QC != nil {
		rb.QCBlockHash = [32]byte(b.QC.BlockHash)
		for _, s := range b.QC.Signatures {
			rb.QCValidators = append(rb.QCValidators, [32]byte(s.ValidatorPubkey))
			rb.QCSignatures = append(rb.QCSignatures, [64]byte(s.Signature))
		}
	}
	return rb, nil
}

func fromRLPBlock(rb *rlpBlock) (*types.Block, error) {
	b := &types.Block{
		Header: types.BlockHeader{
			ChainID:        rb.ChainID,
			Height:         rb.Height,
			PrevHash:       crypto.Hash(rb.PrevHash),
			Timestamp:      rb.Timestamp,
			TxRoot:         crypto.Hash(rb.TxRoot),
			StateRoot:      crypto.Hash(rb.StateRoot),
			ProposerPubkey: crypto.PublicKey(rb.ProposerPubkey),
		},
	}
	for _, rtx := range rb.Txs {
		tx, err := fromRLPTransaction(&rtx)
		if err != nil {
			return nil, err
		}
		b.Txs = append(b.Txs, tx)
	}
	if len(rb.QCValidators) > 0 {
		qc := types.NewQuorumCertificate(crypto.Hash(rb.QCBlockHash))
		for i, v := range rb.QCValidators {
			qc.AddSignature(crypto.PublicKey(v), crypto.Signature(rb.QCSignatures[i]))
		}
		b.QC = qc
	}
	return b, nil
}

// EncodeTransaction serializes a single transaction.
func EncodeTransaction(tx *types.Transaction) ([]byte, error) {
	rtx, err := toRLPTransaction(tx)
	if err != nil {
		return nil, err
	}
	return rlp.EncodeToBytes(rtx)
}

// DecodeTransaction reconstructs a transaction from EncodeTransaction's
// output.
func DecodeTransaction(data []byte) (*types.Transaction, error) {
	var rtx rlpTransaction
	if err := rlp.DecodeBytes(data, &rtx); err != nil {
		return nil, fmt.Errorf("decode transaction: %w", err)
	}
	return fromRLPTransaction(&rtx)
}

func toRLPTransaction(tx *types.Transaction) (*rlpTransaction, error) {
	rtx := &rlpTransaction{
		SenderPubkey: [32]byte(tx.SenderPubkey),
		Nonce:        tx.Nonce,
		Fee:          tx.Fee,
		Signature:    [64]byte(tx.Signature),
	}
	for _, op := range tx.Ops {
		encoded, err := encodeOp(op)
		if err != nil {
			return nil, err
		}
		rtx.Ops = append(rtx.Ops, encoded)
	}
	return rtx, nil
}

func fromRLPTransaction(rtx *rlpTransaction) (*types.Transaction, error) {
	tx := &types.Transaction{
		SenderPubkey: crypto.PublicKey(rtx.SenderPubkey),
		Nonce:        rtx.Nonce,
		Fee:          rtx.Fee,
		Signature:    crypto.Signature(rtx.Signature),
	}
	for _, rop := range rtx.Ops {
		op, err := decodeOp(rop)
		if err != nil {
			return nil, err
		}
		tx.Ops = append(tx.Ops, op)
	}
	return tx, nil
}
