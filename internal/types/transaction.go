package types

import (
	"github.com/agentledger/chain/internal/codec"
	"github.com/agentledger/chain/internal/crypto"
)

// Op is implemented by every operation a Transaction may carry. The set of
// implementations is closed to the nine variants below; opTag identifies
// which one for canonical encoding.
type Op interface {
	opTag() uint8
	encode(w *codec.Writer)
}

const (
	opTagAgentCertRegister uint8 = iota
	opTagTransfer
	opTagClaimCreate
	opTagAttest
	opTagAppRegister
	opTagKvPut
	opTagKvDel
	opTagKvAppend
	opTagNamespaceCreate
)

// OpAgentCertRegister registers a signed agent certificate issued by a
// trusted issuer. Requires no capability of its own — an unregistered agent
// submits this to bootstrap.
type OpAgentCertRegister struct {
	Cert SignedAgentCertificate
}

func (OpAgentCertRegister) opTag() uint8 { return opTagAgentCertRegister }
func (o OpAgentCertRegister) encode(w *codec.Writer) {
	w.Uint8(o.Cert.Cert.Version)
	w.RawFixed(o.Cert.Cert.IssuerID.Bytes())
	w.RawFixed(o.Cert.Cert.AgentPubkey.Bytes())
	w.RawFixed(o.Cert.Cert.AgentID.Bytes())
	w.Uint64(o.Cert.Cert.IssuedAt)
	w.Uint64(o.Cert.Cert.ExpiresAt)
	w.SeqLen(len(o.Cert.Cert.Capabilities))
	for _, c := range o.Cert.Cert.Capabilities {
		w.Uint8(uint8(c))
	}
	w.RawFixed(o.Cert.Cert.MetadataHash.Bytes())
	w.RawFixed(o.Cert.IssuerSignature.Bytes())
}

// OpTransfer moves amount of the native token from the sender to To.
type OpTransfer struct {
	To     crypto.PublicKey
	Amount uint64
}

func (OpTransfer) opTag() uint8 { return opTagTransfer }
func (o OpTransfer) encode(w *codec.Writer) {
	w.RawFixed(o.To.Bytes())
	w.Uint64(o.Amount)
}

// OpClaimCreate opens a new Claim, staking Stake from the sender as the
// creator's implicit YES vote.
type OpClaimCreate struct {
	ClaimType   string
	PayloadHash crypto.Hash
	Stake       uint64
}

func (OpClaimCreate) opTag() uint8 { return opTagClaimCreate }
func (o OpClaimCreate) encode(w *codec.Writer) {
	w.String(o.ClaimType)
	w.RawFixed(o.PayloadHash.Bytes())
	w.Uint64(o.Stake)
}

// OpAttest casts a staked vote on an existing Claim.
type OpAttest struct {
	ClaimID crypto.Hash
	Vote    Vote
	Stake   uint64
}

func (OpAttest) opTag() uint8 { return opTagAttest }
func (o OpAttest) encode(w *codec.Writer) {
	w.RawFixed(o.ClaimID.Bytes())
	w.Uint8(uint8(o.Vote))
	w.Uint64(o.Stake)
}

// OpAppRegister publishes an application's discovery metadata on-chain.
type OpAppRegister struct {
	Meta AppMeta
}

func (OpAppRegister) opTag() uint8 { return opTagAppRegister }
func (o OpAppRegister) encode(w *codec.Writer) {
	w.RawFixed(o.Meta.CanonicalBytes())
}

// OpKvPut writes Value under Key within namespace NsID, replacing any
// existing value.
type OpKvPut struct {
	NsID  crypto.Hash
	Key   string
	Value KvValue
}

func (OpKvPut) opTag() uint8 { return opTagKvPut }
func (o OpKvPut) encode(w *codec.Writer) {
	w.RawFixed(o.NsID.Bytes())
	w.String(o.Key)
	w.RawFixed(o.Value.CanonicalBytes())
}

// OpKvDel removes Key within namespace NsID.
type OpKvDel struct {
	NsID crypto.Hash
	Key  string
}

func (OpKvDel) opTag() uint8 { return opTagKvDel }
func (o OpKvDel) encode(w *codec.Writer) {
	w.RawFixed(o.NsID.Bytes())
	w.String(o.Key)
}

// OpKvAppend appends Value onto the existing value under Key within
// namespace NsID, per the ledger's append semantics (see types.Append).
type OpKvAppend struct {
	NsID  crypto.Hash
	Key   string
	Value KvValue
}

func (OpKvAppend) opTag() uint8 { return opTagKvAppend }
func (o OpKvAppend) encode(w *codec.Writer) {
	w.RawFixed(o.NsID.Bytes())
	w.String(o.Key)
	w.RawFixed(o.Value.CanonicalBytes())
}

// OpNamespaceCreate creates a new Namespace owned by the sender.
type OpNamespaceCreate struct {
	NsID          crypto.Hash
	Policy        NamespacePolicy
	Allowlist     []crypto.PublicKey
	MinWriteStake uint64
}

func (OpNamespaceCreate) opTag() uint8 { return opTagNamespaceCreate }
func (o OpNamespaceCreate) encode(w *codec.Writer) {
	w.RawFixed(o.NsID.Bytes())
	w.Uint8(uint8(o.Policy))
	w.SeqLen(len(o.Allowlist))
	for _, pk := range o.Allowlist {
		w.RawFixed(pk.Bytes())
	}
	w.Uint64(o.MinWriteStake)
}

// Transaction is a signed, nonce-ordered batch of operations submitted by a
// single sender.
type Transaction struct {
	SenderPubkey crypto.PublicKey
	Nonce        uint64
	Fee          uint64
	Ops          []Op
	Signature    crypto.Signature
}

// SigningBytes returns the canonical encoding the sender signs over —
// everything except Signature itself.
func (tx *Transaction) SigningBytes() []byte {
	w := codec.NewWriter()
	w.RawFixed(tx.SenderPubkey.Bytes())
	w.Uint64(tx.Nonce)
	w.Uint64(tx.Fee)
	w.SeqLen(len(tx.Ops))
	for _, op := range tx.Ops {
		w.Uint8(op.opTag())
		op.encode(w)
	}
	return w.Bytes()
}

// Sign signs the transaction with sk, which must correspond to SenderPubkey.
func (tx *Transaction) Sign(sk crypto.SecretKey) {
	tx.Signature = crypto.Sign(sk, tx.SigningBytes())
}

// NewSignedTransaction builds and signs a transaction in one step.
func NewSignedTransaction(sk crypto.SecretKey, nonce, fee uint64, ops []Op) *Transaction {
	tx := &Transaction{
		SenderPubkey: sk.PublicKey(),
		Nonce:        nonce,
		Fee:          fee,
		Ops:          ops,
	}
	tx.Sign(sk)
	return tx
}

// VerifySignature checks Signature against SenderPubkey and SigningBytes.
func (tx *Transaction) VerifySignature() error {
	return crypto.Verify(tx.SenderPubkey, tx.SigningBytes(), tx.Signature)
}

// Hash returns the transaction's content-derived identifier: the canonical
// encoding including Signature, hashed.
func (tx *Transaction) Hash() crypto.Hash {
	w := codec.NewWriter()
	w.RawFixed(tx.SigningBytes())
	w.RawFixed(tx.Signature.Bytes())
	return crypto.HashBytes(w.Bytes())
}

// EstimatedCost returns the upper bound of native tokens this transaction
// can move out of the sender's balance: the fee plus every transfer amount
// plus every stake-bearing operation's stake.
func (tx *Transaction) EstimatedCost() uint64 {
	cost := tx.Fee
	for _, op := range tx.Ops {
		switch o := op.(type) {
		case OpClaimCreate:
			cost += o.Stake
		case OpAttest:
			cost += o.Stake
		case OpTransfer:
			cost += o.Amount
		}
	}
	return cost
}
