package types

import (
	"github.com/agentledger/chain/internal/codec"
	"github.com/agentledger/chain/internal/crypto"
)

// NamespacePolicy controls who may write into a Namespace.
type NamespacePolicy uint8

const (
	PolicyOwnerOnly NamespacePolicy = iota
	PolicyAllowlist
	PolicyStakeGated
)

// Namespace is a KV write-access scope: an owner, a policy, and the policy's
// parameters (allowlist or minimum stake).
type Namespace struct {
	NsID          crypto.Hash
	Owner         crypto.PublicKey
	Policy        NamespacePolicy
	Allowlist     []crypto.PublicKey
	MinWriteStake uint64
}

// CanWrite evaluates the write predicate for writer, given their available
// native balance (used only by StakeGated).
func (n *Namespace) CanWrite(writer crypto.PublicKey, writerBalance uint64) bool {
	switch n.Policy {
	case PolicyOwnerOnly:
		return writer == n.Owner
	case PolicyAllowlist:
		if writer == n.Owner {
			return true
		}
		for _, allowed := range n.Allowlist {
			if allowed == writer {
				return true
			}
		}
		return false
	case PolicyStakeGated:
		return writerBalance >= n.MinWriteStake
	default:
		return false
	}
}

// CanonicalBytes encodes the namespace for state-root hashing.
func (n *Namespace) CanonicalBytes() []byte {
	w := codec.NewWriter()
	w.RawFixed(n.NsID.Bytes())
	w.RawFixed(n.Owner.Bytes())
	w.Uint8(uint8(n.Policy))
	w.SeqLen(len(n.Allowlist))
	for _, pk := range n.Allowlist {
		w.RawFixed(pk.Bytes())
	}
	w.Uint64(n.MinWriteStake)
	return w.Bytes()
}

// KvData is either inline bytes or a reference to off-chain data.
type KvData struct {
	Inline    []byte // non-nil when this is an inline value
	IsRef     bool
	RefHash   crypto.Hash
	RefURI    string
	hasURI    bool
}

func InlineData(b []byte) KvData {
	return KvData{Inline: b}
}

func ReferenceData(hash crypto.Hash, uri string) KvData {
	return KvData{IsRef: true, RefHash: hash, RefURI: uri, hasURI: uri != ""}
}

func (d KvData) HasURI() bool { return d.hasURI }

// KvValue is the value type stored under a namespace key: a codec label
// plus either inline bytes or an off-chain reference.
type KvValue struct {
	Codec string
	Data  KvData
}

func NewInlineValue(codec string, data []byte) KvValue {
	return KvValue{Codec: codec, Data: InlineData(data)}
}

func NewReferenceValue(codec string, hash crypto.Hash, uri string) KvValue {
	return KvValue{Codec: codec, Data: ReferenceData(hash, uri)}
}

// Append implements the ledger's append semantics: inline-onto-inline
// concatenates bytes (keeping the existing codec label); every other
// combination replaces the value outright with the new one.
func Append(existing, incoming KvValue) KvValue {
	if existing.Data.Inline != nil && !existing.Data.IsRef &&
		incoming.Data.Inline != nil && !incoming.Data.IsRef {
		combined := make([]byte, 0, len(existing.Data.Inline)+len(incoming.Data.Inline))
		combined = append(combined, existing.Data.Inline...)
		combined = append(combined, incoming.Data.Inline...)
		return KvValue{Codec: existing.Codec, Data: InlineData(combined)}
	}
	return incoming
}

// CanonicalBytes encodes the value for state-root hashing.
func (v KvValue) CanonicalBytes() []byte {
	w := codec.NewWriter()
	w.String(v.Codec)
	if v.Data.IsRef {
		w.Uint8(1)
		w.RawFixed(v.Data.RefHash.Bytes())
		w.Bool(v.Data.hasURI)
		w.String(v.Data.RefURI)
	} else {
		w.Uint8(0)
		w.BytesField(v.Data.Inline)
	}
	return w.Bytes()
}
