package types

import (
	"github.com/agentledger/chain/internal/codec"
	"github.com/agentledger/chain/internal/crypto"
)

// AppMeta publishes an application's off-chain discovery metadata. None of
// MetadataHash, Namespaces, Schemas, or Recipes are dereferenced or
// validated by any opcode — they are opaque pointers a publisher attaches
// for clients to resolve off-chain.
type AppMeta struct {
	AppID        crypto.Hash
	Version      string
	Publisher    crypto.PublicKey
	MetadataHash crypto.Hash
	Namespaces   []crypto.Hash
	Schemas      []crypto.Hash
	Recipes      []crypto.Hash
	RegisteredAt uint64
}

// ComputeAppID derives an app's content-addressed identifier from its
// publisher and version, so the same publisher cannot silently overwrite an
// existing app by re-registering the same version.
func ComputeAppID(publisher crypto.PublicKey, version string) crypto.Hash {
	w := codec.NewWriter()
	w.RawFixed(publisher.Bytes())
	w.String(version)
	return crypto.HashBytes(w.Bytes())
}

// NewAppMeta builds an AppMeta with a content-derived AppID.
func NewAppMeta(version string, publisher crypto.PublicKey, metadataHash crypto.Hash, namespaces, schemas, recipes []crypto.Hash, registeredAt uint64) AppMeta {
	return AppMeta{
		AppID:        ComputeAppID(publisher, version),
		Version:      version,
		Publisher:    publisher,
		MetadataHash: metadataHash,
		Namespaces:   namespaces,
		Schemas:      schemas,
		Recipes:      recipes,
		RegisteredAt: registeredAt,
	}
}

// CanonicalBytes encodes the metadata deterministically for state-root
// hashing and for inclusion in OpAppRegister's signing bytes.
func (m AppMeta) CanonicalBytes() []byte {
	w := codec.NewWriter()
	w.RawFixed(m.AppID.Bytes())
	w.String(m.Version)
	w.RawFixed(m.Publisher.Bytes())
	w.RawFixed(m.MetadataHash.Bytes())
	w.SeqLen(len(m.Namespaces))
	for _, h := range m.Namespaces {
		w.RawFixed(h.Bytes())
	}
	w.SeqLen(len(m.Schemas))
	for _, h := range m.Schemas {
		w.RawFixed(h.Bytes())
	}
	w.SeqLen(len(m.Recipes))
	for _, h := range m.Recipes {
		w.RawFixed(h.Bytes())
	}
	w.Uint64(m.RegisteredAt)
	return w.Bytes()
}
