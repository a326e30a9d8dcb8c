// Package state holds the chain's mutable world: accounts, registered agent
// certificates and their trusted issuers, claims, namespaces and their KV
// data, and registered applications. State exposes a deep Clone so the
// proposer and block validator can execute a candidate block against a
// private copy before committing it.
package state

import (
	"sort"

	"github.com/agentledger/chain/internal/codec"
	"github.com/agentledger/chain/internal/crypto"
	"github.com/agentledger/chain/internal/merkle"
	"github.com/agentledger/chain/internal/types"
)

// State is the full chain world at a given height.
type State struct {
	Height uint64

	Accounts  map[crypto.PublicKey]*types.Account
	Certs     map[crypto.PublicKey]*types.SignedAgentCertificate
	Issuers   map[crypto.Hash]crypto.PublicKey // trusted issuer hash -> issuer pubkey
	Claims    map[crypto.Hash]*types.Claim
	Namespaces map[crypto.Hash]*types.Namespace
	KV        map[crypto.Hash]map[string]types.KvValue // namespace -> key -> value
	Apps      map[crypto.Hash]types.AppMeta
}

// New returns an empty State.
func New() *State {
	return &State{
		Accounts:   make(map[crypto.PublicKey]*types.Account),
		Certs:      make(map[crypto.PublicKey]*types.SignedAgentCertificate),
		Issuers:    make(map[crypto.Hash]crypto.PublicKey),
		Claims:     make(map[crypto.Hash]*types.Claim),
		Namespaces: make(map[crypto.Hash]*types.Namespace),
		KV:         make(map[crypto.Hash]map[string]types.KvValue),
		Apps:       make(map[crypto.Hash]types.AppMeta),
	}
}

// InitGenesis populates State from a GenesisConfig: starting balances and
// the trusted-issuer set. Validators are consensus-layer configuration, not
// chain state, and are not stored here.
func InitGenesis(cfg *types.GenesisConfig) *State {
	s := New()
	for pk, balance := range cfg.InitialBalances {
		s.Accounts[pk] = types.NewAccount(balance)
	}
	for _, issuerPubkey := range cfg.TrustedIssuers {
		s.AddTrustedIssuer(issuerPubkey)
	}
	return s
}

// Clone returns a deep copy of s, safe for a candidate block to mutate
// without affecting the committed state.
func (s *State) Clone() *State {
	out := New()
	out.Height = s.Height

	for pk, acc := range s.Accounts {
		clone := *acc
		clone.Locked = make(map[types.LockId]uint64, len(acc.Locked))
		for k, v := range acc.Locked {
			clone.Locked[k] = v
		}
		out.Accounts[pk] = &clone
	}
	for pk, cert := range s.Certs {
		clone := *cert
		out.Certs[pk] = &clone
	}
	for h, pk := range s.Issuers {
		out.Issuers[h] = pk
	}
	for id, claim := range s.Claims {
		clone := *claim
		clone.Attestations = append([]types.Attestation(nil), claim.Attestations...)
		out.Claims[id] = &clone
	}
	for id, ns := range s.Namespaces {
		clone := *ns
		clone.Allowlist = append([]crypto.PublicKey(nil), ns.Allowlist...)
		out.Namespaces[id] = &clone
	}
	for nsID, keys := range s.KV {
		cloneKeys := make(map[string]types.KvValue, len(keys))
		for k, v := range keys {
			cloneKeys[k] = v
		}
		out.KV[nsID] = cloneKeys
	}
	for id, app := range s.Apps {
		out.Apps[id] = app
	}
	return out
}

// GetAccount returns the account for pk, creating a zero-balance one if
// absent. The returned pointer aliases state — callers mutate it in place.
func (s *State) GetAccount(pk crypto.PublicKey) *types.Account {
	acc, ok := s.Accounts[pk]
	if !ok {
		acc = types.NewAccount(0)
		s.Accounts[pk] = acc
	}
	return acc
}

// IsTrustedIssuer reports whether issuerID names a trusted issuer.
func (s *State) IsTrustedIssuer(issuerID crypto.Hash) bool {
	_, ok := s.Issuers[issuerID]
	return ok
}

// AddTrustedIssuer registers issuerPubkey as trusted under its hash.
func (s *State) AddTrustedIssuer(issuerPubkey crypto.PublicKey) crypto.Hash {
	h := crypto.HashBytes(issuerPubkey.Bytes())
	s.Issuers[h] = issuerPubkey
	return h
}

// CertFor returns the certificate registered for agent pk, if any.
func (s *State) CertFor(pk crypto.PublicKey) (*types.SignedAgentCertificate, bool) {
	c, ok := s.Certs[pk]
	return c, ok
}

// KvGet returns the value stored under key in namespace nsID.
func (s *State) KvGet(nsID crypto.Hash, key string) (types.KvValue, bool) {
	keys, ok := s.KV[nsID]
	if !ok {
		return types.KvValue{}, false
	}
	v, ok := keys[key]
	return v, ok
}

// KvPut writes value under key in namespace nsID, creating the namespace's
// key table if this is its first write.
func (s *State) KvPut(nsID crypto.Hash, key string, value types.KvValue) {
	keys, ok := s.KV[nsID]
	if !ok {
		keys = make(map[string]types.KvValue)
		s.KV[nsID] = keys
	}
	keys[key] = value
}

// KvDelete removes key from namespace nsID.
func (s *State) KvDelete(nsID crypto.Hash, key string) {
	if keys, ok := s.KV[nsID]; ok {
		delete(keys, key)
	}
}

// stateLeaf is one key/value pair contributing to the state root, encoded
// as prefix:key -> canonical value bytes, hashed together.
type stateLeaf struct {
	key   string
	value []byte
}

// Root computes the chain's state root: every account, certificate, trusted
// issuer, claim, namespace, KV entry, and registered app is encoded as a
// prefixed leaf, leaves are sorted by key for determinism, then merkleized.
func (s *State) Root() crypto.Hash {
	var leaves []stateLeaf

	for pk, acc := range s.Accounts {
		leaves = append(leaves, stateLeaf{key: "acc:" + pk.Hex(), value: acc.CanonicalBytes()})
	}
	for pk, cert := range s.Certs {
		w := codec.NewWriter()
		w.RawFixed(cert.Cert.SigningBytes())
		w.RawFixed(cert.IssuerSignature.Bytes())
		leaves = append(leaves, stateLeaf{key: "agt:" + pk.Hex(), value: w.Bytes()})
	}
	for h, pk := range s.Issuers {
		leaves = append(leaves, stateLeaf{key: "iss:" + h.Hex(), value: pk.Bytes()})
	}
	for id, claim := range s.Claims {
		leaves = append(leaves, stateLeaf{key: "clm:" + id.Hex(), value: claim.CanonicalBytes()})
	}
	for id, ns := range s.Namespaces {
		leaves = append(leaves, stateLeaf{key: "ns:" + id.Hex(), value: ns.CanonicalBytes()})
	}
	for nsID, keys := range s.KV {
		for key, value := range keys {
			leaves = append(leaves, stateLeaf{key: "kv:" + nsID.Hex() + ":" + key, value: value.CanonicalBytes()})
		}
	}
	for id, app := range s.Apps {
		leaves = append(leaves, stateLeaf{key: "app:" + id.Hex(), value: app.CanonicalBytes()})
	}

	sort.Slice(leaves, func(i, j int) bool { return leaves[i].key < leaves[j].key })

	hashes := make([]crypto.Hash, len(leaves))
	for i, l := range leaves {
		w := codec.NewWriter()
		w.String(l.key)
		w.BytesField(l.value)
		hashes[i] = crypto.HashBytes(w.Bytes())
	}
	return merkle.Root(hashes)
}
