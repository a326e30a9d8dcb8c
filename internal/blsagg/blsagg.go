// Package blsagg implements BLS12-381 signature aggregation for the
// gossip layer. Validators relay claim attestations to peers alongside a
// BLS signature over the attestation payload; a node that has collected
// many attestations can fold their signatures into one aggregate
// signature plus one aggregate public key, shrinking what it forwards
// from O(attesters) signatures to one.
//
// This is purely a bandwidth optimization for propagation. It never
// participates in consensus: quorum certificates and every other
// chain-critical signature stay ed25519 (see internal/crypto and
// internal/consensus.VerifyQC). A node that never wires this package up
// still participates correctly; it just relays full attestation sets
// instead of aggregates.
//
// gnark-crypto already sits in the dependency graph as a BLS12-381
// implementation; this package promotes it to a direct import.
package blsagg

import (
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"math/big"
	"sync"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
)

// DomainGossipAttestation separates gossip-relay signatures from any
// other use of a validator's BLS key.
const DomainGossipAttestation = "AGENTLEDGER_GOSSIP_ATTESTATION_V1"

const (
	PrivateKeySize = 32
	PublicKeySize  = 96
	SignatureSize  = 48
)

var (
	initOnce sync.Once
	g2Gen    bls12381.G2Affine
)

func initialize() {
	initOnce.Do(func() {
		_, _, _, g2GenPoint := bls12381.Generators()
		g2Gen = g2GenPoint
	})
}

// PrivateKey is a validator's BLS gossip-signing key, a scalar in Fr.
type PrivateKey struct{ scalar fr.Element }

// PublicKey is a point on G2.
type PublicKey struct{ point bls12381.G2Affine }

// Signature is a point on G1.
type Signature struct{ point bls12381.G1Affine }

// GenerateKeyPair draws a fresh key pair from a secure random source.
func GenerateKeyPair() (*PrivateKey, *PublicKey, error) {
	initialize()
	var sk fr.Element
	if _, err := sk.SetRandom(); err != nil {
		return nil, nil, fmt.Errorf("generate random scalar: %w", err)
	}
	priv := &PrivateKey{scalar: sk}
	return priv, priv.PublicKey(), nil
}

// PrivateKeyFromBytes deserializes a 32-byte scalar.
func PrivateKeyFromBytes(data []byte) (*PrivateKey, error) {
	if len(data) != PrivateKeySize {
		return nil, fmt.Errorf("bls: invalid private key size: got %d, want %d", len(data), PrivateKeySize)
	}
	var sk fr.Element
	sk.SetBytes(data)
	return &PrivateKey{scalar: sk}, nil
}

// PublicKeyFromBytes deserializes a compressed G2 point, as produced by
// Bytes.
func PublicKeyFromBytes(data []byte) (*PublicKey, error) {
	initialize()
	var pk bls12381.G2Affine
	if _, err := pk.SetBytes(data); err != nil {
		return nil, fmt.Errorf("bls: deserialize public key: %w", err)
	}
	return &PublicKey{point: pk}, nil
}

// SignatureFromBytes deserializes a compressed G1 point.
func SignatureFromBytes(data []byte) (*Signature, error) {
	initialize()
	var sig bls12381.G1Affine
	if _, err := sig.SetBytes(data); err != nil {
		return nil, fmt.Errorf("bls: deserialize signature: %w", err)
	}
	return &Signature{point: sig}, nil
}

func (sk *PrivateKey) Bytes() []byte {
	b := sk.scalar.Bytes()
	return b[:]
}

// PublicKey derives pk = sk * G2.
func (sk *PrivateKey) PublicKey() *PublicKey {
	var pk bls12381.G2Affine
	var skBig big.Int
	sk.scalar.BigInt(&skBig)
	pk.ScalarMultiplication(&g2Gen, &skBig)
	return &PublicKey{point: pk}
}

// Sign signs domain||payload: sig = sk * H(domain||payload).
func (sk *PrivateKey) Sign(payload []byte) *Signature {
	h := hashToG1(domainMessage(payload))
	var sig bls12381.G1Affine
	var skBig big.Int
	sk.scalar.BigInt(&skBig)
	sig.ScalarMultiplication(&h, &skBig)
	return &Signature{point: sig}
}

func (pk *PublicKey) Bytes() []byte {
	b := pk.point.Bytes()
	return b[:]
}

// Verify checks e(sig, G2) == e(H(domain||payload), pk) via a single
// pairing check: e(sig, G2) * e(H(payload), -pk) == 1.
func (pk *PublicKey) Verify(sig *Signature, payload []byte) bool {
	initialize()
	h := hashToG1(domainMessage(payload))

	var negPk bls12381.G2Affine
	negPk.Neg(&pk.point)

	ok, err := bls12381.PairingCheck(
		[]bls12381.G1Affine{sig.point, h},
		[]bls12381.G2Affine{g2Gen, negPk},
	)
	return err == nil && ok
}

func (sig *Signature) Bytes() []byte {
	b := sig.point.Bytes()
	return b[:]
}

// Aggregate folds signatures into one by point addition on G1. Every
// signature must be over the same payload — attestation relay only
// aggregates signatures cast over the identical attestation record.
func Aggregate(signatures []*Signature) (*Signature, error) {
	if len(signatures) == 0 {
		return nil, errors.New("bls: no signatures to aggregate")
	}
	var acc bls12381.G1Jac
	acc.FromAffine(&signatures[0].point)
	for _, s := range signatures[1:] {
		var jac bls12381.G1Jac
		jac.FromAffine(&s.point)
		acc.AddAssign(&jac)
	}
	var result bls12381.G1Affine
	result.FromJacobian(&acc)
	return &Signature{point: result}, nil
}

// AggregatePublicKeys folds public keys by point addition on G2.
func AggregatePublicKeys(keys []*PublicKey) (*PublicKey, error) {
	if len(keys) == 0 {
		return nil, errors.New("bls: no public keys to aggregate")
	}
	var acc bls12381.G2Jac
	acc.FromAffine(&keys[0].point)
	for _, k := range keys[1:] {
		var jac bls12381.G2Jac
		jac.FromAffine(&k.point)
		acc.AddAssign(&jac)
	}
	var result bls12381.G2Affine
	result.FromJacobian(&acc)
	return &PublicKey{point: result}, nil
}

// VerifyAggregate checks an aggregate signature against the public keys
// of every attester who contributed to it, all of whom must have signed
// the same payload.
func VerifyAggregate(aggSig *Signature, keys []*PublicKey, payload []byte) bool {
	if len(keys) == 0 {
		return false
	}
	aggPk, err := AggregatePublicKeys(keys)
	if err != nil {
		return false
	}
	return aggPk.Verify(aggSig, payload)
}

func domainMessage(payload []byte) []byte {
	out := make([]byte, 0, len(DomainGossipAttestation)+len(payload))
	out = append(out, DomainGossipAttestation...)
	out = append(out, payload...)
	return out
}

// hashToG1 maps a message to a point on G1 via hash-and-increment: sha256
// the message under a counter until the digest decodes as a curve point.
func hashToG1(message []byte) bls12381.G1Affine {
	base := sha256.New()
	base.Write([]byte("AGENTLEDGER_BLS_SIG_G1_XMD:SHA-256_"))
	base.Write(message)
	baseSum := base.Sum(nil)

	for counter := uint64(0); ; counter++ {
		h := sha256.New()
		h.Write(baseSum)
		binary.Write(h, binary.BigEndian, counter)
		digest := h.Sum(nil)

		var point bls12381.G1Affine
		if _, err := point.SetBytes(digest); err == nil && !point.IsInfinity() {
			return point
		}
	}
}
