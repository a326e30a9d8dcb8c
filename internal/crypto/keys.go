package crypto

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
)

// PublicKeySize and SecretKeySize mirror ed25519's raw key widths.
const (
	PublicKeySize    = ed25519.PublicKeySize
	SecretKeySize    = ed25519.SeedSize
	SignatureSize    = ed25519.SignatureSize
)

// ErrInvalidPublicKey is returned when a public key fails to parse or verify.
var ErrInvalidPublicKey = errors.New("crypto: invalid public key")

// ErrInvalidSignature is returned by Verify on any signature mismatch or
// malformed input — the caller never learns which.
var ErrInvalidSignature = errors.New("crypto: invalid signature")

// PublicKey is a raw 32-byte Ed25519 public key.
type PublicKey [PublicKeySize]byte

// ZeroPublicKey is the default/unset public key value.
var ZeroPublicKey = PublicKey{}

func (pk PublicKey) Bytes() []byte {
	b := make([]byte, PublicKeySize)
	copy(b, pk[:])
	return b
}

func (pk PublicKey) Hex() string { return hex.EncodeToString(pk[:]) }

func (pk PublicKey) String() string { return pk.Hex() }

func (pk PublicKey) ed25519() ed25519.PublicKey { return ed25519.PublicKey(pk[:]) }

func PublicKeyFromBytes(b []byte) (PublicKey, error) {
	var pk PublicKey
	if len(b) != PublicKeySize {
		return pk, fmt.Errorf("%w: length %d", ErrInvalidPublicKey, len(b))
	}
	copy(pk[:], b)
	return pk, nil
}

func PublicKeyFromHex(s string) (PublicKey, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return PublicKey{}, fmt.Errorf("%w: %v", ErrInvalidPublicKey, err)
	}
	return PublicKeyFromBytes(b)
}

func (pk PublicKey) MarshalText() ([]byte, error) { return []byte(pk.Hex()), nil }

func (pk *PublicKey) UnmarshalText(text []byte) error {
	decoded, err := PublicKeyFromHex(string(text))
	if err != nil {
		return err
	}
	*pk = decoded
	return nil
}

// SecretKey is an Ed25519 signing key. It deliberately has no JSON/YAML
// marshaling so it never round-trips through a config file by accident.
type SecretKey struct {
	priv ed25519.PrivateKey
}

func GenerateKeyPair() (SecretKey, PublicKey, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return SecretKey{}, PublicKey{}, fmt.Errorf("crypto: generate key: %w", err)
	}
	var pk PublicKey
	copy(pk[:], pub)
	return SecretKey{priv: priv}, pk, nil
}

// SecretKeyFromSeed reconstructs a signing key from its 32-byte seed.
func SecretKeyFromSeed(seed []byte) (SecretKey, error) {
	if len(seed) != SecretKeySize {
		return SecretKey{}, fmt.Errorf("crypto: invalid seed length %d", len(seed))
	}
	return SecretKey{priv: ed25519.NewKeyFromSeed(seed)}, nil
}

func (sk SecretKey) PublicKey() PublicKey {
	var pk PublicKey
	copy(pk[:], sk.priv.Public().(ed25519.PublicKey))
	return pk
}

func (sk SecretKey) Seed() []byte { return sk.priv.Seed() }

// Hex returns the signing key's 32-byte seed, hex-encoded. This is the
// form key files on disk and keygen output use.
func (sk SecretKey) Hex() string { return hex.EncodeToString(sk.Seed()) }

// SecretKeyFromHex reconstructs a signing key from its hex-encoded seed.
func SecretKeyFromHex(s string) (SecretKey, error) {
	seed, err := hex.DecodeString(s)
	if err != nil {
		return SecretKey{}, fmt.Errorf("crypto: decode secret key hex: %w", err)
	}
	return SecretKeyFromSeed(seed)
}

// Sign signs message with sk, producing a raw 64-byte Ed25519 signature.
func Sign(sk SecretKey, message []byte) Signature {
	var sig Signature
	copy(sig[:], ed25519.Sign(sk.priv, message))
	return sig
}

// Verify checks sig over message under pk. Any malformed input or mismatch
// collapses to ErrInvalidSignature — callers never distinguish the cause.
func Verify(pk PublicKey, message []byte, sig Signature) error {
	if !ed25519.Verify(pk.ed25519(), message, sig[:]) {
		return ErrInvalidSignature
	}
	return nil
}

// Signature is a raw 64-byte Ed25519 signature.
type Signature [SignatureSize]byte

func (s Signature) Bytes() []byte {
	b := make([]byte, SignatureSize)
	copy(b, s[:])
	return b
}

func (s Signature) Hex() string { return hex.EncodeToString(s[:]) }

func SignatureFromBytes(b []byte) (Signature, error) {
	var s Signature
	if len(b) != SignatureSize {
		return s, fmt.Errorf("%w: length %d", ErrInvalidSignature, len(b))
	}
	copy(s[:], b)
	return s, nil
}

func (s Signature) MarshalText() ([]byte, error) { return []byte(s.Hex()), nil }

func (s *Signature) UnmarshalText(text []byte) error {
	b, err := hex.DecodeString(string(text))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	decoded, err := SignatureFromBytes(b)
	if err != nil {
		return err
	}
	*s = decoded
	return nil
}
