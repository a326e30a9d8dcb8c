// Package crypto wraps the ledger's cryptographic primitives: BLAKE3 hashing,
// Ed25519 signing, and hex encoding. Every byte layout here is part of the
// consensus contract — nodes that hash or sign differently cannot agree on
// state roots or block hashes.
package crypto

import (
	"encoding/hex"
	"fmt"

	"lukechampine.com/blake3"
)

// HashSize is the fixed width of a Hash in bytes.
const HashSize = 32

// Hash is an opaque 32-byte BLAKE3 digest with a total lexicographic order.
type Hash [HashSize]byte

// ZeroHash is the sentinel hash used for genesis prev_hash, the native
// token id, and any other "no value" slot.
var ZeroHash = Hash{}

// HashBytes returns the BLAKE3-256 digest of data.
func HashBytes(data []byte) Hash {
	return Hash(blake3.Sum256(data))
}

// IsZero reports whether h is the all-zero sentinel.
func (h Hash) IsZero() bool {
	return h == ZeroHash
}

// Bytes returns the hash's underlying 32 bytes.
func (h Hash) Bytes() []byte {
	b := make([]byte, HashSize)
	copy(b, h[:])
	return b
}

// Compare returns -1, 0, or 1 ordering h against other, lexicographically.
func (h Hash) Compare(other Hash) int {
	for i := range h {
		if h[i] != other[i] {
			if h[i] < other[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}

// Hex returns the lowercase hex encoding of h.
func (h Hash) Hex() string {
	return hex.EncodeToString(h[:])
}

func (h Hash) String() string {
	return h.Hex()
}

// HashFromBytes builds a Hash from a 32-byte slice.
func HashFromBytes(b []byte) (Hash, error) {
	var h Hash
	if len(b) != HashSize {
		return h, fmt.Errorf("crypto: invalid hash length %d, want %d", len(b), HashSize)
	}
	copy(h[:], b)
	return h, nil
}

// HashFromHex decodes a hex string into a Hash.
func HashFromHex(s string) (Hash, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return Hash{}, fmt.Errorf("crypto: invalid hash hex: %w", err)
	}
	return HashFromBytes(b)
}

// MarshalText implements encoding.TextMarshaler so Hash round-trips through
// JSON and YAML as a hex string.
func (h Hash) MarshalText() ([]byte, error) {
	return []byte(h.Hex()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (h *Hash) UnmarshalText(text []byte) error {
	decoded, err := HashFromHex(string(text))
	if err != nil {
		return err
	}
	*h = decoded
	return nil
}
