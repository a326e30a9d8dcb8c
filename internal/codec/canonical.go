// Package codec implements the ledger's single canonical byte encoding.
// Every hashed preimage (transaction signing bytes, transaction hash, block
// header hash, agent-certificate signing bytes, state-root leaves) is built
// with this encoder. The layout is part of the consensus contract: change
// it and every node computes different hashes.
//
// Encoding rules: fixed-width little-endian integers, length-prefixed byte
// strings and UTF-8 strings (uint32 LE length), length-prefixed sequences
// (uint32 LE count followed by each element in order), and map-like
// collections encoded by the caller after sorting by key bytes. Preimages
// are compared as opaque byte strings or hashed; where an encoding has to
// be read back (operation payloads in internal/wire), Reader decodes it.
package codec

import (
	"bytes"
	"encoding/binary"
)

// Writer accumulates a canonical byte encoding.
type Writer struct {
	buf bytes.Buffer
}

// NewWriter returns an empty Writer.
func NewWriter() *Writer {
	return &Writer{}
}

// Bytes returns the accumulated encoding.
func (w *Writer) Bytes() []byte {
	return w.buf.Bytes()
}

// Byte writes a single raw byte (used for enum tags).
func (w *Writer) Byte(v byte) *Writer {
	w.buf.WriteByte(v)
	return w
}

// Uint8 writes a single byte.
func (w *Writer) Uint8(v uint8) *Writer {
	w.buf.WriteByte(v)
	return w
}

// Uint32 writes a uint32 little-endian.
func (w *Writer) Uint32(v uint32) *Writer {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	w.buf.Write(b[:])
	return w
}

// Uint64 writes a uint64 little-endian.
func (w *Writer) Uint64(v uint64) *Writer {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	w.buf.Write(b[:])
	return w
}

// Int64 writes a signed int64 little-endian (used only for non-hashed,
// non-consensus-critical auxiliary encodings such as settlement deltas).
func (w *Writer) Int64(v int64) *Writer {
	return w.Uint64(uint64(v))
}

// Bool writes a single byte: 1 for true, 0 for false.
func (w *Writer) Bool(v bool) *Writer {
	if v {
		return w.Uint8(1)
	}
	return w.Uint8(0)
}

// RawFixed writes b verbatim with no length prefix — for fixed-width fields
// (32-byte hashes, 32-byte public keys) whose width is already known to the
// reader from the type system.
func (w *Writer) RawFixed(b []byte) *Writer {
	w.buf.Write(b)
	return w
}

// BytesField writes a length-prefixed (uint32 LE) byte string.
func (w *Writer) BytesField(b []byte) *Writer {
	w.Uint32(uint32(len(b)))
	w.buf.Write(b)
	return w
}

// String writes a length-prefixed (uint32 LE) UTF-8 string.
func (w *Writer) String(s string) *Writer {
	return w.BytesField([]byte(s))
}

// SeqLen writes a sequence's element count. Callers encode elements
// themselves, in insertion order, immediately after.
func (w *Writer) SeqLen(n int) *Writer {
	return w.Uint32(uint32(n))
}

// SortedKeys returns a copy of keys sorted by their raw byte representation,
// for deterministic map encoding. Callers supply keys already as []byte.
func SortedKeys(keys [][]byte) [][]byte {
	out := make([][]byte, len(keys))
	copy(out, keys)
	// insertion sort is fine here: map key counts in this ledger are small
	// (validators, namespaces) and callers needing large sorts use sort.Slice
	// directly against their own key type.
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && bytes.Compare(out[j-1], out[j]) > 0; j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}
