package codec

import (
	"encoding/binary"
	"fmt"
)

// Reader parses a byte slice written by Writer. It is used only where a
// canonical encoding must be read back — the wire package reconstructing
// an Op from its stored payload. Hashed preimages elsewhere are write-only
// and never parsed.
type Reader struct {
	buf []byte
	pos int
}

// NewReader wraps b for sequential reads.
func NewReader(b []byte) *Reader {
	return &Reader{buf: b}
}

func (r *Reader) need(n int) error {
	if r.pos+n > len(r.buf) {
		return fmt.Errorf("codec: unexpected end of input: need %d bytes, have %d", n, len(r.buf)-r.pos)
	}
	return nil
}

// Uint8 reads a single byte.
func (r *Reader) Uint8() (uint8, error) {
	if err := r.need(1); err != nil {
		return 0, err
	}
	v := r.buf[r.pos]
	r.pos++
	return v, nil
}

// Uint32 reads a uint32 little-endian.
func (r *Reader) Uint32() (uint32, error) {
	if err := r.need(4); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint32(r.buf[r.pos:])
	r.pos += 4
	return v, nil
}

// Uint64 reads a uint64 little-endian.
func (r *Reader) Uint64() (uint64, error) {
	if err := r.need(8); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint64(r.buf[r.pos:])
	r.pos += 8
	return v, nil
}

// Bool reads a single byte as a boolean.
func (r *Reader) Bool() (bool, error) {
	v, err := r.Uint8()
	return v != 0, err
}

// RawFixed reads exactly n bytes verbatim.
func (r *Reader) RawFixed(n int) ([]byte, error) {
	if err := r.need(n); err != nil {
		return nil, err
	}
	v := r.buf[r.pos : r.pos+n]
	r.pos += n
	return v, nil
}

// BytesField reads a length-prefixed (uint32 LE) byte string.
func (r *Reader) BytesField() ([]byte, error) {
	n, err := r.Uint32()
	if err != nil {
		return nil, err
	}
	return r.RawFixed(int(n))
}

// String reads a length-prefixed UTF-8 string.
func (r *Reader) String() (string, error) {
	b, err := r.BytesField()
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// SeqLen reads a sequence's element count.
func (r *Reader) SeqLen() (int, error) {
	n, err := r.Uint32()
	return int(n), err
}
