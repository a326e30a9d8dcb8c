package codec_test

import (
	"bytes"
	"testing"

	"github.com/agentledger/chain/internal/codec"
)

func TestWriterReaderRoundTrip(t *testing.T) {
	w := codec.NewWriter()
	w.Uint8(7).Uint32(1234).Uint64(9876543210).Bool(true).Bool(false)
	w.BytesField([]byte{1, 2, 3}).String("hello").RawFixed([]byte{0xAA, 0xBB})
	w.SeqLen(3)

	r := codec.NewReader(w.Bytes())

	if v, err := r.Uint8(); err != nil || v != 7 {
		t.Fatalf("Uint8: got %d, %v", v, err)
	}
	if v, err := r.Uint32(); err != nil || v != 1234 {
		t.Fatalf("Uint32: got %d, %v", v, err)
	}
	if v, err := r.Uint64(); err != nil || v != 9876543210 {
		t.Fatalf("Uint64: got %d, %v", v, err)
	}
	if v, err := r.Bool(); err != nil || v != true {
		t.Fatalf("Bool: got %v, %v", v, err)
	}
	if v, err := r.Bool(); err != nil || v != false {
		t.Fatalf("Bool: got %v, %v", v, err)
	}
	if v, err := r.BytesField(); err != nil || !bytes.Equal(v, []byte{1, 2, 3}) {
		t.Fatalf("BytesField: got %v, %v", v, err)
	}
	if v, err := r.String(); err != nil || v != "hello" {
		t.Fatalf("String: got %q, %v", v, err)
	}
	if v, err := r.RawFixed(2); err != nil || !bytes.Equal(v, []byte{0xAA, 0xBB}) {
		t.Fatalf("RawFixed: got %v, %v", v, err)
	}
	if v, err := r.SeqLen(); err != nil || v != 3 {
		t.Fatalf("SeqLen: got %d, %v", v, err)
	}
}

func TestReaderUnexpectedEOF(t *testing.T) {
	r := codec.NewReader([]byte{1, 2})
	if _, err := r.Uint32(); err == nil {
		t.Fatal("expected error reading past end of buffer")
	}
}

func TestWriterDeterministic(t *testing.T) {
	build := func() []byte {
		w := codec.NewWriter()
		w.Uint64(42).String("agent").BytesField([]byte("payload"))
		return w.Bytes()
	}
	a, b := build(), build()
	if !bytes.Equal(a, b) {
		t.Fatalf("encoding not deterministic: %x != %x", a, b)
	}
}

func TestSortedKeys(t *testing.T) {
	keys := [][]byte{[]byte("zebra"), []byte("apple"), []byte("mango")}
	sorted := codec.SortedKeys(keys)
	want := [][]byte{[]byte("apple"), []byte("mango"), []byte("zebra")}
	for i := range want {
		if !bytes.Equal(sorted[i], want[i]) {
			t.Fatalf("index %d: got %s, want %s", i, sorted[i], want[i])
		}
	}
	// original input must be unmodified.
	if !bytes.Equal(keys[0], []byte("zebra")) {
		t.Fatal("SortedKeys mutated its input")
	}
}
