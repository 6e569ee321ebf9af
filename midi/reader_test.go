package midi

import (
	"bytes"
	"testing"

	"github.com/pkg/errors"
)

func TestReadVarUint(t *testing.T) {
	cases := []struct {
		in   []byte
		want uint32
	}{
		{[]byte{0x00}, 0},
		{[]byte{0x40}, 0x40},
		{[]byte{0x7F}, 0x7F},
		{[]byte{0x81, 0x00}, 0x80},
		{[]byte{0xC0, 0x00}, 0x2000},
		{[]byte{0xFF, 0x7F}, 0x3FFF},
		{[]byte{0x81, 0x80, 0x00}, 0x4000},
		{[]byte{0xFF, 0xFF, 0x7F}, 0x1FFFFF},
		{[]byte{0x81, 0x80, 0x80, 0x00}, 0x200000},
		{[]byte{0xFF, 0xFF, 0xFF, 0x7F}, MaxVarUint},
	}
	for _, c := range cases {
		got, n, err := ReadVarUint(bytes.NewReader(c.in))
		if err != nil {
			t.Fatalf("% X: %v", c.in, err)
		}
		if got != c.want || n != len(c.in) {
			t.Fatalf("% X => %#x (%d bytes); want %#x (%d bytes)", c.in, got, n, c.want, len(c.in))
		}
		if enc := AppendVarUint(nil, c.want); !bytes.Equal(enc, c.in) {
			t.Fatalf("AppendVarUint(%#x) = % X; want % X", c.want, enc, c.in)
		}
	}
}

func TestVarUintRoundTrip(t *testing.T) {
	check := func(x uint32) {
		enc := AppendVarUint(nil, x)
		if len(enc) > 4 {
			t.Fatalf("%#x encoded to %d bytes", x, len(enc))
		}
		got, n, err := ReadVarUint(bytes.NewReader(enc))
		if err != nil || got != x || n != len(enc) {
			t.Fatalf("round trip %#x => %#x, %d, %v", x, got, n, err)
		}
	}
	for x := uint32(0); x < MaxVarUint; x += 3181 {
		check(x)
	}
	for _, x := range []uint32{0x7F, 0x80, 0x3FFF, 0x4000, 0x1FFFFF, 0x200000, MaxVarUint} {
		check(x)
	}
}

func TestReadVarUintTooLong(t *testing.T) {
	_, _, err := ReadVarUint(bytes.NewReader([]byte{0x80, 0x80, 0x80, 0x80, 0x00}))
	if !errors.Is(err, ErrFormat) {
		t.Fatalf("expected format error, got %v", err)
	}
}

func TestReadVarUintTruncated(t *testing.T) {
	r := NewReader(bytes.NewReader([]byte{0x81, 0x80}), 16, 0)
	_, n, err := ReadVarUint(r)
	if !errors.Is(err, ErrTruncated) {
		t.Fatalf("expected truncated, got %v", err)
	}
	if n != 2 || r.Offset() != 2 {
		t.Fatalf("consumed %d, offset %d", n, r.Offset())
	}
}

func TestReader(t *testing.T) {
	r := NewReader(bytes.NewReader([]byte{0x12, 0x34, 0x56, 0x78, 0x9A, 0xBC, 0xDE, 'x', 'y'}), 16, 0)
	u32, err := r.ReadUint32()
	if err != nil || u32 != 0x12345678 {
		t.Fatalf("ReadUint32 = %#x, %v", u32, err)
	}
	u16, err := r.ReadUint16()
	if err != nil || u16 != 0x9ABC {
		t.Fatalf("ReadUint16 = %#x, %v", u16, err)
	}
	b, err := r.Peek(8)
	if err != nil || !bytes.Equal(b, []byte{0xDE, 'x', 'y'}) {
		t.Fatalf("Peek = % X, %v", b, err)
	}
	if r.Offset() != 6 {
		t.Fatalf("offset after peek %d", r.Offset())
	}
	if err = r.Discard(1); err != nil {
		t.Fatal(err)
	}
	var p [2]byte
	if err = r.ReadFull(p[:]); err != nil || string(p[:]) != "xy" {
		t.Fatalf("ReadFull = %q, %v", p[:], err)
	}
	if _, err = r.ReadByte(); !errors.Is(err, ErrTruncated) {
		t.Fatalf("expected truncated at end, got %v", err)
	}
	if r.Offset() != 9 {
		t.Fatalf("offset %d", r.Offset())
	}
}

func TestReaderLimit(t *testing.T) {
	r := NewReader(bytes.NewReader(make([]byte, 32)), 16, 8)
	var p [8]byte
	if err := r.ReadFull(p[:]); err != nil {
		t.Fatal(err)
	}
	if _, err := r.ReadByte(); !errors.Is(err, ErrIO) {
		t.Fatalf("expected i/o error past limit, got %v", err)
	}
}
