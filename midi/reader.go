package midi

import (
	"bufio"
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
)

// Reader is a position-tracked big-endian reader over a buffered source.
type Reader struct {
	r     *bufio.Reader
	off   int64
	limit int64
}

// NewReader buffers r with room for a lookahead of window bytes. A positive
// limit caps the total number of bytes that may be consumed.
func NewReader(r io.Reader, window int, limit int64) *Reader {
	if window < 16 {
		window = 16
	}
	return &Reader{r: bufio.NewReaderSize(r, window), limit: limit}
}

func (r *Reader) Offset() int64 {
	return r.off
}

func (r *Reader) fail(err error) error {
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return ErrTruncated
	}
	return errors.Wrap(ErrIO, err.Error())
}

func (r *Reader) grow(n int64) error {
	if r.limit > 0 && r.off+n > r.limit {
		return errors.Wrapf(ErrIO, "input exceeds %d bytes", r.limit)
	}
	return nil
}

func (r *Reader) ReadByte() (b byte, err error) {
	if err = r.grow(1); err != nil {
		return
	}
	b, err = r.r.ReadByte()
	if err != nil {
		return 0, r.fail(err)
	}
	r.off++
	return
}

// ReadFull reads exactly len(p) bytes.
func (r *Reader) ReadFull(p []byte) (err error) {
	if err = r.grow(int64(len(p))); err != nil {
		return
	}
	n, err := io.ReadFull(r.r, p)
	r.off += int64(n)
	if err != nil {
		return r.fail(err)
	}
	return
}

func (r *Reader) ReadUint16() (uint16, error) {
	var b [2]byte
	if err := r.ReadFull(b[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b[:]), nil
}

func (r *Reader) ReadUint32() (uint32, error) {
	var b [4]byte
	if err := r.ReadFull(b[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b[:]), nil
}

// Peek returns up to n upcoming bytes without consuming them. A short
// result at the end of input is not an error.
func (r *Reader) Peek(n int) ([]byte, error) {
	b, err := r.r.Peek(n)
	if err != nil && err != io.EOF {
		return b, r.fail(err)
	}
	return b, nil
}

func (r *Reader) Discard(n int) error {
	if err := r.grow(int64(n)); err != nil {
		return err
	}
	d, err := r.r.Discard(n)
	r.off += int64(d)
	if err != nil {
		return r.fail(err)
	}
	return nil
}

// ByteReader is the source ReadVarUint draws from.
type ByteReader interface {
	ReadByte() (byte, error)
}

// MaxVarUint is the largest value a 4-byte variable-length quantity holds.
const MaxVarUint = 0x0FFFFFFF

// ReadVarUint decodes a variable-length quantity of at most 4 bytes and
// returns the value and the number of bytes it occupied.
func ReadVarUint(r ByteReader) (u uint32, n int, err error) {
	var b byte
	for {
		b, err = r.ReadByte()
		if err != nil {
			return
		}
		n++
		u = u<<7 | uint32(b&0x7F)
		if b < 0x80 {
			return
		}
		if n == 4 {
			return u, n, errors.Wrap(ErrFormat, "variable-length quantity longer than 4 bytes")
		}
	}
}

// AppendVarUint appends the variable-length encoding of u to b.
func AppendVarUint(b []byte, u uint32) []byte {
	var tmp [5]byte
	i := len(tmp) - 1
	tmp[i] = byte(u & 0x7F)
	for u >>= 7; u > 0; u >>= 7 {
		i--
		tmp[i] = byte(u&0x7F) | 0x80
	}
	return append(b, tmp[i:]...)
}
