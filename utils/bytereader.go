package utils

import (
	"encoding/binary"
	"fmt"

	"github.com/pkg/errors"
)

var ErrUnexpectedEnd = errors.New("unexpected end of data")

// ByteReader is a forward-only little-endian reader over a fixed slice.
// Every failed read moves the position to the end of the slice.
type ByteReader struct {
	buf  []byte
	pos  int
	base int
	kind string

	// Warn receives non fatal format problems, such as unterminated strings
	Warn func(format string, args ...interface{})
}

func NewByteReader(kind string, b []byte) *ByteReader {
	return &ByteReader{buf: b, kind: kind}
}

func (br *ByteReader) String() string {
	return fmt.Sprintf("reader<%v>[o:0x%x,s:0x%x,p:0x%x]", br.kind, br.base, len(br.buf), br.pos)
}

func (br *ByteReader) fail(want int) error {
	have := len(br.buf) - br.pos
	br.pos = len(br.buf)
	return errors.Wrapf(ErrUnexpectedEnd, "%v: want %d bytes, have %d", br, want, have)
}

func (br *ByteReader) Kind() string { return br.kind }
func (br *ByteReader) Pos() int { return br.pos }
func (br *ByteReader) Offset() int { return br.base + br.pos }
func (br *ByteReader) Size() int { return len(br.buf) }
func (br *ByteReader) Remaining() int { return len(br.buf) - br.pos }
func (br *ByteReader) Has(n int) bool { return n >= 0 && br.Remaining() >= n }
func (br *ByteReader) HasData() bool { return br.pos < len(br.buf) }
func (br *ByteReader) Rest() []byte { return br.buf[br.pos:] }
func (br *ByteReader) Mark() int { return br.pos }
func (br *ByteReader) SetBase(base int) { br.base = base }

// Reset moves back to a position previously returned by Mark.
func (br *ByteReader) Reset(mark int) {
	if mark < 0 {
		mark = 0
	} else if mark > len(br.buf) {
		mark = len(br.buf)
	}
	br.pos = mark
}

func (br *ByteReader) Skip(n int) error {
	if !br.Has(n) {
		return br.fail(n)
	}
	br.pos += n
	return nil
}

func (br *ByteReader) ReadBytes(n int) ([]byte, error) {
	if !br.Has(n) {
		return nil, br.fail(n)
	}
	b := br.buf[br.pos : br.pos+n : br.pos+n]
	br.pos += n
	return b, nil
}

// Sub returns a reader over the next n bytes and advances past them.
func (br *ByteReader) Sub(kind string, n int) (*ByteReader, error) {
	start := br.pos
	b, err := br.ReadBytes(n)
	if err != nil {
		return nil, err
	}
	return &ByteReader{buf: b, base: br.base + start, kind: kind, Warn: br.Warn}, nil
}

func (br *ByteReader) ReadU8() (uint8, error) {
	if !br.Has(1) {
		return 0, br.fail(1)
	}
	v := br.buf[br.pos]
	br.pos++
	return v, nil
}

func (br *ByteReader) ReadU16() (uint16, error) {
	if !br.Has(2) {
		return 0, br.fail(2)
	}
	v := binary.LittleEndian.Uint16(br.buf[br.pos:])
	br.pos += 2
	return v, nil
}

func (br *ByteReader) ReadU32() (uint32, error) {
	if !br.Has(4) {
		return 0, br.fail(4)
	}
	v := binary.LittleEndian.Uint32(br.buf[br.pos:])
	br.pos += 4
	return v, nil
}

func (br *ByteReader) ReadBU32() (uint32, error) {
	if !br.Has(4) {
		return 0, br.fail(4)
	}
	v := binary.BigEndian.Uint32(br.buf[br.pos:])
	br.pos += 4
	return v, nil
}

// ReadVar reads a little-endian value of 1, 2 or 4 bytes.
func (br *ByteReader) ReadVar(width int) (uint32, error) {
	switch width {
	case 1:
		v, err := br.ReadU8()
		return uint32(v), err
	case 2:
		v, err := br.ReadU16()
		return uint32(v), err
	case 4:
		return br.ReadU32()
	}
	return 0, errors.Errorf("%v: unsupported variable width %d", br, width)
}

// ReadExtended reads a byte, or the following word when the byte is 0xFF.
func (br *ByteReader) ReadExtended() (uint16, error) {
	v, err := br.ReadU8()
	if err != nil {
		return 0, err
	}
	if v == 0xFF {
		return br.ReadU16()
	}
	return uint16(v), nil
}

// ReadString reads a NUL terminated string without the terminator.
// When the terminator is missing the last byte of the range is dropped
// in its place and the problem is reported through Warn.
func (br *ByteReader) ReadString() ([]byte, error) {
	if !br.HasData() {
		return nil, br.fail(1)
	}
	rest := br.buf[br.pos:]
	for i, b := range rest {
		if b == 0 {
			br.pos += i + 1
			return rest[:i], nil
		}
	}
	br.pos = len(br.buf)
	if br.Warn != nil {
		br.Warn("string at 0x%x was not terminated with a zero byte", br.Offset()-len(rest))
	}
	return rest[:len(rest)-1], nil
}
