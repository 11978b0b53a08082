package utils

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestByteReaderValues(t *testing.T) {
	data := NewByteWriter().U8(0x12).U16(0x3456).U32(0x789abcde).Extended(0x20).Extended(0x1234).String("abc").Bytes()
	br := NewByteReader("test", data)

	v8, err := br.ReadU8()
	require.NoError(t, err)
	assert.EqualValues(t, 0x12, v8)

	v16, err := br.ReadU16()
	require.NoError(t, err)
	assert.EqualValues(t, 0x3456, v16)

	v32, err := br.ReadU32()
	require.NoError(t, err)
	assert.EqualValues(t, 0x789abcde, v32)

	e1, err := br.ReadExtended()
	require.NoError(t, err)
	assert.EqualValues(t, 0x20, e1)

	e2, err := br.ReadExtended()
	require.NoError(t, err)
	assert.EqualValues(t, 0x1234, e2)

	s, err := br.ReadString()
	require.NoError(t, err)
	assert.Equal(t, "abc", string(s))
	assert.False(t, br.HasData())
}

var overrunTests = []struct {
	name string
	data []byte
	read func(br *ByteReader) error
}{
	{"u8", []byte{}, func(br *ByteReader) error { _, err := br.ReadU8(); return err }},
	{"u16", []byte{1}, func(br *ByteReader) error { _, err := br.ReadU16(); return err }},
	{"u32", []byte{1, 2, 3}, func(br *ByteReader) error { _, err := br.ReadU32(); return err }},
	{"extended", []byte{0xFF, 1}, func(br *ByteReader) error { _, err := br.ReadExtended(); return err }},
	{"bytes", []byte{1, 2}, func(br *ByteReader) error { _, err := br.ReadBytes(3); return err }},
	{"skip", []byte{1, 2}, func(br *ByteReader) error { return br.Skip(5) }},
	{"var", []byte{1, 2}, func(br *ByteReader) error { _, err := br.ReadVar(4); return err }},
	{"sub", []byte{1, 2}, func(br *ByteReader) error { _, err := br.Sub("x", 4); return err }},
	{"string", []byte{}, func(br *ByteReader) error { _, err := br.ReadString(); return err }},
}

func TestByteReaderOverrun(t *testing.T) {
	for _, test := range overrunTests {
		t.Run(test.name, func(t *testing.T) {
			br := NewByteReader("test", test.data)
			err := test.read(br)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrUnexpectedEnd), "error %v is not ErrUnexpectedEnd", err)
			assert.Equal(t, len(test.data), br.Pos())
			assert.Equal(t, 0, br.Remaining())
		})
	}
}

func TestByteReaderUnterminatedString(t *testing.T) {
	var warned int
	br := NewByteReader("test", []byte("abcd"))
	br.Warn = func(format string, args ...interface{}) { warned++ }

	s, err := br.ReadString()
	require.NoError(t, err)
	assert.Equal(t, "abc", string(s))
	assert.Equal(t, 1, warned)
	assert.Equal(t, 0, br.Remaining())
}

func TestByteReaderSubAndReset(t *testing.T) {
	br := NewByteReader("test", []byte{1, 2, 3, 4, 5})
	require.NoError(t, br.Skip(1))
	mark := br.Mark()

	sub, err := br.Sub("sub", 2)
	require.NoError(t, err)
	assert.Equal(t, 1, sub.Offset())
	assert.Equal(t, 2, sub.Remaining())
	assert.Equal(t, 3, br.Pos())

	_, err = sub.ReadU16()
	require.NoError(t, err)
	_, err = sub.ReadU8()
	assert.Error(t, err)

	br.Reset(mark)
	v, err := br.ReadU8()
	require.NoError(t, err)
	assert.EqualValues(t, 2, v)
}

func TestByteReaderStaysInBounds(t *testing.T) {
	br := NewByteReader("test", []byte{1, 2, 3, 4, 5})
	sub, err := br.Sub("sub", 2)
	require.NoError(t, err)
	// nothing of the parent is reachable through the sub reader
	assert.Equal(t, 2, cap(sub.Rest()))

	assert.Error(t, br.Skip(-1))
	assert.Equal(t, 5, br.Pos())

	br.Reset(100)
	assert.Equal(t, 5, br.Pos())
	assert.Equal(t, 0, cap(br.Rest()))
	br.Reset(-3)
	assert.Equal(t, 0, br.Pos())
}
