package utils

import "encoding/binary"

// ByteWriter accumulates little-endian values, mirroring ByteReader.
type ByteWriter struct {
	buf []byte
}

func NewByteWriter() *ByteWriter {
	return &ByteWriter{buf: make([]byte, 0, 64)}
}

func (bw *ByteWriter) Bytes() []byte { return bw.buf }
func (bw *ByteWriter) Len() int { return len(bw.buf) }

func (bw *ByteWriter) U8(v ...uint8) *ByteWriter {
	bw.buf = append(bw.buf, v...)
	return bw
}

func (bw *ByteWriter) U16(v ...uint16) *ByteWriter {
	for _, x := range v {
		bw.buf = binary.LittleEndian.AppendUint16(bw.buf, x)
	}
	return bw
}

func (bw *ByteWriter) U32(v ...uint32) *ByteWriter {
	for _, x := range v {
		bw.buf = binary.LittleEndian.AppendUint32(bw.buf, x)
	}
	return bw
}

func (bw *ByteWriter) BU32(v uint32) *ByteWriter {
	bw.buf = binary.BigEndian.AppendUint32(bw.buf, v)
	return bw
}

func (bw *ByteWriter) Var(width int, v uint32) *ByteWriter {
	switch width {
	case 1:
		return bw.U8(uint8(v))
	case 2:
		return bw.U16(uint16(v))
	default:
		return bw.U32(v)
	}
}

// Extended writes v in the extended byte form read by ByteReader.ReadExtended.
func (bw *ByteWriter) Extended(v uint16) *ByteWriter {
	if v < 0xFF {
		return bw.U8(uint8(v))
	}
	return bw.U8(0xFF).U16(v)
}

func (bw *ByteWriter) Raw(b []byte) *ByteWriter {
	bw.buf = append(bw.buf, b...)
	return bw
}

// String writes s followed by a terminating zero byte.
func (bw *ByteWriter) String(s string) *ByteWriter {
	bw.buf = append(bw.buf, s...)
	bw.buf = append(bw.buf, 0)
	return bw
}

// Label writes a four character label in file order.
func (bw *ByteWriter) Label(s string) *ByteWriter {
	var l [4]byte
	copy(l[:], s)
	bw.buf = append(bw.buf, l[:]...)
	return bw
}
