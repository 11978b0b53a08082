package grf

import (
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
)

type writerRecord struct {
	typ  uint8
	data []byte
}

// Writer assembles a container from pseudo sprites and opaque real sprites.
// Real sprites are stored inline for container version 1 and in the sprite
// section for version 2.
type Writer struct {
	Version int
	records []writerRecord
	sprites []writerRecord
}

func NewWriter(version int) *Writer {
	return &Writer{Version: version}
}

func (w *Writer) Len() int { return len(w.records) }

func (w *Writer) AddPseudo(data []byte) *Writer {
	w.records = append(w.records, writerRecord{typ: TypePseudo, data: data})
	return w
}

// AddReal adds an opaque real sprite payload. For version 1 the payload
// is prefixed with an empty 7 byte sprite header and marked as uncompressed.
func (w *Writer) AddReal(data []byte) *Writer {
	if w.Version >= 2 {
		id := uint32(len(w.sprites) + 1)
		w.sprites = append(w.sprites, writerRecord{typ: 0x04, data: data})
		ref := make([]byte, 4)
		binary.LittleEndian.PutUint32(ref, id)
		w.records = append(w.records, writerRecord{typ: TypeSpriteRef, data: ref})
	} else {
		raw := make([]byte, 7+len(data))
		copy(raw[7:], data)
		w.records = append(w.records, writerRecord{typ: 0x02, data: raw})
	}
	return w
}

func (w *Writer) Bytes() []byte {
	count := make([]byte, 4)
	binary.LittleEndian.PutUint32(count, uint32(len(w.records)))
	all := append([]writerRecord{{typ: TypePseudo, data: count}}, w.records...)

	var out []byte
	if w.Version >= 2 {
		out = append(out, containerV2Signature...)
		out = binary.LittleEndian.AppendUint32(out, 0)
		out = append(out, 0)
	}

	for _, rec := range all {
		size := len(rec.data)
		if w.Version < 2 && rec.typ != TypePseudo {
			size += 1
		}
		if w.Version >= 2 {
			out = binary.LittleEndian.AppendUint32(out, uint32(size))
		} else {
			out = binary.LittleEndian.AppendUint16(out, uint16(size))
		}
		out = append(out, rec.typ)
		out = append(out, rec.data...)
	}
	if w.Version >= 2 {
		out = binary.LittleEndian.AppendUint32(out, 0)
		binary.LittleEndian.PutUint32(out[10:], uint32(len(out)-14))
		for i, spr := range w.sprites {
			out = binary.LittleEndian.AppendUint32(out, uint32(i+1))
			out = binary.LittleEndian.AppendUint32(out, uint32(len(spr.data)+1))
			out = append(out, spr.typ)
			out = append(out, spr.data...)
		}
		out = binary.LittleEndian.AppendUint32(out, 0)
	} else {
		out = binary.LittleEndian.AppendUint16(out, 0)
	}
	return out
}

func (w *Writer) WriteTo(dst io.Writer) (int64, error) {
	n, err := dst.Write(w.Bytes())
	if err != nil {
		return int64(n), errors.Wrapf(err, "Failed to write container")
	}
	return int64(n), nil
}
