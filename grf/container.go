package grf

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"io/ioutil"

	"github.com/pkg/errors"
)

const (
	TypePseudo    = 0xFF
	TypeSpriteRef = 0xFD

	HeaderSizeV2 = 15
)

var containerV2Signature = []byte{0x00, 0x00, 'G', 'R', 'F', 0x82, 0x0D, 0x0A, 0x1A, 0x0A}

// Record is one entry of the data section.
// Index 0 is always the sprite count record.
type Record struct {
	Index  int
	Offset int64
	Type   uint8
	Data   []byte
}

func (r *Record) IsPseudo() bool { return r.Type == TypePseudo }

// SpriteRef returns the sprite section id referenced by a container v2 record.
func (r *Record) SpriteRef() (uint32, bool) {
	if r.Type != TypeSpriteRef || len(r.Data) != 4 {
		return 0, false
	}
	return binary.LittleEndian.Uint32(r.Data), true
}

func (r *Record) String() string {
	if r.IsPseudo() {
		return fmt.Sprintf("#%d pseudo[%d]@0x%x", r.Index, len(r.Data), r.Offset)
	}
	return fmt.Sprintf("#%d real<0x%.2x>[%d]@0x%x", r.Index, r.Type, len(r.Data), r.Offset)
}

// SpriteEntry is one entry of the container v2 sprite section.
type SpriteEntry struct {
	ID     uint32
	Offset int64
	Type   uint8
	Data   []byte
}

type File struct {
	Name             string
	ContainerVersion int
	SpriteCount      uint32
	Records          []Record
	Sprites          map[uint32][]SpriteEntry
}

func (f *File) String() string {
	return fmt.Sprintf("grf<%s>(v%d, %d records)", f.Name, f.ContainerVersion, len(f.Records))
}

func Open(name string, r io.Reader) (*File, error) {
	data, err := ioutil.ReadAll(r)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to read %q", name)
	}
	return Parse(name, data)
}

func Parse(name string, data []byte) (*File, error) {
	f := &File{Name: name, ContainerVersion: 1}

	pos := 0
	if len(data) >= HeaderSizeV2 && bytes.Equal(data[:len(containerV2Signature)], containerV2Signature) {
		f.ContainerVersion = 2
		sectionOffset := int(binary.LittleEndian.Uint32(data[10:14]))
		if compression := data[14]; compression != 0 {
			return nil, errors.Errorf("%s: unsupported container compression %d", name, compression)
		}
		pos = HeaderSizeV2
		if sectionOffset != 0 {
			if err := f.parseSpriteSection(data, sectionOffset+14); err != nil {
				return nil, errors.Wrapf(err, "%s: sprite section", name)
			}
		}
	}

	for index := 0; ; index++ {
		rec, next, err := f.readRecord(data, pos)
		if err != nil {
			return nil, errors.Wrapf(err, "%s: record %d", name, index)
		}
		if rec == nil {
			break
		}
		rec.Index = index
		if index == 0 {
			if !rec.IsPseudo() || len(rec.Data) != 4 {
				return nil, errors.Errorf("%s: invalid format, first record must be the 4 byte sprite count", name)
			}
			f.SpriteCount = binary.LittleEndian.Uint32(rec.Data)
		}
		f.Records = append(f.Records, *rec)
		pos = next
	}
	return f, nil
}

func (f *File) readRecord(data []byte, pos int) (*Record, int, error) {
	var size int
	if f.ContainerVersion >= 2 {
		if pos+4 > len(data) {
			return nil, pos, errors.Errorf("unexpected end of file at 0x%x", pos)
		}
		size = int(binary.LittleEndian.Uint32(data[pos:]))
		pos += 4
	} else {
		if pos+2 > len(data) {
			return nil, pos, errors.Errorf("unexpected end of file at 0x%x", pos)
		}
		size = int(binary.LittleEndian.Uint16(data[pos:]))
		pos += 2
	}
	if size == 0 {
		return nil, pos, nil
	}
	if pos >= len(data) {
		return nil, pos, errors.Errorf("unexpected end of file at 0x%x", pos)
	}

	rec := &Record{Offset: int64(pos), Type: data[pos]}
	pos++

	if rec.Type == TypePseudo || f.ContainerVersion >= 2 {
		if pos+size > len(data) {
			return nil, pos, errors.Errorf("record of %d bytes at 0x%x overruns file", size, rec.Offset)
		}
		rec.Data = data[pos : pos+size]
		return rec, pos + size, nil
	}

	end, err := skipSpriteData(data, pos, rec.Type, size)
	if err != nil {
		return nil, pos, err
	}
	rec.Data = data[pos:end]
	return rec, end, nil
}

// skipSpriteData walks a container v1 real sprite: a 7 byte header and
// size-8 bytes of possibly compressed data.
func skipSpriteData(data []byte, pos int, typ uint8, size int) (int, error) {
	pos += 7
	num := size - 8
	if pos > len(data) || num < 0 {
		return pos, errors.Errorf("truncated sprite header at 0x%x", pos)
	}
	if typ&2 != 0 {
		pos += num
	} else {
		for num > 0 {
			if pos >= len(data) {
				return pos, errors.Errorf("truncated compressed sprite at 0x%x", pos)
			}
			code := int8(data[pos])
			pos++
			if code >= 0 {
				chunk := int(code)
				if chunk == 0 {
					chunk = 0x80
				}
				if chunk > num {
					break
				}
				num -= chunk
				pos += chunk
			} else {
				num -= int(-(code >> 3))
				pos++
			}
		}
	}
	if pos > len(data) {
		return pos, errors.Errorf("sprite data overruns file at 0x%x", pos)
	}
	return pos, nil
}

func (f *File) parseSpriteSection(data []byte, pos int) error {
	f.Sprites = make(map[uint32][]SpriteEntry)
	if pos > len(data) {
		return errors.Errorf("sprite section offset 0x%x outside of file", pos)
	}
	for pos+4 <= len(data) {
		id := binary.LittleEndian.Uint32(data[pos:])
		pos += 4
		if id == 0 {
			return nil
		}
		if pos+4 > len(data) {
			break
		}
		size := int(binary.LittleEndian.Uint32(data[pos:]))
		pos += 4
		if size == 0 || pos+size > len(data) {
			return errors.Errorf("sprite %d of %d bytes at 0x%x overruns file", id, size, pos)
		}
		f.Sprites[id] = append(f.Sprites[id], SpriteEntry{
			ID:     id,
			Offset: int64(pos),
			Type:   data[pos],
			Data:   data[pos+1 : pos+size],
		})
		pos += size
	}
	return errors.Errorf("sprite section is not terminated")
}
