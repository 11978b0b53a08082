package loader

import (
	"github.com/mogaika/newgrf_browser/grf/feature"
	"github.com/mogaika/newgrf_browser/grf/sprites"
	"github.com/mogaika/newgrf_browser/utils"
)

type spriteSetsHeader struct {
	feature feature.Feature
	first   uint16
	sets    uint16
	entries uint16
}

func (h spriteSetsHeader) total() int { return int(h.sets) * int(h.entries) }

// Action 0x01: u8 feature, u8 sets, ext sprites per set. A zero set count
// followed by data is the extended form: ext first set, ext sets.
func readSpriteSets(r *utils.ByteReader) (spriteSetsHeader, error) {
	var h spriteSetsHeader
	f, err := r.ReadU8()
	if err != nil {
		return h, err
	}
	h.feature = feature.Feature(f)
	n, err := r.ReadU8()
	if err != nil {
		return h, err
	}
	h.sets = uint16(n)
	if n == 0 && r.Has(3) {
		if h.first, err = r.ReadExtended(); err != nil {
			return h, err
		}
		if h.sets, err = r.ReadExtended(); err != nil {
			return h, err
		}
	}
	h.entries, err = r.ReadExtended()
	return h, err
}

func newSpriteSet(st *moduleState, r *utils.ByteReader) error {
	h, err := readSpriteSets(r)
	if err != nil {
		return err
	}
	if !h.feature.Valid() {
		st.Log().Infof("Unsupported feature 0x%.2x, skipping %d sprites", uint8(h.feature), h.total())
		st.skip = h.total()
		return nil
	}

	first := st.sprites.Allocate(h.total())
	for i := 0; i < int(h.sets); i++ {
		st.addSpriteSet(h.feature, h.first+uint16(i), first+uint32(i)*uint32(h.entries), h.entries)
	}
	st.Log().Debugf("New sprite sets %d..%d of %v with %d views each at sprite %d",
		h.first, int(h.first)+int(h.sets)-1, h.feature, h.entries, first)
	st.bindSprites(h.total(), func(i int) uint32 { return first + uint32(i) })
	return nil
}

func skipSpriteSets(st *moduleState, r *utils.ByteReader) error {
	h, err := readSpriteSets(r)
	if err != nil {
		return err
	}
	st.skip = h.total()
	return nil
}

// Sprites of the shore block replaced by the ten sprite form of type 0x0D
// shipped by system modules.
var shoreSystemSprites = []uint32{0, 5, 7, 10, 11, 13, 14, 15, 16, 17}

// Action 0x05: u8 type (bit 7 means an offset follows), ext count,
// [ext offset].
func readGraphicsNew(r *utils.ByteReader) (typ uint8, num, offset uint16, err error) {
	if typ, err = r.ReadU8(); err != nil {
		return
	}
	if num, err = r.ReadExtended(); err != nil {
		return
	}
	if typ&0x80 != 0 {
		if offset, err = r.ReadExtended(); err != nil {
			return
		}
	}
	typ &= 0x7F
	return
}

func graphicsNew(st *moduleState, r *utils.ByteReader) error {
	typ, num, offset, err := readGraphicsNew(r)
	if err != nil {
		return err
	}

	if typ == 0x0D && num == 10 && st.m.System {
		b, _ := sprites.BlockByType(typ)
		st.Log().Debugf("Loading %d missing shore sprites", num)
		st.bindSprites(len(shoreSystemSprites), func(i int) uint32 { return b.Base + shoreSystemSprites[i] })
		return nil
	}

	b, ok := sprites.BlockByType(typ)
	if !ok {
		st.Log().Infof("Graphics type 0x%.2x (%s) not supported, skipping", typ, b.Name)
		st.skip = int(num)
		return nil
	}
	if b.Type != sprites.BlockAllowOffset && offset != 0 {
		st.Log().Infof("Graphics type 0x%.2x (%s) does not allow an offset, ignoring it", typ, b.Name)
		offset = 0
	}
	if b.Type == sprites.BlockFixed && num < b.MinSprites {
		st.Log().Infof("Graphics type 0x%.2x (%s) has %d sprites, minimum is %d, skipping", typ, b.Name, num, b.MinSprites)
		st.skip = int(num)
		return nil
	}

	load, extra := b.Clamp(num, offset)
	if extra != 0 {
		st.Log().Warnf("Graphics type 0x%.2x (%s) has %d sprites past its %d, ignoring them", typ, b.Name, extra, b.MaxSprites)
	}
	base := b.Base + uint32(offset)
	st.Log().Debugf("Replacing %d sprites of type 0x%.2x (%s) at sprite %d", load, typ, b.Name, base)
	st.bindSprites(int(load), func(i int) uint32 { return base + uint32(i) })
	st.skip = int(extra)
	return nil
}

func skipGraphicsNew(st *moduleState, r *utils.ByteReader) error {
	_, num, _, err := readGraphicsNew(r)
	if err != nil {
		return err
	}
	st.skip = int(num)
	return nil
}

// Action 0x0A: u8 sets of (u8 count, u16 first sprite).
func readReplacements(r *utils.ByteReader) ([]uint32, error) {
	n, err := r.ReadU8()
	if err != nil {
		return nil, err
	}
	var list []uint32
	for i := 0; i < int(n); i++ {
		count, err := r.ReadU8()
		if err != nil {
			return nil, err
		}
		first, err := r.ReadU16()
		if err != nil {
			return nil, err
		}
		for j := 0; j < int(count); j++ {
			list = append(list, uint32(first)+uint32(j))
		}
	}
	return list, nil
}

func spriteReplace(st *moduleState, r *utils.ByteReader) error {
	list, err := readReplacements(r)
	if err != nil {
		return err
	}
	st.Log().Debugf("Replacing %d base sprites", len(list))
	st.bindSprites(len(list), func(i int) uint32 { return list[i] })
	return nil
}

func skipSpriteReplace(st *moduleState, r *utils.ByteReader) error {
	list, err := readReplacements(r)
	if err != nil {
		return err
	}
	st.skip = len(list)
	return nil
}

type glyphRange struct {
	size  uint8
	count uint8
	base  uint16
}

// Action 0x12: u8 ranges of (u8 font size, u8 count, u16 first char).
func readGlyphRanges(r *utils.ByteReader) ([]glyphRange, int, error) {
	n, err := r.ReadU8()
	if err != nil {
		return nil, 0, err
	}
	list := make([]glyphRange, 0, n)
	total := 0
	for i := 0; i < int(n); i++ {
		var g glyphRange
		if g.size, err = r.ReadU8(); err != nil {
			return nil, 0, err
		}
		if g.count, err = r.ReadU8(); err != nil {
			return nil, 0, err
		}
		if g.base, err = r.ReadU16(); err != nil {
			return nil, 0, err
		}
		list = append(list, g)
		total += int(g.count)
	}
	return list, total, nil
}

func fontGlyphs(st *moduleState, r *utils.ByteReader) error {
	list, total, err := readGlyphRanges(r)
	if err != nil {
		return err
	}
	first := st.sprites.Allocate(total)
	id := first
	for _, g := range list {
		if int(g.size) >= sprites.FontSizes {
			st.Log().Infof("Font size %d is not supported, ignoring", g.size)
		}
		st.Log().Debugf("Loading %d glyphs at 0x%.4x for size %d", g.count, g.base, g.size)
		for c := 0; c < int(g.count); c++ {
			st.sprites.SetGlyph(g.size, rune(g.base)+rune(c), id)
			id++
		}
	}
	st.bindSprites(total, func(i int) uint32 { return first + uint32(i) })
	return nil
}

func skipFontGlyphs(st *moduleState, r *utils.ByteReader) error {
	_, total, err := readGlyphRanges(r)
	if err != nil {
		return err
	}
	st.skip = total
	return nil
}
