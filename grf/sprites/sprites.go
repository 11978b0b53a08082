// Package sprites keeps the sprite table built while loading: module
// sprite sets, replaced base graphics and font glyphs. Sprites are
// references into module files, pixel data is decoded elsewhere.
package sprites

import (
	"sort"
)

// OriginalSprites is the number of sprites of the base graphics.
const OriginalSprites = 4896

// Font sizes of Action 0x12.
const (
	FontNormal = iota
	FontSmall
	FontLarge
	FontMono
	FontSizes
)

// Source locates the data of a sprite.
type Source struct {
	File   string
	Record int
	// Ref is the sprite section id of container v2 references
	Ref    uint32 `json:",omitempty" yaml:",omitempty"`
	HasRef bool   `json:",omitempty" yaml:",omitempty"`
}

type Sprite struct {
	ID    uint32
	GRFID uint32
	Source
	// Replaced is set when a base graphics sprite was replaced
	Replaced bool `json:",omitempty" yaml:",omitempty"`
}

type Table struct {
	base    uint32
	next    uint32
	sprites map[uint32]*Sprite
	glyphs  [FontSizes]map[rune]uint32
}

// NewTable creates a table handing out module sprite ids from base. A zero
// base starts after the replaceable base graphics blocks.
func NewTable(base uint32) *Table {
	if base == 0 {
		base = ModuleSpriteBase
	}
	t := &Table{
		base:    base,
		next:    base,
		sprites: make(map[uint32]*Sprite),
	}
	for i := range t.glyphs {
		t.glyphs[i] = make(map[rune]uint32)
	}
	return t
}

func (t *Table) Base() uint32 { return t.base }

// Next is the id the next allocation starts at.
func (t *Table) Next() uint32 { return t.next }

// Allocate claims n consecutive ids for module sprites.
func (t *Table) Allocate(n int) uint32 {
	first := t.next
	t.next += uint32(n)
	return first
}

// ReserveUpTo makes sure later allocations start at or after id.
func (t *Table) ReserveUpTo(id uint32) {
	if id > t.next {
		t.next = id
	}
}

// Set binds a sprite id to its data. Ids below the module base replace
// base graphics.
func (t *Table) Set(id uint32, grfid uint32, src Source) *Sprite {
	s := &Sprite{ID: id, GRFID: grfid, Source: src, Replaced: id < t.base}
	t.sprites[id] = s
	return s
}

func (t *Table) Get(id uint32) *Sprite {
	return t.sprites[id]
}

func (t *Table) Len() int { return len(t.sprites) }

// Sprites returns every bound sprite ordered by id.
func (t *Table) Sprites() []*Sprite {
	list := make([]*Sprite, 0, len(t.sprites))
	for _, s := range t.sprites {
		list = append(list, s)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list
}

// SetGlyph maps a character of a font size to a sprite.
func (t *Table) SetGlyph(size uint8, char rune, id uint32) bool {
	if int(size) >= FontSizes {
		return false
	}
	t.glyphs[size][char] = id
	return true
}

func (t *Table) Glyph(size uint8, char rune) (uint32, bool) {
	if int(size) >= FontSizes {
		return 0, false
	}
	id, ok := t.glyphs[size][char]
	return id, ok
}

// Glyphs returns the character map of a font size.
func (t *Table) Glyphs(size uint8) map[rune]uint32 {
	if int(size) >= FontSizes {
		return nil
	}
	return t.glyphs[size]
}
