// Package spec holds the typed specifications produced by the loader and the
// global registries that own them.
package spec

import (
	"fmt"
	"strings"
)

// Label is a four character identifier, stored with the first character
// in the most significant byte.
type Label uint32

func MakeLabel(s string) Label {
	var l Label
	for i := 0; i < 4; i++ {
		l <<= 8
		if i < len(s) {
			l |= Label(s[i])
		}
	}
	return l
}

func (l Label) String() string {
	var b [4]byte
	for i := 0; i < 4; i++ {
		b[i] = byte(l >> uint(24-8*i))
	}
	for _, c := range b {
		if c != 0 && (c < 0x20 || c > 0x7E) {
			return fmt.Sprintf("%08X", uint32(l))
		}
	}
	return strings.TrimRight(string(b[:]), "\x00")
}

func (l Label) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

type CargoID uint8

const (
	InvalidCargo CargoID = 0xFF
	CargoLimit           = 64

	// Pseudo cargo slots of Action 3 mappings
	SpriteGroupDefault   CargoID = 0xFE
	SpriteGroupPurchase  CargoID = 0xFD
	SpriteGroupDefaultNA CargoID = 0xFC
)

func (c CargoID) Valid() bool { return c < CargoLimit }

type CargoMask uint64

func (m CargoMask) Has(c CargoID) bool { return c.Valid() && m&(1<<uint(c)) != 0 }
func (m *CargoMask) Set(c CargoID) {
	if c.Valid() {
		*m |= 1 << uint(c)
	}
}
func (m *CargoMask) Clear(c CargoID) {
	if c.Valid() {
		*m &^= 1 << uint(c)
	}
}

// GroupHandle is an opaque reference into the sprite group arena, 0 is none.
type GroupHandle int32

const NoGroup GroupHandle = 0

// GRFProps links an entity to the module that defined it and to the sprite
// groups Action 3 bound to it.
type GRFProps struct {
	GRFID        uint32
	LocalID      uint16
	SubstituteID uint16
	Groups       map[CargoID]GroupHandle `json:",omitempty" yaml:",omitempty"`
	Override     uint16
}

// Props gives generic code access to the embedded properties.
func (p *GRFProps) Props() *GRFProps { return p }

func (p *GRFProps) SetGroup(cargo CargoID, group GroupHandle) {
	if p.Groups == nil {
		p.Groups = make(map[CargoID]GroupHandle)
	}
	p.Groups[cargo] = group
}

// AnimationInfo is the common animation description of tiles and objects.
type AnimationInfo struct {
	Frames   uint8
	Status   uint8
	Speed    uint8
	Triggers uint16
}

// PalSprite is a sprite with a palette. Bit 31 of Sprite selects the
// palette transparency mode, bit 15 of Pal marks a custom palette.
type PalSprite struct {
	Sprite uint32
	Pal    uint32
}

const (
	SpriteModifierCustomSprite = 1 << 30
	SpriteModifierOpaque       = 1 << 29
	PaletteModifierTransparent = 1 << 31
	PaletteModifierColour      = 1 << 30
	SpriteMask                 = 0x3FFF
	SpriteWidthMask            = 0xFFFFFF
)

// SpriteQuery is the base game question mark shown in place of sprites a
// layout cannot resolve.
const SpriteQuery = 723

// Tile layout flags of extended sprite layouts.
const (
	TLFDodraw        = 0x01
	TLFSprite        = 0x02
	TLFPalette       = 0x04
	TLFCustomPalette = 0x08
	TLFBBXYOffset    = 0x10
	TLFBBZOffset     = 0x20
	TLFChildXOffset  = 0x10
	TLFChildYOffset  = 0x20
	TLFSpriteVar10   = 0x40
	TLFPaletteVar10  = 0x80

	TLFKnownFlags      = 0xFF
	TLFDrawingFlags    = TLFKnownFlags &^ TLFCustomPalette
	TLFNonGroundFlags  = TLFBBXYOffset | TLFBBZOffset
	TLFSpriteRegFlags  = TLFDodraw | TLFSprite | TLFBBXYOffset | TLFBBZOffset
	TLFPaletteRegFlags = TLFPalette
	TLFVar10Flags      = TLFSpriteVar10 | TLFPaletteVar10

	// MaxVar10 is the highest value of the var10 registers
	MaxVar10 = 7
)

// LayoutRegisters are the runtime register overrides of one layout entry.
type LayoutRegisters struct {
	Flags        uint8
	Dodraw       uint8
	Sprite       uint8
	Palette      uint8
	Delta        [3]uint8
	SpriteVar10  uint8
	PaletteVar10 uint8

	// Sprite set sizes the entry was checked against, set when they differ
	// between entries of a layout
	MaxSpriteOffset  uint16
	MaxPaletteOffset uint16
}

// LayoutSeq is one positioned sprite of a layout. A DeltaZ of -128 marks
// a child sprite drawn relative to the previous parent.
type LayoutSeq struct {
	DeltaX, DeltaY, DeltaZ int8
	SizeX, SizeY, SizeZ    uint8
	Image     PalSprite
	Registers *LayoutRegisters `json:",omitempty" yaml:",omitempty"`
}

func (s *LayoutSeq) IsParent() bool { return s.DeltaZ != -128 }

type SpriteLayout struct {
	// Builtin layouts stand for base game layout BuiltinIndex
	Builtin         bool
	BuiltinIndex    uint8
	Ground          PalSprite
	GroundRegisters *LayoutRegisters `json:",omitempty" yaml:",omitempty"`
	Seq             []LayoutSeq
	// ConsistentMaxOffset is the largest sprite set offset used, 0 when
	// registers make it unknown
	ConsistentMaxOffset uint16
}

func (l *SpriteLayout) Clone() *SpriteLayout {
	c := *l
	c.Seq = append([]LayoutSeq(nil), l.Seq...)
	return &c
}
