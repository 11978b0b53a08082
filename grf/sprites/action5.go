package sprites

// BlockType tells how a base graphics block can be replaced.
type BlockType int

const (
	BlockInvalid BlockType = iota
	// BlockFixed must be replaced in full, at least MinSprites at once
	BlockFixed
	// BlockAllowOffset can be replaced partially, starting at an offset
	BlockAllowOffset
)

// Block is a range of base sprites replaceable by Action 5.
type Block struct {
	Type       BlockType
	Base       uint32
	MinSprites uint16
	MaxSprites uint16
	Name       string
}

// blocks is indexed by the Action 5 type. Bases are assigned at init in
// table order right after the original sprites.
var blocks = []Block{
	0x00: {BlockInvalid, 0, 0, 0, "Type 0x00"},
	0x01: {BlockInvalid, 0, 0, 0, "Type 0x01"},
	0x02: {BlockInvalid, 0, 0, 0, "Type 0x02"},
	0x03: {BlockInvalid, 0, 0, 0, "Type 0x03"},
	0x04: {BlockAllowOffset, 0, 1, 240, "Signal graphics"},
	0x05: {BlockAllowOffset, 0, 1, 48, "Rail catenary graphics"},
	0x06: {BlockAllowOffset, 0, 1, 90, "Foundation graphics"},
	0x07: {BlockInvalid, 0, 75, 0, "TTDP GUI graphics"},
	0x08: {BlockAllowOffset, 0, 1, 65, "Canal graphics"},
	0x09: {BlockAllowOffset, 0, 1, 6, "One way road graphics"},
	0x0A: {BlockAllowOffset, 0, 1, 1, "2CC colour maps"},
	0x0B: {BlockAllowOffset, 0, 1, 187, "Tramway graphics"},
	0x0C: {BlockInvalid, 0, 133, 0, "Snowy temperate tree"},
	0x0D: {BlockFixed, 0, 16, 18, "Shore graphics"},
	0x0E: {BlockInvalid, 0, 0, 0, "New signals graphics"},
	0x0F: {BlockAllowOffset, 0, 1, 56, "Sloped rail track"},
	0x10: {BlockAllowOffset, 0, 1, 15, "Airport graphics"},
	0x11: {BlockAllowOffset, 0, 1, 8, "Road stop graphics"},
	0x12: {BlockAllowOffset, 0, 1, 8, "Aqueduct graphics"},
	0x13: {BlockAllowOffset, 0, 1, 55, "Autorail graphics"},
	0x14: {BlockInvalid, 0, 1, 0, "Flag graphics"},
	0x15: {BlockAllowOffset, 0, 1, 184, "OpenTTD GUI graphics"},
	0x16: {BlockAllowOffset, 0, 1, 9, "Airport preview graphics"},
	0x17: {BlockAllowOffset, 0, 1, 16, "Railtype tunnel base"},
	0x18: {BlockAllowOffset, 0, 1, 1, "Palette"},
	0x19: {BlockAllowOffset, 0, 1, 16, "Road waypoints"},
}

// ModuleSpriteBase is the first sprite id after every replaceable block.
var ModuleSpriteBase uint32

func init() {
	next := uint32(OriginalSprites)
	for i := range blocks {
		if blocks[i].Type == BlockInvalid {
			continue
		}
		blocks[i].Base = next
		next += uint32(blocks[i].MaxSprites)
	}
	ModuleSpriteBase = next
}

// BlockByType returns the block of an Action 5 type, false for
// unsupported types.
func BlockByType(typ uint8) (Block, bool) {
	if int(typ) >= len(blocks) || blocks[typ].Type == BlockInvalid {
		var b Block
		if int(typ) < len(blocks) {
			b = blocks[typ]
		}
		return b, false
	}
	return blocks[typ], true
}

func Blocks() []Block {
	return append([]Block(nil), blocks...)
}

// Clamp limits a replacement of num sprites at offset to the block size.
// It returns the number of sprites to load and the number to skip after
// them.
func (b *Block) Clamp(num, offset uint16) (load, skip uint16) {
	if offset >= b.MaxSprites {
		return 0, num
	}
	if uint32(offset)+uint32(num) > uint32(b.MaxSprites) {
		load = b.MaxSprites - offset
		return load, num - load
	}
	return num, 0
}
