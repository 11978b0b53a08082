package spritegroup

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/mogaika/newgrf_browser/grf/feature"
	"github.com/mogaika/newgrf_browser/grf/spec"
	"github.com/mogaika/newgrf_browser/utils"
)

var ErrMalformedLayout = errors.New("malformed sprite layout")

// SpriteSets gives access to the Action 1 sprite sets of a module.
type SpriteSets interface {
	SpriteSet(f feature.Feature, set uint16) (first uint32, count uint16, ok bool)
}

// LayoutSprite is one sprite reference read from a layout.
type LayoutSprite struct {
	Image spec.PalSprite
	Flags uint8
	// Sizes of the sprite sets used for the sprite and the palette, 0xFFFF
	// when sets are not resolved
	MaxSprite  uint16
	MaxPalette uint16
	// Undefined is set when a sprite set was missing and Image is the
	// query sprite
	Undefined bool
}

func logf(sets SpriteSets, format string, args ...interface{}) {
	if l, ok := sets.(interface{ Log() *logrus.Entry }); ok {
		l.Log().Infof(format, args...)
	}
}

// ReadLayoutSprite reads a sprite and palette word pair and optionally a
// flags word. Bit 15 of the palette selects a sprite from the module's
// sprite sets, invertCustom flips its meaning. With sets nil the set index
// is kept instead of resolving it.
func ReadLayoutSprite(r *utils.ByteReader, sets SpriteSets, f feature.Feature, readFlags, invertCustom bool) (LayoutSprite, error) {
	var ls LayoutSprite
	sprite, err := r.ReadU16()
	if err != nil {
		return ls, err
	}
	pal, err := r.ReadU16()
	if err != nil {
		return ls, err
	}
	var flags uint16
	if readFlags {
		if flags, err = r.ReadU16(); err != nil {
			return ls, err
		}
	}
	ls.Flags = uint8(flags)
	if flags&^spec.TLFKnownFlags != 0 {
		return ls, errors.Wrapf(ErrMalformedLayout, "unknown flags 0x%x", flags)
	}

	img := spec.PalSprite{Sprite: uint32(sprite), Pal: uint32(pal)}
	if img.Pal&(1<<14) != 0 {
		img.Pal &^= 1 << 14
		img.Sprite |= spec.SpriteModifierOpaque
	}
	if img.Sprite&(1<<14) != 0 {
		img.Sprite &^= 1 << 14
		img.Sprite |= spec.PaletteModifierTransparent
	}
	if img.Sprite&(1<<15) != 0 {
		img.Sprite &^= 1 << 15
		img.Sprite |= spec.PaletteModifierColour
	}

	custom := (img.Pal&(1<<15) != 0) != invertCustom
	img.Pal &^= 1 << 15
	if custom {
		index := uint16(img.Sprite & spec.SpriteMask)
		if sets != nil {
			first, count, ok := sets.SpriteSet(f, index)
			if !ok || count == 0 {
				logf(sets, "Layout uses undefined sprite set %d, drawing the query sprite", index)
				ls.Undefined = true
				ls.Image = spec.PalSprite{Sprite: spec.SpriteQuery}
				return ls, nil
			}
			img.Sprite = img.Sprite&^spec.SpriteWidthMask | first&spec.SpriteWidthMask
			ls.MaxSprite = count
		} else {
			img.Sprite = img.Sprite&^spec.SpriteWidthMask | uint32(index)
			ls.MaxSprite = 0xFFFF
		}
		img.Sprite |= spec.SpriteModifierCustomSprite
	} else if ls.Flags&spec.TLFSpriteVar10 != 0 && ls.Flags&spec.TLFSpriteRegFlags == 0 {
		return ls, errors.Wrapf(ErrMalformedLayout, "var10 value for a sprite not from a sprite set")
	}

	if ls.Flags&spec.TLFCustomPalette != 0 {
		index := uint16(img.Pal & spec.SpriteMask)
		if sets != nil {
			first, count, ok := sets.SpriteSet(f, index)
			if !ok || count == 0 {
				logf(sets, "Layout uses undefined sprite set %d for palette, drawing the query sprite", index)
				ls.Undefined = true
				ls.Image = spec.PalSprite{Sprite: spec.SpriteQuery}
				ls.MaxSprite, ls.MaxPalette = 0, 0
				return ls, nil
			}
			img.Pal = img.Pal&^spec.SpriteWidthMask | first&spec.SpriteWidthMask
			ls.MaxPalette = count
		} else {
			ls.MaxPalette = 0xFFFF
		}
		img.Pal |= spec.SpriteModifierCustomSprite
	} else if ls.Flags&spec.TLFPaletteVar10 != 0 && ls.Flags&spec.TLFPaletteRegFlags == 0 {
		return ls, errors.Wrapf(ErrMalformedLayout, "var10 value for a palette not from a sprite set")
	}

	ls.Image = img
	return ls, nil
}

// readRegisters reads the register bytes selected by flags.
func readRegisters(r *utils.ByteReader, flags uint8, parent bool) (*spec.LayoutRegisters, error) {
	if flags&spec.TLFDrawingFlags == 0 {
		return nil, nil
	}
	regs := &spec.LayoutRegisters{Flags: flags & spec.TLFDrawingFlags}
	read := func(dst *uint8, mask uint8) error {
		if flags&mask == 0 {
			return nil
		}
		v, err := r.ReadU8()
		*dst = v
		return err
	}
	if err := read(&regs.Dodraw, spec.TLFDodraw); err != nil {
		return nil, err
	}
	if err := read(&regs.Sprite, spec.TLFSprite); err != nil {
		return nil, err
	}
	if err := read(&regs.Palette, spec.TLFPalette); err != nil {
		return nil, err
	}
	if parent {
		if err := read(&regs.Delta[0], spec.TLFBBXYOffset); err != nil {
			return nil, err
		}
		if err := read(&regs.Delta[1], spec.TLFBBXYOffset); err != nil {
			return nil, err
		}
		if err := read(&regs.Delta[2], spec.TLFBBZOffset); err != nil {
			return nil, err
		}
	} else {
		if err := read(&regs.Delta[0], spec.TLFChildXOffset); err != nil {
			return nil, err
		}
		if err := read(&regs.Delta[1], spec.TLFChildYOffset); err != nil {
			return nil, err
		}
	}
	if err := read(&regs.SpriteVar10, spec.TLFSpriteVar10); err != nil {
		return nil, err
	}
	if err := read(&regs.PaletteVar10, spec.TLFPaletteVar10); err != nil {
		return nil, err
	}
	if regs.SpriteVar10 > spec.MaxVar10 || regs.PaletteVar10 > spec.MaxVar10 {
		return nil, errors.Wrapf(ErrMalformedLayout, "var10 value exceeds %d", spec.MaxVar10)
	}
	return regs, nil
}

// ReadLayout reads a tile layout of Action 2 or of a layout property.
// Bit 6 of numSprites means every sprite carries a flags word. Without
// noZ building sprites have a z offset.
func ReadLayout(r *utils.ByteReader, sets SpriteSets, f feature.Feature, numSprites uint8, allowVar10, noZ bool) (*spec.SpriteLayout, error) {
	hasFlags := numSprites&0x40 != 0
	numSprites &^= 0x40

	valid := uint8(spec.TLFKnownFlags)
	if !allowVar10 {
		valid &^= spec.TLFVar10Flags
	}

	maxSprite := make([]uint16, int(numSprites)+1)
	maxPalette := make([]uint16, int(numSprites)+1)

	layout := &spec.SpriteLayout{}
	ground, err := ReadLayoutSprite(r, sets, f, hasFlags, false)
	if err != nil {
		return nil, err
	}
	if bad := ground.Flags &^ (valid &^ spec.TLFNonGroundFlags); bad != 0 {
		return nil, errors.Wrapf(ErrMalformedLayout, "invalid flags 0x%x for ground sprite", bad)
	}
	layout.Ground = ground.Image
	maxSprite[0], maxPalette[0] = ground.MaxSprite, ground.MaxPalette
	if layout.GroundRegisters, err = readRegisters(r, ground.Flags, false); err != nil {
		return nil, err
	}

	for i := 1; i <= int(numSprites); i++ {
		ls, err := ReadLayoutSprite(r, sets, f, hasFlags, false)
		if err != nil {
			return nil, err
		}
		if bad := ls.Flags &^ valid; bad != 0 {
			return nil, errors.Wrapf(ErrMalformedLayout, "unknown flags 0x%x for sprite %d", bad, i)
		}
		seq := spec.LayoutSeq{Image: ls.Image}
		b, err := r.ReadBytes(2)
		if err != nil {
			return nil, err
		}
		seq.DeltaX, seq.DeltaY = int8(b[0]), int8(b[1])
		if !noZ {
			z, err := r.ReadU8()
			if err != nil {
				return nil, err
			}
			seq.DeltaZ = int8(z)
		}
		if seq.IsParent() {
			size, err := r.ReadBytes(3)
			if err != nil {
				return nil, err
			}
			seq.SizeX, seq.SizeY, seq.SizeZ = size[0], size[1], size[2]
		}
		if seq.Registers, err = readRegisters(r, ls.Flags, seq.IsParent()); err != nil {
			return nil, err
		}
		maxSprite[i], maxPalette[i] = ls.MaxSprite, ls.MaxPalette
		layout.Seq = append(layout.Seq, seq)
	}

	consistent := true
	for i := range maxSprite {
		for _, m := range []uint16{maxSprite[i], maxPalette[i]} {
			if m == 0 {
				continue
			}
			if layout.ConsistentMaxOffset == 0 {
				layout.ConsistentMaxOffset = m
			} else if layout.ConsistentMaxOffset != m {
				consistent = false
			}
		}
	}

	hasRegisters := layout.GroundRegisters != nil
	for _, seq := range layout.Seq {
		hasRegisters = hasRegisters || seq.Registers != nil
	}
	if !consistent || hasRegisters {
		layout.ConsistentMaxOffset = 0
		regs := func(i int, p **spec.LayoutRegisters) {
			if *p == nil {
				*p = &spec.LayoutRegisters{}
			}
			(*p).MaxSpriteOffset = maxSprite[i]
			(*p).MaxPaletteOffset = maxPalette[i]
		}
		regs(0, &layout.GroundRegisters)
		for i := range layout.Seq {
			regs(i+1, &layout.Seq[i].Registers)
		}
	}
	return layout, nil
}
