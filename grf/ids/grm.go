package ids

import (
	"github.com/pkg/errors"

	"github.com/mogaika/newgrf_browser/grf/feature"
	"github.com/mogaika/newgrf_browser/grf/spec"
)

var ErrReservationFailed = errors.New("resource reservation failed")

// GRM operations of Action 0x0D
const (
	OpReserve    = 0
	OpFind       = 1
	OpCheck      = 2
	OpMark       = 3
	OpFindQuiet  = 4
	OpCheckQuiet = 5
	OpQueryOwner = 6
)

// NoResult is what a failed quiet operation stores in the target parameter.
const NoResult uint32 = 0xFFFFFFFF

type spriteLocation struct {
	grfid uint32
	line  int
}

// GRM implements the shared resource reservation pools of Action 0x0D.
// Pools hold the GRFID of the owner, 0 for a free slot.
type GRM struct {
	engines [4][]uint32
	cargoes []uint32
	sprites map[spriteLocation]uint32

	NextSprite  uint32
	SpriteLimit uint32
}

func NewGRM() *GRM {
	g := &GRM{
		cargoes:     make([]uint32, spec.CargoLimit*2),
		sprites:     make(map[spriteLocation]uint32),
		SpriteLimit: 0x4000,
	}
	for t := range g.engines {
		g.engines[t] = make([]uint32, spec.OriginalEngineCounts[t])
	}
	return g
}

// Pool returns the reservation pool of a feature, nil when the feature
// has no pool.
func (g *GRM) Pool(f feature.Feature) []uint32 {
	switch {
	case f.IsVehicle():
		return g.engines[f]
	case f == feature.Cargoes:
		return g.cargoes
	}
	return nil
}

// Perform runs one operation on a pool. target is the current value of
// the target parameter, used by the operations addressing a fixed block.
// A returned error means the module must be disabled.
func (g *GRM) Perform(pool []uint32, grfid uint32, op uint8, count uint16, target uint32) (uint32, error) {
	if op == OpQueryOwner {
		if target >= uint32(len(pool)) {
			return 0, errors.Wrapf(ErrReservationFailed, "owner query of slot %d out of %d", target, len(pool))
		}
		return pool[target], nil
	}

	start, size := uint32(0), uint16(0)
	if op == OpCheck || op == OpMark {
		start = target
	}

	for i := start; i < uint32(len(pool)) && size < count; i++ {
		if pool[i] == 0 {
			size++
		} else {
			if op == OpCheck || op == OpMark {
				break
			}
			start = i + 1
			size = 0
		}
	}

	if size == count {
		if op == OpReserve || op == OpMark {
			for i := uint32(0); i < uint32(count); i++ {
				pool[start+i] = grfid
			}
		}
		return start, nil
	}

	if op != OpFindQuiet && op != OpCheckQuiet {
		return NoResult, errors.Wrapf(ErrReservationFailed, "unable to allocate %d ids", count)
	}
	return NoResult, nil
}

// ReserveSprites claims count sprite ids for the record at line of a
// module. Runs during the reservation stage.
func (g *GRM) ReserveSprites(grfid uint32, line int, count uint16) (uint32, error) {
	if g.NextSprite+uint32(count) >= g.SpriteLimit {
		return NoResult, errors.Wrapf(ErrReservationFailed, "unable to allocate %d sprites, %d in use", count, g.NextSprite)
	}
	first := g.NextSprite
	g.sprites[spriteLocation{grfid: grfid, line: line}] = first
	g.NextSprite += uint32(count)
	return first, nil
}

// ReservedSprites returns the sprites claimed by ReserveSprites for the
// same record.
func (g *GRM) ReservedSprites(grfid uint32, line int) (uint32, bool) {
	first, ok := g.sprites[spriteLocation{grfid: grfid, line: line}]
	return first, ok
}
