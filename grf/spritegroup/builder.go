package spritegroup

import (
	"math/bits"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/mogaika/newgrf_browser/grf/feature"
	"github.com/mogaika/newgrf_browser/grf/remap"
	"github.com/mogaika/newgrf_browser/grf/spec"
	"github.com/mogaika/newgrf_browser/utils"
)

var (
	ErrMalformedRange      = errors.New("malformed deterministic group")
	ErrMalformedProduction = errors.New("malformed production group")
)

// Env is the module state group building needs.
type Env interface {
	SpriteSets
	GRFVersion() uint8
	HasSpriteSets(f feature.Feature) bool
	Remap() *remap.Table
	TranslateCargo(cargo uint8) spec.CargoID
	Log() *logrus.Entry
}

// Builder keeps the set id table of one module during activation.
type Builder struct {
	arena *Arena
	sets  []Handle
}

func NewBuilder(arena *Arena) *Builder {
	return &Builder{arena: arena}
}

func (b *Builder) Arena() *Arena { return b.arena }

// Group returns the handle registered for a set id.
func (b *Builder) Group(id uint16) (Handle, bool) {
	if int(id) >= len(b.sets) || b.sets[id] == spec.NoGroup {
		return spec.NoGroup, false
	}
	return b.sets[id], true
}

func (b *Builder) register(id uint16, h Handle) {
	for int(id) >= len(b.sets) {
		b.sets = append(b.sets, spec.NoGroup)
	}
	b.sets[id] = h
}

// Reference resolves a group id read from a record. Bit 15 marks a
// callback result, other ids must name a group built before.
func (b *Builder) Reference(env Env, id uint16) Handle {
	if id&0x8000 != 0 {
		return b.arena.Callback(CallbackValue(id, env.GRFVersion()))
	}
	h, ok := b.Group(id)
	if !ok {
		env.Log().Infof("Group id 0x%.4x does not exist, leaving empty", id)
		return spec.NoGroup
	}
	return h
}

// CallbackValue strips the callback marker of a group id. Modules before
// version 8 mark results with a high byte of 0xFF.
func CallbackValue(id uint16, version uint8) uint16 {
	if version < 8 && id>>8 == 0xFF {
		return id &^ 0xFF00
	}
	return id &^ 0x8000
}

// resultFor returns the group of a sprite set id of a real group.
func (b *Builder) resultFor(env Env, f feature.Feature, set uint16) Handle {
	if set&0x8000 != 0 {
		return b.arena.Callback(CallbackValue(set, env.GRFVersion()))
	}
	first, count, ok := env.SpriteSet(f, set)
	if !ok {
		env.Log().Infof("Sprite set %d invalid", set)
		return spec.NoGroup
	}
	return b.arena.Add(&Result{FirstSprite: first, NumSprites: count})
}

// Build reads the body of an Action 2 after the type byte and registers
// the group under setID. A NoGroup handle without error means the record
// was skipped.
func (b *Builder) Build(env Env, f feature.Feature, setID uint16, typ uint8, r *utils.ByteReader) (Handle, error) {
	var h Handle
	var err error
	switch typ {
	case 0x81, 0x82, 0x85, 0x86, 0x89, 0x8A:
		h, err = b.buildDeterministic(env, f, typ, r)
	case 0x80, 0x83, 0x84:
		h, err = b.buildRandom(env, f, typ, r)
	default:
		switch f.Info().Group {
		case feature.GroupReal:
			h, err = b.buildReal(env, f, typ, r)
		case feature.GroupTileLayout:
			h, err = b.buildTileLayout(env, f, typ, r)
		case feature.GroupProduction:
			h, err = b.buildProduction(env, typ, r)
		default:
			env.Log().Infof("Unsupported feature %v, skipping", f)
			return spec.NoGroup, nil
		}
	}
	if err != nil {
		return spec.NoGroup, err
	}
	if h != spec.NoGroup {
		b.register(setID, h)
	}
	return h, nil
}

func (b *Builder) buildDeterministic(env Env, f feature.Feature, typ uint8, r *utils.ByteReader) (Handle, error) {
	g := &Deterministic{Feature: f, Scope: ScopeSelf}
	if typ&0x02 != 0 {
		g.Scope = ScopeParent
	}
	switch (typ >> 2) & 3 {
	case 0:
		g.Size = 1
	case 1:
		g.Size = 2
	case 2:
		g.Size = 4
	}

	first := true
	for {
		var adj Adjust
		var err error
		if !first {
			if adj.Operation, err = r.ReadU8(); err != nil {
				return 0, err
			}
			if adj.Operation > OpEnd {
				adj.Operation = OpEnd
			}
		}
		first = false

		if adj.Variable, err = r.ReadU8(); err != nil {
			return 0, err
		}
		if adj.Variable == 0x7E {
			id, err := r.ReadU8()
			if err != nil {
				return 0, err
			}
			adj.Subroutine = b.Reference(env, uint16(id))
		} else {
			if adj.Variable >= 0x60 && adj.Variable < 0x80 {
				if adj.Parameter, err = r.ReadU8(); err != nil {
					return 0, err
				}
			}
			if rm := env.Remap(); rm != nil {
				if e, ok := rm.Resolve(remap.Variable, f, adj.Variable); ok {
					switch {
					case e.Known:
						adj.Variable = e.Internal
					case e.Fallback == remap.Ignore:
						adj.Unresolved = true
					default:
						return 0, e.Err()
					}
				}
			}
		}

		varadjust, err := r.ReadU8()
		if err != nil {
			return 0, err
		}
		adj.ShiftNum = varadjust & 0x1F
		adj.Type = varadjust >> 6
		v, err := r.ReadVar(int(g.Size))
		if err != nil {
			return 0, err
		}
		adj.AndMask = v
		if adj.Type != AdjustNone {
			if adj.AddVal, err = r.ReadVar(int(g.Size)); err != nil {
				return 0, err
			}
			if adj.DivMod, err = r.ReadVar(int(g.Size)); err != nil {
				return 0, err
			}
			if adj.DivMod == 0 {
				adj.DivMod = 1
			}
		}
		g.Adjusts = append(g.Adjusts, adj)
		if varadjust&0x20 == 0 {
			break
		}
	}

	n, err := r.ReadU8()
	if err != nil {
		return 0, err
	}
	ranges := make([]Range, n)
	for i := range ranges {
		id, err := r.ReadU16()
		if err != nil {
			return 0, err
		}
		ranges[i].Group = b.Reference(env, id)
		if ranges[i].Low, err = r.ReadVar(int(g.Size)); err != nil {
			return 0, err
		}
		if ranges[i].High, err = r.ReadVar(int(g.Size)); err != nil {
			return 0, err
		}
		if ranges[i].Low > ranges[i].High {
			env.Log().Debugf("Range %d has low 0x%x above high 0x%x, ignoring", i, ranges[i].Low, ranges[i].High)
		}
	}
	def, err := r.ReadU16()
	if err != nil {
		return 0, err
	}
	g.Default = b.Reference(env, def)
	g.Declared = len(ranges)
	g.CalculatedResult = len(ranges) == 0
	g.Ranges = Compact(ranges, g.Default)
	return b.arena.Add(g), nil
}

func (b *Builder) buildRandom(env Env, f feature.Feature, typ uint8, r *utils.ByteReader) (Handle, error) {
	g := &Random{Feature: f, Scope: ScopeSelf}
	if typ&0x02 != 0 {
		g.Scope = ScopeParent
	}
	if typ&0x04 != 0 {
		if f.IsVehicle() {
			g.Scope = ScopeRelative
		}
		count, err := r.ReadU8()
		if err != nil {
			return 0, err
		}
		g.Count = count
	}
	triggers, err := r.ReadU8()
	if err != nil {
		return 0, err
	}
	g.Triggers = triggers & 0x7F
	if triggers&0x80 != 0 {
		g.Compare = CompareAll
	}
	if g.LowestRandBit, err = r.ReadU8(); err != nil {
		return 0, err
	}
	n, err := r.ReadU8()
	if err != nil {
		return 0, err
	}
	if bits.OnesCount8(n) != 1 {
		g.InvalidCount = true
		env.Log().Warnf("Random group with %d groups, should be a power of 2", n)
	}
	for i := 0; i < int(n); i++ {
		id, err := r.ReadU16()
		if err != nil {
			return 0, err
		}
		g.Groups = append(g.Groups, b.Reference(env, id))
	}
	return b.arena.Add(g), nil
}

func (b *Builder) buildReal(env Env, f feature.Feature, numLoaded uint8, r *utils.ByteReader) (Handle, error) {
	numLoading, err := r.ReadU8()
	if err != nil {
		return 0, err
	}
	if !env.HasSpriteSets(f) {
		env.Log().Warnf("No sprite set to work on, skipping")
		return spec.NoGroup, nil
	}
	if int(numLoaded)+int(numLoading) == 0 {
		env.Log().Infof("Real group without results, skipping")
		return spec.NoGroup, nil
	}

	read := func(n uint8) ([]uint16, error) {
		list := make([]uint16, n)
		for i := range list {
			v, err := r.ReadU16()
			if err != nil {
				return nil, err
			}
			list[i] = v
		}
		return list, nil
	}
	loaded, err := read(numLoaded)
	if err != nil {
		return 0, err
	}
	loading, err := read(numLoading)
	if err != nil {
		return 0, err
	}

	if len(loaded)+len(loading) == 1 {
		return b.resultFor(env, f, append(loaded, loading...)[0]), nil
	}

	g := &Real{Feature: f}
	for _, set := range loaded {
		g.Loaded = append(g.Loaded, b.resultFor(env, f, set))
	}
	for _, set := range loading {
		g.Loading = append(g.Loading, b.resultFor(env, f, set))
	}
	return b.arena.Add(g), nil
}

func (b *Builder) buildTileLayout(env Env, f feature.Feature, typ uint8, r *utils.ByteReader) (Handle, error) {
	num := typ
	if num == 0 {
		num = 1
	}
	layout, err := ReadLayout(r, env, f, num, true, typ == 0)
	if err != nil {
		return 0, err
	}
	return b.arena.Add(&TileLayout{Feature: f, Layout: layout}), nil
}

func (b *Builder) buildProduction(env Env, version uint8, r *utils.ByteReader) (Handle, error) {
	if version > 2 {
		env.Log().Infof("Unsupported industry production version %d, skipping", version)
		return spec.NoGroup, nil
	}
	g := &Production{Version: version}
	var err error
	switch version {
	case 0, 1:
		g.NumInput = OriginalProductionInputs
		g.NumOutput = OriginalProductionOutputs
		for i := 0; i < OriginalProductionInputs; i++ {
			if version == 0 {
				v, err := r.ReadU16()
				if err != nil {
					return 0, err
				}
				g.SubtractInput[i] = int16(v)
			} else {
				v, err := r.ReadU8()
				if err != nil {
					return 0, err
				}
				g.SubtractInput[i] = int16(v)
			}
		}
		for i := 0; i < OriginalProductionOutputs; i++ {
			if version == 0 {
				if g.AddOutput[i], err = r.ReadU16(); err != nil {
					return 0, err
				}
			} else {
				v, err := r.ReadU8()
				if err != nil {
					return 0, err
				}
				g.AddOutput[i] = uint16(v)
			}
		}
	case 2:
		readCargoes := func(what string, cargo *[MaxProductionCargoes]spec.CargoID, store func(i int, reg uint8)) (uint8, error) {
			n, err := r.ReadU8()
			if err != nil {
				return 0, err
			}
			if n > MaxProductionCargoes {
				return 0, errors.Wrapf(ErrMalformedProduction, "too many %s (max %d)", what, MaxProductionCargoes)
			}
			for i := 0; i < int(n); i++ {
				raw, err := r.ReadU8()
				if err != nil {
					return 0, err
				}
				c := env.TranslateCargo(raw)
				if c == spec.InvalidCargo {
					g.InvalidCargo = true
				} else {
					for j := 0; j < i; j++ {
						if cargo[j] == c {
							return 0, errors.Wrapf(ErrMalformedProduction, "duplicate %s cargo", what)
						}
					}
				}
				cargo[i] = c
				reg, err := r.ReadU8()
				if err != nil {
					return 0, err
				}
				store(i, reg)
			}
			return n, nil
		}
		if g.NumInput, err = readCargoes("inputs", &g.CargoInput, func(i int, reg uint8) { g.SubtractInput[i] = int16(reg) }); err != nil {
			return 0, err
		}
		if g.NumOutput, err = readCargoes("outputs", &g.CargoOutput, func(i int, reg uint8) { g.AddOutput[i] = uint16(reg) }); err != nil {
			return 0, err
		}
	}
	if g.Again, err = r.ReadU8(); err != nil {
		return 0, err
	}
	return b.arena.Add(g), nil
}
