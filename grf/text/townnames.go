package text

import (
	"strings"

	"github.com/pkg/errors"
)

// MaxTownNameLists is the number of part list ids a module may define.
const MaxTownNameLists = 128

// Lists may refer to themselves once defined.
const maxTownNameDepth = 16

var ErrUndefinedTownNameList = errors.New("town name list not defined")

// TownNamePart is a literal text or a reference to another list id.
type TownNamePart struct {
	Prob uint8
	Ref  uint8
	Text string `json:",omitempty" yaml:",omitempty"`
}

func (p *TownNamePart) IsRef() bool { return p.Prob&0x80 != 0 }

func (p *TownNamePart) Weight() uint16 { return uint16(p.Prob & 0x7F) }

// TownNamePartList picks one part using bitCount bits of the seed starting
// at bitStart.
type TownNamePartList struct {
	BitStart uint8
	BitCount uint8
	MaxProb  uint16
	Parts    []TownNamePart
}

// TownNameStyle is a selectable generator, named in the string table.
type TownNameStyle struct {
	NameID uint32
	ID     uint8
}

type TownNameGenerator struct {
	GRFID  uint32
	Styles []TownNameStyle
	Lists  [MaxTownNameLists][]TownNamePartList `json:"-" yaml:"-"`
}

// TownNames holds the generators of every module.
type TownNames struct {
	generators []*TownNameGenerator
}

func NewTownNames() *TownNames {
	return &TownNames{}
}

// Get returns the generator of a module, creating it when create is set.
func (tn *TownNames) Get(grfid uint32, create bool) *TownNameGenerator {
	for _, g := range tn.generators {
		if g.GRFID == grfid {
			return g
		}
	}
	if !create {
		return nil
	}
	g := &TownNameGenerator{GRFID: grfid}
	tn.generators = append(tn.generators, g)
	return g
}

func (tn *TownNames) Delete(grfid uint32) {
	for i, g := range tn.generators {
		if g.GRFID == grfid {
			tn.generators = append(tn.generators[:i], tn.generators[i+1:]...)
			return
		}
	}
}

func (tn *TownNames) Generators() []*TownNameGenerator {
	return tn.generators
}

// Defined reports whether a list id holds any part list.
func (g *TownNameGenerator) Defined(id uint8) bool {
	return int(id) < MaxTownNameLists && len(g.Lists[id]) != 0
}

// AddList appends a part list to list id, updating its total probability.
func (g *TownNameGenerator) AddList(id uint8, pl TownNamePartList) error {
	if int(id) >= MaxTownNameLists {
		return errors.Wrapf(ErrUndefinedTownNameList, "list id %#x", id)
	}
	pl.MaxProb = 0
	for i := range pl.Parts {
		p := &pl.Parts[i]
		if p.IsRef() && !g.Defined(p.Ref) {
			return errors.Wrapf(ErrUndefinedTownNameList, "reference to %#x", p.Ref)
		}
		pl.MaxProb += p.Weight()
	}
	g.Lists[id] = append(g.Lists[id], pl)
	return nil
}

// Generate builds the name of list id for a seed.
func (g *TownNameGenerator) Generate(id uint8, seed uint32) string {
	var sb strings.Builder
	g.generate(&sb, id, seed, 0)
	return sb.String()
}

func (g *TownNameGenerator) generate(sb *strings.Builder, id uint8, seed uint32, depth int) {
	if int(id) >= MaxTownNameLists || depth > maxTownNameDepth {
		return
	}
	for _, pl := range g.Lists[id] {
		bits := uint32(0)
		if pl.BitCount < 32 {
			bits = (seed >> pl.BitStart) & (1<<pl.BitCount - 1)
		}
		r := uint32((uint64(bits) * uint64(pl.MaxProb)) >> pl.BitCount)
		maxProb := uint32(pl.MaxProb)
		for _, p := range pl.Parts {
			maxProb -= uint32(p.Weight())
			if maxProb > r {
				continue
			}
			if p.IsRef() {
				g.generate(sb, p.Ref, seed, depth+1)
			} else {
				sb.WriteString(p.Text)
			}
			break
		}
	}
}
