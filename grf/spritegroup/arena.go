// Package spritegroup builds the decision graphs of Action 2.
//
// Groups live in an Arena and reference each other by Handle. A group is
// never changed after it is added, and it can only reference groups that
// were added before it, so graphs are acyclic by construction.
package spritegroup

import (
	"fmt"

	"github.com/mogaika/newgrf_browser/grf/feature"
	"github.com/mogaika/newgrf_browser/grf/spec"
)

type Handle = spec.GroupHandle

type Kind uint8

const (
	KindReal Kind = iota
	KindResult
	KindDeterministic
	KindRandom
	KindCallback
	KindTileLayout
	KindProduction
)

var kindNames = [...]string{
	KindReal:          "real",
	KindResult:        "result",
	KindDeterministic: "deterministic",
	KindRandom:        "random",
	KindCallback:      "callback",
	KindTileLayout:    "tile_layout",
	KindProduction:    "production",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

type Group interface {
	Kind() Kind
}

// Real selects between sprite sets by the loading state of a vehicle.
type Real struct {
	Feature feature.Feature
	Loaded  []Handle
	Loading []Handle
}

// Result is a span of sprites of one sprite set.
type Result struct {
	FirstSprite uint32
	NumSprites  uint16
}

// Callback is a plain callback result value.
type Callback struct {
	Value uint16
}

const (
	OpAdd = iota
	OpSub
	OpSMin
	OpSMax
	OpUMin
	OpUMax
	OpSDiv
	OpSMod
	OpUDiv
	OpUMod
	OpMul
	OpAnd
	OpOr
	OpXor
	OpStore
	OpRestore
	OpStorePersistent
	OpRor
	OpScmp
	OpUcmp
	OpShl
	OpShr
	OpSar
	OpEnd
)

const (
	AdjustNone = iota
	AdjustDiv
	AdjustMod
)

// Adjust is one variable read step of a deterministic group.
type Adjust struct {
	Operation  uint8
	Variable   uint8
	Parameter  uint8
	ShiftNum   uint8
	Type       uint8
	AndMask    uint32
	AddVal     uint32
	DivMod     uint32
	Subroutine Handle `json:",omitempty"`
	// Unresolved marks a remapped variable this loader does not know,
	// it reads as zero
	Unresolved bool `json:",omitempty"`
}

type Range struct {
	Group Handle
	Low   uint32
	High  uint32
}

const (
	ScopeSelf = iota
	ScopeParent
	ScopeRelative
)

type Deterministic struct {
	Feature feature.Feature
	Scope   uint8
	Size    uint8
	Adjusts []Adjust
	// Ranges is the compacted partition of the whole value space
	Ranges   []Range
	Declared int
	Default  Handle
	// CalculatedResult groups return the computed value as callback result
	CalculatedResult bool
}

const (
	CompareAny = iota
	CompareAll
)

type Random struct {
	Feature       feature.Feature
	Scope         uint8
	Count         uint8
	Compare       uint8
	Triggers      uint8
	LowestRandBit uint8
	Groups        []Handle
	// InvalidCount is set when len(Groups) is not a power of two
	InvalidCount bool `json:",omitempty"`
}

type TileLayout struct {
	Feature feature.Feature
	Layout  *spec.SpriteLayout
}

const (
	OriginalProductionInputs  = 3
	OriginalProductionOutputs = 2
	MaxProductionCargoes      = 16
)

// Production is an industry production callback result. Version 0 holds
// amounts, later versions register numbers.
type Production struct {
	Version       uint8
	NumInput      uint8
	SubtractInput [MaxProductionCargoes]int16
	CargoInput    [MaxProductionCargoes]spec.CargoID
	NumOutput     uint8
	AddOutput     [MaxProductionCargoes]uint16
	CargoOutput   [MaxProductionCargoes]spec.CargoID
	Again         uint8
	// InvalidCargo marks a version 2 group referencing a cargo that does not exist
	InvalidCargo bool `json:",omitempty"`
}

func (*Real) Kind() Kind          { return KindReal }
func (*Result) Kind() Kind        { return KindResult }
func (*Callback) Kind() Kind      { return KindCallback }
func (*Deterministic) Kind() Kind { return KindDeterministic }
func (*Random) Kind() Kind        { return KindRandom }
func (*TileLayout) Kind() Kind    { return KindTileLayout }
func (*Production) Kind() Kind    { return KindProduction }

// Arena owns every group of a load.
type Arena struct {
	groups    []Group
	callbacks map[uint16]Handle
}

func NewArena() *Arena {
	return &Arena{callbacks: make(map[uint16]Handle)}
}

func (a *Arena) Add(g Group) Handle {
	a.groups = append(a.groups, g)
	return Handle(len(a.groups))
}

// Get returns the group of a handle, nil for NoGroup or foreign handles.
func (a *Arena) Get(h Handle) Group {
	if h <= spec.NoGroup || int(h) > len(a.groups) {
		return nil
	}
	return a.groups[h-1]
}

// Callback returns the shared group of a callback result value.
func (a *Arena) Callback(value uint16) Handle {
	if h, ok := a.callbacks[value]; ok {
		return h
	}
	h := a.Add(&Callback{Value: value})
	a.callbacks[value] = h
	return h
}

func (a *Arena) Len() int {
	return len(a.groups)
}

// Entry is a group with its handle, used for dumps.
type Entry struct {
	Handle Handle
	Kind   Kind
	Group  Group
}

func (a *Arena) Entries() []Entry {
	list := make([]Entry, len(a.groups))
	for i, g := range a.groups {
		list[i] = Entry{Handle: Handle(i + 1), Kind: g.Kind(), Group: g}
	}
	return list
}

// Children returns the handles a group references.
func Children(g Group) []Handle {
	var list []Handle
	switch g := g.(type) {
	case *Real:
		list = append(list, g.Loaded...)
		list = append(list, g.Loading...)
	case *Deterministic:
		for _, adj := range g.Adjusts {
			if adj.Subroutine != spec.NoGroup {
				list = append(list, adj.Subroutine)
			}
		}
		for _, r := range g.Ranges {
			list = append(list, r.Group)
		}
		list = append(list, g.Default)
	case *Random:
		list = append(list, g.Groups...)
	}
	return list
}
