package spec

import (
	"fmt"

	"github.com/mogaika/newgrf_browser/grf/feature"
)

// Climates
const (
	ClimateTemperate = 0
	ClimateArctic    = 1
	ClimateTropic    = 2
	ClimateToyland   = 3
)

// Limits are the capacities of the global pools.
type Limits struct {
	Engines       int `yaml:"engines"`
	Stations      int `yaml:"stations"`
	Houses        int `yaml:"houses"`
	IndustryTiles int `yaml:"industry_tiles"`
	Industries    int `yaml:"industries"`
	Airports      int `yaml:"airports"`
	AirportTiles  int `yaml:"airport_tiles"`
	Objects       int `yaml:"objects"`
	RoadStops     int `yaml:"road_stops"`
	Signals       int `yaml:"signals"`
	Sounds        int `yaml:"sounds"`
	RailTypes     int `yaml:"rail_types"`
	RoadTypes     int `yaml:"road_types"`
	Classes       int `yaml:"classes"`
}

func DefaultLimits() Limits {
	return Limits{
		Engines:       64000,
		Stations:      64000,
		Houses:        4096,
		IndustryTiles: 512,
		Industries:    240,
		Airports:      128,
		AirportTiles:  256,
		Objects:       64000,
		RoadStops:     64000,
		Signals:       255,
		Sounds:        4096,
		RailTypes:     64,
		RoadTypes:     63,
		Classes:       255,
	}
}

// Counts of base game entries that modules can substitute or override.
const (
	OriginalHouses        = 110
	OriginalIndustries    = 37
	OriginalIndustryTiles = 175
	OriginalAirports      = 10
	OriginalAirportTiles  = 74
	OriginalObjects       = 5
	OriginalBridges       = 13
	OriginalSounds        = 73
)

var climateCargoLabels = [4][]string{
	ClimateTemperate: {"PASS", "COAL", "MAIL", "OIL_", "LVST", "GOOD", "GRAI", "WOOD", "IORE", "STEL", "VALU"},
	ClimateArctic:    {"PASS", "COAL", "MAIL", "OIL_", "LVST", "GOOD", "WHEA", "WOOD", "", "PAPR", "GOLD", "FOOD"},
	ClimateTropic:    {"PASS", "RUBR", "MAIL", "OIL_", "FRUT", "GOOD", "MAIZ", "WOOD", "CORE", "WATR", "DIAM"},
	ClimateToyland:   {"PASS", "SUGR", "MAIL", "TOYS", "BATT", "SWET", "TOFF", "COLA", "CTCD", "BUBL", "PLST", "FZDR"},
}

var originalRailTypes = []string{"RAIL", "ELRL", "MONO", "MGLV"}

type GenericCallback struct {
	GRFID uint32
	Group GroupHandle
}

// Registry owns every specification produced by a load.
type Registry struct {
	Climate uint8
	Limits  Limits

	Engines       *Table[Engine]
	Stations      *Table[StationSpec]
	Canals        *Table[CanalSpec]
	Bridges       *Table[BridgeSpec]
	Houses        *Table[HouseSpec]
	IndustryTiles *Table[IndustryTileSpec]
	Industries    *Table[IndustrySpec]
	Cargoes       *Table[CargoSpec]
	Sounds        *Table[SoundEntry]
	Airports      *Table[AirportSpec]
	Signals       *Table[SignalStyle]
	Objects       *Table[ObjectSpec]
	RailTypes     *Table[RailTypeInfo]
	AirportTiles  *Table[AirportTileSpec]
	RoadTypes     *Table[RoadTypeInfo]
	RoadStops     *Table[RoadStopSpec]

	StationClasses  Classes
	ObjectClasses   Classes
	RoadStopClasses Classes

	// Generic callbacks per feature, most recent first
	GenericCallbacks [feature.Count][]GenericCallback

	// Price multipliers that apply to the whole game
	GlobalPriceMultipliers PriceMultipliers
}

func NewRegistry(climate uint8, limits Limits) *Registry {
	r := &Registry{
		Climate:       climate & 3,
		Limits:        limits,
		Engines:       NewTable[Engine](feature.Trains, limits.Engines),
		Stations:      NewTable[StationSpec](feature.Stations, limits.Stations),
		Canals:        NewTable[CanalSpec](feature.Canals, CanalFeatureCount),
		Bridges:       NewTable[BridgeSpec](feature.Bridges, OriginalBridges),
		Houses:        NewTable[HouseSpec](feature.Houses, limits.Houses),
		IndustryTiles: NewTable[IndustryTileSpec](feature.IndustryTiles, limits.IndustryTiles),
		Industries:    NewTable[IndustrySpec](feature.Industries, limits.Industries),
		Cargoes:       NewTable[CargoSpec](feature.Cargoes, CargoLimit),
		Sounds:        NewTable[SoundEntry](feature.Sounds, limits.Sounds),
		Airports:      NewTable[AirportSpec](feature.Airports, limits.Airports),
		Signals:       NewTable[SignalStyle](feature.Signals, limits.Signals),
		Objects:       NewTable[ObjectSpec](feature.Objects, limits.Objects),
		RailTypes:     NewTable[RailTypeInfo](feature.RailTypes, limits.RailTypes),
		AirportTiles:  NewTable[AirportTileSpec](feature.AirportTiles, limits.AirportTiles),
		RoadTypes:     NewTable[RoadTypeInfo](feature.RoadTypes, limits.RoadTypes),
		RoadStops:     NewTable[RoadStopSpec](feature.RoadStops, limits.RoadStops),

		StationClasses:  Classes{Limit: limits.Classes},
		ObjectClasses:   Classes{Limit: limits.Classes},
		RoadStopClasses: Classes{Limit: limits.Classes},

		GlobalPriceMultipliers: make(PriceMultipliers, PriceCount),
	}
	r.addOriginals()
	return r
}

func (r *Registry) addOriginals() {
	for t := feature.Trains; t <= feature.Aircraft; t++ {
		for i := 0; i < OriginalEngineCounts[t]; i++ {
			e := NewEngine(t)
			e.LocalID = uint16(i)
			e.SubstituteID = uint16(i)
			e.Info.StringID = uint32(0x8000 + r.Engines.Len())
			if t == feature.Trains {
				e.Rail.RailTypeLabel = MakeLabel("RAIL")
			} else if t == feature.RoadVehicles {
				e.Road.RoadTypeLabel = MakeLabel("ROAD")
			}
			r.Engines.AddOriginal(e)
		}
	}

	labels := climateCargoLabels[r.Climate]
	for i := 0; i < CargoLimit; i++ {
		cs := CargoSpec{Bitnum: 0xFF}
		if i < len(labels) && labels[i] != "" {
			cs.Bitnum = uint8(i)
			cs.Label = MakeLabel(labels[i])
			cs.Weight = 16
			cs.TransitPeriods = [2]uint8{7, 255}
			if cs.Label != MakeLabel("PASS") && cs.Label != MakeLabel("MAIL") {
				cs.IsFreight = 1
			}
		}
		r.Cargoes.AddOriginal(cs)
	}
	r.Cargoes.Originals = len(labels)

	for _, label := range originalRailTypes {
		r.RailTypes.AddOriginal(RailTypeInfo{Label: MakeLabel(label), CostMultiplier: 8})
	}
	r.RoadTypes.AddOriginal(RoadTypeInfo{Label: MakeLabel("ROAD")})
	r.RoadTypes.AddOriginal(RoadTypeInfo{Label: MakeLabel("ELRL"), Tram: true})

	for i := 0; i < OriginalHouses; i++ {
		r.Houses.AddOriginal(HouseSpec{Enabled: true, MinYear: 0, MaxYear: 0xFFFF, BuildingFlags: BuildingHas1Tile, Population: 10, Probability: 16})
	}
	for i := 0; i < OriginalIndustryTiles; i++ {
		r.IndustryTiles.AddOriginal(IndustryTileSpec{Enabled: true})
	}
	for i := 0; i < OriginalIndustries; i++ {
		r.Industries.AddOriginal(IndustrySpec{Enabled: true, Layouts: []IndustryLayout{{Imported: true, ImportType: uint8(i)}}})
	}
	for i := 0; i < OriginalAirports; i++ {
		r.Airports.AddOriginal(AirportSpec{Enabled: true, MaxYear: 0xFFFF, Layouts: []AirportLayout{{}}})
	}
	for i := 0; i < OriginalAirportTiles; i++ {
		r.AirportTiles.AddOriginal(AirportTileSpec{Enabled: true})
	}
	for i := 0; i < OriginalObjects; i++ {
		r.Objects.AddOriginal(ObjectSpec{Enabled: true, Size: 0x11, Views: 1})
	}
	for i := 0; i < OriginalBridges; i++ {
		r.Bridges.AddOriginal(BridgeSpec{MinLength: 0, MaxLength: 0xFFFF, CostFactor: 100, Speed: 0xFFFF})
	}
	for i := 0; i < CanalFeatureCount; i++ {
		r.Canals.AddOriginal(CanalSpec{})
	}
	for i := 0; i < OriginalSounds; i++ {
		r.Sounds.AddOriginal(SoundEntry{Volume: 128, Priority: 0, Loaded: true})
	}

	r.StationClasses.Allocate(MakeLabel("DFLT"))
	r.StationClasses.Allocate(MakeLabel("WAYP"))
	r.RoadStopClasses.Allocate(MakeLabel("DFLT"))
	r.RoadStopClasses.Allocate(MakeLabel("WAYP"))
	r.ObjectClasses.Allocate(MakeLabel("LTHS"))
	r.ObjectClasses.Allocate(MakeLabel("TRNS"))
}

// CargoByLabel returns the cargo slot with a label.
func (r *Registry) CargoByLabel(label Label) CargoID {
	for _, e := range r.Cargoes.Entries() {
		if e.Spec.Valid() && e.Spec.Label == label {
			return CargoID(e.ID)
		}
	}
	return InvalidCargo
}

// CargoByBitnum returns the cargo slot with a climate independent bit number.
func (r *Registry) CargoByBitnum(bitnum uint8) CargoID {
	if bitnum == 0xFF {
		return InvalidCargo
	}
	for _, e := range r.Cargoes.Entries() {
		if e.Spec.Valid() && e.Spec.Bitnum == bitnum {
			return CargoID(e.ID)
		}
	}
	return InvalidCargo
}

// DefaultCargoTranslation is the translation table of modules that do not
// install their own: cargo labels by bit number.
func (r *Registry) DefaultCargoTranslation() []Label {
	list := make([]Label, 32)
	for _, e := range r.Cargoes.Entries() {
		if e.Spec.Valid() && e.Spec.Bitnum < 32 {
			list[e.Spec.Bitnum] = e.Spec.Label
		}
	}
	return list
}

// RailTypeByLabel looks at primary labels first, then alternate labels.
func (r *Registry) RailTypeByLabel(label Label, allowAlternate bool) (uint8, bool) {
	for _, e := range r.RailTypes.Entries() {
		if e.Spec.Label == label {
			return uint8(e.ID), true
		}
	}
	if allowAlternate {
		for _, e := range r.RailTypes.Entries() {
			for _, alt := range e.Spec.AlternateLabels {
				if alt == label {
					return uint8(e.ID), true
				}
			}
		}
	}
	return 0xFF, false
}

// AllocateRailType returns the type with label, creating it when needed.
func (r *Registry) AllocateRailType(label Label) (uint8, bool) {
	if id, ok := r.RailTypeByLabel(label, false); ok {
		return id, true
	}
	if r.RailTypes.Len() >= r.RailTypes.Limit {
		return 0xFF, false
	}
	id := uint16(r.RailTypes.Len())
	rti := r.RailTypes.Get(0).Spec
	rti.GRFProps = GRFProps{}
	rti.Label = label
	rti.AlternateLabels = nil
	r.RailTypes.Put(id, rti)
	return uint8(id), true
}

func (r *Registry) RoadTypeByLabel(label Label, tram bool, allowAlternate bool) (uint8, bool) {
	for _, e := range r.RoadTypes.Entries() {
		if e.Spec.Tram == tram && e.Spec.Label == label {
			return uint8(e.ID), true
		}
	}
	if allowAlternate {
		for _, e := range r.RoadTypes.Entries() {
			if e.Spec.Tram != tram {
				continue
			}
			for _, alt := range e.Spec.AlternateLabels {
				if alt == label {
					return uint8(e.ID), true
				}
			}
		}
	}
	return 0xFF, false
}

func (r *Registry) AllocateRoadType(label Label, tram bool) (uint8, bool) {
	if id, ok := r.RoadTypeByLabel(label, tram, false); ok {
		return id, true
	}
	if r.RoadTypes.Len() >= r.RoadTypes.Limit {
		return 0xFF, false
	}
	id := uint16(r.RoadTypes.Len())
	r.RoadTypes.Put(id, RoadTypeInfo{Label: label, Tram: tram})
	return uint8(id), true
}

// AddGenericCallback registers a feature wide callback group.
func (r *Registry) AddGenericCallback(f feature.Feature, grfid uint32, group GroupHandle) {
	if !f.Valid() {
		return
	}
	list := r.GenericCallbacks[f]
	r.GenericCallbacks[f] = append([]GenericCallback{{GRFID: grfid, Group: group}}, list...)
}

// Summary returns entry counts per feature, used by tools and the browser.
func (r *Registry) Summary() map[string]int {
	return map[string]int{
		feature.Trains.Name():        r.Engines.Len(),
		feature.Stations.Name():      r.Stations.Len(),
		feature.Canals.Name():        r.Canals.Len(),
		feature.Bridges.Name():       r.Bridges.Len(),
		feature.Houses.Name():        r.Houses.Len(),
		feature.IndustryTiles.Name(): r.IndustryTiles.Len(),
		feature.Industries.Name():    r.Industries.Len(),
		feature.Cargoes.Name():       r.Cargoes.Len(),
		feature.Sounds.Name():        r.Sounds.Len(),
		feature.Airports.Name():      r.Airports.Len(),
		feature.Signals.Name():       r.Signals.Len(),
		feature.Objects.Name():       r.Objects.Len(),
		feature.RailTypes.Name():     r.RailTypes.Len(),
		feature.AirportTiles.Name():  r.AirportTiles.Len(),
		feature.RoadTypes.Name():     r.RoadTypes.Len(),
		feature.RoadStops.Name():     r.RoadStops.Len(),
	}
}

func filter[T any](t *Table[T], keep func(*T) bool) []*Entry[T] {
	list := make([]*Entry[T], 0)
	for _, e := range t.Entries() {
		if keep(&e.Spec) {
			list = append(list, e)
		}
	}
	return list
}

// Listing returns the entries of a feature for browsing. Vehicle features
// share the engine table, road and tram types the road type table.
func (r *Registry) Listing(f feature.Feature) (interface{}, bool) {
	switch f {
	case feature.Trains, feature.RoadVehicles, feature.Ships, feature.Aircraft:
		return filter(r.Engines, func(e *Engine) bool { return e.Type == f }), true
	case feature.RoadTypes, feature.TramTypes:
		tram := f == feature.TramTypes
		return filter(r.RoadTypes, func(rt *RoadTypeInfo) bool { return rt.Tram == tram }), true
	case feature.Stations:
		return r.Stations.Entries(), true
	case feature.Canals:
		return r.Canals.Entries(), true
	case feature.Bridges:
		return r.Bridges.Entries(), true
	case feature.Houses:
		return r.Houses.Entries(), true
	case feature.IndustryTiles:
		return r.IndustryTiles.Entries(), true
	case feature.Industries:
		return r.Industries.Entries(), true
	case feature.Cargoes:
		return r.Cargoes.Entries(), true
	case feature.Sounds:
		return r.Sounds.Entries(), true
	case feature.Airports:
		return r.Airports.Entries(), true
	case feature.Signals:
		return r.Signals.Entries(), true
	case feature.Objects:
		return r.Objects.Entries(), true
	case feature.RailTypes:
		return r.RailTypes.Entries(), true
	case feature.AirportTiles:
		return r.AirportTiles.Entries(), true
	case feature.RoadStops:
		return r.RoadStops.Entries(), true
	}
	return nil, false
}

// EntryString describes an entry id for diagnostics.
func EntryString(f feature.Feature, id uint16) string {
	return fmt.Sprintf("%v #%d", f, id)
}
