// Package feature describes the categories of game objects a module can define.
package feature

import "fmt"

type Feature uint8

const (
	Trains        Feature = 0x00
	RoadVehicles  Feature = 0x01
	Ships         Feature = 0x02
	Aircraft      Feature = 0x03
	Stations      Feature = 0x04
	Canals        Feature = 0x05
	Bridges       Feature = 0x06
	Houses        Feature = 0x07
	GlobalVars    Feature = 0x08
	IndustryTiles Feature = 0x09
	Industries    Feature = 0x0A
	Cargoes       Feature = 0x0B
	Sounds        Feature = 0x0C
	Airports      Feature = 0x0D
	Signals       Feature = 0x0E
	Objects       Feature = 0x0F
	RailTypes     Feature = 0x10
	AirportTiles  Feature = 0x11
	RoadTypes     Feature = 0x12
	TramTypes     Feature = 0x13
	RoadStops     Feature = 0x14

	Count           = 0x15
	Invalid Feature = 0xFF

	// OriginalStrings is the pseudo feature used by Action 4 for generic strings
	OriginalStrings Feature = 0x48
)

// GroupKind is the payload form of a non-deterministic Action 2 for a feature.
type GroupKind uint8

const (
	GroupNone GroupKind = iota
	GroupReal
	GroupTileLayout
	GroupProduction
)

type Info struct {
	Feature Feature
	Name    string
	// DefineProperty creates the object, 0 when objects always exist
	DefineProperty uint8
	// NameIDsExtended means Action 4 ids are read as extended bytes
	NameIDsExtended bool
	Group           GroupKind
	// SpriteSets means Action 1 sprite sets are meaningful for the feature
	SpriteSets bool
}

var infos = [Count]Info{
	Trains:        {Trains, "trains", 0, true, GroupReal, true},
	RoadVehicles:  {RoadVehicles, "road_vehicles", 0, true, GroupReal, true},
	Ships:         {Ships, "ships", 0, true, GroupReal, true},
	Aircraft:      {Aircraft, "aircraft", 0, true, GroupReal, true},
	Stations:      {Stations, "stations", 0x08, false, GroupReal, true},
	Canals:        {Canals, "canals", 0, false, GroupReal, true},
	Bridges:       {Bridges, "bridges", 0, false, GroupNone, false},
	Houses:        {Houses, "houses", 0x08, false, GroupTileLayout, true},
	GlobalVars:    {GlobalVars, "global_settings", 0, false, GroupNone, false},
	IndustryTiles: {IndustryTiles, "industry_tiles", 0x08, false, GroupTileLayout, true},
	Industries:    {Industries, "industries", 0x08, false, GroupProduction, false},
	Cargoes:       {Cargoes, "cargoes", 0, false, GroupReal, true},
	Sounds:        {Sounds, "sound_effects", 0, false, GroupNone, false},
	Airports:      {Airports, "airports", 0x08, false, GroupReal, true},
	Signals:       {Signals, "signals", 0x08, false, GroupReal, true},
	Objects:       {Objects, "objects", 0x08, false, GroupTileLayout, true},
	RailTypes:     {RailTypes, "rail_types", 0x08, false, GroupReal, true},
	AirportTiles:  {AirportTiles, "airport_tiles", 0x08, false, GroupTileLayout, true},
	RoadTypes:     {RoadTypes, "road_types", 0x08, false, GroupReal, true},
	TramTypes:     {TramTypes, "tram_types", 0x08, false, GroupReal, true},
	RoadStops:     {RoadStops, "road_stops", 0x08, false, GroupTileLayout, true},
}

func (f Feature) Valid() bool {
	return f < Count
}

func (f Feature) Info() Info {
	if !f.Valid() {
		return Info{Feature: Invalid, Name: "invalid"}
	}
	return infos[f]
}

func (f Feature) Name() string {
	return f.Info().Name
}

func (f Feature) String() string {
	if !f.Valid() {
		return fmt.Sprintf("feature(0x%.2x)", uint8(f))
	}
	return fmt.Sprintf("%s(0x%.2x)", infos[f].Name, uint8(f))
}

func (f Feature) IsVehicle() bool {
	return f <= Aircraft
}

func (f Feature) Bit() uint32 {
	return 1 << uint(f)
}

func All() []Feature {
	list := make([]Feature, Count)
	for i := range list {
		list[i] = Feature(i)
	}
	return list
}

func ByName(name string) (Feature, bool) {
	for _, info := range infos {
		if info.Name == name {
			return info.Feature, true
		}
	}
	return Invalid, false
}

// Set is a bitset of features.
type Set uint32

func (s *Set) Add(f Feature) { *s |= Set(f.Bit()) }
func (s Set) Has(f Feature) bool { return s&Set(f.Bit()) != 0 }
func (s Set) List() []Feature {
	var list []Feature
	for _, f := range All() {
		if s.Has(f) {
			list = append(list, f)
		}
	}
	return list
}
