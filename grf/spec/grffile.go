package spec

import "github.com/mogaika/newgrf_browser/grf/feature"

// LanguageMap translates a module's gender and case ids of one language.
type LanguageMap struct {
	Genders map[uint8]string `json:",omitempty" yaml:",omitempty"`
	Cases   map[uint8]string `json:",omitempty" yaml:",omitempty"`
	Plural  int8
}

// Currency holds the currency overrides of global settings.
type Currency struct {
	NameID     uint16
	Multiplier uint32
	Options    uint16
	Prefix     uint32
	Suffix     uint32
	EuroIntro  uint16
}

// GRFFile is the state of one module that outlives a single stage: its
// translation tables, price multipliers and other module wide settings.
type GRFFile struct {
	GRFID    uint32
	Filename string
	Version  uint8

	CargoList    []Label `json:",omitempty" yaml:",omitempty"`
	RailTypeList []Label `json:",omitempty" yaml:",omitempty"`
	RoadTypeList []Label `json:",omitempty" yaml:",omitempty"`
	TramTypeList []Label `json:",omitempty" yaml:",omitempty"`

	// Local id to global rail/road/tram type, filled during reservation
	RailTypeMap map[uint16]uint8 `json:",omitempty" yaml:",omitempty"`
	RoadTypeMap map[uint16]uint8 `json:",omitempty" yaml:",omitempty"`
	TramTypeMap map[uint16]uint8 `json:",omitempty" yaml:",omitempty"`

	PriceMultipliers PriceMultipliers
	Features         feature.Set
	Languages        map[uint8]*LanguageMap `json:",omitempty" yaml:",omitempty"`
	Canals           [CanalFeatureCount]CanalProperties
	Currencies       map[uint16]*Currency `json:",omitempty" yaml:",omitempty"`
	SnowLine         []byte               `json:",omitempty" yaml:",omitempty"`
	Signals          SignalSettings

	SoundOffset uint16
	NumSounds   uint16
}

func NewGRFFile(grfid uint32, filename string) *GRFFile {
	return &GRFFile{
		GRFID:            grfid,
		Filename:         filename,
		RailTypeMap:      make(map[uint16]uint8),
		RoadTypeMap:      make(map[uint16]uint8),
		TramTypeMap:      make(map[uint16]uint8),
		PriceMultipliers: NewPriceMultipliers(),
		Languages:        make(map[uint8]*LanguageMap),
		Currencies:       make(map[uint16]*Currency),
	}
}

func (g *GRFFile) Language(id uint8) *LanguageMap {
	lm, ok := g.Languages[id]
	if !ok {
		lm = &LanguageMap{Plural: -1}
		g.Languages[id] = lm
	}
	return lm
}

func (g *GRFFile) Currency(id uint16) *Currency {
	c, ok := g.Currencies[id]
	if !ok {
		c = &Currency{}
		g.Currencies[id] = c
	}
	return c
}
