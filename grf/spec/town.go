package spec

type HouseSpec struct {
	GRFProps
	Enabled        bool
	BuildingFlags  uint8
	MinYear        uint16
	MaxYear        uint16
	Population     uint8
	MailGeneration uint8
	Acceptance     [16]int8
	AcceptsCargo   [16]CargoID
	AcceptsLabel   [16]Label `json:"-" yaml:"-"`
	RemoveRating   uint16
	RemovalCost    uint8
	NameID         uint16
	// Name is the module string set by Action 4
	Name           uint32 `json:",omitempty" yaml:",omitempty"`
	Availability   uint16
	CallbackMask   uint8
	CallbackMask2  uint8
	ProcessingTime uint8
	RandomColours  [4]uint8
	Probability    uint8
	ExtraFlags     uint8
	Animation      AnimationInfo
	ClassID        uint8
	MinimumLife    uint8
	WatchedCargoes CargoMask
}

// Building flags of houses.
const (
	BuildingIsChurch  = 1 << 4
	BuildingIsStadium = 1 << 5
	BuildingHas1Tile  = 1 << 0
	BuildingIs2x1     = 1 << 1
	BuildingIs1x2     = 1 << 2
	BuildingHas4Tiles = 1 << 3
	BuildingHas2Tiles = BuildingIs2x1 | BuildingIs1x2 | BuildingHas4Tiles
)

type IndustryTileSpec struct {
	GRFProps
	Enabled       bool
	Acceptance    [16]int8
	AcceptsCargo  [16]CargoID
	SlopesRefused uint8
	CallbackMask  uint8
	Animation     AnimationInfo
	SpecialFlags  uint8
}

// IndustryTileLayoutTile is one tile of an industry layout. Gfx refers to
// a global industry tile id.
type IndustryTileLayoutTile struct {
	X, Y int8
	Gfx  uint16
}

// IndustryLayout is a list of tiles, or a reference to a layout of an
// original industry.
type IndustryLayout struct {
	Tiles        []IndustryTileLayoutTile `json:",omitempty" yaml:",omitempty"`
	ImportType   uint8
	ImportLayout uint8
	Imported     bool
}

type IndustrySpec struct {
	GRFProps
	Enabled              bool
	Layouts              []IndustryLayout `json:",omitempty" yaml:",omitempty"`
	LifeType             uint8
	ClosureTextID        uint16
	ProductionUpTextID   uint16
	ProductionDownTextID uint16
	CostMultiplier       uint8
	ProducedCargo        [16]CargoID
	ProductionRate       [16]uint8
	AcceptsCargo         [16]CargoID
	InputMultipliers     [16][16]uint16
	MinimalCargo         uint8
	RandomSounds         []uint8 `json:",omitempty" yaml:",omitempty"`
	ConflictingTypes     [3]uint8
	ApparitionChance     uint8
	AppearIngame         uint8
	MapColour            uint8
	Behaviour            uint32
	NewIndustryTextID    uint16
	NameID               uint16
	ProspectingChance    uint32
	CallbackMask         uint8
	CallbackMask2        uint8
	RemovalCostMult      uint32
	StationNameID        uint16
}

type CargoSpec struct {
	GRFProps
	Bitnum           uint8
	Label            Label
	NameID           uint16
	NameSingularID   uint16
	UnitsVolumeID    uint16
	QuantifierID     uint16
	AbbrevID         uint16
	Sprite           uint16
	Weight           uint8
	TransitPeriods   [2]uint8
	InitialPayment   uint32
	RatingColour     uint8
	LegendColour     uint8
	IsFreight        uint8
	Classes          uint16
	TownEffect       uint8
	MultiplierGrowth uint16
	CallbackMask     uint8
	CapacityMult     uint16
	TownProdEffect   uint8
	TownProdMult     uint16
}

func (c *CargoSpec) Valid() bool {
	return c.Bitnum != 0xFF
}
