package spec

type RailTypeInfo struct {
	GRFProps
	Label           Label
	AlternateLabels []Label `json:",omitempty" yaml:",omitempty"`
	ToolbarCaption  uint16
	MenuText        uint16
	BuildCaption    uint16
	ReplaceText     uint16
	NewEngineText   uint16
	NameID          uint16
	Compatible      []Label `json:",omitempty" yaml:",omitempty"`
	Powered         []Label `json:",omitempty" yaml:",omitempty"`
	IntroRequired   []Label `json:",omitempty" yaml:",omitempty"`
	Introduces      []Label `json:",omitempty" yaml:",omitempty"`
	Flags           uint8
	CurveSpeed      uint8
	StationGraphics uint8
	CostMultiplier  uint16
	MaintenanceMult uint16
	MaxSpeed        uint16
	Acceleration    uint8
	MapColour       uint8
	IntroDate       uint32
	SortOrder       uint8
}

// RoadTypeInfo describes road and tram types, Tram tells them apart.
type RoadTypeInfo struct {
	GRFProps
	Label           Label
	Tram            bool
	AlternateLabels []Label `json:",omitempty" yaml:",omitempty"`
	ToolbarCaption  uint16
	MenuText        uint16
	BuildCaption    uint16
	ReplaceText     uint16
	NewEngineText   uint16
	NameID          uint16
	Powered         []Label `json:",omitempty" yaml:",omitempty"`
	IntroRequired   []Label `json:",omitempty" yaml:",omitempty"`
	Introduces      []Label `json:",omitempty" yaml:",omitempty"`
	Flags           uint8
	CostMultiplier  uint16
	MaintenanceMult uint16
	MaxSpeed        uint16
	MapColour       uint8
	IntroDate       uint32
	SortOrder       uint8
}

const BridgeSpriteTables = 7

type BridgeSpec struct {
	GRFProps
	Year         uint32
	MinLength    uint8
	MaxLength    uint16
	CostFactor   uint8
	Price        uint16
	Speed        uint16
	Flags        uint8
	NameID       uint16
	RailNameID   uint16
	RoadNameID   uint16
	SpriteTables [BridgeSpriteTables][]PalSprite `json:",omitempty" yaml:",omitempty"`
}

const CanalFeatureCount = 9

type CanalProperties struct {
	CallbackMask uint8
	Flags        uint8
}

type CanalSpec struct {
	GRFProps
	CanalProperties
}

// SignalStyle is a custom signal style with its aspect configuration.
type SignalStyle struct {
	GRFProps
	NameID           uint16
	Flags            uint8
	ExtraAspects     uint8
	LookaheadAspects uint8
}

// SignalSettings are the module wide signal flags.
type SignalSettings struct {
	ProgramFlags uint8
	Flags        uint8
	ExtraAspects uint8
}

type AirportTileTable struct {
	X, Y int8
	Gfx  uint16
}

type AirportLayout struct {
	Rotation uint8
	Tiles    []AirportTileTable
}

type AirportSpec struct {
	GRFProps
	Enabled         bool
	Layouts         []AirportLayout `json:",omitempty" yaml:",omitempty"`
	MinYear         uint16
	MaxYear         uint16
	TTDAirportType  uint8
	Catchment       uint8
	NoiseLevel      uint8
	NameID          uint16
	MaintenanceCost uint16
}

type AirportTileSpec struct {
	GRFProps
	Enabled      bool
	CallbackMask uint8
	Animation    AnimationInfo
}

type ObjectSpec struct {
	GRFProps
	Enabled        bool
	ClassIndex     uint8
	ClassNameID    uint16
	NameID         uint16
	Climate        uint8
	Size           uint8
	BuildCostMult  uint8
	IntroDate      uint32
	EndOfLifeDate  uint32
	Flags          uint16
	Animation      AnimationInfo
	ClearCostMult  uint8
	CallbackMask   uint16
	Height         uint8
	Views          uint8
	GenerateAmount uint8
}

// SoundEntry references the payload of a sound effect. Decoding the
// payload is left to the audio collaborator.
type SoundEntry struct {
	GRFID    uint32
	File     string
	Record   int
	SpriteID uint32
	Volume   uint8
	Priority uint8
	// Imported sounds copy another module's sound
	ImportGRFID uint32
	ImportID    uint16
	Imported    bool
	Loaded      bool
}
