package spec

// Class groups stations, road stops or objects under a label for the
// construction GUI.
type Class struct {
	Label  Label
	NameID uint32
}

// Classes allocates class indices by label, first come first served.
type Classes struct {
	List  []Class
	Limit int
}

func (c *Classes) Allocate(label Label) (uint8, bool) {
	for i, cls := range c.List {
		if cls.Label == label {
			return uint8(i), true
		}
	}
	if len(c.List) >= c.Limit {
		return 0xFF, false
	}
	c.List = append(c.List, Class{Label: label})
	return uint8(len(c.List) - 1), true
}

type StationSpec struct {
	GRFProps
	ClassIndex          uint8
	NameID              uint16
	Name                uint32 `json:",omitempty" yaml:",omitempty"`
	CallbackMask        uint8
	DisallowedPlatforms uint8
	DisallowedLengths   uint8
	CargoThreshold      uint16
	CargoTriggers       CargoMask
	Flags               uint8
	Pylons              uint8
	Wires               uint8
	Blocked             uint8
	Animation           AnimationInfo
	BridgeHeights       [8]uint8
	BridgeHeightsSet    bool
	TileFlags           []uint8 `json:",omitempty" yaml:",omitempty"`

	Layouts []*SpriteLayout `json:",omitempty" yaml:",omitempty"`
	// Platforms holds custom layouts by platform count then length
	Platforms map[uint8]map[uint8][]byte `json:",omitempty" yaml:",omitempty"`
}

type RoadStopSpec struct {
	GRFProps
	ClassIndex    uint8
	StopType      uint8
	NameID        uint16
	ClassNameID   uint16
	DrawMode      uint8
	CargoTriggers CargoMask
	Animation     AnimationInfo
	CallbackMask  uint8
	Flags         uint32
	BuildCostMult uint8
	ClearCostMult uint8
}
