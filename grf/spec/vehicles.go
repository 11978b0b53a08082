package spec

import "github.com/mogaika/newgrf_browser/grf/feature"

// EngineInfo holds the properties shared by all vehicle types.
type EngineInfo struct {
	IntroDate      uint32
	DecaySpeed     uint8
	VehicleLife    uint8
	BaseLife       uint8
	Climates       uint8
	LoadAmount     uint8
	CargoType      CargoID
	CargoLabel     Label
	CargoAgePeriod uint16
	CallbackMask   uint8
	CallbackMask2  uint8
	RetireEarly    int8
	MiscFlags      uint8
	StringID       uint32
	SortAfter      uint16
	HasSortAfter   bool
	VariantID      uint16
	ExtraFlags     uint32

	// RefitMask is the global cargo mask computed after loading
	RefitMask CargoMask
}

type RailVehicleInfo struct {
	ImageIndex       uint8
	RailType         uint8
	RailTypeLabel    Label
	AIPassengerOnly  uint8
	MaxSpeed         uint16
	Power            uint16
	RunningCost      uint8
	RunningCostClass uint32
	DualHeaded       uint8
	Capacity         uint8
	WeightLow        uint8
	WeightHigh       uint8
	CostFactor       uint8
	AIRank           uint8
	EngineClass      uint8
	PowWagPower      uint16
	PowWagWeight     uint8
	RefitCost        uint8
	TractiveEffort   uint8
	AirDrag          uint8
	ShortenFactor    uint8
	VisualEffect     uint8
	UserDefData      uint8
	CurveSpeedMod    int16
}

func (r *RailVehicleInfo) Weight() uint16 {
	return uint16(r.WeightHigh)<<8 | uint16(r.WeightLow)
}

type RoadVehicleInfo struct {
	ImageIndex       uint8
	RoadType         uint8
	RoadTypeLabel    Label
	Tram             bool
	MaxSpeedByte     uint8
	RunningCost      uint8
	RunningCostClass uint32
	Capacity         uint8
	CostFactor       uint8
	SoundEffect      uint8
	Power            uint8
	Weight           uint8
	MaxSpeed         uint8
	TractiveEffort   uint8
	AirDrag          uint8
	RefitCost        uint8
	VisualEffect     uint8
	ShortenFactor    uint8
}

type ShipVehicleInfo struct {
	ImageIndex          uint8
	OldRefittable       uint8
	CostFactor          uint8
	MaxSpeed            uint8
	Capacity            uint16
	RunningCost         uint8
	RunningCostClass    uint32
	SoundEffect         uint8
	RefitCost           uint8
	OceanSpeedFrac      uint8
	CanalSpeedFrac      uint8
	VisualEffect        uint8
	AccelerationUnknown uint8
}

type AircraftVehicleInfo struct {
	ImageIndex       uint8
	Subtype          uint8
	IsLarge          uint8
	CostFactor       uint8
	MaxSpeed         uint8
	Acceleration     uint8
	RunningCost      uint8
	RunningCostClass uint32
	Passengers       uint16
	MailCapacity     uint8
	SoundEffect      uint8
	RefitCost        uint8
	Range            uint16
}

// Engine is a vehicle type of any of the four vehicle features.
type Engine struct {
	GRFProps
	Type feature.Feature
	Info EngineInfo

	Rail     RailVehicleInfo     `json:",omitempty" yaml:",omitempty"`
	Road     RoadVehicleInfo     `json:",omitempty" yaml:",omitempty"`
	Ship     ShipVehicleInfo     `json:",omitempty" yaml:",omitempty"`
	Aircraft AircraftVehicleInfo `json:",omitempty" yaml:",omitempty"`

	// Wagon overrides bound by Action 3 with bit 7 set, keyed by engine id
	WagonOverrides map[uint16]map[CargoID]GroupHandle `json:",omitempty" yaml:",omitempty"`

	// Refit accumulation, consumed by finalisation
	Refit EngineRefit
}

// EngineRefit accumulates the refit properties of a module before the
// global refit mask can be computed.
type EngineRefit struct {
	MaskRaw uint32
	MaskSet bool
	// Mask is MaskRaw translated through the module cargo table
	Mask           CargoMask
	ClassesAllowed uint16
	ClassesDenied  uint16
	Include        []CargoID `json:",omitempty" yaml:",omitempty"`
	Exclude        []CargoID `json:",omitempty" yaml:",omitempty"`
}

func (e *Engine) SetWagonOverride(engine uint16, cargo CargoID, group GroupHandle) {
	if e.WagonOverrides == nil {
		e.WagonOverrides = make(map[uint16]map[CargoID]GroupHandle)
	}
	if e.WagonOverrides[engine] == nil {
		e.WagonOverrides[engine] = make(map[CargoID]GroupHandle)
	}
	e.WagonOverrides[engine][cargo] = group
}

// Original vehicle counts per type, in global engine id order.
var OriginalEngineCounts = [4]int{116, 88, 11, 41}

// OriginalEngineOffset returns the global id of the first original engine of a type.
func OriginalEngineOffset(f feature.Feature) int {
	offset := 0
	for t := feature.Trains; t < f && t <= feature.Aircraft; t++ {
		offset += OriginalEngineCounts[t]
	}
	return offset
}

// NewEngine returns the template a new engine of a type is cloned from
// when no original engine with the same local id exists.
func NewEngine(f feature.Feature) Engine {
	e := Engine{Type: f}
	e.Info.Climates = 0x0F
	e.Info.BaseLife = 20
	e.Info.VehicleLife = 15
	e.Info.DecaySpeed = 20
	e.Info.LoadAmount = 5
	e.Info.CargoType = InvalidCargo
	switch f {
	case feature.Trains:
		e.Rail.MaxSpeed = 160
		e.Rail.Power = 500
		e.Rail.WeightLow = 40
		e.Rail.CostFactor = 50
		e.Rail.RunningCost = 50
		e.Rail.TractiveEffort = 0x4C
	case feature.RoadVehicles:
		e.Road.MaxSpeed = 112
		e.Road.MaxSpeedByte = 112
		e.Road.Capacity = 30
		e.Road.CostFactor = 120
		e.Road.RunningCost = 91
		e.Road.TractiveEffort = 0x4C
	case feature.Ships:
		e.Ship.MaxSpeed = 20
		e.Ship.Capacity = 200
		e.Ship.CostFactor = 100
		e.Ship.RunningCost = 100
		e.Ship.OceanSpeedFrac = 0
		e.Ship.CanalSpeedFrac = 128
	case feature.Aircraft:
		e.Aircraft.MaxSpeed = 50
		e.Aircraft.Passengers = 100
		e.Aircraft.MailCapacity = 20
		e.Aircraft.CostFactor = 100
		e.Aircraft.RunningCost = 100
		e.Aircraft.Acceleration = 20
	}
	return e
}
