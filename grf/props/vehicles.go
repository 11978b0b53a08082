package props

import (
	"github.com/mogaika/newgrf_browser/grf/feature"
	"github.com/mogaika/newgrf_browser/grf/ids"
	"github.com/mogaika/newgrf_browser/grf/spec"
	"github.com/mogaika/newgrf_browser/utils"
)

// DaysTillOriginalBaseYear converts short introduction dates to absolute days.
const DaysTillOriginalBaseYear = 701265

// engineObject materializes the engine of a local vehicle id.
func engineObject(c *Context) (*spec.Engine, error) {
	e, err := Engine(c, c.Feature, c.ID, false)
	if err != nil || e == nil {
		return nil, err
	}
	c.Global = e.ID
	return &e.Spec, nil
}

// Engine returns the engine a module addresses with a local id, allocating
// it unless static is set. The entry is nil when no engine can be found.
func Engine(env Env, f feature.Feature, local uint16, static bool) (*spec.Entry[spec.Engine], error) {
	reg := env.Registry()
	global, outcome, err := env.IDs().Resolve(f, env.GRFID(), local, local, static)
	if err != nil {
		return nil, err
	}
	if outcome == ids.NotFound {
		return nil, nil
	}
	if outcome == ids.Allocated {
		reg.Engines.Put(global, engineTemplate(reg, f, local))
	}
	e := reg.Engines.Get(global)
	if e == nil {
		return nil, nil
	}
	if !e.Defined && !static {
		e.Defined = true
		e.Spec.GRFID = env.GRFID()
		e.Spec.LocalID = local
		e.Spec.SubstituteID = local
		env.Log().Tracef("Engine %v local %d is global %d (%v)", f, local, global, outcome)
	}
	return e, nil
}

// engineTemplate clones the original engine with the same local id, or a
// generic engine of the type.
func engineTemplate(reg *spec.Registry, f feature.Feature, local uint16) spec.Engine {
	count := spec.OriginalEngineCounts[f]
	if int(local) < count {
		if orig := reg.Engines.Spec(uint16(spec.OriginalEngineOffset(f) + int(local))); orig != nil && orig.Type == f {
			e := *orig
			e.GRFProps = spec.GRFProps{}
			e.WagonOverrides = nil
			e.Refit = spec.EngineRefit{}
			return e
		}
	}
	return spec.NewEngine(f)
}

func commonVehicleProperties() []Property[spec.Engine] {
	return []Property[spec.Engine]{
		mapped(0x00, "intro_date", 2,
			func(e *spec.Engine, v uint32) { e.Info.IntroDate = v + DaysTillOriginalBaseYear },
			func(e *spec.Engine) uint32 { return e.Info.IntroDate - DaysTillOriginalBaseYear }),
		u8(0x02, "reliability_decay", func(e *spec.Engine) *uint8 { return &e.Info.DecaySpeed }),
		u8(0x03, "vehicle_life", func(e *spec.Engine) *uint8 { return &e.Info.VehicleLife }),
		u8(0x04, "model_life", func(e *spec.Engine) *uint8 { return &e.Info.BaseLife }),
		u8(0x06, "climates_available", func(e *spec.Engine) *uint8 { return &e.Info.Climates }),
		u8(0x07, "loading_speed", func(e *spec.Engine) *uint8 { return &e.Info.LoadAmount }),
	}
}

func cargoTypeProperty(code uint8) Property[spec.Engine] {
	return custom(code, "default_cargo_type", func(c *Context, r *utils.ByteReader, e *spec.Engine) error {
		cargo, err := readCargo(c, r)
		if err != nil || e == nil {
			return err
		}
		e.Info.CargoType = cargo
		e.Info.CargoLabel = 0
		return nil
	})
}

func refitMaskProperty(code uint8) Property[spec.Engine] {
	return custom(code, "refit_mask", func(c *Context, r *utils.ByteReader, e *spec.Engine) error {
		mask, err := r.ReadU32()
		if err != nil || e == nil {
			return err
		}
		e.Refit.MaskRaw = mask
		e.Refit.MaskSet = true
		e.Refit.Mask = TranslateRefitMask(c, mask)
		return nil
	})
}

func cargoListProperty(code uint8, include bool) Property[spec.Engine] {
	name := "cargo_disallow_list"
	if include {
		name = "cargo_allow_list"
	}
	return custom(code, name, func(c *Context, r *utils.ByteReader, e *spec.Engine) error {
		list, err := readCargoList(c, r)
		if err != nil || e == nil {
			return err
		}
		e.Refit.MaskSet = true
		if include {
			e.Refit.Include = list
		} else {
			e.Refit.Exclude = list
		}
		return nil
	})
}

func sortAfterProperty(code uint8) Property[spec.Engine] {
	return custom(code, "sort_purchase_list", func(c *Context, r *utils.ByteReader, e *spec.Engine) error {
		target, err := r.ReadExtended()
		if err != nil || e == nil {
			return err
		}
		e.Info.SortAfter = target
		e.Info.HasSortAfter = true
		return nil
	})
}

// Properties every vehicle type has, at type specific codes.
type vehicleCodes struct {
	cargoType      uint8
	refitMask      uint8
	callbackMask   uint8
	retireEarly    uint8
	miscFlags      uint8
	classesAllowed uint8
	classesDenied  uint8
	longIntroDate  uint8
	sortAfter      uint8
	cargoAgePeriod uint8
	allowList      uint8
	denyList       uint8
	variant        uint8
	extraFlags     uint8
	callbackMask2  uint8
}

func (vc vehicleCodes) properties() []Property[spec.Engine] {
	return []Property[spec.Engine]{
		cargoTypeProperty(vc.cargoType),
		refitMaskProperty(vc.refitMask),
		u8(vc.callbackMask, "callback_flags", func(e *spec.Engine) *uint8 { return &e.Info.CallbackMask }),
		u8(vc.retireEarly, "retire_early", func(e *spec.Engine) *int8 { return &e.Info.RetireEarly }),
		u8(vc.miscFlags, "misc_flags", func(e *spec.Engine) *uint8 { return &e.Info.MiscFlags }),
		u16(vc.classesAllowed, "refittable_cargo_classes", func(e *spec.Engine) *uint16 { return &e.Refit.ClassesAllowed }),
		u16(vc.classesDenied, "non_refittable_cargo_classes", func(e *spec.Engine) *uint16 { return &e.Refit.ClassesDenied }),
		u32(vc.longIntroDate, "long_intro_date", func(e *spec.Engine) *uint32 { return &e.Info.IntroDate }),
		sortAfterProperty(vc.sortAfter),
		u16(vc.cargoAgePeriod, "cargo_age_period", func(e *spec.Engine) *uint16 { return &e.Info.CargoAgePeriod }),
		cargoListProperty(vc.allowList, true),
		cargoListProperty(vc.denyList, false),
		u16(vc.variant, "variant_group", func(e *spec.Engine) *uint16 { return &e.Info.VariantID }),
		u32(vc.extraFlags, "extra_flags", func(e *spec.Engine) *uint32 { return &e.Info.ExtraFlags }),
		u8(vc.callbackMask2, "callback_flags_2", func(e *spec.Engine) *uint8 { return &e.Info.CallbackMask2 }),
	}
}

func vehicleTable(f feature.Feature, codes vehicleCodes, specific ...Property[spec.Engine]) *Table[spec.Engine] {
	list := commonVehicleProperties()
	list = append(list, codes.properties()...)
	list = append(list, specific...)
	return newTable(f, engineObject, list...)
}

// Original track types of modules without a rail type table.
var originalTrackLabels = []string{"RAIL", "MONO", "MGLV"}

func trainProperties() []Property[spec.Engine] {
	return []Property[spec.Engine]{
		custom(0x05, "track_type", func(c *Context, r *utils.ByteReader, e *spec.Engine) error {
			tt, err := r.ReadU8()
			if err != nil || e == nil {
				return err
			}
			if list := c.File().RailTypeList; int(tt) < len(list) {
				e.Rail.RailTypeLabel = list[tt]
				return nil
			}
			if int(tt) >= len(originalTrackLabels) {
				c.Log().Infof("Invalid track type %d specified, ignoring", tt)
				return nil
			}
			e.Rail.RailTypeLabel = spec.MakeLabel(originalTrackLabels[tt])
			if tt == 0 && e.Rail.EngineClass >= 2 {
				e.Rail.RailTypeLabel = spec.MakeLabel("ELRL")
			}
			return nil
		}),
		u8(0x08, "ai_passenger_only", func(e *spec.Engine) *uint8 { return &e.Rail.AIPassengerOnly }),
		u16(0x09, "speed", func(e *spec.Engine) *uint16 { return &e.Rail.MaxSpeed }),
		u16(0x0B, "power", func(e *spec.Engine) *uint16 { return &e.Rail.Power }),
		u8(0x0D, "running_cost_factor", func(e *spec.Engine) *uint8 { return &e.Rail.RunningCost }),
		u32(0x0E, "running_cost_base", func(e *spec.Engine) *uint32 { return &e.Rail.RunningCostClass }),
		spriteIDProperty(0x12, func(e *spec.Engine) *uint8 { return &e.Rail.ImageIndex }),
		u8(0x13, "dual_headed", func(e *spec.Engine) *uint8 { return &e.Rail.DualHeaded }),
		u8(0x14, "cargo_capacity", func(e *spec.Engine) *uint8 { return &e.Rail.Capacity }),
		u8(0x16, "weight_low", func(e *spec.Engine) *uint8 { return &e.Rail.WeightLow }),
		u8(0x17, "cost_factor", func(e *spec.Engine) *uint8 { return &e.Rail.CostFactor }),
		u8(0x18, "ai_engine_rank", func(e *spec.Engine) *uint8 { return &e.Rail.AIRank }),
		u8(0x19, "engine_class", func(e *spec.Engine) *uint8 { return &e.Rail.EngineClass }),
		u16(0x1B, "powered_wagons_power", func(e *spec.Engine) *uint16 { return &e.Rail.PowWagPower }),
		u8(0x1C, "refit_cost", func(e *spec.Engine) *uint8 { return &e.Rail.RefitCost }),
		u8(0x1F, "tractive_effort", func(e *spec.Engine) *uint8 { return &e.Rail.TractiveEffort }),
		u8(0x20, "air_drag", func(e *spec.Engine) *uint8 { return &e.Rail.AirDrag }),
		u8(0x21, "shorten_factor", func(e *spec.Engine) *uint8 { return &e.Rail.ShortenFactor }),
		u8(0x22, "visual_effect", func(e *spec.Engine) *uint8 { return &e.Rail.VisualEffect }),
		u8(0x23, "powered_wagons_weight", func(e *spec.Engine) *uint8 { return &e.Rail.PowWagWeight }),
		u8(0x24, "weight_high", func(e *spec.Engine) *uint8 { return &e.Rail.WeightHigh }),
		u8(0x25, "user_data", func(e *spec.Engine) *uint8 { return &e.Rail.UserDefData }),
		u16(0x2E, "curve_speed_mod", func(e *spec.Engine) *int16 { return &e.Rail.CurveSpeedMod }),
	}
}

var trainCodes = vehicleCodes{
	cargoType: 0x15, refitMask: 0x1D, callbackMask: 0x1E, retireEarly: 0x26,
	miscFlags: 0x27, classesAllowed: 0x28, classesDenied: 0x29, longIntroDate: 0x2A, sortAfter: 0x1A,
	cargoAgePeriod: 0x2B, allowList: 0x2C, denyList: 0x2D, variant: 0x2F, extraFlags: 0x30, callbackMask2: 0x31,
}

// spriteIDProperty stores the original sprite index of a vehicle. Values
// below 0xFD address the original sprites at half resolution.
func spriteIDProperty(code uint8, field func(e *spec.Engine) *uint8) Property[spec.Engine] {
	return custom(code, "sprite_id", func(c *Context, r *utils.ByteReader, e *spec.Engine) error {
		id, err := r.ReadU8()
		if err != nil || e == nil {
			return err
		}
		if id < 0xFD {
			id >>= 1
		}
		*field(e) = id
		return nil
	})
}

func roadVehicleProperties() []Property[spec.Engine] {
	return []Property[spec.Engine]{
		custom(0x05, "road_type", func(c *Context, r *utils.ByteReader, e *spec.Engine) error {
			rt, err := r.ReadU8()
			if err != nil || e == nil {
				return err
			}
			list := c.File().RoadTypeList
			if e.Road.Tram {
				list = c.File().TramTypeList
			}
			if int(rt) < len(list) {
				e.Road.RoadTypeLabel = list[rt]
			} else {
				c.Log().Infof("Invalid road type %d specified, ignoring", rt)
			}
			return nil
		}),
		u8(0x08, "speed", func(e *spec.Engine) *uint8 { return &e.Road.MaxSpeedByte }),
		u8(0x09, "running_cost_factor", func(e *spec.Engine) *uint8 { return &e.Road.RunningCost }),
		u32(0x0A, "running_cost_base", func(e *spec.Engine) *uint32 { return &e.Road.RunningCostClass }),
		spriteIDProperty(0x0E, func(e *spec.Engine) *uint8 { return &e.Road.ImageIndex }),
		u8(0x0F, "cargo_capacity", func(e *spec.Engine) *uint8 { return &e.Road.Capacity }),
		u8(0x11, "cost_factor", func(e *spec.Engine) *uint8 { return &e.Road.CostFactor }),
		u8(0x12, "sound_effect", func(e *spec.Engine) *uint8 { return &e.Road.SoundEffect }),
		u8(0x13, "power", func(e *spec.Engine) *uint8 { return &e.Road.Power }),
		u8(0x14, "weight", func(e *spec.Engine) *uint8 { return &e.Road.Weight }),
		u8(0x15, "speed_high", func(e *spec.Engine) *uint8 { return &e.Road.MaxSpeed }),
		u8(0x18, "tractive_effort", func(e *spec.Engine) *uint8 { return &e.Road.TractiveEffort }),
		u8(0x19, "air_drag", func(e *spec.Engine) *uint8 { return &e.Road.AirDrag }),
		u8(0x1A, "refit_cost", func(e *spec.Engine) *uint8 { return &e.Road.RefitCost }),
		u8(0x21, "visual_effect", func(e *spec.Engine) *uint8 { return &e.Road.VisualEffect }),
		u8(0x23, "shorten_factor", func(e *spec.Engine) *uint8 { return &e.Road.ShortenFactor }),
	}
}

var roadVehicleCodes = vehicleCodes{
	cargoType: 0x10, refitMask: 0x16, callbackMask: 0x17, retireEarly: 0x1B, miscFlags: 0x1C,
	classesAllowed: 0x1D, classesDenied: 0x1E, longIntroDate: 0x1F, sortAfter: 0x20, cargoAgePeriod: 0x22,
	allowList: 0x24, denyList: 0x25, variant: 0x26, extraFlags: 0x27, callbackMask2: 0x28,
}

func shipProperties() []Property[spec.Engine] {
	return []Property[spec.Engine]{
		spriteIDProperty(0x08, func(e *spec.Engine) *uint8 { return &e.Ship.ImageIndex }),
		u8(0x09, "refittable", func(e *spec.Engine) *uint8 { return &e.Ship.OldRefittable }),
		u8(0x0A, "cost_factor", func(e *spec.Engine) *uint8 { return &e.Ship.CostFactor }),
		u8(0x0B, "speed", func(e *spec.Engine) *uint8 { return &e.Ship.MaxSpeed }),
		u16(0x0C, "cargo_capacity", func(e *spec.Engine) *uint16 { return &e.Ship.Capacity }),
		u8(0x0F, "running_cost_factor", func(e *spec.Engine) *uint8 { return &e.Ship.RunningCost }),
		u8(0x10, "sound_effect", func(e *spec.Engine) *uint8 { return &e.Ship.SoundEffect }),
		u8(0x13, "refit_cost", func(e *spec.Engine) *uint8 { return &e.Ship.RefitCost }),
		u8(0x14, "ocean_speed_fraction", func(e *spec.Engine) *uint8 { return &e.Ship.OceanSpeedFrac }),
		u8(0x15, "canal_speed_fraction", func(e *spec.Engine) *uint8 { return &e.Ship.CanalSpeedFrac }),
		u8(0x1C, "visual_effect", func(e *spec.Engine) *uint8 { return &e.Ship.VisualEffect }),
	}
}

var shipCodes = vehicleCodes{
	cargoType: 0x0D, refitMask: 0x11, callbackMask: 0x12, retireEarly: 0x16, miscFlags: 0x17,
	classesAllowed: 0x18, classesDenied: 0x19, longIntroDate: 0x1A, sortAfter: 0x1B, cargoAgePeriod: 0x1D,
	allowList: 0x1E, denyList: 0x1F, variant: 0x20, extraFlags: 0x21, callbackMask2: 0x22,
}

func aircraftProperties() []Property[spec.Engine] {
	return []Property[spec.Engine]{
		spriteIDProperty(0x08, func(e *spec.Engine) *uint8 { return &e.Aircraft.ImageIndex }),
		u8(0x09, "is_helicopter", func(e *spec.Engine) *uint8 { return &e.Aircraft.Subtype }),
		u8(0x0A, "is_large", func(e *spec.Engine) *uint8 { return &e.Aircraft.IsLarge }),
		u8(0x0B, "cost_factor", func(e *spec.Engine) *uint8 { return &e.Aircraft.CostFactor }),
		u8(0x0C, "speed", func(e *spec.Engine) *uint8 { return &e.Aircraft.MaxSpeed }),
		u8(0x0D, "acceleration", func(e *spec.Engine) *uint8 { return &e.Aircraft.Acceleration }),
		u8(0x0E, "running_cost_factor", func(e *spec.Engine) *uint8 { return &e.Aircraft.RunningCost }),
		u16(0x0F, "passenger_capacity", func(e *spec.Engine) *uint16 { return &e.Aircraft.Passengers }),
		u8(0x11, "mail_capacity", func(e *spec.Engine) *uint8 { return &e.Aircraft.MailCapacity }),
		u8(0x12, "sound_effect", func(e *spec.Engine) *uint8 { return &e.Aircraft.SoundEffect }),
		u8(0x15, "refit_cost", func(e *spec.Engine) *uint8 { return &e.Aircraft.RefitCost }),
		u16(0x1F, "range", func(e *spec.Engine) *uint16 { return &e.Aircraft.Range }),
	}
}

var aircraftCodes = vehicleCodes{
	cargoType: 0x10, refitMask: 0x13, callbackMask: 0x14, retireEarly: 0x16, miscFlags: 0x17,
	classesAllowed: 0x18, classesDenied: 0x19, longIntroDate: 0x1A, sortAfter: 0x1B, cargoAgePeriod: 0x1C,
	allowList: 0x1D, denyList: 0x1E, variant: 0x20, extraFlags: 0x21, callbackMask2: 0x22,
}

func init() {
	register(vehicleTable(feature.Trains, trainCodes, trainProperties()...))

	rv := vehicleTable(feature.RoadVehicles, roadVehicleCodes, roadVehicleProperties()...)
	// Misc flag bit 0 turns a road vehicle into a tram
	misc := rv.props[roadVehicleCodes.miscFlags]
	load := misc.load
	misc.load = func(c *Context, r *utils.ByteReader, e *spec.Engine) error {
		if err := load(c, r, e); err != nil || e == nil {
			return err
		}
		e.Road.Tram = e.Info.MiscFlags&1 != 0
		return nil
	}
	register(rv)

	register(vehicleTable(feature.Ships, shipCodes, shipProperties()...))
	register(vehicleTable(feature.Aircraft, aircraftCodes, aircraftProperties()...))
}
