package props

import (
	"github.com/pkg/errors"

	"github.com/mogaika/newgrf_browser/grf/feature"
	"github.com/mogaika/newgrf_browser/grf/spec"
	"github.com/mogaika/newgrf_browser/utils"
)

const (
	// Year offsets above this value mean no limit
	maxYearOffset    = 150
	originalBaseYear = 1920
	noYearLimit      = 0xFFFF

	// waterTileCheck is the pseudo tile of industry layouts asking for water
	waterTileCheck = 0xFF
	layoutImport   = 0xFE
	newTileMarker  = 0xFE
)

// substituteOriginal reads a substitute id and defines the context id as a
// copy of that original. 0xFF disables the original with the context id
// instead when disableOriginal is set.
func substituteOriginal[T any, PT withProps[T]](c *Context, r *utils.ByteReader, tbl *spec.Table[T], disableOriginal bool, enable func(obj *T)) (*spec.Entry[T], error) {
	subs, err := r.ReadU8()
	if err != nil || !c.Apply {
		return nil, err
	}
	if subs == 0xFF && disableOriginal {
		if orig := tbl.Get(c.ID); orig != nil && orig.Original {
			orig.Disable("disabled by a module")
			c.Log().Debugf("%v %d disabled", c.Feature, c.ID)
		}
		return nil, nil
	}
	if int(subs) >= tbl.Originals {
		c.Log().Warnf("Attempt to use new %v %d as substitute %v for %d, ignoring", c.Feature, subs, c.Feature, c.ID)
		return nil, nil
	}
	e, created, err := define[T, PT](c, tbl, uint16(subs), func() T { return tbl.Get(uint16(subs)).Spec })
	if err != nil {
		return nil, err
	}
	if created {
		props := PT(&e.Spec).Props()
		props.Groups = nil
		props.Override = 0
		if enable != nil {
			enable(&e.Spec)
		}
	}
	return e, nil
}

// overrideProperty makes a module entity replace an original one.
func overrideProperty[T any, PT withProps[T]](code uint8, originals int) Property[T] {
	return custom(code, "override", func(c *Context, r *utils.ByteReader, obj *T) error {
		v, err := r.ReadU8()
		if err != nil || obj == nil {
			return err
		}
		if int(v) >= originals {
			c.Log().Warnf("Attempt to override new %v %d with %v %d, ignoring", c.Feature, v, c.Feature, c.ID)
			return nil
		}
		PT(obj).Props().Override = uint16(v)
		if !c.IDs().AddEntityOverride(c.Feature, uint16(v), c.GRFID(), c.ID) {
			c.Log().Infof("%v %d is already overridden, ignoring override by %d", c.Feature, v, c.ID)
		}
		return nil
	})
}

// acceptanceList reads pairs of cargo and acceptance in eighths.
func acceptanceList(c *Context, r *utils.ByteReader, cargoes *[16]spec.CargoID, amounts *[16]int8) error {
	n, err := r.ReadU8()
	if err != nil {
		return err
	}
	if n > 16 {
		return errors.Errorf("too many accepted cargoes (%d)", n)
	}
	b, err := r.ReadBytes(2 * int(n))
	if err != nil || cargoes == nil {
		return err
	}
	for i := range cargoes {
		cargoes[i] = spec.InvalidCargo
		amounts[i] = 0
	}
	for i := 0; i < int(n); i++ {
		cargoes[i] = TranslateCargo(c, b[2*i], false)
		amounts[i] = int8(b[2*i+1])
	}
	return nil
}

func houseYears(v uint32) (uint16, uint16) {
	year := func(offset uint32) uint16 {
		if offset > maxYearOffset {
			return noYearLimit
		}
		return uint16(originalBaseYear + offset)
	}
	return year(v & 0xFF), year(v >> 8 & 0xFF)
}

func houseProperties() []Property[spec.HouseSpec] {
	houses := func(reg *spec.Registry) *spec.Table[spec.HouseSpec] { return reg.Houses }
	acceptance := func(code uint8, slot int) Property[spec.HouseSpec] {
		return custom(code, "cargo_acceptance", func(c *Context, r *utils.ByteReader, h *spec.HouseSpec) error {
			v, err := r.ReadU8()
			if err != nil || h == nil {
				return err
			}
			h.Acceptance[slot] = int8(v)
			return nil
		})
	}
	return []Property[spec.HouseSpec]{
		custom(0x08, "substitute", func(c *Context, r *utils.ByteReader, _ *spec.HouseSpec) error {
			_, err := substituteOriginal[spec.HouseSpec](c, r, houses(c.Registry()), true, func(h *spec.HouseSpec) {
				h.Enabled = true
			})
			return err
		}).defining(),
		u8(0x09, "building_flags", func(h *spec.HouseSpec) *uint8 { return &h.BuildingFlags }),
		custom(0x0A, "availability_years", func(c *Context, r *utils.ByteReader, h *spec.HouseSpec) error {
			v, err := r.ReadU16()
			if err != nil || h == nil {
				return err
			}
			h.MinYear, h.MaxYear = houseYears(uint32(v))
			return nil
		}),
		u8(0x0B, "population", func(h *spec.HouseSpec) *uint8 { return &h.Population }),
		u8(0x0C, "mail_generation", func(h *spec.HouseSpec) *uint8 { return &h.MailGeneration }),
		acceptance(0x0D, 0),
		acceptance(0x0E, 1),
		custom(0x0F, "goods_acceptance", func(c *Context, r *utils.ByteReader, h *spec.HouseSpec) error {
			v, err := r.ReadU8()
			if err != nil || h == nil {
				return err
			}
			goods := int8(v)
			toyland := c.Registry().Climate == spec.ClimateToyland
			label := "GOOD"
			if toyland {
				label = "SWET"
			}
			if goods < 0 {
				goods = -goods
				label = "FOOD"
				if toyland {
					label = "FZDR"
				}
			}
			h.Acceptance[2] = goods
			h.AcceptsCargo[2] = c.Registry().CargoByLabel(spec.MakeLabel(label))
			return nil
		}),
		u16(0x10, "local_authority_impact", func(h *spec.HouseSpec) *uint16 { return &h.RemoveRating }),
		u8(0x11, "removal_cost_multiplier", func(h *spec.HouseSpec) *uint8 { return &h.RemovalCost }),
		u16(0x12, "name", func(h *spec.HouseSpec) *uint16 { return &h.NameID }),
		u16(0x13, "availability_mask", func(h *spec.HouseSpec) *uint16 { return &h.Availability }),
		u8(0x14, "callback_flags", func(h *spec.HouseSpec) *uint8 { return &h.CallbackMask }),
		overrideProperty[spec.HouseSpec](0x15, spec.OriginalHouses),
		mapped(0x16, "refresh_multiplier", 1,
			func(h *spec.HouseSpec, v uint32) { h.ProcessingTime = uint8(min(v, 63)) },
			func(h *spec.HouseSpec) uint32 { return uint32(h.ProcessingTime) }),
		custom(0x17, "random_colours", func(c *Context, r *utils.ByteReader, h *spec.HouseSpec) error {
			b, err := r.ReadBytes(4)
			if err != nil || h == nil {
				return err
			}
			for i := range h.RandomColours {
				h.RandomColours[i] = b[i] & 0x0F
			}
			return nil
		}),
		u8(0x18, "probability", func(h *spec.HouseSpec) *uint8 { return &h.Probability }),
		u8(0x19, "extra_flags", func(h *spec.HouseSpec) *uint8 { return &h.ExtraFlags }),
		mapped(0x1A, "animation_frames", 1,
			func(h *spec.HouseSpec, v uint32) { h.Animation.Frames, h.Animation.Status = uint8(v&0x7F), uint8(v>>7&1) },
			func(h *spec.HouseSpec) uint32 { return uint32(h.Animation.Frames) | uint32(h.Animation.Status)<<7 }),
		mapped(0x1B, "animation_speed", 1,
			func(h *spec.HouseSpec, v uint32) { h.Animation.Speed = uint8(max(2, min(v, 16))) },
			func(h *spec.HouseSpec) uint32 { return uint32(h.Animation.Speed) }),
		u8(0x1C, "class", func(h *spec.HouseSpec) *uint8 { return &h.ClassID }),
		u8(0x1D, "callback_flags_2", func(h *spec.HouseSpec) *uint8 { return &h.CallbackMask2 }),
		custom(0x1E, "accepted_cargo_types", func(c *Context, r *utils.ByteReader, h *spec.HouseSpec) error {
			b, err := r.ReadBytes(4)
			if err != nil || h == nil {
				return err
			}
			for i := 0; i < 3; i++ {
				if b[i] == 0xFF {
					h.AcceptsCargo[i] = spec.InvalidCargo
					continue
				}
				h.AcceptsCargo[i] = TranslateCargo(c, b[i], false)
			}
			return nil
		}),
		u8(0x1F, "minimum_life", func(h *spec.HouseSpec) *uint8 { return &h.MinimumLife }),
		custom(0x20, "watched_cargo_types", func(c *Context, r *utils.ByteReader, h *spec.HouseSpec) error {
			list, err := readCargoList(c, r)
			if err != nil || h == nil {
				return err
			}
			h.WatchedCargoes = 0
			for _, cargo := range list {
				h.WatchedCargoes.Set(cargo)
			}
			return nil
		}),
		u16(0x21, "min_year", func(h *spec.HouseSpec) *uint16 { return &h.MinYear }),
		u16(0x22, "max_year", func(h *spec.HouseSpec) *uint16 { return &h.MaxYear }),
		custom(0x23, "cargo_acceptance_list", func(c *Context, r *utils.ByteReader, h *spec.HouseSpec) error {
			if h == nil {
				return acceptanceList(c, r, nil, nil)
			}
			return acceptanceList(c, r, &h.AcceptsCargo, &h.Acceptance)
		}),
	}
}

func industryTileProperties() []Property[spec.IndustryTileSpec] {
	acceptance := func(code uint8, slot int) Property[spec.IndustryTileSpec] {
		return custom(code, "cargo_acceptance", func(c *Context, r *utils.ByteReader, t *spec.IndustryTileSpec) error {
			v, err := r.ReadU16()
			if err != nil || t == nil {
				return err
			}
			t.AcceptsCargo[slot] = TranslateCargo(c, uint8(v), false)
			t.Acceptance[slot] = int8(min(v>>8, 16))
			return nil
		})
	}
	return []Property[spec.IndustryTileSpec]{
		custom(0x08, "substitute", func(c *Context, r *utils.ByteReader, _ *spec.IndustryTileSpec) error {
			_, err := substituteOriginal[spec.IndustryTileSpec](c, r, c.Registry().IndustryTiles, false, func(t *spec.IndustryTileSpec) {
				t.Enabled = true
			})
			return err
		}).defining(),
		overrideProperty[spec.IndustryTileSpec](0x09, spec.OriginalIndustryTiles),
		acceptance(0x0A, 0),
		acceptance(0x0B, 1),
		acceptance(0x0C, 2),
		u8(0x0D, "land_shape_flags", func(t *spec.IndustryTileSpec) *uint8 { return &t.SlopesRefused }),
		u8(0x0E, "callback_flags", func(t *spec.IndustryTileSpec) *uint8 { return &t.CallbackMask }),
		animationInfo(0x0F, func(t *spec.IndustryTileSpec) *spec.AnimationInfo { return &t.Animation }),
		u8(0x10, "animation_speed", func(t *spec.IndustryTileSpec) *uint8 { return &t.Animation.Speed }),
		u8(0x11, "animation_triggers", func(t *spec.IndustryTileSpec) *uint16 { return &t.Animation.Triggers }),
		u8(0x12, "special_flags", func(t *spec.IndustryTileSpec) *uint8 { return &t.SpecialFlags }),
		custom(0x13, "cargo_acceptance_list", func(c *Context, r *utils.ByteReader, t *spec.IndustryTileSpec) error {
			if t == nil {
				return acceptanceList(c, r, nil, nil)
			}
			return acceptanceList(c, r, &t.AcceptsCargo, &t.Acceptance)
		}),
	}
}

// validIndustryLayout rejects empty layouts, duplicate positions and
// layouts made only of water checks.
func validIndustryLayout(tiles []spec.IndustryTileLayoutTile) bool {
	if len(tiles) == 0 {
		return false
	}
	for i := 0; i < len(tiles)-1; i++ {
		for j := i + 1; j < len(tiles); j++ {
			if tiles[i].X == tiles[j].X && tiles[i].Y == tiles[j].Y {
				return false
			}
		}
	}
	for _, t := range tiles {
		if t.Gfx != waterTileCheck {
			return true
		}
	}
	return false
}

// readIndustryLayouts reads property 0x0A. Tiles of the module are
// resolved through the id manager, unknown ones keep the marker.
func readIndustryLayouts(c *Context, r *utils.ByteReader) ([]spec.IndustryLayout, error) {
	n, err := r.ReadU8()
	if err != nil {
		return nil, err
	}
	size, err := r.ReadU32()
	if err != nil {
		return nil, err
	}
	start := r.Pos()
	warned := false

	layouts := make([]spec.IndustryLayout, 0, n)
	for j := 0; j < int(n); j++ {
		var layout spec.IndustryLayout
		for k := 0; ; k++ {
			if !warned && uint32(r.Pos()-start) >= size {
				c.Log().Infof("Incorrect size for industry tile layout definition for industry %d", c.ID)
				warned = true
			}
			x, err := r.ReadU8()
			if err != nil {
				return nil, err
			}
			if x == layoutImport && k == 0 {
				b, err := r.ReadBytes(2)
				if err != nil {
					return nil, err
				}
				if b[0] >= spec.OriginalIndustries {
					return nil, errors.Errorf("invalid original industry %d for layout import", b[0])
				}
				layout = spec.IndustryLayout{Imported: true, ImportType: b[0], ImportLayout: b[1]}
				break
			}
			y, err := r.ReadU8()
			if err != nil {
				return nil, err
			}
			if x == 0 && y == 0x80 {
				break
			}
			gfx, err := r.ReadU8()
			if err != nil {
				return nil, err
			}
			tile := spec.IndustryTileLayoutTile{X: int8(x), Y: int8(y), Gfx: uint16(gfx)}
			switch gfx {
			case newTileMarker:
				local, err := r.ReadU16()
				if err != nil {
					return nil, err
				}
				if global, ok := c.IDs().Lookup(feature.IndustryTiles, c.GRFID(), local); ok {
					tile.Gfx = global
				} else {
					c.Log().Infof("Attempt to use industry tile %d with industry %d, not yet defined. Ignoring.", local, c.ID)
				}
			case waterTileCheck:
				if c.GRFVersion() < 8 && tile.X < 0 {
					tile.Y++
				}
			}
			layout.Tiles = append(layout.Tiles, tile)
		}
		if !layout.Imported && !validIndustryLayout(layout.Tiles) {
			c.Log().Warnf("Invalid industry layout for industry id %d. Skipping", c.ID)
			continue
		}
		layouts = append(layouts, layout)
	}
	return layouts, nil
}

func industryProperties() []Property[spec.IndustrySpec] {
	cargoSlots := func(code uint8, name string, width, used int, field func(*spec.IndustrySpec) *[16]spec.CargoID) Property[spec.IndustrySpec] {
		return custom(code, name, func(c *Context, r *utils.ByteReader, ind *spec.IndustrySpec) error {
			b, err := r.ReadBytes(width)
			if err != nil || ind == nil {
				return err
			}
			slots := field(ind)
			for i := range slots {
				slots[i] = spec.InvalidCargo
			}
			for i := 0; i < used; i++ {
				if b[i] != 0xFF {
					slots[i] = TranslateCargo(c, b[i], false)
				}
			}
			return nil
		})
	}
	cargoList := func(code uint8, name string, field func(*spec.IndustrySpec) *[16]spec.CargoID) Property[spec.IndustrySpec] {
		return custom(code, name, func(c *Context, r *utils.ByteReader, ind *spec.IndustrySpec) error {
			n, err := r.ReadU8()
			if err != nil {
				return err
			}
			if n > 16 {
				return errors.Errorf("too many cargo types (%d)", n)
			}
			b, err := r.ReadBytes(int(n))
			if err != nil || ind == nil {
				return err
			}
			slots := field(ind)
			for i := range slots {
				slots[i] = spec.InvalidCargo
				if i < int(n) {
					slots[i] = TranslateCargo(c, b[i], false)
				}
			}
			return nil
		})
	}
	multiplier := func(code uint8, input int) Property[spec.IndustrySpec] {
		return mapped(code, "input_multiplier", 4,
			func(ind *spec.IndustrySpec, v uint32) {
				ind.InputMultipliers[input][0], ind.InputMultipliers[input][1] = uint16(v), uint16(v>>16)
			},
			func(ind *spec.IndustrySpec) uint32 {
				return uint32(ind.InputMultipliers[input][0]) | uint32(ind.InputMultipliers[input][1])<<16
			})
	}
	rate := func(code uint8, slot int) Property[spec.IndustrySpec] {
		return u8(code, "production_multiplier", func(ind *spec.IndustrySpec) *uint8 { return &ind.ProductionRate[slot] })
	}

	return []Property[spec.IndustrySpec]{
		custom(0x08, "substitute", func(c *Context, r *utils.ByteReader, _ *spec.IndustrySpec) error {
			_, err := substituteOriginal[spec.IndustrySpec](c, r, c.Registry().Industries, true, func(ind *spec.IndustrySpec) {
				ind.Enabled = true
			})
			return err
		}).defining(),
		overrideProperty[spec.IndustrySpec](0x09, spec.OriginalIndustries),
		custom(0x0A, "layouts", func(c *Context, r *utils.ByteReader, ind *spec.IndustrySpec) error {
			layouts, err := readIndustryLayouts(c, r)
			if err != nil || ind == nil {
				return err
			}
			ind.Layouts = layouts
			return nil
		}),
		u8(0x0B, "life_type", func(ind *spec.IndustrySpec) *uint8 { return &ind.LifeType }),
		u16(0x0C, "closure_message", func(ind *spec.IndustrySpec) *uint16 { return &ind.ClosureTextID }),
		u16(0x0D, "production_up_message", func(ind *spec.IndustrySpec) *uint16 { return &ind.ProductionUpTextID }),
		u16(0x0E, "production_down_message", func(ind *spec.IndustrySpec) *uint16 { return &ind.ProductionDownTextID }),
		u8(0x0F, "fund_cost_multiplier", func(ind *spec.IndustrySpec) *uint8 { return &ind.CostMultiplier }),
		cargoSlots(0x10, "production_types", 2, 2, func(ind *spec.IndustrySpec) *[16]spec.CargoID { return &ind.ProducedCargo }),
		cargoSlots(0x11, "acceptance_types", 4, 3, func(ind *spec.IndustrySpec) *[16]spec.CargoID { return &ind.AcceptsCargo }),
		rate(0x12, 0),
		rate(0x13, 1),
		u8(0x14, "minimal_distributed", func(ind *spec.IndustrySpec) *uint8 { return &ind.MinimalCargo }),
		custom(0x15, "random_sounds", func(c *Context, r *utils.ByteReader, ind *spec.IndustrySpec) error {
			list, err := readList(r, r.ReadU8)
			if err != nil || ind == nil {
				return err
			}
			ind.RandomSounds = list
			return nil
		}),
		custom(0x16, "conflicting_types", func(c *Context, r *utils.ByteReader, ind *spec.IndustrySpec) error {
			b, err := r.ReadBytes(3)
			if err != nil || ind == nil {
				return err
			}
			copy(ind.ConflictingTypes[:], b)
			return nil
		}),
		u8(0x17, "probability_random", func(ind *spec.IndustrySpec) *uint8 { return &ind.ApparitionChance }),
		u8(0x18, "probability_ingame", func(ind *spec.IndustrySpec) *uint8 { return &ind.AppearIngame }),
		u8(0x19, "map_colour", func(ind *spec.IndustrySpec) *uint8 { return &ind.MapColour }),
		u32(0x1A, "special_flags", func(ind *spec.IndustrySpec) *uint32 { return &ind.Behaviour }),
		u16(0x1B, "new_industry_text", func(ind *spec.IndustrySpec) *uint16 { return &ind.NewIndustryTextID }),
		multiplier(0x1C, 0),
		multiplier(0x1D, 1),
		multiplier(0x1E, 2),
		u16(0x1F, "name", func(ind *spec.IndustrySpec) *uint16 { return &ind.NameID }),
		u32(0x20, "prospecting_chance", func(ind *spec.IndustrySpec) *uint32 { return &ind.ProspectingChance }),
		u8(0x21, "callback_flags", func(ind *spec.IndustrySpec) *uint8 { return &ind.CallbackMask }),
		u8(0x22, "callback_flags_2", func(ind *spec.IndustrySpec) *uint8 { return &ind.CallbackMask2 }),
		u32(0x23, "removal_cost_multiplier", func(ind *spec.IndustrySpec) *uint32 { return &ind.RemovalCostMult }),
		u16(0x24, "station_name", func(ind *spec.IndustrySpec) *uint16 { return &ind.StationNameID }),
		cargoList(0x25, "production_list", func(ind *spec.IndustrySpec) *[16]spec.CargoID { return &ind.ProducedCargo }),
		cargoList(0x26, "acceptance_list", func(ind *spec.IndustrySpec) *[16]spec.CargoID { return &ind.AcceptsCargo }),
		custom(0x27, "production_rates", func(c *Context, r *utils.ByteReader, ind *spec.IndustrySpec) error {
			n, err := r.ReadU8()
			if err != nil {
				return err
			}
			if n > 16 {
				return errors.Errorf("too many production rates (%d)", n)
			}
			b, err := r.ReadBytes(int(n))
			if err != nil || ind == nil {
				return err
			}
			ind.ProductionRate = [16]uint8{}
			copy(ind.ProductionRate[:], b)
			return nil
		}),
		custom(0x28, "input_multipliers", func(c *Context, r *utils.ByteReader, ind *spec.IndustrySpec) error {
			b, err := r.ReadBytes(2)
			if err != nil {
				return err
			}
			inputs, outputs := int(b[0]), int(b[1])
			if inputs > 16 || outputs > 16 {
				return errors.Errorf("input multiplier table of %dx%d is too large", inputs, outputs)
			}
			values := make([]uint16, 0, inputs*outputs)
			for i := 0; i < inputs*outputs; i++ {
				v, err := r.ReadU16()
				if err != nil {
					return err
				}
				values = append(values, v)
			}
			if ind == nil {
				return nil
			}
			ind.InputMultipliers = [16][16]uint16{}
			for i := 0; i < inputs; i++ {
				copy(ind.InputMultipliers[i][:outputs], values[i*outputs:])
			}
			return nil
		}),
	}
}

func cargoProperties() []Property[spec.CargoSpec] {
	return []Property[spec.CargoSpec]{
		u8(0x08, "bit_number", func(cs *spec.CargoSpec) *uint8 { return &cs.Bitnum }).reserved(),
		u16(0x09, "name", func(cs *spec.CargoSpec) *uint16 { return &cs.NameID }),
		u16(0x0A, "name_single", func(cs *spec.CargoSpec) *uint16 { return &cs.NameSingularID }),
		u16(0x0B, "units_of_cargo", func(cs *spec.CargoSpec) *uint16 { return &cs.UnitsVolumeID }),
		u16(0x0C, "quantity_text", func(cs *spec.CargoSpec) *uint16 { return &cs.QuantifierID }),
		u16(0x0D, "abbreviation", func(cs *spec.CargoSpec) *uint16 { return &cs.AbbrevID }),
		u16(0x0E, "sprite", func(cs *spec.CargoSpec) *uint16 { return &cs.Sprite }),
		u8(0x0F, "weight", func(cs *spec.CargoSpec) *uint8 { return &cs.Weight }),
		u8(0x10, "transit_periods_1", func(cs *spec.CargoSpec) *uint8 { return &cs.TransitPeriods[0] }),
		u8(0x11, "transit_periods_2", func(cs *spec.CargoSpec) *uint8 { return &cs.TransitPeriods[1] }),
		u32(0x12, "base_payment", func(cs *spec.CargoSpec) *uint32 { return &cs.InitialPayment }),
		u8(0x13, "station_list_colour", func(cs *spec.CargoSpec) *uint8 { return &cs.RatingColour }),
		u8(0x14, "cargo_payment_list_colour", func(cs *spec.CargoSpec) *uint8 { return &cs.LegendColour }),
		u8(0x15, "is_freight", func(cs *spec.CargoSpec) *uint8 { return &cs.IsFreight }),
		u16(0x16, "cargo_classes", func(cs *spec.CargoSpec) *uint16 { return &cs.Classes }),
		label(0x17, "cargo_label", func(cs *spec.CargoSpec) *spec.Label { return &cs.Label }).reserved(),
		u8(0x18, "town_growth_effect", func(cs *spec.CargoSpec) *uint8 { return &cs.TownEffect }),
		u16(0x19, "town_growth_multiplier", func(cs *spec.CargoSpec) *uint16 { return &cs.MultiplierGrowth }),
		u8(0x1A, "callback_flags", func(cs *spec.CargoSpec) *uint8 { return &cs.CallbackMask }),
		skip[spec.CargoSpec](0x1B, "units_of_capacity", 2),
		u16(0x1C, "capacity_multiplier", func(cs *spec.CargoSpec) *uint16 { return &cs.CapacityMult }),
		u8(0x1D, "town_production_effect", func(cs *spec.CargoSpec) *uint8 { return &cs.TownProdEffect }),
		u16(0x1E, "town_production_multiplier", func(cs *spec.CargoSpec) *uint16 { return &cs.TownProdMult }),
	}
}

func cargoObject(c *Context) (*spec.CargoSpec, error) {
	if c.ID >= spec.CargoLimit {
		return nil, nil
	}
	reg := c.Registry()
	e := reg.Cargoes.Get(c.ID)
	if e == nil {
		e = reg.Cargoes.Put(c.ID, spec.CargoSpec{Bitnum: 0xFF})
	}
	if !e.Defined {
		e.Defined = true
		e.Spec.GRFID = c.GRFID()
		e.Spec.LocalID = c.ID
	}
	c.Global = c.ID
	return &e.Spec, nil
}

func init() {
	register(newTable(feature.Houses, scopedObject(func(reg *spec.Registry) *spec.Table[spec.HouseSpec] { return reg.Houses }), houseProperties()...))
	register(newTable(feature.IndustryTiles, scopedObject(func(reg *spec.Registry) *spec.Table[spec.IndustryTileSpec] { return reg.IndustryTiles }), industryTileProperties()...))
	register(newTable(feature.Industries, scopedObject(func(reg *spec.Registry) *spec.Table[spec.IndustrySpec] { return reg.Industries }), industryProperties()...))
	register(newTable(feature.Cargoes, cargoObject, cargoProperties()...))
}
