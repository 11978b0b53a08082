package props

import (
	"github.com/mogaika/newgrf_browser/grf/feature"
	"github.com/mogaika/newgrf_browser/grf/spec"
	"github.com/mogaika/newgrf_browser/utils"
)

const (
	bridgeTableSprites = 32
	maxBridgeLength    = 16
)

func canalObject(c *Context) (*spec.CanalProperties, error) {
	if int(c.ID) >= spec.CanalFeatureCount {
		return nil, nil
	}
	c.Global = c.ID
	return &c.File().Canals[c.ID], nil
}

func canalProperties() []Property[spec.CanalProperties] {
	return []Property[spec.CanalProperties]{
		u8(0x08, "callback_flags", func(cp *spec.CanalProperties) *uint8 { return &cp.CallbackMask }),
		u8(0x09, "graphic_flags", func(cp *spec.CanalProperties) *uint8 { return &cp.Flags }),
	}
}

func readBridgeTables(c *Context, r *utils.ByteReader, b *spec.BridgeSpec) error {
	first, err := r.ReadU8()
	if err != nil {
		return err
	}
	n, err := r.ReadU8()
	if err != nil {
		return err
	}
	for table := int(first); table < int(first)+int(n); table++ {
		sprites := make([]spec.PalSprite, bridgeTableSprites)
		for i := range sprites {
			image, err := r.ReadU16()
			if err != nil {
				return err
			}
			pal, err := r.ReadU16()
			if err != nil {
				return err
			}
			sprites[i] = mapSpriteRecolour(uint32(image), uint32(pal))
		}
		if table >= spec.BridgeSpriteTables {
			c.Log().Warnf("Table %d >= %d, skipping", table, spec.BridgeSpriteTables)
			continue
		}
		if b != nil {
			b.SpriteTables[table] = sprites
		}
	}
	return nil
}

// mapSpriteRecolour moves the recolour bits of a TTD sprite word pair to
// their modifier positions.
func mapSpriteRecolour(image, pal uint32) spec.PalSprite {
	ps := spec.PalSprite{Sprite: image, Pal: pal}
	if ps.Sprite&(1<<14) != 0 {
		ps.Sprite &^= 1 << 14
		ps.Sprite |= spec.PaletteModifierTransparent
	}
	if ps.Sprite&(1<<15) != 0 {
		ps.Sprite &^= 1 << 15
		ps.Sprite |= spec.PaletteModifierColour
	}
	return ps
}

func bridgeProperties() []Property[spec.BridgeSpec] {
	return []Property[spec.BridgeSpec]{
		mapped(0x08, "intro_year", 1,
			func(b *spec.BridgeSpec, v uint32) { b.Year = originalBaseYear + v },
			func(b *spec.BridgeSpec) uint32 { return b.Year - originalBaseYear }),
		u8(0x09, "min_length", func(b *spec.BridgeSpec) *uint8 { return &b.MinLength }),
		mapped(0x0A, "max_length", 1,
			func(b *spec.BridgeSpec, v uint32) {
				b.MaxLength = uint16(v)
				if v > maxBridgeLength {
					b.MaxLength = 0xFFFF
				}
			},
			func(b *spec.BridgeSpec) uint32 { return uint32(b.MaxLength) }),
		u8(0x0B, "cost_factor", func(b *spec.BridgeSpec) *uint8 { return &b.CostFactor }),
		u16(0x0C, "max_speed", func(b *spec.BridgeSpec) *uint16 { return &b.Speed }),
		custom(0x0D, "sprite_tables", readBridgeTables),
		u8(0x0E, "flags", func(b *spec.BridgeSpec) *uint8 { return &b.Flags }),
		u32(0x0F, "long_intro_year", func(b *spec.BridgeSpec) *uint32 { return &b.Year }),
		u16(0x10, "purchase_text", func(b *spec.BridgeSpec) *uint16 { return &b.NameID }),
		u16(0x11, "rail_description", func(b *spec.BridgeSpec) *uint16 { return &b.RailNameID }),
		u16(0x12, "road_description", func(b *spec.BridgeSpec) *uint16 { return &b.RoadNameID }),
		u16(0x13, "cost_factor_word", func(b *spec.BridgeSpec) *uint16 { return &b.Price }),
	}
}

func signalProperties() []Property[spec.SignalStyle] {
	setting := func(code uint8, name string, field func(*spec.SignalSettings) *uint8) Property[spec.SignalStyle] {
		return custom(code, name, func(c *Context, r *utils.ByteReader, _ *spec.SignalStyle) error {
			v, err := r.ReadU8()
			if err != nil || !c.Apply {
				return err
			}
			*field(&c.File().Signals) = v
			return nil
		}).global()
	}
	return []Property[spec.SignalStyle]{
		custom(0x08, "style_name", func(c *Context, r *utils.ByteReader, _ *spec.SignalStyle) error {
			name, err := r.ReadU16()
			if err != nil || !c.Apply {
				return err
			}
			e, _, err := define[spec.SignalStyle](c, c.Registry().Signals, c.ID, func() spec.SignalStyle { return spec.SignalStyle{} })
			if err != nil {
				return err
			}
			e.Spec.NameID = name
			return nil
		}).defining(),
		u8(0x09, "style_flags", func(s *spec.SignalStyle) *uint8 { return &s.Flags }),
		u8(0x0A, "style_extra_aspects", func(s *spec.SignalStyle) *uint8 { return &s.ExtraAspects }),
		u8(0x0B, "style_lookahead_aspects", func(s *spec.SignalStyle) *uint8 { return &s.LookaheadAspects }),
		setting(0x10, "program_flags", func(s *spec.SignalSettings) *uint8 { return &s.ProgramFlags }),
		setting(0x11, "signal_flags", func(s *spec.SignalSettings) *uint8 { return &s.Flags }),
		setting(0x12, "extra_aspects", func(s *spec.SignalSettings) *uint8 { return &s.ExtraAspects }),
	}
}

func railTypeObject(c *Context) (*spec.RailTypeInfo, error) {
	rt, ok := c.File().RailTypeMap[c.ID]
	if !ok {
		return nil, nil
	}
	c.Global = uint16(rt)
	return c.Registry().RailTypes.Spec(uint16(rt)), nil
}

// railTypeList reads labels and keeps those naming a known rail type.
func railTypeList(code uint8, name string, apply func(rti *spec.RailTypeInfo, l spec.Label)) Property[spec.RailTypeInfo] {
	return custom(code, name, func(c *Context, r *utils.ByteReader, rti *spec.RailTypeInfo) error {
		labels, err := readLabels(r)
		if err != nil || rti == nil {
			return err
		}
		for _, l := range labels {
			if _, ok := c.Registry().RailTypeByLabel(l, false); ok {
				apply(rti, l)
			}
		}
		return nil
	})
}

func railTypeProperties() []Property[spec.RailTypeInfo] {
	return []Property[spec.RailTypeInfo]{
		custom(0x08, "label", func(c *Context, r *utils.ByteReader, _ *spec.RailTypeInfo) error {
			v, err := r.ReadBU32()
			if err != nil || !c.Reserving() {
				return err
			}
			l := spec.Label(v)
			rt, ok := c.Registry().AllocateRailType(l)
			if !ok {
				c.Log().Warnf("No free rail type for %v", l)
				return nil
			}
			c.File().RailTypeMap[c.ID] = rt
			c.Global = uint16(rt)
			return nil
		}).defining().reserved(),
		custom(0x09, "toolbar_caption", func(c *Context, r *utils.ByteReader, rti *spec.RailTypeInfo) error {
			v, err := r.ReadU16()
			if err != nil || rti == nil {
				return err
			}
			rti.ToolbarCaption = v
			if c.GRFVersion() < 8 {
				rti.NameID = v
			}
			return nil
		}),
		u16(0x0A, "menu_text", func(rti *spec.RailTypeInfo) *uint16 { return &rti.MenuText }),
		u16(0x0B, "build_window_caption", func(rti *spec.RailTypeInfo) *uint16 { return &rti.BuildCaption }),
		u16(0x0C, "autoreplace_text", func(rti *spec.RailTypeInfo) *uint16 { return &rti.ReplaceText }),
		u16(0x0D, "new_engine_text", func(rti *spec.RailTypeInfo) *uint16 { return &rti.NewEngineText }),
		railTypeList(0x0E, "compatible_railtype_list", func(rti *spec.RailTypeInfo, l spec.Label) {
			rti.Compatible = appendLabel(rti.Compatible, l)
		}),
		railTypeList(0x0F, "powered_railtype_list", func(rti *spec.RailTypeInfo, l spec.Label) {
			rti.Powered = appendLabel(rti.Powered, l)
			rti.Compatible = appendLabel(rti.Compatible, l)
		}),
		u8(0x10, "railtype_flags", func(rti *spec.RailTypeInfo) *uint8 { return &rti.Flags }),
		u8(0x11, "curve_speed_multiplier", func(rti *spec.RailTypeInfo) *uint8 { return &rti.CurveSpeed }),
		mapped(0x12, "station_graphics", 1,
			func(rti *spec.RailTypeInfo, v uint32) { rti.StationGraphics = uint8(min(v, 2)) },
			func(rti *spec.RailTypeInfo) uint32 { return uint32(rti.StationGraphics) }),
		u16(0x13, "construction_cost", func(rti *spec.RailTypeInfo) *uint16 { return &rti.CostMultiplier }),
		u16(0x14, "speed_limit", func(rti *spec.RailTypeInfo) *uint16 { return &rti.MaxSpeed }),
		mapped(0x15, "acceleration_model", 1,
			func(rti *spec.RailTypeInfo, v uint32) { rti.Acceleration = uint8(min(v, 2)) },
			func(rti *spec.RailTypeInfo) uint32 { return uint32(rti.Acceleration) }),
		u8(0x16, "map_colour", func(rti *spec.RailTypeInfo) *uint8 { return &rti.MapColour }),
		u32(0x17, "introduction_date", func(rti *spec.RailTypeInfo) *uint32 { return &rti.IntroDate }),
		railTypeList(0x18, "requires_railtype_list", func(rti *spec.RailTypeInfo, l spec.Label) {
			rti.IntroRequired = appendLabel(rti.IntroRequired, l)
		}),
		railTypeList(0x19, "introduces_railtype_list", func(rti *spec.RailTypeInfo, l spec.Label) {
			rti.Introduces = appendLabel(rti.Introduces, l)
		}),
		u8(0x1A, "sort_order", func(rti *spec.RailTypeInfo) *uint8 { return &rti.SortOrder }),
		u16(0x1B, "name", func(rti *spec.RailTypeInfo) *uint16 { return &rti.NameID }),
		u16(0x1C, "maintenance_cost", func(rti *spec.RailTypeInfo) *uint16 { return &rti.MaintenanceMult }),
		custom(0x1D, "alternative_railtype_list", func(c *Context, r *utils.ByteReader, _ *spec.RailTypeInfo) error {
			labels, err := readLabels(r)
			if err != nil || !c.Reserving() {
				return err
			}
			rt, ok := c.File().RailTypeMap[c.ID]
			if !ok {
				c.Log().Infof("Ignoring property 1D for rail type %d because no label was set", c.ID)
				return nil
			}
			rti := c.Registry().RailTypes.Spec(uint16(rt))
			rti.AlternateLabels = append(rti.AlternateLabels, labels...)
			return nil
		}).defining().reserved(),
	}
}

func appendLabel(list []spec.Label, l spec.Label) []spec.Label {
	for _, have := range list {
		if have == l {
			return list
		}
	}
	return append(list, l)
}

func roadTypeMap(c *Context, tram bool) map[uint16]uint8 {
	if tram {
		return c.File().TramTypeMap
	}
	return c.File().RoadTypeMap
}

func roadTypeObject(tram bool) objectFunc[spec.RoadTypeInfo] {
	return func(c *Context) (*spec.RoadTypeInfo, error) {
		rt, ok := roadTypeMap(c, tram)[c.ID]
		if !ok {
			return nil, nil
		}
		c.Global = uint16(rt)
		return c.Registry().RoadTypes.Spec(uint16(rt)), nil
	}
}

func roadTypeProperties(tram bool) []Property[spec.RoadTypeInfo] {
	list := func(code uint8, name string, apply func(rti *spec.RoadTypeInfo, l spec.Label)) Property[spec.RoadTypeInfo] {
		return custom(code, name, func(c *Context, r *utils.ByteReader, rti *spec.RoadTypeInfo) error {
			labels, err := readLabels(r)
			if err != nil || rti == nil {
				return err
			}
			for _, l := range labels {
				if _, ok := c.Registry().RoadTypeByLabel(l, tram, false); ok {
					apply(rti, l)
				}
			}
			return nil
		})
	}
	return []Property[spec.RoadTypeInfo]{
		custom(0x08, "label", func(c *Context, r *utils.ByteReader, _ *spec.RoadTypeInfo) error {
			v, err := r.ReadBU32()
			if err != nil || !c.Reserving() {
				return err
			}
			l := spec.Label(v)
			rt, ok := c.Registry().AllocateRoadType(l, tram)
			if !ok {
				c.Log().Warnf("No free %v for %v", c.Feature, l)
				return nil
			}
			roadTypeMap(c, tram)[c.ID] = rt
			c.Global = uint16(rt)
			return nil
		}).defining().reserved(),
		custom(0x09, "toolbar_caption", func(c *Context, r *utils.ByteReader, rti *spec.RoadTypeInfo) error {
			v, err := r.ReadU16()
			if err != nil || rti == nil {
				return err
			}
			rti.ToolbarCaption = v
			return nil
		}),
		u16(0x0A, "menu_text", func(rti *spec.RoadTypeInfo) *uint16 { return &rti.MenuText }),
		u16(0x0B, "build_window_caption", func(rti *spec.RoadTypeInfo) *uint16 { return &rti.BuildCaption }),
		u16(0x0C, "autoreplace_text", func(rti *spec.RoadTypeInfo) *uint16 { return &rti.ReplaceText }),
		u16(0x0D, "new_engine_text", func(rti *spec.RoadTypeInfo) *uint16 { return &rti.NewEngineText }),
		list(0x0F, "powered_roadtype_list", func(rti *spec.RoadTypeInfo, l spec.Label) {
			rti.Powered = appendLabel(rti.Powered, l)
		}),
		u8(0x10, "roadtype_flags", func(rti *spec.RoadTypeInfo) *uint8 { return &rti.Flags }),
		u16(0x13, "construction_cost", func(rti *spec.RoadTypeInfo) *uint16 { return &rti.CostMultiplier }),
		u16(0x14, "speed_limit", func(rti *spec.RoadTypeInfo) *uint16 { return &rti.MaxSpeed }),
		u8(0x16, "map_colour", func(rti *spec.RoadTypeInfo) *uint8 { return &rti.MapColour }),
		u32(0x17, "introduction_date", func(rti *spec.RoadTypeInfo) *uint32 { return &rti.IntroDate }),
		list(0x18, "requires_roadtype_list", func(rti *spec.RoadTypeInfo, l spec.Label) {
			rti.IntroRequired = appendLabel(rti.IntroRequired, l)
		}),
		list(0x19, "introduces_roadtype_list", func(rti *spec.RoadTypeInfo, l spec.Label) {
			rti.Introduces = appendLabel(rti.Introduces, l)
		}),
		u8(0x1A, "sort_order", func(rti *spec.RoadTypeInfo) *uint8 { return &rti.SortOrder }),
		u16(0x1B, "name", func(rti *spec.RoadTypeInfo) *uint16 { return &rti.NameID }),
		u16(0x1C, "maintenance_cost", func(rti *spec.RoadTypeInfo) *uint16 { return &rti.MaintenanceMult }),
		custom(0x1D, "alternative_roadtype_list", func(c *Context, r *utils.ByteReader, _ *spec.RoadTypeInfo) error {
			labels, err := readLabels(r)
			if err != nil || !c.Reserving() {
				return err
			}
			rt, ok := roadTypeMap(c, tram)[c.ID]
			if !ok {
				c.Log().Infof("Ignoring property 1D for %v %d because no label was set", c.Feature, c.ID)
				return nil
			}
			rti := c.Registry().RoadTypes.Spec(uint16(rt))
			rti.AlternateLabels = append(rti.AlternateLabels, labels...)
			return nil
		}).defining().reserved(),
	}
}

func readAirportLayouts(c *Context, r *utils.ByteReader) ([]spec.AirportLayout, error) {
	n, err := r.ReadU8()
	if err != nil {
		return nil, err
	}
	if err := r.Skip(4); err != nil {
		return nil, err
	}
	layouts := make([]spec.AirportLayout, 0, n)
	for j := 0; j < int(n); j++ {
		rot, err := r.ReadU8()
		if err != nil {
			return nil, err
		}
		layout := spec.AirportLayout{Rotation: rot & 6}
		for {
			b, err := r.ReadBytes(2)
			if err != nil {
				return nil, err
			}
			if b[0] == 0 && b[1] == 0x80 {
				break
			}
			gfx, err := r.ReadU8()
			if err != nil {
				return nil, err
			}
			tile := spec.AirportTileTable{X: int8(b[0]), Y: int8(b[1]), Gfx: uint16(gfx)}
			if gfx == newTileMarker {
				local, err := r.ReadU16()
				if err != nil {
					return nil, err
				}
				if global, ok := c.IDs().Lookup(feature.AirportTiles, c.GRFID(), local); ok {
					tile.Gfx = global
				} else {
					c.Log().Infof("Attempt to use airport tile %d with airport id %d, not yet defined. Ignoring.", local, c.ID)
				}
			}
			layout.Tiles = append(layout.Tiles, tile)
		}
		layouts = append(layouts, layout)
	}
	return layouts, nil
}

func airportProperties() []Property[spec.AirportSpec] {
	return []Property[spec.AirportSpec]{
		custom(0x08, "substitute", func(c *Context, r *utils.ByteReader, _ *spec.AirportSpec) error {
			e, err := substituteOriginal[spec.AirportSpec](c, r, c.Registry().Airports, true, func(as *spec.AirportSpec) {
				as.Enabled = true
			})
			if err != nil || e == nil {
				return err
			}
			c.IDs().AddEntityOverride(c.Feature, e.Spec.SubstituteID, c.GRFID(), c.ID)
			return nil
		}).defining(),
		custom(0x0A, "layouts", func(c *Context, r *utils.ByteReader, as *spec.AirportSpec) error {
			layouts, err := readAirportLayouts(c, r)
			if err != nil || as == nil {
				return err
			}
			as.Layouts = layouts
			return nil
		}),
		mapped(0x0C, "years_available", 4,
			func(as *spec.AirportSpec, v uint32) { as.MinYear, as.MaxYear = uint16(v), uint16(v>>16) },
			func(as *spec.AirportSpec) uint32 { return uint32(as.MinYear) | uint32(as.MaxYear)<<16 }),
		u8(0x0D, "ttd_airport_type", func(as *spec.AirportSpec) *uint8 { return &as.TTDAirportType }),
		u8(0x0E, "catchment_area", func(as *spec.AirportSpec) *uint8 { return &as.Catchment }),
		u8(0x0F, "noise_level", func(as *spec.AirportSpec) *uint8 { return &as.NoiseLevel }),
		u16(0x10, "name", func(as *spec.AirportSpec) *uint16 { return &as.NameID }),
		u16(0x11, "maintenance_cost", func(as *spec.AirportSpec) *uint16 { return &as.MaintenanceCost }),
	}
}

func airportTileProperties() []Property[spec.AirportTileSpec] {
	return []Property[spec.AirportTileSpec]{
		custom(0x08, "substitute", func(c *Context, r *utils.ByteReader, _ *spec.AirportTileSpec) error {
			_, err := substituteOriginal[spec.AirportTileSpec](c, r, c.Registry().AirportTiles, false, func(t *spec.AirportTileSpec) {
				t.Enabled = true
				t.Animation.Status = 0xFF
			})
			return err
		}).defining(),
		overrideProperty[spec.AirportTileSpec](0x09, spec.OriginalAirportTiles),
		u8(0x0E, "callback_flags", func(t *spec.AirportTileSpec) *uint8 { return &t.CallbackMask }),
		animationInfo(0x0F, func(t *spec.AirportTileSpec) *spec.AnimationInfo { return &t.Animation }),
		u8(0x10, "animation_speed", func(t *spec.AirportTileSpec) *uint8 { return &t.Animation.Speed }),
		u8(0x11, "animation_triggers", func(t *spec.AirportTileSpec) *uint16 { return &t.Animation.Triggers }),
	}
}

func objectProperties() []Property[spec.ObjectSpec] {
	return []Property[spec.ObjectSpec]{
		custom(0x08, "class", func(c *Context, r *utils.ByteReader, _ *spec.ObjectSpec) error {
			v, err := r.ReadBU32()
			if err != nil || !c.Apply {
				return err
			}
			e, _, err := define[spec.ObjectSpec](c, c.Registry().Objects, c.ID, func() spec.ObjectSpec {
				return spec.ObjectSpec{Enabled: true, Size: 0x11, Views: 1}
			})
			if err != nil {
				return err
			}
			cls, ok := c.Registry().ObjectClasses.Allocate(spec.Label(v))
			if !ok {
				c.Log().Warnf("No free object class for %v", spec.Label(v))
			}
			e.Spec.ClassIndex = cls
			return nil
		}).defining(),
		custom(0x09, "class_name", func(c *Context, r *utils.ByteReader, o *spec.ObjectSpec) error {
			v, err := r.ReadU16()
			if err != nil || o == nil {
				return err
			}
			o.ClassNameID = v
			classes := &c.Registry().ObjectClasses
			if int(o.ClassIndex) < len(classes.List) {
				classes.List[o.ClassIndex].NameID = uint32(v)
			}
			return nil
		}),
		u16(0x0A, "name", func(o *spec.ObjectSpec) *uint16 { return &o.NameID }),
		u8(0x0B, "climates_available", func(o *spec.ObjectSpec) *uint8 { return &o.Climate }),
		custom(0x0C, "size", func(c *Context, r *utils.ByteReader, o *spec.ObjectSpec) error {
			v, err := r.ReadU8()
			if err != nil || o == nil {
				return err
			}
			if v&0x0F == 0 || v&0xF0 == 0 {
				c.Log().Warnf("Invalid object size requested (0x%x) for object id %d. Ignoring.", v, c.ID)
				v = 0x11
			}
			o.Size = v
			return nil
		}),
		u8(0x0D, "build_cost_multiplier", func(o *spec.ObjectSpec) *uint8 { return &o.BuildCostMult }),
		u32(0x0E, "introduction_date", func(o *spec.ObjectSpec) *uint32 { return &o.IntroDate }),
		u32(0x0F, "end_of_life_date", func(o *spec.ObjectSpec) *uint32 { return &o.EndOfLifeDate }),
		u16(0x10, "object_flags", func(o *spec.ObjectSpec) *uint16 { return &o.Flags }),
		animationInfo(0x11, func(o *spec.ObjectSpec) *spec.AnimationInfo { return &o.Animation }),
		u8(0x12, "animation_speed", func(o *spec.ObjectSpec) *uint8 { return &o.Animation.Speed }),
		u16(0x13, "animation_triggers", func(o *spec.ObjectSpec) *uint16 { return &o.Animation.Triggers }),
		u8(0x14, "remove_cost_multiplier", func(o *spec.ObjectSpec) *uint8 { return &o.ClearCostMult }),
		u16(0x15, "callback_flags", func(o *spec.ObjectSpec) *uint16 { return &o.CallbackMask }),
		u8(0x16, "height", func(o *spec.ObjectSpec) *uint8 { return &o.Height }),
		custom(0x17, "num_views", func(c *Context, r *utils.ByteReader, o *spec.ObjectSpec) error {
			v, err := r.ReadU8()
			if err != nil || o == nil {
				return err
			}
			if v != 1 && v != 2 && v != 4 {
				c.Log().Infof("Invalid number of views (%d) for object id %d. Ignoring.", v, c.ID)
				v = 1
			}
			o.Views = v
			return nil
		}),
		u8(0x18, "count_per_map_256", func(o *spec.ObjectSpec) *uint8 { return &o.GenerateAmount }),
	}
}

func init() {
	register(newTable(feature.Canals, canalObject, canalProperties()...))
	register(newTable(feature.Bridges, directObject(func(reg *spec.Registry) *spec.Table[spec.BridgeSpec] { return reg.Bridges }), bridgeProperties()...))
	register(newTable(feature.Signals, scopedObject(func(reg *spec.Registry) *spec.Table[spec.SignalStyle] { return reg.Signals }), signalProperties()...))
	register(newTable(feature.RailTypes, railTypeObject, railTypeProperties()...))
	register(newTable(feature.RoadTypes, roadTypeObject(false), roadTypeProperties(false)...))
	register(newTable(feature.TramTypes, roadTypeObject(true), roadTypeProperties(true)...))
	register(newTable(feature.Airports, scopedObject(func(reg *spec.Registry) *spec.Table[spec.AirportSpec] { return reg.Airports }), airportProperties()...))
	register(newTable(feature.AirportTiles, scopedObject(func(reg *spec.Registry) *spec.Table[spec.AirportTileSpec] { return reg.AirportTiles }), airportTileProperties()...))
	register(newTable(feature.Objects, scopedObject(func(reg *spec.Registry) *spec.Table[spec.ObjectSpec] { return reg.Objects }), objectProperties()...))
}
