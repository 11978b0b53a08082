package props

import (
	"github.com/mogaika/newgrf_browser/grf/feature"
	"github.com/mogaika/newgrf_browser/grf/spec"
	"github.com/mogaika/newgrf_browser/grf/spritegroup"
	"github.com/mogaika/newgrf_browser/utils"
)

const layoutTerminator = -0x80

func stationTable(reg *spec.Registry) *spec.Table[spec.StationSpec] { return reg.Stations }

// stationByLocal returns a station the current module defined.
func stationByLocal(c *Context, local uint16) *spec.StationSpec {
	global, ok := c.IDs().Lookup(feature.Stations, c.GRFID(), local)
	if !ok {
		return nil
	}
	if e := c.Registry().Stations.Get(global); e != nil && e.Defined {
		return &e.Spec
	}
	return nil
}

// readStationLayouts reads the simple layout list of property 0x09.
func readStationLayouts(r *utils.ByteReader) ([]*spec.SpriteLayout, error) {
	tiles, err := r.ReadExtended()
	if err != nil {
		return nil, err
	}
	layouts := make([]*spec.SpriteLayout, 0, tiles)
	for t := 0; t < int(tiles); t++ {
		mark := r.Mark()
		b, err := r.ReadBytes(4)
		if err != nil {
			return nil, err
		}
		if b[0] == 0 && b[1] == 0 && b[2] == 0 && b[3] == 0 {
			layouts = append(layouts, &spec.SpriteLayout{Builtin: true, BuiltinIndex: uint8(t % 8)})
			continue
		}
		r.Reset(mark)

		ground, err := spritegroup.ReadLayoutSprite(r, nil, feature.Stations, false, false)
		if err != nil {
			return nil, err
		}
		layout := &spec.SpriteLayout{Ground: ground.Image}
		for {
			dx, err := r.ReadU8()
			if err != nil {
				return nil, err
			}
			if int8(dx) == layoutTerminator {
				break
			}
			rest, err := r.ReadBytes(5)
			if err != nil {
				return nil, err
			}
			ls, err := spritegroup.ReadLayoutSprite(r, nil, feature.Stations, false, true)
			if err != nil {
				return nil, err
			}
			layout.Seq = append(layout.Seq, spec.LayoutSeq{
				DeltaX: int8(dx), DeltaY: int8(rest[0]), DeltaZ: int8(rest[1]),
				SizeX: rest[2], SizeY: rest[3], SizeZ: rest[4],
				Image: ls.Image,
			})
		}
		layouts = append(layouts, layout)
	}
	return layouts, nil
}

func readAdvancedStationLayouts(c *Context, r *utils.ByteReader) ([]*spec.SpriteLayout, error) {
	tiles, err := r.ReadExtended()
	if err != nil {
		return nil, err
	}
	layouts := make([]*spec.SpriteLayout, 0, tiles)
	for t := 0; t < int(tiles); t++ {
		n, err := r.ReadU8()
		if err != nil {
			return nil, err
		}
		layout, err := spritegroup.ReadLayout(r, nil, feature.Stations, n, true, false)
		if err != nil {
			return nil, err
		}
		layouts = append(layouts, layout)
	}
	if len(layouts)&1 != 0 {
		c.Log().Warnf("Station %d defines an odd number of sprite layouts, dropping the last item", c.ID)
		layouts = layouts[:len(layouts)-1]
	}
	return layouts, nil
}

func readPlatformLayouts(c *Context, r *utils.ByteReader) (map[uint8]map[uint8][]byte, error) {
	platforms := make(map[uint8]map[uint8][]byte)
	for r.HasData() {
		length, err := r.ReadU8()
		if err != nil {
			return nil, err
		}
		number, err := r.ReadU8()
		if err != nil {
			return nil, err
		}
		if length == 0 || number == 0 {
			break
		}
		b, err := r.ReadBytes(int(length) * int(number))
		if err != nil {
			return nil, err
		}
		layout := append([]byte(nil), b...)
		for i, tile := range layout {
			if tile&^1 != tile {
				c.Log().Warnf("Invalid tile %d in layout %dx%d", tile, length, number)
				layout[i] = tile &^ 1
			}
		}
		if platforms[number] == nil {
			platforms[number] = make(map[uint8][]byte)
		}
		platforms[number][length] = layout
	}
	return platforms, nil
}

func stationProperties() []Property[spec.StationSpec] {
	return []Property[spec.StationSpec]{
		custom(0x08, "class_id", func(c *Context, r *utils.ByteReader, _ *spec.StationSpec) error {
			v, err := r.ReadBU32()
			if err != nil || !c.Apply {
				return err
			}
			e, _, err := define[spec.StationSpec](c, c.Registry().Stations, c.ID, func() spec.StationSpec { return spec.StationSpec{} })
			if err != nil {
				return err
			}
			cls, ok := c.Registry().StationClasses.Allocate(spec.Label(v))
			if !ok {
				c.Log().Warnf("No free station class for %v", spec.Label(v))
			}
			e.Spec.ClassIndex = cls
			return nil
		}).defining(),
		custom(0x09, "sprite_layouts", func(c *Context, r *utils.ByteReader, s *spec.StationSpec) error {
			layouts, err := readStationLayouts(r)
			if err != nil || s == nil {
				return err
			}
			s.Layouts = layouts
			return nil
		}),
		custom(0x0A, "copy_sprite_layouts", func(c *Context, r *utils.ByteReader, s *spec.StationSpec) error {
			src, err := r.ReadExtended()
			if err != nil || s == nil {
				return err
			}
			from := stationByLocal(c, src)
			if from == nil {
				c.Log().Warnf("Station %d is not defined, cannot copy sprite layout to %d", src, c.ID)
				return nil
			}
			s.Layouts = make([]*spec.SpriteLayout, 0, len(from.Layouts))
			for _, l := range from.Layouts {
				s.Layouts = append(s.Layouts, l.Clone())
			}
			return nil
		}),
		u8(0x0B, "callback_flags", func(s *spec.StationSpec) *uint8 { return &s.CallbackMask }),
		u8(0x0C, "disallowed_platform_numbers", func(s *spec.StationSpec) *uint8 { return &s.DisallowedPlatforms }),
		u8(0x0D, "disallowed_platform_lengths", func(s *spec.StationSpec) *uint8 { return &s.DisallowedLengths }),
		custom(0x0E, "custom_layout", func(c *Context, r *utils.ByteReader, s *spec.StationSpec) error {
			platforms, err := readPlatformLayouts(c, r)
			if err != nil || s == nil {
				return err
			}
			if s.Platforms == nil {
				s.Platforms = platforms
				return nil
			}
			for number, lengths := range platforms {
				if s.Platforms[number] == nil {
					s.Platforms[number] = lengths
					continue
				}
				for length, layout := range lengths {
					s.Platforms[number][length] = layout
				}
			}
			return nil
		}),
		custom(0x0F, "copy_custom_layout", func(c *Context, r *utils.ByteReader, s *spec.StationSpec) error {
			src, err := r.ReadExtended()
			if err != nil || s == nil {
				return err
			}
			from := stationByLocal(c, src)
			if from == nil {
				c.Log().Warnf("Station %d is not defined, cannot copy tile layout to %d", src, c.ID)
				return nil
			}
			s.Platforms = make(map[uint8]map[uint8][]byte, len(from.Platforms))
			for number, lengths := range from.Platforms {
				s.Platforms[number] = make(map[uint8][]byte, len(lengths))
				for length, layout := range lengths {
					s.Platforms[number][length] = append([]byte(nil), layout...)
				}
			}
			return nil
		}),
		u16(0x10, "little_lots_threshold", func(s *spec.StationSpec) *uint16 { return &s.CargoThreshold }),
		u8(0x11, "pylon_placement", func(s *spec.StationSpec) *uint8 { return &s.Pylons }),
		custom(0x12, "cargo_random_triggers", func(c *Context, r *utils.ByteReader, s *spec.StationSpec) error {
			v, err := r.ReadU32()
			if err != nil || s == nil {
				return err
			}
			s.CargoTriggers = TranslateRefitMask(c, v)
			return nil
		}),
		u8(0x13, "general_flags", func(s *spec.StationSpec) *uint8 { return &s.Flags }),
		u8(0x14, "overhead_wire_placement", func(s *spec.StationSpec) *uint8 { return &s.Wires }),
		u8(0x15, "blocked_tiles", func(s *spec.StationSpec) *uint8 { return &s.Blocked }),
		animationInfo(0x16, func(s *spec.StationSpec) *spec.AnimationInfo { return &s.Animation }),
		u8(0x17, "animation_speed", func(s *spec.StationSpec) *uint8 { return &s.Animation.Speed }),
		u16(0x18, "animation_triggers", func(s *spec.StationSpec) *uint16 { return &s.Animation.Triggers }),
		custom(0x1A, "advanced_sprite_layouts", func(c *Context, r *utils.ByteReader, s *spec.StationSpec) error {
			layouts, err := readAdvancedStationLayouts(c, r)
			if err != nil || s == nil {
				return err
			}
			s.Layouts = layouts
			return nil
		}),
		custom(0x1B, "bridge_heights", func(c *Context, r *utils.ByteReader, s *spec.StationSpec) error {
			b, err := r.ReadBytes(8)
			if err != nil || s == nil {
				return err
			}
			copy(s.BridgeHeights[:], b)
			s.BridgeHeightsSet = true
			return nil
		}),
		u16(0x1C, "name", func(s *spec.StationSpec) *uint16 { return &s.NameID }),
		custom(0x1D, "class_name", func(c *Context, r *utils.ByteReader, s *spec.StationSpec) error {
			v, err := r.ReadU16()
			if err != nil || s == nil {
				return err
			}
			classes := &c.Registry().StationClasses
			if int(s.ClassIndex) < len(classes.List) {
				classes.List[s.ClassIndex].NameID = uint32(v)
			}
			return nil
		}),
		custom(0x1E, "tile_flags", func(c *Context, r *utils.ByteReader, s *spec.StationSpec) error {
			n, err := r.ReadExtended()
			if err != nil {
				return err
			}
			b, err := r.ReadBytes(int(n))
			if err != nil || s == nil {
				return err
			}
			s.TileFlags = append([]uint8(nil), b...)
			return nil
		}),
	}
}

func roadStopProperties() []Property[spec.RoadStopSpec] {
	return []Property[spec.RoadStopSpec]{
		custom(0x08, "class_id", func(c *Context, r *utils.ByteReader, _ *spec.RoadStopSpec) error {
			v, err := r.ReadBU32()
			if err != nil || !c.Apply {
				return err
			}
			e, _, err := define[spec.RoadStopSpec](c, c.Registry().RoadStops, c.ID, func() spec.RoadStopSpec { return spec.RoadStopSpec{} })
			if err != nil {
				return err
			}
			cls, ok := c.Registry().RoadStopClasses.Allocate(spec.Label(v))
			if !ok {
				c.Log().Warnf("No free road stop class for %v", spec.Label(v))
			}
			e.Spec.ClassIndex = cls
			return nil
		}).defining(),
		u8(0x09, "stop_type", func(s *spec.RoadStopSpec) *uint8 { return &s.StopType }),
		u16(0x0A, "name", func(s *spec.RoadStopSpec) *uint16 { return &s.NameID }),
		custom(0x0B, "class_name", func(c *Context, r *utils.ByteReader, s *spec.RoadStopSpec) error {
			v, err := r.ReadU16()
			if err != nil || s == nil {
				return err
			}
			s.ClassNameID = v
			classes := &c.Registry().RoadStopClasses
			if int(s.ClassIndex) < len(classes.List) {
				classes.List[s.ClassIndex].NameID = uint32(v)
			}
			return nil
		}),
		u8(0x0C, "draw_mode", func(s *spec.RoadStopSpec) *uint8 { return &s.DrawMode }),
		custom(0x0D, "cargo_random_triggers", func(c *Context, r *utils.ByteReader, s *spec.RoadStopSpec) error {
			v, err := r.ReadU32()
			if err != nil || s == nil {
				return err
			}
			s.CargoTriggers = TranslateRefitMask(c, v)
			return nil
		}),
		animationInfo(0x0E, func(s *spec.RoadStopSpec) *spec.AnimationInfo { return &s.Animation }),
		u8(0x0F, "animation_speed", func(s *spec.RoadStopSpec) *uint8 { return &s.Animation.Speed }),
		u16(0x10, "animation_triggers", func(s *spec.RoadStopSpec) *uint16 { return &s.Animation.Triggers }),
		u8(0x11, "callback_flags", func(s *spec.RoadStopSpec) *uint8 { return &s.CallbackMask }),
		u32(0x12, "general_flags", func(s *spec.RoadStopSpec) *uint32 { return &s.Flags }),
		mapped(0x15, "cost_multipliers", 2,
			func(s *spec.RoadStopSpec, v uint32) { s.BuildCostMult, s.ClearCostMult = uint8(v), uint8(v>>8) },
			func(s *spec.RoadStopSpec) uint32 { return uint32(s.BuildCostMult) | uint32(s.ClearCostMult)<<8 }),
	}
}

// animationInfo reads the frame count and the looping status.
func animationInfo[T any](code uint8, field func(*T) *spec.AnimationInfo) Property[T] {
	return mapped(code, "animation_info", 2,
		func(obj *T, v uint32) {
			a := field(obj)
			a.Frames, a.Status = uint8(v), uint8(v>>8)
		},
		func(obj *T) uint32 {
			a := field(obj)
			return uint32(a.Frames) | uint32(a.Status)<<8
		})
}

func init() {
	register(newTable(feature.Stations, scopedObject(stationTable), stationProperties()...))
	register(newTable(feature.RoadStops, scopedObject(func(reg *spec.Registry) *spec.Table[spec.RoadStopSpec] { return reg.RoadStops }), roadStopProperties()...))
}
