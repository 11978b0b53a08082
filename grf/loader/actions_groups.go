package loader

import (
	"github.com/mogaika/newgrf_browser/grf/feature"
	"github.com/mogaika/newgrf_browser/grf/props"
	"github.com/mogaika/newgrf_browser/grf/spec"
	"github.com/mogaika/newgrf_browser/utils"
)

// Action 0x02: u8 feature, u8 set id, u8 type, body.
func newSpriteGroup(st *moduleState, r *utils.ByteReader) error {
	f, err := r.ReadU8()
	if err != nil {
		return err
	}
	if !feature.Feature(f).Valid() {
		st.Log().Infof("Unsupported feature 0x%.2x, skipping", f)
		return nil
	}
	setID, err := r.ReadU8()
	if err != nil {
		return err
	}
	typ, err := r.ReadU8()
	if err != nil {
		return err
	}
	h, err := st.builder.Build(st, feature.Feature(f), uint16(setID), typ, r)
	if err != nil {
		return err
	}
	st.Log().Tracef("Group 0x%.2x of %v type 0x%.2x is %d", setID, feature.Feature(f), typ, h)
	return nil
}

type cargoGroup struct {
	cargo uint8
	group uint16
}

// groupMap is the body of an Action 0x03 after the id count.
type groupMap struct {
	ids     []uint16
	cargoes []cargoGroup
	def     uint16
}

func readGroupMap(r *utils.ByteReader, count int) (*groupMap, error) {
	gm := &groupMap{ids: make([]uint16, 0, count)}
	for i := 0; i < count; i++ {
		id, err := r.ReadExtended()
		if err != nil {
			return nil, err
		}
		gm.ids = append(gm.ids, id)
	}
	n, err := r.ReadU8()
	if err != nil {
		return nil, err
	}
	for i := 0; i < int(n); i++ {
		var cg cargoGroup
		if cg.cargo, err = r.ReadU8(); err != nil {
			return nil, err
		}
		if cg.group, err = r.ReadU16(); err != nil {
			return nil, err
		}
		gm.cargoes = append(gm.cargoes, cg)
	}
	gm.def, err = r.ReadU16()
	return gm, err
}

// group returns the group built under a set id, logging bad references.
func (st *moduleState) group(id uint16) (spec.GroupHandle, bool) {
	if id > 0xFF {
		st.Log().Infof("Group id 0x%.4x out of range, skipping", id)
		return spec.NoGroup, false
	}
	h, ok := st.builder.Group(id)
	if !ok {
		st.Log().Infof("Group id 0x%.2x is empty, skipping", id)
	}
	return h, ok
}

// mapCargo turns the cargo byte of a mapping into a cargo slot or one of
// the pseudo slots.
func (st *moduleState) mapCargo(f feature.Feature, ctype uint8) spec.CargoID {
	if ctype == 0xFE && (f == feature.Stations || f == feature.RoadStops) {
		return spec.SpriteGroupDefaultNA
	}
	if ctype == 0xFF {
		return spec.SpriteGroupPurchase
	}
	c := props.TranslateCargo(st, ctype, true)
	if c == spec.InvalidCargo {
		st.Log().Debugf("Cargo type %d not available, skipping", ctype)
	}
	return c
}

// Action 0x03: u8 feature, u8 id count (bit 7 for wagon overrides), ext
// ids, u8 cargo count, (u8 cargo, u16 group) pairs, u16 default group.
// An id count of 0 installs a generic callback.
func mapSpriteGroup(st *moduleState, r *utils.ByteReader) error {
	b, err := r.ReadU8()
	if err != nil {
		return err
	}
	f := feature.Feature(b)
	count, err := r.ReadU8()
	if err != nil {
		return err
	}
	if !f.Valid() {
		st.Log().Infof("Unsupported feature 0x%.2x, skipping", b)
		return nil
	}

	if count == 0 {
		if err := r.Skip(1); err != nil {
			return err
		}
		id, err := r.ReadU16()
		if err != nil {
			return err
		}
		if h, ok := st.group(id); ok {
			st.Log().Debugf("Adding generic callback for %v", f)
			st.registry.AddGenericCallback(f, st.m.GRFID, h)
		}
		return nil
	}

	st.m.File.Features.Add(f)
	if f.IsVehicle() {
		return st.mapVehicles(f, count, r)
	}

	gm, err := readGroupMap(r, int(count))
	if err != nil {
		return err
	}
	switch f {
	case feature.Stations:
		mapStationLike(st, f, st.registry.Stations, gm)
	case feature.RoadStops:
		mapStationLike(st, f, st.registry.RoadStops, gm)
	case feature.Objects:
		mapObjects(st, gm)
	case feature.Canals:
		st.mapCanals(gm)
	case feature.Cargoes:
		st.mapCargoes(gm)
	case feature.RailTypes:
		st.mapInfraTypes(gm, f, st.m.File.RailTypeMap, railTypeGroups, func(id uint8) *spec.GRFProps {
			return propsOf(st.registry.RailTypes.Spec(uint16(id)))
		})
	case feature.RoadTypes, feature.TramTypes:
		m := st.m.File.RoadTypeMap
		if f == feature.TramTypes {
			m = st.m.File.TramTypeMap
		}
		st.mapInfraTypes(gm, f, m, roadTypeGroups, func(id uint8) *spec.GRFProps {
			return propsOf(st.registry.RoadTypes.Spec(uint16(id)))
		})
	case feature.Houses:
		mapDefault(st, f, st.registry.Houses, gm)
	case feature.Industries:
		mapDefault(st, f, st.registry.Industries, gm)
	case feature.IndustryTiles:
		mapDefault(st, f, st.registry.IndustryTiles, gm)
	case feature.Airports:
		mapDefault(st, f, st.registry.Airports, gm)
	case feature.AirportTiles:
		mapDefault(st, f, st.registry.AirportTiles, gm)
	case feature.Signals:
		mapDefault(st, f, st.registry.Signals, gm)
	default:
		st.Log().Infof("Unsupported feature %v, skipping", f)
	}
	return nil
}

func (st *moduleState) mapVehicles(f feature.Feature, count uint8, r *utils.ByteReader) error {
	wagons := count&0x80 != 0
	count &= 0x7F

	if wagons && (len(st.lastEngines) == 0 || st.lastFeature != f) {
		st.Log().Infof("Wagon override without an engine to override with")
		return nil
	}

	engines := make([]*spec.Entry[spec.Engine], 0, count)
	for i := 0; i < int(count); i++ {
		local, err := r.ReadExtended()
		if err != nil {
			return err
		}
		e, err := props.Engine(st, f, local, false)
		if err != nil {
			return err
		}
		if e == nil {
			return props.ErrInvalidID
		}
		engines = append(engines, e)
	}
	if !wagons {
		st.lastEngines = st.lastEngines[:0]
		for _, e := range engines {
			st.lastEngines = append(st.lastEngines, e.ID)
		}
		st.lastFeature = f
	}

	set := func(cargo spec.CargoID, h spec.GroupHandle) {
		for _, e := range engines {
			if wagons {
				for _, loco := range st.lastEngines {
					e.Spec.SetWagonOverride(loco, cargo, h)
				}
				continue
			}
			if old, ok := e.Spec.Groups[cargo]; ok && old != spec.NoGroup {
				st.Log().Tracef("Engine %d cargo %d already has a group, replacing", e.ID, cargo)
			}
			e.Spec.SetGroup(cargo, h)
		}
	}

	n, err := r.ReadU8()
	if err != nil {
		return err
	}
	for i := 0; i < int(n); i++ {
		ctype, err := r.ReadU8()
		if err != nil {
			return err
		}
		id, err := r.ReadU16()
		if err != nil {
			return err
		}
		h, ok := st.group(id)
		if !ok {
			continue
		}
		if c := st.mapCargo(f, ctype); c != spec.InvalidCargo {
			set(c, h)
		}
	}

	id, err := r.ReadU16()
	if err != nil {
		return err
	}
	if h, ok := st.group(id); ok {
		set(spec.SpriteGroupDefault, h)
	}
	return nil
}

type propsPtr[T any] interface {
	*T
	Props() *spec.GRFProps
}

func propsOf[T any, PT propsPtr[T]](obj PT) *spec.GRFProps {
	if obj == nil {
		return nil
	}
	return obj.Props()
}

// scopedEntry returns the entry a module defined under a local id.
func scopedEntry[T any](st *moduleState, f feature.Feature, tbl *spec.Table[T], local uint16) *spec.Entry[T] {
	global, ok := st.ids.Lookup(f, st.m.GRFID, local)
	if !ok {
		return nil
	}
	e := tbl.Get(global)
	if e == nil || !e.Defined {
		return nil
	}
	return e
}

func mapStationLike[T any, PT propsPtr[T]](st *moduleState, f feature.Feature, tbl *spec.Table[T], gm *groupMap) {
	for _, cg := range gm.cargoes {
		h, ok := st.group(cg.group)
		if !ok {
			continue
		}
		c := st.mapCargo(f, cg.cargo)
		if c == spec.InvalidCargo {
			continue
		}
		for _, id := range gm.ids {
			e := scopedEntry(st, f, tbl, id)
			if e == nil {
				st.Log().Infof("%v %d undefined, skipping", f, id)
				continue
			}
			PT(&e.Spec).Props().SetGroup(c, h)
		}
	}

	h, ok := st.group(gm.def)
	if !ok {
		return
	}
	for _, id := range gm.ids {
		e := scopedEntry(st, f, tbl, id)
		if e == nil {
			st.Log().Infof("%v %d undefined, skipping", f, id)
			continue
		}
		p := PT(&e.Spec).Props()
		if old, ok := p.Groups[spec.SpriteGroupDefault]; ok && old != spec.NoGroup {
			st.Log().Infof("%v %d mapped multiple times, skipping", f, id)
			continue
		}
		p.SetGroup(spec.SpriteGroupDefault, h)
		p.GRFID = st.m.GRFID
		p.LocalID = id
	}
}

func mapObjects(st *moduleState, gm *groupMap) {
	tbl := st.registry.Objects
	for _, cg := range gm.cargoes {
		h, ok := st.group(cg.group)
		if !ok {
			continue
		}
		if cg.cargo != 0xFF {
			st.Log().Infof("Invalid cargo type %d for objects, skipping", cg.cargo)
			continue
		}
		for _, id := range gm.ids {
			if e := scopedEntry(st, feature.Objects, tbl, id); e != nil {
				e.Spec.SetGroup(spec.SpriteGroupPurchase, h)
			} else {
				st.Log().Infof("Object %d undefined, skipping", id)
			}
		}
	}

	h, ok := st.group(gm.def)
	if !ok {
		return
	}
	for _, id := range gm.ids {
		e := scopedEntry(st, feature.Objects, tbl, id)
		if e == nil {
			st.Log().Infof("Object %d undefined, skipping", id)
			continue
		}
		if old, ok := e.Spec.Groups[spec.SpriteGroupDefault]; ok && old != spec.NoGroup {
			st.Log().Infof("Object %d mapped multiple times, skipping", id)
			continue
		}
		e.Spec.SetGroup(spec.SpriteGroupDefault, h)
		e.Spec.GRFID = st.m.GRFID
		e.Spec.LocalID = id
	}
}

// mapDefault binds the default group only, cargo specific groups are not
// used by these features.
func mapDefault[T any, PT propsPtr[T]](st *moduleState, f feature.Feature, tbl *spec.Table[T], gm *groupMap) {
	h, ok := st.group(gm.def)
	if !ok {
		return
	}
	for _, id := range gm.ids {
		e := scopedEntry(st, f, tbl, id)
		if e == nil {
			st.Log().Infof("%v %d undefined, skipping", f, id)
			continue
		}
		PT(&e.Spec).Props().SetGroup(spec.SpriteGroupDefault, h)
	}
}

func (st *moduleState) mapCanals(gm *groupMap) {
	h, ok := st.group(gm.def)
	if !ok {
		return
	}
	for _, id := range gm.ids {
		cs := st.registry.Canals.Spec(id)
		if cs == nil {
			st.Log().Infof("Canal subset %d out of range, skipping", id)
			continue
		}
		cs.GRFID = st.m.GRFID
		cs.SetGroup(spec.SpriteGroupDefault, h)
	}
}

func (st *moduleState) mapCargoes(gm *groupMap) {
	h, ok := st.group(gm.def)
	if !ok {
		return
	}
	for _, id := range gm.ids {
		cs := st.registry.Cargoes.Spec(id)
		if id >= spec.CargoLimit || cs == nil {
			st.Log().Infof("Cargo %d out of range, skipping", id)
			continue
		}
		cs.GRFID = st.m.GRFID
		cs.SetGroup(spec.SpriteGroupDefault, h)
	}
}

// Number of sprite kinds of rail and road types. The cargo byte of their
// mappings selects the kind, the default group is unused.
const (
	railTypeGroups = 12
	roadTypeGroups = 11
)

func (st *moduleState) mapInfraTypes(gm *groupMap, f feature.Feature, local map[uint16]uint8, kinds uint8, get func(id uint8) *spec.GRFProps) {
	for _, cg := range gm.cargoes {
		h, ok := st.group(cg.group)
		if !ok || cg.cargo >= kinds {
			continue
		}
		for _, id := range gm.ids {
			global, ok := local[id]
			if !ok {
				st.Log().Debugf("%v %d not mapped, skipping", f, id)
				continue
			}
			if p := get(global); p != nil {
				p.GRFID = st.m.GRFID
				p.SetGroup(spec.CargoID(cg.cargo), h)
			}
		}
	}
}
