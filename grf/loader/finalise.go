package loader

import (
	"github.com/sirupsen/logrus"

	"github.com/mogaika/newgrf_browser/grf/feature"
	"github.com/mogaika/newgrf_browser/grf/spec"
)

// finalise resolves what depends on all modules being activated.
func (s *session) finalise() {
	files := s.activeFiles()
	s.finalisePrices(files)
	s.finaliseEngines()
	s.finaliseHouses()
	s.finaliseIndustries()
	s.finaliseAirports()
	s.finaliseObjects()
	s.finaliseCanals(files)
}

type activeFile struct {
	m    *Module
	file *spec.GRFFile
}

func (s *session) activeFiles() []activeFile {
	var list []activeFile
	for _, m := range s.modules {
		if m.Status == StatusActivated && m.File != nil {
			list = append(list, activeFile{m: m, file: m.File})
		}
	}
	return list
}

func fileIndex(files []activeFile, grfid uint32) int {
	for i, f := range files {
		if f.file.GRFID == grfid {
			return i
		}
	}
	return -1
}

// finalisePrices shares price multipliers between modules linked by a
// GRFID override, applies the fallbacks of old modules and moves the
// multipliers of features a module does not define to the global set.
func (s *session) finalisePrices(files []activeFile) {
	overrides := make([]int, len(files))
	for i, f := range files {
		overrides[i] = -1
		if dst, ok := s.ids.Override(f.file.GRFID); ok {
			overrides[i] = fileIndex(files, dst)
		}
	}

	// only vehicle features share an id space through overrides
	vehicles := feature.Set(feature.Trains.Bit() | feature.RoadVehicles.Bit() | feature.Ships.Bit() | feature.Aircraft.Bit())
	copyPrices := func(from, to *spec.GRFFile, all bool) {
		features := (from.Features | to.Features) & vehicles
		from.Features |= features
		to.Features |= features
		for p, base := range spec.PriceBases {
			if !features.Has(base.Feature) {
				continue
			}
			if all || from.PriceMultipliers[p] != spec.InvalidPriceModifier {
				to.PriceMultipliers[p] = from.PriceMultipliers[p]
			}
		}
	}

	// earlier modules take the prices of the modules overriding them
	for i, dst := range overrides {
		if dst >= 0 && dst < i {
			copyPrices(files[i].file, files[dst].file, false)
		}
	}
	for i := len(files) - 1; i >= 0; i-- {
		if dst := overrides[i]; dst > i {
			copyPrices(files[i].file, files[dst].file, false)
		}
	}
	// and overriding modules end up with the merged set
	for i, dst := range overrides {
		if dst >= 0 {
			copyPrices(files[dst].file, files[i].file, true)
		}
	}

	for _, f := range files {
		if f.file.Version >= 8 {
			continue
		}
		pm := f.file.PriceMultipliers
		for p, base := range spec.PriceBases {
			if base.Fallback != spec.NoPrice && pm[p] == spec.InvalidPriceModifier {
				pm[p] = pm[base.Fallback]
			}
		}
	}

	global := s.registry.GlobalPriceMultipliers
	for _, f := range files {
		pm := f.file.PriceMultipliers
		for p, base := range spec.PriceBases {
			if pm[p] == spec.InvalidPriceModifier {
				pm[p] = 0
				continue
			}
			if !f.file.Features.Has(base.Feature) {
				f.m.log.Debugf("Price %s multiplier %d applies globally", base.Name, pm[p])
				global[p] = pm[p]
				pm[p] = 0
			}
		}
	}
}

// finaliseEngines computes the refit masks and default cargoes of module
// engines and disables engines left without a cargo.
func (s *session) finaliseEngines() {
	reg := s.registry
	var valid spec.CargoMask
	for _, c := range reg.Cargoes.Entries() {
		if c.Spec.Valid() {
			valid.Set(spec.CargoID(c.ID))
		}
	}

	for _, e := range reg.Engines.Active() {
		if !e.Defined {
			continue
		}
		eng := &e.Spec
		info := &eng.Info
		rf := &eng.Refit

		var mask spec.CargoMask
		if rf.MaskSet || rf.ClassesAllowed != 0 || rf.ClassesDenied != 0 {
			mask = rf.Mask
			var not spec.CargoMask
			if rf.ClassesAllowed != 0 || rf.ClassesDenied != 0 {
				for _, c := range reg.Cargoes.Entries() {
					if !c.Spec.Valid() {
						continue
					}
					id := spec.CargoID(c.ID)
					if c.Spec.Classes&rf.ClassesAllowed != 0 && c.Spec.Classes&rf.ClassesDenied == 0 {
						mask.Set(id)
					}
					if c.Spec.Classes&rf.ClassesDenied != 0 {
						not.Set(id)
					}
				}
			}
			for _, c := range rf.Include {
				mask.Set(c)
			}
			for _, c := range rf.Exclude {
				not.Set(c)
			}
			mask &^= not
		} else if info.CargoType.Valid() {
			mask.Set(info.CargoType)
		}
		mask &= valid

		if info.CargoLabel != 0 {
			info.CargoType = reg.CargoByLabel(info.CargoLabel)
		}
		if info.CargoType.Valid() && !valid.Has(info.CargoType) {
			info.CargoType = spec.InvalidCargo
		}
		if !info.CargoType.Valid() && mask != 0 {
			for c := spec.CargoID(0); c < spec.CargoLimit; c++ {
				if mask.Has(c) {
					info.CargoType = c
					break
				}
			}
		}
		if !info.CargoType.Valid() && eng.Type == feature.Trains && eng.Rail.Capacity == 0 {
			// engines without capacity carry nothing, any cargo will do
			for c := spec.CargoID(0); c < spec.CargoLimit; c++ {
				if valid.Has(c) {
					info.CargoType = c
					break
				}
			}
		}
		if eng.Type == feature.Ships && eng.Ship.OldRefittable == 0 {
			mask = 0
		}
		info.RefitMask = mask

		if !info.CargoType.Valid() {
			info.Climates = 0
			e.Disable("no valid cargo")
			s.entryLog(eng.GRFID).Infof("Engine %d has no valid cargo, disabling", eng.LocalID)
		}
	}
}

// House availability bits.
const (
	houseZonesAll    = 0x001F
	houseClimatesAll = 0xF800
)

// finaliseHouses disables houses whose tiles do not form a building.
func (s *session) finaliseHouses() {
	houses := s.registry.Houses
	next := func(h *spec.HouseSpec, n uint16) *spec.HouseSpec {
		id, ok := s.ids.Lookup(feature.Houses, h.GRFID, h.LocalID+n)
		if !ok {
			return nil
		}
		e := houses.Get(id)
		if e == nil || e.Disabled || !e.Spec.Enabled {
			return nil
		}
		return &e.Spec
	}
	isPart := func(h *spec.HouseSpec) bool {
		return h != nil && h.BuildingFlags&spec.BuildingHas1Tile == 0
	}

	for _, e := range houses.Active() {
		h := &e.Spec
		if !e.Defined || !h.Enabled {
			continue
		}
		reason := ""
		switch {
		case h.BuildingFlags&spec.BuildingHas2Tiles != 0 && !isPart(next(h, 1)):
			reason = "missing one of the subsequent tiles"
		case h.BuildingFlags&spec.BuildingHas4Tiles != 0 && (!isPart(next(h, 2)) || !isPart(next(h, 3))):
			reason = "missing one of the subsequent tiles"
		case h.BuildingFlags&spec.BuildingHas1Tile == 0 && (h.Population != 0 || h.RemoveRating != 0):
			reason = "non-north tile with population or rating"
		case h.BuildingFlags&spec.BuildingHas1Tile == 0 && h.Availability&houseZonesAll != 0 && h.Availability&houseClimatesAll != 0:
			reason = "non-north tile available for building"
		}
		if reason == "" {
			if sub := houses.Get(h.SubstituteID); sub != nil && sub.Spec.BuildingFlags&spec.BuildingHas1Tile != h.BuildingFlags&spec.BuildingHas1Tile {
				reason = "different size than its substitute"
			}
		}
		if reason != "" {
			h.Enabled = false
			e.Disable(reason)
			s.entryLog(h.GRFID).Infof("House %d %s, disabling", h.LocalID, reason)
		}
	}
}

// finaliseIndustries drops industry layouts that use undefined tiles and
// disables industries left without a layout.
func (s *session) finaliseIndustries() {
	tiles := s.registry.IndustryTiles
	usable := func(t spec.IndustryTileLayoutTile) bool {
		if t.Gfx == industryWaterCheck {
			return true
		}
		e := tiles.Get(t.Gfx)
		return e != nil && !e.Disabled && e.Spec.Enabled
	}

	for _, e := range s.registry.Industries.Active() {
		ind := &e.Spec
		if !e.Defined || !ind.Enabled {
			continue
		}
		layouts := ind.Layouts[:0]
		for _, l := range ind.Layouts {
			ok := true
			for _, t := range l.Tiles {
				if !usable(t) {
					ok = false
					break
				}
			}
			if ok {
				layouts = append(layouts, l)
			}
		}
		if dropped := len(ind.Layouts) - len(layouts); dropped != 0 {
			s.entryLog(ind.GRFID).Infof("Industry %d has %d layouts with undefined tiles, dropping them", ind.LocalID, dropped)
		}
		ind.Layouts = layouts
		if len(layouts) == 0 {
			ind.Enabled = false
			e.Disable("no valid layout")
		}
	}
}

// Layout tile marking a water check instead of a tile.
const industryWaterCheck = 0xFF

// finaliseAirports disables airports with no layout or with tiles that
// are not defined.
func (s *session) finaliseAirports() {
	tiles := s.registry.AirportTiles
	for _, e := range s.registry.Airports.Active() {
		as := &e.Spec
		if !e.Defined || !as.Enabled {
			continue
		}
		reason := ""
		if len(as.Layouts) == 0 {
			reason = "no layout"
		}
	layouts:
		for _, l := range as.Layouts {
			for _, t := range l.Tiles {
				te := tiles.Get(t.Gfx)
				if te == nil || te.Disabled || !te.Spec.Enabled {
					reason = "undefined airport tile"
					break layouts
				}
			}
		}
		if reason == "" && as.MinYear > as.MaxYear {
			reason = "never available"
		}
		if reason != "" {
			as.Enabled = false
			e.Disable(reason)
			s.entryLog(as.GRFID).Infof("Airport %d has %s, disabling", as.LocalID, reason)
		}
	}
}

// finaliseObjects disables objects without views or with an empty size.
func (s *session) finaliseObjects() {
	for _, e := range s.registry.Objects.Active() {
		obj := &e.Spec
		if !e.Defined || !obj.Enabled {
			continue
		}
		if obj.Views == 0 || obj.Size&0x0F == 0 || obj.Size>>4 == 0 {
			obj.Enabled = false
			e.Disable("no views or empty size")
			s.entryLog(obj.GRFID).Infof("Object %d has no views or an empty size, disabling", obj.LocalID)
		}
	}
}

// finaliseCanals copies the canal properties of the module providing the
// graphics of each water feature.
func (s *session) finaliseCanals(files []activeFile) {
	for _, e := range s.registry.Canals.Entries() {
		c := &e.Spec
		if c.GRFID == 0 {
			continue
		}
		if i := fileIndex(files, c.GRFID); i >= 0 && int(e.ID) < spec.CanalFeatureCount {
			c.CanalProperties = files[i].file.Canals[e.ID]
		}
	}
}

func (s *session) entryLog(grfid uint32) *logrus.Entry {
	if m := s.module(grfid); m != nil && m.log != nil {
		return m.log
	}
	return s.logger.WithField("grf", GRFIDString(grfid))
}
