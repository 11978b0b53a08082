// Package ids maps module local object ids to global registry ids.
package ids

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/mogaika/newgrf_browser/grf/feature"
	"github.com/mogaika/newgrf_browser/grf/spec"
)

var ErrPoolExhausted = errors.New("id pool exhausted")

// Shared is the scope of every module when ids are not allocated per module.
const Shared uint32 = 0xFFFFFFFF

// Outcome tells how Resolve found the global id.
type Outcome int

const (
	NotFound Outcome = iota
	Existing
	Reserved
	Allocated
)

func (o Outcome) String() string {
	switch o {
	case Existing:
		return "existing"
	case Reserved:
		return "reserved"
	case Allocated:
		return "allocated"
	}
	return "not found"
}

// Mode selects how local ids of a feature are turned into global ids.
type Mode int

const (
	// Local ids are global ids, bounded by the pool limit
	Direct Mode = iota
	// Local ids are mapped per scope, new entries are allocated after the originals
	Scoped
)

type pool struct {
	feature feature.Feature
	mode    Mode
	limit   int
	next    int
	// Original ids that can be claimed by a local id of the same value,
	// keyed by the feature that addresses them
	originals map[feature.Feature][2]int
	owners    map[uint16]uint32
}

type key struct {
	f     feature.Feature
	scope uint32
	local uint16
}

// Mapping is one assigned (feature, scope, local) triple.
type Mapping struct {
	Feature    feature.Feature
	Scope      uint32
	GRFID      uint32
	Local      uint16
	Global     uint16
	Substitute uint16
	Outcome    Outcome
}

type entityKey struct {
	f        feature.Feature
	original uint16
}

// EntityOverride replaces an original entity with a module's own entity.
type EntityOverride struct {
	GRFID uint32
	Local uint16
}

type Manager struct {
	dynamicEngines bool
	pools          [feature.Count]*pool
	mappings       map[key]*Mapping
	order          []*Mapping
	overrides      map[uint32]uint32
	entities       map[entityKey]EntityOverride

	GRM *GRM
}

// NewManager sets up the pools for the limits of a registry. Vehicle
// features share one engine pool.
func NewManager(dynamicEngines bool, limits spec.Limits) *Manager {
	m := &Manager{
		dynamicEngines: dynamicEngines,
		mappings:       make(map[key]*Mapping),
		overrides:      make(map[uint32]uint32),
		entities:       make(map[entityKey]EntityOverride),
		GRM:            NewGRM(),
	}

	engines := &pool{feature: feature.Trains, mode: Scoped, limit: limits.Engines, originals: make(map[feature.Feature][2]int), owners: make(map[uint16]uint32)}
	for t := feature.Trains; t <= feature.Aircraft; t++ {
		engines.originals[t] = [2]int{spec.OriginalEngineOffset(t), spec.OriginalEngineCounts[t]}
		engines.next += spec.OriginalEngineCounts[t]
		m.pools[t] = engines
	}

	scoped := func(f feature.Feature, originals, limit int) {
		m.pools[f] = &pool{feature: f, mode: Scoped, limit: limit, next: originals, owners: make(map[uint16]uint32)}
	}
	direct := func(f feature.Feature, limit int) {
		m.pools[f] = &pool{feature: f, mode: Direct, limit: limit}
	}

	scoped(feature.Stations, 0, limits.Stations)
	scoped(feature.Houses, spec.OriginalHouses, limits.Houses)
	scoped(feature.IndustryTiles, spec.OriginalIndustryTiles, limits.IndustryTiles)
	scoped(feature.Industries, spec.OriginalIndustries, limits.Industries)
	scoped(feature.Airports, spec.OriginalAirports, limits.Airports)
	scoped(feature.AirportTiles, spec.OriginalAirportTiles, limits.AirportTiles)
	scoped(feature.Objects, spec.OriginalObjects, limits.Objects)
	scoped(feature.RoadStops, 0, limits.RoadStops)
	scoped(feature.Signals, 0, limits.Signals)

	direct(feature.Canals, spec.CanalFeatureCount)
	direct(feature.Bridges, spec.OriginalBridges)
	direct(feature.Cargoes, spec.CargoLimit)
	direct(feature.GlobalVars, 0x10000)
	direct(feature.Sounds, limits.Sounds)
	direct(feature.RailTypes, 0x100)
	direct(feature.RoadTypes, 0x100)
	direct(feature.TramTypes, 0x100)
	return m
}

func (m *Manager) Mode(f feature.Feature) Mode {
	if !f.Valid() || m.pools[f] == nil {
		return Direct
	}
	return m.pools[f].mode
}

// Dynamic reports whether modules get their own id space for a feature.
func (m *Manager) Dynamic(f feature.Feature) bool {
	if f.IsVehicle() {
		return m.dynamicEngines
	}
	return true
}

// SetOverride redirects the id space of src to the one of dst. Last
// write wins, redirection is not followed transitively.
func (m *Manager) SetOverride(src, dst uint32) {
	if src == dst {
		delete(m.overrides, src)
		return
	}
	m.overrides[src] = dst
}

func (m *Manager) Override(grfid uint32) (uint32, bool) {
	dst, ok := m.overrides[grfid]
	return dst, ok
}

// Scope returns the id space a module uses for a feature.
func (m *Manager) Scope(f feature.Feature, grfid uint32) uint32 {
	if !m.Dynamic(f) {
		return Shared
	}
	if dst, ok := m.overrides[grfid]; ok {
		return dst
	}
	return grfid
}

// Lookup returns an existing mapping without reserving or allocating.
func (m *Manager) Lookup(f feature.Feature, grfid uint32, local uint16) (uint16, bool) {
	global, outcome, _ := m.Resolve(f, grfid, local, local, true)
	return global, outcome != NotFound
}

// Resolve returns the global id of a local id, reserving an original
// entry or allocating a new one if needed. Requests with staticOnly set
// never change the tables.
func (m *Manager) Resolve(f feature.Feature, grfid uint32, local, substitute uint16, staticOnly bool) (uint16, Outcome, error) {
	if !f.Valid() || m.pools[f] == nil {
		return 0, NotFound, errors.Errorf("no id pool for %v", f)
	}
	p := m.pools[f]

	if p.mode == Direct {
		if int(local) >= p.limit {
			return 0, NotFound, nil
		}
		return local, Existing, nil
	}

	scope := m.Scope(f, grfid)
	k := key{f: f, scope: scope, local: local}
	if mp, ok := m.mappings[k]; ok {
		return mp.Global, Existing, nil
	}

	if r, ok := p.originals[f]; ok && int(local) < r[1] {
		global := uint16(r[0] + int(local))
		if _, taken := p.owners[global]; !taken {
			if staticOnly {
				return global, Existing, nil
			}
			p.owners[global] = scope
			m.add(k, grfid, global, substitute, Reserved)
			return global, Reserved, nil
		}
	}

	if staticOnly {
		return 0, NotFound, nil
	}

	if p.next >= p.limit {
		return 0, NotFound, errors.Wrapf(ErrPoolExhausted, "%v: %d entries in use", f, p.next)
	}
	global := uint16(p.next)
	p.next++
	p.owners[global] = scope
	m.add(k, grfid, global, substitute, Allocated)
	return global, Allocated, nil
}

func (m *Manager) add(k key, grfid uint32, global, substitute uint16, outcome Outcome) {
	mp := &Mapping{
		Feature:    k.f,
		Scope:      k.scope,
		GRFID:      grfid,
		Local:      k.local,
		Global:     global,
		Substitute: substitute,
		Outcome:    outcome,
	}
	m.mappings[k] = mp
	m.order = append(m.order, mp)
}

// Owner returns the scope that reserved or allocated a global id.
func (m *Manager) Owner(f feature.Feature, global uint16) (uint32, bool) {
	if !f.Valid() || m.pools[f] == nil || m.pools[f].owners == nil {
		return 0, false
	}
	owner, ok := m.pools[f].owners[global]
	return owner, ok
}

// Used is the number of ids handed out or reserved for originals.
func (m *Manager) Used(f feature.Feature) int {
	if !f.Valid() || m.pools[f] == nil {
		return 0
	}
	return m.pools[f].next
}

// Mappings returns all assignments in creation order.
func (m *Manager) Mappings() []Mapping {
	list := make([]Mapping, len(m.order))
	for i, mp := range m.order {
		list[i] = *mp
	}
	return list
}

// AddEntityOverride lets a module's entity replace an original one. The
// first module to claim an original keeps it.
func (m *Manager) AddEntityOverride(f feature.Feature, original uint16, grfid uint32, local uint16) bool {
	k := entityKey{f: f, original: original}
	if _, ok := m.entities[k]; ok {
		return false
	}
	m.entities[k] = EntityOverride{GRFID: grfid, Local: local}
	return true
}

func (m *Manager) EntityOverride(f feature.Feature, original uint16) (EntityOverride, bool) {
	eo, ok := m.entities[entityKey{f: f, original: original}]
	return eo, ok
}

// EntityOverrides returns the originals replaced for a feature, sorted.
func (m *Manager) EntityOverrides(f feature.Feature) []uint16 {
	var list []uint16
	for k := range m.entities {
		if k.f == f {
			list = append(list, k.original)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i] < list[j] })
	return list
}
