package ids

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mogaika/newgrf_browser/grf/feature"
	"github.com/mogaika/newgrf_browser/grf/spec"
)

func TestResolveStable(t *testing.T) {
	m := NewManager(true, spec.DefaultLimits())

	first, outcome, err := m.Resolve(feature.Trains, 0x01020304, 200, 200, false)
	require.NoError(t, err)
	assert.Equal(t, Allocated, outcome)

	again, outcome, err := m.Resolve(feature.Trains, 0x01020304, 200, 200, false)
	require.NoError(t, err)
	assert.Equal(t, Existing, outcome)
	assert.Equal(t, first, again)

	other, _, err := m.Resolve(feature.Trains, 0x0A0B0C0D, 200, 200, false)
	require.NoError(t, err)
	assert.NotEqual(t, first, other)
}

func TestResolveReservesOriginals(t *testing.T) {
	m := NewManager(true, spec.DefaultLimits())

	global, outcome, err := m.Resolve(feature.RoadVehicles, 0x11, 3, 3, false)
	require.NoError(t, err)
	assert.Equal(t, Reserved, outcome)
	assert.Equal(t, uint16(spec.OriginalEngineOffset(feature.RoadVehicles)+3), global)

	// The original now belongs to the first module
	second, outcome, err := m.Resolve(feature.RoadVehicles, 0x22, 3, 3, false)
	require.NoError(t, err)
	assert.Equal(t, Allocated, outcome)
	assert.NotEqual(t, global, second)

	owner, ok := m.Owner(feature.RoadVehicles, global)
	require.True(t, ok)
	assert.Equal(t, uint32(0x11), owner)
}

func TestStaticOnlyNeverAllocates(t *testing.T) {
	m := NewManager(true, spec.DefaultLimits())

	_, outcome, err := m.Resolve(feature.Ships, 0x11, 500, 500, true)
	require.NoError(t, err)
	assert.Equal(t, NotFound, outcome)
	assert.Empty(t, m.Mappings())

	global, ok := m.Lookup(feature.Ships, 0x11, 2)
	require.True(t, ok)
	assert.Equal(t, uint16(spec.OriginalEngineOffset(feature.Ships)+2), global)
	_, taken := m.Owner(feature.Ships, global)
	assert.False(t, taken)
}

func TestSharedRangeWithoutDynamicEngines(t *testing.T) {
	m := NewManager(false, spec.DefaultLimits())

	var a, b []uint16
	for local := uint16(100); local < 110; local++ {
		id, _, err := m.Resolve(feature.Trains, 0xAAAAAAAA, local, local, false)
		require.NoError(t, err)
		a = append(a, id)
	}
	for local := uint16(100); local < 110; local++ {
		id, outcome, err := m.Resolve(feature.Trains, 0xBBBBBBBB, local, local, false)
		require.NoError(t, err)
		assert.Equal(t, Existing, outcome)
		b = append(b, id)
	}
	assert.Equal(t, a, b)

	for _, id := range a {
		owner, _ := m.Owner(feature.Trains, id)
		assert.Equal(t, Shared, owner)
	}
}

func TestOverrideRedirectsScope(t *testing.T) {
	m := NewManager(true, spec.DefaultLimits())

	base, _, err := m.Resolve(feature.Aircraft, 0x100, 60, 60, false)
	require.NoError(t, err)

	m.SetOverride(0x200, 0x100)
	shared, outcome, err := m.Resolve(feature.Aircraft, 0x200, 60, 60, false)
	require.NoError(t, err)
	assert.Equal(t, Existing, outcome)
	assert.Equal(t, base, shared)

	// One hop only, last write wins
	m.SetOverride(0x300, 0x200)
	assert.Equal(t, uint32(0x200), m.Scope(feature.Aircraft, 0x300))
	m.SetOverride(0x300, 0x100)
	assert.Equal(t, uint32(0x100), m.Scope(feature.Aircraft, 0x300))
}

func TestPoolExhausted(t *testing.T) {
	limits := spec.DefaultLimits()
	limits.Houses = spec.OriginalHouses + 2
	m := NewManager(true, limits)

	for local := uint16(0); local < 2; local++ {
		_, outcome, err := m.Resolve(feature.Houses, 1, local, 0, false)
		require.NoError(t, err)
		assert.Equal(t, Allocated, outcome)
	}
	_, _, err := m.Resolve(feature.Houses, 1, 2, 0, false)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrPoolExhausted))
}

func TestDirectFeatures(t *testing.T) {
	m := NewManager(true, spec.DefaultLimits())

	id, outcome, err := m.Resolve(feature.Bridges, 1, 4, 4, false)
	require.NoError(t, err)
	assert.Equal(t, Existing, outcome)
	assert.Equal(t, uint16(4), id)

	_, outcome, err = m.Resolve(feature.Bridges, 1, spec.OriginalBridges, 0, false)
	require.NoError(t, err)
	assert.Equal(t, NotFound, outcome)
}

func TestEntityOverrideFirstWriterWins(t *testing.T) {
	m := NewManager(true, spec.DefaultLimits())

	assert.True(t, m.AddEntityOverride(feature.Houses, 5, 0x1, 10))
	assert.False(t, m.AddEntityOverride(feature.Houses, 5, 0x2, 11))
	assert.True(t, m.AddEntityOverride(feature.Houses, 2, 0x2, 11))

	eo, ok := m.EntityOverride(feature.Houses, 5)
	require.True(t, ok)
	assert.Equal(t, EntityOverride{GRFID: 0x1, Local: 10}, eo)
	assert.Equal(t, []uint16{2, 5}, m.EntityOverrides(feature.Houses))
}

func TestScopedPoolsSkipOriginals(t *testing.T) {
	m := NewManager(true, spec.DefaultLimits())
	for f, originals := range map[feature.Feature]int{
		feature.Houses:        spec.OriginalHouses,
		feature.IndustryTiles: spec.OriginalIndustryTiles,
		feature.Industries:    spec.OriginalIndustries,
		feature.Airports:      spec.OriginalAirports,
		feature.AirportTiles:  spec.OriginalAirportTiles,
		feature.Objects:       spec.OriginalObjects,
	} {
		global, _, err := m.Resolve(f, 0x11, 0, 0, false)
		require.NoError(t, err, "%v", f)
		assert.GreaterOrEqual(t, int(global), originals, "%v", f)
	}
}
