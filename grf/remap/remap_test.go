package remap

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mogaika/newgrf_browser/grf/feature"
)

type catalogFunc func(f feature.Feature, name string) (uint8, bool)

func (c catalogFunc) PropertyCode(f feature.Feature, name string) (uint8, bool) { return c(f, name) }

var testCatalog = catalogFunc(func(f feature.Feature, name string) (uint8, bool) {
	if f == feature.Stations && name == "min_bridge_heights" {
		return 0x1B, true
	}
	return 0, false
})

func TestDeclareProperty(t *testing.T) {
	tbl := NewTable(testCatalog)

	e, err := tbl.Declare(Property, feature.Stations, "min_bridge_heights", 0x60, ErrorOnUse)
	require.NoError(t, err)
	assert.True(t, e.Known)
	assert.Equal(t, uint8(0x1B), e.Internal)

	got, ok := tbl.Resolve(Property, feature.Stations, 0x60)
	require.True(t, ok)
	assert.Same(t, e, got)

	_, ok = tbl.Resolve(Property, feature.Houses, 0x60)
	assert.False(t, ok)
}

func TestDeclareFallbacks(t *testing.T) {
	tbl := NewTable(testCatalog)

	e, err := tbl.Declare(Property, feature.Stations, "no_such_property", 0x61, Ignore)
	require.NoError(t, err)
	assert.False(t, e.Known)

	e, err = tbl.Declare(Property, feature.Stations, "no_such_property", 0x62, ErrorOnUse)
	require.NoError(t, err)
	assert.True(t, errors.Is(e.Err(), ErrCapabilityUnresolved))
	assert.Contains(t, e.Err().Error(), "no_such_property")

	_, err = tbl.Declare(Property, feature.Stations, "no_such_property", 0x63, ErrorImmediately)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCapabilityUnresolved))
}

func TestDeclareVariable(t *testing.T) {
	tbl := NewTable(nil)

	e, err := tbl.Declare(Variable, feature.Stations, "station_tile_type", 0x70, ErrorOnUse)
	require.NoError(t, err)
	assert.True(t, e.Known)
	assert.Equal(t, uint8(0x42), e.Internal)

	e, err = tbl.Declare(Variable, feature.Houses, "climate", 0x71, ErrorOnUse)
	require.NoError(t, err)
	assert.Equal(t, uint8(0x03), e.Internal)

	e, err = tbl.Declare(Variable, feature.Houses, "station_tile_type", 0x72, Ignore)
	require.NoError(t, err)
	assert.False(t, e.Known)
	assert.Equal(t, 3, tbl.Len())
}

func TestFeatureTests(t *testing.T) {
	tbl := NewTable(nil)

	assert.True(t, tbl.Test("property_mapping", 1, 0xFFFF))
	assert.False(t, tbl.Test("property_mapping", 2, 0xFFFF))
	assert.False(t, tbl.Test("teleporters", 0, 0xFFFF))
	assert.Len(t, tbl.Entries(), 3)
}
