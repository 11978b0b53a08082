package props

import (
	"encoding/binary"
	"io"
	"testing"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mogaika/newgrf_browser/grf/feature"
	"github.com/mogaika/newgrf_browser/grf/ids"
	"github.com/mogaika/newgrf_browser/grf/spec"
	"github.com/mogaika/newgrf_browser/utils"
)

type testEnv struct {
	file      *spec.GRFFile
	reg       *spec.Registry
	ids       *ids.Manager
	version   uint8
	reserving bool
	log       *logrus.Entry
}

func newTestEnv() *testEnv {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return &testEnv{
		file:    spec.NewGRFFile(0x01020304, "test.grf"),
		reg:     spec.NewRegistry(spec.ClimateTemperate, spec.DefaultLimits()),
		ids:     ids.NewManager(true, spec.DefaultLimits()),
		version: 8,
		log:     logrus.NewEntry(l),
	}
}

func (e *testEnv) GRFID() uint32            { return e.file.GRFID }
func (e *testEnv) GRFVersion() uint8        { return e.version }
func (e *testEnv) File() *spec.GRFFile      { return e.file }
func (e *testEnv) Registry() *spec.Registry { return e.reg }
func (e *testEnv) IDs() *ids.Manager        { return e.ids }
func (e *testEnv) Reserving() bool          { return e.reserving }
func (e *testEnv) Log() *logrus.Entry       { return e.log }

func decode(t *testing.T, env *testEnv, f feature.Feature, first uint16, count int, prop uint8, payload ...byte) Result {
	t.Helper()
	d, ok := Decoders()[f]
	require.True(t, ok, "no decoder for %v", f)
	r := utils.NewByteReader("test", payload)
	res, err := d.Decode(env, first, count, prop, r)
	switch res {
	case Disabled, Unknown:
		require.Error(t, err)
	case InvalidID:
		require.NoError(t, err)
	default:
		require.NoError(t, err)
		assert.Equal(t, 0, r.Remaining(), "payload of %v property 0x%.2x not consumed", f, prop)
	}
	return res
}

type roundTripper interface {
	roundTrip(c *Context, code uint8, payload []byte) (uint32, bool, error)
}

func TestEveryFeatureHasDecoder(t *testing.T) {
	for f := feature.Feature(0); f < feature.Count; f++ {
		d, ok := Decoders()[f]
		if assert.True(t, ok, "feature %v", f) {
			assert.Equal(t, f, d.Feature())
			assert.NotEmpty(t, d.Properties())
		}
	}
}

func TestScalarRoundTrip(t *testing.T) {
	env := newTestEnv()
	checked := 0
	for f, d := range Decoders() {
		rt, ok := d.(roundTripper)
		require.True(t, ok)
		for _, info := range d.Properties() {
			if info.Width == 0 || info.Skip {
				continue
			}
			payload := make([]byte, 4)
			binary.LittleEndian.PutUint32(payload, 2)
			c := &Context{Env: env, Feature: f, ID: 0, Count: 1}
			v, scalar, err := rt.roundTrip(c, info.Code, payload[:info.Width])
			if !scalar {
				continue
			}
			require.NoError(t, err, "%v property 0x%.2x (%s)", f, info.Code, info.Name)
			assert.Equal(t, uint32(2), v, "%v property 0x%.2x (%s)", f, info.Code, info.Name)
			checked++
		}
	}
	assert.Greater(t, checked, 150)
}

func TestUnknownProperty(t *testing.T) {
	env := newTestEnv()
	d := Decoders()[feature.Houses]
	res, err := d.Decode(env, 0, 1, 0x7F, utils.NewByteReader("test", []byte{1}))
	assert.Equal(t, Unknown, res)
	assert.ErrorIs(t, err, ErrUnknownProperty)
}

func TestUndefinedObjectIsInvalid(t *testing.T) {
	env := newTestEnv()
	assert.Equal(t, InvalidID, decode(t, env, feature.Houses, 3, 1, 0x0B, 0x20))
	assert.Equal(t, InvalidID, decode(t, env, feature.Stations, 0, 1, 0x0B, 0x01))
}

func TestHouseSubstitute(t *testing.T) {
	env := newTestEnv()
	require.Equal(t, Success, decode(t, env, feature.Houses, 3, 2, 0x08, 5, 6))
	require.Equal(t, Success, decode(t, env, feature.Houses, 3, 2, 0x0B, 40, 50))

	for local, pop := range map[uint16]uint8{3: 40, 4: 50} {
		global, ok := env.ids.Lookup(feature.Houses, env.GRFID(), local)
		require.True(t, ok)
		assert.GreaterOrEqual(t, int(global), spec.OriginalHouses)
		h := env.reg.Houses.Get(global)
		require.NotNil(t, h)
		assert.True(t, h.Defined)
		assert.Equal(t, pop, h.Spec.Population)
		assert.Equal(t, env.GRFID(), h.Spec.GRFID)
		assert.Equal(t, local, h.Spec.LocalID)
		assert.Equal(t, local+2, h.Spec.SubstituteID)
	}

	// Redefinition keeps the edited entry
	require.Equal(t, Success, decode(t, env, feature.Houses, 3, 1, 0x08, 7))
	global, _ := env.ids.Lookup(feature.Houses, env.GRFID(), 3)
	assert.Equal(t, uint8(40), env.reg.Houses.Get(global).Spec.Population)
}

func TestHouseDisableOriginal(t *testing.T) {
	env := newTestEnv()
	require.Equal(t, Success, decode(t, env, feature.Houses, 12, 1, 0x08, 0xFF))
	assert.True(t, env.reg.Houses.Get(12).Disabled)
	_, ok := env.ids.Lookup(feature.Houses, env.GRFID(), 12)
	assert.False(t, ok)
}

func TestHouseOverride(t *testing.T) {
	env := newTestEnv()
	require.Equal(t, Success, decode(t, env, feature.Houses, 0, 1, 0x08, 1))
	require.Equal(t, Success, decode(t, env, feature.Houses, 0, 1, 0x15, 1))

	ov, ok := env.ids.EntityOverride(feature.Houses, 1)
	require.True(t, ok)
	assert.Equal(t, ids.EntityOverride{GRFID: env.GRFID(), Local: 0}, ov)

	// New houses cannot be overridden
	require.Equal(t, Success, decode(t, env, feature.Houses, 0, 1, 0x15, 200))
	_, ok = env.ids.EntityOverride(feature.Houses, 200)
	assert.False(t, ok)
}

func TestReservationOnlyAppliesReserveProperties(t *testing.T) {
	env := newTestEnv()
	env.reserving = true

	require.Equal(t, Success, decode(t, env, feature.Cargoes, 20, 1, 0x09, 0x34, 0x12))
	assert.Zero(t, env.reg.Cargoes.Get(20).Spec.NameID)

	require.Equal(t, Success, decode(t, env, feature.Cargoes, 20, 1, 0x17, 'S', 'A', 'N', 'D'))
	require.Equal(t, Success, decode(t, env, feature.Cargoes, 20, 1, 0x08, 20))
	assert.Equal(t, spec.MakeLabel("SAND"), env.reg.Cargoes.Get(20).Spec.Label)
	assert.Equal(t, spec.CargoID(20), env.reg.CargoByLabel(spec.MakeLabel("SAND")))

	env.reserving = false
	require.Equal(t, Success, decode(t, env, feature.Cargoes, 20, 1, 0x09, 0x34, 0x12))
	assert.Equal(t, uint16(0x1234), env.reg.Cargoes.Get(20).Spec.NameID)
}

func TestCargoTranslationTable(t *testing.T) {
	env := newTestEnv()
	env.reserving = true
	payload := []byte("COALPASSGOOD")
	require.Equal(t, Success, decode(t, env, feature.GlobalVars, 0, 3, 0x09, payload...))
	assert.Equal(t, []spec.Label{spec.MakeLabel("COAL"), spec.MakeLabel("PASS"), spec.MakeLabel("GOOD")}, env.file.CargoList)

	assert.Equal(t, spec.CargoID(0), TranslateCargo(env, 1, false))
	assert.Equal(t, spec.CargoID(5), TranslateCargo(env, 2, false))
	assert.Equal(t, spec.InvalidCargo, TranslateCargo(env, 3, false))

	// Tables must start at zero
	assert.Equal(t, InvalidID, decode(t, env, feature.GlobalVars, 1, 1, 0x09, 'C', 'O', 'A', 'L'))

	// Activation skips the table
	env.reserving = false
	require.Equal(t, Success, decode(t, env, feature.GlobalVars, 0, 3, 0x09, payload...))
}

func TestOldCargoNumbering(t *testing.T) {
	env := newTestEnv()
	env.version = 6
	assert.Equal(t, spec.CargoID(2), TranslateCargo(env, 2, false))
	assert.Equal(t, spec.InvalidCargo, TranslateCargo(env, 40, false))
	// Bit numbers go through the default table
	assert.Equal(t, spec.CargoID(5), TranslateCargo(env, 5, true))
}

func TestGRFOverride(t *testing.T) {
	env := newTestEnv()
	env.reserving = true
	require.Equal(t, Success, decode(t, env, feature.GlobalVars, 0, 1, 0x11, 0x04, 0x03, 0x02, 0x01, 0xDD, 0xCC, 0xBB, 0xAA))
	dst, ok := env.ids.Override(0x01020304)
	require.True(t, ok)
	assert.Equal(t, uint32(0xAABBCCDD), dst)
}

func TestPriceMultiplier(t *testing.T) {
	env := newTestEnv()
	require.Equal(t, Success, decode(t, env, feature.GlobalVars, 5, 2, 0x08, 10, 40))
	assert.Equal(t, int8(2), env.file.PriceMultipliers[5])
	assert.Equal(t, int8(spec.MaxPriceModifier), env.file.PriceMultipliers[6])
	assert.Equal(t, int8(spec.InvalidPriceModifier), env.file.PriceMultipliers[7])
}

func TestRailTypeLabels(t *testing.T) {
	env := newTestEnv()

	env.reserving = true
	require.Equal(t, Success, decode(t, env, feature.RailTypes, 0, 2, 0x08, 'R', 'A', 'I', 'L', 'S', 'A', 'A', 'N'))
	require.Equal(t, Success, decode(t, env, feature.RailTypes, 1, 1, 0x1D, 1, 'S', 'A', 'A', '2'))
	// Alternate labels without a label are ignored
	require.Equal(t, Success, decode(t, env, feature.RailTypes, 5, 1, 0x1D, 1, 'X', 'X', 'X', 'X'))
	// Non reservation properties are only consumed
	require.Equal(t, Success, decode(t, env, feature.RailTypes, 1, 1, 0x14, 0x40, 0x01))

	assert.Equal(t, uint8(0), env.file.RailTypeMap[0])
	saan, ok := env.reg.RailTypeByLabel(spec.MakeLabel("SAAN"), false)
	require.True(t, ok)
	assert.Equal(t, saan, env.file.RailTypeMap[1])
	alt, ok := env.reg.RailTypeByLabel(spec.MakeLabel("SAA2"), true)
	require.True(t, ok)
	assert.Equal(t, saan, alt)

	env.reserving = false
	require.Equal(t, Success, decode(t, env, feature.RailTypes, 1, 1, 0x08, 'S', 'A', 'A', 'N'))
	require.Equal(t, Success, decode(t, env, feature.RailTypes, 1, 1, 0x14, 0x40, 0x01))
	require.Equal(t, Success, decode(t, env, feature.RailTypes, 1, 1, 0x0F, 2, 'R', 'A', 'I', 'L', 'N', 'O', 'N', 'E'))
	rti := env.reg.RailTypes.Spec(uint16(saan))
	assert.Equal(t, uint16(0x140), rti.MaxSpeed)
	assert.Equal(t, []spec.Label{spec.MakeLabel("RAIL")}, rti.Powered)
	assert.Equal(t, []spec.Label{spec.MakeLabel("RAIL")}, rti.Compatible)

	assert.Equal(t, InvalidID, decode(t, env, feature.RailTypes, 9, 1, 0x14, 0x40, 0x01))
}

func TestStationLayouts(t *testing.T) {
	env := newTestEnv()
	require.Equal(t, Success, decode(t, env, feature.Stations, 0, 1, 0x08, 'D', 'F', 'L', 'T'))

	payload := []byte{
		2,
		// builtin layout
		0, 0, 0, 0,
		// ground sprite 1012 plus one building sprite from set 3
		0xF4, 0x03, 0x00, 0x00,
		0, 0, 0, 16, 5, 10, 0x03, 0x00, 0x00, 0x00,
		0x80,
	}
	require.Equal(t, Success, decode(t, env, feature.Stations, 0, 1, 0x09, payload...))

	global, ok := env.ids.Lookup(feature.Stations, env.GRFID(), 0)
	require.True(t, ok)
	st := env.reg.Stations.Spec(global)
	require.Len(t, st.Layouts, 2)
	assert.True(t, st.Layouts[0].Builtin)
	assert.Equal(t, uint32(1012), st.Layouts[1].Ground.Sprite)
	require.Len(t, st.Layouts[1].Seq, 1)
	seq := st.Layouts[1].Seq[0]
	assert.Equal(t, uint8(16), seq.SizeX)
	assert.Equal(t, uint32(3|spec.SpriteModifierCustomSprite), seq.Image.Sprite)

	// Copy to a second station
	require.Equal(t, Success, decode(t, env, feature.Stations, 1, 1, 0x08, 'D', 'F', 'L', 'T'))
	require.Equal(t, Success, decode(t, env, feature.Stations, 1, 1, 0x0A, 0))
	g1, _ := env.ids.Lookup(feature.Stations, env.GRFID(), 1)
	assert.Len(t, env.reg.Stations.Spec(g1).Layouts, 2)
}

func TestStationClassAllocation(t *testing.T) {
	env := newTestEnv()
	require.Equal(t, Success, decode(t, env, feature.Stations, 0, 2, 0x08, 'W', 'A', 'Y', 'P', 'N', 'E', 'W', '1'))
	g0, _ := env.ids.Lookup(feature.Stations, env.GRFID(), 0)
	g1, _ := env.ids.Lookup(feature.Stations, env.GRFID(), 1)
	assert.Equal(t, uint8(1), env.reg.Stations.Spec(g0).ClassIndex)
	assert.Equal(t, uint8(2), env.reg.Stations.Spec(g1).ClassIndex)
	assert.Equal(t, spec.MakeLabel("NEW1"), env.reg.StationClasses.List[2].Label)
}

func TestIndustryLayouts(t *testing.T) {
	env := newTestEnv()
	require.Equal(t, Success, decode(t, env, feature.IndustryTiles, 7, 1, 0x08, 0))
	tile, ok := env.ids.Lookup(feature.IndustryTiles, env.GRFID(), 7)
	require.True(t, ok)

	require.Equal(t, Success, decode(t, env, feature.Industries, 0, 1, 0x08, 1))
	payload := []byte{
		3, 0, 0, 0, 0,
		// imported layout
		0xFE, 4, 1,
		// regular tile and a tile of this module
		0, 0, 10, 1, 0, 0xFE, 7, 0, 0, 0x80,
		// duplicate positions are dropped
		0, 0, 10, 0, 0, 11, 0, 0x80,
	}
	require.Equal(t, Success, decode(t, env, feature.Industries, 0, 1, 0x0A, payload...))

	global, _ := env.ids.Lookup(feature.Industries, env.GRFID(), 0)
	ind := env.reg.Industries.Spec(global)
	require.Len(t, ind.Layouts, 2)
	assert.Equal(t, spec.IndustryLayout{Imported: true, ImportType: 4, ImportLayout: 1}, ind.Layouts[0])
	assert.Equal(t, []spec.IndustryTileLayoutTile{{X: 0, Y: 0, Gfx: 10}, {X: 1, Y: 0, Gfx: tile}}, ind.Layouts[1].Tiles)
}

func TestIndustryImportOutOfRangeDisables(t *testing.T) {
	env := newTestEnv()
	require.Equal(t, Success, decode(t, env, feature.Industries, 0, 1, 0x08, 1))
	assert.Equal(t, Disabled, decode(t, env, feature.Industries, 0, 1, 0x0A, 1, 0, 0, 0, 0, 0xFE, 60, 0))
}

func TestVehicleDefinition(t *testing.T) {
	env := newTestEnv()
	require.Equal(t, Success, decode(t, env, feature.Trains, 2, 1, 0x09, 0x80, 0x00))
	global, ok := env.ids.Lookup(feature.Trains, env.GRFID(), 2)
	require.True(t, ok)
	e := env.reg.Engines.Get(global)
	assert.True(t, e.Defined)
	assert.Equal(t, uint16(0x80), e.Spec.Rail.MaxSpeed)
	assert.Equal(t, env.GRFID(), e.Spec.GRFID)
}

func TestSoundsNeedImportedEffects(t *testing.T) {
	env := newTestEnv()
	assert.Equal(t, InvalidID, decode(t, env, feature.Sounds, spec.OriginalSounds, 1, 0x08, 100))

	env.file.SoundOffset = uint16(env.reg.Sounds.Len())
	env.file.NumSounds = 1
	env.reg.Sounds.Put(env.file.SoundOffset, spec.SoundEntry{Volume: 128})
	require.Equal(t, Success, decode(t, env, feature.Sounds, spec.OriginalSounds, 1, 0x08, 100))
	assert.Equal(t, uint8(100), env.reg.Sounds.Spec(env.file.SoundOffset).Volume)

	require.Equal(t, Success, decode(t, env, feature.Sounds, spec.OriginalSounds, 1, 0x0A, 3))
	assert.Equal(t, uint8(100), env.reg.Sounds.Spec(3).Volume)
}

func TestLanguageMaps(t *testing.T) {
	env := newTestEnv()
	payload := []byte{1, 'm', 'a', 'l', 'e', 0, 2, 0xC3, 0x9E, 'f', 'e', 'm', 0, 0}
	require.Equal(t, Success, decode(t, env, feature.GlobalVars, 0x1F, 1, 0x13, payload...))
	assert.Equal(t, map[uint8]string{1: "male", 2: "fem"}, env.file.Languages[0x1F].Genders)

	require.Equal(t, Success, decode(t, env, feature.GlobalVars, 0x1F, 1, 0x15, 3))
	assert.Equal(t, int8(3), env.file.Languages[0x1F].Plural)
}

func TestCatalog(t *testing.T) {
	code, ok := Catalog{}.PropertyCode(feature.Trains, "speed")
	require.True(t, ok)
	assert.Equal(t, uint8(0x09), code)
	_, ok = Catalog{}.PropertyCode(feature.Trains, "no_such_property")
	assert.False(t, ok)
}

func TestObjectKeepsOriginals(t *testing.T) {
	env := newTestEnv()
	require.Equal(t, Success, decode(t, env, feature.Objects, 0, 1, 0x08, 'T', 'E', 'S', 'T'))

	global, ok := env.ids.Lookup(feature.Objects, env.GRFID(), 0)
	require.True(t, ok)
	assert.GreaterOrEqual(t, int(global), spec.OriginalObjects)

	for i := 0; i < spec.OriginalObjects; i++ {
		e := env.reg.Objects.Get(uint16(i))
		require.NotNil(t, e)
		assert.True(t, e.Original, "object %d", i)
		assert.False(t, e.Defined, "object %d", i)
	}
	e := env.reg.Objects.Get(global)
	require.NotNil(t, e)
	assert.True(t, e.Defined)
	assert.Equal(t, env.GRFID(), e.Spec.GRFID)
}

func TestDefineNeverReplacesOriginal(t *testing.T) {
	env := newTestEnv()
	// signal styles allocate from 0, make that a base game entry
	env.reg.Signals.AddOriginal(spec.SignalStyle{})
	c := &Context{Env: env, Feature: feature.Signals, ID: 0, Apply: true}

	_, created, err := define[spec.SignalStyle](c, env.reg.Signals, 0, func() spec.SignalStyle { return spec.SignalStyle{} })
	assert.False(t, created)
	assert.True(t, errors.Is(err, ErrInvalidID))
	e := env.reg.Signals.Get(0)
	require.NotNil(t, e)
	assert.True(t, e.Original)
	assert.False(t, e.Defined)
}
