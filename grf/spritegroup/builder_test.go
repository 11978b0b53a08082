package spritegroup

import (
	"io"
	"testing"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mogaika/newgrf_browser/grf/feature"
	"github.com/mogaika/newgrf_browser/grf/remap"
	"github.com/mogaika/newgrf_browser/grf/spec"
	"github.com/mogaika/newgrf_browser/utils"
)

type testEnv struct {
	version uint8
	sets    map[uint16][2]uint32
	remap   *remap.Table
	log     *logrus.Entry
}

func newTestEnv() *testEnv {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return &testEnv{
		version: 8,
		sets:    map[uint16][2]uint32{0: {100, 4}, 1: {104, 4}, 2: {108, 8}},
		remap:   remap.NewTable(nil),
		log:     logrus.NewEntry(l),
	}
}

func (e *testEnv) SpriteSet(f feature.Feature, set uint16) (uint32, uint16, bool) {
	s, ok := e.sets[set]
	return s[0], uint16(s[1]), ok
}
func (e *testEnv) GRFVersion() uint8                    { return e.version }
func (e *testEnv) HasSpriteSets(f feature.Feature) bool { return len(e.sets) != 0 }
func (e *testEnv) Remap() *remap.Table                  { return e.remap }
func (e *testEnv) TranslateCargo(c uint8) spec.CargoID {
	if c >= 32 {
		return spec.InvalidCargo
	}
	return spec.CargoID(c)
}
func (e *testEnv) Log() *logrus.Entry { return e.log }

func build(t *testing.T, b *Builder, env Env, f feature.Feature, set uint16, typ uint8, body []byte) Handle {
	t.Helper()
	h, err := b.Build(env, f, set, typ, utils.NewByteReader("action2", body))
	require.NoError(t, err)
	return h
}

func TestRealGroup(t *testing.T) {
	env := newTestEnv()
	b := NewBuilder(NewArena())

	h := build(t, b, env, feature.Trains, 0, 2, utils.NewByteWriter().U8(1).U16(0, 1, 2).Bytes())
	rg, ok := b.Arena().Get(h).(*Real)
	require.True(t, ok)
	require.Len(t, rg.Loaded, 2)
	require.Len(t, rg.Loading, 1)
	res := b.Arena().Get(rg.Loading[0]).(*Result)
	assert.Equal(t, Result{FirstSprite: 108, NumSprites: 8}, *res)

	// A single option yields the result itself
	h = build(t, b, env, feature.Trains, 1, 1, utils.NewByteWriter().U8(0).U16(1).Bytes())
	assert.Equal(t, KindResult, b.Arena().Get(h).Kind())

	got, ok := b.Group(1)
	require.True(t, ok)
	assert.Equal(t, h, got)
}

func TestCallbackResultsAreShared(t *testing.T) {
	env := newTestEnv()
	b := NewBuilder(NewArena())

	body := utils.NewByteWriter().
		U8(0x0C).U8(0x00).U8(0xFF). // var 0x0C, no shift, mask 0xFF
		U8(2).
		U16(0x8010).U8(0, 5).
		U16(0x8010).U8(6, 9).
		U16(0x8011).Bytes()
	h := build(t, b, env, feature.Trains, 3, 0x81, body)
	d := b.Arena().Get(h).(*Deterministic)

	assert.Equal(t, d.Ranges[0].Group, b.Arena().Callback(0x10))
	assert.Equal(t, d.Default, b.Arena().Callback(0x11))
	// Both ranges point at the same value and were merged
	assert.Len(t, d.Ranges, 2)

	cb := b.Arena().Get(d.Default).(*Callback)
	assert.Equal(t, uint16(0x11), cb.Value)
}

func TestCallbackValue(t *testing.T) {
	assert.Equal(t, uint16(0x0012), CallbackValue(0xFF12, 7))
	assert.Equal(t, uint16(0x7F12), CallbackValue(0xFF12, 8))
	assert.Equal(t, uint16(0x0100), CallbackValue(0x8100, 7))
}

func TestDeterministicAdjustChain(t *testing.T) {
	env := newTestEnv()
	b := NewBuilder(NewArena())
	sub := build(t, b, env, feature.Trains, 0, 1, utils.NewByteWriter().U8(0).U16(0).Bytes())

	body := utils.NewByteWriter().
		U8(0x7E, 0x00).U8(0x20).U16(0xFFFF). // subroutine set 0, more follows
		U8(OpAdd).U8(0x61, 0x04).U8(0x81).U16(0x00FF).U16(3, 0). // var 61 param 4, shift 1, mod, add 3, divmod 0
		U8(0).
		U16(0x8000).Bytes()
	h := build(t, b, env, feature.Trains, 1, 0x85, body)
	d := b.Arena().Get(h).(*Deterministic)

	require.Len(t, d.Adjusts, 2)
	assert.Equal(t, sub, d.Adjusts[0].Subroutine)
	assert.Equal(t, uint8(0x61), d.Adjusts[1].Variable)
	assert.Equal(t, uint8(4), d.Adjusts[1].Parameter)
	assert.Equal(t, uint8(1), d.Adjusts[1].ShiftNum)
	assert.Equal(t, uint8(AdjustMod), d.Adjusts[1].Type)
	assert.Equal(t, uint32(1), d.Adjusts[1].DivMod)
	assert.True(t, d.CalculatedResult)
	assert.Equal(t, uint8(2), d.Size)
	require.Len(t, d.Ranges, 1)
}

func TestMissingReferenceIsEmpty(t *testing.T) {
	env := newTestEnv()
	b := NewBuilder(NewArena())

	body := utils.NewByteWriter().U8(0x0C, 0x00, 0xFF).U8(1).U16(0x0042).U8(0, 1).U16(0x8000).Bytes()
	h := build(t, b, env, feature.Trains, 0, 0x81, body)
	d := b.Arena().Get(h).(*Deterministic)
	assert.Equal(t, spec.NoGroup, d.Ranges[0].Group)
}

func TestRandomPowerOfTwo(t *testing.T) {
	env := newTestEnv()
	b := NewBuilder(NewArena())

	for _, tc := range []struct {
		n       uint8
		invalid bool
	}{{1, false}, {2, false}, {3, true}, {4, false}, {6, true}} {
		w := utils.NewByteWriter().U8(0x83, 0x00, tc.n)
		for i := uint8(0); i < tc.n; i++ {
			w.U16(0x8000 | uint16(i))
		}
		h := build(t, b, env, feature.Stations, 0, 0x80, w.Bytes())
		g := b.Arena().Get(h).(*Random)
		assert.Equal(t, tc.invalid, g.InvalidCount, "count %d", tc.n)
		assert.Len(t, g.Groups, int(tc.n))
		assert.Equal(t, uint8(CompareAll), g.Compare)
		assert.Equal(t, uint8(3), g.Triggers)
	}
}

func TestRemappedVariable(t *testing.T) {
	env := newTestEnv()
	_, err := env.remap.Declare(remap.Variable, feature.Stations, "station_tile_type", 0x70, remap.ErrorOnUse)
	require.NoError(t, err)
	_, err = env.remap.Declare(remap.Variable, feature.Stations, "unknown_variable", 0x71, remap.ErrorOnUse)
	require.NoError(t, err)
	b := NewBuilder(NewArena())

	body := utils.NewByteWriter().U8(0x70, 0x00, 0x00, 0xFF).U8(0).U16(0x8000).Bytes()
	h := build(t, b, env, feature.Stations, 0, 0x81, body)
	assert.Equal(t, uint8(0x42), b.Arena().Get(h).(*Deterministic).Adjusts[0].Variable)

	body = utils.NewByteWriter().U8(0x71, 0x00, 0x00, 0xFF).U8(0).U16(0x8000).Bytes()
	_, err = b.Build(env, feature.Stations, 1, 0x81, utils.NewByteReader("action2", body))
	require.Error(t, err)
	assert.True(t, errors.Is(err, remap.ErrCapabilityUnresolved))
}

func TestTileLayoutGroup(t *testing.T) {
	env := newTestEnv()
	b := NewBuilder(NewArena())

	// Basic form: ground, then one building sprite without z offset
	body := utils.NewByteWriter().
		U16(0x0F00, 0x0000).
		U16(0x0002, 0x8000).U8(0, 0).U8(16, 16, 20).Bytes()
	h := build(t, b, env, feature.Houses, 0, 0, body)
	tl := b.Arena().Get(h).(*TileLayout)

	assert.Equal(t, uint32(0x0F00), tl.Layout.Ground.Sprite)
	require.Len(t, tl.Layout.Seq, 1)
	seq := tl.Layout.Seq[0]
	assert.Equal(t, uint32(108)|spec.SpriteModifierCustomSprite, seq.Image.Sprite)
	assert.Equal(t, uint8(20), seq.SizeZ)
	assert.True(t, seq.IsParent())
	assert.Equal(t, uint16(8), tl.Layout.ConsistentMaxOffset)
}

func TestTileLayoutUndefinedSet(t *testing.T) {
	env := newTestEnv()
	logger, hook := test.NewNullLogger()
	env.log = logrus.NewEntry(logger)
	b := NewBuilder(NewArena())

	body := utils.NewByteWriter().U16(0x0009, 0x8000).U16(0x0001, 0x8000).U8(0, 0).U8(1, 1, 1).Bytes()
	h := build(t, b, env, feature.Objects, 0, 0, body)
	tl := b.Arena().Get(h).(*TileLayout)

	assert.Equal(t, spec.PalSprite{Sprite: spec.SpriteQuery}, tl.Layout.Ground)
	require.Len(t, tl.Layout.Seq, 1)
	assert.Equal(t, uint32(104)|spec.SpriteModifierCustomSprite, tl.Layout.Seq[0].Image.Sprite)
	require.NotNil(t, hook.LastEntry())
	assert.Contains(t, hook.LastEntry().Message, "undefined sprite set 9")
}

func TestTileLayoutUnknownFlags(t *testing.T) {
	env := newTestEnv()
	b := NewBuilder(NewArena())

	// one sprite with flag words, the ground flags are not known
	body := utils.NewByteWriter().U16(0x0F00, 0x0000, 0x8000).Bytes()
	_, err := b.Build(env, feature.Objects, 0, 0x41, utils.NewByteReader("action2", body))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformedLayout))
}

func TestProductionGroups(t *testing.T) {
	env := newTestEnv()
	b := NewBuilder(NewArena())

	h := build(t, b, env, feature.Industries, 0, 0,
		utils.NewByteWriter().U16(0xFFFF, 2, 3).U16(10, 20).U8(1).Bytes())
	p := b.Arena().Get(h).(*Production)
	assert.Equal(t, int16(-1), p.SubtractInput[0])
	assert.Equal(t, uint16(20), p.AddOutput[1])
	assert.Equal(t, uint8(1), p.Again)

	h = build(t, b, env, feature.Industries, 1, 2,
		utils.NewByteWriter().U8(2, 1, 0x10, 40, 0x11).U8(1, 2, 0x12).U8(0).Bytes())
	p = b.Arena().Get(h).(*Production)
	assert.Equal(t, uint8(2), p.NumInput)
	assert.True(t, p.InvalidCargo)
	assert.Equal(t, spec.CargoID(2), p.CargoOutput[0])
	assert.Equal(t, uint16(0x12), p.AddOutput[0])

	_, err := b.Build(env, feature.Industries, 2, 2, utils.NewByteReader("action2",
		utils.NewByteWriter().U8(2, 1, 0x10, 1, 0x11).U8(0).U8(0).Bytes()))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformedProduction))

	h, err = b.Build(env, feature.Industries, 3, 5, utils.NewByteReader("action2", nil))
	require.NoError(t, err)
	assert.Equal(t, spec.NoGroup, h)
}
