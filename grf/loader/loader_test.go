package loader

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"testing"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mogaika/newgrf_browser/config"
	"github.com/mogaika/newgrf_browser/grf"
	"github.com/mogaika/newgrf_browser/grf/feature"
	"github.com/mogaika/newgrf_browser/grf/props"
)

type memSource map[string][]byte

func (s memSource) Open(path string) (io.ReadCloser, error) {
	data, ok := s[path]
	if !ok {
		return nil, errors.Errorf("no module %q", path)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func le16(v uint16) []byte { return binary.LittleEndian.AppendUint16(nil, v) }
func le32(v uint32) []byte { return binary.LittleEndian.AppendUint32(nil, v) }

// pseudo concatenates record parts: ints are single bytes, strings are
// zero terminated.
func pseudo(parts ...interface{}) []byte {
	var out []byte
	for _, p := range parts {
		switch v := p.(type) {
		case int:
			out = append(out, byte(v))
		case rune:
			out = append(out, byte(v))
		case []byte:
			out = append(out, v...)
		case string:
			out = append(out, v...)
			out = append(out, 0)
		default:
			panic(fmt.Sprintf("unsupported record part %T", p))
		}
	}
	return out
}

func infoRecord(version int, grfid uint32, name string) []byte {
	return pseudo(0x08, version, le32(grfid), name)
}

// setParam is Action 0x0D assigning a constant.
func setParam(target int, value uint32) []byte {
	return pseudo(0x0D, target, 0x00, 0xFF, 0xFF, le32(value))
}

// buildModule starts a container with the GRF info record.
func buildModule(version int, grfid uint32, records ...[]byte) *grf.Writer {
	w := grf.NewWriter(2)
	w.AddPseudo(infoRecord(version, grfid, fmt.Sprintf("module %08x", grfid)))
	for _, rec := range records {
		w.AddPseudo(rec)
	}
	return w
}

type testLoad struct {
	settings config.Settings
	source   memSource
	list     []config.ModuleEntry
}

func newTestLoad() *testLoad {
	return &testLoad{settings: config.DefaultSettings(), source: memSource{}}
}

func (tl *testLoad) add(w *grf.Writer, params ...uint32) string {
	path := fmt.Sprintf("module%d.grf", len(tl.list))
	tl.source[path] = w.Bytes()
	tl.list = append(tl.list, config.ModuleEntry{Path: path, Params: params})
	return path
}

func (tl *testLoad) run(t *testing.T) (*Result, *test.Hook) {
	t.Helper()
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.TraceLevel)
	res, err := New(tl.settings, tl.source, logger).Load(context.Background(), tl.list)
	require.NoError(t, err)
	return res, hook
}

func load(t *testing.T, modules ...*grf.Writer) *Result {
	t.Helper()
	tl := newTestLoad()
	for _, w := range modules {
		tl.add(w)
	}
	res, _ := tl.run(t)
	return res
}

const (
	grfA uint32 = 0x01020304
	grfB uint32 = 0x05060708
)

func TestLoadEmptyModule(t *testing.T) {
	res := load(t, buildModule(8, grfA))
	require.Len(t, res.Modules, 1)
	m := res.Modules[0]
	assert.Equal(t, StatusActivated, m.Status)
	assert.Nil(t, m.Error)
	assert.EqualValues(t, 8, m.Version)
	assert.Equal(t, "module 01020304", m.Name)
	assert.Same(t, m, res.Module(grfA))
	assert.Nil(t, res.Module(grfB))
}

func TestScenarioSubsequentProperties(t *testing.T) {
	res := load(t, buildModule(8, grfA,
		// define houses 5..7 as copies of original house 0
		pseudo(0x00, int(feature.Houses), 1, 3, 5, 0x08, 0, 0, 0),
		// population of each
		pseudo(0x00, int(feature.Houses), 1, 3, 5, 0x0B, 10, 20, 30),
	))
	require.Equal(t, StatusActivated, res.Modules[0].Status)

	seen := map[uint16]bool{}
	for i, population := range []uint8{10, 20, 30} {
		global, ok := res.IDs.Lookup(feature.Houses, grfA, uint16(5+i))
		require.True(t, ok, "house %d", 5+i)
		assert.False(t, seen[global], "global id %d used twice", global)
		seen[global] = true

		e := res.Registry.Houses.Get(global)
		require.NotNil(t, e)
		assert.True(t, e.Defined)
		assert.False(t, e.Disabled)
		assert.Equal(t, population, e.Spec.Population)
		assert.Equal(t, grfA, e.Spec.GRFID)
		assert.EqualValues(t, 5+i, e.Spec.LocalID)
		// shared defaults of the substitute
		assert.True(t, e.Spec.Enabled)
		assert.EqualValues(t, 16, e.Spec.Probability)
	}
}

func TestScenarioSharedEngineRange(t *testing.T) {
	tl := newTestLoad()
	tl.settings.DynamicEngines = false
	speeds := func(base uint16) []byte {
		var b []byte
		for i := uint16(0); i < 10; i++ {
			b = append(b, le16(base+i)...)
		}
		return b
	}
	tl.add(buildModule(8, grfA, pseudo(0x00, int(feature.Trains), 1, 10, 100, 0x09, speeds(100))))
	tl.add(buildModule(8, grfB, pseudo(0x00, int(feature.Trains), 1, 10, 100, 0x09, speeds(300))))
	res, _ := tl.run(t)

	for _, m := range res.Modules {
		require.Equal(t, StatusActivated, m.Status, "%v", m)
	}
	for local := uint16(100); local < 110; local++ {
		a, ok := res.IDs.Lookup(feature.Trains, grfA, local)
		require.True(t, ok)
		b, ok := res.IDs.Lookup(feature.Trains, grfB, local)
		require.True(t, ok)
		assert.Equal(t, a, b, "local %d", local)

		e := res.Registry.Engines.Get(a)
		require.NotNil(t, e)
		// the first module defined the engine
		assert.Equal(t, grfA, e.Spec.GRFID)
	}
}

func TestScenarioUnknownPropertyDisablesModule(t *testing.T) {
	res := load(t,
		buildModule(8, grfA, pseudo(0x00, int(feature.Trains), 1, 1, 0, 0x7F, 1)),
		buildModule(8, grfB, pseudo(0x00, int(feature.Houses), 1, 1, 5, 0x08, 0)),
	)
	a, b := res.Modules[0], res.Modules[1]

	assert.Equal(t, StatusDisabled, a.Status)
	require.NotNil(t, a.Error)
	assert.Equal(t, props.ErrUnknownProperty.Error(), a.Error.Reason)
	assert.Equal(t, SeverityError, a.Error.Severity)
	assert.Equal(t, 2, a.Error.Record)

	assert.Equal(t, StatusActivated, b.Status)
	_, ok := res.IDs.Lookup(feature.Houses, grfB, 5)
	assert.True(t, ok)
}

func TestMissingModule(t *testing.T) {
	tl := newTestLoad()
	tl.add(buildModule(8, grfA))
	tl.list = append(tl.list, config.ModuleEntry{Path: "missing.grf"})
	res, _ := tl.run(t)

	assert.Equal(t, StatusActivated, res.Modules[0].Status)
	assert.Equal(t, StatusNotFound, res.Modules[1].Status)
	require.NotNil(t, res.Modules[1].Error)
}

func TestInvalidVersion(t *testing.T) {
	res := load(t, buildModule(9, grfA))
	m := res.Modules[0]
	assert.Equal(t, StatusDisabled, m.Status)
	assert.True(t, m.Invalid)
	require.NotNil(t, m.Error)
	assert.Equal(t, SeverityFatal, m.Error.Severity)
	assert.Equal(t, ErrInvalidVersion.Error(), m.Error.Reason)
}

func TestDuplicateGRFID(t *testing.T) {
	res := load(t, buildModule(8, grfA), buildModule(8, grfA))
	assert.Equal(t, StatusActivated, res.Modules[0].Status)
	assert.Equal(t, StatusDisabled, res.Modules[1].Status)
	require.NotNil(t, res.Modules[1].Error)
	assert.Equal(t, ErrDuplicateGRFID.Error(), res.Modules[1].Error.Reason)
}

func TestUnexpectedSprite(t *testing.T) {
	w := buildModule(8, grfA)
	w.AddReal([]byte{1, 2, 3})
	res := load(t, w)
	m := res.Modules[0]
	assert.Equal(t, StatusDisabled, m.Status)
	require.NotNil(t, m.Error)
	assert.Equal(t, ErrUnexpectedSprite.Error(), m.Error.Reason)
}

func TestSpriteSetsBindRealSprites(t *testing.T) {
	w := buildModule(8, grfA, pseudo(0x01, int(feature.Trains), 1, 2))
	w.AddReal([]byte{1}).AddReal([]byte{2})
	res := load(t, w)
	require.Equal(t, StatusActivated, res.Modules[0].Status)

	first := res.Sprites.Base()
	for i := uint32(0); i < 2; i++ {
		spr := res.Sprites.Get(first + i)
		require.NotNil(t, spr, "sprite %d", first+i)
		assert.Equal(t, grfA, spr.GRFID)
		assert.Equal(t, "module0.grf", spr.File)
		assert.True(t, spr.HasRef)
		assert.EqualValues(t, i+1, spr.Ref)
	}
	assert.Equal(t, first+2, res.Sprites.Next())
}

func TestStaticInfo(t *testing.T) {
	info := pseudo(0x14,
		'C', []byte("INFO"),
		'T', []byte("NAME"), 0x7F, "Test set",
		'B', []byte("NPAR"), le16(1), 2,
		'B', []byte("PALS"), le16(1), 'W',
		'C', []byte("PARA"),
		'C', le32(0),
		'T', []byte("NAME"), 0x7F, "First",
		'B', []byte("LIMI"), le16(8), le32(1), le32(4),
		0,
		0,
		0,
		0,
	)
	// the file scan stops at the GRF info, so the tree comes first
	w := grf.NewWriter(2).AddPseudo(info).AddPseudo(infoRecord(8, grfA, "set"))
	res := load(t, w)
	m := res.Modules[0]
	require.Equal(t, StatusActivated, m.Status)

	assert.Equal(t, "Test set", m.Info.Name[0x7F])
	assert.EqualValues(t, 2, m.Info.NumParams)
	assert.EqualValues(t, 'W', m.Info.Palette)
	require.Len(t, m.Info.Params, 1)
	p := m.Info.Params[0]
	assert.EqualValues(t, 0, p.Number)
	assert.Equal(t, "First", p.Name[0x7F])
	assert.EqualValues(t, 1, p.Min)
	assert.EqualValues(t, 4, p.Max)
}

func TestGenericNames(t *testing.T) {
	res := load(t, buildModule(8, grfA,
		pseudo(0x04, int(feature.OriginalStrings), 0x80|0x7F, 2, le16(0xD000), "Hello", "World"),
	))
	require.Equal(t, StatusActivated, res.Modules[0].Status)

	id, ok := res.Strings.Lookup(grfA, 0xD000)
	require.True(t, ok)
	assert.Equal(t, "Hello", res.Strings.Text(id))
	id, ok = res.Strings.Lookup(grfA, 0xD001)
	require.True(t, ok)
	assert.Equal(t, "World", res.Strings.Text(id))
}

func TestTownNames(t *testing.T) {
	res := load(t, buildModule(8, grfA,
		pseudo(0x0F, 0x80|0x00, 0x7F, "Style", 0, 1, 1, 0, 0, 1, "Ville"),
	))
	require.Equal(t, StatusActivated, res.Modules[0].Status)

	gen := res.TownNames.Get(grfA, false)
	require.NotNil(t, gen)
	require.Len(t, gen.Styles, 1)
	assert.EqualValues(t, 0, gen.Styles[0].ID)
	assert.Equal(t, "Style", res.Strings.Text(gen.Styles[0].NameID))
	assert.Equal(t, "Ville", gen.Generate(0, 0x1234))
}

func TestTownNamesUndefinedReference(t *testing.T) {
	res := load(t, buildModule(8, grfA,
		pseudo(0x0F, 0x01, 1, 1, 0, 0, 0x81, 0x05),
	))
	m := res.Modules[0]
	assert.Equal(t, StatusDisabled, m.Status)
	require.NotNil(t, m.Error)
	assert.Equal(t, ErrTownNames.Error(), m.Error.Reason)
	assert.Nil(t, res.TownNames.Get(grfA, false))
}

func TestProgress(t *testing.T) {
	tl := newTestLoad()
	tl.add(buildModule(8, grfA))
	tl.add(buildModule(8, grfB))

	var reports []Progress
	l := New(tl.settings, tl.source, nil)
	l.OnProgress(func(p Progress) { reports = append(reports, p) })
	res, err := l.Load(context.Background(), tl.list)
	require.NoError(t, err)

	require.Len(t, reports, int(stageCount)*2)
	for _, p := range reports {
		assert.Equal(t, res.Session, p.Session)
		assert.Equal(t, 2, p.Modules)
	}
	assert.Equal(t, float32(0), reports[0].Fraction())
	last := reports[len(reports)-1]
	assert.Equal(t, StageActivation, last.Stage)
	assert.Less(t, last.Fraction(), float32(1))
}

func TestLoadCancelled(t *testing.T) {
	tl := newTestLoad()
	tl.add(buildModule(8, grfA))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(tl.settings, tl.source, nil).Load(ctx, tl.list)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestScan(t *testing.T) {
	tl := newTestLoad()
	tl.add(buildModule(7, grfA))
	modules, err := New(tl.settings, tl.source, nil).Scan(context.Background(), tl.list)
	require.NoError(t, err)
	require.Len(t, modules, 1)
	assert.Equal(t, grfA, modules[0].GRFID)
	assert.EqualValues(t, 7, modules[0].Version)
	assert.Equal(t, StatusUnknown, modules[0].Status)
}

func TestLogLevel(t *testing.T) {
	for debug, level := range map[int]logrus.Level{
		0: logrus.WarnLevel,
		1: logrus.WarnLevel,
		4: logrus.InfoLevel,
		6: logrus.DebugLevel,
		9: logrus.TraceLevel,
	} {
		assert.Equal(t, level, LogLevel(debug), "debug level %d", debug)
	}
}

func TestLogFieldsIdentifyRecord(t *testing.T) {
	tl := newTestLoad()
	tl.add(buildModule(8, grfA, pseudo(0x00, int(feature.Trains), 1, 1, 0, 0x7F, 1)))
	_, hook := tl.run(t)

	var found *logrus.Entry
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.ErrorLevel {
			found = e
		}
	}
	require.NotNil(t, found)
	assert.Equal(t, "module0.grf", found.Data["grf"])
	assert.Equal(t, 2, found.Data["line"])
}
