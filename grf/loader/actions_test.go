package loader

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mogaika/newgrf_browser/grf"
	"github.com/mogaika/newgrf_browser/grf/feature"
	"github.com/mogaika/newgrf_browser/grf/remap"
	"github.com/mogaika/newgrf_browser/grf/spec"
)

func TestParamSetAndSkip(t *testing.T) {
	res := load(t, buildModule(8, grfA,
		setParam(0, 5),
		// skip the next record when param 0 is 5
		pseudo(0x07, 0x00, 1, 0x02, 5, 1),
		setParam(1, 1),
		setParam(2, 7),
	))
	m := res.Modules[0]
	require.Equal(t, StatusActivated, m.Status)
	assert.EqualValues(t, 5, m.Param(0))
	assert.EqualValues(t, 0, m.Param(1))
	assert.EqualValues(t, 7, m.Param(2))
}

func TestSkipToLabel(t *testing.T) {
	res := load(t, buildModule(8, grfA,
		setParam(0, 1),
		pseudo(0x09, 0x00, 1, 0x02, 1, 0x42),
		setParam(1, 1),
		setParam(1, 2),
		pseudo(0x10, 0x42),
		setParam(2, 3),
	))
	m := res.Modules[0]
	require.Equal(t, StatusActivated, m.Status)
	assert.EqualValues(t, 0, m.Param(1))
	assert.EqualValues(t, 3, m.Param(2))
}

func TestSkipUndefinedParam(t *testing.T) {
	res := load(t, buildModule(8, grfA,
		// param 9 is not defined, the test is ignored
		pseudo(0x07, 0x09, 1, 0x03, 5, 1),
		setParam(1, 1),
	))
	assert.EqualValues(t, 1, res.Modules[0].Param(1))
}

func TestSkipRestOfFile(t *testing.T) {
	res := load(t, buildModule(8, grfA,
		pseudo(0x07, 0x83, 1, 0x02, spec.ClimateTemperate, 0),
		setParam(1, 1),
	))
	m := res.Modules[0]
	assert.Equal(t, StatusActivated, m.Status)
	assert.EqualValues(t, 0, m.Param(1))
}

func TestSkipBeforeInfoDisables(t *testing.T) {
	w := grf.NewWriter(2).
		AddPseudo(pseudo(0x09, 0x83, 1, 0x02, spec.ClimateTemperate, 0)).
		AddPseudo(infoRecord(8, grfA, "early skip"))
	res := load(t, w)
	m := res.Modules[0]
	assert.Equal(t, StatusDisabled, m.Status)
	require.NotNil(t, m.Error)
	assert.Equal(t, 1, m.Error.Record)
}

func TestLabelTests(t *testing.T) {
	res := load(t, buildModule(8, grfA,
		setParam(0, 0),
		// cargo PASS present: skip
		pseudo(0x07, 0x00, 4, 0x0B, []byte("PASS"), 1),
		setParam(1, 1),
		// rail type MAGL missing: do not skip when testing for presence
		pseudo(0x07, 0x00, 4, 0x0D, []byte("MAGL"), 1),
		setParam(2, 1),
	))
	m := res.Modules[0]
	assert.EqualValues(t, 0, m.Param(1))
	assert.EqualValues(t, 1, m.Param(2))
}

func TestGRFIDTests(t *testing.T) {
	tl := newTestLoad()
	tl.add(buildModule(8, grfA))
	tl.add(buildModule(8, grfB,
		// skip when A is active
		pseudo(0x07, 0x88, 4, 0x06, le32(grfA), 1),
		setParam(1, 1),
		// skip when an unknown GRFID is not active
		pseudo(0x07, 0x88, 4, 0x0A, le32(0xDEADBEEF), 1),
		setParam(2, 1),
	))
	res, _ := tl.run(t)
	b := res.Modules[1]
	require.Equal(t, StatusActivated, b.Status)
	assert.EqualValues(t, 0, b.Param(1))
	assert.EqualValues(t, 0, b.Param(2))
}

func TestParamOperations(t *testing.T) {
	for _, tc := range []struct {
		oper       uint8
		src1, src2 uint32
		want       uint32
	}{
		{0x00, 7, 9, 7},
		{0x01, 7, 9, 16},
		{0x02, 7, 9, 0xFFFFFFFE},
		{0x03, 7, 9, 63},
		{0x04, 0xFFFFFFFF, 3, 0xFFFFFFFD},
		{0x05, 1, 4, 16},
		{0x05, 16, 0xFFFFFFFE, 4},
		{0x06, 0xFFFFFFF0, 0xFFFFFFFC, 0xFFFFFFFF},
		{0x07, 0xF0, 0x3C, 0x30},
		{0x08, 0xF0, 0x0F, 0xFF},
		{0x09, 10, 3, 3},
		{0x09, 10, 0, 10},
		{0x0A, 0xFFFFFFF6, 3, 0xFFFFFFFD},
		{0x0B, 10, 3, 1},
		{0x0C, 0xFFFFFFF6, 3, 0xFFFFFFFF},
	} {
		got, ok := paramOperation(tc.oper, tc.src1, tc.src2)
		require.True(t, ok, "operation 0x%.2x", tc.oper)
		assert.Equal(t, tc.want, got, "operation 0x%.2x on %d, %d", tc.oper, tc.src1, tc.src2)
	}
	_, ok := paramOperation(0x0D, 1, 1)
	assert.False(t, ok)
}

func TestParamSetDefinedOnly(t *testing.T) {
	tl := newTestLoad()
	tl.add(buildModule(8, grfA,
		// bit 7 of the operation: only set undefined params
		pseudo(0x0D, 0, 0x80, 0xFF, 0xFF, le32(9)),
		pseudo(0x0D, 3, 0x80, 0xFF, 0xFF, le32(9)),
	), 1, 2)
	res, _ := tl.run(t)
	m := res.Modules[0]
	assert.EqualValues(t, 1, m.Param(0))
	assert.EqualValues(t, 2, m.Param(1))
	assert.EqualValues(t, 9, m.Param(3))
}

func TestParamFromOtherModule(t *testing.T) {
	tl := newTestLoad()
	tl.add(buildModule(7, grfA), 42)
	tl.add(buildModule(8, grfB,
		pseudo(0x0D, 1, 0x00, 0x00, 0xFE, le32(grfA)),
		pseudo(0x0D, 2, 0x00, 0xFE, 0xFE, le32(grfA)),
	))
	res, _ := tl.run(t)
	b := res.Modules[1]
	assert.EqualValues(t, 42, b.Param(1))
	assert.EqualValues(t, 7, b.Param(2))
}

func TestCfgApplyPatchesNextRecord(t *testing.T) {
	res := load(t, buildModule(8, grfA,
		setParam(0, 0x42),
		// write param 0 over the first data byte of the next record
		pseudo(0x06, 0x00, 1, 5, 0xFF),
		setParam(1, 0),
	))
	m := res.Modules[0]
	require.Equal(t, StatusActivated, m.Status)
	assert.EqualValues(t, 0x42, m.Param(1))
	// the container itself is untouched
	assert.Equal(t, setParam(1, 0), m.Records()[4].Data)
}

func TestCfgApplyAdds(t *testing.T) {
	res := load(t, buildModule(8, grfA,
		setParam(0, 0x01),
		pseudo(0x06, 0x00, 0x80|2, 5, 0xFF),
		setParam(1, 0x00FF),
	))
	assert.EqualValues(t, 0x0100, res.Modules[0].Param(1))
}

func TestLoadErrorMessage(t *testing.T) {
	res := load(t, buildModule(8, grfA,
		pseudo(0x0B, 0x80|int(SeverityWarning), 0x7F, 0xFF, "Custom message", "extra"),
	))
	m := res.Modules[0]
	assert.Equal(t, StatusActivated, m.Status)
	require.NotNil(t, m.Error)
	assert.Equal(t, SeverityWarning, m.Error.Severity)
	assert.Equal(t, "Custom message", m.Error.Custom)
	assert.Equal(t, "extra", m.Error.Data)
	assert.EqualValues(t, 0xFF, m.Error.MessageID)
}

func TestLoadErrorFatal(t *testing.T) {
	res := load(t, buildModule(8, grfA,
		pseudo(0x0B, 0x80|int(SeverityFatal), 0x7F, 0x04, "", 0),
		setParam(1, 1),
	))
	m := res.Modules[0]
	assert.Equal(t, StatusDisabled, m.Status)
	require.NotNil(t, m.Error)
	assert.Equal(t, SeverityFatal, m.Error.Severity)
	assert.Equal(t, ErrFatal.Error(), m.Error.Reason)
	assert.Equal(t, "invalid parameter %s", m.Error.Message)
}

func TestLoadErrorOtherLanguage(t *testing.T) {
	res := load(t, buildModule(8, grfA,
		pseudo(0x0B, 0x80|int(SeverityFatal), 0x02, 0x04, "", 0),
	))
	m := res.Modules[0]
	assert.Equal(t, StatusActivated, m.Status)
	assert.Nil(t, m.Error)
}

func TestInhibit(t *testing.T) {
	tl := newTestLoad()
	tl.add(buildModule(8, grfA))
	tl.add(buildModule(8, grfB, pseudo(0x0E, 1, le32(grfA))))
	res, _ := tl.run(t)

	a := res.Modules[0]
	assert.Equal(t, StatusDisabled, a.Status)
	require.NotNil(t, a.Error)
	assert.Equal(t, ErrForcefullyDisabled.Error(), a.Error.Reason)
	assert.Equal(t, res.Modules[1].Name, a.Error.Data)
	assert.Equal(t, StatusActivated, res.Modules[1].Status)
}

func TestStaticModuleSafety(t *testing.T) {
	tl := newTestLoad()
	tl.add(buildModule(8, grfA))
	tl.list[0].Static = true
	tl.add(buildModule(8, grfB, pseudo(0x0E, 1, le32(grfA))))
	tl.list[1].Static = true
	res, _ := tl.run(t)

	assert.Equal(t, StatusActivated, res.Modules[0].Status)
	b := res.Modules[1]
	assert.True(t, b.Unsafe)
	assert.Equal(t, StatusDisabled, b.Status)
	require.NotNil(t, b.Error)
	assert.Equal(t, ErrUnsafeForStatic.Error(), b.Error.Reason)
}

func TestTrainWidthAndPitch(t *testing.T) {
	res := load(t, buildModule(8, grfA,
		pseudo(0x0D, 0x8E, 0x00, 0xFF, 0xFF, le32(3)),
		pseudo(0x0D, 0x9E, 0x00, 0xFF, 0xFF, le32(miscTrainWidth32)),
		// read both back through global variables
		pseudo(0x0D, 0, 0x00, 0x8E, 0x00),
		pseudo(0x0D, 1, 0x00, 0x9E, 0x00),
	))
	m := res.Modules[0]
	assert.EqualValues(t, 3, m.TrainPitch)
	assert.EqualValues(t, 32, m.TrainWidth)
	assert.EqualValues(t, 3, m.Param(0))
	assert.EqualValues(t, miscTrainWidth32, m.Param(1))
}

func TestRailCostMultipliers(t *testing.T) {
	res := load(t, buildModule(8, grfA,
		pseudo(0x0D, 0x8F, 0x00, 0xFF, 0xFF, le32(0x030201)),
		pseudo(0x0D, 0, 0x00, 0x8F, 0x00),
	))
	rt := res.Registry.RailTypes
	assert.EqualValues(t, 1, rt.Spec(0).CostMultiplier)
	assert.EqualValues(t, 2, rt.Spec(1).CostMultiplier)
	assert.EqualValues(t, 3, rt.Spec(2).CostMultiplier)
	assert.EqualValues(t, 3, rt.Spec(3).CostMultiplier)
	assert.EqualValues(t, 0x030201, res.Modules[0].Param(0))
}

// capabilityMapping is Action 0x14 mapping a named property (A0PM) or
// variable (A2VM) of a feature to a code.
func capabilityMapping(kind, entry, codeTag string, f feature.Feature, name string, code, fallback int) []byte {
	return pseudo(0x14,
		int('C'), []byte(kind),
		int('C'), []byte(entry),
		int('T'), []byte("NAME"), 0x7F, name,
		int('B'), []byte("FEAT"), le16(1), int(f),
		int('B'), []byte(codeTag), le16(1), code,
		int('B'), []byte("FLBK"), le16(1), fallback,
		0, 0, 0)
}

func propertyMapping(f feature.Feature, name string, code, fallback int) []byte {
	return capabilityMapping("A0PM", "PROP", "PROP", f, name, code, fallback)
}

func variableMapping(f feature.Feature, name string, code, fallback int) []byte {
	return capabilityMapping("A2VM", "VARI", "RSID", f, name, code, fallback)
}

const (
	fallbackIgnore           = 0
	fallbackErrorOnUse       = 1
	fallbackErrorImmediately = 2
)

func TestIgnoredPropertyMappingSkipsPayload(t *testing.T) {
	res := load(t, buildModule(8, grfA,
		propertyMapping(feature.Trains, "no_such_property", 0x60, fallbackIgnore),
		// the mapped property carries 3 bytes, then speed follows
		pseudo(0x00, int(feature.Trains), 2, 1, 120, 0x60, 3, 0xAA, 0xBB, 0xCC, 0x09, le16(250)),
	))
	m := res.Modules[0]
	require.Equal(t, StatusActivated, m.Status, "%v", m.Error)
	assert.Nil(t, m.Error)

	id, ok := res.IDs.Lookup(feature.Trains, grfA, 120)
	require.True(t, ok)
	e := res.Registry.Engines.Get(id)
	require.NotNil(t, e)
	assert.EqualValues(t, 250, e.Spec.Rail.MaxSpeed)
}

func TestPropertyMappingErrorImmediately(t *testing.T) {
	res := load(t, buildModule(8, grfA,
		propertyMapping(feature.Trains, "no_such_property", 0x60, fallbackErrorImmediately),
	))
	m := res.Modules[0]
	assert.Equal(t, StatusDisabled, m.Status)
	require.NotNil(t, m.Error)
	assert.Equal(t, ErrCapabilityDeclaration.Error(), m.Error.Reason)
}

func TestPropertyMappingErrorOnUseUnused(t *testing.T) {
	res := load(t, buildModule(8, grfA,
		propertyMapping(feature.Trains, "no_such_property", 0x60, fallbackErrorOnUse),
		setParam(1, 1),
	))
	m := res.Modules[0]
	assert.Equal(t, StatusActivated, m.Status, "%v", m.Error)
	assert.Nil(t, m.Error)
	assert.EqualValues(t, 1, m.Param(1))
}

func TestPropertyMappingErrorOnUse(t *testing.T) {
	res := load(t, buildModule(8, grfA,
		propertyMapping(feature.Trains, "no_such_property", 0x60, fallbackErrorOnUse),
		pseudo(0x00, int(feature.Trains), 1, 1, 120, 0x60, 1, 0xAA),
	))
	m := res.Modules[0]
	assert.Equal(t, StatusDisabled, m.Status)
	require.NotNil(t, m.Error)
	assert.Equal(t, remap.ErrCapabilityUnresolved.Error(), m.Error.Reason)
	assert.Contains(t, m.Error.Message, "no_such_property")
	assert.Equal(t, 3, m.Error.Record)
}

func TestVariableMappingErrorOnUse(t *testing.T) {
	res := load(t, buildModule(8, grfA,
		variableMapping(feature.Stations, "no_such_variable", 0x71, fallbackErrorOnUse),
		// deterministic group reading variable 0x71 with parameter 0
		pseudo(0x02, int(feature.Stations), 0, 0x81, 0x71, 0x00, 0x00, 0xFF, 0, le16(0x8000)),
	))
	m := res.Modules[0]
	assert.Equal(t, StatusDisabled, m.Status)
	require.NotNil(t, m.Error)
	assert.Equal(t, remap.ErrCapabilityUnresolved.Error(), m.Error.Reason)
	assert.Contains(t, m.Error.Message, "no_such_variable")
}

func TestVariableMappingKnown(t *testing.T) {
	res := load(t, buildModule(8, grfA,
		variableMapping(feature.Stations, "station_tile_type", 0x70, fallbackErrorImmediately),
		pseudo(0x02, int(feature.Stations), 0, 0x81, 0x70, 0x00, 0x00, 0xFF, 0, le16(0x8000)),
	))
	m := res.Modules[0]
	assert.Equal(t, StatusActivated, m.Status, "%v", m.Error)
	assert.Nil(t, m.Error)
}
