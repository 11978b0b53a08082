package loader

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDateAtStartOfYear(t *testing.T) {
	assert.Equal(t, daysTillOriginalBaseYear, dateAtStartOfYear(originalBaseYear))
	assert.Equal(t, 0, dateAtStartOfYear(0))
	assert.Equal(t, 366, dateAtStartOfYear(1))
	assert.Equal(t, dateAtStartOfYear(2000)+366, dateAtStartOfYear(2001))
	assert.Equal(t, dateAtStartOfYear(1900)+365, dateAtStartOfYear(1901))
}

func TestLog2(t *testing.T) {
	assert.EqualValues(t, 6, log2(64))
	assert.EqualValues(t, 8, log2(256))
	assert.EqualValues(t, 12, log2(4096))
	assert.EqualValues(t, 0, log2(1))
}

// readVars loads one module copying global variables into parameters
// 0, 1, ...
func readVars(t *testing.T, tl *testLoad, vars ...int) *Module {
	t.Helper()
	var records [][]byte
	for i, v := range vars {
		records = append(records, pseudo(0x0D, i, 0x00, v, 0x00))
	}
	tl.add(buildModule(8, grfA, records...))
	res, _ := tl.run(t)
	return res.Modules[0]
}

func TestGlobalVarsDate(t *testing.T) {
	tl := newTestLoad()
	tl.settings.StartingYear = 2000
	m := readVars(t, tl, 0x80, 0x81, 0x82, 0xA3, 0xA4)

	assert.EqualValues(t, dateAtStartOfYear(2000)-daysTillOriginalBaseYear, m.Param(0))
	assert.EqualValues(t, 80, m.Param(1))
	assert.EqualValues(t, 1<<15, m.Param(2))
	assert.EqualValues(t, dateAtStartOfYear(2000), m.Param(3))
	assert.EqualValues(t, 2000, m.Param(4))
}

func TestGlobalVarsYearClamped(t *testing.T) {
	tl := newTestLoad()
	tl.settings.StartingYear = 1800
	m := readVars(t, tl, 0x80, 0x81, 0xA4)

	assert.EqualValues(t, 0, m.Param(0))
	assert.EqualValues(t, 0, m.Param(1))
	assert.EqualValues(t, 1800, m.Param(2))
}

func TestGlobalVarsClimate(t *testing.T) {
	tl := newTestLoad()
	tl.settings.Climate = "arctic"
	m := readVars(t, tl, 0x83, 0xA0, 0x8B, 0xA1)

	assert.EqualValues(t, 1, m.Param(0))
	assert.EqualValues(t, tl.settings.SnowLine, m.Param(1))
	assert.Equal(t, patchVersion, m.Param(2))
	assert.Equal(t, loaderVersion, m.Param(3))
}

func TestGlobalVarsNoSnowOutsideArctic(t *testing.T) {
	m := readVars(t, newTestLoad(), 0xA0)
	assert.EqualValues(t, 0xFF, m.Param(0))
}

func TestGlobalVarStageBits(t *testing.T) {
	// only the activation stage value survives
	m := readVars(t, newTestLoad(), 0x84)
	assert.EqualValues(t, 1|1<<9, m.Param(0))
}

func TestPatchVariables(t *testing.T) {
	tl := newTestLoad()
	tl.settings.StartingYear = 1950
	tl.add(buildModule(8, grfA,
		pseudo(0x0D, 0, 0x00, 0x13, 0xFE, le32(0xFFFF)),
		pseudo(0x0D, 1, 0x00, 0x0B, 0xFE, le32(0xFFFF)),
		pseudo(0x0D, 2, 0x00, 0x14, 0xFE, le32(0xFFFF)),
		pseudo(0x0D, 3, 0x00, 0x10, 0xFE, le32(0xFFFF)),
	))
	res, _ := tl.run(t)
	m := res.Modules[0]

	assert.EqualValues(t, 1<<24|2<<20|2<<16|2<<12|2<<8|4, m.Param(0))
	assert.EqualValues(t, 30, m.Param(1))
	assert.EqualValues(t, tl.settings.MapHeightLimit, m.Param(2))
	assert.EqualValues(t, 1, m.Param(3))
}

func TestPatchVariableMapShape(t *testing.T) {
	tl := newTestLoad()
	tl.settings.MapSizeX = 512
	tl.settings.MapSizeY = 128
	tl.add(buildModule(8, grfA, pseudo(0x0D, 0, 0x00, 0x13, 0xFE, le32(0xFFFF))))
	res, _ := tl.run(t)

	// x is 3, y is 1: the longer side is x
	assert.EqualValues(t, 1<<20|3<<16|3<<12|1<<8|4, res.Modules[0].Param(0))
}
