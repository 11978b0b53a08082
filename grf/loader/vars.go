package loader

import (
	"github.com/mogaika/newgrf_browser/grf/sprites"
)

// Calendar constants of global variables 0x00 to 0x02.
const (
	originalBaseYear = 1920
	originalMaxYear  = 2090

	daysTillOriginalBaseYear = 701265
)

// Versions reported by global variables 0x0B and 0x21.
const (
	patchVersion  uint32 = 2<<24 | 6<<20 | 1<<16 | 1382
	loaderVersion uint32 = 30<<24 | 1<<19 | 28004
)

func isLeapYear(y int) bool {
	return y%4 == 0 && (y%100 != 0 || y%400 == 0)
}

// dateAtStartOfYear counts the days from year 0 to the first of January.
func dateAtStartOfYear(y int) int {
	if y == 0 {
		return 0
	}
	leap := (y-1)/4 - (y-1)/100 + (y-1)/400 + 1
	return 365*y + leap
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// globalVar returns the global variable 0x80+v shared with variational
// groups. Loading always happens on the first day of the starting year.
func (st *moduleState) globalVar(v uint8) (uint32, bool) {
	year := st.settings.StartingYear
	date := dateAtStartOfYear(year)

	switch v {
	case 0x00:
		if date < daysTillOriginalBaseYear {
			return 0, true
		}
		return uint32(date - daysTillOriginalBaseYear), true
	case 0x01:
		return uint32(clampInt(year, originalBaseYear, originalMaxYear) - originalBaseYear), true
	case 0x02:
		var leap uint32
		if isLeapYear(year) {
			leap = 1 << 15
		}
		return leap, true
	case 0x03:
		return uint32(st.climate), true
	case 0x06:
		if st.settings.DriveOnRight {
			return 1 << 4, true
		}
		return 0, true
	case 0x09, 0x0A:
		return 0, true
	case 0x0B:
		return patchVersion, true
	case 0x0D:
		if st.m.Info.Palette == 'W' {
			return 1, true
		}
		return 0, true
	case 0x0E:
		return st.m.TrainPitch, true
	case 0x0F:
		return st.railCostMultipliers(), true
	case 0x11:
		return 0, true
	case 0x12:
		// normal game
		return 1, true
	case 0x1A:
		return 0xFFFFFFFF, true
	case 0x1B:
		return 0x3F, true
	case 0x1D:
		return 1 | st.m.Var9DOverlay, true
	case 0x1E:
		res := st.miscFeatures
		if st.m.TrainWidth == 32 {
			res |= miscTrainWidth32
		}
		return res, true
	case 0x20:
		snow := st.settings.SnowLine
		if st.climate != 1 || snow > st.settings.MapHeightLimit {
			return 0xFF, true
		}
		if st.m.Version < 8 {
			snow *= 8
		}
		return uint32(clampInt(snow, 0, 0xFE)), true
	case 0x21:
		return loaderVersion, true
	case 0x22:
		// custom difficulty
		return 3, true
	case 0x23:
		return uint32(date), true
	case 0x24:
		return uint32(year), true
	}
	return 0, false
}

// paramValue reads a parameter or variable for Actions 6, 7, 9 and 0x0D.
// cond is the tested value of a bit test, which variable 0x85 splits into
// a flag word index and a bit.
func (st *moduleState) paramValue(param uint8, cond *uint32) uint32 {
	if param >= 0x80 {
		if v, ok := st.globalVar(param - 0x80); ok {
			return v
		}
	}
	switch param {
	case 0x84:
		var res uint32
		if st.stage > StageInit {
			res |= 1
		}
		if st.stage == StageReservation {
			res |= 1 << 8
		}
		if st.stage == StageActivation {
			res |= 1 << 9
		}
		return res
	case 0x85:
		if cond == nil {
			return 0
		}
		index := *cond / 0x20
		*cond %= 0x20
		flags := st.patchFlags()
		if int(index) < len(flags) {
			return flags[index]
		}
		return 0
	case 0x88:
		return 0
	}
	if param < 0x80 {
		return st.m.Param(param)
	}
	st.Log().Infof("Unsupported in-game variable 0x%.2x", param)
	return 0xFFFFFFFF
}

// patchFlags are the feature switches older modules test with variable
// 0x85, one word per group of switches.
func (st *moduleState) patchFlags() [5]uint32 {
	bit := func(set bool, n uint) uint32 {
		if set {
			return 1 << n
		}
		return 0
	}
	return [5]uint32{
		1<<0x0D | 1<<0x0E | 1<<0x0F | 1<<0x12 | 1<<0x13 | 1<<0x1B | 1<<0x1D | 1<<0x1E,
		1<<0x08 | 1<<0x09 | 1<<0x0C | 1<<0x12 | 1<<0x13 | 1<<0x14 | 1<<0x16 | 1<<0x17 |
			1<<0x18 | 1<<0x19 | 1<<0x1A | 1<<0x1B | 1<<0x1C,
		1<<0x01 | 1<<0x03 | 1<<0x0A | 1<<0x0D | 1<<0x0E | 1<<0x0F | 1<<0x12 | 1<<0x13 |
			1<<0x14 | 1<<0x15 | 1<<0x16 | 1<<0x17 | bit(st.settings.FreightTrains > 1, 0x18) |
			1<<0x19 | 1<<0x1A | 1<<0x1B | 1<<0x1C | 1<<0x1D | 1<<0x1E,
		1<<0x01 | 1<<0x03 | 1<<0x05 | 1<<0x06 | 1<<0x07 | 1<<0x08 | 1<<0x0B | 1<<0x0C |
			1<<0x0D | 1<<0x0E | 1<<0x0F | 1<<0x10 | 1<<0x11 | 1<<0x12 | 1<<0x14 | 1<<0x16 |
			1<<0x17 | bit(st.settings.DynamicEngines, 0x18) | 1<<0x1E | 1<<0x1F,
		1<<0x00 | 1<<0x02,
	}
}

func log2(n int) uint32 {
	var l uint32
	for n > 1 {
		n >>= 1
		l++
	}
	return l
}

// patchVariable returns the settings modules read with Action 0x0D
// source 0xFE and data 0xFFFF.
func (st *moduleState) patchVariable(v uint8) uint32 {
	s := st.settings
	switch v {
	case 0x0B:
		if s.StartingYear < originalBaseYear {
			return 0
		}
		return uint32(s.StartingYear - originalBaseYear)
	case 0x0E:
		return uint32(s.FreightTrains)
	case 0x0F:
		return 0
	case 0x10:
		switch s.PlaneSpeed {
		case 3, 2:
			return 2
		case 1:
			return 4
		}
		return 1
	case 0x11:
		return blockBase(0x0A)
	case 0x13:
		x, y := log2(s.MapSizeX)-6, log2(s.MapSizeY)-6
		lo, hi := x, y
		if lo > hi {
			lo, hi = hi, lo
		}
		var bits uint32
		if x == y {
			bits = 1
		} else if hi == y {
			bits = 2
		}
		return bits<<24 | lo<<20 | hi<<16 | x<<12 | y<<8 | (x + y)
	case 0x14:
		return uint32(s.MapHeightLimit)
	case 0x15:
		return blockBase(0x06)
	case 0x16:
		return blockBase(0x0D)
	case 0x17:
		return s.Seed
	}
	st.Log().Infof("Unknown patch variable 0x%.2x", v)
	return 0
}

func blockBase(typ uint8) uint32 {
	b, _ := sprites.BlockByType(typ)
	return b.Base
}
