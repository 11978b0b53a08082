package props

import (
	"github.com/mogaika/newgrf_browser/grf/spec"
	"github.com/mogaika/newgrf_browser/utils"
)

// CargoTable returns the translation table of a module, or the default
// table indexed by bit number.
func CargoTable(env Env) []spec.Label {
	if list := env.File().CargoList; len(list) != 0 {
		return list
	}
	return env.Registry().DefaultCargoTranslation()
}

// TranslateCargo turns a module cargo byte into a cargo slot. Modules
// before version 7 address slots directly unless usebit is set.
func TranslateCargo(env Env, cargo uint8, usebit bool) spec.CargoID {
	reg := env.Registry()
	if env.GRFVersion() < 7 && !usebit {
		if cs := reg.Cargoes.Spec(uint16(cargo)); cs != nil && cs.Valid() {
			return spec.CargoID(cargo)
		}
		return spec.InvalidCargo
	}
	list := CargoTable(env)
	if int(cargo) >= len(list) {
		return spec.InvalidCargo
	}
	return reg.CargoByLabel(list[cargo])
}

// TranslateRefitMask converts a mask of cargo bits into cargo slots.
func TranslateRefitMask(env Env, mask uint32) spec.CargoMask {
	var result spec.CargoMask
	for bit := uint8(0); bit < 32; bit++ {
		if mask&(1<<bit) == 0 {
			continue
		}
		result.Set(TranslateCargo(env, bit, true))
	}
	return result
}

func readCargo(c *Context, r *utils.ByteReader) (spec.CargoID, error) {
	b, err := r.ReadU8()
	if err != nil {
		return spec.InvalidCargo, err
	}
	if b == 0xFF {
		return spec.InvalidCargo, nil
	}
	cargo := TranslateCargo(c, b, false)
	if cargo == spec.InvalidCargo {
		c.Log().Infof("Cargo type %d not available in this climate, ignoring", b)
	}
	return cargo, nil
}

// readCargoList reads a counted list of cargo bytes, dropping unknown cargoes.
func readCargoList(c *Context, r *utils.ByteReader) ([]spec.CargoID, error) {
	list, err := readList(r, func() (spec.CargoID, error) { return readCargo(c, r) })
	if err != nil {
		return nil, err
	}
	result := list[:0]
	for _, cargo := range list {
		if cargo != spec.InvalidCargo {
			result = append(result, cargo)
		}
	}
	return result, nil
}
