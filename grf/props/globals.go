package props

import (
	"bytes"

	"github.com/pkg/errors"

	"github.com/mogaika/newgrf_browser/grf/feature"
	"github.com/mogaika/newgrf_browser/grf/spec"
	"github.com/mogaika/newgrf_browser/utils"
)

const (
	snowLineSize   = 12 * 32
	maxLanguages   = 0x80
	maxPluralForms = 15
	maxCurrencies  = 64
)

// utf8Marker prefixes strings written in UTF-8 rather than the legacy encoding.
var utf8Marker = []byte{0xC3, 0x9E}

func globalObject(c *Context) (*spec.GRFFile, error) {
	c.Global = c.ID
	return c.File(), nil
}

// translationTable loads a label table during reservation. Tables always
// start at id zero and cover every id of the record.
func translationTable(code uint8, name string, field func(g *spec.GRFFile) *[]spec.Label) Property[spec.GRFFile] {
	return custom(code, name, func(c *Context, r *utils.ByteReader, _ *spec.GRFFile) error {
		if !c.Reserving() {
			return r.Skip(4 * c.Count)
		}
		if c.ID != 0 {
			return errors.Wrapf(ErrInvalidID, "%s must start at zero", name)
		}
		list := make([]spec.Label, 0, c.Count)
		for i := 0; i < c.Count; i++ {
			v, err := r.ReadBU32()
			if err != nil {
				return err
			}
			list = append(list, spec.Label(v))
		}
		*field(c.File()) = list
		return nil
	}).reserved().batch()
}

func currency(code uint8, name string, width int, set func(cur *spec.Currency, v uint32)) Property[spec.GRFFile] {
	return custom(code, name, func(c *Context, r *utils.ByteReader, g *spec.GRFFile) error {
		v, err := r.ReadVar(width)
		if err != nil || g == nil {
			return err
		}
		if c.ID >= maxCurrencies {
			c.Log().Warnf("Currency %d out of range, ignoring", c.ID)
			return nil
		}
		set(g.Currency(c.ID), v)
		return nil
	})
}

// languageMap reads newgrf id and name pairs of a gender or case table.
func languageMap(code uint8, name string, field func(lm *spec.LanguageMap) *map[uint8]string) Property[spec.GRFFile] {
	return custom(code, name, func(c *Context, r *utils.ByteReader, g *spec.GRFFile) error {
		known := c.ID < maxLanguages
		if g != nil && !known {
			c.Log().Infof("Language %d is not known, ignoring", c.ID)
		}
		for {
			id, err := r.ReadU8()
			if err != nil {
				return err
			}
			if id == 0 {
				return nil
			}
			s, err := r.ReadString()
			if err != nil {
				return err
			}
			if g == nil || !known {
				continue
			}
			m := field(g.Language(uint8(c.ID)))
			if *m == nil {
				*m = make(map[uint8]string)
			}
			(*m)[id] = string(bytes.TrimPrefix(s, utf8Marker))
		}
	})
}

func globalProperties() []Property[spec.GRFFile] {
	return []Property[spec.GRFFile]{
		custom(0x08, "base_cost_multipliers", func(c *Context, r *utils.ByteReader, g *spec.GRFFile) error {
			v, err := r.ReadU8()
			if err != nil || g == nil {
				return err
			}
			if int(c.ID) >= len(g.PriceMultipliers) {
				c.Log().Warnf("Price %d out of range, ignoring", c.ID)
				return nil
			}
			g.PriceMultipliers[c.ID] = int8(min(int(v)-8, spec.MaxPriceModifier))
			return nil
		}),
		translationTable(0x09, "cargo_translation_table", func(g *spec.GRFFile) *[]spec.Label { return &g.CargoList }),
		currency(0x0A, "currency_name", 2, func(cur *spec.Currency, v uint32) { cur.NameID = uint16(v) }),
		currency(0x0B, "currency_multiplier", 4, func(cur *spec.Currency, v uint32) { cur.Multiplier = v }),
		currency(0x0C, "currency_options", 2, func(cur *spec.Currency, v uint32) { cur.Options = uint16(v) }),
		currency(0x0D, "currency_prefix", 4, func(cur *spec.Currency, v uint32) { cur.Prefix = v }),
		currency(0x0E, "currency_suffix", 4, func(cur *spec.Currency, v uint32) { cur.Suffix = v }),
		currency(0x0F, "currency_euro_date", 2, func(cur *spec.Currency, v uint32) { cur.EuroIntro = uint16(v) }),
		custom(0x10, "snow_line_table", func(c *Context, r *utils.ByteReader, g *spec.GRFFile) error {
			b, err := r.ReadBytes(snowLineSize)
			if err != nil || g == nil {
				return err
			}
			if c.Count > 1 || len(g.SnowLine) != 0 {
				c.Log().Warnf("The snowline can only be set once (%d)", c.Count)
				return nil
			}
			g.SnowLine = append([]byte(nil), b...)
			return nil
		}),
		custom(0x11, "grf_override", func(c *Context, r *utils.ByteReader, g *spec.GRFFile) error {
			src, err := r.ReadU32()
			if err != nil {
				return err
			}
			dst, err := r.ReadU32()
			if err != nil || g == nil || !c.Reserving() {
				return err
			}
			c.IDs().SetOverride(src, dst)
			c.Log().Debugf("Engine id space of %08X now follows %08X", src, dst)
			return nil
		}).reserved(),
		translationTable(0x12, "railtype_translation_table", func(g *spec.GRFFile) *[]spec.Label { return &g.RailTypeList }),
		languageMap(0x13, "gender_translation_table", func(lm *spec.LanguageMap) *map[uint8]string { return &lm.Genders }),
		languageMap(0x14, "case_translation_table", func(lm *spec.LanguageMap) *map[uint8]string { return &lm.Cases }),
		custom(0x15, "plural_form", func(c *Context, r *utils.ByteReader, g *spec.GRFFile) error {
			v, err := r.ReadU8()
			if err != nil || g == nil {
				return err
			}
			if c.ID >= maxLanguages {
				c.Log().Infof("Language %d is not known, ignoring", c.ID)
				return nil
			}
			if v >= maxPluralForms {
				c.Log().Infof("Plural form %d is out of range, ignoring", v)
				return nil
			}
			g.Language(uint8(c.ID)).Plural = int8(v)
			return nil
		}),
		translationTable(0x16, "roadtype_translation_table", func(g *spec.GRFFile) *[]spec.Label { return &g.RoadTypeList }),
		translationTable(0x17, "tramtype_translation_table", func(g *spec.GRFFile) *[]spec.Label { return &g.TramTypeList }),
		skip[spec.GRFFile](0x18, "extra_station_names", 4),
	}
}

func soundObject(c *Context) (*spec.SoundEntry, error) {
	g := c.File()
	if c.ID < spec.OriginalSounds || c.ID-spec.OriginalSounds >= g.NumSounds {
		return nil, nil
	}
	c.Global = g.SoundOffset + c.ID - spec.OriginalSounds
	return c.Registry().Sounds.Spec(c.Global), nil
}

func soundProperties() []Property[spec.SoundEntry] {
	return []Property[spec.SoundEntry]{
		u8(0x08, "volume", func(s *spec.SoundEntry) *uint8 { return &s.Volume }),
		u8(0x09, "priority", func(s *spec.SoundEntry) *uint8 { return &s.Priority }),
		custom(0x0A, "override_original", func(c *Context, r *utils.ByteReader, s *spec.SoundEntry) error {
			v, err := r.ReadU8()
			if err != nil || s == nil {
				return err
			}
			if v >= spec.OriginalSounds {
				c.Log().Warnf("Original sound %d not in valid range, ignoring", v)
				return nil
			}
			c.Registry().Sounds.Get(uint16(v)).Spec = *s
			return nil
		}),
	}
}

func init() {
	register(newTable(feature.GlobalVars, globalObject, globalProperties()...))
	register(newTable(feature.Sounds, soundObject, soundProperties()...))
}
