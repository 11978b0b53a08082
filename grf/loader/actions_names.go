package loader

import (
	"github.com/mogaika/newgrf_browser/grf/feature"
	"github.com/mogaika/newgrf_browser/grf/props"
	"github.com/mogaika/newgrf_browser/utils"
)

// genericString tells whether a string id is in the ranges modules may
// define for their own texts.
func genericString(id uint32) bool {
	return (id >= 0xD000 && id < 0xD400) || (id >= 0xD800 && id < 0x10000)
}

// Action 0x04: u8 feature, u8 language (bit 7 for generic texts), u8
// count, first id (u16 when generic, ext for vehicles, u8 otherwise),
// strings.
func newNames(st *moduleState, r *utils.ByteReader) error {
	b, err := r.ReadU8()
	if err != nil {
		return err
	}
	f := feature.Feature(b)
	if !f.Valid() && f != feature.OriginalStrings {
		st.Log().Infof("Unsupported feature 0x%.2x, skipping", b)
		return nil
	}
	lang, err := r.ReadU8()
	if err != nil {
		return err
	}
	num, err := r.ReadU8()
	if err != nil {
		return err
	}
	generic := lang&0x80 != 0
	lang &^= 0x80

	var first uint16
	switch {
	case generic:
		first, err = r.ReadU16()
	case f.Valid() && f.Info().NameIDsExtended:
		first, err = r.ReadExtended()
	default:
		var v uint8
		v, err = r.ReadU8()
		first = uint16(v)
	}
	if err != nil {
		return err
	}

	newScheme := st.m.Version >= 7
	grfid := st.m.GRFID
	st.Log().Tracef("Naming %d..%d of %v in language 0x%.2x", first, int(first)+int(num)-1, f, lang)

	for i := 0; i < int(num) && r.HasData(); i++ {
		id := uint32(first) + uint32(i)
		raw, err := r.ReadString()
		if err != nil {
			return err
		}

		if f.IsVehicle() {
			if generic {
				st.strings.Add(grfid, id, lang, newScheme, raw)
				continue
			}
			e, err := props.Engine(st, f, uint16(id), st.m.Static)
			if err != nil {
				return err
			}
			if e == nil {
				continue
			}
			overlay := uint32(f+1) << 16
			e.Spec.Info.StringID = st.strings.Add(grfid, overlay|uint32(e.ID), lang, newScheme, raw)
			continue
		}

		if genericString(id) {
			st.strings.Add(grfid, id, lang, newScheme, raw)
			continue
		}
		local := uint16(id & 0xFF)
		switch id >> 8 {
		case 0xC4:
			e := scopedEntry(st, feature.Stations, st.registry.Stations, local)
			if e == nil {
				st.Log().Infof("Cannot set class name of undefined station 0x%.2x, ignoring", local)
				continue
			}
			classes := &st.registry.StationClasses
			if idx := int(e.Spec.ClassIndex); idx < len(classes.List) {
				classes.List[idx].NameID = st.strings.Add(grfid, id, lang, newScheme, raw)
			}
		case 0xC5:
			e := scopedEntry(st, feature.Stations, st.registry.Stations, local)
			if e == nil {
				st.Log().Infof("Cannot set name of undefined station 0x%.2x, ignoring", local)
				continue
			}
			e.Spec.Name = st.strings.Add(grfid, id, lang, newScheme, raw)
		case 0xC7:
			st.Log().Debugf("Ignoring airport tile name 0x%.4x", id)
		case 0xC9:
			e := scopedEntry(st, feature.Houses, st.registry.Houses, local)
			if e == nil {
				st.Log().Infof("Cannot set name of undefined house 0x%.2x, ignoring", local)
				continue
			}
			e.Spec.Name = st.strings.Add(grfid, id, lang, newScheme, raw)
		default:
			st.Log().Infof("Unsupported string id 0x%.4x, ignoring", id)
		}
	}
	return nil
}

// Action 0x13: u32 GRFID, [u8 language from version 8], u8 count, u16
// first id, strings. Adds translations to the texts of another module.
func translateStrings(st *moduleState, r *utils.ByteReader) error {
	grfid, err := r.ReadU32()
	if err != nil {
		return err
	}
	other := st.findModule(grfid, 0xFFFFFFFF)
	if other == nil || (other.Status != StatusInitialised && other.Status != StatusActivated) {
		st.Log().Infof("GRFID %s unknown, skipping translations", GRFIDString(grfid))
		return nil
	}
	if other.Status == StatusInitialised {
		return ErrLoadAfterTranslation
	}

	lang := uint8(0x7F)
	if st.m.Version >= 8 {
		if lang, err = r.ReadU8(); err != nil {
			return err
		}
	}
	num, err := r.ReadU8()
	if err != nil {
		return err
	}
	first, err := r.ReadU16()
	if err != nil {
		return err
	}
	last := uint32(first) + uint32(num)
	if !(first >= 0xD000 && last <= 0xD400) && !(first >= 0xD800 && last <= 0xE000) {
		st.Log().Infof("Translations of out of range ids 0x%.4x+%d, skipping", first, num)
		return nil
	}

	for i := 0; i < int(num) && r.HasData(); i++ {
		raw, err := r.ReadString()
		if err != nil {
			return err
		}
		if len(raw) == 0 {
			st.Log().Debugf("Ignoring empty translation")
			continue
		}
		st.strings.Add(grfid, uint32(first)+uint32(i), lang, true, raw)
	}
	return nil
}
