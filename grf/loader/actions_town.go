package loader

import (
	"github.com/pkg/errors"

	"github.com/mogaika/newgrf_browser/grf/text"
	"github.com/mogaika/newgrf_browser/utils"
)

// Action 0x0F: u8 id (bit 7 for a final definition), [style names by
// language ended by a zero language], u8 part lists, each of u8 parts, u8
// first bit, u8 bit count, then (u8 probability, ref id or string) parts.
func townNames(st *moduleState, r *utils.ByteReader) error {
	grfid := st.m.GRFID
	gen := st.townNames.Get(grfid, true)

	id, err := r.ReadU8()
	if err != nil {
		return err
	}
	if id&0x80 != 0 {
		id &^= 0x80
		newScheme := st.m.Version >= 7
		lang, err := r.ReadU8()
		if err != nil {
			return err
		}
		style := text.Undefined
		for lang != 0 {
			raw, err := r.ReadString()
			if err != nil {
				return err
			}
			style = st.strings.Add(grfid, uint32(id), lang&0x7F, newScheme, raw)
			st.Log().Tracef("Town name style 0x%.2x in language 0x%.2x: %s", id, lang&0x7F, st.decodeText(raw))
			if lang, err = r.ReadU8(); err != nil {
				return err
			}
		}
		gen.Styles = append(gen.Styles, text.TownNameStyle{NameID: style, ID: id})
	}

	parts, err := r.ReadU8()
	if err != nil {
		return err
	}
	st.Log().Tracef("Town name list 0x%.2x with %d part lists", id, parts)
	for i := 0; i < int(parts); i++ {
		var pl text.TownNamePartList
		n, err := r.ReadU8()
		if err != nil {
			return err
		}
		if pl.BitStart, err = r.ReadU8(); err != nil {
			return err
		}
		if pl.BitCount, err = r.ReadU8(); err != nil {
			return err
		}
		for j := 0; j < int(n); j++ {
			var p text.TownNamePart
			if p.Prob, err = r.ReadU8(); err != nil {
				return err
			}
			if p.IsRef() {
				if p.Ref, err = r.ReadU8(); err != nil {
					return err
				}
			} else {
				raw, err := r.ReadString()
				if err != nil {
					return err
				}
				p.Text = st.decodeText(raw)
			}
			pl.Parts = append(pl.Parts, p)
		}
		if err := gen.AddList(id, pl); err != nil {
			st.townNames.Delete(grfid)
			return errors.Wrapf(ErrTownNames, "list 0x%.2x: %v", id, err)
		}
	}
	return nil
}
