package loader

import (
	"github.com/pkg/errors"

	"github.com/mogaika/newgrf_browser/grf"
	"github.com/mogaika/newgrf_browser/grf/spec"
	"github.com/mogaika/newgrf_browser/utils"
)

// Sound records of Action 0x11
const (
	soundInline = 0xFF
	soundImport = 0xFE

	soundMaxVolume = 128
)

// Action 0x11: u16 count, followed by that many sound records.
func sounds(st *moduleState, r *utils.ByteReader) error {
	num, err := r.ReadU16()
	if err != nil {
		return err
	}
	if num == 0 {
		return nil
	}

	file := st.m.File
	if file.SoundOffset == 0 {
		tbl := st.registry.Sounds
		if tbl.Len()+int(num) > tbl.Limit {
			return errors.Wrapf(ErrResourceLimit, "%d sounds on top of %d", num, tbl.Len())
		}
		file.SoundOffset = uint16(tbl.Len())
		file.NumSounds = num
		for i := 0; i < int(num); i++ {
			tbl.Put(file.SoundOffset+uint16(i), spec.SoundEntry{GRFID: st.m.GRFID, Volume: soundMaxVolume})
		}
	}

	version := st.m.container.ContainerVersion
	st.consume(int(num), func(rec *grf.Record, i int) error {
		if i >= int(file.NumSounds) {
			st.Log().Infof("Sound %d out of range, more than one sound action?", i)
			return nil
		}
		snd := st.registry.Sounds.Spec(file.SoundOffset + uint16(i))

		if ref, ok := rec.SpriteRef(); ok {
			if st.stage == StageInit {
				snd.File, snd.Record, snd.SpriteID, snd.Loaded = st.m.Path, rec.Index, ref, true
			}
			return nil
		}
		if !rec.IsPseudo() {
			st.Log().Infof("Unexpected real sprite in sound list, skipping")
			return nil
		}
		if len(rec.Data) == 0 {
			return nil
		}

		switch rec.Data[0] {
		case soundInline:
			if st.stage != StageInit {
				return nil
			}
			if version >= 2 {
				st.Log().Infof("Inline sounds are not supported in container version %d", version)
				return nil
			}
			snd.File, snd.Record, snd.Loaded = st.m.Path, rec.Index, true
		case soundImport:
			if st.stage == StageActivation {
				return st.importSound(snd, rec)
			}
		default:
			st.Log().Infof("Unexpected sound record type 0x%.2x, skipping", rec.Data[0])
		}
		return nil
	})
	return nil
}

// importSound copies a sound of another module: u8 0xFE, u8 0, u32 GRFID,
// u16 sound id.
func (st *moduleState) importSound(snd *spec.SoundEntry, rec *grf.Record) error {
	r := st.reader("sound", rec.Data[1:])
	zero, err := r.ReadU8()
	if err != nil {
		return err
	}
	if zero != 0 {
		st.Log().Infof("Invalid sound import")
	}
	grfid, err := r.ReadU32()
	if err != nil {
		return err
	}
	id, err := r.ReadU16()
	if err != nil {
		return err
	}

	other := st.findModule(grfid, 0xFFFFFFFF)
	if other == nil || other.File == nil || other.File.SoundOffset == 0 {
		st.Log().Infof("Sound source %s not available", GRFIDString(grfid))
		return nil
	}
	if id >= other.File.NumSounds {
		st.Log().Infof("Sound %d of %s is invalid", id, GRFIDString(grfid))
		return nil
	}
	src := st.registry.Sounds.Spec(other.File.SoundOffset + id)
	*snd = *src
	snd.GRFID = st.m.GRFID
	snd.Volume = soundMaxVolume
	snd.Priority = 0
	snd.ImportGRFID = grfid
	snd.ImportID = id
	snd.Imported = true
	return nil
}

func skipSounds(st *moduleState, r *utils.ByteReader) error {
	num, err := r.ReadU16()
	if err != nil {
		return err
	}
	st.skip = int(num)
	return nil
}
