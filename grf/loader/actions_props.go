package loader

import (
	"github.com/pkg/errors"

	"github.com/mogaika/newgrf_browser/grf/feature"
	"github.com/mogaika/newgrf_browser/grf/props"
	"github.com/mogaika/newgrf_browser/grf/remap"
	"github.com/mogaika/newgrf_browser/utils"
)

type changeInfo struct {
	feature feature.Feature
	props   uint8
	count   uint8
	first   uint16
}

// Action 0x00: u8 feature, u8 property count, u8 id count, ext first id,
// then (u8 property, payload) pairs.
func readChangeInfo(r *utils.ByteReader) (changeInfo, error) {
	var ci changeInfo
	f, err := r.ReadU8()
	if err != nil {
		return ci, err
	}
	ci.feature = feature.Feature(f)
	if ci.props, err = r.ReadU8(); err != nil {
		return ci, err
	}
	if ci.count, err = r.ReadU8(); err != nil {
		return ci, err
	}
	ci.first, err = r.ReadExtended()
	return ci, err
}

func featureChangeInfo(st *moduleState, r *utils.ByteReader) error {
	ci, err := readChangeInfo(r)
	if err != nil {
		return err
	}
	if !ci.feature.Valid() {
		st.Log().Infof("Unsupported feature 0x%.2x, skipping", uint8(ci.feature))
		return nil
	}
	st.m.File.Features.Add(ci.feature)
	return st.changeInfo(ci, r)
}

// reserveChangeInfo applies the properties that must be known before the
// activation of any module.
func reserveChangeInfo(st *moduleState, r *utils.ByteReader) error {
	ci, err := readChangeInfo(r)
	if err != nil {
		return err
	}
	switch ci.feature {
	case feature.Cargoes, feature.GlobalVars, feature.RailTypes, feature.RoadTypes, feature.TramTypes:
		return st.changeInfo(ci, r)
	}
	return nil
}

func (st *moduleState) changeInfo(ci changeInfo, r *utils.ByteReader) error {
	dec, ok := props.Decoders()[ci.feature]
	if !ok {
		st.Log().Infof("No properties known for %v, skipping", ci.feature)
		return nil
	}
	st.Log().Tracef("Changing %d properties of %d %v from %d", ci.props, ci.count, ci.feature, ci.first)

	for n := 0; n < int(ci.props) && r.HasData(); n++ {
		code, err := r.ReadU8()
		if err != nil {
			return err
		}

		res, err := st.decodeProperty(dec, ci, code, r)
		switch res {
		case props.Success:
		case props.Unhandled:
			st.Log().Debugf("Ignoring property 0x%.2x of %v, not implemented", code, ci.feature)
		case props.InvalidID:
			return nil
		case props.Unknown, props.Disabled:
			if err == nil {
				err = errors.Wrapf(props.ErrUnknownProperty, "%v property 0x%.2x", ci.feature, code)
			}
			return err
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// decodeProperty decodes one property, following the capability
// declarations of the module for remapped codes.
func (st *moduleState) decodeProperty(dec props.Decoder, ci changeInfo, code uint8, r *utils.ByteReader) (props.Result, error) {
	e, mapped := st.m.Remap.Resolve(remap.Property, ci.feature, code)
	if !mapped {
		return dec.Decode(st, ci.first, int(ci.count), code, r)
	}

	size, err := r.ReadExtended()
	if err != nil {
		return props.Disabled, err
	}
	sub, err := r.Sub("property", int(size))
	if err != nil {
		return props.Disabled, err
	}
	switch {
	case e.Known:
		return dec.Decode(st, ci.first, int(ci.count), e.Internal, sub)
	case e.Fallback == remap.Ignore:
		st.Log().Debugf("Ignoring unknown %v %q", e.Kind, e.Name)
		return props.Success, nil
	}
	return props.Disabled, e.Err()
}

// safeChangeInfo lets static modules change bridge layouts and map the
// engines of other static modules only.
func safeChangeInfo(st *moduleState, r *utils.ByteReader) error {
	ci, err := readChangeInfo(r)
	if err != nil {
		return err
	}
	if ci.props == 1 {
		switch ci.feature {
		case feature.Bridges:
			prop, err := r.ReadU8()
			if err != nil {
				return err
			}
			if prop == 0x0D {
				return nil
			}
		case feature.GlobalVars:
			prop, err := r.ReadU8()
			if err != nil {
				return err
			}
			if prop == 0x11 {
				safe := true
				for i := 0; i < int(ci.count) && safe; i++ {
					src, err := r.ReadU32()
					if err != nil {
						return err
					}
					if err := r.Skip(4); err != nil {
						return err
					}
					if other := st.findModule(src, 0xFFFFFFFF); other != nil && !other.Static {
						safe = false
					}
				}
				if safe {
					return nil
				}
			}
		}
	}
	return unsafe(st, r)
}
