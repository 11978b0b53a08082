package loader

import (
	"encoding/binary"

	"github.com/pkg/errors"

	"github.com/mogaika/newgrf_browser/grf/feature"
	"github.com/mogaika/newgrf_browser/grf/remap"
	"github.com/mogaika/newgrf_browser/grf/spec"
	"github.com/mogaika/newgrf_browser/grf/text"
	"github.com/mogaika/newgrf_browser/utils"
)

const (
	minVersion = 2
	maxVersion = 8
)

type grfInfoHeader struct {
	version uint8
	grfid   uint32
	name    []byte
	desc    []byte
}

// Action 0x08: u8 version, u32 grfid, name, optional description.
func readGRFInfo(r *utils.ByteReader) (*grfInfoHeader, error) {
	h := &grfInfoHeader{}
	var err error
	if h.version, err = r.ReadU8(); err != nil {
		return nil, err
	}
	if h.grfid, err = r.ReadU32(); err != nil {
		return nil, err
	}
	if h.name, err = r.ReadString(); err != nil {
		return nil, err
	}
	if r.HasData() {
		if h.desc, err = r.ReadString(); err != nil {
			return nil, err
		}
	}
	return h, nil
}

// scanInfo harvests the identity of a module and stops reading it.
func scanInfo(st *moduleState, r *utils.ByteReader) error {
	h, err := readGRFInfo(r)
	if err != nil {
		return err
	}
	m := st.m
	m.GRFID = h.grfid
	m.Version = h.version
	m.System = h.grfid&0xFF == 0xFF
	m.Name = text.Decode(h.name, st.cm)
	m.Description = text.Decode(h.desc, st.cm)
	st.skip = -1

	if h.version < minVersion || h.version > maxVersion {
		m.Invalid = true
		return errors.Wrapf(ErrInvalidVersion, "version %d", h.version)
	}
	return nil
}

func grfInfo(st *moduleState, r *utils.ByteReader) error {
	h, err := readGRFInfo(r)
	if err != nil {
		return err
	}
	m := st.m
	if st.stage < StageReservation && m.Status != StatusUnknown {
		return errors.Wrapf(ErrDuplicateInfo, "module is already %v", m.Status)
	}
	if m.GRFID != h.grfid {
		st.Log().Warnf("GRFID %s does not match the scanned %s, using the new one", GRFIDString(h.grfid), GRFIDString(m.GRFID))
		m.GRFID = h.grfid
		m.File.GRFID = h.grfid
	}
	if h.version < minVersion || h.version > maxVersion {
		m.Invalid = true
		return errors.Wrapf(ErrInvalidVersion, "version %d", h.version)
	}
	m.Version = h.version
	m.File.Version = h.version

	if st.stage < StageReservation {
		m.Status = StatusInitialised
	} else {
		m.Status = StatusActivated
	}
	st.Log().Debugf("Loaded GRFv%d module %s - %s", h.version, GRFIDString(h.grfid), text.Decode(h.name, st.cm))
	return nil
}

// Action 0x14 chunk types.
const (
	chunkBranch = 'C'
	chunkText   = 'T'
	chunkBinary = 'B'
)

var (
	tagINFO = spec.MakeLabel("INFO")
	tagNAME = spec.MakeLabel("NAME")
	tagDESC = spec.MakeLabel("DESC")
	tagURL  = spec.MakeLabel("URL_")
	tagNPAR = spec.MakeLabel("NPAR")
	tagPALS = spec.MakeLabel("PALS")
	tagBLTR = spec.MakeLabel("BLTR")
	tagVRSN = spec.MakeLabel("VRSN")
	tagMINV = spec.MakeLabel("MINV")
	tagMAXV = spec.MakeLabel("MAXV")
	tagPARA = spec.MakeLabel("PARA")
	tagTYPE = spec.MakeLabel("TYPE")
	tagLIMI = spec.MakeLabel("LIMI")
	tagMASK = spec.MakeLabel("MASK")
	tagDFLT = spec.MakeLabel("DFLT")
	tagVALU = spec.MakeLabel("VALU")
	tagFTST = spec.MakeLabel("FTST")
	tagSETP = spec.MakeLabel("SETP")
	tagA0PM = spec.MakeLabel("A0PM")
	tagA2VM = spec.MakeLabel("A2VM")
	tagPROP = spec.MakeLabel("PROP")
	tagVARI = spec.MakeLabel("VARI")
	tagFEAT = spec.MakeLabel("FEAT")
	tagRSID = spec.MakeLabel("RSID")
	tagFLBK = spec.MakeLabel("FLBK")
)

// chunk is one node of the Action 0x14 tree.
type chunk struct {
	Type     uint8
	ID       spec.Label
	Lang     uint8
	Data     []byte
	Children []*chunk
}

// Number returns the id of a chunk used as a number, such as parameter
// numbers and values.
func (c *chunk) Number() uint32 {
	return swap32(uint32(c.ID))
}

func (c *chunk) Int() uint32 {
	var b [4]byte
	copy(b[:], c.Data)
	return binary.LittleEndian.Uint32(b[:])
}

// readChunks reads a level of the tree up to its zero terminator or the
// end of the record.
func readChunks(r *utils.ByteReader) ([]*chunk, error) {
	var list []*chunk
	for r.HasData() {
		typ, err := r.ReadU8()
		if err != nil {
			return nil, err
		}
		if typ == 0 {
			break
		}
		id, err := r.ReadBU32()
		if err != nil {
			return nil, err
		}
		c := &chunk{Type: typ, ID: spec.Label(id)}
		switch typ {
		case chunkBranch:
			if c.Children, err = readChunks(r); err != nil {
				return nil, err
			}
		case chunkText:
			if c.Lang, err = r.ReadU8(); err != nil {
				return nil, err
			}
			if c.Data, err = r.ReadString(); err != nil {
				return nil, err
			}
		case chunkBinary:
			size, err := r.ReadU16()
			if err != nil {
				return nil, err
			}
			if c.Data, err = r.ReadBytes(int(size)); err != nil {
				return nil, err
			}
		default:
			return nil, errors.Wrapf(ErrMetaDescription, "unknown chunk type 0x%.2x of %v", typ, c.ID)
		}
		list = append(list, c)
	}
	return list, nil
}

func readStaticInfo(r *utils.ByteReader) ([]*chunk, error) {
	root, err := readChunks(r)
	if err != nil {
		if errors.Is(err, utils.ErrUnexpectedEnd) {
			return nil, errors.Wrapf(ErrMetaDescription, "%v", err)
		}
		return nil, err
	}
	return root, nil
}

func (st *moduleState) textInto(dst *map[uint8]string, c *chunk) {
	if c.Type != chunkText {
		st.Log().Infof("Static info %v is not a text", c.ID)
		return
	}
	if *dst == nil {
		*dst = make(map[uint8]string)
	}
	(*dst)[c.Lang] = text.Decode(c.Data, st.cm)
}

// sized checks the size of a binary chunk.
func (st *moduleState) sized(c *chunk, lo, hi int) bool {
	if c.Type != chunkBinary || len(c.Data) < lo || len(c.Data) > hi {
		st.Log().Infof("Static info %v has type %q and %d bytes, ignoring", c.ID, c.Type, len(c.Data))
		return false
	}
	return true
}

// staticInfo reads the INFO tree of Action 0x14 during the file scan.
func staticInfo(st *moduleState, r *utils.ByteReader) error {
	root, err := readStaticInfo(r)
	if err != nil {
		return err
	}
	for _, c := range root {
		if c.Type == chunkBranch && c.ID == tagINFO {
			st.readInfo(c.Children)
		}
	}
	return nil
}

func (st *moduleState) readInfo(list []*chunk) {
	info := &st.m.Info
	for _, c := range list {
		switch c.ID {
		case tagNAME:
			st.textInto(&info.Name, c)
		case tagDESC:
			st.textInto(&info.Desc, c)
		case tagURL:
			st.textInto(&info.URL, c)
		case tagNPAR:
			if st.sized(c, 1, 1) {
				info.NumParams = c.Data[0]
			}
		case tagPALS:
			if st.sized(c, 1, 1) {
				info.Palette = c.Data[0]
			}
		case tagBLTR:
			if st.sized(c, 1, 1) {
				info.Blitter = c.Data[0]
			}
		case tagVRSN:
			if st.sized(c, 4, 4) {
				info.Version = c.Int()
			}
		case tagMINV:
			if st.sized(c, 4, 4) {
				info.MinVersion = c.Int()
			}
		case tagPARA:
			for _, p := range c.Children {
				if p.Type != chunkBranch {
					st.Log().Infof("Parameter info %v is not a branch, ignoring", p.ID)
					continue
				}
				st.readParam(info.param(p.Number()), p.Children)
			}
		default:
			st.Log().Debugf("Unknown static info %v, ignoring", c.ID)
		}
	}
}

func (st *moduleState) readParam(p *ParamInfo, list []*chunk) {
	for _, c := range list {
		switch c.ID {
		case tagNAME:
			st.textInto(&p.Name, c)
		case tagDESC:
			st.textInto(&p.Desc, c)
		case tagTYPE:
			if st.sized(c, 1, 1) {
				p.Type = c.Data[0]
			}
		case tagLIMI:
			if st.sized(c, 8, 8) {
				p.Min = binary.LittleEndian.Uint32(c.Data)
				p.Max = binary.LittleEndian.Uint32(c.Data[4:])
			}
		case tagMASK:
			if st.sized(c, 1, 3) {
				p.Number = uint32(c.Data[0])
				if len(c.Data) > 1 {
					p.FirstBit = c.Data[1]
				}
				if len(c.Data) > 2 {
					p.NumBits = c.Data[2]
				}
			}
		case tagDFLT:
			if st.sized(c, 4, 4) {
				p.Default = c.Int()
			}
		case tagVALU:
			for _, v := range c.Children {
				if v.Type != chunkText {
					continue
				}
				if p.Values == nil {
					p.Values = make(map[uint32]map[uint8]string)
				}
				names := p.Values[v.Number()]
				st.textInto(&names, v)
				p.Values[v.Number()] = names
			}
		default:
			st.Log().Debugf("Unknown parameter info %v, ignoring", c.ID)
		}
	}
}

var fallbacks = map[uint8]remap.Fallback{
	0: remap.Ignore,
	1: remap.ErrorOnUse,
	2: remap.ErrorImmediately,
}

// capabilities evaluates feature tests and records the property and
// variable remaps of Action 0x14 during init.
func capabilities(st *moduleState, r *utils.ByteReader) error {
	root, err := readStaticInfo(r)
	if err != nil {
		return err
	}
	for _, c := range root {
		if c.Type != chunkBranch {
			continue
		}
		switch c.ID {
		case tagFTST:
			st.featureTest(c.Children)
		case tagA0PM, tagA2VM:
			kind, entry := remap.Property, tagPROP
			if c.ID == tagA2VM {
				kind, entry = remap.Variable, tagVARI
			}
			for _, e := range c.Children {
				if e.Type != chunkBranch || e.ID != entry {
					continue
				}
				if err := st.declare(kind, e.Children); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (st *moduleState) featureTest(list []*chunk) {
	var name string
	lo, hi := uint16(1), uint16(0xFFFF)
	bit := -1
	for _, c := range list {
		switch c.ID {
		case tagNAME:
			if c.Type == chunkText {
				name = string(c.Data)
			}
		case tagMINV:
			if st.sized(c, 2, 2) {
				lo = binary.LittleEndian.Uint16(c.Data)
			}
		case tagMAXV:
			if st.sized(c, 2, 2) {
				hi = binary.LittleEndian.Uint16(c.Data)
			}
		case tagSETP:
			if st.sized(c, 1, 1) {
				bit = int(c.Data[0])
			}
		}
	}
	present := st.m.Remap.Test(name, lo, hi)
	st.Log().Debugf("Feature test %q (%d..%d): %v", name, lo, hi, present)
	if present && bit >= 0 && bit < 32 {
		st.m.Var9DOverlay |= 1 << uint(bit)
	}
}

func (st *moduleState) declare(kind remap.Kind, list []*chunk) error {
	var name string
	f := feature.Invalid
	code, haveCode := uint8(0), false
	fallback := remap.Ignore
	codeTag := tagPROP
	if kind == remap.Variable {
		codeTag = tagRSID
	}
	for _, c := range list {
		switch c.ID {
		case tagNAME:
			if c.Type == chunkText {
				name = string(c.Data)
			}
		case tagFEAT:
			if st.sized(c, 1, 1) {
				f = feature.Feature(c.Data[0])
			}
		case codeTag:
			if st.sized(c, 1, 1) {
				code, haveCode = c.Data[0], true
			}
		case tagFLBK:
			if st.sized(c, 1, 1) {
				fb, ok := fallbacks[c.Data[0]]
				if !ok {
					return errors.Wrapf(ErrCapabilityDeclaration, "%v %q: fallback mode %d", kind, name, c.Data[0])
				}
				fallback = fb
			}
		}
	}
	if name == "" || !f.Valid() || !haveCode {
		return errors.Wrapf(ErrCapabilityDeclaration, "%v %q of %v is incomplete", kind, name, f)
	}
	e, err := st.m.Remap.Declare(kind, f, name, code, fallback)
	if err != nil {
		return errors.Wrapf(ErrCapabilityDeclaration, "%v", err)
	}
	if e.Known {
		st.Log().Debugf("Mapped %v %q of %v to 0x%.2x", kind, name, f, code)
	} else {
		st.Log().Infof("Unknown %v %q of %v mapped to 0x%.2x, fallback %v", kind, name, f, code, fallback)
	}
	return nil
}
