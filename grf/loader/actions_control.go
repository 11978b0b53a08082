package loader

import (
	"github.com/pkg/errors"

	"github.com/mogaika/newgrf_browser/grf/feature"
	"github.com/mogaika/newgrf_browser/grf/ids"
	"github.com/mogaika/newgrf_browser/grf/spec"
	"github.com/mogaika/newgrf_browser/utils"
)

// Action 0x06: sets of u8 param, u8 size (bit 7 adds), ext offset, ended
// by 0xFF. Patches the bytes of the next pseudo record.
func cfgApply(st *moduleState, r *utils.ByteReader) error {
	target := st.next
	records := st.m.container.Records
	if target >= len(records) {
		st.Log().Infof("Nothing to patch at the end of the file")
		return nil
	}
	if !records[target].IsPseudo() {
		st.Log().Infof("Ignoring patch of a real sprite")
		return nil
	}
	data, ok := st.patches[target]
	if !ok {
		data = append([]byte(nil), records[target].Data...)
		st.patches[target] = data
	}

	for {
		param, err := r.ReadU8()
		if err != nil {
			return err
		}
		if param == 0xFF {
			return nil
		}
		size, err := r.ReadU8()
		if err != nil {
			return err
		}
		offset, err := r.ReadExtended()
		if err != nil {
			return err
		}
		add := size&0x80 != 0
		size &= 0x7F

		carry := false
		for i := 0; i < int(size) && int(offset)+i < len(data); i++ {
			value := st.paramValue(param+uint8(i/4), nil)
			if i%4 == 0 {
				carry = false
			}
			b := uint8(value >> (uint(i%4) * 8))
			pos := int(offset) + i
			if add {
				sum := uint(data[pos]) + uint(b)
				if carry {
					sum++
				}
				data[pos] = uint8(sum)
				carry = sum >= 0x100
			} else {
				data[pos] = b
			}
		}
	}
}

// Action 0x10: u8 label. Recorded by the label scan only.
func defineLabel(st *moduleState, r *utils.ByteReader) error {
	id, err := r.ReadU8()
	if err != nil {
		return err
	}
	st.m.labels = append(st.m.labels, label{id: id, record: st.record})
	st.Log().Tracef("Label 0x%.2x", id)
	return nil
}

// findModule returns the first module of the list whose GRFID matches
// under mask, whatever its status.
func (s *session) findModule(grfid, mask uint32) *Module {
	for _, m := range s.modules {
		if m.container != nil && m.GRFID&mask == grfid&mask {
			return m
		}
	}
	return nil
}

// Action 0x07 and 0x09: u8 param, u8 size, u8 condition, value[size],
// u8 records to skip or label.
func skipIf(st *moduleState, r *utils.ByteReader) error {
	param, err := r.ReadU8()
	if err != nil {
		return err
	}
	size, err := r.ReadU8()
	if err != nil {
		return err
	}
	cond, err := r.ReadU8()
	if err != nil {
		return err
	}
	if cond < 2 {
		size = 1
	}

	var value, mask uint32
	switch size {
	case 8:
		if value, err = r.ReadU32(); err != nil {
			return err
		}
		if mask, err = r.ReadU32(); err != nil {
			return err
		}
	case 4, 2, 1:
		if value, err = r.ReadVar(int(size)); err != nil {
			return err
		}
		mask = uint32(1)<<(uint(size)*8) - 1
	default:
		st.Log().Infof("Unsupported test size %d", size)
	}

	if param < 0x80 && int(param) >= st.m.ParamEnd {
		st.Log().Debugf("Param 0x%.2x undefined, skipping test", param)
		return nil
	}

	var result bool
	switch {
	case cond >= 0x0B:
		l := spec.Label(swap32(value))
		var found bool
		switch cond {
		case 0x0B, 0x0C:
			found = st.registry.CargoByLabel(l) != spec.InvalidCargo
		case 0x0D, 0x0E:
			_, found = st.registry.RailTypeByLabel(l, true)
		case 0x0F, 0x10:
			_, found = st.registry.RoadTypeByLabel(l, false, true)
		case 0x11, 0x12:
			_, found = st.registry.RoadTypeByLabel(l, true, true)
		default:
			st.Log().Infof("Unsupported label test 0x%.2x", cond)
			return nil
		}
		result = found == (cond%2 == 1)
	case param == 0x88:
		other := st.findModule(value, mask)
		if cond != 0x0A && other == nil {
			st.Log().Debugf("GRFID %s is not present, skipping test", GRFIDString(value))
			return nil
		}
		switch cond {
		case 0x06:
			result = other.Status == StatusActivated
		case 0x07:
			result = other.Status != StatusActivated
		case 0x08:
			result = other.Status == StatusInitialised
		case 0x09:
			result = other.Status == StatusActivated || other.Status == StatusInitialised
		case 0x0A:
			result = other == nil || other.Disabled()
		default:
			st.Log().Infof("Unsupported GRFID test 0x%.2x", cond)
			return nil
		}
	default:
		v := st.paramValue(param, &value)
		switch cond {
		case 0x00:
			result = v&(1<<(value&0x1F)) != 0
		case 0x01:
			result = v&(1<<(value&0x1F)) == 0
		case 0x02:
			result = v&mask == value
		case 0x03:
			result = v&mask != value
		case 0x04:
			result = v&mask < value
		case 0x05:
			result = v&mask > value
		default:
			st.Log().Infof("Unsupported test 0x%.2x", cond)
			return nil
		}
	}

	if !result {
		st.Log().Tracef("Not skipping, test was false")
		return nil
	}

	n, err := r.ReadU8()
	if err != nil {
		return err
	}
	if l, ok := st.m.findLabel(n, st.record); ok {
		st.Log().Debugf("Jumping to label 0x%.2x at record %d", n, l.record)
		st.next = l.record + 1
		return nil
	}
	st.Log().Tracef("Skipping %d records, test was true", n)
	st.skip = int(n)
	if n == 0 {
		st.skip = -1
		if !st.m.Loaded(st.stage) {
			st.disableWith(&ModuleError{Severity: SeverityError, Reason: "skipped before GRF info", Message: "module skipped all records before its GRF info", Record: st.record, Offset: st.offset})
		}
	}
	return nil
}

// findLabel picks the first label with id after record, or the first one
// in the file.
func (m *Module) findLabel(id uint8, record int) (label, bool) {
	var choice label
	found := false
	for _, l := range m.labels {
		if l.id != id {
			continue
		}
		if !found {
			choice, found = l, true
		}
		if l.record > record {
			return l, true
		}
	}
	return choice, found
}

// Action 0x0B message ids.
var loadErrorMessages = []string{
	"requires TTDPatch",
	"requires the DOS version",
	"requires the Windows version",
	"switch %s must be unset",
	"invalid parameter %s",
	"must be loaded before %s",
	"must be loaded after %s",
	"requires a newer loader version",
}

// Action 0x0B: u8 severity, u8 lang, u8 message id, [custom message],
// data, params.
func loadError(st *moduleState, r *utils.ByteReader) error {
	m := st.m
	if m.Error != nil {
		return nil
	}
	severity, err := r.ReadU8()
	if err != nil {
		return err
	}
	lang, err := r.ReadU8()
	if err != nil {
		return err
	}
	id, err := r.ReadU8()
	if err != nil {
		return err
	}
	if !englishLanguage(lang, m.Version) {
		return nil
	}
	if severity&0x80 == 0 && st.stage == StageInit {
		st.Log().Debugf("Skipping non-fatal load error in stage %v", st.stage)
		return nil
	}
	severity &= 0x7F

	fatal := false
	if severity > uint8(SeverityFatal) {
		st.Log().Infof("Invalid severity %d, using error", severity)
		severity = uint8(SeverityError)
	} else if Severity(severity) == SeverityFatal {
		fatal = true
	}

	me := &ModuleError{
		Severity:  Severity(severity),
		Reason:    ErrModuleError.Error(),
		MessageID: id,
		Record:    st.record,
		Offset:    st.offset,
	}
	if fatal {
		me.Reason = ErrFatal.Error()
	}
	valid := true
	if int(id) >= len(loadErrorMessages) && id != 0xFF {
		st.Log().Infof("Invalid message id %d", id)
		valid = false
	} else if r.Remaining() <= 1 {
		st.Log().Infof("No message data supplied")
		valid = false
	}

	if valid {
		if id == 0xFF {
			if r.HasData() {
				raw, err := r.ReadString()
				if err != nil {
					return err
				}
				me.Custom = st.decodeText(raw)
			}
			me.Message = me.Custom
		} else {
			me.Message = loadErrorMessages[id]
		}
		if r.HasData() {
			raw, err := r.ReadString()
			if err != nil {
				return err
			}
			me.Data = st.decodeText(raw)
		}
		for i := 0; i < 2 && r.HasData(); i++ {
			n, err := r.ReadU8()
			if err != nil {
				return err
			}
			me.Params = append(me.Params, m.Param(n))
		}
	}

	if fatal {
		if !valid {
			me.Message = "fatal error"
		}
		st.disableWith(me)
		return nil
	}
	if valid {
		m.Error = me
		st.Log().Infof("Module reports %v: %s %s", me.Severity, me.Message, me.Data)
	}
	return nil
}

// englishLanguage tells whether a language id of Action 0x0B includes
// the language the loader shows.
func englishLanguage(lang uint8, version uint8) bool {
	if version >= 7 {
		return lang == 0x7F || lang == 0x01
	}
	return lang == 0 || lang&0x03 != 0
}

// Action 0x0D: u8 target, u8 operation, u8 src1, u8 src2, [u32 data].
func paramSet(st *moduleState, r *utils.ByteReader) error {
	target, err := r.ReadU8()
	if err != nil {
		return err
	}
	oper, err := r.ReadU8()
	if err != nil {
		return err
	}
	b1, err := r.ReadU8()
	if err != nil {
		return err
	}
	b2, err := r.ReadU8()
	if err != nil {
		return err
	}
	src1, src2 := uint32(b1), uint32(b2)
	var data uint32
	if r.Has(4) {
		if data, err = r.ReadU32(); err != nil {
			return err
		}
	}

	m := st.m
	if oper&0x80 != 0 {
		if target < 0x80 && int(target) < m.ParamEnd {
			st.Log().Tracef("Param 0x%.2x already defined, skipping", target)
			return nil
		}
		oper &= 0x7F
	}

	if src2 == 0xFE {
		switch {
		case data == 0x0000FFFF:
			src1 = st.patchVariable(uint8(src1))
		case data&0xFF == 0xFF:
			v, ok, err := st.resourceManagement(target, uint8(src1), feature.Feature(data>>8), uint16(data>>16))
			if err != nil || !ok {
				return err
			}
			src1 = v
		default:
			other := st.findModule(data, 0xFFFFFFFF)
			switch {
			case other == nil || other.Disabled():
				src1 = 0
			case src1 == 0xFE:
				src1 = uint32(other.Version)
			default:
				src1 = other.Param(uint8(src1))
			}
		}
	} else {
		if src1 == 0xFF {
			src1 = data
		} else {
			src1 = st.paramValue(uint8(src1), nil)
		}
		if src2 == 0xFF {
			src2 = data
		} else {
			src2 = st.paramValue(uint8(src2), nil)
		}
	}

	res, ok := paramOperation(oper, src1, src2)
	if !ok {
		st.Log().Infof("Unknown operation 0x%.2x, skipping", oper)
		return nil
	}

	switch target {
	case 0x8E:
		m.TrainPitch = res
	case 0x8F:
		st.setRailCostMultipliers(res)
	case 0x93, 0x94, 0x95, 0x96, 0x97, 0x99, 0x9F:
		st.Log().Debugf("Skipping unimplemented target 0x%.2x", target)
	case 0x9E:
		if res&miscTrainWidth32 != 0 {
			m.TrainWidth = 32
		} else {
			m.TrainWidth = defaultTrainWidth
		}
		res &^= miscTrainWidth32
		if m.Static {
			st.miscFeatures = st.miscFeatures&^miscSecondRockyTiles | res&miscSecondRockyTiles
		} else {
			st.miscFeatures = res
		}
	default:
		if target < 0x80 {
			m.SetParam(target, res)
		} else {
			st.Log().Debugf("Skipping unknown target 0x%.2x", target)
		}
	}
	return nil
}

func paramOperation(oper uint8, src1, src2 uint32) (uint32, bool) {
	s1, s2 := int32(src1), int32(src2)
	switch oper {
	case 0x00:
		return src1, true
	case 0x01:
		return src1 + src2, true
	case 0x02:
		return src1 - src2, true
	case 0x03:
		return src1 * src2, true
	case 0x04:
		return uint32(s1 * s2), true
	case 0x05:
		if s2 < 0 {
			return src1 >> uint(-s2), true
		}
		return src1 << (src2 & 0x1F), true
	case 0x06:
		if s2 < 0 {
			return uint32(s1 >> uint(-s2)), true
		}
		return uint32(s1 << (src2 & 0x1F)), true
	case 0x07:
		return src1 & src2, true
	case 0x08:
		return src1 | src2, true
	case 0x09:
		if src2 == 0 {
			return src1, true
		}
		return src1 / src2, true
	case 0x0A:
		if src2 == 0 {
			return src1, true
		}
		return uint32(s1 / s2), true
	case 0x0B:
		if src2 == 0 {
			return src1, true
		}
		return src1 % src2, true
	case 0x0C:
		if src2 == 0 {
			return src1, true
		}
		return uint32(s1 % s2), true
	}
	return 0, false
}

// resourceManagement runs a GRM request of Action 0x0D. ok is unset when
// the action must be ignored.
func (st *moduleState) resourceManagement(target, op uint8, f feature.Feature, count uint16) (uint32, bool, error) {
	grm := st.ids.GRM
	switch st.stage {
	case StageReservation:
		if f == feature.GlobalVars && op == ids.OpReserve {
			if _, err := grm.ReserveSprites(st.m.GRFID, st.record, count); err != nil {
				return 0, false, err
			}
		}
		return 0, true, nil
	case StageActivation:
		switch {
		case f.IsVehicle():
			if st.ids.Dynamic(f) {
				if op == ids.OpCheck || op == ids.OpMark {
					return st.m.Param(target), true, nil
				}
				return 0, true, nil
			}
			v, err := grm.Perform(grm.Pool(f), st.m.GRFID, op, count, st.m.Param(target))
			return v, err == nil, err
		case f == feature.GlobalVars:
			switch op {
			case ids.OpReserve:
				first, _ := grm.ReservedSprites(st.m.GRFID, st.record)
				return first, true, nil
			case ids.OpFind:
				return st.sprites.Next(), true, nil
			}
			st.Log().Infof("Unsupported resource operation %d for sprites", op)
			return 0, false, nil
		case f == feature.Cargoes:
			v, err := grm.Perform(grm.Pool(f), st.m.GRFID, op, count, st.m.Param(target))
			return v, err == nil, err
		}
		st.Log().Infof("Unsupported resource feature %v", f)
		return 0, false, nil
	}
	return 0, true, nil
}

// Bits of global variable 0x1E.
const (
	miscTrainWidth32     = 1 << 3
	miscSecondRockyTiles = 1 << 6

	defaultTrainWidth = 29
)

func (st *moduleState) setRailCostMultipliers(v uint32) {
	set := func(id uint16, mult uint32) {
		if rti := st.registry.RailTypes.Spec(id); rti != nil {
			rti.CostMultiplier = uint16(mult & 0xFF)
		}
	}
	set(0, v)
	set(1, v>>8)
	set(2, v>>16)
	set(3, v>>16)
}

func (st *moduleState) railCostMultipliers() uint32 {
	get := func(id uint16) uint32 {
		if rti := st.registry.RailTypes.Spec(id); rti != nil {
			return uint32(rti.CostMultiplier & 0xFF)
		}
		return 0
	}
	return get(0) | get(1)<<8 | get(3)<<16
}

// safeParamSet allows static modules to set their own parameters and
// the safe feature bits only.
func safeParamSet(st *moduleState, r *utils.ByteReader) error {
	target, err := r.ReadU8()
	if err != nil {
		return err
	}
	if target < 0x80 || target == 0x9E {
		return nil
	}
	return unsafe(st, r)
}

// Action 0x0E: u8 count, u32 GRFIDs.
func readGRFIDs(r *utils.ByteReader) ([]uint32, error) {
	n, err := r.ReadU8()
	if err != nil {
		return nil, err
	}
	list := make([]uint32, 0, n)
	for i := 0; i < int(n); i++ {
		grfid, err := r.ReadU32()
		if err != nil {
			return nil, err
		}
		list = append(list, grfid)
	}
	return list, nil
}

func safeInhibit(st *moduleState, r *utils.ByteReader) error {
	list, err := readGRFIDs(r)
	if err != nil {
		return err
	}
	for _, grfid := range list {
		if grfid != st.m.GRFID {
			return unsafe(st, r)
		}
	}
	return nil
}

func inhibit(st *moduleState, r *utils.ByteReader) error {
	list, err := readGRFIDs(r)
	if err != nil {
		return err
	}
	for _, grfid := range list {
		other := st.findModule(grfid, 0xFFFFFFFF)
		if other == nil || other == st.m {
			continue
		}
		st.Log().Infof("Deactivating module %s", other.Path)
		st.disableModule(other, &ModuleError{
			Severity: SeverityError,
			Reason:   ErrForcefullyDisabled.Error(),
			Message:  errors.Wrapf(ErrForcefullyDisabled, "by %s", st.m.Path).Error(),
			Data:     st.m.Name,
			Record:   st.record,
			Offset:   st.offset,
		})
	}
	return nil
}
