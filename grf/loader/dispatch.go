package loader

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/mogaika/newgrf_browser/utils"
)

// Action is the first byte of a pseudo record.
type Action uint8

const (
	ActionPropertyEdit  Action = 0x00
	ActionSpriteSets    Action = 0x01
	ActionSpriteGroup   Action = 0x02
	ActionMapIDs        Action = 0x03
	ActionNames         Action = 0x04
	ActionGraphicsNew   Action = 0x05
	ActionCfgApply      Action = 0x06
	ActionSkipIf        Action = 0x07
	ActionGRFInfo       Action = 0x08
	ActionSkipIfInstall Action = 0x09
	ActionReplace       Action = 0x0A
	ActionLoadError     Action = 0x0B
	ActionComment       Action = 0x0C
	ActionParamSet      Action = 0x0D
	ActionInhibit       Action = 0x0E
	ActionTownNames     Action = 0x0F
	ActionLabel         Action = 0x10
	ActionSounds        Action = 0x11
	ActionFontGlyphs    Action = 0x12
	ActionTranslate     Action = 0x13
	ActionStaticInfo    Action = 0x14
)

const actionCount = 0x15

type handler func(st *moduleState, r *utils.ByteReader) error

// handlerFor returns the handler of an action in a stage, nil when the
// action is ignored.
func handlerFor(stage Stage, action Action) handler {
	switch action {
	case ActionPropertyEdit:
		switch stage {
		case StageSafetyScan:
			return safeChangeInfo
		case StageReservation:
			return reserveChangeInfo
		case StageActivation:
			return featureChangeInfo
		}
	case ActionSpriteSets:
		if stage == StageActivation {
			return newSpriteSet
		}
		return skipSpriteSets
	case ActionSpriteGroup:
		if stage == StageActivation {
			return newSpriteGroup
		}
	case ActionMapIDs:
		switch stage {
		case StageSafetyScan:
			return unsafe
		case StageActivation:
			return mapSpriteGroup
		}
	case ActionNames:
		if stage == StageActivation {
			return newNames
		}
	case ActionGraphicsNew:
		if stage == StageActivation {
			return graphicsNew
		}
		return skipGraphicsNew
	case ActionCfgApply:
		if stage >= StageInit {
			return cfgApply
		}
	case ActionSkipIf:
		if stage >= StageReservation {
			return skipIf
		}
	case ActionGRFInfo:
		switch stage {
		case StageFileScan:
			return scanInfo
		case StageInit, StageReservation, StageActivation:
			return grfInfo
		}
	case ActionSkipIfInstall:
		if stage >= StageInit {
			return skipIf
		}
	case ActionReplace:
		if stage == StageActivation {
			return spriteReplace
		}
		return skipSpriteReplace
	case ActionLoadError:
		if stage >= StageInit {
			return loadError
		}
	case ActionComment:
		if stage == StageInit || stage == StageActivation {
			return comment
		}
	case ActionParamSet:
		switch stage {
		case StageSafetyScan:
			return safeParamSet
		case StageInit, StageReservation, StageActivation:
			return paramSet
		}
	case ActionInhibit:
		switch stage {
		case StageSafetyScan:
			return safeInhibit
		case StageInit, StageReservation, StageActivation:
			return inhibit
		}
	case ActionTownNames:
		switch stage {
		case StageSafetyScan:
			return unsafe
		case StageInit:
			return townNames
		}
	case ActionLabel:
		if stage == StageLabelScan {
			return defineLabel
		}
	case ActionSounds:
		switch stage {
		case StageSafetyScan:
			return unsafe
		case StageInit, StageActivation:
			return sounds
		}
		return skipSounds
	case ActionFontGlyphs:
		if stage == StageActivation {
			return fontGlyphs
		}
		return skipFontGlyphs
	case ActionTranslate:
		if stage == StageActivation {
			return translateStrings
		}
	case ActionStaticInfo:
		switch stage {
		case StageFileScan:
			return staticInfo
		case StageInit:
			return capabilities
		}
	}
	return nil
}

// load runs the records of a module through the current stage.
func (s *session) load(m *Module) {
	m.resetParams()
	st := newModuleState(s, m)
	records := m.container.Records

	for st.next < len(records) && st.skip != -1 {
		rec := &records[st.next]
		st.record = st.next
		st.offset = rec.Offset
		st.next++

		if c := st.pending; c != nil {
			i := c.done
			c.done++
			if c.done >= c.count {
				st.pending = nil
			}
			if err := c.fn(rec, i); err != nil {
				st.disable(err)
			}
			continue
		}
		if st.skip > 0 {
			st.skip--
			continue
		}
		if !rec.IsPseudo() {
			st.disable(errors.Wrapf(ErrUnexpectedSprite, "%v", rec))
			continue
		}

		data := rec.Data
		if patched, ok := st.patches[st.record]; ok {
			data = patched
		}
		if err := st.decode(data); err != nil {
			st.disable(err)
		}
	}
	if st.pending != nil && !m.Disabled() {
		st.Log().Warnf("File ended with %d records missing", st.pending.count-st.pending.done)
	}
}

func (st *moduleState) decode(data []byte) error {
	r := st.reader("pseudo", data)
	r.SetBase(int(st.offset))
	b, err := r.ReadU8()
	if err != nil {
		st.Log().Debugf("Empty pseudo record")
		return nil
	}
	action := Action(b)
	if action >= actionCount {
		st.Log().Infof("Unknown special sprite action 0x%.2x, skipping", b)
		return nil
	}
	h := handlerFor(st.stage, action)
	if h == nil {
		st.Log().Tracef("Ignoring action 0x%.2x", b)
		return nil
	}
	if err := h(st, r); err != nil {
		return errors.Wrapf(err, "action 0x%.2x", b)
	}
	return nil
}

// disable disables the module being loaded and stops processing it.
func (st *moduleState) disable(err error) {
	sev := SeverityError
	if IsFatal(err) {
		sev = SeverityFatal
	}
	st.disableWith(&ModuleError{
		Severity: sev,
		Reason:   errors.Cause(err).Error(),
		Message:  err.Error(),
		Record:   st.record,
		Offset:   st.offset,
	})
}

func (st *moduleState) disableWith(me *ModuleError) {
	st.disableModule(st.m, me)
	st.skip = -1
	st.pending = nil
	st.lastEngines = nil
}

// unsafe marks modules doing things static modules must not do.
func unsafe(st *moduleState, r *utils.ByteReader) error {
	st.m.Unsafe = true
	st.skip = -1
	return nil
}

func comment(st *moduleState, r *utils.ByteReader) error {
	if st.log.Logger.IsLevelEnabled(logrus.TraceLevel) {
		st.Log().Tracef("Comment: %s", r.Rest())
	}
	return nil
}
