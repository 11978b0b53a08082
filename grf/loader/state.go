package loader

import (
	"github.com/sirupsen/logrus"
	"golang.org/x/text/encoding/charmap"

	"github.com/mogaika/newgrf_browser/config"
	"github.com/mogaika/newgrf_browser/grf"
	"github.com/mogaika/newgrf_browser/grf/feature"
	"github.com/mogaika/newgrf_browser/grf/ids"
	"github.com/mogaika/newgrf_browser/grf/props"
	"github.com/mogaika/newgrf_browser/grf/remap"
	"github.com/mogaika/newgrf_browser/grf/spec"
	"github.com/mogaika/newgrf_browser/grf/spritegroup"
	"github.com/mogaika/newgrf_browser/grf/sprites"
	"github.com/mogaika/newgrf_browser/grf/text"
	"github.com/mogaika/newgrf_browser/utils"
)

// session is the state shared by all modules of one load.
type session struct {
	settings config.Settings
	climate  uint8
	cm       *charmap.Charmap
	logger   *logrus.Logger

	stage   Stage
	modules []*Module

	registry  *spec.Registry
	ids       *ids.Manager
	arena     *spritegroup.Arena
	sprites   *sprites.Table
	strings   *text.Table
	townNames *text.TownNames

	// Bits of global variable 0x9E set by modules
	miscFeatures uint32
}

func (s *session) module(grfid uint32) *Module {
	for _, m := range s.modules {
		if m.GRFID == grfid && m.Status != StatusNotFound {
			return m
		}
	}
	return nil
}

// spriteSet is an Action 1 set: a span of sprite ids.
type spriteSet struct {
	first uint32
	count uint16
}

// consumer takes the records following an action. It is called for
// exactly count records, in order.
type consumer struct {
	count int
	done  int
	fn    func(rec *grf.Record, i int) error
}

// moduleState is the transient state of one module during one stage.
type moduleState struct {
	*session
	m *Module

	// index of the record being processed, next record to process
	record int
	next   int
	offset int64
	// skip is the number of records to swallow, -1 for the rest of the file
	skip int

	pending *consumer
	// patches are the Action 6 edits of pseudo records, keyed by record index
	patches map[int][]byte

	spriteSets  map[feature.Feature]map[uint16]spriteSet
	builder     *spritegroup.Builder
	lastEngines []uint16
	lastFeature feature.Feature

	log *logrus.Entry
}

func newModuleState(s *session, m *Module) *moduleState {
	st := &moduleState{
		session:     s,
		m:           m,
		next:        1,
		patches:     make(map[int][]byte),
		spriteSets:  make(map[feature.Feature]map[uint16]spriteSet),
		lastFeature: feature.Invalid,
	}
	if s.stage == StageActivation {
		st.builder = spritegroup.NewBuilder(s.arena)
	}
	st.log = m.log.WithField("stage", s.stage.String())
	return st
}

// decodeText turns a module string into UTF-8.
func (st *moduleState) decodeText(raw []byte) string {
	return text.Decode(raw, st.cm)
}

func (st *moduleState) reader(kind string, data []byte) *utils.ByteReader {
	r := utils.NewByteReader(kind, data)
	r.Warn = st.Log().Warnf
	return r
}

// props.Env and spritegroup.Env

func (st *moduleState) GRFID() uint32            { return st.m.GRFID }
func (st *moduleState) GRFVersion() uint8        { return st.m.Version }
func (st *moduleState) File() *spec.GRFFile      { return st.m.File }
func (st *moduleState) Registry() *spec.Registry { return st.registry }
func (st *moduleState) IDs() *ids.Manager        { return st.ids }
func (st *moduleState) Reserving() bool          { return st.stage == StageReservation }
func (st *moduleState) Remap() *remap.Table      { return st.m.Remap }

func (st *moduleState) Log() *logrus.Entry {
	return st.log.WithField("line", st.record)
}

func (st *moduleState) SpriteSet(f feature.Feature, set uint16) (uint32, uint16, bool) {
	ss, ok := st.spriteSets[f][set]
	return ss.first, ss.count, ok
}

func (st *moduleState) HasSpriteSets(f feature.Feature) bool {
	return len(st.spriteSets[f]) != 0
}

func (st *moduleState) TranslateCargo(cargo uint8) spec.CargoID {
	return props.TranslateCargo(st, cargo, false)
}

func (st *moduleState) addSpriteSet(f feature.Feature, set uint16, first uint32, count uint16) {
	if st.spriteSets[f] == nil {
		st.spriteSets[f] = make(map[uint16]spriteSet)
	}
	st.spriteSets[f][set] = spriteSet{first: first, count: count}
}

// consume hands the next count records to fn.
func (st *moduleState) consume(count int, fn func(rec *grf.Record, i int) error) {
	if count <= 0 {
		return
	}
	st.pending = &consumer{count: count, fn: fn}
}

// bindSprites binds the next count records to sprite id(i).
func (st *moduleState) bindSprites(count int, id func(i int) uint32) {
	st.consume(count, func(rec *grf.Record, i int) error {
		src := sprites.Source{File: st.m.Path, Record: rec.Index}
		src.Ref, src.HasRef = rec.SpriteRef()
		st.sprites.Set(id(i), st.m.GRFID, src)
		return nil
	})
}
