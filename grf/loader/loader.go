// Package loader runs content modules through the loading stages and
// collects what they define.
//
// Every stage is a full pass over all modules in list order. Modules are
// read record by record, each pseudo record holds one action which is
// routed to the handler of the current stage. Problems disable the
// module that caused them, other modules keep loading.
package loader

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/mogaika/newgrf_browser/config"
	"github.com/mogaika/newgrf_browser/grf"
	"github.com/mogaika/newgrf_browser/grf/ids"
	"github.com/mogaika/newgrf_browser/grf/props"
	"github.com/mogaika/newgrf_browser/grf/remap"
	"github.com/mogaika/newgrf_browser/grf/spec"
	"github.com/mogaika/newgrf_browser/grf/spritegroup"
	"github.com/mogaika/newgrf_browser/grf/sprites"
	"github.com/mogaika/newgrf_browser/grf/text"
)

type Stage int

const (
	StageFileScan Stage = iota
	StageLabelScan
	StageSafetyScan
	StageInit
	StageReservation
	StageActivation
	stageCount
)

func (s Stage) String() string {
	switch s {
	case StageFileScan:
		return "filescan"
	case StageLabelScan:
		return "labelscan"
	case StageSafetyScan:
		return "safetyscan"
	case StageInit:
		return "init"
	case StageReservation:
		return "reserve"
	case StageActivation:
		return "activation"
	}
	return fmt.Sprintf("stage(%d)", int(s))
}

func (s Stage) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Source opens module files by the path of the module list.
type Source interface {
	Open(path string) (io.ReadCloser, error)
}

// Progress is reported before every module of every stage.
type Progress struct {
	Session uuid.UUID
	Stage   Stage
	Module  int
	Modules int
	Path    string
}

// Fraction of the whole load done.
func (p Progress) Fraction() float32 {
	if p.Modules == 0 {
		return 1
	}
	return (float32(p.Stage) + float32(p.Module)/float32(p.Modules)) / float32(stageCount)
}

// Result is everything a load produced.
type Result struct {
	Session   uuid.UUID
	Settings  config.Settings
	Registry  *spec.Registry
	IDs       *ids.Manager       `json:"-" yaml:"-"`
	Arena     *spritegroup.Arena `json:"-" yaml:"-"`
	Sprites   *sprites.Table     `json:"-" yaml:"-"`
	Strings   *text.Table        `json:"-" yaml:"-"`
	TownNames *text.TownNames    `json:"-" yaml:"-"`
	Modules   []*Module
}

// Module returns the loaded module with a GRFID.
func (r *Result) Module(grfid uint32) *Module {
	for _, m := range r.Modules {
		if m.GRFID == grfid && m.Status != StatusNotFound {
			return m
		}
	}
	return nil
}

type Loader struct {
	settings config.Settings
	source   Source
	logger   *logrus.Logger
	progress func(Progress)
}

// New creates a loader. A nil logger logs to the standard logrus logger.
func New(settings config.Settings, source Source, logger *logrus.Logger) *Loader {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Loader{settings: settings, source: source, logger: logger}
}

func (l *Loader) OnProgress(fn func(Progress)) {
	l.progress = fn
}

func (l *Loader) newSession() (*session, error) {
	climate, err := l.settings.ClimateID()
	if err != nil {
		return nil, err
	}
	s := &session{
		settings:  l.settings,
		climate:   climate,
		cm:        config.GetEncoding(),
		logger:    l.logger,
		registry:  spec.NewRegistry(climate, l.settings.Limits),
		ids:       ids.NewManager(l.settings.DynamicEngines, l.settings.Limits),
		arena:     spritegroup.NewArena(),
		sprites:   sprites.NewTable(l.settings.SpriteBase),
		townNames: text.NewTownNames(),
	}
	s.strings = text.NewTable(s.cm)
	s.ids.GRM.SpriteLimit += s.sprites.Base()
	return s, nil
}

// open reads the containers of the module list. Modules that cannot be
// read keep the NotFound status.
func (l *Loader) open(s *session, list []config.ModuleEntry) {
	for _, entry := range list {
		m := newModule(entry)
		m.log = l.logger.WithField("grf", m.Path)
		s.modules = append(s.modules, m)

		f, err := l.read(m.Path)
		if err != nil {
			m.Status = StatusNotFound
			m.Error = &ModuleError{Severity: SeverityError, Reason: errors.Cause(err).Error(), Message: err.Error()}
			m.log.Warnf("Failed to open module: %v", err)
			continue
		}
		m.container = f
	}
}

func (l *Loader) read(path string) (*grf.File, error) {
	if l.source == nil {
		return nil, errors.Errorf("no module source")
	}
	rc, err := l.source.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to open %q", path)
	}
	defer rc.Close()
	return grf.Open(path, rc)
}

// Scan reads the metadata of modules without loading them.
func (l *Loader) Scan(ctx context.Context, list []config.ModuleEntry) ([]*Module, error) {
	s, err := l.newSession()
	if err != nil {
		return nil, err
	}
	l.open(s, list)
	if err := l.runStage(ctx, uuid.Nil, s, StageFileScan); err != nil {
		return nil, err
	}
	return s.modules, nil
}

// Load runs every stage over the module list and returns the registries
// built. Only a cancelled context or bad settings return an error,
// problems of modules are recorded in their status.
func (l *Loader) Load(ctx context.Context, list []config.ModuleEntry) (*Result, error) {
	s, err := l.newSession()
	if err != nil {
		return nil, err
	}
	id := uuid.New()
	l.open(s, list)

	for stage := StageFileScan; stage < stageCount; stage++ {
		switch stage {
		case StageReservation:
			s.ids.GRM.NextSprite = s.sprites.Next()
		case StageActivation:
			s.sprites.ReserveUpTo(s.ids.GRM.NextSprite)
		}
		if err := l.runStage(ctx, id, s, stage); err != nil {
			return nil, err
		}
	}
	s.finalise()

	return &Result{
		Session:   id,
		Settings:  l.settings,
		Registry:  s.registry,
		IDs:       s.ids,
		Arena:     s.arena,
		Sprites:   s.sprites,
		Strings:   s.strings,
		TownNames: s.townNames,
		Modules:   s.modules,
	}, nil
}

func (l *Loader) runStage(ctx context.Context, id uuid.UUID, s *session, stage Stage) error {
	s.stage = stage
	l.logger.Debugf("Loading stage %v", stage)
	for i, m := range s.modules {
		if err := ctx.Err(); err != nil {
			return errors.Wrapf(err, "Load cancelled in stage %v", stage)
		}
		if l.progress != nil {
			l.progress(Progress{Session: id, Stage: stage, Module: i, Modules: len(s.modules), Path: m.Path})
		}
		if !s.eligible(m) {
			continue
		}
		s.prepare(m)
		s.load(m)
		s.complete(m)
	}
	if stage == StageFileScan {
		s.checkDuplicates()
	}
	return nil
}

// eligible tells whether a module takes part in the current stage.
func (s *session) eligible(m *Module) bool {
	if m.Disabled() || m.container == nil {
		return false
	}
	switch s.stage {
	case StageSafetyScan:
		return m.Static
	case StageReservation:
		return m.Status == StatusInitialised
	case StageActivation:
		return m.reserved
	}
	return true
}

func (s *session) prepare(m *Module) {
	switch s.stage {
	case StageLabelScan:
		m.labels = nil
		m.File = spec.NewGRFFile(m.GRFID, m.Path)
		m.Remap = remap.NewTable(props.Catalog{})
		m.File.Version = m.Version
	case StageInit:
		m.Status = StatusUnknown
	}
}

func (s *session) complete(m *Module) {
	switch s.stage {
	case StageSafetyScan:
		if m.Unsafe && !m.Disabled() {
			s.disableModule(m, &ModuleError{
				Severity: SeverityError,
				Reason:   ErrUnsafeForStatic.Error(),
				Message:  fmt.Sprintf("%v: module changes the state of other modules", ErrUnsafeForStatic),
			})
		}
	case StageReservation:
		if !m.Disabled() {
			m.reserved = true
		}
	case StageActivation:
		m.reserved = false
	}
}

// checkDuplicates disables later modules reusing a GRFID.
func (s *session) checkDuplicates() {
	seen := make(map[uint32]*Module)
	for _, m := range s.modules {
		if m.Disabled() || m.container == nil {
			continue
		}
		if first, ok := seen[m.GRFID]; ok {
			s.disableModule(m, &ModuleError{
				Severity: SeverityError,
				Reason:   ErrDuplicateGRFID.Error(),
				Message:  fmt.Sprintf("%v %s, already used by %s", ErrDuplicateGRFID, GRFIDString(m.GRFID), first.Path),
			})
			continue
		}
		seen[m.GRFID] = m
	}
}

// disableModule marks a module disabled. The first error recorded by the
// loader is kept unless a fatal one replaces it.
func (s *session) disableModule(m *Module, me *ModuleError) {
	if m.Status == StatusDisabled && m.Error != nil && m.Error.Severity >= me.Severity {
		return
	}
	m.Status = StatusDisabled
	m.Error = me
	m.reserved = false
	if m.log != nil {
		m.log.WithField("line", me.Record).Errorf("Module disabled: %s", me.Message)
	}
}
