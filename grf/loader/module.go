package loader

import (
	"fmt"
	"strconv"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/mogaika/newgrf_browser/config"
	"github.com/mogaika/newgrf_browser/grf"
	"github.com/mogaika/newgrf_browser/grf/remap"
	"github.com/mogaika/newgrf_browser/grf/spec"
)

// MaxParams is the number of parameter registers of a module.
const MaxParams = 0x80

type Status int

const (
	StatusUnknown Status = iota
	StatusDisabled
	StatusNotFound
	StatusInitialised
	StatusActivated
)

func (s Status) String() string {
	switch s {
	case StatusUnknown:
		return "unknown"
	case StatusDisabled:
		return "disabled"
	case StatusNotFound:
		return "not found"
	case StatusInitialised:
		return "initialised"
	case StatusActivated:
		return "activated"
	}
	return fmt.Sprintf("status(%d)", int(s))
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

type Severity uint8

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
	SeverityFatal
)

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityFatal:
		return "fatal"
	}
	return fmt.Sprintf("severity(%d)", uint8(s))
}

func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// ModuleError is the error record shown for a module. It is either the
// reason the loader disabled it or a message the module raised itself.
type ModuleError struct {
	Severity Severity
	// Reason is the error class, Message the full description
	Reason  string
	Message string
	Record  int
	Offset  int64

	// Set by Action 0x0B
	MessageID uint8    `json:",omitempty" yaml:",omitempty"`
	Custom    string   `json:",omitempty" yaml:",omitempty"`
	Data      string   `json:",omitempty" yaml:",omitempty"`
	Params    []uint32 `json:",omitempty" yaml:",omitempty"`
}

func (e *ModuleError) Error() string {
	return fmt.Sprintf("%v at record %d (offset 0x%x): %s", e.Severity, e.Record, e.Offset, e.Message)
}

// ParamInfo describes one parameter from the static info of a module.
type ParamInfo struct {
	Number  uint32
	Name    map[uint8]string `json:",omitempty" yaml:",omitempty"`
	Desc    map[uint8]string `json:",omitempty" yaml:",omitempty"`
	Type    uint8
	Min     uint32
	Max     uint32
	Default uint32
	// Bits of the parameter used by bool and masked parameters
	FirstBit uint8
	NumBits  uint8
	Values   map[uint32]map[uint8]string `json:",omitempty" yaml:",omitempty"`
}

// StaticInfo is the metadata a module publishes with Action 0x14.
type StaticInfo struct {
	Name       map[uint8]string `json:",omitempty" yaml:",omitempty"`
	Desc       map[uint8]string `json:",omitempty" yaml:",omitempty"`
	URL        map[uint8]string `json:",omitempty" yaml:",omitempty"`
	NumParams  uint8
	Palette    uint8
	Blitter    uint8
	Version    uint32
	MinVersion uint32
	Params     []*ParamInfo `json:",omitempty" yaml:",omitempty"`
}

func (si *StaticInfo) param(n uint32) *ParamInfo {
	for _, p := range si.Params {
		if p.Number == n {
			return p
		}
	}
	p := &ParamInfo{Number: n, Max: 0xFFFFFFFF, NumBits: 32}
	si.Params = append(si.Params, p)
	return p
}

// Module is one content module of the load list and everything the
// loader learned about it.
type Module struct {
	Path   string
	GRFID  uint32
	Static bool

	Version     uint8
	Name        string
	Description string
	Info        StaticInfo

	Status Status
	Error  *ModuleError `json:",omitempty" yaml:",omitempty"`
	// Unsafe modules change state that static modules must not touch
	Unsafe bool
	// Invalid modules have a bad version banner
	Invalid bool
	// System modules have a GRFID starting with 0xFF
	System bool

	// Params as configured, ParamEnd is one past the highest defined one
	Params   [MaxParams]uint32 `json:"-" yaml:"-"`
	ParamEnd int
	// Configured copies of Params and ParamEnd, restored every stage
	config    [MaxParams]uint32
	configEnd int

	File  *spec.GRFFile
	Remap *remap.Table `json:"-" yaml:"-"`

	// Var9DOverlay is the feature test bitmask of global variable 0x1D
	Var9DOverlay uint32
	TrainPitch   uint32
	TrainWidth   uint32

	// labels maps Action 0x10 label ids to record indices, filled by the
	// label scan
	labels []label

	container *grf.File
	log       *logrus.Entry
	reserved  bool
}

type label struct {
	id     uint8
	record int
}

// GRFIDString formats a GRFID the way module authors write it.
func GRFIDString(grfid uint32) string {
	return fmt.Sprintf("%.8X", swap32(grfid))
}

// ParseGRFID reads a GRFID in the form GRFIDString writes.
func ParseGRFID(s string) (uint32, error) {
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, errors.Wrapf(err, "Bad GRFID %q", s)
	}
	return swap32(uint32(v)), nil
}

func (m *Module) String() string {
	return fmt.Sprintf("%s [%s]", m.Path, GRFIDString(m.GRFID))
}

// Records returns the records of the container, nil before loading.
func (m *Module) Records() []grf.Record {
	if m.container == nil {
		return nil
	}
	return m.container.Records
}

func (m *Module) Container() *grf.File { return m.container }

// Param returns a parameter register, 0 when it is not defined.
func (m *Module) Param(n uint8) uint32 {
	if int(n) >= m.ParamEnd || int(n) >= MaxParams {
		return 0
	}
	return m.Params[n]
}

func (m *Module) SetParam(n uint8, v uint32) {
	if int(n) >= MaxParams {
		return
	}
	m.Params[n] = v
	if int(n) >= m.ParamEnd {
		m.ParamEnd = int(n) + 1
	}
}

func (m *Module) resetParams() {
	m.Params = m.config
	m.ParamEnd = m.configEnd
}

// Loaded reports whether the module reached the state of a stage.
func (m *Module) Loaded(stage Stage) bool {
	if stage >= StageActivation {
		return m.Status == StatusActivated
	}
	return m.Status == StatusInitialised || m.Status == StatusActivated
}

func (m *Module) Disabled() bool {
	return m.Status == StatusDisabled || m.Status == StatusNotFound
}

func newModule(entry config.ModuleEntry) *Module {
	m := &Module{
		Path:       entry.Path,
		Static:     entry.Static,
		TrainWidth: defaultTrainWidth,
	}
	for i, p := range entry.Params {
		if i >= MaxParams {
			break
		}
		m.config[i] = p
		m.configEnd = i + 1
	}
	m.resetParams()
	return m
}

var (
	// ErrFatal is raised by modules reporting a fatal error themselves
	ErrFatal                 = errors.New("fatal module error")
	ErrInvalidVersion        = errors.New("invalid version")
	ErrDuplicateInfo         = errors.New("multiple GRF info records")
	ErrMetaDescription       = errors.New("malformed static info")
	ErrUnexpectedSprite      = errors.New("unexpected sprite")
	ErrDuplicateGRFID        = errors.New("duplicate GRFID")
	ErrForcefullyDisabled    = errors.New("forcefully disabled")
	ErrLoadAfterTranslation  = errors.New("module loaded after its translation")
	ErrUnsafeForStatic       = errors.New("not safe for static use")
	ErrBadAction             = errors.New("malformed action")
	ErrResourceLimit         = errors.New("resource limit reached")
	ErrModuleError           = errors.New("module raised an error")
	ErrTownNames             = errors.New("bad town name definition")
	ErrCapabilityDeclaration = errors.New("bad capability declaration")
)

var fatalErrors = []error{ErrFatal, ErrInvalidVersion, ErrDuplicateInfo, ErrMetaDescription}

// IsFatal reports whether an error makes a module unusable in any
// configuration, as opposed to errors of the current load.
func IsFatal(err error) bool {
	for _, fatal := range fatalErrors {
		if errors.Is(err, fatal) {
			return true
		}
	}
	return false
}

func swap32(v uint32) uint32 {
	return v>>24 | (v>>8)&0xFF00 | (v<<8)&0xFF0000 | v<<24
}
