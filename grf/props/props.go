// Package props decodes Action 0 property edits into specifications.
//
// Every feature has a table of properties. A property reads its payload
// from the record and, when it has an object to work on, stores the
// decoded value. Payloads are always consumed, so a property that does
// not apply to the current stage still keeps the reader in sync.
package props

import (
	"fmt"
	"sort"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/mogaika/newgrf_browser/grf/feature"
	"github.com/mogaika/newgrf_browser/grf/ids"
	"github.com/mogaika/newgrf_browser/grf/spec"
	"github.com/mogaika/newgrf_browser/utils"
)

var (
	ErrUnknownProperty = errors.New("unknown property")
	ErrInvalidID       = errors.New("invalid id")
)

type Result int

const (
	Success Result = iota
	Unhandled
	Unknown
	InvalidID
	Disabled
)

func (r Result) String() string {
	switch r {
	case Success:
		return "success"
	case Unhandled:
		return "unhandled"
	case Unknown:
		return "unknown"
	case InvalidID:
		return "invalid id"
	case Disabled:
		return "disabled"
	}
	return fmt.Sprintf("result(%d)", int(r))
}

// Env is the part of the loader state property decoding works with.
type Env interface {
	GRFID() uint32
	GRFVersion() uint8
	File() *spec.GRFFile
	Registry() *spec.Registry
	IDs() *ids.Manager
	// Reserving is set during the reservation stage
	Reserving() bool
	Log() *logrus.Entry
}

// Context is passed to property loaders for every object id of a record.
type Context struct {
	Env
	Feature feature.Feature
	// ID is the module local id, Global the registry id when known
	ID     uint16
	Global uint16
	// Count is the number of ids of the record, for batch properties
	Count int
	// Apply is unset when the payload must only be consumed
	Apply bool
}

// Decoder is implemented by every feature table.
type Decoder interface {
	Feature() feature.Feature
	Decode(env Env, first uint16, count int, prop uint8, r *utils.ByteReader) (Result, error)
	PropertyCode(name string) (uint8, bool)
	Properties() []Info
}

// Info describes a property for catalogs and dumps.
type Info struct {
	Code    uint8
	Name    string
	Width   int
	Reserve bool
	Define  bool
	Global  bool
	Skip    bool
	Batch   bool
}

type loadFunc[T any] func(c *Context, r *utils.ByteReader, obj *T) error

// Property is one entry of a feature table.
type Property[T any] struct {
	Code uint8
	Name string
	// Width is the payload size of scalar properties, 0 for custom payloads
	Width int
	// Reserve properties are applied during the reservation stage too
	Reserve bool
	// Define properties create the object they are applied to
	Define bool
	// Global properties do not address an object
	Global bool
	// Skip properties are understood but have no effect
	Skip bool
	// Batch properties read the payload of all ids at once
	Batch bool

	load  loadFunc[T]
	store func(obj *T) uint32
}

func (p *Property[T]) info() Info {
	return Info{Code: p.Code, Name: p.Name, Width: p.Width, Reserve: p.Reserve, Define: p.Define, Global: p.Global, Skip: p.Skip, Batch: p.Batch}
}

// objectFunc returns the object a non defining property edits, or nil
// when the id does not name one.
type objectFunc[T any] func(c *Context) (*T, error)

// Table is a data driven Decoder.
type Table[T any] struct {
	feature feature.Feature
	object  objectFunc[T]
	props   map[uint8]*Property[T]
}

func newTable[T any](f feature.Feature, object objectFunc[T], list ...Property[T]) *Table[T] {
	t := &Table[T]{feature: f, object: object, props: make(map[uint8]*Property[T], len(list))}
	for i := range list {
		p := list[i]
		if _, dup := t.props[p.Code]; dup {
			panic(fmt.Sprintf("%v: property 0x%.2x declared twice", f, p.Code))
		}
		t.props[p.Code] = &p
	}
	return t
}

func (t *Table[T]) Feature() feature.Feature { return t.feature }

func (t *Table[T]) Decode(env Env, first uint16, count int, prop uint8, r *utils.ByteReader) (Result, error) {
	p, ok := t.props[prop]
	if !ok {
		return Unknown, errors.Wrapf(ErrUnknownProperty, "%v property 0x%.2x", t.feature, prop)
	}

	result := Success
	if p.Skip {
		result = Unhandled
	}
	n := count
	if p.Batch {
		n = 1
	}
	for i := 0; i < n; i++ {
		c := &Context{
			Env:     env,
			Feature: t.feature,
			ID:      first + uint16(i),
			Count:   count,
			Apply:   !env.Reserving() || p.Reserve,
		}
		var obj *T
		if c.Apply && !p.Define && !p.Global && !p.Skip && !p.Batch {
			o, err := t.object(c)
			if err != nil {
				return Disabled, errors.Wrapf(err, "%v id %d", t.feature, c.ID)
			}
			if o == nil {
				env.Log().Warnf("Attempt to modify undefined %v %d with property 0x%.2x, ignoring", t.feature, c.ID, prop)
				return InvalidID, nil
			}
			obj = o
		}
		if err := p.load(c, r, obj); err != nil {
			if errors.Is(err, ErrInvalidID) {
				env.Log().Warnf("%v", err)
				return InvalidID, nil
			}
			return Disabled, errors.Wrapf(err, "%v id %d property 0x%.2x (%s)", t.feature, c.ID, prop, p.Name)
		}
	}
	if result == Unhandled {
		env.Log().Debugf("%v property 0x%.2x (%s) is not handled", t.feature, prop, p.Name)
	}
	return result, nil
}

func (t *Table[T]) PropertyCode(name string) (uint8, bool) {
	for code, p := range t.props {
		if p.Name == name {
			return code, true
		}
	}
	return 0, false
}

func (t *Table[T]) Properties() []Info {
	list := make([]Info, 0, len(t.props))
	for _, p := range t.props {
		list = append(list, p.info())
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Code < list[j].Code })
	return list
}

// roundTrip loads a scalar value into a zero object and reads it back.
func (t *Table[T]) roundTrip(c *Context, code uint8, payload []byte) (uint32, bool, error) {
	p, ok := t.props[code]
	if !ok || p.store == nil {
		return 0, false, nil
	}
	var obj T
	c.Apply = true
	if err := p.load(c, utils.NewByteReader("prop", payload), &obj); err != nil {
		return 0, true, err
	}
	return p.store(&obj), true, nil
}

// Decoders returns one decoder per feature.
func Decoders() map[feature.Feature]Decoder {
	return decoders
}

var decoders = map[feature.Feature]Decoder{}

func register(d Decoder) {
	decoders[d.Feature()] = d
}

// Catalog resolves property names of all features for capability remaps.
type Catalog struct{}

func (Catalog) PropertyCode(f feature.Feature, name string) (uint8, bool) {
	d, ok := decoders[f]
	if !ok {
		return 0, false
	}
	return d.PropertyCode(name)
}
