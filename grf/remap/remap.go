// Package remap holds the capability declarations of Action 0x14: property
// and variable codes a module picked for named capabilities, and the
// feature tests it asked for.
package remap

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/mogaika/newgrf_browser/grf/feature"
)

var ErrCapabilityUnresolved = errors.New("capability unresolved")

type Kind uint8

const (
	Property Kind = iota
	Variable
	FeatureTest
)

func (k Kind) String() string {
	switch k {
	case Property:
		return "property"
	case Variable:
		return "variable"
	case FeatureTest:
		return "feature test"
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Fallback is what happens when a declared name is unknown to the loader.
type Fallback uint8

const (
	Ignore Fallback = iota
	ErrorOnUse
	ErrorImmediately
)

func (f Fallback) String() string {
	switch f {
	case Ignore:
		return "ignore"
	case ErrorOnUse:
		return "error on use"
	case ErrorImmediately:
		return "error immediately"
	}
	return fmt.Sprintf("fallback(%d)", uint8(f))
}

// Entry is one declaration. Internal is only meaningful when Known is set.
type Entry struct {
	Kind     Kind
	Feature  feature.Feature
	Name     string
	Code     uint8
	Internal uint8
	Known    bool
	Fallback Fallback
}

// Err describes a use of an unresolved entry.
func (e *Entry) Err() error {
	return errors.Wrapf(ErrCapabilityUnresolved, "%v %q of %v mapped to 0x%.2x", e.Kind, e.Name, e.Feature, e.Code)
}

// Catalog resolves property names to the codes the decoders understand.
type Catalog interface {
	PropertyCode(f feature.Feature, name string) (uint8, bool)
}

type key struct {
	f    feature.Feature
	code uint8
}

// Table is the per module remap table.
type Table struct {
	catalog   Catalog
	props     map[key]*Entry
	variables map[key]*Entry
	tests     []*Entry
}

func NewTable(catalog Catalog) *Table {
	return &Table{
		catalog:   catalog,
		props:     make(map[key]*Entry),
		variables: make(map[key]*Entry),
	}
}

// Declare records a mapping of code to a named capability. A name that
// cannot be resolved with the ErrorImmediately fallback returns an error.
func (t *Table) Declare(kind Kind, f feature.Feature, name string, code uint8, fallback Fallback) (*Entry, error) {
	e := &Entry{Kind: kind, Feature: f, Name: name, Code: code, Fallback: fallback}
	switch kind {
	case Property:
		if t.catalog != nil {
			e.Internal, e.Known = t.catalog.PropertyCode(f, name)
		}
		t.props[key{f, code}] = e
	case Variable:
		e.Internal, e.Known = VariableCode(f, name)
		t.variables[key{f, code}] = e
	default:
		return nil, errors.Errorf("cannot declare a %v by code", kind)
	}
	if !e.Known && fallback == ErrorImmediately {
		return e, e.Err()
	}
	return e, nil
}

// Resolve returns the declaration of a code, if the module made one.
func (t *Table) Resolve(kind Kind, f feature.Feature, code uint8) (*Entry, bool) {
	var e *Entry
	switch kind {
	case Property:
		e = t.props[key{f, code}]
	case Variable:
		e = t.variables[key{f, code}]
	}
	return e, e != nil
}

// Test evaluates a feature test and records it.
func (t *Table) Test(name string, minVersion, maxVersion uint16) bool {
	version, ok := FeatureTests[name]
	present := ok && version >= minVersion && version <= maxVersion
	e := &Entry{Kind: FeatureTest, Feature: feature.Invalid, Name: name, Known: present}
	t.tests = append(t.tests, e)
	return present
}

// Entries returns all declarations for diagnostics.
func (t *Table) Entries() []Entry {
	var list []Entry
	for _, e := range t.props {
		list = append(list, *e)
	}
	for _, e := range t.variables {
		list = append(list, *e)
	}
	for _, e := range t.tests {
		list = append(list, *e)
	}
	return list
}

func (t *Table) Len() int {
	return len(t.props) + len(t.variables)
}
