package spec

import (
	"github.com/mogaika/newgrf_browser/grf/feature"
)

// Entry is one slot of a registry. Entries are never removed, only disabled.
type Entry[T any] struct {
	ID       uint16
	Spec     T
	Original bool
	// Defined is set by the first definition of the entry by a module
	Defined  bool
	Disabled bool
	Reason   string `json:",omitempty" yaml:",omitempty"`
}

func (e *Entry[T]) Disable(reason string) {
	e.Disabled = true
	e.Reason = reason
}

// Table is a sparse growable registry addressed by global id.
type Table[T any] struct {
	Feature   feature.Feature
	Originals int
	Limit     int
	entries   []*Entry[T]
}

func NewTable[T any](f feature.Feature, limit int) *Table[T] {
	return &Table[T]{Feature: f, Limit: limit}
}

func (t *Table[T]) Get(id uint16) *Entry[T] {
	if int(id) >= len(t.entries) {
		return nil
	}
	return t.entries[id]
}

// Spec returns the specification of an existing entry or nil.
func (t *Table[T]) Spec(id uint16) *T {
	if e := t.Get(id); e != nil {
		return &e.Spec
	}
	return nil
}

// Put creates or replaces the entry at id, growing the table.
func (t *Table[T]) Put(id uint16, spec T) *Entry[T] {
	for int(id) >= len(t.entries) {
		t.entries = append(t.entries, nil)
	}
	e := &Entry[T]{ID: id, Spec: spec}
	t.entries[id] = e
	return e
}

// AddOriginal appends a base game entry.
func (t *Table[T]) AddOriginal(spec T) *Entry[T] {
	e := t.Put(uint16(len(t.entries)), spec)
	e.Original = true
	t.Originals = len(t.entries)
	return e
}

// Len is one past the highest id in use.
func (t *Table[T]) Len() int {
	return len(t.entries)
}

func (t *Table[T]) Entries() []*Entry[T] {
	list := make([]*Entry[T], 0, len(t.entries))
	for _, e := range t.entries {
		if e != nil {
			list = append(list, e)
		}
	}
	return list
}

// Active returns the entries that are neither disabled nor empty.
func (t *Table[T]) Active() []*Entry[T] {
	list := make([]*Entry[T], 0, len(t.entries))
	for _, e := range t.entries {
		if e != nil && !e.Disabled {
			list = append(list, e)
		}
	}
	return list
}
