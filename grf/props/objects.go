package props

import (
	"github.com/pkg/errors"

	"github.com/mogaika/newgrf_browser/grf/spec"
)

type withProps[T any] interface {
	*T
	Props() *spec.GRFProps
}

// scopedObject returns the entry a module defined under a local id.
func scopedObject[T any](table func(reg *spec.Registry) *spec.Table[T]) objectFunc[T] {
	return func(c *Context) (*T, error) {
		global, ok := c.IDs().Lookup(c.Feature, c.GRFID(), c.ID)
		if !ok {
			return nil, nil
		}
		e := table(c.Registry()).Get(global)
		if e == nil || !e.Defined {
			return nil, nil
		}
		c.Global = global
		return &e.Spec, nil
	}
}

// directObject returns the entry whose global id is the local id.
func directObject[T any](table func(reg *spec.Registry) *spec.Table[T]) objectFunc[T] {
	return func(c *Context) (*T, error) {
		e := table(c.Registry()).Get(c.ID)
		if e == nil {
			return nil, nil
		}
		c.Global = c.ID
		return &e.Spec, nil
	}
}

// define creates the entry of the context id from a template. An entry
// the module already defined is returned as is, base game entries are
// never replaced.
func define[T any, PT withProps[T]](c *Context, tbl *spec.Table[T], substitute uint16, template func() T) (*spec.Entry[T], bool, error) {
	global, _, err := c.IDs().Resolve(c.Feature, c.GRFID(), c.ID, substitute, false)
	if err != nil {
		return nil, false, err
	}
	c.Global = global
	if e := tbl.Get(global); e != nil && (e.Defined || e.Original) {
		if !e.Defined {
			return nil, false, errors.Wrapf(ErrInvalidID, "%v %d resolved to base game entry %d", c.Feature, c.ID, global)
		}
		return e, false, nil
	}
	e := tbl.Put(global, template())
	e.Defined = true
	props := PT(&e.Spec).Props()
	*props = spec.GRFProps{GRFID: c.GRFID(), LocalID: c.ID, SubstituteID: substitute}
	return e, true, nil
}
