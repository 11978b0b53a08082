package props

import (
	"github.com/mogaika/newgrf_browser/grf/spec"
	"github.com/mogaika/newgrf_browser/utils"
)

type integer interface {
	~uint8 | ~int8 | ~uint16 | ~int16 | ~uint32 | ~int32
}

// mapped is a scalar property with explicit conversions.
func mapped[T any](code uint8, name string, width int, set func(obj *T, v uint32), get func(obj *T) uint32) Property[T] {
	return Property[T]{
		Code:  code,
		Name:  name,
		Width: width,
		load: func(c *Context, r *utils.ByteReader, obj *T) error {
			v, err := r.ReadVar(width)
			if err != nil {
				return err
			}
			if obj != nil {
				set(obj, v)
			}
			return nil
		},
		store: get,
	}
}

func num[T any, V integer](code uint8, name string, width int, field func(*T) *V) Property[T] {
	return mapped(code, name, width,
		func(obj *T, v uint32) { *field(obj) = V(v) },
		func(obj *T) uint32 { return uint32(*field(obj)) })
}

func u8[T any, V integer](code uint8, name string, field func(*T) *V) Property[T] {
	return num(code, name, 1, field)
}

func u16[T any, V integer](code uint8, name string, field func(*T) *V) Property[T] {
	return num(code, name, 2, field)
}

func u32[T any, V integer](code uint8, name string, field func(*T) *V) Property[T] {
	return num(code, name, 4, field)
}

// label reads a big endian four character label.
func label[T any](code uint8, name string, field func(*T) *spec.Label) Property[T] {
	return Property[T]{
		Code:  code,
		Name:  name,
		Width: 4,
		load: func(c *Context, r *utils.ByteReader, obj *T) error {
			v, err := r.ReadBU32()
			if err != nil {
				return err
			}
			if obj != nil {
				*field(obj) = spec.Label(v)
			}
			return nil
		},
	}
}

// skip reads a fixed payload without any effect.
func skip[T any](code uint8, name string, width int) Property[T] {
	return Property[T]{
		Code:  code,
		Name:  name,
		Width: width,
		Skip:  true,
		load: func(c *Context, r *utils.ByteReader, obj *T) error {
			return r.Skip(width)
		},
	}
}

// custom is a property with its own payload reader. Loaders must check
// obj for nil before storing anything.
func custom[T any](code uint8, name string, load loadFunc[T]) Property[T] {
	return Property[T]{Code: code, Name: name, load: load}
}

func (p Property[T]) reserved() Property[T] {
	p.Reserve = true
	return p
}

func (p Property[T]) defining() Property[T] {
	p.Define = true
	return p
}

func (p Property[T]) global() Property[T] {
	p.Global = true
	return p
}

func (p Property[T]) unhandled() Property[T] {
	p.Skip = true
	return p
}

// readList reads a byte count followed by count items.
func readList[V any](r *utils.ByteReader, read func() (V, error)) ([]V, error) {
	n, err := r.ReadU8()
	if err != nil {
		return nil, err
	}
	list := make([]V, 0, n)
	for i := 0; i < int(n); i++ {
		v, err := read()
		if err != nil {
			return nil, err
		}
		list = append(list, v)
	}
	return list, nil
}

func readLabels(r *utils.ByteReader) ([]spec.Label, error) {
	return readList(r, func() (spec.Label, error) {
		v, err := r.ReadBU32()
		return spec.Label(v), err
	})
}

func (p Property[T]) batch() Property[T] {
	p.Batch = true
	return p
}
