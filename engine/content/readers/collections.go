package readers

import (
	"reflect"

	"github.com/cockroachdb/errors"

	"github.com/spaghettifunk/anima-content/engine/content/xnb"
	"github.com/spaghettifunk/anima-content/engine/core"
)

// Collection elements are written as object references: every element starts
// with its own type reader index, 0 meaning a zero (null) element.

type listReader struct {
	target reflect.Type
}

func newListReader(args []reflect.Type) (xnb.TypeReader, error) {
	return listReader{target: reflect.SliceOf(args[0])}, nil
}

func (l listReader) TargetType() reflect.Type {
	return l.target
}

func (l listReader) Read(r *xnb.ContentReader, _ xnb.Instance) (any, error) {
	return readSlice(r, l.target)
}

// arrayReader produces the same Go slice type as listReader; the two only
// differ in the source language.
type arrayReader struct {
	listReader
}

func newArrayReader(args []reflect.Type) (xnb.TypeReader, error) {
	return arrayReader{listReader{target: reflect.SliceOf(args[0])}}, nil
}

func readSlice(r *xnb.ContentReader, t reflect.Type) (any, error) {
	n, err := readLength(r)
	if err != nil {
		return nil, err
	}
	s := reflect.MakeSlice(t, n, n)
	for i := 0; i < n; i++ {
		v, err := r.ReadObject(xnb.Fresh())
		if err != nil {
			return nil, errors.Wrapf(err, "element %d", i)
		}
		if err := assign(s.Index(i), v); err != nil {
			return nil, errors.Wrapf(err, "element %d", i)
		}
	}
	return s.Interface(), nil
}

type dictionaryReader struct {
	target reflect.Type
}

func newDictionaryReader(args []reflect.Type) (xnb.TypeReader, error) {
	if !args[0].Comparable() {
		return nil, errors.Newf("dictionary key type %s is not comparable", args[0])
	}
	return dictionaryReader{target: reflect.MapOf(args[0], args[1])}, nil
}

func (d dictionaryReader) TargetType() reflect.Type {
	return d.target
}

func (d dictionaryReader) Read(r *xnb.ContentReader, _ xnb.Instance) (any, error) {
	n, err := readLength(r)
	if err != nil {
		return nil, err
	}
	m := reflect.MakeMapWithSize(d.target, n)
	key := reflect.New(d.target.Key()).Elem()
	elem := reflect.New(d.target.Elem()).Elem()
	for i := 0; i < n; i++ {
		k, err := r.ReadObject(xnb.Fresh())
		if err != nil {
			return nil, errors.Wrapf(err, "key %d", i)
		}
		if err := assign(key, k); err != nil {
			return nil, errors.Wrapf(err, "key %d", i)
		}
		v, err := r.ReadObject(xnb.Fresh())
		if err != nil {
			return nil, errors.Wrapf(err, "value %d", i)
		}
		if err := assign(elem, v); err != nil {
			return nil, errors.Wrapf(err, "value %d", i)
		}
		m.SetMapIndex(key, elem)
	}
	return m.Interface(), nil
}

// nullableReader decodes a presence flag followed by the value, inline, with
// the container's reader for the element type.
type nullableReader struct {
	target reflect.Type
	elem   xnb.TypeReader
}

func newNullableReader(args []reflect.Type) (xnb.TypeReader, error) {
	return &nullableReader{target: reflect.PointerTo(args[0])}, nil
}

func (n *nullableReader) TargetType() reflect.Type {
	return n.target
}

func (n *nullableReader) Initialize(m *xnb.TypeReaderManager) error {
	tr, ok := m.ReaderFor(n.target.Elem())
	if !ok {
		return errors.Newf("no type reader for nullable element %s", n.target.Elem())
	}
	n.elem = tr
	return nil
}

func (n *nullableReader) Read(r *xnb.ContentReader, _ xnb.Instance) (any, error) {
	has, err := r.ReadBoolean()
	if err != nil {
		return nil, err
	}
	if !has {
		return reflect.Zero(n.target).Interface(), nil
	}
	p := reflect.New(n.target.Elem())
	v, err := r.ReadRawObject(n.elem, xnb.Fresh())
	if err != nil {
		return nil, err
	}
	if err := assign(p.Elem(), v); err != nil {
		return nil, err
	}
	return p.Interface(), nil
}

// enumReader decodes an enum stored as its int32 underlying value.
type enumReader struct {
	target reflect.Type
}

func newEnumReader(args []reflect.Type) (xnb.TypeReader, error) {
	switch args[0].Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
	default:
		return nil, errors.Newf("enum type %s is not an integer type", args[0])
	}
	return enumReader{target: args[0]}, nil
}

func (e enumReader) TargetType() reflect.Type {
	return e.target
}

func (e enumReader) Read(r *xnb.ContentReader, _ xnb.Instance) (any, error) {
	v, err := r.ReadInt32()
	if err != nil {
		return nil, err
	}
	return reflect.ValueOf(v).Convert(e.target).Interface(), nil
}

func readLength(r *xnb.ContentReader) (int, error) {
	n, err := r.ReadInt32()
	if err != nil {
		return 0, err
	}
	// Every element takes at least one byte.
	if n < 0 || int(n) > r.Remaining() {
		return 0, core.FormatErrorf("collection length %d out of range at offset %d", n, r.Offset())
	}
	return int(n), nil
}

// assign stores v into dst, resetting dst to its zero value for nil.
func assign(dst reflect.Value, v any) error {
	if v == nil {
		dst.SetZero()
		return nil
	}
	rv := reflect.ValueOf(v)
	if !rv.Type().AssignableTo(dst.Type()) {
		return errors.Mark(errors.Mark(
			errors.Newf("value of type %s is not assignable to %s", rv.Type(), dst.Type()),
			core.ErrTypeMismatch), core.ErrFormat)
	}
	dst.Set(rv)
	return nil
}
